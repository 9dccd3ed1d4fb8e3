package rule

import (
	"fmt"
	"sync"
)

// Registry manages available rules in registration order.
// It is safe for concurrent use.
type Registry struct {
	rules []Rule
	index map[string]Rule
	mu    sync.RWMutex
}

// NewRegistry creates a new empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]Rule),
	}
}

// Register appends a rule to the registry.
// Returns an error if a rule with the same ID already exists.
func (r *Registry) Register(rule Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[rule.ID()]; exists {
		return fmt.Errorf("rule %s already registered", rule.ID())
	}

	r.rules = append(r.rules, rule)
	r.index[rule.ID()] = rule
	return nil
}

// GetEnabled returns the enabled rules in registration order.
func (r *Registry) GetEnabled() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enabled := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		if rule.Config().Enabled {
			enabled = append(enabled, rule)
		}
	}
	return enabled
}

// Count returns the number of registered rules.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rules)
}
