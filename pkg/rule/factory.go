package rule

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// RuleFactory builds a rule of one condition kind from its configuration.
type RuleFactory func(config RuleConfig) (Rule, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]RuleFactory)
)

// RegisterRuleType makes a condition kind available to CreateRule.
// Registering the same kind again replaces its factory.
func RegisterRuleType(ruleType string, factory RuleFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[ruleType] = factory
	logrus.Debugf("registered rule type: %s", ruleType)
}

// RuleTypes returns the registered condition kinds, sorted.
func RuleTypes() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	types := make([]string, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// CreateRule builds the rule for one achievement.
// A disabled achievement yields a nil rule and no error.
func CreateRule(config RuleConfig) (Rule, error) {
	if config.ID == "" {
		return nil, fmt.Errorf("achievement has no id")
	}
	if !config.Enabled {
		logrus.Debugf("achievement %s is disabled", config.ID)
		return nil, nil
	}

	factoriesMu.RLock()
	factory, ok := factories[config.Type]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown rule type %q (known: %s)", config.Type, strings.Join(RuleTypes(), ", "))
	}
	return factory(config)
}

// CreateRules builds every config, collecting one error per config that failed.
func CreateRules(configs []RuleConfig) ([]Rule, []error) {
	var rules []Rule
	var errs []error

	for _, config := range configs {
		r, err := CreateRule(config)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("failed to create rule %s: %w", config.ID, err))
		case r != nil:
			rules = append(rules, r)
		}
	}
	return rules, errs
}

// RegisterRules builds configs and registers the rules in declared order.
// A config that fails to build is logged and left out; only a registry
// conflict is returned as an error.
func RegisterRules(registry *Registry, configs []RuleConfig) error {
	rules, errs := CreateRules(configs)
	for _, err := range errs {
		logrus.Warnf("skipping achievement: %v", err)
	}

	for _, r := range rules {
		if err := registry.Register(r); err != nil {
			return fmt.Errorf("failed to register rule %s: %w", r.ID(), err)
		}
	}

	logrus.Debugf("registered %d of %d achievement rules", len(rules), len(configs))
	return nil
}
