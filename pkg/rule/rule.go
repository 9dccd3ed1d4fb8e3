package rule

import (
	"context"
	"time"

	"github.com/codequest-labs/ai-tutorial-progress/pkg/progress"
)

// Catalog is the read-only view of the lesson catalog that rules need.
type Catalog interface {
	// Len returns the number of lessons currently in the catalog.
	Len() int

	// HasLesson reports whether a lesson with the id exists.
	HasLesson(id string) bool
}

// Input is everything a rule may look at when it is evaluated.
type Input struct {
	State   *progress.State
	Catalog Catalog
	Now     time.Time
}

// Rule decides whether an achievement condition holds.
// Rules are registered in a Registry and evaluated by the Engine.
type Rule interface {
	// ID returns the achievement id the rule unlocks.
	ID() string

	// Name returns human-readable rule name.
	Name() string

	// Evaluate checks the condition against the input.
	// Returns true and trigger data if the condition holds, false otherwise.
	// Returns error only for unexpected failures, not for unmet conditions.
	Evaluate(ctx context.Context, in Input) (bool, *Trigger, error)

	// Config returns the rule's configuration.
	Config() RuleConfig
}

// Trigger represents a satisfied achievement condition.
type Trigger struct {
	RuleID    string    // Achievement to unlock
	Name      string    // Display name of the achievement
	Reward    int       // Coins granted on unlock
	Timestamp time.Time // When the condition was observed
	Reason    string    // Human-readable reason for the unlock
}

// NewTrigger creates a trigger for rule observed at now.
func NewTrigger(rule Rule, reason string, now time.Time) *Trigger {
	cfg := rule.Config()
	name := cfg.Name
	if name == "" {
		name = rule.Name()
	}
	return &Trigger{
		RuleID:    rule.ID(),
		Name:      name,
		Reward:    cfg.Reward,
		Timestamp: now,
		Reason:    reason,
	}
}
