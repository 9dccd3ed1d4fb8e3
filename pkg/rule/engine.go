package rule

import (
	"context"

	"github.com/codequest-labs/ai-tutorial-progress/pkg/progress"
	"github.com/sirupsen/logrus"
)

// ApplyFunc applies a trigger to the state held in the input.
type ApplyFunc func(trigger *Trigger)

// Engine evaluates achievement rules against the progress state.
type Engine struct {
	registry *Registry
}

// NewEngine creates a new rule evaluation engine.
func NewEngine(registry *Registry) *Engine {
	return &Engine{
		registry: registry,
	}
}

// Evaluate runs one pass over the enabled rules in registration order,
// skipping achievements the state already holds. It does not mutate the state.
func (e *Engine) Evaluate(ctx context.Context, in Input) []*Trigger {
	var triggers []*Trigger
	for _, rule := range e.registry.GetEnabled() {
		if trigger := e.evaluateRule(ctx, rule, in); trigger != nil {
			triggers = append(triggers, trigger)
		}
	}
	return triggers
}

// Run evaluates rules one by one and hands each match to apply before the
// next rule is looked at, so later rules observe earlier rewards. Passes
// repeat until one produces no trigger. apply must unlock the achievement in
// in.State; Run returns every trigger it applied.
func (e *Engine) Run(ctx context.Context, in Input, apply ApplyFunc) []*Trigger {
	rules := e.registry.GetEnabled()

	var applied []*Trigger
	for pass := 0; pass <= len(rules); pass++ {
		matched := 0
		for _, rule := range rules {
			trigger := e.evaluateRule(ctx, rule, in)
			if trigger == nil {
				continue
			}
			apply(trigger)
			applied = append(applied, trigger)
			matched++
		}
		if matched == 0 {
			break
		}
	}
	return applied
}

func (e *Engine) evaluateRule(ctx context.Context, rule Rule, in Input) *Trigger {
	if progress.HasAchievement(in.State, rule.ID()) {
		return nil
	}

	matched, trigger, err := rule.Evaluate(ctx, in)
	if err != nil {
		logrus.Errorf("rule %s evaluation failed: %v", rule.ID(), err)
		return nil
	}
	if !matched {
		return nil
	}
	if trigger == nil {
		trigger = NewTrigger(rule, "condition met", in.Now)
	}

	logrus.Infof("rule %s triggered: %s", rule.ID(), trigger.Reason)
	return trigger
}
