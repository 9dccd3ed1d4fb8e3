package builtin

import (
	"github.com/codequest-labs/ai-tutorial-progress/pkg/rule"
)

// RegisterBuiltinRules registers all built-in achievement condition kinds with the factory.
func RegisterBuiltinRules() {
	rule.RegisterRuleType(LessonsCompletedRuleID, func(config rule.RuleConfig) (rule.Rule, error) {
		r, err := NewLessonsCompletedRule(config)
		if err != nil {
			return nil, err
		}
		return r, nil
	})

	rule.RegisterRuleType(CompletionPercentRuleID, func(config rule.RuleConfig) (rule.Rule, error) {
		r, err := NewCompletionPercentRule(config)
		if err != nil {
			return nil, err
		}
		return r, nil
	})

	rule.RegisterRuleType(LessonsCompletedTodayRuleID, func(config rule.RuleConfig) (rule.Rule, error) {
		r, err := NewLessonsCompletedTodayRule(config)
		if err != nil {
			return nil, err
		}
		return r, nil
	})

	rule.RegisterRuleType(SpecificLessonsRuleID, func(config rule.RuleConfig) (rule.Rule, error) {
		r, err := NewSpecificLessonsRule(config)
		if err != nil {
			return nil, err
		}
		return r, nil
	})

	rule.RegisterRuleType(CoinBalanceRuleID, func(config rule.RuleConfig) (rule.Rule, error) {
		r, err := NewCoinBalanceRule(config)
		if err != nil {
			return nil, err
		}
		return r, nil
	})

	rule.RegisterRuleType(LoginStreakRuleID, func(config rule.RuleConfig) (rule.Rule, error) {
		r, err := NewLoginStreakRule(config)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
}
