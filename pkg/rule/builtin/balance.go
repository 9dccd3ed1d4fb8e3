package builtin

import (
	"context"
	"fmt"

	"github.com/codequest-labs/ai-tutorial-progress/pkg/rule"
)

const (
	// CoinBalanceRuleID unlocks when the balance reaches an amount.
	CoinBalanceRuleID = "coin_balance"
	// LoginStreakRuleID unlocks when the login streak reaches a number of days.
	LoginStreakRuleID = "login_streak"

	DefaultCoinAmount = 100
	DefaultStreakDays = 3
)

// CoinBalanceRule is met when the coin balance is at least amount.
type CoinBalanceRule struct {
	config rule.RuleConfig
	amount int
}

// NewCoinBalanceRule creates a coin balance rule.
func NewCoinBalanceRule(config rule.RuleConfig) (*CoinBalanceRule, error) {
	amount := config.GetInt("amount", DefaultCoinAmount)
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amount)
	}
	return &CoinBalanceRule{config: config, amount: amount}, nil
}

func (r *CoinBalanceRule) ID() string              { return r.config.ID }
func (r *CoinBalanceRule) Name() string            { return "Coin Balance" }
func (r *CoinBalanceRule) Config() rule.RuleConfig { return r.config }

// Evaluate compares the current balance.
func (r *CoinBalanceRule) Evaluate(ctx context.Context, in rule.Input) (bool, *rule.Trigger, error) {
	if in.State == nil || in.State.Coins < r.amount {
		return false, nil, nil
	}
	return true, rule.NewTrigger(r, fmt.Sprintf("balance reached %d coins", in.State.Coins), in.Now), nil
}

// LoginStreakRule is met when the login streak is at least days.
type LoginStreakRule struct {
	config rule.RuleConfig
	days   int
}

// NewLoginStreakRule creates a login streak rule.
func NewLoginStreakRule(config rule.RuleConfig) (*LoginStreakRule, error) {
	days := config.GetInt("days", DefaultStreakDays)
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive, got %d", days)
	}
	return &LoginStreakRule{config: config, days: days}, nil
}

func (r *LoginStreakRule) ID() string              { return r.config.ID }
func (r *LoginStreakRule) Name() string            { return "Login Streak" }
func (r *LoginStreakRule) Config() rule.RuleConfig { return r.config }

// Evaluate compares the current streak.
func (r *LoginStreakRule) Evaluate(ctx context.Context, in rule.Input) (bool, *rule.Trigger, error) {
	if in.State == nil || in.State.Streak < r.days {
		return false, nil, nil
	}
	return true, rule.NewTrigger(r, fmt.Sprintf("logged in %d days in a row", in.State.Streak), in.Now), nil
}
