package rule

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/codequest-labs/ai-tutorial-progress/pkg/progress"
)

const testRuleType = "test_always"

func init() {
	RegisterRuleType(testRuleType, func(config RuleConfig) (Rule, error) {
		return &mockRule{
			id:        config.ID,
			name:      "Always",
			config:    config,
			condition: func(Input) (bool, error) { return true, nil },
		}, nil
	})
}

func TestCreateRule(t *testing.T) {
	r, err := CreateRule(RuleConfig{ID: "always_1", Type: testRuleType, Enabled: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r == nil {
		t.Fatal("Expected non-nil rule")
	}
	if r.ID() != "always_1" {
		t.Errorf("Expected rule ID 'always_1', got '%s'", r.ID())
	}
}

func TestCreateRule_Disabled(t *testing.T) {
	r, err := CreateRule(RuleConfig{ID: "off", Type: testRuleType, Enabled: false})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r != nil {
		t.Error("Expected nil rule for disabled config")
	}
}

func TestCreateRule_UnknownType(t *testing.T) {
	_, err := CreateRule(RuleConfig{ID: "x", Type: "does_not_exist", Enabled: true})
	if err == nil {
		t.Fatal("Expected error for unknown rule type")
	}
	if !strings.Contains(err.Error(), testRuleType) {
		t.Errorf("error = %v, expected it to list known types", err)
	}
}

func TestCreateRule_MissingID(t *testing.T) {
	if _, err := CreateRule(RuleConfig{Type: testRuleType, Enabled: true}); err == nil {
		t.Error("Expected error for missing id")
	}
}

func TestRuleTypes_Sorted(t *testing.T) {
	types := RuleTypes()
	if !sort.StringsAreSorted(types) {
		t.Errorf("RuleTypes() = %v, expected sorted", types)
	}
}

func TestRegisterRules_SkipsBrokenConfigs(t *testing.T) {
	registry := NewRegistry()
	configs := []RuleConfig{
		{ID: "one", Type: testRuleType, Enabled: true, Reward: 5},
		{ID: "bad", Type: "does_not_exist", Enabled: true},
		{ID: "two", Type: testRuleType, Enabled: true},
	}

	if err := RegisterRules(registry, configs); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if registry.Count() != 2 {
		t.Errorf("Expected 2 registered rules, got %d", registry.Count())
	}

	triggers := NewEngine(registry).Evaluate(context.Background(), Input{State: progress.Default()})
	if len(triggers) != 2 || triggers[0].Reward != 5 || triggers[0].Name != "Always" {
		t.Errorf("unexpected triggers: %+v", triggers)
	}
}

func TestRuleConfig_Getters(t *testing.T) {
	config := RuleConfig{
		Parameters: map[string]interface{}{
			"int":       3,
			"float":     2.5,
			"wholeJSON": float64(4),
			"list":      []interface{}{"a", "b"},
			"mixed":     []interface{}{"a", 1},
		},
	}

	if got := config.GetInt("int", 0); got != 3 {
		t.Errorf("GetInt(int) = %d, expected 3", got)
	}
	if got := config.GetInt("wholeJSON", 0); got != 4 {
		t.Errorf("GetInt(wholeJSON) = %d, expected 4", got)
	}
	if got := config.GetInt("float", 7); got != 7 {
		t.Errorf("GetInt(float) = %d, expected default 7", got)
	}
	if got := config.GetFloat("int", 0); got != 3 {
		t.Errorf("GetFloat(int) = %v, expected 3", got)
	}
	if got := config.GetStringSlice("list"); len(got) != 2 || got[1] != "b" {
		t.Errorf("GetStringSlice(list) = %v, expected [a b]", got)
	}
	if got := config.GetStringSlice("mixed"); got != nil {
		t.Errorf("GetStringSlice(mixed) = %v, expected nil", got)
	}
}
