package bootstrap

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/codequest-labs/ai-tutorial-progress/pkg/catalog"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/rule"
	ruleBuiltin "github.com/codequest-labs/ai-tutorial-progress/pkg/rule/builtin"
)

// InitRuleEngine registers one rule per catalog achievement and returns the
// engine evaluating them.
func InitRuleEngine(cat *catalog.Catalog) (*rule.Engine, *rule.Registry, error) {
	ruleBuiltin.RegisterBuiltinRules()

	configs := cat.Achievements()
	registry := rule.NewRegistry()
	if err := rule.RegisterRules(registry, configs); err != nil {
		return nil, nil, fmt.Errorf("failed to register rules: %w", err)
	}
	logrus.Infof("registered %d achievement rules", registry.Count())

	return rule.NewEngine(registry), registry, nil
}
