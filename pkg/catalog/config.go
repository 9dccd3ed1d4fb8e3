package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/codequest-labs/ai-tutorial-progress/pkg/rule"
	"gopkg.in/yaml.v3"
)

// Config is the YAML form of a catalog file.
type Config struct {
	Lessons      []LessonConfig      `yaml:"lessons"`
	Achievements []AchievementConfig `yaml:"achievements"`
}

// LessonConfig represents a lesson entry.
type LessonConfig struct {
	ID            string        `yaml:"id"`
	Title         string        `yaml:"title"`
	Description   string        `yaml:"description"`
	RequiredCoins int           `yaml:"required_coins"`
	Reward        int           `yaml:"reward,omitempty"`
	Checker       CheckerConfig `yaml:"checker"`
}

// AchievementConfig represents an achievement entry.
// Enabled defaults to true when omitted.
type AchievementConfig struct {
	ID          string                 `yaml:"id"`
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Type        string                 `yaml:"type"`
	Enabled     *bool                  `yaml:"enabled,omitempty"`
	Reward      int                    `yaml:"reward"`
	Parameters  map[string]interface{} `yaml:"parameters,omitempty"`
}

// RuleConfig converts the entry into the rule engine's configuration.
func (a AchievementConfig) RuleConfig() rule.RuleConfig {
	enabled := true
	if a.Enabled != nil {
		enabled = *a.Enabled
	}
	return rule.RuleConfig{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Type:        a.Type,
		Enabled:     enabled,
		Reward:      a.Reward,
		Parameters:  a.Parameters,
	}
}

// LoadConfig loads a catalog file.
// Supports environment variable expansion in the form ${VAR_NAME} or ${VAR_NAME:default}.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return config, nil
}

// ParseConfig parses and validates catalog YAML.
// A literal dollar sign followed by a letter, digit or brace is taken as a
// variable reference, so regex patterns should avoid "$".
func ParseConfig(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML catalog: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	return &config, nil
}

// Validate checks a single file for empty and duplicate ids.
// Collisions across files are caught by Build.
func (c *Config) Validate() error {
	lessonIDs := make(map[string]bool)
	for _, lesson := range c.Lessons {
		if lesson.ID == "" {
			return fmt.Errorf("lesson with empty ID found")
		}
		if lessonIDs[lesson.ID] {
			return fmt.Errorf("duplicate lesson ID: %s", lesson.ID)
		}
		lessonIDs[lesson.ID] = true

		if lesson.RequiredCoins < 0 {
			return fmt.Errorf("lesson %s has negative required_coins", lesson.ID)
		}
		if lesson.Reward < 0 {
			return fmt.Errorf("lesson %s has negative reward", lesson.ID)
		}
		if lesson.Checker.Type == "" {
			return fmt.Errorf("lesson %s has no checker", lesson.ID)
		}
	}

	achievementIDs := make(map[string]bool)
	for _, achievement := range c.Achievements {
		if achievement.ID == "" {
			return fmt.Errorf("achievement with empty ID found")
		}
		if achievementIDs[achievement.ID] {
			return fmt.Errorf("duplicate achievement ID: %s", achievement.ID)
		}
		achievementIDs[achievement.ID] = true

		if achievement.Type == "" {
			return fmt.Errorf("achievement %s has empty type", achievement.ID)
		}
		if achievement.Reward < 0 {
			return fmt.Errorf("achievement %s has negative reward", achievement.ID)
		}
	}

	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		parts := strings.SplitN(key, ":", 2)
		varName := parts[0]
		defaultValue := ""
		if len(parts) == 2 {
			defaultValue = parts[1]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}
