package rule

// RuleConfig describes one achievement.
// This is typically loaded from the catalog YAML.
type RuleConfig struct {
	ID          string                 `yaml:"id" json:"id"`
	Name        string                 `yaml:"name" json:"name"`
	Description string                 `yaml:"description" json:"description"`
	Type        string                 `yaml:"type" json:"type"` // e.g., "lessons_completed"
	Enabled     bool                   `yaml:"enabled" json:"enabled"`
	Reward      int                    `yaml:"reward" json:"reward"`
	Parameters  map[string]interface{} `yaml:"parameters" json:"parameters"` // Rule-specific parameters
}

// GetInt retrieves an integer value from parameters with a default.
// Whole floats are accepted since JSON decoding yields float64.
func (c *RuleConfig) GetInt(key string, defaultValue int) int {
	switch val := c.Parameters[key].(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		if val == float64(int(val)) {
			return int(val)
		}
	}
	return defaultValue
}

// GetFloat retrieves a float value from parameters with a default.
func (c *RuleConfig) GetFloat(key string, defaultValue float64) float64 {
	switch val := c.Parameters[key].(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	}
	return defaultValue
}

// GetStringSlice retrieves a list of strings from parameters.
// Returns nil if the key is missing or any element is not a string.
func (c *RuleConfig) GetStringSlice(key string) []string {
	switch val := c.Parameters[key].(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil
			}
			out = append(out, s)
		}
		return out
	}
	return nil
}
