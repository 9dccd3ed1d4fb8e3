// Package catalog holds the static lesson and achievement definitions.
//
// A catalog is built once at startup from the embedded base file plus an
// optional extension file, and is read-only afterwards.
package catalog

import (
	_ "embed"
	"fmt"

	"github.com/codequest-labs/ai-tutorial-progress/pkg/rule"
	"github.com/sirupsen/logrus"
)

// DefaultReward is credited for a lesson that does not configure one.
const DefaultReward = 5

//go:embed default_catalog.yaml
var baseCatalog []byte

// Lesson is an immutable lesson definition.
type Lesson struct {
	ID            string
	Title         string
	Description   string
	RequiredCoins int
	Reward        int
	Checker       Checker
}

// CoinReward returns the coins granted on first completion.
func (l *Lesson) CoinReward() int {
	if l.Reward > 0 {
		return l.Reward
	}
	return DefaultReward
}

// Catalog is the assembled set of lessons and achievements in declared order.
type Catalog struct {
	lessons      []*Lesson
	index        map[string]*Lesson
	achievements []rule.RuleConfig
	achIndex     map[string]int
}

// Base parses the embedded base catalog.
func Base() (*Config, error) {
	config, err := ParseConfig(baseCatalog)
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return config, nil
}

// Load builds the base catalog, appending the extension at extensionPath
// when it is not empty.
func Load(extensionPath string) (*Catalog, error) {
	base, err := Base()
	if err != nil {
		return nil, err
	}
	if extensionPath == "" {
		return Build(base)
	}

	extension, err := LoadConfig(extensionPath)
	if err != nil {
		return nil, err
	}
	logrus.Infof("merging %d lessons and %d achievements from %s",
		len(extension.Lessons), len(extension.Achievements), extensionPath)
	return Build(base, extension)
}

// Build concatenates configs in order. Any id defined twice, within or
// across configs, is an error naming that id.
func Build(configs ...*Config) (*Catalog, error) {
	c := &Catalog{
		index:    make(map[string]*Lesson),
		achIndex: make(map[string]int),
	}

	for _, config := range configs {
		for _, lc := range config.Lessons {
			if _, exists := c.index[lc.ID]; exists {
				return nil, fmt.Errorf("duplicate lesson ID: %s", lc.ID)
			}
			checker, err := NewChecker(lc.Checker)
			if err != nil {
				return nil, fmt.Errorf("lesson %s: %w", lc.ID, err)
			}
			lesson := &Lesson{
				ID:            lc.ID,
				Title:         lc.Title,
				Description:   lc.Description,
				RequiredCoins: lc.RequiredCoins,
				Reward:        lc.Reward,
				Checker:       checker,
			}
			c.lessons = append(c.lessons, lesson)
			c.index[lesson.ID] = lesson
		}

		for _, ac := range config.Achievements {
			if _, exists := c.achIndex[ac.ID]; exists {
				return nil, fmt.Errorf("duplicate achievement ID: %s", ac.ID)
			}
			c.achIndex[ac.ID] = len(c.achievements)
			c.achievements = append(c.achievements, ac.RuleConfig())
		}
	}

	return c, nil
}

// Lesson returns the lesson with the given id.
func (c *Catalog) Lesson(id string) (*Lesson, bool) {
	lesson, ok := c.index[id]
	return lesson, ok
}

// HasLesson reports whether id names a lesson.
func (c *Catalog) HasLesson(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Lessons returns all lessons in declared order.
func (c *Catalog) Lessons() []*Lesson {
	out := make([]*Lesson, len(c.lessons))
	copy(out, c.lessons)
	return out
}

// Len returns the number of lessons.
func (c *Catalog) Len() int {
	return len(c.lessons)
}

// Achievements returns the achievement definitions in declared order.
func (c *Catalog) Achievements() []rule.RuleConfig {
	out := make([]rule.RuleConfig, len(c.achievements))
	copy(out, c.achievements)
	return out
}

// Achievement returns the achievement with the given id.
func (c *Catalog) Achievement(id string) (rule.RuleConfig, bool) {
	i, ok := c.achIndex[id]
	if !ok {
		return rule.RuleConfig{}, false
	}
	return c.achievements[i], true
}

// HasAchievement reports whether id names an achievement.
func (c *Catalog) HasAchievement(id string) bool {
	_, ok := c.achIndex[id]
	return ok
}
