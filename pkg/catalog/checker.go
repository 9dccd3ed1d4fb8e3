package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Checker kinds.
const (
	CheckerContains = "contains"
	CheckerRegex    = "regex"
	CheckerFunction = "function"
	CheckerAllOf    = "all_of"
)

// Checker decides whether submitted source text satisfies a lesson task.
// Implementations look at the text only; nothing is ever executed.
type Checker interface {
	Kind() string
	Check(source string) bool
}

// CheckerConfig is the declarative form of a checker.
type CheckerConfig struct {
	Type       string          `yaml:"type" json:"type"`
	Substrings []string        `yaml:"substrings,omitempty" json:"substrings,omitempty"`
	Patterns   []string        `yaml:"patterns,omitempty" json:"patterns,omitempty"`
	Name       string          `yaml:"name,omitempty" json:"name,omitempty"`
	Literals   []string        `yaml:"literals,omitempty" json:"literals,omitempty"`
	Checks     []CheckerConfig `yaml:"checks,omitempty" json:"checks,omitempty"`
	IgnoreCase bool            `yaml:"ignore_case,omitempty" json:"ignore_case,omitempty"`
}

// CheckerFactory builds a checker from its configuration.
type CheckerFactory func(config CheckerConfig) (Checker, error)

var checkerFactories = map[string]CheckerFactory{}

func init() {
	RegisterCheckerType(CheckerContains, newContainsChecker)
	RegisterCheckerType(CheckerRegex, newRegexChecker)
	RegisterCheckerType(CheckerFunction, newFunctionChecker)
	RegisterCheckerType(CheckerAllOf, newAllOfChecker)
}

// RegisterCheckerType registers a factory for a checker kind.
func RegisterCheckerType(kind string, factory CheckerFactory) {
	checkerFactories[kind] = factory
	logrus.Debugf("registered checker type: %s", kind)
}

// NewChecker builds the checker described by config.
func NewChecker(config CheckerConfig) (Checker, error) {
	factory, ok := checkerFactories[config.Type]
	if !ok {
		return nil, fmt.Errorf("unknown checker type: %q", config.Type)
	}
	return factory(config)
}

type containsChecker struct {
	substrings []string
	ignoreCase bool
}

func newContainsChecker(config CheckerConfig) (Checker, error) {
	if len(config.Substrings) == 0 {
		return nil, fmt.Errorf("contains checker needs at least one substring")
	}
	c := &containsChecker{ignoreCase: config.IgnoreCase}
	for _, s := range config.Substrings {
		if c.ignoreCase {
			s = strings.ToLower(s)
		}
		c.substrings = append(c.substrings, s)
	}
	return c, nil
}

func (c *containsChecker) Kind() string { return CheckerContains }

func (c *containsChecker) Check(source string) bool {
	if c.ignoreCase {
		source = strings.ToLower(source)
	}
	for _, s := range c.substrings {
		if !strings.Contains(source, s) {
			return false
		}
	}
	return true
}

type regexChecker struct {
	patterns []*regexp.Regexp
}

func newRegexChecker(config CheckerConfig) (Checker, error) {
	if len(config.Patterns) == 0 {
		return nil, fmt.Errorf("regex checker needs at least one pattern")
	}
	c := &regexChecker{}
	for _, p := range config.Patterns {
		if config.IgnoreCase {
			p = "(?i)" + p
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %q: %w", p, err)
		}
		c.patterns = append(c.patterns, re)
	}
	return c, nil
}

func (c *regexChecker) Kind() string { return CheckerRegex }

func (c *regexChecker) Check(source string) bool {
	for _, re := range c.patterns {
		if !re.MatchString(source) {
			return false
		}
	}
	return true
}

var returnPattern = regexp.MustCompile(`\breturn\b`)

// functionChecker passes when the source declares the named function,
// returns something, and mentions every literal.
type functionChecker struct {
	name         string
	declarations []*regexp.Regexp
	literals     []string
}

func newFunctionChecker(config CheckerConfig) (Checker, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("function checker needs a function name")
	}
	name := regexp.QuoteMeta(config.Name)
	return &functionChecker{
		name: config.Name,
		declarations: []*regexp.Regexp{
			regexp.MustCompile(`\bfunction\s+` + name + `\s*\(`),
			regexp.MustCompile(`\bdef\s+` + name + `\s*\(`),
			regexp.MustCompile(`\b(?:const|let|var)\s+` + name + `\s*=\s*(?:async\s+)?(?:function\b|\([^)]*\)\s*=>|[A-Za-z_]\w*\s*=>)`),
		},
		literals: config.Literals,
	}, nil
}

func (c *functionChecker) Kind() string { return CheckerFunction }

func (c *functionChecker) Check(source string) bool {
	declared := false
	for _, re := range c.declarations {
		if re.MatchString(source) {
			declared = true
			break
		}
	}
	if !declared || !returnPattern.MatchString(source) {
		return false
	}
	for _, literal := range c.literals {
		if !strings.Contains(source, literal) {
			return false
		}
	}
	return true
}

type allOfChecker struct {
	checks []Checker
}

func newAllOfChecker(config CheckerConfig) (Checker, error) {
	if len(config.Checks) == 0 {
		return nil, fmt.Errorf("all_of checker needs at least one nested check")
	}
	c := &allOfChecker{}
	for i, nested := range config.Checks {
		checker, err := NewChecker(nested)
		if err != nil {
			return nil, fmt.Errorf("nested check %d: %w", i, err)
		}
		c.checks = append(c.checks, checker)
	}
	return c, nil
}

func (c *allOfChecker) Kind() string { return CheckerAllOf }

func (c *allOfChecker) Check(source string) bool {
	for _, checker := range c.checks {
		if !checker.Check(source) {
			return false
		}
	}
	return true
}
