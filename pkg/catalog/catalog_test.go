package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extension.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

func TestLoad_BaseCatalog(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.Len() != 9 {
		t.Errorf("Len() = %d, expected 9", c.Len())
	}
	if got := c.Lessons()[0].ID; got != "intro" {
		t.Errorf("first lesson = %s, expected intro", got)
	}

	intro, ok := c.Lesson("intro")
	if !ok {
		t.Fatal("Expected lesson intro")
	}
	if intro.RequiredCoins != 0 || intro.CoinReward() != 5 {
		t.Errorf("intro = %+v, expected free lesson with reward 5", intro)
	}
	if !intro.Checker.Check("function greet(name) { return 'Hello ' + name; }") {
		t.Error("Expected intro checker to accept a greeting function")
	}

	tokens, _ := c.Lesson("tokens")
	if tokens.CoinReward() != DefaultReward {
		t.Errorf("tokens reward = %d, expected default %d", tokens.CoinReward(), DefaultReward)
	}

	achievements := c.Achievements()
	if len(achievements) != 8 || achievements[0].ID != "first-lesson" {
		t.Errorf("unexpected achievements: %d", len(achievements))
	}
	graduate, ok := c.Achievement("graduate")
	if !ok || graduate.Reward != 50 || !graduate.Enabled {
		t.Errorf("graduate = %+v, expected enabled with reward 50", graduate)
	}
}

func TestLoad_BaseCatalogExpandsEnv(t *testing.T) {
	t.Setenv("TUTORIAL_GRADUATE_REWARD", "75")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	graduate, _ := c.Achievement("graduate")
	if graduate.Reward != 75 {
		t.Errorf("graduate reward = %d, expected 75", graduate.Reward)
	}
}

func TestLoad_Extension(t *testing.T) {
	path := writeFile(t, `
lessons:
  - id: embeddings
    title: Embeddings
    required_coins: 60
    reward: 12
    checker:
      type: function
      name: embed
achievements:
  - id: embedder
    name: Embedder
    type: specific_lessons
    enabled: false
    reward: 5
    parameters:
      lessons: [embeddings]
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.Len() != 10 {
		t.Errorf("Len() = %d, expected 10", c.Len())
	}
	lessons := c.Lessons()
	if lessons[len(lessons)-1].ID != "embeddings" {
		t.Errorf("last lesson = %s, expected embeddings", lessons[len(lessons)-1].ID)
	}
	embedder, ok := c.Achievement("embedder")
	if !ok || embedder.Enabled {
		t.Errorf("embedder = %+v, expected disabled", embedder)
	}
	if !c.HasAchievement("first-lesson") || !c.HasLesson("intro") {
		t.Error("Expected base definitions to be kept")
	}
}

func TestLoad_DuplicateIDsRejected(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{
			name: "lesson colliding with base",
			content: `
lessons:
  - id: intro
    title: Another intro
    checker: {type: contains, substrings: [x]}
`,
			errPart: "duplicate lesson ID: intro",
		},
		{
			name: "lesson duplicated within the extension",
			content: `
lessons:
  - id: extra
    checker: {type: contains, substrings: [x]}
  - id: extra
    checker: {type: contains, substrings: [y]}
`,
			errPart: "duplicate lesson ID: extra",
		},
		{
			name: "achievement colliding with base",
			content: `
achievements:
  - id: streak-3
    type: login_streak
    reward: 1
`,
			errPart: "duplicate achievement ID: streak-3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error = %v, expected to contain %q", err, tt.errPart)
			}
		})
	}
}

func TestLoad_InvalidExtension(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not yaml", content: "lessons: [unterminated"},
		{name: "missing checker", content: "lessons:\n  - id: x\n"},
		{name: "bad checker", content: "lessons:\n  - id: x\n    checker: {type: regex, patterns: ['(']}\n"},
		{name: "negative threshold", content: "lessons:\n  - id: x\n    required_coins: -1\n    checker: {type: contains, substrings: [a]}\n"},
		{name: "achievement without type", content: "achievements:\n  - id: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.content)); err == nil {
				t.Error("Expected error")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CATALOG_TEST_VALUE", "set")

	tests := []struct {
		input    string
		expected string
	}{
		{"${CATALOG_TEST_VALUE}", "set"},
		{"${CATALOG_TEST_VALUE:fallback}", "set"},
		{"${CATALOG_TEST_MISSING:fallback}", "fallback"},
		{"${CATALOG_TEST_MISSING}", ""},
		{"no vars", "no vars"},
	}

	for _, tt := range tests {
		if got := expandEnvVars(tt.input); got != tt.expected {
			t.Errorf("expandEnvVars(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
