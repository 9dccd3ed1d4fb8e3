package builtin

import (
	"context"
	"fmt"

	"github.com/codequest-labs/ai-tutorial-progress/pkg/progress"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/rule"
	"github.com/sirupsen/logrus"
)

const (
	// LessonsCompletedRuleID unlocks after a number of completed lessons.
	LessonsCompletedRuleID = "lessons_completed"
	// CompletionPercentRuleID unlocks after a share of the catalog is completed.
	CompletionPercentRuleID = "completion_percent"
	// LessonsCompletedTodayRuleID unlocks after several completions on one day.
	LessonsCompletedTodayRuleID = "lessons_completed_today"
	// SpecificLessonsRuleID unlocks once every listed lesson is completed.
	SpecificLessonsRuleID = "specific_lessons"

	DefaultLessonCount       = 1
	DefaultCompletionPercent = 100.0
)

// LessonsCompletedRule is met when at least count lessons are completed.
type LessonsCompletedRule struct {
	config rule.RuleConfig
	count  int
}

// NewLessonsCompletedRule creates a lesson count rule.
func NewLessonsCompletedRule(config rule.RuleConfig) (*LessonsCompletedRule, error) {
	count := config.GetInt("count", DefaultLessonCount)
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}
	return &LessonsCompletedRule{config: config, count: count}, nil
}

func (r *LessonsCompletedRule) ID() string              { return r.config.ID }
func (r *LessonsCompletedRule) Name() string            { return "Lessons Completed" }
func (r *LessonsCompletedRule) Config() rule.RuleConfig { return r.config }

// Evaluate checks the number of completed lessons.
func (r *LessonsCompletedRule) Evaluate(ctx context.Context, in rule.Input) (bool, *rule.Trigger, error) {
	if in.State == nil {
		return false, nil, nil
	}
	completed := len(in.State.CompletedLessons)
	if completed < r.count {
		return false, nil, nil
	}
	return true, rule.NewTrigger(r, fmt.Sprintf("completed %d lessons", completed), in.Now), nil
}

// CompletionPercentRule is met when the completed share of the current
// catalog reaches percent. An empty catalog never satisfies it.
type CompletionPercentRule struct {
	config  rule.RuleConfig
	percent float64
}

// NewCompletionPercentRule creates a catalog share rule.
func NewCompletionPercentRule(config rule.RuleConfig) (*CompletionPercentRule, error) {
	percent := config.GetFloat("percent", DefaultCompletionPercent)
	if percent <= 0 || percent > 100 {
		return nil, fmt.Errorf("percent must be in (0, 100], got %v", percent)
	}
	return &CompletionPercentRule{config: config, percent: percent}, nil
}

func (r *CompletionPercentRule) ID() string              { return r.config.ID }
func (r *CompletionPercentRule) Name() string            { return "Catalog Completion" }
func (r *CompletionPercentRule) Config() rule.RuleConfig { return r.config }

// Evaluate recomputes the share against the catalog size at call time.
func (r *CompletionPercentRule) Evaluate(ctx context.Context, in rule.Input) (bool, *rule.Trigger, error) {
	if in.State == nil || in.Catalog == nil || in.Catalog.Len() == 0 {
		return false, nil, nil
	}

	completed := 0
	for _, id := range in.State.CompletedLessons {
		if in.Catalog.HasLesson(id) {
			completed++
		}
	}

	share := float64(completed) * 100 / float64(in.Catalog.Len())
	logrus.Debugf("completion share %.1f%%, threshold %.1f%%", share, r.percent)
	if share < r.percent {
		return false, nil, nil
	}
	return true, rule.NewTrigger(r, fmt.Sprintf("completed %.0f%% of lessons", share), in.Now), nil
}

// LessonsCompletedTodayRule is met when at least count completions fall on
// the calendar day of Input.Now.
type LessonsCompletedTodayRule struct {
	config rule.RuleConfig
	count  int
}

// NewLessonsCompletedTodayRule creates a same-day completion rule.
func NewLessonsCompletedTodayRule(config rule.RuleConfig) (*LessonsCompletedTodayRule, error) {
	count := config.GetInt("count", DefaultLessonCount)
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}
	return &LessonsCompletedTodayRule{config: config, count: count}, nil
}

func (r *LessonsCompletedTodayRule) ID() string              { return r.config.ID }
func (r *LessonsCompletedTodayRule) Name() string            { return "Lessons Completed Today" }
func (r *LessonsCompletedTodayRule) Config() rule.RuleConfig { return r.config }

// Evaluate counts completion dates on the current day.
func (r *LessonsCompletedTodayRule) Evaluate(ctx context.Context, in rule.Input) (bool, *rule.Trigger, error) {
	if in.State == nil || len(in.State.CompletionDates) == 0 || in.Now.IsZero() {
		return false, nil, nil
	}
	today := progress.LessonsCompletedOn(in.State, in.Now)
	if today < r.count {
		return false, nil, nil
	}
	return true, rule.NewTrigger(r, fmt.Sprintf("completed %d lessons today", today), in.Now), nil
}

// SpecificLessonsRule is met once every listed lesson is completed.
// A listed lesson missing from the catalog makes it unreachable.
type SpecificLessonsRule struct {
	config  rule.RuleConfig
	lessons []string
}

// NewSpecificLessonsRule creates a lesson set rule.
func NewSpecificLessonsRule(config rule.RuleConfig) (*SpecificLessonsRule, error) {
	lessons := config.GetStringSlice("lessons")
	if len(lessons) == 0 {
		return nil, fmt.Errorf("lessons must list at least one lesson id")
	}
	return &SpecificLessonsRule{config: config, lessons: lessons}, nil
}

func (r *SpecificLessonsRule) ID() string              { return r.config.ID }
func (r *SpecificLessonsRule) Name() string            { return "Specific Lessons" }
func (r *SpecificLessonsRule) Config() rule.RuleConfig { return r.config }

// Evaluate checks that every listed lesson exists and is completed.
func (r *SpecificLessonsRule) Evaluate(ctx context.Context, in rule.Input) (bool, *rule.Trigger, error) {
	if in.State == nil || in.Catalog == nil {
		return false, nil, nil
	}
	for _, id := range r.lessons {
		if !in.Catalog.HasLesson(id) {
			logrus.Debugf("rule %s references unknown lesson %s", r.ID(), id)
			return false, nil, nil
		}
		if !progress.HasCompleted(in.State, id) {
			return false, nil, nil
		}
	}
	return true, rule.NewTrigger(r, fmt.Sprintf("completed lessons %v", r.lessons), in.Now), nil
}
