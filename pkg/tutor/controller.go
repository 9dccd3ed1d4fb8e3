// Package tutor owns the single active progress record and exposes every
// operation the tutorial UI performs on it.
package tutor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/codequest-labs/ai-tutorial-progress/pkg/catalog"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/common"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/metrics"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/notify"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/progress"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/rule"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/store"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/streak"
	"github.com/sirupsen/logrus"
)

// Labels for the coins credited metric.
const (
	sourceManual      = "manual"
	sourceLesson      = "lesson"
	sourceAchievement = "achievement"
	sourceLogin       = "login"
)

// StorageFailureMessage is shown when a write could not be persisted.
const StorageFailureMessage = "progress may not be saved"

var themes = map[string]bool{"light": true, "dark": true}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithNotifier sets where events are delivered.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// Controller serializes every read-modify-persist cycle on the progress record.
type Controller struct {
	mu       sync.Mutex
	state    *progress.State
	repo     *progress.Repository
	catalog  *catalog.Catalog
	engine   *rule.Engine
	notifier notify.Notifier
	now      func() time.Time

	// loaded is false when the stored record could not be read; saves are
	// then skipped so the unread record is not replaced.
	loaded   bool
	retained retained
}

// retained holds stored ids the active catalogs do not define. They take no
// part in unlocking, counts or rewards but are written back on every save.
type retained struct {
	lessons       []string
	dates         map[string]time.Time
	achievements  []string
	currentLesson string
}

// New loads the stored record and returns a controller that owns it.
// Ids unknown to cat are set aside and kept in the stored record.
func New(ctx context.Context, repo *progress.Repository, cat *catalog.Catalog, engine *rule.Engine, opts ...Option) *Controller {
	c := &Controller{
		repo:     repo,
		catalog:  cat,
		engine:   engine,
		notifier: notify.NewBus(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	state, loaded := repo.Load(ctx)
	c.loaded = loaded
	c.state, c.retained = c.sanitize(state)
	c.updateGauges()
	return c
}

// StorageFailureNotifier turns swallowed storage failures into user-visible events.
func StorageFailureNotifier(n notify.Notifier, now func() time.Time) store.FailureHandler {
	return func(op, key string, err error) {
		n.Notify(notify.NewEvent(notify.TypeStorageFailure, now(), StorageFailureMessage))
	}
}

// GetState returns a copy of the current record.
func (c *Controller) GetState() *progress.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return progress.Clone(c.state)
}

// CreditCoins adds amount coins.
func (c *Controller) CreditCoins(ctx context.Context, amount int) (*Result, error) {
	scope := common.NewScope(ctx, "tutor.CreditCoins")
	defer scope.Finish()
	scope.SetAttributes("amount", amount)

	if amount <= 0 {
		err := fmt.Errorf("failed to credit coins: %w: %d", ErrInvalidAmount, amount)
		scope.TraceError(err)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	res := c.newResult()
	c.credit(res, amount, sourceManual)
	c.runRewards(scope, res)
	return c.commit(scope, res), nil
}

// DebitCoins removes up to amount coins; the balance never drops below zero.
func (c *Controller) DebitCoins(ctx context.Context, amount int) (*Result, error) {
	scope := common.NewScope(ctx, "tutor.DebitCoins")
	defer scope.Finish()
	scope.SetAttributes("amount", amount)

	if amount <= 0 {
		err := fmt.Errorf("failed to debit coins: %w: %d", ErrInvalidAmount, amount)
		scope.TraceError(err)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	res := c.newResult()
	debited, _ := progress.DebitCoins(c.state, amount)
	res.CoinsDebited = debited
	if debited > 0 {
		metrics.CoinsDebited.Add(float64(debited))
		event := notify.NewEvent(notify.TypeCoinsSpent, c.now(), fmt.Sprintf("-%d coins", debited))
		event.Amount = debited
		c.emit(event)
	}
	return c.commit(scope, res), nil
}

// MarkLessonCompleted completes a lesson without checking a submission.
// Completing an already completed lesson is a no-op.
func (c *Controller) MarkLessonCompleted(ctx context.Context, lessonID string) (*Result, error) {
	scope := common.NewScope(ctx, "tutor.MarkLessonCompleted")
	defer scope.Finish()
	scope.SetAttributes("lesson", lessonID)

	c.mu.Lock()
	defer c.mu.Unlock()

	lesson, err := c.lookupLesson(lessonID)
	if err != nil {
		scope.TraceError(err)
		return nil, err
	}

	res, err := c.completeLesson(scope, lesson)
	if err != nil {
		scope.TraceError(err)
	}
	return res, err
}

// SubmitLesson checks source against the lesson's checker and completes
// the lesson when it passes. The source is only inspected as text.
func (c *Controller) SubmitLesson(ctx context.Context, lessonID, source string) (*Result, error) {
	scope := common.NewScope(ctx, "tutor.SubmitLesson")
	defer scope.Finish()
	scope.SetAttributes("lesson", lessonID)

	c.mu.Lock()
	defer c.mu.Unlock()

	lesson, err := c.lookupLesson(lessonID)
	if err != nil {
		scope.TraceError(err)
		return nil, err
	}

	if err := c.checkUnlocked(lesson); err != nil {
		scope.TraceError(err)
		return nil, err
	}

	if !lesson.Checker.Check(source) {
		err := fmt.Errorf("failed to submit lesson %s: %w", lesson.ID, ErrCheckFailed)
		scope.TraceError(err)
		return nil, err
	}
	scope.TraceEvent("check passed")

	res, err := c.completeLesson(scope, lesson)
	if err != nil {
		scope.TraceError(err)
	}
	return res, err
}

// IsLessonUnlocked reports whether the learner may work on the lesson.
func (c *Controller) IsLessonUnlocked(lessonID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	lesson, ok := c.catalog.Lesson(lessonID)
	return ok && c.checkUnlocked(lesson) == nil
}

// ResetProgress replaces the record with defaults, optionally keeping the username.
func (c *Controller) ResetProgress(ctx context.Context, keepUsername bool) *Result {
	scope := common.NewScope(ctx, "tutor.ResetProgress")
	defer scope.Finish()
	scope.SetAttributes("keep_username", keepUsername)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = progress.ResetState(c.state, keepUsername)
	c.retained = retained{}
	c.loaded = true
	scope.Log.Infof("progress reset (keep username: %v)", keepUsername)
	return c.commit(scope, c.newResult())
}

// UpdateLoginStreak counts a login on today and credits the login reward.
// A second login on the same day changes nothing.
func (c *Controller) UpdateLoginStreak(ctx context.Context, today time.Time) *Result {
	scope := common.NewScope(ctx, "tutor.UpdateLoginStreak")
	defer scope.Finish()

	c.mu.Lock()
	defer c.mu.Unlock()

	res := c.newResult()
	transition := streak.Update(c.state, today)
	res.Streak = &transition
	scope.SetAttributes("streak", transition.Current)

	if !transition.Changed() {
		res.Outcome = OutcomeNoop
		res.State = progress.Clone(c.state)
		return res
	}

	event := notify.NewEvent(notify.TypeStreakUpdated, c.now(),
		fmt.Sprintf("Login streak: %d day(s)", transition.Current))
	event.Amount = transition.Current
	c.emit(event)

	c.credit(res, transition.Reward, sourceLogin)
	c.runRewards(scope, res)
	return c.commit(scope, res)
}

// SetUsername changes the display name.
func (c *Controller) SetUsername(ctx context.Context, name string) (*Result, error) {
	scope := common.NewScope(ctx, "tutor.SetUsername")
	defer scope.Finish()

	name = strings.TrimSpace(name)
	if name == "" {
		scope.TraceError(ErrInvalidUsername)
		return nil, fmt.Errorf("failed to set username: %w", ErrInvalidUsername)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Username == name {
		return c.noop(), nil
	}
	c.state.Username = name
	return c.commit(scope, c.newResult()), nil
}

// SetCurrentLesson records the lesson the learner is viewing.
func (c *Controller) SetCurrentLesson(ctx context.Context, lessonID string) (*Result, error) {
	scope := common.NewScope(ctx, "tutor.SetCurrentLesson")
	defer scope.Finish()
	scope.SetAttributes("lesson", lessonID)

	c.mu.Lock()
	defer c.mu.Unlock()

	lesson, err := c.lookupLesson(lessonID)
	if err != nil {
		scope.TraceError(err)
		return nil, err
	}
	if err := c.checkUnlocked(lesson); err != nil {
		scope.TraceError(err)
		return nil, err
	}

	if c.state.CurrentLessonID == lesson.ID {
		return c.noop(), nil
	}
	c.state.CurrentLessonID = lesson.ID
	return c.commit(scope, c.newResult()), nil
}

// SetPreferences replaces the UI preferences.
func (c *Controller) SetPreferences(ctx context.Context, prefs progress.Preferences) (*Result, error) {
	scope := common.NewScope(ctx, "tutor.SetPreferences")
	defer scope.Finish()

	c.mu.Lock()
	defer c.mu.Unlock()

	// A stored theme written by another client is kept as long as it is not changed.
	if prefs.Theme != c.state.Preferences.Theme && !themes[prefs.Theme] {
		err := fmt.Errorf("failed to set preferences: %w: %q", ErrInvalidTheme, prefs.Theme)
		scope.TraceError(err)
		return nil, err
	}

	if c.state.Preferences == prefs {
		return c.noop(), nil
	}
	c.state.Preferences = prefs
	return c.commit(scope, c.newResult()), nil
}

// RunRewardPass evaluates achievements without any other change, saving
// only when something was unlocked.
func (c *Controller) RunRewardPass(ctx context.Context) *Result {
	scope := common.NewScope(ctx, "tutor.RunRewardPass")
	defer scope.Finish()

	c.mu.Lock()
	defer c.mu.Unlock()

	res := c.newResult()
	c.runRewards(scope, res)
	if len(res.Unlocked) == 0 {
		return c.noop()
	}
	return c.commit(scope, res)
}

// Export returns the record in its stored JSON form.
func (c *Controller) Export() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := progress.Encode(c.persisted())
	if err != nil {
		return nil, fmt.Errorf("failed to export progress: %w", err)
	}
	return data, nil
}

// Import replaces the record with data, merged over defaults like a stored
// record. Ids unknown to the catalog are set aside like on load.
func (c *Controller) Import(ctx context.Context, data []byte) (*Result, error) {
	scope := common.NewScope(ctx, "tutor.Import")
	defer scope.Finish()

	imported, err := progress.Decode(data)
	if err != nil {
		err = fmt.Errorf("failed to import progress: %w: %v", ErrInvalidImport, err)
		scope.TraceError(err)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state, c.retained = c.sanitize(imported)
	c.loaded = true
	res := c.newResult()
	c.runRewards(scope, res)
	return c.commit(scope, res), nil
}

// Summary returns an overview of the current progress.
func (c *Controller) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Summary{
		Username:          c.state.Username,
		Coins:             c.state.Coins,
		Streak:            c.state.Streak,
		CompletedLessons:  len(c.state.CompletedLessons),
		TotalLessons:      c.catalog.Len(),
		Achievements:      len(c.state.Achievements),
		TotalAchievements: c.enabledAchievements(),
		CurrentLessonID:   c.state.CurrentLessonID,
		LastActive:        c.state.LastActive,
	}
	if s.TotalLessons > 0 {
		s.PercentComplete = float64(s.CompletedLessons) * 100 / float64(s.TotalLessons)
	}
	for _, lesson := range c.catalog.Lessons() {
		if !progress.HasCompleted(c.state, lesson.ID) {
			s.NextLessonID = lesson.ID
			break
		}
	}
	return s
}

// RecentActivity returns up to n completed lessons, most recent first.
// Lessons without a recorded date keep their completion order at the end.
func (c *Controller) RecentActivity(n int) []Activity {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := progress.RecentLessons(c.state, 0)
	activity := make([]Activity, 0, len(ids))
	for _, id := range ids {
		item := Activity{LessonID: id, CompletedAt: c.state.CompletionDates[id]}
		if lesson, ok := c.catalog.Lesson(id); ok {
			item.Title = lesson.Title
		}
		activity = append(activity, item)
	}

	sort.SliceStable(activity, func(i, j int) bool {
		return activity[i].CompletedAt.After(activity[j].CompletedAt)
	})

	if n > 0 && n < len(activity) {
		activity = activity[:n]
	}
	return activity
}

// Lessons lists the catalog with the learner's status per lesson.
func (c *Controller) Lessons() []LessonStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	lessons := c.catalog.Lessons()
	out := make([]LessonStatus, 0, len(lessons))
	for _, lesson := range lessons {
		out = append(out, LessonStatus{
			ID:            lesson.ID,
			Title:         lesson.Title,
			RequiredCoins: lesson.RequiredCoins,
			Reward:        lesson.CoinReward(),
			Unlocked:      c.checkUnlocked(lesson) == nil,
			Completed:     progress.HasCompleted(c.state, lesson.ID),
		})
	}
	return out
}

// Achievements lists the achievement catalog with the learner's status.
func (c *Controller) Achievements() []AchievementStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	configs := c.catalog.Achievements()
	out := make([]AchievementStatus, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, AchievementStatus{
			ID:          cfg.ID,
			Name:        cfg.Name,
			Description: cfg.Description,
			Reward:      cfg.Reward,
			Unlocked:    progress.HasAchievement(c.state, cfg.ID),
		})
	}
	return out
}

func (c *Controller) completeLesson(scope *common.Scope, lesson *catalog.Lesson) (*Result, error) {
	if progress.HasCompleted(c.state, lesson.ID) {
		scope.Log.Debugf("lesson %s already completed", lesson.ID)
		return c.noop(), nil
	}
	if err := c.checkUnlocked(lesson); err != nil {
		return nil, err
	}

	res := c.newResult()
	progress.CompleteLesson(c.state, lesson.ID, c.now())
	res.NewlyCompleted = true
	metrics.LessonsCompleted.Inc()

	event := notify.NewEvent(notify.TypeLessonCompleted, c.now(), fmt.Sprintf("Lesson completed: %s", lesson.Title))
	event.LessonID = lesson.ID
	c.emit(event)

	c.credit(res, lesson.CoinReward(), sourceLesson)
	c.runRewards(scope, res)
	return c.commit(scope, res), nil
}

func (c *Controller) lookupLesson(lessonID string) (*catalog.Lesson, error) {
	lesson, ok := c.catalog.Lesson(lessonID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLesson, lessonID)
	}
	return lesson, nil
}

// checkUnlocked applies the coin threshold. Completed lessons stay open.
func (c *Controller) checkUnlocked(lesson *catalog.Lesson) error {
	if progress.HasCompleted(c.state, lesson.ID) || c.state.Coins >= lesson.RequiredCoins {
		return nil
	}
	return fmt.Errorf("%w: %s requires %d coins, have %d",
		ErrLessonLocked, lesson.ID, lesson.RequiredCoins, c.state.Coins)
}

func (c *Controller) credit(res *Result, amount int, source string) {
	if !progress.CreditCoins(c.state, amount) {
		return
	}
	res.CoinsAwarded += amount
	metrics.CoinsCredited.WithLabelValues(source).Add(float64(amount))

	event := notify.NewEvent(notify.TypeCoinsAwarded, c.now(), fmt.Sprintf("+%d coins", amount))
	event.Amount = amount
	c.emit(event)
}

func (c *Controller) runRewards(scope *common.Scope, res *Result) {
	child := scope.NewChildScope("tutor.rewardPass")
	defer child.Finish()

	in := rule.Input{State: c.state, Catalog: c.catalog, Now: c.now()}
	c.engine.Run(child.Ctx, in, func(trigger *rule.Trigger) {
		if !progress.UnlockAchievement(c.state, trigger.RuleID) {
			return
		}
		res.Unlocked = append(res.Unlocked, trigger.RuleID)
		metrics.AchievementsUnlocked.WithLabelValues(trigger.RuleID).Inc()
		child.Log.Infof("achievement %s unlocked: %s", trigger.RuleID, trigger.Reason)

		event := notify.NewEvent(notify.TypeAchievementUnlocked, c.now(),
			fmt.Sprintf("Achievement unlocked: %s", trigger.Name))
		event.AchievementID = trigger.RuleID
		event.Amount = trigger.Reward
		c.emit(event)

		c.credit(res, trigger.Reward, sourceAchievement)
	})
	if len(res.Unlocked) > 0 {
		child.SetAttributes("unlocked", res.Unlocked)
	}
}

func (c *Controller) commit(scope *common.Scope, res *Result) *Result {
	if c.loaded {
		stored := c.persisted()
		res.Saved = c.repo.Save(scope.Ctx, stored, c.now())
		c.state.LastActive = stored.LastActive
	} else {
		scope.TraceEvent("save skipped: stored progress was never read")
		c.emit(notify.NewEvent(notify.TypeStorageFailure, c.now(), StorageFailureMessage))
	}
	if !res.Saved {
		scope.TraceEvent("save failed")
		scope.Log.Warnf("progress kept in memory only")
	}
	c.updateGauges()
	res.State = progress.Clone(c.state)
	return res
}

func (c *Controller) newResult() *Result {
	return &Result{Outcome: OutcomeApplied}
}

func (c *Controller) noop() *Result {
	return &Result{Outcome: OutcomeNoop, State: progress.Clone(c.state)}
}

func (c *Controller) emit(event notify.Event) {
	if c.notifier != nil {
		c.notifier.Notify(event)
	}
}

func (c *Controller) updateGauges() {
	metrics.CoinBalance.Set(float64(c.state.Coins))
	metrics.LoginStreak.Set(float64(c.state.Streak))
}

// persisted returns the record to store: the active state plus retained ids.
func (c *Controller) persisted() *progress.State {
	out := progress.Clone(c.state)
	for _, id := range c.retained.lessons {
		if !progress.HasCompleted(out, id) {
			out.CompletedLessons = append(out.CompletedLessons, id)
		}
	}
	for id, at := range c.retained.dates {
		if _, ok := out.CompletionDates[id]; !ok {
			out.CompletionDates[id] = at
		}
	}
	for _, id := range c.retained.achievements {
		if !progress.HasAchievement(out, id) {
			out.Achievements = append(out.Achievements, id)
		}
	}
	if out.CurrentLessonID == "" {
		out.CurrentLessonID = c.retained.currentLesson
	}
	return out
}

func (c *Controller) enabledAchievements() int {
	n := 0
	for _, cfg := range c.catalog.Achievements() {
		if cfg.Enabled {
			n++
		}
	}
	return n
}

// sanitize moves ids the catalogs do not define out of state.
func (c *Controller) sanitize(state *progress.State) (*progress.State, retained) {
	var kept retained

	lessons := state.CompletedLessons[:0]
	for _, id := range state.CompletedLessons {
		if c.catalog.HasLesson(id) {
			lessons = append(lessons, id)
			continue
		}
		logrus.Warnf("setting aside completed lesson %s: not in catalog", id)
		kept.lessons = append(kept.lessons, id)
	}
	state.CompletedLessons = lessons

	for id, at := range state.CompletionDates {
		if c.catalog.HasLesson(id) {
			continue
		}
		if kept.dates == nil {
			kept.dates = make(map[string]time.Time)
		}
		kept.dates[id] = at
		delete(state.CompletionDates, id)
	}

	achievements := state.Achievements[:0]
	for _, id := range state.Achievements {
		if c.catalog.HasAchievement(id) {
			achievements = append(achievements, id)
			continue
		}
		logrus.Warnf("setting aside achievement %s: not in catalog", id)
		kept.achievements = append(kept.achievements, id)
	}
	state.Achievements = achievements

	if state.CurrentLessonID != "" && !c.catalog.HasLesson(state.CurrentLessonID) {
		logrus.Warnf("setting aside current lesson %s: not in catalog", state.CurrentLessonID)
		kept.currentLesson = state.CurrentLessonID
		state.CurrentLessonID = ""
	}
	return state, kept
}
