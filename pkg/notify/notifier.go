// Package notify delivers progress notifications to whoever renders them.
package notify

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Notifier receives events. Implementations must not block for long; they
// run inside the controller's critical section.
type Notifier interface {
	Notify(event Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(event Event)

// Notify calls f(event).
func (f NotifierFunc) Notify(event Event) {
	f(event)
}

// Bus fans events out to its subscribers in subscription order.
type Bus struct {
	mu          sync.RWMutex
	subscribers []Notifier
}

// NewBus creates a bus with the given initial subscribers.
func NewBus(subscribers ...Notifier) *Bus {
	return &Bus{subscribers: subscribers}
}

// Subscribe adds a subscriber.
func (b *Bus) Subscribe(n Notifier) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, n)
}

// Notify delivers event to every subscriber. A panicking subscriber is
// logged and does not stop delivery to the others.
func (b *Bus) Notify(event Event) {
	b.mu.RLock()
	subscribers := make([]Notifier, len(b.subscribers))
	copy(subscribers, b.subscribers)
	b.mu.RUnlock()

	for _, n := range subscribers {
		deliver(n, event)
	}
}

func deliver(n Notifier, event Event) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("notifier panicked on %s event: %v", event.Type, r)
		}
	}()
	n.Notify(event)
}

// LogNotifier writes events to the logger.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(event Event) {
	entry := logrus.WithFields(logrus.Fields{
		"event":  event.Type,
		"amount": event.Amount,
	})
	if event.LessonID != "" {
		entry = entry.WithField("lesson", event.LessonID)
	}
	if event.AchievementID != "" {
		entry = entry.WithField("achievement", event.AchievementID)
	}

	if event.Type == TypeStorageFailure {
		entry.Warn(event.Message)
		return
	}
	entry.Info(event.Message)
}

// Recorder keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Notify implements Notifier.
func (r *Recorder) Notify(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Drain returns the recorded events and forgets them.
func (r *Recorder) Drain() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

// OfType returns the recorded events of the given type.
func (r *Recorder) OfType(eventType Type) []Event {
	var out []Event
	for _, event := range r.Events() {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
