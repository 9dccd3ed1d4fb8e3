package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/codequest-labs/ai-tutorial-progress/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned by a Backend when the key holds no value.
var ErrNotFound = errors.New("key not found")

// Backend is a raw key-value string store.
// Implementations return ErrNotFound from Get when a key is absent.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// FailureHandler is called whenever the adapter swallows a storage failure.
type FailureHandler func(op, key string, err error)

// Adapter wraps a Backend so callers never see storage errors.
// Every failure is logged, counted and reported to the failure handler,
// and the caller continues with whatever it holds in memory.
type Adapter struct {
	backend   Backend
	onFailure FailureHandler
}

// NewAdapter creates a new adapter over the given backend.
func NewAdapter(backend Backend) *Adapter {
	return &Adapter{backend: backend}
}

// OnFailure registers the handler invoked on swallowed failures.
func (a *Adapter) OnFailure(handler FailureHandler) {
	a.onFailure = handler
}

// LoadStatus tells what a Load found under a key.
type LoadStatus int

const (
	// StatusFound means the key held a value.
	StatusFound LoadStatus = iota
	// StatusMissing means the backend answered that the key is absent.
	StatusMissing
	// StatusFailed means the backend could not be read; the key may still
	// hold a value and must not be overwritten on that assumption.
	StatusFailed
)

// Load returns the value stored under key and what the read found.
func (a *Adapter) Load(ctx context.Context, key string) (string, LoadStatus) {
	value, err := a.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", StatusMissing
	}
	if err != nil {
		a.fail("load", key, err)
		return "", StatusFailed
	}
	return value, StatusFound
}

// Save writes value under key and reports whether the write succeeded.
func (a *Adapter) Save(ctx context.Context, key, value string) bool {
	if err := a.backend.Set(ctx, key, value); err != nil {
		a.fail("save", key, err)
		return false
	}
	return true
}

// Remove deletes key and reports whether the delete succeeded.
func (a *Adapter) Remove(ctx context.Context, key string) bool {
	if err := a.backend.Delete(ctx, key); err != nil {
		a.fail("remove", key, err)
		return false
	}
	return true
}

// SaveJSON encodes v and writes it under key.
func (a *Adapter) SaveJSON(ctx context.Context, key string, v interface{}) bool {
	data, err := json.Marshal(v)
	if err != nil {
		a.fail("encode", key, fmt.Errorf("failed to marshal value: %w", err))
		return false
	}
	return a.Save(ctx, key, string(data))
}

func (a *Adapter) fail(op, key string, err error) {
	logrus.Errorf("storage %s failed for key %s: %v", op, key, err)
	metrics.StorageFailures.WithLabelValues(op).Inc()
	if a.onFailure != nil {
		a.onFailure(op, key, err)
	}
}
