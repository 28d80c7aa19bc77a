// Package store provides the baby-log record store over a key-value backend.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"

	"github.com/rcliao/babylog/internal/model"
)

// Fixed logical keys in the backend.
const (
	KeyProfiles      = "profiles"
	KeyActiveProfile = "active_profile"
	KeySettings      = "settings"
	recordsKeyPrefix = "records:"
)

// RecordsKey is the backend key holding one category's records.
func RecordsKey(c model.Category) string {
	return recordsKeyPrefix + string(c)
}

// Backend is the synchronous key-value contract the store persists through.
type Backend interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set writes a single key.
	Set(ctx context.Context, key string, value []byte) error

	// SetAll writes every key or none of them.
	SetAll(ctx context.Context, values map[string][]byte) error

	// Keys lists every stored key.
	Keys(ctx context.Context) ([]string, error)

	// Close closes the backend.
	Close() error
}

// Observer is notified about store mutations. metrics.Collector implements it.
type Observer interface {
	RecordAdded(category string)
	RecordUpdated(category string)
	RecordDeleted(category string)
	StorageFailure(op string)
}

type nopObserver struct{}

func (nopObserver) RecordAdded(string)    {}
func (nopObserver) RecordUpdated(string)  {}
func (nopObserver) RecordDeleted(string)  {}
func (nopObserver) StorageFailure(string) {}

// Store keeps profiles, records and settings in a Backend. Every mutation
// rewrites the affected collection in one backend call.
type Store struct {
	backend  Backend
	logger   *slog.Logger
	clock    clockwork.Clock
	observer Observer

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

func WithClock(c clockwork.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observer = o
	}
}

// New creates a Store on top of backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:    clockwork.NewRealClock(),
		observer: nopObserver{},
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.clock.Now()
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// newID must be called with s.mu held; the monotonic entropy is not safe for
// concurrent use.
func (s *Store) newID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), s.entropy).String()
}

func (s *Store) getJSON(ctx context.Context, key string, v any) (bool, error) {
	data, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.observer.StorageFailure("get")
		return false, model.StorageFailure(fmt.Errorf("get %s: %w", key, err))
	}
	if !ok || len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, model.StorageFailure(fmt.Errorf("decode %s: %w", key, err))
	}
	return true, nil
}

func (s *Store) setAll(ctx context.Context, op string, values map[string]any) error {
	encoded := make(map[string][]byte, len(values))
	for k, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return model.StorageFailure(fmt.Errorf("encode %s: %w", k, err))
		}
		encoded[k] = b
	}
	var err error
	if len(encoded) == 1 {
		for k, v := range encoded {
			err = s.backend.Set(ctx, k, v)
		}
	} else {
		err = s.backend.SetAll(ctx, encoded)
	}
	if err != nil {
		s.observer.StorageFailure(op)
		s.logger.Error("storage write failed", "op", op, "error", err)
		return model.StorageFailure(fmt.Errorf("%s: %w", op, err))
	}
	return nil
}
