// Package timer tracks a breastfeeding session and turns it into a feeding
// record when stopped.
package timer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rcliao/babylog/internal/model"
)

// ErrTimerLive is returned by New while another Timer has not been closed.
var ErrTimerLive = errors.New("timer: another timer is live")

var (
	liveMu sync.Mutex
	live   bool
)

type State int

const (
	Idle State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	}
	return "idle"
}

// RecordAdder persists the finished session. store.Store implements it.
type RecordAdder interface {
	AddRecord(ctx context.Context, profileID string, rec *model.Record) (*model.Record, error)
}

// SessionMarker publishes the live session so other processes can see it.
// store.Store implements it.
type SessionMarker interface {
	MarkSession(ctx context.Context, sess model.Session) error
	ClearSession(ctx context.Context, c model.Category) error
}

type nopMarker struct{}

func (nopMarker) MarkSession(context.Context, model.Session) error   { return nil }
func (nopMarker) ClearSession(context.Context, model.Category) error { return nil }

// Observer is told about session lifecycle events. metrics.Collector
// implements it.
type Observer interface {
	TimerStarted()
	TimerStopped(d time.Duration)
	TimerCancelled()
	TickPanicked()
}

type nopObserver struct{}

func (nopObserver) TimerStarted()              {}
func (nopObserver) TimerStopped(time.Duration) {}
func (nopObserver) TimerCancelled()            {}
func (nopObserver) TickPanicked()              {}

// Snapshot is a point-in-time view of the session.
type Snapshot struct {
	State     State         `json:"state"`
	ProfileID string        `json:"profile_id,omitempty"`
	Side      model.Side    `json:"side,omitempty"`
	StartedAt time.Time     `json:"started_at,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Timer is the feeding session controller. Only one Timer may be live at a
// time; Close releases it.
type Timer struct {
	store    RecordAdder
	clock    clockwork.Clock
	logger   *slog.Logger
	observer Observer
	marker   SessionMarker
	onTick   func(time.Duration)
	interval time.Duration

	mu          sync.Mutex
	closed      bool
	state       State
	profileID   string
	side        model.Side
	startedAt   time.Time
	resumedAt   time.Time
	accumulated time.Duration
	gen         uint64
	stopTicks   chan struct{}
}

type Option func(*Timer)

func WithClock(c clockwork.Clock) Option {
	return func(t *Timer) {
		t.clock = c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Timer) {
		t.logger = l
	}
}

func WithObserver(o Observer) Option {
	return func(t *Timer) {
		t.observer = o
	}
}

// WithSessionMarker publishes the session on Start and withdraws it when
// the session ends.
func WithSessionMarker(m SessionMarker) Option {
	return func(t *Timer) {
		t.marker = m
	}
}

// WithTickFunc sets the display callback invoked while running with the
// elapsed duration.
func WithTickFunc(fn func(time.Duration)) Option {
	return func(t *Timer) {
		t.onTick = fn
	}
}

// WithTickInterval overrides the one second tick cadence.
func WithTickInterval(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// New claims the live timer slot.
func New(store RecordAdder, opts ...Option) (*Timer, error) {
	liveMu.Lock()
	defer liveMu.Unlock()
	if live {
		return nil, ErrTimerLive
	}

	t := &Timer{
		store:    store,
		clock:    clockwork.NewRealClock(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer: nopObserver{},
		marker:   nopMarker{},
		interval: time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	live = true
	return t, nil
}

// Start begins a session on side for the profile.
func (t *Timer) Start(profileID string, side model.Side) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkOpen(); err != nil {
		return err
	}
	if t.state != Idle {
		return model.InvalidState("timer already running")
	}
	if profileID == "" {
		return model.Invalid("profile id is required")
	}
	if err := validSide(side); err != nil {
		return err
	}

	now := t.clock.Now()
	t.state = Running
	t.profileID = profileID
	t.side = side
	t.startedAt = now
	t.resumedAt = now
	t.accumulated = 0
	t.startTicksLocked()
	t.markLocked()

	t.observer.TimerStarted()
	t.logger.Debug("timer started", "profile_id", profileID, "side", side)
	return nil
}

// Pause folds the running interval into the accumulated total.
func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Running {
		return model.InvalidState("timer is %s, not running", t.state)
	}
	t.accumulated += t.clock.Since(t.resumedAt)
	t.state = Paused
	t.stopTicksLocked()
	t.markLocked()
	t.logger.Debug("timer paused", "elapsed", t.accumulated)
	return nil
}

func (t *Timer) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Paused {
		return model.InvalidState("timer is %s, not paused", t.state)
	}
	t.resumedAt = t.clock.Now()
	t.state = Running
	t.startTicksLocked()
	t.markLocked()
	t.logger.Debug("timer resumed", "elapsed", t.accumulated)
	return nil
}

// SwitchSide changes the side without interrupting timing. Allowed while
// running or paused.
func (t *Timer) SwitchSide(side model.Side) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == Idle {
		return model.InvalidState("no active timer")
	}
	if err := validSide(side); err != nil {
		return err
	}
	t.side = side
	t.markLocked()
	t.logger.Debug("timer side switched", "side", side)
	return nil
}

// Stop ends the session and persists it as a breast feeding record timed at
// the session start. If persisting fails the session is left as it was.
func (t *Timer) Stop(ctx context.Context) (*model.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == Idle {
		return nil, model.InvalidState("no active timer")
	}

	elapsed := t.elapsedLocked()
	rec := model.NewRecord(model.CategoryFeeding)
	rec.Time = t.startedAt
	rec.Feeding.Subtype = model.FeedingBreast
	rec.Feeding.Side = t.side
	rec.Feeding.Duration = int(elapsed / time.Second)

	saved, err := t.store.AddRecord(ctx, t.profileID, rec)
	if err != nil {
		t.logger.Error("timer stop failed", "error", err)
		return nil, err
	}

	t.resetLocked()
	t.clearMarkLocked()
	t.observer.TimerStopped(elapsed)
	t.logger.Debug("timer stopped", "record_id", saved.ID, "duration", saved.Feeding.Duration)
	return saved, nil
}

// Cancel discards the session without creating a record.
func (t *Timer) Cancel() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == Idle {
		return model.InvalidState("no active timer")
	}
	t.resetLocked()
	t.clearMarkLocked()
	t.observer.TimerCancelled()
	t.logger.Debug("timer cancelled")
	return nil
}

func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == Idle {
		return Snapshot{State: Idle}
	}
	return Snapshot{
		State:     t.state,
		ProfileID: t.profileID,
		Side:      t.side,
		StartedAt: t.startedAt,
		Elapsed:   t.elapsedLocked(),
	}
}

// Active reports whether a session is running or paused.
func (t *Timer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state != Idle
}

// Close discards any session and frees the live slot. Further Starts fail.
func (t *Timer) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	if t.state != Idle {
		t.resetLocked()
		t.clearMarkLocked()
		t.observer.TimerCancelled()
	}
	t.closed = true
	t.mu.Unlock()

	liveMu.Lock()
	live = false
	liveMu.Unlock()
	return nil
}

func (t *Timer) checkOpen() error {
	if t.closed {
		return model.InvalidState("timer is closed")
	}
	return nil
}

func (t *Timer) elapsedLocked() time.Duration {
	if t.state == Running {
		return t.accumulated + t.clock.Since(t.resumedAt)
	}
	return t.accumulated
}

func (t *Timer) resetLocked() {
	t.stopTicksLocked()
	t.state = Idle
	t.profileID = ""
	t.side = ""
	t.startedAt = time.Time{}
	t.resumedAt = time.Time{}
	t.accumulated = 0
}

// Marker failures are logged and never fail the session.
func (t *Timer) markLocked() {
	err := t.marker.MarkSession(context.Background(), model.Session{
		Category:  model.CategoryFeeding,
		ProfileID: t.profileID,
		Side:      t.side,
		StartedAt: t.startedAt,
	})
	if err != nil {
		t.logger.Warn("publish timer session failed", "error", err)
	}
}

func (t *Timer) clearMarkLocked() {
	if err := t.marker.ClearSession(context.Background(), model.CategoryFeeding); err != nil {
		t.logger.Warn("clear timer session failed", "error", err)
	}
}

func validSide(side model.Side) error {
	switch side {
	case model.SideLeft, model.SideRight, model.SideBoth:
		return nil
	}
	return model.Invalid("unknown side %q (valid: left, right, both)", side)
}
