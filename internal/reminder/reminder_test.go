package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/babylog/internal/aggregate"
	"github.com/rcliao/babylog/internal/model"
	"github.com/rcliao/babylog/internal/store"
)

type sink struct {
	mu  sync.Mutex
	got []Notification
}

func (s *sink) notify(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, n)
}

func (s *sink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

type fixture struct {
	store  *store.Store
	engine *aggregate.Engine
	clock  *clockwork.FakeClock
	sink   *sink
	pid    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 10, 6, 0, 0, 0, time.Local))
	s := store.New(store.NewMemoryBackend(), store.WithClock(clock))
	p, err := s.AddProfile(context.Background(), store.AddProfileParams{Name: "Mia"})
	require.NoError(t, err)
	return &fixture{
		store:  s,
		engine: aggregate.New(s, aggregate.WithClock(clock)),
		clock:  clock,
		sink:   &sink{},
		pid:    p.ID,
	}
}

func (f *fixture) addFeeding(t *testing.T) {
	t.Helper()
	_, err := f.store.AddRecord(context.Background(), f.pid, model.NewRecord(model.CategoryFeeding))
	require.NoError(t, err)
}

func (f *fixture) poller(opts ...Option) *Poller {
	opts = append([]Option{WithClock(f.clock), WithPermissionGate(Static(Granted))}, opts...)
	return NewPoller(f.engine, f.store, f.sink.notify, opts...)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "It has been 3h 5m since the last feeding", Message(model.CategoryFeeding, 185))
	assert.Equal(t, "It has been 4h since the last diaper", Message(model.CategoryDiaper, 240))
}

func TestRunOnceLevelTriggered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.poller()

	sent, err := p.RunOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, sent, "no records yet")

	f.addFeeding(t)
	f.clock.Advance(3*time.Hour + 5*time.Minute)

	sent, err = p.RunOnce(ctx)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "It has been 3h 5m since the last feeding", sent[0].Message)
	assert.Equal(t, f.pid, sent[0].ProfileID)

	// re-fires on every poll until a new record arrives
	sent, _ = p.RunOnce(ctx)
	assert.Len(t, sent, 1)
	assert.Equal(t, 2, f.sink.len())

	f.addFeeding(t)
	sent, _ = p.RunOnce(ctx)
	assert.Empty(t, sent)
}

func TestRunOncePermissionGate(t *testing.T) {
	for _, perm := range []Permission{Denied, Undetermined} {
		t.Run(perm.String(), func(t *testing.T) {
			f := newFixture(t)
			f.addFeeding(t)
			f.clock.Advance(4 * time.Hour)

			p := f.poller(WithPermissionGate(Static(perm)))
			sent, err := p.RunOnce(context.Background())
			require.NoError(t, err)
			assert.Empty(t, sent)
			assert.Zero(t, f.sink.len())
		})
	}
}

func TestRunOnceRespectsSettings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addFeeding(t)
	f.clock.Advance(2 * time.Hour)

	p := f.poller()
	sent, _ := p.RunOnce(ctx)
	assert.Empty(t, sent, "default threshold is 3h")

	_, err := f.store.UpdateSettings(ctx, func(s *store.Settings) {
		s.Thresholds[model.CategoryFeeding] = 90
	})
	require.NoError(t, err)
	sent, _ = p.RunOnce(ctx)
	assert.Len(t, sent, 1)

	_, err = f.store.UpdateSettings(ctx, func(s *store.Settings) {
		s.Reminders[model.CategoryFeeding] = false
	})
	require.NoError(t, err)
	sent, _ = p.RunOnce(ctx)
	assert.Empty(t, sent)
}

func TestRunOnceActiveSessionSuppresses(t *testing.T) {
	f := newFixture(t)
	f.addFeeding(t)
	f.clock.Advance(4 * time.Hour)
	f.engine.RegisterSession(model.CategoryFeeding, aggregate.SessionProbeFunc(func() bool { return true }))

	sent, err := f.poller().RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sent)
}

func TestRunOnceNoActiveProfile(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := store.New(store.NewMemoryBackend(), store.WithClock(clock))
	p := NewPoller(aggregate.New(s, aggregate.WithClock(clock)), s, func(Notification) {
		t.Fatal("unexpected notification")
	}, WithPermissionGate(Static(Granted)))

	sent, err := p.RunOnce(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, sent)
}

func TestStartAndStop(t *testing.T) {
	f := newFixture(t)
	f.addFeeding(t)
	f.clock.Advance(4 * time.Hour)

	p := f.poller(WithInterval(time.Minute))
	h := p.Start(context.Background())

	require.Eventually(t, func() bool { return f.sink.len() == 1 }, 2*time.Second, 5*time.Millisecond,
		"expected an immediate check on start")

	f.clock.BlockUntil(1)
	f.clock.Advance(time.Minute)
	require.Eventually(t, func() bool { return f.sink.len() == 2 }, 2*time.Second, 5*time.Millisecond)

	h.Stop()
	h.Stop()
	select {
	case <-h.Done():
	default:
		t.Fatal("expected poller to be done after Stop")
	}

	f.clock.Advance(time.Minute)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, f.sink.len())
}

func TestThrottle(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := &sink{}
	notify := Throttle(s.notify, 30*time.Minute, clock)

	feed := Notification{ProfileID: "p1", Category: model.CategoryFeeding}
	diaper := Notification{ProfileID: "p1", Category: model.CategoryDiaper}

	notify(feed)
	notify(feed)
	notify(diaper)
	assert.Equal(t, 2, s.len())

	clock.Advance(29 * time.Minute)
	notify(feed)
	assert.Equal(t, 2, s.len())

	clock.Advance(time.Minute)
	notify(feed)
	assert.Equal(t, 3, s.len())
}

func TestParsePermission(t *testing.T) {
	assert.Equal(t, Granted, ParsePermission("granted"))
	assert.Equal(t, Denied, ParsePermission(" Denied "))
	assert.Equal(t, Undetermined, ParsePermission(""))
	assert.Equal(t, Undetermined, ParsePermission("maybe"))
}
