// Package reminder polls the aggregation engine and notifies when a category
// is overdue. Checks are level-triggered: a due category notifies on every
// poll until a new record arrives.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rcliao/babylog/internal/datetime"
	"github.com/rcliao/babylog/internal/model"
	"github.com/rcliao/babylog/internal/store"
)

// DefaultInterval is the poll cadence when none is configured.
const DefaultInterval = time.Minute

// Rule makes a category due after Threshold minutes without a record.
type Rule struct {
	Category  model.Category
	Threshold int
}

// DefaultRules holds the stock thresholds.
var DefaultRules = []Rule{
	{Category: model.CategoryFeeding, Threshold: 180},
}

// Notification is one surfaced reminder.
type Notification struct {
	ProfileID string
	Category  model.Category
	Minutes   int
	Message   string
}

// Notifier receives reminders that passed the permission gate.
type Notifier func(n Notification)

// DueChecker is the part of aggregate.Engine the poller needs.
type DueChecker interface {
	ReminderDue(ctx context.Context, profileID string, c model.Category, threshold int) (bool, int, error)
}

// Source supplies the active profile and the settings. store.Store
// implements it.
type Source interface {
	ActiveProfile(ctx context.Context) (*model.Profile, error)
	Settings(ctx context.Context) (store.Settings, error)
}

// Observer counts fired and suppressed reminders. metrics.Collector
// implements it.
type Observer interface {
	ReminderFired(category string)
	ReminderSuppressed(category, reason string)
}

type nopObserver struct{}

func (nopObserver) ReminderFired(string)              {}
func (nopObserver) ReminderSuppressed(string, string) {}

// Poller evaluates rules against the active profile.
type Poller struct {
	checker  DueChecker
	source   Source
	notify   Notifier
	gate     PermissionGate
	rules    []Rule
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	observer Observer
}

type Option func(*Poller)

func WithRules(rules ...Rule) Option {
	return func(p *Poller) {
		p.rules = rules
	}
}

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithPermissionGate(g PermissionGate) Option {
	return func(p *Poller) {
		p.gate = g
	}
}

func WithClock(c clockwork.Clock) Option {
	return func(p *Poller) {
		p.clock = c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) {
		p.logger = l
	}
}

func WithObserver(o Observer) Option {
	return func(p *Poller) {
		p.observer = o
	}
}

// NewPoller builds a Poller. Without a gate, permission is Undetermined and
// nothing is surfaced.
func NewPoller(checker DueChecker, source Source, notify Notifier, opts ...Option) *Poller {
	p := &Poller{
		checker:  checker,
		source:   source,
		notify:   notify,
		gate:     Static(Undetermined),
		rules:    DefaultRules,
		interval: DefaultInterval,
		clock:    clockwork.NewRealClock(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Message renders the reminder text for a category.
func Message(c model.Category, minutes int) string {
	return fmt.Sprintf("It has been %s since the last %s", datetime.FormatDuration(minutes), c)
}

// RunOnce evaluates every rule once and returns what was surfaced. Having no
// active profile is not an error.
func (p *Poller) RunOnce(ctx context.Context) ([]Notification, error) {
	profile, err := p.source.ActiveProfile(ctx)
	if errors.Is(err, model.ErrNotFound) {
		p.logger.Debug("no active profile, skipping reminders")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	settings, err := p.source.Settings(ctx)
	if err != nil {
		return nil, err
	}

	var sent []Notification
	var errs []error
	for _, rule := range p.rules {
		if !settings.ReminderEnabled(rule.Category) {
			continue
		}
		threshold := rule.Threshold
		if v, ok := settings.Thresholds[rule.Category]; ok && v > 0 {
			threshold = v
		}

		due, since, err := p.checker.ReminderDue(ctx, profile.ID, rule.Category, threshold)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rule.Category, err))
			continue
		}
		if !due {
			continue
		}

		n := Notification{
			ProfileID: profile.ID,
			Category:  rule.Category,
			Minutes:   since,
			Message:   Message(rule.Category, since),
		}
		if perm := p.gate.Permission(); perm != Granted {
			p.observer.ReminderSuppressed(string(rule.Category), perm.String())
			p.logger.Debug("reminder suppressed", "category", rule.Category, "permission", perm)
			continue
		}
		p.notify(n)
		p.observer.ReminderFired(string(rule.Category))
		p.logger.Info("reminder sent", "category", rule.Category, "minutes", since)
		sent = append(sent, n)
	}
	return sent, errors.Join(errs...)
}

// Handle controls a started poller.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop cancels the poller and waits for it to exit. Safe to call twice.
func (h *Handle) Stop() {
	h.cancel()
	<-h.done
}

// Done is closed once the poller has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Start runs RunOnce immediately and then on every interval until ctx is
// cancelled or the handle is stopped.
func (p *Poller) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)

		ticker := p.clock.NewTicker(p.interval)
		defer ticker.Stop()

		p.logger.Info("reminder poller started", "interval", p.interval, "rules", len(p.rules))
		p.run(ctx)

		for {
			select {
			case <-ctx.Done():
				p.logger.Info("reminder poller stopped")
				return
			case <-ticker.Chan():
				p.run(ctx)
			}
		}
	}()
	return h
}

func (p *Poller) run(ctx context.Context) {
	if _, err := p.RunOnce(ctx); err != nil && ctx.Err() == nil {
		p.logger.Error("reminder check failed", "error", err)
	}
}
