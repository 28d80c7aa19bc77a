// Package aggregate derives statistics and chart series from stored records.
// It never writes to the store.
package aggregate

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"

	"github.com/rcliao/babylog/internal/datetime"
	"github.com/rcliao/babylog/internal/model"
	"github.com/rcliao/babylog/internal/store"
)

// RecordReader is the read side of store.Store.
type RecordReader interface {
	GetRecords(ctx context.Context, p store.ListParams) ([]model.Record, error)
}

// SessionProbe reports whether a live session (such as a running feeding
// timer) should suppress reminders for its category.
type SessionProbe interface {
	Active() bool
}

// SessionProbeFunc adapts a func to SessionProbe.
type SessionProbeFunc func() bool

func (f SessionProbeFunc) Active() bool { return f() }

// Engine answers statistics queries against a RecordReader.
type Engine struct {
	reader RecordReader
	clock  clockwork.Clock

	mu     sync.RWMutex
	probes map[model.Category][]SessionProbe
}

type Option func(*Engine)

func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

func New(reader RecordReader, opts ...Option) *Engine {
	e := &Engine{
		reader: reader,
		clock:  clockwork.NewRealClock(),
		probes: make(map[model.Category][]SessionProbe),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterSession adds a probe consulted by ReminderDue for category c.
func (e *Engine) RegisterSession(c model.Category, p SessionProbe) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.probes[c] = append(e.probes[c], p)
}

func (e *Engine) sessionActive(c model.Category) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return lo.SomeBy(e.probes[c], func(p SessionProbe) bool { return p.Active() })
}

// DayStats summarizes one category for one day.
type DayStats struct {
	Category model.Category `json:"category"`
	Count    int            `json:"count"`
	// Total is summed feeding amount (ml) or sleep minutes; 0 for other categories.
	Total     float64        `json:"total"`
	Average   float64        `json:"average"`
	LastTime  *time.Time     `json:"last_time,omitempty"`
	Breakdown map[string]int `json:"breakdown,omitempty"`
}

// TodayStats summarizes the category's records on the current local day.
func (e *Engine) TodayStats(ctx context.Context, profileID string, c model.Category) (DayStats, error) {
	return e.DayStats(ctx, profileID, c, e.clock.Now())
}

// DayStats summarizes the category's records on day.
func (e *Engine) DayStats(ctx context.Context, profileID string, c model.Category, day time.Time) (DayStats, error) {
	recs, err := e.reader.GetRecords(ctx, store.ListParams{ProfileID: profileID, Category: c, Day: day})
	if err != nil {
		return DayStats{}, err
	}

	st := DayStats{Category: c, Count: len(recs)}
	st.Total = lo.SumBy(recs, func(r model.Record) float64 { return r.Amount() })
	if st.Count > 0 {
		st.Average = math.Round(st.Total / float64(st.Count))
		last := recs[0].Time
		st.LastTime = &last
	}
	st.Breakdown = breakdown(recs)
	return st, nil
}

func breakdown(recs []model.Record) map[string]int {
	out := make(map[string]int)
	for _, r := range recs {
		switch r.Category {
		case model.CategoryFeeding:
			out[string(r.Feeding.Subtype)]++
			if r.Feeding.Subtype == model.FeedingBreast {
				out["side:"+string(r.Feeding.Side)]++
			}
		case model.CategorySleep:
			out[string(r.Sleep.Quality)]++
		case model.CategoryDiaper:
			out[string(r.Diaper.Subtype)]++
			if r.Diaper.Rash {
				out["rash"]++
			}
		case model.CategoryMedicine:
			out[r.Medicine.Name]++
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// LastRecord returns the newest record of the category. ok is false when
// there is none.
func (e *Engine) LastRecord(ctx context.Context, profileID string, c model.Category) (*model.Record, bool, error) {
	recs, err := e.reader.GetRecords(ctx, store.ListParams{ProfileID: profileID, Category: c, Limit: 1})
	if err != nil {
		return nil, false, err
	}
	if len(recs) == 0 {
		return nil, false, nil
	}
	return &recs[0], true, nil
}

// TimeSinceLast returns whole minutes since the newest record. ok is false
// when the category has no records. A record timestamped in the future
// yields a negative value.
func (e *Engine) TimeSinceLast(ctx context.Context, profileID string, c model.Category) (int, bool, error) {
	last, ok, err := e.LastRecord(ctx, profileID, c)
	if err != nil || !ok {
		return 0, false, err
	}
	return datetime.DiffMinutes(last.Time, e.clock.Now()), true, nil
}

// ReminderDue reports whether at least threshold minutes have passed since
// the last record with no registered session active for the category.
// Categories without records are never due.
func (e *Engine) ReminderDue(ctx context.Context, profileID string, c model.Category, threshold int) (bool, int, error) {
	since, ok, err := e.TimeSinceLast(ctx, profileID, c)
	if err != nil || !ok {
		return false, 0, err
	}
	if since < 0 {
		since = 0
	}
	if e.sessionActive(c) {
		return false, since, nil
	}
	return since >= threshold, since, nil
}
