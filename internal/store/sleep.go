package store

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"

	"github.com/rcliao/babylog/internal/model"
)

// OpenSleep returns the profile's most recent sleep that has no end yet.
func (s *Store) OpenSleep(ctx context.Context, profileID string) (*model.Record, error) {
	recs, err := s.GetRecords(ctx, ListParams{ProfileID: profileID, Category: model.CategorySleep})
	if err != nil {
		return nil, err
	}
	r, ok := lo.Find(recs, func(r model.Record) bool { return r.Sleep != nil && r.Sleep.End == nil })
	if !ok {
		return nil, model.NotFound("no sleep in progress")
	}
	return &r, nil
}

// StartSleep logs an in-progress sleep starting at start (now when zero).
// Only one sleep per profile may be in progress.
func (s *Store) StartSleep(ctx context.Context, profileID string, start time.Time, note string) (*model.Record, error) {
	open, err := s.OpenSleep(ctx, profileID)
	if err == nil {
		return nil, model.InvalidState("sleep %s is already in progress", open.ID)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	rec := model.NewRecord(model.CategorySleep)
	rec.Time = start
	rec.Note = note
	return s.AddRecord(ctx, profileID, rec)
}

// EndSleep closes an in-progress sleep at end (now when zero) and derives its
// duration. An empty id picks the most recent open sleep. An empty quality
// keeps the recorded one.
func (s *Store) EndSleep(ctx context.Context, profileID, id string, end time.Time, quality model.SleepQuality) (*model.Record, error) {
	if id == "" {
		open, err := s.OpenSleep(ctx, profileID)
		if err != nil {
			return nil, err
		}
		id = open.ID
	}
	if end.IsZero() {
		end = s.clock.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadRecords(ctx, model.CategorySleep)
	if err != nil {
		return nil, err
	}
	_, idx, ok := lo.FindIndexOf(recs, func(r *model.Record) bool {
		return r.ID == id && r.ProfileID == profileID
	})
	if !ok {
		return nil, model.NotFound("sleep record %s", id)
	}
	if recs[idx].Sleep == nil {
		return nil, model.Invalid("sleep record %s has no payload", id)
	}
	if recs[idx].Sleep.End != nil {
		return nil, model.InvalidState("sleep %s already ended", id)
	}

	updated := recs[idx].Clone()
	updated.Sleep.End = &end
	updated.Sleep.Duration = 0
	if quality != "" {
		updated.Sleep.Quality = quality
	}
	updated.ApplyDefaults()
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	next := make([]*model.Record, len(recs))
	copy(next, recs)
	next[idx] = updated
	if err := s.saveRecords(ctx, "end_sleep", model.CategorySleep, next); err != nil {
		return nil, err
	}

	s.observer.RecordUpdated(string(model.CategorySleep))
	s.logger.Debug("sleep ended", "id", id, "duration", updated.Sleep.Duration)
	return updated.Clone(), nil
}
