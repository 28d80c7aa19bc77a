package store

import (
	"context"
	"sort"
	"time"

	"github.com/r3labs/diff"
	"github.com/samber/lo"

	"github.com/rcliao/babylog/internal/datetime"
	"github.com/rcliao/babylog/internal/model"
)

// ListParams holds parameters for listing records.
type ListParams struct {
	ProfileID string
	Category  model.Category
	Day       time.Time // zero means any day
	From      time.Time // inclusive, zero means unbounded
	To        time.Time // inclusive, zero means unbounded
	Limit     int       // 0 means no limit
}

func (p ListParams) match(r *model.Record) bool {
	if r.ProfileID != p.ProfileID {
		return false
	}
	if !p.Day.IsZero() && !datetime.SameDay(r.Time, p.Day) {
		return false
	}
	if !p.From.IsZero() && r.Time.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && r.Time.After(p.To) {
		return false
	}
	return true
}

func (s *Store) loadRecords(ctx context.Context, c model.Category) ([]*model.Record, error) {
	var recs []*model.Record
	if _, err := s.getJSON(ctx, RecordsKey(c), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Store) saveRecords(ctx context.Context, op string, c model.Category, recs []*model.Record) error {
	if recs == nil {
		recs = []*model.Record{}
	}
	return s.setAll(ctx, op, map[string]any{RecordsKey(c): recs})
}

// AddRecord validates rec, stamps it with a new ID, the profile and a default
// timestamp of now, appends it to its category and persists the category.
func (s *Store) AddRecord(ctx context.Context, profileID string, rec *model.Record) (*model.Record, error) {
	if profileID == "" {
		return nil, model.Invalid("profile id is required")
	}
	r := rec.Clone()
	now := s.clock.Now()
	if r.Time.IsZero() {
		r.Time = now
	}
	r.ApplyDefaults()
	if err := r.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadRecords(ctx, r.Category)
	if err != nil {
		return nil, err
	}

	r.ID = s.newID(now)
	r.ProfileID = profileID
	r.CreatedAt = now

	if err := s.saveRecords(ctx, "add_record", r.Category, append(recs, r)); err != nil {
		return nil, err
	}

	s.observer.RecordAdded(string(r.Category))
	s.logger.Debug("record added", "category", r.Category, "id", r.ID, "profile_id", profileID)
	return r.Clone(), nil
}

// GetRecords returns the profile's records of one category, newest first.
// Records with equal timestamps come back most recently added first.
func (s *Store) GetRecords(ctx context.Context, p ListParams) ([]model.Record, error) {
	if !model.ValidCategories[p.Category] {
		return nil, model.Invalid("unknown category %q", p.Category)
	}

	s.mu.Lock()
	recs, err := s.loadRecords(ctx, p.Category)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]model.Record, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		if p.match(recs[i]) {
			out = append(out, *recs[i].Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.After(out[j].Time)
	})

	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, nil
}

// GetRecord returns one record of the profile by ID.
func (s *Store) GetRecord(ctx context.Context, profileID string, c model.Category, id string) (*model.Record, error) {
	s.mu.Lock()
	recs, err := s.loadRecords(ctx, c)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	r, ok := lo.Find(recs, func(r *model.Record) bool {
		return r.ID == id && r.ProfileID == profileID
	})
	if !ok {
		return nil, model.NotFound("%s record %s", c, id)
	}
	return r.Clone(), nil
}

// UpdateRecord merges patch into an existing record. ID, profile, category
// and timestamps are never rewritten.
func (s *Store) UpdateRecord(ctx context.Context, profileID string, c model.Category, id string, patch model.Patch) (*model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadRecords(ctx, c)
	if err != nil {
		return nil, err
	}
	_, idx, ok := lo.FindIndexOf(recs, func(r *model.Record) bool {
		return r.ID == id && r.ProfileID == profileID
	})
	if !ok {
		return nil, model.NotFound("%s record %s", c, id)
	}

	before := recs[idx]
	updated := before.Clone()
	if err := updated.ApplyPatch(patch); err != nil {
		return nil, err
	}
	updated.ApplyDefaults()
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	next := make([]*model.Record, len(recs))
	copy(next, recs)
	next[idx] = updated
	if err := s.saveRecords(ctx, "update_record", c, next); err != nil {
		return nil, err
	}

	s.observer.RecordUpdated(string(c))
	if changes, err := diff.Diff(before.Payload(), updated.Payload()); err == nil {
		for _, ch := range changes {
			s.logger.Debug("record field changed", "category", c, "id", id, "path", ch.Path, "from", ch.From, "to", ch.To)
		}
	}
	if before.Note != updated.Note {
		s.logger.Debug("record field changed", "category", c, "id", id, "path", "note")
	}
	return updated.Clone(), nil
}

// DeleteRecord removes a record by ID. Deleting a missing or already deleted
// record reports ErrNotFound.
func (s *Store) DeleteRecord(ctx context.Context, profileID string, c model.Category, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadRecords(ctx, c)
	if err != nil {
		return err
	}
	kept := lo.Reject(recs, func(r *model.Record, _ int) bool {
		return r.ID == id && r.ProfileID == profileID
	})
	if len(kept) == len(recs) {
		return model.NotFound("%s record %s", c, id)
	}

	if err := s.saveRecords(ctx, "delete_record", c, kept); err != nil {
		return err
	}

	s.observer.RecordDeleted(string(c))
	s.logger.Debug("record deleted", "category", c, "id", id)
	return nil
}
