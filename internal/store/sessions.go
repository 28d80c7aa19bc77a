package store

import (
	"context"
	"time"

	"github.com/rcliao/babylog/internal/model"
)

const sessionKeyPrefix = "session:"

// SessionKey is the backend key holding the live session marker of a category.
func SessionKey(c model.Category) string {
	return sessionKeyPrefix + string(c)
}

// MarkSession records sess as the live session of its category, replacing
// any previous marker. UpdatedAt is set to now.
func (s *Store) MarkSession(ctx context.Context, sess model.Session) error {
	if !model.ValidCategories[sess.Category] {
		return model.Invalid("unknown category %q", sess.Category)
	}
	sess.UpdatedAt = s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setAll(ctx, "mark_session", map[string]any{SessionKey(sess.Category): sess})
}

// ClearSession removes the category's session marker. Clearing a missing
// marker is not an error.
func (s *Store) ClearSession(ctx context.Context, c model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setAll(ctx, "clear_session", map[string]any{SessionKey(c): nil})
}

// ActiveSession returns the category's session marker. Markers not updated
// within maxAge are treated as abandoned; maxAge <= 0 disables the check.
func (s *Store) ActiveSession(ctx context.Context, c model.Category, maxAge time.Duration) (*model.Session, bool, error) {
	s.mu.Lock()
	var sess *model.Session
	_, err := s.getJSON(ctx, SessionKey(c), &sess)
	s.mu.Unlock()
	if err != nil {
		return nil, false, err
	}
	if sess == nil {
		return nil, false, nil
	}
	if maxAge > 0 && s.clock.Since(sess.UpdatedAt) > maxAge {
		s.logger.Debug("ignoring stale session marker", "category", c, "updated_at", sess.UpdatedAt)
		return nil, false, nil
	}
	return sess, true, nil
}
