package store

import (
	"context"

	"github.com/rcliao/babylog/internal/model"
)

// Settings are the user preferences kept under the settings key.
type Settings struct {
	// Reminders enables or disables reminders per category.
	Reminders map[model.Category]bool `json:"reminders"`
	// Thresholds overrides the reminder threshold in minutes per category.
	Thresholds map[model.Category]int `json:"thresholds,omitempty"`
	Unit       string                 `json:"unit"`
}

// DefaultSettings enables reminders for every timed category and uses ml.
func DefaultSettings() Settings {
	return Settings{
		Reminders: map[model.Category]bool{
			model.CategoryFeeding:  true,
			model.CategoryDiaper:   true,
			model.CategorySleep:    true,
			model.CategoryMedicine: true,
		},
		Thresholds: map[model.Category]int{},
		Unit:       "ml",
	}
}

// ReminderEnabled reports whether reminders are on for c.
func (st Settings) ReminderEnabled(c model.Category) bool {
	return st.Reminders[c]
}

func (s *Store) loadSettings(ctx context.Context) (Settings, error) {
	st := DefaultSettings()
	if _, err := s.getJSON(ctx, KeySettings, &st); err != nil {
		return Settings{}, err
	}
	if st.Reminders == nil {
		st.Reminders = map[model.Category]bool{}
	}
	if st.Thresholds == nil {
		st.Thresholds = map[model.Category]int{}
	}
	if st.Unit == "" {
		st.Unit = "ml"
	}
	return st, nil
}

// Settings returns the stored settings merged over the defaults.
func (s *Store) Settings(ctx context.Context) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSettings(ctx)
}

// UpdateSettings applies fn to the current settings and persists the result.
func (s *Store) UpdateSettings(ctx context.Context, fn func(*Settings)) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadSettings(ctx)
	if err != nil {
		return Settings{}, err
	}
	fn(&st)
	for c, v := range st.Thresholds {
		if !model.ValidCategories[c] {
			return Settings{}, model.Invalid("unknown category %q", c)
		}
		if v < 0 {
			return Settings{}, model.Invalid("threshold for %s must be >= 0", c)
		}
	}
	if err := s.setAll(ctx, "update_settings", map[string]any{KeySettings: st}); err != nil {
		return Settings{}, err
	}
	return st, nil
}
