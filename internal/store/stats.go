package store

import (
	"context"
	"os"

	"github.com/rcliao/babylog/internal/model"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string          `json:"db_path"`
	DBSizeBytes   int64           `json:"db_size_bytes"`
	Profiles      int             `json:"profiles"`
	ActiveProfile string          `json:"active_profile,omitempty"`
	TotalRecords  int             `json:"total_records"`
	Categories    []CategoryStats `json:"categories"`
}

// CategoryStats holds per-category counts.
type CategoryStats struct {
	Category model.Category `json:"category"`
	Count    int            `json:"count"`
}

// Stats returns database statistics.
func (s *Store) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if dbPath != "" {
		if info, err := os.Stat(dbPath); err == nil {
			st.DBSizeBytes = info.Size()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.loadProfiles(ctx)
	if err != nil {
		return nil, err
	}
	st.Profiles = len(profiles)
	if st.ActiveProfile, err = s.activeProfileID(ctx); err != nil {
		return nil, err
	}

	for _, c := range model.Categories {
		recs, err := s.loadRecords(ctx, c)
		if err != nil {
			return nil, err
		}
		st.Categories = append(st.Categories, CategoryStats{Category: c, Count: len(recs)})
		st.TotalRecords += len(recs)
	}
	return st, nil
}
