package store

import (
	"context"
	"encoding/json"

	"github.com/samber/lo"

	"github.com/rcliao/babylog/internal/model"
)

// Snapshot is a full export of the store.
type Snapshot struct {
	Version       int                               `json:"version"`
	ExportedAt    string                            `json:"exported_at"`
	Profiles      []model.Profile                   `json:"profiles"`
	ActiveProfile string                            `json:"active_profile,omitempty"`
	Records       map[model.Category][]model.Record `json:"records"`
	Settings      *Settings                         `json:"settings,omitempty"`
}

const snapshotVersion = 1

// Export returns every profile, record and the settings.
func (s *Store) Export(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.loadProfiles(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.activeProfileID(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Version:       snapshotVersion,
		ExportedAt:    s.clock.Now().UTC().Format("2006-01-02T15:04:05Z"),
		Profiles:      lo.Map(profiles, func(p *model.Profile, _ int) model.Profile { return *p }),
		ActiveProfile: active,
		Records:       make(map[model.Category][]model.Record, len(model.Categories)),
		Settings:      &st,
	}
	for _, c := range model.Categories {
		recs, err := s.loadRecords(ctx, c)
		if err != nil {
			return nil, err
		}
		snap.Records[c] = lo.Map(recs, func(r *model.Record, _ int) model.Record { return *r })
	}
	return snap, nil
}

// Import merges a snapshot into the store. Profiles and records whose IDs
// already exist are skipped. Returns the number of imported records.
// Settings and the active profile are only taken from the snapshot when the
// store has none.
func (s *Store) Import(ctx context.Context, snap *Snapshot) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.loadProfiles(ctx)
	if err != nil {
		return 0, err
	}
	active, err := s.activeProfileID(ctx)
	if err != nil {
		return 0, err
	}

	values := map[string]any{}

	known := lo.Associate(profiles, func(p *model.Profile) (string, bool) { return p.ID, true })
	addedProfiles := 0
	for _, p := range snap.Profiles {
		if p.ID == "" || known[p.ID] {
			continue
		}
		cp := p
		profiles = append(profiles, &cp)
		known[p.ID] = true
		addedProfiles++
	}
	if addedProfiles > 0 {
		values[KeyProfiles] = profiles
	}
	if active == "" && snap.ActiveProfile != "" && known[snap.ActiveProfile] {
		values[KeyActiveProfile] = snap.ActiveProfile
	}

	imported := 0
	for _, c := range model.Categories {
		incoming := snap.Records[c]
		if len(incoming) == 0 {
			continue
		}
		recs, err := s.loadRecords(ctx, c)
		if err != nil {
			return 0, err
		}
		ids := lo.Associate(recs, func(r *model.Record) (string, bool) { return r.ID, true })
		added := 0
		for i := range incoming {
			r := incoming[i].Clone()
			if r.ID == "" || ids[r.ID] {
				continue
			}
			r.Category = c
			if err := r.Validate(); err != nil {
				return 0, err
			}
			recs = append(recs, r)
			ids[r.ID] = true
			added++
		}
		if added > 0 {
			values[RecordsKey(c)] = recs
			imported += added
		}
	}

	if snap.Settings != nil {
		var existing json.RawMessage
		found, err := s.getJSON(ctx, KeySettings, &existing)
		if err != nil {
			return 0, err
		}
		if !found {
			values[KeySettings] = snap.Settings
		}
	}

	if len(values) == 0 {
		return 0, nil
	}
	if err := s.setAll(ctx, "import", values); err != nil {
		return 0, err
	}
	s.logger.Info("snapshot imported", "profiles", addedProfiles, "records", imported)
	return imported, nil
}
