package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/rcliao/babylog/internal/model"
)

// AddProfileParams holds parameters for creating a profile.
type AddProfileParams struct {
	Name      string
	Gender    string
	BirthDate time.Time
	Avatar    string
}

func (s *Store) loadProfiles(ctx context.Context) ([]*model.Profile, error) {
	var profiles []*model.Profile
	if _, err := s.getJSON(ctx, KeyProfiles, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (s *Store) activeProfileID(ctx context.Context) (string, error) {
	var id string
	if _, err := s.getJSON(ctx, KeyActiveProfile, &id); err != nil {
		return "", err
	}
	return id, nil
}

// AddProfile creates a profile. The first profile created becomes active.
func (s *Store) AddProfile(ctx context.Context, p AddProfileParams) (*model.Profile, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, model.Invalid("profile name is required")
	}
	gender := p.Gender
	if gender == "" {
		gender = model.GenderUnknown
	}
	if !model.ValidGenders[gender] {
		return nil, model.Invalid("unknown gender %q (valid: boy, girl, unknown)", gender)
	}

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

	profile := &model.Profile{
		ID:        uuid.NewString(),
		Name:      name,
		Gender:    gender,
		BirthDate: p.BirthDate,
		Avatar:    p.Avatar,
		CreatedAt: s.clock.Now(),
	}

	values := map[string]any{KeyProfiles: append(profiles, profile)}
	if active == "" {
		values[KeyActiveProfile] = profile.ID
	}
	if err := s.setAll(ctx, "add_profile", values); err != nil {
		return nil, err
	}

	s.logger.Info("profile added", "id", profile.ID, "name", profile.Name)
	return profile, nil
}

// ListProfiles returns every profile in creation order.
func (s *Store) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	s.mu.Lock()
	profiles, err := s.loadProfiles(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return lo.Map(profiles, func(p *model.Profile, _ int) model.Profile {
		return *p
	}), nil
}

// GetProfile returns a profile by ID.
func (s *Store) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	s.mu.Lock()
	profiles, err := s.loadProfiles(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	p, ok := lo.Find(profiles, func(p *model.Profile) bool { return p.ID == id })
	if !ok {
		return nil, model.NotFound("profile %s", id)
	}
	cp := *p
	return &cp, nil
}

// DeleteProfile removes a profile. Its records stay in storage. Deleting the
// active profile clears the selection.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.loadProfiles(ctx)
	if err != nil {
		return err
	}
	kept := lo.Reject(profiles, func(p *model.Profile, _ int) bool { return p.ID == id })
	if len(kept) == len(profiles) {
		return model.NotFound("profile %s", id)
	}
	active, err := s.activeProfileID(ctx)
	if err != nil {
		return err
	}

	values := map[string]any{KeyProfiles: kept}
	if active == id {
		values[KeyActiveProfile] = ""
	}
	if err := s.setAll(ctx, "delete_profile", values); err != nil {
		return err
	}

	s.logger.Info("profile deleted", "id", id)
	return nil
}

// SetActiveProfile selects the profile new records default to.
func (s *Store) SetActiveProfile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.loadProfiles(ctx)
	if err != nil {
		return err
	}
	if !lo.ContainsBy(profiles, func(p *model.Profile) bool { return p.ID == id }) {
		return model.NotFound("profile %s", id)
	}
	return s.setAll(ctx, "set_active_profile", map[string]any{KeyActiveProfile: id})
}

// ActiveProfile returns the selected profile, or ErrNotFound when none is
// selected.
func (s *Store) ActiveProfile(ctx context.Context) (*model.Profile, error) {
	s.mu.Lock()
	id, err := s.activeProfileID(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, model.NotFound("no active profile")
	}
	return s.GetProfile(ctx, id)
}

// ResolveProfile returns the profile matching ref by ID, ID prefix or name.
// An empty ref resolves to the active profile.
func (s *Store) ResolveProfile(ctx context.Context, ref string) (*model.Profile, error) {
	if ref == "" {
		return s.ActiveProfile(ctx)
	}
	profiles, err := s.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	if p, ok := lo.Find(profiles, func(p model.Profile) bool { return p.ID == ref }); ok {
		return &p, nil
	}
	matches := lo.Filter(profiles, func(p model.Profile, _ int) bool {
		return strings.HasPrefix(p.ID, ref) || strings.EqualFold(p.Name, ref)
	})
	switch len(matches) {
	case 0:
		return nil, model.NotFound("profile %s", ref)
	case 1:
		return &matches[0], nil
	default:
		return nil, model.Invalid("profile reference %q is ambiguous (%d matches)", ref, len(matches))
	}
}
