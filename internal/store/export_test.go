package store

import (
	"context"
	"errors"
	"testing"

	"github.com/rcliao/babylog/internal/model"
)

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestStore(t)

	p, _ := src.AddProfile(ctx, AddProfileParams{Name: "Mia"})
	src.AddRecord(ctx, p.ID, feeding(model.FeedingBottle, 90))
	src.AddRecord(ctx, p.ID, model.NewRecord(model.CategoryDiaper))

	snap, err := src.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(snap.Profiles) != 1 || snap.ActiveProfile != p.ID {
		t.Errorf("unexpected snapshot profiles: %+v active=%q", snap.Profiles, snap.ActiveProfile)
	}
	if len(snap.Records[model.CategoryFeeding]) != 1 || len(snap.Records[model.CategoryDiaper]) != 1 {
		t.Errorf("unexpected snapshot records: %+v", snap.Records)
	}

	dst := New(NewMemoryBackend())
	n, err := dst.Import(ctx, snap)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 imported records, got %d", n)
	}

	active, err := dst.ActiveProfile(ctx)
	if err != nil || active.ID != p.ID {
		t.Errorf("expected imported active profile, got %+v (err %v)", active, err)
	}

	// a second import skips everything already present
	n, err = dst.Import(ctx, snap)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 records on re-import, got %d", n)
	}
	profiles, _ := dst.ListProfiles(ctx)
	if len(profiles) != 1 {
		t.Errorf("expected 1 profile after re-import, got %d", len(profiles))
	}
}

func TestImportSettingsReadFailure(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	obs := &countingObserver{}
	s := New(backend, WithObserver(obs))

	st := DefaultSettings()
	backend.FailReads = map[string]error{KeySettings: errors.New("io error")}

	_, err := s.Import(ctx, &Snapshot{Version: snapshotVersion, Settings: &st})
	if !errors.Is(err, model.ErrStorageFailure) {
		t.Fatalf("expected storage failure, got %v", err)
	}
	if obs.failures != 1 {
		t.Errorf("expected one storage failure reported, got %d", obs.failures)
	}
}
