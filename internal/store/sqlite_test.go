package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rcliao/babylog/internal/model"
)

func newTestStore(t *testing.T) (*Store, *clockwork.FakeClock) {
	t.Helper()
	dir := t.TempDir()
	b, err := NewSQLiteBackend(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create backend: %v", err)
	}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local))
	s := New(b, WithClock(clock))
	t.Cleanup(func() { s.Close() })
	return s, clock
}

func TestSQLiteBackendGetSet(t *testing.T) {
	ctx := context.Background()
	b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("create backend: %v", err)
	}
	defer b.Close()

	if _, ok, err := b.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := b.Set(ctx, "a", []byte(`1`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := b.SetAll(ctx, map[string][]byte{"a": []byte(`2`), "b": []byte(`3`)}); err != nil {
		t.Fatalf("set all: %v", err)
	}

	v, ok, err := b.Get(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("get a: ok=%v err=%v", ok, err)
	}
	if string(v) != "2" {
		t.Errorf("expected overwritten value 2, got %q", v)
	}

	keys, err := b.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("expected [a b], got %v", keys)
	}
}

func TestSQLiteBackendPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	b, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("create backend: %v", err)
	}
	s := New(b)
	p, err := s.AddProfile(ctx, AddProfileParams{Name: "Mia"})
	if err != nil {
		t.Fatalf("add profile: %v", err)
	}
	rec := model.NewRecord(model.CategoryDiaper)
	if _, err := s.AddRecord(ctx, p.ID, rec); err != nil {
		t.Fatalf("add record: %v", err)
	}
	s.Close()

	b2, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("reopen backend: %v", err)
	}
	s2 := New(b2)
	defer s2.Close()

	active, err := s2.ActiveProfile(ctx)
	if err != nil {
		t.Fatalf("active profile: %v", err)
	}
	if active.ID != p.ID {
		t.Errorf("expected active %s, got %s", p.ID, active.ID)
	}
	recs, err := s2.GetRecords(ctx, ListParams{ProfileID: p.ID, Category: model.CategoryDiaper})
	if err != nil {
		t.Fatalf("get records: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record after reopen, got %d", len(recs))
	}
	if recs[0].Diaper.Subtype != model.DiaperWet {
		t.Errorf("expected default subtype wet, got %q", recs[0].Diaper.Subtype)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	p, _ := s.AddProfile(ctx, AddProfileParams{Name: "Mia"})
	s.AddRecord(ctx, p.ID, feeding(model.FeedingBottle, 100))
	s.AddRecord(ctx, p.ID, feeding(model.FeedingBottle, 80))
	s.AddRecord(ctx, p.ID, model.NewRecord(model.CategoryDiaper))

	st, err := s.Stats(ctx, "")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Profiles != 1 {
		t.Errorf("expected 1 profile, got %d", st.Profiles)
	}
	if st.TotalRecords != 3 {
		t.Errorf("expected 3 records, got %d", st.TotalRecords)
	}
	if len(st.Categories) != len(model.Categories) {
		t.Fatalf("expected %d categories, got %d", len(model.Categories), len(st.Categories))
	}
	if st.Categories[0].Category != model.CategoryFeeding || st.Categories[0].Count != 2 {
		t.Errorf("expected 2 feedings, got %+v", st.Categories[0])
	}
}

func feeding(subtype model.FeedingType, amount float64) *model.Record {
	r := model.NewRecord(model.CategoryFeeding)
	r.Feeding.Subtype = subtype
	r.Feeding.Amount = amount
	return r
}
