package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("sleep")
	require.NoError(t, err)
	assert.Equal(t, CategorySleep, c)

	_, err = ParseCategory("bath")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestApplyDefaults(t *testing.T) {
	f := NewRecord(CategoryFeeding)
	f.ApplyDefaults()
	assert.Equal(t, FeedingBottle, f.Feeding.Subtype)
	assert.Equal(t, SideNone, f.Feeding.Side)

	b := NewRecord(CategoryFeeding)
	b.Feeding.Subtype = FeedingBreast
	b.ApplyDefaults()
	assert.Equal(t, SideBoth, b.Feeding.Side)

	start := time.Date(2024, 3, 7, 13, 0, 0, 0, time.UTC)
	end := start.Add(95*time.Minute + 40*time.Second)
	s := NewRecord(CategorySleep)
	s.Time = start
	s.Sleep.End = &end
	s.ApplyDefaults()
	assert.Equal(t, 95, s.Sleep.Duration)
	assert.Equal(t, QualityNormal, s.Sleep.Quality)

	m := NewRecord(CategoryMedicine)
	m.ApplyDefaults()
	assert.Equal(t, 1, m.Medicine.FrequencyPerDay)
	assert.Equal(t, 1, m.Medicine.CourseDays)
}

func TestValidatePayloadShape(t *testing.T) {
	r := NewRecord(CategoryDiaper)
	r.Feeding = &Feeding{}
	assert.ErrorIs(t, r.Validate(), ErrValidation)

	empty := &Record{Category: CategoryGrowth}
	assert.ErrorIs(t, empty.Validate(), ErrValidation)

	unknown := &Record{Category: "bath"}
	assert.ErrorIs(t, unknown.Validate(), ErrValidation)

	g := NewRecord(CategoryGrowth)
	g.Growth.WeightKG = 4.2
	assert.NoError(t, g.Validate())
}

func TestAmount(t *testing.T) {
	f := NewRecord(CategoryFeeding)
	f.Feeding.Amount = 120
	assert.Equal(t, 120.0, f.Amount())

	s := NewRecord(CategorySleep)
	s.Sleep.Duration = 45
	assert.Equal(t, 45.0, s.Amount())

	assert.Equal(t, 0.0, NewRecord(CategoryDiaper).Amount())
}

func TestCloneIsDeep(t *testing.T) {
	end := time.Date(2024, 3, 7, 14, 0, 0, 0, time.UTC)
	r := NewRecord(CategorySleep)
	r.Sleep.End = &end

	c := r.Clone()
	c.Sleep.Duration = 10
	*c.Sleep.End = end.Add(time.Hour)

	assert.Equal(t, 0, r.Sleep.Duration)
	assert.True(t, r.Sleep.End.Equal(end))
}

func TestApplyPatch(t *testing.T) {
	r := NewRecord(CategoryMedicine)
	r.Medicine.Name = "vitamin d"
	r.ApplyDefaults()

	require.NoError(t, r.ApplyPatch(Patch{"dosage": "400IU", "note": "with milk"}))
	assert.Equal(t, "400IU", r.Medicine.Dosage)
	assert.Equal(t, "with milk", r.Note)
	assert.Equal(t, "vitamin d", r.Medicine.Name)

	err := r.ApplyPatch(Patch{"strength": 2})
	assert.True(t, errors.Is(err, ErrValidation))

	err = r.ApplyPatch(Patch{"category": "feeding"})
	assert.ErrorIs(t, err, ErrValidation)

	err = r.ApplyPatch(Patch{"note": 5})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDecodePayload(t *testing.T) {
	r, err := DecodePayload(CategoryFeeding, []byte(`{"subtype":"breast","duration":600}`))
	require.NoError(t, err)
	assert.Equal(t, FeedingBreast, r.Feeding.Subtype)
	assert.Equal(t, 600, r.Feeding.Duration)

	_, err = DecodePayload(CategoryFeeding, []byte(`{"subtype":"breast","colour":"red"}`))
	assert.ErrorIs(t, err, ErrValidation)

	empty, err := DecodePayload(CategoryDiaper, nil)
	require.NoError(t, err)
	assert.NotNil(t, empty.Diaper)
}

func TestDecodeRecordRejectsUnknown(t *testing.T) {
	_, err := DecodeRecord([]byte(`{"id":"1","category":"diaper","diaper":{"subtype":"wet"},"extra":true}`))
	assert.ErrorIs(t, err, ErrValidation)

	r, err := DecodeRecord([]byte(`{"id":"1","category":"diaper","diaper":{"subtype":"dirty","rash":true}}`))
	require.NoError(t, err)
	assert.True(t, r.Diaper.Rash)
}

func TestErrorHelpers(t *testing.T) {
	assert.ErrorIs(t, NotFound("feeding %s", "x"), ErrNotFound)
	assert.ErrorIs(t, InvalidState("already running"), ErrInvalidState)

	cause := errors.New("disk full")
	err := StorageFailure(cause)
	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.ErrorIs(t, err, cause)
}
