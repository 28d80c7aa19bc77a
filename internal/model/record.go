// Package model defines the core baby-log data types.
package model

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Category tags a Record with the kind of event it holds.
type Category string

const (
	CategoryFeeding  Category = "feeding"
	CategorySleep    Category = "sleep"
	CategoryDiaper   Category = "diaper"
	CategoryMedicine Category = "medicine"
	CategoryGrowth   Category = "growth"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFeeding,
	CategorySleep,
	CategoryDiaper,
	CategoryMedicine,
	CategoryGrowth,
}

// ValidCategories are the allowed record categories.
var ValidCategories = map[Category]bool{
	CategoryFeeding:  true,
	CategorySleep:    true,
	CategoryDiaper:   true,
	CategoryMedicine: true,
	CategoryGrowth:   true,
}

// ParseCategory converts user input into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !ValidCategories[c] {
		return "", Invalid("unknown category %q (valid: feeding, sleep, diaper, medicine, growth)", s)
	}
	return c, nil
}

type FeedingType string

const (
	FeedingBottle FeedingType = "bottle"
	FeedingBreast FeedingType = "breast"
	FeedingFood   FeedingType = "food"
)

type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
	SideBoth  Side = "both"
	SideNone  Side = "none"
)

type SleepQuality string

const (
	QualityGood   SleepQuality = "good"
	QualityNormal SleepQuality = "normal"
	QualityPoor   SleepQuality = "poor"
)

type DiaperType string

const (
	DiaperWet   DiaperType = "wet"
	DiaperDirty DiaperType = "dirty"
	DiaperBoth  DiaperType = "both"
)

// Feeding is the payload of a feeding record. Duration is in seconds.
type Feeding struct {
	Subtype  FeedingType `json:"subtype" validate:"oneof=bottle breast food" diff:"subtype"`
	Amount   float64     `json:"amount" validate:"gte=0" diff:"amount"`
	Side     Side        `json:"side" validate:"oneof=left right both none" diff:"side"`
	Duration int         `json:"duration" validate:"gte=0" diff:"duration"`
}

// Sleep is the payload of a sleep record. The record Time is the start;
// End stays nil while the sleep is in progress. Duration is in minutes.
type Sleep struct {
	End      *time.Time   `json:"end,omitempty" diff:"end"`
	Duration int          `json:"duration" validate:"gte=0" diff:"duration"`
	Quality  SleepQuality `json:"quality" validate:"oneof=good normal poor" diff:"quality"`
}

type Diaper struct {
	Subtype DiaperType `json:"subtype" validate:"oneof=wet dirty both" diff:"subtype"`
	Rash    bool       `json:"rash" diff:"rash"`
}

type Medicine struct {
	Name            string `json:"name" validate:"required" diff:"name"`
	Dosage          string `json:"dosage" diff:"dosage"`
	FrequencyPerDay int    `json:"frequency_per_day" validate:"gte=1" diff:"frequency_per_day"`
	CourseDays      int    `json:"course_days" validate:"gte=1" diff:"course_days"`
}

type Growth struct {
	HeightCM  float64 `json:"height_cm" validate:"gte=0" diff:"height_cm"`
	WeightKG  float64 `json:"weight_kg" validate:"gte=0" diff:"weight_kg"`
	HeadCM    float64 `json:"head_cm" validate:"gte=0" diff:"head_cm"`
	Milestone string  `json:"milestone,omitempty" diff:"milestone"`
}

// Record is a single logged event. Exactly one payload, the one matching
// Category, is set.
type Record struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	Category  Category  `json:"category"`
	Time      time.Time `json:"time"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Feeding  *Feeding  `json:"feeding,omitempty"`
	Sleep    *Sleep    `json:"sleep,omitempty"`
	Diaper   *Diaper   `json:"diaper,omitempty"`
	Medicine *Medicine `json:"medicine,omitempty"`
	Growth   *Growth   `json:"growth,omitempty"`
}

// NewRecord returns a record of the given category with an empty payload.
func NewRecord(c Category) *Record {
	r := &Record{Category: c}
	switch c {
	case CategoryFeeding:
		r.Feeding = &Feeding{}
	case CategorySleep:
		r.Sleep = &Sleep{}
	case CategoryDiaper:
		r.Diaper = &Diaper{}
	case CategoryMedicine:
		r.Medicine = &Medicine{}
	case CategoryGrowth:
		r.Growth = &Growth{}
	}
	return r
}

// Payload returns a pointer to the category payload, or nil if it is missing.
func (r *Record) Payload() any {
	switch r.Category {
	case CategoryFeeding:
		if r.Feeding != nil {
			return r.Feeding
		}
	case CategorySleep:
		if r.Sleep != nil {
			return r.Sleep
		}
	case CategoryDiaper:
		if r.Diaper != nil {
			return r.Diaper
		}
	case CategoryMedicine:
		if r.Medicine != nil {
			return r.Medicine
		}
	case CategoryGrowth:
		if r.Growth != nil {
			return r.Growth
		}
	}
	return nil
}

// Amount is the summable quantity of a record: feeding volume or sleep minutes.
func (r *Record) Amount() float64 {
	switch {
	case r.Category == CategoryFeeding && r.Feeding != nil:
		return r.Feeding.Amount
	case r.Category == CategorySleep && r.Sleep != nil:
		return float64(r.Sleep.Duration)
	}
	return 0
}

// ApplyDefaults fills empty enum fields and derives the sleep duration.
func (r *Record) ApplyDefaults() {
	switch p := r.Payload().(type) {
	case *Feeding:
		if p.Subtype == "" {
			p.Subtype = FeedingBottle
		}
		if p.Side == "" {
			if p.Subtype == FeedingBreast {
				p.Side = SideBoth
			} else {
				p.Side = SideNone
			}
		}
	case *Sleep:
		if p.Quality == "" {
			p.Quality = QualityNormal
		}
		if p.End != nil && p.Duration == 0 && !p.End.Before(r.Time) {
			p.Duration = int(p.End.Sub(r.Time) / time.Minute)
		}
	case *Diaper:
		if p.Subtype == "" {
			p.Subtype = DiaperWet
		}
	case *Medicine:
		if p.FrequencyPerDay == 0 {
			p.FrequencyPerDay = 1
		}
		if p.CourseDays == 0 {
			p.CourseDays = 1
		}
	}
}

// Validate checks the category, the payload shape and the payload fields.
func (r *Record) Validate() error {
	if !ValidCategories[r.Category] {
		return Invalid("unknown category %q", r.Category)
	}
	set := 0
	for _, p := range []bool{r.Feeding != nil, r.Sleep != nil, r.Diaper != nil, r.Medicine != nil, r.Growth != nil} {
		if p {
			set++
		}
	}
	payload := r.Payload()
	if payload == nil || set != 1 {
		return Invalid("%s record must carry exactly one %s payload", r.Category, r.Category)
	}
	if err := validate.Struct(payload); err != nil {
		return ValidationError(err)
	}
	if r.Sleep != nil && r.Sleep.End != nil && !r.Time.IsZero() && r.Sleep.End.Before(r.Time) {
		return Invalid("sleep end %s is before start %s", r.Sleep.End.Format(time.RFC3339), r.Time.Format(time.RFC3339))
	}
	return nil
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	if r.Feeding != nil {
		f := *r.Feeding
		c.Feeding = &f
	}
	if r.Sleep != nil {
		s := *r.Sleep
		if r.Sleep.End != nil {
			end := *r.Sleep.End
			s.End = &end
		}
		c.Sleep = &s
	}
	if r.Diaper != nil {
		d := *r.Diaper
		c.Diaper = &d
	}
	if r.Medicine != nil {
		m := *r.Medicine
		c.Medicine = &m
	}
	if r.Growth != nil {
		g := *r.Growth
		c.Growth = &g
	}
	return &c
}

// Patch holds the fields an update replaces, keyed by their JSON names.
// "note" targets the record note; every other key targets the payload.
type Patch map[string]any

// immutableFields can never be changed through a Patch.
var immutableFields = map[string]bool{
	"id":         true,
	"profile_id": true,
	"category":   true,
	"time":       true,
	"created_at": true,
}

// ApplyPatch merges p into the record in place. Unknown fields are rejected.
func (r *Record) ApplyPatch(p Patch) error {
	payload := make(map[string]any, len(p))
	for k, v := range p {
		if immutableFields[k] {
			return Invalid("field %q cannot be updated", k)
		}
		if k == "note" {
			note, ok := v.(string)
			if !ok {
				return Invalid("note must be a string")
			}
			r.Note = note
			continue
		}
		payload[k] = v
	}
	if len(payload) == 0 {
		return nil
	}
	target := r.Payload()
	if target == nil {
		return Invalid("%s record has no payload", r.Category)
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return ValidationError(err)
	}
	if err := decodeStrict(b, target); err != nil {
		return Invalid("patch %s: %v", r.Category, err)
	}
	// A new end invalidates the derived duration unless one is given.
	_, hasEnd := payload["end"]
	_, hasDuration := payload["duration"]
	if r.Sleep != nil && hasEnd && !hasDuration {
		r.Sleep.Duration = 0
	}
	return nil
}

// DecodeRecord parses a JSON record, rejecting unknown fields.
func DecodeRecord(data []byte) (*Record, error) {
	var r Record
	if err := decodeStrict(data, &r); err != nil {
		return nil, Invalid("decode record: %v", err)
	}
	return &r, nil
}

// DecodePayload parses a JSON payload for the given category into a new record.
func DecodePayload(c Category, data []byte) (*Record, error) {
	r := NewRecord(c)
	target := r.Payload()
	if target == nil {
		return nil, Invalid("unknown category %q", c)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return r, nil
	}
	if err := decodeStrict(data, target); err != nil {
		return nil, Invalid("decode %s: %v", c, err)
	}
	return r, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
