package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rcliao/babylog/internal/datetime"
	"github.com/rcliao/babylog/internal/model"
)

func parseCategoryArg(s string) model.Category {
	c, err := model.ParseCategory(s)
	if err != nil {
		exitErr("category", err)
	}
	return c
}

// summarize renders the payload of r on one line.
func summarize(r model.Record) string {
	var parts []string
	switch r.Category {
	case model.CategoryFeeding:
		f := r.Feeding
		parts = append(parts, string(f.Subtype))
		if f.Amount > 0 {
			parts = append(parts, fmt.Sprintf("%gml", f.Amount))
		}
		if f.Side != model.SideNone {
			parts = append(parts, string(f.Side))
		}
		if f.Duration > 0 {
			parts = append(parts, formatSeconds(f.Duration))
		}
	case model.CategorySleep:
		s := r.Sleep
		if s.End == nil {
			parts = append(parts, "in progress")
		} else {
			parts = append(parts, "until "+datetime.Format(*s.End, datetime.LayoutClock))
		}
		if s.Duration > 0 {
			parts = append(parts, datetime.FormatDuration(s.Duration))
		}
		parts = append(parts, string(s.Quality))
	case model.CategoryDiaper:
		parts = append(parts, string(r.Diaper.Subtype))
		if r.Diaper.Rash {
			parts = append(parts, "rash")
		}
	case model.CategoryMedicine:
		m := r.Medicine
		parts = append(parts, m.Name)
		if m.Dosage != "" {
			parts = append(parts, m.Dosage)
		}
		parts = append(parts, fmt.Sprintf("%dx/day for %dd", m.FrequencyPerDay, m.CourseDays))
	case model.CategoryGrowth:
		parts = append(parts, growthLine(r.Growth))
	}
	if r.Note != "" {
		parts = append(parts, fmt.Sprintf("(%s)", r.Note))
	}
	return strings.Join(parts, " ")
}

func growthLine(g *model.Growth) string {
	var parts []string
	if g.HeightCM > 0 {
		parts = append(parts, fmt.Sprintf("%gcm", g.HeightCM))
	}
	if g.WeightKG > 0 {
		parts = append(parts, fmt.Sprintf("%gkg", g.WeightKG))
	}
	if g.HeadCM > 0 {
		parts = append(parts, fmt.Sprintf("head %gcm", g.HeadCM))
	}
	if g.Milestone != "" {
		parts = append(parts, g.Milestone)
	}
	return strings.Join(parts, " ")
}

// formatSeconds renders a timer duration as "12:05" or "1:02:03".
func formatSeconds(sec int) string {
	d := time.Duration(sec) * time.Second
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// when renders a record time relative to now: "today 09:30 (2 hours ago)".
func when(t, now time.Time) string {
	var day string
	switch datetime.ClassifyAt(t, now) {
	case datetime.Today:
		day = "today"
	case datetime.Yesterday:
		day = "yesterday"
	default:
		day = datetime.Format(t, datetime.LayoutDate)
	}
	return fmt.Sprintf("%s %s (%s)", day, datetime.Format(t, datetime.LayoutClock), humanize.RelTime(t, now, "ago", "from now"))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
