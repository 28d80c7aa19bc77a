package aggregate

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/rcliao/babylog/internal/datetime"
	"github.com/rcliao/babylog/internal/model"
	"github.com/rcliao/babylog/internal/store"
)

// ChartPoint is one day of a chart series.
type ChartPoint struct {
	Date   string  `json:"date"`
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// ChartSeries returns exactly days points ending today, oldest first. Days
// without records are zero.
func (e *Engine) ChartSeries(ctx context.Context, profileID string, c model.Category, days int) ([]ChartPoint, error) {
	if days <= 0 {
		return nil, model.Invalid("days must be positive, got %d", days)
	}

	today := datetime.StartOfDay(e.clock.Now())
	first := today.AddDate(0, 0, -(days - 1))

	recs, err := e.reader.GetRecords(ctx, store.ListParams{
		ProfileID: profileID,
		Category:  c,
		From:      first,
		To:        today.AddDate(0, 0, 1).Add(-time.Nanosecond),
	})
	if err != nil {
		return nil, err
	}
	byDay := lo.GroupBy(recs, func(r model.Record) string {
		return datetime.Format(r.Time.In(today.Location()), datetime.LayoutDate)
	})

	points := make([]ChartPoint, 0, days)
	for i := 0; i < days; i++ {
		day := first.AddDate(0, 0, i)
		key := datetime.Format(day, datetime.LayoutDate)
		dayRecs := byDay[key]
		points = append(points, ChartPoint{
			Date:   key,
			Label:  datetime.Format(day, datetime.LayoutLabel),
			Count:  len(dayRecs),
			Amount: lo.SumBy(dayRecs, func(r model.Record) float64 { return r.Amount() }),
		})
	}
	return points, nil
}

// GrowthPoint is one growth measurement.
type GrowthPoint struct {
	Time     time.Time `json:"time"`
	Label    string    `json:"label"`
	HeightCM float64   `json:"height_cm"`
	WeightKG float64   `json:"weight_kg"`
	HeadCM   float64   `json:"head_cm"`
}

// GrowthCurve returns every growth measurement, oldest first.
func (e *Engine) GrowthCurve(ctx context.Context, profileID string) ([]GrowthPoint, error) {
	recs, err := e.reader.GetRecords(ctx, store.ListParams{ProfileID: profileID, Category: model.CategoryGrowth})
	if err != nil {
		return nil, err
	}
	points := lo.Map(lo.Reverse(recs), func(r model.Record, _ int) GrowthPoint {
		return GrowthPoint{
			Time:     r.Time,
			Label:    datetime.Format(r.Time, datetime.LayoutLabel),
			HeightCM: r.Growth.HeightCM,
			WeightKG: r.Growth.WeightKG,
			HeadCM:   r.Growth.HeadCM,
		}
	})
	return points, nil
}

// LatestGrowth returns the newest growth record. ok is false when there is none.
func (e *Engine) LatestGrowth(ctx context.Context, profileID string) (*model.Record, bool, error) {
	return e.LastRecord(ctx, profileID, model.CategoryGrowth)
}
