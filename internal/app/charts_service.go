package app

import (
	"context"
	"time"

	"weightbot/internal/domain"
)

// chartRowLimit bounds how many measurements are scanned for a chart.
const chartRowLimit = 2000

// ChartsService builds per-day weight series for the admin charts.
type ChartsService struct {
	measurements domain.MeasurementRepository
	now          func() time.Time
}

// NewChartsService creates a ChartsService backed by the given repository.
func NewChartsService(measurements domain.MeasurementRepository) *ChartsService {
	return &ChartsService{measurements: measurements, now: time.Now}
}

// WithClock replaces the clock that defines "today".
func (s *ChartsService) WithClock(now func() time.Time) *ChartsService {
	s.now = now
	return s
}

// DayPoint is a single data point returned by Daily. Weight is nil on days
// without a measurement.
type DayPoint struct {
	Day    string   `json:"day"`
	Weight *float64 `json:"weight"`
}

// Daily returns one point per civil day for the last days days, oldest
// first, holding the last weight recorded on that day.
func (s *ChartsService) Daily(ctx context.Context, userID int64, days int) ([]DayPoint, error) {
	if days < 1 {
		days = 1
	}
	if days > 366 {
		days = 366
	}

	items, err := s.measurements.RecentMeasurements(ctx, userID, chartRowLimit)
	if err != nil {
		return nil, domain.WrapStore("recent measurements", err)
	}
	// items are newest first, so the first hit per day is that day's last weight.
	byDay := make(map[string]float64, len(items))
	for _, m := range items {
		day := domain.Civil(m.At).Format("2006-01-02")
		if _, ok := byDay[day]; !ok {
			byDay[day] = m.Weight
		}
	}

	today := domain.CivilDayStart(s.now())
	points := make([]DayPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format("2006-01-02")
		p := DayPoint{Day: day}
		if w, ok := byDay[day]; ok {
			p.Weight = &w
		}
		points = append(points, p)
	}
	return points, nil
}
