package app_test

import (
	"context"
	"testing"
	"time"

	"weightbot/internal/app"
	"weightbot/internal/domain"
)

func TestDaily(t *testing.T) {
	// 2026-06-15 02:00 civil.
	now := time.Date(2026, 6, 14, 22, 0, 0, 0, time.UTC)
	repo := &mockMeasurementRepo{
		recentFn: func(_ context.Context, _ int64, _ int) ([]domain.Measurement, error) {
			return []domain.Measurement{
				{ID: 4, Weight: 79, At: time.Date(2026, 6, 14, 21, 0, 0, 0, time.UTC)}, // 06-15 01:00 civil
				{ID: 3, Weight: 80, At: time.Date(2026, 6, 14, 19, 0, 0, 0, time.UTC)}, // 06-14 23:00 civil
				{ID: 2, Weight: 81, At: time.Date(2026, 6, 14, 8, 0, 0, 0, time.UTC)},
				{ID: 1, Weight: 82, At: time.Date(2026, 6, 12, 8, 0, 0, 0, time.UTC)},
			}, nil
		},
	}
	svc := app.NewChartsService(repo).WithClock(fixedClock(now))
	points, err := svc.Daily(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	want := []struct {
		day    string
		weight float64
		has    bool
	}{
		{"2026-06-13", 0, false},
		{"2026-06-14", 80, true},
		{"2026-06-15", 79, true},
	}
	for i, w := range want {
		p := points[i]
		if p.Day != w.day {
			t.Errorf("point %d: expected day %s, got %s", i, w.day, p.Day)
		}
		if (p.Weight != nil) != w.has || (w.has && *p.Weight != w.weight) {
			t.Errorf("point %d: expected weight %v (present=%v), got %v", i, w.weight, w.has, p.Weight)
		}
	}
}

func TestDaily_ClampsDays(t *testing.T) {
	svc := app.NewChartsService(&mockMeasurementRepo{})
	for days, want := range map[int]int{0: 1, -3: 1, 400: 366} {
		points, err := svc.Daily(context.Background(), 1, days)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(points) != want {
			t.Errorf("days=%d: expected %d points, got %d", days, want, len(points))
		}
	}
}
