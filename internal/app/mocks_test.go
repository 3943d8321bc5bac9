package app_test

import (
	"context"
	"time"

	"weightbot/internal/domain"
)

type mockUserRepo struct {
	upsertFn func(ctx context.Context, u domain.User) error
	getFn    func(ctx context.Context, id int64) (*domain.User, error)
}

func (m *mockUserRepo) UpsertUser(ctx context.Context, u domain.User) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, u)
	}
	return nil
}

func (m *mockUserRepo) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

type mockMeasurementRepo struct {
	insertFn    func(ctx context.Context, userID int64, w float64, at time.Time) (int64, error)
	latestFn    func(ctx context.Context, userID int64) (*domain.Measurement, error)
	recentFn    func(ctx context.Context, userID int64, limit int) ([]domain.Measurement, error)
	deleteFn    func(ctx context.Context, id int64) (*domain.Measurement, error)
	deleteAllFn func(ctx context.Context, userID int64) (int64, error)
}

func (m *mockMeasurementRepo) InsertMeasurement(ctx context.Context, userID int64, w float64, at time.Time) (int64, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, userID, w, at)
	}
	return 1, nil
}

func (m *mockMeasurementRepo) LatestMeasurement(ctx context.Context, userID int64) (*domain.Measurement, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockMeasurementRepo) RecentMeasurements(ctx context.Context, userID int64, limit int) ([]domain.Measurement, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockMeasurementRepo) DeleteMeasurement(ctx context.Context, id int64) (*domain.Measurement, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil, nil
}

func (m *mockMeasurementRepo) DeleteAllMeasurements(ctx context.Context, userID int64) (int64, error) {
	if m.deleteAllFn != nil {
		return m.deleteAllFn(ctx, userID)
	}
	return 0, nil
}

// fixedClock returns a clock that always reports t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
