package app

import (
	"context"
	"time"

	"weightbot/internal/domain"
)

// Bounds for History.
const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// SubmitResult is the outcome of a successful weight submission.
type SubmitResult struct {
	Saved    domain.Measurement
	Previous *domain.Measurement
}

// First reports whether Saved is the user's first measurement.
func (r SubmitResult) First() bool {
	return r.Previous == nil
}

// Delta returns the change against the previous measurement. It is zero and
// Unchanged for a first measurement.
func (r SubmitResult) Delta() (float64, domain.Trend) {
	if r.Previous == nil {
		return 0, domain.Unchanged
	}
	return domain.Delta(r.Previous.Weight, r.Saved.Weight)
}

// MeasurementService encapsulates the weight-tracking use cases of one user.
type MeasurementService struct {
	users        domain.UserRepository
	measurements domain.MeasurementRepository
	now          func() time.Time
}

// NewMeasurementService creates a MeasurementService backed by the given repositories.
func NewMeasurementService(users domain.UserRepository, measurements domain.MeasurementRepository) *MeasurementService {
	return &MeasurementService{users: users, measurements: measurements, now: time.Now}
}

// WithClock replaces the clock used to timestamp new measurements.
func (s *MeasurementService) WithClock(now func() time.Time) *MeasurementService {
	s.now = now
	return s
}

// Register records the user unless already known. Existing rows are left untouched.
func (s *MeasurementService) Register(ctx context.Context, u domain.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	return domain.WrapStore("upsert user", s.users.UpsertUser(ctx, u))
}

// SubmitWeight parses raw, validates the range, registers the user if needed
// and stores the measurement. No row is written when an error is returned.
func (s *MeasurementService) SubmitWeight(ctx context.Context, u domain.User, raw string) (*SubmitResult, error) {
	w, err := domain.ParseWeight(raw)
	if err != nil {
		return nil, err
	}
	if err := s.Register(ctx, u); err != nil {
		return nil, err
	}

	prev, err := s.measurements.LatestMeasurement(ctx, u.ID)
	if err != nil {
		return nil, domain.WrapStore("latest measurement", err)
	}

	at := s.now().UTC()
	id, err := s.measurements.InsertMeasurement(ctx, u.ID, w, at)
	if err != nil {
		return nil, domain.WrapStore("insert measurement", err)
	}

	return &SubmitResult{
		Saved:    domain.Measurement{ID: id, UserID: u.ID, Weight: w, At: at},
		Previous: prev,
	}, nil
}

// Last returns the most recent measurement, or nil if there is none.
func (s *MeasurementService) Last(ctx context.Context, userID int64) (*domain.Measurement, error) {
	m, err := s.measurements.LatestMeasurement(ctx, userID)
	return m, domain.WrapStore("latest measurement", err)
}

// History returns up to limit measurements, newest first. A non-positive
// limit means DefaultHistoryLimit; limits above MaxHistoryLimit are capped.
func (s *MeasurementService) History(ctx context.Context, userID int64, limit int) ([]domain.Measurement, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	items, err := s.measurements.RecentMeasurements(ctx, userID, limit)
	if err != nil {
		return nil, domain.WrapStore("recent measurements", err)
	}
	return items, nil
}

// DeleteLast removes the user's most recent measurement and returns it, or
// nil when the user has none.
func (s *MeasurementService) DeleteLast(ctx context.Context, userID int64) (*domain.Measurement, error) {
	last, err := s.measurements.LatestMeasurement(ctx, userID)
	if err != nil {
		return nil, domain.WrapStore("latest measurement", err)
	}
	if last == nil {
		return nil, nil
	}
	deleted, err := s.measurements.DeleteMeasurement(ctx, last.ID)
	if err != nil {
		return nil, domain.WrapStore("delete measurement", err)
	}
	return deleted, nil
}

// Clear removes all of the user's measurements and returns how many were removed.
func (s *MeasurementService) Clear(ctx context.Context, userID int64) (int64, error) {
	n, err := s.measurements.DeleteAllMeasurements(ctx, userID)
	if err != nil {
		return 0, domain.WrapStore("delete all measurements", err)
	}
	return n, nil
}

// HistoryChange returns the net change across a newest-first history, from
// the oldest item to the newest. ok is false with fewer than two items.
func HistoryChange(items []domain.Measurement) (change float64, trend domain.Trend, ok bool) {
	if len(items) < 2 {
		return 0, domain.Unchanged, false
	}
	change, trend = domain.Delta(items[len(items)-1].Weight, items[0].Weight)
	return change, trend, true
}
