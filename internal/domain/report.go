package domain

import (
	"context"
	"time"
)

// WeightStats aggregates a set of measurements. Avg, Min, Max, First and Last
// are nil when Count is zero.
type WeightStats struct {
	Count int        `json:"count"`
	Avg   *float64   `json:"avg"`
	Min   *float64   `json:"min"`
	Max   *float64   `json:"max"`
	First *time.Time `json:"first"`
	Last  *time.Time `json:"last"`
}

// UserCount pairs a user with their number of measurements.
type UserCount struct {
	UserID int64 `json:"userId"`
	Count  int   `json:"count"`
}

// UserSummary is one row of the admin user list.
type UserSummary struct {
	User
	MeasurementCount  int        `json:"measurementCount"`
	LastMeasurementAt *time.Time `json:"lastMeasurementAt"`
}

// ReportRepository is the read-only port used for admin reporting.
type ReportRepository interface {
	CountUsers(ctx context.Context) (int, error)
	CountMeasurements(ctx context.Context) (int, error)
	CountActiveUsersSince(ctx context.Context, since time.Time) (int, error)
	CountMeasurementsSince(ctx context.Context, since time.Time) (int, error)
	WeightStats(ctx context.Context) (WeightStats, error)
	TopUsers(ctx context.Context, n int) ([]UserCount, error)
	// ListUserSummaries orders by registration time, newest first.
	ListUserSummaries(ctx context.Context, limit int) ([]UserSummary, error)
	UserWeightStats(ctx context.Context, userID int64) (WeightStats, error)
}
