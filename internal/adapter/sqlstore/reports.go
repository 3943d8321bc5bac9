package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"weightbot/internal/domain"
)

type statsRow struct {
	Count   int             `db:"n"`
	Avg     sql.NullFloat64 `db:"avg_weight"`
	Min     sql.NullFloat64 `db:"min_weight"`
	Max     sql.NullFloat64 `db:"max_weight"`
	FirstAt dbTime          `db:"first_at"`
	LastAt  dbTime          `db:"last_at"`
}

func (r statsRow) toDomain() domain.WeightStats {
	return domain.WeightStats{
		Count: r.Count,
		Avg:   floatPtr(r.Avg),
		Min:   floatPtr(r.Min),
		Max:   floatPtr(r.Max),
		First: r.FirstAt.Ptr(),
		Last:  r.LastAt.Ptr(),
	}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

const statsColumns = "COUNT(*) AS n, AVG(weight) AS avg_weight, MIN(weight) AS min_weight, MAX(weight) AS max_weight, MIN(date) AS first_at, MAX(date) AS last_at"

func (d *DB) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := d.sql.GetContext(ctx, &n, d.sql.Rebind(query), args...)
	return n, err
}

// CountUsers returns the number of registered users.
func (d *DB) CountUsers(ctx context.Context) (int, error) {
	return d.count(ctx, "SELECT COUNT(*) FROM users;")
}

// CountMeasurements returns the number of stored measurements.
func (d *DB) CountMeasurements(ctx context.Context) (int, error) {
	return d.count(ctx, "SELECT COUNT(*) FROM weight_records;")
}

// CountActiveUsersSince counts distinct users with a measurement at or after since.
func (d *DB) CountActiveUsersSince(ctx context.Context, since time.Time) (int, error) {
	return d.count(ctx, "SELECT COUNT(DISTINCT user_id) FROM weight_records WHERE date >= ?;", newDBTime(since))
}

// CountMeasurementsSince counts measurements at or after since.
func (d *DB) CountMeasurementsSince(ctx context.Context, since time.Time) (int, error) {
	return d.count(ctx, "SELECT COUNT(*) FROM weight_records WHERE date >= ?;", newDBTime(since))
}

// WeightStats aggregates every stored measurement.
func (d *DB) WeightStats(ctx context.Context) (domain.WeightStats, error) {
	var row statsRow
	if err := d.sql.GetContext(ctx, &row, "SELECT "+statsColumns+" FROM weight_records;"); err != nil {
		return domain.WeightStats{}, err
	}
	return row.toDomain(), nil
}

// UserWeightStats aggregates one user's measurements.
func (d *DB) UserWeightStats(ctx context.Context, userID int64) (domain.WeightStats, error) {
	var row statsRow
	err := d.sql.GetContext(ctx, &row, d.sql.Rebind("SELECT "+statsColumns+" FROM weight_records WHERE user_id = ?;"), userID)
	if err != nil {
		return domain.WeightStats{}, err
	}
	return row.toDomain(), nil
}

// TopUsers returns the n users with the most measurements.
func (d *DB) TopUsers(ctx context.Context, n int) ([]domain.UserCount, error) {
	var rows []struct {
		UserID int64 `db:"user_id"`
		Count  int   `db:"n"`
	}
	err := d.sql.SelectContext(ctx, &rows, d.sql.Rebind(
		"SELECT user_id, COUNT(*) AS n FROM weight_records GROUP BY user_id ORDER BY n DESC, user_id ASC LIMIT ?;"), n)
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.UserCount{UserID: r.UserID, Count: r.Count})
	}
	return out, nil
}

// ListUserSummaries lists users newest registration first with their
// measurement count and last measurement time.
func (d *DB) ListUserSummaries(ctx context.Context, limit int) ([]domain.UserSummary, error) {
	var rows []struct {
		userRow
		MeasurementCount  int    `db:"measurement_count"`
		LastMeasurementAt dbTime `db:"last_measurement_at"`
	}
	err := d.sql.SelectContext(ctx, &rows, d.sql.Rebind(
		"SELECT "+userColumns+", COUNT(w.id) AS measurement_count, MAX(w.date) AS last_measurement_at "+
			"FROM users u LEFT JOIN weight_records w ON w.user_id = u.user_id "+
			"GROUP BY u.user_id, u.username, u.first_name, u.last_name, u.created_at "+
			"ORDER BY u.created_at DESC, u.user_id DESC LIMIT ?;"), limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.UserSummary{
			User:              r.userRow.toDomain(),
			MeasurementCount:  r.MeasurementCount,
			LastMeasurementAt: r.LastMeasurementAt.Ptr(),
		})
	}
	return out, nil
}
