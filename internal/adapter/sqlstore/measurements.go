package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"weightbot/internal/domain"
)

type measurementRow struct {
	ID     int64   `db:"id"`
	UserID int64   `db:"user_id"`
	Weight float64 `db:"weight"`
	Date   dbTime  `db:"date"`
}

func (r measurementRow) toDomain() domain.Measurement {
	return domain.Measurement{ID: r.ID, UserID: r.UserID, Weight: r.Weight, At: r.Date.Time}
}

// InsertMeasurement stores a measurement for an existing user inside one
// transaction and returns the new ID.
func (d *DB) InsertMeasurement(ctx context.Context, userID int64, weight float64, at time.Time) (int64, error) {
	tx, err := d.sql.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.GetContext(ctx, &n, tx.Rebind("SELECT COUNT(1) FROM users WHERE user_id = ?;"), userID); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %d", domain.ErrUnknownUser, userID)
	}

	var id int64
	err = tx.QueryRowxContext(ctx, tx.Rebind(
		"INSERT INTO weight_records (user_id, weight, date) VALUES (?, ?, ?) RETURNING id;"),
		userID, weight, newDBTime(at),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// LatestMeasurement returns the user's newest measurement; ties on date go to
// the higher ID.
func (d *DB) LatestMeasurement(ctx context.Context, userID int64) (*domain.Measurement, error) {
	var row measurementRow
	err := d.sql.GetContext(ctx, &row, d.sql.Rebind(
		"SELECT id, user_id, weight, date FROM weight_records WHERE user_id = ? ORDER BY date DESC, id DESC LIMIT 1;"), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := row.toDomain()
	return &m, nil
}

// RecentMeasurements returns up to limit measurements, newest first.
func (d *DB) RecentMeasurements(ctx context.Context, userID int64, limit int) ([]domain.Measurement, error) {
	var rows []measurementRow
	err := d.sql.SelectContext(ctx, &rows, d.sql.Rebind(
		"SELECT id, user_id, weight, date FROM weight_records WHERE user_id = ? ORDER BY date DESC, id DESC LIMIT ?;"), userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Measurement, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// DeleteMeasurement removes one row by ID and returns it, or nil if absent.
func (d *DB) DeleteMeasurement(ctx context.Context, id int64) (*domain.Measurement, error) {
	var row measurementRow
	err := d.sql.GetContext(ctx, &row, d.sql.Rebind(
		"DELETE FROM weight_records WHERE id = ? RETURNING id, user_id, weight, date;"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := row.toDomain()
	return &m, nil
}

// DeleteAllMeasurements removes every measurement of a user.
func (d *DB) DeleteAllMeasurements(ctx context.Context, userID int64) (int64, error) {
	res, err := d.sql.ExecContext(ctx, d.sql.Rebind("DELETE FROM weight_records WHERE user_id = ?;"), userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
