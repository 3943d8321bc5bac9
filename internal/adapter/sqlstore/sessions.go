package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"weightbot/internal/domain"
)

// CreateSession stores an admin session.
func (d *DB) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := d.sql.ExecContext(ctx, d.sql.Rebind(
		"INSERT INTO admin_sessions (token, subject, expires_at, created_at) VALUES (?, ?, ?, ?);"),
		s.Token, s.Subject, newDBTime(s.ExpiresAt), newDBTime(s.CreatedAt),
	)
	return err
}

// GetSession retrieves a session by token.
func (d *DB) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	var row struct {
		Token     string `db:"token"`
		Subject   string `db:"subject"`
		ExpiresAt dbTime `db:"expires_at"`
		CreatedAt dbTime `db:"created_at"`
	}
	err := d.sql.GetContext(ctx, &row, d.sql.Rebind(
		"SELECT token, subject, expires_at, created_at FROM admin_sessions WHERE token = ?;"), token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		Token:     row.Token,
		Subject:   row.Subject,
		ExpiresAt: row.ExpiresAt.Time,
		CreatedAt: row.CreatedAt.Time,
	}, nil
}

// DeleteSession deletes a session by token.
func (d *DB) DeleteSession(ctx context.Context, token string) error {
	_, err := d.sql.ExecContext(ctx, d.sql.Rebind("DELETE FROM admin_sessions WHERE token = ?;"), token)
	return err
}

// DeleteExpiredSessions deletes all sessions that expired before now.
func (d *DB) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	_, err := d.sql.ExecContext(ctx, d.sql.Rebind("DELETE FROM admin_sessions WHERE expires_at < ?;"), newDBTime(now))
	return err
}
