package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"weightbot/internal/domain"
)

type userRow struct {
	ID        int64  `db:"user_id"`
	Username  string `db:"username"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	CreatedAt dbTime `db:"created_at"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:        r.ID,
		Username:  r.Username,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		CreatedAt: r.CreatedAt.Time,
	}
}

const userColumns = "u.user_id, COALESCE(u.username, '') AS username, COALESCE(u.first_name, '') AS first_name, COALESCE(u.last_name, '') AS last_name, u.created_at"

// UpsertUser inserts a user row unless one already exists for u.ID.
func (d *DB) UpsertUser(ctx context.Context, u domain.User) error {
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := d.sql.ExecContext(ctx, d.sql.Rebind(
		"INSERT INTO users (user_id, username, first_name, last_name, created_at) VALUES (?, ?, ?, ?, ?) ON CONFLICT (user_id) DO NOTHING;"),
		u.ID, u.Username, u.FirstName, u.LastName, newDBTime(createdAt),
	)
	return err
}

// GetUser retrieves a user by platform ID.
func (d *DB) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var row userRow
	err := d.sql.GetContext(ctx, &row, d.sql.Rebind("SELECT "+userColumns+" FROM users u WHERE u.user_id = ?;"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u := row.toDomain()
	return &u, nil
}
