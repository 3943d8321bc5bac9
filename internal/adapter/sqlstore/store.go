// Package sqlstore implements the domain repositories on SQLite or PostgreSQL.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"weightbot/internal/domain"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrSnapshotUnsupported is returned by Snapshot on drivers without a file snapshot.
var ErrSnapshotUnsupported = errors.New("snapshot is only supported for sqlite")

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// DB wraps a pooled *sqlx.DB and implements the domain repository interfaces.
// Every method is one unit of work on a connection borrowed from the pool.
type DB struct {
	sql    *sqlx.DB
	driver string
}

var _ domain.UserRepository = (*DB)(nil)
var _ domain.MeasurementRepository = (*DB)(nil)
var _ domain.ReportRepository = (*DB)(nil)
var _ domain.SessionRepository = (*DB)(nil)

// SQLiteDSN builds a modernc DSN for a database file. The path is
// percent-encoded so '?', '#' and '%' in it are not read as URI syntax. The
// pragmas are applied to every pooled connection.
func SQLiteDSN(path string) string {
	segs := strings.Split(filepath.ToSlash(path), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return "file:" + strings.Join(segs, "/") +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_txlock=immediate"
}

// OpenSQLite creates the parent directory of path and opens it.
func OpenSQLite(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, domain.WrapStore("open", err)
		}
	}
	return Open(DriverSQLite, SQLiteDSN(path))
}

// Open connects, pings, and runs migrations.
func Open(driver, dsn string) (*DB, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
	s, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, domain.WrapStore("open", err)
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, domain.WrapStore("ping", err)
	}

	d := &DB{sql: s, driver: driver}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, domain.WrapStore("migrate", err)
	}
	return d, nil
}

// Driver reports the driver name the store was opened with.
func (d *DB) Driver() string {
	return d.driver
}

// Close closes the underlying connection pool.
func (d *DB) Close() error {
	return d.sql.Close()
}

var schemas = map[string][]string{
	DriverSQLite: {
		"CREATE TABLE IF NOT EXISTS users (user_id INTEGER PRIMARY KEY, username TEXT, first_name TEXT, last_name TEXT, created_at TEXT NOT NULL);",
		"CREATE TABLE IF NOT EXISTS weight_records (id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER NOT NULL REFERENCES users(user_id), weight REAL NOT NULL, date TEXT NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_weight_records ON weight_records (user_id, date DESC);",
		"CREATE TABLE IF NOT EXISTS admin_sessions (token TEXT PRIMARY KEY, subject TEXT NOT NULL, expires_at TEXT NOT NULL, created_at TEXT NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_admin_sessions_expires_at ON admin_sessions(expires_at);",
	},
	DriverPostgres: {
		"CREATE TABLE IF NOT EXISTS users (user_id BIGINT PRIMARY KEY, username TEXT, first_name TEXT, last_name TEXT, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE TABLE IF NOT EXISTS weight_records (id BIGSERIAL PRIMARY KEY, user_id BIGINT NOT NULL REFERENCES users(user_id), weight DOUBLE PRECISION NOT NULL, date TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_weight_records ON weight_records (user_id, date DESC);",
		"CREATE TABLE IF NOT EXISTS admin_sessions (token TEXT PRIMARY KEY, subject TEXT NOT NULL, expires_at TIMESTAMPTZ NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_admin_sessions_expires_at ON admin_sessions(expires_at);",
	},
}

func (d *DB) migrate(ctx context.Context) error {
	for _, stmt := range schemas[d.driver] {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Snapshot writes a transactionally consistent copy of a SQLite database to
// dst using VACUUM INTO. dst must not exist.
func (d *DB) Snapshot(ctx context.Context, dst string) error {
	if d.driver != DriverSQLite {
		return ErrSnapshotUnsupported
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	_, err := d.sql.ExecContext(ctx, "VACUUM INTO ?;", dst)
	return err
}
