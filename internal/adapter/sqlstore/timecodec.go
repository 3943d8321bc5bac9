package sqlstore

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Fixed-width UTC text keeps lexical and chronological order identical in
// SQLite; PostgreSQL parses it into TIMESTAMPTZ.
const timeLayout = "2006-01-02 15:04:05.000000Z07:00"

var parseLayouts = []string{
	timeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// dbTime is a nullable UTC timestamp that round-trips through both drivers.
type dbTime struct {
	Time  time.Time
	Valid bool
}

func newDBTime(t time.Time) dbTime {
	return dbTime{Time: t, Valid: true}
}

// Value implements driver.Valuer.
func (t dbTime) Value() (driver.Value, error) {
	if !t.Valid {
		return nil, nil
	}
	return t.Time.UTC().Format(timeLayout), nil
}

// Scan implements sql.Scanner.
func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = dbTime{}
		return nil
	case time.Time:
		*t = newDBTime(v.UTC())
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("sqlstore: cannot scan %T into timestamp", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range parseLayouts {
		if p, err := time.Parse(layout, s); err == nil {
			*t = newDBTime(p.UTC())
			return nil
		}
	}
	return fmt.Errorf("sqlstore: unrecognised timestamp %q", s)
}

// Ptr returns nil for NULL.
func (t dbTime) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
