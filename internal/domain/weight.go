package domain

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Accepted weight range in kilograms, inclusive.
const (
	MinWeight = 30.0
	MaxWeight = 300.0
)

// Measurement is one timestamped weight observation belonging to one user.
type Measurement struct {
	ID     int64     `json:"id"`
	UserID int64     `json:"userId"`
	Weight float64   `json:"weight"`
	At     time.Time `json:"at"`
}

// MeasurementRepository is the port for measurement persistence.
type MeasurementRepository interface {
	// InsertMeasurement returns ErrUnknownUser when userID has no user row.
	InsertMeasurement(ctx context.Context, userID int64, weight float64, at time.Time) (int64, error)
	LatestMeasurement(ctx context.Context, userID int64) (*Measurement, error)
	RecentMeasurements(ctx context.Context, userID int64, limit int) ([]Measurement, error)
	DeleteMeasurement(ctx context.Context, id int64) (*Measurement, error)
	DeleteAllMeasurements(ctx context.Context, userID int64) (int64, error)
}

var decimalRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ParseWeight parses user input as a weight in kilograms. A comma is accepted
// as the decimal separator.
func ParseWeight(raw string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if !decimalRe.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeight, raw)
	}
	v, err := strconv.ParseFloat(s, 64)
	if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %q", ErrWeightOutOfRange, raw)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeight, raw)
	}
	if v < MinWeight || v > MaxWeight {
		return 0, fmt.Errorf("%w: %v", ErrWeightOutOfRange, v)
	}
	return v, nil
}

// Trend classifies the sign of a weight change.
type Trend int

const (
	Unchanged Trend = iota
	Increase
	Decrease
)

func (t Trend) String() string {
	switch t {
	case Increase:
		return "increase"
	case Decrease:
		return "decrease"
	default:
		return "unchanged"
	}
}

// Delta returns next-prev and its classification. Only exact equality is
// Unchanged.
func Delta(prev, next float64) (float64, Trend) {
	d := next - prev
	switch {
	case d > 0:
		return d, Increase
	case d < 0:
		return d, Decrease
	default:
		return 0, Unchanged
	}
}

// FormatDelta renders a change with an explicit sign and one decimal, e.g. "+2.5".
func FormatDelta(d float64) string {
	return fmt.Sprintf("%+.1f", d)
}

// FormatWeight renders a stored weight without trailing zeros, e.g. "72.5" or "80".
func FormatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
