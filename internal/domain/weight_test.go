package domain_test

import (
	"errors"
	"math"
	"testing"

	"weightbot/internal/domain"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestParseWeight(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr error
	}{
		{"dot", "75.5", 75.5, nil},
		{"comma", "75,5", 75.5, nil},
		{"integer", "80", 80, nil},
		{"padded", "  68.3 \n", 68.3, nil},
		{"lower bound", "30", 30, nil},
		{"upper bound", "300", 300, nil},
		{"trailing dot", "70.", 70, nil},
		{"exponent", "1e2", 100, nil},
		{"text", "abc", 0, domain.ErrInvalidWeight},
		{"empty", "", 0, domain.ErrInvalidWeight},
		{"nan", "NaN", 0, domain.ErrInvalidWeight},
		{"inf", "Inf", 0, domain.ErrInvalidWeight},
		{"hex", "0x1p6", 0, domain.ErrInvalidWeight},
		{"two separators", "7,5.5", 0, domain.ErrInvalidWeight},
		{"unit suffix", "75kg", 0, domain.ErrInvalidWeight},
		{"too heavy", "400", 0, domain.ErrWeightOutOfRange},
		{"too light", "29.9", 0, domain.ErrWeightOutOfRange},
		{"negative", "-70", 0, domain.ErrWeightOutOfRange},
		{"overflow", "1e400", 0, domain.ErrWeightOutOfRange},
		{"negative overflow", "-1e400", 0, domain.ErrWeightOutOfRange},
		{"underflow", "1e-400", 0, domain.ErrWeightOutOfRange},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := domain.ParseWeight(tc.raw)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("ParseWeight(%q) error = %v; want %v", tc.raw, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseWeight(%q) unexpected error: %v", tc.raw, err)
			}
			if !almostEqual(got, tc.want, 1e-9) {
				t.Errorf("ParseWeight(%q) = %v; want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestDelta(t *testing.T) {
	tests := []struct {
		name       string
		prev, next float64
		want       float64
		trend      domain.Trend
		formatted  string
	}{
		{"increase", 70.0, 72.5, 2.5, domain.Increase, "+2.5"},
		{"decrease", 80, 79, -1, domain.Decrease, "-1.0"},
		{"unchanged", 75.5, 75.5, 0, domain.Unchanged, "+0.0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, trend := domain.Delta(tc.prev, tc.next)
			if !almostEqual(d, tc.want, 1e-9) || trend != tc.trend {
				t.Fatalf("Delta(%v, %v) = %v, %v; want %v, %v", tc.prev, tc.next, d, trend, tc.want, tc.trend)
			}
			if got := domain.FormatDelta(d); got != tc.formatted {
				t.Errorf("FormatDelta(%v) = %q; want %q", d, got, tc.formatted)
			}
		})
	}
}

func TestFormatWeight(t *testing.T) {
	if got := domain.FormatWeight(72.5); got != "72.5" {
		t.Errorf("got %q", got)
	}
	if got := domain.FormatWeight(80); got != "80" {
		t.Errorf("got %q", got)
	}
}

func TestUserDisplayName(t *testing.T) {
	u := domain.User{FirstName: "Ann"}
	if got := u.DisplayName(); got != "Ann" {
		t.Errorf("got %q", got)
	}
	u.LastName = "Lee"
	if got := u.DisplayName(); got != "Ann Lee" {
		t.Errorf("got %q", got)
	}
	if got := (domain.User{}).DisplayName(); got != "" {
		t.Errorf("got %q", got)
	}
}
