package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"weightbot/internal/app"
	"weightbot/internal/domain"
)

func TestPrintSummary(t *testing.T) {
	color.NoColor = true

	avg, lo, hi := 74.0, 60.0, 82.0
	first := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	last := time.Date(2026, 1, 10, 6, 0, 0, 0, time.UTC)
	sum := &app.Summary{
		TotalUsers:        2,
		TotalMeasurements: 5,
		FirstRecordAt:     &first,
		LastRecordAt:      &last,
		AvgWeight:         &avg,
		MinWeight:         &lo,
		MaxWeight:         &hi,
		TopUsers:          []domain.UserCount{{UserID: 42, Count: 3}},
	}

	var buf bytes.Buffer
	printSummary(&buf, sum)
	out := buf.String()

	for _, want := range []string{"74.0 kg", "60.0 kg", "82.0 kg", "01.01.2026 10:00", "1. user 42", "span (days)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSummaryEmpty(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printSummary(&buf, &app.Summary{})
	out := buf.String()

	if strings.Count(out, "n/a") != 5 {
		t.Errorf("expected n/a for dates and weights:\n%s", out)
	}
	if strings.Contains(out, "Most active") {
		t.Errorf("empty summary should not list top users:\n%s", out)
	}
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "backup", "stats"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered: %v", name, err)
		}
	}
}
