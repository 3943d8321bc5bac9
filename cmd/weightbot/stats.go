package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"weightbot/internal/app"
	"weightbot/internal/config"
	"weightbot/internal/domain"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the global statistics report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFiles...)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			sum, err := app.NewReportService(st, st, st).GlobalSummary(cmd.Context())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
}

func printSummary(w io.Writer, s *app.Summary) {
	head := color.New(color.FgCyan, color.Bold)
	label := color.New(color.Faint)

	row := func(name string, value any) {
		label.Fprintf(w, "  %-22s", name)
		fmt.Fprintln(w, value)
	}
	weight := func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf("%.1f kg", *v)
	}
	date := func(t *time.Time) string {
		if t == nil {
			return "n/a"
		}
		return domain.Civil(*t).Format("02.01.2006 15:04")
	}

	head.Fprintln(w, "Users")
	row("total", s.TotalUsers)
	row("active (7 days)", s.ActiveUsers7d)

	head.Fprintln(w, "Measurements")
	row("total", s.TotalMeasurements)
	row("last 7 days", s.Measurements7d)
	row("last 30 days", s.Measurements30d)
	row("first", date(s.FirstRecordAt))
	row("last", date(s.LastRecordAt))
	row("span (days)", s.Span())

	head.Fprintln(w, "Weight")
	row("average", weight(s.AvgWeight))
	row("minimum", weight(s.MinWeight))
	row("maximum", weight(s.MaxWeight))

	if len(s.TopUsers) > 0 {
		head.Fprintln(w, "Most active")
		for i, u := range s.TopUsers {
			row(fmt.Sprintf("%d. user %d", i+1, u.UserID), u.Count)
		}
	}
}
