package telegram

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"weightbot/internal/app"
	"weightbot/internal/domain"
)

// maxMessageLen stays under Telegram's 4096 character limit.
const maxMessageLen = 4000

const separator = "------------------------------\n"

func formatDate(t time.Time) string {
	return domain.Civil(t).Format("02.01.2006")
}

func formatDateTime(t time.Time) string {
	return domain.Civil(t).Format("02.01.2006 15:04")
}

func optDate(t *time.Time) string {
	if t == nil {
		return "n/a"
	}
	return formatDate(*t)
}

func optWeight(w *float64) string {
	if w == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f kg", *w)
}

func changeLine(label string, change float64, trend domain.Trend) string {
	if trend == domain.Unchanged {
		return "No change"
	}
	return fmt.Sprintf("%s: %s kg", label, domain.FormatDelta(change))
}

func formatSubmit(res *app.SubmitResult) string {
	var sb strings.Builder
	sb.WriteString("Weight saved!\n\n")
	fmt.Fprintf(&sb, "Date: %s\n", formatDateTime(res.Saved.At))
	fmt.Fprintf(&sb, "Weight: %s kg\n", domain.FormatWeight(res.Saved.Weight))

	if res.First() {
		sb.WriteString("\nThis is your first record. Keep it up!")
		return sb.String()
	}
	fmt.Fprintf(&sb, "\nCompared with %s:\n", formatDate(res.Previous.At))
	fmt.Fprintf(&sb, "Previous weight: %s kg\n", domain.FormatWeight(res.Previous.Weight))
	change, trend := res.Delta()
	sb.WriteString(changeLine("Change", change, trend))
	return sb.String()
}

func formatSummary(s *app.Summary) string {
	var sb strings.Builder
	sb.WriteString("Bot statistics\n\n")
	fmt.Fprintf(&sb, "Users: %d\n", s.TotalUsers)
	fmt.Fprintf(&sb, "Measurements: %d\n", s.TotalMeasurements)
	fmt.Fprintf(&sb, "Average weight: %s\n", optWeight(s.AvgWeight))
	fmt.Fprintf(&sb, "Min weight: %s\n", optWeight(s.MinWeight))
	fmt.Fprintf(&sb, "Max weight: %s\n\n", optWeight(s.MaxWeight))

	sb.WriteString("Activity:\n")
	fmt.Fprintf(&sb, "Active users, 7 days: %d\n", s.ActiveUsers7d)
	fmt.Fprintf(&sb, "Measurements, 7 days: %d\n", s.Measurements7d)
	fmt.Fprintf(&sb, "Measurements, 30 days: %d\n\n", s.Measurements30d)

	if s.FirstRecordAt != nil {
		fmt.Fprintf(&sb, "First record: %s\n", optDate(s.FirstRecordAt))
		fmt.Fprintf(&sb, "Last record: %s\n", optDate(s.LastRecordAt))
		fmt.Fprintf(&sb, "Days covered: %d\n\n", s.Span())
	}

	fmt.Fprintf(&sb, "Top %d users:\n", app.TopUsersCount)
	if len(s.TopUsers) == 0 {
		sb.WriteString("none yet\n")
	}
	for i, u := range s.TopUsers {
		fmt.Fprintf(&sb, "%d. ID %d: %d records\n", i+1, u.UserID, u.Count)
	}
	return sb.String()
}

func formatUserList(title string, users []domain.UserSummary) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")
	if len(users) == 0 {
		sb.WriteString("No users yet.\n")
	}
	for _, u := range users {
		fmt.Fprintf(&sb, "ID: %d\n", u.ID)
		fmt.Fprintf(&sb, "Name: %s\n", nameOrDefault(u.User))
		fmt.Fprintf(&sb, "Username: %s\n", usernameOrDefault(u.User))
		fmt.Fprintf(&sb, "Registered: %s\n", formatDate(u.CreatedAt))
		fmt.Fprintf(&sb, "Measurements: %d\n", u.MeasurementCount)
		if u.LastMeasurementAt != nil {
			fmt.Fprintf(&sb, "Last measurement: %s\n", formatDate(*u.LastMeasurementAt))
		}
		sb.WriteString(separator)
	}
	return sb.String()
}

func formatUserDetail(d *app.UserDetail) string {
	var sb strings.Builder
	sb.WriteString("User details")
	if d.User.Username != "" {
		fmt.Fprintf(&sb, " (@%s)", d.User.Username)
	}
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "ID: %d\n", d.User.ID)
	fmt.Fprintf(&sb, "Name: %s\n", nameOrDefault(d.User))
	fmt.Fprintf(&sb, "Registered: %s\n\n", formatDateTime(d.User.CreatedAt))

	sb.WriteString("Measurements:\n")
	fmt.Fprintf(&sb, "Total: %d\n", d.Stats.Count)
	fmt.Fprintf(&sb, "Average weight: %s\n", optWeight(d.Stats.Avg))
	fmt.Fprintf(&sb, "Min weight: %s\n", optWeight(d.Stats.Min))
	fmt.Fprintf(&sb, "Max weight: %s\n", optWeight(d.Stats.Max))
	if d.Stats.First != nil && d.Stats.Last != nil {
		span := app.Summary{FirstRecordAt: d.Stats.First, LastRecordAt: d.Stats.Last}.Span()
		fmt.Fprintf(&sb, "First record: %s\n", formatDate(*d.Stats.First))
		fmt.Fprintf(&sb, "Last record: %s\n", formatDate(*d.Stats.Last))
		fmt.Fprintf(&sb, "Period: %d days\n", span)
	}

	if len(d.Recent) > 0 {
		fmt.Fprintf(&sb, "\nLast %d records:\n", len(d.Recent))
		for _, m := range d.Recent {
			fmt.Fprintf(&sb, "  - %s: %s kg\n", formatDateTime(m.At), domain.FormatWeight(m.Weight))
		}
	}
	return sb.String()
}

func nameOrDefault(u domain.User) string {
	if n := u.DisplayName(); n != "" {
		return n
	}
	return "no name"
}

func usernameOrDefault(u domain.User) string {
	if u.Username == "" {
		return "none"
	}
	return "@" + u.Username
}

// splitMessage cuts text into chunks of at most limit runes, breaking at
// line ends where possible.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	var (
		chunks []string
		cur    strings.Builder
		n      int
	)
	flush := func() {
		if n > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			n = 0
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		ln := utf8.RuneCountInString(line)
		if n+ln > limit {
			flush()
		}
		for ln > limit {
			head := []rune(line)[:limit]
			chunks = append(chunks, string(head))
			line = string([]rune(line)[limit:])
			ln -= limit
		}
		cur.WriteString(line)
		n += ln
	}
	flush()
	return chunks
}
