// Package ingest parses the product usage CSV feeds into normalized
// usage events. The feeds carry no quoting or escaping, so rows split
// on plain commas.
package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/spitfire8790/landiqr/internal/analytics/domain"
)

// eventLabels translates raw internal event identifiers to display
// labels. Unmapped identifiers pass through unchanged.
var eventLabels = map[string]string{
	"site_search_run":    "Run Site Search",
	"site_search_saved":  "Save Site Search",
	"scenario_created":   "Create Scenario",
	"scenario_shared":    "Share Scenario",
	"report_generated":   "Generate Report",
	"report_downloaded":  "Download Report",
	"property_query":     "Property Query",
	"map_layer_added":    "Add Map Layer",
	"export_csv":         "Export CSV",
	"login":              "Log In",
	"shortlist_created":  "Create Shortlist",
	"shortlist_exported": "Export Shortlist",
}

// ParseEvents normalizes CSV text in either accepted shape into usage
// events. The shape is auto-detected from the header row. Malformed or
// incomplete rows are skipped and counted, never fatal.
func ParseEvents(csvText string) ([]domain.UsageEvent, int) {
	lines := splitLines(csvText)
	if len(lines) < 2 {
		return nil, 0
	}

	header := splitRow(lines[0])
	if isNewFormat(header) {
		return parseNewFormat(header, lines[1:])
	}
	return parseLegacyFormat(header, lines[1:])
}

// Format A: ID, timestamp, Event Name, User Email. One row per event
// occurrence; occurrences for the same (email, label) pair are summed.
func parseNewFormat(header []string, rows []string) ([]domain.UsageEvent, int) {
	eventIdx := headerIndex(header, "event name")
	emailIdx := headerIndex(header, "user email")
	if eventIdx < 0 || emailIdx < 0 {
		return nil, len(rows)
	}

	type key struct{ email, event string }
	counts := make(map[key]int)
	var order []key
	skipped := 0

	for _, line := range rows {
		fields := splitRow(line)
		if len(fields) <= eventIdx || len(fields) <= emailIdx {
			skipped++
			continue
		}
		rawEvent := strings.TrimSpace(fields[eventIdx])
		email := strings.ToLower(strings.TrimSpace(fields[emailIdx]))
		if rawEvent == "" || email == "" {
			skipped++
			continue
		}
		k := key{email: email, event: EventLabel(rawEvent)}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	events := make([]domain.UsageEvent, 0, len(order))
	for _, k := range order {
		events = append(events, domain.UsageEvent{
			Name:  NameFromEmail(k.email),
			Email: k.email,
			Event: k.event,
			Count: counts[k],
		})
	}
	return events, skipped
}

// Format B: Name, Email, Event, Count. Counts are explicit; rows with
// count <= 0 are dropped.
func parseLegacyFormat(header []string, rows []string) ([]domain.UsageEvent, int) {
	nameIdx := headerIndex(header, "name")
	emailIdx := headerIndex(header, "email")
	eventIdx := headerIndex(header, "event")
	countIdx := headerIndex(header, "count")
	if nameIdx < 0 || emailIdx < 0 || eventIdx < 0 || countIdx < 0 {
		return nil, len(rows)
	}

	var events []domain.UsageEvent
	skipped := 0
	for _, line := range rows {
		fields := splitRow(line)
		if len(fields) <= nameIdx || len(fields) <= emailIdx ||
			len(fields) <= eventIdx || len(fields) <= countIdx {
			skipped++
			continue
		}
		name := strings.TrimSpace(fields[nameIdx])
		email := strings.ToLower(strings.TrimSpace(fields[emailIdx]))
		event := strings.TrimSpace(fields[eventIdx])
		rawCount := strings.TrimSpace(fields[countIdx])
		if name == "" || email == "" || event == "" || rawCount == "" {
			skipped++
			continue
		}
		count, err := strconv.Atoi(rawCount)
		if err != nil {
			skipped++
			continue
		}
		if count <= 0 {
			skipped++
			continue
		}
		events = append(events, domain.UsageEvent{
			Name:  name,
			Email: email,
			Event: EventLabel(event),
			Count: count,
		})
	}
	return events, skipped
}

// LatestDataDate scans the case-insensitive "timestamp" column for
// day/month/year values and returns the maximum — the "data as of"
// date. Nil when the column is missing or nothing parses.
func LatestDataDate(csvText string) *time.Time {
	lines := splitLines(csvText)
	if len(lines) < 2 {
		return nil
	}
	tsIdx := headerIndex(splitRow(lines[0]), "timestamp")
	if tsIdx < 0 {
		return nil
	}

	var latest *time.Time
	for _, line := range lines[1:] {
		fields := splitRow(line)
		if len(fields) <= tsIdx {
			continue
		}
		parsed, ok := parseDayMonthYear(fields[tsIdx])
		if !ok {
			continue
		}
		if latest == nil || parsed.After(*latest) {
			value := parsed
			latest = &value
		}
	}
	return latest
}

// LastSeenByEmail scans a Format-A feed for each user's latest event
// timestamp, the "Land iQ" activity source of the recency charts.
// Empty when the feed has no timestamp or email column.
func LastSeenByEmail(csvText string) map[string]time.Time {
	lines := splitLines(csvText)
	if len(lines) < 2 {
		return nil
	}
	header := splitRow(lines[0])
	tsIdx := headerIndex(header, "timestamp")
	emailIdx := headerIndex(header, "user email")
	if tsIdx < 0 || emailIdx < 0 {
		return nil
	}

	lastSeen := make(map[string]time.Time)
	for _, line := range lines[1:] {
		fields := splitRow(line)
		if len(fields) <= tsIdx || len(fields) <= emailIdx {
			continue
		}
		email := strings.ToLower(strings.TrimSpace(fields[emailIdx]))
		parsed, ok := parseDayMonthYear(fields[tsIdx])
		if email == "" || !ok {
			continue
		}
		if current, seen := lastSeen[email]; !seen || parsed.After(current) {
			lastSeen[email] = parsed
		}
	}
	return lastSeen
}

// EventLabel maps a raw event identifier to its display label.
func EventLabel(raw string) string {
	if label, ok := eventLabels[raw]; ok {
		return label
	}
	return raw
}

// NameFromEmail derives a display name from the email local-part:
// separators become spaces and the first letter is capitalized.
func NameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	local = strings.NewReplacer(".", " ", "_", " ").Replace(local)
	local = strings.TrimSpace(local)
	if local == "" {
		return email
	}
	return strings.ToUpper(local[:1]) + local[1:]
}

// parseDayMonthYear parses "/"-separated day/month/year with a 2- or
// 4-digit year. Two-digit years are read as 2000s.
func parseDayMonthYear(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	// Some exports append a time component after a space.
	if idx := strings.Index(raw, " "); idx >= 0 {
		raw = raw[:idx]
	}
	parts := strings.Split(raw, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	day, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	month, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

func isNewFormat(header []string) bool {
	return headerIndex(header, "user email") >= 0 && headerIndex(header, "event name") >= 0
}

func headerIndex(header []string, name string) int {
	for i, column := range header {
		if strings.EqualFold(strings.TrimSpace(column), name) {
			return i
		}
	}
	return -1
}

func splitRow(line string) []string {
	return strings.Split(line, ",")
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
