package ingest

import (
	"strings"
	"time"
)

// SnapshotRow is one user's last-seen date from the Giraffe product
// snapshot export.
type SnapshotRow struct {
	Email    string
	LastSeen time.Time
}

// ParseSnapshot parses the Giraffe snapshot CSV: a "User Email" (or
// "Email") column and a day/month/year "Last Seen" column. Rows missing
// either value are skipped.
func ParseSnapshot(csvText string) ([]SnapshotRow, int) {
	lines := splitLines(csvText)
	if len(lines) < 2 {
		return nil, 0
	}

	header := splitRow(lines[0])
	emailIdx := headerIndex(header, "user email")
	if emailIdx < 0 {
		emailIdx = headerIndex(header, "email")
	}
	lastSeenIdx := headerIndex(header, "last seen")
	if emailIdx < 0 || lastSeenIdx < 0 {
		return nil, len(lines) - 1
	}

	var rows []SnapshotRow
	skipped := 0
	for _, line := range lines[1:] {
		fields := splitRow(line)
		if len(fields) <= emailIdx || len(fields) <= lastSeenIdx {
			skipped++
			continue
		}
		email := strings.ToLower(strings.TrimSpace(fields[emailIdx]))
		lastSeen, ok := parseDayMonthYear(fields[lastSeenIdx])
		if email == "" || !ok {
			skipped++
			continue
		}
		rows = append(rows, SnapshotRow{Email: email, LastSeen: lastSeen})
	}
	return rows, skipped
}
