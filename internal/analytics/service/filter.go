package service

import (
	"strings"

	"github.com/spitfire8790/landiqr/internal/analytics/domain"
)

// Internal staff and testers are dropped before any count, sum or
// percentage is computed, so aggregate totals never include them.

// excludedCustomerTypes are project/vendor staff, not customers.
var excludedCustomerTypes = map[string]struct{}{
	"Giraffe/WSP":          {},
	"Land iQ Project Team": {},
}

// excludedOrgSubstring drops the consulting partner's own staff.
const excludedOrgSubstring = "wsp"

// excludedEmails are known internal test accounts.
var excludedEmails = map[string]struct{}{
	"james.strutt@wsp.com":       {},
	"landiq.admin@giraffe.build": {},
	"test.user@giraffe.build":    {},
	"uat.tester@landiq.com.au":   {},
	"demo.account@landiq.com.au": {},
}

// Excluded reports whether a user record is internal and must be
// dropped from every aggregation path.
func Excluded(record domain.UserUsageRecord) bool {
	if _, ok := excludedCustomerTypes[record.CustomerType]; ok {
		return true
	}
	if strings.Contains(strings.ToLower(record.Organisation), excludedOrgSubstring) {
		return true
	}
	if _, ok := excludedEmails[strings.ToLower(record.Email)]; ok {
		return true
	}
	return false
}

// FilterRecords keeps only records that fail every exclusion check.
func FilterRecords(records []domain.UserUsageRecord) []domain.UserUsageRecord {
	kept := make([]domain.UserUsageRecord, 0, len(records))
	for _, record := range records {
		if Excluded(record) {
			continue
		}
		kept = append(kept, record)
	}
	return kept
}
