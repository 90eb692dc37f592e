// Package categorize maps CRM categorical attributes onto the labels
// and buckets the charts aggregate by.
package categorize

import "github.com/spitfire8790/landiqr/internal/analytics/domain"

// UnknownCustomerType is the sentinel for an unmapped option ID.
const UnknownCustomerType = "Unknown Customer Type"

// legacyCustomerTypes is the static fallback for option IDs 0-9,
// matching the original Pipedrive field before it became fetchable.
var legacyCustomerTypes = map[string]string{
	"0": "Giraffe/WSP",
	"1": "Land iQ Project Team",
	"2": "Trial Licence",
	"3": "Centrally Funded Licence",
	"4": "Paid Subscription",
	"5": "Extended Trial Licence",
	"6": "Access Revoked",
	"7": "Local Government",
	"8": "State Government",
	"9": "Private Sector",
}

// ResolveCustomerType resolves an option ID to a label. The dynamic
// mapping wins when it carries the ID; the legacy table is next; every
// other ID resolves to the unknown sentinel. Resolution happens per
// lookup because the dynamic mapping may populate mid-session.
func ResolveCustomerType(id string, mapping domain.CustomerTypeMapping) string {
	if id == "" {
		return UnknownCustomerType
	}
	if label, ok := mapping.Lookup(id); ok {
		return label
	}
	if label, ok := legacyCustomerTypes[id]; ok {
		return label
	}
	return UnknownCustomerType
}

// LegacyCustomerTypes returns a copy of the static table, for seeding a
// resolved mapping in offline runs.
func LegacyCustomerTypes() map[string]string {
	out := make(map[string]string, len(legacyCustomerTypes))
	for k, v := range legacyCustomerTypes {
		out[k] = v
	}
	return out
}

// DisplayCategory collapses a customer-type label into the four coarse
// buckets some chart views stack by. Labels outside the four buckets
// return ok=false and are excluded from that aggregation — not folded
// into an "Other" bucket.
func DisplayCategory(customerType string) (string, bool) {
	switch customerType {
	case "Trial Licence", "Extended Trial Licence":
		return "Trial", true
	case "Centrally Funded Licence", "Paid Subscription", "Access Revoked":
		return customerType, true
	default:
		return "", false
	}
}

// DisplayCategoryOrder is the stacking order for the four buckets.
var DisplayCategoryOrder = []string{
	"Centrally Funded Licence",
	"Paid Subscription",
	"Trial",
	"Access Revoked",
}
