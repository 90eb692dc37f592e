// Package domain contains the plain aggregate records produced by the
// usage-analytics pipeline. Everything here is data, no behaviour, safe
// to serialize for rendering collaborators.
package domain

import (
	"context"
	"errors"
	"time"
)

// NoActivityDays is substituted when a user has no recorded activity in
// a source, and also caps genuine day counts. A user idle exactly one
// year is indistinguishable from one with no data; that conflation is
// inherited from the product and kept deliberately.
const NoActivityDays = 365

// UnknownOrganisation is the grouping bucket for users with no CRM match.
const UnknownOrganisation = "Unknown Organisation"

// UsageEvent is one normalized (user, event) count from the usage CSV.
// Email is the case-insensitive identity key.
type UsageEvent struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Event string `json:"event"`
	Count int    `json:"count"`
}

// UserUsageRecord accumulates every event for one unique email, plus the
// CRM attributes resolved for that user. Finalized once all rows are
// consumed and never mutated afterwards.
type UserUsageRecord struct {
	Email            string         `json:"email"`
	Name             string         `json:"name"`
	Organisation     string         `json:"organisation"`
	TotalEvents      int            `json:"total_events"`
	EventBreakdown   map[string]int `json:"event_breakdown"`
	DateAdded        string         `json:"date_added,omitempty"`
	DaysInProduct    *int           `json:"days_in_product,omitempty"`
	CustomerType     string         `json:"customer_type,omitempty"`
	ActivitiesCount  *int           `json:"activities_count,omitempty"`
	JobTitle         string         `json:"job_title,omitempty"`
	JobTitleCategory string         `json:"job_title_category,omitempty"`
}

// EventCount pairs an event label with its aggregate count.
type EventCount struct {
	Event string `json:"event"`
	Count int    `json:"count"`
}

// OrganisationSummary rolls up every user of one organisation.
// Invariants: UserCount == len(Users); TotalEvents is the sum of each
// user's TotalEvents.
type OrganisationSummary struct {
	Name        string            `json:"name"`
	UserCount   int               `json:"user_count"`
	TotalEvents int               `json:"total_events"`
	TopEvents   []EventCount      `json:"top_events"`
	Users       []UserUsageRecord `json:"users"`
}

// Segment is one category's contribution to a stacked bar.
type Segment struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SegmentBar is one organisation's (or group's) stacked bar under the
// active event filter. Organisations with zero total under the filter
// are dropped from the result set, not rendered as zero bars.
type SegmentBar struct {
	Name      string    `json:"name"`
	FullName  string    `json:"full_name"`
	Value     int       `json:"value"`
	UserCount int       `json:"user_count"`
	Segments  []Segment `json:"segments"`
}

// OrgStats is the recency-boxplot aggregate for one organisation over
// the two activity sources. The raw per-user day arrays are kept so the
// quartiles can be recomputed at any granularity; the box tuples are
// the precomputed [min, Q1, median, Q3, max] over those arrays.
type OrgStats struct {
	Org             string     `json:"org"`
	GiraffeMedian   int        `json:"g_med"`
	LandIQMedian    int        `json:"l_med"`
	GiraffeBox      [5]float64 `json:"g_box"`
	LandIQBox       [5]float64 `json:"l_box"`
	Users           int        `json:"users"`
	GiraffeUserDays []int      `json:"giraffe_user_days"`
	LandIQUserDays  []int      `json:"landiq_user_days"`
}

// CategoryCount pairs a category label with a count and display colour.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Color    string `json:"color,omitempty"`
}

// MappingState tracks the lifecycle of the dynamically fetched
// customer-type mapping. "Not yet loaded" and "resolved to unknown" are
// distinct states even when they display the same default.
type MappingState int

const (
	MappingAbsent MappingState = iota
	MappingLoading
	MappingResolved
)

// CustomerTypeMapping is the dynamic ID-to-label table fetched from the
// CRM field-definition endpoint, passed by value into each aggregation
// call. The static legacy table is the fallback regardless of state.
type CustomerTypeMapping struct {
	State  MappingState      `json:"state"`
	Labels map[string]string `json:"labels"`
}

// Lookup resolves an option ID through the dynamic table only.
func (m CustomerTypeMapping) Lookup(id string) (string, bool) {
	if m.State != MappingResolved || m.Labels == nil {
		return "", false
	}
	label, ok := m.Labels[id]
	return label, ok
}

// Service is the analytics aggregation facade consumed by the HTTP
// handlers and the report CLI.
type Service interface {
	OrganisationSummaries(ctx context.Context) ([]OrganisationSummary, error)
	EventSegments(ctx context.Context, eventFilter string) ([]SegmentBar, error)
	JobTitleSegments(ctx context.Context, eventFilter string) ([]SegmentBar, error)
	JobTitleDistribution(ctx context.Context) ([]CategoryCount, error)
	OrgRecencyStats(ctx context.Context) ([]OrgStats, error)
	DataAsOf(ctx context.Context) (*time.Time, error)
	Refresh(ctx context.Context) error
}

// AllEvents is the event filter meaning "no restriction".
const AllEvents = "All Events"

var (
	ErrSessionUnavailable = errors.New("session_unavailable")
)
