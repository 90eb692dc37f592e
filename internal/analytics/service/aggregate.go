package service

import (
	"sort"
	"strings"
	"time"

	"github.com/spitfire8790/landiqr/internal/analytics/categorize"
	"github.com/spitfire8790/landiqr/internal/analytics/domain"
	"github.com/spitfire8790/landiqr/internal/analytics/stats"
	crmdomain "github.com/spitfire8790/landiqr/internal/crm/domain"
	"github.com/spitfire8790/landiqr/internal/ingest"
)

// CRMIndex resolves usage emails to their CRM attributes. Built once
// per session from projected records.
type CRMIndex struct {
	byEmail  map[string]crmdomain.Person
	orgNames map[int64]string
}

// NewCRMIndex indexes projected persons and organisations by email and ID.
func NewCRMIndex(persons []crmdomain.Person, orgs []crmdomain.Organization) *CRMIndex {
	index := &CRMIndex{
		byEmail:  make(map[string]crmdomain.Person, len(persons)),
		orgNames: make(map[int64]string, len(orgs)),
	}
	for _, org := range orgs {
		index.orgNames[org.ID] = org.Name
	}
	for _, person := range persons {
		email := strings.ToLower(strings.TrimSpace(person.Email))
		if email == "" {
			continue
		}
		index.byEmail[email] = person
	}
	return index
}

// Lookup returns the CRM person for an email, if any.
func (ix *CRMIndex) Lookup(email string) (crmdomain.Person, bool) {
	if ix == nil {
		return crmdomain.Person{}, false
	}
	person, ok := ix.byEmail[strings.ToLower(strings.TrimSpace(email))]
	return person, ok
}

// OrganisationFor resolves an email to its organisation name, falling
// back to the unknown bucket.
func (ix *CRMIndex) OrganisationFor(email string) string {
	person, ok := ix.Lookup(email)
	if !ok {
		return domain.UnknownOrganisation
	}
	if person.OrgName != "" {
		return person.OrgName
	}
	if name, ok := ix.orgNames[person.OrgID]; ok && name != "" {
		return name
	}
	return domain.UnknownOrganisation
}

// BuildUserRecords folds normalized events into one record per unique
// email, resolving CRM attributes per user. Records follow first-
// encounter order and are final once returned.
func BuildUserRecords(
	events []domain.UsageEvent,
	index *CRMIndex,
	mapping domain.CustomerTypeMapping,
	now time.Time,
) []domain.UserUsageRecord {
	byEmail := make(map[string]*domain.UserUsageRecord)
	var order []string

	for _, event := range events {
		email := strings.ToLower(strings.TrimSpace(event.Email))
		if email == "" {
			continue
		}
		record, ok := byEmail[email]
		if !ok {
			record = newUserRecord(email, event.Name, index, mapping, now)
			byEmail[email] = record
			order = append(order, email)
		}
		record.TotalEvents += event.Count
		record.EventBreakdown[event.Event] += event.Count
	}

	records := make([]domain.UserUsageRecord, 0, len(order))
	for _, email := range order {
		records = append(records, *byEmail[email])
	}
	return records
}

func newUserRecord(
	email, name string,
	index *CRMIndex,
	mapping domain.CustomerTypeMapping,
	now time.Time,
) *domain.UserUsageRecord {
	if strings.TrimSpace(name) == "" {
		name = ingest.NameFromEmail(email)
	}
	record := &domain.UserUsageRecord{
		Email:          email,
		Name:           name,
		Organisation:   index.OrganisationFor(email),
		EventBreakdown: make(map[string]int),
	}

	person, ok := index.Lookup(email)
	if !ok {
		return record
	}
	record.CustomerType = categorize.ResolveCustomerType(person.CustomerTypeID, mapping)
	record.ActivitiesCount = person.ActivitiesCount
	record.JobTitle = person.JobTitle
	record.JobTitleCategory = categorize.CategorizeJobTitle(person.JobTitle)
	if person.DateAdded != "" {
		record.DateAdded = person.DateAdded
		if added, err := time.Parse("2006-01-02", person.DateAdded); err == nil {
			record.DaysInProduct = stats.DaysSince(&added, now)
		}
	}
	return record
}

// AggregateByOrganisation groups filtered user records into summaries.
// The events slice supplies encounter order for top-event ties, so the
// output is deterministic across runs given identical input ordering.
func AggregateByOrganisation(
	events []domain.UsageEvent,
	records []domain.UserUsageRecord,
) []domain.OrganisationSummary {
	kept := make(map[string]domain.UserUsageRecord, len(records))
	for _, record := range records {
		kept[record.Email] = record
	}

	type orgAccum struct {
		users       []domain.UserUsageRecord
		seenUser    map[string]struct{}
		eventCounts map[string]int
		eventOrder  []string
	}
	accums := make(map[string]*orgAccum)
	var orgOrder []string

	for _, record := range records {
		accum, ok := accums[record.Organisation]
		if !ok {
			accum = &orgAccum{
				seenUser:    make(map[string]struct{}),
				eventCounts: make(map[string]int),
			}
			accums[record.Organisation] = accum
			orgOrder = append(orgOrder, record.Organisation)
		}
		accum.users = append(accum.users, record)
		accum.seenUser[record.Email] = struct{}{}
	}

	// Event counts accumulate from the normalized event stream so tie
	// order matches encounter order, not map iteration.
	for _, event := range events {
		record, ok := kept[strings.ToLower(strings.TrimSpace(event.Email))]
		if !ok {
			continue
		}
		accum := accums[record.Organisation]
		if accum == nil {
			continue
		}
		if _, seen := accum.eventCounts[event.Event]; !seen {
			accum.eventOrder = append(accum.eventOrder, event.Event)
		}
		accum.eventCounts[event.Event] += event.Count
	}

	summaries := make([]domain.OrganisationSummary, 0, len(orgOrder))
	for _, org := range orgOrder {
		accum := accums[org]

		users := make([]domain.UserUsageRecord, len(accum.users))
		copy(users, accum.users)
		sort.SliceStable(users, func(i, j int) bool {
			return users[i].TotalEvents > users[j].TotalEvents
		})

		total := 0
		for _, user := range users {
			total += user.TotalEvents
		}

		summaries = append(summaries, domain.OrganisationSummary{
			Name:        org,
			UserCount:   len(users),
			TotalEvents: total,
			TopEvents:   topEvents(accum.eventOrder, accum.eventCounts, 3),
			Users:       users,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalEvents > summaries[j].TotalEvents
	})
	return summaries
}

func topEvents(order []string, counts map[string]int, n int) []domain.EventCount {
	ranked := make([]domain.EventCount, 0, len(order))
	for _, event := range order {
		ranked = append(ranked, domain.EventCount{Event: event, Count: counts[event]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// CategoryFunc buckets one user for a stacked view. ok=false excludes
// the user from that view entirely.
type CategoryFunc func(domain.UserUsageRecord) (string, bool)

// DisplayCategoryOf buckets users by collapsed customer type.
func DisplayCategoryOf(record domain.UserUsageRecord) (string, bool) {
	return categorize.DisplayCategory(record.CustomerType)
}

// JobTitleCategoryOf buckets users by job-title category.
func JobTitleCategoryOf(record domain.UserUsageRecord) (string, bool) {
	category := record.JobTitleCategory
	if category == "" {
		category = categorize.JobTitleOther
	}
	return category, true
}

// SegmentBars computes per-organisation stacked bars under an event
// filter. Organisations with zero total under the filter are dropped
// from the result, not shown as zero bars.
func SegmentBars(
	records []domain.UserUsageRecord,
	eventFilter string,
	categoryOf CategoryFunc,
) []domain.SegmentBar {
	type barAccum struct {
		total     int
		userCount int
		counts    map[string]int
		order     []string
	}
	accums := make(map[string]*barAccum)
	var orgOrder []string

	for _, record := range records {
		value := filteredTotal(record, eventFilter)
		if value == 0 {
			continue
		}
		category, ok := categoryOf(record)
		if !ok {
			continue
		}
		accum, exists := accums[record.Organisation]
		if !exists {
			accum = &barAccum{counts: make(map[string]int)}
			accums[record.Organisation] = accum
			orgOrder = append(orgOrder, record.Organisation)
		}
		if _, seen := accum.counts[category]; !seen {
			accum.order = append(accum.order, category)
		}
		accum.counts[category] += value
		accum.total += value
		accum.userCount++
	}

	bars := make([]domain.SegmentBar, 0, len(orgOrder))
	for _, org := range orgOrder {
		accum := accums[org]
		if accum.total == 0 {
			continue
		}
		segments := make([]domain.Segment, 0, len(accum.order))
		for _, category := range accum.order {
			count := accum.counts[category]
			segments = append(segments, domain.Segment{
				Category:   category,
				Count:      count,
				Percentage: float64(count) / float64(accum.total) * 100,
			})
		}
		bars = append(bars, domain.SegmentBar{
			Name:      shortName(org, 20),
			FullName:  org,
			Value:     accum.total,
			UserCount: accum.userCount,
			Segments:  segments,
		})
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Value > bars[j].Value
	})
	return bars
}

func filteredTotal(record domain.UserUsageRecord, eventFilter string) int {
	if eventFilter == "" || eventFilter == domain.AllEvents {
		return record.TotalEvents
	}
	return record.EventBreakdown[eventFilter]
}

// JobTitleDistribution counts filtered users per job-title category,
// descending, zero-count buckets omitted.
func JobTitleDistribution(records []domain.UserUsageRecord) []domain.CategoryCount {
	counts := make(map[string]int)
	for _, record := range records {
		category, _ := JobTitleCategoryOf(record)
		counts[category]++
	}

	distribution := make([]domain.CategoryCount, 0, len(counts))
	for _, category := range categorize.JobTitleCategories() {
		count := counts[category.Name]
		if count == 0 {
			continue
		}
		distribution = append(distribution, domain.CategoryCount{
			Category: category.Name,
			Count:    count,
			Color:    category.Color,
		})
	}
	sort.SliceStable(distribution, func(i, j int) bool {
		return distribution[i].Count > distribution[j].Count
	})
	return distribution
}

// ExtendWithSnapshotUsers appends minimal records for users who appear
// only in the Giraffe snapshot, so the recency path sees the distinct
// user set across both sources. The result still needs the exclusion
// filter applied.
func ExtendWithSnapshotUsers(
	records []domain.UserUsageRecord,
	giraffe RecencySource,
	index *CRMIndex,
	mapping domain.CustomerTypeMapping,
	now time.Time,
) []domain.UserUsageRecord {
	known := make(map[string]struct{}, len(records))
	for _, record := range records {
		known[record.Email] = struct{}{}
	}

	emails := make([]string, 0, len(giraffe))
	for email := range giraffe {
		if _, ok := known[email]; !ok {
			emails = append(emails, email)
		}
	}
	sort.Strings(emails)

	extended := records
	for _, email := range emails {
		extended = append(extended, *newUserRecord(email, "", index, mapping, now))
	}
	return extended
}

// RecencySource is one activity feed's last-seen dates keyed by email.
type RecencySource map[string]time.Time

// OrgRecencyStats aggregates per-user recency day counts per
// organisation over the Giraffe and Land iQ sources. A user with no
// activity in a source contributes the 365 sentinel; genuine day counts
// cap at 365. Users must already have passed the exclusion filter.
func OrgRecencyStats(
	records []domain.UserUsageRecord,
	giraffe RecencySource,
	landiq RecencySource,
	now time.Time,
) []domain.OrgStats {
	type orgAccum struct {
		giraffeDays []int
		landiqDays  []int
		users       map[string]struct{}
	}
	accums := make(map[string]*orgAccum)
	var order []string

	for _, record := range records {
		accum, ok := accums[record.Organisation]
		if !ok {
			accum = &orgAccum{users: make(map[string]struct{})}
			accums[record.Organisation] = accum
			order = append(order, record.Organisation)
		}
		accum.users[record.Email] = struct{}{}
		accum.giraffeDays = append(accum.giraffeDays, recencyFor(giraffe, record.Email, now))
		accum.landiqDays = append(accum.landiqDays, recencyFor(landiq, record.Email, now))
	}

	result := make([]domain.OrgStats, 0, len(order))
	for _, org := range order {
		accum := accums[org]
		result = append(result, domain.OrgStats{
			Org:             org,
			GiraffeMedian:   stats.Median(accum.giraffeDays),
			LandIQMedian:    stats.Median(accum.landiqDays),
			GiraffeBox:      stats.QuartilesInt(accum.giraffeDays),
			LandIQBox:       stats.QuartilesInt(accum.landiqDays),
			Users:           len(accum.users),
			GiraffeUserDays: accum.giraffeDays,
			LandIQUserDays:  accum.landiqDays,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Users != result[j].Users {
			return result[i].Users > result[j].Users
		}
		return result[i].Org < result[j].Org
	})
	return result
}

func recencyFor(source RecencySource, email string, now time.Time) int {
	if lastSeen, ok := source[email]; ok {
		return stats.RecencyDays(&lastSeen, now)
	}
	return stats.RecencyDays(nil, now)
}

func shortName(name string, max int) string {
	trimmed := strings.TrimSpace(name)
	runes := []rune(trimmed)
	if len(runes) <= max {
		return trimmed
	}
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}
