package service

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/spitfire8790/landiqr/internal/analytics/domain"
	crmdomain "github.com/spitfire8790/landiqr/internal/crm/domain"
)

var testNow = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func testIndex() *CRMIndex {
	return NewCRMIndex(
		[]crmdomain.Person{
			{ID: 1, Email: "a@x.com", Name: "Alice", OrgID: 10, CustomerTypeID: "4", JobTitle: "Town Planner"},
			{ID: 2, Email: "b@x.com", Name: "Bob", OrgID: 10, CustomerTypeID: "0", JobTitle: "GIS Analyst"},
			{ID: 3, Email: "c@y.com", Name: "Cara", OrgID: 20, CustomerTypeID: "2", JobTitle: "CEO"},
			{ID: 4, Email: "d@z.com", Name: "Dan", OrgID: 30, CustomerTypeID: "4", JobTitle: ""},
		},
		[]crmdomain.Organization{
			{ID: 10, Name: "Acme"},
			{ID: 20, Name: "Beta Council"},
			{ID: 30, Name: "WSP Australia"},
		},
	)
}

func TestBuildUserRecordsAccumulates(t *testing.T) {
	events := []domain.UsageEvent{
		{Name: "Alice", Email: "a@x.com", Event: "Run Site Search", Count: 2},
		{Name: "Alice", Email: "a@x.com", Event: "Generate Report", Count: 1},
		{Name: "", Email: "unknown@q.com", Event: "Log In", Count: 1},
	}

	records := BuildUserRecords(events, testIndex(), domain.CustomerTypeMapping{}, testNow)
	if len(records) != 2 {
		t.Fatalf("expected 2 user records, got %d", len(records))
	}

	alice := records[0]
	if alice.TotalEvents != 3 {
		t.Fatalf("expected total 3, got %d", alice.TotalEvents)
	}
	if alice.EventBreakdown["Run Site Search"] != 2 {
		t.Fatalf("expected breakdown 2, got %d", alice.EventBreakdown["Run Site Search"])
	}
	if alice.Organisation != "Acme" {
		t.Fatalf("expected Acme, got %q", alice.Organisation)
	}
	if alice.CustomerType != "Paid Subscription" {
		t.Fatalf("expected legacy-resolved customer type, got %q", alice.CustomerType)
	}
	if alice.JobTitleCategory != "Planning" {
		t.Fatalf("expected Planning, got %q", alice.JobTitleCategory)
	}

	stranger := records[1]
	if stranger.Organisation != domain.UnknownOrganisation {
		t.Fatalf("expected unknown organisation, got %q", stranger.Organisation)
	}
	if stranger.Name != "Unknown" {
		t.Fatalf("expected name from email local-part, got %q", stranger.Name)
	}
}

func TestExclusionAppliedBeforeAggregation(t *testing.T) {
	// One non-excluded user (5 events) and one internal user (100
	// events, customer type Giraffe/WSP) in the same organisation: the
	// organisation total must be 5, not 105.
	events := []domain.UsageEvent{
		{Email: "a@x.com", Event: "Run Site Search", Count: 5},
		{Email: "b@x.com", Event: "Run Site Search", Count: 100},
	}
	records := FilterRecords(BuildUserRecords(events, testIndex(), domain.CustomerTypeMapping{}, testNow))
	summaries := AggregateByOrganisation(events, records)

	if len(summaries) != 1 {
		t.Fatalf("expected 1 organisation, got %d", len(summaries))
	}
	acme := summaries[0]
	if acme.Name != "Acme" || acme.TotalEvents != 5 || acme.UserCount != 1 {
		t.Fatalf("expected Acme total=5 users=1, got %+v", acme)
	}
	if acme.TopEvents[0].Count != 5 {
		t.Fatalf("excluded user leaked into top events: %+v", acme.TopEvents)
	}
}

func TestWSPOrganisationNeverAppears(t *testing.T) {
	events := []domain.UsageEvent{
		{Email: "d@z.com", Event: "Run Site Search", Count: 7},
		{Email: "a@x.com", Event: "Run Site Search", Count: 1},
	}
	records := FilterRecords(BuildUserRecords(events, testIndex(), domain.CustomerTypeMapping{}, testNow))
	summaries := AggregateByOrganisation(events, records)

	for _, summary := range summaries {
		if summary.Name == "WSP Australia" {
			t.Fatalf("WSP organisation must be excluded")
		}
		for _, user := range summary.Users {
			if user.Email == "d@z.com" {
				t.Fatalf("WSP user leaked into %q", summary.Name)
			}
		}
	}
}

func TestEndToEndAcmeScenario(t *testing.T) {
	events := []domain.UsageEvent{
		{Email: "a@x.com", Event: "Run Site Search", Count: 2},
	}
	records := FilterRecords(BuildUserRecords(events, testIndex(), domain.CustomerTypeMapping{}, testNow))
	summaries := AggregateByOrganisation(events, records)

	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	acme := summaries[0]
	if acme.Name != "Acme" || acme.UserCount != 1 || acme.TotalEvents != 2 {
		t.Fatalf("unexpected summary %+v", acme)
	}
	if len(acme.TopEvents) != 1 ||
		acme.TopEvents[0].Event != "Run Site Search" ||
		acme.TopEvents[0].Count != 2 {
		t.Fatalf("unexpected top events %+v", acme.TopEvents)
	}
}

func TestTopEventsStableTieBreak(t *testing.T) {
	events := []domain.UsageEvent{
		{Email: "a@x.com", Event: "First Seen", Count: 2},
		{Email: "a@x.com", Event: "Second Seen", Count: 2},
		{Email: "a@x.com", Event: "Third Seen", Count: 2},
		{Email: "a@x.com", Event: "Fourth Seen", Count: 2},
	}
	records := FilterRecords(BuildUserRecords(events, testIndex(), domain.CustomerTypeMapping{}, testNow))
	summaries := AggregateByOrganisation(events, records)

	top := summaries[0].TopEvents
	if len(top) != 3 {
		t.Fatalf("expected top 3, got %d", len(top))
	}
	want := []string{"First Seen", "Second Seen", "Third Seen"}
	for i, event := range want {
		if top[i].Event != event {
			t.Fatalf("tie break must follow encounter order, got %+v", top)
		}
	}
}

func TestSummariesSortedByTotalDescending(t *testing.T) {
	events := []domain.UsageEvent{
		{Email: "a@x.com", Event: "Run Site Search", Count: 1},
		{Email: "c@y.com", Event: "Run Site Search", Count: 9},
	}
	records := FilterRecords(BuildUserRecords(events, testIndex(), domain.CustomerTypeMapping{}, testNow))
	summaries := AggregateByOrganisation(events, records)

	if len(summaries) != 2 || summaries[0].Name != "Beta Council" {
		t.Fatalf("expected Beta Council first, got %+v", summaries)
	}
}

func TestSegmentBarsDropZeroTotals(t *testing.T) {
	events := []domain.UsageEvent{
		{Email: "a@x.com", Event: "Run Site Search", Count: 4},
		{Email: "c@y.com", Event: "Generate Report", Count: 6},
	}
	records := FilterRecords(BuildUserRecords(events, testIndex(), domain.CustomerTypeMapping{}, testNow))

	bars := SegmentBars(records, "Run Site Search", DisplayCategoryOf)
	if len(bars) != 1 {
		t.Fatalf("organisations with zero filtered total must be dropped, got %+v", bars)
	}
	bar := bars[0]
	if bar.FullName != "Acme" || bar.Value != 4 || bar.UserCount != 1 {
		t.Fatalf("unexpected bar %+v", bar)
	}
	if len(bar.Segments) != 1 || bar.Segments[0].Category != "Paid Subscription" {
		t.Fatalf("unexpected segments %+v", bar.Segments)
	}
	if bar.Segments[0].Percentage != 100 {
		t.Fatalf("expected 100%%, got %v", bar.Segments[0].Percentage)
	}
}

func TestSegmentBarsDropUsersOutsideDisplayCategories(t *testing.T) {
	// unknown@q.com has no CRM match, so no customer type: the display
	// view drops the user rather than bucketing into Other.
	events := []domain.UsageEvent{
		{Email: "unknown@q.com", Event: "Run Site Search", Count: 3},
	}
	records := FilterRecords(BuildUserRecords(events, testIndex(), domain.CustomerTypeMapping{}, testNow))

	if bars := SegmentBars(records, domain.AllEvents, DisplayCategoryOf); len(bars) != 0 {
		t.Fatalf("expected no bars, got %+v", bars)
	}
	// The job-title view keeps the same user under Other.
	bars := SegmentBars(records, domain.AllEvents, JobTitleCategoryOf)
	if len(bars) != 1 || bars[0].Segments[0].Category != "Other" {
		t.Fatalf("expected Other bucket, got %+v", bars)
	}
}

func TestSegmentPercentagesSumAcrossCategories(t *testing.T) {
	// Two users in Acme under different display categories via the
	// dynamic mapping.
	mapping := domain.CustomerTypeMapping{
		State: domain.MappingResolved,
		Labels: map[string]string{
			"4": "Paid Subscription",
			"0": "Trial Licence",
		},
	}
	events := []domain.UsageEvent{
		{Email: "a@x.com", Event: "Run Site Search", Count: 6},
		{Email: "b@x.com", Event: "Run Site Search", Count: 2},
	}
	records := FilterRecords(BuildUserRecords(events, testIndex(), mapping, testNow))
	bars := SegmentBars(records, domain.AllEvents, DisplayCategoryOf)

	if len(bars) != 1 || len(bars[0].Segments) != 2 {
		t.Fatalf("expected one bar with two segments, got %+v", bars)
	}
	var sum float64
	for _, segment := range bars[0].Segments {
		sum += segment.Percentage
	}
	if sum < 99.99 || sum > 100.01 {
		t.Fatalf("percentages must sum to 100, got %v", sum)
	}
}

func TestShortNameTruncatesOnRunes(t *testing.T) {
	if got := shortName("Acme Council", 20); got != "Acme Council" {
		t.Fatalf("short names must pass through unchanged, got %q", got)
	}

	got := shortName(strings.Repeat("ü", 25), 20)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated name is not valid UTF-8: %q", got)
	}
	if want := strings.Repeat("ü", 19) + "…"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestOrgRecencyStatsSentinels(t *testing.T) {
	events := []domain.UsageEvent{
		{Email: "a@x.com", Event: "Run Site Search", Count: 1},
	}
	records := FilterRecords(BuildUserRecords(events, testIndex(), domain.CustomerTypeMapping{}, testNow))

	landiq := RecencySource{"a@x.com": testNow.AddDate(0, 0, -10)}
	// No giraffe activity at all: sentinel on that side.
	result := OrgRecencyStats(records, RecencySource{}, landiq, testNow)

	if len(result) != 1 {
		t.Fatalf("expected 1 org, got %d", len(result))
	}
	acme := result[0]
	if acme.LandIQMedian != 10 {
		t.Fatalf("expected landiq median 10, got %d", acme.LandIQMedian)
	}
	if acme.GiraffeMedian != domain.NoActivityDays {
		t.Fatalf("expected sentinel giraffe median, got %d", acme.GiraffeMedian)
	}
	if acme.Users != 1 {
		t.Fatalf("expected 1 distinct user, got %d", acme.Users)
	}
}

func TestOrgRecencyStatsBoxTuples(t *testing.T) {
	events := []domain.UsageEvent{
		{Email: "a@x.com", Event: "Run Site Search", Count: 1},
		{Email: "b@x.com", Event: "Run Site Search", Count: 1},
	}
	records := FilterRecords(BuildUserRecords(events, testIndex(), domain.CustomerTypeMapping{}, testNow))

	landiq := RecencySource{
		"a@x.com": testNow.AddDate(0, 0, -10),
		"b@x.com": testNow.AddDate(0, 0, -30),
	}
	result := OrgRecencyStats(records, RecencySource{}, landiq, testNow)

	if len(result) != 1 {
		t.Fatalf("expected 1 org, got %d", len(result))
	}
	acme := result[0]
	// Days [10,30] sorted: floor indexing keeps Q1 and the median at
	// 10 and puts Q3 at 10 as well (index floor(0.75*1)=0).
	if want := [5]float64{10, 10, 10, 10, 30}; acme.LandIQBox != want {
		t.Fatalf("expected landiq box %v, got %v", want, acme.LandIQBox)
	}
	sentinel := float64(domain.NoActivityDays)
	if want := [5]float64{sentinel, sentinel, sentinel, sentinel, sentinel}; acme.GiraffeBox != want {
		t.Fatalf("expected all-sentinel giraffe box, got %v", acme.GiraffeBox)
	}
}

func TestOrgRecencyStatsIncludesSnapshotOnlyUsers(t *testing.T) {
	events := []domain.UsageEvent{
		{Email: "a@x.com", Event: "Run Site Search", Count: 1},
	}
	records := FilterRecords(BuildUserRecords(events, testIndex(), domain.CustomerTypeMapping{}, testNow))

	giraffe := RecencySource{"c@y.com": testNow.AddDate(0, 0, -3)}
	extended := FilterRecords(
		ExtendWithSnapshotUsers(records, giraffe, testIndex(), domain.CustomerTypeMapping{}, testNow),
	)
	result := OrgRecencyStats(extended, giraffe, RecencySource{"a@x.com": testNow}, testNow)

	if len(result) != 2 {
		t.Fatalf("expected both organisations, got %+v", result)
	}
	var beta *domain.OrgStats
	for i := range result {
		if result[i].Org == "Beta Council" {
			beta = &result[i]
		}
	}
	if beta == nil {
		t.Fatalf("snapshot-only user's organisation missing: %+v", result)
	}
	if beta.GiraffeMedian != 3 {
		t.Fatalf("expected giraffe median 3, got %d", beta.GiraffeMedian)
	}
	if beta.LandIQMedian != domain.NoActivityDays {
		t.Fatalf("expected landiq sentinel, got %d", beta.LandIQMedian)
	}
}

func TestJobTitleDistributionCountsUsers(t *testing.T) {
	events := []domain.UsageEvent{
		{Email: "a@x.com", Event: "Run Site Search", Count: 1},
		{Email: "c@y.com", Event: "Run Site Search", Count: 1},
	}
	records := FilterRecords(BuildUserRecords(events, testIndex(), domain.CustomerTypeMapping{}, testNow))
	distribution := JobTitleDistribution(records)

	if len(distribution) != 2 {
		t.Fatalf("expected 2 buckets, got %+v", distribution)
	}
	seen := map[string]int{}
	for _, entry := range distribution {
		seen[entry.Category] = entry.Count
	}
	if seen["Planning"] != 1 || seen["Executive Leadership"] != 1 {
		t.Fatalf("unexpected distribution %+v", distribution)
	}
}
