package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spitfire8790/landiqr/internal/analytics/domain"
	"github.com/spitfire8790/landiqr/internal/clock"
	crmdomain "github.com/spitfire8790/landiqr/internal/crm/domain"
)

type fakeLoader struct {
	events   string
	snapshot string
	fetches  int
}

func (f *fakeLoader) FetchEvents(context.Context) (string, string) {
	f.fetches++
	return f.events, "primary"
}

func (f *fakeLoader) FetchSnapshot(context.Context) (string, error) {
	if f.snapshot == "" {
		return "", context.Canceled
	}
	return f.snapshot, nil
}

type fakeCRM struct {
	persons     []crmdomain.Person
	orgs        []crmdomain.Organization
	mapping     domain.CustomerTypeMapping
	invalidated int
}

func (f *fakeCRM) FetchPersons(context.Context) ([]crmdomain.Person, error) {
	return f.persons, nil
}

func (f *fakeCRM) FetchOrganizations(context.Context) ([]crmdomain.Organization, error) {
	return f.orgs, nil
}

func (f *fakeCRM) FetchCustomerTypeMapping(context.Context) (domain.CustomerTypeMapping, error) {
	return f.mapping, nil
}

func (f *fakeCRM) Invalidate() { f.invalidated++ }

func newTestService(loader *fakeLoader, crm *fakeCRM) *Service {
	return &Service{
		log:    zap.NewNop(),
		clock:  clock.FixedClock{At: testNow},
		loader: loader,
		crm:    crm,
	}
}

const serviceCSV = `ID,timestamp,Event Name,User Email
1,01/01/24,site_search_run,a@x.com
2,02/01/24,site_search_run,a@x.com
`

func serviceFakes() (*fakeLoader, *fakeCRM) {
	loader := &fakeLoader{events: serviceCSV}
	crm := &fakeCRM{
		persons: []crmdomain.Person{
			{ID: 1, Email: "a@x.com", Name: "Alice", OrgID: 10, CustomerTypeID: "4"},
		},
		orgs: []crmdomain.Organization{{ID: 10, Name: "Acme"}},
	}
	return loader, crm
}

func TestServiceOrganisationSummaries(t *testing.T) {
	loader, crm := serviceFakes()
	svc := newTestService(loader, crm)

	summaries, err := svc.OrganisationSummaries(context.Background())
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	acme := summaries[0]
	if acme.Name != "Acme" || acme.UserCount != 1 || acme.TotalEvents != 2 {
		t.Fatalf("unexpected summary %+v", acme)
	}
	if acme.TopEvents[0].Event != "Run Site Search" || acme.TopEvents[0].Count != 2 {
		t.Fatalf("unexpected top events %+v", acme.TopEvents)
	}
}

func TestServiceSessionIsReused(t *testing.T) {
	loader, crm := serviceFakes()
	svc := newTestService(loader, crm)

	ctx := context.Background()
	if _, err := svc.OrganisationSummaries(ctx); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := svc.EventSegments(ctx, domain.AllEvents); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if loader.fetches != 1 {
		t.Fatalf("filter changes must not re-fetch, got %d fetches", loader.fetches)
	}
}

func TestServiceRefreshInvalidatesAndReloads(t *testing.T) {
	loader, crm := serviceFakes()
	svc := newTestService(loader, crm)

	ctx := context.Background()
	if _, err := svc.OrganisationSummaries(ctx); err != nil {
		t.Fatalf("prime session: %v", err)
	}
	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if crm.invalidated != 1 {
		t.Fatalf("refresh must invalidate the CRM cache, got %d", crm.invalidated)
	}
	if loader.fetches != 2 {
		t.Fatalf("refresh must re-fetch, got %d fetches", loader.fetches)
	}
}

func TestServiceDataAsOf(t *testing.T) {
	loader, crm := serviceFakes()
	svc := newTestService(loader, crm)

	asOf, err := svc.DataAsOf(context.Background())
	if err != nil {
		t.Fatalf("data as of: %v", err)
	}
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if asOf == nil || !asOf.Equal(want) {
		t.Fatalf("expected %v, got %v", want, asOf)
	}
}

func TestServiceRecencyWithoutSnapshotSource(t *testing.T) {
	loader, crm := serviceFakes()
	svc := newTestService(loader, crm)

	result, err := svc.OrgRecencyStats(context.Background())
	if err != nil {
		t.Fatalf("recency: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 org, got %d", len(result))
	}
	if result[0].GiraffeMedian != domain.NoActivityDays {
		t.Fatalf("expected giraffe sentinel without snapshot feed, got %d", result[0].GiraffeMedian)
	}
}
