package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spitfire8790/landiqr/internal/analytics/domain"
	crmdomain "github.com/spitfire8790/landiqr/internal/crm/domain"
	"github.com/spitfire8790/landiqr/internal/ingest"
	obscontext "github.com/spitfire8790/landiqr/internal/observability/context"
)

// Session is one in-memory analysis dataset: the raw fetch results and
// the finalized user records every aggregation reads. Filter changes
// re-run pure aggregations over the same session; only an explicit
// refresh replaces it.
type Session struct {
	ID       string
	LoadedAt time.Time

	Events      []domain.UsageEvent
	SkippedRows int
	Source      string
	DataAsOf    *time.Time

	LandIQLastSeen RecencySource
	Giraffe        RecencySource

	Index   *CRMIndex
	Mapping domain.CustomerTypeMapping

	// Records passed the exclusion filter; RecencyRecords additionally
	// carry snapshot-only users for the recency path.
	Records        []domain.UserUsageRecord
	RecencyRecords []domain.UserUsageRecord
}

// loadSession issues every independent fetch concurrently, waits for
// all to settle, then builds the finalized record set. CRM failures
// degrade to empty data; the CSV chain bottoms out at the embedded
// dataset, so loading never fails outright.
func (s *Service) loadSession(ctx context.Context) *Session {
	sessionID := uuid.NewString()
	ctx = obscontext.WithSessionID(ctx, sessionID)
	log := s.log.With(zap.String("session_id", sessionID))

	var (
		wg sync.WaitGroup

		eventsText   string
		eventsSource string
		snapshotText string
		snapshotErr  error
		persons      []crmdomain.Person
		personsErr   error
		orgs         []crmdomain.Organization
		orgsErr      error
		mapping      domain.CustomerTypeMapping
		mappingErr   error
	)

	wg.Add(5)
	go func() {
		defer wg.Done()
		eventsText, eventsSource = s.loader.FetchEvents(ctx)
	}()
	go func() {
		defer wg.Done()
		snapshotText, snapshotErr = s.loader.FetchSnapshot(ctx)
	}()
	go func() {
		defer wg.Done()
		persons, personsErr = s.crm.FetchPersons(ctx)
	}()
	go func() {
		defer wg.Done()
		orgs, orgsErr = s.crm.FetchOrganizations(ctx)
	}()
	go func() {
		defer wg.Done()
		mapping, mappingErr = s.crm.FetchCustomerTypeMapping(ctx)
	}()
	wg.Wait()

	if personsErr != nil {
		log.Warn("crm persons unavailable, organisations will be unknown", zap.Error(personsErr))
	}
	if orgsErr != nil {
		log.Warn("crm organisations unavailable", zap.Error(orgsErr))
	}
	if mappingErr != nil {
		log.Warn("customer-type mapping unavailable, using legacy table", zap.Error(mappingErr))
		mapping = domain.CustomerTypeMapping{State: domain.MappingAbsent}
	}

	events, skipped := ingest.ParseEvents(eventsText)
	s.metrics.ObserveRows("events", len(events), skipped)

	var giraffe RecencySource
	if snapshotErr != nil {
		if snapshotErr != ingest.ErrNoSnapshotSource {
			log.Warn("giraffe snapshot unavailable", zap.Error(snapshotErr))
		}
	} else {
		rows, snapshotSkipped := ingest.ParseSnapshot(snapshotText)
		s.metrics.ObserveRows("giraffe", len(rows), snapshotSkipped)
		giraffe = make(RecencySource, len(rows))
		for _, row := range rows {
			if current, ok := giraffe[row.Email]; !ok || row.LastSeen.After(current) {
				giraffe[row.Email] = row.LastSeen
			}
		}
	}

	now := s.clock.Now()
	index := NewCRMIndex(persons, orgs)
	records := FilterRecords(BuildUserRecords(events, index, mapping, now))
	recencyRecords := FilterRecords(
		ExtendWithSnapshotUsers(records, giraffe, index, mapping, now),
	)

	session := &Session{
		ID:             sessionID,
		LoadedAt:       now,
		Events:         events,
		SkippedRows:    skipped,
		Source:         eventsSource,
		DataAsOf:       ingest.LatestDataDate(eventsText),
		LandIQLastSeen: ingest.LastSeenByEmail(eventsText),
		Giraffe:        giraffe,
		Index:          index,
		Mapping:        mapping,
		Records:        records,
		RecencyRecords: recencyRecords,
	}

	log.Info("analysis session loaded",
		zap.String("events_source", eventsSource),
		zap.Int("events", len(events)),
		zap.Int("skipped_rows", skipped),
		zap.Int("users", len(records)),
		zap.Int("crm_persons", len(persons)),
	)
	return session
}
