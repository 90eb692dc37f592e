// Package service implements the usage-analytics aggregation pipeline:
// normalized events in, chart-ready plain records out. Every
// aggregation is a pure pass over the loaded session.
package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/spitfire8790/landiqr/internal/analytics/domain"
	"github.com/spitfire8790/landiqr/internal/clock"
	crmdomain "github.com/spitfire8790/landiqr/internal/crm/domain"
	"github.com/spitfire8790/landiqr/internal/observability/metrics"
)

// SourceLoader fetches the usage CSV feeds.
type SourceLoader interface {
	FetchEvents(ctx context.Context) (string, string)
	FetchSnapshot(ctx context.Context) (string, error)
}

// CRMFetcher is the Pipedrive collaborator surface the pipeline needs.
type CRMFetcher interface {
	FetchPersons(ctx context.Context) ([]crmdomain.Person, error)
	FetchOrganizations(ctx context.Context) ([]crmdomain.Organization, error)
	FetchCustomerTypeMapping(ctx context.Context) (domain.CustomerTypeMapping, error)
	Invalidate()
}

// ServiceParam collects Service dependencies.
type ServiceParam struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Loader  SourceLoader
	CRM     CRMFetcher
	Metrics *metrics.IngestMetrics `optional:"true"`
}

// Service holds one analysis session and serves aggregations over it.
type Service struct {
	log     *zap.Logger
	clock   clock.Clock
	loader  SourceLoader
	crm     CRMFetcher
	metrics *metrics.IngestMetrics

	mu      sync.Mutex
	session *Session
}

// NewService constructs the analytics service. The session loads
// lazily on first use.
func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:     p.Log.Named("analytics.service"),
		clock:   p.Clock,
		loader:  p.Loader,
		crm:     p.CRM,
		metrics: p.Metrics,
	}
}

// OrganisationSummaries returns every organisation's usage rollup,
// descending by total events.
func (s *Service) OrganisationSummaries(ctx context.Context) ([]domain.OrganisationSummary, error) {
	session, err := s.ensureSession(ctx)
	if err != nil {
		return nil, err
	}
	defer s.observe("organisations")()
	return AggregateByOrganisation(session.Events, session.Records), nil
}

// EventSegments returns per-organisation stacked bars split by
// collapsed customer type under the given event filter.
func (s *Service) EventSegments(ctx context.Context, eventFilter string) ([]domain.SegmentBar, error) {
	session, err := s.ensureSession(ctx)
	if err != nil {
		return nil, err
	}
	defer s.observe("event_segments")()
	return SegmentBars(session.Records, eventFilter, DisplayCategoryOf), nil
}

// JobTitleSegments returns per-organisation stacked bars split by
// job-title category under the given event filter.
func (s *Service) JobTitleSegments(ctx context.Context, eventFilter string) ([]domain.SegmentBar, error) {
	session, err := s.ensureSession(ctx)
	if err != nil {
		return nil, err
	}
	defer s.observe("job_title_segments")()
	return SegmentBars(session.Records, eventFilter, JobTitleCategoryOf), nil
}

// JobTitleDistribution returns the user count per job-title category.
func (s *Service) JobTitleDistribution(ctx context.Context) ([]domain.CategoryCount, error) {
	session, err := s.ensureSession(ctx)
	if err != nil {
		return nil, err
	}
	defer s.observe("job_title_distribution")()
	return JobTitleDistribution(session.Records), nil
}

// OrgRecencyStats returns the per-organisation recency boxplot data
// over the Giraffe and Land iQ sources.
func (s *Service) OrgRecencyStats(ctx context.Context) ([]domain.OrgStats, error) {
	session, err := s.ensureSession(ctx)
	if err != nil {
		return nil, err
	}
	defer s.observe("recency")()
	return OrgRecencyStats(session.RecencyRecords, session.Giraffe, session.LandIQLastSeen, session.LoadedAt), nil
}

// DataAsOf returns the latest timestamp observed in the events feed.
func (s *Service) DataAsOf(ctx context.Context) (*time.Time, error) {
	session, err := s.ensureSession(ctx)
	if err != nil {
		return nil, err
	}
	return session.DataAsOf, nil
}

// Refresh invalidates the CRM response cache and replaces the session
// with freshly fetched data.
func (s *Service) Refresh(ctx context.Context) error {
	s.crm.Invalidate()
	s.metrics.IncSessionRefresh()

	session := s.loadSession(ctx)
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
	return nil
}

func (s *Service) ensureSession(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	if s.session != nil {
		session := s.session
		s.mu.Unlock()
		return session, nil
	}
	s.mu.Unlock()

	// Load outside the lock: fetches are slow and concurrent callers
	// can race to build; last writer wins with identical data.
	session := s.loadSession(ctx)
	if session == nil {
		return nil, domain.ErrSessionUnavailable
	}
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
	return session, nil
}

func (s *Service) observe(view string) func() {
	start := time.Now()
	return func() {
		s.metrics.ObserveAggregation(view, time.Since(start))
	}
}
