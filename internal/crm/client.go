// Package crm is the thin Pipedrive collaborator: paginated fetches,
// a session response cache and a request rate limiter. Retry policy
// and transport concerns live here, never in the analytics core.
package crm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	analyticsdomain "github.com/spitfire8790/landiqr/internal/analytics/domain"
	"github.com/spitfire8790/landiqr/internal/cache"
	"github.com/spitfire8790/landiqr/internal/config"
	crmdomain "github.com/spitfire8790/landiqr/internal/crm/domain"
	"github.com/spitfire8790/landiqr/internal/observability/logger"
	"github.com/spitfire8790/landiqr/internal/observability/metrics"
	"github.com/spitfire8790/landiqr/internal/observability/tracing"
)

const pageLimit = 500

var (
	ErrRateLimited = errors.New("crm_rate_limited")
	ErrNotEnabled  = errors.New("crm_not_configured")
)

// envelope is the Pipedrive response wrapper.
type envelope struct {
	Success        bool             `json:"success"`
	Data           []map[string]any `json:"data"`
	AdditionalData struct {
		Pagination struct {
			MoreItemsInCollection bool `json:"more_items_in_collection"`
			NextStart             int  `json:"next_start"`
		} `json:"pagination"`
	} `json:"additional_data"`
}

// Client fetches Pipedrive persons, organisations and field
// definitions. One Client (and its cache) lives per session; it is not
// a module-level singleton.
type Client struct {
	http     *http.Client
	log      *zap.Logger
	cfg      config.PipedriveConfig
	cacheTTL time.Duration
	cache    *cache.TTLCache[string, []map[string]any]
	limiter  *rateLimiter
	metrics  *metrics.IngestMetrics
}

// ClientParams collects Client dependencies.
type ClientParams struct {
	fx.In

	Log     *zap.Logger
	Cfg     config.Config
	Metrics *metrics.IngestMetrics `optional:"true"`
}

// NewClient constructs the CRM client with its session cache.
func NewClient(p ClientParams) *Client {
	return &Client{
		http:     tracing.WrapHTTPClient(&http.Client{Timeout: 30 * time.Second}),
		log:      p.Log.Named("crm.client"),
		cfg:      p.Cfg.Pipedrive,
		cacheTTL: p.Cfg.Cache.TTL,
		cache:    cache.NewBoundedTTLCache[string, []map[string]any](p.Cfg.Cache.Capacity),
		limiter:  newRateLimiter(40, 2*time.Second),
		metrics:  p.Metrics,
	}
}

// Enabled reports whether an API token is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.APIToken != ""
}

// Invalidate drops every cached response. Called by the manual refresh
// action; TTL expiry otherwise governs staleness.
func (c *Client) Invalidate() {
	c.cache.Invalidate()
}

// FetchPersons returns every CRM contact, projected.
func (c *Client) FetchPersons(ctx context.Context) ([]crmdomain.Person, error) {
	raw, err := c.fetchAll(ctx, "persons")
	if err != nil {
		return nil, err
	}
	keys := crmdomain.FieldKeys{
		CustomerType: c.cfg.CustomerTypeFieldKey,
		JobTitle:     c.cfg.JobTitleFieldKey,
		DateAdded:    c.cfg.DateAddedFieldKey,
	}
	persons := make([]crmdomain.Person, 0, len(raw))
	for _, record := range raw {
		persons = append(persons, crmdomain.ProjectPerson(record, keys))
	}
	return persons, nil
}

// FetchOrganizations returns every CRM organisation, projected.
func (c *Client) FetchOrganizations(ctx context.Context) ([]crmdomain.Organization, error) {
	raw, err := c.fetchAll(ctx, "organizations")
	if err != nil {
		return nil, err
	}
	orgs := make([]crmdomain.Organization, 0, len(raw))
	for _, record := range raw {
		orgs = append(orgs, crmdomain.ProjectOrganization(record))
	}
	return orgs, nil
}

// FetchCustomerTypeMapping builds the dynamic ID-to-label table from
// the person-field definitions. A missing field yields a resolved but
// empty mapping so lookups fall through to the legacy table.
func (c *Client) FetchCustomerTypeMapping(ctx context.Context) (analyticsdomain.CustomerTypeMapping, error) {
	raw, err := c.fetchAll(ctx, "personFields")
	if err != nil {
		return analyticsdomain.CustomerTypeMapping{State: analyticsdomain.MappingAbsent}, err
	}

	labels := make(map[string]string)
	for _, record := range raw {
		def := crmdomain.ProjectFieldDefinition(record)
		if def.Key != c.cfg.CustomerTypeFieldKey {
			continue
		}
		for _, option := range def.Options {
			if option.ID != "" && option.Label != "" {
				labels[option.ID] = option.Label
			}
		}
	}
	return analyticsdomain.CustomerTypeMapping{
		State:  analyticsdomain.MappingResolved,
		Labels: labels,
	}, nil
}

// fetchAll walks the endpoint's pagination, serving from the session
// cache when a live entry exists.
func (c *Client) fetchAll(ctx context.Context, endpoint string) ([]map[string]any, error) {
	if !c.Enabled() {
		return nil, ErrNotEnabled
	}
	if cached, ok := c.cache.Get(endpoint); ok {
		return cached, nil
	}

	var records []map[string]any
	start := 0
	for {
		if !c.limiter.Allow(endpoint) {
			c.metrics.IncCRMFetch(endpoint, "rate_limited")
			return nil, ErrRateLimited
		}
		page, err := c.fetchPage(ctx, endpoint, start)
		if err != nil {
			c.metrics.IncCRMFetch(endpoint, "error")
			return nil, err
		}
		records = append(records, page.Data...)
		if !page.AdditionalData.Pagination.MoreItemsInCollection {
			break
		}
		start = page.AdditionalData.Pagination.NextStart
	}

	c.metrics.IncCRMFetch(endpoint, "ok")
	c.cache.Set(endpoint, records, c.cacheTTL)
	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, endpoint string, start int) (*envelope, error) {
	query := url.Values{}
	query.Set("api_token", c.cfg.APIToken)
	query.Set("limit", strconv.Itoa(pageLimit))
	query.Set("start", strconv.Itoa(start))
	target := fmt.Sprintf("%s/%s?%s", c.cfg.BaseURL, endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("crm fetch failed",
			zap.String("endpoint", endpoint),
			zap.String("api_token", logger.MaskAPIKey(c.cfg.APIToken)),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crm %s: unexpected status %d", endpoint, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var page envelope
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, err
	}
	if !page.Success {
		return nil, fmt.Errorf("crm %s: success=false", endpoint)
	}
	return &page, nil
}

// rateLimiter is a fixed-window counter keyed by endpoint.
type rateLimiter struct {
	limit  int
	window time.Duration
	mu     sync.Mutex
	items  map[string]*rateLimitEntry
}

type rateLimitEntry struct {
	windowStart time.Time
	count       int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		window: window,
		items:  make(map[string]*rateLimitEntry),
	}
}

func (r *rateLimiter) Allow(key string) bool {
	if key == "" {
		return false
	}

	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.items[key]
	if entry == nil || now.Sub(entry.windowStart) > r.window {
		entry = &rateLimitEntry{windowStart: now}
		r.items[key] = entry
	}

	if entry.count >= r.limit {
		return false
	}

	entry.count++
	return true
}
