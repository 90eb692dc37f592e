package ingest

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/spitfire8790/landiqr/internal/config"
	"github.com/spitfire8790/landiqr/internal/observability/metrics"
)

// fallbackEvents ships with the binary so a full outage still renders
// something. It is plain Format A CSV and goes through the same parser
// as fetched data.
//
//go:embed data/fallback_events.csv
var fallbackEvents string

// SourceEmbedded names the final fallback in fetch results.
const SourceEmbedded = "embedded"

var ErrNoSnapshotSource = errors.New("no_snapshot_source")

// Loader fetches the usage CSV feeds, walking the configured fallback
// chain: primary URL, secondary URL, embedded dataset.
type Loader struct {
	client  *http.Client
	log     *zap.Logger
	cfg     config.Config
	metrics *metrics.IngestMetrics
}

// LoaderParams collects Loader dependencies.
type LoaderParams struct {
	fx.In

	Log     *zap.Logger
	Cfg     config.Config
	Metrics *metrics.IngestMetrics `optional:"true"`
}

// NewLoader constructs a Loader with a bounded-timeout HTTP client.
func NewLoader(p LoaderParams) *Loader {
	return &Loader{
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     p.Log.Named("ingest.loader"),
		cfg:     p.Cfg,
		metrics: p.Metrics,
	}
}

// FetchEvents returns the raw event CSV text and the name of the source
// that supplied it. Only the embedded dataset is infallible.
func (l *Loader) FetchEvents(ctx context.Context) (string, string) {
	for _, source := range []struct {
		name string
		url  string
	}{
		{name: "primary", url: l.cfg.EventsCSVURL},
		{name: "secondary", url: l.cfg.EventsCSVFallbackURL},
	} {
		if strings.TrimSpace(source.url) == "" {
			continue
		}
		text, err := l.fetch(ctx, source.url)
		if err != nil {
			l.metrics.IncSourceFetch(source.name, "error")
			l.log.Warn("events csv fetch failed",
				zap.String("source", source.name),
				zap.Error(err),
			)
			continue
		}
		l.metrics.IncSourceFetch(source.name, "ok")
		return text, source.name
	}

	l.metrics.IncSourceFetch(SourceEmbedded, "ok")
	l.log.Info("serving embedded fallback events dataset")
	return fallbackEvents, SourceEmbedded
}

// FetchSnapshot returns the Giraffe snapshot CSV text. There is no
// embedded fallback for this feed; callers treat an error as "no
// activity data" for that source.
func (l *Loader) FetchSnapshot(ctx context.Context) (string, error) {
	url := strings.TrimSpace(l.cfg.GiraffeSnapshotCSVURL)
	if url == "" {
		return "", ErrNoSnapshotSource
	}
	text, err := l.fetch(ctx, url)
	if err != nil {
		l.metrics.IncSourceFetch("giraffe", "error")
		return "", err
	}
	l.metrics.IncSourceFetch("giraffe", "ok")
	return text, nil
}

func (l *Loader) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
