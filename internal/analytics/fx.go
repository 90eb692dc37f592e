package analytics

import (
	"go.uber.org/fx"

	"github.com/spitfire8790/landiqr/internal/analytics/service"
	"github.com/spitfire8790/landiqr/internal/crm"
	"github.com/spitfire8790/landiqr/internal/ingest"
)

var Module = fx.Module("analytics.service",
	fx.Provide(func(l *ingest.Loader) service.SourceLoader { return l }),
	fx.Provide(func(c *crm.Client) service.CRMFetcher { return c }),
	fx.Provide(service.NewService),
)
