// Command landiqr renders the usage report offline: it pulls the same
// sources as the API, runs the full aggregation pipeline and prints a
// per-organisation summary to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	analyticsdomain "github.com/spitfire8790/landiqr/internal/analytics/domain"
	"github.com/spitfire8790/landiqr/internal/analytics/service"
	"github.com/spitfire8790/landiqr/internal/clock"
	"github.com/spitfire8790/landiqr/internal/config"
	"github.com/spitfire8790/landiqr/internal/crm"
	"github.com/spitfire8790/landiqr/internal/ingest"
	"github.com/spitfire8790/landiqr/internal/observability/logger"
)

func main() {
	top := flag.Int("top", 0, "limit output to the N busiest organisations (0 = all)")
	recency := flag.Bool("recency", false, "include recency medians per organisation")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall fetch and aggregation deadline")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	cfg := config.Load()

	logLevel := "error"
	if *verbose {
		logLevel = "debug"
	}
	zlog, err := logger.New(logger.Config{Environment: cfg.Environment, Level: logLevel})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	svc := buildService(cfg, zlog)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	steps := 2
	if *recency {
		steps = 3
	}
	bar := progressbar.Default(int64(steps))

	summaries, err := svc.OrganisationSummaries(ctx)
	if err != nil {
		log.Fatalf("aggregate: %v", err)
	}
	_ = bar.Add(1)

	asOf, err := svc.DataAsOf(ctx)
	if err != nil {
		log.Fatalf("data as of: %v", err)
	}
	_ = bar.Add(1)

	var recencyByOrg map[string]analyticsdomain.OrgStats
	if *recency {
		stats, err := svc.OrgRecencyStats(ctx)
		if err != nil {
			log.Fatalf("recency: %v", err)
		}
		recencyByOrg = make(map[string]analyticsdomain.OrgStats, len(stats))
		for _, entry := range stats {
			recencyByOrg[entry.Org] = entry
		}
		_ = bar.Add(1)
	}

	if asOf != nil {
		fmt.Printf("data as of %s\n\n", asOf.Format("2006-01-02"))
	}

	limit := len(summaries)
	if *top > 0 && *top < limit {
		limit = *top
	}
	for _, summary := range summaries[:limit] {
		fmt.Printf("%s ; users=%d ; events=%d", summary.Name, summary.UserCount, summary.TotalEvents)
		for _, event := range summary.TopEvents {
			fmt.Printf(" ; %s=%d", event.Event, event.Count)
		}
		if recencyByOrg != nil {
			if stats, ok := recencyByOrg[summary.Name]; ok {
				fmt.Printf(" ; giraffe_med=%dd ; landiq_med=%dd ; landiq_box=%v", stats.GiraffeMedian, stats.LandIQMedian, stats.LandIQBox)
			}
		}
		fmt.Println()
	}
}

// buildService wires the pipeline by hand; the CLI run has no fx
// lifecycle and no database.
func buildService(cfg config.Config, zlog *zap.Logger) analyticsdomain.Service {
	crmClient := crm.NewClient(crm.ClientParams{Log: zlog, Cfg: cfg})
	loader := ingest.NewLoader(ingest.LoaderParams{Log: zlog, Cfg: cfg})

	return service.NewService(service.ServiceParam{
		Log:    zlog,
		Clock:  clock.SystemClock{},
		Loader: loader,
		CRM:    crmClient,
	})
}
