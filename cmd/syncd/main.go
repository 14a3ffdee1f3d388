package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ncecere/cursor_port_sync/internal/config"
	"github.com/ncecere/cursor_port_sync/internal/cursorapi"
	"github.com/ncecere/cursor_port_sync/internal/database"
	"github.com/ncecere/cursor_port_sync/internal/export"
	"github.com/ncecere/cursor_port_sync/internal/observability"
	"github.com/ncecere/cursor_port_sync/internal/opsserver"
	"github.com/ncecere/cursor_port_sync/internal/pipeline"
	"github.com/ncecere/cursor_port_sync/internal/runlog"
	"github.com/ncecere/cursor_port_sync/internal/teammap"
	"github.com/ncecere/cursor_port_sync/internal/timeutil"
)

func main() {
	var (
		mode       = flag.String("mode", "daily", "sync mode: daily or backfill")
		days       = flag.Int("days", 0, "trailing days to sync (daily mode, overrides config)")
		start      = flag.String("start", "", "backfill range start, YYYY-MM-DD UTC")
		end        = flag.String("end", "", "backfill range end, YYYY-MM-DD UTC")
		teamMap    = flag.String("team-map", "", "email-to-team mapping file (overrides config)")
		anonymize  = flag.Bool("anonymize-emails", false, "replace emails with SHA-256 digests before export")
		dryRun     = flag.Bool("dry-run", false, "aggregate but skip the Port export")
		force      = flag.Bool("force", false, "re-sync days already marked completed")
		configFile = flag.String("config", "", "config file path")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(config.Options{ConfigFile: *configFile, DryRun: *dryRun})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *teamMap != "" {
		cfg.Sync.TeamMapFile = *teamMap
	}
	if *anonymize {
		cfg.Sync.AnonymizeEmails = true
	}
	if *days > 0 {
		cfg.Sync.LookbackDays = *days
	}

	var pool *pgxpool.Pool
	if cfg.Database.Enabled() {
		if err := database.RunMigrations(ctx, cfg.Database); err != nil {
			log.Fatalf("run migrations: %v", err)
		}
		pool, err = database.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("connect database: %v", err)
		}
		defer pool.Close()
	}

	obs, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		log.Fatalf("setup observability: %v", err)
	}

	var mapping map[string]string
	if cfg.Sync.TeamMapFile != "" {
		mapping, err = teammap.Load(cfg.Sync.TeamMapFile)
		if err != nil {
			log.Fatalf("load team map: %v", err)
		}
	}

	var store *runlog.Store
	if pool != nil {
		store = runlog.NewStore(pool, logger)
	}

	runner, err := pipeline.NewRunner(pipeline.Options{
		Org:              cfg.Org.Identifier,
		Fetcher:          cursorapi.NewClient(cfg.Cursor, logger),
		Sink:             export.NewExporter(cfg.Port, logger),
		Store:            store,
		Observability:    obs,
		TeamMap:          mapping,
		AnonymizeEmails:  cfg.Sync.AnonymizeEmails,
		IncludeAiMetrics: cfg.Sync.IncludeAiMetrics,
		Force:            *force,
		Logger:           logger,
	})
	if err != nil {
		log.Fatalf("build runner: %v", err)
	}

	if cfg.Server.Enabled {
		srv := opsserver.New(cfg.Server, pool, obs)
		go func() {
			if err := srv.Listen(ctx); err != nil && err != context.Canceled {
				logger.Error("ops server stopped", "error", err)
			}
		}()
	}

	switch *mode {
	case "daily":
		if cfg.Sync.Interval > 0 {
			if err := runner.RunInterval(ctx, cfg.Sync.Interval, cfg.Sync.LookbackDays); err != nil && err != context.Canceled {
				log.Fatalf("daemon stopped: %v", err)
			}
			return
		}
		starts, err := timeutil.DayStarts(cfg.Sync.LookbackDays, time.Now())
		if err != nil {
			log.Fatalf("compute day window: %v", err)
		}
		if err := runner.RunDays(ctx, starts); err != nil {
			log.Fatalf("sync failed: %v", err)
		}
	case "backfill":
		if *start == "" || *end == "" {
			log.Fatalf("backfill mode requires --start and --end")
		}
		starts, err := timeutil.DayStartsBetween(*start, *end)
		if err != nil {
			log.Fatalf("compute day range: %v", err)
		}
		if err := runner.RunDays(ctx, starts); err != nil {
			log.Fatalf("backfill failed: %v", err)
		}
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}
