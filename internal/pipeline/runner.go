// Package pipeline orchestrates the per-day sync: fetch usage from the
// Cursor Admin API, aggregate it into rollup records and export them to
// Port, with optional run bookkeeping.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ncecere/cursor_port_sync/internal/anonymize"
	"github.com/ncecere/cursor_port_sync/internal/cursorapi"
	"github.com/ncecere/cursor_port_sync/internal/export"
	"github.com/ncecere/cursor_port_sync/internal/observability"
	"github.com/ncecere/cursor_port_sync/internal/rollup"
	"github.com/ncecere/cursor_port_sync/internal/runlog"
	"github.com/ncecere/cursor_port_sync/internal/timeutil"
)

// Fetcher is the Cursor Admin API surface the pipeline consumes.
type Fetcher interface {
	DailyUsage(ctx context.Context, startMS, endMS int64) ([]cursorapi.DailyUsageRow, error)
	UsageEvents(ctx context.Context, startMS, endMS int64) ([]cursorapi.UsageEventRow, error)
	AiCommits(ctx context.Context, startMS, endMS int64) ([]cursorapi.AiCommitRow, error)
	AiCodeChanges(ctx context.Context, startMS, endMS int64) ([]cursorapi.AiCodeChangeRow, error)
}

// Sink receives the per-day record batch.
type Sink interface {
	Export(ctx context.Context, batch export.Batch) (int, error)
}

// Options wires the runner's collaborators. Store, Observability and
// TeamMap may be nil; Logger falls back to slog.Default().
type Options struct {
	Org              string
	Fetcher          Fetcher
	Sink             Sink
	Store            *runlog.Store
	Observability    *observability.Provider
	TeamMap          map[string]string
	AnonymizeEmails  bool
	IncludeAiMetrics bool
	Force            bool
	Logger           *slog.Logger
}

type Runner struct {
	opts   Options
	logger *slog.Logger
}

func NewRunner(opts Options) (*Runner, error) {
	if opts.Org == "" {
		return nil, fmt.Errorf("org identifier is required")
	}
	if opts.Fetcher == nil || opts.Sink == nil {
		return nil, fmt.Errorf("fetcher and sink are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{opts: opts, logger: logger}, nil
}

// RunDays processes each day start in order. A failing day does not stop
// the remaining days; the per-day errors are joined.
func (r *Runner) RunDays(ctx context.Context, dayStarts []int64) error {
	var errs []error
	for _, startMS := range dayStarts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := r.RunDay(ctx, startMS); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunDay syncs a single UTC day. Days already marked completed are skipped
// unless the runner is forced.
func (r *Runner) RunDay(ctx context.Context, dayStartMS int64) (runlog.Counts, error) {
	day := rollup.EpochMSToDayISO(dayStartMS)[:len(time.DateOnly)]
	endMS := timeutil.DayEndMS(dayStartMS)
	logger := r.logger.With("org", r.opts.Org, "day", day)

	if !r.opts.Force {
		done, err := r.opts.Store.Completed(ctx, r.opts.Org, day)
		if err != nil {
			return runlog.Counts{}, fmt.Errorf("day %s: %w", day, err)
		}
		if done {
			logger.Info("day already synced, skipping")
			r.opts.Observability.RecordRun("skipped")
			return runlog.Counts{}, nil
		}
	}

	runID, err := r.opts.Store.Begin(ctx, r.opts.Org, day)
	if err != nil {
		return runlog.Counts{}, fmt.Errorf("day %s: %w", day, err)
	}

	counts, err := r.syncDay(ctx, logger, dayStartMS, endMS)
	if err != nil {
		wrapped := fmt.Errorf("day %s: %w", day, err)
		if ferr := r.opts.Store.Fail(ctx, runID, err); ferr != nil {
			wrapped = errors.Join(wrapped, ferr)
		}
		r.opts.Observability.RecordRun("failed")
		return counts, wrapped
	}

	if err := r.opts.Store.Complete(ctx, runID, counts); err != nil {
		return counts, fmt.Errorf("day %s: %w", day, err)
	}
	r.opts.Observability.RecordRun("completed")
	logger.Info("day synced", "records", counts.Total())
	return counts, nil
}

func (r *Runner) syncDay(ctx context.Context, logger *slog.Logger, startMS, endMS int64) (runlog.Counts, error) {
	var counts runlog.Counts

	rows, err := fetchTimed(ctx, r.opts.Observability, "daily_usage", startMS, endMS, r.opts.Fetcher.DailyUsage)
	if err != nil {
		return counts, err
	}
	events, err := fetchTimed(ctx, r.opts.Observability, "usage_events", startMS, endMS, r.opts.Fetcher.UsageEvents)
	if err != nil {
		return counts, err
	}

	orgRecord, userRecords := rollup.AggregateDaily(r.opts.Org, startMS, rows, events)

	var teamRecords []rollup.TeamRecord
	if r.opts.TeamMap != nil {
		var unmapped []string
		teamRecords, unmapped = rollup.AggregateTeams(r.opts.Org, startMS, userRecords, r.opts.TeamMap)
		if len(unmapped) > 0 {
			logger.Warn("users without a team mapping", "count", len(unmapped))
		}
	}

	var commitRecords []rollup.AiCommitRecord
	var changeRecords []rollup.AiCodeChangeRecord
	if r.opts.IncludeAiMetrics {
		commits, err := fetchTimed(ctx, r.opts.Observability, "ai_commits", startMS, endMS, r.opts.Fetcher.AiCommits)
		if err != nil {
			return counts, err
		}
		changes, err := fetchTimed(ctx, r.opts.Observability, "ai_code_changes", startMS, endMS, r.opts.Fetcher.AiCodeChanges)
		if err != nil {
			return counts, err
		}
		commitRecords = rollup.AggregateAiCommits(r.opts.Org, startMS, commits)
		changeRecords = rollup.AggregateAiCodeChanges(r.opts.Org, startMS, changes)
	}

	if r.opts.AnonymizeEmails {
		anonymize.UserRecords(userRecords)
		anonymize.OrgRecord(&orgRecord)
		anonymize.AiCommitRecords(commitRecords)
		anonymize.AiCodeChangeRecords(changeRecords)
	}

	batch := export.Batch{
		Org:           &orgRecord,
		Users:         userRecords,
		Teams:         teamRecords,
		AiCommits:     commitRecords,
		AiCodeChanges: changeRecords,
	}

	exportStart := time.Now()
	sent, err := r.opts.Sink.Export(ctx, batch)
	r.opts.Observability.RecordExport(time.Since(exportStart))
	if err != nil {
		return counts, fmt.Errorf("export %d/%d entities: %w", sent, batch.Len(), err)
	}

	counts = runlog.Counts{
		Org:       1,
		Users:     len(userRecords),
		Teams:     len(teamRecords),
		AiCommits: len(commitRecords),
		AiChanges: len(changeRecords),
	}
	r.opts.Observability.RecordExported("org", counts.Org)
	r.opts.Observability.RecordExported("user", counts.Users)
	r.opts.Observability.RecordExported("team", counts.Teams)
	r.opts.Observability.RecordExported("ai_commit", counts.AiCommits)
	r.opts.Observability.RecordExported("ai_change", counts.AiChanges)
	return counts, nil
}

func fetchTimed[T any](ctx context.Context, obs *observability.Provider, endpoint string, startMS, endMS int64, fn func(context.Context, int64, int64) ([]T, error)) ([]T, error) {
	start := time.Now()
	out, err := fn(ctx, startMS, endMS)
	obs.RecordFetch(endpoint, time.Since(start))
	return out, err
}

// RunInterval runs the trailing lookback window once immediately and then
// on every tick until the context is canceled.
func (r *Runner) RunInterval(ctx context.Context, interval time.Duration, lookbackDays int) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be > 0")
	}
	run := func() {
		starts, err := timeutil.DayStarts(lookbackDays, time.Now())
		if err != nil {
			r.logger.Error("compute day window", "error", err)
			return
		}
		if err := r.RunDays(ctx, starts); err != nil {
			r.logger.Error("sync window failed", "error", err)
		}
	}

	run()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			run()
		}
	}
}
