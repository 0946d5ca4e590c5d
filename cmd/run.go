package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/earnings-cli/internal/alphavantage"
	"github.com/sells-group/earnings-cli/internal/fetcher"
	"github.com/sells-group/earnings-cli/internal/model"
	"github.com/sells-group/earnings-cli/internal/pipeline"
	"github.com/sells-group/earnings-cli/internal/runlog"
	"github.com/sells-group/earnings-cli/internal/universe"
)

// fetchResult is what both the cache and backfill commands need from the
// shared load-fetch-filter sequence.
type fetchResult struct {
	Universe *universe.Universe
	RawCount int
	Filtered []model.EarningsRow
}

func newCalendarClient() *alphavantage.Client {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		Timeout:      time.Duration(cfg.AlphaVantage.TimeoutSecs) * time.Second,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
	return alphavantage.NewClient(f, alphavantage.Options{
		BaseURL:    cfg.AlphaVantage.BaseURL,
		APIKey:     cfg.AlphaVantage.APIKey,
		Horizon:    cfg.AlphaVantage.Horizon,
		MinRawRows: cfg.Gate.MinRawRows,
	})
}

// loadAndFetch loads the universe, performs the single calendar request, and
// filters the rows. The universe is loaded first so a bad watchlist aborts
// before any network call.
func loadAndFetch(ctx context.Context) (*fetchResult, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	u, err := universe.Load(cfg.Paths.UniverseCSV)
	if err != nil {
		return nil, eris.Wrap(err, "load universe")
	}
	zap.L().Info("loaded universe",
		zap.String("path", cfg.Paths.UniverseCSV),
		zap.Int("tickers", u.Len()),
	)

	raw, err := newCalendarClient().Calendar(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "fetch calendar")
	}

	filtered := pipeline.Filter(u, raw)
	zap.L().Info("filtered to universe",
		zap.Int("raw_rows", len(raw)),
		zap.Int("filtered_rows", len(filtered)),
	)

	return &fetchResult{Universe: u, RawCount: len(raw), Filtered: filtered}, nil
}

// openRunlog opens the run journal best-effort. The journal is observability,
// not an artifact: a broken journal must never fail the run.
func openRunlog() *runlog.Log {
	rl, err := runlog.Open(cfg.Paths.RunlogDB)
	if err != nil {
		zap.L().Warn("run journal unavailable", zap.Error(err))
		return nil
	}
	return rl
}

func journalStart(ctx context.Context, rl *runlog.Log, job string) string {
	if rl == nil {
		return ""
	}
	id, err := rl.Start(ctx, job)
	if err != nil {
		zap.L().Warn("run journal write failed", zap.Error(err))
		return ""
	}
	return id
}

func journalComplete(ctx context.Context, rl *runlog.Log, id string, rawRows, filteredRows int) {
	if rl == nil || id == "" {
		return
	}
	if err := rl.Complete(ctx, id, rawRows, filteredRows); err != nil {
		zap.L().Warn("run journal write failed", zap.Error(err))
	}
}

func journalFail(ctx context.Context, rl *runlog.Log, id string, runErr error) {
	if rl == nil || id == "" {
		return
	}
	if err := rl.Fail(ctx, id, runErr); err != nil {
		zap.L().Warn("run journal write failed", zap.Error(err))
	}
}
