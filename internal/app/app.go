// Package app wires the storage backend and the services shared by the binaries.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/simaogato/goalfolio-backend/internal/adapter/repository"
	"github.com/simaogato/goalfolio-backend/internal/config"
	"github.com/simaogato/goalfolio-backend/internal/domain"
	"github.com/simaogato/goalfolio-backend/internal/usecase/dashboard"
	"github.com/simaogato/goalfolio-backend/internal/usecase/ledger"
	"github.com/simaogato/goalfolio-backend/internal/usecase/valuation"
	"github.com/simaogato/goalfolio-backend/internal/usecase/watchlist"
	"go.uber.org/multierr"
)

// App holds one ledger and the services built around it
type App struct {
	Backend   string
	Store     domain.KeyValueStore
	History   *valuation.Service
	Ledger    *ledger.Service
	Watchlist *watchlist.Service
	Dashboard *dashboard.DashboardService

	closers []io.Closer
}

// Open opens the configured store and builds the services on top of it
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	info, err := repository.Open(ctx, cfg.Storage.Spec)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage %q: %w", cfg.Storage.Spec, err)
	}
	log.Info().Str("backend", info.Backend).Str("target", info.Target).Msg("Opened storage")

	a, err := New(ctx, info.Store, cfg.Valuation, log)
	if err != nil {
		return nil, multierr.Append(err, info.Store.Close())
	}
	a.Backend = info.Backend
	a.closers = append(a.closers, info.Store)
	return a, nil
}

// New builds the services on an already opened store. The caller keeps ownership of store.
func New(ctx context.Context, store domain.KeyValueStore, cfg config.ValuationConfig, log zerolog.Logger, opts ...valuation.Option) (*App, error) {
	loc := time.UTC
	if cfg.Location != "" {
		l, err := time.LoadLocation(cfg.Location)
		if err != nil {
			return nil, fmt.Errorf("invalid valuation.location: %w", err)
		}
		loc = l
	}

	historyOpts := append([]valuation.Option{
		valuation.WithLogger(log),
		valuation.WithLocation(loc),
		valuation.WithBackfillDays(cfg.BackfillDays),
	}, opts...)
	history := valuation.NewService(ctx, store, historyOpts...)

	ledgerSvc, err := ledger.NewService(ctx, store, history, ledger.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}

	watchlistSvc, err := watchlist.NewService(ctx, store, watchlist.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to load tickers: %w", err)
	}

	return &App{
		Store:     store,
		History:   history,
		Ledger:    ledgerSvc,
		Watchlist: watchlistSvc,
		Dashboard: dashboard.NewDashboardService(ledgerSvc, history),
	}, nil
}

// Close releases every resource opened by Open
func (a *App) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i].Close())
	}
	a.closers = nil
	return err
}
