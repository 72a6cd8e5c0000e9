package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/handleswap/handleswap/internal/api"
	"github.com/handleswap/handleswap/internal/app/escrow"
	"github.com/handleswap/handleswap/internal/infra/ledger"
	"github.com/handleswap/handleswap/internal/infra/observability"
	"github.com/handleswap/handleswap/internal/infra/sqlite"
	"github.com/handleswap/handleswap/internal/infra/sweep"
)

// Build assembles the escrow engine and its stores from configuration.
// The caller owns the returned DB and must close it.
func Build(cfg Config) (*escrow.Engine, *sqlite.DB, error) {
	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := sqlite.Open(cfg.DataDir())
	if err != nil {
		return nil, nil, err
	}

	engine := escrow.New(engineCfg,
		sqlite.NewListings(db),
		sqlite.NewOffers(db),
		sqlite.NewTransactions(db),
		ledger.New(db),
	)
	if cfg.Metrics.Enabled {
		engine.SetMetrics(observability.NewMetrics())
	}
	return engine, db, nil
}

// Run builds the service and serves the HTTP API until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	engine, db, err := Build(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Sweep.Enabled {
		sweeper := sweep.New(sweep.Config{Interval: cfg.SweepInterval()}, engine)
		go sweeper.Run(ctx)
		log.Printf("deadline sweeper running every %s", cfg.SweepInterval())
	}

	server := api.NewServer(engine)
	if cfg.Metrics.Enabled {
		server.EnableMetrics()
	}

	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	httpServer := &http.Server{Addr: addr, Handler: server.Handler()}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	log.Printf("HandleSwap listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
