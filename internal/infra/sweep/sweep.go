// Package sweep runs the optional background deadline sweeper.
//
// Correctness never depends on it: the engine expires overdue transactions
// on every read. The sweeper only tightens the latency between a deadline
// passing and the record reflecting it, so listings free up without
// waiting for the next reader.
package sweep

import (
	"context"
	"log"
	"time"

	"github.com/handleswap/handleswap/internal/app/escrow"
	"github.com/handleswap/handleswap/internal/infra/dsa"
)

// Config controls sweeper behavior.
type Config struct {
	Interval time.Duration // How often to refresh and drain the queue (default 1m)
}

// DefaultConfig returns the default sweep interval.
func DefaultConfig() Config {
	return Config{Interval: time.Minute}
}

// Sweeper periodically walks active transactions and reads the overdue
// ones through the engine, which applies the usual read-time expiry.
type Sweeper struct {
	cfg    Config
	engine *escrow.Engine
	queue  *dsa.DeadlineQueue
}

// New creates a sweeper for the given engine.
func New(cfg Config, engine *escrow.Engine) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	return &Sweeper{
		cfg:    cfg,
		engine: engine,
		queue:  dsa.NewDeadlineQueue(),
	}
}

// Run blocks, sweeping every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				log.Printf("sweep: %v", err)
			}
		}
	}
}

// Sweep refreshes the deadline queue from the repository and expires every
// transaction that has fallen due. Reading a transaction through the
// engine is what performs the expiry; the queue just orders the reads.
func (s *Sweeper) Sweep(ctx context.Context) error {
	active, err := s.engine.ActiveTransactionDeadlines(ctx)
	if err != nil {
		return err
	}
	for id, deadline := range active {
		s.queue.Push(dsa.Item{Key: id, Deadline: deadline})
	}

	now := time.Now()
	for {
		item, ok := s.queue.PopDue(now)
		if !ok {
			return nil
		}
		if _, err := s.engine.GetTransaction(ctx, item.Key); err != nil {
			log.Printf("sweep %s: %v", item.Key, err)
		}
	}
}
