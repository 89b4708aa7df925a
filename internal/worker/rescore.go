// Package worker runs the periodic rescoring pass over the registry.
package worker

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	appctx "tourreg/internal/core/context"
	"tourreg/internal/core/id"
	"tourreg/internal/domain/registry"
	"tourreg/pkg/logger"
)

// OperatorID attributes rescoring audit entries.
const OperatorID = "rescorer"

// DefaultBatchSize is used when Options.BatchSize is not positive.
const DefaultBatchSize = 200

// Service is the part of submission.Service the rescorer needs.
type Service interface {
	List(ctx context.Context, f registry.Filter) ([]*registry.Record, error)
	Rescore(ctx context.Context, recordID id.ID) (bool, error)
}

// Observer receives rescoring pass results. Implemented by the metrics package.
type Observer interface {
	ObserveRescore(result string, changed int)
}

// Options configures a Rescorer.
type Options struct {
	Concurrency int
	BatchSize   int
}

// Stats summarizes one pass.
type Stats struct {
	Scanned int
	Changed int
	Failed  int
}

// Rescorer recomputes stored scores. It never allocates codes or changes status.
type Rescorer struct {
	service  Service
	observer Observer
	opts     Options
	log      *logger.Logger
}

// NewRescorer creates a rescorer. observer may be nil.
func NewRescorer(service Service, observer Observer, opts Options, log *logger.Logger) *Rescorer {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = DefaultBatchSize
	}
	if log == nil {
		log = logger.Default()
	}
	return &Rescorer{
		service:  service,
		observer: observer,
		opts:     opts,
		log:      log.WithComponent("rescorer"),
	}
}

// Run executes a pass immediately and then every interval until ctx is done.
func (r *Rescorer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.pass(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.pass(ctx)
		}
	}
}

func (r *Rescorer) pass(ctx context.Context) {
	start := time.Now()
	stats, err := r.RunOnce(ctx)

	result := "ok"
	switch {
	case err != nil:
		result = "error"
		r.log.Errorw("rescoring pass failed", "error", err, "scanned", stats.Scanned)
	case stats.Failed > 0:
		result = "partial"
	}
	if r.observer != nil {
		r.observer.ObserveRescore(result, stats.Changed)
	}

	r.log.Infow("rescoring pass finished",
		"scanned", stats.Scanned,
		"changed", stats.Changed,
		"failed", stats.Failed,
		"duration", time.Since(start),
	)
}

// RunOnce rescores every record in batches of Options.BatchSize.
// A failure to rescore one record is logged and counted, it does not stop the pass.
// A failure to list records aborts it.
func (r *Rescorer) RunOnce(ctx context.Context) (Stats, error) {
	if appctx.GetOperator(ctx) == nil {
		ctx = appctx.WithOperator(ctx, &appctx.OperatorContext{OperatorID: OperatorID, Source: "worker"})
	}

	var stats Stats
	for offset := 0; ; offset += r.opts.BatchSize {
		batch, err := r.service.List(ctx, registry.Filter{Limit: r.opts.BatchSize, Offset: offset})
		if err != nil {
			return stats, err
		}

		changed, failed := r.rescoreBatch(ctx, batch)
		stats.Scanned += len(batch)
		stats.Changed += changed
		stats.Failed += failed

		if len(batch) < r.opts.BatchSize {
			return stats, nil
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
	}
}

func (r *Rescorer) rescoreBatch(ctx context.Context, batch []*registry.Record) (changed, failed int) {
	var nChanged, nFailed atomic.Int32

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for _, rec := range batch {
		g.Go(func() error {
			ok, err := r.service.Rescore(ctx, rec.ID)
			if err != nil {
				nFailed.Add(1)
				r.log.Warnw("rescore failed", "record_id", rec.ID, "error", err)
				return nil
			}
			if ok {
				nChanged.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(nChanged.Load()), int(nFailed.Load())
}
