package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/jobpool/pool"
)

// runReport is what a finished run prints.
type runReport struct {
	Config    runConfig
	Elapsed   time.Duration
	Stats     pool.Stats
	PerWorker []int64
	Aborted   bool
}

// Throughput returns completed jobs per second.
func (r runReport) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Stats.Completed) / r.Elapsed.Seconds()
}

// simulatedWork picks a job's sleep uniformly from the configured range.
func simulatedWork(cfg runConfig) time.Duration {
	span := cfg.MaxWork - cfg.MinWork
	if span <= 0 {
		return cfg.MinWork
	}
	return cfg.MinWork + rand.N(span+1)
}

// runWorkload builds a pool from cfg, feeds it cfg.Jobs synthetic jobs from
// cfg.Submitters goroutines, and tears it down. Cancelling ctx stops the
// submitters early; jobs already submitted still run before it returns.
func runWorkload(ctx context.Context, cfg runConfig, logger *slog.Logger, bar *progressbar.ProgressBar) (runReport, error) {
	perWorker := make([]atomic.Int64, max(cfg.Workers, 0))

	opts := []pool.Option{
		pool.WithLogger(logger),
		pool.WithName("jobpool"),
		pool.WithQueueCapacity(cfg.Jobs),
		pool.WithBeforeJob(func(workerID int) {
			perWorker[workerID].Add(1)
		}),
		pool.WithAfterJob(func(int, error) {
			if bar != nil {
				_ = bar.Add(1)
			}
		}),
	}
	if cfg.Rate > 0 {
		opts = append(opts, pool.WithRateLimit(cfg.Rate, cfg.Burst))
	}
	if cfg.Affinity {
		opts = append(opts, pool.WithCPUAffinity())
	}

	start := time.Now()
	p, err := pool.New(cfg.Workers, opts...)
	if err != nil {
		return runReport{}, err
	}

	var seq atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for s := range cfg.Submitters {
		share := cfg.Jobs / cfg.Submitters
		if s < cfg.Jobs%cfg.Submitters {
			share++
		}
		g.Go(func() error {
			for range share {
				if err := gctx.Err(); err != nil {
					return err
				}
				n := seq.Add(1)
				work := simulatedWork(cfg)
				fail := cfg.PanicEvery > 0 && n%int64(cfg.PanicEvery) == 0
				p.Submit(func() {
					time.Sleep(work)
					if fail {
						panic(fmt.Sprintf("simulated failure in job %d", n))
					}
				})
			}
			return nil
		})
	}
	submitErr := g.Wait()

	if err := p.Close(); err != nil {
		return runReport{}, err
	}

	rep := runReport{
		Config:    cfg,
		Elapsed:   time.Since(start),
		Stats:     p.Stats(),
		PerWorker: make([]int64, len(perWorker)),
		Aborted:   submitErr != nil,
	}
	for i := range perWorker {
		rep.PerWorker[i] = perWorker[i].Load()
	}
	return rep, nil
}
