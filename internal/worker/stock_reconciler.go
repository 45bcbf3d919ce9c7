package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/polkiloo/dealerflow/internal/domain/model"
)

// StockFacade exposes the subset of application functionality required by the reconciler.
type StockFacade interface {
	VehicleIDs(ctx context.Context, afterID int64, limit int) ([]int64, error)
	RecalculateStock(ctx context.Context, vehicleIDs []int64) (map[model.Stock][]int64, error)
}

var (
	errNotStarted = errors.New("stock reconciler not started")
	errStopped    = errors.New("stock reconciler stopped")
)

type batch struct {
	ids  []int64
	done func(processed int)
}

// StockReconciler periodically re-derives the stock of every vehicle with a pool of workers.
type StockReconciler struct {
	facade    StockFacade
	schedule  cron.Schedule
	batchSize int
	workers   int
	logger    *slog.Logger

	jobs    chan batch
	stopped <-chan struct{}
	cron    *cron.Cron
	running atomic.Bool
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	mu      sync.Mutex
}

// NewStockReconciler constructs the reconciler. expr uses the standard cron syntax or @every.
func NewStockReconciler(facade StockFacade, expr string, batchSize, workers int, logger *slog.Logger) (*StockReconciler, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("parse reconcile schedule: %w", err)
	}
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &StockReconciler{
		facade:    facade,
		schedule:  schedule,
		batchSize: batchSize,
		workers:   workers,
		logger:    logger,
		jobs:      make(chan batch, workers),
	}, nil
}

// Start launches the workers and the schedule.
func (r *StockReconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.stopped = runCtx.Done()

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx)
	}

	r.cron = cron.New()
	r.cron.Schedule(r.schedule, cron.FuncJob(func() {
		if _, err := r.Reconcile(runCtx); err != nil {
			r.logger.Error("stock reconciliation failed", slog.String("error", err.Error()))
		}
	}))
	r.cron.Start()
}

// Stop halts the schedule, waits for a running reconciliation and the workers.
func (r *StockReconciler) Stop() {
	r.mu.Lock()
	if r.cron != nil {
		<-r.cron.Stop().Done()
		r.cron = nil
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

// Reconcile walks all vehicles in batches and waits until every batch is handled.
// A call while another one is running is skipped.
func (r *StockReconciler) Reconcile(ctx context.Context) (int, error) {
	if !r.running.CompareAndSwap(false, true) {
		r.logger.Info("stock reconciliation already running")
		return 0, nil
	}
	defer r.running.Store(false)

	r.mu.Lock()
	stopped := r.stopped
	r.mu.Unlock()
	if stopped == nil {
		return 0, errNotStarted
	}

	var (
		pending   sync.WaitGroup
		processed atomic.Int64
		afterID   int64
		queued    int
	)
	done := func(n int) {
		processed.Add(int64(n))
		pending.Done()
	}

	var err error
	for {
		var ids []int64
		ids, err = r.facade.VehicleIDs(ctx, afterID, r.batchSize)
		if err != nil || len(ids) == 0 {
			break
		}
		afterID = ids[len(ids)-1]

		pending.Add(1)
		select {
		case <-ctx.Done():
			pending.Done()
			err = ctx.Err()
		case <-stopped:
			pending.Done()
			err = errStopped
		case r.jobs <- batch{ids: ids, done: done}:
			queued += len(ids)
		}
		if err != nil || len(ids) < r.batchSize {
			break
		}
	}
	waited := make(chan struct{})
	go func() {
		pending.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-stopped:
		// Workers are gone; batches still queued are counted as not processed.
		r.drain()
		if err == nil {
			err = errStopped
		}
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}

	total := int(processed.Load())
	if err == nil && total < queued {
		select {
		case <-stopped:
			err = errStopped
		default:
		}
	}
	r.logger.Info("stock reconciliation finished", slog.Int("vehicles", total))
	if err != nil {
		return total, fmt.Errorf("reconcile stock: %w", err)
	}
	return total, nil
}

func (r *StockReconciler) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return
		case b := <-r.jobs:
			r.handle(ctx, b)
		}
	}
}

// drain releases batches nobody will pick up.
func (r *StockReconciler) drain() {
	for {
		select {
		case b := <-r.jobs:
			b.done(0)
		default:
			return
		}
	}
}

func (r *StockReconciler) handle(ctx context.Context, b batch) {
	groups, err := r.facade.RecalculateStock(ctx, b.ids)
	if err != nil {
		r.logger.Error("recalculate stock failed",
			slog.Int64("first_vehicle", b.ids[0]), slog.Int("size", len(b.ids)), slog.String("error", err.Error()))
		b.done(0)
		return
	}
	for stock, ids := range groups {
		r.logger.Debug("stock resolved", slog.String("stock", string(stock)), slog.Int("vehicles", len(ids)))
	}
	b.done(len(b.ids))
}
