// Package dispatch runs fulfillment attempts in the background, a bounded
// number at a time, and writes each outcome back to the tracker.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"liker/internal/config"
	"liker/internal/fulfillment"
	"liker/internal/logger"
	"liker/internal/metrics"
	"liker/internal/tracker"
)

type Fulfiller interface {
	Fulfill(ctx context.Context, subjectID string) fulfillment.Outcome
}

type Dispatcher struct {
	ctx       context.Context
	fulfiller Fulfiller
	store     *tracker.Store
	slots     *semaphore.Weighted

	attemptTimeout time.Duration
	strict         bool

	wg      sync.WaitGroup
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// New builds a dispatcher whose runs live under ctx; cancelling ctx aborts
// queued and in-flight attempts.
func New(ctx context.Context, fulfiller Fulfiller, store *tracker.Store, cfg config.FulfillmentConfig, m *metrics.Metrics, log *logger.Logger) *Dispatcher {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Dispatcher{
		ctx:            ctx,
		fulfiller:      fulfiller,
		store:          store,
		slots:          semaphore.NewWeighted(int64(maxConcurrent)),
		attemptTimeout: cfg.AttemptTimeout.Std(),
		strict:         cfg.StrictOutcomes,
		metrics:        m,
		logger:         log,
	}
}

// Dispatch starts the attempt for tx and returns immediately.
func (d *Dispatcher) Dispatch(tx tracker.Transaction) {
	d.wg.Add(1)
	d.metrics.AttemptsQueued.Inc()
	go func() {
		defer d.wg.Done()
		d.run(tx)
	}()
}

// Wait blocks until every dispatched attempt has been recorded or ctx ends.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run(tx tracker.Transaction) {
	log := d.logger.With("transaction_id", tx.ID, "uid", tx.SubjectID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("background processing panicked", "panic", r)
			if err := d.store.Fail(tx.ID, fmt.Sprintf("%v", r), nil); err != nil {
				log.Error("failed to mark transaction failed", "error", err)
			}
		}
	}()

	err := d.slots.Acquire(d.ctx, 1)
	d.metrics.AttemptsQueued.Dec()
	if err == nil {
		defer d.slots.Release(1)
		err = d.ctx.Err()
	}
	if err != nil {
		log.Warn("attempt abandoned before a browser slot freed", "error", err)
		if err := d.store.Fail(tx.ID, "service shutting down before the attempt started", nil); err != nil {
			log.Error("failed to mark transaction failed", "error", err)
		}
		return
	}

	ctx := d.ctx
	if d.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(d.ctx, d.attemptTimeout)
		defer cancel()
	}

	outcome := d.fulfiller.Fulfill(ctx, tx.SubjectID)
	d.record(tx, outcome, log)
}

func (d *Dispatcher) record(tx tracker.Transaction, outcome fulfillment.Outcome, log *logger.Logger) {
	var err error
	if d.strict && outcome.StageFailed() {
		err = d.store.Fail(tx.ID, string(outcome.Reason), &outcome)
	} else {
		err = d.store.Complete(tx.ID, outcome)
	}

	switch {
	case err == nil:
		log.Info("processed likes", "amount", tx.Quantity, "simulated", outcome.Simulated)
	case errors.Is(err, tracker.ErrAlreadyTerminal):
		log.Info("transaction finished elsewhere, outcome discarded", "reason", string(outcome.Reason))
	default:
		log.Error("failed to record outcome", "error", err)
	}
}
