package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrClosed = errors.New("notification dispatcher closed")

type Kind string

const (
	KindOrderCreated     Kind = "order_created"
	KindPaymentCompleted Kind = "payment_completed"
)

type Job struct {
	Kind    Kind
	OrderID string
}

type JobHandler interface {
	Handle(ctx context.Context, job Job) error
}

// Dispatcher runs notification jobs on a fixed pool of workers fed by a
// bounded queue.
type Dispatcher struct {
	handler    JobHandler
	jobs       chan Job
	jobTimeout time.Duration
	logger     *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type DispatcherOptions struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

func NewDispatcher(handler JobHandler, opts DispatcherOptions, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 2 * time.Minute
	}
	d := &Dispatcher{
		handler:    handler,
		jobs:       make(chan Job, opts.QueueSize),
		jobTimeout: opts.JobTimeout,
		logger:     logger.Named("notify"),
	}
	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

func (d *Dispatcher) OrderCreated(ctx context.Context, orderID string) error {
	return d.Enqueue(ctx, Job{Kind: KindOrderCreated, OrderID: orderID})
}

func (d *Dispatcher) PaymentCompleted(ctx context.Context, orderID string) error {
	return d.Enqueue(ctx, Job{Kind: KindPaymentCompleted, OrderID: orderID})
}

// Enqueue waits for queue space until ctx is done.
func (d *Dispatcher) Enqueue(ctx context.Context, job Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

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

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for job := range d.jobs {
		d.run(job)
	}
}

func (d *Dispatcher) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("notification panicked", zap.String("kind", string(job.Kind)), zap.String("order_id", job.OrderID), zap.Any("panic", r))
		}
	}()

	start := time.Now()
	if err := d.handler.Handle(ctx, job); err != nil {
		d.logger.Error("notification failed", zap.String("kind", string(job.Kind)), zap.String("order_id", job.OrderID), zap.Error(err))
		return
	}
	d.logger.Info("notification sent", zap.String("kind", string(job.Kind)), zap.String("order_id", job.OrderID), zap.Duration("took", time.Since(start)))
}
