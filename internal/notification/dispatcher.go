package notification

import (
	"context"
	"log/slog"
	"sync"
)

type worker struct {
	id         int
	workerPool chan chan Job
	jobChannel chan Job
	logger     *slog.Logger
}

func newWorker(id int, workerPool chan chan Job, logger *slog.Logger) *worker {
	return &worker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan Job),
		logger:     logger,
	}
}

func (w *worker) start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				w.logger.Debug("worker processing notification", "worker_id", w.id, "subject", job.Subject)
				processFunc(job)
			case <-ctx.Done():
				w.logger.Debug("notification worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

// Dispatcher fans notifications out to all configured senders through a
// fixed worker pool. Delivery is best effort: a full queue drops the job
// rather than blocking the caller.
type Dispatcher struct {
	senders []SenderAPI
	logger  *slog.Logger

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

type Config struct {
	MaxWorkers int
	QueueSize  int
}

func NewDispatcher(config Config, senders []SenderAPI, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}

	d := &Dispatcher{
		senders:    senders,
		logger:     logger,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan Job, queueSize),
		workerPool: make(chan chan Job, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	d.startWorkerPool()
	return d
}

func (d *Dispatcher) startWorkerPool() {
	d.once.Do(func() {
		for i := 0; i < d.maxWorkers; i++ {
			w := newWorker(i, d.workerPool, d.logger)
			w.start(d.ctx, &d.wg, d.process)
		}

		d.wg.Add(1)
		go d.dispatch()

		d.logger.Info("notification worker pool started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()

	for {
		select {
		case job := <-d.jobQueue:
			select {
			case jobChannel := <-d.workerPool:
				select {
				case jobChannel <- job:
				case <-d.ctx.Done():
					return
				}
			case <-d.ctx.Done():
				return
			}
		case <-d.ctx.Done():
			return
		}
	}
}

// Enqueue queues a notification without blocking. Notifications are
// secondary to the operation that triggered them, so a full queue drops the
// job with a warning instead of applying backpressure.
func (d *Dispatcher) Enqueue(job Job) {
	select {
	case d.jobQueue <- job:
	default:
		d.logger.Warn("notification queue full, dropping job", "subject", job.Subject)
	}
}

func (d *Dispatcher) process(job Job) {
	for _, sender := range d.senders {
		if err := sender.Send(d.ctx, job); err != nil {
			// Channel failures stay isolated; the rest still deliver.
			d.logger.Error("notification delivery failed",
				"channel", sender.Name(),
				"subject", job.Subject,
				"error", err)
		}
	}
}

func (d *Dispatcher) Shutdown() {
	d.logger.Info("shutting down notification dispatcher")
	d.cancel()
	d.wg.Wait()
	d.logger.Info("notification dispatcher shutdown complete")
}
