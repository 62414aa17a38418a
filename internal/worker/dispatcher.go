// Package worker runs translation jobs on an elastic pool of goroutines,
// serving callers round-robin so one busy client cannot starve the others.
package worker

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrDispatcherBusy is returned when the job queue is full.
	ErrDispatcherBusy = errors.New("dispatcher queue is full")
	// ErrDispatcherClosed is returned after Close.
	ErrDispatcherClosed = errors.New("dispatcher closed")
)

// DispatcherConfig sizes the worker pool and its queue.
type DispatcherConfig struct {
	MinWorkers        int
	MaxWorkers        int
	QueueSize         int
	WorkerIdleTimeout time.Duration
}

type keyQueue struct {
	jobs     []Job
	enqueued bool
}

type Dispatcher struct {
	pool     *jobChannelPool
	jobQueue chan Job // interface for outer jobs get in the dispatcher
	quit     chan struct{}
	once     sync.Once
	closing  sync.RWMutex // orders Submit's enqueue before close(quit)
	logger   *logrus.Logger

	mu        sync.Mutex
	queues    map[string]*keyQueue // job queue for each caller
	ready     *list.List           // LRU queue storing caller keys
	positions map[string]*list.Element
}

func NewDispatcher(cfg DispatcherConfig, logger *logrus.Logger) *Dispatcher {
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	d := &Dispatcher{
		pool:      newJobChannelPool(cfg.MinWorkers, cfg.MaxWorkers, cfg.WorkerIdleTimeout, logger),
		jobQueue:  make(chan Job, cfg.QueueSize),
		quit:      make(chan struct{}),
		logger:    logger,
		queues:    make(map[string]*keyQueue),
		ready:     list.New(),
		positions: make(map[string]*list.Element),
	}

	// Warm up workers.
	for i := 0; i < cfg.MinWorkers; i++ {
		d.pool.spawnWorker()
	}

	go d.run()
	return d
}

// Submit queues fn for key and waits until it ran. It fails fast with
// ErrDispatcherBusy when the queue is full and returns ctx.Err() if ctx ends
// first; fn is then skipped if it has not started yet.
func (d *Dispatcher) Submit(ctx context.Context, key string, fn func(context.Context)) error {
	job := Job{Key: key, ctx: ctx, fn: fn, done: make(chan error, 1)}
	d.closing.RLock()
	select {
	case <-d.quit:
		d.closing.RUnlock()
		return ErrDispatcherClosed
	default:
	}
	select {
	case d.jobQueue <- job:
	default:
		d.closing.RUnlock()
		return ErrDispatcherBusy
	}
	d.closing.RUnlock()
	select {
	case err := <-job.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops dispatching. Queued jobs fail with ErrDispatcherClosed.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.closing.Lock()
		close(d.quit)
		d.closing.Unlock()
		d.pool.close()
	})
}

func (d *Dispatcher) run() {
	for {
		// dispatch one job of the caller in the front of LRU queue
		if !d.dispatchOne() {
			select {
			case job := <-d.jobQueue: // force congestion
				d.enqueueJob(job)
			case <-d.quit:
				d.drain()
				return
			}
			continue
		}
		// if we have a new job, enqueue it and its caller
		select {
		case job := <-d.jobQueue: // non-congestion
			d.enqueueJob(job)
		case <-d.quit:
			d.drain()
			return
		default:
		}
	}
}

func (d *Dispatcher) enqueueJob(job Job) {
	d.mu.Lock()
	defer d.mu.Unlock()

	q := d.queues[job.Key]
	if q == nil {
		q = &keyQueue{}
		d.queues[job.Key] = q
	}
	q.jobs = append(q.jobs, job)
	if q.enqueued {
		// caller already enqueued, skip
		return
	}
	// new caller, enqueue
	q.enqueued = true
	d.positions[job.Key] = d.ready.PushBack(job.Key)
}

// dispatchOne get first caller in LRU and dispatch its job
func (d *Dispatcher) dispatchOne() bool {
	d.mu.Lock()
	elem := d.ready.Front()
	if elem == nil {
		d.mu.Unlock()
		return false
	}
	key := elem.Value.(string)
	q := d.queues[key]
	// get job from the first caller
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	if len(q.jobs) == 0 {
		// caller only has one job, it'll be handled, caller leaves the queue
		q.enqueued = false
		d.ready.Remove(elem)
		delete(d.positions, key)
		delete(d.queues, key)
	} else {
		// get to the back of queue
		d.ready.MoveToBack(elem)
	}
	d.mu.Unlock()

	workerChan := d.pool.acquire()
	if workerChan == nil {
		job.finish(ErrDispatcherClosed)
		return true
	}
	d.logger.WithField("key", key).Debug("Dispatching job to worker")
	workerChan <- job
	return true
}

// drain fails every job still waiting after Close.
func (d *Dispatcher) drain() {
	d.mu.Lock()
	for _, q := range d.queues {
		for _, job := range q.jobs {
			job.finish(ErrDispatcherClosed)
		}
	}
	d.queues = make(map[string]*keyQueue)
	d.ready.Init()
	d.positions = make(map[string]*list.Element)
	d.mu.Unlock()

	for {
		select {
		case job := <-d.jobQueue:
			job.finish(ErrDispatcherClosed)
		default:
			return
		}
	}
}
