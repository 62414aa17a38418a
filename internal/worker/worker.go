package worker

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Job is one unit of work submitted to the Dispatcher.
type Job struct {
	// Key groups jobs of one caller; callers are served round-robin.
	Key string

	ctx  context.Context
	fn   func(context.Context)
	done chan error
	stop bool
}

func (job Job) finish(err error) {
	if job.done != nil {
		job.done <- err
	}
}

type Worker struct {
	pool       *jobChannelPool
	jobChannel chan Job
	logger     *logrus.Logger
}

func NewWorker(pool *jobChannelPool, logger *logrus.Logger) *Worker {
	return &Worker{
		pool:       pool,
		jobChannel: make(chan Job),
		logger:     logger,
	}
}

func (w *Worker) Start() {
	go func() {
		for {
			job := <-w.jobChannel
			if job.stop {
				return
			}
			w.run(job)
			if !w.pool.Release(w.jobChannel) {
				return
			}
		}
	}()
}

// run executes job unless its caller already gave up.
func (w *Worker) run(job Job) {
	if err := job.ctx.Err(); err != nil {
		job.finish(err)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			w.logger.WithField("key", job.Key).Errorf("worker job panicked: %v", r)
			job.finish(fmt.Errorf("job panicked: %v", r))
		}
	}()
	job.fn(job.ctx)
	job.finish(nil)
}
