// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/taibuivan/wanderly/internal/platform/constants"
	"github.com/taibuivan/wanderly/internal/platform/mail"
)

// MemoryQueue is a buffered channel drained by a fixed pool of goroutines.
//
// Jobs are lost if the process exits before they are sent; it is meant for
// development and single-instance deployments without a broker.
type MemoryQueue struct {
	jobs     chan Job
	sender   mail.Sender
	logger   *slog.Logger
	observer Observer
	wg       sync.WaitGroup
}

// NewMemoryQueue creates a queue with room for buffer pending jobs.
func NewMemoryQueue(sender mail.Sender, buffer int, logger *slog.Logger, observer Observer) *MemoryQueue {
	if observer == nil {
		observer = nopObserver{}
	}
	return &MemoryQueue{
		jobs:     make(chan Job, buffer),
		sender:   sender,
		logger:   logger,
		observer: observer,
	}
}

// Start launches workers goroutines. They drain remaining jobs and exit once
// ctx is cancelled; use [MemoryQueue.Wait] to block until they are done.
func (q *MemoryQueue) Start(ctx context.Context, workers int) {
	for range max(workers, 1) {
		q.wg.Add(1)
		go q.work(ctx)
	}
}

// Wait blocks until every worker has exited.
func (q *MemoryQueue) Wait() {
	q.wg.Wait()
}

// Enqueue never blocks: a full buffer returns [ErrQueueFull].
func (q *MemoryQueue) Enqueue(_ context.Context, job Job) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) work(ctx context.Context) {
	defer q.wg.Done()

	for {
		select {
		case job := <-q.jobs:
			q.send(job)
		case <-ctx.Done():
			for {
				select {
				case job := <-q.jobs:
					q.send(job)
				default:
					return
				}
			}
		}
	}
}

// send delivers with its own deadline so shutdown does not cancel in-flight mail.
func (q *MemoryQueue) send(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.MailSendTimeout)
	defer cancel()

	_ = deliver(ctx, q.sender, job, q.logger, q.observer)
}
