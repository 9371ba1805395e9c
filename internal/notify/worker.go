// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/taibuivan/wanderly/internal/platform/constants"
	"github.com/taibuivan/wanderly/internal/platform/mail"
)

// prefetch is the number of unacknowledged deliveries held by one worker.
const prefetch = 10

// Worker consumes email jobs from RabbitMQ and sends them.
type Worker struct {
	url      string
	queue    string
	sender   mail.Sender
	logger   *slog.Logger
	observer Observer
}

// NewWorker creates a worker. A nil observer disables job metrics.
func NewWorker(url, queue string, sender mail.Sender, logger *slog.Logger, observer Observer) *Worker {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Worker{url: url, queue: queue, sender: sender, logger: logger, observer: observer}
}

// Run consumes until ctx is cancelled, reconnecting with exponential backoff
// whenever the broker connection is lost.
func (w *Worker) Run(ctx context.Context) error {
	backoff := constants.AMQPReconnectMin

	for {
		conn, err := dialBroker(ctx, w.url, constants.AMQPDialTimeout)
		if err == nil {
			backoff = constants.AMQPReconnectMin
			err = w.consume(ctx, conn)
			_ = conn.Close()
		}

		if ctx.Err() != nil {
			return nil
		}

		w.logger.WarnContext(ctx, "email_worker_reconnecting",
			slog.Duration("backoff", backoff),
			slog.Any("error", err),
		)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil
		}
		backoff = min(backoff*2, constants.AMQPReconnectMax)
	}
}

func (w *Worker) consume(ctx context.Context, conn *amqp.Connection) error {
	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("notify_amqp_channel_failed: %w", err)
	}
	defer func() { _ = channel.Close() }()

	if err := channel.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("notify_amqp_qos_failed: %w", err)
	}

	if _, err := declareQueue(channel, w.queue); err != nil {
		return err
	}

	deliveries, err := channel.ConsumeWithContext(ctx, w.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("notify_amqp_consume_failed: %w", err)
	}

	w.logger.InfoContext(ctx, "email_worker_consuming", slog.String("queue", w.queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("notify: deliveries channel closed")
			}
			w.settle(delivery, w.Handle(ctx, delivery.Body, delivery.Redelivered))
		}
	}
}

// Outcome tells the consumer how to settle a delivery.
type Outcome int

const (
	// Ack removes the delivery from the queue.
	Ack Outcome = iota
	// Requeue returns the delivery to the queue for one more attempt.
	Requeue
	// Discard drops the delivery.
	Discard
)

// Handle processes one message body and decides how to settle it.
//
// Malformed messages are discarded. A failed send is retried once through
// a requeue and discarded when it fails again.
func (w *Worker) Handle(ctx context.Context, body []byte, redelivered bool) Outcome {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil || job.To == "" {
		w.logger.ErrorContext(ctx, "email_job_malformed", slog.Any("error", err))
		return Discard
	}

	sendCtx, cancel := context.WithTimeout(ctx, constants.MailSendTimeout)
	defer cancel()

	if err := deliver(sendCtx, w.sender, job, w.logger, w.observer); err != nil {
		if redelivered {
			return Discard
		}
		return Requeue
	}
	return Ack
}

func (w *Worker) settle(delivery amqp.Delivery, outcome Outcome) {
	var err error
	switch outcome {
	case Ack:
		err = delivery.Ack(false)
	case Requeue:
		err = delivery.Nack(false, true)
	default:
		err = delivery.Nack(false, false)
	}
	if err != nil {
		w.logger.Error("email_job_settle_failed", slog.Any("error", err))
	}
}
