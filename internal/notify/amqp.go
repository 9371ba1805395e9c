// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/taibuivan/wanderly/internal/platform/constants"
)

// publishTimeout bounds a single publish so a stalled broker cannot hold a request.
const publishTimeout = 3 * time.Second

// ErrBrokerUnavailable is returned by [AMQPPublisher.Enqueue] while no broker
// connection is open. The job is not retried.
var ErrBrokerUnavailable = errors.New("notify: message broker is not connected")

// AMQPPublisher publishes email jobs as persistent JSON messages to a durable
// RabbitMQ queue through the default exchange.
//
// # Connection Lifecycle
//
// Enqueue never dials. It publishes on the cached channel or fails fast with
// [ErrBrokerUnavailable] and wakes [AMQPPublisher.Run], which re-opens the
// connection in the background with exponential backoff.
type AMQPPublisher struct {
	url         string
	queue       string
	logger      *slog.Logger
	dialTimeout time.Duration
	reconnect   chan struct{}

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPPublisher creates a publisher for the named queue.
func NewAMQPPublisher(url, queue string, logger *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		url:         url,
		queue:       queue,
		logger:      logger,
		dialTimeout: constants.AMQPDialTimeout,
		reconnect:   make(chan struct{}, 1),
	}
}

// Connect dials the broker and declares the queue. The dial is bounded by
// the configured dial timeout and by ctx's deadline, whichever is sooner.
func (p *AMQPPublisher) Connect(ctx context.Context) error {
	conn, err := dialBroker(ctx, p.url, p.dialTimeout)
	if err != nil {
		return err
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("notify_amqp_channel_failed: %w", err)
	}

	if _, err := declareQueue(channel, p.queue); err != nil {
		_ = conn.Close()
		return err
	}

	p.mu.Lock()
	p.resetLocked()
	p.conn, p.channel = conn, channel
	p.mu.Unlock()

	p.logger.Info("amqp_publisher_connected", slog.String("queue", p.queue))
	return nil
}

// Run keeps the connection open until ctx is cancelled.
func (p *AMQPPublisher) Run(ctx context.Context) {
	backoff := constants.AMQPReconnectMin

	for {
		for !p.connected() {
			err := p.Connect(ctx)
			if err == nil {
				backoff = constants.AMQPReconnectMin
				break
			}
			if ctx.Err() != nil {
				return
			}

			p.logger.WarnContext(ctx, "amqp_publisher_reconnecting",
				slog.Duration("backoff", backoff),
				slog.Any("error", err),
			)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			backoff = min(backoff*2, constants.AMQPReconnectMax)
		}

		select {
		case <-p.reconnect:
		case <-ctx.Done():
			return
		}
	}
}

// Enqueue publishes job on the open channel. A failed publish drops the
// channel and schedules a reconnect.
func (p *AMQPPublisher) Enqueue(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("notify_marshal_failed: %w", err)
	}

	channel := p.openChannel()
	if channel == nil {
		p.requestReconnect()
		return fmt.Errorf("notify_publish_failed: %w", ErrBrokerUnavailable)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = channel.PublishWithContext(publishCtx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(job.Kind),
		Body:         body,
	})
	if err != nil {
		p.mu.Lock()
		if p.channel == channel {
			p.resetLocked()
		}
		p.mu.Unlock()

		p.requestReconnect()
		return fmt.Errorf("notify_publish_failed: %w", err)
	}

	return nil
}

// Ping reports whether the broker connection is open.
func (p *AMQPPublisher) Ping(context.Context) error {
	if !p.connected() {
		return ErrBrokerUnavailable
	}
	return nil
}

// Close shuts the channel and connection down.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn, p.channel = nil, nil
	return err
}

func (p *AMQPPublisher) connected() bool {
	return p.openChannel() != nil
}

// openChannel returns the cached channel, or nil when it or its connection is closed.
func (p *AMQPPublisher) openChannel() *amqp.Channel {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil || p.channel.IsClosed() || p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.channel
}

func (p *AMQPPublisher) requestReconnect() {
	select {
	case p.reconnect <- struct{}{}:
	default:
	}
}

func (p *AMQPPublisher) resetLocked() {
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.channel = nil, nil
}

// dialBroker opens a connection whose TCP connect and AMQP handshake both
// finish within timeout, shortened to ctx's deadline when that is sooner.
func dialBroker(ctx context.Context, url string, timeout time.Duration) (*amqp.Connection, error) {
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("notify_amqp_dial_failed: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("notify_amqp_dial_failed: %w", context.DeadlineExceeded)
	}

	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("notify_amqp_dial_failed: %w", err)
	}
	return conn, nil
}

// declareQueue declares the durable job queue; publisher and worker agree on its shape.
func declareQueue(channel *amqp.Channel, name string) (amqp.Queue, error) {
	queue, err := channel.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("notify_queue_declare_failed: %w", err)
	}
	return queue, nil
}
