// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package notify renders account emails and moves them to a mail transport
asynchronously.

# Architecture

The API process only renders and enqueues: a [Dispatcher] turns a token into
an email [Job] and hands it to a [Queue]. Delivery happens elsewhere, either
in a small in-process worker pool ([MemoryQueue]) or in the standalone worker
binary consuming RabbitMQ ([Worker]). A slow or failing mail server can
therefore never delay or fail an HTTP request.
*/
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taibuivan/wanderly/internal/platform/mail"
)

// Kind identifies the template an email job was rendered from.
type Kind string

const (
	KindVerification  Kind = "verification"
	KindPasswordReset Kind = "password_reset"
)

// Job is one rendered email waiting for delivery.
type Job struct {
	Kind    Kind   `json:"kind"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Message converts the job into a transport message.
func (j Job) Message() mail.Message {
	return mail.Message{To: j.To, Subject: j.Subject, HTML: j.HTML}
}

// ErrQueueFull is returned by a [MemoryQueue] whose buffer is exhausted.
var ErrQueueFull = errors.New("notify: email queue is full")

// Queue accepts jobs for later delivery. Enqueue must not wait on the mail server.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
}

// Observer receives job lifecycle events (enqueued, dropped, sent, failed).
type Observer interface {
	EmailJob(kind, stage string)
}

// Delivery stages reported to an [Observer].
const (
	StageEnqueued = "enqueued"
	StageDropped  = "dropped"
	StageSent     = "sent"
	StageFailed   = "failed"
)

type nopObserver struct{}

func (nopObserver) EmailJob(string, string) {}

// deliver sends one job and reports the outcome.
func deliver(ctx context.Context, sender mail.Sender, job Job, logger *slog.Logger, observer Observer) error {
	if err := sender.Send(ctx, job.Message()); err != nil {
		observer.EmailJob(string(job.Kind), StageFailed)
		logger.ErrorContext(ctx, "email_delivery_failed",
			slog.String("kind", string(job.Kind)),
			slog.String("to", job.To),
			slog.Any("error", err),
		)
		return err
	}

	observer.EmailJob(string(job.Kind), StageSent)
	logger.InfoContext(ctx, "email_delivered",
		slog.String("kind", string(job.Kind)),
		slog.String("to", job.To),
	)
	return nil
}
