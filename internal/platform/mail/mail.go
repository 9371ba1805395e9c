// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package mail delivers rendered email messages.
//
// # Architecture
//
// [Sender] is the only contract the rest of the service depends on. The
// SMTP implementation is used in deployed environments; the logging one
// prints the message so that local flows work without a mail server.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// Message is a single HTML email addressed to one recipient.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers one message or returns the transport error.
type Sender interface {
	Send(ctx context.Context, message Message) error
}

// # SMTP

// SMTPConfig holds the connection settings of the outgoing mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends messages through an SMTP relay using gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates a sender for the given relay.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send dials the relay and delivers message.
//
// gomail has no context support, so the dial runs in its own goroutine and
// Send returns early when ctx is done. The connection attempt itself is
// then abandoned to the dialer's own timeouts.
func (s *SMTPSender) Send(ctx context.Context, message Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(s.compose(message))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mail_smtp_send_failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mail_smtp_send_failed: %w", ctx.Err())
	}
}

// compose builds the MIME message for one recipient.
func (s *SMTPSender) compose(message Message) *gomail.Message {
	composed := gomail.NewMessage()
	composed.SetHeader("From", s.from)
	composed.SetHeader("To", message.To)
	composed.SetHeader("Subject", message.Subject)
	composed.SetBody("text/html", message.HTML)
	return composed
}

// # Development

// LogSender writes messages to the structured log instead of sending them.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message at info level. It never fails.
func (s *LogSender) Send(ctx context.Context, message Message) error {
	s.logger.InfoContext(ctx, "mail_logged",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("html", message.HTML),
	)
	return nil
}
