// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
)

var (
	verificationTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<body>
  <h1>Welcome to Wanderly, {{.Name}}!</h1>
  <p>Please confirm your email address to activate your account.</p>
  <p><a href="{{.Link}}">Verify my email</a></p>
  <p>If you did not sign up, you can ignore this message.</p>
</body>
</html>`))

	resetTemplate = template.Must(template.New("password_reset").Parse(`<!DOCTYPE html>
<html>
<body>
  <h1>Password reset</h1>
  <p>Hello {{.Name}}, we received a request to reset your password.</p>
  <p><a href="{{.Link}}">Choose a new password</a></p>
  <p>If you did not request this, please ignore this email.</p>
</body>
</html>`))
)

// Links holds the public URL prefixes that tokens are appended to.
type Links struct {
	Verification  string
	PasswordReset string
}

// Dispatcher renders account emails and enqueues them.
type Dispatcher struct {
	queue    Queue
	links    Links
	logger   *slog.Logger
	observer Observer
}

// NewDispatcher creates a Dispatcher. A nil observer disables job metrics.
func NewDispatcher(queue Queue, links Links, logger *slog.Logger, observer Observer) *Dispatcher {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Dispatcher{queue: queue, links: links, logger: logger, observer: observer}
}

// SendVerificationEmail enqueues the email-verification message for a new account.
func (d *Dispatcher) SendVerificationEmail(ctx context.Context, to, fullName, token string) error {
	return d.dispatch(ctx, KindVerification, "Verify your Wanderly account", verificationTemplate, to, fullName, d.links.Verification+token)
}

// SendPasswordResetEmail enqueues the password reset message.
func (d *Dispatcher) SendPasswordResetEmail(ctx context.Context, to, fullName, token string) error {
	return d.dispatch(ctx, KindPasswordReset, "Reset your Wanderly password", resetTemplate, to, fullName, d.links.PasswordReset+token)
}

func (d *Dispatcher) dispatch(ctx context.Context, kind Kind, subject string, tmpl *template.Template, to, name, link string) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, struct{ Name, Link string }{Name: name, Link: link}); err != nil {
		return fmt.Errorf("notify_render_failed: %w", err)
	}

	job := Job{Kind: kind, To: to, Subject: subject, HTML: body.String()}
	if err := d.queue.Enqueue(ctx, job); err != nil {
		d.observer.EmailJob(string(kind), StageDropped)
		return fmt.Errorf("notify_enqueue_failed: %w", err)
	}

	d.observer.EmailJob(string(kind), StageEnqueued)
	d.logger.DebugContext(ctx, "email_enqueued", slog.String("kind", string(kind)), slog.String("to", to))
	return nil
}
