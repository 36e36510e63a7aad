package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender logs notifications instead of sending them — used in ENV=local
// or when no Resend API key is configured.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("run failure notification (local dev)", "to", to, "subject", subject, "body", body)
	return nil
}

// ResendSender sends notifications via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

// NewSender returns a LogSender for ENV=local or an empty API key,
// ResendSender otherwise.
func NewSender(env, apiKey, from string, logger *slog.Logger) Sender {
	if env == "local" || apiKey == "" {
		return &LogSender{logger: logger}
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Notifier reports terminal run failures. A notification failure is logged
// and swallowed; it never affects the run's status transition.
type Notifier struct {
	sender Sender
	to     string
	logger *slog.Logger
}

func NewNotifier(sender Sender, to string, logger *slog.Logger) *Notifier {
	return &Notifier{sender: sender, to: to, logger: logger.With("component", "notifier")}
}

func (n *Notifier) RunFailed(ctx context.Context, runID, jobID, errMsg string) {
	if n.to == "" {
		return
	}
	subject := fmt.Sprintf("Run %s failed", runID)
	body := fmt.Sprintf(
		`<p>Run <code>%s</code> of job <code>%s</code> failed:</p><pre>%s</pre>`,
		runID, jobID, errMsg,
	)
	if err := n.sender.Send(ctx, n.to, subject, body); err != nil {
		n.logger.Error("send run failure notification", "run_id", runID, "error", err)
	}
}
