// Package notify sends transactional emails to candidates. SMTP is tried
// first and the Resend API is used when SMTP fails.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/seeg/onehcm/internal/logger"
)

var validate = validator.New()

// Message is a single email.
type Message struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	HTML    string `json:"html" validate:"required_without=Text"`
	Text    string `json:"text" validate:"required_without=HTML"`
}

func (m Message) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("invalid email message: %w", err)
	}
	return nil
}

// Sender delivers a message through one provider.
type Sender interface {
	Name() string
	Send(ctx context.Context, from string, msg Message) error
}

// Result reports the delivery. OK is the discriminator; on failure Details
// lists every provider error.
type Result struct {
	OK       bool   `json:"ok"`
	Provider string `json:"provider,omitempty"`
	Error    string `json:"error,omitempty"`
	Details  string `json:"details,omitempty"`
}

// ErrNoSender is returned by NewMailer when no provider is configured.
var ErrNoSender = errors.New("no email provider configured")

// Mailer tries its senders in order until one succeeds.
type Mailer struct {
	from    string
	senders []Sender
	logger  *zap.Logger
}

// NewMailer creates a Mailer. nil senders are ignored.
func NewMailer(from string, l *zap.Logger, senders ...Sender) (*Mailer, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, errors.New("sender address is required")
	}

	active := make([]Sender, 0, len(senders))
	for _, s := range senders {
		if s != nil {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		return nil, ErrNoSender
	}

	return &Mailer{
		from:    from,
		senders: active,
		logger:  logger.WithFields(l, zap.String("component", "notify")),
	}, nil
}

// Send delivers msg. It never returns an error; failures are reported in Result.
func (m *Mailer) Send(ctx context.Context, msg Message) Result {
	if err := msg.Validate(); err != nil {
		return Result{Error: "invalid message", Details: err.Error()}
	}

	failures := make([]string, 0, len(m.senders))
	for _, sender := range m.senders {
		err := sender.Send(ctx, m.from, msg)
		if err == nil {
			m.logger.Info("email sent",
				zap.String("provider", sender.Name()),
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject),
			)
			return Result{OK: true, Provider: sender.Name()}
		}

		m.logger.Warn("email provider failed",
			zap.String("provider", sender.Name()),
			zap.String("to", msg.To),
			zap.Error(err),
		)
		failures = append(failures, fmt.Sprintf("%s: %v", sender.Name(), err))

		if ctx.Err() != nil {
			break
		}
	}

	return Result{Error: "email delivery failed", Details: strings.Join(failures, "; ")}
}
