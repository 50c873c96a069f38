package notify

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pharmez/medimate/internal/config"
)

// Attachment is an optional file attached to an outbound message
type Attachment struct {
	Filename string
	Content  []byte
}

// Message is one outbound notification email
type Message struct {
	To          string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// Transport delivers notification messages. A disabled transport is an
// expected state, not an error.
type Transport interface {
	Enabled() bool
	Send(ctx context.Context, msg Message) error
}

// Mailer is the SMTP transport. Sends pass through a rate limiter and a
// circuit breaker so a misbehaving SMTP server cannot stall or flood
// the scheduler.
type Mailer struct {
	cfg     config.MailConfig
	client  *mail.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewMailer creates the SMTP transport. When credentials are missing the
// mailer is disabled and every Send is refused.
func NewMailer(cfg config.MailConfig, logger *zap.Logger) (*Mailer, error) {
	m := &Mailer{
		cfg:    cfg,
		logger: logger,
	}

	if !cfg.Enabled() {
		logger.Warn("Mail transport disabled: credentials missing")
		return m, nil
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	m.client = client

	m.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "smtp",
		Timeout: 2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Mail circuit breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	rpm := cfg.RatePerMinute
	if rpm <= 0 {
		rpm = 60
	}
	m.limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 5)

	return m, nil
}

// Enabled reports whether the transport is configured
func (m *Mailer) Enabled() bool {
	return m.client != nil
}

// Send delivers one message through SMTP
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if !m.Enabled() {
		return fmt.Errorf("mail transport disabled")
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	out := mail.NewMsg()
	if err := out.From(m.cfg.Sender()); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)

	for _, att := range msg.Attachments {
		if err := out.AttachReader(att.Filename, bytes.NewReader(att.Content)); err != nil {
			return fmt.Errorf("failed to attach %s: %w", att.Filename, err)
		}
	}

	_, err := m.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, m.client.DialAndSendWithContext(ctx, out)
	})
	if err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	m.logger.Info("Email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
