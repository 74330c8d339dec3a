package blog

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	gomail "gopkg.in/gomail.v2"
)

// SMTPConfig holds the mail transport credentials. Supplied externally,
// never with a baked in production default.
type SMTPConfig interface {
	GetMailHost() string
	GetMailPort() int
	GetMailUsername() string
	GetMailPassword() string
	GetMailSender() string
}

// SMTPMailer delivers messages over SMTP. Failures are wrapped as
// ErrDeliveryFailed and propagate to the caller; a reset request must never
// pretend the email went out.
type SMTPMailer struct {
	dialer *gomail.Dialer
	sender string
	logger Logger
}

// NewSMTPMailer creates a mailer from transport config
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(
			cfg.GetMailHost(),
			cfg.GetMailPort(),
			cfg.GetMailUsername(),
			cfg.GetMailPassword(),
		),
		sender: cfg.GetMailSender(),
		logger: defLogger{},
	}
}

func (m *SMTPMailer) WithLogger(l Logger) *SMTPMailer {
	if l != nil {
		m.logger = l
	}
	return m
}

// Send delivers one message, honoring context cancellation before dialing
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	out := gomail.NewMessage()
	out.SetHeader("From", m.sender)
	out.SetHeader("To", msg.To)
	out.SetHeader("Subject", msg.Subject)
	out.SetBody("text/plain", msg.Body)

	if err := m.dialer.DialAndSend(out); err != nil {
		m.logger.Error("mail delivery failed", "to", msg.To, "error", err)
		return goerrors.Wrap(err, ErrDeliveryFailed.Category, ErrDeliveryFailed.Message).
			WithTextCode(ErrDeliveryFailed.TextCode)
	}

	return nil
}

var _ Mailer = (*SMTPMailer)(nil)

// ResetEmailBody builds the plain text reset message pointing at the
// tokenized confirmation URL.
func ResetEmailBody(resetURL string) string {
	return fmt.Sprintf(`To reset your password, visit the following link:
%s

If you did not make this request, ignore this email and no changes will be made.
`, resetURL)
}
