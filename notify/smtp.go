// Package notify delivers rendered reply templates by email.
package notify

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/andrejsstepanovs/proposalpilot/apperror"
	"github.com/andrejsstepanovs/proposalpilot/config"
	"github.com/wneessen/go-mail"
)

// implicitTLSPort is the SMTPS port where TLS starts before the SMTP greeting.
const implicitTLSPort = 465

// SMTP sends mail through an authenticated, encrypted SMTP session.
type SMTP struct {
	cfg     config.Email
	rootCAs *x509.CertPool
	now     func() time.Time
}

// Option customizes an SMTP notifier.
type Option func(*SMTP)

// WithRootCAs verifies the server certificate against pool instead of the system roots.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(s *SMTP) {
		s.rootCAs = pool
	}
}

func NewSMTP(cfg config.Email, opts ...Option) *SMTP {
	s := &SMTP{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send delivers one plain-text message. Every failure after the configuration check
// is returned as a transport error.
func (s *SMTP) Send(ctx context.Context, to, subject, body string) error {
	if !s.cfg.Configured() {
		return apperror.ErrEmailNotSetUp
	}

	if err := s.send(ctx, to, subject, body); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeTransport, fmt.Sprintf("could not send email to %s", to))
	}
	return nil
}

func (s *SMTP) send(ctx context.Context, to, subject, body string) error {
	msg, err := s.message(to, subject, body)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.SMTPServer, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to deliver message: %w", err)
	}
	return nil
}

func (s *SMTP) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.SenderEmail),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTLSConfig(&tls.Config{
			ServerName: s.cfg.SMTPServer,
			MinVersion: tls.VersionTLS12,
			RootCAs:    s.rootCAs,
		}),
	}
	if s.cfg.SMTPPort == implicitTLSPort {
		opts = append(opts, mail.WithSSLPort(false))
	}
	return opts
}

func (s *SMTP) message(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.SenderEmail); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetDateWithValue(s.now())
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}
