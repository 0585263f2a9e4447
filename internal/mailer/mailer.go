// Package mailer delivers lead notifications over SMTP with STARTTLS.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/payout-quote/internal/credentials"
	"github.com/iwvelando/payout-quote/internal/lead"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Config describes the SMTP submission endpoint. Credentials are resolved
// by name through a credentials.Provider on every send.
type Config struct {
	Host           string
	Port           int
	UsernameSecret string
	PasswordSecret string
	Timeout        time.Duration
}

// SMTP implements lead.Mailer.
type SMTP struct {
	cfg     Config
	secrets credentials.Provider
	logger  *zap.Logger

	// deliver is replaced in tests
	deliver func(ctx context.Context, client *mail.Client, msg *mail.Msg) error
}

// New creates an SMTP mailer. The connection is opened per Send.
func New(logger *zap.Logger, cfg Config, secrets credentials.Provider) (*SMTP, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid smtp port %d", cfg.Port)
	}
	if secrets == nil {
		return nil, errors.New("credential provider is required")
	}
	return &SMTP{
		cfg:     cfg,
		secrets: secrets,
		logger:  logger,
		deliver: func(ctx context.Context, client *mail.Client, msg *mail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
	}, nil
}

// Send builds the MIME message and submits it.
func (s *SMTP) Send(ctx context.Context, msg lead.Message) error {
	m, err := BuildMessage(msg)
	if err != nil {
		return err
	}

	username, err := s.secrets.GetSecret(s.cfg.UsernameSecret)
	if err != nil {
		return fmt.Errorf("smtp username: %w", err)
	}
	password, err := s.secrets.GetSecret(s.cfg.PasswordSecret)
	if err != nil {
		return fmt.Errorf("smtp password: %w", err)
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if s.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.cfg.Timeout))
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := s.deliver(ctx, client, m); err != nil {
		s.logger.Warn("smtp delivery failed",
			zap.String("op", "mailer.Send"),
			zap.String("host", s.cfg.Host),
			zap.Int("port", s.cfg.Port),
			zap.Error(err),
		)
		return fmt.Errorf("smtp delivery to %s:%d failed: %w", s.cfg.Host, s.cfg.Port, err)
	}

	s.logger.Debug("smtp delivery succeeded",
		zap.String("op", "mailer.Send"),
		zap.String("host", s.cfg.Host),
		zap.Int("recipients", len(msg.Recipients())),
	)
	return nil
}

// BuildMessage converts a composed notification into a MIME message.
func BuildMessage(msg lead.Message) (*mail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, errors.New("message has no recipients")
	}

	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", msg.From, err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if len(msg.Cc) > 0 {
		if err := m.Cc(msg.Cc...); err != nil {
			return nil, fmt.Errorf("invalid cc recipient: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	for _, a := range msg.Attachments {
		var opts []mail.FileOption
		if a.ContentType != "" {
			opts = append(opts, mail.WithFileContentType(mail.ContentType(a.ContentType)))
		}
		m.AttachReadSeeker(a.Name, bytes.NewReader(a.Data), opts...)
	}
	return m, nil
}
