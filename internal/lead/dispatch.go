package lead

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/payout-quote/internal/quote"
	"go.uber.org/zap"
)

// Attachment is a file sent along with a notification.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is a composed notification ready for a Mailer.
type Message struct {
	From        string
	To          []string
	Cc          []string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// Recipients returns the To and Cc addresses.
func (m Message) Recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc))
	out = append(out, m.To...)
	return append(out, m.Cc...)
}

// Mailer delivers composed messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Submission is everything a lead notification reports on.
type Submission struct {
	Input   quote.Input
	Result  quote.Result
	City    string
	Contact Contact
}

// Confirmation describes a delivered notification.
type Confirmation struct {
	SentAt     time.Time `json:"sentAt"`
	Subject    string    `json:"subject"`
	Recipients []string  `json:"-"`
}

// DispatchError reports a notification that could not be delivered. Cause is
// suitable for showing to the user.
type DispatchError struct {
	Cause string
	Err   error
}

func (e *DispatchError) Error() string {
	return "lead dispatch failed: " + e.Cause
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// AttachmentFunc renders an optional attachment for a submission.
type AttachmentFunc func(Submission) (Attachment, error)

// DispatcherConfig holds the static sender and recipient identities.
type DispatcherConfig struct {
	From          string
	To            []string
	Cc            []string
	SubjectPrefix string
	Timeout       time.Duration
	Location      *time.Location
}

// Dispatcher composes lead notifications and hands them to a Mailer.
type Dispatcher struct {
	cfg        DispatcherConfig
	mailer     Mailer
	attachment AttachmentFunc
	now        func() time.Time
	logger     *zap.Logger
}

// NewDispatcher creates a dispatcher. attach may be nil.
func NewDispatcher(logger *zap.Logger, cfg DispatcherConfig, mailer Mailer, attach AttachmentFunc) (*Dispatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mailer == nil {
		return nil, errors.New("a mailer is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("a sender address is required")
	}
	if len(cfg.To) == 0 {
		return nil, errors.New("at least one recipient is required")
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Dispatcher{
		cfg:        cfg,
		mailer:     mailer,
		attachment: attach,
		now:        time.Now,
		logger:     logger,
	}, nil
}

// ComposeAndSend builds the notification for a submission and delivers it.
// Every failure is returned as a *DispatchError. Repeated calls send
// repeated notifications.
func (d *Dispatcher) ComposeAndSend(ctx context.Context, sub Submission) (Confirmation, error) {
	submittedAt := d.now()
	msg, err := d.Compose(sub, submittedAt)
	if err != nil {
		d.logger.Error("failed to compose lead notification",
			zap.String("op", "lead.ComposeAndSend"),
			zap.Error(err),
		)
		return Confirmation{}, &DispatchError{Cause: "the notification could not be prepared", Err: err}
	}

	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	if err := d.mailer.Send(ctx, msg); err != nil {
		cause := err.Error()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			cause = fmt.Sprintf("the mail server did not respond within %s", d.cfg.Timeout)
		}
		d.logger.Warn("lead notification not delivered",
			zap.String("op", "lead.ComposeAndSend"),
			zap.Int("recipients", len(msg.Recipients())),
			zap.Error(err),
		)
		return Confirmation{}, &DispatchError{Cause: cause, Err: err}
	}

	d.logger.Info("lead notification delivered",
		zap.String("op", "lead.ComposeAndSend"),
		zap.Int("recipients", len(msg.Recipients())),
		zap.String("verdict", string(sub.Result.Verdict)),
	)
	return Confirmation{
		SentAt:     submittedAt,
		Subject:    msg.Subject,
		Recipients: msg.Recipients(),
	}, nil
}

// Compose renders the notification for a submission made at the given time.
func (d *Dispatcher) Compose(sub Submission, submittedAt time.Time) (Message, error) {
	body, err := renderBody(sub, submittedAt.In(d.cfg.Location))
	if err != nil {
		return Message{}, err
	}

	prefix := d.cfg.SubjectPrefix
	if prefix == "" {
		prefix = "New lead"
	}
	msg := Message{
		From:     d.cfg.From,
		To:       append([]string(nil), d.cfg.To...),
		Cc:       append([]string(nil), d.cfg.Cc...),
		Subject:  fmt.Sprintf("%s: %s", prefix, sub.Contact.Name()),
		HTMLBody: body,
	}

	if d.attachment != nil {
		att, err := d.attachment(sub)
		if err != nil {
			return Message{}, fmt.Errorf("failed to render attachment: %w", err)
		}
		msg.Attachments = append(msg.Attachments, att)
	}
	return msg, nil
}
