package lead_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/payout-quote/internal/lead"
	"github.com/iwvelando/payout-quote/internal/quote"
	"github.com/iwvelando/payout-quote/pkg/testutil"
	"go.uber.org/zap"
)

func sampleSubmission(t *testing.T) lead.Submission {
	t.Helper()
	in := testutil.SampleInput()
	result, err := quote.Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	contact, err := lead.Validate(testutil.SampleDraft())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return lead.Submission{Input: in, Result: result, City: "Aarhus C", Contact: contact}
}

func newDispatcher(t *testing.T, mailer lead.Mailer, attach lead.AttachmentFunc, timeout time.Duration) *lead.Dispatcher {
	t.Helper()
	d, err := lead.NewDispatcher(zap.NewNop(), lead.DispatcherConfig{
		From:    "calculator@example.dk",
		To:      []string{"backoffice@example.dk"},
		Cc:      []string{"archive@example.dk"},
		Timeout: timeout,
	}, mailer, attach)
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}
	return d
}

func TestNewDispatcherRequiresIdentity(t *testing.T) {
	mailer := &testutil.RecordingMailer{}
	tests := []struct {
		name   string
		cfg    lead.DispatcherConfig
		mailer lead.Mailer
	}{
		{"No mailer", lead.DispatcherConfig{From: "a@example.dk", To: []string{"b@example.dk"}}, nil},
		{"No sender", lead.DispatcherConfig{To: []string{"b@example.dk"}}, mailer},
		{"No recipients", lead.DispatcherConfig{From: "a@example.dk"}, mailer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := lead.NewDispatcher(nil, tt.cfg, tt.mailer, nil); err == nil {
				t.Error("NewDispatcher() expected error but got none")
			}
		})
	}
}

func TestComposeEmbedsEverything(t *testing.T) {
	d := newDispatcher(t, &testutil.RecordingMailer{}, nil, 0)
	sub := sampleSubmission(t)

	submitted := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	msg, err := d.Compose(sub, submitted)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	if msg.Subject != "New lead: Karen Jensen" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if msg.From != "calculator@example.dk" {
		t.Errorf("From = %q", msg.From)
	}
	if len(msg.To) != 1 || len(msg.Cc) != 1 {
		t.Errorf("To = %v, Cc = %v", msg.To, msg.Cc)
	}

	for _, want := range []string{
		"2026-03-14 09:30:00",
		"Karen Jensen",
		"Strandvejen 1, 8000 Aarhus C",
		"12 34 56 78",
		"karen@example.dk",
		"Please call in the morning",
		"5 år",
		"Aarhus C",
		"Owner age",
		"Amortizing loan</td><td>Yes",
		"Eligibility: High",
		"<td>Q1</td>",
		"<td>Q20</td>",
	} {
		if !strings.Contains(msg.HTMLBody, want) {
			t.Errorf("body does not contain %q", want)
		}
	}
	if strings.Contains(msg.HTMLBody, "<td>Q21</td>") {
		t.Error("body lists more quarters than the schedule")
	}
}

func TestComposeOmitsEmptyComment(t *testing.T) {
	d := newDispatcher(t, &testutil.RecordingMailer{}, nil, 0)
	sub := sampleSubmission(t)
	draft := testutil.SampleDraft()
	draft.Comment = ""
	contact, err := lead.Validate(draft)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	sub.Contact = contact

	msg, err := d.Compose(sub, time.Now())
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if strings.Contains(msg.HTMLBody, "Comment") {
		t.Error("body contains a comment row for an empty comment")
	}
}

func TestComposeEscapesContactFields(t *testing.T) {
	d := newDispatcher(t, &testutil.RecordingMailer{}, nil, 0)
	sub := sampleSubmission(t)
	draft := testutil.SampleDraft()
	draft.Comment = "<script>alert(1)</script>"
	contact, _ := lead.Validate(draft)
	sub.Contact = contact

	msg, err := d.Compose(sub, time.Now())
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if strings.Contains(msg.HTMLBody, "<script>") {
		t.Error("comment was not escaped")
	}
}

func TestComposeAndSendDelivers(t *testing.T) {
	mailer := &testutil.RecordingMailer{}
	attach := func(lead.Submission) (lead.Attachment, error) {
		return lead.Attachment{Name: "schedule.xlsx", ContentType: "application/octet-stream", Data: []byte("x")}, nil
	}
	d := newDispatcher(t, mailer, attach, time.Second)

	conf, err := d.ComposeAndSend(context.Background(), sampleSubmission(t))
	if err != nil {
		t.Fatalf("ComposeAndSend() error = %v", err)
	}
	if mailer.SentCount() != 1 {
		t.Fatalf("SentCount = %d, expected 1", mailer.SentCount())
	}
	sent, _ := mailer.Last()
	if len(sent.Attachments) != 1 || sent.Attachments[0].Name != "schedule.xlsx" {
		t.Errorf("Attachments = %+v", sent.Attachments)
	}
	if conf.Subject != sent.Subject || len(conf.Recipients) != 2 || conf.SentAt.IsZero() {
		t.Errorf("Confirmation = %+v", conf)
	}
}

func TestComposeAndSendTransportFailure(t *testing.T) {
	mailer := &testutil.RecordingMailer{Err: errors.New("535 authentication failed"), Failures: 1}
	d := newDispatcher(t, mailer, nil, time.Second)
	sub := sampleSubmission(t)

	_, err := d.ComposeAndSend(context.Background(), sub)
	var derr *lead.DispatchError
	if !errors.As(err, &derr) {
		t.Fatalf("ComposeAndSend() error = %v, expected *DispatchError", err)
	}
	if !strings.Contains(derr.Cause, "535 authentication failed") {
		t.Errorf("Cause = %q", derr.Cause)
	}

	if _, err := d.ComposeAndSend(context.Background(), sub); err != nil {
		t.Fatalf("retry ComposeAndSend() error = %v", err)
	}
	if mailer.Attempts != 2 || mailer.SentCount() != 1 {
		t.Errorf("Attempts = %d, SentCount = %d", mailer.Attempts, mailer.SentCount())
	}
}

func TestComposeAndSendTimeout(t *testing.T) {
	d := newDispatcher(t, testutil.BlockingMailer{}, nil, 20*time.Millisecond)

	_, err := d.ComposeAndSend(context.Background(), sampleSubmission(t))
	var derr *lead.DispatchError
	if !errors.As(err, &derr) {
		t.Fatalf("ComposeAndSend() error = %v, expected *DispatchError", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected wrapped deadline error, got %v", err)
	}
	if !strings.Contains(derr.Cause, "did not respond") {
		t.Errorf("Cause = %q", derr.Cause)
	}
}

func TestComposeAndSendAttachmentFailure(t *testing.T) {
	mailer := &testutil.RecordingMailer{}
	attach := func(lead.Submission) (lead.Attachment, error) {
		return lead.Attachment{}, errors.New("disk full")
	}
	d := newDispatcher(t, mailer, attach, time.Second)

	_, err := d.ComposeAndSend(context.Background(), sampleSubmission(t))
	var derr *lead.DispatchError
	if !errors.As(err, &derr) {
		t.Fatalf("ComposeAndSend() error = %v, expected *DispatchError", err)
	}
	if mailer.Attempts != 0 {
		t.Errorf("mailer called despite composition failure")
	}
}
