// Package testutil provides common utility functions for testing.
package testutil

import (
	"context"
	"sync"

	"github.com/iwvelando/payout-quote/internal/lead"
	"github.com/iwvelando/payout-quote/internal/quote"
)

// RecordingMailer keeps every message it is asked to send. While Failures
// is positive each send fails with Err and decrements it.
type RecordingMailer struct {
	mu       sync.Mutex
	Err      error
	Failures int
	Attempts int
	Sent     []lead.Message
}

// Send implements lead.Mailer.
func (m *RecordingMailer) Send(ctx context.Context, msg lead.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Attempts++
	if m.Failures > 0 {
		m.Failures--
		return m.Err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// SentCount returns the number of delivered messages.
func (m *RecordingMailer) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// Last returns the most recently delivered message.
func (m *RecordingMailer) Last() (lead.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return lead.Message{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}

// BlockingMailer waits for the context to end and returns its error.
type BlockingMailer struct{}

// Send implements lead.Mailer.
func (BlockingMailer) Send(ctx context.Context, _ lead.Message) error {
	<-ctx.Done()
	return ctx.Err()
}

// SampleInput returns the worked example quote: 5,000 a month with a
// 100,000 lump sum over 5 years on an amortizing loan.
func SampleInput() quote.Input {
	in := quote.DefaultInput()
	in.MonthlyPayout = 5000
	in.LumpSumPayout = 100000
	in.DurationQuarters = 20
	in.Amortizing = true
	in.OwnerAge = 67
	in.PostalCode = "8000"
	return in
}

// SampleDraft returns a complete lead draft.
func SampleDraft() lead.Draft {
	age := 67
	return lead.Draft{
		Name:    "Karen Jensen",
		Address: "Strandvejen 1, 8000 Aarhus C",
		Phone:   "+45 12 34 56 78",
		Email:   "karen@example.dk",
		Age:     &age,
		Comment: "Please call in the morning",
	}
}
