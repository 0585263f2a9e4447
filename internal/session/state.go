// Package session holds the per-user workflow state and the in-memory store
// that keeps one state per browser session.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/payout-quote/internal/lead"
	"github.com/iwvelando/payout-quote/internal/quote"
)

// Phase is the workflow step a session is in.
type Phase int

const (
	Locked Phase = iota
	Unlocked
	Calculated
	LeadSubmitted
)

func (p Phase) String() string {
	switch p {
	case Locked:
		return "locked"
	case Unlocked:
		return "unlocked"
	case Calculated:
		return "calculated"
	case LeadSubmitted:
		return "lead_submitted"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText renders the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// DispatchStatus records the delivery attempts for the stored lead.
type DispatchStatus struct {
	Attempts    int       `json:"attempts"`
	Delivered   bool      `json:"delivered"`
	LastError   string    `json:"lastError,omitempty"`
	LastAttempt time.Time `json:"lastAttempt,omitempty"`
}

// State is the workflow data of one session.
type State struct {
	ID        string
	CreatedAt time.Time
	LastSeen  time.Time

	Phase       Phase
	QuoteInput  *quote.Input
	QuoteResult *quote.Result
	City        string
	Lead        *lead.Contact
	Dispatch    DispatchStatus
}

// New returns a locked state.
func New(id string, now time.Time) *State {
	return &State{ID: id, CreatedAt: now, LastSeen: now}
}

// Reset returns the state to its initial locked form. Identity and
// timestamps are kept.
func (s *State) Reset() {
	*s = State{ID: s.ID, CreatedAt: s.CreatedAt, LastSeen: s.LastSeen}
}

// SetQuote stores a computed quote and moves to Calculated. Any captured
// lead is discarded.
func (s *State) SetQuote(in quote.Input, result quote.Result, city string) {
	s.QuoteInput = &in
	s.QuoteResult = &result
	s.City = city
	s.Lead = nil
	s.Dispatch = DispatchStatus{}
	s.Phase = Calculated
}

// SetLead stores a validated contact and moves to LeadSubmitted. Delivery
// status starts over.
func (s *State) SetLead(c lead.Contact) {
	s.Lead = &c
	s.Dispatch = DispatchStatus{}
	s.Phase = LeadSubmitted
}

// Submission returns the data a lead notification is built from.
func (s *State) Submission() (lead.Submission, bool) {
	if s.QuoteInput == nil || s.QuoteResult == nil || s.Lead == nil {
		return lead.Submission{}, false
	}
	return lead.Submission{
		Input:   *s.QuoteInput,
		Result:  *s.QuoteResult,
		City:    s.City,
		Contact: *s.Lead,
	}, true
}

// RecordDispatch updates the delivery status after an attempt.
func (s *State) RecordDispatch(at time.Time, err error) {
	s.Dispatch.Attempts++
	s.Dispatch.LastAttempt = at
	if err != nil {
		s.Dispatch.LastError = err.Error()
		return
	}
	s.Dispatch.Delivered = true
	s.Dispatch.LastError = ""
}

// Check verifies that the stored data matches the phase.
func (s *State) Check() error {
	hasQuote := s.QuoteInput != nil && s.QuoteResult != nil
	switch s.Phase {
	case Locked, Unlocked:
		if s.QuoteResult != nil {
			return fmt.Errorf("%s session holds a quote result", s.Phase)
		}
		if s.Lead != nil {
			return fmt.Errorf("%s session holds a lead", s.Phase)
		}
	case Calculated:
		if !hasQuote {
			return errors.New("calculated session has no quote")
		}
		if s.Lead != nil {
			return errors.New("calculated session holds a lead")
		}
	case LeadSubmitted:
		if !hasQuote {
			return errors.New("lead_submitted session has no quote")
		}
		if s.Lead == nil {
			return errors.New("lead_submitted session has no lead")
		}
	default:
		return fmt.Errorf("unknown %s", s.Phase)
	}
	return nil
}
