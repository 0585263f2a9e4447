// Package workflow drives a session through the gate, quote and lead
// capture steps and tells the caller what to show next.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/payout-quote/internal/gate"
	"github.com/iwvelando/payout-quote/internal/lead"
	"github.com/iwvelando/payout-quote/internal/logging"
	"github.com/iwvelando/payout-quote/internal/quote"
	"github.com/iwvelando/payout-quote/internal/session"
	"go.uber.org/zap"
)

var (
	// ErrLocked is returned for operations that need a password first.
	ErrLocked = errors.New("session is locked")
	// ErrWrongPhase is returned for operations not available in the
	// session's current phase.
	ErrWrongPhase = errors.New("operation not available in this step")
)

// View names the screen the UI should render next.
type View string

const (
	ViewLogin            View = "login"
	ViewQuoteForm        View = "quote_form"
	ViewQuoteResult      View = "quote_result"
	ViewLeadConfirmation View = "lead_confirmation"
)

// Outcome is returned by every handler and describes the session after the
// operation.
type Outcome struct {
	Phase        session.Phase           `json:"phase"`
	View         View                    `json:"view"`
	Input        *quote.Input            `json:"input,omitempty"`
	Result       *quote.Result           `json:"result,omitempty"`
	City         string                  `json:"city,omitempty"`
	Dispatch     *session.DispatchStatus `json:"dispatch,omitempty"`
	Confirmation *lead.Confirmation      `json:"confirmation,omitempty"`
}

// Authenticator unlocks and resets sessions.
type Authenticator interface {
	Authenticate(s *session.State, submitted string) (gate.Result, error)
	Logout(s *session.State)
}

// Dispatcher delivers lead notifications.
type Dispatcher interface {
	ComposeAndSend(ctx context.Context, sub lead.Submission) (lead.Confirmation, error)
}

// CityLookup resolves postal codes.
type CityLookup interface {
	Lookup(code string) string
}

// Workflow composes the gate, quote engine, lead validator and dispatcher.
// It holds no session data itself; every handler works on the state it is
// given.
type Workflow struct {
	gate       Authenticator
	rules      quote.Rules
	cities     CityLookup
	dispatcher Dispatcher
	now        func() time.Time
	logger     *zap.Logger
}

// New creates a workflow. cities may be nil.
func New(logger *zap.Logger, gate Authenticator, rules quote.Rules, cities CityLookup, dispatcher Dispatcher) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{
		gate:       gate,
		rules:      rules,
		cities:     cities,
		dispatcher: dispatcher,
		now:        time.Now,
		logger:     logger,
	}
}

// Current describes the session without changing it.
func (w *Workflow) Current(s *session.State) Outcome {
	out := Outcome{
		Phase:  s.Phase,
		Input:  s.QuoteInput,
		Result: s.QuoteResult,
		City:   s.City,
	}
	switch s.Phase {
	case session.Locked:
		out.View = ViewLogin
	case session.Unlocked:
		out.View = ViewQuoteForm
	case session.Calculated:
		out.View = ViewQuoteResult
	case session.LeadSubmitted:
		status := s.Dispatch
		out.Dispatch = &status
		if status.Delivered {
			out.View = ViewLeadConfirmation
		} else {
			out.View = ViewQuoteResult
		}
	}
	return out
}

// HandleLogin checks the shared password.
func (w *Workflow) HandleLogin(s *session.State, secret string) (Outcome, error) {
	if _, err := w.gate.Authenticate(s, secret); err != nil {
		return w.Current(s), err
	}
	return w.Current(s), nil
}

// HandleLogout resets the session.
func (w *Workflow) HandleLogout(s *session.State) Outcome {
	w.gate.Logout(s)
	return w.Current(s)
}

// HandleCalculate computes a quote and stores it. Recalculating after a lead
// was submitted returns the session to Calculated and drops the lead.
func (w *Workflow) HandleCalculate(s *session.State, in quote.Input) (Outcome, error) {
	if s.Phase == session.Locked {
		return w.Current(s), ErrLocked
	}
	if err := w.rules.Check(in); err != nil {
		return w.Current(s), err
	}
	result, err := quote.Compute(in)
	if err != nil {
		return w.Current(s), err
	}

	discarded := s.Lead != nil
	city := ""
	if w.cities != nil && in.PostalCode != "" {
		city = w.cities.Lookup(in.PostalCode)
	}
	s.SetQuote(in, result, city)

	w.logger.Info("quote calculated",
		zap.String("op", "workflow.HandleCalculate"),
		logging.Session(s.ID),
		zap.Int("quarters", in.DurationQuarters),
		zap.Int64("total", result.TotalPayout),
		zap.String("verdict", string(result.Verdict)),
		zap.Bool("discardedLead", discarded),
	)
	return w.Current(s), nil
}

// HandleSubmitLead validates contact details, stores them and sends the
// notification. A failed delivery keeps the lead so it can be retried with
// HandleRetryDispatch.
func (w *Workflow) HandleSubmitLead(ctx context.Context, s *session.State, draft lead.Draft) (Outcome, error) {
	switch s.Phase {
	case session.Locked:
		return w.Current(s), ErrLocked
	case session.Unlocked:
		return w.Current(s), fmt.Errorf("%w: calculate a quote first", ErrWrongPhase)
	}

	contact, err := lead.Validate(draft)
	if err != nil {
		return w.Current(s), err
	}
	s.SetLead(contact)
	return w.dispatch(ctx, s, "workflow.HandleSubmitLead")
}

// HandleRetryDispatch re-sends the stored lead without validating it again.
func (w *Workflow) HandleRetryDispatch(ctx context.Context, s *session.State) (Outcome, error) {
	switch s.Phase {
	case session.Locked:
		return w.Current(s), ErrLocked
	case session.LeadSubmitted:
		return w.dispatch(ctx, s, "workflow.HandleRetryDispatch")
	default:
		return w.Current(s), fmt.Errorf("%w: no lead to send", ErrWrongPhase)
	}
}

func (w *Workflow) dispatch(ctx context.Context, s *session.State, op string) (Outcome, error) {
	sub, ok := s.Submission()
	if !ok {
		return w.Current(s), fmt.Errorf("%w: incomplete lead", ErrWrongPhase)
	}

	conf, err := w.dispatcher.ComposeAndSend(ctx, sub)
	s.RecordDispatch(w.now(), err)
	if err != nil {
		var derr *lead.DispatchError
		if !errors.As(err, &derr) {
			err = &lead.DispatchError{Cause: err.Error(), Err: err}
		}
		w.logger.Warn("lead dispatch failed",
			zap.String("op", op),
			logging.Session(s.ID),
			zap.Int("attempts", s.Dispatch.Attempts),
			zap.Error(err),
		)
		return w.Current(s), err
	}

	w.logger.Info("lead dispatched",
		zap.String("op", op),
		logging.Session(s.ID),
		zap.Int("attempts", s.Dispatch.Attempts),
	)
	out := w.Current(s)
	out.Confirmation = &conf
	return out, nil
}
