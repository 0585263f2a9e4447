// Package quote defines the payout quote inputs and results and computes the
// payout schedule and eligibility verdict for a quote.
package quote

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/payout-quote/pkg/constants"
)

// ErrInvalidInput is returned for quote parameters that cannot be computed.
var ErrInvalidInput = errors.New("invalid quote input")

// Verdict is the coarse eligibility classification of a quote.
type Verdict string

const (
	VerdictHigh Verdict = "High"
	VerdictLow  Verdict = "Low"
)

// Input holds the parameters of one quote. Amounts are whole DKK.
type Input struct {
	MonthlyPayout    int64  `json:"monthlyPayout"`
	LumpSumPayout    int64  `json:"lumpSumPayout"`
	DurationQuarters int    `json:"durationQuarters"`
	PropertyValue    int64  `json:"propertyValue"`
	EquityValue      int64  `json:"equityValue"`
	Amortizing       bool   `json:"amortizing"`
	OwnerAge         int    `json:"ownerAge"`
	PostalCode       string `json:"postalCode,omitempty"`
}

// ScheduleEntry is the payout of one quarter.
type ScheduleEntry struct {
	Quarter string `json:"quarter"`
	Amount  int64  `json:"amount"`
}

// Result holds a computed payout schedule and its verdict.
type Result struct {
	Schedule    []ScheduleEntry `json:"schedule"`
	TotalPayout int64           `json:"totalPayout"`
	Verdict     Verdict         `json:"verdict"`
}

// DefaultInput returns the values the quote form starts from.
func DefaultInput() Input {
	return Input{
		DurationQuarters: constants.ShortDurationQuarters,
		PropertyValue:    constants.DefaultPropertyValue,
		EquityValue:      constants.DefaultEquityValue,
		OwnerAge:         constants.DefaultMinOwnerAge,
	}
}

// Compute builds the quarterly payout schedule for an input. Every quarter
// pays three monthly payouts and the lump sum is added to the first quarter.
// The verdict is High only when the total stays below the eligibility
// threshold and the loan is amortizing.
func Compute(in Input) (Result, error) {
	if err := checkInput(in); err != nil {
		return Result{}, err
	}

	recurring := in.MonthlyPayout * constants.MonthsPerQuarter
	schedule := make([]ScheduleEntry, in.DurationQuarters)
	var total int64
	for i := range schedule {
		amount := recurring
		if i == 0 {
			amount += in.LumpSumPayout
		}
		schedule[i] = ScheduleEntry{Quarter: fmt.Sprintf("Q%d", i+1), Amount: amount}
		total += amount
	}

	return Result{
		Schedule:    schedule,
		TotalPayout: total,
		Verdict:     Classify(total, in.Amortizing),
	}, nil
}

// Classify applies the two-factor eligibility rule.
func Classify(totalPayout int64, amortizing bool) Verdict {
	if totalPayout < constants.EligibilityThreshold && amortizing {
		return VerdictHigh
	}
	return VerdictLow
}

func checkInput(in Input) error {
	amounts := []struct {
		field string
		value int64
	}{
		{"monthly payout", in.MonthlyPayout},
		{"lump sum payout", in.LumpSumPayout},
		{"property value", in.PropertyValue},
		{"equity value", in.EquityValue},
	}
	for _, a := range amounts {
		if a.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidInput, a.field, a.value)
		}
	}
	if !ValidDuration(in.DurationQuarters) {
		return fmt.Errorf("%w: duration of %d quarters is not offered", ErrInvalidInput, in.DurationQuarters)
	}
	// the schedule total must fit in an int64
	months := int64(constants.MonthsPerQuarter) * int64(in.DurationQuarters)
	if in.MonthlyPayout > (math.MaxInt64-in.LumpSumPayout)/months {
		return fmt.Errorf("%w: monthly payout of %d with lump sum %d exceeds the payable total", ErrInvalidInput, in.MonthlyPayout, in.LumpSumPayout)
	}
	return nil
}
