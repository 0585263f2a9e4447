package quote

import (
	"fmt"

	"github.com/iwvelando/payout-quote/pkg/constants"
)

// Rules are the form-level constraints checked before a quote is computed.
type Rules struct {
	MinOwnerAge int   `mapstructure:"minOwnerAge" yaml:"minOwnerAge"`
	PayoutStep  int64 `mapstructure:"payoutStep" yaml:"payoutStep"`
}

// DefaultRules returns the rules of the primary quote form.
func DefaultRules() Rules {
	return Rules{
		MinOwnerAge: constants.DefaultMinOwnerAge,
		PayoutStep:  constants.DefaultPayoutStep,
	}
}

// Check validates the owner age and the monthly payout granularity. A zero
// step disables the granularity check.
func (r Rules) Check(in Input) error {
	if in.OwnerAge < r.MinOwnerAge {
		return fmt.Errorf("%w: owner age must be at least %d, got %d", ErrInvalidInput, r.MinOwnerAge, in.OwnerAge)
	}
	if r.PayoutStep > 0 && in.MonthlyPayout%r.PayoutStep != 0 {
		return fmt.Errorf("%w: monthly payout must be a multiple of %d, got %d", ErrInvalidInput, r.PayoutStep, in.MonthlyPayout)
	}
	return nil
}
