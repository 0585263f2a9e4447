// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/iwvelando/payout-quote/pkg/constants"
)

// ValidateAddress checks that addr is a single bare or named mail address.
func ValidateAddress(field, addr string) error {
	if strings.TrimSpace(addr) == "" {
		return fmt.Errorf("%s is empty", field)
	}
	if _, err := mail.ParseAddress(addr); err != nil {
		return fmt.Errorf("%s %q is not a valid address: %w", field, addr, err)
	}
	return nil
}

// ValidateAddressList returns one warning per invalid address in addrs.
func ValidateAddressList(field string, addrs []string) []string {
	var warnings []string
	for i, addr := range addrs {
		if err := ValidateAddress(fmt.Sprintf("%s[%d]", field, i), addr); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	return warnings
}

// ConfigValidator checks a loaded configuration for settings that will make
// the quote form or lead dispatch misbehave.
type ConfigValidator struct {
	Quote  QuoteConfig
	Mail   MailConfig
	Postal PostalConfig
}

type QuoteConfig struct {
	MinOwnerAge int
	PayoutStep  int64
}

type MailConfig struct {
	Host    string
	Port    int
	From    string
	To      []string
	Cc      []string
	Timeout time.Duration
}

type PostalConfig struct {
	File string
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	if cv.Quote.MinOwnerAge < constants.FormOnlyMinOwnerAge {
		warnings = append(warnings, fmt.Sprintf("quote.minOwnerAge %d is below %d - quotes will be offered to minors",
			cv.Quote.MinOwnerAge, constants.FormOnlyMinOwnerAge))
	}
	if cv.Quote.PayoutStep < 0 {
		warnings = append(warnings, fmt.Sprintf("quote.payoutStep %d is negative - step check disabled", cv.Quote.PayoutStep))
	} else if cv.Quote.PayoutStep == 0 {
		warnings = append(warnings, "quote.payoutStep is 0 - any monthly payout is accepted")
	}

	if cv.Mail.Host == "" {
		warnings = append(warnings, "mail.host is not set - leads cannot be dispatched")
	}
	if cv.Mail.Port <= 0 || cv.Mail.Port > 65535 {
		warnings = append(warnings, fmt.Sprintf("mail.port %d is out of range", cv.Mail.Port))
	}
	if err := ValidateAddress("mail.from", cv.Mail.From); err != nil {
		warnings = append(warnings, err.Error())
	}
	if len(cv.Mail.To) == 0 {
		warnings = append(warnings, "mail.to has no recipients - leads cannot be dispatched")
	}
	warnings = append(warnings, ValidateAddressList("mail.to", cv.Mail.To)...)
	warnings = append(warnings, ValidateAddressList("mail.cc", cv.Mail.Cc)...)
	if cv.Mail.Timeout <= 0 {
		warnings = append(warnings, "mail.timeout is not positive - dispatch has no deadline")
	}

	if cv.Postal.File == "" {
		warnings = append(warnings, "postal.file is not set - city names will be empty")
	}

	return warnings
}
