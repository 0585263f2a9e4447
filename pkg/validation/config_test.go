package validation

import (
	"strings"
	"testing"
	"time"
)

func validConfig() ConfigValidator {
	return ConfigValidator{
		Quote: QuoteConfig{MinOwnerAge: 60, PayoutStep: 500},
		Mail: MailConfig{
			Host:    "smtp.example.dk",
			Port:    587,
			From:    "Payout calculator <calculator@example.dk>",
			To:      []string{"backoffice@example.dk"},
			Cc:      []string{"advisor@example.dk"},
			Timeout: 15 * time.Second,
		},
		Postal: PostalConfig{File: "postal.yaml"},
	}
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name      string
		addr      string
		expectErr bool
	}{
		{"Bare address", "backoffice@example.dk", false},
		{"Named address", "Back Office <backoffice@example.dk>", false},
		{"Empty", "", true},
		{"Whitespace", "   ", true},
		{"Missing domain", "backoffice@", true},
		{"No at sign", "backoffice", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress("mail.to", tt.addr)
			if tt.expectErr && err == nil {
				t.Errorf("ValidateAddress(%q) expected error but got none", tt.addr)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("ValidateAddress(%q) unexpected error = %v", tt.addr, err)
			}
		})
	}
}

func TestValidateAddressListIndexesFields(t *testing.T) {
	warnings := ValidateAddressList("mail.cc", []string{"ok@example.dk", "broken", "also@example.dk", ""})
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
	if !strings.HasPrefix(warnings[0], "mail.cc[1]") || !strings.HasPrefix(warnings[1], "mail.cc[3]") {
		t.Errorf("warnings do not name the offending entries: %v", warnings)
	}
}

func TestValidateAll(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigValidator)
		expectCount int
		expectText  string
	}{
		{"Valid configuration", func(*ConfigValidator) {}, 0, ""},
		{"Minor owners", func(c *ConfigValidator) { c.Quote.MinOwnerAge = 16 }, 1, "quote.minOwnerAge"},
		{"No payout step", func(c *ConfigValidator) { c.Quote.PayoutStep = 0 }, 1, "quote.payoutStep"},
		{"Negative payout step", func(c *ConfigValidator) { c.Quote.PayoutStep = -500 }, 1, "negative"},
		{"No mail host", func(c *ConfigValidator) { c.Mail.Host = "" }, 1, "mail.host"},
		{"Port out of range", func(c *ConfigValidator) { c.Mail.Port = 70000 }, 1, "mail.port"},
		{"Bad sender", func(c *ConfigValidator) { c.Mail.From = "calculator" }, 1, "mail.from"},
		{"No recipients", func(c *ConfigValidator) { c.Mail.To = nil }, 1, "mail.to"},
		{"Bad cc", func(c *ConfigValidator) { c.Mail.Cc = []string{"x@"} }, 1, "mail.cc[0]"},
		{"No timeout", func(c *ConfigValidator) { c.Mail.Timeout = 0 }, 1, "mail.timeout"},
		{"No postal file", func(c *ConfigValidator) { c.Postal.File = "" }, 1, "postal.file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := validConfig()
			tt.mutate(&cv)
			warnings := cv.ValidateAll()
			if len(warnings) != tt.expectCount {
				t.Fatalf("expected %d warnings, got %d: %v", tt.expectCount, len(warnings), warnings)
			}
			if tt.expectText != "" && !strings.Contains(warnings[0], tt.expectText) {
				t.Errorf("warning %q does not mention %q", warnings[0], tt.expectText)
			}
		})
	}
}
