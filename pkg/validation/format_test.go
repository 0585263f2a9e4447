package validation

import (
	"strings"
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		expectErr bool
	}{
		{"Valid pretty format", "pretty", false},
		{"Valid csv format", "csv", false},
		{"Invalid format", "json", true},
		{"Empty format", "", true},
		{"Case sensitive", "CSV", true},
		{"Leading/trailing spaces", " pretty ", true},
		{"Spreadsheet is not an output format", "xlsx", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)

			if tt.expectErr {
				if err == nil {
					t.Errorf("ValidateOutputFormat(%s) expected error but got none", tt.format)
				} else if !strings.Contains(err.Error(), "pretty, csv") {
					t.Errorf("error %q does not list the supported formats", err)
				} else if tt.format != "" && !strings.Contains(err.Error(), tt.format) {
					t.Errorf("error %q does not mention %q", err, tt.format)
				}
			} else if err != nil {
				t.Errorf("ValidateOutputFormat(%s) unexpected error = %v", tt.format, err)
			}
		})
	}
}
