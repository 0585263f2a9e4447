// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/iwvelando/payout-quote/pkg/constants"
)

// OutputFormats lists the formats a quote can be printed in. The schedule
// workbook is served over HTTP only and is not one of them.
var OutputFormats = []string{constants.OutputFormatPretty, constants.OutputFormatCSV}

// ValidateOutputFormat rejects formats the quote printer does not support.
func ValidateOutputFormat(format string) error {
	if slices.Contains(OutputFormats, format) {
		return nil
	}
	return fmt.Errorf("quotes cannot be printed as %q, use one of: %s", format, strings.Join(OutputFormats, ", "))
}
