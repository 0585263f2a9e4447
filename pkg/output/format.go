// Package output provides utilities for formatting and displaying quote results.
package output

import (
	"fmt"
	"strings"

	"github.com/iwvelando/payout-quote/internal/quote"
	"github.com/iwvelando/payout-quote/pkg/format"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(in quote.Input, result quote.Result, city string) {
	fmt.Print(PrettyString(in, result, city))
}

// PrettyString renders the same table as PrettyFormat.
func PrettyString(in quote.Input, result quote.Result, city string) string {
	var b strings.Builder
	location := in.PostalCode
	if city != "" {
		location = fmt.Sprintf("%s %s", in.PostalCode, city)
	}

	fmt.Fprintf(&b, "--- Quote for %s over %s ---\n", format.Kroner(in.MonthlyPayout)+" a month", quote.DurationLabel(in.DurationQuarters))
	fmt.Fprintf(&b, "Lump sum        | %s\n", format.Kroner(in.LumpSumPayout))
	fmt.Fprintf(&b, "Property value  | %s\n", format.Kroner(in.PropertyValue))
	fmt.Fprintf(&b, "Equity value    | %s\n", format.Kroner(in.EquityValue))
	fmt.Fprintf(&b, "Amortizing loan | %s\n", format.YesNo(in.Amortizing))
	fmt.Fprintf(&b, "Owner age       | %d\n", in.OwnerAge)
	if location != "" {
		fmt.Fprintf(&b, "Location        | %s\n", location)
	}
	b.WriteString("\n")
	b.WriteString("Quarter | Amount\n")
	b.WriteString("_______ | ______\n")
	for _, entry := range result.Schedule {
		fmt.Fprintf(&b, "%-7s | %s\n", entry.Quarter, format.Kroner(entry.Amount))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total payout: %s\n", format.Kroner(result.TotalPayout))
	fmt.Fprintf(&b, "Eligibility: %s\n", result.Verdict)
	return b.String()
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(result quote.Result) {
	fmt.Print(CsvString(result))
}

// CsvString returns the schedule as CSV with a trailing total row.
func CsvString(result quote.Result) string {
	var b strings.Builder
	b.WriteString(`"quarter","amount"` + "\n")
	for _, entry := range result.Schedule {
		fmt.Fprintf(&b, `"%s","%d"`+"\n", entry.Quarter, entry.Amount)
	}
	fmt.Fprintf(&b, `"total","%d"`+"\n", result.TotalPayout)
	fmt.Fprintf(&b, `"verdict","%s"`+"\n", result.Verdict)
	return b.String()
}
