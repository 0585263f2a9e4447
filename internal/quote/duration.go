package quote

import (
	"fmt"
	"strings"

	"github.com/iwvelando/payout-quote/pkg/constants"
)

var durationLabels = []struct {
	label    string
	quarters int
}{
	{"5 år", constants.ShortDurationQuarters},
	{"10 år", constants.LongDurationQuarters},
}

// ValidDuration reports whether a schedule length is one of the offered
// payout horizons.
func ValidDuration(quarters int) bool {
	for _, d := range durationLabels {
		if d.quarters == quarters {
			return true
		}
	}
	return false
}

// DurationLabels returns the selectable horizons in display order.
func DurationLabels() []string {
	labels := make([]string, 0, len(durationLabels))
	for _, d := range durationLabels {
		labels = append(labels, d.label)
	}
	return labels
}

// ParseDurationLabel maps a horizon label such as "5 år" to quarters.
// "5", "5 år" and "5 ar" are accepted.
func ParseDurationLabel(label string) (int, error) {
	normalized := strings.ToLower(strings.Join(strings.Fields(label), " "))
	for _, d := range durationLabels {
		years := strings.TrimSuffix(d.label, " år")
		if normalized == d.label || normalized == years || normalized == years+" ar" {
			return d.quarters, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown duration %q", ErrInvalidInput, label)
}

// DurationLabel returns the label for a schedule length, or "<n> quarters"
// for lengths that are not offered.
func DurationLabel(quarters int) string {
	for _, d := range durationLabels {
		if d.quarters == quarters {
			return d.label
		}
	}
	return fmt.Sprintf("%d quarters", quarters)
}
