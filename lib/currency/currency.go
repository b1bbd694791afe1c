// Package currency converts the loosely formatted money strings county
// portals render (e.g. "$.00", "-$59,026.66") to and from exact decimals.
package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatError is returned when text survives cleaning but still isn't a
// decimal literal. It carries the original text so a bad page can be
// diagnosed without re-fetching it.
type FormatError struct {
	Text string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecognized currency value %q", e.Text)
}

// Parse converts a portal currency string to a decimal.
//
// The portals omit leading zeros on sub-dollar amounts (".50", "-.50")
// and render zero as "$.00" or a bare ".", all of which are handled here.
func Parse(text string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(text, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	switch cleaned {
	case "", ".", ".00":
		return decimal.Zero, nil
	}
	if strings.HasPrefix(cleaned, "-.") {
		cleaned = "-0" + cleaned[1:]
	} else if strings.HasPrefix(cleaned, ".") {
		cleaned = "0" + cleaned
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, &FormatError{Text: text}
	}
	return value, nil
}

// Format renders a decimal the way the portals do: sign, then "$", then the
// magnitude with thousands separators and exactly two fraction digits.
// Parse(Format(x)) == x for any value with at most two fraction digits.
func Format(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}

	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	grouped := strings.Builder{}
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	return fmt.Sprintf("%s$%s.%s", sign, grouped.String(), frac)
}
