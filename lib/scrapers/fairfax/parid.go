package fairfax

import (
	"fmt"
	"strings"
)

// NormalizeParcel produces the candidate map number forms to search with, in
// the order they should be tried. A bare 10-digit number gets the portal's
// canonical 4-2-4 grouping, followed by the double-space variant the portal
// renders inside its own result cells. Anything else passes through as the
// only candidate.
func NormalizeParcel(raw string) []string {
	cleaned := strings.TrimSpace(raw)
	if len(cleaned) != 10 || !isDigits(cleaned) {
		return []string{raw}
	}
	return []string{
		fmt.Sprintf("%s %s %s", cleaned[0:4], cleaned[4:6], cleaned[6:10]),
		fmt.Sprintf("%s %s  %s", cleaned[0:4], cleaned[4:6], cleaned[6:10]),
	}
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
