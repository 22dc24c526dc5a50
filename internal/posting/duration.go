package posting

import (
	"strconv"
	"strings"
)

// parseDuration extracts a work-term length in months from free-form text
// like "4 months" or "8 or 12 months".
//
// This is an explicit best-effort rule, not a grammar:
//   - if the character "4" appears anywhere, the duration is 4 (four-month
//     terms are the common case and take priority over any other number),
//   - otherwise the first whitespace-separated token parseable as an integer
//     wins,
//   - otherwise the duration is unknown and reported as 0.
func parseDuration(text string) int {
	if strings.Contains(text, "4") {
		return 4
	}

	for _, token := range strings.Fields(text) {
		// Durations are month counts; a negative token is garbage, not a term.
		if n, err := strconv.Atoi(token); err == nil && n >= 0 {
			return n
		}
	}

	return 0
}
