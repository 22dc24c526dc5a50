package posting

import (
	"strconv"
	"strings"
)

// monthlyRateThreshold separates hourly from monthly salary figures when a
// posting states two numbers. Rates above it are assumed to be monthly.
//
// KNOWN HEURISTIC RISK: a genuinely high hourly rate (say $45/hr) would be
// misclassified as monthly and divided down. The portal's postings have not
// exhibited that shape, so the rule is kept rather than "fixed"; see the
// salary tests, which pin both shapes.
const monthlyRateThreshold = 40.0

// parseSalary extracts an (hourly rate, hours per week) pair from free-form
// salary text, e.g. "$22.50 20" or "$3600 20 hrs/week".
//
// The currency symbol is stripped, the text is tokenized on whitespace, and
// every token parseable as a number is collected; everything else is
// discarded. Exactly two non-zero numbers are treated as (rate, hours),
// except that a first number above monthlyRateThreshold is read as a monthly
// salary and converted to hourly by dividing by 4 weeks times the hours.
//
// Any other token count means the posting carries no usable salary data and
// both results are nil. Rate and hours are always both set or both nil.
func parseSalary(text string) (rate, hours *float64) {
	cleaned := strings.ReplaceAll(text, "$", "")

	var numbers []float64
	for _, token := range strings.Fields(cleaned) {
		n, err := strconv.ParseFloat(token, 64)
		if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}

	if len(numbers) != 2 || numbers[0] == 0 || numbers[1] == 0 {
		return nil, nil
	}

	if numbers[0] > monthlyRateThreshold {
		// Monthly salary stated alongside weekly hours.
		numbers[0] /= 4 * numbers[1]
	}

	return &numbers[0], &numbers[1]
}
