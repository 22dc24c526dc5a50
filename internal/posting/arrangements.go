package posting

import (
	"fmt"
	"strings"
)

// wfhKeywords are matched as substrings against lower-cased description and
// arrangement text. Matching is deliberately loose: "hybrid" also matches
// inside "hybridized".
var wfhKeywords = []string{
	"work from home",
	"virtual work",
	"remote work",
	"hybrid work",
	"hybrid",
}

// composeArrangements renders the working-arrangement sentence, appending the
// working-from-home note when the posting declares one.
func composeArrangements(fields presentFields) (string, error) {
	arrangements, err := fields.require(FieldArrangements)
	if err != nil {
		return "", err
	}

	if note, ok := fields.lookup(FieldWFHNote); ok {
		return fmt.Sprintf("%s. %s.", arrangements, note), nil
	}
	return fmt.Sprintf("%s.", arrangements), nil
}

// inferWFH decides whether remote work is possible, cross-checking signals
// beyond the explicit working-from-home field:
//
//   - the WFH field itself being present on the posting,
//   - "virtual" in the location text,
//   - any WFH keyword in the description or arrangement text.
//
// A positive signal is never contradicted by a negative one elsewhere; absent
// all signals the answer is false.
func inferWFH(fields presentFields, description, location, arrangements string) bool {
	if fields.has(FieldWFHNote) {
		return true
	}
	if strings.Contains(strings.ToLower(location), "virtual") {
		return true
	}

	description = strings.ToLower(description)
	arrangements = strings.ToLower(arrangements)

	for _, keyword := range wfhKeywords {
		if strings.Contains(description, keyword) || strings.Contains(arrangements, keyword) {
			return true
		}
	}

	return false
}
