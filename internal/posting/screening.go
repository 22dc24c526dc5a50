package posting

import "strings"

// parseScreening decides whether a posting requires security screening.
//
// Screening text is free-form ("No, not required", "Reliability status",
// "Other"). Only an explicit "no" or "other" clears the requirement; any
// unrecognized value defaults to required, which is the conservative reading.
func parseScreening(text string) bool {
	lowered := strings.ToLower(text)
	if strings.Contains(lowered, "no") || strings.Contains(lowered, "other") {
		return false
	}
	return true
}
