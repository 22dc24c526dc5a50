package board

import "strings"

// Link texts on the shortlist that are controls rather than postings.
var nonPostingLabels = []string{"Apply", "New Search"}

// FormatUsername prepends the Windows domain the federated login expects.
// Already-prefixed usernames pass through unchanged.
func FormatUsername(username string) string {
	if strings.HasPrefix(username, usernameDomain) {
		return username
	}
	return usernameDomain + username
}

// IsPostingLink reports whether a shortlist button link points at a posting
// rather than a board control.
func IsPostingLink(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, label := range nonPostingLabels {
		if strings.EqualFold(text, label) {
			return false
		}
	}
	return true
}

func isShortlistCell(text string) bool {
	return strings.Contains(strings.TrimSpace(text), shortlistLabel)
}
