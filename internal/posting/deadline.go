package posting

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	deadlineSelector = "#npPostingApplicationInfoDeadlineDate"

	// deadlineLayout is the only accepted deadline shape, e.g.
	// "March 3, 2024 11:59 PM". Deadlines are never retried or defaulted.
	deadlineLayout = "January 2, 2006 3:04 PM"
)

// parseDeadline locates the deadline element in the application-details table
// and parses it into a time value.
//
// The portal wraps the text across lines, so embedded line breaks and runs of
// whitespace are collapsed to single spaces before parsing. Any text that does
// not match the layout exactly is a format error.
func parseDeadline(application *goquery.Selection) (time.Time, error) {
	sel := application.Find(deadlineSelector)
	if sel.Length() == 0 {
		return time.Time{}, structureError("deadline element not found", nil)
	}

	raw := strings.Join(strings.Fields(sel.Text()), " ")

	deadline, err := time.Parse(deadlineLayout, raw)
	if err != nil {
		return time.Time{}, formatError(fmt.Sprintf("deadline %q does not match expected pattern", raw), err)
	}
	return deadline, nil
}
