package posting

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// fixtureField is one label/value row of the posting-details table.
type fixtureField struct {
	label string
	value string
}

// defaultFields builds a complete posting-details table in portal order.
// Tests drop or tweak entries to simulate the portal's variable field sets.
func defaultFields() []fixtureField {
	return []fixtureField{
		{"Position Title:", "Software Developer"},
		{"Number of Positions:", "2"},
		{"Location of Work:", "Ottawa, ON"},
		{"Please indicate Working Arrangements:", "In-person at the office"},
		{"Duration:", "4 months"},
		{"Salary:", "$22.50 20"},
		{"Work Term Start:", "May 6, 2024"},
		{"Work Term End:", "August 30, 2024"},
		{"Job Description:", "Build internal tooling for the avionics team."},
		{"Security Screening:", "No, not required"},
	}
}

// withField replaces the value of an existing row.
func withField(fields []fixtureField, label, value string) []fixtureField {
	for i, f := range fields {
		if f.label == label {
			fields[i].value = value
			return fields
		}
	}
	panic("fixture has no row labeled " + label)
}

// withWFHNote inserts the optional "Working from Home" row in its portal
// position, right after the working-arrangements row. Row position matters:
// value cells pair positionally with the present catalog fields.
func withWFHNote(fields []fixtureField, value string) []fixtureField {
	out := make([]fixtureField, 0, len(fields)+1)
	for _, f := range fields {
		out = append(out, f)
		if strings.Contains(strings.ToLower(f.label), "working arrangements") {
			out = append(out, fixtureField{"Working from Home:", value})
		}
	}
	return out
}

func withoutField(fields []fixtureField, label string) []fixtureField {
	out := fields[:0]
	for _, f := range fields {
		if f.label != label {
			out = append(out, f)
		}
	}
	return out
}

func renderDetailsTable(fields []fixtureField) string {
	var b strings.Builder
	b.WriteString(`<table class="table table-bordered">`)
	for _, f := range fields {
		fmt.Fprintf(&b,
			`<tr><td style="width: 25%%;">%s</td><td width="75%%">%s</td></tr>`,
			f.label, f.value,
		)
	}
	b.WriteString(`</table>`)
	return b.String()
}

// buildPostingHTML renders a full posting page: a leading summary table the
// locator must skip, then the posting-details, application-details and
// company-details tables.
func buildPostingHTML(fields []fixtureField, deadline string, companyCells []string) string {
	var b strings.Builder

	b.WriteString(`<html><body>`)
	b.WriteString(`<table class="table table-bordered"><tr><td>summary</td></tr></table>`)
	b.WriteString(renderDetailsTable(fields))

	fmt.Fprintf(&b,
		`<table class="table table-bordered"><tr><td style="width: 25%%;">Application Deadline:</td>`+
			`<td width="75%%"><span id="npPostingApplicationInfoDeadlineDate">%s</span></td></tr></table>`,
		deadline,
	)

	b.WriteString(`<table class="table table-bordered">`)
	for _, cell := range companyCells {
		fmt.Fprintf(&b,
			`<tr><td style="width: 25%%;">label</td><td width="75%%">%s</td></tr>`,
			cell,
		)
	}
	b.WriteString(`</table>`)

	b.WriteString(`</body></html>`)
	return b.String()
}

func defaultPostingHTML(fields []fixtureField) string {
	return buildPostingHTML(
		fields,
		"March 3, 2024 11:59 PM",
		[]string{"Organization", "Aero Systems Inc", "Flight Software"},
	)
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture html: %v", err)
	}
	return doc
}
