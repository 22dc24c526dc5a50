// Package posting turns a co-op job posting page, rendered by the portal as
// nested bordered tables with a variable subset of possible fields, into a
// normalized Job record.
//
// The hard part is field indexing: which of the known fields actually appear
// on a given page varies per posting (some omit "working from home", others
// omit salary or duration), and label text is free-form. The package first
// discovers the present fields and pairs each with its value cell, then
// applies field-specific parsing rules (currency/unit inference, strict
// deadline parsing, boolean inference from free text, duration-from-text
// extraction) to build the aggregate record.
//
// Parsing is pure and synchronous: one fully materialized document in, one
// Job (or one typed *Error) out. The package holds no state between calls and
// is safe to use concurrently across independent documents. Acquiring pages
// and persisting records belong to the board, export and storage packages.
package posting

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// termDateLayouts are tried in order when reading the work-term start/end
// cells. Term dates are a best-effort extra; failures leave the date unset.
var termDateLayouts = []string{
	"January 2, 2006",
	"2006-01-02",
}

// Parse is the sole public entry point of the extraction core: it consumes
// one posting page's HTML and produces the normalized Job.
//
// Failures are typed *Error values (structure, missing-field, format) and are
// deterministic: re-parsing identical input reproduces the same error. A
// failed document yields no partial record; callers processing a batch should
// skip the document and continue.
func Parse(src string) (*Job, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, structureError("parse html", err)
	}

	tables, err := locateTables(doc)
	if err != nil {
		return nil, err
	}

	fields := indexFields(tables.details)

	title, err := fields.require(FieldPositionTitle)
	if err != nil {
		return nil, err
	}

	positionsText, err := fields.require(FieldPositions)
	if err != nil {
		return nil, err
	}
	positions, err := strconv.Atoi(strings.TrimSpace(positionsText))
	if err != nil {
		return nil, formatError(fmt.Sprintf("number of positions %q is not an integer", positionsText), err)
	}

	location, err := fields.require(FieldLocation)
	if err != nil {
		return nil, err
	}

	description, err := fields.require(FieldDescription)
	if err != nil {
		return nil, err
	}

	arrangements, err := composeArrangements(fields)
	if err != nil {
		return nil, err
	}

	durationText, err := fields.require(FieldDuration)
	if err != nil {
		return nil, err
	}

	screeningText, err := fields.require(FieldScreening)
	if err != nil {
		return nil, err
	}

	company, division, err := companyInfo(tables.company)
	if err != nil {
		return nil, err
	}

	deadline, err := parseDeadline(tables.application)
	if err != nil {
		return nil, err
	}

	// Salary is optional: a posting without the field simply has no salary
	// data, which is not an error.
	var rate, hours *float64
	if text, ok := fields.lookup(FieldSalary); ok {
		rate, hours = parseSalary(text)
	}

	return &Job{
		Title:               title,
		Company:             company,
		Division:            division,
		Deadline:            deadline,
		Positions:           positions,
		Location:            location,
		WFH:                 inferWFH(fields, description, location, arrangements),
		WorkingArrangements: arrangements,
		DurationMonths:      parseDuration(durationText),
		Salary:              rate,
		HoursPerWeek:        hours,
		Description:         description,
		SecurityScreening:   parseScreening(screeningText),
		TermStart:           termDate(fields, FieldTermStart),
		TermEnd:             termDate(fields, FieldTermEnd),
	}, nil
}

// termDate reads an optional work-term date cell. Absent fields and
// unrecognized date shapes both leave the date unset.
func termDate(fields presentFields, title FieldTitle) *time.Time {
	text, ok := fields.lookup(title)
	if !ok {
		return nil
	}

	text = strings.Join(strings.Fields(text), " ")
	for _, layout := range termDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return &t
		}
	}
	return nil
}
