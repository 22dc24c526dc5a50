package posting

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FieldTitle is a canonical field identity from the posting-details catalog.
//
// The string value is the normalized (lower-case) label text the portal uses
// for that field. Identity is established by substring matching against the
// posting's label cells, so the catalog text must stay lower-case.
type FieldTitle string

const (
	FieldPositionTitle FieldTitle = "position title"
	FieldPositions     FieldTitle = "number of positions"
	FieldLocation      FieldTitle = "location of work"
	FieldArrangements  FieldTitle = "indicate working arrangements"
	FieldWFHNote       FieldTitle = "working from home"
	FieldDuration      FieldTitle = "duration"
	FieldSalary        FieldTitle = "salary"
	FieldTermStart     FieldTitle = "work term start"
	FieldTermEnd       FieldTitle = "work term end"
	FieldDescription   FieldTitle = "job description"
	FieldScreening     FieldTitle = "security screening"
)

// fieldCatalog is the stable, ordered schema of possible posting fields.
// Order matters: it mirrors the row order of the posting-details table, and
// indexFields pairs retained titles with value cells positionally.
var fieldCatalog = []FieldTitle{
	FieldPositionTitle,
	FieldPositions,
	FieldLocation,
	FieldArrangements,
	FieldWFHNote,
	FieldDuration,
	FieldSalary,
	FieldTermStart,
	FieldTermEnd,
	FieldDescription,
	FieldScreening,
}

const (
	labelCellSelector = `td[style="width: 25%;"]`
	valueCellSelector = `td[width="75%"]`
)

// fieldValue pairs a field identity with the text of its value cell.
//
// Keeping identity and value in one record (rather than two parallel slices)
// removes the index-alignment hazard between present titles and value cells.
type fieldValue struct {
	title FieldTitle
	text  string
}

// presentFields is the ordered subset of catalog fields found on a posting.
type presentFields []fieldValue

// lookup returns the value text for a field, reporting absence via ok.
// Use lookup for optional fields (salary, the WFH note).
func (p presentFields) lookup(title FieldTitle) (string, bool) {
	for _, fv := range p {
		if fv.title == title {
			return fv.text, true
		}
	}
	return "", false
}

// require returns the value text for a field that must be on the posting.
func (p presentFields) require(title FieldTitle) (string, error) {
	text, ok := p.lookup(title)
	if !ok {
		return "", missingFieldError("field not found on posting: "+string(title), nil)
	}
	return text, nil
}

// has reports whether a field identity was found on the posting.
func (p presentFields) has(title FieldTitle) bool {
	_, ok := p.lookup(title)
	return ok
}

// indexFields determines which catalog fields actually appear in the
// posting-details table and pairs each with its value cell text.
//
// The portal lays the table out as label/value cell pairs: labels on the
// 25%-width side, values on the 75%-width side. Label text is free-form, so
// presence is decided by substring matching the catalog entry against the
// concatenation of all lower-cased label texts. Retained titles align 1:1,
// in catalog order, with the value cells in document order.
//
// An empty table is valid and yields an empty result; extractors then fail
// their own required-field lookups.
func indexFields(table *goquery.Selection) presentFields {
	var labels []string
	table.Find(labelCellSelector).Each(func(_ int, sel *goquery.Selection) {
		labels = append(labels, strings.ToLower(cellText(sel)))
	})
	labelText := strings.Join(labels, " ")

	values := table.Find(valueCellSelector)

	var fields presentFields
	for _, title := range fieldCatalog {
		if !strings.Contains(labelText, string(title)) {
			continue
		}
		if len(fields) >= values.Length() {
			break
		}
		fields = append(fields, fieldValue{
			title: title,
			text:  cellText(values.Eq(len(fields))),
		})
	}

	return fields
}

// cellText returns the cell's text with leading/trailing whitespace removed.
func cellText(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}
