package posting

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

const borderedTableSelector = ".table.table-bordered"

// postingTables holds the three semantically distinct sub-tables of a posting
// page, split out of the raw document.
type postingTables struct {
	details     *goquery.Selection // scalar job attributes (title, salary, ...)
	application *goquery.Selection // application info, including the deadline
	company     *goquery.Selection // company and division
}

// locateTables isolates the posting-details, application-details and
// company-details tables from the document.
//
// The portal renders bordered tables in a fixed order per portal version, so
// selection is purely positional: the second, third and fourth bordered
// tables are the ones we want. There is no cross-document adaptivity; a page
// with fewer than four bordered tables is structurally broken for scraping.
func locateTables(doc *goquery.Document) (postingTables, error) {
	tables := doc.Find(borderedTableSelector)
	if tables.Length() < 4 {
		return postingTables{}, structureError(
			fmt.Sprintf("expected at least 4 bordered tables, found %d", tables.Length()), nil,
		)
	}

	return postingTables{
		details:     tables.Eq(1),
		application: tables.Eq(2),
		company:     tables.Eq(3),
	}, nil
}

// companyInfo resolves the company and division names from fixed positional
// value cells of the company-details table (cell 1 = company, cell 2 =
// division).
func companyInfo(table *goquery.Selection) (company, division string, err error) {
	cells := table.Find(valueCellSelector)
	if cells.Length() < 3 {
		return "", "", missingFieldError(
			fmt.Sprintf("company table has %d value cells, need 3", cells.Length()), nil,
		)
	}
	return cellText(cells.Eq(1)), cellText(cells.Eq(2)), nil
}
