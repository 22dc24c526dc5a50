// Package csvout serializes posting.Job records into the shortlist CSV.
//
// The column set is a declared, reviewable contract rather than something
// derived from struct field names at runtime: downstream spreadsheet formulas
// key on these exact header strings, so renaming a Job field must not be able
// to silently change the output schema.
package csvout

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/linguini1/coopScraper/internal/posting"
)

// timeLayout renders deadlines and term dates deterministically.
const timeLayout = "2006-01-02 15:04"

// column binds a header string to its value renderer.
//
// Columns follow the Job attribute declaration order. The remote flag keeps
// its all-caps "WFH" header; every other header is space-separated
// capitalized words.
type column struct {
	header string
	render func(j posting.Job) string
}

var columns = []column{
	{"Title", func(j posting.Job) string { return j.Title }},
	{"Company", func(j posting.Job) string { return j.Company }},
	{"Division", func(j posting.Job) string { return j.Division }},
	{"Deadline", func(j posting.Job) string { return j.Deadline.Format(timeLayout) }},
	{"Positions", func(j posting.Job) string { return strconv.Itoa(j.Positions) }},
	{"Location", func(j posting.Job) string { return j.Location }},
	{"WFH", func(j posting.Job) string { return strconv.FormatBool(j.WFH) }},
	{"Working arrangements", func(j posting.Job) string { return j.WorkingArrangements }},
	{"Duration in months", func(j posting.Job) string { return strconv.Itoa(j.DurationMonths) }},
	{"Salary", func(j posting.Job) string { return optionalFloat(j.Salary) }},
	{"Hours per week", func(j posting.Job) string { return optionalFloat(j.HoursPerWeek) }},
	{"Description", func(j posting.Job) string { return j.Description }},
	{"Security screening", func(j posting.Job) string { return strconv.FormatBool(j.SecurityScreening) }},
	{"Work term start", func(j posting.Job) string { return optionalDate(j.TermStart) }},
	{"Work term end", func(j posting.Job) string { return optionalDate(j.TermEnd) }},
}

// Headers returns the header row in column order.
func Headers() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.header
	}
	return out
}

// Row renders one Job as a CSV record aligned with Headers.
func Row(j posting.Job) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.render(j)
	}
	return out
}

// Writer streams Jobs to CSV, emitting the header row before the first record.
type Writer struct {
	cw          *csv.Writer
	wroteHeader bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{cw: csv.NewWriter(w)}
}

// WriteJob appends one record, writing the header row first if needed.
func (w *Writer) WriteJob(j posting.Job) error {
	if !w.wroteHeader {
		if err := w.cw.Write(Headers()); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		w.wroteHeader = true
	}
	if err := w.cw.Write(Row(j)); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	return nil
}

// Flush writes buffered records to the underlying writer and reports any
// accumulated write error.
func (w *Writer) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}

func optionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func optionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
