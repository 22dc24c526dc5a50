package posting

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// weeksPerMonth is the flat-rate assumption used for earnings estimates.
const weeksPerMonth = 4

// Job is the fully normalized record for one co-op posting.
//
// A Job is constructed once per document by Parse and is immutable after
// construction; it carries no reference back into the parsed document.
//
// Salary and HoursPerWeek are either both set or both nil, never one without
// the other. DurationMonths is best-effort, with 0 meaning unknown.
type Job struct {
	Title               string     `json:"title"`
	Company             string     `json:"company"`
	Division            string     `json:"division"`
	Deadline            time.Time  `json:"deadline"`
	Positions           int        `json:"positions"`
	Location            string     `json:"location"`
	WFH                 bool       `json:"wfh"`
	WorkingArrangements string     `json:"working_arrangements"`
	DurationMonths      int        `json:"duration_in_months"`
	Salary              *float64   `json:"salary"`
	HoursPerWeek        *float64   `json:"hours_per_week"`
	Description         string     `json:"description"`
	SecurityScreening   bool       `json:"security_screening"`
	TermStart           *time.Time `json:"term_start,omitempty"`
	TermEnd             *time.Time `json:"term_end,omitempty"`
}

// jobNamespace seeds deterministic job IDs so re-scraping the same posting
// produces the same ID (storage backends rely on this for dedupe).
var jobNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// ID returns a deterministic UUID derived from the posting's title, company
// and deadline.
func (j Job) ID() string {
	key := j.Title + "|" + j.Company + "|" + j.Deadline.Format(time.RFC3339)
	return uuid.NewSHA1(jobNamespace, []byte(key)).String()
}

// HasSalary reports whether the posting carried usable salary data.
func (j Job) HasSalary() bool {
	return j.Salary != nil && j.HoursPerWeek != nil
}

// Earnings estimates the total pay over the work term, assuming four weeks
// per month. ok is false when the posting has no salary data or the term
// length is unknown.
func (j Job) Earnings() (total float64, ok bool) {
	if !j.HasSalary() || j.DurationMonths == 0 {
		return 0, false
	}
	return *j.Salary * *j.HoursPerWeek * weeksPerMonth * float64(j.DurationMonths), true
}

// TermDays returns the work term length in days, or 0 when either term date
// is absent or they are out of order.
func (j Job) TermDays() int {
	if j.TermStart == nil || j.TermEnd == nil {
		return 0
	}
	days := int(j.TermEnd.Sub(*j.TermStart).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Summary renders a short human-readable block for terminal output.
func (j Job) Summary() string {
	salaryLine := "Salary: Not available."
	hoursLine := "Hours Weekly: Not available."
	if j.HasSalary() {
		if total, ok := j.Earnings(); ok {
			salaryLine = fmt.Sprintf("Total earnings: $%.2f at $%.2f/hr", total, *j.Salary)
		} else {
			salaryLine = fmt.Sprintf("Salary: $%.2f/hr", *j.Salary)
		}
		hoursLine = fmt.Sprintf("Hours Weekly: %g", *j.HoursPerWeek)
	}

	remote := "No"
	if j.WFH {
		remote = "Yes"
	}

	spacer := strings.Repeat("-", 50)
	return fmt.Sprintf(
		"%s\n%s\n%s, %s\n%s\nAPPLICATION DEADLINE: %s\n%s\n%s\nRemote Work: %s",
		spacer,
		j.Title,
		j.Company, j.Location,
		spacer,
		j.Deadline.Format(deadlineLayout),
		salaryLine,
		hoursLine,
		remote,
	)
}
