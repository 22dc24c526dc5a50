package storage

import "github.com/linguini1/coopScraper/internal/posting"

// ColumnType is the backend-neutral type of a jobs column. Each backend maps
// these onto its own SQL types (SQLite stores timestamps as RFC3339 text,
// Postgres as timestamptz, SQL Server as datetimeoffset).
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeInt
	TypeReal
	TypeBool
	TypeTimestamp
)

// Column describes one column of the jobs table.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// JobColumns is the single source of truth for the jobs table shape. All
// three backends generate their DDL and INSERT statements from this slice so
// they cannot drift apart. The leading "id" column is the primary key.
//
// Order mirrors the posting.Job attribute order.
var JobColumns = []Column{
	{Name: "id", Type: TypeText},
	{Name: "title", Type: TypeText},
	{Name: "company", Type: TypeText},
	{Name: "division", Type: TypeText},
	{Name: "deadline", Type: TypeTimestamp},
	{Name: "positions", Type: TypeInt},
	{Name: "location", Type: TypeText},
	{Name: "wfh", Type: TypeBool},
	{Name: "working_arrangements", Type: TypeText},
	{Name: "duration_months", Type: TypeInt},
	{Name: "salary", Type: TypeReal, Nullable: true},
	{Name: "hours_per_week", Type: TypeReal, Nullable: true},
	{Name: "description", Type: TypeText},
	{Name: "security_screening", Type: TypeBool},
	{Name: "term_start", Type: TypeTimestamp, Nullable: true},
	{Name: "term_end", Type: TypeTimestamp, Nullable: true},
}

// JobRow renders a job's column values aligned with JobColumns. Optional
// values surface as untyped nils so database/sql and pgx both store NULL.
func JobRow(j posting.Job) []any {
	row := []any{
		j.ID(),
		j.Title,
		j.Company,
		j.Division,
		j.Deadline,
		j.Positions,
		j.Location,
		j.WFH,
		j.WorkingArrangements,
		j.DurationMonths,
	}

	if j.Salary != nil {
		row = append(row, *j.Salary)
	} else {
		row = append(row, nil)
	}
	if j.HoursPerWeek != nil {
		row = append(row, *j.HoursPerWeek)
	} else {
		row = append(row, nil)
	}

	row = append(row, j.Description, j.SecurityScreening)

	if j.TermStart != nil {
		row = append(row, *j.TermStart)
	} else {
		row = append(row, nil)
	}
	if j.TermEnd != nil {
		row = append(row, *j.TermEnd)
	} else {
		row = append(row, nil)
	}

	return row
}

// ColumnNames returns the jobs column names in declaration order.
func ColumnNames() []string {
	names := make([]string, len(JobColumns))
	for i, c := range JobColumns {
		names[i] = c.Name
	}
	return names
}
