package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/linguini1/coopScraper/internal/posting"
	"github.com/linguini1/coopScraper/internal/storage"
)

// Repo implements storage.Repository for SQLite.
//
// SQLite has no native timestamp type; values stored through database/sql get
// TEXT affinity regardless. Timestamps are therefore stored explicitly as
// RFC3339Nano strings for reliable round-trips and easy debugging.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTableSQL()); err != nil {
		return fmt.Errorf("create jobs table: %w", err)
	}
	return nil
}

// UpsertJobs inserts jobs with INSERT OR IGNORE, relying on the id primary
// key for idempotency: job IDs are deterministic, so re-scraping the same
// posting is a no-op.
func (r *Repo) UpsertJobs(ctx context.Context, jobs []posting.Job) (int64, error) {
	if len(jobs) == 0 {
		return 0, nil
	}

	query, args := insertSQL(jobs)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert jobs: %w", err)
	}
	return res.RowsAffected()
}

func createTableSQL() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS jobs (\n")
	for i, col := range storage.JobColumns {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("  ")
		b.WriteString(col.Name)
		b.WriteString(" ")
		b.WriteString(sqliteType(col.Type))
		if col.Name == "id" {
			b.WriteString(" PRIMARY KEY")
		} else if !col.Nullable {
			b.WriteString(" NOT NULL")
		}
	}
	b.WriteString("\n)")
	return b.String()
}

func insertSQL(jobs []posting.Job) (string, []any) {
	cols := storage.ColumnNames()

	var b strings.Builder
	b.WriteString("INSERT OR IGNORE INTO jobs (")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(") VALUES ")

	placeholder := "(" + strings.TrimRight(strings.Repeat("?,", len(cols)), ",") + ")"

	args := make([]any, 0, len(jobs)*len(cols))
	for i, j := range jobs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(placeholder)
		args = append(args, encodeRow(storage.JobRow(j))...)
	}

	return b.String(), args
}

// encodeRow converts timestamps to RFC3339Nano strings; everything else is
// passed through untouched.
func encodeRow(row []any) []any {
	for i, v := range row {
		if t, ok := v.(time.Time); ok {
			row[i] = t.Format(time.RFC3339Nano)
		}
	}
	return row
}

func sqliteType(t storage.ColumnType) string {
	switch t {
	case storage.TypeInt, storage.TypeBool:
		return "INTEGER"
	case storage.TypeReal:
		return "REAL"
	default:
		// Text and timestamps (stored as RFC3339Nano strings).
		return "TEXT"
	}
}
