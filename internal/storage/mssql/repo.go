package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/linguini1/coopScraper/internal/posting"
	"github.com/linguini1/coopScraper/internal/storage"
)

// Repo implements storage.Repository for Microsoft SQL Server.
//
// SQL Server has no CREATE TABLE IF NOT EXISTS and no ON CONFLICT, so the
// schema check goes through OBJECT_ID and idempotent inserts use a per-row
// NOT EXISTS guard. Timestamps are stored as datetimeoffset.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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

// UpsertJobs inserts rows one at a time inside a transaction. Batches are a
// shortlist at most (tens of rows), so per-row statements are fine here and
// keep the NOT EXISTS guard simple.
func (r *Repo) UpsertJobs(ctx context.Context, jobs []posting.Job) (int64, error) {
	if len(jobs) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := insertSQL()

	var inserted int64
	for _, j := range jobs {
		res, err := tx.ExecContext(ctx, query, storage.JobRow(j)...)
		if err != nil {
			return 0, fmt.Errorf("insert job %s: %w", j.ID(), err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func createTableSQL() string {
	var b strings.Builder
	b.WriteString("IF OBJECT_ID(N'jobs', N'U') IS NULL\nCREATE TABLE jobs (\n")
	for i, col := range storage.JobColumns {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("  [")
		b.WriteString(col.Name)
		b.WriteString("] ")
		b.WriteString(mssqlType(col))
		if col.Name == "id" {
			b.WriteString(" NOT NULL PRIMARY KEY")
		} else if !col.Nullable {
			b.WriteString(" NOT NULL")
		}
	}
	b.WriteString("\n)")
	return b.String()
}

// insertSQL builds a single-row guarded insert using positional @p1..@pN
// parameters in JobColumns order.
func insertSQL() string {
	cols := storage.JobColumns

	var names, params []string
	for i, col := range cols {
		names = append(names, "["+col.Name+"]")
		params = append(params, fmt.Sprintf("@p%d", i+1))
	}

	return fmt.Sprintf(
		"IF NOT EXISTS (SELECT 1 FROM jobs WHERE [id] = @p1)\nINSERT INTO jobs (%s) VALUES (%s)",
		strings.Join(names, ", "),
		strings.Join(params, ", "),
	)
}

func mssqlType(col storage.Column) string {
	if col.Name == "id" {
		return "varchar(36)"
	}
	switch col.Type {
	case storage.TypeInt:
		return "int"
	case storage.TypeReal:
		return "float"
	case storage.TypeBool:
		return "bit"
	case storage.TypeTimestamp:
		return "datetimeoffset"
	default:
		return "nvarchar(max)"
	}
}
