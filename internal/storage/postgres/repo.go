package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linguini1/coopScraper/internal/posting"
	"github.com/linguini1/coopScraper/internal/storage"
)

// Repo implements storage.Repository for Postgres over a pgx pool.
//
// Idempotency uses the native Postgres mechanism: INSERT ... ON CONFLICT (id)
// DO NOTHING. Timestamps are stored as timestamptz.
type Repo struct {
	pool *pgxpool.Pool
}

func init() {
	storage.Register("postgres", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() { r.pool.Close() }

func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createTableSQL()); err != nil {
		return fmt.Errorf("create jobs table: %w", err)
	}
	return nil
}

func (r *Repo) UpsertJobs(ctx context.Context, jobs []posting.Job) (int64, error) {
	if len(jobs) == 0 {
		return 0, nil
	}

	query, args := insertSQL(jobs)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func createTableSQL() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS jobs (\n")
	for i, col := range storage.JobColumns {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  %q %s", col.Name, pgType(col.Type))
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
	b.WriteString("INSERT INTO jobs (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", c)
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(jobs)*len(cols))
	for i, j := range jobs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for c := range cols {
			if c > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", i*len(cols)+c+1)
		}
		b.WriteString(")")
		args = append(args, storage.JobRow(j)...)
	}

	b.WriteString(" ON CONFLICT (id) DO NOTHING")
	return b.String(), args
}

func pgType(t storage.ColumnType) string {
	switch t {
	case storage.TypeInt:
		return "integer"
	case storage.TypeReal:
		return "double precision"
	case storage.TypeBool:
		return "boolean"
	case storage.TypeTimestamp:
		return "timestamptz"
	default:
		return "text"
	}
}
