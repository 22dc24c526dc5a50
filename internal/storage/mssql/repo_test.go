package mssql

import (
	"fmt"
	"strings"
	"testing"

	"github.com/linguini1/coopScraper/internal/storage"
)

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	ddl := createTableSQL()

	if !strings.Contains(ddl, "IF OBJECT_ID(N'jobs', N'U') IS NULL") {
		t.Fatalf("missing existence guard: %q", ddl)
	}
	if !strings.Contains(ddl, "[id] varchar(36) NOT NULL PRIMARY KEY") {
		t.Fatalf("missing id primary key: %q", ddl)
	}
	if !strings.Contains(ddl, "[deadline] datetimeoffset NOT NULL") {
		t.Fatalf("deadline should be datetimeoffset: %q", ddl)
	}
	if !strings.Contains(ddl, "[security_screening] bit NOT NULL") {
		t.Fatalf("screening should be bit: %q", ddl)
	}
	if !strings.Contains(ddl, "[hours_per_week] float") || strings.Contains(ddl, "[hours_per_week] float NOT NULL") {
		t.Fatalf("hours_per_week must be nullable float: %q", ddl)
	}
}

func TestInsertSQL(t *testing.T) {
	t.Parallel()

	query := insertSQL()

	if !strings.Contains(query, "IF NOT EXISTS (SELECT 1 FROM jobs WHERE [id] = @p1)") {
		t.Fatalf("missing NOT EXISTS guard: %q", query)
	}

	n := len(storage.JobColumns)
	if !strings.Contains(query, fmt.Sprintf("@p%d", n)) {
		t.Fatalf("expected %d parameters: %q", n, query)
	}
	if strings.Contains(query, fmt.Sprintf("@p%d", n+1)) {
		t.Fatalf("too many parameters: %q", query)
	}
	for _, col := range storage.JobColumns {
		if !strings.Contains(query, "["+col.Name+"]") {
			t.Fatalf("column %q missing from insert: %q", col.Name, query)
		}
	}
}
