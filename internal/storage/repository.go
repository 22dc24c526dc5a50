// Package storage defines the backend-agnostic job repository and the
// registry through which concrete backends (sqlite, postgres, mssql) plug in.
//
// Backends register themselves from an init() function; commands select one
// at runtime by kind. The interface is intentionally minimal: the scraper
// only ever creates the schema and upserts batches of jobs.
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/linguini1/coopScraper/internal/posting"
)

// Config selects and configures a storage backend.
//
// Kind must match a registered backend kind; DSN is passed through to the
// backend factory and validated backend-specifically.
type Config struct {
	Kind string
	DSN  string
}

// Repository persists scraped jobs.
//
// UpsertJobs must be idempotent: re-scraping the same shortlist inserts each
// posting at most once (job IDs are deterministic, see posting.Job.ID).
type Repository interface {
	// EnsureSchema creates the jobs table if it does not exist. Safe to call
	// on every run.
	EnsureSchema(ctx context.Context) error

	// UpsertJobs inserts the given jobs, skipping IDs already stored, and
	// returns the number of newly inserted rows.
	UpsertJobs(ctx context.Context, jobs []posting.Job) (int64, error)

	// Close releases backend resources. Call once at process shutdown.
	Close()
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	registryMu sync.RWMutex
	factories  = map[string]factory{}
)

// Register registers a backend under a kind (e.g. "sqlite", "postgres").
//
// Call Register from an init() function in a backend package. Registering an
// empty kind, a nil factory, or the same kind twice panics: backend selection
// must never be ambiguous, and these are all programmer errors.
func Register(kind string, f factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// New constructs a Repository using the registered backend factory for
// cfg.Kind. The kind is canonicalized first, so "sqlserver" selects the
// "mssql" backend.
func New(ctx context.Context, cfg Config) (Repository, error) {
	kind := CanonicalKind(cfg.Kind)
	if kind == "" {
		return nil, fmt.Errorf("storage: missing backend kind")
	}

	registryMu.RLock()
	f, ok := factories[kind]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("storage: unsupported backend kind %q", cfg.Kind)
	}

	cfg.Kind = kind
	return f(ctx, cfg)
}

// CanonicalKind maps user-facing backend aliases onto registered kinds.
func CanonicalKind(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "postgres", "postgresql", "pg":
		return "postgres"
	case "mssql", "sqlserver":
		return "mssql"
	case "sqlite", "sqlite3":
		return "sqlite"
	case "":
		return ""
	default:
		return strings.ToLower(strings.TrimSpace(kind))
	}
}
