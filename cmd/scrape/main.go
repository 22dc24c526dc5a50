// Command scrape collects shortlisted co-op postings and writes them to a
// CSV file, optionally persisting them to a database as well.
//
// Live portal run (credentials from environment or .env):
//
//	scrape -out shortlist.csv
//
// Offline run over saved posting pages:
//
//	scrape -dir ./pages -out shortlist.csv
//
// With persistence:
//
//	scrape -dir ./pages -storage sqlite -dsn file:jobs.db
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/linguini1/coopScraper/internal/board"
	"github.com/linguini1/coopScraper/internal/config"
	"github.com/linguini1/coopScraper/internal/export/csvout"
	"github.com/linguini1/coopScraper/internal/fetch"
	"github.com/linguini1/coopScraper/internal/metrics"
	"github.com/linguini1/coopScraper/internal/metrics/datadog"
	"github.com/linguini1/coopScraper/internal/posting"
	"github.com/linguini1/coopScraper/internal/storage"

	// register all backends with the storage factory.
	// config specifies which to use but we build in support for all of them.
	_ "github.com/linguini1/coopScraper/internal/storage/all"
)

// boardSession is the slice of *board.Session the command drives. Tests
// substitute a fake that serves canned pages.
type boardSession interface {
	Login() error
	OpenShortlist() error
	CollectPostings() ([]string, error)
	Close()
}

// backendCloser is the minimal interface used by this command to manage a
// metrics backend.
type backendCloser interface {
	metrics.Backend
	Close() error
}

// deps are external seams for testability: unit tests inject a fake board
// session and metrics factory and capture stdout/stderr.
type deps struct {
	Stdout io.Writer
	Stderr io.Writer

	LoadConfig func() (*config.Config, error)
	OpenBoard  func(opts board.Options) (boardSession, error)
	OpenRepo   func(ctx context.Context, cfg storage.Config) (storage.Repository, error)

	BackendFactory func(ctx context.Context, jobName string, flushEvery time.Duration) (backendCloser, error)
	Now            func() time.Time
}

// main is intentionally small: it wires real dependencies and exits with a code.
func main() {
	code := run(context.Background(), os.Args[1:], deps{
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		LoadConfig: config.Load,
		OpenBoard: func(opts board.Options) (boardSession, error) {
			return board.Open(opts)
		},
		OpenRepo: storage.New,
		BackendFactory: func(ctx context.Context, jobName string, flushEvery time.Duration) (backendCloser, error) {
			return datadog.NewBackend(ctx, datadog.Options{
				JobName:    jobName,
				FlushEvery: flushEvery,
			})
		},
		Now: time.Now,
	})
	os.Exit(code)
}

// run executes the scrape and returns an exit code.
//
// Exit codes:
//   - 0: success (possibly with individual postings skipped).
//   - 1: operational error (portal, filesystem, storage).
//   - 2: configuration error.
func run(ctx context.Context, args []string, d deps) int {
	if d.Stdout == nil {
		d.Stdout = io.Discard
	}
	if d.Stderr == nil {
		d.Stderr = io.Discard
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	fs := flag.NewFlagSet("scrape", flag.ContinueOnError)
	fs.SetOutput(d.Stderr)

	dirFlag := fs.String("dir", "", "Parse saved posting pages from this directory instead of the live portal")
	outFlag := fs.String("out", "shortlist.csv", "CSV output path (- for stdout)")
	storageFlag := fs.String("storage", "", "Storage backend (sqlite, postgres, mssql); overrides COOP_STORAGE")
	dsnFlag := fs.String("dsn", "", "Storage DSN; overrides COOP_DSN")
	metricsFlag := fs.String("metrics-backend", "", "Metrics backend (datadog, none); overrides METRICS_BACKEND")
	headless := fs.Bool("headless", true, "Run the browser headless")
	verbose := fs.Bool("v", false, "enable verbose logs")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := d.LoadConfig()
	if err != nil {
		fmt.Fprintf(d.Stderr, "load config: %v\n", err)
		return 2
	}
	if *storageFlag != "" {
		cfg.StorageKind = *storageFlag
	}
	if *dsnFlag != "" {
		cfg.StorageDSN = *dsnFlag
	}
	if *metricsFlag != "" {
		cfg.MetricsBackend = *metricsFlag
	}
	cfg.Headless = *headless

	var backend metrics.Backend = metrics.Nop{}
	switch cfg.MetricsBackend {
	case "datadog":
		b, err := d.BackendFactory(ctx, "coopscraper", 60*time.Second)
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			backend = b
			// Close stops the flush loop and performs the final flush.
			defer func() {
				if err := b.Close(); err != nil {
					log.Printf("metrics: datadog close/flush error: %v", err)
				}
			}()
		}
	case "", "none":
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", cfg.MetricsBackend)
		}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", cfg.MetricsBackend)
	}

	start := d.Now()

	var pages []string
	if *dirFlag != "" {
		pages, err = loadSavedPages(*dirFlag)
	} else {
		pages, err = collectLivePages(cfg, d)
	}
	if err != nil {
		fmt.Fprintf(d.Stderr, "%v\n", err)
		return 1
	}
	backend.IncCounter(metrics.MetricPages, float64(len(pages)), nil)

	jobs := parsePages(pages, backend, *verbose)
	if len(jobs) == 0 {
		fmt.Fprintf(d.Stderr, "no postings extracted from %d page(s)\n", len(pages))
		return 1
	}

	if err := writeCSV(*outFlag, jobs, d.Stdout); err != nil {
		fmt.Fprintf(d.Stderr, "%v\n", err)
		return 1
	}

	if cfg.StorageKind != "" {
		if err := persist(ctx, cfg, jobs, d); err != nil {
			fmt.Fprintf(d.Stderr, "%v\n", err)
			return 1
		}
	}

	backend.ObserveHistogram(metrics.MetricScrapeDuration, d.Now().Sub(start).Seconds(), nil)

	if *verbose {
		log.Printf("scraped %d posting(s) from %d page(s) in %s",
			len(jobs), len(pages), d.Now().Sub(start).Truncate(time.Millisecond))
	}
	return 0
}

// loadSavedPages reads every HTML file in dir, in name order.
func loadSavedPages(dir string) ([]string, error) {
	files, err := fetch.HTMLFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("list saved pages: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .html files in %s", dir)
	}

	pages := make([]string, 0, len(files))
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read saved page: %w", err)
		}
		pages = append(pages, string(b))
	}
	return pages, nil
}

// collectLivePages logs into the portal and pulls every shortlisted posting.
func collectLivePages(cfg *config.Config, d deps) ([]string, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}

	session, err := d.OpenBoard(board.Options{
		LoginURL:     cfg.LoginURL,
		BoardURL:     cfg.BoardURL,
		Username:     cfg.Username,
		Password:     cfg.Password,
		Headless:     cfg.Headless,
		NavTimeoutMs: float64(cfg.NavTimeout.Milliseconds()),
	})
	if err != nil {
		return nil, fmt.Errorf("open portal session: %w", err)
	}
	defer session.Close()

	if err := session.Login(); err != nil {
		return nil, fmt.Errorf("portal login: %w", err)
	}
	if err := session.OpenShortlist(); err != nil {
		return nil, err
	}
	return session.CollectPostings()
}

// parsePages extracts a Job from each page. A page that fails to parse is
// logged and skipped; one mangled posting must not lose the batch.
func parsePages(pages []string, backend metrics.Backend, verbose bool) []posting.Job {
	jobs := make([]posting.Job, 0, len(pages))
	for i, page := range pages {
		job, err := posting.Parse(page)
		if err != nil {
			log.Printf("skip page %d: %v", i+1, err)
			backend.IncCounter(metrics.MetricPostings, 1, metrics.Labels{"status": statusLabel(err)})
			continue
		}
		if verbose {
			log.Printf("parsed %q (%s)", job.Title, job.Company)
		}
		backend.IncCounter(metrics.MetricPostings, 1, metrics.Labels{"status": "ok"})
		jobs = append(jobs, *job)
	}
	return jobs
}

// statusLabel maps an extraction failure to its metric label.
func statusLabel(err error) string {
	switch {
	case posting.IsKind(err, posting.KindStructure):
		return "structure"
	case posting.IsKind(err, posting.KindMissingField):
		return "missing_field"
	case posting.IsKind(err, posting.KindFormat):
		return "format"
	default:
		return "error"
	}
}

// writeCSV renders the shortlist CSV to path, or to stdout when path is "-".
func writeCSV(path string, jobs []posting.Job, stdout io.Writer) error {
	var out io.Writer = stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := csvout.NewWriter(out)
	for _, job := range jobs {
		if err := w.WriteJob(job); err != nil {
			return err
		}
	}
	return w.Flush()
}

// persist upserts the batch into the configured storage backend.
func persist(ctx context.Context, cfg *config.Config, jobs []posting.Job, d deps) error {
	repo, err := d.OpenRepo(ctx, storage.Config{Kind: cfg.StorageKind, DSN: cfg.StorageDSN})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	inserted, err := repo.UpsertJobs(ctx, jobs)
	if err != nil {
		return fmt.Errorf("upsert jobs: %w", err)
	}
	log.Printf("storage: %d inserted, %d already present", inserted, int64(len(jobs))-inserted)
	return nil
}
