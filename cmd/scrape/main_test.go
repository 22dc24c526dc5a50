package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/linguini1/coopScraper/internal/board"
	"github.com/linguini1/coopScraper/internal/config"
	"github.com/linguini1/coopScraper/internal/metrics"
	"github.com/linguini1/coopScraper/internal/posting"
	"github.com/linguini1/coopScraper/internal/storage"
)

// postingPage renders a complete posting detail page for the given title.
func postingPage(title string) string {
	return fmt.Sprintf(`<html><body>
<table class="table table-bordered"><tr><td>summary</td></tr></table>
<table class="table table-bordered">
<tr><td style="width: 25%%;">Position Title:</td><td width="75%%">%s</td></tr>
<tr><td style="width: 25%%;">Number of Positions:</td><td width="75%%">2</td></tr>
<tr><td style="width: 25%%;">Location of Work:</td><td width="75%%">Ottawa, ON</td></tr>
<tr><td style="width: 25%%;">Please indicate Working Arrangements:</td><td width="75%%">In-person at the office</td></tr>
<tr><td style="width: 25%%;">Duration:</td><td width="75%%">4 months</td></tr>
<tr><td style="width: 25%%;">Salary:</td><td width="75%%">$22.50 20</td></tr>
<tr><td style="width: 25%%;">Job Description:</td><td width="75%%">Build internal tooling.</td></tr>
<tr><td style="width: 25%%;">Security Screening:</td><td width="75%%">No, not required</td></tr>
</table>
<table class="table table-bordered">
<tr><td style="width: 25%%;">Application Deadline:</td><td width="75%%"><span id="npPostingApplicationInfoDeadlineDate">March 3, 2024 11:59 PM</span></td></tr>
</table>
<table class="table table-bordered">
<tr><td style="width: 25%%;">Organization:</td><td width="75%%">Organization</td></tr>
<tr><td style="width: 25%%;">Company:</td><td width="75%%">Aero Systems Inc</td></tr>
<tr><td style="width: 25%%;">Division:</td><td width="75%%">Flight Software</td></tr>
</table>
</body></html>`, title)
}

// testDeps returns deps wired for offline runs: env-independent config, no
// live board, no real metrics.
func testDeps(stdout, stderr *bytes.Buffer) deps {
	return deps{
		Stdout: stdout,
		Stderr: stderr,
		LoadConfig: func() (*config.Config, error) {
			return &config.Config{MetricsBackend: "none"}, nil
		},
		OpenBoard: func(opts board.Options) (boardSession, error) {
			return nil, fmt.Errorf("no live board in tests")
		},
		OpenRepo: storage.New,
		Now:      time.Now,
	}
}

// TestRun_DirMode covers the offline path end to end: two parseable pages
// and one mangled page become a two-row CSV, with the bad page skipped.
func TestRun_DirMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.html"), postingPage("Avionics Developer"))
	writeFile(t, filepath.Join(dir, "b.html"), postingPage("Data Analyst"))
	writeFile(t, filepath.Join(dir, "broken.html"), "<html><body><p>nope</p></body></html>")

	out := filepath.Join(t.TempDir(), "shortlist.csv")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-dir", dir, "-out", out}, testDeps(&stdout, &stderr))
	if code != 0 {
		t.Fatalf("run returned %d; stderr=%s", code, stderr.String())
	}

	csv := readFile(t, out)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines:\n%s", len(lines), csv)
	}
	if !strings.HasPrefix(lines[0], "Title,Company,") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "Avionics Developer") || !strings.Contains(lines[2], "Data Analyst") {
		t.Errorf("rows out of order or missing:\n%s", csv)
	}
}

func TestRun_DirModeStdout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.html"), postingPage("Avionics Developer"))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-dir", dir, "-out", "-"}, testDeps(&stdout, &stderr))
	if code != 0 {
		t.Fatalf("run returned %d; stderr=%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Avionics Developer") {
		t.Fatalf("stdout missing csv row: %s", stdout.String())
	}
}

func TestRun_EmptyDir(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-dir", t.TempDir()}, testDeps(&stdout, &stderr))
	if code != 1 {
		t.Fatalf("run returned %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "no .html files") {
		t.Fatalf("stderr missing context: %s", stderr.String())
	}
}

func TestRun_AllPagesMalformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.html"), "<html><body></body></html>")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-dir", dir, "-out", "-"}, testDeps(&stdout, &stderr))
	if code != 1 {
		t.Fatalf("run returned %d, want 1; stderr=%s", code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "no postings extracted") {
		t.Fatalf("stderr missing context: %s", stderr.String())
	}
}

// fakeSession serves canned posting pages in place of the live portal.
type fakeSession struct {
	pages []string

	loggedIn        bool
	openedShortlist bool
	closed          bool
}

func (s *fakeSession) Login() error         { s.loggedIn = true; return nil }
func (s *fakeSession) OpenShortlist() error { s.openedShortlist = true; return nil }
func (s *fakeSession) Close()               { s.closed = true }

func (s *fakeSession) CollectPostings() ([]string, error) {
	if !s.loggedIn || !s.openedShortlist {
		return nil, fmt.Errorf("collect before login/shortlist")
	}
	return s.pages, nil
}

func TestRun_LivePath(t *testing.T) {
	t.Parallel()

	session := &fakeSession{pages: []string{postingPage("Avionics Developer")}}

	var stdout, stderr bytes.Buffer
	d := testDeps(&stdout, &stderr)
	d.LoadConfig = func() (*config.Config, error) {
		return &config.Config{
			Username:       "jdoe",
			Password:       "hunter2",
			MetricsBackend: "none",
		}, nil
	}
	var gotOpts board.Options
	d.OpenBoard = func(opts board.Options) (boardSession, error) {
		gotOpts = opts
		return session, nil
	}

	code := run(context.Background(), []string{"-out", "-"}, d)
	if code != 0 {
		t.Fatalf("run returned %d; stderr=%s", code, stderr.String())
	}
	if gotOpts.Username != "jdoe" {
		t.Errorf("session opened with username %q", gotOpts.Username)
	}
	if !session.closed {
		t.Error("session was not closed")
	}
	if !strings.Contains(stdout.String(), "Avionics Developer") {
		t.Fatalf("stdout missing csv row: %s", stdout.String())
	}
}

func TestRun_LivePathRequiresCredentials(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-out", "-"}, testDeps(&stdout, &stderr))
	if code != 1 {
		t.Fatalf("run returned %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "COOP_USERNAME") {
		t.Fatalf("stderr missing credential hint: %s", stderr.String())
	}
}

// fakeRepo records the persisted batch.
type fakeRepo struct {
	ensured bool
	closed  bool
	jobs    []posting.Job
}

func (r *fakeRepo) EnsureSchema(ctx context.Context) error { r.ensured = true; return nil }
func (r *fakeRepo) Close()                                 { r.closed = true }

func (r *fakeRepo) UpsertJobs(ctx context.Context, jobs []posting.Job) (int64, error) {
	r.jobs = append(r.jobs, jobs...)
	return int64(len(jobs)), nil
}

func TestRun_Persistence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.html"), postingPage("Avionics Developer"))

	repo := &fakeRepo{}

	var stdout, stderr bytes.Buffer
	d := testDeps(&stdout, &stderr)
	var gotCfg storage.Config
	d.OpenRepo = func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		gotCfg = cfg
		return repo, nil
	}

	code := run(
		context.Background(),
		[]string{"-dir", dir, "-out", "-", "-storage", "sqlite", "-dsn", "file:jobs.db"},
		d,
	)
	if code != 0 {
		t.Fatalf("run returned %d; stderr=%s", code, stderr.String())
	}

	if gotCfg.Kind != "sqlite" || gotCfg.DSN != "file:jobs.db" {
		t.Errorf("unexpected storage config: %+v", gotCfg)
	}
	if !repo.ensured {
		t.Error("schema was not ensured")
	}
	if !repo.closed {
		t.Error("repository was not closed")
	}
	if len(repo.jobs) != 1 || repo.jobs[0].Title != "Avionics Developer" {
		t.Errorf("unexpected persisted batch: %+v", repo.jobs)
	}
}

// fakeBackend records counter increments by name and status label.
type fakeBackend struct {
	mu       sync.Mutex
	counts   map[string]float64
	closed   bool
	observed int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{counts: make(map[string]float64)}
}

func (b *fakeBackend) IncCounter(name string, delta float64, labels metrics.Labels) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := name
	if status, ok := labels["status"]; ok {
		key += "/" + status
	}
	b.counts[key] += delta
}

func (b *fakeBackend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observed++
}

func (b *fakeBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func TestRun_MetricsLabels(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.html"), postingPage("Avionics Developer"))
	writeFile(t, filepath.Join(dir, "broken.html"), "<html><body></body></html>")

	backend := newFakeBackend()

	var stdout, stderr bytes.Buffer
	d := testDeps(&stdout, &stderr)
	d.LoadConfig = func() (*config.Config, error) {
		return &config.Config{MetricsBackend: "datadog"}, nil
	}
	d.BackendFactory = func(ctx context.Context, jobName string, flushEvery time.Duration) (backendCloser, error) {
		return backend, nil
	}

	code := run(context.Background(), []string{"-dir", dir, "-out", "-"}, d)
	if code != 0 {
		t.Fatalf("run returned %d; stderr=%s", code, stderr.String())
	}

	if got := backend.counts[metrics.MetricPages]; got != 2 {
		t.Errorf("pages counter = %v, want 2", got)
	}
	if got := backend.counts[metrics.MetricPostings+"/ok"]; got != 1 {
		t.Errorf("ok counter = %v, want 1", got)
	}
	if got := backend.counts[metrics.MetricPostings+"/structure"]; got != 1 {
		t.Errorf("structure counter = %v, want 1", got)
	}
	if backend.observed != 1 {
		t.Errorf("duration histogram observed %d times, want 1", backend.observed)
	}
	if !backend.closed {
		t.Error("backend was not closed")
	}
}

func TestStatusLabel(t *testing.T) {
	t.Parallel()

	_, structureErr := posting.Parse("<html><body></body></html>")
	if got := statusLabel(structureErr); got != "structure" {
		t.Errorf("statusLabel(structure) = %q", got)
	}
	if got := statusLabel(fmt.Errorf("plain")); got != "error" {
		t.Errorf("statusLabel(plain) = %q", got)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}
