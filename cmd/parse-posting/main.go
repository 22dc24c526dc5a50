// Command parse-posting reads one job posting detail page (from stdin, a
// file, or a URL) and prints the extracted record as JSON.
//
// Usage (stdin):
//
//	cat posting.html | parse-posting
//
// Usage (saved page):
//
//	parse-posting -file pages/posting-1.html
//
// Usage (fetch URL):
//
//	parse-posting -url "https://example.com/posting.htm"
//
// Human-readable output:
//
//	parse-posting -file pages/posting-1.html -summary
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/linguini1/coopScraper/internal/fetch"
	"github.com/linguini1/coopScraper/internal/posting"
)

func main() {
	os.Exit(run(
		context.Background(),
		os.Args[1:],
		os.Stdin,
		os.Stdout,
		os.Stderr,
		http.DefaultClient,
	))
}

// run is split out from main so we can unit test the command without spawning
// an OS process.
//
// It returns a Unix-style exit code:
//   - 0 for success
//   - 2 for usage/config errors
//   - 1 for operational/runtime errors
func run(
	ctx context.Context,
	args []string,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	httpClient *http.Client,
) int {
	fs := flag.NewFlagSet("parse-posting", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fileFlag := fs.String("file", "", "Optional: read posting HTML from a file instead of stdin")
	urlFlag := fs.String("url", "", "Optional: fetch posting HTML from URL instead of stdin")
	timeout := fs.Duration("timeout", 20*time.Second, "Timeout for -url fetch")
	summary := fs.Bool("summary", false, "Print a human-readable summary instead of JSON")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *fileFlag != "" && *urlFlag != "" {
		fmt.Fprintf(stderr, "-file and -url are mutually exclusive\n")
		return 2
	}

	loader := fetch.NewLoader(httpClient, *timeout)
	html, err := loader.Load(ctx, fetch.Input{
		URL:   *urlFlag,
		Path:  *fileFlag,
		Stdin: stdin,
	})
	if err != nil {
		fmt.Fprintf(stderr, "load html: %v\n", err)
		return 1
	}

	job, err := posting.Parse(html)
	if err != nil {
		fmt.Fprintf(stderr, "parse posting: %v\n", err)
		return 1
	}

	if *summary {
		fmt.Fprintln(stdout, job.Summary())
		return 0
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(job); err != nil {
		fmt.Fprintf(stderr, "encode json: %v\n", err)
		return 1
	}
	return 0
}
