// Package metrics defines the minimal backend interface the scraper reports
// through. Commands depend only on Backend; concrete exporters live in
// subpackages so the core never links against a vendor SDK it does not use.
package metrics

// Labels are free-form key/value tags attached to a metric point.
type Labels map[string]string

// Backend receives scrape-run measurements.
//
// Implementations must be safe for concurrent use; the scraper may report
// from multiple goroutines.
type Backend interface {
	// IncCounter adds delta to a named counter. Non-positive deltas are ignored.
	IncCounter(name string, delta float64, labels Labels)

	// ObserveHistogram records one sample of a named distribution.
	ObserveHistogram(name string, value float64, labels Labels)
}

// Metric names reported by the scraper. Keeping them in one place makes the
// dashboard contract reviewable.
const (
	MetricPostings       = "coopscraper.postings.total"         // counter, label status
	MetricPages          = "coopscraper.pages.total"            // counter
	MetricScrapeDuration = "coopscraper.scrape.duration.seconds" // histogram
)

// Nop discards all measurements. It is the default backend.
type Nop struct{}

func (Nop) IncCounter(string, float64, Labels)       {}
func (Nop) ObserveHistogram(string, float64, Labels) {}
