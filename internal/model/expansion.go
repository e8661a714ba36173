package model

import "time"

// SkipReason explains why a raw href did not enter the frontier.
type SkipReason string

const (
	// SkipUnparseable is used for hrefs that are not valid URL references.
	SkipUnparseable SkipReason = "unparseable"

	// SkipNegativeCrawl is used for URLs containing a negative-crawl keyword.
	SkipNegativeCrawl SkipReason = "negative_crawl"

	// SkipDuplicate is used for URLs already present in the frontier.
	SkipDuplicate SkipReason = "duplicate"

	// SkipRecentlyVisited is used for URLs expanded within the revisit cooldown.
	SkipRecentlyVisited SkipReason = "recently_visited"
)

// Expansion is the outcome of expanding one URL.
// A failed fetch is still an expansion: the URL is marked visited and is not
// retried, and Err records why no links were obtained.
type Expansion struct {
	// URL is the expanded page.
	URL string

	// At is the time the expansion finished.
	At time.Time

	// Count is the value of the expansion counter after this step.
	Count int

	// RawLinks is the number of hrefs returned by the page source.
	RawLinks int

	// Discovered holds the URLs that entered the frontier, in href order.
	Discovered []string

	// Skipped counts rejected hrefs per reason.
	Skipped map[SkipReason]int

	// Checkpointed is true if this step triggered a checkpoint write.
	Checkpointed bool

	// Err is the fetch error, if any.
	Err error
}

// Failed reports whether the page source returned an error.
func (e Expansion) Failed() bool {
	return e.Err != nil
}

// SkippedTotal returns the number of rejected hrefs across all reasons.
func (e Expansion) SkippedTotal() int {
	total := 0
	for _, n := range e.Skipped {
		total += n
	}
	return total
}
