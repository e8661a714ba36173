// Package ledger tracks which URLs a crawl has discovered, which are still
// waiting to be expanded, and when each URL was last expanded.
//
// Every discovered URL is in exactly one of three sets: pending (waiting to
// be expanded), visited (expanded) or leaf (kept but never expanded, such as
// links to other hosts). Together they form the frontier. A pending URL that
// has been popped but not yet marked visited is being expanded. Pending URLs are handed out last-in first-out, which makes
// the crawl depth-first.
//
// Nothing is ever evicted. Memory grows with the number of reachable URLs,
// which is acceptable for a single site.
package ledger
