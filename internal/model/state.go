package model

// URLState is the lifecycle state of a URL within one crawl.
//
//	Undiscovered -> Discovered -> Expanding -> Expanded
//
// A URL only moves forward. Expanded is terminal for the run even when the
// fetch failed, because failed pages are never retried.
type URLState int

const (
	// StateUndiscovered means the URL has not been seen in any link list.
	StateUndiscovered URLState = iota

	// StateDiscovered means the URL is in the frontier. Pending URLs wait
	// here for expansion. Leaves (other hosts, non-http schemes) are out of
	// expansion scope and stay Discovered for the rest of the run.
	StateDiscovered

	// StateExpanding means the page source is currently fetching the URL.
	StateExpanding

	// StateExpanded means the URL was fetched (or the fetch failed) and its
	// visit time is recorded.
	StateExpanded
)

// String returns a lower-case name of the state.
func (s URLState) String() string {
	switch s {
	case StateUndiscovered:
		return "undiscovered"
	case StateDiscovered:
		return "discovered"
	case StateExpanding:
		return "expanding"
	case StateExpanded:
		return "expanded"
	default:
		return "unknown"
	}
}
