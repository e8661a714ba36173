package ledger

import (
	"slices"
	"time"
)

// DefaultCooldown is how long an expanded URL is kept from being recorded again.
const DefaultCooldown = 24 * time.Hour

type entry uint8

const (
	entryPending entry = iota
	entryVisited
	// entryLeaf is a URL kept in the frontier that is never expanded,
	// such as a link to another host.
	entryLeaf
)

// Ledger is the crawl's record of discovered and visited URLs.
// It is not safe for concurrent use; one crawl engine owns one Ledger.
type Ledger struct {
	cooldown time.Duration

	// order holds frontier URLs in discovery order.
	order    []string
	frontier map[string]entry
	// pending is the LIFO stack of URLs awaiting expansion.
	pending []string
	leaves  int
	// lastVisited records the last expansion time per URL, including
	// URLs that never entered the frontier, such as the seed.
	lastVisited map[string]time.Time
}

// New creates an empty Ledger. A non-positive cooldown disables revisit
// suppression.
func New(cooldown time.Duration) *Ledger {
	return &Ledger{
		cooldown:    cooldown,
		frontier:    make(map[string]entry),
		lastVisited: make(map[string]time.Time),
	}
}

// Cooldown returns the revisit window.
func (l *Ledger) Cooldown() time.Duration {
	return l.cooldown
}

// RecordDiscovery adds url to the frontier and the pending stack.
// It returns false, and changes nothing, when url is already in the frontier.
func (l *Ledger) RecordDiscovery(url string) bool {
	if _, ok := l.frontier[url]; ok {
		return false
	}
	l.frontier[url] = entryPending
	l.order = append(l.order, url)
	l.pending = append(l.pending, url)
	return true
}

// RecordLeaf adds url to the frontier without scheduling it for expansion.
// It returns false, and changes nothing, when url is already in the frontier.
func (l *Ledger) RecordLeaf(url string) bool {
	if _, ok := l.frontier[url]; ok {
		return false
	}
	l.frontier[url] = entryLeaf
	l.order = append(l.order, url)
	l.leaves++
	return true
}

// ShouldSkipRevisit reports whether url was expanded less than the cooldown
// before now.
func (l *Ledger) ShouldSkipRevisit(url string, now time.Time) bool {
	if l.cooldown <= 0 {
		return false
	}
	last, ok := l.lastVisited[url]
	if !ok {
		return false
	}
	return now.Sub(last) < l.cooldown
}

// MarkVisited records now as the last expansion time of url and moves it
// from pending to visited when it is in the frontier.
func (l *Ledger) MarkVisited(url string, now time.Time) {
	l.lastVisited[url] = now
	if e, ok := l.frontier[url]; ok && e == entryPending {
		l.frontier[url] = entryVisited
		l.removePending(url)
	}
}

// NextPending pops the most recently discovered pending URL. The URL stays
// in the frontier but counts as neither pending nor visited until
// MarkVisited is called for it.
func (l *Ledger) NextPending() (string, bool) {
	n := len(l.pending)
	if n == 0 {
		return "", false
	}
	url := l.pending[n-1]
	l.pending = l.pending[:n-1]
	return url, true
}

// Seed imports an earlier visit time for url, for example from a previous run.
// A later time already known for url is kept.
func (l *Ledger) Seed(url string, at time.Time) {
	if cur, ok := l.lastVisited[url]; ok && cur.After(at) {
		return
	}
	l.lastVisited[url] = at
}

// LastVisited returns the last expansion time of url.
func (l *Ledger) LastVisited(url string) (time.Time, bool) {
	t, ok := l.lastVisited[url]
	return t, ok
}

// Snapshot returns the frontier in discovery order.
func (l *Ledger) Snapshot() []string {
	return slices.Clone(l.order)
}

// Contains reports whether url is in the frontier.
func (l *Ledger) Contains(url string) bool {
	_, ok := l.frontier[url]
	return ok
}

// IsVisited reports whether url is in the frontier and has been expanded.
func (l *Ledger) IsVisited(url string) bool {
	e, ok := l.frontier[url]
	return ok && e == entryVisited
}

// Len returns the frontier size.
func (l *Ledger) Len() int {
	return len(l.order)
}

// PendingLen returns the number of URLs waiting to be expanded.
func (l *Ledger) PendingLen() int {
	return len(l.pending)
}

// LeafLen returns the number of frontier URLs that are never expanded.
func (l *Ledger) LeafLen() int {
	return l.leaves
}

func (l *Ledger) removePending(url string) {
	for i := len(l.pending) - 1; i >= 0; i-- {
		if l.pending[i] == url {
			l.pending = slices.Delete(l.pending, i, i+1)
			return
		}
	}
}
