package ledger

import (
	"fmt"
	"slices"
	"testing"
	"time"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// TestLedger_RecordDiscovery tests frontier deduplication.
func TestLedger_RecordDiscovery(t *testing.T) {
	t.Parallel()

	l := New(DefaultCooldown)

	if !l.RecordDiscovery("https://example.com/a") {
		t.Fatal("expected first discovery to be new")
	}
	if l.RecordDiscovery("https://example.com/a") {
		t.Error("expected duplicate discovery to be rejected")
	}
	if !l.RecordDiscovery("https://example.com/a/") {
		t.Error("trailing slash variant must be a distinct url")
	}

	want := []string{"https://example.com/a", "https://example.com/a/"}
	if got := l.Snapshot(); !slices.Equal(got, want) {
		t.Errorf("Snapshot = %v, want %v", got, want)
	}
	if l.Len() != 2 || l.PendingLen() != 2 {
		t.Errorf("unexpected sizes len=%d pending=%d", l.Len(), l.PendingLen())
	}
}

// TestLedger_NoDuplicates records the same urls many times and checks the
// frontier holds each once.
func TestLedger_NoDuplicates(t *testing.T) {
	t.Parallel()

	l := New(DefaultCooldown)
	for round := 0; round < 3; round++ {
		for i := 0; i < 50; i++ {
			l.RecordDiscovery(fmt.Sprintf("https://example.com/%d", i))
		}
	}

	snap := l.Snapshot()
	seen := make(map[string]bool, len(snap))
	for _, u := range snap {
		if seen[u] {
			t.Fatalf("duplicate %q in frontier", u)
		}
		seen[u] = true
	}
	if len(snap) != 50 {
		t.Errorf("expected 50 urls, got %d", len(snap))
	}
}

// TestLedger_ShouldSkipRevisit tests the cooldown boundary.
func TestLedger_ShouldSkipRevisit(t *testing.T) {
	t.Parallel()

	const u = "https://example.com/a"

	tests := []struct {
		name    string
		elapsed time.Duration
		want    bool
	}{
		{name: "just visited", elapsed: 0, want: true},
		{name: "one hour later", elapsed: time.Hour, want: true},
		{name: "one nanosecond short", elapsed: 24*time.Hour - time.Nanosecond, want: true},
		{name: "exactly at cooldown", elapsed: 24 * time.Hour, want: false},
		{name: "long after", elapsed: 48 * time.Hour, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := New(DefaultCooldown)
			l.MarkVisited(u, t0)
			if got := l.ShouldSkipRevisit(u, t0.Add(tt.elapsed)); got != tt.want {
				t.Errorf("ShouldSkipRevisit after %v = %v, want %v", tt.elapsed, got, tt.want)
			}
		})
	}

	t.Run("never visited", func(t *testing.T) {
		t.Parallel()

		l := New(DefaultCooldown)
		if l.ShouldSkipRevisit(u, t0) {
			t.Error("expected unvisited url not to be skipped")
		}
	})

	t.Run("zero cooldown disables suppression", func(t *testing.T) {
		t.Parallel()

		l := New(0)
		l.MarkVisited(u, t0)
		if l.ShouldSkipRevisit(u, t0) {
			t.Error("expected no suppression with zero cooldown")
		}
	})
}

// TestLedger_NextPending tests LIFO order and state transitions.
func TestLedger_NextPending(t *testing.T) {
	t.Parallel()

	l := New(DefaultCooldown)
	l.RecordDiscovery("a")
	l.RecordDiscovery("b")
	l.RecordDiscovery("c")

	got, ok := l.NextPending()
	if !ok || got != "c" {
		t.Fatalf("NextPending = (%q, %v), want (c, true)", got, ok)
	}
	if l.PendingLen() != 2 {
		t.Errorf("expected 2 pending while c expands, got %d", l.PendingLen())
	}
	if l.IsVisited("c") {
		t.Error("c must not be visited before MarkVisited")
	}

	l.MarkVisited("c", t0)
	if !l.IsVisited("c") {
		t.Error("expected c to be visited")
	}

	l.RecordDiscovery("d")
	order := []string{}
	for {
		u, ok := l.NextPending()
		if !ok {
			break
		}
		order = append(order, u)
		l.MarkVisited(u, t0)
	}

	if want := []string{"d", "b", "a"}; !slices.Equal(order, want) {
		t.Errorf("expansion order = %v, want %v", order, want)
	}
	if l.PendingLen() != 0 || l.Len() != 4 {
		t.Errorf("unexpected sizes len=%d pending=%d", l.Len(), l.PendingLen())
	}
	for _, u := range l.Snapshot() {
		if !l.IsVisited(u) {
			t.Errorf("expected %s to be visited", u)
		}
	}
}

// TestLedger_MarkVisitedRemovesPending tests that a pending url marked
// visited without being popped is no longer handed out.
func TestLedger_MarkVisitedRemovesPending(t *testing.T) {
	t.Parallel()

	l := New(DefaultCooldown)
	l.RecordDiscovery("a")
	l.RecordDiscovery("b")
	l.MarkVisited("a", t0)

	u, ok := l.NextPending()
	if !ok || u != "b" {
		t.Fatalf("NextPending = (%q, %v), want (b, true)", u, ok)
	}
	if _, ok := l.NextPending(); ok {
		t.Error("expected no more pending urls")
	}
}

// TestLedger_MarkVisitedOutsideFrontier tests that visits of undiscovered
// urls only set the timestamp.
func TestLedger_MarkVisitedOutsideFrontier(t *testing.T) {
	t.Parallel()

	l := New(DefaultCooldown)
	l.MarkVisited("https://example.com", t0)

	if l.Contains("https://example.com") {
		t.Error("MarkVisited must not add to the frontier")
	}
	if l.IsVisited("https://example.com") {
		t.Error("a url outside the frontier is never reported visited")
	}
	if _, ok := l.LastVisited("https://example.com"); !ok {
		t.Error("expected visit time to be recorded")
	}
}

// TestLedger_Seed tests importing earlier visit times.
func TestLedger_Seed(t *testing.T) {
	t.Parallel()

	l := New(DefaultCooldown)
	l.Seed("a", t0)
	l.Seed("a", t0.Add(-time.Hour))

	got, ok := l.LastVisited("a")
	if !ok || !got.Equal(t0) {
		t.Errorf("LastVisited = (%v, %v), want (%v, true)", got, ok, t0)
	}
	if !l.ShouldSkipRevisit("a", t0.Add(time.Hour)) {
		t.Error("expected seeded url to be within cooldown")
	}
	if l.Contains("a") {
		t.Error("Seed must not add to the frontier")
	}
}

// TestLedger_NoEviction tests that nothing is ever dropped from the ledger,
// however old or numerous.
func TestLedger_NoEviction(t *testing.T) {
	t.Parallel()

	l := New(DefaultCooldown)
	const n = 10000
	for i := 0; i < n; i++ {
		u := fmt.Sprintf("https://example.com/%d", i)
		l.RecordDiscovery(u)
		l.MarkVisited(u, t0.Add(-time.Duration(i)*time.Hour))
	}

	if l.Len() != n {
		t.Errorf("expected %d urls in frontier, got %d", n, l.Len())
	}
	if _, ok := l.LastVisited(fmt.Sprintf("https://example.com/%d", n-1)); !ok {
		t.Error("oldest visit time was evicted")
	}
	if !l.Contains("https://example.com/0") {
		t.Error("oldest url was evicted")
	}
}

// TestLedger_SnapshotIsCopy tests that callers cannot mutate the frontier.
func TestLedger_SnapshotIsCopy(t *testing.T) {
	t.Parallel()

	l := New(DefaultCooldown)
	l.RecordDiscovery("a")
	snap := l.Snapshot()
	snap[0] = "mutated"

	if l.Snapshot()[0] != "a" {
		t.Error("frontier changed through snapshot")
	}
}

// TestLedger_RecordLeaf tests urls that are kept but never expanded.
func TestLedger_RecordLeaf(t *testing.T) {
	t.Parallel()

	l := New(DefaultCooldown)
	if !l.RecordLeaf("https://other.com/x") {
		t.Fatal("expected leaf to be new")
	}
	if l.RecordLeaf("https://other.com/x") || l.RecordDiscovery("https://other.com/x") {
		t.Error("expected duplicate leaf to be rejected")
	}
	l.RecordDiscovery("https://example.com/a")

	if !l.Contains("https://other.com/x") || l.LeafLen() != 1 {
		t.Error("expected one leaf")
	}
	if l.PendingLen() != 1 {
		t.Errorf("expected 1 pending, got %d", l.PendingLen())
	}

	u, ok := l.NextPending()
	if !ok || u != "https://example.com/a" {
		t.Fatalf("NextPending = (%q, %v)", u, ok)
	}
	if _, ok := l.NextPending(); ok {
		t.Error("leaf must never be handed out")
	}

	l.MarkVisited("https://other.com/x", t0)
	if l.IsVisited("https://other.com/x") || l.LeafLen() != 1 {
		t.Error("marking a leaf visited must not change its kind")
	}

	want := []string{"https://other.com/x", "https://example.com/a"}
	if got := l.Snapshot(); !slices.Equal(got, want) {
		t.Errorf("Snapshot = %v, want %v", got, want)
	}
}
