package report

// URLSetDiff is the difference between two artifacts of the same site.
type URLSetDiff struct {
	// Hostname is taken from the current artifact.
	Hostname string `json:"hostname"`

	// PreviousCount and CurrentCount are the sizes of the two sets.
	PreviousCount int `json:"previous_count"`
	CurrentCount  int `json:"current_count"`

	// Added are URLs only in the current set, in its order.
	Added []string `json:"added"`

	// Removed are URLs only in the previous set, in its order.
	Removed []string `json:"removed"`

	// Unchanged is the number of URLs present in both.
	Unchanged int `json:"unchanged"`
}

// CompareURLSets reports which URLs appeared and disappeared between
// previous and current. Duplicates within a set are counted once.
func CompareURLSets(previous, current *URLSet) *URLSetDiff {
	prev := toSet(previous.URLs)
	cur := toSet(current.URLs)

	diff := &URLSetDiff{
		Hostname:      current.Hostname,
		PreviousCount: len(prev),
		CurrentCount:  len(cur),
		Added:         make([]string, 0),
		Removed:       make([]string, 0),
	}
	if diff.Hostname == "" {
		diff.Hostname = previous.Hostname
	}

	seen := make(map[string]struct{}, len(cur))
	for _, u := range current.URLs {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		if _, ok := prev[u]; ok {
			diff.Unchanged++
		} else {
			diff.Added = append(diff.Added, u)
		}
	}

	clear(seen)
	for _, u := range previous.URLs {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		if _, ok := cur[u]; !ok {
			diff.Removed = append(diff.Removed, u)
		}
	}
	return diff
}

// Delta returns CurrentCount - PreviousCount.
func (d *URLSetDiff) Delta() int {
	return d.CurrentCount - d.PreviousCount
}

func toSet(urls []string) map[string]struct{} {
	m := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		m[u] = struct{}{}
	}
	return m
}
