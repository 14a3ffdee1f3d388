package rollup

// FreqEntry is one (key, count) pair of an ordered frequency table.
type FreqEntry struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// FreqTable counts observations while remembering first-seen order, so the
// highest-frequency key resolves deterministically: on equal counts the key
// observed earliest wins.
type FreqTable struct {
	order  []string
	counts map[string]int64
}

func NewFreqTable() *FreqTable {
	return &FreqTable{counts: make(map[string]int64)}
}

// Observe counts one occurrence of key. Empty keys are ignored.
func (t *FreqTable) Observe(key string) {
	if key == "" {
		return
	}
	if _, seen := t.counts[key]; !seen {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

// Len returns the number of distinct keys observed.
func (t *FreqTable) Len() int {
	return len(t.order)
}

// Top returns the key with the highest count, first-seen wins on ties.
func (t *FreqTable) Top() (string, bool) {
	var (
		best  string
		max   int64
		found bool
	)
	for _, key := range t.order {
		if count := t.counts[key]; count > max {
			best = key
			max = count
			found = true
		}
	}
	return best, found
}

// Entries returns the (key, count) pairs in first-seen order.
func (t *FreqTable) Entries() []FreqEntry {
	entries := make([]FreqEntry, 0, len(t.order))
	for _, key := range t.order {
		entries = append(entries, FreqEntry{Key: key, Count: t.counts[key]})
	}
	return entries
}
