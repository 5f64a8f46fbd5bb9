package attendance

import "sort"

// =============================================================================
// MERGE ENGINE
// =============================================================================

// MergeDay collapses bursts of swipes on one day into visits.
//
// Entries are sorted by time of day. A group starts at the first entry;
// every following entry that lands less than intervalSeconds after the
// group's representative becomes the new representative, so the window
// re-anchors on each absorbed swipe. Once a gap reaches the interval the
// representative is emitted and a new group starts. The representative of
// a group is therefore its latest swipe.
//
// Consecutive results are always at least intervalSeconds apart. An
// interval of 0 or less keeps every entry.
func MergeDay(entries []Entry, intervalSeconds int) []Entry {
	if len(entries) == 0 {
		return []Entry{}
	}

	type timed struct {
		entry   Entry
		seconds int
	}
	sorted := make([]timed, len(entries))
	for i, e := range entries {
		sorted[i] = timed{entry: e, seconds: e.Seconds()}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].seconds < sorted[j].seconds
	})

	merged := make([]Entry, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		if next.seconds-current.seconds >= intervalSeconds {
			merged = append(merged, current.entry)
		}
		current = next
	}
	return append(merged, current.entry)
}

// Merge derives a new dataset with every day merged. The input dataset is
// not modified, so merging always starts from the raw entries and results
// never compound across interval changes.
func Merge(ds *Dataset, intervalMinutes int) *Dataset {
	intervalSeconds := intervalMinutes * 60
	b := NewBuilder()
	for _, p := range ds.People() {
		merged := &Person{ID: p.ID, Name: p.Name, Days: make([]Day, len(p.Days))}
		for i, d := range p.Days {
			merged.Days[i] = Day{Date: d.Date, Entries: MergeDay(d.Entries, intervalSeconds)}
		}
		b.addPerson(merged)
	}
	return b.Build()
}
