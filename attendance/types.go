/*
Package attendance is the consolidation and classification engine for
door-access (badge swipe) exports.

PURPOSE:
  Turns spreadsheet rows into per-person, per-day swipe logs, collapses
  bursts of swipes into visits, and classifies every day of a month as
  none / normal / high traffic.

DATA FLOW:
  []RawEvent
    -> Extractor (normalize.go, extract.go)  -> raw *Dataset (immutable)
    -> Merge(interval)  (merge.go)           -> merged *Dataset
    -> Rank / Summarize(limit) (classify.go) -> []Ranked, MonthSummary
    -> Filter / ReportRows (report.go)       -> external UI / export

RAW VS DERIVED:
  The raw dataset is never modified once built. Every interval or limit
  dependent view is derived from it on demand, so deriving twice with the
  same parameters always gives the same answer and changing a parameter
  back restores the original view exactly.

SEE ALSO:
  - workspace.go: the single owner of the raw dataset and parameters
  - ../jalali:    canonical date keys
*/
package attendance

import (
	"math"
	"strconv"
	"strings"
)

// =============================================================================
// CELL VALUES
// =============================================================================

// ValueKind tells a spreadsheet number apart from text.
type ValueKind int

const (
	ValueEmpty ValueKind = iota
	ValueNumber
	ValueText
)

// Value is one spreadsheet cell as the reader saw it.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

func Number(f float64) Value { return Value{Kind: ValueNumber, Num: f} }
func Text(s string) Value    { return Value{Kind: ValueText, Str: s} }

// InferValue types a cell read from an untyped source such as CSV: numeric
// text becomes a Number, blank text becomes empty, anything else is Text.
func InferValue(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Value{}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Number(f)
	}
	return Text(s)
}

// String renders numbers in their shortest decimal form (1234, not 1234.0).
func (v Value) String() string {
	switch v.Kind {
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueText:
		return v.Str
	default:
		return ""
	}
}

// IsBlank reports whether the cell coerces to an absent value: empty, empty
// text, or the number zero.
func (v Value) IsBlank() bool {
	switch v.Kind {
	case ValueNumber:
		return v.Num == 0 || math.IsNaN(v.Num)
	case ValueText:
		return v.Str == ""
	default:
		return true
	}
}

// orEmpty coerces blank cells to "".
func (v Value) orEmpty() string {
	if v.IsBlank() {
		return ""
	}
	return v.String()
}

// =============================================================================
// EVENTS
// =============================================================================

// RawEvent is one row of the input sheet.
type RawEvent struct {
	Row         int
	PersonID    Value // CodePersonel
	Description Value // Description
	Time        Value // Timestamp2: fraction of a day or "H:M[:S]"
	Date        Value // Datestamp: day serial or a preformatted key
}

// Entry is a single swipe. Immutable once created.
type Entry struct {
	Time        string `json:"time"` // HH:MM:SS
	Date        string `json:"date"` // DD/MM/YYYY, may be "" for unreadable dates
	Description string `json:"description"`
}

// Seconds is the entry's elapsed seconds since midnight.
func (e Entry) Seconds() int {
	return TimeToSeconds(Text(e.Time))
}

// Event is an extracted row: an entry plus the person it belongs to.
type Event struct {
	PersonID string
	Name     string
	Entry    Entry
}

// =============================================================================
// PEOPLE
// =============================================================================

// Day is one calendar day of a person's log.
type Day struct {
	Date    string  `json:"date"`
	Entries []Entry `json:"entries"`
}

// Person holds one person's log. Days keep the order in which each date was
// first seen during ingestion; entries within a day are chronological after
// merging and in file order before it.
type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Days []Day  `json:"days"`
}

// Day returns the entries recorded on date.
func (p *Person) Day(date string) ([]Entry, bool) {
	for _, d := range p.Days {
		if d.Date == date {
			return d.Entries, true
		}
	}
	return nil, false
}

// Entries flattens every day's entries in day order.
func (p *Person) Entries() []Entry {
	var out []Entry
	for _, d := range p.Days {
		out = append(out, d.Entries...)
	}
	return out
}

// ActiveDays is the number of distinct dates with any activity.
func (p *Person) ActiveDays() int {
	return len(p.Days)
}
