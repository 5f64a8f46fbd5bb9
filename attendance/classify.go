package attendance

import (
	"fmt"
	"sort"

	"github.com/warp/traffic-engine/jalali"
)

// =============================================================================
// TRAFFIC LEVELS
// =============================================================================

// Level classifies one day by its number of visits.
type Level string

const (
	LevelNone   Level = "none"   // no visits
	LevelNormal Level = "normal" // 1..limit visits
	LevelHigh   Level = "high"   // more than limit visits
)

// Classify buckets a visit count against the traffic limit.
func Classify(count, limit int) Level {
	switch {
	case count <= 0:
		return LevelNone
	case count <= limit:
		return LevelNormal
	default:
		return LevelHigh
	}
}

// =============================================================================
// RANKING
// =============================================================================

// Ranked is a person together with their number of high-traffic days.
type Ranked struct {
	Person          *Person
	HighTrafficDays int
}

// HighTrafficDays counts the days, across the person's whole log, whose
// visit count exceeds limit.
func HighTrafficDays(p *Person, limit int) int {
	n := 0
	for _, d := range p.Days {
		if len(d.Entries) > limit {
			n++
		}
	}
	return n
}

// Rank keeps the people with at least one high-traffic day, most first.
// People with equal counts stay in encounter order.
func Rank(ds *Dataset, limit int) []Ranked {
	var ranked []Ranked
	for _, p := range ds.People() {
		if n := HighTrafficDays(p, limit); n > 0 {
			ranked = append(ranked, Ranked{Person: p, HighTrafficDays: n})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].HighTrafficDays > ranked[j].HighTrafficDays
	})
	return ranked
}

// =============================================================================
// REFERENCE MONTH
// =============================================================================

// ReferenceMonthStrategy picks the one month a person's summary covers.
type ReferenceMonthStrategy string

const (
	// FirstInserted uses the month of the first date seen during ingestion.
	FirstInserted ReferenceMonthStrategy = "first_inserted"
	// EarliestDate uses the chronologically earliest readable date.
	EarliestDate ReferenceMonthStrategy = "earliest_date"
)

// Used when a person has no readable dates.
const (
	DefaultReferenceMonth = 1
	DefaultReferenceYear  = 1404
)

// ParseReferenceMonthStrategy accepts "" as FirstInserted.
func ParseReferenceMonthStrategy(s string) (ReferenceMonthStrategy, error) {
	switch ReferenceMonthStrategy(s) {
	case "", FirstInserted:
		return FirstInserted, nil
	case EarliestDate:
		return EarliestDate, nil
	}
	return "", fmt.Errorf("unknown reference month strategy %q", s)
}

// ReferenceMonth returns the month and year a person's summary covers.
func ReferenceMonth(p *Person, strategy ReferenceMonthStrategy) (month, year int) {
	var ref jalali.Date
	found := false

	switch strategy {
	case EarliestDate:
		for _, d := range p.Days {
			date, ok := jalali.Parse(d.Date)
			if !ok {
				continue
			}
			if !found || date.Less(ref) {
				ref, found = date, true
			}
		}
	default:
		if len(p.Days) > 0 {
			ref, found = jalali.Parse(p.Days[0].Date)
		}
	}

	month, year = DefaultReferenceMonth, DefaultReferenceYear
	if found {
		if ref.Month != 0 {
			month = ref.Month
		}
		if ref.Year != 0 {
			year = ref.Year
		}
	}
	return month, year
}

// =============================================================================
// MONTH SUMMARY
// =============================================================================

// Counts partitions the days of a month by level.
type Counts struct {
	None   int `json:"none"`
	Normal int `json:"normal"`
	High   int `json:"high"`
}

// DayCell is one day of the reference month as a calendar renders it.
type DayCell struct {
	Date  string `json:"date"`
	Day   int    `json:"day"`
	Count int    `json:"count"`
	Level Level  `json:"level"`
}

// DayDetail is a high-traffic day with its visits.
type DayDetail struct {
	Date    string  `json:"date"`
	Entries []Entry `json:"entries"`
}

// MonthSummary is the classification of one person's reference month.
// Counts and Days only cover the reference month; ActiveDays and
// HighTrafficDays cover every day in the person's log.
type MonthSummary struct {
	PersonID        string         `json:"person_id"`
	Name            string         `json:"name"`
	Month           int            `json:"month"`
	Year            int            `json:"year"`
	TotalDays       int            `json:"total_days"`
	Counts          Counts         `json:"counts"`
	Days            []DayCell      `json:"days"`
	ActiveDays      map[string]int `json:"active_days"`
	HighTrafficDays []DayDetail    `json:"high_traffic_days"`
}

// Summarize classifies every day of the person's reference month. p should
// come from a merged dataset so counts are visits, not raw swipes.
func Summarize(p *Person, limit int, strategy ReferenceMonthStrategy, cal jalali.Calendar) MonthSummary {
	month, year := ReferenceMonth(p, strategy)

	active := make(map[string]int, len(p.Days))
	var high []DayDetail
	for _, d := range p.Days {
		active[d.Date] = len(d.Entries)
		if len(d.Entries) > limit {
			high = append(high, DayDetail{Date: d.Date, Entries: d.Entries})
		}
	}
	sort.SliceStable(high, func(i, j int) bool {
		return len(high[i].Entries) > len(high[j].Entries)
	})

	days := cal.Days(month, year)
	s := MonthSummary{
		PersonID:        p.ID,
		Name:            p.Name,
		Month:           month,
		Year:            year,
		TotalDays:       len(days),
		Days:            make([]DayCell, len(days)),
		ActiveDays:      active,
		HighTrafficDays: high,
	}
	for i, day := range days {
		key := day.String()
		count := active[key]
		level := Classify(count, limit)
		switch level {
		case LevelNone:
			s.Counts.None++
		case LevelNormal:
			s.Counts.Normal++
		case LevelHigh:
			s.Counts.High++
		}
		s.Days[i] = DayCell{Date: key, Day: day.Day, Count: count, Level: level}
	}
	return s
}
