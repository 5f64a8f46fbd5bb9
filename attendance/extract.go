package attendance

import (
	"regexp"
	"strings"

	"github.com/warp/traffic-engine/jalali"
)

// nameMarker captures the holder name the access controller writes into the
// event description, e.g. "Valid credential Ali Rezaei (Card 1234)".
var nameMarker = regexp.MustCompile(`Valid credential (.*?) \(`)

// PlaceholderName is the display name used when none can be extracted.
func PlaceholderName(id string) string {
	return "شخص " + id
}

// ExtractName pulls the holder name out of an event description.
func ExtractName(description, id string) string {
	m := nameMarker.FindStringSubmatch(description)
	if m == nil {
		return PlaceholderName(id)
	}
	if name := strings.TrimSpace(m[1]); name != "" {
		return name
	}
	return PlaceholderName(id)
}

// =============================================================================
// EXTRACTOR
// =============================================================================

// Extractor maps raw rows to events. Unreadable cells never fail a row:
// they fall back to 0 seconds, an empty date key, an empty id or a
// placeholder name.
type Extractor struct {
	Serial SerialConverter
}

func NewExtractor() *Extractor {
	return &Extractor{Serial: jalali.SerialToKey}
}

// Extract converts one row.
func (x *Extractor) Extract(raw RawEvent) Event {
	id := raw.PersonID.orEmpty()
	description := raw.Description.orEmpty()
	return Event{
		PersonID: id,
		Name:     ExtractName(description, id),
		Entry: Entry{
			Time:        FormatSeconds(TimeToSeconds(raw.Time)),
			Date:        NormalizeDate(raw.Date, x.Serial),
			Description: description,
		},
	}
}

// Ingest builds the raw dataset for a whole file.
func (x *Extractor) Ingest(rows []RawEvent) *Dataset {
	b := NewBuilder()
	for _, row := range rows {
		b.Add(x.Extract(row))
	}
	return b.Build()
}

// Ingest uses the default extractor.
func Ingest(rows []RawEvent) *Dataset {
	return NewExtractor().Ingest(rows)
}
