package attendance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/traffic-engine/attendance"
)

func row(id attendance.Value, desc, clock, date string) attendance.RawEvent {
	return attendance.RawEvent{
		PersonID:    id,
		Description: attendance.Text(desc),
		Time:        attendance.Text(clock),
		Date:        attendance.Text(date),
	}
}

func TestExtractName(t *testing.T) {
	assert.Equal(t, "Ali Rezaei", attendance.ExtractName("Access: Valid credential Ali Rezaei (Card 77) Door 2", "7"))
	assert.Equal(t, "Sara", attendance.ExtractName("Valid credential   Sara  (x)", "8"))
	assert.Equal(t, "شخص 9", attendance.ExtractName("Invalid credential Bob (x)", "9"))
	assert.Equal(t, "شخص 9", attendance.ExtractName("Valid credential Bob", "9"), "needs the opening parenthesis")
	assert.Equal(t, "شخص ", attendance.ExtractName("", ""))
}

func TestExtract_NormalizesEveryField(t *testing.T) {
	x := attendance.NewExtractor()
	ev := x.Extract(attendance.RawEvent{
		PersonID:    attendance.Number(1024),
		Description: attendance.Text("Valid credential Reza (Card)"),
		Time:        attendance.Number(0.5),
		Date:        attendance.Number(45371),
	})

	assert.Equal(t, "1024", ev.PersonID)
	assert.Equal(t, "Reza", ev.Name)
	assert.Equal(t, "12:00:00", ev.Entry.Time)
	assert.Equal(t, "01/01/1403", ev.Entry.Date)
	assert.Equal(t, "Valid credential Reza (Card)", ev.Entry.Description)
}

func TestExtract_MalformedRowDegrades(t *testing.T) {
	x := attendance.NewExtractor()
	ev := x.Extract(attendance.RawEvent{Time: attendance.Text("soon")})

	assert.Equal(t, "", ev.PersonID)
	assert.Equal(t, "شخص ", ev.Name)
	assert.Equal(t, "00:00:00", ev.Entry.Time)
	assert.Equal(t, "", ev.Entry.Date)
}

func TestExtract_ZeroIDCoercesToEmptyBucket(t *testing.T) {
	x := attendance.NewExtractor()
	assert.Equal(t, "", x.Extract(attendance.RawEvent{PersonID: attendance.Number(0)}).PersonID)
	assert.Equal(t, "", x.Extract(attendance.RawEvent{PersonID: attendance.Text("")}).PersonID)
}

func TestIngest_GroupsByPersonAndDay(t *testing.T) {
	// GIVEN: rows for two people, interleaved, across two days
	rows := []attendance.RawEvent{
		row(attendance.Text("7"), "Valid credential Ali (c)", "08:00:00", "02/01/1403"),
		row(attendance.Text("8"), "no name here", "08:01:00", "02/01/1403"),
		row(attendance.Text("7"), "Valid credential Ali Later (c)", "17:00:00", "02/01/1403"),
		row(attendance.Text("7"), "Valid credential Ali (c)", "09:00:00", "01/01/1403"),
		row(attendance.Value{}, "", "10:00:00", "01/01/1403"),
		row(attendance.Value{}, "", "11:00:00", "01/01/1403"),
	}

	// WHEN
	ds := attendance.Ingest(rows)

	// THEN: people keep encounter order and their first-seen name
	require.Equal(t, 3, ds.Len())
	assert.Equal(t, 6, ds.Rows())
	people := ds.People()
	assert.Equal(t, []string{"7", "8", ""}, []string{people[0].ID, people[1].ID, people[2].ID})
	assert.Equal(t, "Ali", people[0].Name)
	assert.Equal(t, "شخص 8", people[1].Name)

	// Days keep insertion order, not chronological order.
	ali, ok := ds.Person("7")
	require.True(t, ok)
	require.Len(t, ali.Days, 2)
	assert.Equal(t, "02/01/1403", ali.Days[0].Date)
	assert.Equal(t, "01/01/1403", ali.Days[1].Date)

	day, ok := ali.Day("02/01/1403")
	require.True(t, ok)
	assert.Len(t, day, 2)
	assert.Len(t, ali.Entries(), 3)
	assert.Equal(t, 2, ali.ActiveDays())

	// Rows without an id share one bucket.
	anon, ok := ds.Person("")
	require.True(t, ok)
	assert.Len(t, anon.Entries(), 2)
}

func TestDataset_NilIsEmpty(t *testing.T) {
	var ds *attendance.Dataset
	assert.Equal(t, 0, ds.Len())
	assert.Equal(t, 0, ds.Rows())
	assert.Empty(t, ds.People())
	_, ok := ds.Person("x")
	assert.False(t, ok)
}
