package attendance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/traffic-engine/attendance"
)

func rankedFixture() []attendance.Ranked {
	return []attendance.Ranked{
		{Person: &attendance.Person{ID: "7", Name: "Ali", Days: make([]attendance.Day, 4)}, HighTrafficDays: 3},
		{Person: &attendance.Person{ID: "12", Name: "Sara"}, HighTrafficDays: 1},
	}
}

func TestFilter_NameOrIDCaseInsensitive(t *testing.T) {
	ranked := rankedFixture()

	got := attendance.Filter(ranked, "AL")
	require.Len(t, got, 1)
	assert.Equal(t, "7", got[0].Person.ID)

	got = attendance.Filter(ranked, "12")
	require.Len(t, got, 1)
	assert.Equal(t, "Sara", got[0].Person.Name)

	assert.Empty(t, attendance.Filter(ranked, "99"))
	assert.Len(t, attendance.Filter(ranked, ""), 2)
}

func TestReportRows(t *testing.T) {
	rows := attendance.ReportRows(rankedFixture())
	require.Len(t, rows, 2)
	assert.Equal(t, attendance.ReportRow{Name: "Ali", ID: "7", HighTrafficDays: 3, ActiveDays: 4}, rows[0])
	assert.Equal(t, []any{"Ali", "7", 3, 4}, rows[0].Values())
	assert.Len(t, attendance.ReportHeaders, len(rows[0].Values()))
}

func TestReportRow_Share(t *testing.T) {
	assert.Equal(t, "0.75", attendance.ReportRow{HighTrafficDays: 3, ActiveDays: 4}.Share().String())
	assert.Equal(t, "0.33", attendance.ReportRow{HighTrafficDays: 1, ActiveDays: 3}.Share().String())
	assert.True(t, attendance.ReportRow{HighTrafficDays: 1}.Share().IsZero())
}

func TestParams_Clamp(t *testing.T) {
	p := attendance.Params{MergeIntervalMinutes: 0, TrafficLimit: 500, ReferenceMonth: "bogus"}.Clamp()
	assert.Equal(t, attendance.Params{
		MergeIntervalMinutes: 1,
		TrafficLimit:         50,
		ReferenceMonth:       attendance.FirstInserted,
	}, p)

	assert.Equal(t, 120, attendance.Params{MergeIntervalMinutes: 9999, TrafficLimit: 2}.Clamp().MergeIntervalMinutes)
	assert.Equal(t, 300, attendance.DefaultParams().IntervalSeconds())
}

func TestParseBound(t *testing.T) {
	assert.Equal(t, 15, attendance.ParseBound("15", 1, 120))
	assert.Equal(t, 15, attendance.ParseBound("15min", 1, 120))
	assert.Equal(t, 1, attendance.ParseBound("abc", 1, 120))
	assert.Equal(t, 1, attendance.ParseBound("0", 1, 120))
	assert.Equal(t, 1, attendance.ParseBound("-4", 1, 120))
	assert.Equal(t, 50, attendance.ParseBound("80", 1, 50))
}

func TestParseBound_OversizedInputSaturates(t *testing.T) {
	// GIVEN: digit runs too long for an int
	// THEN: they clamp to the bound on their side, not to lo
	assert.Equal(t, 120, attendance.ParseBound("99999999999999999999", 1, 120))
	assert.Equal(t, 120, attendance.ParseBound("+99999999999999999999min", 1, 120))
	assert.Equal(t, 1, attendance.ParseBound("-99999999999999999999", 1, 120))
}
