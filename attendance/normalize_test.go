package attendance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/traffic-engine/attendance"
)

// =============================================================================
// TIME OF DAY
// =============================================================================

func TestTimeToSeconds_FractionOfDay(t *testing.T) {
	assert.Equal(t, 0, attendance.TimeToSeconds(attendance.Number(0)))
	assert.Equal(t, 43200, attendance.TimeToSeconds(attendance.Number(0.5)))
	// 08:30:00 is 0.3541666... of a day; rounding must land on the second.
	assert.Equal(t, 30600, attendance.TimeToSeconds(attendance.Number(30600.0/86400.0)))
	assert.Equal(t, 1, attendance.TimeToSeconds(attendance.Number(0.6/86400.0)))
}

func TestTimeToSeconds_ClockText(t *testing.T) {
	cases := map[string]int{
		"08:30:15": 8*3600 + 30*60 + 15,
		"8:05":     8*3600 + 5*60,
		"23:59:59": 86399,
		"07:00:":   7 * 3600,
		" 9:10:5":  9*3600 + 10*60 + 5,
		"10am:15":  10*3600 + 15*60,
	}
	for in, want := range cases {
		assert.Equal(t, want, attendance.TimeToSeconds(attendance.Text(in)), in)
	}
}

func TestTimeToSeconds_UnrecognizedDegradesToZero(t *testing.T) {
	assert.Equal(t, 0, attendance.TimeToSeconds(attendance.Value{}))
	assert.Equal(t, 0, attendance.TimeToSeconds(attendance.Text("0830")))
	assert.Equal(t, 0, attendance.TimeToSeconds(attendance.Text("ab:cd")))
	assert.Equal(t, 0, attendance.TimeToSeconds(attendance.Text("08:xx:10")))
}

func TestTimeToSeconds_BeforeMidnightReadsAsZero(t *testing.T) {
	// GIVEN: negative fractions and negative clock text
	// THEN: they read as the 0 sentinel, never a negative offset
	assert.Equal(t, 0, attendance.TimeToSeconds(attendance.Number(-0.1)))
	assert.Equal(t, 0, attendance.TimeToSeconds(attendance.Text("-1:00")))
	assert.Equal(t, 0, attendance.TimeToSeconds(attendance.Text("-2:-24:00")))
	assert.Equal(t, "00:00:00", attendance.FormatSeconds(attendance.TimeToSeconds(attendance.Number(-0.1))))
}

func TestTimeToSeconds_OversizedFieldsReadAsZero(t *testing.T) {
	assert.Equal(t, 0, attendance.TimeToSeconds(attendance.Text("99999999999999999999:00")))
	assert.Equal(t, 0, attendance.TimeToSeconds(attendance.Text("08:00:99999999999999999999")))
	assert.Equal(t, 0, attendance.TimeToSeconds(attendance.Number(1e20)))
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "00:00:00", attendance.FormatSeconds(0))
	assert.Equal(t, "08:30:15", attendance.FormatSeconds(30615))
	assert.Equal(t, "23:59:59", attendance.FormatSeconds(86399))
	// Elapsed seconds do not wrap at midnight.
	assert.Equal(t, "24:00:01", attendance.FormatSeconds(86401))
	assert.Equal(t, "00:00:00", attendance.FormatSeconds(-5))
	assert.Equal(t, "00:00:00", attendance.FormatSeconds(-8640))
}

func TestEntrySeconds_RoundTripsFormattedTime(t *testing.T) {
	e := attendance.Entry{Time: attendance.FormatSeconds(45296)}
	assert.Equal(t, 45296, e.Seconds())
}

// =============================================================================
// DATES
// =============================================================================

func fakeSerial(serial float64) string {
	if serial == 45371 {
		return "01/01/1403"
	}
	return "?"
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "01/01/1403", attendance.NormalizeDate(attendance.Number(45371), fakeSerial))
	assert.Equal(t, "01/01/1403", attendance.NormalizeDate(attendance.Text(" 45371 "), fakeSerial), "digit-only text is a serial")
	assert.Equal(t, "12/02/1403", attendance.NormalizeDate(attendance.Text("  12/02/1403 "), fakeSerial), "preformatted key is trimmed")
	assert.Equal(t, "", attendance.NormalizeDate(attendance.Value{}, fakeSerial))
	assert.Equal(t, "", attendance.NormalizeDate(attendance.Text("   "), fakeSerial))
}

func TestNormalizeDate_DefaultConverter(t *testing.T) {
	assert.Equal(t, "01/01/1403", attendance.NormalizeDate(attendance.Number(45371), nil))
	assert.Equal(t, "01/01/1404", attendance.NormalizeDate(attendance.Text("45737"), nil))
}

// =============================================================================
// VALUES
// =============================================================================

func TestInferValue(t *testing.T) {
	assert.Equal(t, attendance.Number(45371), attendance.InferValue("45371"))
	assert.Equal(t, attendance.Number(0.5), attendance.InferValue(" 0.5 "))
	assert.Equal(t, attendance.Text("08:00:00"), attendance.InferValue("08:00:00"))
	assert.Equal(t, attendance.Text("NaN"), attendance.InferValue("NaN"))
	assert.Equal(t, attendance.Value{}, attendance.InferValue("  "))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "1234", attendance.Number(1234).String())
	assert.Equal(t, "12.5", attendance.Number(12.5).String())
	assert.Equal(t, "E-17", attendance.Text("E-17").String())
	assert.Equal(t, "", attendance.Value{}.String())
}
