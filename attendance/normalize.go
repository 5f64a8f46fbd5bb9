package attendance

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/traffic-engine/jalali"
)

const (
	secondsPerDay = 86400

	// maxClockField bounds each field of a text time and the day count of a
	// numeric one.
	maxClockField = 1 << 31
)

var dayLength = decimal.NewFromInt(secondsPerDay)

// SerialConverter turns an Excel day serial into a canonical date key. It
// returns "" when the serial cannot be converted.
type SerialConverter func(serial float64) string

// =============================================================================
// TIME OF DAY
// =============================================================================

// TimeToSeconds converts a time cell to seconds since midnight. Numbers are
// fractions of a day; text must contain ':' and read as H:M[:S]. Anything
// else is 0, and so is a time before midnight.
func TimeToSeconds(v Value) int {
	n := 0
	switch v.Kind {
	case ValueNumber:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) || math.Abs(v.Num) > maxClockField {
			return 0
		}
		n = int(decimal.NewFromFloat(v.Num).Mul(dayLength).Round(0).IntPart())
	case ValueText:
		if strings.Contains(v.Str, ":") {
			n = clockToSeconds(v.Str)
		}
	}
	if n < 0 {
		return 0
	}
	return n
}

func clockToSeconds(s string) int {
	parts := strings.Split(s, ":")
	h, ok := leadingInt(parts[0])
	if !ok {
		return 0
	}
	m, ok := leadingInt(parts[1])
	if !ok {
		return 0
	}
	sec := 0
	if len(parts) > 2 && parts[2] != "" {
		if sec, ok = leadingInt(parts[2]); !ok {
			return 0
		}
	}
	for _, f := range []int{h, m, sec} {
		if f > maxClockField || f < -maxClockField {
			return 0
		}
	}
	return h*3600 + m*60 + sec
}

// leadingInt reads an optionally signed run of digits after leading
// whitespace and ignores whatever follows it ("08am" reads as 8). Runs too
// long for an int saturate at math.MaxInt or math.MinInt.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		if s[0] == '-' {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatSeconds renders elapsed seconds of the day as HH:MM:SS. The hour
// field does not wrap at 24, so the result is not a wall-clock time for
// inputs of a day or more. Negative totals render as 00:00:00.
func FormatSeconds(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// =============================================================================
// DATES
// =============================================================================

// NormalizeDate converts a date cell to its canonical key. Numbers and
// digit-only text are day serials; other text is already a key and is only
// trimmed. Empty cells give "".
func NormalizeDate(v Value, conv SerialConverter) string {
	if conv == nil {
		conv = jalali.SerialToKey
	}
	switch v.Kind {
	case ValueNumber:
		return conv(v.Num)
	case ValueText:
		trimmed := strings.TrimSpace(v.Str)
		if isDigits(trimmed) {
			n, err := strconv.ParseFloat(trimmed, 64)
			if err != nil {
				return ""
			}
			return conv(n)
		}
		return trimmed
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
