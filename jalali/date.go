/*
Package jalali provides the calendar the attendance engine keys its days by.

PURPOSE:
  Attendance exports carry dates either as Excel day serials or as
  preformatted Solar Hijri (Jalali) strings. Everything downstream groups,
  classifies and displays days through one canonical "DD/MM/YYYY" key in
  that calendar. This package owns the key format, the day-count lookup
  and the conversion from Gregorian instants.

CALENDAR SHAPE:
  Months 1-6:  31 days
  Months 7-11: 30 days
  Month 12:    29 days, 30 in a leap year

LEAP YEARS:
  The day-count lookup takes a pluggable LeapYearFunc. The default is a
  short hardcoded table (TableLeapYears), which is an approximation kept
  for compatibility with existing reports. ArithmeticLeapYears implements
  the 33-year break-table rule and can be swapped in without touching
  callers.

SEE ALSO:
  - calendar.go: DaysInMonth and the leap-year rules
  - convert.go:  Gregorian and Excel-serial conversion
*/
package jalali

import (
	"fmt"
	"strconv"
	"strings"
)

// MonthNames are the Persian month names, Farvardin first.
var MonthNames = [12]string{
	"فروردین", "اردیبهشت", "خرداد", "تیر", "مرداد", "شهریور",
	"مهر", "آبان", "آذر", "دی", "بهمن", "اسفند",
}

// Date is a day in the Jalali calendar.
type Date struct {
	Day   int
	Month int
	Year  int
}

// String renders the canonical "DD/MM/YYYY" key with ASCII digits.
func (d Date) String() string {
	return fmt.Sprintf("%02d/%02d/%d", d.Day, d.Month, d.Year)
}

// Less orders dates chronologically.
func (d Date) Less(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// MonthName returns the Persian name of the date's month, or "" when the
// month is out of range.
func (d Date) MonthName() string {
	if d.Month < 1 || d.Month > 12 {
		return ""
	}
	return MonthNames[d.Month-1]
}

// Parse reads a "DD/MM/YYYY" key. Each part must be an integer; the range
// of the parts is not validated.
func Parse(s string) (Date, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return Date{}, false
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Date{}, false
		}
		nums[i] = n
	}
	return Date{Day: nums[0], Month: nums[1], Year: nums[2]}, true
}

// Friendly renders a key as "D <month name> YYYY". Keys that do not parse
// are returned unchanged.
func Friendly(key string) string {
	d, ok := Parse(key)
	if !ok {
		return key
	}
	name := d.MonthName()
	if name == "" {
		return key
	}
	return fmt.Sprintf("%d %s %d", d.Day, name, d.Year)
}
