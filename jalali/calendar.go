package jalali

// =============================================================================
// LEAP YEAR RULES
// =============================================================================

// LeapYearFunc reports whether a Jalali year has a 30-day Esfand.
type LeapYearFunc func(year int) bool

var leapTable = map[int]bool{1403: true, 1407: true, 1411: true, 1415: true}

// TableLeapYears is the hardcoded lookup existing reports were built with.
// It is an approximation: only four years are known to it.
func TableLeapYears(year int) bool {
	return leapTable[year]
}

// ArithmeticLeapYears applies the 33-year break-table rule. Years outside
// the supported range are treated as common years.
func ArithmeticLeapYears(year int) bool {
	info, ok := yearInfo(year)
	return ok && info.leap == 0
}

// =============================================================================
// CALENDAR
// =============================================================================

// Calendar answers day-count questions using a pluggable leap-year rule.
type Calendar struct {
	IsLeap LeapYearFunc
}

// Default uses the compatibility table.
var Default = Calendar{IsLeap: TableLeapYears}

// DaysInMonth returns the number of days in month of year.
func (c Calendar) DaysInMonth(month, year int) int {
	if month <= 6 {
		return 31
	}
	if month <= 11 {
		return 30
	}
	isLeap := c.IsLeap
	if isLeap == nil {
		isLeap = TableLeapYears
	}
	if isLeap(year) {
		return 30
	}
	return 29
}

// Days lists every day of the month in order.
func (c Calendar) Days(month, year int) []Date {
	n := c.DaysInMonth(month, year)
	days := make([]Date, n)
	for i := range days {
		days[i] = Date{Day: i + 1, Month: month, Year: year}
	}
	return days
}

// DaysInMonth uses the Default calendar.
func DaysInMonth(month, year int) int {
	return Default.DaysInMonth(month, year)
}
