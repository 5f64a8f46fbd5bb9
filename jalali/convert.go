package jalali

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrOutOfRange is returned when an instant falls outside the years the
// break table covers.
var ErrOutOfRange = errors.New("date outside supported jalali range")

// SerialEpoch is day 0 of Excel's 1900 date system.
var SerialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// =============================================================================
// CONVERSION
// =============================================================================

// FromGregorian converts the calendar day of t (in t's location) to a
// Jalali date.
func FromGregorian(t time.Time) (Date, error) {
	gy, gm, gd := t.Date()
	d, ok := fromDayNumber(gregorianDayNumber(gy, int(gm), gd), gy)
	if !ok {
		return Date{}, fmt.Errorf("%w: %s", ErrOutOfRange, t.Format("2006-01-02"))
	}
	return d, nil
}

// FromSerial converts an Excel day serial. Whole days are added to the
// epoch and the fractional part is applied as milliseconds, so 45000.75
// lands on the same day as 45000.
func FromSerial(serial float64) (Date, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || math.Abs(serial) > 2_000_000 {
		return Date{}, fmt.Errorf("%w: serial %v", ErrOutOfRange, serial)
	}
	days := math.Floor(serial)
	frac := time.Duration((serial-days)*86_400_000) * time.Millisecond
	return FromGregorian(SerialEpoch.AddDate(0, 0, int(days)).Add(frac))
}

// SerialToKey converts a serial straight to its canonical key, or "" when
// the serial cannot be converted.
func SerialToKey(serial float64) string {
	d, err := FromSerial(serial)
	if err != nil {
		return ""
	}
	return d.String()
}

// =============================================================================
// BREAK TABLE ARITHMETIC
// =============================================================================

// Jalali years at which the 33-year leap cycle is re-anchored.
var breaks = [...]int{
	-61, 9, 38, 199, 426, 686, 756, 818, 1111, 1181,
	1210, 1635, 2060, 2097, 2192, 2262, 2324, 2394, 2456, 3178,
}

type yearData struct {
	leap  int // 0 for a leap year, otherwise years since the last one
	gy    int // Gregorian year in which the Jalali year starts
	march int // day of March on which Farvardin 1 falls
}

func yearInfo(jy int) (yearData, bool) {
	if jy < breaks[0] || jy >= breaks[len(breaks)-1] {
		return yearData{}, false
	}
	gy := jy + 621
	leapJ := -14
	jp := breaks[0]
	jump := 0
	for i := 1; i < len(breaks); i++ {
		jm := breaks[i]
		jump = jm - jp
		if jy < jm {
			break
		}
		leapJ += jump/33*8 + jump%33/4
		jp = jm
	}
	n := jy - jp
	leapJ += n/33*8 + (n%33+3)/4
	if jump%33 == 4 && jump-n == 4 {
		leapJ++
	}
	leapG := gy/4 - (gy/100+1)*3/4 - 150
	march := 20 + leapJ - leapG

	if jump-n < 6 {
		n = n - jump + (jump+4)/33*33
	}
	leap := ((n+1)%33 - 1) % 4
	if leap == -1 {
		leap = 4
	}
	return yearData{leap: leap, gy: gy, march: march}, true
}

// gregorianDayNumber returns the Julian day number of a Gregorian date.
func gregorianDayNumber(gy, gm, gd int) int {
	d := (gy+(gm-8)/6+100100)*1461/4 + (153*((gm+9)%12)+2)/5 + gd - 34840408
	return d - (gy+100100+(gm-8)/6)/100*3/4 + 752
}

func fromDayNumber(jdn, gy int) (Date, bool) {
	jy := gy - 621
	info, ok := yearInfo(jy)
	if !ok {
		return Date{}, false
	}
	k := jdn - gregorianDayNumber(gy, 3, info.march)
	if k >= 0 {
		if k <= 185 {
			return Date{Day: k%31 + 1, Month: 1 + k/31, Year: jy}, true
		}
		k -= 186
	} else {
		jy--
		k += 179
		if info.leap == 1 {
			k++
		}
	}
	return Date{Day: k%30 + 1, Month: 7 + k/30, Year: jy}, true
}
