package timescale

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateTime is a broken-down Gregorian calendar timestamp.
type DateTime struct {
	Year, Month, Day int
	Hour, Minute     int
	Second           float64
}

func (d DateTime) String() string {
	ms := int(math.Round(d.Second * 1000))
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d.%03d",
		d.Year, d.Month, d.Day, d.Hour, d.Minute, ms/1000, ms%1000)
}

var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func daysInMonth(y, m int) int {
	if m == 2 && isLeapYear(y) {
		return 29
	}
	return monthDays[m-1]
}

// CalendarToMJD returns the MJD of 0h on a Gregorian calendar date.
func CalendarToMJD(year, month, day int) (int, error) {
	if year < -4799 {
		return 0, fmt.Errorf("year %d: %w", year, ErrInvalidCalendar)
	}
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("month %d: %w", month, ErrInvalidCalendar)
	}
	if day < 1 || day > daysInMonth(year, month) {
		return 0, fmt.Errorf("day %d of %04d-%02d: %w", day, year, month, ErrInvalidCalendar)
	}
	my := (month - 14) / 12
	iypmy := year + my
	mjd := (1461*(iypmy+4800))/4 +
		(367*(month-2-12*my))/12 -
		(3*((iypmy+4900)/100))/4 +
		day - 2432076
	return mjd, nil
}

// MJDToCalendar returns the Gregorian date of an MJD day number.
func MJDToCalendar(mjd int) (year, month, day int) {
	l := mjd + 2400001 + 68569
	n := (4 * l) / 146097
	l -= (146097*n + 3) / 4
	i := (4000 * (l + 1)) / 1461001
	l -= (1461*i)/4 - 31
	k := (80 * l) / 2447
	day = l - (2447*k)/80
	l = k / 11
	month = k + 2 - 12*l
	year = 100*(n-49) + i + l
	return year, month, day
}

// FromCalendar builds an instant from calendar fields. In UTC the final
// minute of a leap-second day accepts seconds up to 61.
func FromCalendar(year, month, day, hour, minute int, second float64, scale Scale) (Instant, error) {
	if !scale.Valid() {
		return Instant{}, fmt.Errorf("from calendar: scale %d: %w", int(scale), ErrInvalidTimeScale)
	}
	mjd, err := CalendarToMJD(year, month, day)
	if err != nil {
		return Instant{}, err
	}
	if hour < 0 || hour > 23 {
		return Instant{}, fmt.Errorf("hour %d: %w", hour, ErrInvalidCalendar)
	}
	if minute < 0 || minute > 59 {
		return Instant{}, fmt.Errorf("minute %d: %w", minute, ErrInvalidCalendar)
	}

	length := dayLength(scale, mjd)
	limit := 60.0
	if hour == 23 && minute == 59 {
		limit += length - secondsPerDay
	}
	if second < 0 || second >= limit {
		return Instant{}, fmt.Errorf("second %g: %w", second, ErrInvalidCalendar)
	}

	fd := (60*float64(60*hour+minute) + second) / length
	return fromMidnight(mjd, fd, scale), nil
}

// FromTime converts a wall-clock time to a UTC instant. time.Time has no
// leap seconds, so the result is never inside one.
func FromTime(t time.Time) (Instant, error) {
	t = t.UTC()
	second := float64(t.Second()) + float64(t.Nanosecond())/1e9
	return FromCalendar(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), second, UTC)
}

// Calendar breaks the instant down into calendar fields. A UTC instant
// inside a leap second reports a seconds value of 60 or more.
func (i Instant) Calendar() DateTime {
	mjd, fd := i.midnight()
	secs := fd * dayLength(i.scale, mjd)

	var dt DateTime
	dt.Year, dt.Month, dt.Day = MJDToCalendar(mjd)

	if secs >= secondsPerDay {
		dt.Hour, dt.Minute = 23, 59
		dt.Second = secs - (secondsPerDay - 60)
		return dt
	}
	minutes := math.Floor(secs / 60)
	dt.Second = secs - 60*minutes
	dt.Hour = int(minutes) / 60
	dt.Minute = int(minutes) % 60
	return dt
}

// ParseCalendar parses "YYYY-MM-DD", "YYYY-MM-DDTHH:MM" or
// "YYYY-MM-DDTHH:MM:SS[.fff]" in the given scale. A space may replace the T.
func ParseCalendar(s string, scale Scale) (Instant, error) {
	s = strings.TrimSpace(s)
	datePart, timePart, _ := strings.Cut(strings.Replace(s, " ", "T", 1), "T")

	ymd := strings.Split(datePart, "-")
	if len(ymd) != 3 || ymd[0] == "" {
		return Instant{}, fmt.Errorf("parse %q: %w", s, ErrInvalidCalendar)
	}
	year, err1 := strconv.Atoi(ymd[0])
	month, err2 := strconv.Atoi(ymd[1])
	day, err3 := strconv.Atoi(ymd[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return Instant{}, fmt.Errorf("parse %q: %w", s, ErrInvalidCalendar)
	}

	var hour, minute int
	var second float64
	if timePart != "" {
		timePart = strings.TrimSuffix(timePart, "Z")
		hms := strings.Split(timePart, ":")
		if len(hms) < 2 || len(hms) > 3 {
			return Instant{}, fmt.Errorf("parse %q: %w", s, ErrInvalidCalendar)
		}
		var err error
		if hour, err = strconv.Atoi(hms[0]); err != nil {
			return Instant{}, fmt.Errorf("parse %q hour: %w", s, ErrInvalidCalendar)
		}
		if minute, err = strconv.Atoi(hms[1]); err != nil {
			return Instant{}, fmt.Errorf("parse %q minute: %w", s, ErrInvalidCalendar)
		}
		if len(hms) == 3 {
			if second, err = strconv.ParseFloat(hms[2], 64); err != nil {
				return Instant{}, fmt.Errorf("parse %q second: %w", s, ErrInvalidCalendar)
			}
		}
	}
	return FromCalendar(year, month, day, hour, minute, second, scale)
}
