package timescale

import "sort"

// leapSecond is the TAI-UTC offset in effect from 0h UTC of MJD onward.
type leapSecond struct {
	mjd   int
	delta float64
}

// leapSeconds lists every TAI-UTC step since the 1972 definition of UTC.
var leapSeconds = []leapSecond{
	{41317, 10}, // 1972-01-01
	{41499, 11}, // 1972-07-01
	{41683, 12}, // 1973-01-01
	{42048, 13}, // 1974-01-01
	{42413, 14}, // 1975-01-01
	{42778, 15}, // 1976-01-01
	{43144, 16}, // 1977-01-01
	{43509, 17}, // 1978-01-01
	{43874, 18}, // 1979-01-01
	{44239, 19}, // 1980-01-01
	{44786, 20}, // 1981-07-01
	{45151, 21}, // 1982-07-01
	{45516, 22}, // 1983-07-01
	{46247, 23}, // 1985-07-01
	{47161, 24}, // 1988-01-01
	{47892, 25}, // 1990-01-01
	{48257, 26}, // 1991-01-01
	{48804, 27}, // 1992-07-01
	{49169, 28}, // 1993-07-01
	{49534, 29}, // 1994-07-01
	{50083, 30}, // 1996-01-01
	{50630, 31}, // 1997-07-01
	{51179, 32}, // 1999-01-01
	{53736, 33}, // 2006-01-01
	{54832, 34}, // 2009-01-01
	{56109, 35}, // 2012-07-01
	{57204, 36}, // 2015-07-01
	{57754, 37}, // 2017-01-01
}

// TAIMinusUTC returns TAI-UTC in seconds at 0h UTC of the given MJD.
// Dates before 1972 use the initial 10 s offset; the drifting pre-1972
// UTC definition is not modelled.
func TAIMinusUTC(mjd int) float64 {
	i := sort.Search(len(leapSeconds), func(i int) bool {
		return leapSeconds[i].mjd > mjd
	})
	if i == 0 {
		return leapSeconds[0].delta
	}
	return leapSeconds[i-1].delta
}

// LeapSecondAt returns the length in seconds of the leap second inserted at
// the end of the UTC day MJD, zero on ordinary days.
func LeapSecondAt(mjd int) float64 {
	return TAIMinusUTC(mjd+1) - TAIMinusUTC(mjd)
}

// dayLength is the length of a day in seconds of the given scale.
func dayLength(scale Scale, mjd int) float64 {
	if scale == UTC {
		return secondsPerDay + LeapSecondAt(mjd)
	}
	return secondsPerDay
}
