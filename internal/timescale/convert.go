package timescale

import "fmt"

// TTMinusTAI is the fixed TT-TAI offset in seconds.
const TTMinusTAI = 32.184

// taiUTCIterations is enough for the inverse to converge to the last bit.
const taiUTCIterations = 3

func requireScale(i Instant, scale Scale, op string) error {
	if i.scale != scale {
		return fmt.Errorf("%s: got %s instant, want %s: %w", op, i.scale, scale, ErrInvalidTimeScale)
	}
	return nil
}

// UTCToTAI converts a UTC instant to TAI. On a leap-second day the quasi-JD
// fraction is stretched back to SI seconds before the offset is applied.
func UTCToTAI(utc Instant) (Instant, error) {
	if err := requireScale(utc, UTC, "utc to tai"); err != nil {
		return Instant{}, err
	}
	return utcToTAI(utc), nil
}

func utcToTAI(utc Instant) Instant {
	mjd, fd := utc.midnight()
	dat0 := TAIMinusUTC(mjd)
	fd *= (secondsPerDay + LeapSecondAt(mjd)) / secondsPerDay
	return fromMidnight(mjd, fd+dat0/secondsPerDay, TAI)
}

// TAIToUTC converts a TAI instant to UTC by fixed-point iteration of the
// forward conversion.
func TAIToUTC(tai Instant) (Instant, error) {
	if err := requireScale(tai, TAI, "tai to utc"); err != nil {
		return Instant{}, err
	}
	u := Instant{scale: UTC, whole: tai.whole, frac: tai.frac}
	for n := 0; n < taiUTCIterations; n++ {
		g := utcToTAI(u)
		u = normalize(u.whole+(tai.whole-g.whole), u.frac+(tai.frac-g.frac), UTC)
	}
	return u, nil
}

// TAIToTT converts TAI to TT.
func TAIToTT(tai Instant) (Instant, error) {
	if err := requireScale(tai, TAI, "tai to tt"); err != nil {
		return Instant{}, err
	}
	return normalize(tai.whole, tai.frac+TTMinusTAI/secondsPerDay, TT), nil
}

// TTToTAI converts TT to TAI.
func TTToTAI(tt Instant) (Instant, error) {
	if err := requireScale(tt, TT, "tt to tai"); err != nil {
		return Instant{}, err
	}
	return normalize(tt.whole, tt.frac-TTMinusTAI/secondsPerDay, TAI), nil
}

// UTCToTT converts UTC to TT.
func UTCToTT(utc Instant) (Instant, error) {
	tai, err := UTCToTAI(utc)
	if err != nil {
		return Instant{}, err
	}
	return TAIToTT(tai)
}

// TTToUTC converts TT to UTC.
func TTToUTC(tt Instant) (Instant, error) {
	tai, err := TTToTAI(tt)
	if err != nil {
		return Instant{}, err
	}
	return TAIToUTC(tai)
}

// UTCToUT1 converts UTC to UT1 given UT1-UTC in seconds. The offset is
// applied to TAI so that a UTC leap second does not appear in UT1.
func UTCToUT1(utc Instant, dut1 float64) (Instant, error) {
	if err := requireScale(utc, UTC, "utc to ut1"); err != nil {
		return Instant{}, err
	}
	mjd, _ := utc.midnight()
	tai := utcToTAI(utc)
	dta := dut1 - TAIMinusUTC(mjd)
	return normalize(tai.whole, tai.frac+dta/secondsPerDay, UT1), nil
}

// ToTT converts a UTC, TAI or TT instant to TT. UT1 cannot be converted
// without Earth orientation data.
func ToTT(i Instant) (Instant, error) {
	switch i.scale {
	case TT:
		return i, nil
	case TAI:
		return TAIToTT(i)
	case UTC:
		return UTCToTT(i)
	default:
		return Instant{}, fmt.Errorf("to tt from %s: %w", i.scale, ErrInvalidTimeScale)
	}
}

// ToUTC converts a UTC, TAI or TT instant to UTC.
func ToUTC(i Instant) (Instant, error) {
	switch i.scale {
	case UTC:
		return i, nil
	case TAI:
		return TAIToUTC(i)
	case TT:
		return TTToUTC(i)
	default:
		return Instant{}, fmt.Errorf("to utc from %s: %w", i.scale, ErrInvalidTimeScale)
	}
}
