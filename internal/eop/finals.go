package eop

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	arcsecToRad = 4.848136811095359935899141e-6
	masToRad    = arcsecToRad / 1000
)

// column is a 1-based inclusive byte range in a fixed-width row.
type column struct {
	first, last int
}

// Columns of the IERS finals2000A format (finals.all.iau2000.txt and
// finals2000A.data). Bulletin B values take precedence over Bulletin A
// values when present.
var (
	colMJD  = column{8, 15}
	colXpA  = column{19, 27}
	colYpA  = column{38, 46}
	colUT1A = column{59, 68}
	colDXA  = column{98, 106}
	colDYA  = column{117, 125}
	colXpB  = column{135, 144}
	colYpB  = column{145, 154}
	colUT1B = column{155, 165}
	colDXB  = column{166, 175}
	colDYB  = column{176, 185}
)

func (c column) text(line string) string {
	if len(line) < c.first {
		return ""
	}
	end := c.last
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[c.first-1 : end])
}

// Load reads a finals2000A file from disk.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open orientation data: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// Parse reads finals2000A rows. Blank lines and lines starting with '#' are
// skipped, as are trailing rows, possibly truncated, without polar motion
// or UT1-UTC values.
// A missing pole offset is read as zero.
func Parse(r io.Reader) (*Table, error) {
	var samples []Sample

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s, ok, err := parseRow(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if ok {
			samples = append(samples, s)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read orientation data: %w", err)
	}

	return NewTable(samples)
}

// parseRow converts one row. ok is false for rows with no usable values.
func parseRow(line string) (s Sample, ok bool, err error) {
	mjd, present, err := parseField(line, colMJD)
	if err != nil {
		return Sample{}, false, err
	}
	if !present {
		return Sample{}, false, fmt.Errorf("missing MJD: %w", ErrMalformed)
	}

	xp, okX, err := preferB(line, colXpB, colXpA)
	if err != nil {
		return Sample{}, false, err
	}
	yp, okY, err := preferB(line, colYpB, colYpA)
	if err != nil {
		return Sample{}, false, err
	}
	dut1, okU, err := preferB(line, colUT1B, colUT1A)
	if err != nil {
		return Sample{}, false, err
	}
	if !okX || !okY || !okU {
		return Sample{}, false, nil
	}

	dx, _, err := preferB(line, colDXB, colDXA)
	if err != nil {
		return Sample{}, false, err
	}
	dy, _, err := preferB(line, colDYB, colDYA)
	if err != nil {
		return Sample{}, false, err
	}

	return Sample{
		MJD:         mjd,
		Xp:          xp * arcsecToRad,
		Yp:          yp * arcsecToRad,
		UT1MinusUTC: dut1,
		DX:          dx * masToRad,
		DY:          dy * masToRad,
	}, true, nil
}

func preferB(line string, b, a column) (float64, bool, error) {
	v, ok, err := parseField(line, b)
	if err != nil || ok {
		return v, ok, err
	}
	return parseField(line, a)
}

func parseField(line string, c column) (float64, bool, error) {
	text := c.text(line)
	if text == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false, fmt.Errorf("columns %d-%d %q: %w", c.first, c.last, text, ErrMalformed)
	}
	return v, true, nil
}
