package series

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
)

// ErrMalformedTable is returned when a series table cannot be parsed.
var ErrMalformedTable = errors.New("malformed series table")

// IERS Conventions 2010 chapter 5 table file names.
const (
	FileX    = "tab5.2a.txt"
	FileY    = "tab5.2b.txt"
	FileSXY2 = "tab5.2d.txt"
)

// termFields is index, sine and cosine amplitudes, then the multipliers.
const termFields = 3 + NumArguments

// ParseTable reads an IERS chapter 5 series table. Each order starts with a
// "j = N  Number of terms = M" header followed by rows of index, sine
// amplitude, cosine amplitude and the 14 argument multipliers. Other lines
// are treated as commentary. The polynomial part is not read from the file.
func ParseTable(r io.Reader, name string, polynomial []float64) (*Expansion, error) {
	e := &Expansion{Name: name, Polynomial: append([]float64(nil), polynomial...)}

	order := -1
	declared := -1
	checkCount := func() error {
		if order >= 0 && declared >= 0 && len(e.Orders[order]) != declared {
			return fmt.Errorf("%s order %d: declared %d terms, read %d: %w",
				name, order, declared, len(e.Orders[order]), ErrMalformedTable)
		}
		return nil
	}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if fields[0] == "j" && len(fields) >= 3 && fields[1] == "=" {
			if err := checkCount(); err != nil {
				return nil, err
			}
			j, err := strconv.Atoi(fields[2])
			if err != nil || j != order+1 {
				return nil, fmt.Errorf("%s line %d: unexpected order header %q: %w",
					name, lineNum, strings.Join(fields, " "), ErrMalformedTable)
			}
			order = j
			declared = parseDeclaredCount(fields)
			e.Orders = append(e.Orders, nil)
			continue
		}

		if _, err := strconv.Atoi(fields[0]); err != nil || order < 0 {
			continue
		}
		if len(fields) != termFields {
			return nil, fmt.Errorf("%s line %d: %d fields, want %d: %w",
				name, lineNum, len(fields), termFields, ErrMalformedTable)
		}

		term, err := parseTerm(fields)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", name, lineNum, err)
		}
		e.Orders[order] = append(e.Orders[order], term)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if err := checkCount(); err != nil {
		return nil, err
	}
	if order < 0 {
		return nil, fmt.Errorf("%s: no series orders found: %w", name, ErrMalformedTable)
	}
	return e, nil
}

// parseDeclaredCount extracts M from "... Number of terms = M", or -1.
func parseDeclaredCount(fields []string) int {
	for i := 3; i+1 < len(fields); i++ {
		if fields[i] == "=" && strings.EqualFold(fields[i-1], "terms") {
			if n, err := strconv.Atoi(fields[i+1]); err == nil {
				return n
			}
		}
	}
	return -1
}

func parseTerm(fields []string) (Term, error) {
	var term Term
	var err error
	if term.Sin, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return Term{}, fmt.Errorf("sine amplitude %q: %w", fields[1], ErrMalformedTable)
	}
	if term.Cos, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return Term{}, fmt.Errorf("cosine amplitude %q: %w", fields[2], ErrMalformedTable)
	}
	for k := 0; k < NumArguments; k++ {
		m, err := strconv.Atoi(fields[3+k])
		if err != nil {
			return Term{}, fmt.Errorf("multiplier %d %q: %w", k, fields[3+k], ErrMalformedTable)
		}
		term.Multipliers[k] = m
	}
	return term, nil
}

// LoadTable reads the named table file from fsys.
func LoadTable(fsys fs.FS, file, name string, polynomial []float64) (*Expansion, error) {
	f, err := fsys.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open series table: %w", err)
	}
	defer f.Close()
	return ParseTable(f, name, polynomial)
}
