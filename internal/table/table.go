// Package table reads the whitespace-delimited text tables written by the
// neuron simulator. Column layouts and header skip counts are fixed by the
// simulator, so every loader takes an explicit layout.
package table

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedRow indicates a row with too few columns or a value of the wrong type.
var ErrMalformedRow = errors.New("table: malformed row")

// ParseError wraps an error with the location of the offending value.
type ParseError struct {
	Source  string
	Line    int
	Column  int
	Text    string
	Wrapped error
}

func (e *ParseError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("%s:%d: column %d: %v", e.Source, e.Line, e.Column, e.Wrapped)
	}
	return fmt.Sprintf("%s:%d: column %d (%q): %v", e.Source, e.Line, e.Column, e.Text, e.Wrapped)
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}

// Row is one data line split on runs of spaces and tabs.
type Row struct {
	Source string
	Line   int
	Fields []string
}

func (r Row) Has(col int) bool { return col >= 0 && col < len(r.Fields) }

func (r Row) fail(col int, text string, err error) error {
	return &ParseError{Source: r.Source, Line: r.Line, Column: col, Text: text, Wrapped: err}
}

func (r Row) Text(col int) (string, error) {
	if !r.Has(col) {
		return "", r.fail(col, "", fmt.Errorf("%w: %d fields", ErrMalformedRow, len(r.Fields)))
	}
	return r.Fields[col], nil
}

func (r Row) Float(col int) (float64, error) {
	s, err := r.Text(col)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, r.fail(col, s, ErrMalformedRow)
	}
	return v, nil
}

// Int accepts integral floats such as "12.0", which some writers emit for ids,
// as long as they fit in an int.
func (r Row) Int(col int) (int, error) {
	s, err := r.Text(col)
	if err != nil {
		return 0, err
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f >= math.MaxInt || f < math.MinInt {
		return 0, r.fail(col, s, ErrMalformedRow)
	}
	return int(f), nil
}

// Scan calls fn for every data row after the first skip lines. Blank lines
// and lines starting with '#' are not data rows.
func Scan(rd io.Reader, source string, skip int, fn func(Row) error) error {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		if line <= skip {
			continue
		}
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := fn(Row{Source: source, Line: line, Fields: strings.Fields(text)}); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	return nil
}

// ScanFile is Scan over the file at path.
func ScanFile(path string, skip int, fn func(Row) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Scan(f, path, skip, fn)
}
