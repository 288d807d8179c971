package core

// loader.go turns an uploaded export into a RawTable.
//
// Exports from the point-of-sale and registry tools share three quirks:
//   - a variable number of banner lines before the header
//   - ";" or "," as delimiter depending on tool version and locale
//   - Latin-1 text
//
// The header row is found by marker keywords and the delimiter is voted on
// that row only. Both heuristics are strategies on Loader so they can be
// swapped without touching reconciliation.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex matches a plain "."-decimal number. A column where every
// non-empty cell matches is typed numeric.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Loader parses raw export bytes with pluggable detection strategies.
type Loader struct {
	Header    HeaderLocator
	Delimiter DelimiterDetector
}

// NewLoader returns a Loader that finds the header by markers and votes the
// delimiter between ";" and ",".
func NewLoader(markers []string) *Loader {
	return &Loader{
		Header:    KeywordHeader(markers),
		Delimiter: SeparatorVote{},
	}
}

// Load parses raw with the default strategies.
func Load(raw []byte, markers []string) (*RawTable, error) {
	return NewLoader(markers).Load(raw)
}

// Load decodes raw as Latin-1, locates the header, detects the delimiter and
// parses every row from the header on. Any failure, including a panic in a
// strategy, is returned as an error and no table.
func (l *Loader) Load(raw []byte) (table *RawTable, err error) {
	defer func() {
		if r := recover(); r != nil {
			table = nil
			err = fmt.Errorf("%w: %v", ErrMalformedFile, r)
		}
	}()

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyFile
	}

	text, err := decodeLatin1(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}

	lines := strings.SplitAfter(text, "\n")
	start, ok := l.Header.LocateHeader(lines)
	if !ok || start < 0 || start >= len(lines) {
		return nil, ErrHeaderNotFound
	}
	delim := l.Delimiter.DetectDelimiter(lines[start])

	records, err := parseDelimited(strings.Join(lines[start:], ""), delim)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrHeaderNotFound
	}

	header := records[0]
	rows, err := buildRows(header, records[1:], start)
	if err != nil {
		return nil, err
	}
	return NewRawTable(header, rows), nil
}

// parseDelimited reads every record of text. Field counts may vary.
func parseDelimited(text string, delim rune) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	return records, nil
}

// buildRows pads short records, rejects records carrying data beyond the
// header and types numeric columns.
func buildRows(header []string, records [][]string, offset int) ([][]Cell, error) {
	width := len(header)
	rows := make([][]Cell, 0, len(records))

	for i, rec := range records {
		if len(rec) > width {
			for _, extra := range rec[width:] {
				if strings.TrimSpace(extra) != "" {
					return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
						ErrMalformedFile, offset+i+2, len(rec), width)
				}
			}
			rec = rec[:width]
		}
		row := make([]Cell, width)
		for j, v := range rec {
			row[j] = TextCell(v)
		}
		rows = append(rows, row)
	}

	for j := 0; j < width; j++ {
		if numericColumn(rows, j) {
			for _, row := range rows {
				s := strings.TrimSpace(row[j].Text)
				if s == "" {
					continue
				}
				f, _ := strconv.ParseFloat(s, 64)
				row[j] = NumberCell(row[j].Text, f)
			}
		}
	}
	return rows, nil
}

func numericColumn(rows [][]Cell, j int) bool {
	seen := false
	for _, row := range rows {
		s := strings.TrimSpace(row[j].Text)
		if s == "" {
			continue
		}
		if !numericRegex.MatchString(s) {
			return false
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}
