package core

import "strings"

// HeaderLocator finds the header row among the decoded lines of a file.
// Exports prepend a variable number of banner lines, so the header position
// cannot be fixed.
type HeaderLocator interface {
	LocateHeader(lines []string) (int, bool)
}

// DelimiterDetector picks the field delimiter from the header line.
type DelimiterDetector interface {
	DetectDelimiter(headerLine string) rune
}

// HeaderFunc adapts a function to HeaderLocator.
type HeaderFunc func(lines []string) (int, bool)

func (f HeaderFunc) LocateHeader(lines []string) (int, bool) { return f(lines) }

// DelimiterFunc adapts a function to DelimiterDetector.
type DelimiterFunc func(headerLine string) rune

func (f DelimiterFunc) DetectDelimiter(headerLine string) rune { return f(headerLine) }

// KeywordHeader declares the first line containing any of its markers
// (case-sensitive substring) to be the header.
type KeywordHeader []string

// LocateHeader implements HeaderLocator.
func (k KeywordHeader) LocateHeader(lines []string) (int, bool) {
	for i, line := range lines {
		for _, marker := range k {
			if marker != "" && strings.Contains(line, marker) {
				return i, true
			}
		}
	}
	return -1, false
}

// SeparatorVote counts commas against semicolons on the header line.
// Commas win only when they strictly outnumber semicolons; ties and lines
// with neither keep the semicolon used by Brazilian exports.
type SeparatorVote struct{}

// DetectDelimiter implements DelimiterDetector.
func (SeparatorVote) DetectDelimiter(headerLine string) rune {
	if strings.Count(headerLine, ",") > strings.Count(headerLine, ";") {
		return ','
	}
	return ';'
}
