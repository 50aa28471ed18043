// Package las reads and writes LAS 2.0 well-log files.
//
// Header sections are kept as raw lines so a written file reproduces the
// source header exactly, apart from items changed through SetWellValue. Data
// rows keep their original tokens and line layout, so writing a Log back out
// is lossless.
package las

import (
	"errors"
	"strings"
)

// Section letters, taken from the character following '~'.
const (
	SectionVersion   = 'V'
	SectionWell      = 'W'
	SectionCurve     = 'C'
	SectionParameter = 'P'
	SectionOther     = 'O'
	SectionData      = 'A'
)

// Parse errors.
var (
	ErrNoDataSection = errors.New("las: no ~A data section")
	ErrNoCurves      = errors.New("las: no curves defined in ~C section")
	ErrItemNotFound  = errors.New("las: header item not found")
)

// Section is a header section: its title line and the raw lines under it.
type Section struct {
	Title string
	Lines []string
}

// Letter returns the upper-cased section letter, or 0 for a malformed title.
func (s *Section) Letter() byte {
	return sectionLetter(s.Title)
}

// Items parses the header items of the section, skipping comments and
// blank lines.
func (s *Section) Items() ([]Item, error) {
	var items []Item
	for _, line := range s.Lines {
		item, ok, err := parseItem(line)
		if err != nil {
			return nil, err
		}
		if ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// Row is one depth sample. Values holds one token per curve; Lines holds the
// raw text the row was read from (several lines when wrapped).
type Row struct {
	Values []string
	Lines  []string
}

// Log is a parsed LAS file.
type Log struct {
	// Preamble holds any lines before the first section.
	Preamble []string
	Sections []*Section
	// DataTitle is the raw ~A line.
	DataTitle string
	Curves    []Item
	Wrapped   bool
	Rows      []Row
	// CRLF records whether the source used Windows line endings.
	CRLF bool
}

// Section returns the first header section with the given letter.
func (l *Log) Section(letter byte) (*Section, bool) {
	for _, s := range l.Sections {
		if s.Letter() == letter {
			return s, true
		}
	}
	return nil, false
}

// CurveNames returns the curve mnemonics in column order.
func (l *Log) CurveNames() []string {
	names := make([]string, len(l.Curves))
	for i, c := range l.Curves {
		names[i] = c.Mnemonic
	}
	return names
}

// Clone returns a deep copy of the header and a shallow copy of the rows
// slice; Row values are never mutated in place.
func (l *Log) Clone() *Log {
	out := &Log{
		Preamble:  append([]string(nil), l.Preamble...),
		DataTitle: l.DataTitle,
		Curves:    append([]Item(nil), l.Curves...),
		Wrapped:   l.Wrapped,
		Rows:      append([]Row(nil), l.Rows...),
		CRLF:      l.CRLF,
	}
	for _, s := range l.Sections {
		out.Sections = append(out.Sections, &Section{
			Title: s.Title,
			Lines: append([]string(nil), s.Lines...),
		})
	}
	return out
}

func sectionLetter(title string) byte {
	t := strings.TrimSpace(title)
	if len(t) < 2 || t[0] != '~' {
		return 0
	}
	c := t[1]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	return c
}
