package las

import (
	"fmt"
	"strings"
)

// Item is a header line of the form "MNEM.UNIT  VALUE : DESCRIPTION".
type Item struct {
	Mnemonic    string
	Unit        string
	Value       string
	Description string
}

// itemLayout locates the parts of a header line so a value can be replaced
// without disturbing the rest of the line.
type itemLayout struct {
	valueStart int // first byte after the unit
	valueEnd   int // index of the description colon, or len(line)
}

func isComment(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || strings.HasPrefix(t, "#")
}

func layoutItem(line string) (itemLayout, bool) {
	dot := strings.Index(line, ".")
	if dot < 0 {
		return itemLayout{}, false
	}
	// The unit runs from the dot to the first space.
	unitEnd := dot + 1
	for unitEnd < len(line) && line[unitEnd] != ' ' && line[unitEnd] != '\t' {
		unitEnd++
	}
	end := len(line)
	if colon := strings.LastIndex(line, ":"); colon >= unitEnd {
		end = colon
	}
	return itemLayout{valueStart: unitEnd, valueEnd: end}, true
}

// parseItem parses a header line. ok is false for comments and blank lines.
func parseItem(line string) (item Item, ok bool, err error) {
	if isComment(line) {
		return Item{}, false, nil
	}
	lay, found := layoutItem(line)
	if !found {
		return Item{}, false, fmt.Errorf("las: malformed header item %q", line)
	}
	dot := strings.Index(line, ".")
	item.Mnemonic = strings.TrimSpace(line[:dot])
	item.Unit = line[dot+1 : lay.valueStart]
	item.Value = strings.TrimSpace(line[lay.valueStart:lay.valueEnd])
	if lay.valueEnd < len(line) {
		item.Description = strings.TrimSpace(line[lay.valueEnd+1:])
	}
	return item, true, nil
}

// replaceValue rewrites the value of a header line, keeping the mnemonic,
// unit, column alignment and description.
func replaceValue(line, value string) string {
	lay, _ := layoutItem(line)
	region := line[lay.valueStart:lay.valueEnd]
	lead := len(region) - len(strings.TrimLeft(region, " \t"))
	width := len(region) - lead
	field := value
	switch {
	case len(field) <= width:
		field += strings.Repeat(" ", width-len(field))
	case lay.valueEnd < len(line):
		field += " "
	}
	return line[:lay.valueStart] + region[:lead] + field + line[lay.valueEnd:]
}

// WellValue returns the value of an item in the ~W section.
func (l *Log) WellValue(mnemonic string) (string, bool) {
	s, ok := l.Section(SectionWell)
	if !ok {
		return "", false
	}
	for _, line := range s.Lines {
		item, ok, err := parseItem(line)
		if err != nil || !ok {
			continue
		}
		if strings.EqualFold(item.Mnemonic, mnemonic) {
			return item.Value, true
		}
	}
	return "", false
}

// SetWellValue replaces the value of an existing ~W item in place.
func (l *Log) SetWellValue(mnemonic, value string) error {
	s, ok := l.Section(SectionWell)
	if !ok {
		return fmt.Errorf("%w: ~W section missing", ErrItemNotFound)
	}
	for i, line := range s.Lines {
		item, ok, err := parseItem(line)
		if err != nil || !ok {
			continue
		}
		if strings.EqualFold(item.Mnemonic, mnemonic) {
			s.Lines[i] = replaceValue(line, value)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrItemNotFound, mnemonic)
}
