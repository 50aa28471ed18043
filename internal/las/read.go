package las

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

const maxLineBytes = 1 << 20

// Read parses a LAS file.
func Read(r io.Reader) (*Log, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	scanner.Split(scanLines)

	log := &Log{}
	var current *Section
	inData := false
	var pending Row
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.HasSuffix(line, "\r") {
			line = strings.TrimSuffix(line, "\r")
			log.CRLF = true
		}

		if inData {
			if isComment(line) {
				continue
			}
			if err := log.addDataLine(&pending, line, lineNum); err != nil {
				return nil, err
			}
			continue
		}

		if strings.HasPrefix(strings.TrimSpace(line), "~") {
			if sectionLetter(line) == SectionData {
				if err := log.prepareData(); err != nil {
					return nil, err
				}
				log.DataTitle = line
				inData = true
				continue
			}
			current = &Section{Title: line}
			log.Sections = append(log.Sections, current)
			continue
		}

		if current == nil {
			log.Preamble = append(log.Preamble, line)
			continue
		}
		current.Lines = append(current.Lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("las: reading line %d: %w", lineNum+1, err)
	}
	if !inData {
		return nil, ErrNoDataSection
	}
	if len(pending.Values) > 0 {
		return nil, fmt.Errorf("las: line %d: incomplete wrapped row: got %d of %d values",
			lineNum, len(pending.Values), len(log.Curves))
	}
	return log, nil
}

// scanLines splits on '\n' like bufio.ScanLines but leaves a trailing '\r'
// in the token, so the reader can tell CRLF files apart.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// prepareData resolves curves and wrap mode once the header is complete.
func (l *Log) prepareData() error {
	curves, ok := l.Section(SectionCurve)
	if !ok {
		return ErrNoCurves
	}
	items, err := curves.Items()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return ErrNoCurves
	}
	l.Curves = items

	if v, ok := l.Section(SectionVersion); ok {
		vitems, err := v.Items()
		if err != nil {
			return err
		}
		for _, it := range vitems {
			if strings.EqualFold(it.Mnemonic, "WRAP") {
				l.Wrapped = strings.EqualFold(it.Value, "YES")
			}
		}
	}
	return nil
}

func (l *Log) addDataLine(pending *Row, line string, lineNum int) error {
	fields := strings.Fields(line)
	want := len(l.Curves)

	if !l.Wrapped {
		if len(fields) != want {
			return fmt.Errorf("las: line %d: expected %d values, got %d", lineNum, want, len(fields))
		}
		l.Rows = append(l.Rows, Row{Values: fields, Lines: []string{line}})
		return nil
	}

	pending.Values = append(pending.Values, fields...)
	pending.Lines = append(pending.Lines, line)
	switch {
	case len(pending.Values) == want:
		l.Rows = append(l.Rows, *pending)
		*pending = Row{}
	case len(pending.Values) > want:
		return fmt.Errorf("las: line %d: wrapped row overflows: got %d of %d values", lineNum, len(pending.Values), want)
	}
	return nil
}

// ReadFile reads and parses the LAS file at path.
func ReadFile(fs afero.Fs, path string) (*Log, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	log, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return log, nil
}
