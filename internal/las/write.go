package las

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// Write serializes the log. Line endings follow the source file.
func (l *Log) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	eol := "\n"
	if l.CRLF {
		eol = "\r\n"
	}
	put := func(line string) {
		bw.WriteString(line)
		bw.WriteString(eol)
	}

	for _, line := range l.Preamble {
		put(line)
	}
	for _, s := range l.Sections {
		put(s.Title)
		for _, line := range s.Lines {
			put(line)
		}
	}
	put(l.DataTitle)
	for _, row := range l.Rows {
		for _, line := range row.Lines {
			put(line)
		}
	}
	return bw.Flush()
}

// WriteFile writes the log to path, creating or truncating it.
func WriteFile(fs afero.Fs, path string, log *Log) error {
	f, err := fs.Create(path)
	if err != nil {
		return err
	}
	if err := log.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
