package frame

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/mjb-oz/geoutils/pkg/types"
)

// timeLayouts are tried in order when parsing time cells.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ReadCSV builds a Frame from CSV with a header row. schema may be nil.
func ReadCSV(r io.Reader, schema *Schema) (*types.Frame, error) {
	if schema != nil {
		if err := schema.Validate(); err != nil {
			return nil, fmt.Errorf("invalid schema: %w", err)
		}
	}
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, types.ErrNoHeader
	}
	header, body := records[0], records[1:]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	pos := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := pos[h]; dup {
			return nil, fmt.Errorf("%w: %q", types.ErrDuplicateColumn, h)
		}
		pos[h] = i
	}
	if schema != nil {
		for name := range schema.Columns {
			if _, ok := pos[name]; !ok {
				return nil, fmt.Errorf("schema: %w: %q", types.ErrColumnNotFound, name)
			}
		}
	}

	f := &types.Frame{}
	indexCol := -1
	if schema != nil && schema.Index != "" {
		i, ok := pos[schema.Index]
		if !ok {
			return nil, fmt.Errorf("index: %w: %q", types.ErrColumnNotFound, schema.Index)
		}
		indexCol = i
		f.IndexName = schema.Index
	}
	geomCol := -1
	if schema != nil && schema.Geometry != nil {
		i, ok := pos[schema.Geometry.Column]
		if !ok {
			return nil, fmt.Errorf("geometry: %w: %q", types.ErrColumnNotFound, schema.Geometry.Column)
		}
		geomCol = i
		name := schema.Geometry.Name
		if name == "" {
			name = schema.Geometry.Column
		}
		f.Geometry = &types.Geometry{Name: name, SRID: schema.Geometry.SRID, WKT: make([]string, len(body))}
	}

	f.Index = make([]int64, len(body))
	for row, rec := range body {
		if indexCol < 0 {
			f.Index[row] = int64(row)
		} else {
			v, err := strconv.ParseInt(strings.TrimSpace(rec[indexCol]), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: %q", row+2, types.ErrInvalidIndex, rec[indexCol])
			}
			f.Index[row] = v
		}
		if geomCol >= 0 {
			f.Geometry.WKT[row] = strings.TrimSpace(rec[geomCol])
		}
	}

	for i, name := range header {
		if i == indexCol || i == geomCol || schema.excluded(name) {
			continue
		}
		cells := make([]string, len(body))
		for row, rec := range body {
			cells[row] = strings.TrimSpace(rec[i])
		}
		kind, ok := schema.kind(name)
		if !ok {
			kind = inferKind(cells)
		}
		values, err := parseColumn(kind, cells)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		f.Columns = append(f.Columns, types.Column{Name: name, Kind: kind, Values: values})
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// ReadCSVFile reads a CSV file from fs.
func ReadCSVFile(fs afero.Fs, path string, schema *Schema) (*types.Frame, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	f, err := ReadCSV(file, schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// inferKind picks the narrowest kind every non-empty cell parses as.
// Columns with no values are text.
func inferKind(cells []string) types.Kind {
	isInt, isFloat, isTime := true, true, true
	seen := false
	for _, c := range cells {
		if c == "" {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(c, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(c, 64); err != nil {
				isFloat = false
			}
		}
		if isTime {
			if _, ok := parseTime(c); !ok {
				isTime = false
			}
		}
		if !isInt && !isFloat && !isTime {
			break
		}
	}
	switch {
	case !seen:
		return types.KindText
	case isInt:
		return types.KindInt
	case isFloat:
		return types.KindFloat
	case isTime:
		return types.KindTime
	default:
		return types.KindText
	}
}

func parseColumn(kind types.Kind, cells []string) ([]any, error) {
	values := make([]any, len(cells))
	for row, c := range cells {
		if c == "" {
			continue
		}
		var err error
		switch kind {
		case types.KindInt:
			values[row], err = strconv.ParseInt(c, 10, 64)
		case types.KindFloat:
			values[row], err = strconv.ParseFloat(c, 64)
		case types.KindTime:
			t, ok := parseTime(c)
			if !ok {
				err = errors.New("unrecognized time layout")
			}
			values[row] = t
		case types.KindText:
			values[row] = c
		default:
			err = types.ErrUnsupportedType
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %q: %v", row+2, types.ErrValueMismatch, c, err)
		}
	}
	return values, nil
}
