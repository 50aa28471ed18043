package types

import (
	"fmt"
	"strings"
)

// Kind is the storage class of a Frame column.
type Kind int

// Column kinds. KindUnknown is never mapped to a storage type; the loader
// rejects it rather than falling back to text.
const (
	KindUnknown Kind = iota
	KindInt
	KindFloat
	KindText
	KindTime
)

var kindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindInt:     "int",
	KindFloat:   "float",
	KindText:    "text",
	KindTime:    "time",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a kind name (as written in schema files) to a Kind.
// Aliases follow the dataframe dtype names the toolkit was built around.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "integer", "int64":
		return KindInt, nil
	case "float", "real", "float64", "double":
		return KindFloat, nil
	case "text", "string", "object":
		return KindText, nil
	case "time", "date", "datetime", "timestamp":
		return KindTime, nil
	default:
		return KindUnknown, fmt.Errorf("%w: %q", ErrUnsupportedType, s)
	}
}

// DefaultIndexName names the primary key when the Frame index is unnamed.
const DefaultIndexName = "OID"

// DefaultGeometryName names the geometry column when none is given.
const DefaultGeometryName = "geometry"

// Column is a named, typed column of a Frame. Values hold int64, float64,
// string, time.Time or nil according to Kind.
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// Geometry carries the WKT text of a Frame's geometry column. An empty
// string is a null geometry.
type Geometry struct {
	Name string
	SRID int
	WKT  []string
}

// Frame is an in-memory table: an integer index, typed attribute columns
// and an optional geometry column.
type Frame struct {
	IndexName string
	Index     []int64
	Columns   []Column
	Geometry  *Geometry
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Index)
}

// Spatial reports whether the Frame carries geometry.
func (f *Frame) Spatial() bool {
	return f.Geometry != nil
}

// Column returns the column with the given name.
func (f *Frame) Column(name string) (*Column, bool) {
	for i := range f.Columns {
		if f.Columns[i].Name == name {
			return &f.Columns[i], true
		}
	}
	return nil, false
}

// ColumnNames returns the attribute column names in order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// Validate checks the structural invariants of the Frame: every column has
// one value per index entry, index values are unique and names are distinct.
func (f *Frame) Validate() error {
	n := len(f.Index)
	seen := make(map[int64]struct{}, n)
	for _, v := range f.Index {
		if _, dup := seen[v]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateIndex, v)
		}
		seen[v] = struct{}{}
	}

	indexName := f.IndexName
	if indexName == "" {
		indexName = DefaultIndexName
	}
	names := map[string]bool{strings.ToLower(indexName): true}
	for _, c := range f.Columns {
		if len(c.Values) != n {
			return fmt.Errorf("%w: column %q has %d values, index has %d", ErrLengthMismatch, c.Name, len(c.Values), n)
		}
		key := strings.ToLower(c.Name)
		if names[key] {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		names[key] = true
	}

	if f.Geometry != nil {
		if len(f.Geometry.WKT) != n {
			return fmt.Errorf("%w: geometry has %d values, index has %d", ErrLengthMismatch, len(f.Geometry.WKT), n)
		}
		name := f.Geometry.Name
		if name == "" {
			name = DefaultGeometryName
		}
		if names[strings.ToLower(name)] {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
	}
	return nil
}
