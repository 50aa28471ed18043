package frame

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mjb-oz/geoutils/pkg/types"
)

const wellsCSV = `well_id,name,depth,samples,drilled,wkt,notes
10,A-1,12.5,4,2021-03-04,POINT (145.1 -37.8),keep dry
20,B-2,,5,2021-03-05 10:00:00,POINT (145.2 -37.9),
30,C-3,40,,,,"quoted, with comma"
`

const wellsSchema = `
index: well_id
geometry:
  column: wkt
  name: geom
  srid: 4326
columns:
  samples: float
exclude:
  - NOTES
`

func TestReadCSVInfersKinds(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(wellsCSV), nil)
	require.NoError(t, err)

	assert.Empty(t, f.IndexName)
	assert.Equal(t, []int64{0, 1, 2}, f.Index)
	assert.False(t, f.Spatial())
	assert.Equal(t, []string{"well_id", "name", "depth", "samples", "drilled", "wkt", "notes"}, f.ColumnNames())

	kinds := map[string]types.Kind{}
	for _, c := range f.Columns {
		kinds[c.Name] = c.Kind
	}
	assert.Equal(t, map[string]types.Kind{
		"well_id": types.KindInt,
		"name":    types.KindText,
		"depth":   types.KindFloat,
		"samples": types.KindInt,
		"drilled": types.KindTime,
		"wkt":     types.KindText,
		"notes":   types.KindText,
	}, kinds)

	depth, ok := f.Column("depth")
	require.True(t, ok)
	assert.Equal(t, []any{12.5, nil, 40.0}, depth.Values)

	drilled, _ := f.Column("drilled")
	assert.Equal(t, time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC), drilled.Values[0])
	assert.Equal(t, time.Date(2021, 3, 5, 10, 0, 0, 0, time.UTC), drilled.Values[1])
	assert.Nil(t, drilled.Values[2])

	notes, _ := f.Column("notes")
	assert.Equal(t, "quoted, with comma", notes.Values[2])
}

func TestReadCSVWithSchema(t *testing.T) {
	schema, err := ParseSchema([]byte(wellsSchema))
	require.NoError(t, err)

	f, err := ReadCSV(strings.NewReader(wellsCSV), schema)
	require.NoError(t, err)

	assert.Equal(t, "well_id", f.IndexName)
	assert.Equal(t, []int64{10, 20, 30}, f.Index)
	assert.Equal(t, []string{"name", "depth", "samples", "drilled"}, f.ColumnNames())

	samples, _ := f.Column("samples")
	assert.Equal(t, types.KindFloat, samples.Kind)
	assert.Equal(t, []any{4.0, 5.0, nil}, samples.Values)

	require.True(t, f.Spatial())
	assert.Equal(t, "geom", f.Geometry.Name)
	assert.Equal(t, 4326, f.Geometry.SRID)
	assert.Equal(t, []string{"POINT (145.1 -37.8)", "POINT (145.2 -37.9)", ""}, f.Geometry.WKT)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name   string
		csv    string
		schema string
		target error
	}{
		{"empty input", "", "", types.ErrNoHeader},
		{"duplicate header", "a,b,a\n1,2,3\n", "", types.ErrDuplicateColumn},
		{"missing index column", "a,b\n1,2\n", "index: id", types.ErrColumnNotFound},
		{"missing geometry column", "a,b\n1,2\n", "geometry: {column: wkt, srid: 4326}", types.ErrColumnNotFound},
		{"missing schema column", "a,b\n1,2\n", "columns: {c: int}", types.ErrColumnNotFound},
		{"index not integer", "id,b\n1,2\nx,3\n", "index: id", types.ErrInvalidIndex},
		{"duplicate index", "id,b\n1,2\n1,3\n", "index: id", types.ErrDuplicateIndex},
		{"value not of declared kind", "id,b\n1,2\n2,abc\n", "columns: {b: int}", types.ErrValueMismatch},
		{"unknown kind", "a\n1\n", "columns: {a: blob}", types.ErrUnsupportedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var schema *Schema
			if tt.schema != "" {
				schema = &Schema{}
				require.NoError(t, yaml.Unmarshal([]byte(tt.schema), schema))
			}
			_, err := ReadCSV(strings.NewReader(tt.csv), schema)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestReadCSVRaggedRows(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1,2\n3\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read csv")
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		cells []string
		want  types.Kind
	}{
		{[]string{"1", "-2", ""}, types.KindInt},
		{[]string{"1", "2.5"}, types.KindFloat},
		{[]string{"1e3", "NaN"}, types.KindFloat},
		{[]string{"2020-01-01T00:00:00Z", "2020-01-02"}, types.KindTime},
		{[]string{"2020-01-01", "x"}, types.KindText},
		{[]string{"", ""}, types.KindText},
		{nil, types.KindText},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inferKind(tt.cells), "%q", tt.cells)
	}
}

func TestReadCSVFileAndSchemaFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/wells.csv", []byte("\ufeff"+wellsCSV), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/in/wells.yaml", []byte(wellsSchema), 0o644))

	schema, err := LoadSchema(fs, "/in/wells.yaml")
	require.NoError(t, err)
	f, err := ReadCSVFile(fs, "/in/wells.csv", schema)
	require.NoError(t, err)
	assert.Equal(t, "well_id", f.IndexName)
	assert.Equal(t, 3, f.Len())

	_, err = ReadCSVFile(fs, "/in/missing.csv", nil)
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/in/bad.yaml", []byte("columns: [oops"), 0o644))
	_, err = LoadSchema(fs, "/in/bad.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/in/bad.yaml")
}
