package loader

import (
	"github.com/mjb-oz/geoutils/internal/spatialdb"
)

// Dialect generates the engine-specific statements of the geometry steps.
type Dialect interface {
	Name() string
	// AddGeometryColumn returns the statement that adds a geometry column.
	AddGeometryColumn(table, column string, srid int, geomType, dims string) (string, []any)
	// FromWKT returns an SQL expression converting the WKT held in
	// column into a geometry, and its bound arguments.
	FromWKT(column string, srid int) (string, []any)
	// CreateSpatialIndex returns the statement building a spatial index,
	// or "" when the dialect has none.
	CreateSpatialIndex(table, column string) (string, []any)
}

// Spatialite materializes real geometries through Spatialite functions.
type Spatialite struct{}

// Name returns "spatialite".
func (Spatialite) Name() string { return "spatialite" }

// AddGeometryColumn calls AddGeometryColumn, which registers the column in
// geometry_columns.
func (Spatialite) AddGeometryColumn(table, column string, srid int, geomType, dims string) (string, []any) {
	return "SELECT AddGeometryColumn(?, ?, ?, ?, ?)", []any{table, column, srid, geomType, dims}
}

// FromWKT parses the WKT with GeomFromText. Malformed text yields NULL.
func (Spatialite) FromWKT(column string, srid int) (string, []any) {
	return "GeomFromText(" + spatialdb.QuoteIdent(column) + ", ?)", []any{srid}
}

// CreateSpatialIndex builds an R*Tree index with CreateSpatialIndex.
func (Spatialite) CreateSpatialIndex(table, column string) (string, []any) {
	return "SELECT CreateSpatialIndex(?, ?)", []any{table, column}
}

// WKTText keeps geometries as WKT in a TEXT column. It serves databases
// opened without Spatialite; the column holds no SRID or geometry type.
type WKTText struct{}

// Name returns "wkt-text".
func (WKTText) Name() string { return "wkt-text" }

// AddGeometryColumn adds a plain TEXT column.
func (WKTText) AddGeometryColumn(table, column string, _ int, _, _ string) (string, []any) {
	return "ALTER TABLE " + spatialdb.QuoteIdent(table) + " ADD COLUMN " + spatialdb.QuoteIdent(column) + " TEXT", nil
}

// FromWKT copies the text unchanged.
func (WKTText) FromWKT(column string, _ int) (string, []any) {
	return spatialdb.QuoteIdent(column), nil
}

// CreateSpatialIndex returns "": there is no index for text geometries.
func (WKTText) CreateSpatialIndex(string, string) (string, []any) {
	return "", nil
}
