// Package geoutils exposes the geoutils toolkit to library users: LAS
// decimation, per-user working copies of SQLite databases and loading of
// tabular data into spatial tables.
package geoutils

import (
	"context"

	"github.com/spf13/afero"

	"github.com/mjb-oz/geoutils/internal/decimate"
	"github.com/mjb-oz/geoutils/internal/loader"
	"github.com/mjb-oz/geoutils/internal/spatialdb"
	"github.com/mjb-oz/geoutils/pkg/types"
)

// Version is the geoutils release.
const Version = "0.1.0"

type (
	// Conn is an open database, optionally backed by a working copy.
	Conn = spatialdb.Conn
	// ConnOptions configures how a database is opened.
	ConnOptions = spatialdb.Options
	// DecimateResult describes one decimated file.
	DecimateResult = decimate.Result
	// LoadResult summarizes a completed load.
	LoadResult = loader.Result
	// LoadOption configures a load.
	LoadOption = loader.Option
)

// Load options.
var (
	WithExclude      = loader.WithExclude
	WithSRID         = loader.WithSRID
	WithSpatialIndex = loader.WithSpatialIndex
	WithLogger       = loader.WithLogger
)

// OpenWorkingCopy copies dbPath to a per-user working copy and connects to
// it. Close the Conn to delete the copy.
func OpenWorkingCopy(ctx context.Context, dbPath string, opts ConnOptions) (*Conn, error) {
	return spatialdb.Open(ctx, dbPath, opts)
}

// DecimateFiles removes the fraction factor of the data rows of each LAS
// file, writing outputs to outDir, or next to each input when outDir is
// empty.
func DecimateFiles(ctx context.Context, files []string, factor float64, outDir string) ([]DecimateResult, error) {
	f, err := decimate.NewFactor(factor)
	if err != nil {
		return nil, err
	}
	r := &decimate.Runner{Fs: afero.NewOsFs(), OutDir: outDir, Factor: f}
	summary, err := r.Run(ctx, files)
	return summary.Results, err
}

// LoadFrame creates table in the database of conn from f. Geometry is
// materialized with Spatialite when conn has it loaded, and stored as WKT
// text otherwise.
func LoadFrame(ctx context.Context, conn *Conn, f *types.Frame, table string, opts ...LoadOption) (LoadResult, error) {
	if !conn.Spatial() {
		opts = append([]LoadOption{loader.WithDialect(loader.WKTText{})}, opts...)
	}
	return loader.New(conn.DB(), opts...).Load(ctx, f, table)
}
