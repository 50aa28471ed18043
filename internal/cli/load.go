package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mjb-oz/geoutils/internal/frame"
	"github.com/mjb-oz/geoutils/internal/loader"
	"github.com/mjb-oz/geoutils/internal/spatialdb"
)

type loadFlags struct {
	schema       string
	srid         int
	exclude      []string
	spatialIndex bool
	dryRun       bool
	replaceStale bool
}

func newLoadCmd(a *app) *cobra.Command {
	var lf loadFlags
	cmd := &cobra.Command{
		Use:   "load <database> <table> <csv>",
		Short: "Load a CSV file into a new table",
		Long: "Create <table> in the database from a CSV file. A YAML schema can name\n" +
			"the index column, the WKT geometry column and its SRID, and the column\n" +
			"kinds; without one, kinds are inferred. Geometry is materialized with\n" +
			"Spatialite when the spatialite driver is used, and kept as WKT text\n" +
			"otherwise.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLoad(cmd, args, lf)
		},
	}
	addConnFlags(cmd)
	cmd.Flags().StringVar(&lf.schema, "schema", "", "YAML schema describing the CSV columns")
	cmd.Flags().IntVar(&lf.srid, "srid", 0, "SRID of the geometry, overriding the schema")
	cmd.Flags().StringSliceVar(&lf.exclude, "exclude", nil, "columns to leave out of the table")
	cmd.Flags().BoolVar(&lf.spatialIndex, "spatial-index", false, "build a spatial index on the geometry column")
	cmd.Flags().BoolVar(&lf.dryRun, "dry-run", false, "load into a working copy that is discarded afterwards")
	cmd.Flags().BoolVar(&lf.replaceStale, "replace-stale", false, "overwrite a working copy left by an earlier session")
	return cmd
}

func (a *app) runLoad(cmd *cobra.Command, args []string, lf loadFlags) error {
	dbPath, table, csvPath := args[0], args[1], args[2]

	var schema *frame.Schema
	if lf.schema != "" {
		s, err := frame.LoadSchema(a.fs, lf.schema)
		if err != nil {
			return err
		}
		schema = s
	}
	f, err := frame.ReadCSVFile(a.fs, csvPath, schema)
	if err != nil {
		return err
	}

	load := func(conn *spatialdb.Conn) error {
		opts := []loader.Option{
			loader.WithLogger(a.log),
			loader.WithExclude(lf.exclude...),
			loader.WithSRID(lf.srid),
			loader.WithSpatialIndex(lf.spatialIndex),
		}
		if !conn.Spatial() {
			if f.Spatial() {
				a.log.Warn("Spatialite is not loaded; geometry is stored as WKT text")
			}
			opts = append(opts, loader.WithDialect(loader.WKTText{}))
		}
		res, err := loader.New(conn.DB(), opts...).Load(cmd.Context(), f, table)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d rows into %s (%d columns, index %s)\n",
			res.Rows, res.Table, len(res.Columns), res.IndexName)
		return nil
	}

	opts := a.connOptions()
	if lf.dryRun {
		opts.ReplaceStale = lf.replaceStale
		return a.withWorkingCopy(cmd.Context(), dbPath, opts, load)
	}

	conn, err := spatialdb.OpenDirect(cmd.Context(), dbPath, opts)
	if err != nil {
		return sysErr(err)
	}
	return closeConn(conn, load(conn))
}
