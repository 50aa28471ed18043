package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/mjb-oz/geoutils/internal/spatialdb"
	"github.com/mjb-oz/geoutils/pkg/types"
)

// addConnFlags registers the flags shared by commands that open a database.
func addConnFlags(cmd *cobra.Command) {
	cmd.Flags().String("user", "", "user suffix of the working copy (default: OS login name)")
	cmd.Flags().String("driver", "", "database driver: plain or spatialite")
	cmd.Flags().String("spatialite-extension", "", "Spatialite library to load")
}

func (a *app) connOptions() spatialdb.Options {
	return spatialdb.Options{
		User:      a.cfg.User,
		Driver:    a.cfg.Driver,
		Extension: a.cfg.SpatialiteExtension,
		Log:       a.log,
	}
}

// withWorkingCopy opens dbPath through a working copy, runs fn and closes
// the connection. Close failures are returned alongside fn's error.
func (a *app) withWorkingCopy(ctx context.Context, dbPath string, opts spatialdb.Options, fn func(*spatialdb.Conn) error) (err error) {
	conn, err := spatialdb.Open(ctx, dbPath, opts)
	if err != nil {
		return sysErr(err)
	}
	defer func() { err = closeConn(conn, err) }()
	return fn(conn)
}

// closeConn closes c and returns err combined with any close failure.
func closeConn(c io.Closer, err error) error {
	if cerr := c.Close(); cerr != nil {
		return multierror.Append(err, sysErr(cerr)).ErrorOrNil()
	}
	return err
}

func newTablesCmd(a *app) *cobra.Command {
	var all, replaceStale bool
	cmd := &cobra.Command{
		Use:   "tables <database>",
		Short: "List the tables of a database",
		Long:  "Open a working copy of the database and list its tables. Spatialite\nmetadata tables are hidden unless --all is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.connOptions()
			opts.HideSpatialMeta = !all
			opts.ReplaceStale = replaceStale
			return a.withWorkingCopy(cmd.Context(), args[0], opts, func(conn *spatialdb.Conn) error {
				tables, err := conn.Tables(cmd.Context())
				if err != nil {
					return sysErr(err)
				}
				for _, t := range tables {
					fmt.Fprintln(cmd.OutOrStdout(), t)
				}
				return nil
			})
		},
	}
	addConnFlags(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "include Spatialite metadata tables")
	cmd.Flags().BoolVar(&replaceStale, "replace-stale", false, "overwrite a working copy left by an earlier session")
	return cmd
}

func newColumnsCmd(a *app) *cobra.Command {
	var replaceStale bool
	cmd := &cobra.Command{
		Use:   "columns <database> <table>",
		Short: "Describe the columns of a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.connOptions()
			opts.ReplaceStale = replaceStale
			return a.withWorkingCopy(cmd.Context(), args[0], opts, func(conn *spatialdb.Conn) error {
				cols, err := conn.Columns(cmd.Context(), args[1])
				if err != nil {
					if errors.Is(err, types.ErrTableNotFound) {
						return err
					}
					return sysErr(err)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tTYPE\tNOT NULL\tPK\tDEFAULT")
				for _, c := range cols {
					def := ""
					if c.Default.Valid {
						def = c.Default.String
					}
					fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%s\n", c.Name, c.Type, c.NotNull, c.PrimaryKey, def)
				}
				return w.Flush()
			})
		},
	}
	addConnFlags(cmd)
	cmd.Flags().BoolVar(&replaceStale, "replace-stale", false, "overwrite a working copy left by an earlier session")
	return cmd
}
