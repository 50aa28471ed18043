package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mjb-oz/geoutils/internal/decimate"
	"github.com/mjb-oz/geoutils/pkg/types"
)

func newDecimateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decimate [flags] <file-or-dir>...",
		Short: "Thin the data rows of LAS files",
		Long: "Remove a fraction of the depth rows of each LAS file and write the result\n" +
			"as <name>decimated<factor>.las. A factor of 0.9 keeps one row in ten;\n" +
			"a factor of 1 keeps only the first row. Directories are searched for\n" +
			".las files.",
		Args: cobra.MinimumNArgs(1),
		RunE: a.runDecimate,
	}
	cmd.Flags().String("factor", "", "fraction of rows to remove, in (0, 1]")
	cmd.Flags().String("out", "", "output directory (default: next to each input)")
	cmd.Flags().BoolP("recursive", "r", false, "search directories recursively")
	cmd.Flags().IntP("jobs", "j", 0, "number of files decimated at once")
	return cmd
}

func (a *app) runDecimate(cmd *cobra.Command, args []string) error {
	dc := a.cfg.Decimate
	if dc.Factor == "" {
		return fmt.Errorf("%w: set --factor or decimate.factor", types.ErrInvalidFactor)
	}
	factor, err := decimate.ParseFactor(dc.Factor)
	if err != nil {
		return err
	}

	files, err := a.collectLAS(args, dc.Recursive)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(files) == 0 {
		fmt.Fprintln(out, "No LAS files found")
		return nil
	}

	r := &decimate.Runner{
		Fs:     a.fs,
		OutDir: dc.OutDir,
		Factor: factor,
		Jobs:   dc.Jobs,
		Log:    a.log,
	}
	summary, err := r.Run(cmd.Context(), files)
	for _, res := range summary.Results {
		fmt.Fprintf(out, "%s -> %s (%d of %d rows kept)\n", res.Input, res.Output, res.RowsOut, res.RowsIn)
	}
	if err != nil {
		return sysErr(err)
	}
	fmt.Fprintf(out, "Decimated %d files: %d of %d rows kept\n", len(summary.Results), summary.RowsOut(), summary.RowsIn())
	return nil
}

// collectLAS expands directory arguments into the LAS files they hold.
// Files named explicitly are taken as given.
func (a *app) collectLAS(args []string, recursive bool) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, arg := range args {
		info, err := a.fs.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("input: %w", err)
		}
		found := []string{arg}
		if info.IsDir() {
			found, err = decimate.Discover(a.fs, arg, recursive)
			if err != nil {
				return nil, sysErr(err)
			}
		}
		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files, nil
}
