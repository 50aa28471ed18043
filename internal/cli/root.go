// Package cli implements the geoutils command-line interface.
package cli

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mjb-oz/geoutils/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app holds the state shared by all subcommands of one invocation.
type app struct {
	fs afero.Fs

	// flag values
	configDir string

	// resolved in PersistentPreRunE
	configPath string
	v          *viper.Viper
	cfg        types.Config
	log        *logrus.Logger
}

// NewRootCmd creates the top-level "geoutils" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{fs: afero.NewOsFs()})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "geoutils",
		Short: "Geoscience data utilities",
		Long: "geoutils thins LAS well logs, inspects SQLite and Spatialite databases\n" +
			"through per-user working copies, and loads tabular data into spatial tables.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/geoutils)")
	root.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newDecimateCmd(a))
	root.AddCommand(newTablesCmd(a))
	root.AddCommand(newColumnsCmd(a))
	root.AddCommand(newLoadCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	os.Exit(exitCode(root.Execute()))
}

// systemError marks failures of the environment rather than of the input.
type systemError struct {
	err error
}

func (e *systemError) Error() string { return e.err.Error() }
func (e *systemError) Unwrap() error { return e.err }

func sysErr(err error) error {
	if err == nil {
		return nil
	}
	return &systemError{err: err}
}

// userErrors are caused by arguments, configuration or input data, even
// when reported through a system failure.
var userErrors = []error{
	types.ErrInvalidFactor,
	types.ErrOutputCollision,
	types.ErrCopyInUse,
	types.ErrCopyExists,
	types.ErrTableNotFound,
	types.ErrEmptyTableName,
	types.ErrUnsupportedType,
	types.ErrValueMismatch,
	types.ErrLengthMismatch,
	types.ErrDuplicateIndex,
	types.ErrDuplicateColumn,
	types.ErrMissingSRID,
	types.ErrInvalidGeometry,
	types.ErrNoGeometryValues,
	types.ErrNoHeader,
	types.ErrColumnNotFound,
	types.ErrInvalidIndex,
	os.ErrNotExist,
}

func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	var se *systemError
	if errors.As(err, &se) {
		return exitSysError
	}
	return exitUserError
}
