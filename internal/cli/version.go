package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mjb-oz/geoutils/pkg/geoutils"
)

const modulePath = "github.com/mjb-oz/geoutils"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the geoutils version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "geoutils v%s\nmodule: %s\n", geoutils.Version, modulePath)
			return nil
		},
	}
}
