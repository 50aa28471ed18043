package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mjb-oz/geoutils/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long:  "Create the configuration directory and a default config.yaml. An existing\nconfig.yaml is left untouched.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := writeConfigIfMissing(a.fs, a.configPath)
			if err != nil {
				return sysErr(err)
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", a.configPath)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Configuration already exists at %s\n", a.configPath)
			}
			return nil
		},
	}
}

// writeConfigIfMissing creates path holding the default configuration if
// the file does not exist. It reports whether the file was written.
func writeConfigIfMissing(fs afero.Fs, path string) (bool, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return false, fmt.Errorf("stat config: %w", err)
	}
	if exists {
		return false, nil
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	cfg := types.DefaultConfig()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
