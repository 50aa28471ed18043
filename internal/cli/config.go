package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mjb-oz/geoutils/internal/paths"
	"github.com/mjb-oz/geoutils/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "GEOUTILS"
)

// Config keys.
const (
	cfgKeyLogLevel            = "log_level"
	cfgKeyUser                = "user"
	cfgKeyDriver              = "driver"
	cfgKeySpatialiteExtension = "spatialite_extension"
	cfgKeyDecimateFactor      = "decimate.factor"
	cfgKeyDecimateRecursive   = "decimate.recursive"
	cfgKeyDecimateJobs        = "decimate.jobs"
	cfgKeyDecimateOutDir      = "decimate.out_dir"
)

// flagKeys binds command flags to config keys. A flag overrides the
// config file and environment only when set on the command line.
var flagKeys = map[string]string{
	"log-level":            cfgKeyLogLevel,
	"user":                 cfgKeyUser,
	"driver":               cfgKeyDriver,
	"spatialite-extension": cfgKeySpatialiteExtension,
	"factor":               cfgKeyDecimateFactor,
	"recursive":            cfgKeyDecimateRecursive,
	"jobs":                 cfgKeyDecimateJobs,
	"out":                  cfgKeyDecimateOutDir,
}

// newViper returns a Viper instance carrying the defaults and the
// GEOUTILS_* environment overrides (GEOUTILS_DECIMATE_JOBS for
// decimate.jobs).
func newViper(a *app) *viper.Viper {
	def := types.DefaultConfig()
	v := viper.New()
	v.SetFs(a.fs)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyUser, def.User)
	v.SetDefault(cfgKeyDriver, def.Driver)
	v.SetDefault(cfgKeySpatialiteExtension, def.SpatialiteExtension)
	v.SetDefault(cfgKeyDecimateFactor, def.Decimate.Factor)
	v.SetDefault(cfgKeyDecimateRecursive, def.Decimate.Recursive)
	v.SetDefault(cfgKeyDecimateJobs, def.Decimate.Jobs)
	v.SetDefault(cfgKeyDecimateOutDir, def.Decimate.OutDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig reads config.yaml from the resolved config directory, applies
// environment and flag overrides, and builds the logger. A missing
// config.yaml is not an error.
func (a *app) loadConfig(cmd *cobra.Command) error {
	dir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return sysErr(fmt.Errorf("resolve config dir: %w", err))
	}
	a.configPath = paths.ConfigFile(dir)

	v := newViper(a)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.v = v
	a.cfg = cfg
	a.log = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	a.log.WithField("config", a.configPath).Debug("configuration loaded")
	return nil
}

// bindFlags binds the flags of flags that carry a config key.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	return nil
}

// newLogger writes text-formatted entries to w. The level has already been
// validated.
func newLogger(w io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(level); err == nil {
		l.SetLevel(lvl)
	}
	return l
}
