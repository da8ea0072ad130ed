package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nishad/gsefetch/internal/config"
	"github.com/nishad/gsefetch/internal/eutils"
	"github.com/nishad/gsefetch/internal/logger"
)

// flagKeys maps command-line flags onto configuration keys. A flag only
// overrides the key when the executing command defines it.
var flagKeys = map[string]string{
	"base-url":    "eutils.base_url",
	"api-key":     "eutils.api_key",
	"email":       "eutils.email",
	"retmax":      "eutils.retmax",
	"timeout":     "eutils.timeout",
	"batch-size":  "eutils.batch_size",
	"output":      "output.results_directory",
	"create-dirs": "output.create_dirs",
	"sqlite":      "output.sqlite_path",
	"strict":      "pipeline.strict",
	"host":        "server.host",
	"port":        "server.port",
	"enable-cors": "server.enable_cors",
	"log-level":   "logging.level",
	"log-env":     "logging.env",
}

// loadSettings reads the YAML config file, then layers GSEFETCH_*
// environment variables and explicitly set flags on top of it.
func loadSettings(cmd *cobra.Command, path string) (*config.Config, error) {
	if path == "" {
		path = config.GetConfigPath()
	}
	c, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("GSEFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	strs := map[string]*string{
		"eutils.base_url":          &c.EUtils.BaseURL,
		"eutils.api_key":           &c.EUtils.APIKey,
		"eutils.tool":              &c.EUtils.Tool,
		"eutils.email":             &c.EUtils.Email,
		"output.results_directory": &c.Output.ResultsDirectory,
		"output.sqlite_path":       &c.Output.SQLitePath,
		"server.host":              &c.Server.Host,
		"logging.env":              &c.Logging.Env,
		"logging.level":            &c.Logging.Level,
	}
	ints := map[string]*int{
		"eutils.retmax":     &c.EUtils.RetMax,
		"eutils.timeout":    &c.EUtils.Timeout,
		"eutils.batch_size": &c.EUtils.BatchSize,
		"server.port":       &c.Server.Port,
	}
	bools := map[string]*bool{
		"output.create_dirs": &c.Output.CreateDirs,
		"output.sqlite":      &c.Output.SQLite,
		"pipeline.strict":    &c.Pipeline.Strict,
		"server.enable_cors": &c.Server.EnableCORS,
	}

	for key, dst := range strs {
		v.SetDefault(key, *dst)
	}
	for key, dst := range ints {
		v.SetDefault(key, *dst)
	}
	for key, dst := range bools {
		v.SetDefault(key, *dst)
	}

	if err := bindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}

	for key, dst := range strs {
		*dst = v.GetString(key)
	}
	for key, dst := range ints {
		*dst = v.GetInt(key)
	}
	for key, dst := range bools {
		*dst = v.GetBool(key)
	}

	// --sqlite <path> implies storing.
	if f := cmd.Flags().Lookup("sqlite"); f != nil && f.Changed {
		c.Output.SQLite = true
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// bindFlags binds only flags the user actually set, so a flag default
// never hides a value from the file or the environment.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(key, f)
	})
	return bindErr
}

// newLogger builds the zap logger for c. --verbose and --quiet win over
// the configured level.
func newLogger(c *config.Config) (*zap.Logger, error) {
	level := c.Logging.Level
	switch {
	case verbose:
		level = "debug"
	case quiet:
		level = "error"
	}
	return logger.NewLogger(c.Logging.Env, level)
}

// newClient builds an E-utilities client from c.
func newClient(c *config.Config, l *zap.Logger) *eutils.Client {
	return eutils.NewClient(eutils.Config{
		BaseURL:   c.EUtils.BaseURL,
		APIKey:    c.EUtils.APIKey,
		Tool:      c.EUtils.Tool,
		Email:     c.EUtils.Email,
		RetMax:    c.EUtils.RetMax,
		BatchSize: c.EUtils.BatchSize,
		Timeout:   c.RequestTimeout(),
	}, l.Named("eutils"))
}
