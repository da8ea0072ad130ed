package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nishad/gsefetch/internal/config"
)

// Version info
var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// Global flags
var (
	cfgFile  string
	noColor  bool
	quiet    bool
	verbose  bool
	logLevel string
)

// Loaded in PersistentPreRunE for every command.
var (
	cfg *config.Config
	log *zap.Logger
)

// Root command
var rootCmd = &cobra.Command{
	Use:   "gsefetch [accessions...]",
	Short: "GEO experiment summaries with linked SRA runs",
	Long: `gsefetch looks up GEO series through NCBI E-utilities, extracts the
platform and supplementary file details of each series, follows its links
to SRA studies and extracts the sequencing runs behind them.

For every accession it writes microarray/<GSE>_experiment_summary.csv and,
when the series links to SRA, rnaseq/<GSE>_rnaseq.csv under the results
directory. Without a subcommand it behaves like "gsefetch run".`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Example: `  # Summarize the default accessions
  gsefetch

  # Summarize two series and create the output directories
  gsefetch run GSE89408 GSE40598 --create-dirs

  # Print one summary as JSON
  gsefetch summary GSE89408 --format json

  # Serve summaries over HTTP
  gsefetch serve --port 8080`,
	Args:              cobra.ArbitraryArgs,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./gsefetch.yaml or ~/.config/gsefetch/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")

	addRunFlags(rootCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// setup loads the configuration, applies flag and environment overrides
// and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := loadSettings(cmd, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	log, err = newLogger(cfg)
	if err != nil {
		return err
	}
	return nil
}

func main() {
	err := rootCmd.Execute()
	if log != nil {
		_ = log.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}
