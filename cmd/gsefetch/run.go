package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nishad/gsefetch/internal/database"
	"github.com/nishad/gsefetch/internal/export"
	"github.com/nishad/gsefetch/internal/geo"
	"github.com/nishad/gsefetch/internal/service"
)

var runCmd = &cobra.Command{
	Use:   "run [accessions...]",
	Short: "Summarize GEO series and write CSV files",
	Long: `Summarize each GEO series accession and write its tables as CSV.

Accessions come from the arguments and from --file. With neither, the
accessions listed in the configuration are used (GSE89408, GSE59847 and
GSE40598 by default). Each accession is processed on its own: a failure
is reported and the run moves on to the next one.

Output directories are not created unless --create-dirs is given.`,
	Example: `  gsefetch run
  gsefetch run GSE89408 --output ./results --create-dirs
  gsefetch run --file accessions.txt --sqlite ./gsefetch.db
  cat accessions.txt | gsefetch run --file -`,
	RunE: runRun,
}

var runFile string

func init() {
	addRunFlags(runCmd)
}

// addRunFlags registers the pipeline flags on cmd. The root command gets
// them too so that a bare "gsefetch" behaves like "gsefetch run".
func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&runFile, "file", "f", "", "Read accessions from a file, one per line (- for stdin)")
	f.StringP("output", "o", "", "Results directory (default: ./results)")
	f.Bool("create-dirs", false, "Create microarray/ and rnaseq/ under the results directory")
	f.String("sqlite", "", "Also store summaries in this SQLite database")
	f.Bool("strict", false, "Fail an accession when a remote call fails instead of treating it as empty")
	f.String("api-key", "", "NCBI API key")
	f.String("email", "", "Contact email sent with every request")
	f.String("base-url", "", "E-utilities base URL")
	f.Int("batch-size", 0, "Ids per esummary request (0 sends all at once)")
	f.Int("timeout", 0, "HTTP timeout in seconds (0 waits forever)")
}

// collectAccessions merges arguments and the accession file, falling back
// to the configured list. Accessions are upper-cased and de-duplicated.
func collectAccessions(args []string, file string, fallback []string) ([]string, error) {
	accs := append([]string(nil), args...)
	if file != "" {
		fromFile, err := readAccessionFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read accession file: %w", err)
		}
		accs = append(accs, fromFile...)
	}
	if len(accs) == 0 {
		accs = append(accs, fallback...)
	}

	seen := make(map[string]bool, len(accs))
	out := make([]string, 0, len(accs))
	var invalid []string
	for _, a := range accs {
		a = strings.ToUpper(strings.TrimSpace(a))
		if seen[a] {
			continue
		}
		seen[a] = true
		if !geo.IsSeriesAccession(a) {
			invalid = append(invalid, a)
			continue
		}
		out = append(out, a)
	}
	if len(invalid) > 0 {
		return out, fmt.Errorf("not GEO series accessions: %s", strings.Join(invalid, ", "))
	}
	return out, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	accessions, err := collectAccessions(args, runFile, cfg.Pipeline.Accessions)
	if err != nil {
		return err
	}
	if len(accessions) == 0 {
		return fmt.Errorf("no accessions to process")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := service.NewExperimentService(newClient(cfg, log), log, service.Options{Strict: cfg.Pipeline.Strict})

	csvOut := export.NewCSVWriter(cfg.Output.ResultsDirectory, cfg.Output.CreateDirs)
	sinks := []service.Sink{csvOut}

	var store *database.Store
	if cfg.Output.SQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Output.SQLitePath), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
		db, err := database.Initialize(cfg.Output.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()

		store, err = database.NewStore(db)
		if err != nil {
			return err
		}
		sinks = append(sinks, store)
		log.Debug("storing summaries", zap.String("db", cfg.Output.SQLitePath), zap.String("fetch_run", store.RunID()))
	}

	printInfo("Summarizing %d accession(s) into %s", len(accessions), cfg.Output.ResultsDirectory)
	report := svc.Run(ctx, accessions, sinks...)

	for _, o := range report.Outcomes {
		if o.Err != nil {
			printError("%s: %v", o.Accession, o.Err)
			continue
		}
		s := o.Summary
		if s.HasRNASeq() {
			printSuccess("%s: %d microarray row(s), %d rnaseq row(s) from %s",
				s.Accession, len(s.Microarray), len(s.RNASeq), strings.Join(s.SRAStudies, ", "))
		} else {
			printSuccess("%s: %d microarray row(s), no linked SRA studies", s.Accession, len(s.Microarray))
		}
		if verbose {
			for _, f := range csvOut.Files(s) {
				fmt.Printf("    %s\n", colorize(colorGray, f))
			}
		}
	}

	failed := report.Failed()
	if store != nil {
		if err := store.Finish(len(failed)); err != nil {
			printWarning("%v", err)
		}
	}

	if !quiet {
		fmt.Printf("\n%s\n", colorize(colorGray,
			fmt.Sprintf("Processed %d accession(s) in %s, %d failed", len(report.Outcomes), report.Duration.Round(time.Millisecond), len(failed))))
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d accessions failed", len(failed), len(report.Outcomes))
	}
	return nil
}
