package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nishad/gsefetch/internal/export"
	"github.com/nishad/gsefetch/internal/geo"
	"github.com/nishad/gsefetch/internal/service"
	"github.com/nishad/gsefetch/internal/sra"
	"github.com/nishad/gsefetch/internal/ui"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <accession>",
	Short: "Print the summary of one GEO series",
	Long: `Run the pipeline for one GEO series and print the result instead of
writing CSV files.

The table format prints both tables; csv, tsv and jsonl print the table
selected with --table.`,
	Example: `  gsefetch summary GSE89408
  gsefetch summary GSE89408 --format json
  gsefetch summary GSE89408 --format csv --table rnaseq > GSE89408_rnaseq.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

var (
	summaryFormat string
	summaryTable  string
)

func init() {
	summaryCmd.Flags().StringVarP(&summaryFormat, "format", "f", "table", "Output format (table|json|yaml|csv|tsv|jsonl)")
	summaryCmd.Flags().StringVarP(&summaryTable, "table", "t", "microarray", "Table for csv/tsv/jsonl output (microarray|rnaseq)")
	summaryCmd.Flags().Bool("strict", false, "Fail when a remote call fails instead of treating it as empty")
	summaryCmd.Flags().String("api-key", "", "NCBI API key")
	summaryCmd.Flags().Int("timeout", 0, "HTTP timeout in seconds (0 waits forever)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	accession := strings.ToUpper(strings.TrimSpace(args[0]))
	if !geo.IsSeriesAccession(accession) {
		return fmt.Errorf("not a GEO series accession: %s", args[0])
	}

	svc := service.NewExperimentService(newClient(cfg, log), log, service.Options{Strict: cfg.Pipeline.Strict})

	var summary *service.ExperimentSummary
	fetch := func() error {
		var err error
		summary, err = svc.Summarize(context.Background(), accession)
		return err
	}
	if quiet {
		if err := fetch(); err != nil {
			return err
		}
	} else {
		spinner := ui.NewSpinner(os.Stderr, ui.IsTerminal(os.Stderr) && !noColor)
		if err := spinner.Run("Summarizing "+accession, fetch); err != nil {
			return err
		}
	}

	if summaryFormat == "table" {
		printSummaryTable(os.Stdout, summary)
		return nil
	}

	format, err := export.ParseFormat(summaryFormat)
	if err != nil {
		return err
	}
	return export.Render(os.Stdout, summary, format, export.Table(summaryTable))
}

// printSummaryTable prints both tables aligned for a terminal.
func printSummaryTable(out io.Writer, s *service.ExperimentSummary) {
	fmt.Fprintf(out, "%s %s\n\n", colorize(colorBold, "Series"), colorize(colorCyan, s.Accession))

	fmt.Fprintln(out, colorize(colorBold, "Microarray"))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	writeTabRow(w, upper(geo.SeriesColumns), colorBold)
	for _, r := range s.Microarray {
		writeTabRow(w, r.Row(), "")
	}
	w.Flush()

	fmt.Fprintln(out)
	if !s.HasRNASeq() {
		fmt.Fprintln(out, colorize(colorGray, "No linked SRA studies"))
		return
	}

	fmt.Fprintf(out, "%s %s\n", colorize(colorBold, "RNA-seq"), colorize(colorGray, strings.Join(s.SRAStudies, ", ")))
	if len(s.RNASeq) == 0 {
		fmt.Fprintln(out, colorize(colorGray, "No sequencing records found"))
		return
	}

	// The full row is too wide for a terminal; show the identifying columns.
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	writeTabRow(w, []string{"UID", "RUN_ID", "EXPERIMENT", "PLATFORM", "MODEL", "STRATEGY", "SPOTS"}, colorBold)
	for _, r := range s.RNASeq {
		writeTabRow(w, []string{r.UID, r.RunID, r.Experiment, r.Platform, r.Model, r.LibraryStrategy, r.TotalSpots}, "")
	}
	w.Flush()

	if verbose {
		fmt.Fprintf(out, "\n%s\n", colorize(colorGray, "columns: "+strings.Join(sra.Columns, ", ")))
	}
}

func writeTabRow(w io.Writer, cells []string, color string) {
	if color != "" {
		colored := make([]string, len(cells))
		for i, c := range cells {
			colored[i] = colorize(color, c)
		}
		cells = colored
	}
	fmt.Fprintln(w, strings.Join(cells, "\t"))
}

func upper(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = strings.ToUpper(c)
	}
	return out
}
