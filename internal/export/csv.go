// Package export writes experiment summaries as CSV files and renders
// them in the formats the CLI and API serve.
package export

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/nishad/gsefetch/internal/errors"
	"github.com/nishad/gsefetch/internal/geo"
	"github.com/nishad/gsefetch/internal/paths"
	"github.com/nishad/gsefetch/internal/service"
	"github.com/nishad/gsefetch/internal/sra"
)

// CSVWriter writes the microarray and rnaseq tables of a summary under Root.
// Files start with a header row and have no leading row-index column, so
// readers that expect one (pandas read_csv with index_col=0) must drop
// that option.
type CSVWriter struct {
	Root string
	// CreateDirs creates the microarray/ and rnaseq/ directories before
	// writing. Without it a missing directory fails the write.
	CreateDirs bool
}

// NewCSVWriter returns a writer rooted at root.
func NewCSVWriter(root string, createDirs bool) *CSVWriter {
	return &CSVWriter{Root: root, CreateDirs: createDirs}
}

// Write implements service.Sink.
func (c *CSVWriter) Write(summary *service.ExperimentSummary) error {
	const op errors.Op = "export.csv"

	if c.CreateDirs {
		if err := paths.EnsureResultDirectories(c.Root); err != nil {
			return errors.E(op, errors.KindIO, err)
		}
	}

	if err := writeFile(paths.MicroarrayFile(c.Root, summary.Accession), geo.SeriesColumns, SeriesRows(summary.Microarray)); err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	if !summary.HasRNASeq() {
		return nil
	}
	if err := writeFile(paths.RNASeqFile(c.Root, summary.Accession), sra.Columns, SequencingRows(summary.RNASeq)); err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	return nil
}

// Files lists the paths Write produces for summary.
func (c *CSVWriter) Files(summary *service.ExperimentSummary) []string {
	files := []string{paths.MicroarrayFile(c.Root, summary.Accession)}
	if summary.HasRNASeq() {
		files = append(files, paths.RNASeqFile(c.Root, summary.Accession))
	}
	return files
}

func writeFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTable(f, ',', header, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTable writes a header and rows as delimited text.
func WriteTable(w io.Writer, comma rune, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SeriesRows flattens microarray records in order.
func SeriesRows(recs []geo.SeriesRecord) [][]string {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, r.Row())
	}
	return rows
}

// SequencingRows flattens rnaseq records in order.
func SequencingRows(recs []sra.Record) [][]string {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, r.Row())
	}
	return rows
}
