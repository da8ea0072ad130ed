package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nishad/gsefetch/internal/geo"
	"github.com/nishad/gsefetch/internal/service"
	"github.com/nishad/gsefetch/internal/sra"
)

// Format is an output format for a single summary.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
	FormatTSV   Format = "tsv"
)

// Table selects which table a delimited render emits.
type Table string

const (
	TableMicroarray Table = "microarray"
	TableRNASeq     Table = "rnaseq"
)

// ParseFormat accepts the format names the CLI and API take.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "tsv":
		return FormatTSV, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// Render writes summary to w in format. Delimited formats emit only the
// given table; rendering the rnaseq table of a summary without one fails.
func Render(w io.Writer, summary *service.ExperimentSummary, format Format, table Table) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	case FormatJSONL:
		return renderJSONLines(w, summary, table)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(summary.AsMap()); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		return renderDelimited(w, ',', summary, table)
	case FormatTSV:
		return renderDelimited(w, '\t', summary, table)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

func renderDelimited(w io.Writer, comma rune, summary *service.ExperimentSummary, table Table) error {
	header, rows, err := tableRows(summary, table)
	if err != nil {
		return err
	}
	return WriteTable(w, comma, header, rows)
}

// renderJSONLines writes one record object per line.
func renderJSONLines(w io.Writer, summary *service.ExperimentSummary, table Table) error {
	enc := json.NewEncoder(w)
	switch table {
	case TableRNASeq:
		if !summary.HasRNASeq() {
			return fmt.Errorf("%s has no rnaseq table", summary.Accession)
		}
		for _, r := range summary.RNASeq {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
	default:
		for _, r := range summary.Microarray {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
	}
	return nil
}

func tableRows(summary *service.ExperimentSummary, table Table) ([]string, [][]string, error) {
	switch table {
	case TableRNASeq:
		if !summary.HasRNASeq() {
			return nil, nil, fmt.Errorf("%s has no rnaseq table", summary.Accession)
		}
		return sra.Columns, SequencingRows(summary.RNASeq), nil
	case TableMicroarray, "":
		return geo.SeriesColumns, SeriesRows(summary.Microarray), nil
	default:
		return nil, nil, fmt.Errorf("unknown table: %s", table)
	}
}
