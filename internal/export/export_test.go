package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nishad/gsefetch/internal/errors"
	"github.com/nishad/gsefetch/internal/geo"
	"github.com/nishad/gsefetch/internal/service"
	"github.com/nishad/gsefetch/internal/sra"
	"github.com/nishad/gsefetch/internal/testutil"
)

func sampleSummary(withRNASeq bool) *service.ExperimentSummary {
	s := &service.ExperimentSummary{
		Accession: "GSE89408",
		Microarray: []geo.SeriesRecord{
			{UID: "200089408", GPL: "11154", SuppFile: "TXT", FTPLink: "ftp://ftp.ncbi.nlm.nih.gov/geo/series/GSE89nnn/GSE89408/"},
		},
		Retrieved: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if withRNASeq {
		s.RNASeq = []sra.Record{
			{UID: "3311111", RunID: "SRR4785590", TotalSpots: "24619468", Platform: "ILLUMINA", Model: "Illumina HiSeq 2500"},
		}
		s.SRAStudies = []string{"SRP092402"}
	}
	return s
}

func TestCSVWriter_WritesBothTables(t *testing.T) {
	root := t.TempDir()
	w := NewCSVWriter(root, true)

	if err := w.Write(sampleSummary(true)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	micro := testutil.ReadFile(t, filepath.Join(root, "microarray", "GSE89408_experiment_summary.csv"))
	lines := strings.Split(strings.TrimSpace(micro), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if lines[0] != "uid,gpl,suppfile,ftplink" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "200089408,11154,TXT,") {
		t.Errorf("unexpected row %q", lines[1])
	}

	rna := testutil.ReadFile(t, filepath.Join(root, "rnaseq", "GSE89408_rnaseq.csv"))
	if !strings.HasPrefix(rna, strings.Join(sra.Columns, ",")+"\n") {
		t.Errorf("rnaseq file should start with the header, got %q", rna)
	}
	if !strings.Contains(rna, "SRR4785590") {
		t.Errorf("rnaseq file missing run id: %q", rna)
	}
}

func TestCSVWriter_SkipsRNASeqWhenAbsent(t *testing.T) {
	root := t.TempDir()
	w := NewCSVWriter(root, true)
	s := sampleSummary(false)

	if err := w.Write(s); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "rnaseq", "GSE89408_rnaseq.csv")); !os.IsNotExist(err) {
		t.Errorf("rnaseq file should not exist, stat err = %v", err)
	}
	if got := w.Files(s); len(got) != 1 {
		t.Errorf("Files() = %v, want only the microarray file", got)
	}
}

func TestCSVWriter_EmptyRNASeqWritesHeaderOnly(t *testing.T) {
	root := t.TempDir()
	s := sampleSummary(false)
	s.RNASeq = []sra.Record{}

	if err := NewCSVWriter(root, true).Write(s); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	rna := testutil.ReadFile(t, filepath.Join(root, "rnaseq", "GSE89408_rnaseq.csv"))
	if strings.TrimSpace(rna) != strings.Join(sra.Columns, ",") {
		t.Errorf("expected header only, got %q", rna)
	}
}

func TestCSVWriter_MissingDirectoryFails(t *testing.T) {
	root := t.TempDir()
	err := NewCSVWriter(root, false).Write(sampleSummary(false))
	if err == nil {
		t.Fatal("expected an error when microarray/ does not exist")
	}
	if !errors.IsKind(err, errors.KindIO) {
		t.Errorf("expected KindIO, got %v", errors.GetKind(err))
	}
}

func TestCSVWriter_QuotesCommas(t *testing.T) {
	root := t.TempDir()
	s := sampleSummary(false)
	s.Microarray[0].SuppFile = "CEL, TXT"

	if err := NewCSVWriter(root, true).Write(s); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	micro := testutil.ReadFile(t, filepath.Join(root, "microarray", "GSE89408_experiment_summary.csv"))
	if !strings.Contains(micro, `"CEL, TXT"`) {
		t.Errorf("field with a comma should be quoted: %q", micro)
	}
}

func TestRender_JSONOmitsAbsentRNASeq(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleSummary(false), FormatJSON, ""); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, ok := m["rnaseq"]; ok {
		t.Error("rnaseq key should be absent")
	}
	if m["gse_id"] != "GSE89408" {
		t.Errorf("gse_id = %v", m["gse_id"])
	}
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleSummary(true), FormatYAML, ""); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var m map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if _, ok := m["rnaseq"]; !ok {
		t.Error("rnaseq key should be present")
	}
}

func TestRender_TSVRNASeq(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleSummary(true), FormatTSV, TableRNASeq); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if first != strings.Join(sra.Columns, "\t") {
		t.Errorf("unexpected header %q", first)
	}
}

func TestRender_RNASeqTableWithoutRNASeq(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleSummary(false), FormatCSV, TableRNASeq); err == nil {
		t.Fatal("expected an error for a missing rnaseq table")
	}
}

func TestRender_JSONLines(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleSummary(true), FormatJSONL, TableRNASeq); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], `"run_id":"SRR4785590"`) {
		t.Errorf("unexpected jsonl output %q", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"JSON": FormatJSON, "ndjson": FormatJSONL, "yml": FormatYAML, "csv": FormatCSV, "tsv": FormatTSV}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("xml should be rejected")
	}
}
