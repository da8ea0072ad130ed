package geo

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/nishad/gsefetch/internal/errors"
	"github.com/nishad/gsefetch/internal/eutils"
	"github.com/nishad/gsefetch/internal/testutil"
)

func mustSummary(t *testing.T, uids []string, records map[string]interface{}) *eutils.Summary {
	t.Helper()
	s, err := eutils.ParseSummary(testutil.SummaryJSON(uids, records))
	if err != nil {
		t.Fatalf("failed to build summary: %v", err)
	}
	return s
}

func TestSeriesQuery(t *testing.T) {
	if got := SeriesQuery("GSE89408"); got != "GSE89408 AND gse[ETYP]" {
		t.Errorf("SeriesQuery() = %q", got)
	}
}

func TestParseSeries_TwoRecordsKeepOrder(t *testing.T) {
	s := mustSummary(t, []string{"200000002", "200000001"}, map[string]interface{}{
		"200000001": testutil.SeriesRecord("200000001", "GSE1", "570", "CEL", "ftp://ftp.ncbi.nlm.nih.gov/geo/series/GSE1nnn/GSE1/"),
		"200000002": testutil.SeriesRecord("200000002", "GSE2", "11154;16791", "TXT", "ftp://ftp.ncbi.nlm.nih.gov/geo/series/GSE2nnn/GSE2/"),
	})

	rows, err := ParseSeries(s)
	if err != nil {
		t.Fatalf("ParseSeries failed: %v", err)
	}

	want := []SeriesRecord{
		{UID: "200000002", GPL: "11154;16791", SuppFile: "TXT", FTPLink: "ftp://ftp.ncbi.nlm.nih.gov/geo/series/GSE2nnn/GSE2/"},
		{UID: "200000001", GPL: "570", SuppFile: "CEL", FTPLink: "ftp://ftp.ncbi.nlm.nih.gov/geo/series/GSE1nnn/GSE1/"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("ParseSeries() = %+v, want %+v", rows, want)
	}
	if len(rows[0].Row()) != len(SeriesColumns) {
		t.Errorf("row has %d values for %d columns", len(rows[0].Row()), len(SeriesColumns))
	}
}

func TestParseSeries_Empty(t *testing.T) {
	rows, err := ParseSeries(eutils.NewSummary())
	if err != nil {
		t.Fatalf("ParseSeries failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestParseSeries_MissingField(t *testing.T) {
	for _, field := range []string{"gpl", "suppfile", "ftplink"} {
		t.Run(field, func(t *testing.T) {
			rec := testutil.SeriesRecord("7", "GSE7", "570", "CEL", "ftp://x/")
			delete(rec, field)
			s := mustSummary(t, []string{"7"}, map[string]interface{}{"7": rec})

			_, err := ParseSeries(s)
			fe, ok := errors.AsFieldError(err)
			if !ok {
				t.Fatalf("expected FieldError, got %v", err)
			}
			if fe.UID != "7" || fe.Field != field {
				t.Errorf("unexpected FieldError %+v", fe)
			}
		})
	}
}

func TestParseSeries_MissingRecord(t *testing.T) {
	s := mustSummary(t, []string{"1", "2"}, map[string]interface{}{
		"1": testutil.SeriesRecord("1", "GSE1", "570", "CEL", "ftp://x/"),
	})

	_, err := ParseSeries(s)
	if fe, ok := errors.AsFieldError(err); !ok || fe.UID != "2" {
		t.Fatalf("expected FieldError for uid 2, got %v", err)
	}
}

func TestNewSeriesRecord_NumericAndNonScalar(t *testing.T) {
	rec, err := NewSeriesRecord("1", json.RawMessage(`{"gpl":570,"suppfile":"CEL","ftplink":"ftp://x/"}`))
	if err != nil {
		t.Fatalf("NewSeriesRecord failed: %v", err)
	}
	if rec.GPL != "570" {
		t.Errorf("expected numeric gpl to be kept as 570, got %q", rec.GPL)
	}

	_, err = NewSeriesRecord("1", json.RawMessage(`{"gpl":["570"],"suppfile":"CEL","ftplink":"ftp://x/"}`))
	if !errors.IsKind(err, errors.KindParse) {
		t.Errorf("expected parse error for list gpl, got %v", err)
	}
}

func TestFindSRARelations_FiltersByType(t *testing.T) {
	s := mustSummary(t, []string{"1"}, map[string]interface{}{
		"1": testutil.SeriesRecord("1", "GSE1", "570", "CEL", "ftp://x/",
			testutil.SRARelation("SRP1"),
			testutil.Relation{Type: "Other", Target: "X"},
		),
	})

	got, err := FindSRARelations(s)
	if err != nil {
		t.Fatalf("FindSRARelations failed: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"SRP1"}) {
		t.Errorf("FindSRARelations() = %v, want [SRP1]", got)
	}
}

func TestFindSRARelations_OrderAndDuplicates(t *testing.T) {
	s := mustSummary(t, []string{"b", "a"}, map[string]interface{}{
		"a": testutil.SeriesRecord("a", "GSE1", "570", "CEL", "ftp://x/", testutil.SRARelation("SRP3")),
		"b": testutil.SeriesRecord("b", "GSE2", "570", "CEL", "ftp://y/",
			testutil.SRARelation("SRP1"),
			testutil.SRARelation("SRP2"),
			testutil.SRARelation("SRP3"),
		),
	})

	got, err := FindSRARelations(s)
	if err != nil {
		t.Fatalf("FindSRARelations failed: %v", err)
	}
	want := []string{"SRP1", "SRP2", "SRP3", "SRP3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindSRARelations() = %v, want %v", got, want)
	}
}

func TestFindSRARelations_None(t *testing.T) {
	s := mustSummary(t, []string{"1"}, map[string]interface{}{
		"1": testutil.SeriesRecord("1", "GSE1", "570", "CEL", "ftp://x/", testutil.Relation{Type: "BioProject", Target: "PRJNA1"}),
	})

	got, err := FindSRARelations(s)
	if err != nil {
		t.Fatalf("FindSRARelations failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no targets, got %v", got)
	}
}

func TestFindSRARelations_MissingExtrelations(t *testing.T) {
	rec := testutil.SeriesRecord("1", "GSE1", "570", "CEL", "ftp://x/")
	delete(rec, "extrelations")
	s := mustSummary(t, []string{"1"}, map[string]interface{}{"1": rec})

	_, err := FindSRARelations(s)
	if fe, ok := errors.AsFieldError(err); !ok || fe.Field != "extrelations" {
		t.Fatalf("expected extrelations FieldError, got %v", err)
	}
}

func TestRelations_SRAWithoutTarget(t *testing.T) {
	_, err := Relations("1", json.RawMessage(`{"extrelations":[{"relationtype":"SRA"}]}`))
	if fe, ok := errors.AsFieldError(err); !ok || fe.Field != "targetobject" {
		t.Fatalf("expected targetobject FieldError, got %v", err)
	}
}

func TestIsSeriesAccession(t *testing.T) {
	for _, ok := range []string{"GSE1", "GSE89408"} {
		if !IsSeriesAccession(ok) {
			t.Errorf("%q should be a series accession", ok)
		}
	}
	for _, bad := range []string{"", "GSE", "gse1", "GSM1", "GSE1 OR x", "SRP999"} {
		if IsSeriesAccession(bad) {
			t.Errorf("%q should not be a series accession", bad)
		}
	}
}
