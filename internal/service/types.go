package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nishad/gsefetch/internal/eutils"
	"github.com/nishad/gsefetch/internal/geo"
	"github.com/nishad/gsefetch/internal/sra"
)

// EUtils is the remote lookup the pipeline depends on.
type EUtils interface {
	Search(ctx context.Context, db eutils.Database, term string) eutils.SearchResult
	Summarize(ctx context.Context, db eutils.Database, ids []string) eutils.SummaryResult
}

// Sink receives each finished experiment summary.
type Sink interface {
	Write(summary *ExperimentSummary) error
}

// ExperimentSummary is the output unit of the pipeline, one per GEO series
// accession. RNASeq is nil when the series has no SRA relation; it is a
// non-nil, possibly empty slice when relations exist.
type ExperimentSummary struct {
	Accession  string
	Microarray []geo.SeriesRecord
	RNASeq     []sra.Record
	SRAStudies []string
	Retrieved  time.Time
}

// HasRNASeq reports whether a sequencing table exists for the series.
func (s *ExperimentSummary) HasRNASeq() bool {
	return s.RNASeq != nil
}

// AsMap renders the summary with the "rnaseq" key present only when a
// sequencing table exists.
func (s *ExperimentSummary) AsMap() map[string]interface{} {
	m := map[string]interface{}{
		"gse_id":     s.Accession,
		"microarray": s.Microarray,
		"retrieved":  s.Retrieved.UTC().Format(time.RFC3339),
	}
	if s.HasRNASeq() {
		m["rnaseq"] = s.RNASeq
		m["sra_studies"] = s.SRAStudies
	}
	return m
}

// MarshalJSON implements json.Marshaler via AsMap.
func (s *ExperimentSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.AsMap())
}

// Outcome is the result of one accession in a batch run.
type Outcome struct {
	Accession string
	Summary   *ExperimentSummary
	Err       error
}

// RunReport collects outcomes in input order.
type RunReport struct {
	Outcomes []Outcome
	Duration time.Duration
}

// Failed returns the outcomes that carry an error.
func (r *RunReport) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}
