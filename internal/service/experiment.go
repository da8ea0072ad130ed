// Package service runs the experiment summary pipeline: look up a GEO
// series, extract its microarray row, follow SRA relations and extract the
// linked sequencing rows.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nishad/gsefetch/internal/errors"
	"github.com/nishad/gsefetch/internal/eutils"
	"github.com/nishad/gsefetch/internal/geo"
	"github.com/nishad/gsefetch/internal/logger"
	"github.com/nishad/gsefetch/internal/metrics"
	"github.com/nishad/gsefetch/internal/sra"
)

// Options tune ExperimentService.
type Options struct {
	// Strict turns a failed remote call into an error instead of an
	// empty result.
	Strict bool
}

// ExperimentService builds ExperimentSummary values from E-utilities.
type ExperimentService struct {
	client EUtils
	logger *zap.Logger
	opts   Options
	now    func() time.Time
}

// NewExperimentService creates a new experiment service instance
func NewExperimentService(client EUtils, log *zap.Logger, opts Options) *ExperimentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExperimentService{
		client: client,
		logger: log,
		opts:   opts,
		now:    time.Now,
	}
}

// loggerFor prefers a request-scoped logger stored in ctx.
func (s *ExperimentService) loggerFor(ctx context.Context) *zap.Logger {
	if l := logger.FromContext(ctx); l.Core().Enabled(zap.ErrorLevel) {
		return l
	}
	return s.logger
}

// Summarize runs the pipeline for one series accession.
func (s *ExperimentService) Summarize(ctx context.Context, accession string) (*ExperimentSummary, error) {
	const op errors.Op = "service.summarize"

	accession = strings.TrimSpace(accession)
	if accession == "" {
		return nil, errors.E(op, errors.KindValidation, "empty accession")
	}
	log := s.loggerFor(ctx).With(zap.String("accession", accession))

	summary, err := s.fetch(ctx, log, eutils.GDS, geo.SeriesQuery(accession))
	if err != nil {
		return s.fail(op, accession, err)
	}

	rows, err := geo.ParseSeries(summary)
	if err != nil {
		return s.fail(op, accession, err)
	}
	targets, err := geo.FindSRARelations(summary)
	if err != nil {
		return s.fail(op, accession, err)
	}

	out := &ExperimentSummary{
		Accession:  accession,
		Microarray: rows,
		Retrieved:  s.now(),
	}
	metrics.RecordsExtractedTotal.WithLabelValues("microarray").Add(float64(len(rows)))

	if len(targets) == 0 {
		log.Info("summarized series", zap.Int("microarray_rows", len(rows)))
		metrics.ExperimentsTotal.WithLabelValues("microarray").Inc()
		return out, nil
	}

	sraSummary, err := s.fetch(ctx, log, eutils.SRA, sra.StudyQuery(targets))
	if err != nil {
		return s.fail(op, accession, err)
	}
	recs, err := sra.ParseSummary(sraSummary)
	if err != nil {
		return s.fail(op, accession, err)
	}

	out.RNASeq = recs
	out.SRAStudies = targets
	metrics.RecordsExtractedTotal.WithLabelValues("rnaseq").Add(float64(len(recs)))
	metrics.ExperimentsTotal.WithLabelValues("rnaseq").Inc()

	log.Info("summarized series",
		zap.Int("microarray_rows", len(rows)),
		zap.Strings("sra_studies", targets),
		zap.Int("rnaseq_rows", len(recs)),
	)
	return out, nil
}

// fetch runs search then summarize against db. A failed call is logged
// and read as empty unless the service is strict. Cancellation always
// aborts.
func (s *ExperimentService) fetch(ctx context.Context, log *zap.Logger, db eutils.Database, term string) (*eutils.Summary, error) {
	found := s.client.Search(ctx, db, term)
	if found.Failed() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap("service.search", err)
		}
		if s.opts.Strict {
			return nil, errors.WrapMsg("service.search", fmt.Sprintf("%s search %q", db, term), found.Err)
		}
		log.Warn("search failed, continuing with no results",
			zap.String("db", string(db)),
			zap.String("term", term),
			zap.Error(found.Err),
		)
	}

	res := s.client.Summarize(ctx, db, found.IDs)
	if res.Failed() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap("service.summary", err)
		}
		if s.opts.Strict {
			return nil, errors.WrapMsg("service.summary", fmt.Sprintf("%s summary of %d ids", db, len(found.IDs)), res.Err)
		}
		log.Warn("summary failed, continuing with no records",
			zap.String("db", string(db)),
			zap.Int("ids", len(found.IDs)),
			zap.Error(res.Err),
		)
	}
	return res.Summary, nil
}

func (s *ExperimentService) fail(op errors.Op, accession string, err error) (*ExperimentSummary, error) {
	metrics.ExperimentsTotal.WithLabelValues("error").Inc()
	return nil, errors.WrapMsg(op, accession, err)
}

// Run summarizes each accession in order and hands every successful
// summary to the sinks. A failure affects only its own accession.
func (s *ExperimentService) Run(ctx context.Context, accessions []string, sinks ...Sink) *RunReport {
	start := s.now()
	report := &RunReport{}

	for _, acc := range accessions {
		if err := ctx.Err(); err != nil {
			report.Outcomes = append(report.Outcomes, Outcome{Accession: acc, Err: err})
			continue
		}

		summary, err := s.Summarize(ctx, acc)
		if err == nil {
			err = writeAll(summary, sinks)
		}
		if err != nil {
			s.loggerFor(ctx).Error("experiment failed", zap.String("accession", acc), zap.Error(err))
		}
		report.Outcomes = append(report.Outcomes, Outcome{Accession: acc, Summary: summary, Err: err})
	}

	report.Duration = s.now().Sub(start)
	return report
}

func writeAll(summary *ExperimentSummary, sinks []Sink) error {
	for _, sink := range sinks {
		if err := sink.Write(summary); err != nil {
			return errors.WrapMsg("service.write", summary.Accession, err)
		}
	}
	return nil
}
