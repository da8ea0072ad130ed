package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/nishad/gsefetch/internal/errors"
	"github.com/nishad/gsefetch/internal/export"
	"github.com/nishad/gsefetch/internal/geo"
	"github.com/nishad/gsefetch/internal/logger"
	"github.com/nishad/gsefetch/internal/service"
)

// summarize runs the pipeline for the accession in the route and writes
// an error response itself when it returns nil.
func (s *Server) summarize(w http.ResponseWriter, r *http.Request) *service.ExperimentSummary {
	accession := strings.ToUpper(mux.Vars(r)["accession"])
	if !geo.IsSeriesAccession(accession) {
		s.writeError(w, http.StatusBadRequest, "invalid GEO series accession: "+mux.Vars(r)["accession"])
		return nil
	}

	summary, err := s.experiments.Summarize(r.Context(), accession)
	if err != nil {
		logger.FromContext(r.Context()).Warn("summarize failed", zap.String("accession", accession), zap.Error(err))
		s.writeError(w, statusFor(err), err.Error())
		return nil
	}

	if s.db != nil {
		if err := s.db.SaveSummary("", summary); err != nil {
			logger.FromContext(r.Context()).Error("storing summary", zap.String("accession", accession), zap.Error(err))
		}
	}
	return summary
}

// statusFor maps pipeline failures onto HTTP statuses. Upstream problems
// are reported as 502.
func statusFor(err error) int {
	switch errors.GetKind(err) {
	case errors.KindValidation:
		return http.StatusBadRequest
	case errors.KindNetwork, errors.KindParse, errors.KindMissingField:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleGetExperiment(w http.ResponseWriter, r *http.Request) {
	summary := s.summarize(w, r)
	if summary == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

// handleTableCSV serves one table of a summary as CSV. The table is taken
// from the last path segment.
func (s *Server) handleTableCSV(w http.ResponseWriter, r *http.Request) {
	table := export.TableMicroarray
	if strings.HasSuffix(r.URL.Path, "/rnaseq.csv") {
		table = export.TableRNASeq
	}

	summary := s.summarize(w, r)
	if summary == nil {
		return
	}
	if table == export.TableRNASeq && !summary.HasRNASeq() {
		s.writeError(w, http.StatusNotFound, summary.Accession+" has no linked SRA studies")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+csvName(summary.Accession, table)+`"`)
	w.WriteHeader(http.StatusOK)
	if err := export.Render(w, summary, export.FormatCSV, table); err != nil {
		logger.FromContext(r.Context()).Error("writing csv", zap.Error(err))
	}
}

func csvName(accession string, table export.Table) string {
	if table == export.TableRNASeq {
		return accession + "_rnaseq.csv"
	}
	return accession + "_experiment_summary.csv"
}

// handleGetStored returns a summary saved by an earlier request or run.
func (s *Server) handleGetStored(w http.ResponseWriter, r *http.Request) {
	accession := strings.ToUpper(mux.Vars(r)["accession"])

	summary, err := s.db.GetSummary(accession)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summary == nil {
		s.writeError(w, http.StatusNotFound, "Experiment not stored")
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

// handleGetRun returns one fetch run recorded by "gsefetch run --sqlite".
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.db.GetFetchRun(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		s.writeError(w, http.StatusNotFound, "Fetch run not found")
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}
