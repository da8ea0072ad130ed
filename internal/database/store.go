package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nishad/gsefetch/internal/geo"
	"github.com/nishad/gsefetch/internal/service"
	"github.com/nishad/gsefetch/internal/sra"
)

// Store is a service.Sink that saves every summary under one fetch run.
type Store struct {
	db    *DB
	runID string
	count int
}

// NewStore opens a fetch run and returns a sink bound to it.
func NewStore(db *DB) (*Store, error) {
	id := uuid.NewString()
	_, err := db.Exec(`INSERT INTO fetch_runs (id, started_at) VALUES (?, ?)`, id, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to start fetch run: %w", err)
	}
	return &Store{db: db, runID: id}, nil
}

// RunID returns the id of the fetch run this store writes under.
func (s *Store) RunID() string {
	return s.runID
}

// Write implements service.Sink.
func (s *Store) Write(summary *service.ExperimentSummary) error {
	if err := s.db.SaveSummary(s.runID, summary); err != nil {
		return err
	}
	s.count++
	return nil
}

// Finish closes the fetch run with the number of failed accessions.
func (s *Store) Finish(failed int) error {
	_, err := s.db.Exec(`UPDATE fetch_runs SET finished_at = ?, accessions = ?, failed = ? WHERE id = ?`,
		time.Now().UTC(), s.count+failed, failed, s.runID)
	if err != nil {
		return fmt.Errorf("failed to finish fetch run: %w", err)
	}
	return nil
}

// SaveSummary replaces everything stored for the summary's accession.
func (db *DB) SaveSummary(runID string, summary *service.ExperimentSummary) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range append(childTables, "experiments") {
		safeTable, err := SafeTableName(table)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE accession = ?", safeTable), summary.Accession); err != nil {
			return fmt.Errorf("failed to clear %s from %s: %w", summary.Accession, table, err)
		}
	}

	var run interface{}
	if runID != "" {
		run = runID
	}
	_, err = tx.Exec(`INSERT INTO experiments (accession, has_rnaseq, sra_studies, fetch_run, retrieved_at)
		VALUES (?, ?, ?, ?, ?)`,
		summary.Accession, summary.HasRNASeq(), strings.Join(summary.SRAStudies, ","), run, summary.Retrieved.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert experiment %s: %w", summary.Accession, err)
	}

	seriesStmt, err := tx.Prepare(`INSERT OR REPLACE INTO series
		(accession, position, uid, gpl, suppfile, ftplink) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer seriesStmt.Close()

	for i, r := range summary.Microarray {
		if _, err := seriesStmt.Exec(summary.Accession, i, r.UID, r.GPL, r.SuppFile, r.FTPLink); err != nil {
			return fmt.Errorf("failed to insert series %s: %w", r.UID, err)
		}
	}

	runStmt, err := tx.Prepare(`INSERT OR REPLACE INTO sequencing_runs
		(accession, position, uid, run_id, total_spots, total_bases, total_size, experiment,
		 platform, model, tax_id, sample, library_strategy, library_selection, library_source,
		 bio_project, bio_sample, sra_study, sra_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer runStmt.Close()

	for i, r := range summary.RNASeq {
		_, err := runStmt.Exec(summary.Accession, i, r.UID, r.RunID, r.TotalSpots, r.TotalBases, r.TotalSize,
			r.Experiment, r.Platform, r.Model, r.TaxID, r.Sample, r.LibraryStrategy, r.LibrarySelection,
			r.LibrarySource, r.BioProject, r.BioSample, r.SRAStudy, r.SRAID)
		if err != nil {
			return fmt.Errorf("failed to insert sequencing run %s: %w", r.UID, err)
		}
	}

	return tx.Commit()
}

// GetExperiment returns the stored header for accession, or nil if none.
func (db *DB) GetExperiment(accession string) (*Experiment, error) {
	var e Experiment
	var studies string
	var run sql.NullString
	err := db.QueryRow(`SELECT accession, has_rnaseq, sra_studies, fetch_run, retrieved_at
		FROM experiments WHERE accession = ?`, accession).
		Scan(&e.Accession, &e.HasRNASeq, &studies, &run, &e.RetrievedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if studies != "" {
		e.SRAStudies = strings.Split(studies, ",")
	}
	e.FetchRun = run.String
	return &e, nil
}

// GetSeries returns the microarray rows stored for accession in their
// original order.
func (db *DB) GetSeries(accession string) ([]geo.SeriesRecord, error) {
	rows, err := db.Query(`SELECT uid, gpl, suppfile, ftplink FROM series
		WHERE accession = ? ORDER BY position`, accession)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []geo.SeriesRecord
	for rows.Next() {
		var r geo.SeriesRecord
		if err := rows.Scan(&r.UID, &r.GPL, &r.SuppFile, &r.FTPLink); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetSequencing returns the rnaseq rows stored for accession in their
// original order.
func (db *DB) GetSequencing(accession string) ([]sra.Record, error) {
	rows, err := db.Query(`SELECT uid, run_id, total_spots, total_bases, total_size, experiment,
		platform, model, tax_id, sample, library_strategy, library_selection, library_source,
		bio_project, bio_sample, sra_study, sra_id
		FROM sequencing_runs WHERE accession = ? ORDER BY position`, accession)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sra.Record
	for rows.Next() {
		var r sra.Record
		err := rows.Scan(&r.UID, &r.RunID, &r.TotalSpots, &r.TotalBases, &r.TotalSize, &r.Experiment,
			&r.Platform, &r.Model, &r.TaxID, &r.Sample, &r.LibraryStrategy, &r.LibrarySelection,
			&r.LibrarySource, &r.BioProject, &r.BioSample, &r.SRAStudy, &r.SRAID)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetSummary rebuilds a stored summary, or returns nil if accession was
// never saved. RNASeq is nil unless the stored summary had relations.
func (db *DB) GetSummary(accession string) (*service.ExperimentSummary, error) {
	exp, err := db.GetExperiment(accession)
	if err != nil || exp == nil {
		return nil, err
	}

	s := &service.ExperimentSummary{
		Accession:  exp.Accession,
		SRAStudies: exp.SRAStudies,
		Retrieved:  exp.RetrievedAt,
	}
	if s.Microarray, err = db.GetSeries(accession); err != nil {
		return nil, err
	}
	if s.Microarray == nil {
		s.Microarray = []geo.SeriesRecord{}
	}
	if exp.HasRNASeq {
		recs, err := db.GetSequencing(accession)
		if err != nil {
			return nil, err
		}
		if recs == nil {
			recs = []sra.Record{}
		}
		s.RNASeq = recs
	}
	return s, nil
}

// GetFetchRun returns a fetch run by id, or nil if unknown.
func (db *DB) GetFetchRun(id string) (*FetchRun, error) {
	var r FetchRun
	var finished sql.NullTime
	err := db.QueryRow(`SELECT id, started_at, finished_at, accessions, failed FROM fetch_runs WHERE id = ?`, id).
		Scan(&r.ID, &r.StartedAt, &finished, &r.Accessions, &r.Failed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		r.FinishedAt = &finished.Time
	}
	return &r, nil
}
