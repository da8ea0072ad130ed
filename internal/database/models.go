package database

import "time"

// FetchRun is one invocation of the pipeline that wrote to the database.
type FetchRun struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Accessions int        `json:"accessions"`
	Failed     int        `json:"failed"`
}

// Experiment is the stored header of one experiment summary.
type Experiment struct {
	Accession   string    `json:"accession"`
	HasRNASeq   bool      `json:"has_rnaseq"`
	SRAStudies  []string  `json:"sra_studies,omitempty"`
	FetchRun    string    `json:"fetch_run"`
	RetrievedAt time.Time `json:"retrieved_at"`
}
