// Package sra turns sra esummary entries into flat sequencing rows.
//
// Each entry carries two XML documents as JSON strings: expxml, the
// experiment description, and runs, the run descriptors. Neither has a
// single top-level element, so both are wrapped in a synthetic root
// before decoding.
package sra

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strings"

	"github.com/nishad/gsefetch/internal/errors"
	"github.com/nishad/gsefetch/internal/eutils"
)

// Columns is the CSV header for Record rows.
var Columns = []string{
	"uid", "run_id", "total_spots", "total_bases", "total_size",
	"experiment", "platform", "model", "tax_id", "sample",
	"library_strategy", "library_selection", "library_source",
	"bio_project", "bio_sample", "sra_study", "sra_id",
}

// Record is the rnaseq row for one SRA experiment.
type Record struct {
	UID              string `json:"uid" yaml:"uid"`
	RunID            string `json:"run_id" yaml:"run_id"`
	TotalSpots       string `json:"total_spots" yaml:"total_spots"`
	TotalBases       string `json:"total_bases" yaml:"total_bases"`
	TotalSize        string `json:"total_size" yaml:"total_size"`
	Experiment       string `json:"experiment" yaml:"experiment"`
	Platform         string `json:"platform" yaml:"platform"`
	Model            string `json:"model" yaml:"model"`
	TaxID            string `json:"tax_id" yaml:"tax_id"`
	Sample           string `json:"sample" yaml:"sample"`
	LibraryStrategy  string `json:"library_strategy" yaml:"library_strategy"`
	LibrarySelection string `json:"library_selection" yaml:"library_selection"`
	LibrarySource    string `json:"library_source" yaml:"library_source"`
	BioProject       string `json:"bio_project" yaml:"bio_project"`
	BioSample        string `json:"bio_sample" yaml:"bio_sample"`
	SRAStudy         string `json:"sra_study" yaml:"sra_study"`
	SRAID            string `json:"sra_id" yaml:"sra_id"`
}

// Row returns the values in Columns order.
func (r Record) Row() []string {
	return []string{
		r.UID, r.RunID, r.TotalSpots, r.TotalBases, r.TotalSize,
		r.Experiment, r.Platform, r.Model, r.TaxID, r.Sample,
		r.LibraryStrategy, r.LibrarySelection, r.LibrarySource,
		r.BioProject, r.BioSample, r.SRAStudy, r.SRAID,
	}
}

// StudyQuery ORs SRA study accessions into one esearch term.
func StudyQuery(studies []string) string {
	return strings.Join(studies, " OR ")
}

// WrapFragment puts a fragment with several top-level elements inside a
// single synthetic root element so it can be decoded as one document.
func WrapFragment(fragment string) string {
	return "<" + syntheticRoot + ">" + fragment + "</" + syntheticRoot + ">"
}

// decodeFragment wraps and decodes fragment into v.
func decodeFragment(op errors.Op, uid, field, fragment string, v interface{}) error {
	d := xml.NewDecoder(bytes.NewReader([]byte(WrapFragment(fragment))))
	d.Entity = xml.HTMLEntity
	if err := d.Decode(v); err != nil {
		return errors.E(op, errors.KindParse, err, "record "+uid+": "+field)
	}
	return nil
}

// NewRecord validates and converts one raw esummary entry.
func NewRecord(uid string, raw json.RawMessage) (Record, error) {
	const op errors.Op = "sra.record"

	var entry map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Record{}, errors.E(op, errors.KindParse, err, "record "+uid)
	}

	expText, err := stringField(op, uid, entry, "expxml")
	if err != nil {
		return Record{}, err
	}
	runsText, err := stringField(op, uid, entry, "runs")
	if err != nil {
		return Record{}, err
	}

	var exp experimentXML
	if err := decodeFragment(op, uid, "expxml", expText, &exp); err != nil {
		return Record{}, err
	}
	var runs runsXML
	if err := decodeFragment(op, uid, "runs", runsText, &runs); err != nil {
		return Record{}, err
	}

	return buildRecord(uid, &exp, &runs)
}

// ParseSummary converts every entry of an sra summary, in uid order.
func ParseSummary(s *eutils.Summary) ([]Record, error) {
	out := make([]Record, 0, s.Len())
	for _, uid := range s.UIDs {
		raw, ok := s.Record(uid)
		if !ok {
			return nil, errors.Missing("sra.record", uid, "result."+uid)
		}
		rec, err := NewRecord(uid, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// fieldReader collects the first missing path so buildRecord reads flat.
type fieldReader struct {
	uid string
	err error
}

func (f *fieldReader) get(path string, v *string) string {
	if f.err != nil {
		return ""
	}
	if v == nil {
		f.err = errors.Missing("sra.record", f.uid, path)
		return ""
	}
	return *v
}

func buildRecord(uid string, exp *experimentXML, runs *runsXML) (Record, error) {
	f := &fieldReader{uid: uid}
	rec := Record{UID: uid}

	rec.RunID = f.get("runs/Run@acc", runAccessions(runs))

	var stats statistics
	var plat platform
	if exp.Summary == nil {
		f.get("expxml/Summary", nil)
	} else {
		if exp.Summary.Statistics == nil {
			f.get("expxml/Summary/Statistics", nil)
		} else {
			stats = *exp.Summary.Statistics
		}
		if exp.Summary.Platform == nil {
			f.get("expxml/Summary/Platform", nil)
		} else {
			plat = *exp.Summary.Platform
		}
	}
	rec.TotalSpots = f.get("expxml/Summary/Statistics@total_spots", stats.TotalSpots)
	rec.TotalBases = f.get("expxml/Summary/Statistics@total_bases", stats.TotalBases)
	rec.TotalSize = f.get("expxml/Summary/Statistics@total_size", stats.TotalSize)
	rec.Experiment = f.get("expxml/Experiment@acc", acc(exp.Experiment))
	rec.Platform = f.get("expxml/Summary/Platform#text", nonEmpty(strings.TrimSpace(plat.Name)))
	rec.Model = f.get("expxml/Summary/Platform@instrument_model", plat.InstrumentModel)

	var taxID *string
	if exp.Organism != nil {
		taxID = exp.Organism.TaxID
	}
	rec.TaxID = f.get("expxml/Organism@taxid", taxID)
	rec.Sample = f.get("expxml/Sample@acc", acc(exp.Sample))

	lib := exp.LibraryDescriptor
	if lib == nil {
		f.get("expxml/Library_descriptor", nil)
		lib = &libraryDescriptor{}
	}
	rec.LibraryStrategy = f.get("expxml/Library_descriptor/LIBRARY_STRATEGY", text(lib.Strategy))
	rec.LibrarySelection = f.get("expxml/Library_descriptor/LIBRARY_SELECTION", text(lib.Selection))
	rec.LibrarySource = f.get("expxml/Library_descriptor/LIBRARY_SOURCE", text(lib.Source))
	rec.BioProject = f.get("expxml/Bioproject", text(exp.Bioproject))
	rec.BioSample = f.get("expxml/Biosample", text(exp.Biosample))
	rec.SRAStudy = f.get("expxml/Study@acc", acc(exp.Study))
	rec.SRAID = f.get("expxml/Submitter@acc", acc(exp.Submitter))

	if f.err != nil {
		return Record{}, f.err
	}
	return rec, nil
}

// runAccessions joins the accessions of every Run with ";". Nil when
// there is no Run or one lacks an accession.
func runAccessions(runs *runsXML) *string {
	if len(runs.Runs) == 0 {
		return nil
	}
	accs := make([]string, 0, len(runs.Runs))
	for _, r := range runs.Runs {
		if r.Acc == nil {
			return nil
		}
		accs = append(accs, *r.Acc)
	}
	joined := strings.Join(accs, ";")
	return &joined
}

func acc(ref *accRef) *string {
	if ref == nil {
		return nil
	}
	return ref.Acc
}

// text trims an element's character data. An empty element stays present.
func text(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringField(op errors.Op, uid string, entry map[string]json.RawMessage, key string) (string, error) {
	raw, ok := entry[key]
	if !ok {
		return "", errors.Missing(op, uid, key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", errors.E(op, errors.KindParse, err, "record "+uid+": "+key+" is not a string")
	}
	return s, nil
}
