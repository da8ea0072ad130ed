// Package geo turns gds esummary records for GEO series into typed rows
// and finds the SRA studies a series links to.
package geo

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/nishad/gsefetch/internal/errors"
	"github.com/nishad/gsefetch/internal/eutils"
)

// SRARelationType marks an extrelation that points at an SRA study.
const SRARelationType = "SRA"

// SeriesColumns is the CSV header for SeriesRecord rows.
var SeriesColumns = []string{"uid", "gpl", "suppfile", "ftplink"}

// SeriesRecord is the microarray row for one GEO series.
type SeriesRecord struct {
	UID      string `json:"uid" yaml:"uid"`
	GPL      string `json:"gpl" yaml:"gpl"`
	SuppFile string `json:"suppfile" yaml:"suppfile"`
	FTPLink  string `json:"ftplink" yaml:"ftplink"`
}

// Row returns the values in SeriesColumns order.
func (r SeriesRecord) Row() []string {
	return []string{r.UID, r.GPL, r.SuppFile, r.FTPLink}
}

// ExtRelation is a link from a series to an object in another database.
type ExtRelation struct {
	RelationType  string `json:"relationtype"`
	TargetObject  string `json:"targetobject"`
	TargetFTPLink string `json:"targetftplink,omitempty"`
}

// SeriesQuery restricts an accession search to the series entry itself,
// so platforms and samples sharing the accession in their text do not match.
func SeriesQuery(accession string) string {
	return accession + " AND gse[ETYP]"
}

var seriesAccession = regexp.MustCompile(`^GSE[0-9]+$`)

// IsSeriesAccession reports whether s looks like a GEO series accession.
func IsSeriesAccession(s string) bool {
	return seriesAccession.MatchString(s)
}

// NewSeriesRecord validates and converts one raw esummary entry.
func NewSeriesRecord(uid string, raw json.RawMessage) (SeriesRecord, error) {
	const op errors.Op = "geo.series"

	rec, err := decodeObject(op, uid, raw)
	if err != nil {
		return SeriesRecord{}, err
	}

	out := SeriesRecord{UID: uid}
	fields := []struct {
		key string
		dst *string
	}{
		{"gpl", &out.GPL},
		{"suppfile", &out.SuppFile},
		{"ftplink", &out.FTPLink},
	}
	for _, f := range fields {
		v, err := scalarField(op, uid, rec, f.key)
		if err != nil {
			return SeriesRecord{}, err
		}
		*f.dst = v
	}
	return out, nil
}

// ParseSeries converts every entry of a gds summary, in uid order.
func ParseSeries(s *eutils.Summary) ([]SeriesRecord, error) {
	out := make([]SeriesRecord, 0, s.Len())
	for _, uid := range s.UIDs {
		raw, ok := s.Record(uid)
		if !ok {
			return nil, errors.Missing("geo.series", uid, "result."+uid)
		}
		rec, err := NewSeriesRecord(uid, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Relations returns the extrelations of one raw entry.
func Relations(uid string, raw json.RawMessage) ([]ExtRelation, error) {
	const op errors.Op = "geo.relations"

	rec, err := decodeObject(op, uid, raw)
	if err != nil {
		return nil, err
	}
	ext, ok := rec["extrelations"]
	if !ok {
		return nil, errors.Missing(op, uid, "extrelations")
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(ext, &items); err != nil {
		return nil, errors.E(op, errors.KindParse, err, "record "+uid+": extrelations")
	}

	rels := make([]ExtRelation, 0, len(items))
	for _, item := range items {
		var rel ExtRelation
		if rel.RelationType, err = scalarField(op, uid, item, "relationtype"); err != nil {
			return nil, err
		}
		if rel.RelationType == SRARelationType {
			if rel.TargetObject, err = scalarField(op, uid, item, "targetobject"); err != nil {
				return nil, err
			}
		} else {
			rel.TargetObject, _ = scalarField(op, uid, item, "targetobject")
		}
		rel.TargetFTPLink, _ = scalarField(op, uid, item, "targetftplink")
		rels = append(rels, rel)
	}
	return rels, nil
}

// FindSRARelations flattens every entry's extrelations and returns the
// target objects of SRA relations, in uid order then relation order.
// Duplicates are kept.
func FindSRARelations(s *eutils.Summary) ([]string, error) {
	targets := []string{}
	for _, uid := range s.UIDs {
		raw, ok := s.Record(uid)
		if !ok {
			return nil, errors.Missing("geo.relations", uid, "result."+uid)
		}
		rels, err := Relations(uid, raw)
		if err != nil {
			return nil, err
		}
		for _, rel := range rels {
			if rel.RelationType == SRARelationType {
				targets = append(targets, rel.TargetObject)
			}
		}
	}
	return targets, nil
}

func decodeObject(op errors.Op, uid string, raw json.RawMessage) (map[string]json.RawMessage, error) {
	var rec map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, errors.E(op, errors.KindParse, err, "record "+uid)
	}
	if rec == nil {
		return nil, errors.Missing(op, uid, "result."+uid)
	}
	return rec, nil
}

// scalarField reads key as a string. Numbers and booleans are kept in
// their JSON spelling; objects, arrays and null are rejected.
func scalarField(op errors.Op, uid string, rec map[string]json.RawMessage, key string) (string, error) {
	raw, ok := rec[key]
	if !ok {
		return "", errors.Missing(op, uid, key)
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", errors.E(op, errors.KindParse, err, "record "+uid+": "+key)
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return string(raw), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", errors.E(op, errors.KindParse, "record "+uid+": "+key+" is not a scalar")
	}
}
