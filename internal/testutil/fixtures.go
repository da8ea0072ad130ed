package testutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Relation is one entry of a GEO series' extrelations list.
type Relation struct {
	Type   string
	Target string
}

// SRARelation links to an SRA study, the only relation type the pipeline follows.
func SRARelation(target string) Relation {
	return Relation{Type: "SRA", Target: target}
}

// SeriesRecord returns a gds esummary entry for a GEO series.
func SeriesRecord(uid, accession, gpl, suppfile, ftplink string, relations ...Relation) map[string]interface{} {
	ext := make([]map[string]string, 0, len(relations))
	for _, r := range relations {
		ext = append(ext, map[string]string{
			"relationtype":  r.Type,
			"targetobject":  r.Target,
			"targetftplink": "ftp://ftp-trace.ncbi.nlm.nih.gov/sra/sra-instant/reads/ByStudy/sra/SRP/" + r.Target + "/",
		})
	}
	return map[string]interface{}{
		"uid":          uid,
		"accession":    accession,
		"gds":          "",
		"title":        "Test series " + accession,
		"gpl":          gpl,
		"gse":          strings.TrimPrefix(accession, "GSE"),
		"entrytype":    "GSE",
		"gdstype":      "Expression profiling by array",
		"suppfile":     suppfile,
		"ftplink":      ftplink,
		"relations":    []interface{}{},
		"extrelations": ext,
		"n_samples":    2,
	}
}

// SRAFields holds the literal values an SRA fixture carries, one per
// extracted column.
type SRAFields struct {
	RunID            string
	TotalSpots       string
	TotalBases       string
	TotalSize        string
	Experiment       string
	Platform         string
	Model            string
	TaxID            string
	Sample           string
	LibraryStrategy  string
	LibrarySelection string
	LibrarySource    string
	BioProject       string
	BioSample        string
	Study            string
	Submitter        string
}

// DefaultSRAFields returns a fully populated fixture.
func DefaultSRAFields() SRAFields {
	return SRAFields{
		RunID:            "SRR4785590",
		TotalSpots:       "24619468",
		TotalBases:       "4923893600",
		TotalSize:        "2125465581",
		Experiment:       "SRX2308577",
		Platform:         "ILLUMINA",
		Model:            "Illumina HiSeq 2500",
		TaxID:            "9606",
		Sample:           "SRS1791234",
		LibraryStrategy:  "RNA-Seq",
		LibrarySelection: "cDNA",
		LibrarySource:    "TRANSCRIPTOMIC",
		BioProject:       "PRJNA352060",
		BioSample:        "SAMN05990000",
		Study:            "SRP092402",
		Submitter:        "SRA488144",
	}
}

// ExpXML renders the expxml fragment esummary returns for an SRA
// experiment. Like the real one it has several top-level elements.
func ExpXML(f SRAFields) string {
	return fmt.Sprintf(`<Summary><Title>RNA-seq of synovial tissue</Title>`+
		`<Platform instrument_model="%s">%s</Platform>`+
		`<Statistics total_runs="1" total_spots="%s" total_bases="%s" total_size="%s" load_done="true" cluster_name="public"/></Summary>`+
		`<Submitter acc="%s" center_name="GEO" contact_name="Test" lab_name=""/>`+
		`<Experiment acc="%s" ver="1" status="public" name="GSM0000001: synovium"/>`+
		`<Study acc="%s" name="Synovial transcriptomes"/>`+
		`<Organism taxid="%s" ScientificName="Homo sapiens"/>`+
		`<Sample acc="%s" name=""/>`+
		`<Instrument ILLUMINA="%s"/>`+
		`<Library_descriptor><LIBRARY_NAME>GSM0000001</LIBRARY_NAME>`+
		`<LIBRARY_STRATEGY>%s</LIBRARY_STRATEGY><LIBRARY_SOURCE>%s</LIBRARY_SOURCE>`+
		`<LIBRARY_SELECTION>%s</LIBRARY_SELECTION><LIBRARY_LAYOUT> <PAIRED/> </LIBRARY_LAYOUT></Library_descriptor>`+
		`<Bioproject>%s</Bioproject><Biosample>%s</Biosample>`,
		f.Model, f.Platform,
		f.TotalSpots, f.TotalBases, f.TotalSize,
		f.Submitter, f.Experiment, f.Study, f.TaxID, f.Sample, f.Model,
		f.LibraryStrategy, f.LibrarySource, f.LibrarySelection,
		f.BioProject, f.BioSample,
	)
}

// RunsXML renders the runs fragment for the given run accessions.
func RunsXML(runs ...string) string {
	out := ""
	for _, acc := range runs {
		out += fmt.Sprintf(`<Run acc="%s" total_spots="24619468" total_bases="4923893600" load_done="true" is_public="true" cluster_name="public" static_data_available="true"/>`, acc)
	}
	return out
}

// SRARecord returns an sra esummary entry built from f.
func SRARecord(uid string, f SRAFields) map[string]interface{} {
	return SRARecordXML(uid, ExpXML(f), RunsXML(f.RunID))
}

// SRARecordXML returns an sra esummary entry with explicit fragments.
func SRARecordXML(uid, expxml, runs string) map[string]interface{} {
	return map[string]interface{}{
		"uid":        uid,
		"expxml":     expxml,
		"runs":       runs,
		"extlinks":   "    ",
		"createdate": "2016/11/09",
		"updatedate": "2016/11/09",
	}
}

// SummaryJSON builds an esummary "result" object with uids in order.
func SummaryJSON(uids []string, records map[string]interface{}) []byte {
	obj := make(map[string]interface{}, len(records)+1)
	for k, v := range records {
		obj[k] = v
	}
	obj["uids"] = uids
	data, err := json.Marshal(obj)
	if err != nil {
		panic(fmt.Sprintf("fixture does not marshal: %v", err))
	}
	return data
}
