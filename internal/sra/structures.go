package sra

import "encoding/xml"

// syntheticRoot is the element WrapFragment puts around a fragment.
const syntheticRoot = "root"

// Pointer fields tell an absent element or attribute apart from an empty one.

type accRef struct {
	Acc *string `xml:"acc,attr"`
}

type platform struct {
	Name            string  `xml:",chardata"`
	InstrumentModel *string `xml:"instrument_model,attr"`
}

type statistics struct {
	TotalSpots *string `xml:"total_spots,attr"`
	TotalBases *string `xml:"total_bases,attr"`
	TotalSize  *string `xml:"total_size,attr"`
}

type expSummary struct {
	Title      string      `xml:"Title"`
	Platform   *platform   `xml:"Platform"`
	Statistics *statistics `xml:"Statistics"`
}

type organism struct {
	TaxID          *string `xml:"taxid,attr"`
	ScientificName string  `xml:"ScientificName,attr"`
}

type libraryDescriptor struct {
	Name      string  `xml:"LIBRARY_NAME"`
	Strategy  *string `xml:"LIBRARY_STRATEGY"`
	Source    *string `xml:"LIBRARY_SOURCE"`
	Selection *string `xml:"LIBRARY_SELECTION"`
}

// experimentXML is the decoded expxml fragment of an sra esummary entry.
type experimentXML struct {
	XMLName           xml.Name           `xml:"root"`
	Summary           *expSummary        `xml:"Summary"`
	Submitter         *accRef            `xml:"Submitter"`
	Experiment        *accRef            `xml:"Experiment"`
	Study             *accRef            `xml:"Study"`
	Organism          *organism          `xml:"Organism"`
	Sample            *accRef            `xml:"Sample"`
	LibraryDescriptor *libraryDescriptor `xml:"Library_descriptor"`
	Bioproject        *string            `xml:"Bioproject"`
	Biosample         *string            `xml:"Biosample"`
}

type run struct {
	Acc        *string `xml:"acc,attr"`
	TotalSpots string  `xml:"total_spots,attr"`
	TotalBases string  `xml:"total_bases,attr"`
	IsPublic   string  `xml:"is_public,attr"`
}

// runsXML is the decoded runs fragment of an sra esummary entry.
type runsXML struct {
	XMLName xml.Name `xml:"root"`
	Runs    []run    `xml:"Run"`
}
