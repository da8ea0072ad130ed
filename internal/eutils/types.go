package eutils

import (
	"encoding/json"
	"fmt"
)

// Database is an Entrez database name.
type Database string

const (
	// GDS holds GEO DataSets, series and platforms.
	GDS Database = "gds"
	// SRA holds Sequence Read Archive experiments and runs.
	SRA Database = "sra"
)

// Status tells a successful result with data apart from an empty one and
// from a request that never produced a usable response.
type Status int

const (
	StatusOK Status = iota
	StatusEmpty
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// SearchResult is the outcome of an esearch call. IDs is never nil.
type SearchResult struct {
	IDs    []string
	Status Status
	Err    error
}

// Failed reports whether the request failed rather than matched nothing.
func (r SearchResult) Failed() bool { return r.Status == StatusFailed }

// SummaryResult is the outcome of an esummary call. Summary is never nil.
type SummaryResult struct {
	Summary *Summary
	Status  Status
	Err     error
}

// Failed reports whether the request failed rather than returned nothing.
func (r SummaryResult) Failed() bool { return r.Status == StatusFailed }

// Summary is the "result" object of an esummary response: an ordered uid
// list plus one loosely shaped record per uid. Records stay raw until a
// database-specific parser turns them into typed rows.
type Summary struct {
	UIDs    []string
	Records map[string]json.RawMessage
}

// NewSummary returns an empty summary.
func NewSummary() *Summary {
	return &Summary{UIDs: []string{}, Records: map[string]json.RawMessage{}}
}

// Len returns the number of uids.
func (s *Summary) Len() int { return len(s.UIDs) }

// Record returns the raw record for uid.
func (s *Summary) Record(uid string) (json.RawMessage, bool) {
	raw, ok := s.Records[uid]
	return raw, ok
}

// merge appends other's uids and records in order.
func (s *Summary) merge(other *Summary) {
	s.UIDs = append(s.UIDs, other.UIDs...)
	for k, v := range other.Records {
		s.Records[k] = v
	}
}

// UnmarshalJSON splits the "uids" key from the per-uid entries.
func (s *Summary) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	out := NewSummary()
	if raw, ok := obj["uids"]; ok {
		if err := json.Unmarshal(raw, &out.UIDs); err != nil {
			return fmt.Errorf("decoding uids: %w", err)
		}
		delete(obj, "uids")
	}
	out.Records = obj
	*s = *out
	return nil
}

// MarshalJSON writes the summary back in esummary's "result" shape.
func (s *Summary) MarshalJSON() ([]byte, error) {
	obj := make(map[string]interface{}, len(s.Records)+1)
	for k, v := range s.Records {
		obj[k] = v
	}
	obj["uids"] = s.UIDs
	return json.Marshal(obj)
}

// ParseSummary decodes a bare "result" object.
func ParseSummary(data []byte) (*Summary, error) {
	s := NewSummary()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

type searchResponse struct {
	ESearchResult *struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
		Error  string   `json:"ERROR"`
	} `json:"esearchresult"`
}

type summaryResponse struct {
	Result *Summary `json:"result"`
	Error  string   `json:"error"`
}
