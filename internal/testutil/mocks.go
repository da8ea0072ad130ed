package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// EUtilsRequest is one request seen by MockEUtils.
type EUtilsRequest struct {
	Endpoint string // esearch or esummary
	DB       string
	Term     string
	IDs      []string
	Query    url.Values
}

// MockEUtils is an in-process E-utilities server. Searches answer from
// registered (db, term) pairs, summaries from registered records.
type MockEUtils struct {
	Server *httptest.Server

	mu       sync.Mutex
	searches map[string][]string
	records  map[string]map[string]interface{}
	failures map[string]int
	requests []EUtilsRequest
}

// NewMockEUtils starts a mock server that is closed when the test ends.
func NewMockEUtils(t *testing.T) *MockEUtils {
	t.Helper()

	m := &MockEUtils{
		searches: make(map[string][]string),
		records:  make(map[string]map[string]interface{}),
		failures: make(map[string]int),
	}

	r := mux.NewRouter()
	r.HandleFunc("/esearch.fcgi", m.handleSearch).Methods("GET")
	r.HandleFunc("/esummary.fcgi", m.handleSummary).Methods("GET")

	m.Server = httptest.NewServer(r)
	t.Cleanup(m.Server.Close)
	return m
}

// URL returns the base URL to configure a client with.
func (m *MockEUtils) URL() string {
	return m.Server.URL
}

// AddSearch makes term against db return ids.
func (m *MockEUtils) AddSearch(db, term string, ids ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches[db+"\x00"+term] = ids
}

// AddRecord registers an esummary entry for uid in db.
func (m *MockEUtils) AddRecord(db, uid string, record map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records[db] == nil {
		m.records[db] = make(map[string]interface{})
	}
	m.records[db][uid] = record
}

// Fail makes every call to endpoint answer with status.
func (m *MockEUtils) Fail(endpoint string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[endpoint] = status
}

// Requests returns the requests seen so far.
func (m *MockEUtils) Requests() []EUtilsRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EUtilsRequest(nil), m.requests...)
}

// RequestsFor returns the requests for one endpoint.
func (m *MockEUtils) RequestsFor(endpoint string) []EUtilsRequest {
	var out []EUtilsRequest
	for _, r := range m.Requests() {
		if r.Endpoint == endpoint {
			out = append(out, r)
		}
	}
	return out
}

func (m *MockEUtils) record(endpoint string, r *http.Request) (EUtilsRequest, int) {
	q := r.URL.Query()
	req := EUtilsRequest{
		Endpoint: endpoint,
		DB:       q.Get("db"),
		Term:     q.Get("term"),
		Query:    q,
	}
	if ids := q.Get("id"); ids != "" {
		req.IDs = strings.Split(ids, ",")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return req, m.failures[endpoint]
}

func (m *MockEUtils) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, failStatus := m.record("esearch", r)
	if failStatus != 0 {
		http.Error(w, "mock failure", failStatus)
		return
	}

	m.mu.Lock()
	ids, ok := m.searches[req.DB+"\x00"+req.Term]
	m.mu.Unlock()
	if !ok {
		ids = []string{}
	}

	writeJSON(w, map[string]interface{}{
		"header": map[string]string{"type": "esearch", "version": "0.3"},
		"esearchresult": map[string]interface{}{
			"count":    len(ids),
			"retmax":   len(ids),
			"retstart": "0",
			"idlist":   ids,
		},
	})
}

func (m *MockEUtils) handleSummary(w http.ResponseWriter, r *http.Request) {
	req, failStatus := m.record("esummary", r)
	if failStatus != 0 {
		http.Error(w, "mock failure", failStatus)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	uids := []string{}
	result := map[string]interface{}{}
	for _, id := range req.IDs {
		if rec, ok := m.records[req.DB][id]; ok {
			uids = append(uids, id)
			result[id] = rec
		}
	}
	result["uids"] = uids

	writeJSON(w, map[string]interface{}{
		"header": map[string]string{"type": "esummary", "version": "0.3"},
		"result": result,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
