// Package eutils is a small client for the NCBI Entrez E-utilities
// esearch and esummary endpoints in JSON mode.
//
// Calls never return a Go error alongside their result. A transport
// failure, a non-200 status or an undecodable body yields a result with
// StatusFailed, empty data and Err set, so callers can choose between
// treating it as "nothing found" and aborting.
package eutils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nishad/gsefetch/internal/errors"
	"github.com/nishad/gsefetch/internal/metrics"
)

// DefaultBaseURL is the public E-utilities endpoint.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// DefaultRetMax caps the number of ids one esearch call returns.
const DefaultRetMax = 1000

// Config holds client settings.
type Config struct {
	BaseURL   string
	APIKey    string
	Tool      string
	Email     string
	RetMax    int
	BatchSize int           // esummary ids per request, 0 sends them all at once
	Timeout   time.Duration // 0 waits forever
}

// Client talks to E-utilities.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a client. A nil logger is replaced by a nop logger.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RetMax <= 0 {
		cfg.RetMax = DefaultRetMax
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Search runs esearch for term against db and returns the matching uids.
func (c *Client) Search(ctx context.Context, db Database, term string) SearchResult {
	params := url.Values{
		"db":      {string(db)},
		"term":    {term},
		"retmode": {"json"},
		"retmax":  {strconv.Itoa(c.cfg.RetMax)},
	}

	var resp searchResponse
	if err := c.getJSON(ctx, "esearch", db, params, &resp); err != nil {
		return c.failedSearch(db, term, err)
	}
	if resp.ESearchResult == nil {
		return c.failedSearch(db, term, errors.E(errors.Op("eutils.search"), errors.KindParse, "response has no esearchresult"))
	}
	if resp.ESearchResult.Error != "" {
		return c.failedSearch(db, term, errors.E(errors.Op("eutils.search"), errors.KindNetwork, resp.ESearchResult.Error))
	}

	ids := resp.ESearchResult.IDList
	if ids == nil {
		ids = []string{}
	}
	status := StatusOK
	if len(ids) == 0 {
		status = StatusEmpty
	}
	metrics.EUtilsRequestsTotal.WithLabelValues("esearch", string(db), status.String()).Inc()
	c.logger.Debug("esearch",
		zap.String("db", string(db)),
		zap.String("term", term),
		zap.Int("ids", len(ids)),
	)
	return SearchResult{IDs: ids, Status: status}
}

func (c *Client) failedSearch(db Database, term string, err error) SearchResult {
	metrics.EUtilsRequestsTotal.WithLabelValues("esearch", string(db), StatusFailed.String()).Inc()
	c.logger.Debug("esearch failed",
		zap.String("db", string(db)),
		zap.String("term", term),
		zap.Error(err),
	)
	return SearchResult{IDs: []string{}, Status: StatusFailed, Err: err}
}

// Summarize runs esummary for ids against db. All ids go into one request
// unless BatchSize is set, in which case chunks are fetched in order and
// merged. Any failed chunk fails the whole call.
func (c *Client) Summarize(ctx context.Context, db Database, ids []string) SummaryResult {
	if len(ids) == 0 {
		return SummaryResult{Summary: NewSummary(), Status: StatusEmpty}
	}

	merged := NewSummary()
	for _, chunk := range chunkIDs(ids, c.cfg.BatchSize) {
		s, err := c.summarizeOnce(ctx, db, chunk)
		if err != nil {
			metrics.EUtilsRequestsTotal.WithLabelValues("esummary", string(db), StatusFailed.String()).Inc()
			c.logger.Debug("esummary failed",
				zap.String("db", string(db)),
				zap.Int("ids", len(chunk)),
				zap.Error(err),
			)
			return SummaryResult{Summary: NewSummary(), Status: StatusFailed, Err: err}
		}
		merged.merge(s)
	}

	status := StatusOK
	if merged.Len() == 0 {
		status = StatusEmpty
	}
	metrics.EUtilsRequestsTotal.WithLabelValues("esummary", string(db), status.String()).Inc()
	c.logger.Debug("esummary",
		zap.String("db", string(db)),
		zap.Int("requested", len(ids)),
		zap.Int("returned", merged.Len()),
	)
	return SummaryResult{Summary: merged, Status: status}
}

func (c *Client) summarizeOnce(ctx context.Context, db Database, ids []string) (*Summary, error) {
	params := url.Values{
		"db":      {string(db)},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"json"},
	}

	var resp summaryResponse
	if err := c.getJSON(ctx, "esummary", db, params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.E(errors.Op("eutils.summary"), errors.KindNetwork, resp.Error)
	}
	if resp.Result == nil {
		return nil, errors.E(errors.Op("eutils.summary"), errors.KindParse, "response has no result")
	}
	return resp.Result, nil
}

// getJSON issues a GET to endpoint.fcgi and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, db Database, params url.Values, out interface{}) error {
	op := errors.Op("eutils." + endpoint)
	c.addEtiquette(params)
	reqURL := fmt.Sprintf("%s/%s.fcgi?%s", c.cfg.BaseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errors.E(op, errors.KindNetwork, err, "creating request")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.EUtilsRequestDuration.WithLabelValues(endpoint, string(db)).Observe(time.Since(start).Seconds())
	if err != nil {
		return errors.E(op, errors.KindNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.E(op, errors.KindNetwork, fmt.Sprintf("HTTP error: %s", resp.Status))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.E(op, errors.KindParse, err, "decoding response")
	}
	return nil
}

func (c *Client) addEtiquette(params url.Values) {
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}
	if c.cfg.Tool != "" {
		params.Set("tool", c.cfg.Tool)
	}
	if c.cfg.Email != "" {
		params.Set("email", c.cfg.Email)
	}
}

// chunkIDs splits ids into runs of at most size; size <= 0 keeps one chunk.
func chunkIDs(ids []string, size int) [][]string {
	if size <= 0 || len(ids) <= size {
		return [][]string{ids}
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
