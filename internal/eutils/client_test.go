package eutils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nishad/gsefetch/internal/errors"
	"github.com/nishad/gsefetch/internal/testutil"
)

func newTestClient(m *testutil.MockEUtils, cfg Config) *Client {
	cfg.BaseURL = m.URL()
	return NewClient(cfg, nil)
}

func TestSearch_ReturnsIDs(t *testing.T) {
	m := testutil.NewMockEUtils(t)
	m.AddSearch("gds", "GSE89408 AND gse[ETYP]", "200089408")

	res := newTestClient(m, Config{}).Search(context.Background(), GDS, "GSE89408 AND gse[ETYP]")

	require.NoError(t, res.Err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, []string{"200089408"}, res.IDs)

	reqs := m.RequestsFor("esearch")
	require.Len(t, reqs, 1)
	assert.Equal(t, "gds", reqs[0].DB)
	assert.Equal(t, "GSE89408 AND gse[ETYP]", reqs[0].Term)
	assert.Equal(t, "json", reqs[0].Query.Get("retmode"))
	assert.Equal(t, "1000", reqs[0].Query.Get("retmax"))
}

func TestSearch_NoMatchesIsEmptyNotFailed(t *testing.T) {
	m := testutil.NewMockEUtils(t)

	res := newTestClient(m, Config{}).Search(context.Background(), GDS, "nothing")

	assert.Equal(t, StatusEmpty, res.Status)
	assert.False(t, res.Failed())
	assert.NotNil(t, res.IDs)
	assert.Empty(t, res.IDs)
}

func TestSearch_NonSuccessStatusYieldsEmptyList(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusTooManyRequests, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			m := testutil.NewMockEUtils(t)
			m.AddSearch("gds", "GSE1", "1")
			m.Fail("esearch", status)

			res := newTestClient(m, Config{}).Search(context.Background(), GDS, "GSE1")

			assert.True(t, res.Failed())
			assert.NotNil(t, res.IDs)
			assert.Empty(t, res.IDs)
			require.Error(t, res.Err)
			assert.True(t, errors.IsKind(res.Err, errors.KindNetwork))
		})
	}
}

func TestSearch_TransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	res := NewClient(Config{BaseURL: url}, nil).Search(context.Background(), SRA, "SRP1")

	assert.True(t, res.Failed())
	assert.Empty(t, res.IDs)
}

func TestSearch_ErrorInBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"esearchresult":{"ERROR":"Invalid db name specified: foo"}}`))
	}))
	defer ts.Close()

	res := NewClient(Config{BaseURL: ts.URL}, nil).Search(context.Background(), Database("foo"), "x")

	assert.True(t, res.Failed())
	assert.Contains(t, res.Err.Error(), "Invalid db name")
}

func TestSearch_UndecodableBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer ts.Close()

	res := NewClient(Config{BaseURL: ts.URL}, nil).Search(context.Background(), GDS, "x")

	assert.True(t, res.Failed())
	assert.True(t, errors.IsKind(res.Err, errors.KindParse))
}

func TestSearch_EtiquetteParams(t *testing.T) {
	m := testutil.NewMockEUtils(t)

	newTestClient(m, Config{APIKey: "k", Tool: "gsefetch", Email: "a@b.org", RetMax: 50}).
		Search(context.Background(), GDS, "x")

	q := m.RequestsFor("esearch")[0].Query
	assert.Equal(t, "k", q.Get("api_key"))
	assert.Equal(t, "gsefetch", q.Get("tool"))
	assert.Equal(t, "a@b.org", q.Get("email"))
	assert.Equal(t, "50", q.Get("retmax"))
}

func TestSummarize_JoinsIDsInOneRequest(t *testing.T) {
	m := testutil.NewMockEUtils(t)
	m.AddRecord("gds", "1", testutil.SeriesRecord("1", "GSE1", "570", "CEL", "ftp://one/"))
	m.AddRecord("gds", "2", testutil.SeriesRecord("2", "GSE2", "571", "TXT", "ftp://two/"))

	res := newTestClient(m, Config{}).Summarize(context.Background(), GDS, []string{"1", "2"})

	require.NoError(t, res.Err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, []string{"1", "2"}, res.Summary.UIDs)
	_, ok := res.Summary.Record("2")
	assert.True(t, ok)

	reqs := m.RequestsFor("esummary")
	require.Len(t, reqs, 1)
	assert.Equal(t, "1,2", reqs[0].Query.Get("id"))
}

func TestSummarize_NonSuccessStatusYieldsEmptyMap(t *testing.T) {
	m := testutil.NewMockEUtils(t)
	m.AddRecord("gds", "1", testutil.SeriesRecord("1", "GSE1", "570", "CEL", "ftp://one/"))
	m.Fail("esummary", http.StatusServiceUnavailable)

	res := newTestClient(m, Config{}).Summarize(context.Background(), GDS, []string{"1"})

	assert.True(t, res.Failed())
	require.NotNil(t, res.Summary)
	assert.Equal(t, 0, res.Summary.Len())
	assert.Empty(t, res.Summary.Records)
}

func TestSummarize_EmptyIDsSkipsNetwork(t *testing.T) {
	m := testutil.NewMockEUtils(t)

	res := newTestClient(m, Config{}).Summarize(context.Background(), SRA, nil)

	assert.Equal(t, StatusEmpty, res.Status)
	assert.Equal(t, 0, res.Summary.Len())
	assert.Empty(t, m.Requests())
}

func TestSummarize_BatchSizeChunksInOrder(t *testing.T) {
	m := testutil.NewMockEUtils(t)
	ids := []string{"1", "2", "3", "4", "5"}
	for _, id := range ids {
		m.AddRecord("sra", id, testutil.SRARecord(id, testutil.DefaultSRAFields()))
	}

	res := newTestClient(m, Config{BatchSize: 2}).Summarize(context.Background(), SRA, ids)

	require.NoError(t, res.Err)
	assert.Equal(t, ids, res.Summary.UIDs)

	reqs := m.RequestsFor("esummary")
	require.Len(t, reqs, 3)
	assert.Equal(t, []string{"1", "2"}, reqs[0].IDs)
	assert.Equal(t, []string{"3", "4"}, reqs[1].IDs)
	assert.Equal(t, []string{"5"}, reqs[2].IDs)
}

func TestSummarize_ErrorInBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Invalid uid"}`))
	}))
	defer ts.Close()

	res := NewClient(Config{BaseURL: ts.URL}, nil).Summarize(context.Background(), GDS, []string{"x"})

	assert.True(t, res.Failed())
	assert.Equal(t, 0, res.Summary.Len())
}

func TestSummarize_HonoursContextCancellation(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := NewClient(Config{BaseURL: ts.URL}, nil).Summarize(ctx, GDS, []string{"1"})

	assert.True(t, res.Failed())
}

func TestChunkIDs(t *testing.T) {
	ids := []string{"a", "b", "c"}

	assert.Equal(t, [][]string{ids}, chunkIDs(ids, 0))
	assert.Equal(t, [][]string{ids}, chunkIDs(ids, 3))
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, chunkIDs(ids, 2))
	assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}}, chunkIDs(ids, 1))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "empty", StatusEmpty.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "status(9)", Status(9).String())
}

func TestFailuresLogAtDebug(t *testing.T) {
	m := testutil.NewMockEUtils(t)
	m.Fail("esearch", http.StatusServiceUnavailable)
	m.Fail("esummary", http.StatusServiceUnavailable)

	core, logs := observer.New(zapcore.DebugLevel)
	c := NewClient(Config{BaseURL: m.URL()}, zap.New(core))

	assert.True(t, c.Search(context.Background(), GDS, "GSE1").Failed())
	assert.True(t, c.Summarize(context.Background(), GDS, []string{"1"}).Failed())

	assert.Equal(t, 2, logs.FilterLevelExact(zapcore.DebugLevel).Len())
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len(), "callers decide whether a failure is worth a warning")
}
