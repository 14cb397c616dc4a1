package compareapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collatecheck/internal/check"
	"collatecheck/internal/collate"
)

func newTestServer(t *testing.T, backend *collate.MemBackend) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(NewServer(backend, backend, logger).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func caseBackend(corpus []string) *collate.MemBackend {
	backend := collate.NewMemBackend(corpus)
	backend.Register("ci", strings.ToLower)
	backend.Register("bin", func(s string) string { return s })
	return backend
}

func TestClient_Compare(t *testing.T) {
	ts := newTestServer(t, caseBackend([]string{"a"}))
	client := NewHTTPClient(ts.URL)
	ctx := context.Background()

	sess, err := client.Session(ctx)
	require.NoError(t, err)
	defer sess.Close()

	result, err := sess.Compare(ctx, "a", "A", "ci")
	require.NoError(t, err)
	assert.Equal(t, collate.PairResult{Equal: true}, result)

	result, err = sess.Compare(ctx, "a", "A", "bin")
	require.NoError(t, err)
	assert.Equal(t, collate.PairResult{}, result)
}

func TestClient_SortedCorpus(t *testing.T) {
	ts := newTestServer(t, caseBackend([]string{"b", "A", "a", "B"}))
	client := NewHTTPClient(ts.URL)

	corpus, err := client.SortedCorpus(context.Background(), "bin")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "a", "b"}, corpus)
}

func TestClient_DomainErrors(t *testing.T) {
	ts := newTestServer(t, caseBackend(nil))
	client := NewHTTPClient(ts.URL)
	ctx := context.Background()

	_, err := client.SortedCorpus(ctx, "ci")
	assert.ErrorIs(t, err, collate.ErrEmptyCorpus)

	_, err = client.SortedCorpus(ctx, "missing")
	assert.ErrorIs(t, err, collate.ErrUnknownOrdering)

	sess, err := client.Session(ctx)
	require.NoError(t, err)
	defer sess.Close()
	_, err = sess.Compare(ctx, "a", "b", "missing")
	assert.ErrorIs(t, err, collate.ErrUnknownOrdering)
}

func TestServer_BadRequests(t *testing.T) {
	ts := newTestServer(t, caseBackend([]string{"a"}))

	resp, err := http.Post(ts.URL+"/v1/compare", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/v1/compare", "application/json", strings.NewReader(`{"s1":"a","s2":"b"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/v1/corpus")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_CorpusContentType(t *testing.T) {
	ts := newTestServer(t, caseBackend([]string{"a", "b"}))

	resp, err := http.Get(ts.URL + "/v1/corpus?ordering=bin")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "\"a\"\n\"b\"\n", string(body))
}

// The HTTP client is a full comparator backend: a checker can run over it
// end to end.
func TestChecker_OverHTTP(t *testing.T) {
	ts := newTestServer(t, caseBackend([]string{"b", "A", "a", "B"}))
	client := NewHTTPClient(ts.URL)

	checker := check.New(client, client, check.WithWorkers(4))
	verdict, err := checker.Run(context.Background(), "ci", "bin")
	require.NoError(t, err)

	require.False(t, verdict.Equivalent)
	require.NotNil(t, verdict.Discrepancy)
}
