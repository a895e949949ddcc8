package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivavenkatesh/chunkviz/internal/pipeline"
	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

func newTestServer(t *testing.T, cfg pipeline.Config) *httptest.Server {
	t.Helper()
	svc, err := pipeline.NewService(cfg, nil)
	require.NoError(t, err)

	srv := New(svc, Config{EnableMCP: true, Version: "test", MaxInputLength: cfg.MaxInputLength}, zerolog.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postChunks(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/chunks", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHandleChunks(t *testing.T) {
	ts := newTestServer(t, pipeline.DefaultConfig())

	t.Run("Should compute chunks", func(t *testing.T) {
		resp := postChunks(t, ts, `{"text":"aaaaabbbbbccccc","params":{"chunk_size":5,"splitter":"fixed"}}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		res := decode[types.Result](t, resp)
		assert.Equal(t, []string{"aaaaa", "bbbbb", "ccccc"}, res.Chunks)
		assert.Equal(t, 100, res.Statistics.RatioPercent)
		assert.Equal(t, 2, res.Highlight.BoundaryMismatchCount)
	})

	t.Run("Should reject invalid params with 400", func(t *testing.T) {
		resp := postChunks(t, ts, `{"text":"abc","params":{"chunk_size":3,"chunk_overlap":3}}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decode[map[string]string](t, resp)
		assert.Contains(t, body["error"], "overlap")
	})

	t.Run("Should reject unknown content types with 400", func(t *testing.T) {
		resp := postChunks(t, ts, `{"text":"abc","params":{"chunk_size":3,"content_type":"cobol"}}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Should reject malformed JSON", func(t *testing.T) {
		resp := postChunks(t, ts, `{"text":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Should reject other methods", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/chunks")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestHandleChunks_Truncation(t *testing.T) {
	ts := newTestServer(t, pipeline.Config{MaxInputLength: 8})

	resp := postChunks(t, ts, `{"text":"0123456789abcdef","params":{"chunk_size":4,"splitter":"fixed"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	res := decode[types.Result](t, resp)
	assert.True(t, res.Truncated)
	assert.Equal(t, []string{"0123", "4567"}, res.Chunks)
	assert.NotEmpty(t, res.Warnings)
}

func TestHandleChunks_BodyLimit(t *testing.T) {
	const limit = 1000
	ts := newTestServer(t, pipeline.Config{MaxInputLength: limit})

	t.Run("Should truncate text that is over the input limit but within the body limit", func(t *testing.T) {
		text := strings.Repeat("a", 20*limit)
		resp := postChunks(t, ts, `{"text":"`+text+`","params":{"chunk_size":100,"splitter":"fixed"}}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		res := decode[types.Result](t, resp)
		assert.True(t, res.Truncated)
		assert.Equal(t, limit, res.InputLength)
		assert.Len(t, res.Chunks, 10)
		assert.Contains(t, res.Warnings, "input truncated to 1000 characters")
	})

	t.Run("Should answer 413 for bodies over the body limit", func(t *testing.T) {
		text := strings.Repeat("a", int(bodyLimit(limit)))
		resp := postChunks(t, ts, `{"text":"`+text+`"}`)
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

		body := decode[map[string]string](t, resp)
		assert.Contains(t, body["error"], "exceeds")
	})
}

func TestBodyLimit(t *testing.T) {
	assert.Equal(t, int64(6*1000+bodySlack), bodyLimit(1000))
	assert.Greater(t, bodyLimit(pipeline.DefaultConfig().MaxInputLength), int64(pipeline.DefaultConfig().MaxInputLength))
}

func TestHandleSeparators(t *testing.T) {
	ts := newTestServer(t, pipeline.DefaultConfig())

	resp, err := http.Get(ts.URL + "/separators?content_type=go")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[struct {
		ContentType string   `json:"content_type"`
		Separators  []string `json:"separators"`
	}](t, resp)
	assert.Equal(t, "go", body.ContentType)
	assert.Equal(t, "\nfunc ", body.Separators[0])

	resp2, err := http.Get(ts.URL + "/separators")
	require.NoError(t, err)
	defer resp2.Body.Close()
	body2 := decode[map[string]any](t, resp2)
	assert.Equal(t, "text", body2["content_type"])

	resp3, err := http.Get(ts.URL + "/separators?content_type=cobol")
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp3.StatusCode)
}

func TestHandleContentTypes(t *testing.T) {
	ts := newTestServer(t, pipeline.DefaultConfig())

	resp, err := http.Get(ts.URL + "/content-types")
	require.NoError(t, err)
	defer resp.Body.Close()

	body := decode[map[string][]string](t, resp)
	assert.Contains(t, body["content_types"], "markdown")
	assert.Contains(t, body["content_types"], "text")
}

func TestHandlePalette(t *testing.T) {
	ts := newTestServer(t, pipeline.DefaultConfig())

	resp, err := http.Get(ts.URL + "/palette.css")
	require.NoError(t, err)
	defer resp.Body.Close()

	css, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")
	assert.Contains(t, string(css), ".unique-span-0")
	assert.Contains(t, string(css), ".overlap-span")
}

func TestHandleSamples(t *testing.T) {
	ts := newTestServer(t, pipeline.DefaultConfig())

	resp, err := http.Get(ts.URL + "/samples")
	require.NoError(t, err)
	defer resp.Body.Close()
	list := decode[map[string][]string](t, resp)
	assert.Contains(t, list["samples"], "prose")

	resp2, err := http.Get(ts.URL + "/samples/markdown")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	sample := decode[map[string]string](t, resp2)
	assert.Equal(t, "markdown", sample["content_type"])
	assert.NotEmpty(t, sample["text"])

	resp3, err := http.Get(ts.URL + "/samples/haiku")
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp3.StatusCode)
}

func TestHealthAndRequestID(t *testing.T) {
	ts := newTestServer(t, pipeline.DefaultConfig())

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body := decode[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])

	_, err = uuid.Parse(resp.Header.Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.New().String()
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	req.Header.Set(RequestIDHeader, id)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, id, resp2.Header.Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, pipeline.DefaultConfig())

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/chunks", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	_, err = uuid.Parse(resp.Header.Get(RequestIDHeader))
	assert.NoError(t, err, "preflight responses carry a request ID")
}

func TestMetrics(t *testing.T) {
	ts := newTestServer(t, pipeline.DefaultConfig())

	postChunks(t, ts, `{"text":"hello world","params":{"chunk_size":4,"splitter":"fixed"}}`)
	postChunks(t, ts, `{"text":"hello world","params":{"chunk_size":4,"splitter":"fixed"}}`)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `chunkviz_http_requests_total{code="200",route="/chunks"} 2`)
	assert.Contains(t, text, "chunkviz_chunks_per_request_count 2")
	assert.Contains(t, text, "chunkviz_result_cache_hits_total 1")
	assert.Contains(t, text, "chunkviz_result_cache_entries 1")
}

func TestMetrics_NonHTTPComputes(t *testing.T) {
	svc, err := pipeline.NewService(pipeline.Config{MaxInputLength: 4}, nil)
	require.NoError(t, err)
	srv := New(svc, Config{Version: "test"}, zerolog.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	// the MCP tools are handed srv.svc, so a compute through it stands in for a tool call
	_, err = srv.svc.Compute(context.Background(), types.ComputeRequest{
		Text:   "0123456789",
		Params: types.Params{ChunkSize: 2, Splitter: types.SplitterFixed},
	})
	require.NoError(t, err)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, "chunkviz_chunks_per_request_count 1")
	assert.Contains(t, text, "chunkviz_truncated_inputs_total 1")
	assert.NotContains(t, text, `route="/chunks"`)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/chunks", routeLabel("/chunks"))
	assert.Equal(t, "/samples/{name}", routeLabel("/samples/prose"))
	assert.Equal(t, "other", routeLabel("/wp-admin"))
}
