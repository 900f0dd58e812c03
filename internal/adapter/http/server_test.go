package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/kkartas/metdata/internal/adapter/http"
)

type stubReadiness struct {
	err error
}

func (s *stubReadiness) CheckReadiness(_ context.Context) error { return s.err }

func newTestServer(readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", &stubReadiness{err: readyErr}, slog.Default())
}

func probe(t *testing.T, srv *httpadapter.Server, path string) (int, map[string]string) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)

	srv.ServeHTTP(rec, req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthzReturns200(t *testing.T) {
	code, body := probe(t, newTestServer(nil), "/healthz")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "metdatad", body["service"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	code, body := probe(t, newTestServer(nil), "/readyz")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", body["status"])
	assert.NotContains(t, body, "reason")
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(errors.New("pipeline has not processed any batches yet"))
	code, body := probe(t, srv, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "pipeline has not processed any batches yet", body["reason"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
