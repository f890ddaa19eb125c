package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pagewatch/pagewatch/internal/baseline"
	"github.com/pagewatch/pagewatch/internal/config"
	"github.com/pagewatch/pagewatch/internal/history"
	"github.com/pagewatch/pagewatch/internal/run"
)

func newTestServer(t *testing.T) (*Server, *history.Store) {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "pagewatch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := config.DefaultConfig()
	cfg.Pages = []config.Page{{Name: "home", URL: "https://acme.example/"}}
	return New(cfg, "", store), store
}

func seedRun(t *testing.T, store *history.Store, id string) {
	t.Helper()
	require.NoError(t, store.RecordRun(&run.Run{
		ID:         id,
		StartedAt:  time.Now().UTC().Add(-time.Minute),
		FinishedAt: time.Now().UTC(),
		Passed:     true,
		Pages: []run.PageResult{{
			Page:   "home",
			URL:    "https://acme.example/",
			Meta:   &baseline.MetaResult{Matches: true},
			Passed: true,
		}},
	}))
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPagesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var pages []config.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pages))
	require.Len(t, pages, 1)
	require.Equal(t, "home", pages[0].Name)
}

func TestRunsEndpointEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestRunsEndpointListsSeededRuns(t *testing.T) {
	srv, store := newTestServer(t)
	seedRun(t, store, "run-1")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))

	var runs []history.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	require.Equal(t, "run-1", runs[0].ID)
}

func TestRunEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	seedRun(t, store, "run-1")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/run-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var r run.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	require.Equal(t, "run-1", r.ID)
}

func TestRunEndpointNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunReportRendersHTML(t *testing.T) {
	srv, store := newTestServer(t)
	seedRun(t, store, "run-1")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/run-1/report", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "<table>")
}

func TestIndexWithoutRuns(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "No runs recorded yet")
}

func TestIndexServesLatestReport(t *testing.T) {
	srv, store := newTestServer(t)
	seedRun(t, store, "run-1")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Pagewatch run")
}

func TestReloadConfigSwapsPages(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "pagewatch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfgPath := filepath.Join(t.TempDir(), "pagewatch.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("pages:\n  - name: home\n    url: https://a.example/\n"), 0o644))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	srv := New(cfg, cfgPath, store)

	require.NoError(t, os.WriteFile(cfgPath, []byte("pages:\n  - name: home\n    url: https://a.example/\n  - name: pricing\n    url: https://a.example/pricing\n"), 0o644))
	srv.reloadConfig()
	require.Len(t, srv.currentConfig().Pages, 2)

	// A broken edit keeps the last good config.
	require.NoError(t, os.WriteFile(cfgPath, []byte("pages: ["), 0o644))
	srv.reloadConfig()
	require.Len(t, srv.currentConfig().Pages, 2)
}
