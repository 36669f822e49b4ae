package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinsuchenak/fqdngen/internal/batch"
	"github.com/martinsuchenak/fqdngen/internal/model"
	"github.com/martinsuchenak/fqdngen/internal/normalize"
	"github.com/martinsuchenak/fqdngen/internal/storage"
)

// unresolvingResolver fails every lookup, yielding not_found records.
type unresolvingResolver struct{}

func (unresolvingResolver) LookupHost(context.Context, string) ([]string, error) {
	return nil, errors.New("no such host")
}

func (unresolvingResolver) LookupAddr(context.Context, string) ([]string, error) {
	return nil, errors.New("no such host")
}

func newTestServer(t *testing.T, token string) *httptest.Server {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "fqdngen.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	settings := model.Settings{
		DefaultDomain:      "example.com",
		InterfaceMap:       normalize.DefaultInterfaceMap,
		PreferInterfacePTR: true,
		Workers:            4,
		LookupTimeout:      time.Second,
	}
	handler := NewHandler(store, batch.New(unresolvingResolver{}, nil, settings))

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	var h http.Handler = mux
	if token != "" {
		h = AuthMiddleware(token, h)
	}
	h = SecurityHeadersMiddleware(h)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunCheckEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	body := `{"rows":[
		{"ip_address":"10.0.0.1","device_hostname":"SW1.example.com"},
		{"ip_address":"10.0.0.2","device_hostname":"sw2","interface_name":"GigabitEthernet0/1"},
		{"ip_address":"bad","device_hostname":"sw3"}
	]}`

	resp, err := http.Post(srv.URL+"/api/checks", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var run model.Run
	require.NoError(t, decodeJSON(resp, &run))
	assert.Equal(t, 3, run.TotalRows)
	assert.Equal(t, 2, run.Produced)
	assert.Equal(t, 1, run.Skipped)
	require.NotEmpty(t, run.ID)

	// The run is retrievable from history afterwards.
	resp, err = http.Get(srv.URL + "/api/runs/" + run.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored model.Run
	require.NoError(t, decodeJSON(resp, &stored))
	assert.Equal(t, run.ID, stored.ID)
	assert.Len(t, stored.Records, 2)
}

func TestRunCheckEmptyBatch(t *testing.T) {
	srv := newTestServer(t, "")

	resp, err := http.Post(srv.URL+"/api/checks", "application/json", strings.NewReader(`{"rows":[]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListRuns(t *testing.T) {
	srv := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/api/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var runs []model.Run
	require.NoError(t, decodeJSON(resp, &runs))
	assert.Empty(t, runs)
}

func TestGetRunNotFound(t *testing.T) {
	srv := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/api/runs/no-such-run")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(t, "secret")

	// No token is rejected.
	resp, err := http.Get(srv.URL + "/api/runs")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Wrong token is rejected.
	req, _ := http.NewRequest("GET", srv.URL+"/api/runs", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Correct bearer token passes.
	req, _ = http.NewRequest("GET", srv.URL+"/api/runs", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func decodeJSON(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}
