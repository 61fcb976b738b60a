package api

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"github.com/zfogg/wayfarer/cli/pkg/client"
	"github.com/zfogg/wayfarer/cli/pkg/config"
)

// newTestServer points the shared client at an httptest server for the
// duration of the test.
func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	config.Set("api.base_url", srv.URL)
	config.Set("api.rate_limit", 0)
	client.Reset()
	t.Cleanup(client.Reset)
	return srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func decodeBody(t *testing.T, r *http.Request, into interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(r.Body).Decode(into))
}
