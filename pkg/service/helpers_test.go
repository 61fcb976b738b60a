package service

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"github.com/zfogg/wayfarer/cli/pkg/client"
	"github.com/zfogg/wayfarer/cli/pkg/config"
	"github.com/zfogg/wayfarer/cli/pkg/credentials"
	"github.com/zfogg/wayfarer/cli/pkg/output"
	"github.com/zfogg/wayfarer/cli/pkg/prompter"
	"github.com/zfogg/wayfarer/cli/pkg/session"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type fixture struct {
	out      *bytes.Buffer
	mux      *http.ServeMux
	sessions *session.Manager
}

// setup points the API client at a fresh mux, captures output and signs in
// as user u1 with role. An empty role leaves the user signed out.
func setup(t *testing.T, role string) *fixture {
	t.Helper()
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))

	f := &fixture{out: &bytes.Buffer{}, mux: http.NewServeMux()}
	srv := httptest.NewServer(f.mux)
	t.Cleanup(srv.Close)

	config.Set("api.base_url", srv.URL)
	config.Set("api.rate_limit", 0)
	config.Set("web.base_url", "https://wayfarer.test")
	client.Reset()
	t.Cleanup(client.Reset)

	color.NoColor = true
	prev := output.Out
	output.Out = f.out
	t.Cleanup(func() { output.Out = prev })

	prompter.SetIO(strings.NewReader(""), io.Discard)
	t.Cleanup(func() { prompter.SetIO(nil, nil) })

	if role != "" {
		require.NoError(t, credentials.Save(&credentials.Credentials{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresAt:    time.Now().Add(time.Hour),
			UserID:       "u1",
			Username:     "nomad",
			Role:         role,
		}))
	}
	f.sessions = session.NewManager()
	require.NoError(t, f.sessions.Restore(t.Context()))
	return f
}

// answer feeds lines to the next prompts
func answer(lines ...string) {
	prompter.SetIO(strings.NewReader(strings.Join(lines, "\n")+"\n"), io.Discard)
}

func reply(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func decode(t *testing.T, r *http.Request, into interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(r.Body).Decode(into))
}
