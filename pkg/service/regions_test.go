package service

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zfogg/wayfarer/cli/pkg/api"
	"github.com/zfogg/wayfarer/cli/pkg/config"
	"github.com/zfogg/wayfarer/cli/pkg/notify"
	"github.com/zfogg/wayfarer/cli/pkg/websocket"
)

func TestRegionList(t *testing.T) {
	f := setup(t, "")
	f.mux.HandleFunc("GET /api/v1/regions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "port", r.URL.Query().Get("q"))
		reply(w, http.StatusOK, api.RegionListResponse{Regions: []api.Region{
			{ID: "r1", Slug: "lisbon", Name: "Lisbon", Country: "Portugal", PostCount: 12},
			{ID: "r2", Slug: "porto", Name: "Porto", Country: "Portugal", PostCount: 4},
		}})
	})

	require.NoError(t, NewRegionService().List(t.Context(), "port"))
	out := f.out.String()
	assert.Contains(t, out, "Regions (2)")
	assert.Contains(t, out, "lisbon")
	assert.Contains(t, out, "porto")
}

func TestRegionListJSON(t *testing.T) {
	f := setup(t, "")
	config.Set("output.format", "json")
	f.mux.HandleFunc("GET /api/v1/regions", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, api.RegionListResponse{Regions: []api.Region{{ID: "r1", Slug: "lisbon"}}})
	})

	require.NoError(t, NewRegionService().List(t.Context(), ""))
	assert.Contains(t, f.out.String(), `"slug": "lisbon"`)
	assert.NotContains(t, f.out.String(), "Regions (")
}

func TestRegionViewShowsNewestPosts(t *testing.T) {
	f := setup(t, "")
	f.mux.HandleFunc("GET /api/v1/regions/lisbon", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]interface{}{"region": api.Region{ID: "r1", Slug: "lisbon", Name: "Lisbon", Country: "Portugal", PostCount: 1}})
	})
	f.mux.HandleFunc("GET /api/v1/forum/posts", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "r1", r.URL.Query().Get("region_id"))
		assert.Equal(t, "newest", r.URL.Query().Get("sort"))
		reply(w, http.StatusOK, api.PostListResponse{Posts: []api.Post{samplePost("u2")}})
	})

	require.NoError(t, NewRegionService().View(t.Context(), "lisbon"))
	out := f.out.String()
	assert.Contains(t, out, "Lisbon, Portugal")
	assert.Contains(t, out, "1 post\n")
	assert.Contains(t, out, "Best pastel de nata?")
}

func TestWatchRequiresSession(t *testing.T) {
	f := setup(t, "")
	channel := notify.NewChannel(notify.NewStore(), websocket.DefaultConfig())

	err := NewNotificationWatcherService(f.sessions, channel).Watch(t.Context())
	require.Error(t, err)
	assert.False(t, channel.Running())
}
