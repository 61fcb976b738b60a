package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPostsQuery(t *testing.T) {
	newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/v1/forum/posts", r.URL.Path)
		assert.Equal(t, "r1", q.Get("region_id"))
		assert.Equal(t, "hiking", q.Get("tag"))
		assert.Equal(t, "top", q.Get("sort"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "20", q.Get("page_size"))
		assert.Empty(t, q.Get("q"))
		writeJSON(t, w, http.StatusOK, PostListResponse{
			Posts:      []Post{{ID: "p1", Title: "Best trails"}},
			TotalCount: 21,
			Page:       2,
			PageSize:   20,
		})
	}))

	resp, err := ListPosts(context.Background(), PostQuery{RegionID: "r1", Tag: "hiking", Sort: "top", Page: 2})
	require.NoError(t, err)
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, "p1", resp.Posts[0].ID)
	assert.Equal(t, 21, resp.TotalCount)
}

func TestPostCRUD(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/forum/posts", func(w http.ResponseWriter, r *http.Request) {
		var body CreatePostRequest
		decodeBody(t, r, &body)
		writeJSON(t, w, http.StatusCreated, map[string]Post{"post": {ID: "p9", RegionID: body.RegionID, Title: body.Title, Content: body.Content}})
	})
	mux.HandleFunc("/api/v1/forum/posts/p9", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(t, w, http.StatusOK, map[string]Post{"post": {ID: "p9", Title: "Night markets"}})
		case http.MethodPatch:
			var body map[string]interface{}
			decodeBody(t, r, &body)
			assert.NotContains(t, body, "content", "unset fields must be omitted")
			writeJSON(t, w, http.StatusOK, map[string]Post{"post": {ID: "p9", Title: body["title"].(string), IsEdited: true}})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	newTestServer(t, mux)
	ctx := context.Background()

	created, err := CreatePost(ctx, CreatePostRequest{RegionID: "r1", Title: "Night markets", Content: "Where to eat late?"})
	require.NoError(t, err)
	assert.Equal(t, "p9", created.ID)
	assert.Equal(t, "r1", created.RegionID)

	got, err := GetPost(ctx, "p9")
	require.NoError(t, err)
	assert.Equal(t, "Night markets", got.Title)

	title := "Night markets in Taipei"
	updated, err := UpdatePost(ctx, "p9", UpdatePostRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.True(t, updated.IsEdited)

	require.NoError(t, DeletePost(ctx, "p9"))

	_, err = GetPost(ctx, "missing")
	assert.True(t, IsNotFound(err))
}

func TestVotePostNormalizesVote(t *testing.T) {
	newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/forum/posts/p1/vote", r.URL.Path)
		var body VoteRequest
		decodeBody(t, r, &body)
		assert.Equal(t, VoteNone, body.Value)
		writeJSON(t, w, http.StatusOK, map[string]interface{}{"like_count": 4, "dislike_count": 1})
	}))

	resp, err := VotePost(context.Background(), "p1", "")
	require.NoError(t, err)
	assert.Equal(t, VoteNone, resp.MyVote)
	assert.Equal(t, 4, resp.LikeCount)
	assert.Equal(t, 1, resp.DislikeCount)
}

func TestVoteValid(t *testing.T) {
	assert.True(t, Vote("").Valid())
	assert.True(t, VoteLike.Valid())
	assert.True(t, VoteDislike.Valid())
	assert.False(t, Vote("love").Valid())
}
