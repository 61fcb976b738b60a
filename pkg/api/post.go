package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
)

func postPath(postID string) string {
	return fmt.Sprintf("/api/v1/forum/posts/%s", url.PathEscape(postID))
}

// ListPosts retrieves forum posts, optionally scoped to a region
func ListPosts(ctx context.Context, q PostQuery) (*PostListResponse, error) {
	logger.Debug("Listing posts", "region_id", q.RegionID, "page", q.Page, "sort", q.Sort)

	var response PostListResponse
	req := newRequest(ctx).
		SetQueryParams(pageParams(q.Page, q.PageSize)).
		SetResult(&response)

	if q.RegionID != "" {
		req.SetQueryParam("region_id", q.RegionID)
	}
	if q.Tag != "" {
		req.SetQueryParam("tag", q.Tag)
	}
	if q.Search != "" {
		req.SetQueryParam("q", q.Search)
	}
	if q.Sort != "" {
		req.SetQueryParam("sort", q.Sort)
	}

	if _, err := send(req, resty.MethodGet, "/api/v1/forum/posts"); err != nil {
		return nil, err
	}

	return &response, nil
}

// GetPost retrieves a single post
func GetPost(ctx context.Context, postID string) (*Post, error) {
	logger.Debug("Getting post", "post_id", postID)

	var response struct {
		Post Post `json:"post"`
	}
	req := newRequest(ctx).SetResult(&response)

	if _, err := send(req, resty.MethodGet, postPath(postID)); err != nil {
		return nil, err
	}

	return &response.Post, nil
}

// CreatePost creates a new forum post
func CreatePost(ctx context.Context, body CreatePostRequest) (*Post, error) {
	logger.Debug("Creating post", "region_id", body.RegionID, "title", body.Title)

	var response struct {
		Post Post `json:"post"`
	}
	req := newRequest(ctx).
		SetBody(body).
		SetResult(&response)

	if _, err := send(req, resty.MethodPost, "/api/v1/forum/posts"); err != nil {
		return nil, err
	}

	logger.Debug("Post created", "post_id", response.Post.ID)
	return &response.Post, nil
}

// UpdatePost edits a post the user owns
func UpdatePost(ctx context.Context, postID string, body UpdatePostRequest) (*Post, error) {
	logger.Debug("Updating post", "post_id", postID)

	var response struct {
		Post Post `json:"post"`
	}
	req := newRequest(ctx).
		SetBody(body).
		SetResult(&response)

	if _, err := send(req, resty.MethodPatch, postPath(postID)); err != nil {
		return nil, err
	}

	return &response.Post, nil
}

// DeletePost deletes a post
func DeletePost(ctx context.Context, postID string) error {
	logger.Debug("Deleting post", "post_id", postID)

	_, err := send(newRequest(ctx), resty.MethodDelete, postPath(postID))
	return err
}

// VotePost sets the user's vote on a post; VoteNone clears it
func VotePost(ctx context.Context, postID string, vote Vote) (*VoteResponse, error) {
	logger.Debug("Voting on post", "post_id", postID, "vote", vote)

	var response VoteResponse
	req := newRequest(ctx).
		SetBody(VoteRequest{Value: vote.Normalize()}).
		SetResult(&response)

	if _, err := send(req, resty.MethodPut, postPath(postID)+"/vote"); err != nil {
		return nil, err
	}

	response.MyVote = response.MyVote.Normalize()
	return &response, nil
}
