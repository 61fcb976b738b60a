package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
)

func commentPath(commentID string) string {
	return fmt.Sprintf("/api/v1/forum/comments/%s", url.PathEscape(commentID))
}

// ListComments retrieves comments on a post. The backend may return them
// flat (parent_id set) or with replies nested.
func ListComments(ctx context.Context, postID string, page, pageSize int) (*CommentListResponse, error) {
	logger.Debug("Getting comments", "post_id", postID, "page", page)

	var response CommentListResponse
	req := newRequest(ctx).
		SetQueryParams(pageParams(page, pageSize)).
		SetResult(&response)

	if _, err := send(req, resty.MethodGet, postPath(postID)+"/comments"); err != nil {
		return nil, err
	}

	return &response, nil
}

// CreateComment creates a comment on a post, or a reply when parentID is set
func CreateComment(ctx context.Context, postID string, body CreateCommentRequest) (*Comment, error) {
	logger.Debug("Creating comment", "post_id", postID, "reply", body.ParentID != nil)

	var response struct {
		Comment Comment `json:"comment"`
	}
	req := newRequest(ctx).
		SetBody(body).
		SetResult(&response)

	if _, err := send(req, resty.MethodPost, postPath(postID)+"/comments"); err != nil {
		return nil, err
	}

	return &response.Comment, nil
}

// GetComment retrieves a single comment
func GetComment(ctx context.Context, commentID string) (*Comment, error) {
	logger.Debug("Getting comment", "comment_id", commentID)

	var response struct {
		Comment Comment `json:"comment"`
	}
	req := newRequest(ctx).SetResult(&response)

	if _, err := send(req, resty.MethodGet, commentPath(commentID)); err != nil {
		return nil, err
	}

	return &response.Comment, nil
}

// UpdateComment edits a comment
func UpdateComment(ctx context.Context, commentID string, body UpdateCommentRequest) (*Comment, error) {
	logger.Debug("Updating comment", "comment_id", commentID)

	var response struct {
		Comment Comment `json:"comment"`
	}
	req := newRequest(ctx).
		SetBody(body).
		SetResult(&response)

	if _, err := send(req, resty.MethodPatch, commentPath(commentID)); err != nil {
		return nil, err
	}

	return &response.Comment, nil
}

// DeleteComment deletes a comment
func DeleteComment(ctx context.Context, commentID string) error {
	logger.Debug("Deleting comment", "comment_id", commentID)

	_, err := send(newRequest(ctx), resty.MethodDelete, commentPath(commentID))
	return err
}

// VoteComment sets the user's vote on a comment; VoteNone clears it
func VoteComment(ctx context.Context, commentID string, vote Vote) (*VoteResponse, error) {
	logger.Debug("Voting on comment", "comment_id", commentID, "vote", vote)

	var response VoteResponse
	req := newRequest(ctx).
		SetBody(VoteRequest{Value: vote.Normalize()}).
		SetResult(&response)

	if _, err := send(req, resty.MethodPut, commentPath(commentID)+"/vote"); err != nil {
		return nil, err
	}

	response.MyVote = response.MyVote.Normalize()
	return &response, nil
}
