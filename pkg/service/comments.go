package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zfogg/wayfarer/cli/pkg/api"
	"github.com/zfogg/wayfarer/cli/pkg/forum"
	"github.com/zfogg/wayfarer/cli/pkg/formatter"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
	"github.com/zfogg/wayfarer/cli/pkg/output"
	"github.com/zfogg/wayfarer/cli/pkg/prompter"
	"github.com/zfogg/wayfarer/cli/pkg/session"
	"github.com/zfogg/wayfarer/cli/pkg/validation"
)

// CommentService provides operations for managing comments
type CommentService struct {
	sessions *session.Manager
	voter    *forum.Voter
	now      func() time.Time
}

// NewCommentService creates a new comment service
func NewCommentService(sessions *session.Manager) *CommentService {
	return &CommentService{
		sessions: sessions,
		voter:    forum.NewCommentVoter(),
		now:      time.Now,
	}
}

// List shows one page of a post's comment thread
func (cs *CommentService) List(ctx context.Context, postID string, page, pageSize int) error {
	logger.Debug("Listing comments", "post_id", postID, "page", page)

	resp, err := api.ListComments(ctx, postID, page, pageSize)
	if err != nil {
		return fmt.Errorf("failed to list comments: %w", err)
	}
	thread := forum.BuildThread(resp.Comments)

	if output.IsJSON() {
		return output.Print("", thread)
	}
	renderThread(thread, cs.now())
	if resp.Page > 0 && resp.Page*resp.PageSize < resp.TotalCount {
		formatter.Faint.Fprintf(output.Out, "\nNext page: --page %d\n", resp.Page+1)
	}
	return nil
}

// Add comments on a post, or replies when parentID is set. Content is
// prompted for when empty.
func (cs *CommentService) Add(ctx context.Context, postID, parentID, content string) error {
	var err error
	if content == "" {
		if content, err = prompter.PromptMultilineString("Comment", 50); err != nil {
			return err
		}
	}
	content = strings.TrimSpace(content)
	if err := validation.Validate(validation.CommentForm{Content: content}); err != nil {
		return err
	}

	req := api.CreateCommentRequest{Content: content}
	if parentID != "" {
		req.ParentID = &parentID
	}

	comment, err := api.CreateComment(ctx, postID, req)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	if output.IsJSON() {
		return output.Print("", comment)
	}
	if parentID != "" {
		formatter.PrintSuccess("✓ Reply posted [%s]", comment.ID)
	} else {
		formatter.PrintSuccess("✓ Comment posted [%s]", comment.ID)
	}
	return nil
}

// Reply answers an existing comment. The post is looked up from the parent.
func (cs *CommentService) Reply(ctx context.Context, parentID, content string) error {
	parent, err := api.GetComment(ctx, parentID)
	if err != nil {
		return fmt.Errorf("failed to fetch comment: %w", err)
	}
	if parent.IsDeleted {
		return fmt.Errorf("cannot reply to a deleted comment")
	}
	return cs.Add(ctx, parent.PostID, parent.ID, content)
}

// Edit changes a comment the user owns or moderates
func (cs *CommentService) Edit(ctx context.Context, commentID, content string) error {
	comment, err := api.GetComment(ctx, commentID)
	if err != nil {
		return fmt.Errorf("failed to fetch comment: %w", err)
	}
	if _, err := authorize(cs.sessions, comment.Author.ID, "edit"); err != nil {
		return err
	}

	if content == "" {
		formatter.Faint.Fprintln(output.Out, "Current comment:")
		fmt.Fprintln(output.Out, comment.Content)
		if content, err = prompter.PromptMultilineString("New comment", 50); err != nil {
			return err
		}
	}
	content = strings.TrimSpace(content)
	if content == comment.Content {
		formatter.PrintInfo("Nothing changed.")
		return nil
	}
	if err := validation.Validate(validation.CommentForm{Content: content}); err != nil {
		return err
	}

	updated, err := api.UpdateComment(ctx, commentID, api.UpdateCommentRequest{Content: content})
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	if output.IsJSON() {
		return output.Print("", updated)
	}
	formatter.PrintSuccess("✓ Comment updated")
	return nil
}

// Delete removes a comment the user owns or moderates
func (cs *CommentService) Delete(ctx context.Context, commentID string, force bool) error {
	comment, err := api.GetComment(ctx, commentID)
	if err != nil {
		return fmt.Errorf("failed to fetch comment: %w", err)
	}
	if _, err := authorize(cs.sessions, comment.Author.ID, "delete"); err != nil {
		return err
	}

	if !force {
		confirm, err := prompter.PromptConfirm(fmt.Sprintf("Delete comment %q?", formatter.Truncate(comment.Content, 40)))
		if err != nil {
			return err
		}
		if !confirm {
			fmt.Fprintln(output.Out, "Cancelled.")
			return nil
		}
	}

	if err := api.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	formatter.PrintSuccess("✓ Comment deleted")
	return nil
}

// Vote presses a vote button on a comment
func (cs *CommentService) Vote(ctx context.Context, commentID string, pressed api.Vote) error {
	comment, err := api.GetComment(ctx, commentID)
	if err != nil {
		return fmt.Errorf("failed to fetch comment: %w", err)
	}

	tally := forum.CommentTally(comment)
	if err := cs.voter.Press(ctx, commentID, &tally, pressed); err != nil {
		return fmt.Errorf("failed to vote: %w", err)
	}

	if output.IsJSON() {
		return output.Print("", tally)
	}
	fmt.Fprintf(output.Out, "%s  %s\n", formatter.Truncate(comment.Content, 40), voteLine(tally))
	return nil
}
