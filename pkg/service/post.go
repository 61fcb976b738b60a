package service

import (
	"context"
	"fmt"
	"strconv"
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

// DefaultCommentPageSize is how many comments a post view loads
const DefaultCommentPageSize = 100

// PostService provides post-related operations
type PostService struct {
	sessions *session.Manager
	uploads  *UploadService
	voter    *forum.Voter
	now      func() time.Time
}

// NewPostService creates a new post service
func NewPostService(sessions *session.Manager, uploads *UploadService) *PostService {
	return &PostService{
		sessions: sessions,
		uploads:  uploads,
		voter:    forum.NewPostVoter(),
		now:      time.Now,
	}
}

// PostInput carries create flags; empty fields are prompted for
type PostInput struct {
	Region  string // id or slug
	Title   string
	Content string
	Tags    []string
	Images  []string // local paths uploaded before the post is created
}

// PostEdit carries the fields to change; nil means unchanged
type PostEdit struct {
	Title   *string
	Content *string
	Tags    []string
}

// List shows a page of posts
func (ps *PostService) List(ctx context.Context, q api.PostQuery) error {
	logger.Debug("Listing posts", "region", q.RegionID, "tag", q.Tag, "sort", q.Sort, "page", q.Page)

	if q.RegionID != "" {
		region, err := api.GetRegion(ctx, q.RegionID)
		if err != nil {
			return fmt.Errorf("failed to find region: %w", err)
		}
		q.RegionID = region.ID
	}

	posts, err := api.ListPosts(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to list posts: %w", err)
	}
	if output.IsJSON() {
		return output.Print("", posts)
	}

	renderPostRows(posts.Posts)
	if shown := (posts.Page-1)*posts.PageSize + len(posts.Posts); posts.Page > 0 && shown < posts.TotalCount {
		formatter.Faint.Fprintf(output.Out, "\nShowing %d of %d. Next page: --page %d\n", shown, posts.TotalCount, posts.Page+1)
	}
	return nil
}

func renderPostRows(posts []api.Post) {
	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		region := p.RegionID
		if p.Region != nil {
			region = p.Region.Slug
		}
		rows = append(rows, []string{
			p.ID,
			formatter.Truncate(p.Title, 48),
			"@" + p.Author.Username,
			region,
			fmt.Sprintf("▲%d ▼%d", p.LikeCount, p.DislikeCount),
			strconv.Itoa(p.CommentCount),
		})
	}
	output.PrintTable([]string{"ID", "TITLE", "AUTHOR", "REGION", "VOTES", "COMMENTS"}, rows)
}

// View shows a post with its comment thread
func (ps *PostService) View(ctx context.Context, postID string, commentPageSize int) error {
	logger.Debug("Viewing post", "post_id", postID)

	post, err := api.GetPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to fetch post: %w", err)
	}

	if commentPageSize <= 0 {
		commentPageSize = DefaultCommentPageSize
	}
	comments, err := api.ListComments(ctx, postID, 1, commentPageSize)
	if err != nil {
		return fmt.Errorf("failed to fetch comments: %w", err)
	}
	thread := forum.BuildThread(comments.Comments)

	if output.IsJSON() {
		return output.Print("", struct {
			Post     *api.Post     `json:"post"`
			Comments []api.Comment `json:"comments"`
		}{post, thread})
	}

	ps.renderPost(post)
	fmt.Fprintln(output.Out)
	formatter.Bold.Fprintf(output.Out, "── %s ──\n", formatter.Plural(comments.TotalCount, "comment"))
	renderThread(thread, ps.now())
	if loaded := forum.CountComments(thread); loaded < comments.TotalCount {
		formatter.Faint.Fprintf(output.Out, "\n%d more not shown. Use: wayfarer-cli comment list %s --page 2\n",
			comments.TotalCount-loaded, post.ID)
	}
	return nil
}

func (ps *PostService) renderPost(p *api.Post) {
	w := output.Out
	formatter.Bold.Fprintln(w, p.Title)

	meta := []string{"@" + p.Author.Username}
	if p.Region != nil {
		meta = append(meta, p.Region.Name)
	}
	meta = append(meta, formatter.TimeAgo(p.CreatedAt, ps.now()))
	if p.IsEdited {
		meta = append(meta, "edited")
	}
	formatter.Faint.Fprintln(w, strings.Join(meta, " · "))

	if len(p.Tags) > 0 {
		formatter.Info.Fprintln(w, "#"+strings.Join(p.Tags, " #"))
	}
	fmt.Fprintf(w, "\n%s\n", p.Content)
	for _, u := range p.ImageURLs {
		fmt.Fprintf(w, "🖼  %s\n", u)
	}
	fmt.Fprintf(w, "\n%s  [%s]\n", voteLine(forum.PostTally(p)), p.ID)
}

func voteLine(t forum.Tally) string {
	line := fmt.Sprintf("▲ %d  ▼ %d", t.Likes, t.Dislikes)
	switch t.Vote {
	case api.VoteLike:
		line += "  (you liked this)"
	case api.VoteDislike:
		line += "  (you disliked this)"
	}
	return line
}

func renderThread(thread []api.Comment, now time.Time) {
	if len(thread) == 0 {
		formatter.Faint.Fprintln(output.Out, "No comments yet.")
		return
	}
	for _, c := range thread {
		renderComment(c, "", now)
		for _, r := range c.Replies {
			renderComment(r, "    ↳ ", now)
		}
	}
}

func renderComment(c api.Comment, prefix string, now time.Time) {
	w := output.Out
	indent := strings.Repeat(" ", len([]rune(prefix)))

	header := fmt.Sprintf("@%s · %s", c.Author.Username, formatter.TimeAgo(c.CreatedAt, now))
	if c.IsEdited {
		header += " · edited"
	}
	fmt.Fprintf(w, "\n%s%s  ", prefix, formatter.Bold.Sprint(header))
	formatter.Faint.Fprintf(w, "[%s] ▲%d ▼%d\n", c.ID, c.LikeCount, c.DislikeCount)

	content := c.Content
	if c.IsDeleted {
		content = "[deleted]"
	}
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(w, "%s  %s\n", indent, line)
	}
}

// Create publishes a new post. Images are uploaded first and their URLs
// attached.
func (ps *PostService) Create(ctx context.Context, in PostInput) error {
	var err error
	if in.Region == "" {
		if in.Region, err = prompter.PromptString("Region (slug): "); err != nil {
			return err
		}
	}
	if in.Title == "" {
		if in.Title, err = prompter.PromptString("Title: "); err != nil {
			return err
		}
	}
	if in.Content == "" {
		if in.Content, err = prompter.PromptMultilineString("Content", 200); err != nil {
			return err
		}
	}

	region, err := api.GetRegion(ctx, strings.TrimSpace(in.Region))
	if err != nil {
		return fmt.Errorf("failed to find region: %w", err)
	}

	form := validation.PostForm{
		RegionID: region.ID,
		Title:    strings.TrimSpace(in.Title),
		Content:  strings.TrimSpace(in.Content),
		Tags:     validation.NormalizeTags(in.Tags),
	}
	if err := validation.Validate(form); err != nil {
		return err
	}

	var imageURLs []string
	if len(in.Images) > 0 {
		files, err := ps.uploads.Upload(ctx, in.Images)
		if err != nil {
			return err
		}
		for _, f := range files {
			imageURLs = append(imageURLs, f.URL)
		}
	}

	post, err := api.CreatePost(ctx, api.CreatePostRequest{
		RegionID:  form.RegionID,
		Title:     form.Title,
		Content:   form.Content,
		Tags:      form.Tags,
		ImageURLs: imageURLs,
	})
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	if output.IsJSON() {
		return output.Print("", post)
	}
	formatter.PrintSuccess("✓ Posted to %s", region.Name)
	formatter.PrintInfo("View it: wayfarer-cli post view %s", post.ID)
	return nil
}

// Edit changes a post the user owns or moderates
func (ps *PostService) Edit(ctx context.Context, postID string, edit PostEdit) error {
	post, err := api.GetPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to fetch post: %w", err)
	}
	if _, err := authorize(ps.sessions, post.Author.ID, "edit"); err != nil {
		return err
	}

	if edit.Title == nil && edit.Content == nil && edit.Tags == nil {
		if edit, err = promptPostEdit(post); err != nil {
			return err
		}
		if edit.Title == nil && edit.Content == nil && edit.Tags == nil {
			formatter.PrintInfo("Nothing changed.")
			return nil
		}
	}
	if edit.Tags != nil {
		edit.Tags = validation.NormalizeTags(edit.Tags)
	}

	if err := validation.Validate(validation.PostEditForm{Title: edit.Title, Content: edit.Content, Tags: edit.Tags}); err != nil {
		return err
	}

	updated, err := api.UpdatePost(ctx, postID, api.UpdatePostRequest{
		Title:   edit.Title,
		Content: edit.Content,
		Tags:    edit.Tags,
	})
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	if output.IsJSON() {
		return output.Print("", updated)
	}
	formatter.PrintSuccess("✓ Post updated")
	return nil
}

func promptPostEdit(post *api.Post) (PostEdit, error) {
	var edit PostEdit

	title, err := prompter.PromptStringDefault("Title: ", post.Title)
	if err != nil {
		return edit, err
	}
	if title != post.Title {
		edit.Title = &title
	}

	formatter.Faint.Fprintln(output.Out, "Current content:")
	fmt.Fprintln(output.Out, post.Content)
	content, err := prompter.PromptMultilineString("New content (empty keeps the current text)", 200)
	if err != nil {
		return edit, err
	}
	if content = strings.TrimSpace(content); content != "" && content != post.Content {
		edit.Content = &content
	}

	tags, err := prompter.PromptStringDefault("Tags (comma separated): ", strings.Join(post.Tags, ","))
	if err != nil {
		return edit, err
	}
	if tags != strings.Join(post.Tags, ",") {
		edit.Tags = splitTags(tags)
	}
	return edit, nil
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Delete removes a post the user owns or moderates
func (ps *PostService) Delete(ctx context.Context, postID string, force bool) error {
	post, err := api.GetPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to fetch post: %w", err)
	}
	if _, err := authorize(ps.sessions, post.Author.ID, "delete"); err != nil {
		return err
	}

	if !force {
		confirm, err := prompter.PromptConfirm(fmt.Sprintf("Delete %q?", formatter.Truncate(post.Title, 40)))
		if err != nil {
			return err
		}
		if !confirm {
			fmt.Fprintln(output.Out, "Cancelled.")
			return nil
		}
	}

	if err := api.DeletePost(ctx, postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	formatter.PrintSuccess("✓ Post deleted")
	return nil
}

// Vote presses a vote button on a post. Pressing the active vote clears it.
func (ps *PostService) Vote(ctx context.Context, postID string, pressed api.Vote) error {
	post, err := api.GetPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to fetch post: %w", err)
	}

	tally := forum.PostTally(post)
	if err := ps.voter.Press(ctx, postID, &tally, pressed); err != nil {
		return fmt.Errorf("failed to vote: %w", err)
	}

	if output.IsJSON() {
		return output.Print("", tally)
	}
	fmt.Fprintf(output.Out, "%s  %s\n", formatter.Truncate(post.Title, 40), voteLine(tally))
	return nil
}
