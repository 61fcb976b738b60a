package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zfogg/wayfarer/cli/pkg/api"
	"github.com/zfogg/wayfarer/cli/pkg/guard"
	"github.com/zfogg/wayfarer/cli/pkg/service"
)

var (
	postQuery        api.PostQuery
	postInput        service.PostInput
	postEditTitle    string
	postEditContent  string
	postEditTags     []string
	postCommentLimit int
	postForce        bool
)

var postCmd = &cobra.Command{
	Use:     "post",
	Aliases: []string{"posts"},
	Short:   "Forum post commands",
	Long:    "Browse, write, and vote on forum posts",
}

func newPostService() *service.PostService {
	return service.NewPostService(sessions(), service.NewUploadService(uploadLimits()))
}

var postListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List posts",
	PreRunE: restoreSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newPostService().List(cmd.Context(), postQuery)
	},
}

var postViewCmd = &cobra.Command{
	Use:     "view <post-id>",
	Short:   "View a post and its comments",
	Args:    cobra.ExactArgs(1),
	PreRunE: restoreSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newPostService().View(cmd.Context(), args[0], postCommentLimit)
	},
}

var postCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Start a new discussion",
	Long:    "Create a post in a region. Missing fields are prompted for; --image uploads attachments first.",
	PreRunE: guard.Chain(guard.RequireAuth(sessions())),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newPostService().Create(cmd.Context(), postInput)
	},
}

var postEditCmd = &cobra.Command{
	Use:     "edit <post-id>",
	Short:   "Edit a post",
	Long:    "Edit a post you wrote. Without flags the current values are offered for editing.",
	Args:    cobra.ExactArgs(1),
	PreRunE: guard.Chain(guard.RequireAuth(sessions())),
	RunE: func(cmd *cobra.Command, args []string) error {
		var edit service.PostEdit
		if cmd.Flags().Changed("title") {
			edit.Title = &postEditTitle
		}
		if cmd.Flags().Changed("content") {
			edit.Content = &postEditContent
		}
		if cmd.Flags().Changed("tags") {
			edit.Tags = append([]string{}, postEditTags...)
		}
		return newPostService().Edit(cmd.Context(), args[0], edit)
	},
}

var postDeleteCmd = &cobra.Command{
	Use:     "delete <post-id>",
	Short:   "Delete a post",
	Args:    cobra.ExactArgs(1),
	PreRunE: guard.Chain(guard.RequireAuth(sessions())),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newPostService().Delete(cmd.Context(), args[0], postForce)
	},
}

func postVoteCmd(use, short string, vote api.Vote) *cobra.Command {
	return &cobra.Command{
		Use:     use + " <post-id>",
		Short:   short,
		Args:    cobra.ExactArgs(1),
		PreRunE: guard.Chain(guard.RequireAuth(sessions())),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newPostService().Vote(cmd.Context(), args[0], vote)
		},
	}
}

func init() {
	postListCmd.Flags().StringVarP(&postQuery.RegionID, "region", "r", "", "Region slug or id")
	postListCmd.Flags().StringVarP(&postQuery.Tag, "tag", "t", "", "Only posts with this tag")
	postListCmd.Flags().StringVarP(&postQuery.Search, "search", "s", "", "Search titles and content")
	postListCmd.Flags().StringVar(&postQuery.Sort, "sort", "newest", "Sort order: newest, top, active")
	postListCmd.Flags().IntVar(&postQuery.Page, "page", 1, "Page number")
	postListCmd.Flags().IntVar(&postQuery.PageSize, "page-size", 20, "Results per page")

	postViewCmd.Flags().IntVar(&postCommentLimit, "comments", service.DefaultCommentPageSize, "Comments to load")

	postCreateCmd.Flags().StringVarP(&postInput.Region, "region", "r", "", "Region slug or id")
	postCreateCmd.Flags().StringVar(&postInput.Title, "title", "", "Post title")
	postCreateCmd.Flags().StringVar(&postInput.Content, "content", "", "Post body")
	postCreateCmd.Flags().StringSliceVar(&postInput.Tags, "tags", nil, "Comma-separated tags")
	postCreateCmd.Flags().StringArrayVar(&postInput.Images, "image", nil, "Image to attach (repeatable)")

	postEditCmd.Flags().StringVar(&postEditTitle, "title", "", "New title")
	postEditCmd.Flags().StringVar(&postEditContent, "content", "", "New body")
	postEditCmd.Flags().StringSliceVar(&postEditTags, "tags", nil, "Replace tags (empty clears them)")

	postDeleteCmd.Flags().BoolVarP(&postForce, "force", "f", false, "Skip confirmation")

	postCmd.AddCommand(postListCmd)
	postCmd.AddCommand(postViewCmd)
	postCmd.AddCommand(postCreateCmd)
	postCmd.AddCommand(postEditCmd)
	postCmd.AddCommand(postDeleteCmd)
	postCmd.AddCommand(postVoteCmd("like", "Like a post (again to undo)", api.VoteLike))
	postCmd.AddCommand(postVoteCmd("dislike", "Dislike a post (again to undo)", api.VoteDislike))
	postCmd.AddCommand(postVoteCmd("unvote", "Clear your vote on a post", api.VoteNone))
}
