package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zfogg/wayfarer/cli/pkg/api"
	"github.com/zfogg/wayfarer/cli/pkg/guard"
	"github.com/zfogg/wayfarer/cli/pkg/service"
)

var (
	commentText     string
	commentParent   string
	commentPage     int
	commentPageSize int
	commentForce    bool
)

var commentCmd = &cobra.Command{
	Use:     "comment",
	Aliases: []string{"comments"},
	Short:   "Comment commands",
	Long:    "Read and write comments on forum posts",
}

var commentListCmd = &cobra.Command{
	Use:     "list <post-id>",
	Short:   "List comments on a post",
	Args:    cobra.ExactArgs(1),
	PreRunE: restoreSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewCommentService(sessions()).List(cmd.Context(), args[0], commentPage, commentPageSize)
	},
}

var commentAddCmd = &cobra.Command{
	Use:     "add <post-id>",
	Short:   "Comment on a post",
	Args:    cobra.ExactArgs(1),
	PreRunE: guard.Chain(guard.RequireAuth(sessions())),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewCommentService(sessions()).Add(cmd.Context(), args[0], commentParent, commentText)
	},
}

var commentReplyCmd = &cobra.Command{
	Use:     "reply <comment-id>",
	Short:   "Reply to a comment",
	Args:    cobra.ExactArgs(1),
	PreRunE: guard.Chain(guard.RequireAuth(sessions())),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewCommentService(sessions()).Reply(cmd.Context(), args[0], commentText)
	},
}

var commentEditCmd = &cobra.Command{
	Use:     "edit <comment-id>",
	Short:   "Edit a comment",
	Args:    cobra.ExactArgs(1),
	PreRunE: guard.Chain(guard.RequireAuth(sessions())),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewCommentService(sessions()).Edit(cmd.Context(), args[0], commentText)
	},
}

var commentDeleteCmd = &cobra.Command{
	Use:     "delete <comment-id>",
	Short:   "Delete a comment",
	Args:    cobra.ExactArgs(1),
	PreRunE: guard.Chain(guard.RequireAuth(sessions())),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewCommentService(sessions()).Delete(cmd.Context(), args[0], commentForce)
	},
}

func commentVoteCmd(use, short string, vote api.Vote) *cobra.Command {
	return &cobra.Command{
		Use:     use + " <comment-id>",
		Short:   short,
		Args:    cobra.ExactArgs(1),
		PreRunE: guard.Chain(guard.RequireAuth(sessions())),
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.NewCommentService(sessions()).Vote(cmd.Context(), args[0], vote)
		},
	}
}

func init() {
	commentListCmd.Flags().IntVar(&commentPage, "page", 1, "Page number")
	commentListCmd.Flags().IntVar(&commentPageSize, "page-size", 50, "Comments per page")

	for _, c := range []*cobra.Command{commentAddCmd, commentReplyCmd, commentEditCmd} {
		c.Flags().StringVarP(&commentText, "content", "m", "", "Comment text (prompted when omitted)")
	}
	commentAddCmd.Flags().StringVar(&commentParent, "parent", "", "Reply to this comment id")
	commentDeleteCmd.Flags().BoolVarP(&commentForce, "force", "f", false, "Skip confirmation")

	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentReplyCmd)
	commentCmd.AddCommand(commentEditCmd)
	commentCmd.AddCommand(commentDeleteCmd)
	commentCmd.AddCommand(commentVoteCmd("like", "Like a comment (again to undo)", api.VoteLike))
	commentCmd.AddCommand(commentVoteCmd("dislike", "Dislike a comment (again to undo)", api.VoteDislike))
	commentCmd.AddCommand(commentVoteCmd("unvote", "Clear your vote on a comment", api.VoteNone))
}
