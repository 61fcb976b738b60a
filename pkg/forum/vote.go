package forum

import (
	"context"
	"fmt"

	"github.com/zfogg/wayfarer/cli/pkg/api"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
)

// Tally is the vote state shown for a post or comment
type Tally struct {
	Vote     api.Vote `json:"my_vote"`
	Likes    int      `json:"like_count"`
	Dislikes int      `json:"dislike_count"`
}

// PostTally reads the tally off a post
func PostTally(p *api.Post) Tally {
	return Tally{Vote: p.MyVote.Normalize(), Likes: p.LikeCount, Dislikes: p.DislikeCount}
}

// CommentTally reads the tally off a comment
func CommentTally(c *api.Comment) Tally {
	return Tally{Vote: c.MyVote.Normalize(), Likes: c.LikeCount, Dislikes: c.DislikeCount}
}

// ApplyToPost writes t back onto p
func (t Tally) ApplyToPost(p *api.Post) {
	p.MyVote, p.LikeCount, p.DislikeCount = t.Vote, t.Likes, t.Dislikes
}

// ApplyToComment writes t back onto c
func (t Tally) ApplyToComment(c *api.Comment) {
	c.MyVote, c.LikeCount, c.DislikeCount = t.Vote, t.Likes, t.Dislikes
}

// ApplyVote returns the tally after the user presses a vote button. Pressing
// the active vote clears it, pressing the other one switches, and pressing
// VoteNone clears whatever is set. Counts never go below zero.
func ApplyVote(current, pressed api.Vote, likes, dislikes int) Tally {
	current, pressed = current.Normalize(), pressed.Normalize()

	next := pressed
	if pressed == current {
		next = api.VoteNone
	}

	switch current {
	case api.VoteLike:
		likes--
	case api.VoteDislike:
		dislikes--
	}
	switch next {
	case api.VoteLike:
		likes++
	case api.VoteDislike:
		dislikes++
	}

	return Tally{Vote: next, Likes: max(likes, 0), Dislikes: max(dislikes, 0)}
}

// SendVoteFunc sends a vote for one target to the server
type SendVoteFunc func(ctx context.Context, id string, vote api.Vote) (*api.VoteResponse, error)

// Voter applies votes optimistically and reconciles them with the server
type Voter struct {
	send SendVoteFunc

	// OnChange, when set, sees every tally the voter publishes: the
	// optimistic one, then either the server's or the rolled back one.
	OnChange func(Tally)
}

// NewVoter creates a voter that sends votes through send
func NewVoter(send SendVoteFunc) *Voter {
	return &Voter{send: send}
}

// NewPostVoter votes on posts
func NewPostVoter() *Voter {
	return NewVoter(api.VotePost)
}

// NewCommentVoter votes on comments
func NewCommentVoter() *Voter {
	return NewVoter(api.VoteComment)
}

// Press applies pressed to tally, sends the resulting vote and settles tally
// on the server's counts. On error tally is restored.
func (v *Voter) Press(ctx context.Context, id string, tally *Tally, pressed api.Vote) error {
	if !pressed.Valid() {
		return fmt.Errorf("unknown vote %q", pressed)
	}

	previous := *tally
	*tally = ApplyVote(previous.Vote, pressed, previous.Likes, previous.Dislikes)
	v.publish(*tally)

	resp, err := v.send(ctx, id, tally.Vote)
	if err != nil {
		logger.Debug("Vote rejected, rolling back", "target_id", id, "error", err)
		*tally = previous
		v.publish(*tally)
		return err
	}

	*tally = Tally{Vote: resp.MyVote.Normalize(), Likes: resp.LikeCount, Dislikes: resp.DislikeCount}
	v.publish(*tally)
	return nil
}

func (v *Voter) publish(t Tally) {
	if v.OnChange != nil {
		v.OnChange(t)
	}
}
