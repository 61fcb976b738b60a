package forum

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zfogg/wayfarer/cli/pkg/api"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func comment(id, parent string, minute int) api.Comment {
	c := api.Comment{ID: id, PostID: "p1", Content: "c " + id, CreatedAt: base.Add(time.Duration(minute) * time.Minute)}
	if parent != "" {
		c.ParentID = &parent
	}
	return c
}

func threadIDs(thread []api.Comment) map[string][]string {
	out := make(map[string][]string, len(thread))
	for _, c := range thread {
		replies := []string{}
		for _, r := range c.Replies {
			replies = append(replies, r.ID)
		}
		out[c.ID] = replies
	}
	return out
}

func topIDs(thread []api.Comment) []string {
	ids := make([]string, len(thread))
	for i, c := range thread {
		ids[i] = c.ID
	}
	return ids
}

func TestBuildThreadFlat(t *testing.T) {
	thread := BuildThread([]api.Comment{
		comment("b", "", 2),
		comment("a", "", 1),
		comment("a2", "a", 5),
		comment("a1", "a", 3),
		comment("b1", "b", 4),
	})

	assert.Equal(t, []string{"a", "b"}, topIDs(thread))
	assert.Equal(t, map[string][]string{
		"a": {"a1", "a2"},
		"b": {"b1"},
	}, threadIDs(thread))
	assert.Equal(t, 5, CountComments(thread))
}

func TestBuildThreadDeepRepliesGoToTopLevelAncestor(t *testing.T) {
	thread := BuildThread([]api.Comment{
		comment("root", "", 0),
		comment("r1", "root", 1),
		comment("r1a", "r1", 2),
		comment("r1a1", "r1a", 3),
	})

	require.Len(t, thread, 1)
	assert.Equal(t, []string{"r1", "r1a", "r1a1"}, topIDs(thread[0].Replies))
	for _, r := range thread[0].Replies {
		assert.Empty(t, r.Replies, "only one level of replies")
	}
}

func TestBuildThreadNestedInput(t *testing.T) {
	root := comment("root", "", 0)
	child := comment("child", "root", 1)
	child.Replies = []api.Comment{comment("grandchild", "child", 2)}
	root.Replies = []api.Comment{child}

	thread := BuildThread([]api.Comment{root, comment("other", "", 5)})

	assert.Equal(t, []string{"root", "other"}, topIDs(thread))
	assert.Equal(t, []string{"child", "grandchild"}, topIDs(thread[0].Replies))
}

func TestBuildThreadOrphansBecomeTopLevel(t *testing.T) {
	thread := BuildThread([]api.Comment{
		comment("a", "", 1),
		comment("orphan", "deleted", 0),
		comment("orphan-reply", "orphan", 2),
	})

	assert.Equal(t, []string{"orphan", "a"}, topIDs(thread))
	assert.Equal(t, []string{"orphan-reply"}, topIDs(thread[0].Replies))
}

func TestBuildThreadTiesBrokenByID(t *testing.T) {
	thread := BuildThread([]api.Comment{
		comment("c", "", 0),
		comment("a", "", 0),
		comment("b", "", 0),
	})
	assert.Equal(t, []string{"a", "b", "c"}, topIDs(thread))
}

func TestBuildThreadDuplicatesAndCycles(t *testing.T) {
	x := comment("x", "y", 0)
	y := comment("y", "x", 1)
	thread := BuildThread([]api.Comment{x, y, comment("x", "", 9)})

	assert.Equal(t, 2, CountComments(thread), "duplicate x dropped, cycle still yields every comment once")
}

func TestBuildThreadEmpty(t *testing.T) {
	assert.Empty(t, BuildThread(nil))
}
