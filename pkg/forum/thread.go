// Package forum holds the client-side rules for rendering and voting on
// forum threads.
package forum

import (
	"sort"

	"github.com/zfogg/wayfarer/cli/pkg/api"
)

// BuildThread arranges comments into top-level comments carrying one level
// of replies. The input may be flat or nested. A reply to a reply is filed
// under its top-level ancestor, and a comment whose parent is not in the
// input becomes top-level. Both levels are ordered by creation time, ties by
// id. Duplicate ids keep the first occurrence.
func BuildThread(comments []api.Comment) []api.Comment {
	flat := make([]api.Comment, 0, len(comments))
	byID := make(map[string]int, len(comments))
	var walk func([]api.Comment)
	walk = func(list []api.Comment) {
		for _, c := range list {
			replies := c.Replies
			c.Replies = nil
			if _, seen := byID[c.ID]; !seen {
				byID[c.ID] = len(flat)
				flat = append(flat, c)
			}
			walk(replies)
		}
	}
	walk(comments)

	// a parent chain that loops back on itself is treated as top-level
	rootOf := func(c api.Comment) string {
		visited := map[string]bool{c.ID: true}
		current := c
		for current.ParentID != nil {
			parent := *current.ParentID
			idx, ok := byID[parent]
			if !ok {
				break
			}
			if visited[parent] {
				return c.ID
			}
			visited[parent] = true
			current = flat[idx]
		}
		return current.ID
	}

	var roots []string
	children := make(map[string][]api.Comment)
	for _, c := range flat {
		root := rootOf(c)
		if root == c.ID {
			roots = append(roots, c.ID)
			continue
		}
		children[root] = append(children[root], c)
	}

	thread := make([]api.Comment, 0, len(roots))
	for _, id := range roots {
		c := flat[byID[id]]
		if replies := children[id]; len(replies) > 0 {
			sortComments(replies)
			c.Replies = replies
		}
		thread = append(thread, c)
	}
	sortComments(thread)
	return thread
}

// CountComments counts top-level comments and their replies
func CountComments(thread []api.Comment) int {
	n := 0
	for _, c := range thread {
		n += 1 + len(c.Replies)
	}
	return n
}

func sortComments(list []api.Comment) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
