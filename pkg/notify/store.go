// Package notify keeps the signed-in user's notifications in memory and in
// sync with the backend: an initial fetch, pushed events over the
// websocket, and read acknowledgements.
package notify

import (
	"sort"
	"sync"

	"github.com/zfogg/wayfarer/cli/pkg/api"
)

// Store is the local notification list, newest first. The unread count is
// always derived from the items, never tracked separately.
type Store struct {
	mu    sync.RWMutex
	items []api.Notification
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// Hydrate replaces the list with a server snapshot. Duplicate ids keep
// their first occurrence.
func (s *Store) Hydrate(list []api.Notification) {
	seen := make(map[string]bool, len(list))
	items := make([]api.Notification, 0, len(list))
	for _, n := range list {
		if n.ID == "" || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		items = append(items, n)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// Push adds a pushed notification at the head. A known id is replaced in
// place; Push reports whether the notification was new.
func (s *Store) Push(n api.Notification) bool {
	if n.ID == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(n.ID); i >= 0 {
		s.items[i] = n
		return false
	}

	s.items = append(s.items, api.Notification{})
	copy(s.items[1:], s.items)
	s.items[0] = n
	return true
}

// MarkRead flags id as read and reports whether anything changed
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 || s.items[i].Read {
		return false
	}
	s.items[i].Read = true
	return true
}

// MarkAllRead flags every item as read and returns how many changed
func (s *Store) MarkAllRead() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for i := range s.items {
		if !s.items[i].Read {
			s.items[i].Read = true
			changed++
		}
	}
	return changed
}

// UnreadCount returns the number of unread items
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// Items returns a copy of the list, newest first
func (s *Store) Items() []api.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the notification with id
func (s *Store) Get(id string) (api.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	return api.Notification{}, false
}

// Len returns the number of items
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear drops every item
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
