package chatlist

import (
	"context"
	"sync"

	"github.com/letusconnect/connect-gateway-go/internal/domain/chat"
)

// EntityFetcher is the upstream capability the snapshot refreshes from
type EntityFetcher interface {
	ChatEntities(ctx context.Context, userID string) ([]chat.Entity, error)
}

// Service keeps a per-user snapshot of conversation entities and serves the
// recency-sorted view over it. The snapshot is also the lookup table the
// real-time subscriber resolves group names against.
type Service struct {
	fetcher EntityFetcher

	mu        sync.RWMutex
	snapshots map[string][]chat.Entity
}

// NewService creates the chat list service
func NewService(fetcher EntityFetcher) *Service {
	return &Service{
		fetcher:   fetcher,
		snapshots: make(map[string][]chat.Entity),
	}
}

// Refresh fetches a fresh snapshot from the upstream and returns it sorted
// by most-recent activity.
func (s *Service) Refresh(ctx context.Context, userID string) ([]chat.Entity, error) {
	entities, err := s.fetcher.ChatEntities(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.snapshots[userID] = entities
	s.mu.Unlock()

	return chat.SortByActivity(entities), nil
}

// Sorted returns the sorted view of the user's snapshot, refreshing first if
// none has been loaded yet.
func (s *Service) Sorted(ctx context.Context, userID string) ([]chat.Entity, error) {
	s.mu.RLock()
	entities, ok := s.snapshots[userID]
	s.mu.RUnlock()

	if !ok {
		return s.Refresh(ctx, userID)
	}
	return chat.SortByActivity(entities), nil
}

// GroupName resolves a group chat id against the user's snapshot
func (s *Service) GroupName(userID, chatID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.snapshots[userID] {
		if e.ID == chatID {
			return e.Name, true
		}
	}
	return "", false
}

// Forget drops the user's snapshot (last stream closed)
func (s *Service) Forget(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, userID)
}
