package modstore

import (
	"context"
	"slices"
	"sync"
	"time"
)

type MemStore struct {
	mu           sync.RWMutex
	items        map[uint]*QueueItem
	actions      []*ModAction
	nextItemID   uint
	nextActionID uint
}

func NewMemStore() *MemStore {
	return &MemStore{
		items:        make(map[uint]*QueueItem),
		nextItemID:   1,
		nextActionID: 1,
	}
}

func (s *MemStore) EnqueueItem(ctx context.Context, item *QueueItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = s.nextItemID
	s.nextItemID++
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	cp := *item
	s.items[item.ID] = &cp
	return nil
}

func (s *MemStore) GetItem(ctx context.Context, id uint) (*QueueItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func matchesFilters(item *QueueItem, f ItemFilters) bool {
	if f.Status != "" && item.Status != f.Status {
		return false
	}
	if f.Severity != "" && item.Severity != f.Severity {
		return false
	}
	if f.ContentType != "" && item.ContentType != f.ContentType {
		return false
	}
	return true
}

func (s *MemStore) ListItems(ctx context.Context, f ItemFilters) ([]*QueueItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*QueueItem, 0)
	for _, item := range s.items {
		if matchesFilters(item, f) {
			cp := *item
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *QueueItem) int {
		if d := severityRank(b.Severity) - severityRank(a.Severity); d != 0 {
			return d
		}
		if d := b.CreatedAt.Compare(a.CreatedAt); d != 0 {
			return d
		}
		// stable tiebreak for items created in the same instant
		return int(b.ID) - int(a.ID)
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*QueueItem{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemStore) ResolveItem(ctx context.Context, id uint, status string, action *ModAction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return false, nil
	}
	item.Status = status
	s.appendActionLocked(action)
	return true, nil
}

func (s *MemStore) AppendAction(ctx context.Context, action *ModAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendActionLocked(action)
	return nil
}

func (s *MemStore) appendActionLocked(action *ModAction) {
	action.ID = s.nextActionID
	s.nextActionID++
	if action.CreatedAt.IsZero() {
		action.CreatedAt = time.Now().UTC()
	}
	cp := *action
	s.actions = append(s.actions, &cp)
}

func (s *MemStore) ListActions(ctx context.Context, contentID string) ([]*ModAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ModAction, 0)
	for _, action := range s.actions {
		if action.ContentID == contentID {
			cp := *action
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *ModAction) int {
		if d := b.CreatedAt.Compare(a.CreatedAt); d != 0 {
			return d
		}
		return int(b.ID) - int(a.ID)
	})
	return out, nil
}

func (s *MemStore) CountItems(ctx context.Context, statuses ...string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(statuses) == 0 {
		return len(s.items), nil
	}
	count := 0
	for _, item := range s.items {
		if slices.Contains(statuses, item.Status) {
			count++
		}
	}
	return count, nil
}

func (s *MemStore) CleanupReviewed(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, item := range s.items {
		if item.Status == StatusReviewed && item.CreatedAt.Before(cutoff) {
			delete(s.items, id)
			removed++
		}
	}
	return removed, nil
}
