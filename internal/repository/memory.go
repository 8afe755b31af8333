package repository

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Memory keeps scores for the life of the process.
type Memory struct {
	mu     sync.RWMutex
	scores []Score
	nextID int64
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{nextID: 1, now: time.Now}
}

func (m *Memory) Insert(ctx context.Context, s Score) (int64, error) {
	if s.Name == "" || s.Size == "" {
		return 0, ErrInvalidScore
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.nextID
	s.CreatedAt = m.now().UTC()
	m.nextID++
	m.scores = append(m.scores, s)
	return s.ID, nil
}

func (m *Memory) Top(ctx context.Context, f ScoreFilter) ([]Score, error) {
	m.mu.RLock()
	matched := make([]Score, 0, len(m.scores))
	for _, s := range m.scores {
		if f.Size == "" || s.Size == f.Size {
			matched = append(matched, s)
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(matched, compareTop)
	return truncate(matched, ClampLimit(f.Limit)), nil
}

func (m *Memory) Recent(ctx context.Context, limit int) ([]Score, error) {
	m.mu.RLock()
	all := slices.Clone(m.scores)
	m.mu.RUnlock()

	slices.SortFunc(all, compareRecent)
	return truncate(all, clampRecent(limit)), nil
}

func truncate(scores []Score, limit int) []Score {
	if len(scores) > limit {
		scores = scores[:limit]
	}
	if scores == nil {
		scores = make([]Score, 0)
	}
	return scores
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
