// Package leaderboard stores Simon Says results by area.
package leaderboard

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/playperu/townsquare/internal/town"
)

// Store persists leaderboard entries. Save is an upsert keyed by player.
type Store interface {
	Load(ctx context.Context, areaID string) ([]town.LeaderboardEntry, error)
	Save(ctx context.Context, areaID string, entry town.LeaderboardEntry) error
	Top(ctx context.Context, areaID string, n int) ([]town.LeaderboardEntry, error)
}

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]town.LeaderboardEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]town.LeaderboardEntry)}
}

func (s *MemoryStore) Load(_ context.Context, areaID string) ([]town.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries[areaID]), nil
}

func (s *MemoryStore) Save(_ context.Context, areaID string, entry town.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.entries[areaID]
	i := slices.IndexFunc(entries, func(e town.LeaderboardEntry) bool { return e.PlayerID == entry.PlayerID })
	if i < 0 {
		s.entries[areaID] = append(entries, entry)
		return nil
	}
	entries[i] = entry
	return nil
}

func (s *MemoryStore) Top(ctx context.Context, areaID string, n int) ([]town.LeaderboardEntry, error) {
	entries, err := s.Load(ctx, areaID)
	if err != nil {
		return nil, err
	}
	rank(entries)
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// rank orders by best streak, then current streak, then player id.
func rank(entries []town.LeaderboardEntry) {
	slices.SortStableFunc(entries, func(a, b town.LeaderboardEntry) int {
		if c := cmp.Compare(b.Stats.BestStreak, a.Stats.BestStreak); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Stats.CurrentStreak, a.Stats.CurrentStreak); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})
}
