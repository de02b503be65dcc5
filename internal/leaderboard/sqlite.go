package leaderboard

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/playperu/townsquare/internal/town"
)

// SQLStore keeps entries in the leaderboard_entries table.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Load(ctx context.Context, areaID string) ([]town.LeaderboardEntry, error) {
	return s.query(ctx, `
		SELECT player_id, current_streak, best_streak, last_pattern
		FROM leaderboard_entries
		WHERE area_id = ?
		ORDER BY rowid
	`, areaID)
}

func (s *SQLStore) Top(ctx context.Context, areaID string, n int) ([]town.LeaderboardEntry, error) {
	if n <= 0 {
		n = -1
	}
	return s.query(ctx, `
		SELECT player_id, current_streak, best_streak, last_pattern
		FROM leaderboard_entries
		WHERE area_id = ?
		ORDER BY best_streak DESC, current_streak DESC, player_id
		LIMIT ?
	`, areaID, n)
}

func (s *SQLStore) Save(ctx context.Context, areaID string, e town.LeaderboardEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leaderboard_entries (area_id, player_id, current_streak, best_streak, last_pattern)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (area_id, player_id) DO UPDATE SET
			current_streak = excluded.current_streak,
			best_streak    = excluded.best_streak,
			last_pattern   = excluded.last_pattern,
			updated_at     = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`, areaID, e.PlayerID, e.Stats.CurrentStreak, e.Stats.BestStreak, e.Stats.LastPattern)
	if err != nil {
		return fmt.Errorf("saving leaderboard entry: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) query(ctx context.Context, q string, args ...any) ([]town.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []town.LeaderboardEntry{}
	for rows.Next() {
		var e town.LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.Stats.CurrentStreak, &e.Stats.BestStreak, &e.Stats.LastPattern); err != nil {
			return nil, fmt.Errorf("scanning leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
