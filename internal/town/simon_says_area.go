package town

import (
	"math/rand/v2"
	"slices"
	"strings"
)

const simonSaysSymbols = "WASD"

// SimonSaysArea hosts a memory game. Occupants take turns repeating a
// growing pattern of W, A, S and D; every cleared round adds one symbol.
//
// The area has no activation payload, so it is always active.
type SimonSaysArea struct {
	occupancy
	pattern     string
	round       int
	leaderboard []LeaderboardEntry

	// rng is nil in production; tests set it for repeatable patterns.
	rng *rand.Rand
}

func NewSimonSaysArea(model SimonSaysAreaModel, box BoundingBox, emitter Emitter) *SimonSaysArea {
	return &SimonSaysArea{
		occupancy:   newOccupancy(model.ID, box, model.OccupantsByID, emitter),
		pattern:     model.Pattern,
		round:       model.Round,
		leaderboard: slices.Clone(model.Leaderboard),
	}
}

func SimonSaysAreaFromMapObject(obj MapObject, emitter Emitter) (*SimonSaysArea, error) {
	box, err := boxFromMapObject(KindSimonSaysArea, obj)
	if err != nil {
		return nil, err
	}
	return NewSimonSaysArea(SimonSaysAreaModel{ID: obj.Name}, box, emitter), nil
}

func (a *SimonSaysArea) Kind() AreaKind  { return KindSimonSaysArea }
func (a *SimonSaysArea) Pattern() string { return a.pattern }
func (a *SimonSaysArea) Round() int      { return a.round }
func (a *SimonSaysArea) IsActive() bool  { return true }

func (a *SimonSaysArea) Leaderboard() []LeaderboardEntry {
	return append([]LeaderboardEntry{}, a.leaderboard...)
}

// SetLeaderboard replaces the board, e.g. with one loaded from storage.
func (a *SimonSaysArea) SetLeaderboard(entries []LeaderboardEntry) {
	a.leaderboard = slices.Clone(entries)
}

// GeneratePattern appends n random symbols and returns the whole pattern.
func (a *SimonSaysArea) GeneratePattern(n int) string {
	var b strings.Builder
	b.WriteString(a.pattern)
	for range n {
		b.WriteByte(simonSaysSymbols[a.intN(len(simonSaysSymbols))])
	}
	a.pattern = b.String()
	return a.pattern
}

// UpdateLeaderboard records streak for playerID and returns the stored entry.
func (a *SimonSaysArea) UpdateLeaderboard(playerID string, streak int) LeaderboardEntry {
	for i := range a.leaderboard {
		e := &a.leaderboard[i]
		if e.PlayerID != playerID {
			continue
		}
		e.Stats.CurrentStreak = streak
		e.Stats.BestStreak = max(e.Stats.BestStreak, streak)
		e.Stats.LastPattern = a.pattern
		return *e
	}

	e := LeaderboardEntry{
		PlayerID: playerID,
		Stats: LeaderboardStats{
			CurrentStreak: streak,
			BestStreak:    streak,
			LastPattern:   a.pattern,
		},
	}
	a.leaderboard = append(a.leaderboard, e)
	return e
}

func (a *SimonSaysArea) AdvanceRound() {
	a.round++
}

// Start begins a fresh game at round 1 with a single symbol to repeat.
func (a *SimonSaysArea) Start() {
	a.pattern = ""
	a.round = 1
	a.GeneratePattern(1)
	a.emitter.Emit(EventInteractableUpdate, a.Model())
}

// Submit scores one attempt at the current pattern. A correct answer extends
// the pattern for the next round; a wrong one ends the game. Either way the
// player's streak is recorded and the returned entry reflects it.
func (a *SimonSaysArea) Submit(playerID, input string) (LeaderboardEntry, bool, error) {
	if a.pattern == "" {
		return LeaderboardEntry{}, false, ErrNoGameInProgress
	}

	correct := strings.ToUpper(strings.TrimSpace(input)) == a.pattern
	var entry LeaderboardEntry
	if correct {
		entry = a.UpdateLeaderboard(playerID, a.round)
		a.AdvanceRound()
		a.GeneratePattern(1)
	} else {
		entry = a.UpdateLeaderboard(playerID, a.round-1)
		a.pattern = ""
		a.round = 0
	}
	a.emitter.Emit(EventInteractableUpdate, a.Model())
	return entry, correct, nil
}

// Remove abandons the game in progress once the last player walks out.
func (a *SimonSaysArea) Remove(p *Player) {
	if !a.remove(p) || !a.empty() {
		return
	}
	a.pattern = ""
	a.round = 0
	a.emitter.Emit(EventInteractableUpdate, a.Model())
}

func (a *SimonSaysArea) Model() AreaModel {
	return SimonSaysAreaModel{
		Type:          KindSimonSaysArea,
		ID:            a.id,
		OccupantsByID: a.OccupantsByID(),
		Pattern:       a.pattern,
		Round:         a.round,
		Leaderboard:   a.Leaderboard(),
	}
}

// UpdateModel takes pattern and round. The leaderboard is only written
// through play.
func (a *SimonSaysArea) UpdateModel(m AreaModel) error {
	sm, ok := m.(SimonSaysAreaModel)
	if !ok {
		return wrongKind(KindSimonSaysArea, m)
	}
	a.pattern = sm.Pattern
	a.round = sm.Round
	return nil
}

func (a *SimonSaysArea) intN(n int) int {
	if a.rng != nil {
		return a.rng.IntN(n)
	}
	return rand.IntN(n)
}
