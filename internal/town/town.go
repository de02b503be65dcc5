// Package town is the authoritative in-memory model of a running town: its
// players, its interactable areas and the events that keep clients in sync.
package town

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCapacity is the number of players a town admits.
const DefaultCapacity = 50

// TokenProvider issues the credential a client uses to join the town's video room.
type TokenProvider interface {
	TokenForTown(ctx context.Context, townID, playerID string) (string, error)
}

// LeaderboardStore keeps Simon Says results across towns.
type LeaderboardStore interface {
	Load(ctx context.Context, areaID string) ([]LeaderboardEntry, error)
	Save(ctx context.Context, areaID string, entry LeaderboardEntry) error
}

// Services are the collaborators a Town calls out to.
type Services struct {
	Video       TokenProvider
	Leaderboard LeaderboardStore // optional
	Logger      *slog.Logger     // optional
}

// Town is one isolated session. All exported methods are safe for concurrent
// use; mutation is serialised by mu and areas are only touched under it.
type Town struct {
	townID       string
	passwordHash []byte
	capacity     int
	emitter      Emitter
	video        TokenProvider
	leaderboard  LeaderboardStore
	logger       *slog.Logger

	mu               sync.Mutex
	friendlyName     string
	isPubliclyListed bool
	players          []*Player
	areas            []Area
	sockets          map[Socket]struct{}
}

// NewTown creates an empty town. emitter reaches every connection in the town.
func NewTown(townID, friendlyName string, isPubliclyListed bool, passwordHash []byte, emitter Emitter, svc Services) *Town {
	logger := svc.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Town{
		townID:           townID,
		passwordHash:     passwordHash,
		capacity:         DefaultCapacity,
		emitter:          emitter,
		video:            svc.Video,
		leaderboard:      svc.Leaderboard,
		logger:           logger.With("town_id", townID),
		friendlyName:     friendlyName,
		isPubliclyListed: isPubliclyListed,
		sockets:          make(map[Socket]struct{}),
	}
}

func (t *Town) TownID() string { return t.townID }
func (t *Town) Capacity() int  { return t.capacity }

func (t *Town) FriendlyName() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.friendlyName
}

func (t *Town) IsPubliclyListed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isPubliclyListed
}

func (t *Town) Occupancy() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.players)
}

func (t *Town) Players() []*Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.players)
}

func (t *Town) Interactables() []Area {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.areas)
}

// CheckPassword reports whether password unlocks administrative changes.
func (t *Town) CheckPassword(password string) bool {
	if password == "" || len(t.passwordHash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(t.passwordHash, []byte(password)) == nil
}

func (t *Town) SetFriendlyName(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.friendlyName = name
	t.emitter.Emit(EventTownSettingsUpdated, TownSettingsUpdate{FriendlyName: &name})
}

func (t *Town) SetPubliclyListed(listed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.isPubliclyListed = listed
	t.emitter.Emit(EventTownSettingsUpdated, TownSettingsUpdate{IsPubliclyListed: &listed})
}

// AddPlayer admits a new player on sock and wires its inbound events.
//
// The player is linked into the town before the video credential is
// requested, and the lock is released for the duration of that request. If
// the request fails the player is unlinked again and nothing is broadcast.
func (t *Town) AddPlayer(ctx context.Context, userName string, sock Socket) (*Player, error) {
	t.mu.Lock()
	if len(t.players) >= t.capacity {
		t.mu.Unlock()
		return nil, ErrTownFull
	}
	p := NewPlayer(userName, sock.To(t.townID))
	t.players = append(t.players, p)
	t.sockets[sock] = struct{}{}
	t.mu.Unlock()

	token, err := t.video.TokenForTown(ctx, t.townID, p.ID)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		if a := t.areaLocked(p.Location.InteractableID); a != nil {
			a.Remove(p)
		}
		t.players = slices.DeleteFunc(t.players, func(q *Player) bool { return q == p })
		delete(t.sockets, sock)
		return nil, fmt.Errorf("requesting video token: %w", err)
	}

	p.VideoToken = token
	t.emitter.Emit(EventPlayerJoined, p.Model())
	t.registerHandlers(p, sock)

	t.logger.Info("player joined", "player_id", p.ID, "user_name", userName)
	return p, nil
}

func (t *Town) registerHandlers(p *Player, sock Socket) {
	sock.On(EventDisconnect, func(json.RawMessage) {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.sockets, sock)
		if slices.Contains(t.players, p) {
			t.removePlayerLocked(p)
		}
	})

	sock.On(EventChatMessage, func(data json.RawMessage) {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.emitter.Emit(EventChatMessage, data)
	})

	sock.On(EventPlayerMovement, func(data json.RawMessage) {
		var loc Location
		if err := json.Unmarshal(data, &loc); err != nil {
			t.logger.Debug("bad movement payload", "player_id", p.ID, "error", err)
			return
		}
		t.UpdatePlayerLocation(p, loc)
	})

	sock.On(EventInteractableUpdate, func(data json.RawMessage) {
		t.handleInteractableUpdate(p, data)
	})

	sock.On(EventSimonSaysStart, func(data json.RawMessage) {
		var req SimonSaysStartRequest
		if err := json.Unmarshal(data, &req); err != nil {
			t.logger.Debug("bad simon says start payload", "player_id", p.ID, "error", err)
			return
		}
		if err := t.StartSimonSays(p, req.AreaID); err != nil {
			t.logger.Debug("simon says start rejected", "player_id", p.ID, "area_id", req.AreaID, "error", err)
		}
	})

	sock.On(EventSimonSaysInput, func(data json.RawMessage) {
		var req SimonSaysInputRequest
		if err := json.Unmarshal(data, &req); err != nil {
			t.logger.Debug("bad simon says input payload", "player_id", p.ID, "error", err)
			return
		}
		if err := t.SubmitSimonSays(context.Background(), p, req.AreaID, req.Input); err != nil {
			t.logger.Debug("simon says input rejected", "player_id", p.ID, "area_id", req.AreaID, "error", err)
		}
	})
}

// handleInteractableUpdate applies a client's change to a viewing area.
// The payload goes to the other players exactly as sent, before the area
// itself is updated.
func (t *Town) handleInteractableUpdate(p *Player, data json.RawMessage) {
	model, err := DecodeAreaModel(data)
	if err != nil {
		t.logger.Debug("bad interactable update", "player_id", p.ID, "error", err)
		return
	}
	vm, ok := model.(ViewingAreaModel)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	p.TownEmitter.Emit(EventInteractableUpdate, data)
	if a := t.areaLocked(vm.ID); a != nil {
		if err := a.UpdateModel(vm); err != nil {
			t.logger.Debug("interactable update rejected", "area_id", vm.ID, "error", err)
		}
	}
}

// RemovePlayer takes p out of its area and the town.
func (t *Town) RemovePlayer(p *Player) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removePlayerLocked(p)
}

func (t *Town) removePlayerLocked(p *Player) {
	if a := t.areaLocked(p.Location.InteractableID); a != nil {
		a.Remove(p)
	}
	t.players = slices.DeleteFunc(t.players, func(q *Player) bool { return q.ID == p.ID })
	t.emitter.Emit(EventPlayerDisconnect, p.Model())
	t.logger.Info("player left", "player_id", p.ID)
}

// UpdatePlayerLocation moves p to loc, entering or leaving areas as needed.
func (t *Town) UpdatePlayerLocation(p *Player, loc Location) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.updatePlayerLocationLocked(p, loc)
}

func (t *Town) updatePlayerLocationLocked(p *Player, loc Location) {
	prev := t.areaLocked(p.Location.InteractableID)
	if prev != nil && prev.Contains(loc) {
		loc.InteractableID = prev.ID()
	} else {
		if prev != nil {
			prev.Remove(p)
		}
		loc.InteractableID = ""
		for _, a := range t.areas {
			if a.IsActive() && a.Contains(loc) {
				a.Add(p)
				loc.InteractableID = a.ID()
				break
			}
		}
	}

	p.Location = loc
	t.emitter.Emit(EventPlayerMoved, p.Model())
}

// AddConversationArea sets the topic of an idle conversation area and pulls
// in players already standing inside. It returns false, changing nothing,
// when the area is unknown, the topic is empty, or a topic is already set.
func (t *Town) AddConversationArea(m ConversationAreaModel) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.areaLocked(m.ID).(*ConversationArea)
	if !ok || m.Topic == "" || a.topic != "" {
		return false
	}
	a.topic = m.Topic
	a.AddPlayersWithinBounds(t.players)
	t.emitter.Emit(EventInteractableUpdate, a.Model())
	return true
}

// AddViewingArea is AddConversationArea for viewing areas, keyed on the video.
func (t *Town) AddViewingArea(m ViewingAreaModel) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.areaLocked(m.ID).(*ViewingArea)
	if !ok || m.Video == "" || a.video != "" {
		return false
	}
	if err := a.UpdateModel(m); err != nil {
		return false
	}
	a.AddPlayersWithinBounds(t.players)
	t.emitter.Emit(EventInteractableUpdate, a.Model())
	return true
}

// StartSimonSays begins a new game in areaID on behalf of one of its occupants.
func (t *Town) StartSimonSays(p *Player, areaID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, err := t.simonSaysLocked(p, areaID)
	if err != nil {
		return err
	}
	a.Start()
	return nil
}

// SubmitSimonSays scores p's attempt and writes the result to the leaderboard store.
func (t *Town) SubmitSimonSays(ctx context.Context, p *Player, areaID, input string) error {
	t.mu.Lock()
	a, err := t.simonSaysLocked(p, areaID)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	entry, correct, err := a.Submit(p.ID, input)
	t.mu.Unlock()
	if err != nil {
		return err
	}

	t.logger.Debug("simon says attempt", "player_id", p.ID, "area_id", areaID, "correct", correct)
	if t.leaderboard == nil {
		return nil
	}
	if err := t.leaderboard.Save(ctx, areaID, entry); err != nil {
		return fmt.Errorf("saving leaderboard entry: %w", err)
	}
	return nil
}

func (t *Town) simonSaysLocked(p *Player, areaID string) (*SimonSaysArea, error) {
	a, ok := t.areaLocked(areaID).(*SimonSaysArea)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInteractableNotFound, areaID)
	}
	if !slices.Contains(a.occupants, p.ID) {
		return nil, ErrNotOccupant
	}
	return a, nil
}

// LoadLeaderboards fills every Simon Says area with its stored board.
func (t *Town) LoadLeaderboards(ctx context.Context) error {
	if t.leaderboard == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, a := range t.areas {
		ss, ok := a.(*SimonSaysArea)
		if !ok {
			continue
		}
		entries, err := t.leaderboard.Load(ctx, ss.ID())
		if err != nil {
			return fmt.Errorf("loading leaderboard for %q: %w", ss.ID(), err)
		}
		ss.SetLeaderboard(entries)
	}
	return nil
}

func (t *Town) PlayerBySessionToken(token string) (*Player, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.players {
		if p.SessionToken == token {
			return p, true
		}
	}
	return nil, false
}

func (t *Town) Interactable(id string) (Area, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if a := t.areaLocked(id); a != nil {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInteractableNotFound, id)
}

// InteractableModel snapshots one area under the town lock.
func (t *Town) InteractableModel(id string) (AreaModel, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if a := t.areaLocked(id); a != nil {
		return a.Model(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInteractableNotFound, id)
}

func (t *Town) areaLocked(id string) Area {
	if id == "" {
		return nil
	}
	for _, a := range t.areas {
		if a.ID() == id {
			return a
		}
	}
	return nil
}

// InitialState is the snapshot sent to p after joining.
func (t *Town) InitialState(p *Player) InitialState {
	t.mu.Lock()
	defer t.mu.Unlock()

	players := make([]PlayerModel, 0, len(t.players))
	for _, q := range t.players {
		players = append(players, q.Model())
	}
	areas := make([]AreaModel, 0, len(t.areas))
	for _, a := range t.areas {
		areas = append(areas, a.Model())
	}
	return InitialState{
		UserID:             p.ID,
		SessionToken:       p.SessionToken,
		ProviderVideoToken: p.VideoToken,
		CurrentPlayers:     players,
		FriendlyName:       t.friendlyName,
		IsPubliclyListed:   t.isPubliclyListed,
		Interactables:      areas,
	}
}

// DisconnectAllPlayers tells everyone the town is closing, then hangs up.
func (t *Town) DisconnectAllPlayers() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emitter.Emit(EventTownClosing, nil)
	for s := range t.sockets {
		s.Disconnect()
	}
}

// InitializeFromMap builds the town's areas from the map's object layer.
func (t *Town) InitializeFromMap(m *Map) error {
	layer, ok := m.objectLayer()
	if !ok {
		return ErrMissingObjectLayer
	}

	areas := make([]Area, 0, len(layer.Objects))
	for _, obj := range layer.Objects {
		a, err := t.areaFromMapObject(obj)
		if err != nil {
			return err
		}
		if a != nil {
			areas = append(areas, a)
		}
	}

	if err := validateAreas(areas); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.areas = append(t.areas, areas...)
	return nil
}

// areaFromMapObject returns nil for objects that are not areas, such as
// spawn points.
func (t *Town) areaFromMapObject(obj MapObject) (Area, error) {
	switch obj.kind() {
	case KindConversationArea:
		return ConversationAreaFromMapObject(obj, t.emitter)
	case KindViewingArea:
		return ViewingAreaFromMapObject(obj, t.emitter)
	case KindSimonSaysArea:
		return SimonSaysAreaFromMapObject(obj, t.emitter)
	default:
		return nil, nil
	}
}

func validateAreas(areas []Area) error {
	var errs []error
	seen := make(map[string]struct{}, len(areas))
	for _, a := range areas {
		if _, dup := seen[a.ID()]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateAreaID, a.ID()))
		}
		seen[a.ID()] = struct{}{}
	}
	for i, a := range areas {
		for _, b := range areas[i+1:] {
			if a.Overlaps(b) {
				errs = append(errs, fmt.Errorf("%w: %q and %q", ErrOverlappingAreas, a.ID(), b.ID()))
			}
		}
	}
	return errors.Join(errs...)
}
