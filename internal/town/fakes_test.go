package town

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

type emission struct {
	event   string
	payload any
}

// recorder is an Emitter that keeps everything emitted through it.
type recorder struct {
	mu     sync.Mutex
	events []emission
}

func (r *recorder) Emit(event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emission{event, payload})
}

func (r *recorder) all(event string) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []any
	for _, e := range r.events {
		if e.event == event {
			out = append(out, e.payload)
		}
	}
	return out
}

func (r *recorder) last(t *testing.T, event string) any {
	t.Helper()
	got := r.all(event)
	if len(got) == 0 {
		t.Fatalf("no %q event emitted", event)
	}
	return got[len(got)-1]
}

func (r *recorder) count(event string) int {
	return len(r.all(event))
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type fakeSocket struct {
	recorder
	others recorder
	room   string

	mu           sync.Mutex
	handlers     map[string]func(json.RawMessage)
	disconnected bool
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{handlers: make(map[string]func(json.RawMessage))}
}

func (s *fakeSocket) On(event string, fn func(json.RawMessage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[event] = fn
}

func (s *fakeSocket) To(room string) Emitter {
	s.room = room
	return &s.others
}

func (s *fakeSocket) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnected = true
}

// fire delivers an inbound event as the transport would.
func (s *fakeSocket) fire(t *testing.T, event string, payload any) {
	t.Helper()
	data, ok := payload.(json.RawMessage)
	if !ok {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal %s payload: %v", event, err)
		}
	}
	s.mu.Lock()
	fn := s.handlers[event]
	s.mu.Unlock()
	if fn == nil {
		t.Fatalf("no handler registered for %q", event)
	}
	fn(data)
}

type fakeVideo struct {
	err    error
	during func()
}

func (v *fakeVideo) TokenForTown(_ context.Context, townID, playerID string) (string, error) {
	if v.during != nil {
		v.during()
	}
	if v.err != nil {
		return "", v.err
	}
	return "video-" + townID + "-" + playerID, nil
}

type fakeLeaderboard struct {
	mu      sync.Mutex
	entries map[string][]LeaderboardEntry
	saves   int
}

func newFakeLeaderboard() *fakeLeaderboard {
	return &fakeLeaderboard{entries: make(map[string][]LeaderboardEntry)}
}

func (f *fakeLeaderboard) Load(_ context.Context, areaID string) ([]LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[areaID], nil
}

func (f *fakeLeaderboard) Save(_ context.Context, areaID string, entry LeaderboardEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	for i, e := range f.entries[areaID] {
		if e.PlayerID == entry.PlayerID {
			f.entries[areaID][i] = entry
			return nil
		}
	}
	f.entries[areaID] = append(f.entries[areaID], entry)
	return nil
}

type fakeBroadcaster struct {
	mu    sync.Mutex
	rooms map[string]*recorder
}

func (b *fakeBroadcaster) Room(townID string) Emitter {
	return b.room(townID)
}

func (b *fakeBroadcaster) room(townID string) *recorder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rooms == nil {
		b.rooms = make(map[string]*recorder)
	}
	r, ok := b.rooms[townID]
	if !ok {
		r = &recorder{}
		b.rooms[townID] = r
	}
	return r
}

type fakeMaps map[string]*Map

func (f fakeMaps) Load(name string) (*Map, error) {
	m, ok := f[name]
	if !ok {
		return nil, errors.New("no such map")
	}
	return m, nil
}

func areaObject(kind AreaKind, name string, x, y, w, h float64) MapObject {
	return MapObject{Name: name, Type: string(kind), X: x, Y: y, Width: w, Height: h}
}

func objectsMap(objects ...MapObject) *Map {
	return &Map{
		Layers: []MapLayer{
			{Name: "Ground", Type: "tilelayer"},
			{Name: ObjectLayerName, Type: "objectgroup", Objects: objects},
		},
	}
}

// Map fixtures.
var (
	twoConv = objectsMap(
		areaObject(KindConversationArea, "Name1", 40, 120, 326, 237),
		areaObject(KindConversationArea, "Name2", 612, 120, 467, 266),
	)
	twoConvOneViewing = objectsMap(
		areaObject(KindConversationArea, "Name1", 40, 120, 326, 237),
		areaObject(KindConversationArea, "Name2", 612, 120, 467, 266),
		areaObject(KindViewingArea, "Name3", 155, 566, 326, 237),
	)
	twoConvTwoViewing = objectsMap(
		areaObject(KindConversationArea, "Name1", 40, 120, 326, 237),
		areaObject(KindConversationArea, "Name2", 612, 120, 467, 266),
		areaObject(KindViewingArea, "Name3", 155, 566, 326, 237),
		areaObject(KindViewingArea, "Name4", 600, 1200, 326, 237),
	)
	overlapping = objectsMap(
		areaObject(KindConversationArea, "Name1", 40, 120, 326, 237),
		areaObject(KindConversationArea, "Name2", 40, 120, 467, 266),
	)
	duplicateNames = objectsMap(
		areaObject(KindConversationArea, "Name1", 40, 120, 326, 237),
		areaObject(KindConversationArea, "Name1", 612, 120, 467, 266),
	)
	withSimonSays = objectsMap(
		areaObject(KindConversationArea, "Name1", 40, 120, 326, 237),
		areaObject(KindSimonSaysArea, "Simon", 1200, 1200, 200, 200),
	)
	noObjects = &Map{}
)
