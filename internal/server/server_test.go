package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/playperu/townsquare/internal/handler/health"
	"github.com/playperu/townsquare/internal/leaderboard"
	"github.com/playperu/townsquare/internal/maps"
	"github.com/playperu/townsquare/internal/town"
	"github.com/playperu/townsquare/internal/video"
)

const testMap = `{
  "width": 50, "height": 50, "tilewidth": 32, "tileheight": 32,
  "layers": [
    {"id": 1, "name": "Ground", "type": "tilelayer"},
    {"id": 2, "name": "Objects", "type": "objectgroup", "objects": [
      {"id": 1, "name": "Lounge", "type": "ConversationArea", "x": 100, "y": 100, "width": 200, "height": 200},
      {"id": 2, "name": "Cinema", "type": "ViewingArea", "x": 500, "y": 100, "width": 200, "height": 200},
      {"id": 3, "name": "Simon", "type": "SimonSaysArea", "x": 100, "y": 500, "width": 200, "height": 200}
    ]}
  ]
}`

const overlappingMap = `{
  "layers": [
    {"id": 1, "name": "Objects", "type": "objectgroup", "objects": [
      {"id": 1, "name": "A", "type": "ConversationArea", "x": 0, "y": 0, "width": 100, "height": 100},
      {"id": 2, "name": "B", "type": "ConversationArea", "x": 50, "y": 50, "width": 100, "height": 100}
    ]}
  ]
}`

type testEnv struct {
	registry *town.Registry
	hub      *Hub
	store    *leaderboard.MemoryStore
	handler  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	loader := maps.NewLoaderFS(fstest.MapFS{
		"indoors.json":     {Data: []byte(testMap)},
		"overlapping.json": {Data: []byte(overlappingMap)},
	})
	hub := NewHub()
	store := leaderboard.NewMemoryStore()
	registry := town.NewRegistry(hub, loader, town.Services{
		Video:       video.DevProvider{},
		Leaderboard: store,
		Logger:      logger,
	})
	t.Cleanup(registry.Close)

	return &testEnv{
		registry: registry,
		hub:      hub,
		store:    store,
		handler: newRouter(logger, Deps{
			Registry:    registry,
			Hub:         hub,
			Leaderboard: store,
			Checks:      map[string]health.Checker{},
			DefaultMap:  "indoors",
		}),
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createTown(t *testing.T, name string, public bool) town.TownCredentials {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/towns", TownCreateRequest{FriendlyName: name, IsPubliclyListed: public}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("create town status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	var creds town.TownCredentials
	if err := json.NewDecoder(rec.Body).Decode(&creds); err != nil {
		t.Fatalf("decoding credentials: %v", err)
	}
	return creds
}

// join adds a player to the town without a network connection.
func (e *testEnv) join(t *testing.T, townID, userName string) *town.Player {
	t.Helper()
	tw, ok := e.registry.Town(townID)
	if !ok {
		t.Fatalf("town %s not found", townID)
	}
	p, err := tw.AddPlayer(context.Background(), userName, nopSocket{userName})
	if err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	return p
}

// nopSocket discards everything. Sockets are map keys in a town, so each
// one carries the owning player's name to stay distinct.
type nopSocket struct{ name string }

func (nopSocket) Emit(string, any)                 {}
func (nopSocket) On(string, func(json.RawMessage)) {}
func (s nopSocket) To(string) town.Emitter         { return s }
func (nopSocket) Disconnect()                      {}
