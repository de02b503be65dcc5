package townbot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/playperu/townsquare/internal/town"
)

// SocketURL turns a server base URL into the town socket endpoint.
func SocketURL(baseURL, townID, userName string) string {
	u := strings.TrimSuffix(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	q := url.Values{"townID": {townID}, "userName": {userName}}
	return u + "/ws?" + q.Encode()
}

// Bot is one scripted player doing a random walk.
type Bot struct {
	Name     string
	Steps    int
	Interval time.Duration
	StepSize float64
	Bounds   town.BoundingBox
	Rand     *rand.Rand // nil uses the package source
	Logger   *slog.Logger
}

// Stats counts the events a bot received, by name.
type Stats struct {
	Sent     int
	Received map[string]int
	UserID   string
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Run joins the town at socketURL, walks, then leaves. It returns early
// without error if the server closes the town.
func (b *Bot) Run(ctx context.Context, socketURL string) (Stats, error) {
	logger := b.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("bot", b.Name)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, socketURL, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("dialing %s: %w", socketURL, err)
	}
	defer conn.Close()

	initCh := make(chan town.InitialState, 1)
	done := make(chan map[string]int, 1)
	go readFrames(conn, logger, initCh, done)

	var init town.InitialState
	select {
	case init = <-initCh:
	case received := <-done:
		return Stats{Received: received}, fmt.Errorf("connection closed before initialize")
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
	logger.Debug("joined town", "user_id", init.UserID, "players", len(init.CurrentPlayers))

	loc := b.start()
	stats := Stats{UserID: init.UserID}

	interval := b.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

walk:
	for range b.Steps {
		select {
		case <-ctx.Done():
			break walk
		case received := <-done:
			stats.Received = received
			return stats, nil
		case <-ticker.C:
		}

		loc = b.step(loc)
		if err := conn.WriteJSON(frame{Event: town.EventPlayerMovement, Data: mustJSON(loc)}); err != nil {
			return stats, fmt.Errorf("sending movement: %w", err)
		}
		stats.Sent++
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		logger.Debug("sending close", "error", err)
	}
	select {
	case stats.Received = <-done:
	case <-time.After(2 * time.Second):
		logger.Debug("server did not acknowledge close")
	}
	return stats, nil
}

// readFrames counts inbound events until the connection ends.
func readFrames(conn *websocket.Conn, logger *slog.Logger, initCh chan<- town.InitialState, done chan<- map[string]int) {
	received := make(map[string]int)
	defer func() { done <- received }()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("websocket read ended", "error", err)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			continue
		}
		received[f.Event]++

		if f.Event == town.EventInitialize {
			var init town.InitialState
			if err := json.Unmarshal(f.Data, &init); err == nil {
				initCh <- init
			}
		}
	}
}

func (b *Bot) start() town.Location {
	return town.Location{
		X:        b.Bounds.X + b.float()*b.Bounds.Width,
		Y:        b.Bounds.Y + b.float()*b.Bounds.Height,
		Rotation: town.DirectionFront,
	}
}

// step moves one StepSize in a random direction, staying inside Bounds.
func (b *Bot) step(loc town.Location) town.Location {
	dirs := []town.Direction{town.DirectionFront, town.DirectionBack, town.DirectionLeft, town.DirectionRight}
	loc.Rotation = dirs[b.intN(len(dirs))]
	loc.Moving = true
	loc.InteractableID = ""

	switch loc.Rotation {
	case town.DirectionFront:
		loc.Y += b.StepSize
	case town.DirectionBack:
		loc.Y -= b.StepSize
	case town.DirectionLeft:
		loc.X -= b.StepSize
	case town.DirectionRight:
		loc.X += b.StepSize
	}
	loc.X = clamp(loc.X, b.Bounds.X, b.Bounds.X+b.Bounds.Width)
	loc.Y = clamp(loc.Y, b.Bounds.Y, b.Bounds.Y+b.Bounds.Height)
	return loc
}

func (b *Bot) float() float64 {
	if b.Rand != nil {
		return b.Rand.Float64()
	}
	return rand.Float64()
}

func (b *Bot) intN(n int) int {
	if b.Rand != nil {
		return b.Rand.IntN(n)
	}
	return rand.IntN(n)
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
