package server

import (
	"encoding/json"
	"sync"

	"github.com/playperu/townsquare/internal/town"
)

// frame is the wire envelope for every WebSocket message in both directions.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

func encodeFrame(event string, payload any) []byte {
	data, err := json.Marshal(outboundFrame{Event: event, Data: payload})
	if err != nil {
		return nil
	}
	return data
}

// Hub is an in-process pub/sub for town events, keyed by town ID.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*conn]struct{}),
	}
}

// Join adds c to the room's subscribers.
func (h *Hub) Join(room string, c *conn) {
	h.mu.Lock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*conn]struct{})
	}
	h.rooms[room][c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Leave(room string, c *conn) {
	h.mu.Lock()
	delete(h.rooms[room], c)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
	h.mu.Unlock()
}

// Size reports how many connections are subscribed to room.
func (h *Hub) Size(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Publish sends data to every subscriber of the room.
func (h *Hub) Publish(room string, data []byte) {
	h.PublishExcept(room, nil, data)
}

// PublishExcept sends data to every subscriber of the room but sender.
func (h *Hub) PublishExcept(room string, sender *conn, data []byte) {
	if data == nil {
		return
	}
	h.mu.RLock()
	for c := range h.rooms[room] {
		if c == sender {
			continue
		}
		c.enqueue(data)
	}
	h.mu.RUnlock()
}

// Room returns an emitter reaching everyone in the town.
func (h *Hub) Room(townID string) town.Emitter {
	return roomEmitter{hub: h, room: townID}
}

type roomEmitter struct {
	hub    *Hub
	room   string
	except *conn
}

func (e roomEmitter) Emit(event string, payload any) {
	e.hub.PublishExcept(e.room, e.except, encodeFrame(event, payload))
}
