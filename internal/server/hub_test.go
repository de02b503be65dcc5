package server

import (
	"log/slog"
	"testing"
)

func TestHubPublish(t *testing.T) {
	h := NewHub()
	logger := slog.New(slog.DiscardHandler)
	a := newConn(nil, h, logger)
	b := newConn(nil, h, logger)
	other := newConn(nil, h, logger)

	h.Join("town1", a)
	h.Join("town1", b)
	h.Join("town2", other)

	h.Room("town1").Emit("chatMessage", "hi")
	if len(a.send) != 1 || len(b.send) != 1 {
		t.Fatalf("queued = %d/%d, want 1/1", len(a.send), len(b.send))
	}
	if len(other.send) != 0 {
		t.Fatal("frame leaked into another room")
	}
	if got, want := string(<-a.send), `{"event":"chatMessage","data":"hi"}`; got != want {
		t.Fatalf("frame = %s, want %s", got, want)
	}
	<-b.send

	a.To("town1").Emit("playerMoved", nil)
	if len(a.send) != 0 || len(b.send) != 1 {
		t.Fatalf("queued = %d/%d, want 0/1", len(a.send), len(b.send))
	}
	if got, want := string(<-b.send), `{"event":"playerMoved"}`; got != want {
		t.Fatalf("frame = %s, want %s", got, want)
	}
}

func TestHubDisconnectsSlowConsumer(t *testing.T) {
	h := NewHub()
	c := newConn(nil, h, slog.New(slog.DiscardHandler))
	h.Join("town1", c)

	for range cap(c.send) {
		h.Publish("town1", []byte("x"))
	}
	select {
	case <-c.closing:
		t.Fatal("disconnected before the buffer overflowed")
	default:
	}

	for range 5 {
		h.Publish("town1", []byte("x"))
	}
	if len(c.send) != cap(c.send) {
		t.Fatalf("queued = %d, want %d", len(c.send), cap(c.send))
	}
	if !c.lagging.Load() {
		t.Fatal("overflowing connection not marked lagging")
	}
	select {
	case <-c.closing:
	default:
		t.Fatal("overflowing connection not disconnected")
	}
}

func TestHubLeave(t *testing.T) {
	h := NewHub()
	c := newConn(nil, h, slog.New(slog.DiscardHandler))
	h.Join("town1", c)
	if n := h.Size("town1"); n != 1 {
		t.Fatalf("size = %d, want 1", n)
	}

	h.Leave("town1", c)
	if n := h.Size("town1"); n != 0 {
		t.Fatalf("size = %d, want 0", n)
	}
	h.Publish("town1", []byte("x"))
	if len(c.send) != 0 {
		t.Fatal("departed connection still receives frames")
	}
}

func TestConnDisconnectIsIdempotent(t *testing.T) {
	c := newConn(nil, NewHub(), slog.New(slog.DiscardHandler))
	c.Disconnect()
	c.Disconnect()

	select {
	case <-c.closing:
	default:
		t.Fatal("closing not signalled")
	}
}
