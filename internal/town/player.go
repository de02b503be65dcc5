package town

import "github.com/google/uuid"

type Direction string

const (
	DirectionFront Direction = "front"
	DirectionBack  Direction = "back"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Location is where a player stands. InteractableID is empty when the
// player is not inside any interactable area.
type Location struct {
	X              float64   `json:"x"`
	Y              float64   `json:"y"`
	Rotation       Direction `json:"rotation"`
	Moving         bool      `json:"moving"`
	InteractableID string    `json:"interactableID,omitempty"`
}

// Player is one connection's presence in a town. Only the owning Town and
// its areas write Location.
type Player struct {
	ID           string
	UserName     string
	Location     Location
	SessionToken string
	VideoToken   string

	// TownEmitter reaches everyone in the town except this player.
	TownEmitter Emitter
}

// PlayerModel is the wire representation of a player.
type PlayerModel struct {
	ID       string   `json:"id"`
	UserName string   `json:"userName"`
	Location Location `json:"location"`
}

func NewPlayer(userName string, townEmitter Emitter) *Player {
	return &Player{
		ID:           uuid.NewString(),
		UserName:     userName,
		Location:     Location{Rotation: DirectionFront},
		SessionToken: uuid.NewString(),
		TownEmitter:  townEmitter,
	}
}

func (p *Player) Model() PlayerModel {
	return PlayerModel{
		ID:       p.ID,
		UserName: p.UserName,
		Location: p.Location,
	}
}
