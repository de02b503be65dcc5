package town

import "encoding/json"

// Outbound events.
const (
	EventInitialize          = "initialize"
	EventPlayerJoined        = "playerJoined"
	EventPlayerMoved         = "playerMoved"
	EventPlayerDisconnect    = "playerDisconnect"
	EventInteractableUpdate  = "interactableUpdate"
	EventTownSettingsUpdated = "townSettingsUpdated"
	EventTownClosing         = "townClosing"
	EventChatMessage         = "chatMessage"
)

// Inbound events. EventChatMessage and EventInteractableUpdate flow both ways.
const (
	EventDisconnect     = "disconnect"
	EventPlayerMovement = "playerMovement"
	EventSimonSaysStart = "simonSaysStart"
	EventSimonSaysInput = "simonSaysInput"
)

// Emitter delivers an event to some audience. Emission is fire-and-forget.
type Emitter interface {
	Emit(event string, payload any)
}

// Socket is one client connection as seen by a Town.
type Socket interface {
	// Emit sends to this connection only.
	Emitter
	// On registers the handler for an inbound event, replacing any earlier one.
	On(event string, fn func(data json.RawMessage))
	// To returns an emitter reaching everyone in room except this connection.
	To(room string) Emitter
	// Disconnect closes the connection. It must not block, and it must not
	// call back into the Town synchronously.
	Disconnect()
}

// Broadcaster hands out the town-wide emitter for a room.
type Broadcaster interface {
	Room(townID string) Emitter
}

// TownSettingsUpdate carries only the fields that changed.
type TownSettingsUpdate struct {
	FriendlyName     *string `json:"friendlyName,omitempty"`
	IsPubliclyListed *bool   `json:"isPubliclyListed,omitempty"`
}

// InitialState is sent to a player right after they join.
type InitialState struct {
	UserID             string        `json:"userID"`
	SessionToken       string        `json:"sessionToken"`
	ProviderVideoToken string        `json:"providerVideoToken"`
	CurrentPlayers     []PlayerModel `json:"currentPlayers"`
	FriendlyName       string        `json:"friendlyName"`
	IsPubliclyListed   bool          `json:"isPubliclyListed"`
	Interactables      []AreaModel   `json:"interactables"`
}

type SimonSaysStartRequest struct {
	AreaID string `json:"areaID"`
}

type SimonSaysInputRequest struct {
	AreaID string `json:"areaID"`
	Input  string `json:"input"`
}
