package town

import (
	"encoding/json"
	"fmt"
	"slices"
)

type AreaKind string

const (
	KindConversationArea AreaKind = "ConversationArea"
	KindViewingArea      AreaKind = "ViewingArea"
	KindSimonSaysArea    AreaKind = "SimonSaysArea"
)

// Area is an interactable region of the map. The set of implementations is
// closed: *ConversationArea, *ViewingArea and *SimonSaysArea.
//
// Areas are not safe for concurrent use; the owning Town serialises access.
type Area interface {
	ID() string
	Kind() AreaKind
	BoundingBox() BoundingBox
	OccupantsByID() []string
	IsActive() bool
	Contains(loc Location) bool
	Overlaps(other Area) bool

	// Add makes p an occupant without checking containment.
	Add(p *Player)
	// Remove drops p from the occupants. It is a no-op for non-occupants.
	Remove(p *Player)
	// AddPlayersWithinBounds adds every contained player not already inside.
	AddPlayersWithinBounds(players []*Player)

	Model() AreaModel
	// UpdateModel overwrites the mutable payload. Occupants and id are kept.
	UpdateModel(m AreaModel) error
}

// AreaModel is the wire snapshot of an area. Its concrete type is one of
// ConversationAreaModel, ViewingAreaModel or SimonSaysAreaModel.
type AreaModel interface {
	AreaID() string
	AreaKind() AreaKind
}

type ConversationAreaModel struct {
	Type          AreaKind `json:"type"`
	ID            string   `json:"id"`
	OccupantsByID []string `json:"occupantsByID"`
	Topic         string   `json:"topic,omitempty"`
}

func (m ConversationAreaModel) AreaID() string   { return m.ID }
func (ConversationAreaModel) AreaKind() AreaKind { return KindConversationArea }

type ViewingAreaModel struct {
	Type           AreaKind `json:"type"`
	ID             string   `json:"id"`
	OccupantsByID  []string `json:"occupantsByID"`
	Video          string   `json:"video,omitempty"`
	IsPlaying      bool     `json:"isPlaying"`
	ElapsedTimeSec float64  `json:"elapsedTimeSec"`
}

func (m ViewingAreaModel) AreaID() string   { return m.ID }
func (ViewingAreaModel) AreaKind() AreaKind { return KindViewingArea }

type SimonSaysAreaModel struct {
	Type          AreaKind           `json:"type"`
	ID            string             `json:"id"`
	OccupantsByID []string           `json:"occupantsByID"`
	Pattern       string             `json:"pattern,omitempty"`
	Round         int                `json:"round"`
	Leaderboard   []LeaderboardEntry `json:"leaderboard"`
}

func (m SimonSaysAreaModel) AreaID() string   { return m.ID }
func (SimonSaysAreaModel) AreaKind() AreaKind { return KindSimonSaysArea }

type LeaderboardEntry struct {
	PlayerID string           `json:"playerID"`
	Stats    LeaderboardStats `json:"stats"`
}

type LeaderboardStats struct {
	CurrentStreak int    `json:"currentStreak"`
	BestStreak    int    `json:"bestStreak"`
	LastPattern   string `json:"lastPattern"`
}

// DecodeAreaModel picks the concrete model type from the "type" field.
// Untagged payloads carrying "isPlaying" decode as viewing areas.
func DecodeAreaModel(data []byte) (AreaModel, error) {
	var shape struct {
		Type      AreaKind `json:"type"`
		IsPlaying *bool    `json:"isPlaying"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("decoding area model: %w", err)
	}
	if shape.Type == "" && shape.IsPlaying != nil {
		shape.Type = KindViewingArea
	}

	switch shape.Type {
	case KindConversationArea:
		var m ConversationAreaModel
		return decodeModel(data, &m)
	case KindViewingArea:
		m := ViewingAreaModel{Type: KindViewingArea}
		return decodeModel(data, &m)
	case KindSimonSaysArea:
		var m SimonSaysAreaModel
		return decodeModel(data, &m)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAreaKind, shape.Type)
	}
}

func decodeModel[M AreaModel](data []byte, m *M) (AreaModel, error) {
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decoding area model: %w", err)
	}
	return *m, nil
}

// occupancy is the bookkeeping every area variant shares.
type occupancy struct {
	id        string
	box       BoundingBox
	occupants []string
	emitter   Emitter
}

func (o *occupancy) ID() string               { return o.id }
func (o *occupancy) BoundingBox() BoundingBox { return o.box }

func (o *occupancy) OccupantsByID() []string {
	return append([]string{}, o.occupants...)
}

func (o *occupancy) Contains(loc Location) bool {
	return o.box.Contains(loc)
}

func (o *occupancy) Overlaps(other Area) bool {
	return o.box.Overlaps(other.BoundingBox())
}

func (o *occupancy) Add(p *Player) {
	if !slices.Contains(o.occupants, p.ID) {
		o.occupants = append(o.occupants, p.ID)
	}
	p.Location.InteractableID = o.id
	o.emitter.Emit(EventPlayerMoved, p.Model())
}

func (o *occupancy) AddPlayersWithinBounds(players []*Player) {
	for _, p := range players {
		if o.Contains(p.Location) && !slices.Contains(o.occupants, p.ID) {
			o.Add(p)
		}
	}
}

// remove reports whether p was an occupant.
func (o *occupancy) remove(p *Player) bool {
	i := slices.Index(o.occupants, p.ID)
	if i < 0 {
		return false
	}
	o.occupants = slices.Delete(o.occupants, i, i+1)
	p.Location.InteractableID = ""
	o.emitter.Emit(EventPlayerMoved, p.Model())
	return true
}

func (o *occupancy) empty() bool {
	return len(o.occupants) == 0
}

func newOccupancy(id string, box BoundingBox, occupants []string, emitter Emitter) occupancy {
	return occupancy{
		id:        id,
		box:       box,
		occupants: slices.Clone(occupants),
		emitter:   emitter,
	}
}

func boxFromMapObject(kind AreaKind, obj MapObject) (BoundingBox, error) {
	if obj.Width == 0 || obj.Height == 0 {
		return BoundingBox{}, fmt.Errorf("%w: %s %q has no width or height", ErrMalformedArea, kind, obj.Name)
	}
	return BoundingBox{X: obj.X, Y: obj.Y, Width: obj.Width, Height: obj.Height}, nil
}

func wrongKind(want AreaKind, got AreaModel) error {
	return fmt.Errorf("%w: %s area given %T", ErrWrongAreaKind, want, got)
}
