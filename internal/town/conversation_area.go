package town

// ConversationArea is a chat zone. It is active while anyone is inside, and
// its topic lasts until the last occupant leaves.
type ConversationArea struct {
	occupancy
	topic string
}

func NewConversationArea(model ConversationAreaModel, box BoundingBox, emitter Emitter) *ConversationArea {
	return &ConversationArea{
		occupancy: newOccupancy(model.ID, box, model.OccupantsByID, emitter),
		topic:     model.Topic,
	}
}

func ConversationAreaFromMapObject(obj MapObject, emitter Emitter) (*ConversationArea, error) {
	box, err := boxFromMapObject(KindConversationArea, obj)
	if err != nil {
		return nil, err
	}
	return NewConversationArea(ConversationAreaModel{ID: obj.Name}, box, emitter), nil
}

func (a *ConversationArea) Kind() AreaKind { return KindConversationArea }
func (a *ConversationArea) Topic() string  { return a.topic }
func (a *ConversationArea) IsActive() bool { return !a.empty() }

func (a *ConversationArea) Remove(p *Player) {
	if !a.remove(p) || !a.empty() {
		return
	}
	a.topic = ""
	a.emitter.Emit(EventInteractableUpdate, a.Model())
}

func (a *ConversationArea) Model() AreaModel {
	return ConversationAreaModel{
		Type:          KindConversationArea,
		ID:            a.id,
		OccupantsByID: a.OccupantsByID(),
		Topic:         a.topic,
	}
}

func (a *ConversationArea) UpdateModel(m AreaModel) error {
	cm, ok := m.(ConversationAreaModel)
	if !ok {
		return wrongKind(KindConversationArea, m)
	}
	a.topic = cm.Topic
	return nil
}
