package town

// ViewingArea plays one shared video for everyone inside it.
type ViewingArea struct {
	occupancy
	video          string
	isPlaying      bool
	elapsedTimeSec float64
}

func NewViewingArea(model ViewingAreaModel, box BoundingBox, emitter Emitter) *ViewingArea {
	return &ViewingArea{
		occupancy:      newOccupancy(model.ID, box, model.OccupantsByID, emitter),
		video:          model.Video,
		isPlaying:      model.IsPlaying,
		elapsedTimeSec: model.ElapsedTimeSec,
	}
}

func ViewingAreaFromMapObject(obj MapObject, emitter Emitter) (*ViewingArea, error) {
	box, err := boxFromMapObject(KindViewingArea, obj)
	if err != nil {
		return nil, err
	}
	return NewViewingArea(ViewingAreaModel{ID: obj.Name}, box, emitter), nil
}

func (a *ViewingArea) Kind() AreaKind          { return KindViewingArea }
func (a *ViewingArea) Video() string           { return a.video }
func (a *ViewingArea) IsPlaying() bool         { return a.isPlaying }
func (a *ViewingArea) ElapsedTimeSec() float64 { return a.elapsedTimeSec }
func (a *ViewingArea) IsActive() bool          { return !a.empty() }

// Remove resets playback once the area is empty.
func (a *ViewingArea) Remove(p *Player) {
	if !a.remove(p) || !a.empty() {
		return
	}
	a.video = ""
	a.isPlaying = false
	a.elapsedTimeSec = 0
	a.emitter.Emit(EventInteractableUpdate, a.Model())
}

func (a *ViewingArea) Model() AreaModel {
	return ViewingAreaModel{
		Type:           KindViewingArea,
		ID:             a.id,
		OccupantsByID:  a.OccupantsByID(),
		Video:          a.video,
		IsPlaying:      a.isPlaying,
		ElapsedTimeSec: a.elapsedTimeSec,
	}
}

func (a *ViewingArea) UpdateModel(m AreaModel) error {
	vm, ok := m.(ViewingAreaModel)
	if !ok {
		return wrongKind(KindViewingArea, m)
	}
	a.video = vm.Video
	a.isPlaying = vm.IsPlaying
	a.elapsedTimeSec = vm.ElapsedTimeSec
	return nil
}
