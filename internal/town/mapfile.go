package town

// ObjectLayerName is the map layer that declares interactable areas.
const ObjectLayerName = "Objects"

// Map is the subset of a Tiled JSON map the server reads.
type Map struct {
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	TileWidth  int        `json:"tilewidth"`
	TileHeight int        `json:"tileheight"`
	Layers     []MapLayer `json:"layers"`
}

type MapLayer struct {
	ID      int         `json:"id"`
	Name    string      `json:"name"`
	Type    string      `json:"type"`
	Objects []MapObject `json:"objects,omitempty"`
}

// MapObject is one object in an object layer. Type names the area kind;
// newer Tiled versions write it as Class instead.
type MapObject struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Class  string  `json:"class,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (o MapObject) kind() AreaKind {
	if o.Type != "" {
		return AreaKind(o.Type)
	}
	return AreaKind(o.Class)
}

func (m *Map) objectLayer() (MapLayer, bool) {
	for _, l := range m.Layers {
		if l.Name == ObjectLayerName {
			return l, true
		}
	}
	return MapLayer{}, false
}
