package town

// Player sprite dimensions in map pixels. A player counts as standing inside
// an area as soon as any part of their sprite is inside it.
const (
	PlayerSpriteWidth  = 32
	PlayerSpriteHeight = 64
)

// BoundingBox is an axis-aligned rectangle: top-left corner plus extents.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether a player standing at loc touches b.
// The player's footprint extends half a sprite in each direction and all
// four comparisons are strict, so a footprint that only meets an edge is out.
func (b BoundingBox) Contains(loc Location) bool {
	return loc.X+PlayerSpriteWidth/2 > b.X &&
		loc.X-PlayerSpriteWidth/2 < b.X+b.Width &&
		loc.Y+PlayerSpriteHeight/2 > b.Y &&
		loc.Y-PlayerSpriteHeight/2 < b.Y+b.Height
}

// Overlaps reports whether a player footprint could straddle both boxes.
// Both boxes are grown by half a sprite on every side before the test.
func (b BoundingBox) Overlaps(other BoundingBox) bool {
	r1, r2 := b.inflated(), other.inflated()
	noOverlap := r1.X >= r2.X+r2.Width ||
		r2.X >= r1.X+r1.Width ||
		r1.Y >= r2.Y+r2.Height ||
		r2.Y >= r1.Y+r1.Height
	return !noOverlap
}

func (b BoundingBox) inflated() BoundingBox {
	return BoundingBox{
		X:      b.X - PlayerSpriteWidth/2,
		Y:      b.Y - PlayerSpriteHeight/2,
		Width:  b.Width + PlayerSpriteWidth,
		Height: b.Height + PlayerSpriteHeight,
	}
}
