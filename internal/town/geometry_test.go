package town

import (
	"fmt"
	"testing"
)

const (
	halfW = PlayerSpriteWidth / 2
	halfH = PlayerSpriteHeight / 2
)

var testBox = BoundingBox{X: 100, Y: 100, Width: 100, Height: 100}

func TestContains(t *testing.T) {
	x, y, w, h := testBox.X, testBox.Y, testBox.Width, testBox.Height

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"center", x + w/2, y + w/2, true},
		{"off center", x + 10 + w/2, y + 10 + w/2, true},
		{"inner top right", x - 1 + w, y + 1, true},
		{"inner top left", x + 1, y + 1, true},
		{"inner bottom right", x - 1 + w, y - 1 + h, true},
		{"inner bottom left", x + 1, y - 1 + h, true},
		{"far corner", 199, 199, true},

		{"footprint top right", x - 1 + halfW + w, y + 1 - halfH, true},
		{"footprint top left", x + 1 - halfW, y + 1 - halfH, true},
		{"footprint bottom right", x - 1 + halfW + w, y - 1 + halfH + h, true},
		{"footprint bottom left", x + 1 - halfW, y - 1 + halfH + h, true},

		{"footprint edge top right", x + halfW + w, y - halfH, false},
		{"footprint edge top left", x - halfW, y - halfH, false},
		{"footprint edge bottom right", x + halfW + w, y + halfH + h, false},
		{"footprint edge bottom left", x - halfW, y + halfH + h, false},

		{"far top right", x + w*2, y - h, false},
		{"far top left", x - w, y - w, false},
		{"far bottom right", x + w*2, y + h*2, false},
		{"far bottom left", x - w, y + h*2, false},
		{"above", x + 1, y - h, false},
		{"left", x - w, y + 1, false},
		{"right", x + w*2, y + 1, false},
		{"below", x + 1, y + h*2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testBox.Contains(Location{X: tt.x, Y: tt.y, Rotation: DirectionFront})
			if got != tt.want {
				t.Fatalf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	x, y, w, h := testBox.X, testBox.Y, testBox.Width, testBox.Height
	cx, cy := x+w/2, y+h/2
	const sw, sh = PlayerSpriteWidth, PlayerSpriteHeight

	tests := []struct {
		other BoundingBox
		want  bool
	}{
		// contained entirely
		{BoundingBox{cx, cy, 2, 2}, true},
		{BoundingBox{cx + 4, cy + 4, 2, 2}, true},

		// overlapping edges
		{BoundingBox{x - 50, y - 50, 100, 100}, true},
		{BoundingBox{x - 50, y + h - 50, 100, 100}, true},
		{BoundingBox{x + w - 50, y - 50, 100, 100}, true},
		{BoundingBox{x + w - 50, y + h - 50, 100, 100}, true},
		{BoundingBox{x - sw/2, y - sh/2, sw + 1, sh + 1}, true},
		{BoundingBox{x - sw/2, y + h + sh/2, sw + 1, sh + 1}, true},
		{BoundingBox{x + w + sw/2, y - sh/2, sw + 1, sh + 1}, true},
		{BoundingBox{x + w + sw/2, y + h + sh/2, sw + 1, sh + 1}, true},

		// no overlap
		{BoundingBox{x - 50, y - 50, 10, 10}, false},
		{BoundingBox{x - 50, y + h + 50, 10, 10}, false},
		{BoundingBox{x + w + 50, y - 50, 100, 100}, false},
		{BoundingBox{x + w + 50, y + h + 50, 100, 100}, false},
		{BoundingBox{x - sw*1.5, y - sh*1.5, sw / 2, sh / 2}, false},
		{BoundingBox{x - sw, y + h + sh, sw, sh}, false},
		{BoundingBox{x + w + sw, y - sh, sw, sh}, false},
		{BoundingBox{x + w + sw, y + h + sh, sw, sh}, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.other), func(t *testing.T) {
			if got := testBox.Overlaps(tt.other); got != tt.want {
				t.Fatalf("Overlaps(%+v) = %v, want %v", tt.other, got, tt.want)
			}
			if got := tt.other.Overlaps(testBox); got != tt.want {
				t.Fatalf("reverse Overlaps(%+v) = %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}
