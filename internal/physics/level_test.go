package physics

import (
	"strings"
	"testing"
)

func TestResolveHoleTopSurfaceUnderAnchor(t *testing.T) {
	lvl := &Level{
		Name:   "anchor",
		Width:  1000,
		Height: 600,
		Rects: []Rect{
			{X: 0, Y: 60, W: 200, H: 20},    // unrelated high shelf elsewhere
			{X: 0, Y: 540, W: 1000, H: 60},  // ground, also under the anchor
			{X: 760, Y: 480, W: 120, H: 20}, // cup ledge
		},
		Start:       Vec2{X: 80, Y: 510},
		HoleAnchorX: 820,
	}

	hole := lvl.ResolveHole(18)
	if hole.Pos.Y != 480 {
		t.Errorf("cup should sit on the topmost surface under the anchor: y=%.0f want 480", hole.Pos.Y)
	}
	if hole.Pos.X != 820 {
		t.Errorf("cup x should match the anchor: %.0f", hole.Pos.X)
	}
}

func TestResolveHoleFallbackTopmostRect(t *testing.T) {
	lvl := &Level{
		Name:   "fallback",
		Width:  1000,
		Height: 600,
		Rects: []Rect{
			{X: 0, Y: 540, W: 300, H: 60},
			{X: 100, Y: 200, W: 50, H: 20},
		},
		Start:       Vec2{X: 80, Y: 510},
		HoleAnchorX: 900, // nothing spans this x
	}

	hole := lvl.ResolveHole(18)
	if hole.Pos.Y != 200 {
		t.Errorf("empty anchor column should fall back to the topmost rect: y=%.0f want 200", hole.Pos.Y)
	}
}

func TestLevelValidate(t *testing.T) {
	good := ledgeLevel()
	if err := good.Validate(); err != nil {
		t.Fatalf("authored level should validate: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Level)
		wantErr string
	}{
		{"no geometry", func(l *Level) { l.Rects = nil }, "no geometry"},
		{"start outside", func(l *Level) { l.Start.X = -40 }, "start pose"},
		{"anchor outside", func(l *Level) { l.HoleAnchorX = 5000 }, "hole anchor"},
		{"bad hazard period", func(l *Level) {
			l.Hazards = []Hazard{{Body: Rect{X: 0, Y: 0, W: 10, H: 10}, MaxOpen: 10}}
		}, "period"},
		{"bad hazard opening", func(l *Level) {
			l.Hazards = []Hazard{{Body: Rect{X: 0, Y: 0, W: 10, H: 10}, Period: 2}}
		}, "opening"},
	}
	for _, tc := range cases {
		lvl := ledgeLevel()
		tc.mutate(lvl)
		err := lvl.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
			t.Errorf("%s: got %v, want error containing %q", tc.name, err, tc.wantErr)
		}
	}
}
