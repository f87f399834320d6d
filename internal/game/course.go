package game

import (
	"fmt"

	"github.com/fairwave/backend/internal/physics"
)

// Course is an ordered set of holes. Immutable after construction; every
// level is validated when the course is built, so authoring mistakes fail
// fast at startup instead of mid-round.
type Course struct {
	Slug   string
	Name   string
	Levels []physics.Level
}

// Holes returns the number of holes on the course.
func (c *Course) Holes() int {
	return len(c.Levels)
}

// Level returns the geometry for one hole.
func (c *Course) Level(i int) (*physics.Level, error) {
	if i < 0 || i >= len(c.Levels) {
		return nil, fmt.Errorf("hole %d out of range (course has %d)", i, len(c.Levels))
	}
	return &c.Levels[i], nil
}

// TotalPar sums the par of every hole.
func (c *Course) TotalPar() int {
	total := 0
	for _, l := range c.Levels {
		total += l.Par
	}
	return total
}

// TuningFor selects the capture family a level was authored against.
func TuningFor(lvl *physics.Level) *physics.Tuning {
	if lvl.OpenGreen {
		return physics.OpenGreenTuning()
	}
	return physics.DefaultTuning()
}

// DefaultCourse is the built-in four-hole course. World units are pixels
// in a 1000x600 side view with Y growing downward.
func DefaultCourse() (*Course, error) {
	c := &Course{
		Slug: "clubhouse",
		Name: "Clubhouse Classic",
		Levels: []physics.Level{
			{
				Name:   "Fairway",
				Width:  1000,
				Height: 600,
				Par:    3,
				Rects: []physics.Rect{
					{X: 0, Y: 540, W: 1000, H: 60},  // ground
					{X: 260, Y: 420, W: 160, H: 20}, // ledge 1
					{X: 540, Y: 340, W: 140, H: 20}, // ledge 2
					{X: 760, Y: 480, W: 120, H: 20}, // cup ledge
					{X: 420, Y: 480, W: 40, H: 100}, // vertical blocker
				},
				Start:       physics.Vec2{X: 80, Y: 510},
				HoleAnchorX: 820,
			},
			{
				Name:   "Staircase",
				Width:  1000,
				Height: 600,
				Par:    4,
				Rects: []physics.Rect{
					{X: 0, Y: 540, W: 1000, H: 60},
					{X: 300, Y: 490, W: 500, H: 50},
					{X: 420, Y: 440, W: 380, H: 50},
					{X: 540, Y: 390, W: 260, H: 50},
					{X: 660, Y: 340, W: 140, H: 50},
					{X: 120, Y: 360, W: 30, H: 180}, // pillar guarding the climb
				},
				Start:       physics.Vec2{X: 60, Y: 510},
				HoleAnchorX: 730,
			},
			{
				Name:   "Furnace",
				Width:  1000,
				Height: 600,
				Par:    4,
				Rects: []physics.Rect{
					{X: 0, Y: 540, W: 440, H: 60},
					{X: 560, Y: 540, W: 440, H: 60},
					{X: 440, Y: 560, W: 120, H: 40}, // pit floor under the mouth
					{X: 820, Y: 470, W: 140, H: 20}, // cup shelf
				},
				Hazards: []physics.Hazard{
					{
						Body:    physics.Rect{X: 440, Y: 560, W: 120, H: 40},
						Period:  3.0,
						Phase:   0.25,
						MaxOpen: 70,
						InsetX:  12,
					},
				},
				Start:       physics.Vec2{X: 80, Y: 510},
				HoleAnchorX: 890,
			},
			{
				Name:      "The Green",
				Width:     1000,
				Height:    600,
				Par:       2,
				OpenGreen: true,
				Rects: []physics.Rect{
					{X: 0, Y: 540, W: 1000, H: 60},
				},
				Start:       physics.Vec2{X: 100, Y: 510},
				HoleAnchorX: 780,
			},
		},
	}

	for i := range c.Levels {
		if err := c.Levels[i].Validate(); err != nil {
			return nil, fmt.Errorf("course %s hole %d (%s): %w", c.Slug, i, c.Levels[i].Name, err)
		}
	}
	return c, nil
}

// CourseBySlug resolves a course by its slug. An empty slug means the
// built-in course; anything else must match it.
func CourseBySlug(slug string) (*Course, error) {
	c, err := DefaultCourse()
	if err != nil {
		return nil, err
	}
	if slug != "" && slug != c.Slug {
		return nil, fmt.Errorf("unknown course %q", slug)
	}
	return c, nil
}
