package search

import (
	"testing"

	"github.com/mfranzen/rattler/game"
)

func openBoard() *game.State {
	return &game.State{
		Width: 11, Height: 11, YouID: "me",
		Snakes: []game.Snake{
			{ID: "me", Health: 90, Body: []game.Point{{X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0}}},
		},
	}
}

func TestPath_StraightLine(t *testing.T) {
	s := openBoard()

	path, ok := Path(s, "me", game.Point{X: 1, Y: 1}, game.Point{X: 4, Y: 1})
	if !ok {
		t.Fatalf("no path on an open board")
	}
	want := []game.Point{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 4, Y: 1}}
	if len(path) != len(want) {
		t.Fatalf("path=%v want=%v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("path[%d]=%v want=%v", i, path[i], want[i])
		}
	}
}

func TestPath_StartIsGoal(t *testing.T) {
	s := openBoard()

	path, ok := Path(s, "me", game.Point{X: 1, Y: 1}, game.Point{X: 1, Y: 1})
	if !ok || len(path) != 1 || path[0] != (game.Point{X: 1, Y: 1}) {
		t.Fatalf("path=%v ok=%v want single-cell path", path, ok)
	}
}

func TestPath_DetoursAroundBodies(t *testing.T) {
	// A wall across x=5 with a single gap at y=9.
	wall := game.Snake{ID: "wall", Health: 90, Body: []game.Point{
		{X: 5, Y: 0}, {X: 5, Y: 1}, {X: 5, Y: 2}, {X: 5, Y: 3}, {X: 5, Y: 4},
		{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 5, Y: 7}, {X: 5, Y: 8},
		{X: 5, Y: 10}, {X: 6, Y: 10},
	}}
	s := openBoard()
	s.Snakes = append(s.Snakes, wall)

	start := game.Point{X: 3, Y: 0}
	goal := game.Point{X: 7, Y: 0}
	path, ok := Path(s, "me", start, goal)
	if !ok {
		t.Fatalf("no path through the gap")
	}
	if path[0] != start || path[len(path)-1] != goal {
		t.Fatalf("path endpoints %v..%v want %v..%v", path[0], path[len(path)-1], start, goal)
	}

	// Must cross x=5 at the gap row.
	crossed := false
	for _, p := range path {
		if p.X == 5 {
			if p.Y != 9 {
				t.Fatalf("path crosses the wall at %v", p)
			}
			crossed = true
		}
	}
	if !crossed {
		t.Fatalf("path never crossed the wall line: %v", path)
	}
}

func TestPath_NoPathIntoSealedPocket(t *testing.T) {
	// Goal boxed in by a body ring. The tail is stacked so the ring has
	// no vacating cell to slip through.
	ring := game.Snake{ID: "ring", Health: 90, Body: []game.Point{
		{X: 7, Y: 6}, {X: 8, Y: 6}, {X: 9, Y: 6},
		{X: 9, Y: 7}, {X: 9, Y: 8},
		{X: 8, Y: 8}, {X: 7, Y: 8},
		{X: 7, Y: 7}, {X: 7, Y: 7},
	}}
	s := openBoard()
	s.Snakes = append(s.Snakes, ring)

	if path, ok := Path(s, "me", game.Point{X: 1, Y: 1}, game.Point{X: 8, Y: 7}); ok {
		t.Fatalf("found a path into a sealed pocket: %v", path)
	}
}

func TestPath_RiskyCellsAreTraversable(t *testing.T) {
	// An equal-length enemy head renders the corridor risky, not blocked.
	s := &game.State{
		Width: 11, Height: 11, YouID: "me",
		Snakes: []game.Snake{
			{ID: "me", Health: 90, Body: []game.Point{{X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0}}},
			{ID: "e", Health: 90, Body: []game.Point{{X: 2, Y: 2}, {X: 2, Y: 3}, {X: 2, Y: 4}}},
		},
	}

	path, ok := Path(s, "me", game.Point{X: 1, Y: 1}, game.Point{X: 5, Y: 1})
	if !ok {
		t.Fatalf("risky corridor blocked the search")
	}
	if path[len(path)-1] != (game.Point{X: 5, Y: 1}) {
		t.Fatalf("path=%v does not reach the goal", path)
	}
}

func TestPathTo_PredicateGoal(t *testing.T) {
	s := openBoard()
	s.Food = []game.Point{{X: 6, Y: 1}, {X: 1, Y: 8}}

	foodAt := func(p game.Point) bool { return s.FoodAt(p) }
	nearest := func(p game.Point) int32 {
		best := int32(1 << 30)
		for _, f := range s.Food {
			if d := p.Manhattan(f); d < best {
				best = d
			}
		}
		return best
	}

	path, ok := PathTo(s, "me", game.Point{X: 1, Y: 1}, nearest, foodAt)
	if !ok {
		t.Fatalf("no path to any food")
	}
	if got := path[len(path)-1]; got != (game.Point{X: 6, Y: 1}) {
		t.Fatalf("reached %v want the closer food (6,1)", got)
	}
	if len(path) != 6 {
		t.Fatalf("path length=%d want=6", len(path))
	}
}
