// Package game defines the board model for a Battlesnake match: points,
// directions, snakes, the full turn state, and the per-cell safety
// classification every search strategy prunes moves with.
//
// The state is designed to be cheaply deep-clonable; searches own
// independent clones and never mutate a caller's state.
package game

import "fmt"

type Snake struct {
	ID     string
	Name   string
	Health int32
	Body   []Point
}

// Head returns the first body segment.
func (sn *Snake) Head() Point {
	return sn.Body[0]
}

// Tail returns the last body segment.
func (sn *Snake) Tail() Point {
	return sn.Body[len(sn.Body)-1]
}

// Len returns the body length.
func (sn *Snake) Len() int {
	return len(sn.Body)
}

// Heading returns the direction the snake moved last turn, derived from
// the first two body segments. Reports false when they are stacked,
// which happens on the opening turns.
func (sn *Snake) Heading() (Dir, bool) {
	if len(sn.Body) < 2 {
		return Up, false
	}
	return sn.Body[1].DirTo(sn.Body[0])
}

// State is one full snapshot of a match. YouID names the snake this
// agent controls; search and arena code always pass the acting snake's
// id explicitly so one state can be read from any seat.
type State struct {
	GameID string
	Width  int32
	Height int32
	Snakes []Snake
	Food   []Point
	YouID  string
	Turn   int32
}

// Clone performs a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	out := &State{
		GameID: s.GameID,
		Width:  s.Width,
		Height: s.Height,
		YouID:  s.YouID,
		Turn:   s.Turn,
	}

	if len(s.Food) > 0 {
		out.Food = make([]Point, len(s.Food))
		copy(out.Food, s.Food)
	}

	if len(s.Snakes) > 0 {
		out.Snakes = make([]Snake, len(s.Snakes))
		for i := range s.Snakes {
			sn := &s.Snakes[i]
			out.Snakes[i] = Snake{ID: sn.ID, Name: sn.Name, Health: sn.Health}
			if len(sn.Body) > 0 {
				out.Snakes[i].Body = make([]Point, len(sn.Body))
				copy(out.Snakes[i].Body, sn.Body)
			}
		}
	}

	return out
}

// InBounds reports whether p is inside the board.
func (s *State) InBounds(p Point) bool {
	return p.X >= 0 && p.X < s.Width && p.Y >= 0 && p.Y < s.Height
}

// IsOuter reports whether p lies on the outermost ring of the board.
func (s *State) IsOuter(p Point) bool {
	return p.X == 0 || p.Y == 0 || p.X == s.Width-1 || p.Y == s.Height-1
}

// FoodAt reports whether a food cell sits at p.
func (s *State) FoodAt(p Point) bool {
	for _, f := range s.Food {
		if f == p {
			return true
		}
	}
	return false
}

// SnakeByID returns the snake with the given id, or false when it is not
// in this snapshot.
func (s *State) SnakeByID(id string) (*Snake, bool) {
	for i := range s.Snakes {
		if s.Snakes[i].ID == id {
			return &s.Snakes[i], true
		}
	}
	return nil, false
}

// MustSnake returns the snake with the given id and panics when it is
// absent. Absence here means a state transition dropped a snake a search
// still references, which is a bug that must not be papered over with a
// default move.
func (s *State) MustSnake(id string) *Snake {
	sn, ok := s.SnakeByID(id)
	if !ok {
		panic(fmt.Sprintf("game: no snake %q in state at turn %d", id, s.Turn))
	}
	return sn
}

// NearestFood returns the food cell closest to from by manhattan
// distance. Food farther than 98 cells away is ignored.
func (s *State) NearestFood(from Point) (Point, bool) {
	best := int32(99)
	var found bool
	var nearest Point

	for _, f := range s.Food {
		if d := from.Manhattan(f); d < best {
			best = d
			nearest = f
			found = true
		}
	}

	return nearest, found
}

// NearestEnemy returns the living snake closest to you's head, or false
// when you is alone on the board.
func (s *State) NearestEnemy(you string) (*Snake, bool) {
	me, ok := s.SnakeByID(you)
	if !ok {
		return nil, false
	}

	best := int32(99)
	var nearest *Snake

	for i := range s.Snakes {
		sn := &s.Snakes[i]
		if sn.ID == you {
			continue
		}
		if d := me.Head().Manhattan(sn.Head()); d < best {
			best = d
			nearest = sn
		}
	}

	return nearest, nearest != nil
}
