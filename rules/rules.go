// Package rules resolves turns. Advance is the protagonist-centric
// transition every search strategy simulates with; Step is the symmetric
// engine-style transition the local arena runs matches on.
package rules

import "github.com/mfranzen/rattler/game"

// Outcome summarizes one resolved turn from the protagonist's side.
// Accumulated over a branch it also summarizes the whole branch, which
// is how the ensemble scores its futures.
type Outcome struct {
	Alive      bool
	Finished   bool
	DeadSnakes int
	Foods      int
	EnemyFoods int
	Dir        game.Dir
}

// Advance resolves one simultaneous turn for the snake you. The input
// state is never mutated. Snakes without an entry in moves keep their
// position but are still validated against the moved board. If the
// protagonist ends the turn dead the outcome reports alive=false,
// finished=true and no enemy is removed. Removing enemies down to a
// single survivor finishes the game.
func Advance(s *game.State, you string, moves map[string]game.Dir) (*game.State, Outcome) {
	out := Outcome{Alive: true, Dir: game.Up}
	next := s.Clone()
	next.Turn++

	heads := make(map[string]game.Point, len(next.Snakes))
	eaten := make(map[game.Point]bool)

	for id, d := range moves {
		if id == you {
			out.Dir = d
		}

		sn := next.MustSnake(id)
		head, ate := applyMove(sn, d, next)
		if ate {
			if id == you {
				out.Foods++
			} else {
				out.EnemyFoods++
			}
			eaten[head] = true
		}
		heads[id] = head
	}

	for i := range next.Snakes {
		sn := &next.Snakes[i]
		if _, ok := heads[sn.ID]; !ok {
			heads[sn.ID] = sn.Head()
		}
	}

	if len(eaten) > 0 {
		kept := next.Food[:0]
		for _, f := range next.Food {
			if !eaten[f] {
				kept = append(kept, f)
			}
		}
		next.Food = kept
	}

	me := next.MustSnake(you)
	if !next.ValidAt(heads[you], you) || me.Health <= 0 {
		out.Alive = false
		out.Finished = true
		return next, out
	}

	dead := make(map[string]bool)
	for i := range next.Snakes {
		sn := &next.Snakes[i]
		if sn.ID == you {
			continue
		}
		if !next.ValidAt(heads[sn.ID], sn.ID) || sn.Health <= 0 {
			out.DeadSnakes++
			dead[sn.ID] = true
		}
	}

	if len(dead) > 0 {
		kept := make([]game.Snake, 0, len(next.Snakes))
		for _, sn := range next.Snakes {
			if !dead[sn.ID] {
				kept = append(kept, sn)
			}
		}
		next.Snakes = kept

		if len(next.Snakes) == 1 {
			out.Finished = true
		}
	}

	return next, out
}

// Step resolves one simultaneous turn with no protagonist: every death
// is applied symmetrically and the survivors play on. Returns the ids
// eliminated this turn. A snake without a move is eliminated.
func Step(s *game.State, moves map[string]game.Dir) (*game.State, []string) {
	next := s.Clone()
	next.Turn++

	eaten := make(map[game.Point]bool)
	noMove := make(map[string]bool)

	for i := range next.Snakes {
		sn := &next.Snakes[i]
		d, ok := moves[sn.ID]
		if !ok {
			noMove[sn.ID] = true
			continue
		}
		if head, ate := applyMove(sn, d, next); ate {
			eaten[head] = true
		}
	}

	if len(eaten) > 0 {
		kept := next.Food[:0]
		for _, f := range next.Food {
			if !eaten[f] {
				kept = append(kept, f)
			}
		}
		next.Food = kept
	}

	dead := make(map[string]bool)
	for i := range next.Snakes {
		sn := &next.Snakes[i]
		if noMove[sn.ID] || sn.Health <= 0 {
			dead[sn.ID] = true
			continue
		}

		head := sn.Head()
		if !next.InBounds(head) {
			dead[sn.ID] = true
			continue
		}

		for j := range next.Snakes {
			other := &next.Snakes[j]
			for k, seg := range other.Body {
				if k == 0 {
					continue
				}
				if seg == head {
					dead[sn.ID] = true
				}
			}
		}
	}

	for i := 0; i < len(next.Snakes); i++ {
		s1 := &next.Snakes[i]
		if dead[s1.ID] {
			continue
		}
		for j := i + 1; j < len(next.Snakes); j++ {
			s2 := &next.Snakes[j]
			if dead[s2.ID] || s1.Head() != s2.Head() {
				continue
			}
			switch {
			case s1.Len() > s2.Len():
				dead[s2.ID] = true
			case s2.Len() > s1.Len():
				dead[s1.ID] = true
			default:
				dead[s1.ID] = true
				dead[s2.ID] = true
			}
		}
	}

	var eliminated []string
	kept := make([]game.Snake, 0, len(next.Snakes))
	for _, sn := range next.Snakes {
		if dead[sn.ID] {
			eliminated = append(eliminated, sn.ID)
			continue
		}
		kept = append(kept, sn)
	}
	next.Snakes = kept

	return next, eliminated
}

// applyMove slides the snake one cell: new head in front, tail dropped.
// Food under the new head refills health and duplicates the new tail
// tip, so the snake grows as the stacked tail unwinds. The food cell
// itself is left for the caller to remove, letting two snakes collect
// the same food in one turn.
func applyMove(sn *game.Snake, d game.Dir, s *game.State) (game.Point, bool) {
	head := d.Apply(sn.Head())
	ate := s.FoodAt(head)

	body := make([]game.Point, 0, len(sn.Body)+1)
	body = append(body, head)
	body = append(body, sn.Body[:len(sn.Body)-1]...)
	sn.Body = body

	if ate {
		sn.Health = 100
		sn.Body = append(sn.Body, sn.Body[len(sn.Body)-1])
	} else {
		sn.Health--
	}

	return head, ate
}
