package game

// Safety grades a cell for the snake considering it.
//
//	Safe:   empty, in bounds, no longer enemy head adjacent
//	Risky:  empty, in bounds, a head of an equal-or-longer enemy adjacent
//	Unsafe: occupied by a blocking segment, or out of bounds
type Safety int8

const (
	Unsafe Safety = iota
	Risky
	Safe
)

func (s Safety) String() string {
	switch s {
	case Safe:
		return "safe"
	case Risky:
		return "risky"
	default:
		return "unsafe"
	}
}

// SafetyAt classifies p for the snake you. Blocking segments are checked
// across all snakes first, then enemy head adjacency, then bounds. A tail
// tip counts as blocking only while it is stacked from a recent meal,
// since otherwise it vacates the cell on the next turn.
func (s *State) SafetyAt(p Point, you string) Safety {
	me := s.MustSnake(you)

	for i := range s.Snakes {
		sn := &s.Snakes[i]
		n := len(sn.Body)
		for _, seg := range sn.Body {
			if seg != p {
				continue
			}
			if p != sn.Body[n-1] || n < 2 || sn.Body[n-1] == sn.Body[n-2] {
				return Unsafe
			}
		}
	}

	for i := range s.Snakes {
		sn := &s.Snakes[i]
		if sn.ID == you || sn.Len() < me.Len() {
			continue
		}
		for _, q := range p.Orthogonal() {
			if q == sn.Head() {
				return Risky
			}
		}
	}

	if s.InBounds(p) {
		return Safe
	}
	return Unsafe
}

// ValidAt reports whether the snake you survives with its head at p, for
// states where every snake has already moved this turn. The head of a
// strictly shorter enemy does not block; any other head or body segment
// does, as does leaving the board.
func (s *State) ValidAt(p Point, you string) bool {
	me := s.MustSnake(you)

	for i := range s.Snakes {
		sn := &s.Snakes[i]
		if sn.ID != you && p == sn.Head() && sn.Len() >= me.Len() {
			return false
		}
		for _, seg := range sn.Body[1:] {
			if seg == p {
				return false
			}
		}
	}

	return s.InBounds(p)
}

// DirSafety classifies the cell the snake you would step into.
func (s *State) DirSafety(you string, d Dir) Safety {
	me := s.MustSnake(you)
	return s.SafetyAt(d.Apply(me.Head()), you)
}

// CornerRisky reports whether moving in direction d walks the snake you
// into a corner trap: an equal-or-longer enemy head sitting two cells
// ahead on the diagonal ring can seal the exit if the near blocker cell
// on that side is already unsafe. Occupied diagonal escape cells defuse
// the pattern.
func (s *State) CornerRisky(you string, d Dir) bool {
	me := s.MustSnake(you)
	h := me.Head()

	var diagonals, outer, blockers []Point
	switch d {
	case Up:
		diagonals = []Point{{h.X - 1, h.Y - 2}, {h.X + 1, h.Y - 2}}
		outer = []Point{{h.X - 2, h.Y - 2}, {h.X - 1, h.Y - 3}, {h.X + 1, h.Y - 3}, {h.X + 2, h.Y - 2}}
		blockers = []Point{{h.X - 1, h.Y - 1}, {h.X + 1, h.Y - 1}}
	case Down:
		diagonals = []Point{{h.X + 1, h.Y + 2}, {h.X - 1, h.Y + 2}}
		outer = []Point{{h.X + 2, h.Y + 2}, {h.X + 1, h.Y + 3}, {h.X - 1, h.Y + 3}, {h.X - 2, h.Y + 2}}
		blockers = []Point{{h.X + 1, h.Y + 1}, {h.X - 1, h.Y + 1}}
	case Left:
		diagonals = []Point{{h.X - 2, h.Y + 1}, {h.X - 2, h.Y - 1}}
		outer = []Point{{h.X - 2, h.Y + 2}, {h.X - 3, h.Y + 1}, {h.X - 3, h.Y - 1}, {h.X - 2, h.Y - 2}}
		blockers = []Point{{h.X - 1, h.Y + 1}, {h.X - 1, h.Y - 1}}
	default:
		diagonals = []Point{{h.X + 2, h.Y - 1}, {h.X + 2, h.Y + 1}}
		outer = []Point{{h.X + 2, h.Y - 2}, {h.X + 3, h.Y - 1}, {h.X + 3, h.Y + 1}, {h.X + 2, h.Y + 2}}
		blockers = []Point{{h.X + 1, h.Y - 1}, {h.X + 1, h.Y + 1}}
	}

	for i := range s.Snakes {
		for _, seg := range s.Snakes[i].Body {
			diagonals = removePoint(diagonals, seg)
		}
	}
	if len(diagonals) == 0 {
		return false
	}

	for i := range s.Snakes {
		sn := &s.Snakes[i]
		if sn.ID == you || sn.Len() < me.Len() {
			continue
		}
		head := sn.Head()
		if head == outer[0] || head == outer[1] {
			return s.SafetyAt(blockers[1], you) == Unsafe
		}
		if head == outer[2] || head == outer[3] {
			return s.SafetyAt(blockers[0], you) == Unsafe
		}
	}

	return false
}

// Reachable counts cells reachable from the given point through non-Unsafe
// cells, stopping at limit. The starting cell itself is not counted, so a
// snake head can seed the fill directly.
func (s *State) Reachable(you string, from Point, limit int) int {
	seen := map[Point]bool{from: true}
	queue := []Point{from}
	count := 0

	for len(queue) > 0 && count < limit {
		p := queue[0]
		queue = queue[1:]

		for _, q := range p.Orthogonal() {
			if seen[q] || s.SafetyAt(q, you) == Unsafe {
				continue
			}
			seen[q] = true
			count++
			queue = append(queue, q)
			if count >= limit {
				break
			}
		}
	}

	return count
}

// FallbackMove returns the first Safe direction, then the first Risky one,
// scanning Up, Down, Left, Right. With nothing survivable it answers Up,
// which loses, but a well formed losing move beats no move at all.
func (s *State) FallbackMove(you string) Dir {
	for _, level := range [2]Safety{Safe, Risky} {
		for _, d := range Dirs {
			if s.DirSafety(you, d) == level {
				return d
			}
		}
	}
	return Up
}

func removePoint(pts []Point, p Point) []Point {
	out := pts[:0]
	for _, q := range pts {
		if q != p {
			out = append(out, q)
		}
	}
	return out
}
