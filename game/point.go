package game

// Point is a board coordinate. The grid is y-down, matching the wire
// format: (0,0) is the top-left corner and Up decreases Y.
type Point struct {
	X int32
	Y int32
}

// Manhattan returns the manhattan distance between p and q.
func (p Point) Manhattan(q Point) int32 {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

// DirTo returns the direction from p toward q, preferring the vertical
// axis. Reports false when the points are equal.
func (p Point) DirTo(q Point) (Dir, bool) {
	switch {
	case q.Y > p.Y:
		return Down, true
	case q.Y < p.Y:
		return Up, true
	case q.X > p.X:
		return Right, true
	case q.X < p.X:
		return Left, true
	}
	return Up, false
}

// Orthogonal returns the 4 adjacent points in Up, Down, Left, Right order.
func (p Point) Orthogonal() [4]Point {
	return [4]Point{
		{X: p.X, Y: p.Y - 1},
		{X: p.X, Y: p.Y + 1},
		{X: p.X - 1, Y: p.Y},
		{X: p.X + 1, Y: p.Y},
	}
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
