package game

// Dir is one of the four orthogonal move directions.
type Dir int8

const (
	Up Dir = iota
	Down
	Left
	Right
)

// Dirs lists every direction in a fixed scan order.
var Dirs = [4]Dir{Up, Down, Left, Right}

// Apply returns the point reached by moving one cell from p in direction d.
func (d Dir) Apply(p Point) Point {
	switch d {
	case Up:
		return Point{X: p.X, Y: p.Y - 1}
	case Down:
		return Point{X: p.X, Y: p.Y + 1}
	case Left:
		return Point{X: p.X - 1, Y: p.Y}
	default:
		return Point{X: p.X + 1, Y: p.Y}
	}
}

// String returns the wire label for the direction.
func (d Dir) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return "right"
	}
}

// ParseDir converts a wire label back into a direction.
func ParseDir(s string) (Dir, bool) {
	switch s {
	case "up":
		return Up, true
	case "down":
		return Down, true
	case "left":
		return Left, true
	case "right":
		return Right, true
	}
	return Up, false
}
