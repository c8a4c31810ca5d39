package game

import "strings"

// Render draws the board one line per row, top row first. The snake you
// renders as O/o, other snakes as A/a, B/b, ... in slice order, food as
// '*', empty cells as '.'. Heads win when segments stack.
func (s *State) Render(you string) string {
	grid := make([][]byte, s.Height)
	for y := range grid {
		grid[y] = make([]byte, s.Width)
		for x := range grid[y] {
			grid[y][x] = '.'
		}
	}

	for _, f := range s.Food {
		if s.InBounds(f) {
			grid[f.Y][f.X] = '*'
		}
	}

	enemy := 0
	for i := range s.Snakes {
		sn := &s.Snakes[i]
		head, body := byte('O'), byte('o')
		if sn.ID != you {
			head, body = 'A'+byte(enemy), 'a'+byte(enemy)
			enemy++
		}
		for j, p := range sn.Body {
			if !s.InBounds(p) {
				continue
			}
			switch {
			case j == 0:
				grid[p.Y][p.X] = head
			case grid[p.Y][p.X] == '.' || grid[p.Y][p.X] == '*':
				grid[p.Y][p.X] = body
			}
		}
	}

	var sb strings.Builder
	for y := range grid {
		sb.Write(grid[y])
		sb.WriteByte('\n')
	}
	return sb.String()
}
