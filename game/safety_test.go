package game

import "testing"

// classifierState sets up a 9x9 board with a protagonist, a longer enemy
// hugging the left wall, and a freshly fed snake with a stacked tail.
func classifierState() *State {
	return &State{
		Width: 9, Height: 9,
		YouID: "me",
		Snakes: []Snake{
			{ID: "me", Health: 90, Body: []Point{{X: 3, Y: 3}, {X: 3, Y: 2}, {X: 3, Y: 1}}},
			{ID: "big", Health: 90, Body: []Point{{X: 0, Y: 3}, {X: 0, Y: 2}, {X: 0, Y: 1}, {X: 0, Y: 0}}},
			{ID: "fed", Health: 100, Body: []Point{{X: 5, Y: 5}, {X: 5, Y: 4}, {X: 5, Y: 4}}},
		},
	}
}

func TestSafetyAt_BlockingSegmentsNeverSafe(t *testing.T) {
	s := classifierState()
	t.Logf("board:\n%s", s.Render("me"))

	for _, sn := range s.Snakes {
		n := len(sn.Body)
		for i, seg := range sn.Body {
			vacating := i == n-1 && sn.Body[n-1] != sn.Body[n-2]
			if vacating {
				continue
			}
			if got := s.SafetyAt(seg, "me"); got == Safe {
				t.Fatalf("segment %v of %s classified Safe", seg, sn.ID)
			}
		}
	}
}

func TestSafetyAt_VacatingTailIsNotBlocking(t *testing.T) {
	s := classifierState()

	if got := s.SafetyAt(Point{X: 3, Y: 1}, "me"); got != Safe {
		t.Fatalf("own vacating tail=%v want=safe", got)
	}
	if got := s.SafetyAt(Point{X: 0, Y: 0}, "me"); got != Safe {
		t.Fatalf("enemy vacating tail=%v want=safe", got)
	}
}

func TestSafetyAt_StackedTailBlocks(t *testing.T) {
	s := classifierState()

	if got := s.SafetyAt(Point{X: 5, Y: 4}, "me"); got != Unsafe {
		t.Fatalf("stacked tail=%v want=unsafe", got)
	}
}

func TestSafetyAt_HeadAdjacency(t *testing.T) {
	s := classifierState()

	// Next to the longer enemy's head: risky for me, but fine for the
	// enemy itself since its own head does not count.
	if got := s.SafetyAt(Point{X: 1, Y: 3}, "me"); got != Risky {
		t.Fatalf("cell next to longer head=%v want=risky", got)
	}
	if got := s.SafetyAt(Point{X: 1, Y: 3}, "big"); got != Safe {
		t.Fatalf("same cell for the longer snake=%v want=safe", got)
	}

	// My head is adjacent to (2,3) but shorter than big, so big sees it Safe.
	if got := s.SafetyAt(Point{X: 2, Y: 3}, "big"); got != Safe {
		t.Fatalf("cell next to shorter head=%v want=safe", got)
	}
}

func TestSafetyAt_OutOfBounds(t *testing.T) {
	s := classifierState()

	if got := s.SafetyAt(Point{X: 3, Y: -1}, "me"); got != Unsafe {
		t.Fatalf("oob cell=%v want=unsafe", got)
	}

	// Off-board cell beside the wall hugger's head still reads risky;
	// adjacency is graded before bounds.
	if got := s.SafetyAt(Point{X: -1, Y: 3}, "me"); got != Risky {
		t.Fatalf("oob cell next to longer head=%v want=risky", got)
	}
}

func TestValidAt(t *testing.T) {
	s := &State{
		Width: 9, Height: 9,
		YouID: "me",
		Snakes: []Snake{
			{ID: "me", Health: 90, Body: []Point{{X: 3, Y: 3}, {X: 3, Y: 2}, {X: 3, Y: 1}}},
			{ID: "eq", Health: 90, Body: []Point{{X: 5, Y: 3}, {X: 5, Y: 2}, {X: 5, Y: 1}}},
			{ID: "short", Health: 90, Body: []Point{{X: 7, Y: 3}, {X: 7, Y: 2}}},
		},
	}

	cases := []struct {
		p    Point
		want bool
	}{
		{Point{X: 5, Y: 3}, false}, // equal-length head
		{Point{X: 7, Y: 3}, true},  // strictly shorter head
		{Point{X: 5, Y: 2}, false}, // enemy body
		{Point{X: 3, Y: 2}, false}, // own body
		{Point{X: 3, Y: 3}, true},  // own head cell
		{Point{X: 4, Y: 4}, true},  // empty
		{Point{X: 3, Y: -1}, false},
	}
	for _, c := range cases {
		if got := s.ValidAt(c.p, "me"); got != c.want {
			t.Fatalf("ValidAt(%v)=%v want=%v", c.p, got, c.want)
		}
	}
}

func TestDirSafety(t *testing.T) {
	s := classifierState()

	if got := s.DirSafety("me", Up); got != Unsafe {
		t.Fatalf("up into own neck=%v want=unsafe", got)
	}
	if got := s.DirSafety("me", Down); got != Safe {
		t.Fatalf("down into open cell=%v want=safe", got)
	}
}

func TestCornerRisky_UpTrap(t *testing.T) {
	s := &State{
		Width: 11, Height: 11,
		YouID: "me",
		Snakes: []Snake{
			{ID: "me", Health: 90, Body: []Point{{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 5, Y: 7}}},
			{ID: "e", Health: 90, Body: []Point{{X: 4, Y: 2}, {X: 4, Y: 1}, {X: 4, Y: 0}}},
			{ID: "w", Health: 90, Body: []Point{{X: 6, Y: 4}, {X: 7, Y: 4}, {X: 8, Y: 4}}},
		},
	}
	t.Logf("board:\n%s", s.Render("me"))

	if !s.CornerRisky("me", Up) {
		t.Fatalf("corner trap with sealed blocker not detected")
	}
}

func TestCornerRisky_OpenBlockerIsFine(t *testing.T) {
	s := &State{
		Width: 11, Height: 11,
		YouID: "me",
		Snakes: []Snake{
			{ID: "me", Health: 90, Body: []Point{{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 5, Y: 7}}},
			{ID: "e", Health: 90, Body: []Point{{X: 4, Y: 2}, {X: 4, Y: 1}, {X: 4, Y: 0}}},
		},
	}

	if s.CornerRisky("me", Up) {
		t.Fatalf("corner flagged with an open blocker cell")
	}
}

func TestCornerRisky_OccupiedDiagonalsDefuse(t *testing.T) {
	s := &State{
		Width: 11, Height: 11,
		YouID: "me",
		Snakes: []Snake{
			{ID: "me", Health: 90, Body: []Point{{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 5, Y: 7}}},
			{ID: "e", Health: 90, Body: []Point{{X: 4, Y: 2}, {X: 4, Y: 1}, {X: 4, Y: 0}}},
			{ID: "w", Health: 90, Body: []Point{{X: 6, Y: 4}, {X: 7, Y: 4}, {X: 8, Y: 4}}},
			{ID: "d", Health: 90, Body: []Point{{X: 4, Y: 3}, {X: 5, Y: 3}, {X: 6, Y: 3}}},
		},
	}

	if s.CornerRisky("me", Up) {
		t.Fatalf("corner flagged with both diagonal escapes occupied")
	}
}

func TestCornerRisky_DownTrap(t *testing.T) {
	s := &State{
		Width: 11, Height: 11,
		YouID: "me",
		Snakes: []Snake{
			{ID: "me", Health: 90, Body: []Point{{X: 5, Y: 5}, {X: 5, Y: 4}, {X: 5, Y: 3}}},
			{ID: "e", Health: 90, Body: []Point{{X: 4, Y: 8}, {X: 4, Y: 9}, {X: 4, Y: 10}}},
			{ID: "w", Health: 90, Body: []Point{{X: 6, Y: 6}, {X: 7, Y: 6}, {X: 8, Y: 6}}},
		},
	}

	if !s.CornerRisky("me", Down) {
		t.Fatalf("downward corner trap not detected")
	}
}

func TestCornerRisky_ShorterEnemyIgnored(t *testing.T) {
	s := &State{
		Width: 11, Height: 11,
		YouID: "me",
		Snakes: []Snake{
			{ID: "me", Health: 90, Body: []Point{{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 5, Y: 7}, {X: 5, Y: 8}}},
			{ID: "e", Health: 90, Body: []Point{{X: 4, Y: 2}, {X: 4, Y: 1}, {X: 4, Y: 0}}},
			{ID: "w", Health: 90, Body: []Point{{X: 6, Y: 4}, {X: 7, Y: 4}, {X: 8, Y: 4}}},
		},
	}

	if s.CornerRisky("me", Up) {
		t.Fatalf("corner flagged for a strictly shorter enemy")
	}
}

func TestReachable(t *testing.T) {
	s := &State{
		Width: 5, Height: 5,
		YouID:  "me",
		Snakes: []Snake{{ID: "me", Health: 90, Body: []Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}}}},
	}

	// 25 cells minus the seed and the neck; the vacating tail counts.
	if got := s.Reachable("me", Point{X: 0, Y: 0}, 64); got != 23 {
		t.Fatalf("Reachable=%d want=23", got)
	}
	if got := s.Reachable("me", Point{X: 0, Y: 0}, 5); got != 5 {
		t.Fatalf("Reachable with limit=%d want=5", got)
	}
}

func TestFallbackMove(t *testing.T) {
	open := &State{
		Width: 5, Height: 5,
		YouID:  "me",
		Snakes: []Snake{{ID: "me", Health: 90, Body: []Point{{X: 2, Y: 2}, {X: 2, Y: 1}, {X: 2, Y: 0}}}},
	}
	if got := open.FallbackMove("me"); got != Down {
		t.Fatalf("open board fallback=%v want=down", got)
	}

	pressured := open.Clone()
	pressured.Snakes = append(pressured.Snakes, Snake{
		ID: "big", Health: 90, Body: []Point{{X: 2, Y: 4}, {X: 1, Y: 4}, {X: 0, Y: 4}},
	})
	if got := pressured.FallbackMove("me"); got != Left {
		t.Fatalf("pressured fallback=%v want=left", got)
	}

	// Safe later in scan order beats Risky earlier in it.
	flanked := &State{
		Width: 5, Height: 5,
		YouID: "me",
		Snakes: []Snake{
			{ID: "me", Health: 90, Body: []Point{{X: 2, Y: 2}, {X: 1, Y: 2}, {X: 0, Y: 2}}},
			{ID: "big", Health: 90, Body: []Point{{X: 2, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 1}}},
		},
	}
	if got := flanked.FallbackMove("me"); got != Down {
		t.Fatalf("flanked fallback=%v want=down", got)
	}

	trapped := &State{
		Width: 1, Height: 1,
		YouID:  "me",
		Snakes: []Snake{{ID: "me", Health: 90, Body: []Point{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 0}}}},
	}
	if got := trapped.FallbackMove("me"); got != Up {
		t.Fatalf("trapped fallback=%v want=up", got)
	}
}
