package strategy

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/mfranzen/rattler/game"
	"github.com/mfranzen/rattler/rules"
)

// ensemble simulates the game forward under a panel of controller
// pairings. Every branch fixes a heuristic for us, a heuristic for the
// enemies, and an opening move for each side; the branches then play
// out in parallel until they die, win, or the budget expires, and the
// opening directions are ranked by how well their branches fared.
type ensemble struct {
	opts     Options
	branches []*branch
	profiles map[string]string
}

// branch is one simulation lane. It owns its state clone outright, so
// stepping it never touches another branch's memory.
type branch struct {
	self        Strategy
	enemy       Strategy
	selfPrefix  game.Dir
	enemyPrefix game.Dir
	you         string
	state       *game.State
	outcomes    []rules.Outcome
}

func newEnsemble(o Options) *ensemble { return &ensemble{opts: o} }

func (e *ensemble) Name() string { return "ensemble" }

// Start lays out the branch panel: three self controllers, four enemy
// controllers, and the sixteen opening pairs.
func (e *ensemble) Start(s *game.State, you string) {
	selfControllers := []Strategy{nearestFood{}, tailChase{}, straight{}}
	enemyControllers := []Strategy{nearestFood{}, tailChase{}, straight{}, nearestEnemy{}}

	e.branches = e.branches[:0]
	for _, self := range selfControllers {
		for _, enemy := range enemyControllers {
			for _, enemyPrefix := range game.Dirs {
				for _, selfPrefix := range game.Dirs {
					e.branches = append(e.branches, &branch{
						self:        self,
						enemy:       enemy,
						selfPrefix:  selfPrefix,
						enemyPrefix: enemyPrefix,
						you:         you,
					})
				}
			}
		}
	}
}

// ApplyProfiles feeds the profiler's opponent matches into the
// simulations: a matched opponent is driven by its matched heuristic
// instead of the branch's generic enemy controller.
func (e *ensemble) ApplyProfiles(matches map[string]string) {
	e.profiles = matches
}

func (e *ensemble) Decide(s *game.State, you string) game.Dir {
	deadline := time.Now().Add(e.opts.Budget)

	if len(e.branches) == 0 {
		e.Start(s, you)
	}

	profiles := e.profiles
	for _, b := range e.branches {
		b.outcomes = b.outcomes[:0]
		b.state = s.Clone()
		b.you = you
	}

	var wg sync.WaitGroup
	for _, b := range e.branches {
		wg.Add(1)
		go func(b *branch) {
			defer wg.Done()
			b.opening()
		}(b)
	}
	wg.Wait()

	for time.Now().Before(deadline) {
		stepped := false
		for _, b := range e.branches {
			if !b.live() {
				continue
			}
			stepped = true
			wg.Add(1)
			go func(b *branch) {
				defer wg.Done()
				b.step(profiles)
			}(b)
		}
		wg.Wait()
		if !stepped {
			break
		}
	}

	return e.choose(s, you, e.rank(s, you))
}

// live reports whether the branch still has game left to simulate.
func (b *branch) live() bool {
	if len(b.outcomes) == 0 {
		return true
	}
	last := b.outcomes[len(b.outcomes)-1]
	return last.Alive && !last.Finished
}

// opening plays the branch's fixed first move: ours for the
// protagonist, the enemy prefix for everyone else.
func (b *branch) opening() {
	moves := make(map[string]game.Dir, len(b.state.Snakes))
	for i := range b.state.Snakes {
		id := b.state.Snakes[i].ID
		if id == b.you {
			moves[id] = b.selfPrefix
		} else {
			moves[id] = b.enemyPrefix
		}
	}
	b.advance(moves)
}

// step plays one simulated turn with every snake driven by its
// controller. A profiled opponent uses its matched heuristic.
func (b *branch) step(profiles map[string]string) {
	moves := make(map[string]game.Dir, len(b.state.Snakes))
	for i := range b.state.Snakes {
		id := b.state.Snakes[i].ID
		ctrl := b.enemy
		if id == b.you {
			ctrl = b.self
		} else if name, ok := profiles[id]; ok {
			if h, ok := Heuristic(name); ok {
				ctrl = h
			}
		}
		moves[id] = ctrl.Decide(b.state, id)
	}
	b.advance(moves)
}

func (b *branch) advance(moves map[string]game.Dir) {
	next, out := rules.Advance(b.state, b.you, moves)
	b.state = next
	b.outcomes = append(b.outcomes, out)
}

type candidate struct {
	dir   game.Dir
	score float64
	turns int
}

// rank aggregates branch results per opening direction and sorts the
// directions by score. Base order is Down, Left, Right, Up so equal
// scores resolve the same way every time.
func (e *ensemble) rank(s *game.State, you string) []candidate {
	me := s.MustSnake(you)

	hungry := false
	if len(s.Snakes) == 2 {
		for i := range s.Snakes {
			sn := &s.Snakes[i]
			if sn.ID != you && sn.Len() >= me.Len()-2 {
				hungry = true
			}
		}
	}

	var scores [4]float64
	var turns [4]int
	var seen [4]bool

	for _, b := range e.branches {
		if len(b.outcomes) == 0 {
			continue
		}
		dir := b.outcomes[0].Dir
		n := len(b.outcomes)

		var dead, foods float64
		for _, out := range b.outcomes {
			if out.Alive {
				dead += float64(out.DeadSnakes)
			}
			foods += float64(out.Foods)
		}

		total := (float64(n)-30)*1.5 + dead*30

		switch {
		case hungry:
			// a rival within two lengths: out-eating it decides the game
			total += foods * 300
		case len(s.Snakes) == 1:
			// nobody left to outgrow
		default:
			total += foods * 1.7
		}

		last := b.outcomes[n-1]
		if last.Finished && last.Alive && n < 100 {
			total += (100 - float64(n)) * 5
		}

		if !s.IsOuter(me.Head()) && s.IsOuter(dir.Apply(me.Head())) {
			total *= 0.8
		}

		scores[dir] += total
		turns[dir] += n
		seen[dir] = true
	}

	ranked := make([]candidate, 0, 4)
	for _, d := range []game.Dir{game.Down, game.Left, game.Right, game.Up} {
		if seen[d] {
			ranked = append(ranked, candidate{dir: d, score: scores[d], turns: turns[d]})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	return ranked
}

// choose walks the ranking. The leader wins if it is Safe and clear of
// corner traps; otherwise, if any later candidate is Safe, clear, and
// close enough on both score and survival turns, the walk advances one
// rank. A leader nothing can displace is taken even when unsafe.
func (e *ensemble) choose(s *game.State, you string, ranked []candidate) game.Dir {
	for cur := 0; cur < len(ranked); cur++ {
		c := ranked[cur]
		if s.DirSafety(you, c.dir) == game.Safe && !s.CornerRisky(you, c.dir) {
			return c.dir
		}

		displaced := false
		for next := cur + 1; next < len(ranked); next++ {
			nc := ranked[next]
			if s.DirSafety(you, nc.dir) == game.Safe &&
				nc.score > c.score-math.Abs(c.score/2.5) &&
				nc.turns > c.turns-c.turns/2 &&
				!s.CornerRisky(you, nc.dir) {
				displaced = true
				break
			}
		}
		if !displaced {
			return c.dir
		}
	}
	return s.FallbackMove(you)
}
