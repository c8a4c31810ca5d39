// Package profiler infers which controller an enemy snake is running.
// Each turn it records the enemy's actual move and what every candidate
// controller would have played from the same position. A sliding window
// of the last ten turns is scored per controller, and an enemy whose
// recent moves agree with one of them closely enough is matched to it,
// until the window degrades again.
package profiler

import (
	"github.com/mfranzen/rattler/game"
	"github.com/mfranzen/rattler/strategy"
)

const (
	ringSize       = 10
	matchThreshold = 9
)

// candidateNames lists the controllers tried against every enemy. Order
// breaks ties between equally good matches.
var candidateNames = []string{"tailchase", "nearestfood", "nearestenemy"}

// Profiler tracks one match worth of enemy observations. It is not safe
// for concurrent use; the server serializes turns per game.
type Profiler struct {
	controllers []strategy.Strategy
	prev        *game.State
	observed    map[string][]game.Dir
	predicted   map[string]map[string][]game.Dir
	matches     map[string]string
}

func New() *Profiler {
	ctrls := make([]strategy.Strategy, 0, len(candidateNames))
	for _, name := range candidateNames {
		if h, ok := strategy.Heuristic(name); ok {
			ctrls = append(ctrls, h)
		}
	}
	return &Profiler{
		controllers: ctrls,
		observed:    make(map[string][]game.Dir),
		predicted:   make(map[string]map[string][]game.Dir),
		matches:     make(map[string]string),
	}
}

// Observe ingests the state for a new turn: it scores the move each
// enemy just made against the predictions recorded last turn, refreshes
// the matches, and stores fresh predictions for the coming move.
func (p *Profiler) Observe(s *game.State, you string) {
	p.prune(s, you)
	if p.prev != nil {
		p.observeMoves(s, you)
		p.updateMatches()
	}
	p.predictMoves(s, you)
	p.prev = s.Clone()
}

// Matches returns the current enemy to controller pairings.
func (p *Profiler) Matches() map[string]string {
	out := make(map[string]string, len(p.matches))
	for id, name := range p.matches {
		out[id] = name
	}
	return out
}

// prune drops every ring and match belonging to a snake that is no
// longer on the board.
func (p *Profiler) prune(s *game.State, you string) {
	live := make(map[string]bool, len(s.Snakes))
	for i := range s.Snakes {
		if s.Snakes[i].ID != you {
			live[s.Snakes[i].ID] = true
		}
	}
	for id := range p.observed {
		if !live[id] {
			delete(p.observed, id)
			delete(p.predicted, id)
			delete(p.matches, id)
		}
	}
}

// observeMoves derives each enemy's actual move from its head delta
// since the previous state. A head that did not step to an orthogonal
// neighbor, as on the opening turn's stacked spawn, records nothing.
func (p *Profiler) observeMoves(s *game.State, you string) {
	for i := range s.Snakes {
		sn := &s.Snakes[i]
		if sn.ID == you {
			continue
		}
		before, ok := p.prev.SnakeByID(sn.ID)
		if !ok || before.Head().Manhattan(sn.Head()) != 1 {
			continue
		}
		d, _ := before.Head().DirTo(sn.Head())
		if ring, ok := p.observed[sn.ID]; ok {
			pushDir(ring, d)
		}
	}
}

// updateMatches rescores every window and keeps the best controller per
// enemy. The highest agreement wins, earliest candidate on ties, and an
// enemy whose best window sinks below the threshold is unmatched.
func (p *Profiler) updateMatches() {
	for id, obs := range p.observed {
		best, bestName := 0, ""
		for _, ctrl := range p.controllers {
			pred := p.predicted[id][ctrl.Name()]
			agree := 0
			for i := range obs {
				if obs[i] == pred[i] {
					agree++
				}
			}
			if agree > best {
				best, bestName = agree, ctrl.Name()
			}
		}
		if best >= matchThreshold {
			p.matches[id] = bestName
		} else {
			delete(p.matches, id)
		}
	}
}

// predictMoves records what every controller would play from this state
// so the move observed next turn has predictions to score against. A
// new enemy gets rings seeded with disagreement, which keeps it
// unmatched until enough real turns accumulate.
func (p *Profiler) predictMoves(s *game.State, you string) {
	for i := range s.Snakes {
		sn := &s.Snakes[i]
		if sn.ID == you {
			continue
		}
		if _, ok := p.observed[sn.ID]; !ok {
			p.observed[sn.ID] = seedRing(game.Up)
			rings := make(map[string][]game.Dir, len(p.controllers))
			for _, ctrl := range p.controllers {
				rings[ctrl.Name()] = seedRing(game.Down)
			}
			p.predicted[sn.ID] = rings
		}
		for _, ctrl := range p.controllers {
			pushDir(p.predicted[sn.ID][ctrl.Name()], ctrl.Decide(s, sn.ID))
		}
	}
}

// pushDir shifts the ring one slot and writes d newest-first.
func pushDir(ring []game.Dir, d game.Dir) {
	copy(ring[1:], ring)
	ring[0] = d
}

func seedRing(d game.Dir) []game.Dir {
	ring := make([]game.Dir, ringSize)
	for i := range ring {
		ring[i] = d
	}
	return ring
}
