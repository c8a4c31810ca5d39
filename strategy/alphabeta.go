package strategy

import (
	"github.com/mfranzen/rattler/game"
	"github.com/mfranzen/rattler/rules"
)

const (
	minScore = -1000
	maxScore = 1000
	maxDepth = 10

	// mobilityCap bounds the flood fill at the leaves. 64 cells is over
	// half an 11x11 board, enough to separate cramped from open play
	// without paying for a full-board fill at every leaf.
	mobilityCap = 64
)

// alphaBeta plays duels with minimax and alpha-beta pruning. A ply picks
// a direction for one snake; a move pair only resolves through the turn
// simulator once both sides have chosen, so forced head-on collisions
// are visible before they are scored.
type alphaBeta struct {
	opts Options
}

func newAlphaBeta(o Options) *alphaBeta { return &alphaBeta{opts: o} }

func (ab *alphaBeta) Start(*game.State, string) {}
func (ab *alphaBeta) Name() string              { return "alphabeta" }

func (ab *alphaBeta) Decide(s *game.State, you string) game.Dir {
	enemy, ok := s.NearestEnemy(you)
	if !ok {
		return s.FallbackMove(you)
	}

	best := minScore
	bestDir := game.Up
	alpha, beta := minScore, maxScore

	for _, d := range game.Dirs {
		if s.DirSafety(you, d) == game.Unsafe {
			continue
		}
		val := ab.minPly(s, you, enemy.ID, d, 2, alpha, beta)
		if val > best {
			best = val
			bestDir = d
		}
		if best > alpha {
			alpha = best
		}
		if beta <= alpha {
			break
		}
	}

	if best == minScore {
		// every branch loses; take the least bad immediate move
		return s.FallbackMove(you)
	}
	return bestDir
}

// maxPly chooses the protagonist's direction. The chosen direction is
// handed down unresolved; minPly pairs it with an opponent reply.
func (ab *alphaBeta) maxPly(s *game.State, you, enemyID string, depth, alpha, beta int) int {
	if depth > maxDepth {
		return ab.leaf(s, you, enemyID)
	}

	best := minScore
	for _, d := range game.Dirs {
		if s.DirSafety(you, d) == game.Unsafe {
			continue
		}
		val := ab.minPly(s, you, enemyID, d, depth+1, alpha, beta)
		if val > best {
			best = val
		}
		if best > alpha {
			alpha = best
		}
		if beta <= alpha {
			break
		}
	}
	return best
}

// minPly chooses the opponent's reply to myDir and resolves the pair.
// Besides its Safe and Risky directions the opponent is granted the move
// onto the protagonist's new head cell, so a forced collision is always
// on the menu: it ends the branch at minScore unless the protagonist is
// strictly longer, in which case the opponent would lose the collision
// and that reply is discarded.
func (ab *alphaBeta) minPly(s *game.State, you, enemyID string, myDir game.Dir, depth, alpha, beta int) int {
	me := s.MustSnake(you)
	enemy := s.MustSnake(enemyID)
	myTarget := myDir.Apply(me.Head())

	best := maxScore
	for _, d := range game.Dirs {
		target := d.Apply(enemy.Head())
		if s.DirSafety(enemyID, d) == game.Unsafe && target != myTarget {
			continue
		}

		var val int
		if target == myTarget {
			if me.Len() > enemy.Len() {
				continue
			}
			val = minScore
		} else {
			next, out := rules.Advance(s, you, map[string]game.Dir{you: myDir, enemyID: d})
			_, enemyAlive := next.SnakeByID(enemyID)
			switch {
			case !out.Alive:
				val = minScore
			case out.Finished, !enemyAlive:
				val = maxScore
			default:
				val = ab.maxPly(next, you, enemyID, depth+1, alpha, beta)
			}
		}

		if val < best {
			best = val
		}
		if best < beta {
			beta = best
		}
		if beta <= alpha {
			break
		}
	}
	return best
}

// leaf scores a resolved state by bounded flood-fill mobility, weighting
// the protagonist's room double: space to run predicts survival better
// than proximity to food.
func (ab *alphaBeta) leaf(s *game.State, you, enemyID string) int {
	me := s.MustSnake(you)
	mine := s.Reachable(you, me.Head(), mobilityCap)

	enemy, ok := s.SnakeByID(enemyID)
	if !ok {
		return 2 * mine
	}
	theirs := s.Reachable(enemyID, enemy.Head(), mobilityCap)

	return 2*mine - theirs
}
