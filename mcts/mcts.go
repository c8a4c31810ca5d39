// Package mcts implements the Monte-Carlo tree search behind the
// montecarlo strategy. The tree lives in a flat arena: nodes are
// addressed by index, parent and child links are indices, and the arena
// only grows until the tree is discarded with the decision. That keeps
// the tree trivially cloneable and free of pointer cycles.
package mcts

import (
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/mfranzen/rattler/game"
	"github.com/mfranzen/rattler/rules"
	"github.com/mfranzen/rattler/search"
)

const (
	// rolloutCap bounds rollout length so a cycling endgame cannot eat
	// the whole move budget inside a single simulation.
	rolloutCap = 512
	// foodBias is the chance a rollout snake steers for food instead of
	// moving randomly.
	foodBias = 0.2
)

var noChildren = [4]int{-1, -1, -1, -1}

// node is one arena slot. Children fill the slot array in creation
// order; the first -1 terminates the list.
type node struct {
	parent   int
	children [4]int
	score    int
	sims     int
	state    *game.State
	outcome  rules.Outcome
	selfTurn bool
	loss     bool
}

// Tree is a search tree over one decision for one snake. It is not safe
// for concurrent use; ensemble search runs one Tree per goroutine.
type Tree struct {
	nodes []node
	you   string
	curr  int
	rng   *rand.Rand
}

var seedSalt atomic.Int64

func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano() ^ seedSalt.Add(1)<<32))
}

// New builds a tree rooted at a private clone of s. The root is tagged
// as an opponent turn so the first expansion lays out the protagonist's
// own moves.
func New(s *game.State, you string) *Tree {
	t := &Tree{you: you, rng: newRNG()}
	t.nodes = append(t.nodes, node{
		parent:   -1,
		children: noChildren,
		state:    s.Clone(),
	})
	return t
}

// Len reports how many nodes the arena holds.
func (t *Tree) Len() int { return len(t.nodes) }

// ExpandRoot materializes the root's children. A false return means the
// protagonist has no move worth searching and the caller should fall
// back immediately instead of burning the budget.
func (t *Tree) ExpandRoot() bool {
	return t.expand(0)
}

// Step advances the walk pointer by one search action: descend a level
// by UCB1, expand a visited leaf in place, or roll out an unvisited or
// terminal one and restart at the root. One call is the unit of work
// the budget loop schedules.
func (t *Tree) Step() {
	n := &t.nodes[t.curr]
	if n.children[0] >= 0 {
		t.curr = t.next(t.curr)
		return
	}
	if !n.outcome.Finished && n.sims > 0 && t.expand(t.curr) {
		return
	}
	t.rollout(t.curr)
	t.curr = 0
}

// BestDir picks the most visited direction among the root's children
// (robust child). ok is false when nothing was visited, which means the
// search never got going and the caller should fall back.
func (t *Tree) BestDir() (game.Dir, bool) {
	visits := t.DirVisits()
	best := game.Up
	bestVisits := 0
	for _, d := range game.Dirs {
		if v := visits[d]; v > bestVisits {
			bestVisits = v
			best = d
		}
	}
	return best, bestVisits > 0
}

// DirVisits sums the root children's visit counts per direction.
// Pre-terminated loss children exist to steer UCB away from traps, not
// to vote, so they are excluded.
func (t *Tree) DirVisits() [4]int {
	var visits [4]int
	for _, c := range t.nodes[0].children {
		if c < 0 {
			break
		}
		n := &t.nodes[c]
		if n.loss {
			continue
		}
		visits[n.outcome.Dir] += n.sims
	}
	return visits
}

// expand lays out children for the acting snake of id's state. The
// acting side alternates per level, starting with the protagonist under
// the root. Protagonist levels get one real child per Safe direction
// plus a pre-terminated loss child per Risky one; opponent levels get
// Safe and Risky children alike.
func (t *Tree) expand(id int) bool {
	if t.nodes[id].outcome.Finished {
		return false
	}

	selfTurn := !t.nodes[id].selfTurn
	st := t.nodes[id].state

	actor := t.you
	if !selfTurn {
		enemy, ok := st.NearestEnemy(t.you)
		if !ok {
			return false
		}
		actor = enemy.ID
	}

	slot := 0
	for _, d := range game.Dirs {
		level := st.DirSafety(actor, d)
		if level == game.Unsafe || (selfTurn && level != game.Safe) {
			continue
		}
		t.addChild(id, &slot, d, actor, selfTurn)
	}
	if selfTurn {
		t.addLossChildren(id, &slot)
	}

	return slot > 0
}

func (t *Tree) addChild(id int, slot *int, d game.Dir, actor string, selfTurn bool) {
	st := t.nodes[id].state
	next, out := rules.Advance(st, t.you, map[string]game.Dir{actor: d})
	out.Dir = d
	t.nodes = append(t.nodes, node{
		parent:   id,
		children: noChildren,
		state:    next,
		outcome:  out,
		selfTurn: selfTurn,
	})
	t.nodes[id].children[*slot] = len(t.nodes) - 1
	*slot++
}

// addLossChildren synthesizes a terminal losing child for every Risky
// direction: both heads contest the cell and the protagonist loses the
// collision. Seeding them with one visit and zero reward marks the trap
// without forcing the walk to rediscover it through rollouts.
func (t *Tree) addLossChildren(id int, slot *int) {
	st := t.nodes[id].state
	me := st.MustSnake(t.you)
	enemy, ok := st.NearestEnemy(t.you)
	if !ok {
		return
	}

	for _, d := range game.Dirs {
		if st.DirSafety(t.you, d) != game.Risky {
			continue
		}
		p := d.Apply(me.Head())
		ed, ok := enemy.Head().DirTo(p)
		if !ok {
			continue
		}

		next, out := rules.Advance(st, t.you, map[string]game.Dir{t.you: d, enemy.ID: ed})
		out.Dir = d
		t.nodes = append(t.nodes, node{
			parent:   id,
			children: noChildren,
			sims:     1,
			state:    next,
			outcome:  out,
			selfTurn: true,
			loss:     true,
		})
		t.nodes[id].children[*slot] = len(t.nodes) - 1
		*slot++
	}
}

// next descends to the child maximizing UCB1. Unvisited children score
// +Inf and win immediately in slot order.
func (t *Tree) next(id int) int {
	parentSims := t.nodes[id].sims
	best := t.nodes[id].children[0]
	bestScore := math.Inf(-1)

	for _, c := range t.nodes[id].children {
		if c < 0 {
			break
		}
		if s := t.ucb(c, parentSims); s > bestScore {
			bestScore = s
			best = c
		}
	}
	return best
}

func (t *Tree) ucb(id, parentSims int) float64 {
	n := &t.nodes[id]
	if n.sims == 0 {
		return math.Inf(1)
	}
	mean := float64(n.score) / float64(n.sims)
	return mean + math.Sqrt2*math.Sqrt(math.Log(float64(parentSims))/float64(n.sims))
}

// rollout scores id by simulation (or its cached outcome when already
// finished) and adds the reward and a visit to every node up to and
// including the root.
func (t *Tree) rollout(id int) {
	reward := t.simulate(id)
	for i := id; i >= 0; i = t.nodes[i].parent {
		t.nodes[i].score += reward
		t.nodes[i].sims++
	}
}

func (t *Tree) simulate(id int) int {
	if out := t.nodes[id].outcome; out.Finished {
		if out.Alive {
			return 1
		}
		return 0
	}

	st := t.nodes[id].state.Clone()

	// a protagonist-turn node holds our move with no reply yet, so the
	// nearest enemy answers before open play begins
	if t.nodes[id].selfTurn {
		if enemy, ok := st.NearestEnemy(t.you); ok {
			next, out := rules.Advance(st, t.you, map[string]game.Dir{enemy.ID: t.randomMove(st, enemy.ID)})
			if out.Finished {
				if out.Alive {
					return 1
				}
				return 0
			}
			st = next
		}
	}

	for i := 0; i < rolloutCap; i++ {
		moves := make(map[string]game.Dir, len(st.Snakes))
		for j := range st.Snakes {
			sn := &st.Snakes[j]
			if t.rng.Float64() < foodBias {
				moves[sn.ID] = t.foodMove(st, sn.ID)
			} else {
				moves[sn.ID] = t.randomMove(st, sn.ID)
			}
		}
		next, out := rules.Advance(st, t.you, moves)
		if out.Finished {
			if out.Alive {
				return 1
			}
			return 0
		}
		st = next
	}
	// outlived the cap; good enough to call survival
	return 1
}

func (t *Tree) randomMove(s *game.State, id string) game.Dir {
	var opts [4]game.Dir
	n := 0
	for _, d := range game.Dirs {
		if s.DirSafety(id, d) != game.Unsafe {
			opts[n] = d
			n++
		}
	}
	if n == 0 {
		return game.Up
	}
	return opts[t.rng.Intn(n)]
}

// foodMove steers toward the nearest food the way the nearestfood
// heuristic does. Reimplemented here rather than imported so the
// rollout policy does not pull the strategy registry into the tree.
func (t *Tree) foodMove(s *game.State, id string) game.Dir {
	sn := s.MustSnake(id)
	if food, ok := s.NearestFood(sn.Head()); ok {
		if path, ok := search.Path(s, id, sn.Head(), food); ok && len(path) > 1 {
			if d, ok := sn.Head().DirTo(path[1]); ok {
				return d
			}
		}
	}
	return s.FallbackMove(id)
}
