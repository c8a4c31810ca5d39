package strategy

import (
	"sync"
	"time"

	"github.com/mfranzen/rattler/game"
	"github.com/mfranzen/rattler/mcts"
)

// monteCarlo decides by ensemble Monte-Carlo tree search: independent
// trees advance their walks concurrently until the budget runs out,
// then per-direction root visits are summed across trees and the most
// visited direction wins (robust child over the aggregate). Each tree
// owns a private clone of the state, so the goroutines share nothing.
type monteCarlo struct {
	opts Options
}

func newMonteCarlo(o Options) *monteCarlo { return &monteCarlo{opts: o} }

func (mc *monteCarlo) Start(*game.State, string) {}
func (mc *monteCarlo) Name() string              { return "montecarlo" }

func (mc *monteCarlo) Decide(s *game.State, you string) game.Dir {
	deadline := time.Now().Add(mc.opts.Budget)

	if _, ok := s.NearestEnemy(you); !ok {
		return s.FallbackMove(you)
	}

	trees := make([]*mcts.Tree, 0, mc.opts.Trees)
	for i := 0; i < mc.opts.Trees; i++ {
		t := mcts.New(s, you)
		if !t.ExpandRoot() {
			// boxed in; no tree will fare better
			return s.FallbackMove(you)
		}
		trees = append(trees, t)
	}

	var wg sync.WaitGroup
	for _, t := range trees {
		wg.Add(1)
		go func(t *mcts.Tree) {
			defer wg.Done()
			for time.Now().Before(deadline) {
				t.Step()
			}
		}(t)
	}
	wg.Wait()

	var visits [4]int
	for _, t := range trees {
		tv := t.DirVisits()
		for d := range visits {
			visits[d] += tv[d]
		}
	}

	best := game.Up
	bestVisits := 0
	for _, d := range game.Dirs {
		if v := visits[d]; v > bestVisits {
			bestVisits = v
			best = d
		}
	}
	if bestVisits == 0 {
		return s.FallbackMove(you)
	}
	return best
}
