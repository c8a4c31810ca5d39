// Package strategy provides the move deciders the agent can play. Each
// strategy is a self-contained controller over a board state; the server
// instantiates one per game and asks it for a direction every turn.
package strategy

import (
	"fmt"
	"sort"
	"time"

	"github.com/mfranzen/rattler/game"
)

// Strategy decides moves for one snake across a single game.
type Strategy interface {
	// Start primes any per-game state before the first move request.
	Start(s *game.State, you string)
	// Decide returns the direction to move from s. It must always return
	// a direction, even on a board with no good options.
	Decide(s *game.State, you string) game.Dir
	// Name reports the registry name the strategy was built under.
	Name() string
}

// Options tunes the search strategies. The zero value picks the
// defaults used in ranked play.
type Options struct {
	// Budget is the wall-clock allowance per Decide call.
	Budget time.Duration
	// Trees is the number of independent search trees the Monte-Carlo
	// strategy advances concurrently.
	Trees int
}

const (
	defaultBudget = 450 * time.Millisecond
	defaultTrees  = 4
)

func (o Options) withDefaults() Options {
	if o.Budget <= 0 {
		o.Budget = defaultBudget
	}
	if o.Trees <= 0 {
		o.Trees = defaultTrees
	}
	return o
}

var factories = map[string]func(Options) Strategy{
	"straight":     func(Options) Strategy { return straight{} },
	"nearestfood":  func(Options) Strategy { return nearestFood{} },
	"nearestenemy": func(Options) Strategy { return nearestEnemy{} },
	"tailchase":    func(Options) Strategy { return tailChase{} },
	"follow":       func(Options) Strategy { return follow{} },
	"alphabeta":    func(o Options) Strategy { return newAlphaBeta(o) },
	"montecarlo":   func(o Options) Strategy { return newMonteCarlo(o) },
	"ensemble":     func(o Options) Strategy { return newEnsemble(o) },
}

// New builds the named strategy. Unknown names are an error so a typo in
// config surfaces at startup rather than as a silent default.
func New(name string, opts Options) (Strategy, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("strategy: unknown strategy %q (have %v)", name, Names())
	}
	return factory(opts.withDefaults()), nil
}

// Names lists the registered strategy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
