// Package runner plays local matches between registered strategies and
// fans them out over a fixed worker pool. Matches run on the standard
// 11x11 board with engine-style food spawning, so a strategy's record
// here tracks how it behaves in ranked play.
package runner

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mfranzen/rattler/game"
	"github.com/mfranzen/rattler/rules"
	"github.com/mfranzen/rattler/strategy"
)

const (
	boardSize = 11

	// maxTurns caps stalemates: two snakes orbiting their own tails can
	// otherwise trade food forever. Hitting the cap scores as a draw.
	maxTurns = 500
)

// Seat ids inside a match. Red spawns top-left, blue bottom-right.
const (
	seatRed  = "red"
	seatBlue = "blue"
)

// Match is one scheduled pairing. Red and Blue name registered
// strategies; Seed fixes the food placement so the match can be
// replayed exactly.
type Match struct {
	Red  string
	Blue string
	Opts strategy.Options
	Seed int64
}

// Result is the outcome of one match.
type Result struct {
	MatchID string
	Red     string
	Blue    string
	Winner  string // winning strategy name, empty on a draw
	Turns   int32
	Seed    int64
	Elapsed time.Duration
	Err     error
}

// Play runs one match to completion. Both seats decide concurrently on
// private clones every turn, the way the live engine queries servers,
// then the turn resolves simultaneously. Cancelling ctx abandons the
// match between turns with Err set to the cause.
func Play(ctx context.Context, m Match) Result {
	res := Result{MatchID: uuid.NewString(), Red: m.Red, Blue: m.Blue, Seed: m.Seed}

	red, err := strategy.New(m.Red, m.Opts)
	if err != nil {
		res.Err = err
		return res
	}
	blue, err := strategy.New(m.Blue, m.Opts)
	if err != nil {
		res.Err = err
		return res
	}

	state := newBoard(res.MatchID, m.Seed, m.Red, m.Blue)
	rng := rand.New(rand.NewSource(m.Seed))

	seats := map[string]strategy.Strategy{seatRed: red, seatBlue: blue}
	names := map[string]string{seatRed: m.Red, seatBlue: m.Blue}
	for id, strat := range seats {
		strat.Start(state, id)
	}

	started := time.Now()
	for state.Turn < maxTurns && len(state.Snakes) > 1 {
		if err := ctx.Err(); err != nil {
			res.Err = err
			break
		}

		moves := make(map[string]game.Dir, len(state.Snakes))
		var mu sync.Mutex
		var wg sync.WaitGroup
		for _, sn := range state.Snakes {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				local := state.Clone()
				local.YouID = id
				d := seats[id].Decide(local, id)
				mu.Lock()
				moves[id] = d
				mu.Unlock()
			}(sn.ID)
		}
		wg.Wait()

		state, _ = rules.Step(state, moves)
		rules.SpawnFood(state, rng, rules.DefaultFoodSettings)
	}

	res.Turns = state.Turn
	res.Elapsed = time.Since(started)
	if res.Err == nil && len(state.Snakes) == 1 {
		res.Winner = names[state.Snakes[0].ID]
	}
	return res
}

// newBoard builds the opening position: both snakes stacked three deep
// in opposite corners, health full, minimum food already on the board.
func newBoard(matchID string, seed int64, redName, blueName string) *game.State {
	spawn := func(p game.Point) []game.Point {
		return []game.Point{p, p, p}
	}

	state := &game.State{
		GameID: matchID,
		Width:  boardSize,
		Height: boardSize,
		Snakes: []game.Snake{
			{ID: seatRed, Name: redName, Health: 100, Body: spawn(game.Point{X: 1, Y: 1})},
			{ID: seatBlue, Name: blueName, Health: 100, Body: spawn(game.Point{X: boardSize - 2, Y: boardSize - 2})},
		},
	}

	rules.SpawnFood(state, rand.New(rand.NewSource(seed)), rules.FoodSettings{
		MinimumFood:     rules.DefaultFoodSettings.MinimumFood,
		FoodSpawnChance: 0,
	})
	return state
}

// Run plays every match on workers goroutines, delivering results in
// completion order. The channel closes once all matches finish or ctx
// is cancelled.
func Run(ctx context.Context, workers int, matches []Match) <-chan Result {
	if workers < 1 {
		workers = 1
	}

	tasks := make(chan Match)
	results := make(chan Result, workers)

	go func() {
		defer close(tasks)
		for _, m := range matches {
			select {
			case tasks <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range tasks {
				select {
				case results <- Play(ctx, m):
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()
	return results
}

// Pairings builds a round-robin schedule: every strategy against every
// other in both seat orders, rounds times over, with one seed per
// match. A single name plays mirror matches against itself.
func Pairings(names []string, rounds int, opts strategy.Options, seed int64) []Match {
	var out []Match
	n := int64(0)
	for r := 0; r < rounds; r++ {
		for _, red := range names {
			for _, blue := range names {
				if red == blue && len(names) > 1 {
					continue
				}
				out = append(out, Match{Red: red, Blue: blue, Opts: opts, Seed: seed + n})
				n++
			}
		}
	}
	return out
}
