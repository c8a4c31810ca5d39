package strategy

import (
	"github.com/mfranzen/rattler/game"
	"github.com/mfranzen/rattler/search"
)

// The heuristic strategies are stateless single-step controllers. They
// double as the building blocks of the ensemble simulator and as the
// behavior templates the profiler matches opponents against, so they
// must stay cheap and deterministic.

// Heuristic resolves one of the single-step controllers by registry
// name. Unlike New it cannot return a search strategy, which makes it
// safe to call with profiler output.
func Heuristic(name string) (Strategy, bool) {
	switch name {
	case "straight":
		return straight{}, true
	case "nearestfood":
		return nearestFood{}, true
	case "nearestenemy":
		return nearestEnemy{}, true
	case "tailchase":
		return tailChase{}, true
	case "follow":
		return follow{}, true
	}
	return nil, false
}

// straight keeps the current heading until it stops being Safe, then
// takes any safe move and resumes going straight from there.
type straight struct{}

func (straight) Start(*game.State, string) {}
func (straight) Name() string              { return "straight" }

func (straight) Decide(s *game.State, you string) game.Dir {
	me := s.MustSnake(you)
	if d, ok := me.Heading(); ok && s.DirSafety(you, d) == game.Safe {
		return d
	}
	return s.FallbackMove(you)
}

// nearestFood walks an A* path to the closest food, falling back to any
// safe move when no food is reachable.
type nearestFood struct{}

func (nearestFood) Start(*game.State, string) {}
func (nearestFood) Name() string              { return "nearestfood" }

func (nearestFood) Decide(s *game.State, you string) game.Dir {
	me := s.MustSnake(you)
	if food, ok := s.NearestFood(me.Head()); ok {
		if path, ok := search.Path(s, you, me.Head(), food); ok && len(path) > 1 {
			if d, ok := me.Head().DirTo(path[1]); ok {
				return d
			}
		}
	}
	return s.FallbackMove(you)
}

// tailChase paths to its own tail tip. Staying close to the tail keeps
// the escape route open, which makes this the survival baseline.
type tailChase struct{}

func (tailChase) Start(*game.State, string) {}
func (tailChase) Name() string              { return "tailchase" }

func (tailChase) Decide(s *game.State, you string) game.Dir {
	me := s.MustSnake(you)
	if path, ok := search.Path(s, you, me.Head(), me.Tail()); ok && len(path) > 1 {
		if d, ok := me.Head().DirTo(path[1]); ok {
			return d
		}
	}
	return s.FallbackMove(you)
}

// follow shadows the nearest enemy by pathing to its tail tip.
type follow struct{}

func (follow) Start(*game.State, string) {}
func (follow) Name() string              { return "follow" }

func (follow) Decide(s *game.State, you string) game.Dir {
	me := s.MustSnake(you)
	if enemy, ok := s.NearestEnemy(you); ok {
		if path, ok := search.Path(s, you, me.Head(), enemy.Tail()); ok && len(path) > 1 {
			if d, ok := me.Head().DirTo(path[1]); ok {
				return d
			}
		}
	}
	return s.FallbackMove(you)
}

// nearestEnemy hunts the closest strictly shorter enemy by predicting
// where it will flee next turn and pathing to that cell. The cutover
// move is only taken when it is fully Safe; anything less falls back.
type nearestEnemy struct{}

func (nearestEnemy) Start(*game.State, string) {}
func (nearestEnemy) Name() string              { return "nearestenemy" }

func (nearestEnemy) Decide(s *game.State, you string) game.Dir {
	me := s.MustSnake(you)
	if enemy, ok := s.NearestEnemy(you); ok && enemy.Len() < me.Len() {
		target := s.FallbackMove(enemy.ID).Apply(enemy.Head())
		if path, ok := search.Path(s, you, me.Head(), target); ok && len(path) > 1 {
			if d, ok := me.Head().DirTo(path[1]); ok && s.DirSafety(you, d) == game.Safe {
				return d
			}
		}
	}
	return s.FallbackMove(you)
}
