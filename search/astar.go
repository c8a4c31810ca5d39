// Package search implements A* over the board graph. Neighbors are the
// orthogonal cells that classify Safe or Risky for the searching snake,
// every step costs 1, and the manhattan distance guides the expansion.
package search

import (
	"container/heap"

	"github.com/mfranzen/rattler/game"
)

// Path returns the shortest path from start to goal, start inclusive.
// Reports false when the goal is unreachable.
func Path(s *game.State, you string, start, goal game.Point) ([]game.Point, bool) {
	return PathTo(s, you, start,
		func(p game.Point) int32 { return p.Manhattan(goal) },
		func(p game.Point) bool { return p == goal })
}

// PathTo returns the shortest path from start to the nearest point
// satisfying goal, start inclusive. The heuristic h must never
// overestimate the true remaining distance.
func PathTo(s *game.State, you string, start game.Point, h func(game.Point) int32, goal func(game.Point) bool) ([]game.Point, bool) {
	open := &openHeap{}
	seq := 0
	push := func(p game.Point, g int32) {
		heap.Push(open, &item{p: p, g: g, f: g + h(p), seq: seq})
		seq++
	}

	gScore := map[game.Point]int32{start: 0}
	came := map[game.Point]game.Point{}
	push(start, 0)

	for open.Len() > 0 {
		cur := heap.Pop(open).(*item)
		if cur.g > gScore[cur.p] {
			continue
		}
		if goal(cur.p) {
			return rebuild(came, start, cur.p), true
		}

		for _, q := range cur.p.Orthogonal() {
			if s.SafetyAt(q, you) == game.Unsafe {
				continue
			}
			g := cur.g + 1
			if best, ok := gScore[q]; ok && g >= best {
				continue
			}
			gScore[q] = g
			came[q] = cur.p
			push(q, g)
		}
	}

	return nil, false
}

func rebuild(came map[game.Point]game.Point, start, end game.Point) []game.Point {
	path := []game.Point{end}
	for end != start {
		end = came[end]
		path = append(path, end)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// item is an open-set entry. seq breaks f-score ties by insertion order
// so equal-cost searches expand the same way every run.
type item struct {
	p     game.Point
	f     int32
	g     int32
	seq   int
	index int
}

type openHeap []*item

func (h openHeap) Len() int { return len(h) }

func (h openHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}

func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *openHeap) Push(x any) {
	it := x.(*item)
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}
