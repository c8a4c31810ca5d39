// Debuggame inspects one move request offline: feed it the JSON a
// server received and it prints the board, each direction's safety and
// simulated outcome, and the move every registered strategy would pick.
// -dot additionally dumps a Monte-Carlo tree for graphviz.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mfranzen/rattler/game"
	"github.com/mfranzen/rattler/mcts"
	"github.com/mfranzen/rattler/rules"
	"github.com/mfranzen/rattler/schemas"
	"github.com/mfranzen/rattler/strategy"
)

// Wire types for the 2019 engine API, matching what the agent serves.

type gameRequest struct {
	Game  gameInfo  `json:"game"`
	Turn  int32     `json:"turn"`
	Board wireBoard `json:"board"`
	You   wireSnake `json:"you"`
}

type gameInfo struct {
	ID string `json:"id"`
}

type wireBoard struct {
	Height int32       `json:"height"`
	Width  int32       `json:"width"`
	Food   []wireCoord `json:"food"`
	Snakes []wireSnake `json:"snakes"`
}

type wireSnake struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Health int32       `json:"health"`
	Body   []wireCoord `json:"body"`
}

type wireCoord struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

func main() {
	budget := flag.Duration("budget", 450*time.Millisecond, "Per-strategy decision budget")
	trees := flag.Int("trees", 4, "Monte-Carlo trees per decision")
	names := flag.String("strategies", "", "Comma-separated strategies to ask (default: all)")
	dotPath := flag.String("dot", "", "Write a Monte-Carlo tree as graphviz DOT to this file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: debuggame [flags] <move-request.json>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	state, err := loadRequest(flag.Arg(0))
	if err != nil {
		log.Fatal("bad request file", "path", flag.Arg(0), "err", err)
	}

	printBoard(state)
	printDirections(state)
	printVerdicts(state, selected(*names), strategy.Options{Budget: *budget, Trees: *trees})

	if *dotPath != "" {
		if err := writeDOT(state, *dotPath, *budget); err != nil {
			log.Fatal("dot dump failed", "err", err)
		}
	}
}

func loadRequest(path string) (*game.State, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	schema, err := schemas.Request()
	if err != nil {
		return nil, err
	}
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate request: %w", err)
	}

	var req gameRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return convert(&req)
}

func convert(req *gameRequest) (*game.State, error) {
	s := &game.State{
		GameID: req.Game.ID,
		Width:  req.Board.Width,
		Height: req.Board.Height,
		YouID:  req.You.ID,
		Turn:   req.Turn,
	}

	s.Food = make([]game.Point, len(req.Board.Food))
	for i, f := range req.Board.Food {
		s.Food[i] = game.Point{X: f.X, Y: f.Y}
	}

	s.Snakes = make([]game.Snake, len(req.Board.Snakes))
	var found bool
	for i, ws := range req.Board.Snakes {
		if len(ws.Body) < 3 {
			return nil, fmt.Errorf("snake %s: body of %d segments", ws.ID, len(ws.Body))
		}
		sn := game.Snake{ID: ws.ID, Name: ws.Name, Health: ws.Health}
		sn.Body = make([]game.Point, len(ws.Body))
		for j, b := range ws.Body {
			sn.Body[j] = game.Point{X: b.X, Y: b.Y}
		}
		s.Snakes[i] = sn
		if ws.ID == req.You.ID {
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("snake %s not on the board", req.You.ID)
	}

	return s, nil
}

func printBoard(s *game.State) {
	fmt.Printf("game %s, turn %d, %dx%d board\n\n", s.GameID, s.Turn, s.Width, s.Height)
	fmt.Println(s.Render(s.YouID))

	enemy := 0
	for i := range s.Snakes {
		sn := &s.Snakes[i]
		glyph := byte('O')
		if sn.ID != s.YouID {
			glyph = 'A' + byte(enemy)
			enemy++
		}
		name := sn.Name
		if name == "" {
			name = sn.ID
		}
		fmt.Printf("%c %-24s len %-3d hp %d\n", glyph, name, sn.Len(), sn.Health)
	}
	fmt.Println()
}

// printDirections shows, for each of our moves, its safety class and
// the outcome of one simulated turn with every enemy playing its
// obvious tail-chasing move.
func printDirections(s *game.State) {
	chase, _ := strategy.New("tailchase", strategy.Options{})

	enemyMoves := make(map[string]game.Dir)
	for i := range s.Snakes {
		sn := &s.Snakes[i]
		if sn.ID != s.YouID {
			enemyMoves[sn.ID] = chase.Decide(s, sn.ID)
		}
	}

	fmt.Printf("%-6s %-7s %-7s %-8s %5s %5s %6s\n",
		"dir", "safety", "corner", "outcome", "dead", "food", "efood")
	for _, d := range game.Dirs {
		moves := make(map[string]game.Dir, len(enemyMoves)+1)
		for id, ed := range enemyMoves {
			moves[id] = ed
		}
		moves[s.YouID] = d

		_, out := rules.Advance(s, s.YouID, moves)
		outcome := "alive"
		switch {
		case !out.Alive:
			outcome = "dead"
		case out.Finished:
			outcome = "won"
		}
		corner := "-"
		if s.CornerRisky(s.YouID, d) {
			corner = "risky"
		}
		fmt.Printf("%-6s %-7s %-7s %-8s %5d %5d %6d\n",
			d, s.DirSafety(s.YouID, d), corner, outcome, out.DeadSnakes, out.Foods, out.EnemyFoods)
	}
	fmt.Println()
}

func printVerdicts(s *game.State, names []string, opts strategy.Options) {
	fmt.Printf("%-14s %-6s %s\n", "strategy", "move", "elapsed")
	for _, name := range names {
		strat, err := strategy.New(name, opts)
		if err != nil {
			log.Fatal("unknown strategy", "name", name, "err", err)
		}
		strat.Start(s, s.YouID)

		started := time.Now()
		d := strat.Decide(s, s.YouID)
		fmt.Printf("%-14s %-6s %s\n", name, d, time.Since(started).Round(time.Millisecond))
	}
	fmt.Println()
}

// writeDOT grows a fresh Monte-Carlo tree on the position for the full
// budget and dumps it for graphviz rendering.
func writeDOT(s *game.State, path string, budget time.Duration) error {
	if _, ok := s.NearestEnemy(s.YouID); !ok {
		return fmt.Errorf("position has no opponent to search against")
	}

	tree := mcts.New(s, s.YouID)
	if !tree.ExpandRoot() {
		return fmt.Errorf("no expandable moves at the root")
	}
	deadline := time.Now().Add(budget)
	for time.Now().Before(deadline) {
		tree.Step()
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := tree.WriteDOT(f); err != nil {
		return err
	}

	best, _ := tree.BestDir()
	visits := tree.DirVisits()
	log.Info("wrote tree", "path", path, "nodes", tree.Len(), "best", best,
		"up", visits[game.Up], "down", visits[game.Down],
		"left", visits[game.Left], "right", visits[game.Right])
	return nil
}

func selected(list string) []string {
	if list == "" {
		return strategy.Names()
	}
	var names []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
