package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mfranzen/rattler/config"
	"github.com/mfranzen/rattler/game"
	"github.com/mfranzen/rattler/profiler"
	"github.com/mfranzen/rattler/strategy"
)

const snakeName = "rattler"

// session is the per-game decision state: the configured strategy, the
// duel specialist for the auto route, and the opponent profiler. The
// mutex serializes turns; the searches are not reentrant.
type session struct {
	mu    sync.Mutex
	strat strategy.Strategy
	duel  strategy.Strategy
	prof  *profiler.Profiler
}

// pick returns the strategy answering this state. Auto sessions route
// head-to-head boards to the duel specialist.
func (g *session) pick(s *game.State) strategy.Strategy {
	if g.duel != nil && len(s.Snakes) == 2 {
		return g.duel
	}
	return g.strat
}

type server struct {
	cfg    config.Config
	schema *jsonschema.Schema

	mu       sync.Mutex
	sessions map[string]*session
}

func newServer(cfg config.Config, schema *jsonschema.Schema) *server {
	return &server{cfg: cfg, schema: schema, sessions: make(map[string]*session)}
}

func (sv *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", sv.handleIndex)
	mux.HandleFunc("/start", sv.handleStart)
	mux.HandleFunc("/move", sv.handleMove)
	mux.HandleFunc("/end", sv.handleEnd)
	return mux
}

// newSession builds the decision state for one game. The auto strategy
// plays the ensemble and swaps in alpha-beta for head-to-head boards.
func (sv *server) newSession() (*session, error) {
	opts := strategy.Options{Budget: sv.cfg.Budget.Std(), Trees: sv.cfg.Trees}

	name := sv.cfg.Strategy
	auto := name == "auto"
	if auto {
		name = "ensemble"
	}
	strat, err := strategy.New(name, opts)
	if err != nil {
		return nil, err
	}

	g := &session{strat: strat, prof: profiler.New()}
	if auto {
		if g.duel, err = strategy.New("alphabeta", opts); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// sessionFor returns the session for a game id, creating one on the fly
// when the engine restarted mid-game or /start never arrived.
func (sv *server) sessionFor(id string) (*session, error) {
	sv.mu.Lock()
	defer sv.mu.Unlock()

	if g, ok := sv.sessions[id]; ok {
		return g, nil
	}
	g, err := sv.newSession()
	if err != nil {
		return nil, err
	}
	sv.sessions[id] = g
	return g, nil
}

func (sv *server) dropSession(id string) {
	sv.mu.Lock()
	delete(sv.sessions, id)
	sv.mu.Unlock()
}

// readRequest drains, validates, and converts one engine POST.
func (sv *server) readRequest(r *http.Request) (*gameRequest, *game.State, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read body: %w", err)
	}
	req, err := decodeRequest(sv.schema, body)
	if err != nil {
		return nil, nil, err
	}
	state, err := convert(req)
	if err != nil {
		return req, nil, err
	}
	return req, state, nil
}

func (sv *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, infoResponse{Name: snakeName, Color: sv.cfg.Color})
}

func (sv *server) handleStart(w http.ResponseWriter, r *http.Request) {
	req, state, err := sv.readRequest(r)
	if err != nil {
		log.Warn("bad start request", "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sv.dropSession(req.Game.ID)
	g, err := sv.sessionFor(req.Game.ID)
	if err != nil {
		log.Error("session", "game", req.Game.ID, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	g.mu.Lock()
	g.strat.Start(state, state.YouID)
	if g.duel != nil {
		g.duel.Start(state, state.YouID)
	}
	g.mu.Unlock()

	log.Info("game start", "game", req.Game.ID, "snakes", len(req.Board.Snakes),
		"strategy", g.strat.Name())
	writeJSON(w, startResponse{Color: sv.cfg.Color})
}

// handleMove answers one turn. Every path out of here carries a
// direction: a malformed request earns the default left, and a session
// failure the fallback move.
func (sv *server) handleMove(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	req, state, err := sv.readRequest(r)
	if err != nil {
		log.Warn("bad move request", "err", err)
		writeJSON(w, moveResponse{Move: game.Left.String()})
		return
	}

	g, err := sv.sessionFor(req.Game.ID)
	if err != nil {
		log.Error("session", "game", req.Game.ID, "err", err)
		writeJSON(w, moveResponse{Move: state.FallbackMove(state.YouID).String()})
		return
	}

	g.mu.Lock()
	g.prof.Observe(state, state.YouID)
	strat := g.pick(state)
	if ap, ok := strat.(interface{ ApplyProfiles(map[string]string) }); ok {
		ap.ApplyProfiles(g.prof.Matches())
	}
	d := strat.Decide(state, state.YouID)
	g.mu.Unlock()

	log.Info("move", "game", req.Game.ID, "turn", req.Turn, "dir", d,
		"strategy", strat.Name(), "elapsed", time.Since(started))
	writeJSON(w, moveResponse{Move: d.String()})
}

func (sv *server) handleEnd(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Warn("bad end request", "err", err)
		w.WriteHeader(http.StatusOK)
		return
	}
	req, err := decodeRequest(sv.schema, body)
	if err != nil {
		log.Warn("bad end request", "err", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	sv.dropSession(req.Game.ID)

	// when we lost, the final board no longer lists us
	result := "lost"
	for _, ws := range req.Board.Snakes {
		if ws.ID == req.You.ID {
			result = "won"
		}
	}
	if len(req.Board.Snakes) == 0 {
		result = "draw"
	}

	log.Info("game over", "game", req.Game.ID, "turn", req.Turn, "result", result)
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("write response", "err", err)
	}
}
