package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mfranzen/rattler/config"
	"github.com/mfranzen/rattler/game"
	"github.com/mfranzen/rattler/schemas"
)

func testServer(t *testing.T, strat string) *server {
	t.Helper()
	schema, err := schemas.Request()
	if err != nil {
		t.Fatalf("schemas.Request: %v", err)
	}
	cfg := config.Default()
	cfg.Strategy = strat
	return newServer(cfg, schema)
}

func post(t *testing.T, sv *server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	sv.routes().ServeHTTP(w, req)
	return w
}

func moveOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp moveResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return resp.Move
}

func TestIndexReportsInfo(t *testing.T) {
	sv := testServer(t, "nearestfood")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	sv.routes().ServeHTTP(w, req)

	var info infoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode info: %v", err)
	}
	if info.Name != "rattler" || info.Color != "#DEA584" {
		t.Errorf("info = %+v", info)
	}

	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	w = httptest.NewRecorder()
	sv.routes().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET /nope = %d, want 404", w.Code)
	}
}

func TestStartAnswersColorAndCreatesSession(t *testing.T) {
	sv := testServer(t, "nearestfood")

	w := post(t, sv, "/start", moveBody)
	if w.Code != http.StatusOK {
		t.Fatalf("start = %d: %s", w.Code, w.Body.String())
	}
	var resp startResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode start: %v", err)
	}
	if resp.Color != "#DEA584" {
		t.Errorf("color = %q", resp.Color)
	}
	if _, ok := sv.sessions["g1"]; !ok {
		t.Error("no session created for g1")
	}
}

func TestMoveAnswersDirection(t *testing.T) {
	sv := testServer(t, "nearestfood")

	// no /start first: the session is created on the fly
	w := post(t, sv, "/move", moveBody)
	if w.Code != http.StatusOK {
		t.Fatalf("move = %d: %s", w.Code, w.Body.String())
	}
	if got := moveOf(t, w); got != "up" {
		t.Errorf("move = %q, want up toward the food", got)
	}
	if _, ok := sv.sessions["g1"]; !ok {
		t.Error("move did not create the missing session")
	}
}

func TestMoveFallsBackLeftOnMalformedInput(t *testing.T) {
	sv := testServer(t, "nearestfood")

	shortBody := strings.ReplaceAll(moveBody,
		`[{"x": 5, "y": 6}, {"x": 5, "y": 7}, {"x": 5, "y": 8}]`,
		`[{"x": 5, "y": 6}, {"x": 5, "y": 7}]`)

	for name, body := range map[string]string{
		"garbage":     "{",
		"no you":      `{"game": {"id": "g"}, "turn": 0, "board": {"height": 11, "width": 11, "food": [], "snakes": []}}`,
		"short torso": shortBody,
	} {
		w := post(t, sv, "/move", body)
		if w.Code != http.StatusOK {
			t.Errorf("%s: code = %d", name, w.Code)
		}
		if got := moveOf(t, w); got != "left" {
			t.Errorf("%s: move = %q, want the default left", name, got)
		}
	}
}

func TestEndDropsSession(t *testing.T) {
	sv := testServer(t, "nearestfood")

	post(t, sv, "/move", moveBody)
	if len(sv.sessions) != 1 {
		t.Fatalf("sessions = %d before end", len(sv.sessions))
	}

	endBody := strings.Replace(moveBody,
		`{"id": "me", "name": "rattler", "health": 80,
			 "body": [{"x": 5, "y": 6}, {"x": 5, "y": 7}, {"x": 5, "y": 8}]},
			`, "", 1)
	w := post(t, sv, "/end", endBody)
	if w.Code != http.StatusOK {
		t.Fatalf("end = %d", w.Code)
	}
	if len(sv.sessions) != 0 {
		t.Errorf("sessions = %d after end, want 0", len(sv.sessions))
	}
}

func TestAutoRoutesDuelsToAlphaBeta(t *testing.T) {
	sv := testServer(t, "auto")
	g, err := sv.newSession()
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	if g.duel == nil {
		t.Fatal("auto session has no duel specialist")
	}

	duel := &game.State{Snakes: make([]game.Snake, 2)}
	if got := g.pick(duel).Name(); got != "alphabeta" {
		t.Errorf("two snakes -> %s, want alphabeta", got)
	}
	crowd := &game.State{Snakes: make([]game.Snake, 3)}
	if got := g.pick(crowd).Name(); got != "ensemble" {
		t.Errorf("three snakes -> %s, want ensemble", got)
	}

	fixed, err := testServer(t, "montecarlo").newSession()
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	if fixed.duel != nil {
		t.Error("fixed strategy session grew a duel specialist")
	}
	if got := fixed.pick(duel).Name(); got != "montecarlo" {
		t.Errorf("fixed strategy -> %s, want montecarlo", got)
	}
}
