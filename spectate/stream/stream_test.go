package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mfranzen/rattler/game"
)

var upgrader = websocket.Upgrader{}

// feedServer upgrades the events endpoint and plays the scripted
// events. With hold set it then keeps the connection open until the
// client drops it.
func feedServer(t *testing.T, wantPath string, events []any, hold bool) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != wantPath {
			t.Errorf("feed requested %s, want %s", r.URL.Path, wantPath)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		for _, ev := range events {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
		if hold {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func wsConfig(ts *httptest.Server) Config {
	return Config{
		EngineURL:      "ws" + strings.TrimPrefix(ts.URL, "http") + "/games/%s/events",
		ConnectTimeout: 2 * time.Second,
		ReadTimeout:    2 * time.Second,
	}
}

func infoEvent(width, height int) map[string]any {
	return map[string]any{
		"type": "game_info",
		"data": map[string]any{
			"game":  map[string]any{"id": "g-1"},
			"board": map[string]any{"width": width, "height": height},
		},
	}
}

var endEvent = map[string]any{"type": "game_end", "data": map[string]any{}}

func TestWatchDecodesAndFlipsFrames(t *testing.T) {
	frame0 := map[string]any{
		"type": "frame",
		"data": map[string]any{
			"turn": 0,
			"food": []map[string]any{{"x": 0, "y": 0}},
			"snakes": []map[string]any{
				{"id": "s1", "name": "alpha", "health": 100,
					"body": []map[string]any{{"x": 2, "y": 0}, {"x": 2, "y": 1}}},
				{"id": "s2", "name": "beta", "health": 90,
					"body": []map[string]any{{"x": 4, "y": 4}}},
			},
		},
	}
	frame1 := map[string]any{
		"type": "frame",
		"data": map[string]any{
			"turn": 1,
			"snakes": []map[string]any{
				{"id": "s1", "name": "alpha", "health": 99,
					"body": []map[string]any{{"x": 3, "y": 0}, {"x": 2, "y": 0}}},
				{"id": "s2", "name": "beta", "health": 0,
					"body": []map[string]any{{"x": 4, "y": 4}},
					"death": map[string]any{"cause": "wall-collision", "turn": 1}},
			},
		},
	}
	ts := feedServer(t, "/games/g-1/events",
		[]any{infoEvent(5, 5), frame0, frame1, endEvent}, false)

	frames, err := New(wsConfig(ts)).Watch(context.Background(), "g-1")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	var got []Frame
	for f := range frames {
		got = append(got, f)
	}
	if len(got) != 2 {
		t.Fatalf("streamed %d frames, want 2", len(got))
	}

	first := got[0]
	s := first.State
	if first.Turn != 0 || s.Turn != 0 {
		t.Errorf("first frame turn %d/%d, want 0", first.Turn, s.Turn)
	}
	if s.GameID != "g-1" || s.Width != 5 || s.Height != 5 {
		t.Errorf("board %q %dx%d, want g-1 5x5", s.GameID, s.Width, s.Height)
	}
	if len(s.Snakes) != 2 {
		t.Fatalf("%d living snakes on turn 0, want 2", len(s.Snakes))
	}
	if head := s.Snakes[0].Head(); head != (game.Point{X: 2, Y: 4}) {
		t.Errorf("alpha head %v, want engine (2,0) flipped to (2,4)", head)
	}
	if neck := s.Snakes[0].Body[1]; neck != (game.Point{X: 2, Y: 3}) {
		t.Errorf("alpha neck %v, want engine (2,1) flipped to (2,3)", neck)
	}
	if len(s.Food) != 1 || s.Food[0] != (game.Point{X: 0, Y: 4}) {
		t.Errorf("food %v, want engine (0,0) flipped to (0,4)", s.Food)
	}
	if len(first.Deaths) != 0 {
		t.Errorf("deaths on turn 0: %v", first.Deaths)
	}

	second := got[1]
	if second.Turn != 1 {
		t.Errorf("second frame turn %d, want 1", second.Turn)
	}
	if len(second.State.Snakes) != 1 || second.State.Snakes[0].Name != "alpha" {
		t.Errorf("living snakes on turn 1 = %+v, want alpha only", second.State.Snakes)
	}
	if second.Deaths["beta"] != "wall-collision" {
		t.Errorf("beta's death = %q, want wall-collision", second.Deaths["beta"])
	}
}

func TestWatchDefaultsBoardSize(t *testing.T) {
	bare := map[string]any{
		"type": "frame",
		"data": map[string]any{
			"turn": 0,
			"snakes": []map[string]any{
				{"id": "s1", "name": "alpha", "health": 100,
					"body": []map[string]any{{"x": 0, "y": 0}}},
			},
		},
	}
	ts := feedServer(t, "/games/g-3/events", []any{bare, endEvent}, false)

	frames, err := New(wsConfig(ts)).Watch(context.Background(), "g-3")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	var got []Frame
	for f := range frames {
		got = append(got, f)
	}
	if len(got) != 1 {
		t.Fatalf("streamed %d frames, want 1", len(got))
	}
	s := got[0].State
	if s.Width != 11 || s.Height != 11 {
		t.Errorf("board %dx%d without size info, want the 11x11 default", s.Width, s.Height)
	}
	if head := s.Snakes[0].Head(); head != (game.Point{X: 0, Y: 10}) {
		t.Errorf("head %v, want engine (0,0) flipped to (0,10)", head)
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	frame0 := map[string]any{
		"type": "frame",
		"data": map[string]any{"turn": 0, "snakes": []map[string]any{}},
	}
	ts := feedServer(t, "/games/g-2/events", []any{frame0}, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := wsConfig(ts)
	cfg.ReadTimeout = 30 * time.Second

	frames, err := New(cfg).Watch(ctx, "g-2")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	select {
	case f, ok := <-frames:
		if !ok {
			t.Fatal("stream closed before any frame")
		}
		if f.Turn != 0 {
			t.Fatalf("turn %d, want 0", f.Turn)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no frame arrived before cancel")
	}

	cancel()

	select {
	case _, ok := <-frames:
		if ok {
			t.Fatal("unexpected extra frame after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after cancel")
	}
}

func TestWatchDialFailureSurfaces(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	if _, err := New(wsConfig(ts)).Watch(context.Background(), "gone"); err == nil {
		t.Fatal("expected a dial error for an unreachable engine")
	}
}
