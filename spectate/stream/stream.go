// Package stream follows a public game over the engine's websocket
// event feed, decoding each frame into a board state as it arrives.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mfranzen/rattler/game"
)

// Config holds the engine connection knobs.
type Config struct {
	// EngineURL is a template with one %s slot for the game id.
	EngineURL      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		EngineURL:      "wss://engine.battlesnake.com/games/%s/events",
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    30 * time.Second,
	}
}

// Frame is one decoded turn of a spectated game. State holds the
// living snakes; Deaths maps eliminated snake names to their cause.
type Frame struct {
	Turn   int32
	State  *game.State
	Deaths map[string]string
}

// Client connects to engine event feeds.
type Client struct {
	config Config
}

func New(config Config) *Client {
	return &Client{config: config}
}

// Wire shapes of the engine's event feed.
type event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type gameInfo struct {
	Game struct {
		ID string `json:"id"`
	} `json:"game"`
	Board boardData `json:"board"`
}

type boardData struct {
	Width  int32 `json:"width"`
	Height int32 `json:"height"`
}

type frameData struct {
	Turn   int32       `json:"turn"`
	Snakes []snakeData `json:"snakes"`
	Food   []coord     `json:"food"`
	Board  boardData   `json:"board"`
}

type snakeData struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Health int32   `json:"health"`
	Body   []coord `json:"body"`
	Death  *death  `json:"death"`
}

type coord struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

type death struct {
	Cause string `json:"cause"`
	Turn  int32  `json:"turn"`
}

// Watch connects to gameID's event feed and delivers each frame on the
// returned channel. The channel closes when the game ends, the feed
// drops, or ctx is cancelled. Dial failures surface immediately.
func (c *Client) Watch(ctx context.Context, gameID string) (<-chan Frame, error) {
	feedURL := fmt.Sprintf(c.config.EngineURL, gameID)

	dialer := websocket.Dialer{HandshakeTimeout: c.config.ConnectTimeout}
	conn, _, err := dialer.DialContext(ctx, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", feedURL, err)
	}

	frames := make(chan Frame, 16)
	go func() {
		defer close(frames)
		defer conn.Close()

		stop := make(chan struct{})
		defer close(stop)
		go func() {
			select {
			case <-ctx.Done():
				// Unblocks the pending ReadMessage.
				_ = conn.Close()
			case <-stop:
			}
		}()

		var width, height int32
		for {
			_ = conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
			_, message, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var ev event
			if err := json.Unmarshal(message, &ev); err != nil {
				continue
			}

			switch ev.Type {
			case "game_info":
				var info gameInfo
				if err := json.Unmarshal(ev.Data, &info); err == nil && info.Board.Width > 0 {
					width, height = info.Board.Width, info.Board.Height
				}

			case "frame":
				var f frameData
				if err := json.Unmarshal(ev.Data, &f); err != nil {
					continue
				}
				if f.Board.Width > 0 {
					width, height = f.Board.Width, f.Board.Height
				}
				w, h := width, height
				if w <= 0 || h <= 0 {
					w, h = 11, 11
				}

				select {
				case frames <- toFrame(f, gameID, w, h):
				case <-ctx.Done():
					return
				}

			case "game_end":
				return
			}
		}
	}()

	return frames, nil
}

func toFrame(f frameData, gameID string, width, height int32) Frame {
	state := &game.State{
		GameID: gameID,
		Width:  width,
		Height: height,
		Turn:   f.Turn,
	}
	deaths := make(map[string]string)

	for _, sn := range f.Snakes {
		if sn.Death != nil || sn.Health <= 0 {
			cause := "unknown"
			if sn.Death != nil {
				cause = sn.Death.Cause
			}
			deaths[sn.Name] = cause
			continue
		}

		body := make([]game.Point, 0, len(sn.Body))
		for _, p := range sn.Body {
			body = append(body, flip(p, height))
		}
		state.Snakes = append(state.Snakes, game.Snake{
			ID:     sn.ID,
			Name:   sn.Name,
			Health: sn.Health,
			Body:   body,
		})
	}

	for _, p := range f.Food {
		state.Food = append(state.Food, flip(p, height))
	}

	return Frame{Turn: f.Turn, State: state, Deaths: deaths}
}

// flip converts the engine's bottom-left origin to the board model's
// top-left rows.
func flip(p coord, height int32) game.Point {
	return game.Point{X: p.X, Y: height - 1 - p.Y}
}
