package main

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mfranzen/rattler/game"
)

// Wire types for the 2019 engine API. Coordinates are y-down and the
// board lists every living snake, ours included.

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

type infoResponse struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type startResponse struct {
	Color string `json:"color"`
}

type moveResponse struct {
	Move string `json:"move"`
}

// decodeRequest checks body against the request schema and unpacks it.
func decodeRequest(schema *jsonschema.Schema, body []byte) (*gameRequest, error) {
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
	return &req, nil
}

// convert builds the internal state from a validated request. Bodies
// shorter than the spawn length and a protagonist missing from the
// board are rejected here rather than left for a search to trip over.
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
