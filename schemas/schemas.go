// Package schemas embeds the wire format contracts and compiles them
// for request validation at the HTTP boundary.
package schemas

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed request.json
var files embed.FS

// Request compiles the schema for the game state payload the engine
// posts to /start, /move, and /end.
func Request() (*jsonschema.Schema, error) {
	data, err := files.ReadFile("request.json")
	if err != nil {
		return nil, fmt.Errorf("schemas: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("request.json", bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("schemas: add resource: %w", err)
	}
	s, err := c.Compile("request.json")
	if err != nil {
		return nil, fmt.Errorf("schemas: compile: %w", err)
	}
	return s, nil
}
