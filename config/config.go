// Package config loads the agent configuration from YAML, with runtime
// environment overrides for the fields hosting platforms set.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML accepts the usual 450ms form.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("bad duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config carries every tunable the agent reads. Fields absent from the
// file keep their defaults, so a partial file works.
type Config struct {
	Addr     string   `yaml:"addr"`
	Color    string   `yaml:"color"`
	Strategy string   `yaml:"strategy"`
	Budget   Duration `yaml:"budget"`
	Trees    int      `yaml:"trees"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Addr:     ":9000",
		Color:    "#DEA584",
		Strategy: "auto",
		Budget:   Duration(450 * time.Millisecond),
		Trees:    4,
	}
}

// Load reads path over the defaults and then applies the PORT and COLOR
// environment overrides. A missing file is not an error; the defaults
// stand alone.
func Load(path string) (Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	if color := os.Getenv("COLOR"); color != "" {
		c.Color = color
	}
	return c, nil
}
