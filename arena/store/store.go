// Package store archives finished arena matches as parquet batches and
// reads them back for reporting. Only the aggregate result of a match
// is kept; per-turn detail never leaves the runner.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// MatchRow is one finished match.
//
// Red and Blue are the competing strategy names by seat. Winner holds
// the winning strategy name, or the empty string when the match was a
// draw (mutual elimination or the turn cap). Seed reproduces the food
// placement of the match exactly.
type MatchRow struct {
	MatchID    string `parquet:"match_id,dict"`
	Red        string `parquet:"red,dict"`
	Blue       string `parquet:"blue,dict"`
	Winner     string `parquet:"winner,dict"`
	Turns      int32  `parquet:"turns"`
	Seed       int64  `parquet:"seed"`
	DurationMs int64  `parquet:"duration_ms"`
}

// WriteBatch writes one run's results as a parquet batch under outDir,
// named by write time so successive runs accumulate side by side. The
// file lands in outDir/tmp first and renames into place, so readers
// never observe a partially-written batch.
func WriteBatch(outDir string, rows []MatchRow) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("matches_%d.parquet", time.Now().UnixNano())
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "match_result_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}

	return finalPath, nil
}

// ReadDir loads every match batch under dir. A directory with no
// batches yields an empty slice, not an error.
func ReadDir(dir string) ([]MatchRow, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}

	var rows []MatchRow
	for _, path := range paths {
		batch, err := readBatch(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		rows = append(rows, batch...)
	}
	return rows, nil
}

func readBatch(path string) ([]MatchRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := parquet.NewGenericReader[MatchRow](f)
	defer reader.Close()

	var rows []MatchRow
	buf := make([]MatchRow, 256)
	for {
		n, err := reader.Read(buf)
		rows = append(rows, buf[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
	}
	return rows, nil
}

// Standing is one strategy's aggregate record across an archive.
type Standing struct {
	Strategy string
	Wins     int
	Losses   int
	Draws    int
	Turns    int64
}

// Played counts every match the strategy took part in.
func (s Standing) Played() int { return s.Wins + s.Losses + s.Draws }

// WinRate is wins over matches played, 0 for an empty record.
func (s Standing) WinRate() float64 {
	if s.Played() == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Played())
}

// Standings folds match rows into per-strategy records, best record
// first. Mirror matches credit the same strategy with both the win and
// the loss.
func Standings(rows []MatchRow) []Standing {
	byName := make(map[string]*Standing)
	record := func(name string) *Standing {
		st, ok := byName[name]
		if !ok {
			st = &Standing{Strategy: name}
			byName[name] = st
		}
		return st
	}

	for _, row := range rows {
		red, blue := record(row.Red), record(row.Blue)
		red.Turns += int64(row.Turns)
		blue.Turns += int64(row.Turns)

		switch row.Winner {
		case "":
			red.Draws++
			blue.Draws++
		case row.Red:
			red.Wins++
			blue.Losses++
		case row.Blue:
			blue.Wins++
			red.Losses++
		}
	}

	out := make([]Standing, 0, len(byName))
	for _, st := range byName {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		if out[i].Losses != out[j].Losses {
			return out[i].Losses < out[j].Losses
		}
		return out[i].Strategy < out[j].Strategy
	})
	return out
}
