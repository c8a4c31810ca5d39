package rules

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"

	"github.com/mfranzen/rattler/game"
)

// FoodSettings matches the common engine knobs: keep at least MinimumFood
// on the board after every turn, and roll FoodSpawnChance (0-100) for one
// extra piece. Engine defaults are 1 and 15.
//
// Callers pick the randomness: a live rng for varied matches, or nil for
// a deterministic roll derived from the state, which keeps replays and
// tests stable.
type FoodSettings struct {
	MinimumFood     int
	FoodSpawnChance int
}

var DefaultFoodSettings = FoodSettings{MinimumFood: 1, FoodSpawnChance: 15}

// SpawnFood applies the food rules to the state in place.
func SpawnFood(state *game.State, rng *rand.Rand, settings FoodSettings) {
	spawnFood(state, rng, settings, 0x464F4F445F494E49)
}

func spawnFood(state *game.State, rng *rand.Rand, settings FoodSettings, salt uint64) {
	if state == nil || state.Width <= 0 || state.Height <= 0 {
		return
	}
	if settings.MinimumFood < 0 {
		settings.MinimumFood = 0
	}
	if settings.FoodSpawnChance < 0 {
		settings.FoodSpawnChance = 0
	}
	if settings.FoodSpawnChance > 100 {
		settings.FoodSpawnChance = 100
	}

	// Decide whether anything spawns before building the free-cell list.
	deficit := settings.MinimumFood - len(state.Food)
	if deficit < 0 {
		deficit = 0
	}

	spawnExtra := false
	if settings.FoodSpawnChance > 0 {
		if rng != nil {
			spawnExtra = rng.Intn(100) < settings.FoodSpawnChance
		} else {
			spawnExtra = int(stateHash(state, salt)%100) < settings.FoodSpawnChance
		}
	}

	toSpawn := deficit
	if spawnExtra {
		toSpawn++
	}
	if toSpawn == 0 {
		return
	}

	if rng == nil {
		seed := int64(stateHash(state, salt))
		if seed == 0 {
			seed = 1
		}
		rng = rand.New(rand.NewSource(seed))
	}

	occupied := make(map[game.Point]struct{}, int(state.Width*state.Height))
	for _, sn := range state.Snakes {
		if sn.Health <= 0 {
			continue
		}
		for _, p := range sn.Body {
			occupied[p] = struct{}{}
		}
	}
	for _, f := range state.Food {
		occupied[f] = struct{}{}
	}

	available := make([]game.Point, 0, int(state.Width*state.Height))
	for y := int32(0); y < state.Height; y++ {
		for x := int32(0); x < state.Width; x++ {
			p := game.Point{X: x, Y: y}
			if _, ok := occupied[p]; ok {
				continue
			}
			available = append(available, p)
		}
	}

	spawnOne := func() {
		if len(available) == 0 {
			return
		}
		i := rng.Intn(len(available))
		state.Food = append(state.Food, available[i])
		available[i] = available[len(available)-1]
		available = available[:len(available)-1]
	}

	for deficit > 0 {
		spawnOne()
		deficit--
		if len(available) == 0 {
			break
		}
	}

	if spawnExtra {
		spawnOne()
	}
}

// stateHash is intentionally cheap: turn, board size, head positions and
// food count are enough to vary the deterministic rolls between turns.
func stateHash(state *game.State, salt uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(uint32(state.Width))|(uint64(uint32(state.Height))<<32))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(uint32(state.Turn)))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], salt)
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(len(state.Food)))
	_, _ = h.Write(buf[:])

	for _, sn := range state.Snakes {
		if sn.Health <= 0 || len(sn.Body) == 0 {
			continue
		}
		_, _ = h.Write([]byte(sn.ID))
		head := sn.Body[0]
		binary.LittleEndian.PutUint64(buf[:], (uint64(uint32(head.X))<<32)|uint64(uint32(head.Y)))
		_, _ = h.Write(buf[:])
	}

	return h.Sum64()
}
