package seedtool

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/pokeatlas/syncbridge/internal/domain/model"
	"github.com/pokeatlas/syncbridge/pkg/logger"
)

// Constants for random generation.
const (
	percentDivisor = 100
	releaseDivisor = 5
)

// pokemonNames maps a handful of well-known dex entries used for seeding.
var pokemonNames = map[int]string{
	1:   "bulbasaur",
	4:   "charmander",
	7:   "squirtle",
	25:  "pikachu",
	39:  "jigglypuff",
	52:  "meowth",
	54:  "psyduck",
	94:  "gengar",
	129: "magikarp",
	131: "lapras",
	133: "eevee",
	143: "snorlax",
	150: "mewtwo",
	151: "mew",
}

// seededIDs is the flat list of dex ids the generator draws from.
var seededIDs = func() []int {
	ids := make([]int, 0, len(pokemonNames))
	for id := range pokemonNames {
		ids = append(ids, id)
	}
	return ids
}()

// randomInt returns a random int in [0, max) using crypto/rand.
func randomInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// generateCaptures creates the requested number of captures, injecting
// back-to-back repeats at the configured rate so the bridge's dedup
// window gets exercised.
func generateCaptures(ctx context.Context, config *Config, stats *Stats) []Capture {
	logger.Get().Info(ctx, "generating captures",
		logger.Int("numCaptures", config.NumCaptures),
		logger.Int("duplicatePct", config.DuplicatePct))

	captures := make([]Capture, 0, config.NumCaptures)
	for len(captures) < config.NumCaptures {
		c := generateSingleCapture()
		captures = append(captures, c)

		// Simulate a UI double-tap by repeating the exact event.
		if len(captures) < config.NumCaptures && randomInt(percentDivisor) < config.DuplicatePct {
			captures = append(captures, c)
		}
	}

	stats.CapturesGenerated = len(captures)
	logger.Get().Info(ctx, "generated captures successfully", logger.Int("count", len(captures)))

	return captures
}

// generateSingleCapture creates a single capture for a random dex entry.
func generateSingleCapture() Capture {
	id := seededIDs[randomInt(len(seededIDs))]

	action := string(model.ActionCapture)
	removed := false
	if randomInt(releaseDivisor) == 0 {
		action = string(model.ActionRelease)
		removed = true
	}

	return Capture{
		PokemonID:   id,
		PokemonName: pokemonNames[id],
		Action:      action,
		Removed:     removed,
	}
}
