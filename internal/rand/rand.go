// Package rand generates short random identifiers for stores that do not
// assign their own.
package rand

import (
	cryptorand "crypto/rand"
	"fmt"
	"math/rand/v2"
	"sync"
)

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ids is seeded once from the system source.
var ids = newGenerator()

type generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newGenerator() *generator {
	var seed [32]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		panic(fmt.Sprintf("seeding identifier generator: %v", err))
	}
	//nolint:gosec // ids are not secrets
	return &generator{rng: rand.New(rand.NewChaCha8(seed))}
}

func (g *generator) id(length int) string {
	out := make([]byte, length)

	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range out {
		out[i] = charset[g.rng.IntN(len(charset))]
	}
	return string(out)
}

// NewID returns a base62 identifier of the given length with every
// character equally likely.
func NewID(length int) string {
	return ids.id(length)
}
