package id

import (
	"crypto/rand"
	"fmt"
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// PlayerIDLength keeps minted identifiers short while making collisions
// negligible at the size of the player corpus.
const PlayerIDLength = 10

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// RandomGenerator mints short random alphanumeric identifiers.
type RandomGenerator struct {
	length int
}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{length: PlayerIDLength}
}

func (g *RandomGenerator) NewID() (string, error) {
	length := g.length
	if length <= 0 {
		length = PlayerIDLength
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}

	return string(buf), nil
}
