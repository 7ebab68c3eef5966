package scrape

import (
	"fmt"
	"sync"

	"github.com/dkearsley/afl-stats/internal/domain/player"
)

// PlayerTracker caches natural-key resolutions for the life of a run, so a
// player appearing in several matches is resolved (store lookup plus profile
// scrape) exactly once. An empty cached ID records an unresolvable player and
// stops reruns of the same miss within the run.
type PlayerTracker struct {
	mu       sync.Mutex
	resolved map[player.Key]string
}

func NewPlayerTracker() *PlayerTracker {
	return &PlayerTracker{resolved: make(map[player.Key]string)}
}

// Lookup returns the cached player ID for the key, if any resolution (even a
// failed one) happened this run.
func (t *PlayerTracker) Lookup(key player.Key) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, ok := t.resolved[key]
	return id, ok
}

// Store records the outcome of a resolution. First write wins so concurrent
// resolvers of the same key converge on one ID.
func (t *PlayerTracker) Store(key player.Key, playerID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.resolved[key]; ok && existing != "" {
		return existing
	}
	t.resolved[key] = playerID
	return playerID
}

func (t *PlayerTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.resolved)
}

// RoundCounter hands out per-round match sequence numbers for game IDs.
//
// The counter lives only for the run. IDs stay stable across runs only while
// matches are processed in the same relative order within a round; a rerun
// that skips already-stored matches can drift the sequence. Known limitation,
// kept as-is until a durable natural-key index replaces it.
type RoundCounter struct {
	mu   sync.Mutex
	next map[string]int
}

func NewRoundCounter() *RoundCounter {
	return &RoundCounter{next: make(map[string]int)}
}

// Next increments and returns the sequence number for the round, starting at 1.
func (c *RoundCounter) Next(round string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.next[round]++
	return c.next[round]
}

// GameID builds the synthesized game identifier, zero-padding round and
// sequence to two digits: 2025R0503 is round 5, third match processed.
func GameID(year string, round, seq int) string {
	return fmt.Sprintf("%sR%02d%02d", year, round, seq)
}
