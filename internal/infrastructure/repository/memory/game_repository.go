// Package memory holds map-backed repository implementations used by tests
// and local runs without a database.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dkearsley/afl-stats/internal/domain/game"
)

type GameRepository struct {
	mu      sync.RWMutex
	byID    map[string]game.Game
	byMatch map[string]string // date|home|away -> game id
}

func NewGameRepository(games []game.Game) *GameRepository {
	r := &GameRepository{
		byID:    make(map[string]game.Game),
		byMatch: make(map[string]string),
	}
	for _, g := range games {
		r.byID[g.GameID] = g
		r.byMatch[matchKey(g.Date, g.HomeTeam, g.AwayTeam)] = g.GameID
	}
	return r
}

func (r *GameRepository) Exists(_ context.Context, date, homeTeam, awayTeam string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byMatch[matchKey(date, homeTeam, awayTeam)]
	return ok, nil
}

// UpsertMany inserts games that are not yet stored and reports how many rows
// were actually written. Existing rows are left untouched.
func (r *GameRepository) UpsertMany(_ context.Context, games []game.Game) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, g := range games {
		if _, ok := r.byID[g.GameID]; ok {
			continue
		}
		r.byID[g.GameID] = g
		r.byMatch[matchKey(g.Date, g.HomeTeam, g.AwayTeam)] = g.GameID
		inserted++
	}
	return inserted, nil
}

func (r *GameRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func matchKey(date, homeTeam, awayTeam string) string {
	return fmt.Sprintf("%s|%s|%s", date, homeTeam, awayTeam)
}
