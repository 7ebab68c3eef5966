package memory

import (
	"context"
	"sync"

	"github.com/dkearsley/afl-stats/internal/domain/player"
)

type PlayerRepository struct {
	mu    sync.RWMutex
	byID  map[string]player.Player
	byKey map[player.Key]string // natural key -> player id
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	r := &PlayerRepository{
		byID:  make(map[string]player.Player),
		byKey: make(map[player.Key]string),
	}
	for _, p := range players {
		r.byID[p.PlayerID] = p
		r.byKey[p.NaturalKey()] = p.PlayerID
	}
	return r
}

func (r *PlayerRepository) FindByNameAndDOB(_ context.Context, displayName, dob string) (*player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[player.Key{DisplayName: displayName, DOB: dob}]
	if !ok {
		return nil, nil
	}
	p := r.byID[id]
	return &p, nil
}

func (r *PlayerRepository) UpsertMany(_ context.Context, players []player.Player) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, p := range players {
		if _, ok := r.byID[p.PlayerID]; ok {
			continue
		}
		r.byID[p.PlayerID] = p
		r.byKey[p.NaturalKey()] = p.PlayerID
		inserted++
	}
	return inserted, nil
}

func (r *PlayerRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
