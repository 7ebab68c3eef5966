package memory

import (
	"context"
	"sync"

	"github.com/dkearsley/afl-stats/internal/domain/stat"
)

type statKey struct {
	gameID   string
	playerID string
}

type StatRepository struct {
	mu   sync.RWMutex
	rows map[statKey]stat.MatchStat
}

func NewStatRepository(stats []stat.MatchStat) *StatRepository {
	r := &StatRepository{rows: make(map[statKey]stat.MatchStat)}
	for _, s := range stats {
		r.rows[statKey{gameID: s.GameID, playerID: s.PlayerID}] = s
	}
	return r
}

func (r *StatRepository) Exists(_ context.Context, gameID, playerID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rows[statKey{gameID: gameID, playerID: playerID}]
	return ok, nil
}

func (r *StatRepository) UpsertMany(_ context.Context, stats []stat.MatchStat) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, s := range stats {
		key := statKey{gameID: s.GameID, playerID: s.PlayerID}
		if _, ok := r.rows[key]; ok {
			continue
		}
		r.rows[key] = s
		inserted++
	}
	return inserted, nil
}

func (r *StatRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}
