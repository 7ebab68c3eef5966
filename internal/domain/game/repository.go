package game

import "context"

// Repository describes game persistence needs from the ingest pipeline.
// UpsertMany inserts with do-nothing-on-conflict semantics keyed by GameID and
// reports how many rows were actually written.
type Repository interface {
	Exists(ctx context.Context, date, homeTeam, awayTeam string) (bool, error)
	UpsertMany(ctx context.Context, games []Game) (int, error)
}
