package stat

import "context"

// Repository describes stat persistence needs from the ingest pipeline.
// Exists is checked before scraping a row so reruns skip work already done.
// UpsertMany is do-nothing-on-conflict keyed by (GameID, PlayerID) and reports
// how many rows were actually written.
type Repository interface {
	Exists(ctx context.Context, gameID, playerID string) (bool, error)
	UpsertMany(ctx context.Context, stats []MatchStat) (int, error)
}
