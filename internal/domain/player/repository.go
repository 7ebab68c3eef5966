package player

import "context"

// Repository describes player persistence needs from the ingest pipeline.
// FindByNameAndDOB resolves the natural key against the store and returns nil
// when the player is unknown. UpsertMany is do-nothing-on-conflict keyed by
// PlayerID and reports how many rows were actually written.
type Repository interface {
	FindByNameAndDOB(ctx context.Context, displayName, dob string) (*Player, error)
	UpsertMany(ctx context.Context, players []Player) (int, error)
}
