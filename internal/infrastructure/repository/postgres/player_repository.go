package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dkearsley/afl-stats/internal/domain/player"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// FindByNameAndDOB looks a player up by natural key. A missing player is not
// an error; it returns (nil, nil) so callers can fall through to minting a
// new identity.
func (r *PlayerRepository) FindByNameAndDOB(ctx context.Context, displayName, dob string) (*player.Player, error) {
	const query = `SELECT player_id, display_name, dob, height, weight, position, origin
		FROM players WHERE display_name = $1 AND dob = $2`

	var row playerTableModel
	err := r.db.GetContext(ctx, &row, query, displayName, dob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select player by name and dob: %w", err)
	}

	p := playerFromModel(row)
	return &p, nil
}

const insertPlayerQuery = `INSERT INTO players (
	player_id, display_name, dob, height, weight, position, origin
) VALUES (
	:player_id, :display_name, :dob, :height, :weight, :position, :origin
) ON CONFLICT (player_id) DO NOTHING`

func (r *PlayerRepository) UpsertMany(ctx context.Context, players []player.Player) (int, error) {
	if len(players) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert players: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	inserted := 0
	for _, p := range players {
		if err := p.Validate(); err != nil {
			return 0, fmt.Errorf("validate player %s: %w", p.PlayerID, err)
		}

		res, err := tx.NamedExecContext(ctx, insertPlayerQuery, playerToModel(p))
		if err != nil {
			return 0, fmt.Errorf("insert player %s: %w", p.PlayerID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected for player %s: %w", p.PlayerID, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert players tx: %w", err)
	}
	return inserted, nil
}

func playerToModel(p player.Player) playerTableModel {
	return playerTableModel{
		PlayerID:    p.PlayerID,
		DisplayName: p.DisplayName,
		DOB:         p.DOB,
		Height:      p.Height,
		Weight:      p.Weight,
		Position:    p.Position,
		Origin:      p.Origin,
	}
}

func playerFromModel(row playerTableModel) player.Player {
	return player.Player{
		PlayerID:    row.PlayerID,
		DisplayName: row.DisplayName,
		DOB:         row.DOB,
		Height:      row.Height,
		Weight:      row.Weight,
		Position:    row.Position,
		Origin:      row.Origin,
	}
}
