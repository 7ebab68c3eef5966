// Package postgres implements the domain repositories on top of sqlx and the
// pq driver. Writes are batched: one transaction per UpsertMany call, with
// ON CONFLICT DO NOTHING so reruns never duplicate or overwrite rows.
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dkearsley/afl-stats/internal/domain/game"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) Exists(ctx context.Context, date, homeTeam, awayTeam string) (bool, error) {
	const query = `SELECT EXISTS (
		SELECT 1 FROM games WHERE date = $1 AND home_team = $2 AND away_team = $3
	)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, date, homeTeam, awayTeam); err != nil {
		return false, fmt.Errorf("check game exists: %w", err)
	}
	return exists, nil
}

const insertGameQuery = `INSERT INTO games (
	game_id, year, round_id, venue, date, start_time, attendance,
	home_team, home_team_score_qt, home_team_score_ht, home_team_score_3qt, home_team_score_ft, home_team_score,
	away_team, away_team_score_qt, away_team_score_ht, away_team_score_3qt, away_team_score_ft, away_team_score
) VALUES (
	:game_id, :year, :round_id, :venue, :date, :start_time, :attendance,
	:home_team, :home_team_score_qt, :home_team_score_ht, :home_team_score_3qt, :home_team_score_ft, :home_team_score,
	:away_team, :away_team_score_qt, :away_team_score_ht, :away_team_score_3qt, :away_team_score_ft, :away_team_score
) ON CONFLICT (game_id) DO NOTHING`

// UpsertMany writes the batch in one transaction and returns the number of
// rows the database actually accepted.
func (r *GameRepository) UpsertMany(ctx context.Context, games []game.Game) (int, error) {
	if len(games) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert games: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	inserted := 0
	for _, g := range games {
		if err := g.Validate(); err != nil {
			return 0, fmt.Errorf("validate game %s: %w", g.GameID, err)
		}

		res, err := tx.NamedExecContext(ctx, insertGameQuery, gameToModel(g))
		if err != nil {
			return 0, fmt.Errorf("insert game %s: %w", g.GameID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected for game %s: %w", g.GameID, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert games tx: %w", err)
	}
	return inserted, nil
}

func gameToModel(g game.Game) gameTableModel {
	return gameTableModel{
		GameID:         g.GameID,
		Year:           g.Year,
		RoundID:        g.RoundID,
		Venue:          g.Venue,
		Date:           g.Date,
		StartTime:      g.StartTime,
		Attendance:     g.Attendance,
		HomeTeam:       g.HomeTeam,
		HomeScoreQT:    g.HomeScoreQT,
		HomeScoreHT:    g.HomeScoreHT,
		HomeScore3QT:   g.HomeScore3QT,
		HomeScoreFT:    g.HomeScoreFT,
		HomeScoreFinal: g.HomeScoreFinal,
		AwayTeam:       g.AwayTeam,
		AwayScoreQT:    g.AwayScoreQT,
		AwayScoreHT:    g.AwayScoreHT,
		AwayScore3QT:   g.AwayScore3QT,
		AwayScoreFT:    g.AwayScoreFT,
		AwayScoreFinal: g.AwayScoreFinal,
	}
}
