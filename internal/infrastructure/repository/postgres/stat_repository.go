package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dkearsley/afl-stats/internal/domain/stat"
)

type StatRepository struct {
	db *sqlx.DB
}

func NewStatRepository(db *sqlx.DB) *StatRepository {
	return &StatRepository{db: db}
}

func (r *StatRepository) Exists(ctx context.Context, gameID, playerID string) (bool, error) {
	const query = `SELECT EXISTS (
		SELECT 1 FROM stats WHERE game_id = $1 AND player_id = $2
	)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, gameID, playerID); err != nil {
		return false, fmt.Errorf("check stat exists: %w", err)
	}
	return exists, nil
}

const insertStatQuery = `INSERT INTO stats (
	player_id, game_id, player_name, team, year, round_id,
	kicks, marks, handballs, disposals, goals, behinds, hitouts, tackles,
	rebound_50s, inside_50s, clearances, clangers, free_kicks_for, free_kicks_against,
	brownlow_votes, contested_possessions, uncontested_possessions, contested_marks,
	marks_inside_50, one_percenters, bounces, goal_assists, percent_played
) VALUES (
	:player_id, :game_id, :player_name, :team, :year, :round_id,
	:kicks, :marks, :handballs, :disposals, :goals, :behinds, :hitouts, :tackles,
	:rebound_50s, :inside_50s, :clearances, :clangers, :free_kicks_for, :free_kicks_against,
	:brownlow_votes, :contested_possessions, :uncontested_possessions, :contested_marks,
	:marks_inside_50, :one_percenters, :bounces, :goal_assists, :percent_played
) ON CONFLICT (player_id, game_id) DO NOTHING`

func (r *StatRepository) UpsertMany(ctx context.Context, stats []stat.MatchStat) (int, error) {
	if len(stats) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert stats: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	inserted := 0
	for _, s := range stats {
		if err := s.Validate(); err != nil {
			return 0, fmt.Errorf("validate stat %s/%s: %w", s.GameID, s.PlayerID, err)
		}

		res, err := tx.NamedExecContext(ctx, insertStatQuery, statToModel(s))
		if err != nil {
			return 0, fmt.Errorf("insert stat %s/%s: %w", s.GameID, s.PlayerID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected for stat %s/%s: %w", s.GameID, s.PlayerID, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert stats tx: %w", err)
	}
	return inserted, nil
}

func statToModel(s stat.MatchStat) statTableModel {
	return statTableModel{
		PlayerID:   s.PlayerID,
		GameID:     s.GameID,
		PlayerName: s.PlayerName,
		Team:       s.Team,
		Year:       s.Year,
		RoundID:    s.RoundID,

		Kicks:                  s.Kicks,
		Marks:                  s.Marks,
		Handballs:              s.Handballs,
		Disposals:              s.Disposals,
		Goals:                  s.Goals,
		Behinds:                s.Behinds,
		Hitouts:                s.Hitouts,
		Tackles:                s.Tackles,
		Rebound50s:             s.Rebound50s,
		Inside50s:              s.Inside50s,
		Clearances:             s.Clearances,
		Clangers:               s.Clangers,
		FreeKicksFor:           s.FreeKicksFor,
		FreeKicksAgainst:       s.FreeKicksAgainst,
		BrownlowVotes:          s.BrownlowVotes,
		ContestedPossessions:   s.ContestedPossessions,
		UncontestedPossessions: s.UncontestedPossessions,
		ContestedMarks:         s.ContestedMarks,
		MarksInside50:          s.MarksInside50,
		OnePercenters:          s.OnePercenters,
		Bounces:                s.Bounces,
		GoalAssists:            s.GoalAssists,
		PercentPlayed:          s.PercentPlayed,
	}
}
