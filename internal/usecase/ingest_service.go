package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/dkearsley/afl-stats/internal/domain/game"
	"github.com/dkearsley/afl-stats/internal/domain/player"
	"github.com/dkearsley/afl-stats/internal/domain/stat"
	"github.com/dkearsley/afl-stats/internal/platform/logging"
	"github.com/dkearsley/afl-stats/internal/scrape"
	"github.com/dkearsley/afl-stats/internal/scrape/afltables"
)

const (
	defaultIngestWorkers = 5
	maxIngestWorkers     = 20
)

const (
	matchStatusSuccess = "success"
	matchStatusSkipped = "skipped"
	matchStatusFailed  = "failed"
)

// matchSource is the slice of the season scraper the ingest pipeline needs.
type matchSource interface {
	SeasonLinks(ctx context.Context, year int) ([]string, error)
	MatchRecord(ctx context.Context, endpoint string) (afltables.MatchResult, error)
	PlayerStats(ctx context.Context, endpoint, gameID, homeTeam, awayTeam, roundID string) ([]stat.MatchStat, []player.Player, error)
}

type IngestService struct {
	source     matchSource
	gameRepo   game.Repository
	playerRepo player.Repository
	statRepo   stat.Repository
	logger     *logging.Logger
	maxWorkers int
}

func NewIngestService(
	source matchSource,
	gameRepo game.Repository,
	playerRepo player.Repository,
	statRepo stat.Repository,
	logger *logging.Logger,
	maxWorkers int,
) *IngestService {
	if logger == nil {
		logger = logging.NewNop()
	}
	if maxWorkers <= 0 {
		maxWorkers = defaultIngestWorkers
	}
	if maxWorkers > maxIngestWorkers {
		maxWorkers = maxIngestWorkers
	}
	return &IngestService{
		source:     source,
		gameRepo:   gameRepo,
		playerRepo: playerRepo,
		statRepo:   statRepo,
		logger:     logger,
		maxWorkers: maxWorkers,
	}
}

// MatchOutcome records how one match page fared during a run.
type MatchOutcome struct {
	Endpoint   string `json:"endpoint"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	StatLines  int    `json:"stat_lines"`
	DurationMs int64  `json:"duration_ms"`
}

// RunReport summarises one season ingest: what was scraped, what the
// database actually accepted, and per-match outcomes. Scraped and inserted
// counts diverge when a rerun finds rows already stored.
type RunReport struct {
	Year            int            `json:"year"`
	MatchLinks      int            `json:"match_links"`
	SuccessCount    int            `json:"success_count"`
	SkippedCount    int            `json:"skipped_count"`
	FailedCount     int            `json:"failed_count"`
	GamesScraped    int            `json:"games_scraped"`
	PlayersScraped  int            `json:"players_scraped"`
	StatsScraped    int            `json:"stats_scraped"`
	GamesInserted   int            `json:"games_inserted"`
	PlayersInserted int            `json:"players_inserted"`
	StatsInserted   int            `json:"stats_inserted"`
	WorkerCount     int            `json:"worker_count"`
	DurationMs      int64          `json:"duration_ms"`
	Matches         []MatchOutcome `json:"matches"`
}

type matchHarvest struct {
	outcome MatchOutcome
	game    *game.Game
	players []player.Player
	stats   []stat.MatchStat
}

// Run scrapes a whole season and persists it. Match pages are processed
// concurrently; a page that fails to fetch or parse is reported and skipped,
// never fatal for the run. Persistence happens after all pages finish, in
// dependency order so stats never reference an unpersisted game or player.
func (s *IngestService) Run(ctx context.Context, year int) (RunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestService.Run")
	defer span.End()

	if year <= 0 {
		return RunReport{}, fmt.Errorf("%w: year must be positive", ErrInvalidInput)
	}
	if s.source == nil || s.gameRepo == nil || s.playerRepo == nil || s.statRepo == nil {
		return RunReport{}, fmt.Errorf("%w: ingest service is not fully configured", ErrDependencyUnavailable)
	}

	start := time.Now()
	links, err := s.source.SeasonLinks(ctx, year)
	if err != nil {
		return RunReport{}, fmt.Errorf("collect season links: %w", err)
	}

	report := RunReport{
		Year:        year,
		MatchLinks:  len(links),
		WorkerCount: s.maxWorkers,
		Matches:     make([]MatchOutcome, 0, len(links)),
	}
	if len(links) == 0 {
		report.DurationMs = time.Since(start).Milliseconds()
		return report, nil
	}

	results := make(chan matchHarvest, len(links))

	var successCount, skippedCount, failedCount atomic.Int32

	pool, err := ants.NewPool(s.maxWorkers)
	if err != nil {
		return RunReport{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	dispatchErr := s.dispatchMatches(ctx, pool, links, results, &successCount, &skippedCount, &failedCount)
	if dispatchErr != nil {
		return RunReport{}, dispatchErr
	}

	var (
		games   []game.Game
		players []player.Player
		stats   []stat.MatchStat
	)
	seenPlayers := make(map[string]struct{})
	seenStats := make(map[string]struct{})
	for harvest := range results {
		report.Matches = append(report.Matches, harvest.outcome)
		if harvest.game != nil {
			games = append(games, *harvest.game)
		}
		for _, p := range harvest.players {
			if _, ok := seenPlayers[p.PlayerID]; ok {
				continue
			}
			seenPlayers[p.PlayerID] = struct{}{}
			players = append(players, p)
		}
		for _, line := range harvest.stats {
			key := line.GameID + "/" + line.PlayerID
			if _, ok := seenStats[key]; ok {
				continue
			}
			seenStats[key] = struct{}{}
			stats = append(stats, line)
		}
	}

	sort.SliceStable(report.Matches, func(i, j int) bool {
		return report.Matches[i].Endpoint < report.Matches[j].Endpoint
	})
	sort.SliceStable(games, func(i, j int) bool { return games[i].GameID < games[j].GameID })
	sort.SliceStable(players, func(i, j int) bool { return players[i].PlayerID < players[j].PlayerID })
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].GameID != stats[j].GameID {
			return stats[i].GameID < stats[j].GameID
		}
		return stats[i].PlayerID < stats[j].PlayerID
	})

	report.SuccessCount = int(successCount.Load())
	report.SkippedCount = int(skippedCount.Load())
	report.FailedCount = int(failedCount.Load())
	report.GamesScraped = len(games)
	report.PlayersScraped = len(players)
	report.StatsScraped = len(stats)

	report.GamesInserted, err = s.gameRepo.UpsertMany(ctx, games)
	if err != nil {
		return report, fmt.Errorf("persist games: %w", err)
	}
	report.PlayersInserted, err = s.playerRepo.UpsertMany(ctx, players)
	if err != nil {
		return report, fmt.Errorf("persist players: %w", err)
	}
	report.StatsInserted, err = s.statRepo.UpsertMany(ctx, stats)
	if err != nil {
		return report, fmt.Errorf("persist stats: %w", err)
	}

	report.DurationMs = time.Since(start).Milliseconds()
	s.logger.InfoContext(ctx, "season ingest finished",
		"year", year,
		"matches", report.MatchLinks,
		"games_inserted", report.GamesInserted,
		"players_inserted", report.PlayersInserted,
		"stats_inserted", report.StatsInserted,
		"failed", report.FailedCount)
	return report, nil
}

// taskPool is the slice of ants.Pool the dispatcher needs.
type taskPool interface {
	Submit(task func()) error
}

// dispatchMatches fans the match links out over the pool and waits for every
// accepted worker before closing results. A refused submission stops further
// dispatch but still drains the workers already in flight, so no harvested
// outcome is lost on the way out.
func (s *IngestService) dispatchMatches(
	ctx context.Context,
	pool taskPool,
	links []string,
	results chan<- matchHarvest,
	successCount, skippedCount, failedCount *atomic.Int32,
) error {
	var workers sync.WaitGroup
	var submitErr error
	for _, link := range links {
		link := link
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			harvest := s.harvestMatch(ctx, link)
			switch harvest.outcome.Status {
			case matchStatusSuccess:
				successCount.Add(1)
			case matchStatusSkipped:
				skippedCount.Add(1)
			default:
				failedCount.Add(1)
			}
			results <- harvest
		}); err != nil {
			workers.Done()
			submitErr = fmt.Errorf("submit match to worker pool: %w", err)
			break
		}
	}

	workers.Wait()
	close(results)
	return submitErr
}

// harvestMatch processes one match page end to end: result extraction, then
// stat lines for both sides.
func (s *IngestService) harvestMatch(ctx context.Context, endpoint string) matchHarvest {
	taskStart := time.Now()
	outcome := MatchOutcome{Endpoint: endpoint}
	finish := func(h matchHarvest) matchHarvest {
		h.outcome.DurationMs = time.Since(taskStart).Milliseconds()
		return h
	}

	res, err := s.source.MatchRecord(ctx, endpoint)
	if err != nil {
		if errors.Is(err, scrape.ErrParse) || errors.Is(err, scrape.ErrFormat) {
			s.logger.WarnContext(ctx, "match page not extractable, skipped",
				"endpoint", endpoint, "error", err.Error())
			outcome.Status = matchStatusSkipped
			outcome.Message = err.Error()
			return finish(matchHarvest{outcome: outcome})
		}
		s.logger.ErrorContext(ctx, "match page failed",
			"endpoint", endpoint, "error", err.Error())
		outcome.Status = matchStatusFailed
		outcome.Message = err.Error()
		return finish(matchHarvest{outcome: outcome})
	}

	var gameID, homeTeam, awayTeam, roundID string
	if res.Game != nil {
		gameID = res.Game.GameID
		homeTeam = res.Game.HomeTeam
		awayTeam = res.Game.AwayTeam
		roundID = res.Game.RoundID
	} else {
		gameID = res.Reduced.GameID
		homeTeam = res.Reduced.HomeTeam
		awayTeam = res.Reduced.AwayTeam
		roundID = res.Reduced.RoundID
	}

	stats, newPlayers, err := s.source.PlayerStats(ctx, endpoint, gameID, homeTeam, awayTeam, roundID)
	if err != nil {
		s.logger.ErrorContext(ctx, "player stats extraction failed",
			"endpoint", endpoint, "game_id", gameID, "error", err.Error())
		outcome.Status = matchStatusFailed
		outcome.Message = err.Error()
		// The match result still counts; only its stat lines are lost.
		return finish(matchHarvest{outcome: outcome, game: res.Game})
	}

	outcome.Status = matchStatusSuccess
	outcome.StatLines = len(stats)
	return finish(matchHarvest{
		outcome: outcome,
		game:    res.Game,
		players: newPlayers,
		stats:   stats,
	})
}
