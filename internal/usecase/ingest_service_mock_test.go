package usecase

import (
	"context"
	"sync/atomic"
	"testing"

	crerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/mock"

	"github.com/dkearsley/afl-stats/internal/domain/game"
	"github.com/dkearsley/afl-stats/internal/domain/player"
	"github.com/dkearsley/afl-stats/internal/domain/stat"
	"github.com/dkearsley/afl-stats/internal/infrastructure/repository/memory"
	"github.com/dkearsley/afl-stats/internal/scrape"
	"github.com/dkearsley/afl-stats/internal/scrape/afltables"
)

type matchSourceMock struct {
	mock.Mock
}

func (m *matchSourceMock) SeasonLinks(ctx context.Context, year int) ([]string, error) {
	args := m.Called(ctx, year)
	return args.Get(0).([]string), args.Error(1)
}

func (m *matchSourceMock) MatchRecord(ctx context.Context, endpoint string) (afltables.MatchResult, error) {
	args := m.Called(ctx, endpoint)
	return args.Get(0).(afltables.MatchResult), args.Error(1)
}

func (m *matchSourceMock) PlayerStats(ctx context.Context, endpoint, gameID, homeTeam, awayTeam, roundID string) ([]stat.MatchStat, []player.Player, error) {
	args := m.Called(ctx, endpoint, gameID, homeTeam, awayTeam, roundID)
	var stats []stat.MatchStat
	if v := args.Get(0); v != nil {
		stats = v.([]stat.MatchStat)
	}
	var players []player.Player
	if v := args.Get(1); v != nil {
		players = v.([]player.Player)
	}
	return stats, players, args.Error(2)
}

func TestIngestService_RunKeepsGoingPastFailedMatches(t *testing.T) {
	t.Parallel()

	goodGame := &game.Game{
		GameID: "2025R0101", Year: "2025", RoundID: "1",
		Date: "2025-03-08", HomeTeam: "Adelaide", AwayTeam: "Geelong",
	}
	goodStat := stat.MatchStat{
		GameID: "2025R0101", PlayerID: "PLAYER0001", PlayerName: "Dawson, Jordan",
		Team: "Adelaide", Year: 2025, RoundID: "1", Kicks: 20,
	}
	goodPlayer := player.Player{PlayerID: "PLAYER0001", DisplayName: "Dawson, Jordan", DOB: "12-Apr-1997"}

	source := &matchSourceMock{}
	source.On("SeasonLinks", mock.Anything, 2025).
		Return([]string{"games/2025/ok.html", "games/2025/broken.html", "games/2025/finals.html"}, nil).
		Once()
	source.On("MatchRecord", mock.Anything, "games/2025/ok.html").
		Return(afltables.MatchResult{Game: goodGame}, nil).
		Once()
	source.On("MatchRecord", mock.Anything, "games/2025/broken.html").
		Return(afltables.MatchResult{}, crerr.Wrap(scrape.ErrFetch, "status 500")).
		Once()
	source.On("MatchRecord", mock.Anything, "games/2025/finals.html").
		Return(afltables.MatchResult{}, crerr.Wrap(scrape.ErrParse, "match metadata not recognised")).
		Once()
	source.On("PlayerStats", mock.Anything, "games/2025/ok.html", "2025R0101", "Adelaide", "Geelong", "1").
		Return([]stat.MatchStat{goodStat}, []player.Player{goodPlayer}, nil).
		Once()

	svc := NewIngestService(
		source,
		memory.NewGameRepository(nil),
		memory.NewPlayerRepository(nil),
		memory.NewStatRepository(nil),
		nil,
		2,
	)

	report, err := svc.Run(context.Background(), 2025)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	source.AssertExpectations(t)

	if report.SuccessCount != 1 || report.SkippedCount != 1 || report.FailedCount != 1 {
		t.Fatalf("outcome counts = %d/%d/%d", report.SuccessCount, report.SkippedCount, report.FailedCount)
	}
	if report.GamesInserted != 1 || report.PlayersInserted != 1 || report.StatsInserted != 1 {
		t.Fatalf("inserted = %d games, %d players, %d stats",
			report.GamesInserted, report.PlayersInserted, report.StatsInserted)
	}
}

// refusingPool accepts a fixed number of submissions, running each on its own
// goroutine the way ants does, then refuses the rest.
type refusingPool struct {
	capacity int
	accepted int
}

func (p *refusingPool) Submit(task func()) error {
	if p.accepted >= p.capacity {
		return crerr.New("pool is closed")
	}
	p.accepted++
	go task()
	return nil
}

func TestIngestService_RefusedSubmissionDrainsInFlightWorkers(t *testing.T) {
	t.Parallel()

	parseFailure := crerr.Wrap(scrape.ErrParse, "match metadata not recognised")
	source := &matchSourceMock{}
	source.On("MatchRecord", mock.Anything, "games/2025/m1.html").
		Return(afltables.MatchResult{}, parseFailure).
		Once()
	source.On("MatchRecord", mock.Anything, "games/2025/m2.html").
		Return(afltables.MatchResult{}, parseFailure).
		Once()

	svc := NewIngestService(
		source,
		memory.NewGameRepository(nil),
		memory.NewPlayerRepository(nil),
		memory.NewStatRepository(nil),
		nil,
		2,
	)

	links := []string{"games/2025/m1.html", "games/2025/m2.html", "games/2025/m3.html"}
	results := make(chan matchHarvest, len(links))
	var success, skipped, failed atomic.Int32

	err := svc.dispatchMatches(context.Background(), &refusingPool{capacity: 2},
		links, results, &success, &skipped, &failed)
	if err == nil {
		t.Fatal("expected a submission error")
	}

	drained := 0
	for range results {
		drained++
	}
	if drained != 2 {
		t.Fatalf("expected the 2 in-flight outcomes drained, got %d", drained)
	}
	if got := skipped.Load(); got != 2 {
		t.Fatalf("expected 2 skipped outcomes, got %d", got)
	}
	source.AssertExpectations(t)
}
