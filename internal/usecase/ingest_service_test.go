package usecase

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkearsley/afl-stats/internal/infrastructure/repository/memory"
	"github.com/dkearsley/afl-stats/internal/platform/id"
	"github.com/dkearsley/afl-stats/internal/platform/resilience"
	"github.com/dkearsley/afl-stats/internal/scrape"
	"github.com/dkearsley/afl-stats/internal/scrape/afltables"
	"github.com/dkearsley/afl-stats/internal/scrape/fetch"
	"github.com/dkearsley/afl-stats/internal/scrape/footywire"
)

const ingestSeasonPage = `<html><body>
<a href="games/2025/m1.html">Match 1</a>
<a href="games/2025/m2.html">Match 2</a>
</body></html>`

func ingestMatchPage(round int, date, homeTeam, awayTeam, homeRows, awayRows string) string {
	return fmt.Sprintf(`<html><body>
<table>
<tr><td><b>Round:</b> %d <b>Venue:</b> Kardinia Park <b>Date:</b> Mon, %s 3:10 PM <b>Attendance:</b> 20000</td></tr>
<tr><td>%s</td><td>4.2.26</td><td>8.3.51</td><td>11.5.71</td><td>14.8.92</td></tr>
<tr><td>%s</td><td>3.1.19</td><td>5.4.34</td><td>9.6.60</td><td>12.9.81</td></tr>
</table>
<table class="sortable">
<tr><th colspan="25">%s Match Statistics</th></tr>
<tr><th>#</th><th>Player</th><th>KI</th></tr>
%s
</table>
<table class="sortable">
<tr><th colspan="25">%s Match Statistics</th></tr>
<tr><th>#</th><th>Player</th><th>KI</th></tr>
%s
</table>
</body></html>`, round, date, homeTeam, awayTeam, homeTeam, homeRows, awayTeam, awayRows)
}

func ingestStatRow(jersey int, name, link string, value int) string {
	row := fmt.Sprintf(`<tr><td>%d</td><td><a href="%s">%s</a></td>`, jersey, link, name)
	for i := 0; i < 23; i++ {
		row += fmt.Sprintf("<td>%d</td>", value)
	}
	return row + "</tr>"
}

func ingestBornPage(dob string) string {
	return fmt.Sprintf(`<html><body><b>Born:</b> %s (<a href="#">profile</a>)</body></html>`, dob)
}

const ingestProfilePage = `<html><body>
<div id="playerProfileData1">
Origin: Local Club
</div>
<div id="playerProfileData2">
Height: 185 cm
Weight: 82 kg
Position:
Midfield
</div>
</body></html>`

// newIngestFixture spins up a results archive and a profile site, both
// backed by httptest, with one match each in rounds 3 and 4. Dawson plays in both so a
// run must resolve him once and emit two stat lines under one ID.
func newIngestFixture(t *testing.T) (archive, profiles *httptest.Server) {
	t.Helper()

	archiveMux := http.NewServeMux()
	archiveMux.HandleFunc("/2025t.html", servePage(ingestSeasonPage))
	archiveMux.HandleFunc("/games/2025/m1.html", servePage(ingestMatchPage(
		3, "05-May-2025", "Adelaide", "Port Adelaide",
		ingestStatRow(4, "Dawson, Jordan", "../../players/D/dawson.html", 3),
		ingestStatRow(9, "Butters, Zak", "../../players/B/butters.html", 5),
	)))
	archiveMux.HandleFunc("/games/2025/m2.html", servePage(ingestMatchPage(
		4, "12-May-2025", "Geelong", "Adelaide",
		ingestStatRow(22, "Duncan, Mitch", "../../players/D/duncan.html", 7),
		ingestStatRow(4, "Dawson, Jordan", "../../players/D/dawson.html", 4),
	)))
	archiveMux.HandleFunc("/players/D/dawson.html", servePage(ingestBornPage("12-Apr-1997")))
	archiveMux.HandleFunc("/players/B/butters.html", servePage(ingestBornPage("2-Oct-2000")))
	archiveMux.HandleFunc("/players/D/duncan.html", servePage(ingestBornPage("4-Jan-1995")))

	profileMux := http.NewServeMux()
	profileMux.HandleFunc("/pp-adelaide--jordan-dawson", servePage(ingestProfilePage))
	profileMux.HandleFunc("/pp-port-adelaide--zak-butters", servePage(ingestProfilePage))
	profileMux.HandleFunc("/pp-geelong--mitch-duncan", servePage(ingestProfilePage))

	archive = httptest.NewServer(archiveMux)
	t.Cleanup(archive.Close)
	profiles = httptest.NewServer(profileMux)
	t.Cleanup(profiles.Close)
	return archive, profiles
}

func servePage(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}
}

type ingestRepos struct {
	games   *memory.GameRepository
	players *memory.PlayerRepository
	stats   *memory.StatRepository
}

// newIngestService builds a fresh pipeline over shared repositories, the way
// each scrape run starts with empty run-scoped state.
func newIngestService(archiveURL, profilesURL string, repos ingestRepos) *IngestService {
	client := fetch.NewClient(fetch.ClientConfig{
		Timeout:        2 * time.Second,
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
	})
	profileScraper := footywire.NewScraper(profilesURL, client, id.NewRandomGenerator(), nil)
	matchScraper := afltables.NewScraper(afltables.Config{
		BaseURL:  archiveURL,
		Fetcher:  client,
		Profiles: profileScraper,
		Games:    repos.games,
		Players:  repos.players,
		Stats:    repos.stats,
		Tracker:  scrape.NewPlayerTracker(),
		Rounds:   scrape.NewRoundCounter(),
	})
	return NewIngestService(matchScraper, repos.games, repos.players, repos.stats, nil, 2)
}

func TestIngestService_RunPersistsSeason(t *testing.T) {
	t.Parallel()

	archive, profiles := newIngestFixture(t)
	repos := ingestRepos{
		games:   memory.NewGameRepository(nil),
		players: memory.NewPlayerRepository(nil),
		stats:   memory.NewStatRepository(nil),
	}

	report, err := newIngestService(archive.URL, profiles.URL, repos).Run(context.Background(), 2025)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.MatchLinks != 2 || report.SuccessCount != 2 || report.FailedCount != 0 {
		t.Fatalf("report counts = %+v", report)
	}
	if report.GamesScraped != 2 || report.GamesInserted != 2 {
		t.Fatalf("games = %d scraped, %d inserted", report.GamesScraped, report.GamesInserted)
	}
	// Dawson plays in both matches but must be emitted once.
	if report.PlayersScraped != 3 || report.PlayersInserted != 3 {
		t.Fatalf("players = %d scraped, %d inserted", report.PlayersScraped, report.PlayersInserted)
	}
	if report.StatsScraped != 4 || report.StatsInserted != 4 {
		t.Fatalf("stats = %d scraped, %d inserted", report.StatsScraped, report.StatsInserted)
	}
	if repos.games.Len() != 2 || repos.players.Len() != 3 || repos.stats.Len() != 4 {
		t.Fatalf("stored = %d games, %d players, %d stats",
			repos.games.Len(), repos.players.Len(), repos.stats.Len())
	}

	dawson, err := repos.players.FindByNameAndDOB(context.Background(), "Dawson, Jordan", "12-Apr-1997")
	if err != nil {
		t.Fatalf("find dawson: %v", err)
	}
	if dawson == nil {
		t.Fatalf("dawson not stored")
	}
	if dawson.Height != 185 || dawson.Weight != 82 || dawson.Position != "Midfield" {
		t.Fatalf("dawson biometrics = %+v", dawson)
	}

	for _, gameID := range []string{"2025R0301", "2025R0401"} {
		ok, err := repos.stats.Exists(context.Background(), gameID, dawson.PlayerID)
		if err != nil {
			t.Fatalf("stat exists %s: %v", gameID, err)
		}
		if !ok {
			t.Fatalf("dawson stat line missing for %s", gameID)
		}
	}
}

func TestIngestService_RerunInsertsNothing(t *testing.T) {
	t.Parallel()

	archive, profiles := newIngestFixture(t)
	repos := ingestRepos{
		games:   memory.NewGameRepository(nil),
		players: memory.NewPlayerRepository(nil),
		stats:   memory.NewStatRepository(nil),
	}

	if _, err := newIngestService(archive.URL, profiles.URL, repos).Run(context.Background(), 2025); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	report, err := newIngestService(archive.URL, profiles.URL, repos).Run(context.Background(), 2025)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if report.GamesInserted != 0 || report.PlayersInserted != 0 || report.StatsInserted != 0 {
		t.Fatalf("rerun inserted %d games, %d players, %d stats",
			report.GamesInserted, report.PlayersInserted, report.StatsInserted)
	}
	if report.FailedCount != 0 {
		t.Fatalf("rerun failed %d matches", report.FailedCount)
	}
	if repos.games.Len() != 2 || repos.players.Len() != 3 || repos.stats.Len() != 4 {
		t.Fatalf("rerun changed stored counts: %d games, %d players, %d stats",
			repos.games.Len(), repos.players.Len(), repos.stats.Len())
	}
}

func TestIngestService_RunRejectsBadInput(t *testing.T) {
	t.Parallel()

	svc := NewIngestService(nil, nil, nil, nil, nil, 2)
	if _, err := svc.Run(context.Background(), 0); err == nil {
		t.Fatalf("expected invalid input error")
	}
	if _, err := svc.Run(context.Background(), 2025); err == nil {
		t.Fatalf("expected dependency error for unconfigured service")
	}
}
