// Package afltables scrapes season fixtures, match results and per-player
// match statistics from the primary results archive.
package afltables

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"golang.org/x/net/html"

	"github.com/dkearsley/afl-stats/internal/domain/game"
	"github.com/dkearsley/afl-stats/internal/domain/player"
	"github.com/dkearsley/afl-stats/internal/domain/stat"
	"github.com/dkearsley/afl-stats/internal/platform/logging"
	"github.com/dkearsley/afl-stats/internal/platform/resilience"
	"github.com/dkearsley/afl-stats/internal/scrape"
	"github.com/dkearsley/afl-stats/internal/scrape/normalize"
)

// matchMetaRegex pulls round, venue, date, start time and attendance out of
// the header blob of a match page. The round capture is numeric only, so
// finals pages ("Qualifying Final" and friends) do not match and surface as
// a parse failure; the caller skips those matches.
var matchMetaRegex = regexp.MustCompile(`Round:(\d+)Venue:(.*?)Date:.*?(\d{1,2}-\w{3}-\d{4}) (\d{1,2}:\d{2} [AP]M).*?Attendance:(\d+)`)

const (
	statsTableMarker = "Match Statistics"
	statsHeaderRows  = 2
)

// Fetcher retrieves a parsed HTML document for a URL.
type Fetcher interface {
	Document(ctx context.Context, url string) (*goquery.Document, error)
}

// ProfileSource resolves a player's biometric profile from the secondary
// source. A missing profile page is reported as scrape.ErrProfileNotFound.
type ProfileSource interface {
	FetchProfile(ctx context.Context, displayName, teamName, dob string) (*player.Player, error)
}

// GameChecker reports whether a match result is already persisted.
type GameChecker interface {
	Exists(ctx context.Context, date, homeTeam, awayTeam string) (bool, error)
}

// PlayerFinder looks up an already-persisted player by natural key.
type PlayerFinder interface {
	FindByNameAndDOB(ctx context.Context, displayName, dob string) (*player.Player, error)
}

// StatChecker reports whether a stat line is already persisted.
type StatChecker interface {
	Exists(ctx context.Context, gameID, playerID string) (bool, error)
}

// Config carries the collaborators a Scraper needs. Tracker and Rounds are
// shared across all workers of a run and must be the same instances for
// every match processed in that run.
type Config struct {
	BaseURL  string
	Fetcher  Fetcher
	Profiles ProfileSource
	Games    GameChecker
	Players  PlayerFinder
	Stats    StatChecker
	Tracker  *scrape.PlayerTracker
	Rounds   *scrape.RoundCounter
	Logger   *logging.Logger
}

// Scraper extracts match results and stat lines for one season run.
type Scraper struct {
	baseURL  string
	fetcher  Fetcher
	profiles ProfileSource
	games    GameChecker
	players  PlayerFinder
	stats    StatChecker
	tracker  *scrape.PlayerTracker
	rounds   *scrape.RoundCounter
	flight   resilience.SingleFlight
	logger   *logging.Logger
}

func NewScraper(cfg Config) *Scraper {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scraper{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		fetcher:  cfg.Fetcher,
		profiles: cfg.Profiles,
		games:    cfg.Games,
		players:  cfg.Players,
		stats:    cfg.Stats,
		tracker:  cfg.Tracker,
		rounds:   cfg.Rounds,
		logger:   logger,
	}
}

// SeasonLinks returns the relative match page endpoints for a season, in
// page order with duplicates removed.
func (s *Scraper) SeasonLinks(ctx context.Context, year int) ([]string, error) {
	seasonURL := fmt.Sprintf("%s/%dt.html", s.baseURL, year)
	doc, err := s.fetcher.Document(ctx, seasonURL)
	if err != nil {
		return nil, err
	}

	marker := fmt.Sprintf("games/%d", year)
	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.Contains(href, marker) {
			return
		}
		if _, ok := seen[href]; ok {
			return
		}
		seen[href] = struct{}{}
		links = append(links, href)
	})

	s.logger.InfoContext(ctx, "collected season match links",
		"year", year, "count", len(links))
	return links, nil
}

// MatchResult is the outcome of extracting one match page. Exactly one of
// the two fields is set: Game for a newly seen match, Reduced when the match
// already exists in storage and only the identifying fields are needed for
// the stats stage.
type MatchResult struct {
	Game    *game.Game
	Reduced *game.Reduced
}

// MatchRecord extracts the match header and scoreline from a match page.
// The run-scoped round counter is advanced even for already-persisted
// matches so sequence numbers stay aligned within the run.
func (s *Scraper) MatchRecord(ctx context.Context, endpoint string) (MatchResult, error) {
	pageURL := s.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	doc, err := s.fetcher.Document(ctx, pageURL)
	if err != nil {
		return MatchResult{}, err
	}

	rows := doc.Find("table").First().Find("tr")
	if rows.Length() < 3 {
		return MatchResult{}, crerr.Wrapf(scrape.ErrParse, "match table has %d rows: %s", rows.Length(), endpoint)
	}

	meta := matchMetaRegex.FindStringSubmatch(collapseText(rows.Eq(0)))
	if meta == nil {
		return MatchResult{}, crerr.Wrapf(scrape.ErrParse, "match metadata not recognised: %s", endpoint)
	}
	roundID, venue, rawDate, startTime, rawAttendance := meta[1], strings.TrimSpace(meta[2]), meta[3], meta[4], meta[5]

	date, err := normalize.Date(rawDate)
	if err != nil {
		return MatchResult{}, err
	}
	attendance, err := strconv.Atoi(rawAttendance)
	if err != nil {
		return MatchResult{}, crerr.Wrapf(scrape.ErrParse, "attendance %q: %s", rawAttendance, endpoint)
	}

	home, err := teamLine(rows.Eq(1))
	if err != nil {
		return MatchResult{}, crerr.Wrapf(err, "home line: %s", endpoint)
	}
	away, err := teamLine(rows.Eq(2))
	if err != nil {
		return MatchResult{}, crerr.Wrapf(err, "away line: %s", endpoint)
	}

	year := strings.Split(rawDate, "-")[2]
	round, err := strconv.Atoi(roundID)
	if err != nil {
		return MatchResult{}, crerr.Wrapf(scrape.ErrParse, "round %q: %s", roundID, endpoint)
	}
	seq := s.rounds.Next(roundID)
	gameID := scrape.GameID(year, round, seq)

	exists, err := s.games.Exists(ctx, date, home.name, away.name)
	if err != nil {
		return MatchResult{}, crerr.Wrapf(err, "match existence check: %s", endpoint)
	}
	if exists {
		s.logger.InfoContext(ctx, "match already stored",
			"date", date, "home_team", home.name, "away_team", away.name)
		return MatchResult{Reduced: &game.Reduced{
			GameID:   gameID,
			HomeTeam: home.name,
			AwayTeam: away.name,
			RoundID:  roundID,
		}}, nil
	}

	return MatchResult{Game: &game.Game{
		GameID:         gameID,
		Year:           year,
		RoundID:        roundID,
		Venue:          venue,
		Date:           date,
		StartTime:      startTime,
		Attendance:     attendance,
		HomeTeam:       home.name,
		HomeScoreQT:    home.quarters[0],
		HomeScoreHT:    home.quarters[1],
		HomeScore3QT:   home.quarters[2],
		HomeScoreFT:    home.quarters[3],
		HomeScoreFinal: home.final,
		AwayTeam:       away.name,
		AwayScoreQT:    away.quarters[0],
		AwayScoreHT:    away.quarters[1],
		AwayScore3QT:   away.quarters[2],
		AwayScoreFT:    away.quarters[3],
		AwayScoreFinal: away.final,
	}}, nil
}

type scoreline struct {
	name     string
	quarters [4]string
	final    string
}

func teamLine(row *goquery.Selection) (scoreline, error) {
	cells := row.Find("td")
	if cells.Length() < 5 {
		return scoreline{}, crerr.Wrapf(scrape.ErrParse, "score row has %d cells", cells.Length())
	}

	line := scoreline{name: strings.TrimSpace(cells.Eq(0).Text())}
	for i := 0; i < 4; i++ {
		line.quarters[i] = normalize.TruncateScore(strings.TrimSpace(cells.Eq(i + 1).Text()))
	}
	parts := strings.Split(strings.TrimSpace(cells.Eq(4).Text()), ".")
	if len(parts) < 3 {
		return scoreline{}, crerr.Wrapf(scrape.ErrParse, "final score %q lacks total", cells.Eq(4).Text())
	}
	line.final = parts[2]
	return line, nil
}

// PlayerStats extracts every stat line from a match page and resolves each
// player to a stable ID, emitting Player records for players seen for the
// first time. Rows that cannot be parsed or resolved are skipped and logged
// rather than failing the match. A page without stats tables is an empty
// result, not an error; a page with a single table is read as the home side.
func (s *Scraper) PlayerStats(ctx context.Context, endpoint, gameID, homeTeam, awayTeam, roundID string) ([]stat.MatchStat, []player.Player, error) {
	pageURL := s.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	doc, err := s.fetcher.Document(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}

	tables := doc.Find("table.sortable").FilterFunction(func(_ int, t *goquery.Selection) bool {
		return strings.Contains(t.Find("th").First().Text(), statsTableMarker)
	})
	if tables.Length() == 0 {
		s.logger.InfoContext(ctx, "match page carries no stats tables", "endpoint", endpoint)
		return nil, nil, nil
	}

	year := 0
	if len(gameID) >= 4 {
		y, convErr := strconv.Atoi(gameID[:4])
		if convErr != nil {
			s.logger.WarnContext(ctx, "game id year is not numeric, stat year left zero",
				"game_id", gameID)
		} else {
			year = y
		}
	}

	var (
		statLines  []stat.MatchStat
		newPlayers []player.Player
	)
	tables.Each(func(tableIdx int, table *goquery.Selection) {
		if tableIdx > 1 {
			return
		}
		team := homeTeam
		if tableIdx == 1 {
			team = awayTeam
		}

		table.Find("tr").Each(func(rowIdx int, row *goquery.Selection) {
			if rowIdx < statsHeaderRows {
				return
			}
			cells := row.Find("td")
			if cells.Length() < normalize.MinStatCells {
				return
			}

			nameCell := cells.Eq(1)
			displayName := strings.TrimSpace(nameCell.Text())
			profileLink, ok := nameCell.Find("a").Attr("href")
			if displayName == "" || !ok {
				s.logger.WarnContext(ctx, "stat row without player link skipped",
					"game_id", gameID, "team", team)
				return
			}

			playerID, created, err := s.resolvePlayer(ctx, pageURL, profileLink, displayName, team)
			if err != nil {
				s.logger.WarnContext(ctx, "player resolution failed, row skipped",
					"player", displayName, "team", team, "error", err.Error())
				return
			}
			if playerID == "" {
				return
			}
			if created != nil {
				newPlayers = append(newPlayers, *created)
			}

			stored, err := s.stats.Exists(ctx, gameID, playerID)
			if err != nil {
				s.logger.WarnContext(ctx, "stat existence check failed, row skipped",
					"game_id", gameID, "player_id", playerID, "error", err.Error())
				return
			}
			if stored {
				return
			}

			line := stat.MatchStat{
				GameID:     gameID,
				PlayerID:   playerID,
				PlayerName: displayName,
				Team:       team,
				Year:       year,
				RoundID:    roundID,
			}
			for i, column := range normalize.StatColumns {
				text := strings.TrimSpace(cells.Eq(i + normalize.StatCellOffset).Text())
				value := 0
				if text != "" {
					value, err = strconv.Atoi(text)
					if err != nil {
						s.logger.WarnContext(ctx, "non-numeric stat cell treated as zero",
							"player", displayName, "column", column, "value", text)
						value = 0
					}
				}
				line.SetField(column, value)
			}
			statLines = append(statLines, line)
		})
	})

	return statLines, newPlayers, nil
}

type resolution struct {
	playerID string
	created  *player.Player
}

// resolvePlayer turns a stat-row identity into a stable player ID: run cache
// first, then the store by natural key, then a freshly minted ID from the
// profile source. Concurrent resolutions of the same player collapse into
// one lookup; an unresolvable player is cached as empty so the miss is not
// repeated within the run.
func (s *Scraper) resolvePlayer(ctx context.Context, pageURL, profileLink, displayName, team string) (string, *player.Player, error) {
	dob, err := s.playerDOB(ctx, pageURL, profileLink)
	if err != nil {
		return "", nil, err
	}
	if dob == "" {
		return "", nil, crerr.Wrapf(scrape.ErrParse, "date of birth missing for %q", displayName)
	}

	key := player.Key{DisplayName: displayName, DOB: dob}
	if id, ok := s.tracker.Lookup(key); ok {
		return id, nil, nil
	}

	value, err, shared := s.flight.Do(displayName+"|"+dob, func() (any, error) {
		existing, err := s.players.FindByNameAndDOB(ctx, displayName, dob)
		if err != nil {
			return nil, crerr.Wrapf(err, "player lookup for %q", displayName)
		}
		if existing != nil {
			return resolution{playerID: existing.PlayerID}, nil
		}

		prof, err := s.profiles.FetchProfile(ctx, displayName, team, dob)
		if crerr.Is(err, scrape.ErrProfileNotFound) {
			s.logger.InfoContext(ctx, "no profile page for player",
				"player", displayName, "team", team)
			return resolution{}, nil
		}
		if err != nil {
			return nil, err
		}
		return resolution{playerID: prof.PlayerID, created: prof}, nil
	})
	if err != nil {
		return "", nil, err
	}

	res := value.(resolution)
	id := s.tracker.Store(key, res.playerID)
	if shared || id != res.playerID {
		// Another worker resolved the same player first; their record wins.
		return id, nil, nil
	}
	return id, res.created, nil
}

// playerDOB fetches the player's archive page and reads the date of birth
// that follows the "Born:" label.
func (s *Scraper) playerDOB(ctx context.Context, pageURL, profileLink string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", crerr.Wrapf(scrape.ErrParse, "match page url %q", pageURL)
	}
	ref, err := url.Parse(profileLink)
	if err != nil {
		return "", crerr.Wrapf(scrape.ErrParse, "player link %q", profileLink)
	}

	doc, err := s.fetcher.Document(ctx, base.ResolveReference(ref).String())
	if err != nil {
		return "", err
	}

	var dob string
	doc.Find("b").EachWithBreak(func(_ int, b *goquery.Selection) bool {
		if !strings.Contains(b.Text(), "Born:") {
			return true
		}
		if node := b.Get(0).NextSibling; node != nil {
			dob = strings.TrimSpace(strings.ReplaceAll(node.Data, "(", ""))
		}
		return false
	})
	return dob, nil
}

// collapseText concatenates the selection's text nodes with each node
// trimmed, producing the label-glued form the metadata regex expects while
// keeping spaces that sit inside a single text node, such as the one between
// date and start time.
func collapseText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		appendStrippedText(n, &b)
	}
	return b.String()
}

func appendStrippedText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(strings.TrimSpace(n.Data))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendStrippedText(c, b)
	}
}
