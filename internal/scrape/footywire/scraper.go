// Package footywire scrapes the profile site for player biometrics. It is the
// secondary source: consulted only when the match archive surfaces a player
// the store has never seen, and the minting point for new player IDs.
package footywire

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"

	"github.com/dkearsley/afl-stats/internal/domain/player"
	"github.com/dkearsley/afl-stats/internal/platform/id"
	"github.com/dkearsley/afl-stats/internal/platform/logging"
	"github.com/dkearsley/afl-stats/internal/scrape"
	"github.com/dkearsley/afl-stats/internal/scrape/normalize"
)

const notFoundMarker = "Oops! Player Not Found"

var (
	originRegex   = regexp.MustCompile(`Origin:\s+(.+)`)
	heightRegex   = regexp.MustCompile(`Height:\s*(\d+)\s*cm`)
	weightRegex   = regexp.MustCompile(`Weight:\s*(\d+)\s*kg`)
	positionRegex = regexp.MustCompile(`(?s)Position:\s*(.*)`)
)

// Fetcher is the page-fetching capability the scraper consumes.
type Fetcher interface {
	Document(ctx context.Context, url string) (*goquery.Document, error)
}

type Scraper struct {
	baseURL string
	fetcher Fetcher
	ids     id.Generator
	logger  *logging.Logger
}

func NewScraper(baseURL string, fetcher Fetcher, ids id.Generator, logger *logging.Logger) *Scraper {
	if logger == nil {
		logger = logging.Default()
	}
	return &Scraper{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: fetcher,
		ids:     ids,
		logger:  logger,
	}
}

// FetchProfile locates the player's profile page and extracts biometric data,
// minting a fresh player ID. A missing profile returns ErrProfileNotFound so
// callers can skip that player without failing the match. Height, weight,
// position and origin may each be absent without failing.
func (s *Scraper) FetchProfile(ctx context.Context, displayName, teamName, dob string) (*player.Player, error) {
	url, err := s.profileURL(displayName, teamName)
	if err != nil {
		return nil, err
	}

	doc, err := s.fetcher.Document(ctx, url)
	if err != nil {
		return nil, err
	}

	if strings.Contains(doc.Text(), notFoundMarker) {
		s.logger.InfoContext(ctx, "profile not found", "player", displayName, "url", url)
		return nil, crerr.Wrapf(scrape.ErrProfileNotFound, "%s", displayName)
	}

	playerID, err := s.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("mint player id: %w", err)
	}

	p := &player.Player{
		PlayerID:    playerID,
		DisplayName: displayName,
		DOB:         dob,
		Origin:      extractOrigin(doc.Find("div#playerProfileData1").Text()),
	}
	p.Height, p.Weight, p.Position = extractBiometrics(doc.Find("div#playerProfileData2").Text())

	return p, nil
}

func (s *Scraper) profileURL(displayName, teamName string) (string, error) {
	nameSlug, err := normalize.SlugifyName(displayName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/pp-%s--%s", s.baseURL, normalize.TeamSlug(teamName), nameSlug), nil
}

func extractOrigin(block string) string {
	if m := originRegex.FindStringSubmatch(block); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractBiometrics(block string) (height, weight int, position string) {
	if m := heightRegex.FindStringSubmatch(block); m != nil {
		height, _ = strconv.Atoi(m[1])
	}
	if m := weightRegex.FindStringSubmatch(block); m != nil {
		weight, _ = strconv.Atoi(m[1])
	}
	if m := positionRegex.FindStringSubmatch(block); m != nil {
		parts := strings.Split(strings.ReplaceAll(m[1], "\n", ""), ",")
		positions := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				positions = append(positions, part)
			}
		}
		position = strings.Join(positions, ", ")
	}
	return height, weight, position
}
