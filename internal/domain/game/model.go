package game

import "fmt"

// Game is one completed AFL match as scraped from the season archive. It is
// built once and never mutated; season data only ever grows.
type Game struct {
	GameID     string
	Year       string
	RoundID    string
	Venue      string
	Date       string // YYYY-MM-DD
	StartTime  string
	Attendance int

	HomeTeam       string
	HomeScoreQT    string // "goals.behinds"
	HomeScoreHT    string
	HomeScore3QT   string
	HomeScoreFT    string
	HomeScoreFinal string

	AwayTeam       string
	AwayScoreQT    string
	AwayScoreHT    string
	AwayScore3QT   string
	AwayScoreFT    string
	AwayScoreFinal string
}

func (g Game) Validate() error {
	if g.GameID == "" {
		return fmt.Errorf("game id is required")
	}
	if g.Year == "" {
		return fmt.Errorf("game year is required")
	}
	if g.RoundID == "" {
		return fmt.Errorf("game round is required")
	}
	if g.Date == "" {
		return fmt.Errorf("game date is required")
	}
	if g.HomeTeam == "" || g.AwayTeam == "" {
		return fmt.Errorf("both team names are required")
	}
	if g.Attendance < 0 {
		return fmt.Errorf("attendance cannot be negative")
	}

	return nil
}

// Reduced carries just enough of an already-persisted game to keep player
// stat extraction going without re-inserting the game row.
type Reduced struct {
	GameID   string
	HomeTeam string
	AwayTeam string
	RoundID  string
}
