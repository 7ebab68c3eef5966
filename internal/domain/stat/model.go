package stat

import "fmt"

// MatchStat is one player's counting statistics for one game. The composite
// key (GameID, PlayerID) allows at most one row per player per game.
type MatchStat struct {
	GameID     string
	PlayerID   string
	PlayerName string
	Team       string
	Year       int
	RoundID    string

	Kicks                  int
	Marks                  int
	Handballs              int
	Disposals              int
	Goals                  int
	Behinds                int
	Hitouts                int
	Tackles                int
	Rebound50s             int
	Inside50s              int
	Clearances             int
	Clangers               int
	FreeKicksFor           int
	FreeKicksAgainst       int
	BrownlowVotes          int
	ContestedPossessions   int
	UncontestedPossessions int
	ContestedMarks         int
	MarksInside50          int
	OnePercenters          int
	Bounces                int
	GoalAssists            int
	PercentPlayed          int
}

func (s MatchStat) Validate() error {
	if s.GameID == "" {
		return fmt.Errorf("stat game id is required")
	}
	if s.PlayerID == "" {
		return fmt.Errorf("stat player id is required")
	}
	if s.Team == "" {
		return fmt.Errorf("stat team is required")
	}

	return nil
}

// SetField assigns a raw source column, looked up by canonical field name, to
// the matching struct field. Returns false for an unknown name so callers can
// surface mapping drift instead of dropping values silently.
func (s *MatchStat) SetField(name string, value int) bool {
	switch name {
	case "kicks":
		s.Kicks = value
	case "marks":
		s.Marks = value
	case "handballs":
		s.Handballs = value
	case "disposals":
		s.Disposals = value
	case "goals":
		s.Goals = value
	case "behinds":
		s.Behinds = value
	case "hitouts":
		s.Hitouts = value
	case "tackles":
		s.Tackles = value
	case "rebound50s":
		s.Rebound50s = value
	case "inside50s":
		s.Inside50s = value
	case "clearances":
		s.Clearances = value
	case "clangers":
		s.Clangers = value
	case "free_kicks_for":
		s.FreeKicksFor = value
	case "free_kicks_against":
		s.FreeKicksAgainst = value
	case "brownlow_votes":
		s.BrownlowVotes = value
	case "contested_possessions":
		s.ContestedPossessions = value
	case "uncontested_possessions":
		s.UncontestedPossessions = value
	case "contested_marks":
		s.ContestedMarks = value
	case "marks_inside":
		s.MarksInside50 = value
	case "one_percenters":
		s.OnePercenters = value
	case "bounces":
		s.Bounces = value
	case "goal_assist":
		s.GoalAssists = value
	case "percent_played":
		s.PercentPlayed = value
	default:
		return false
	}
	return true
}
