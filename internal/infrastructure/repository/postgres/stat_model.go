package postgres

type statTableModel struct {
	PlayerID   string `db:"player_id"`
	GameID     string `db:"game_id"`
	PlayerName string `db:"player_name"`
	Team       string `db:"team"`
	Year       int    `db:"year"`
	RoundID    string `db:"round_id"`

	Kicks                  int `db:"kicks"`
	Marks                  int `db:"marks"`
	Handballs              int `db:"handballs"`
	Disposals              int `db:"disposals"`
	Goals                  int `db:"goals"`
	Behinds                int `db:"behinds"`
	Hitouts                int `db:"hitouts"`
	Tackles                int `db:"tackles"`
	Rebound50s             int `db:"rebound_50s"`
	Inside50s              int `db:"inside_50s"`
	Clearances             int `db:"clearances"`
	Clangers               int `db:"clangers"`
	FreeKicksFor           int `db:"free_kicks_for"`
	FreeKicksAgainst       int `db:"free_kicks_against"`
	BrownlowVotes          int `db:"brownlow_votes"`
	ContestedPossessions   int `db:"contested_possessions"`
	UncontestedPossessions int `db:"uncontested_possessions"`
	ContestedMarks         int `db:"contested_marks"`
	MarksInside50          int `db:"marks_inside_50"`
	OnePercenters          int `db:"one_percenters"`
	Bounces                int `db:"bounces"`
	GoalAssists            int `db:"goal_assists"`
	PercentPlayed          int `db:"percent_played"`
}
