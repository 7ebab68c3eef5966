package postgres

type gameTableModel struct {
	GameID         string `db:"game_id"`
	Year           string `db:"year"`
	RoundID        string `db:"round_id"`
	Venue          string `db:"venue"`
	Date           string `db:"date"`
	StartTime      string `db:"start_time"`
	Attendance     int    `db:"attendance"`
	HomeTeam       string `db:"home_team"`
	HomeScoreQT    string `db:"home_team_score_qt"`
	HomeScoreHT    string `db:"home_team_score_ht"`
	HomeScore3QT   string `db:"home_team_score_3qt"`
	HomeScoreFT    string `db:"home_team_score_ft"`
	HomeScoreFinal string `db:"home_team_score"`
	AwayTeam       string `db:"away_team"`
	AwayScoreQT    string `db:"away_team_score_qt"`
	AwayScoreHT    string `db:"away_team_score_ht"`
	AwayScore3QT   string `db:"away_team_score_3qt"`
	AwayScoreFT    string `db:"away_team_score_ft"`
	AwayScoreFinal string `db:"away_team_score"`
}
