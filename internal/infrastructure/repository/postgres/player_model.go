package postgres

type playerTableModel struct {
	PlayerID    string `db:"player_id"`
	DisplayName string `db:"display_name"`
	DOB         string `db:"dob"`
	Height      int    `db:"height"`
	Weight      int    `db:"weight"`
	Position    string `db:"position"`
	Origin      string `db:"origin"`
}
