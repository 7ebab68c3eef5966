package normalize

// StatColumns lists the canonical names of the raw statistic columns in the
// order the match archive renders them. Column i maps to table cell i+2 (cell
// 0 is the jumper number, cell 1 the player name).
var StatColumns = []string{
	"kicks", "marks", "handballs", "disposals", "goals", "behinds",
	"hitouts", "tackles", "rebound50s", "inside50s", "clearances",
	"clangers", "free_kicks_for", "free_kicks_against", "brownlow_votes",
	"contested_possessions", "uncontested_possessions", "contested_marks",
	"marks_inside", "one_percenters", "bounces", "goal_assist", "percent_played",
}

// StatCellOffset is the first table cell holding a statistic value.
const StatCellOffset = 2

// MinStatCells is the cell count below which a row is treated as malformed
// (header spacers, injury notes, totals rows).
const MinStatCells = 25

// surnameCorrections maps surnames the archive renders glued together (the
// apostrophe is dropped inconsistently) to the slug tokens the profile site
// expects. "OConnell" appears in profile URLs as "o-connell".
var surnameCorrections = map[string][]string{
	"OConnell":  {"o", "connell"},
	"OSullivan": {"o", "sullivan"},
}
