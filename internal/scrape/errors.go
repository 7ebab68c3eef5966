package scrape

import crerr "github.com/cockroachdb/errors"

// Failure taxonomy for a run. Each sentinel is fatal only for the unit it
// names: a page, a record, or a field. Callers skip and continue.
var (
	// ErrFetch marks transport or non-success status failures for one page.
	ErrFetch = crerr.New("fetch failed")
	// ErrParse marks expected structure or regex not found in a fetched page.
	ErrParse = crerr.New("parse failed")
	// ErrFormat marks a malformed date or name value.
	ErrFormat = crerr.New("bad format")
	// ErrProfileNotFound is the profile site's soft miss: the match proceeds
	// without that player rather than failing the run.
	ErrProfileNotFound = crerr.New("player profile not found")
)
