// Package normalize holds the text munging the match archive forces on us:
// date formats, score truncation and display-name-to-slug conversion.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/dkearsley/afl-stats/internal/scrape"
)

const (
	archiveDateLayout = "2-Jan-2006"
	isoDateLayout     = "2006-01-02"
)

// Date converts the archive's "DD-Mon-YYYY" format to "YYYY-MM-DD".
func Date(d string) (string, error) {
	parsed, err := time.Parse(archiveDateLayout, strings.TrimSpace(d))
	if err != nil {
		return "", fmt.Errorf("%w: date %q is not DD-Mon-YYYY", scrape.ErrFormat, d)
	}
	return parsed.Format(isoDateLayout), nil
}

// TruncateScore keeps the first two dot-separated parts of a quarter score.
// The archive renders "goals.behinds.total"; the historical baseline dataset
// omits the running total, so we do too. Inputs with fewer than two parts are
// returned unchanged.
func TruncateScore(value string) string {
	parts := strings.Split(value, ".")
	if len(parts) < 2 {
		return value
	}
	return parts[0] + "." + parts[1]
}

// SlugifyName converts the archive's "Last, First [Middle]" display name into
// the "first-middle-last" lowercase slug the profile site uses in URLs.
// Surnames in the correction table expand to their fixed token list, since
// the archive glues apostrophe surnames together ("OConnell").
func SlugifyName(displayName string) (string, error) {
	tokens := splitNameTokens(displayName)
	if len(tokens) < 2 {
		return "", fmt.Errorf("%w: name %q must be in \"Last, First\" form", scrape.ErrFormat, displayName)
	}

	// The given name trails in the archive; the profile slug leads with it.
	// Rotating the last token to the front keeps compound surname words in
	// order ("De Koning, Tom" becomes tom-de-koning).
	rotated := make([]string, 0, len(tokens)+1)
	rotated = append(rotated, tokens[len(tokens)-1])
	rotated = append(rotated, tokens[:len(tokens)-1]...)

	if corrected, ok := surnameCorrections[rotated[len(rotated)-1]]; ok {
		rotated = append(rotated[:len(rotated)-1], corrected...)
	}

	return strings.ToLower(strings.Join(rotated, "-")), nil
}

// TeamSlug hyphenates a multi-word team name for profile URLs.
func TeamSlug(teamName string) string {
	return strings.ToLower(strings.Join(strings.Fields(teamName), "-"))
}

func splitNameTokens(name string) []string {
	raw := strings.FieldsFunc(name, func(r rune) bool {
		return r == ',' || r == '\'' || r == ' ' || r == '\t'
	})

	out := make([]string, 0, len(raw))
	for _, token := range raw {
		if token = strings.TrimSpace(token); token != "" {
			out = append(out, token)
		}
	}
	return out
}
