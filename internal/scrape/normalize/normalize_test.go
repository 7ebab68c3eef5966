package normalize

import (
	"errors"
	"testing"

	"github.com/dkearsley/afl-stats/internal/scrape"
)

func TestDate_ConvertsArchiveFormat(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"16-Mar-2025": "2025-03-16",
		"05-May-2025": "2025-05-05",
		"5-May-2025":  "2025-05-05",
		"1-Jan-1999":  "1999-01-01",
		"31-Dec-2024": "2024-12-31",
	}

	for in, want := range cases {
		got, err := Date(in)
		if err != nil {
			t.Fatalf("Date(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("Date(%q): got=%s want=%s", in, got, want)
		}
	}
}

func TestDate_RejectsUnparseableInput(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "2025-03-16", "16/03/2025", "Mar-16-2025", "32-Jan-2025"} {
		_, err := Date(in)
		if !errors.Is(err, scrape.ErrFormat) {
			t.Fatalf("Date(%q): expected format error, got %v", in, err)
		}
	}
}

func TestTruncateScore(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"6.4.40":  "6.4",
		"0.0.0":   "0.0",
		"12.9.81": "12.9",
		"6.4":     "6.4",
		"40":      "40",
		"":        "",
	}

	for in, want := range cases {
		if got := TruncateScore(in); got != want {
			t.Fatalf("TruncateScore(%q): got=%q want=%q", in, got, want)
		}
	}
}

func TestSlugifyName_MovesSurnameToTail(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Smith, John":         "john-smith",
		"Draper, Sid":         "sid-draper",
		"De Koning, Tom":      "tom-de-koning",
		"Bontempelli, Marcus": "marcus-bontempelli",
	}

	for in, want := range cases {
		got, err := SlugifyName(in)
		if err != nil {
			t.Fatalf("SlugifyName(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("SlugifyName(%q): got=%q want=%q", in, got, want)
		}
	}
}

func TestSlugifyName_AppliesSurnameCorrections(t *testing.T) {
	t.Parallel()

	got, err := SlugifyName("OConnell, Liam")
	if err != nil {
		t.Fatalf("SlugifyName: %v", err)
	}
	if got != "liam-o-connell" {
		t.Fatalf("corrected slug: got=%q want=%q", got, "liam-o-connell")
	}

	got, err = SlugifyName("OSullivan, Pat")
	if err != nil {
		t.Fatalf("SlugifyName: %v", err)
	}
	if got != "pat-o-sullivan" {
		t.Fatalf("corrected slug: got=%q want=%q", got, "pat-o-sullivan")
	}
}

func TestSlugifyName_RejectsSingleToken(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "Smith", "  ,  "} {
		_, err := SlugifyName(in)
		if !errors.Is(err, scrape.ErrFormat) {
			t.Fatalf("SlugifyName(%q): expected format error, got %v", in, err)
		}
	}
}

func TestTeamSlug(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Adelaide":               "adelaide",
		"St Kilda":               "st-kilda",
		"Greater Western Sydney": "greater-western-sydney",
	}

	for in, want := range cases {
		if got := TeamSlug(in); got != want {
			t.Fatalf("TeamSlug(%q): got=%q want=%q", in, got, want)
		}
	}
}

func TestStatColumns_CoverEveryArchiveColumn(t *testing.T) {
	t.Parallel()

	if len(StatColumns) != 23 {
		t.Fatalf("expected 23 stat columns, got=%d", len(StatColumns))
	}

	seen := make(map[string]struct{}, len(StatColumns))
	for _, name := range StatColumns {
		if _, dup := seen[name]; dup {
			t.Fatalf("duplicate stat column %q", name)
		}
		seen[name] = struct{}{}
	}
}
