package id

import (
	"strings"
	"testing"
)

func TestRandomGeneratorShape(t *testing.T) {
	t.Parallel()

	gen := NewRandomGenerator()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		got, err := gen.NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if len(got) != PlayerIDLength {
			t.Fatalf("id %q has length %d", got, len(got))
		}
		for _, r := range got {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("id %q contains %q outside the alphabet", got, r)
			}
		}
		if _, ok := seen[got]; ok {
			t.Fatalf("id %q minted twice in 100 draws", got)
		}
		seen[got] = struct{}{}
	}
}
