package player

import "fmt"

// Player is an athlete profile stitched together from both sources: the
// display name and date of birth come from the match archive, the biometrics
// from the profile site. The archive has no durable player identifier, so
// (DisplayName, DOB) is the natural dedup key and PlayerID is minted locally.
type Player struct {
	PlayerID    string
	DisplayName string // as rendered by the match archive, "Last, First"
	DOB         string
	Height      int // cm, 0 when the profile omits it
	Weight      int // kg, 0 when the profile omits it
	Position    string
	Origin      string
}

func (p Player) Validate() error {
	if p.PlayerID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.DisplayName == "" {
		return fmt.Errorf("player display name is required")
	}
	if p.DOB == "" {
		return fmt.Errorf("player date of birth is required")
	}

	return nil
}

// NaturalKey is the cross-source identity of a player.
func (p Player) NaturalKey() Key {
	return Key{DisplayName: p.DisplayName, DOB: p.DOB}
}

type Key struct {
	DisplayName string
	DOB         string
}
