// Package stat defines combatant statistics: the permanent stat array, the
// raw-stat calculation and the battle stat stages.
package stat

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stat identifies one statistic. HP through SPD are permanent stats;
// ATK through EVA carry battle stages.
type Stat int

const (
	HP Stat = iota
	ATK
	DEF
	SPATK
	SPDEF
	SPD
	ACC
	EVA
)

// PermanentCount is the number of permanent stats (HP..SPD).
const PermanentCount = 6

// BattleCount is the number of stage-modifiable stats (ATK..EVA).
const BattleCount = 7

var names = [...]string{"hp", "atk", "def", "spatk", "spdef", "spd", "acc", "eva"}

// String returns the lower-case short name of the stat.
func (s Stat) String() string {
	if s < HP || s > EVA {
		return "unknown"
	}
	return names[s]
}

// IsPermanent reports whether s is one of HP..SPD.
func (s Stat) IsPermanent() bool { return s >= HP && s <= SPD }

// IsBattle reports whether s carries a battle stage.
func (s Stat) IsBattle() bool { return s >= ATK && s <= EVA }

// Parse resolves a stat short name ("atk", "spdef", ...).
//
// Postcondition: Returns the Stat or an error naming the unknown input.
func Parse(name string) (Stat, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, v := range names {
		if v == n {
			return Stat(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stat %q", name)
}

// UnmarshalYAML decodes a stat from its short name.
func (s *Stat) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	v, err := Parse(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Permanent lists HP..SPD in order.
func Permanent() []Stat { return []Stat{HP, ATK, DEF, SPATK, SPDEF, SPD} }

// Values is a permanent stat array indexed by Stat.
type Values [PermanentCount]int

// Get returns the value for s, or 0 for a non-permanent stat.
func (v Values) Get(s Stat) int {
	if !s.IsPermanent() {
		return 0
	}
	return v[s]
}
