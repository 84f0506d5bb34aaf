// Package move provides the move table: move definitions with their typed
// attributes, loaded from YAML.
package move

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

// Category is the damage class of a move.
type Category int

const (
	Physical Category = iota
	Special
	Status
)

// String returns "physical", "special" or "status".
func (c Category) String() string {
	switch c {
	case Physical:
		return "physical"
	case Special:
		return "special"
	default:
		return "status"
	}
}

// UnmarshalYAML decodes a category from its name.
func (c *Category) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	switch raw {
	case "physical":
		*c = Physical
	case "special":
		*c = Special
	case "status":
		*c = Status
	default:
		return fmt.Errorf("unknown move category %q", raw)
	}
	return nil
}

// Target describes which combatants a move hits.
type Target string

const (
	TargetSingle     Target = "single"
	TargetAllEnemies Target = "all_enemies"
	TargetAllOthers  Target = "all_others"
	TargetSelf       Target = "self"
)

// Spread reports whether the target selection can hit more than one combatant.
func (t Target) Spread() bool { return t == TargetAllEnemies || t == TargetAllOthers }

// AttrKind names a move attribute the damage pipeline reacts to.
type AttrKind string

const (
	AttrTypeless            AttrKind = "typeless"
	AttrFixedDamage         AttrKind = "fixed_damage"
	AttrLevelDamage         AttrKind = "level_damage" // fixed damage equal to the user's level
	AttrOneHitKO            AttrKind = "ohko"
	AttrHighCrit            AttrKind = "high_crit"
	AttrAlwaysCrit          AttrKind = "always_crit"
	AttrIgnoreStatChanges   AttrKind = "ignore_opponent_stat_changes"
	AttrIgnoreWeatherDebuff AttrKind = "ignore_weather_debuff"
	AttrBypassBurn          AttrKind = "bypass_burn"
	AttrMultiHit            AttrKind = "multi_hit"
	AttrRespectsImmunity    AttrKind = "respects_immunity"
	AttrImmuneOnNoEffect    AttrKind = "immune_on_no_effect"
	AttrPhysicalIfStronger  AttrKind = "physical_if_stronger"
	AttrStatusPowerBoost    AttrKind = "status_power_boost"
	AttrBypassSegments      AttrKind = "bypass_segments"
	AttrFails               AttrKind = "fails"
	AttrStatChange          AttrKind = "stat_change"    // changes Stat by Stages on the user (self) or the target
	AttrInflictStatus       AttrKind = "inflict_status" // inflicts Status on the target
)

// Attr is one typed attribute of a move.
type Attr struct {
	Kind       AttrKind `yaml:"kind"`
	Value      int      `yaml:"value"`      // fixed_damage
	Stages     int      `yaml:"stages"`     // high_crit
	Hits       string   `yaml:"hits"`       // multi_hit dice expression, e.g. "2d4" or "2"
	Multiplier float64  `yaml:"multiplier"` // status_power_boost
	Stat       string   `yaml:"stat"`       // stat_change
	Self       bool     `yaml:"self"`       // stat_change
	Status     string   `yaml:"status"`     // inflict_status
}

// Def is a move table entry.
type Def struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Type     typechart.Type `yaml:"type"`
	Category Category       `yaml:"category"`
	Power    int            `yaml:"power"`
	Accuracy int            `yaml:"accuracy"` // -1 never misses
	PP       int            `yaml:"pp"`
	Priority int            `yaml:"priority"`
	Target   Target         `yaml:"target"`
	Flags    []string       `yaml:"flags"`
	Attrs    []Attr         `yaml:"attrs"`
	// Unimplemented marks a move whose effect the engine does not model.
	Unimplemented bool `yaml:"unimplemented"`

	hits *dice.Expression
}

// Has reports whether the move carries an attribute of kind k.
func (d *Def) Has(k AttrKind) bool {
	_, ok := d.Attr(k)
	return ok
}

// Attr returns the first attribute of kind k.
func (d *Def) Attr(k AttrKind) (Attr, bool) {
	for _, a := range d.Attrs {
		if a.Kind == k {
			return a, true
		}
	}
	return Attr{}, false
}

// HasFlag reports whether the move carries flag f.
func (d *Def) HasFlag(f string) bool {
	for _, v := range d.Flags {
		if v == f {
			return true
		}
	}
	return false
}

// IsMultiHit reports whether the move inherently strikes more than once.
func (d *Def) IsMultiHit() bool { return d.hits != nil }

// StatChange returns the parsed stat_change attribute.
func (d *Def) StatChange() (st stat.Stat, stages int, self bool, ok bool) {
	a, found := d.Attr(AttrStatChange)
	if !found {
		return 0, 0, false, false
	}
	st, err := stat.Parse(a.Stat)
	if err != nil {
		return 0, 0, false, false
	}
	return st, a.Stages, a.Self, true
}

// HitCount returns the hit-count expression; single-hit moves roll a constant 1.
func (d *Def) HitCount() dice.Expression {
	if d.hits == nil {
		return dice.Expression{Raw: "1", Modifier: 1}
	}
	return *d.hits
}

// Validate checks the move's invariants and prepares derived fields.
//
// Postcondition: Returns nil iff the move is usable by the engine.
func (d *Def) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("move: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("move %q: name must not be empty", d.ID)
	}
	if d.Power < 0 {
		return fmt.Errorf("move %q: power must be >= 0", d.ID)
	}
	if d.Category != Status && d.Power == 0 && !d.Has(AttrFixedDamage) && !d.Has(AttrLevelDamage) && !d.Has(AttrOneHitKO) && !d.Has(AttrFails) {
		return fmt.Errorf("move %q: damaging moves need power or a fixed damage attribute", d.ID)
	}
	if d.Target == "" {
		d.Target = TargetSingle
	}
	switch d.Target {
	case TargetSingle, TargetAllEnemies, TargetAllOthers, TargetSelf:
	default:
		return fmt.Errorf("move %q: unknown target %q", d.ID, d.Target)
	}
	for _, a := range d.Attrs {
		switch a.Kind {
		case AttrFixedDamage:
			if a.Value < 1 {
				return fmt.Errorf("move %q: fixed_damage value must be >= 1", d.ID)
			}
		case AttrMultiHit:
			expr, err := dice.Parse(a.Hits)
			if err != nil {
				return fmt.Errorf("move %q: %w", d.ID, err)
			}
			if expr.Min() < 1 {
				return fmt.Errorf("move %q: multi_hit must roll at least 1", d.ID)
			}
			d.hits = &expr
		case AttrStatChange:
			if st, err := stat.Parse(a.Stat); err != nil || !st.IsBattle() || a.Stages == 0 {
				return fmt.Errorf("move %q: stat_change needs a battle stat and non-zero stages", d.ID)
			}
		case AttrInflictStatus:
			if !statuses[a.Status] {
				return fmt.Errorf("move %q: unknown status %q", d.ID, a.Status)
			}
		case AttrTypeless, AttrLevelDamage, AttrOneHitKO, AttrHighCrit, AttrAlwaysCrit, AttrIgnoreStatChanges,
			AttrIgnoreWeatherDebuff, AttrBypassBurn, AttrRespectsImmunity, AttrImmuneOnNoEffect,
			AttrPhysicalIfStronger, AttrStatusPowerBoost, AttrBypassSegments, AttrFails:
		default:
			return fmt.Errorf("move %q: unknown attribute %q", d.ID, a.Kind)
		}
	}
	return nil
}

// statuses are the status conditions a move may inflict.
var statuses = map[string]bool{"burn": true, "paralysis": true, "poison": true, "sleep": true, "freeze": true}

// StruggleID is the move used when a combatant has nothing else to use.
const StruggleID = "struggle"

// FallbackID is the guaranteed-fail move substituted for unresolvable move ids.
const FallbackID = "none"

// Struggle returns the typeless last-resort attack.
func Struggle() *Def {
	return &Def{
		ID: StruggleID, Name: "Struggle", Type: typechart.Normal, Category: Physical,
		Power: 50, Accuracy: -1, Target: TargetSingle,
		Attrs: []Attr{{Kind: AttrTypeless}},
	}
}

// Fallback returns the move that always fails.
func Fallback() *Def {
	return &Def{
		ID: FallbackID, Name: "-", Type: typechart.Unknown, Category: Status,
		Accuracy: -1, Target: TargetSingle,
		Attrs: []Attr{{Kind: AttrFails}},
	}
}
