// Package combat implements the turn-based battle engine: effective stat
// resolution, type effectiveness, hit resolution with the full damage
// multiplier chain, survive clamps, boss segmented health and the turn loop.
package combat

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/battlecore/internal/game/ability"
	"github.com/cory-johannsen/battlecore/internal/game/field"
	"github.com/cory-johannsen/battlecore/internal/game/species"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/game/tag"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

// Result is the categorical outcome of one hit.
type Result int

const (
	ResultEffective Result = iota
	ResultSuperEffective
	ResultNotVeryEffective
	ResultOneHitKO
	ResultNoEffect
	ResultImmune
	ResultStatus
	ResultMiss
	ResultFail
)

// String returns a human-readable result label.
func (r Result) String() string {
	switch r {
	case ResultEffective:
		return "effective"
	case ResultSuperEffective:
		return "super effective"
	case ResultNotVeryEffective:
		return "not very effective"
	case ResultOneHitKO:
		return "one-hit KO"
	case ResultNoEffect:
		return "no effect"
	case ResultImmune:
		return "immune"
	case ResultStatus:
		return "status"
	case ResultMiss:
		return "miss"
	case ResultFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Damaging reports whether the result dealt move damage.
func (r Result) Damaging() bool {
	return r <= ResultOneHitKO
}

// StatusEffect is a non-volatile status condition.
type StatusEffect int

const (
	StatusNone StatusEffect = iota
	StatusBurn
	StatusParalysis
	StatusPoison
	StatusSleep
	StatusFreeze
)

var statusNames = map[string]StatusEffect{
	"burn":      StatusBurn,
	"paralysis": StatusParalysis,
	"poison":    StatusPoison,
	"sleep":     StatusSleep,
	"freeze":    StatusFreeze,
}

// ParseStatus maps a status name to its effect.
func ParseStatus(name string) (StatusEffect, bool) {
	s, ok := statusNames[name]
	return s, ok
}

// Status is the combatant's status condition with its remaining duration.
// Turns is 0 for conditions that last until cured.
type Status struct {
	Effect StatusEffect
	Turns  int
}

// MoveSlot is one move known by a combatant.
type MoveSlot struct {
	ID     string
	PPUsed int
}

// TurnData holds accumulators reset at the start of every turn.
type TurnData struct {
	DamageDealt int
	DamageTaken int
	// CurrDamageDealt is the damage of the most recent hit dealt.
	CurrDamageDealt int
	HitsLeft        int
}

// BattleData holds accumulators that live for one battle.
type BattleData struct {
	HitCount int
	// EndureUsed is set once the enemy endure chance has fired this battle.
	EndureUsed bool
}

// Combatant is one battle participant.
//
// Invariant: 0 <= HP <= MaxHP(); Tags is never nil.
type Combatant struct {
	ID        string
	Name      string
	SpeciesID string
	Side      field.Side
	Level     int
	Table     stat.Table
	// Stats are the raw permanent stats computed from Table.
	Stats stat.Values
	// HPBoost is the max HP added by held base-stat boosters. The battle
	// keeps it in step with the modifier registry.
	HPBoost int
	HP      int
	Types []typechart.Type
	// Tera is the override type, typechart.Unknown when not terastallized.
	Tera    typechart.Type
	Ability string
	// Passive is the hidden second ability slot.
	Passive string
	Status  Status
	Tags    *tag.Set
	Stages  stat.Stages
	Moves   []MoveSlot
	Boss    *Segments
	// Active is true while the combatant is on the field.
	Active bool

	Turn       TurnData
	BattleData BattleData
}

// Spec describes a combatant to build from a species entry.
type Spec struct {
	ID      string
	Name    string
	Species *species.Def
	Side    field.Side
	Level   int
	IVs     stat.Values
	Nature  stat.Nature
	// Moves overrides the species move list.
	Moves []string
	// Ability overrides the species' first ability.
	Ability string
	// BossSegments > 1 makes the combatant a segmented boss.
	BossSegments int
}

// MaxMoves is the number of move slots a combatant carries.
const MaxMoves = 4

// NewCombatant builds a combatant at full HP from s.
//
// Precondition: s.Species must be non-nil and validated; s.Level >= 1.
// Postcondition: HP == MaxHP(); the ID is a fresh UUID when s.ID is empty.
func NewCombatant(s Spec) *Combatant {
	id := s.ID
	if id == "" {
		id = uuid.NewString()
	}
	name := s.Name
	if name == "" {
		name = s.Species.Name
	}
	nature := s.Nature
	if nature.Name == "" {
		nature = stat.Neutral
	}
	table := stat.Table{Base: s.Species.BaseStats.Values(), IVs: s.IVs, Nature: nature, Level: s.Level}
	abil := s.Ability
	if abil == "" && len(s.Species.Abilities) > 0 {
		abil = s.Species.Abilities[0]
	}
	ids := s.Moves
	if len(ids) == 0 {
		ids = s.Species.Moves
	}
	if len(ids) > MaxMoves {
		ids = ids[:MaxMoves]
	}
	moves := make([]MoveSlot, len(ids))
	for i, m := range ids {
		moves[i] = MoveSlot{ID: m}
	}
	c := &Combatant{
		ID:        id,
		Name:      name,
		SpeciesID: s.Species.ID,
		Side:      s.Side,
		Level:     s.Level,
		Table:     table,
		Stats:     stat.Calculate(table),
		Types:     append([]typechart.Type(nil), s.Species.Types...),
		Tera:      typechart.Unknown,
		Ability:   abil,
		Passive:   s.Species.Passive,
		Tags:      tag.NewSet(),
		Moves:     moves,
	}
	if s.BossSegments > 1 {
		c.Boss = NewSegments(s.BossSegments)
	}
	c.HP = c.MaxHP()
	return c
}

// MaxHP returns the HP stat including held base-stat boosters.
func (c *Combatant) MaxHP() int { return c.Stats[stat.HP] + c.HPBoost }

// IsFainted reports whether HP has reached zero.
func (c *Combatant) IsFainted() bool { return c.HP <= 0 }

// IsFullHP reports whether HP equals MaxHP.
func (c *Combatant) IsFullHP() bool { return c.HP >= c.MaxHP() }

// IsPlayer reports whether the combatant fights on the player side.
func (c *Combatant) IsPlayer() bool { return c.Side == field.SidePlayer }

// IsBoss reports whether the combatant has segmented health.
func (c *Combatant) IsBoss() bool { return c.Boss != nil }

// IsTerastallized reports whether an override type is active.
func (c *Combatant) IsTerastallized() bool { return c.Tera != typechart.Unknown }

// DefendingTypes returns the types used for effectiveness lookups: the
// override type while terastallized, else the natural types.
func (c *Combatant) DefendingTypes() []typechart.Type {
	if c.IsTerastallized() && c.Tera != typechart.Stellar {
		return []typechart.Type{c.Tera}
	}
	return append([]typechart.Type(nil), c.Types...)
}

// IsOfType reports whether t is one of the natural types.
func (c *Combatant) IsOfType(t typechart.Type) bool {
	for _, v := range c.Types {
		if v == t {
			return true
		}
	}
	return false
}

// MonoTyped reports whether every natural type is t.
func (c *Combatant) MonoTyped(t typechart.Type) bool {
	if len(c.Types) == 0 {
		return false
	}
	for _, v := range c.Types {
		if v != t {
			return false
		}
	}
	return true
}

// Abilities returns the ability ids in hook order: primary, then passive.
func (c *Combatant) Abilities() []string { return []string{c.Ability, c.Passive} }

// Subject returns the read-only view ability hooks are evaluated against.
func (c *Combatant) Subject() ability.Subject {
	if c == nil {
		return ability.Subject{}
	}
	return ability.Subject{
		ID:       c.ID,
		Name:     c.Name,
		Level:    c.Level,
		HP:       c.HP,
		MaxHP:    c.MaxHP(),
		Types:    c.DefendingTypes(),
		Statused: c.Status.Effect != StatusNone,
	}
}

// ResetSummonData discards the per-summon state: tags and stat stages.
//
// Postcondition: no tags; all stages 0; turn data cleared.
func (c *Combatant) ResetSummonData() {
	c.Tags.Clear()
	c.Stages.Reset()
	c.Turn = TurnData{}
}
