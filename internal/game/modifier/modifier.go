// Package modifier is the stacking modifier store. Every modifier is one
// value of the Modifier struct tagged by Kind; the per-kind behavior table
// supplies matching, stack ceilings, counter merging and constructor
// arguments.
package modifier

import (
	"errors"
	"slices"

	"github.com/google/uuid"

	"github.com/cory-johannsen/battlecore/internal/game/field"
	"github.com/cory-johannsen/battlecore/internal/game/quest"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

// ErrUnknownKind is returned when restoring a snapshot of an unregistered kind.
var ErrUnknownKind = errors.New("unknown modifier kind")

// Kind tags a modifier.
type Kind string

const (
	// StatBooster multiplies listed raw stats of its owner once.
	StatBooster Kind = "stat_booster"
	// BaseStatBooster multiplies one raw stat by 1 + 0.1 per stack, up to the owner's IV.
	BaseStatBooster Kind = "base_stat_booster"
	// CritBooster adds crit stages to its owner's attacks.
	CritBooster Kind = "crit_booster"
	// AttackTypeBooster raises the power of its owner's moves of one type.
	AttackTypeBooster Kind = "attack_type_booster"
	// MultiHit makes its owner's single-hit moves strike stacks+1 times at reduced power.
	MultiHit Kind = "multi_hit"
	// SurviveDamage gives its owner a stacks-in-ten chance to survive a lethal hit.
	SurviveDamage Kind = "survive_damage"
	// TempStatBooster adds one battle stage to a player stat for a number of battles.
	TempStatBooster Kind = "temp_stat_booster"
	// EnemyDamageBooster scales enemy damage by 1.05 per stack.
	EnemyDamageBooster Kind = "enemy_damage_booster"
	// EnemyDamageReducer scales damage dealt to enemies by 0.975 per stack.
	EnemyDamageReducer Kind = "enemy_damage_reducer"
	// EnemyEndureChance gives enemies a 2% per stack chance to endure once per battle.
	EnemyEndureChance Kind = "enemy_endure_chance"
	// SegmentBypass lets heavy hits carry through boss segment boundaries.
	SegmentBypass Kind = "segment_bypass"
	// PermaLapsing is a named global effect with a battle counter; re-adding extends it.
	PermaLapsing Kind = "perma_lapsing"
	// LimitedUse is a named global effect with a use counter; re-adding adds uses.
	LimitedUse Kind = "limited_use"
	// Quest tracks quest progress.
	Quest Kind = "quest"
)

// DefaultTempBattles is the battle count of a new temporary stat booster.
const DefaultTempBattles = 3

// Modifier is one stacking effect instance. Kind-specific parameters share
// the struct; only those documented for Kind are meaningful.
//
// Invariant: Stack + Virtual <= the kind's max stack at the time of the last add.
type Modifier struct {
	ID   uuid.UUID
	Kind Kind
	Side field.Side
	// OwnerID is the combatant holding the modifier; empty for global modifiers.
	OwnerID string
	Stack   int
	// Virtual stacks count toward magnitude but not toward display or removal.
	Virtual int

	BattlesLeft int
	UsesLeft    int

	Stats      []stat.Stat    // StatBooster
	Stat       stat.Stat      // BaseStatBooster, TempStatBooster
	Multiplier float64        // StatBooster, AttackTypeBooster (fraction per stack), PermaLapsing, LimitedUse
	Stages     int            // CritBooster
	MoveType   typechart.Type // AttackTypeBooster
	Name       string         // PermaLapsing, LimitedUse
	Progress   *quest.Progress
}

// Total returns real plus virtual stacks.
func (m *Modifier) Total() int { return m.Stack + m.Virtual }

// Held reports whether the modifier is scoped to an owner.
func (m *Modifier) Held() bool { return m.OwnerID != "" }

func (m *Modifier) clone() *Modifier {
	c := *m
	c.Stats = slices.Clone(m.Stats)
	return &c
}

// Owners resolves live combatants for owner-dependent stack ceilings.
type Owners interface {
	// IVs returns the individual values of a combatant still in the encounter.
	IVs(id string) (stat.Values, bool)
}

type behavior struct {
	// match reports whether incoming merges into existing.
	match func(existing, incoming *Modifier) bool
	// maxStack is the ceiling; it may read the owner.
	maxStack func(m *Modifier, owners Owners) int
	// absorb, when set, merges counters instead of stacking.
	absorb func(existing, incoming *Modifier)
	// lapsing kinds count BattlesLeft down at battle end.
	lapsing bool
	// side forces the list the kind lives in.
	side *field.Side
	args    func(m *Modifier) []any
	restore func(m *Modifier, a args, quests *quest.Catalog) error
}

var (
	playerSide = field.SidePlayer
	enemySide  = field.SideEnemy
)

func sameOwner(a, b *Modifier) bool { return a.OwnerID == b.OwnerID }

func constMax(n int) func(*Modifier, Owners) int {
	return func(*Modifier, Owners) int { return n }
}

// heldMax wraps a ceiling for owner-scoped kinds: a missing owner yields 0.
func heldMax(f func(m *Modifier, ivs stat.Values) int) func(*Modifier, Owners) int {
	return func(m *Modifier, owners Owners) int {
		if owners == nil {
			return f(m, stat.Values{31, 31, 31, 31, 31, 31})
		}
		ivs, ok := owners.IVs(m.OwnerID)
		if !ok {
			return 0
		}
		return f(m, ivs)
	}
}

var behaviors = map[Kind]behavior{
	StatBooster: {
		match: func(a, b *Modifier) bool {
			return sameOwner(a, b) && a.Multiplier == b.Multiplier && slices.Equal(a.Stats, b.Stats)
		},
		maxStack: heldMax(func(*Modifier, stat.Values) int { return 1 }),
		args: func(m *Modifier) []any {
			return []any{m.OwnerID, encodeStats(m.Stats), m.Multiplier}
		},
		restore: func(m *Modifier, a args, _ *quest.Catalog) error {
			var err error
			if m.OwnerID, err = a.str(0); err != nil {
				return err
			}
			if m.Stats, err = a.stats(1); err != nil {
				return err
			}
			m.Multiplier, err = a.number(2)
			return err
		},
	},
	BaseStatBooster: {
		match:    func(a, b *Modifier) bool { return sameOwner(a, b) && a.Stat == b.Stat },
		maxStack: heldMax(func(m *Modifier, ivs stat.Values) int { return ivs.Get(m.Stat) }),
		args:     func(m *Modifier) []any { return []any{m.OwnerID, m.Stat.String()} },
		restore: func(m *Modifier, a args, _ *quest.Catalog) error {
			var err error
			if m.OwnerID, err = a.str(0); err != nil {
				return err
			}
			m.Stat, err = a.stat(1)
			return err
		},
	},
	CritBooster: {
		match:    func(a, b *Modifier) bool { return sameOwner(a, b) && a.Stages == b.Stages },
		maxStack: heldMax(func(*Modifier, stat.Values) int { return 1 }),
		args:     func(m *Modifier) []any { return []any{m.OwnerID, m.Stages} },
		restore: func(m *Modifier, a args, _ *quest.Catalog) error {
			var err error
			if m.OwnerID, err = a.str(0); err != nil {
				return err
			}
			m.Stages, err = a.integer(1)
			return err
		},
	},
	AttackTypeBooster: {
		match: func(a, b *Modifier) bool {
			return sameOwner(a, b) && a.MoveType == b.MoveType && a.Multiplier == b.Multiplier
		},
		maxStack: heldMax(func(*Modifier, stat.Values) int { return 99 }),
		args:     func(m *Modifier) []any { return []any{m.OwnerID, m.MoveType.String(), m.Multiplier} },
		restore: func(m *Modifier, a args, _ *quest.Catalog) error {
			var err error
			if m.OwnerID, err = a.str(0); err != nil {
				return err
			}
			if m.MoveType, err = a.moveType(1); err != nil {
				return err
			}
			m.Multiplier, err = a.number(2)
			return err
		},
	},
	MultiHit: {
		match:    sameOwner,
		maxStack: heldMax(func(*Modifier, stat.Values) int { return 3 }),
		args:     func(m *Modifier) []any { return []any{m.OwnerID} },
		restore: func(m *Modifier, a args, _ *quest.Catalog) error {
			var err error
			m.OwnerID, err = a.str(0)
			return err
		},
	},
	SurviveDamage: {
		match:    sameOwner,
		maxStack: heldMax(func(*Modifier, stat.Values) int { return 5 }),
		args:     func(m *Modifier) []any { return []any{m.OwnerID} },
		restore: func(m *Modifier, a args, _ *quest.Catalog) error {
			var err error
			m.OwnerID, err = a.str(0)
			return err
		},
	},
	TempStatBooster: {
		match:    func(a, b *Modifier) bool { return a.Stat == b.Stat && a.BattlesLeft == b.BattlesLeft },
		maxStack: constMax(99),
		lapsing:  true,
		side:     &playerSide,
		args:     func(m *Modifier) []any { return []any{m.Stat.String(), m.BattlesLeft} },
		restore: func(m *Modifier, a args, _ *quest.Catalog) error {
			var err error
			if m.Stat, err = a.stat(0); err != nil {
				return err
			}
			m.BattlesLeft, err = a.integer(1)
			return err
		},
	},
	EnemyDamageBooster: {
		match:    func(*Modifier, *Modifier) bool { return true },
		maxStack: constMax(999),
		side:     &enemySide,
		args:     func(*Modifier) []any { return nil },
		restore:  func(*Modifier, args, *quest.Catalog) error { return nil },
	},
	EnemyDamageReducer: {
		match:    func(*Modifier, *Modifier) bool { return true },
		maxStack: constMax(99),
		side:     &enemySide,
		args:     func(*Modifier) []any { return nil },
		restore:  func(*Modifier, args, *quest.Catalog) error { return nil },
	},
	EnemyEndureChance: {
		match:    func(*Modifier, *Modifier) bool { return true },
		maxStack: constMax(10),
		side:     &enemySide,
		args:     func(*Modifier) []any { return nil },
		restore:  func(*Modifier, args, *quest.Catalog) error { return nil },
	},
	SegmentBypass: {
		match:    func(*Modifier, *Modifier) bool { return true },
		maxStack: constMax(1),
		side:     &playerSide,
		args:     func(*Modifier) []any { return nil },
		restore:  func(*Modifier, args, *quest.Catalog) error { return nil },
	},
	PermaLapsing: {
		match:    func(a, b *Modifier) bool { return a.Name == b.Name },
		maxStack: constMax(5),
		absorb:   func(a, b *Modifier) { a.BattlesLeft += b.BattlesLeft },
		lapsing:  true,
		side:     &playerSide,
		args:     func(m *Modifier) []any { return []any{m.Name, m.BattlesLeft, m.Multiplier} },
		restore: func(m *Modifier, a args, _ *quest.Catalog) error {
			var err error
			if m.Name, err = a.str(0); err != nil {
				return err
			}
			if m.BattlesLeft, err = a.integer(1); err != nil {
				return err
			}
			m.Multiplier, err = a.number(2)
			return err
		},
	},
	LimitedUse: {
		match:    func(a, b *Modifier) bool { return a.Name == b.Name },
		maxStack: constMax(1),
		absorb:   func(a, b *Modifier) { a.UsesLeft += b.UsesLeft },
		side:     &playerSide,
		args:     func(m *Modifier) []any { return []any{m.Name, m.UsesLeft, m.Multiplier} },
		restore: func(m *Modifier, a args, _ *quest.Catalog) error {
			var err error
			if m.Name, err = a.str(0); err != nil {
				return err
			}
			if m.UsesLeft, err = a.integer(1); err != nil {
				return err
			}
			m.Multiplier, err = a.number(2)
			return err
		},
	},
	Quest: {
		match: func(a, b *Modifier) bool {
			return a.Progress != nil && b.Progress != nil && a.Progress.Def.ID == b.Progress.Def.ID
		},
		maxStack: constMax(1),
		side:     &playerSide,
		args:     func(m *Modifier) []any { return m.Progress.Args() },
		restore: func(m *Modifier, a args, quests *quest.Catalog) error {
			if quests == nil {
				return errors.New("quest snapshot without a quest catalog")
			}
			p, err := quest.Restore(quests, a)
			if err != nil {
				return err
			}
			m.Progress = p
			return nil
		},
	},
}

// Known reports whether k has a registered behavior.
func Known(k Kind) bool {
	_, ok := behaviors[k]
	return ok
}
