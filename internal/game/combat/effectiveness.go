package combat

import (
	"github.com/cory-johannsen/battlecore/internal/game/ability"
	"github.com/cory-johannsen/battlecore/internal/game/field"
	"github.com/cory-johannsen/battlecore/internal/game/move"
	"github.com/cory-johannsen/battlecore/internal/game/tag"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

// IsGrounded reports whether Ground moves and terrain reach c: a grounding
// tag always does; otherwise c must not be Flying, levitating by ability or
// lifted by a Ground-immunity tag.
func (b *Battle) IsGrounded(c *Combatant) bool {
	if c.Tags.HasKind(tag.KindGrounded) {
		return true
	}
	if hasType(c.DefendingTypes(), typechart.Flying) {
		return false
	}
	ctx := b.abilityCtx(c, nil)
	ctx.MoveType = typechart.Ground
	if ability.Any(b.hooks(ability.TypeImmunity, c), ctx) {
		return false
	}
	return !tagImmune(c, typechart.Ground)
}

func tagImmune(c *Combatant, t typechart.Type) bool {
	for _, tg := range c.Tags.OfKind(tag.KindTypeImmune) {
		if hasType(tg.Def.Types, t) {
			return true
		}
	}
	return false
}

func hasType(types []typechart.Type, t typechart.Type) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}

// AttackTypeEffectiveness returns the type multiplier of an attack of
// moveType against def. attacker may be nil for attacker-less lookups; log
// receives the strong winds message unless simulated.
//
// Each defending type is looked up on the chart, with immunity-ignoring hooks
// of the attacker and exposed tags of def forcing 1, then the no-resistances
// and inverted remaps are applied in that order before the product is taken.
//
// Postcondition: Before mode remaps the result is in {0, 0.25, 0.5, 1, 2, 4},
// or half of one of those under strong winds.
func (b *Battle) AttackTypeEffectiveness(moveType typechart.Type, def, attacker *Combatant, ignoreStrongWinds, simulated bool, log *Log) float64 {
	if moveType == typechart.Stellar {
		if def.IsTerastallized() {
			return 2
		}
		return 1
	}
	types := def.DefendingTypes()
	if moveType == typechart.Ground && (b.IsGrounded(def) || b.Arena.HasTag(field.TagGravity, field.SideBoth)) {
		kept := types[:0]
		for _, t := range types {
			if t != typechart.Flying {
				kept = append(kept, t)
			}
		}
		types = kept
	}

	chart := b.Catalog.Chart
	modes := b.Arena.Modes
	mult := 1.0
	for _, defType := range types {
		mult *= b.lookup(chart, moveType, defType, def, attacker, modes)
	}

	weather := b.Arena.Weather
	if !ignoreStrongWinds && weather == field.WeatherStrongWinds && !b.Arena.WeatherSuppressed &&
		hasType(def.DefendingTypes(), typechart.Flying) && chart.Multiplier(moveType, typechart.Flying) == 2 {
		mult /= 2
		if !simulated {
			log.message(MsgStrongWinds, def.ID)
		}
	}
	return mult
}

func (b *Battle) lookup(chart *typechart.Chart, moveType, defType typechart.Type, def, attacker *Combatant, modes field.Modes) float64 {
	if attacker != nil {
		ctx := b.abilityCtx(attacker, def)
		ctx.MoveType = moveType
		ctx.DefType = defType
		if ability.Any(b.hooks(ability.IgnoreTypeImmunity, attacker), ctx) {
			return 1
		}
		for _, t := range def.Tags.OfKind(tag.KindExposed) {
			if t.Def.StripsType == defType && hasType(t.Def.Types, moveType) {
				return 1
			}
		}
	}
	v := chart.Multiplier(moveType, defType)
	if modes.NoResistances && def.IsPlayer() && v < 1 {
		v = 1
	}
	if modes.InvertedTypes {
		v = typechart.Invert(v)
	}
	return v
}

// MoveEffectiveness returns the multiplier mv would get against def, folding
// in typeless and status handling, def's type-immunity abilities and tags.
// A return of 0 means the move has no effect.
func (b *Battle) MoveEffectiveness(attacker, def *Combatant, mv *move.Def, ignoreAbility, simulated bool, log *Log) float64 {
	if mv.Has(move.AttrTypeless) {
		return 1
	}
	moveType := mv.Type
	mult := 1.0
	if mv.Category != move.Status || mv.Has(move.AttrRespectsImmunity) {
		mult = b.AttackTypeEffectiveness(moveType, def, attacker, false, simulated, log)
	}
	if !ignoreAbility {
		ctx := b.abilityCtx(def, attacker)
		ctx.Move = mv
		ctx.MoveType = moveType
		if ability.Any(b.hooks(ability.TypeImmunity, def), ctx) {
			return 0
		}
	}
	if tagImmune(def, moveType) {
		return 0
	}
	return mult
}
