package combat

import (
	"math"

	"github.com/cory-johannsen/battlecore/internal/game/ability"
	"github.com/cory-johannsen/battlecore/internal/game/field"
	"github.com/cory-johannsen/battlecore/internal/game/move"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/game/tag"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

// RawStats returns c's permanent stats with held base-stat boosters applied.
func (b *Battle) RawStats(c *Combatant) stat.Values {
	return b.Modifiers.BaseStats(c.ID, c.Stats)
}

// syncMaxHP refreshes c.HPBoost from the held base-stat boosters. Max HP
// gained is gained as current HP too; max HP lost clamps current HP.
//
// Postcondition: c.MaxHP() == b.RawStats(c)[stat.HP].
func (b *Battle) syncMaxHP(c *Combatant) {
	boost := b.RawStats(c)[stat.HP] - c.Stats[stat.HP]
	diff := boost - c.HPBoost
	if diff == 0 {
		return
	}
	c.HPBoost = boost
	if !c.IsFainted() {
		c.HP = min(max(c.HP+diff, 1), c.MaxHP())
	}
}

// syncAllMaxHP runs syncMaxHP over both parties.
func (b *Battle) syncAllMaxHP() {
	for _, side := range []field.Side{field.SidePlayer, field.SideEnemy} {
		for _, c := range b.Party(side) {
			b.syncMaxHP(c)
		}
	}
}

// EffectiveStat resolves the stat c fights with.
//
// The stage is adjusted first: a critical hit floors the attacker's offensive
// stage and caps the defender's defensive stage at 0, an opponent ability or
// mv's ignore attribute nulls it, and temporary boosters add to it for players.
// The raw stat is then scaled by held boosters, the first applicable field
// ability, the holder's own ability and the stage ratio, followed by the
// fixed per-stat adjustments and any highest-stat tag.
//
// Precondition: s is HP or a battle stat other than ACC/EVA.
// Postcondition: Returns a non-negative integer; HP returns MaxHP().
func (b *Battle) EffectiveStat(c *Combatant, s stat.Stat, opponent *Combatant, mv *move.Def, critical bool) int {
	if c == nil {
		return 0
	}
	if s == stat.HP {
		return c.MaxHP()
	}
	raw := b.RawStats(c)
	if !s.IsPermanent() {
		return 0
	}

	level := c.Stages.Get(s)
	if opponent != nil {
		if critical {
			switch s {
			case stat.ATK, stat.SPATK:
				level = max(level, 0)
			case stat.DEF, stat.SPDEF:
				level = min(level, 0)
			}
		}
		if ability.Any(b.hooks(ability.IgnoreOpponentStages, opponent), b.abilityCtx(opponent, c)) {
			level = 0
		}
		if mv != nil && mv.Has(move.AttrIgnoreStatChanges) {
			level = 0
		}
	}
	if c.IsPlayer() {
		level = min(level+b.Modifiers.TempStages(s), stat.MaxStage)
	}

	value := float64(raw[s]) * b.Modifiers.StatMultiplier(c.ID, s)

	for _, holder := range b.Field() {
		if holder == c {
			continue
		}
		ctx := b.abilityCtx(holder, c)
		ctx.Stat = s
		if m, ok := ability.First(b.hooks(ability.FieldStatMultiplier, holder), ctx); ok {
			value *= m
			break
		}
	}

	ctx := b.abilityCtx(c, opponent)
	ctx.Stat = s
	ctx.Critical = critical
	value *= ability.Product(b.hooks(ability.BattleStatMultiplier, c), ctx)

	ret := value * stat.BoostRatio(level)

	slowed := c.Tags.HasKind(tag.KindSlowStart)
	weather := b.Arena.ActiveWeather()
	switch s {
	case stat.ATK:
		if slowed {
			ret = halve(ret)
		}
	case stat.DEF:
		if c.IsOfType(typechart.Ice) && weather == field.WeatherSnow {
			ret *= 1.5
		}
	case stat.SPDEF:
		if c.IsOfType(typechart.Rock) && weather == field.WeatherSandstorm {
			ret *= 1.5
		}
	case stat.SPD:
		if b.Arena.HasTag(field.TagTailwind, c.Side) {
			ret *= 2
		}
		if slowed {
			ret = halve(ret)
		}
		if c.Status.Effect == StatusParalysis {
			ret = halve(ret)
		}
	}

	for _, t := range c.Tags.OfKind(tag.KindHighestStatBoost) {
		if t.Stat != s {
			continue
		}
		mult := t.Def.Multiplier
		if s == stat.SPD && t.Def.SpdMultiple > 0 {
			mult = t.Def.SpdMultiple
		}
		if mult > 0 {
			ret *= mult
		}
		break
	}

	if ret < 0 || math.IsNaN(ret) {
		return 0
	}
	return int(math.Floor(ret))
}

// halve truncates v to an integer and halves it.
func halve(v float64) float64 {
	return float64(int(v) >> 1)
}
