package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/quest"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/game/tag"
)

// boostable are the stats a segment clear can raise.
var boostable = []stat.Stat{stat.ATK, stat.DEF, stat.SPATK, stat.SPDEF, stat.SPD}

// ApplyDamage removes up to dmg HP from c and returns the HP actually lost.
// Boss damage is clamped to the next standing boundary first; then a lethal
// hit may be survived at 1 HP through an endure or sturdy tag or the
// survive-damage modifier. ignoreSegments skips the boundary clamp and
// preventEndure skips the survive checks.
//
// Precondition: dmg >= 0.
// Postcondition: 0 <= result <= previous HP; c.HP >= 0.
func (b *Battle) ApplyDamage(c *Combatant, dmg int, ignoreSegments, preventEndure bool, log *Log) int {
	if dmg <= 0 || c.IsFainted() {
		return 0
	}
	cleared := -1
	if c.IsBoss() && !ignoreSegments {
		dmg, cleared = c.Boss.Clamp(c.HP, c.MaxHP(), dmg, b.Modifiers.CanBypassSegments())
	}

	if !preventEndure && c.HP-dmg <= 0 && b.survives(c, log) {
		dmg = c.HP - 1
	}
	dmg = max(min(dmg, c.HP), 0)
	c.HP -= dmg

	if c.IsBoss() {
		if ignoreSegments {
			cleared = c.Boss.Quantize(c.HP, c.MaxHP())
		}
		if cleared >= 0 && cleared <= c.Boss.Index {
			b.clearSegments(c, cleared, log)
		}
	}
	return dmg
}

// survives reports whether c outlasts a lethal hit, consuming what lets it.
func (b *Battle) survives(c *Combatant, log *Log) bool {
	if c.HP >= 1 && c.Tags.HasKind(tag.KindEndure) {
		log.message(MsgEndured, c.ID)
		return true
	}
	if c.HP > 1 {
		for _, t := range c.Tags.OfKind(tag.KindSturdy) {
			if t.Def.Lapse == tag.LapseOnUse {
				c.Tags.Remove(t.Def.ID)
			}
			log.message(MsgEndured, c.ID)
			return true
		}
	}
	if stacks := b.Modifiers.SurviveStacks(c.ID); stacks > 0 && b.rng.Intn(10) < stacks {
		log.message(MsgEndured, c.ID)
		return true
	}
	return false
}

// clearSegments lowers the boss index down to cleared, boosting a stat for
// every boundary crossed.
//
// Precondition: c.IsBoss().
func (b *Battle) clearSegments(c *Combatant, cleared int, log *Log) {
	seg := c.Boss
	for seg.Index > 0 && cleared-1 < seg.Index {
		if !seg.PreFinal {
			b.segmentBoost(c, seg.BoostStages(cleared), log)
		}
		seg.Index--
		log.add(Effect{Kind: EffectSegmentCleared, TargetID: c.ID, Amount: seg.Index})
		b.observe(quest.Event{Type: quest.EventSegmentCleared, SpeciesID: c.SpeciesID})
	}
}

// segmentBoost raises one stat not yet at the maximum stage, weighted by its raw value.
func (b *Battle) segmentBoost(c *Combatant, stages int, log *Log) {
	raw := b.RawStats(c)
	var candidates []stat.Stat
	var weights []int
	for _, s := range boostable {
		if c.Stages.Get(s) < stat.MaxStage {
			candidates = append(candidates, s)
			weights = append(weights, raw[s])
		}
	}
	i := dice.WeightedIndex(b.rng, weights)
	if i < 0 {
		return
	}
	s := candidates[i]
	if applied := c.Stages.Add(s, stages); applied != 0 {
		log.add(Effect{Kind: EffectStatStage, TargetID: c.ID, Stat: s, Amount: applied})
	}
}

// Heal restores up to amount HP to c and returns the HP gained. A boss
// below its top standing boundary is capped by Segments.Heal.
//
// Postcondition: 0 <= result <= MaxHP - previous HP.
func (b *Battle) Heal(c *Combatant, amount int, log *Log) int {
	if amount <= 0 || c.IsFainted() {
		return 0
	}
	var healed int
	if c.IsBoss() {
		healed = c.Boss.Heal(c.HP, c.MaxHP(), amount)
	} else {
		healed = min(amount, c.MaxHP()-c.HP)
	}
	if healed <= 0 {
		return 0
	}
	c.HP += healed
	log.add(Effect{Kind: EffectHeal, TargetID: c.ID, Amount: healed})
	return healed
}

// faint records c fainting and discards its summon data.
func (b *Battle) faint(c *Combatant, log *Log) {
	log.add(Effect{Kind: EffectFaint, TargetID: c.ID})
	c.ResetSummonData()
	if !c.IsPlayer() {
		b.observe(quest.Event{Type: quest.EventFaint, SpeciesID: c.SpeciesID})
	}
	b.logger.Debug("combatant fainted", zap.String("combatant", c.ID), zap.String("name", c.Name))
}
