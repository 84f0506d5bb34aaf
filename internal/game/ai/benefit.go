package ai

import (
	"math"

	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/move"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
)

// FailScore is the score of a move that is unimplemented, cannot work on
// its target, or has no scorable benefit.
const FailScore = -20.0

const (
	stabFactor    = 1.5
	attackBase    = 2.0
	powerDivisor  = 5.0
	stageWeight   = 4.0
	statusPenalty = 10.0
)

// UserBenefit scores what using mv against target does for user itself.
// Only stat changes aimed at the user count.
func UserBenefit(b *combat.Battle, user, target *combat.Combatant, mv *move.Def) float64 {
	st, stages, self, ok := mv.StatChange()
	if !ok || !self {
		return 0
	}
	return stageScore(user, st, stages)
}

// TargetBenefit scores what mv does for target, seen from target's side:
// damage and lowered stats are negative, raised stats positive. The user
// targeting itself scores 0 here since UserBenefit already covers it.
func TargetBenefit(b *combat.Battle, user, target *combat.Combatant, mv *move.Def) float64 {
	if target == user {
		return 0
	}
	score := 0.0
	if mv.Category != move.Status {
		score -= attackScore(b, user, target, mv)
	}
	if st, stages, self, ok := mv.StatChange(); ok && !self {
		score += stageScore(target, st, stages)
	}
	if effect, ok := inflicts(mv); ok && canInflict(target, effect) {
		score -= statusPenalty
	}
	return score
}

// attackScore rates the damage mv would deal: a base of 2 (−2 when resisted)
// plus a fifth of the effective power.
func attackScore(b *combat.Battle, user, target *combat.Combatant, mv *move.Def) float64 {
	score := attackBase
	if b.MoveEffectiveness(user, target, mv, false, true, nil) < 1 {
		score = -attackBase
	}
	return score + math.Floor(max(b.Power(user, target, mv), 0)/powerDivisor)
}

// stageScore rates the stage change c would actually receive after clamping.
func stageScore(c *combat.Combatant, st stat.Stat, stages int) float64 {
	cur := c.Stages.Get(st)
	return float64(stat.ClampStage(cur+stages)-cur) * stageWeight
}

func inflicts(mv *move.Def) (combat.StatusEffect, bool) {
	a, ok := mv.Attr(move.AttrInflictStatus)
	if !ok {
		return combat.StatusNone, false
	}
	return combat.ParseStatus(a.Status)
}

func canInflict(c *combat.Combatant, effect combat.StatusEffect) bool {
	return c.Status.Effect == combat.StatusNone && !c.ImmuneToStatus(effect)
}

// fails reports whether mv is known to do nothing when used on target.
func fails(b *combat.Battle, user, target *combat.Combatant, mv *move.Def) bool {
	if mv.Unimplemented || mv.Has(move.AttrFails) {
		return true
	}
	if mv.Has(move.AttrOneHitKO) && user.Level < target.Level {
		return true
	}
	if mv.Category != move.Status {
		return false
	}
	if target != user && b.MoveEffectiveness(user, target, mv, false, true, nil) == 0 {
		return true
	}
	if st, stages, self, ok := mv.StatChange(); ok {
		recipient := target
		if self {
			recipient = user
		}
		if stageScore(recipient, st, stages) != 0 {
			return false
		}
	}
	if effect, ok := inflicts(mv); ok && target != user && canInflict(target, effect) {
		return false
	}
	return true
}
