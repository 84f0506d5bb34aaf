package combat

import (
	"math"

	"github.com/cory-johannsen/battlecore/internal/game/ability"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/field"
	"github.com/cory-johannsen/battlecore/internal/game/move"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/game/tag"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

// critChances maps a crit stage to the 1-in-n chance of a critical hit.
var critChances = [4]int{24, 8, 2, 1}

// Spread and critical multipliers.
const (
	SpreadMultiplier   = 0.75
	CriticalMultiplier = 1.5
)

// HitOptions describes the context of one hit.
type HitOptions struct {
	// Targets is the number of live targets the move was aimed at.
	Targets int
	// SecondStrike marks the extra strike added by a second-strike ability.
	SecondStrike bool
	// LastHit is true on the final hit of the move; effectiveness messages
	// are only queued then or when the target faints.
	LastHit bool
	// Simulated suppresses messages and state changes for previews.
	Simulated bool
}

// HitOutcome is the result of one hit.
type HitOutcome struct {
	Result   Result
	Damage   int
	Critical bool
	// Effects are the side effects of the hit in the order they happened.
	Effects []Effect
}

// Messages returns the queued message keys of the hit.
func (o HitOutcome) Messages() []string {
	l := Log{Effects: o.Effects}
	return l.Messages()
}

// Category resolves the damage class mv has when used by attacker: the move's
// own variable category first, then an ability override, which wins.
func (b *Battle) Category(attacker, def *Combatant, mv *move.Def) move.Category {
	cat := mv.Category
	if mv.Has(move.AttrPhysicalIfStronger) && cat != move.Status {
		atk := b.EffectiveStat(attacker, stat.ATK, def, nil, false)
		spatk := b.EffectiveStat(attacker, stat.SPATK, def, nil, false)
		if atk > spatk {
			cat = move.Physical
		}
	}
	ctx := b.abilityCtx(attacker, def)
	ctx.Move = mv
	ctx.MoveType = mv.Type
	ctx.Category = cat
	if c, ok := ability.OverrideCategory(b.hooks(ability.CategoryOverride, attacker), ctx); ok {
		cat = c
	}
	return cat
}

// Power returns the base power of mv used by attacker against def.
func (b *Battle) Power(attacker, def *Combatant, mv *move.Def) float64 {
	power := float64(mv.Power)
	if a, ok := mv.Attr(move.AttrStatusPowerBoost); ok && attacker.Status.Effect != StatusNone && a.Multiplier > 0 {
		power *= a.Multiplier
	}
	ctx := b.abilityCtx(attacker, def)
	ctx.Move = mv
	ctx.MoveType = mv.Type
	power *= ability.Product(b.hooks(ability.PowerMultiplier, attacker), ctx)
	power = b.Modifiers.MovePower(attacker.ID, mv.Type, power)
	// A move that already hits several times ignores the multi-hit item.
	if !mv.IsMultiHit() {
		power = b.Modifiers.MultiHitPower(attacker.ID, power)
	}
	return power
}

// stab returns the same-type attack bonus multiplier.
func (b *Battle) stab(attacker *Combatant, moveType typechart.Type) float64 {
	if b.Arena.Modes.NoSTAB && attacker.IsPlayer() {
		return 1
	}
	v := 1.0
	matches := attacker.IsOfType(moveType)
	tera := attacker.Tera
	switch {
	case tera == typechart.Unknown && matches:
		if attacker.MonoTyped(moveType) {
			v += 1.0
		} else {
			v += 0.5
		}
	case tera != typechart.Unknown && tera == moveType:
		v += 0.5
	}
	v += ability.Sum(b.hooks(ability.StabBonus, attacker), b.abilityCtx(attacker, nil))
	if tera != typechart.Unknown && matches {
		v = math.Min(v+0.5, 2.25)
	}
	return v
}

// critical rolls for a critical hit and then applies the blocking effects.
func (b *Battle) critical(attacker, def *Combatant, mv *move.Def) bool {
	crit := mv.Has(move.AttrAlwaysCrit) || attacker.Tags.HasKind(tag.KindAlwaysCrit)
	if !crit {
		level := 0
		if a, ok := mv.Attr(move.AttrHighCrit); ok {
			level += max(a.Stages, 1)
		}
		level += b.Modifiers.CritStages(attacker.ID)
		level += ability.TotalStages(b.hooks(ability.CritBonus, attacker), b.abilityCtx(attacker, def))
		for _, t := range attacker.Tags.OfKind(tag.KindCritBoost) {
			stages := t.Def.CritStages
			if stages == 0 {
				stages = 2
			}
			level += stages
		}
		chance := critChances[min(max(level, 0), len(critChances)-1)]
		crit = dice.OneIn(b.rng, chance)
	}
	if crit {
		if b.Arena.HasTag(field.TagNoCrit, def.Side) || ability.Any(b.hooks(ability.BlockCrit, def), b.abilityCtx(def, attacker)) {
			crit = false
		}
	}
	return crit
}

// fixedDamage returns the literal damage of a fixed-damage move, or 0.
func fixedDamage(attacker *Combatant, mv *move.Def) int {
	if a, ok := mv.Attr(move.AttrFixedDamage); ok {
		return a.Value
	}
	if mv.Has(move.AttrLevelDamage) {
		return attacker.Level
	}
	return 0
}

// toDamage floors v with a minimum of 1.
func toDamage(v float64) int {
	return max(int(math.Floor(v)), 1)
}

// ResolveHit resolves one hit of mv from attacker against def, applies the
// damage and returns the outcome with its side effects.
//
// Precondition: attacker and def are on the field; mv is validated.
// Postcondition: Damage >= 0; Result is NoEffect or Immune with Damage == 0
// when the combined type and field multiplier is 0.
func (b *Battle) ResolveHit(attacker, def *Combatant, mv *move.Def, opts HitOptions) HitOutcome {
	var log Log
	if def.IsFainted() {
		return HitOutcome{Result: ResultFail}
	}

	category := b.Category(attacker, def, mv)
	moveType := mv.Type
	typeMult := b.MoveEffectiveness(attacker, def, mv, false, opts.Simulated, &log)

	if category == move.Status {
		if typeMult == 0 {
			if !opts.Simulated {
				log.message(MsgNoEffect, def.ID)
			}
			return HitOutcome{Result: ResultNoEffect, Effects: log.Effects}
		}
		return HitOutcome{Result: ResultStatus, Effects: log.Effects}
	}

	physical := category == move.Physical
	arenaMult := b.Arena.AttackTypeMultiplier(moveType, b.IsGrounded(attacker))
	if mv.Has(move.AttrIgnoreWeatherDebuff) && arenaMult < 1 {
		arenaMult = 1
	}

	if typeMult*arenaMult == 0 {
		res := ResultNoEffect
		key := MsgNoEffect
		if mv.Has(move.AttrImmuneOnNoEffect) {
			res, key = ResultImmune, MsgImmune
		}
		if !opts.Simulated {
			log.message(key, def.ID)
		}
		return HitOutcome{Result: res, Effects: log.Effects}
	}

	marked := 1.0
	if def.Tags.HasKind(tag.KindMarked) {
		marked = 2
	}

	crit := b.critical(attacker, def, mv)

	atkStat, defStat := stat.SPATK, stat.SPDEF
	if physical {
		atkStat, defStat = stat.ATK, stat.DEF
	}
	atk := b.EffectiveStat(attacker, atkStat, def, nil, crit)
	dfn := max(b.EffectiveStat(def, defStat, attacker, mv, crit), 1)

	critMult := 1.0
	if crit {
		ctx := b.abilityCtx(attacker, def)
		ctx.Critical = true
		critMult = CriticalMultiplier * ability.Product(b.hooks(ability.CritMultiplier, attacker), ctx)
	}
	screen := 1.0
	if !crit {
		screen = b.Arena.ScreenMultiplier(def.Side, physical)
	}
	stabMult := b.stab(attacker, moveType)
	targetMult := 1.0
	if mv.Target.Spread() && opts.Targets > 1 {
		targetMult = SpreadMultiplier
	}
	twoStrike := 1.0
	if opts.SecondStrike {
		if m, ok := ability.First(b.hooks(ability.SecondStrike, attacker), b.abilityCtx(attacker, def)); ok {
			twoStrike = m
		}
	}

	power := b.Power(attacker, def, mv)
	levelMult := 2*float64(attacker.Level)/5 + 2
	random := float64(dice.IntRange(b.rng, 85, 100)) / 100
	damage := toDamage((levelMult*power*float64(atk)/float64(dfn)/50 + 2) *
		stabMult * typeMult * arenaMult * screen * twoStrike * targetMult * critMult * marked * random)

	if physical && attacker.Status.Effect == StatusBurn && !mv.Has(move.AttrBypassBurn) &&
		!ability.Any(b.hooks(ability.BypassBurn, attacker), b.abilityCtx(attacker, def)) {
		damage = toDamage(float64(damage) / 2)
	}
	if b.Arena.Terrain == field.TerrainMisty && b.IsGrounded(def) && moveType == typechart.Dragon {
		damage = toDamage(float64(damage) / 2)
	}

	var result Result
	fixed := fixedDamage(attacker, mv)
	ohko := false
	switch {
	case fixed > 0:
		damage, crit, result = fixed, false, ResultEffective
	case mv.Has(move.AttrOneHitKO):
		damage, crit, result, ohko = def.HP, false, ResultOneHitKO, true
	case typeMult >= 2:
		result = ResultSuperEffective
	case typeMult >= 1:
		result = ResultEffective
	default:
		result = ResultNotVeryEffective
	}

	if fixed == 0 && !ohko {
		if !attacker.IsPlayer() {
			damage = b.Modifiers.EnemyDamageBoost(damage)
		}
		if !def.IsPlayer() {
			damage = b.Modifiers.EnemyDamageReduce(damage)
		}
		ctx := b.abilityCtx(def, attacker)
		ctx.Move = mv
		ctx.MoveType = moveType
		ctx.Category = category
		damage = int(math.Floor(float64(damage) * ability.Product(b.hooks(ability.ReceivedDamageMultiplier, def), ctx)))
		if damage == 0 {
			if !opts.Simulated {
				log.message(MsgNoEffect, def.ID)
			}
			return HitOutcome{Result: ResultNoEffect, Effects: log.Effects}
		}
	}

	if opts.Simulated {
		return HitOutcome{Result: result, Damage: damage, Critical: crit}
	}

	if damage > 0 {
		if def.IsFullHP() {
			if damage >= def.HP && def.MaxHP() > 1 && ability.Any(b.hooks(ability.FullHPEndure, def), b.abilityCtx(def, attacker)) {
				damage = def.HP - 1
				log.message(MsgEndured, def.ID)
			}
		} else if !def.IsPlayer() && damage >= def.HP {
			b.enemyEndure(def, &log)
		}

		ignoreSegments := ohko || mv.Has(move.AttrBypassSegments)
		damage = b.ApplyDamage(def, damage, ignoreSegments, ohko, &log)
		log.add(Effect{
			Kind: EffectDamage, SourceID: attacker.ID, TargetID: def.ID, MoveID: mv.ID,
			Amount: damage, Result: result, Critical: crit,
		})
		def.Turn.DamageTaken += damage
		attacker.Turn.DamageDealt += damage
		attacker.Turn.CurrDamageDealt = damage
		def.BattleData.HitCount++
		if crit {
			log.message(MsgCritical, def.ID)
		}
	}

	if opts.LastHit || def.IsFainted() {
		switch result {
		case ResultSuperEffective:
			log.message(MsgSuperEffective, def.ID)
		case ResultNotVeryEffective:
			log.message(MsgNotVeryEffective, def.ID)
		case ResultOneHitKO:
			log.message(MsgOneHitKO, def.ID)
		}
	}
	if def.IsFainted() {
		b.faint(def, &log)
	}
	return HitOutcome{Result: result, Damage: damage, Critical: crit, Effects: log.Effects}
}

// enemyEndure rolls the enemy endure chance once per battle and grants the endure tag.
func (b *Battle) enemyEndure(def *Combatant, log *Log) {
	percent := b.Modifiers.EnemyEndurePercent()
	if percent <= 0 || def.BattleData.EndureUsed {
		return
	}
	if b.rng.Intn(100) >= percent {
		return
	}
	endure := b.tagOfKind(tag.KindEndure)
	if endure == nil {
		return
	}
	def.BattleData.EndureUsed = true
	b.applyTag(def, endure, 1, log)
}
