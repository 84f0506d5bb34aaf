package ability

import (
	"math"

	"github.com/cory-johannsen/battlecore/internal/game/field"
	"github.com/cory-johannsen/battlecore/internal/game/move"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

// Subject is a read-only snapshot of a combatant as hooks see it.
type Subject struct {
	ID       string
	Name     string
	Level    int
	HP       int
	MaxHP    int
	Types    []typechart.Type
	Statused bool
}

// Context is what a hook is evaluated against. Holder is always the
// combatant that has the ability; Other is the combatant on the far side of
// the interaction (the target when attacking, the attacker when defending,
// the stat owner for field hooks).
type Context struct {
	Holder   Subject
	Other    Subject
	Move     *move.Def
	MoveType typechart.Type
	Category move.Category
	// DefType is the single defending type being looked up on the chart.
	DefType  typechart.Type
	Stat     stat.Stat
	Critical bool
	Weather  field.Weather
}

// Hook is one typed handler contributed by an ability. Exactly one of the
// function fields is set, according to Kind.
type Hook struct {
	Kind      Kind
	AbilityID string

	Multiplier func(Context) float64
	Predicate  func(Context) bool
	Stages     func(Context) int
	Category   func(Context) (move.Category, bool)

	// Tag is the battler tag applied by SummonTag.
	Tag string
	// Weather is the weather set by SummonWeather.
	Weather field.Weather
}

// Product folds multiplier hooks in order. A hook yielding NaN or a negative
// value is treated as neutral.
func Product(hooks []Hook, ctx Context) float64 {
	out := 1.0
	for _, h := range hooks {
		if h.Multiplier == nil {
			continue
		}
		m := h.Multiplier(ctx)
		if math.IsNaN(m) || m < 0 {
			continue
		}
		out *= m
	}
	return out
}

// Sum folds additive multiplier hooks in order.
func Sum(hooks []Hook, ctx Context) float64 {
	out := 0.0
	for _, h := range hooks {
		if h.Multiplier == nil {
			continue
		}
		if m := h.Multiplier(ctx); !math.IsNaN(m) {
			out += m
		}
	}
	return out
}

// First returns the first multiplier hook that yields a non-neutral value.
func First(hooks []Hook, ctx Context) (float64, bool) {
	for _, h := range hooks {
		if h.Multiplier == nil {
			continue
		}
		m := h.Multiplier(ctx)
		if math.IsNaN(m) || m < 0 || m == 1 {
			continue
		}
		return m, true
	}
	return 1, false
}

// Any reports whether any predicate hook holds.
func Any(hooks []Hook, ctx Context) bool {
	for _, h := range hooks {
		if h.Predicate != nil && h.Predicate(ctx) {
			return true
		}
	}
	return false
}

// TotalStages sums stage hooks.
func TotalStages(hooks []Hook, ctx Context) int {
	n := 0
	for _, h := range hooks {
		if h.Stages != nil {
			n += h.Stages(ctx)
		}
	}
	return n
}

// OverrideCategory returns the first category override that applies.
func OverrideCategory(hooks []Hook, ctx Context) (move.Category, bool) {
	for _, h := range hooks {
		if h.Category == nil {
			continue
		}
		if c, ok := h.Category(ctx); ok {
			return c, true
		}
	}
	return ctx.Category, false
}

func (a AttrDef) hook(abilityID string, scripts ScriptCaller) Hook {
	h := Hook{Kind: a.Kind, AbilityID: abilityID}
	switch a.Kind {
	case BattleStatMultiplier, FieldStatMultiplier:
		h.Multiplier = func(ctx Context) float64 {
			subject := ctx.Holder
			if a.Kind == FieldStatMultiplier {
				subject = ctx.Other
			}
			if ctx.Stat != a.Stat || !a.holds(subject) {
				return 1
			}
			return a.Multiplier
		}
	case PowerMultiplier:
		h.Multiplier = func(ctx Context) float64 {
			if len(a.Types) > 0 && !hasType(a.Types, ctx.MoveType) {
				return 1
			}
			if a.MaxPower > 0 && (ctx.Move == nil || ctx.Move.Power > a.MaxPower) {
				return 1
			}
			if !a.holds(ctx.Holder) {
				return 1
			}
			return a.Multiplier
		}
	case ReceivedDamageMultiplier:
		h.Multiplier = func(ctx Context) float64 {
			if len(a.Types) > 0 && !hasType(a.Types, ctx.MoveType) {
				return 1
			}
			if !a.holds(ctx.Holder) {
				return 1
			}
			return a.Multiplier
		}
	case CritMultiplier:
		h.Multiplier = func(ctx Context) float64 {
			if !ctx.Critical {
				return 1
			}
			return a.Multiplier
		}
	case StabBonus, SecondStrike:
		h.Multiplier = func(Context) float64 { return a.Multiplier }
	case IgnoreTypeImmunity:
		h.Predicate = func(ctx Context) bool {
			return hasType(a.Types, ctx.MoveType) && ctx.DefType == *a.DefendingType
		}
	case TypeImmunity:
		h.Predicate = func(ctx Context) bool { return hasType(a.Types, ctx.MoveType) }
	case FullHPEndure:
		h.Predicate = func(ctx Context) bool { return ctx.Holder.HP == ctx.Holder.MaxHP }
	case IgnoreOpponentStages, BlockCrit, BypassBurn:
		h.Predicate = func(ctx Context) bool { return a.holds(ctx.Holder) }
	case CritBonus:
		h.Stages = func(Context) int { return a.Stages }
	case CategoryOverride:
		h.Category = func(ctx Context) (move.Category, bool) {
			if ctx.Category != *a.From {
				return ctx.Category, false
			}
			return *a.To, true
		}
	case SummonTag:
		h.Tag = a.Tag
	case SummonWeather:
		h.Weather = weathers[a.Weather]
	case Script:
		h.Kind = a.Point
		h.Multiplier = scriptMultiplier(scripts, abilityID, a.Function)
	}
	return h
}
