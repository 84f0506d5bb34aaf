package ability

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/battlecore/internal/game/field"
	"github.com/cory-johannsen/battlecore/internal/game/move"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

// Kind names the pipeline extension point an attribute hooks into.
type Kind string

const (
	// BattleStatMultiplier scales the holder's stage-scaled stat.
	BattleStatMultiplier Kind = "battle_stat_multiplier"
	// FieldStatMultiplier scales the raw stat of every other combatant on the field.
	FieldStatMultiplier Kind = "field_stat_multiplier"
	// IgnoreOpponentStages nulls the opponent's stat stages.
	IgnoreOpponentStages Kind = "ignore_opponent_stat_changes"
	// IgnoreTypeImmunity lets listed attack types hit a defending type that is normally immune.
	IgnoreTypeImmunity Kind = "ignore_type_immunity"
	// TypeImmunity makes the holder immune to listed attack types.
	TypeImmunity Kind = "type_immunity"
	// CritBonus adds crit stages to the holder's attacks.
	CritBonus Kind = "crit_bonus"
	// BlockCrit prevents critical hits against the holder.
	BlockCrit Kind = "block_crit"
	// CritMultiplier scales the holder's critical multiplier.
	CritMultiplier Kind = "crit_multiplier"
	// StabBonus adds to the holder's same-type bonus.
	StabBonus Kind = "stab_bonus"
	// BypassBurn keeps the holder's physical damage unhalved while burned.
	BypassBurn Kind = "bypass_burn"
	// ReceivedDamageMultiplier scales damage the holder takes.
	ReceivedDamageMultiplier Kind = "received_damage_multiplier"
	// FullHPEndure survives a lethal hit taken at full HP.
	FullHPEndure Kind = "full_hp_endure"
	// SecondStrike adds a reduced-power second strike to single-hit moves.
	SecondStrike Kind = "second_strike"
	// CategoryOverride changes the damage category of the holder's moves.
	CategoryOverride Kind = "category_override"
	// PowerMultiplier scales the holder's move power before the damage formula.
	PowerMultiplier Kind = "power_multiplier"
	// SummonTag applies a battler tag to the holder when it enters the field.
	SummonTag Kind = "summon_tag"
	// SummonWeather sets the weather when the holder enters the field.
	SummonWeather Kind = "summon_weather"
	// Script delegates one of the multiplier extension points to a Lua function.
	Script Kind = "script"
)

// Condition gates an attribute on the holder's state.
type Condition string

const (
	Always   Condition = ""
	FullHP   Condition = "full_hp"
	LowHP    Condition = "low_hp" // at or below one third of max HP
	Statused Condition = "statused"
)

// AttrDef is the YAML form of one ability attribute.
type AttrDef struct {
	Kind          Kind             `yaml:"kind"`
	Stat          stat.Stat        `yaml:"stat"`
	Multiplier    float64          `yaml:"multiplier"`
	Stages        int              `yaml:"stages"`
	Types         []typechart.Type `yaml:"types"`
	DefendingType *typechart.Type  `yaml:"defending_type"`
	From          *move.Category   `yaml:"from"`
	To            *move.Category   `yaml:"to"`
	MaxPower      int              `yaml:"max_power"`
	Condition     Condition        `yaml:"condition"`
	Tag           string           `yaml:"tag"`
	Weather       string           `yaml:"weather"`
	// Point is the extension point a script attribute plugs into.
	Point Kind `yaml:"point"`
	// Function is the Lua global a script attribute calls.
	Function string `yaml:"function"`
}

var weathers = map[string]field.Weather{
	"sun":          field.WeatherSun,
	"rain":         field.WeatherRain,
	"sandstorm":    field.WeatherSandstorm,
	"hail":         field.WeatherHail,
	"snow":         field.WeatherSnow,
	"heavy_rain":   field.WeatherHeavyRain,
	"harsh_sun":    field.WeatherHarshSun,
	"strong_winds": field.WeatherStrongWinds,
}

// scriptPoints are the extension points a Lua function may serve.
var scriptPoints = map[Kind]bool{
	BattleStatMultiplier:     true,
	PowerMultiplier:          true,
	ReceivedDamageMultiplier: true,
	CritMultiplier:           true,
}

func (a AttrDef) validate() error {
	var errs []string
	needMult := func() {
		if a.Multiplier < 0 {
			errs = append(errs, "multiplier must be >= 0")
		}
	}
	switch a.Kind {
	case BattleStatMultiplier, FieldStatMultiplier:
		needMult()
		if !a.Stat.IsBattle() || a.Stat == stat.ACC || a.Stat == stat.EVA {
			errs = append(errs, fmt.Sprintf("%s needs one of atk, def, spatk, spdef, spd", a.Kind))
		}
	case ReceivedDamageMultiplier, PowerMultiplier, CritMultiplier, SecondStrike, StabBonus:
		needMult()
	case IgnoreTypeImmunity:
		if len(a.Types) == 0 || a.DefendingType == nil {
			errs = append(errs, "ignore_type_immunity needs types and defending_type")
		}
	case TypeImmunity:
		if len(a.Types) == 0 {
			errs = append(errs, "type_immunity needs types")
		}
	case CritBonus:
		if a.Stages < 1 {
			errs = append(errs, "crit_bonus needs stages >= 1")
		}
	case CategoryOverride:
		if a.From == nil || a.To == nil {
			errs = append(errs, "category_override needs from and to")
		}
	case SummonTag:
		if a.Tag == "" {
			errs = append(errs, "summon_tag needs tag")
		}
	case SummonWeather:
		if _, ok := weathers[a.Weather]; !ok {
			errs = append(errs, fmt.Sprintf("unknown weather %q", a.Weather))
		}
	case Script:
		if !scriptPoints[a.Point] {
			errs = append(errs, fmt.Sprintf("script point %q is not a multiplier extension point", a.Point))
		}
		if a.Function == "" {
			errs = append(errs, "script needs function")
		}
	case IgnoreOpponentStages, BlockCrit, BypassBurn, FullHPEndure:
	default:
		errs = append(errs, fmt.Sprintf("unknown attribute kind %q", a.Kind))
	}
	switch a.Condition {
	case Always, FullHP, LowHP, Statused:
	default:
		errs = append(errs, fmt.Sprintf("unknown condition %q", a.Condition))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func hasType(types []typechart.Type, t typechart.Type) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}

func (a AttrDef) holds(s Subject) bool {
	switch a.Condition {
	case FullHP:
		return s.HP == s.MaxHP
	case LowHP:
		return s.HP*3 <= s.MaxHP
	case Statused:
		return s.Statused
	default:
		return true
	}
}
