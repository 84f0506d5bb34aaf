package ability

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// ScriptNamespace is the script VM that holds ability functions.
const ScriptNamespace = "abilities"

// ScriptCaller invokes a Lua function with a single table argument built from fields.
type ScriptCaller interface {
	CallWithTable(namespace, hook string, fields map[string]lua.LValue) (lua.LValue, error)
}

func subjectFields(prefix string, s Subject, out map[string]lua.LValue) {
	types := make([]string, 0, len(s.Types))
	for _, t := range s.Types {
		types = append(types, t.String())
	}
	out[prefix+"_id"] = lua.LString(s.ID)
	out[prefix+"_level"] = lua.LNumber(s.Level)
	out[prefix+"_hp"] = lua.LNumber(s.HP)
	out[prefix+"_max_hp"] = lua.LNumber(s.MaxHP)
	out[prefix+"_types"] = lua.LString(strings.Join(types, " "))
	out[prefix+"_statused"] = lua.LBool(s.Statused)
}

// contextFields flattens ctx into the table passed to ability scripts.
func contextFields(ctx Context) map[string]lua.LValue {
	out := make(map[string]lua.LValue, 20)
	subjectFields("holder", ctx.Holder, out)
	subjectFields("other", ctx.Other, out)
	out["move_type"] = lua.LString(ctx.MoveType.String())
	out["category"] = lua.LString(ctx.Category.String())
	out["stat"] = lua.LString(ctx.Stat.String())
	out["critical"] = lua.LBool(ctx.Critical)
	out["weather"] = lua.LString(ctx.Weather.String())
	if ctx.Move != nil {
		out["move_id"] = lua.LString(ctx.Move.ID)
		out["move_power"] = lua.LNumber(ctx.Move.Power)
	}
	return out
}

// scriptMultiplier calls fn and reads a number back. Any failure or a
// non-number result is neutral.
func scriptMultiplier(scripts ScriptCaller, abilityID, fn string) func(Context) float64 {
	return func(ctx Context) float64 {
		fields := contextFields(ctx)
		fields["ability_id"] = lua.LString(abilityID)
		ret, err := scripts.CallWithTable(ScriptNamespace, fn, fields)
		if err != nil {
			return 1
		}
		n, ok := ret.(lua.LNumber)
		if !ok {
			return 1
		}
		return float64(n)
	}
}
