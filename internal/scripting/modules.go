package scripting

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the engine table into L:
//
//	engine.log(msg)            debug-level log line tagged with the namespace
//	engine.has_type(list, t)   reports whether a space-separated type list contains t
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState, ns string) {
	engine := L.NewTable()
	L.SetField(engine, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Debug("script log",
			zap.String("namespace", ns),
			zap.String("msg", L.CheckString(1)),
		)
		return 0
	}))
	L.SetField(engine, "has_type", L.NewFunction(func(L *lua.LState) int {
		list := L.CheckString(1)
		want := L.CheckString(2)
		for _, t := range strings.Fields(list) {
			if t == want {
				L.Push(lua.LTrue)
				return 1
			}
		}
		L.Push(lua.LFalse)
		return 1
	}))
	L.SetGlobal("engine", engine)
}
