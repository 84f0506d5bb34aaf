// Package scripting provides sandboxed GopherLua VMs for scripted ability
// hooks. It has no dependency on game domain packages; callers pass plain
// Lua values in and read Lua values back.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// hook call when no limit is configured.
const DefaultInstructionLimit = 100_000

// countingContext is a context.Context that cancels itself after Done() has
// been called limit times. GopherLua's mainLoopWithContext calls Done() once
// per opcode, making this an exact instruction-count limit.
type countingContext struct {
	context.Context
	cancel    context.CancelFunc
	remaining *atomic.Int64
}

func (c *countingContext) Done() <-chan struct{} {
	if c.remaining.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

// newCountingContext returns a context that cancels after limit calls to Done().
// Precondition: limit > 0.
func newCountingContext(limit int) (context.Context, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	rem := &atomic.Int64{}
	rem.Store(int64(limit))
	return &countingContext{Context: base, cancel: cancel, remaining: rem}, cancel
}

// NewSandboxedState creates a GopherLua LState with only the base, table,
// string and math libraries. File and module loaders are removed, and so are
// math.random and math.randomseed: hook results must follow from the battle
// seed alone, so scripts get no generator of their own.
//
// Postcondition: Returns a non-nil LState. The caller owns it and must call L.Close().
func NewSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	if math, ok := L.GetGlobal(lua.MathLibName).(*lua.LTable); ok {
		math.RawSetString("random", lua.LNil)
		math.RawSetString("randomseed", lua.LNil)
	}
	return L
}

// Limit arms an instruction budget of instLimit opcodes on L (0 uses
// DefaultInstructionLimit) and returns the function that disarms it. Every
// call through the VM must run between Limit and the returned release.
func Limit(L *lua.LState, instLimit int) (release func()) {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	ctx, cancel := newCountingContext(instLimit)
	L.SetContext(ctx)
	return func() {
		L.RemoveContext()
		cancel()
	}
}
