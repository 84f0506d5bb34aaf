package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// vm is one loaded namespace. An LState is single-threaded, so every call
// holds mu.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per script namespace and exposes hook dispatch.
//
// Manager is safe for concurrent use. Calls into the same namespace are
// serialised; different namespaces run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a Manager with no namespaces loaded.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{vms: make(map[string]*vm), logger: logger}
}

// LoadNamespace creates a sandboxed VM for ns, registers the engine module,
// then executes every *.lua file in scriptDir in lexicographic order.
// Loading an already-loaded namespace replaces it.
//
// Precondition: ns must be non-empty; scriptDir must be a readable directory.
// Postcondition: the namespace VM is registered; returns error on Lua load failure.
func (m *Manager) LoadNamespace(ns, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, ns, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := NewSandboxedState()
	m.RegisterModules(L, ns)
	for _, path := range luaFiles {
		release := Limit(L, instLimit)
		err := L.DoFile(path)
		release()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, ns, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.vms[ns]; ok {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.vms[ns] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()
	return nil
}

// Has reports whether namespace ns is loaded.
func (m *Manager) Has(ns string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[ns]
	return ok
}

// CallHook calls the named Lua global function in ns. Returns (LNil, nil) if
// the hook is not defined or the namespace is not loaded. Lua runtime errors,
// including an exhausted instruction budget, are logged at Warn level and
// the call returns (LNil, nil).
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(ns, hook string, args ...lua.LValue) (lua.LValue, error) {
	return m.call(ns, hook, func(*lua.LState) []lua.LValue { return args })
}

// CallWithTable calls hook with a single table argument built from fields.
func (m *Manager) CallWithTable(ns, hook string, fields map[string]lua.LValue) (lua.LValue, error) {
	return m.call(ns, hook, func(L *lua.LState) []lua.LValue {
		tbl := L.NewTable()
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			tbl.RawSetString(k, fields[k])
		}
		return []lua.LValue{tbl}
	})
}

func (m *Manager) call(ns, hook string, args func(*lua.LState) []lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.vms[ns]
	m.mu.RUnlock()
	if !ok {
		m.logger.Info("scripting: no VM for namespace",
			zap.String("namespace", ns),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	fn := v.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	release := Limit(v.L, v.limit)
	err := v.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args(v.L)...)
	release()
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("namespace", ns),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ns, v := range m.vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
		delete(m.vms, ns)
	}
}
