package combat

import (
	"fmt"
	"sync"
)

// Engine tracks the live battles of a process, keyed by battle ID.
// All methods are safe for concurrent use; each Battle is still resolved
// by one goroutine at a time.
type Engine struct {
	mu      sync.RWMutex
	battles map[string]*Battle
}

// NewEngine creates an empty Engine.
//
// Postcondition: Returns a non-nil Engine ready for use.
func NewEngine() *Engine {
	return &Engine{battles: make(map[string]*Battle)}
}

// Register adds b to the engine.
//
// Precondition: b must be non-nil.
// Postcondition: Returns an error if a battle with the same ID is already registered.
func (e *Engine) Register(b *Battle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.battles[b.ID]; exists {
		return fmt.Errorf("battle %q already registered", b.ID)
	}
	e.battles[b.ID] = b
	return nil
}

// Get returns the battle with id.
//
// Postcondition: Returns (battle, true) if found, or (nil, false) otherwise.
func (e *Engine) Get(id string) (*Battle, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.battles[id]
	return b, ok
}

// End removes the battle with id.
func (e *Engine) End(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.battles, id)
}

// Len returns the number of registered battles.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.battles)
}

// Run resolves b to completion, forfeiting once turnCap turns have passed,
// and removes it from the engine when done.
//
// Precondition: b is registered and was created with a Chooser; turnCap > 0.
// Postcondition: b.Over() is true unless an error is returned.
func (e *Engine) Run(b *Battle, turnCap int) error {
	defer e.End(b.ID)
	for !b.Over() {
		if b.Turn >= turnCap {
			b.Forfeit()
			break
		}
		if _, err := b.ResolveTurn(); err != nil {
			return fmt.Errorf("battle %s turn %d: %w", b.ID, b.Turn, err)
		}
	}
	return nil
}
