package ai

import (
	"fmt"

	"github.com/cory-johannsen/battlecore/internal/game/combat"
)

// Registry indexes one Planner per policy and routes each combatant to
// its assigned planner. It implements combat.Chooser.
//
// Invariant: a Planner exists for every policy in Policies().
type Registry struct {
	planners map[Policy]*Planner
	assigned map[string]Policy
	fallback Policy
}

// NewRegistry returns a Registry whose unassigned combatants use fallback.
// Bosses default to PolicySmart regardless of fallback.
//
// Precondition: fallback must be one of Policies().
func NewRegistry(fallback Policy) *Registry {
	r := &Registry{
		planners: make(map[Policy]*Planner),
		assigned: make(map[string]Policy),
		fallback: fallback,
	}
	for _, p := range Policies() {
		r.planners[p] = NewPlanner(p)
	}
	if _, ok := r.planners[fallback]; !ok {
		panic(fmt.Sprintf("ai.NewRegistry: unknown fallback policy %q", fallback))
	}
	return r
}

// PlannerFor returns the Planner for policy, or false if not registered.
func (r *Registry) PlannerFor(policy Policy) (*Planner, bool) {
	p, ok := r.planners[policy]
	return p, ok
}

// Assign pins combatantID to policy.
//
// Postcondition: returns ErrUnknownPolicy and leaves the assignment unchanged
// when policy is not registered.
func (r *Registry) Assign(combatantID string, policy Policy) error {
	if _, ok := r.planners[policy]; !ok {
		return fmt.Errorf("ai.Registry.Assign: %w: %q", ErrUnknownPolicy, policy)
	}
	r.assigned[combatantID] = policy
	return nil
}

// PolicyOf returns the policy that drives c.
func (r *Registry) PolicyOf(c *combat.Combatant) Policy {
	if p, ok := r.assigned[c.ID]; ok {
		return p
	}
	if c.IsBoss() {
		return PolicySmart
	}
	return r.fallback
}

// Choose implements combat.Chooser.
func (r *Registry) Choose(b *combat.Battle, actor *combat.Combatant) combat.Command {
	return r.planners[r.PolicyOf(actor)].Choose(b, actor)
}
