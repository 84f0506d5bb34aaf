package ai

import (
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/move"
)

// WorldState is the slice of a battle one combatant reasons about when it
// picks a move.
//
// Invariant: Actor must not be nil; Opponents and Allies hold only active,
// unfainted combatants.
type WorldState struct {
	Actor     *combat.Combatant
	Opponents []*combat.Combatant
	Allies    []*combat.Combatant
}

// IsAlly reports whether c fights on the actor's side, the actor included.
func (ws *WorldState) IsAlly(c *combat.Combatant) bool {
	return c.Side == ws.Actor.Side
}

// Spread reports whether mv hits every candidate at once, leaving no
// target to pick.
func (ws *WorldState) Spread(mv *move.Def) bool {
	return mv.Target == move.TargetSelf || mv.Target.Spread()
}

// Candidates returns the combatants mv can be aimed at.
//
// Postcondition: a self-targeting move yields exactly the actor; otherwise
// opponents come before allies.
func (ws *WorldState) Candidates(mv *move.Def) []*combat.Combatant {
	switch mv.Target {
	case move.TargetSelf:
		return []*combat.Combatant{ws.Actor}
	case move.TargetAllEnemies:
		return ws.Opponents
	}
	out := make([]*combat.Combatant, 0, len(ws.Opponents)+len(ws.Allies))
	out = append(out, ws.Opponents...)
	return append(out, ws.Allies...)
}

// HasLivingOpponents reports whether anything is left to attack.
func (ws *WorldState) HasLivingOpponents() bool {
	return len(ws.Opponents) > 0
}
