package ai

import (
	"github.com/cory-johannsen/battlecore/internal/game/combat"
)

// BuildWorldState snapshots the field as actor sees it.
//
// Precondition: b and actor must not be nil.
// Postcondition: ws.Actor == actor; fainted combatants are excluded.
func BuildWorldState(b *combat.Battle, actor *combat.Combatant) *WorldState {
	ws := &WorldState{Actor: actor}
	for _, c := range b.Opponents(actor) {
		if !c.IsFainted() {
			ws.Opponents = append(ws.Opponents, c)
		}
	}
	for _, c := range b.Allies(actor) {
		if !c.IsFainted() {
			ws.Allies = append(ws.Allies, c)
		}
	}
	return ws
}
