package combat

import (
	"cmp"
	"slices"

	"github.com/cory-johannsen/battlecore/internal/game/stat"
)

// ordered is a command with its sort keys fixed at the start of the turn.
type ordered struct {
	cmd      Command
	actor    *Combatant
	priority int
	speed    int
	tie      int
}

// order sorts the turn's commands: move priority first, then effective
// Speed, with ties broken by a battle-seeded draw per command.
//
// Postcondition: the result holds one entry per command whose actor exists.
func (b *Battle) order(cmds []Command) []ordered {
	out := make([]ordered, 0, len(cmds))
	for _, cmd := range cmds {
		actor, ok := b.Find(cmd.ActorID)
		if !ok {
			continue
		}
		o := ordered{cmd: cmd, actor: actor}
		if cmd.Kind == CommandMove {
			o.priority = b.commandMove(actor, cmd).Priority
		}
		o.speed = b.EffectiveStat(actor, stat.SPD, nil, nil, false)
		o.tie = b.rng.Intn(1 << 16)
		out = append(out, o)
	}
	slices.SortStableFunc(out, func(a, c ordered) int {
		if r := cmp.Compare(c.priority, a.priority); r != 0 {
			return r
		}
		if r := cmp.Compare(c.speed, a.speed); r != 0 {
			return r
		}
		return cmp.Compare(a.tie, c.tie)
	})
	return out
}
