package ai

import (
	"cmp"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/move"
)

// Scored is one usable move ranked by a Planner.
type Scored struct {
	Slot   int
	MoveID string
	Score  float64
	// TargetIDs is the aimed target; empty for moves that hit every candidate.
	TargetIDs []string
}

// Planner picks moves for one policy. It holds no battle state and is
// safe to share between battles.
type Planner struct {
	policy Policy
}

// NewPlanner constructs a Planner.
//
// Precondition: policy must be one of Policies().
func NewPlanner(policy Policy) *Planner {
	if _, err := ParsePolicy(string(policy)); err != nil {
		panic("ai.NewPlanner: " + err.Error())
	}
	return &Planner{policy: policy}
}

// Policy returns the planner's policy.
func (p *Planner) Policy() Policy { return p.policy }

// Choose implements combat.Chooser.
//
// Precondition: actor is active on b's field.
// Postcondition: returns a move command; StruggleSlot when no move has PP left.
func (p *Planner) Choose(b *combat.Battle, actor *combat.Combatant) combat.Command {
	ws := BuildWorldState(b, actor)
	pool := b.UsableSlots(actor)
	switch {
	case len(pool) == 0:
		return combat.MoveCommand(actor.ID, combat.StruggleSlot)
	case len(pool) == 1:
		return p.command(b, ws, pool[0])
	case p.policy == PolicyRandom:
		return p.command(b, ws, pool[b.Rand().Intn(len(pool))])
	}

	ranked := p.Rank(b, ws, pool)
	r := 0
	switch p.policy {
	case PolicySmartRandom:
		for r < len(ranked)-1 && b.Rand().Intn(8) >= 5 {
			r++
		}
	case PolicySmart:
		for r < len(ranked)-1 {
			cur, next := ranked[r].Score, ranked[r+1].Score
			if cur == 0 {
				break
			}
			ratio := next / cur
			if ratio < 0 || b.Rand().Intn(100) >= int(math.Round(ratio*50)) {
				break
			}
			r++
		}
	}
	pick := ranked[r]
	b.Logger().Debug("ai move chosen",
		zap.String("combatant", actor.ID),
		zap.String("policy", string(p.policy)),
		zap.String("move", pick.MoveID),
		zap.Float64("score", pick.Score),
		zap.Int("rank", r),
	)
	return combat.MoveCommand(actor.ID, pick.Slot, pick.TargetIDs...)
}

// Rank aims every move in pool and scores it, best first. Equal scores
// keep slot order.
//
// Precondition: every entry of pool is a slot from b.UsableSlots(ws.Actor).
func (p *Planner) Rank(b *combat.Battle, ws *WorldState, pool []int) []Scored {
	moves := make([]*move.Def, len(pool))
	aims := make([][]*combat.Combatant, len(pool))
	for i, slot := range pool {
		moves[i] = slotMove(b, ws.Actor, slot)
		aims[i] = aim(b, ws, moves[i])
	}
	out := make([]Scored, len(pool))
	for i, slot := range pool {
		best := math.Inf(-1)
		for _, t := range aims[i] {
			best = max(best, Score(b, ws, t, moves[i]))
		}
		if math.IsInf(best, -1) {
			best = FailScore
		}
		out[i] = Scored{Slot: slot, MoveID: moves[i].ID, Score: best, TargetIDs: targetIDs(ws, moves[i], aims[i])}
	}
	slices.SortStableFunc(out, func(x, y Scored) int { return cmp.Compare(y.Score, x.Score) })
	return out
}

// Score rates mv used by ws.Actor against target.
//
// Postcondition: never NaN; FailScore for moves that cannot work.
func Score(b *combat.Battle, ws *WorldState, target *combat.Combatant, mv *move.Def) float64 {
	user := ws.Actor
	sign := -1.0
	if ws.IsAlly(target) {
		sign = 1
	}
	score := UserBenefit(b, user, target, mv) + TargetBenefit(b, user, target, mv)*sign
	if math.IsNaN(score) {
		b.Logger().Warn("move score is NaN", zap.String("move", mv.ID), zap.String("target", target.ID))
		score = 0
	}
	if fails(b, user, target, mv) {
		return FailScore
	}
	if mv.Category == move.Status {
		return score
	}
	eff := b.MoveEffectiveness(user, target, mv, false, true, nil)
	stab := user.IsOfType(mv.Type)
	if !ws.IsAlly(target) {
		score *= eff
		if stab {
			score *= stabFactor
		}
	} else if eff != 0 {
		score /= eff
		if stab {
			score /= stabFactor
		}
	}
	if score == 0 {
		return FailScore
	}
	return score
}

// aim returns the targets mv would be used on. Single-target moves pick one
// candidate by weighted draw: weights are the target benefit flipped for
// opponents, shifted so the lowest is at least 1, and any candidate under
// half of the best weight is dropped.
func aim(b *combat.Battle, ws *WorldState, mv *move.Def) []*combat.Combatant {
	cands := ws.Candidates(mv)
	if ws.Spread(mv) || len(cands) <= 1 {
		return cands
	}
	type weighted struct {
		c *combat.Combatant
		w float64
	}
	ranked := make([]weighted, len(cands))
	for i, c := range cands {
		w := TargetBenefit(b, ws.Actor, c, mv)
		if math.IsNaN(w) {
			w = 0
		}
		if !ws.IsAlly(c) {
			w = -w
		}
		ranked[i] = weighted{c: c, w: w}
	}
	slices.SortStableFunc(ranked, func(x, y weighted) int { return cmp.Compare(y.w, x.w) })
	if lowest := ranked[len(ranked)-1].w; lowest < 1 {
		for i := range ranked {
			ranked[i].w += math.Abs(lowest - 1)
		}
	}
	cut := len(ranked)
	for i, r := range ranked {
		if r.w < ranked[0].w/2 {
			cut = i
			break
		}
	}
	weights := make([]int, cut)
	for i := range weights {
		weights[i] = max(1, int(math.Round(ranked[i].w)))
	}
	idx := 0
	if cut > 1 {
		idx = dice.WeightedIndex(b.Rand(), weights)
	}
	return []*combat.Combatant{ranked[idx].c}
}

func (p *Planner) command(b *combat.Battle, ws *WorldState, slot int) combat.Command {
	mv := slotMove(b, ws.Actor, slot)
	return combat.MoveCommand(ws.Actor.ID, slot, targetIDs(ws, mv, aim(b, ws, mv))...)
}

func targetIDs(ws *WorldState, mv *move.Def, targets []*combat.Combatant) []string {
	if ws.Spread(mv) {
		return nil
	}
	ids := make([]string, 0, len(targets))
	for _, t := range targets {
		ids = append(ids, t.ID)
	}
	return ids
}

// slotMove resolves a usable slot; unknown ids degrade to the fallback move.
func slotMove(b *combat.Battle, c *combat.Combatant, slot int) *move.Def {
	mv, _ := b.Catalog.Moves.Resolve(c.Moves[slot].ID)
	return mv
}
