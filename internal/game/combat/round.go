package combat

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/ability"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/field"
	"github.com/cory-johannsen/battlecore/internal/game/move"
	"github.com/cory-johannsen/battlecore/internal/game/quest"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/game/tag"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

var (
	// ErrBattleOver is returned when a command or turn is submitted after the battle ended.
	ErrBattleOver = errors.New("battle is over")
	// ErrNotOnField is returned for a command whose actor is not an active combatant.
	ErrNotOnField = errors.New("combatant is not on the field")
	// ErrCommandsPending is returned when a combatant has no command and no Chooser is set.
	ErrCommandsPending = errors.New("commands pending")
)

// TurnResult is the outcome of one resolved turn.
type TurnResult struct {
	Turn    int
	Effects []Effect
	Over    bool
	Winner  field.Side
}

// Messages returns the message keys queued during the turn.
func (r TurnResult) Messages() []string {
	l := Log{Effects: r.Effects}
	return l.Messages()
}

// Submit queues cmd for the coming turn.
//
// Precondition: the battle is not over.
// Postcondition: on success the actor has a queued command; on error nothing changes.
func (b *Battle) Submit(cmd Command) error {
	if b.over {
		return ErrBattleOver
	}
	actor, ok := b.Find(cmd.ActorID)
	if !ok || !actor.Active || actor.IsFainted() {
		return fmt.Errorf("%w: %q", ErrNotOnField, cmd.ActorID)
	}
	if cmd.Kind == CommandMove && cmd.Slot != StruggleSlot && (cmd.Slot < 0 || cmd.Slot >= len(actor.Moves)) {
		return fmt.Errorf("%w: slot %d out of range", ErrInvalidCommand, cmd.Slot)
	}
	return b.queue.Enqueue(cmd)
}

// UsableSlots returns the move slots of c that resolve to a move with PP left.
func (b *Battle) UsableSlots(c *Combatant) []int {
	var out []int
	for i, slot := range c.Moves {
		mv, ok := b.Catalog.Moves.Get(slot.ID)
		if !ok {
			continue
		}
		if mv.PP > 0 && slot.PPUsed >= mv.PP {
			continue
		}
		out = append(out, i)
	}
	return out
}

// commandMove returns the move cmd uses without side effects. Unusable
// slots fall back to Struggle; unknown ids to the guaranteed-fail move.
func (b *Battle) commandMove(actor *Combatant, cmd Command) *move.Def {
	if cmd.Slot == StruggleSlot || cmd.Slot < 0 || cmd.Slot >= len(actor.Moves) {
		return move.Struggle()
	}
	slot := actor.Moves[cmd.Slot]
	mv, err := b.Catalog.Moves.Resolve(slot.ID)
	if err != nil {
		return mv
	}
	if mv.PP > 0 && slot.PPUsed >= mv.PP {
		return move.Struggle()
	}
	return mv
}

// ResolveTurn resolves one turn: missing commands are filled by the
// Chooser, commands run in speed order, then end-of-turn effects apply,
// fainted combatants are replaced and victory is checked.
//
// Precondition: the battle is not over.
// Postcondition: the queue is empty; Turn is incremented on success.
func (b *Battle) ResolveTurn() (TurnResult, error) {
	if b.over {
		return TurnResult{}, ErrBattleOver
	}
	if b.chooser == nil {
		for _, c := range b.Field() {
			if !b.queue.Has(c.ID) {
				return TurnResult{}, fmt.Errorf("%w: %s", ErrCommandsPending, c.ID)
			}
		}
	}
	b.Turn++
	b.Streams.BeginTurn(b.Turn)
	b.syncAllMaxHP()
	for _, c := range b.Field() {
		c.Turn = TurnData{}
		if b.queue.Has(c.ID) {
			continue
		}
		if err := b.queue.Enqueue(b.chooser.Choose(b, c)); err != nil {
			b.logger.Warn("chooser returned an invalid command", zap.String("combatant", c.ID), zap.Error(err))
			_ = b.queue.Enqueue(PassCommand(c.ID))
		}
	}

	var log Log
	for _, o := range b.order(b.queue.Commands()) {
		if b.over {
			break
		}
		if !o.actor.Active || o.actor.IsFainted() || o.cmd.Kind != CommandMove {
			continue
		}
		b.useMove(o.actor, o.cmd, &log)
		o.actor.Tags.Lapse(tag.LapseAfterMove)
		b.checkVictory()
	}
	b.queue.Reset()
	if !b.over {
		b.endOfTurn(&log)
		b.checkVictory()
	}
	b.logger.Debug("turn resolved", zap.Int("turn", b.Turn), zap.Int("effects", log.Len()))
	return TurnResult{Turn: b.Turn, Effects: log.Effects, Over: b.over, Winner: b.winner}, nil
}

// canAct applies the status checks that can stop a combatant from moving.
func (b *Battle) canAct(actor *Combatant, log *Log) bool {
	switch actor.Status.Effect {
	case StatusSleep:
		if actor.Status.Turns > 0 {
			actor.Status.Turns--
			log.message(MsgAsleep, actor.ID)
			return false
		}
		actor.Status = Status{}
		log.message(MsgWokeUp, actor.ID)
	case StatusFreeze:
		if !dice.OneIn(b.rng, 5) {
			log.message(MsgFrozen, actor.ID)
			return false
		}
		actor.Status = Status{}
		log.message(MsgThawed, actor.ID)
	case StatusParalysis:
		if dice.OneIn(b.rng, 4) {
			log.message(MsgFullyParalyzed, actor.ID)
			return false
		}
	}
	return true
}

// useMove runs one move command of actor.
func (b *Battle) useMove(actor *Combatant, cmd Command, log *Log) {
	if !b.canAct(actor, log) {
		return
	}
	mv := b.commandMove(actor, cmd)
	if mv.ID == move.StruggleID {
		log.message(MsgStruggle, actor.ID)
	} else if mv.ID == move.FallbackID {
		b.logger.Warn("unknown move in slot", zap.String("combatant", actor.ID), zap.Int("slot", cmd.Slot))
	} else if mv.PP > 0 {
		actor.Moves[cmd.Slot].PPUsed++
	}

	log.add(Effect{Kind: EffectMoveUsed, SourceID: actor.ID, MoveID: mv.ID})
	if actor.IsPlayer() {
		b.observe(quest.Event{Type: quest.EventMoveUsed, MoveID: mv.ID, MoveType: mv.Type, SpeciesID: actor.SpeciesID})
	}
	if mv.Has(move.AttrFails) {
		log.message(MsgMoveFailed, actor.ID)
		return
	}

	targets := b.targets(actor, mv, cmd.TargetIDs)
	if len(targets) == 0 {
		log.message(MsgMoveFailed, actor.ID)
		return
	}
	landed := false
	for _, t := range targets {
		if b.strike(actor, t, mv, len(targets), log) {
			landed = true
			b.secondary(actor, t, mv, false, log)
		}
	}
	if landed {
		b.secondary(actor, actor, mv, true, log)
	}
}

// targets resolves who mv hits. A single-target move falls back to a
// random opponent when the chosen target has left the field.
func (b *Battle) targets(actor *Combatant, mv *move.Def, ids []string) []*Combatant {
	switch mv.Target {
	case move.TargetSelf:
		return []*Combatant{actor}
	case move.TargetAllEnemies:
		return b.Opponents(actor)
	case move.TargetAllOthers:
		return append(b.Opponents(actor), b.Allies(actor)...)
	}
	for _, id := range ids {
		if c, ok := b.Find(id); ok && c != actor && c.Active && !c.IsFainted() {
			return []*Combatant{c}
		}
	}
	opps := b.Opponents(actor)
	switch len(opps) {
	case 0:
		return nil
	case 1:
		return opps
	default:
		return []*Combatant{opps[b.rng.Intn(len(opps))]}
	}
}

// accuracyCheck rolls whether mv connects with target.
func (b *Battle) accuracyCheck(actor, target *Combatant, mv *move.Def) bool {
	if mv.Has(move.AttrOneHitKO) && actor.Level < target.Level {
		return false
	}
	if mv.Accuracy <= 0 {
		return true
	}
	stage := stat.ClampStage(actor.Stages.Get(stat.ACC) - target.Stages.Get(stat.EVA))
	ratio := float64(max(3, 3+stage)) / float64(max(3, 3-stage))
	threshold := int(math.Floor(float64(mv.Accuracy) * ratio))
	return dice.IntRange(b.rng, 1, 100) <= threshold
}

// strike resolves every hit of mv against target and reports whether the move landed.
func (b *Battle) strike(actor, target *Combatant, mv *move.Def, n int, log *Log) bool {
	if target != actor && !b.accuracyCheck(actor, target, mv) {
		log.message(MsgMiss, target.ID)
		return false
	}
	hits := 1
	switch {
	case mv.IsMultiHit():
		hits = max(b.roller.Roll(mv.HitCount()).Total(), 1)
	case mv.Category != move.Status:
		hits += b.Modifiers.MultiHitStacks(actor.ID)
	}
	second := hits == 1 && !mv.IsMultiHit() && mv.Category != move.Status && len(b.hooks(ability.SecondStrike, actor)) > 0
	if second {
		hits++
	}
	actor.Turn.HitsLeft = hits
	total := 0
	for i := 0; i < hits && !target.IsFainted(); i++ {
		out := b.ResolveHit(actor, target, mv, HitOptions{
			Targets:      n,
			SecondStrike: second && i == hits-1,
			LastHit:      i == hits-1,
		})
		log.Effects = append(log.Effects, out.Effects...)
		actor.Turn.HitsLeft--
		switch {
		case out.Result == ResultStatus:
			return true
		case !out.Result.Damaging():
			return false
		}
		total += out.Damage
		if actor.IsPlayer() {
			if out.Result == ResultSuperEffective {
				b.observe(quest.Event{Type: quest.EventSuperEffective, MoveID: mv.ID, MoveType: mv.Type, SpeciesID: actor.SpeciesID})
			}
			if out.Critical {
				b.observe(quest.Event{Type: quest.EventCriticalHit, MoveID: mv.ID, MoveType: mv.Type, SpeciesID: actor.SpeciesID})
			}
		}
	}
	actor.Turn.HitsLeft = 0
	if actor.IsPlayer() && total > 0 {
		b.observe(quest.Event{Type: quest.EventDamageDealt, MoveID: mv.ID, MoveType: mv.Type, SpeciesID: actor.SpeciesID, Amount: total})
	}
	return true
}

// statusImmunities lists the types immune to each status condition.
var statusImmunities = map[StatusEffect][]typechart.Type{
	StatusBurn:      {typechart.Fire},
	StatusParalysis: {typechart.Electric},
	StatusPoison:    {typechart.Poison, typechart.Steel},
	StatusFreeze:    {typechart.Ice},
}

// ImmuneToStatus reports whether c's types block effect.
func (c *Combatant) ImmuneToStatus(effect StatusEffect) bool {
	for _, t := range statusImmunities[effect] {
		if c.IsOfType(t) {
			return true
		}
	}
	return false
}

// secondary applies the stat change and status attributes of mv to
// recipient. self selects the attributes aimed at the user.
func (b *Battle) secondary(actor, recipient *Combatant, mv *move.Def, self bool, log *Log) {
	if recipient.IsFainted() {
		return
	}
	if st, stages, onSelf, ok := mv.StatChange(); ok && onSelf == self {
		if applied := recipient.Stages.Add(st, stages); applied != 0 {
			log.add(Effect{Kind: EffectStatStage, SourceID: actor.ID, TargetID: recipient.ID, MoveID: mv.ID, Stat: st, Amount: applied})
		} else {
			log.message(MsgStatUnchanged, recipient.ID)
		}
	}
	if self {
		return
	}
	a, ok := mv.Attr(move.AttrInflictStatus)
	if !ok || recipient.Status.Effect != StatusNone {
		return
	}
	effect, ok := ParseStatus(a.Status)
	if !ok {
		return
	}
	if recipient.ImmuneToStatus(effect) {
		return
	}
	recipient.Status = Status{Effect: effect}
	if effect == StatusSleep {
		recipient.Status.Turns = dice.IntRange(b.rng, 1, 3)
	}
	log.add(Effect{Kind: EffectStatus, SourceID: actor.ID, TargetID: recipient.ID, MoveID: mv.ID, Key: a.Status})
}

// endOfTurn applies status chip damage, lapses turn-end tags and arena
// effects, and sends out replacements for fainted combatants.
func (b *Battle) endOfTurn(log *Log) {
	for _, c := range b.Field() {
		var chip int
		switch c.Status.Effect {
		case StatusBurn:
			chip = max(c.MaxHP()/16, 1)
		case StatusPoison:
			chip = max(c.MaxHP()/8, 1)
		default:
			continue
		}
		dealt := b.ApplyDamage(c, chip, false, true, log)
		log.add(Effect{Kind: EffectDamage, TargetID: c.ID, Key: "status." + statusKey(c.Status.Effect), Amount: dealt})
		if c.IsFainted() {
			b.faint(c, log)
		}
	}
	for _, c := range b.Field() {
		c.Tags.Lapse(tag.LapseTurnEnd)
	}
	b.Arena.Lapse()

	for _, side := range []field.Side{field.SidePlayer, field.SideEnemy} {
		for _, c := range b.Party(side) {
			if c.Active && c.IsFainted() {
				c.Active = false
			}
		}
		for len(b.Active(side)) < b.slots() {
			next := b.nextReserve(side)
			if next == nil {
				break
			}
			b.sendOut(next, log)
		}
	}
}

func statusKey(s StatusEffect) string {
	for name, v := range statusNames {
		if v == s {
			return name
		}
	}
	return "none"
}

// remaining reports whether side has a combatant that has not fainted.
func (b *Battle) remaining(side field.Side) bool {
	for _, c := range b.Party(side) {
		if !c.IsFainted() {
			return true
		}
	}
	return false
}

// checkVictory ends the battle once a side has no combatants left.
func (b *Battle) checkVictory() {
	player, enemy := b.remaining(field.SidePlayer), b.remaining(field.SideEnemy)
	switch {
	case player && enemy:
		return
	case player:
		b.finish(field.SidePlayer)
	case enemy:
		b.finish(field.SideEnemy)
	default:
		b.finish(field.SideBoth)
	}
}

// Forfeit ends the battle without a winner, as when a turn cap is reached.
func (b *Battle) Forfeit() {
	if !b.over {
		b.finish(field.SideBoth)
	}
}

// finish ends the battle: quest progress is closed for the encounter,
// battle-lapsing modifiers tick and stale held items are pruned.
func (b *Battle) finish(winner field.Side) {
	b.over = true
	b.winner = winner
	if winner == field.SidePlayer {
		b.observe(quest.Event{Type: quest.EventBattleWon})
	}
	b.Modifiers.QuestEncounterEnd(winner != field.SidePlayer)
	expired := b.Modifiers.LapseBattle()
	pruned := b.Modifiers.Prune(b)
	b.logger.Info("battle ended",
		zap.String("winner", winner.String()),
		zap.Int("turns", b.Turn),
		zap.Int("expired_modifiers", len(expired)),
		zap.Int("pruned_modifiers", len(pruned)),
	)
}
