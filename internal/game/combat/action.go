package combat

import (
	"errors"
	"fmt"
)

// CommandKind identifies what a combatant intends to do on its turn.
// The zero value (CommandUnknown) is intentionally invalid.
type CommandKind int

const (
	CommandUnknown CommandKind = iota // zero value; intentionally invalid
	CommandMove                       // use a move slot
	CommandPass                       // do nothing this turn
)

// String returns the human-readable name of the CommandKind.
func (k CommandKind) String() string {
	switch k {
	case CommandMove:
		return "move"
	case CommandPass:
		return "pass"
	default:
		return "unknown"
	}
}

// StruggleSlot selects Struggle instead of a move slot.
const StruggleSlot = -1

// Command is one combatant's intent for the turn.
type Command struct {
	Kind    CommandKind
	ActorID string
	// Slot indexes the actor's Moves, or StruggleSlot.
	Slot int
	// TargetIDs are the chosen targets; empty lets the move's target
	// selection pick.
	TargetIDs []string
}

// MoveCommand is a convenience constructor for a move command.
func MoveCommand(actorID string, slot int, targetIDs ...string) Command {
	return Command{Kind: CommandMove, ActorID: actorID, Slot: slot, TargetIDs: targetIDs}
}

// PassCommand is a convenience constructor for a pass command.
func PassCommand(actorID string) Command {
	return Command{Kind: CommandPass, ActorID: actorID}
}

var (
	// ErrInvalidCommand is returned for a command with an unknown kind or no actor.
	ErrInvalidCommand = errors.New("invalid command")
	// ErrAlreadySubmitted is returned when an actor submits twice in one turn.
	ErrAlreadySubmitted = errors.New("command already submitted this turn")
)

// Queue collects the commands of one turn, at most one per actor, in
// submission order.
type Queue struct {
	commands []Command
	index    map[string]int
}

// NewQueue creates an empty Queue.
//
// Postcondition: Len() == 0.
func NewQueue() *Queue {
	return &Queue{index: make(map[string]int)}
}

// Enqueue adds cmd to the queue.
//
// Precondition: cmd.Kind is not CommandUnknown; cmd.ActorID is non-empty.
// Postcondition: on success Has(cmd.ActorID) is true; on error the queue is unchanged.
func (q *Queue) Enqueue(cmd Command) error {
	if cmd.Kind == CommandUnknown || cmd.ActorID == "" {
		return fmt.Errorf("%w: kind %s actor %q", ErrInvalidCommand, cmd.Kind, cmd.ActorID)
	}
	if _, ok := q.index[cmd.ActorID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadySubmitted, cmd.ActorID)
	}
	q.index[cmd.ActorID] = len(q.commands)
	q.commands = append(q.commands, cmd)
	return nil
}

// Has reports whether actorID has a queued command.
func (q *Queue) Has(actorID string) bool {
	_, ok := q.index[actorID]
	return ok
}

// Commands returns a copy of the queued commands in submission order.
func (q *Queue) Commands() []Command {
	cp := make([]Command, len(q.commands))
	copy(cp, q.commands)
	return cp
}

// Len returns the number of queued commands.
func (q *Queue) Len() int { return len(q.commands) }

// Reset empties the queue for the next turn.
func (q *Queue) Reset() {
	q.commands = q.commands[:0]
	clear(q.index)
}
