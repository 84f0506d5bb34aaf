package quest

import (
	"errors"
	"fmt"
)

//go:generate go tool mockgen -destination=./mocks/dispatcher_mock.go -package=mocks . RewardDispatcher

// Reward is the event dispatched when a stage or the whole quest completes.
type Reward struct {
	QuestID string
	// Stage is the index of the completed stage.
	Stage int
	Key   string
	// Final is true when the last stage completed.
	Final bool
}

// RewardDispatcher delivers quest rewards to the progression layer.
type RewardDispatcher interface {
	Dispatch(r Reward) error
}

// State is a progress state. Completing a stage is reported through
// Outcome.StageCompleted; the progress itself moves straight on to the next
// stage or to Terminal.
type State int

const (
	Active State = iota
	Terminal
)

// String returns "active" or "terminal".
func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Outcome reports what one Observe call did.
type Outcome struct {
	Counted bool
	// StageCompleted is true when a stage goal was reached by this event.
	StageCompleted bool
	// Finished is true exactly once, on the transition into Terminal.
	Finished bool
}

// Progress is the counter state of one quest.
//
// Invariant: 0 <= Count <= goal of the current stage; once State is Terminal it never changes.
type Progress struct {
	Def   *Def
	Stage int
	Count int
	State State
}

// NewProgress starts def at stage 0.
//
// Precondition: def must be validated.
func NewProgress(def *Def) *Progress {
	return &Progress{Def: def}
}

// Goal returns the goal of the current stage, or of the final stage once terminal.
func (p *Progress) Goal() int {
	idx := p.Stage
	if idx >= len(p.Def.Stages) {
		idx = len(p.Def.Stages) - 1
	}
	return p.Def.Stages[idx].Goal
}

// Observe feeds one event. When the condition holds the counter increments;
// reaching the goal completes the stage, dispatches its reward and either
// advances to the next stage or, after the last one, dispatches the quest
// reward and becomes Terminal.
//
// Postcondition: Count never exceeds Goal(); Terminal is entered at most once.
func (p *Progress) Observe(e Event, d RewardDispatcher) (Outcome, error) {
	var out Outcome
	if p.State == Terminal {
		return out, nil
	}
	if !p.Def.RunType.Accepts(e.Run) {
		return out, nil
	}
	stage := p.Def.Stages[p.Stage]
	if !stage.Condition.Matches(e) {
		return out, nil
	}
	p.Count++
	out.Counted = true
	if p.Count < stage.Goal {
		return out, nil
	}

	// The transition finishes before any reward goes out, so a failing
	// dispatcher cannot leave the counter parked at the goal.
	done := p.Stage
	out.StageCompleted = true
	if p.Stage+1 < len(p.Def.Stages) {
		p.Stage++
		p.Count = 0
		p.State = Active
	} else {
		p.State = Terminal
		out.Finished = true
	}
	if d == nil {
		return out, nil
	}

	var errs []error
	if stage.Reward != "" {
		if err := d.Dispatch(Reward{QuestID: p.Def.ID, Stage: done, Key: stage.Reward}); err != nil {
			errs = append(errs, fmt.Errorf("quest %q stage %d: dispatching reward: %w", p.Def.ID, done, err))
		}
	}
	if out.Finished && p.Def.Reward != "" {
		if err := d.Dispatch(Reward{QuestID: p.Def.ID, Stage: done, Key: p.Def.Reward, Final: true}); err != nil {
			errs = append(errs, fmt.Errorf("quest %q: dispatching final reward: %w", p.Def.ID, err))
		}
	}
	return out, errors.Join(errs...)
}

// reset clears the counters of a non-terminal quest.
func (p *Progress) reset() {
	if p.State == Terminal {
		return
	}
	p.Stage = 0
	p.Count = 0
	p.State = Active
}

// OnRunStart resets single-run quests.
func (p *Progress) OnRunStart() {
	if p.Def.Duration == SingleRun {
		p.reset()
	}
}

// OnEncounterStart resets single-encounter quests.
func (p *Progress) OnEncounterStart() {
	if p.Def.Duration == SingleEncounter {
		p.reset()
	}
}

// OnEncounterEnd resets the current stage counter of a reset-on-fail quest
// when the encounter was lost.
func (p *Progress) OnEncounterEnd(failed bool) {
	if failed && p.Def.ResetOnFail && p.State == Active {
		p.Count = 0
	}
}

// Args returns the constructor arguments that rebuild this progress.
func (p *Progress) Args() []any {
	return []any{p.Def.ID, p.Stage, p.Count, int(p.State)}
}

// Restore rebuilds progress from Args output. Numeric arguments may arrive
// as float64 after a JSON round trip.
//
// Postcondition: Returns progress clamped to the def's stages and goals, or an error.
func Restore(c *Catalog, args []any) (*Progress, error) {
	if len(args) != 4 {
		return nil, fmt.Errorf("quest restore: want 4 args, got %d", len(args))
	}
	id, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("quest restore: id must be a string, got %T", args[0])
	}
	def, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	nums := make([]int, 3)
	for i, a := range args[1:] {
		n, err := toInt(a)
		if err != nil {
			return nil, fmt.Errorf("quest restore %q arg %d: %w", id, i+1, err)
		}
		nums[i] = n
	}
	p := &Progress{Def: def, Stage: nums[0], Count: nums[1], State: State(nums[2])}
	if p.Stage < 0 || p.Stage >= len(def.Stages) {
		p.Stage = len(def.Stages) - 1
	}
	if p.Count < 0 {
		p.Count = 0
	}
	if g := p.Goal(); p.Count > g {
		p.Count = g
	}
	if p.State < Active || p.State > Terminal {
		p.State = Active
	}
	return p, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("want number, got %T", v)
	}
}
