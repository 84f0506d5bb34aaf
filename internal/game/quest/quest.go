// Package quest defines multi-stage quests and the progress state machine
// that counts matching battle events toward each stage goal.
package quest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

// ErrUnknownQuest is returned when a quest id is not in the catalog.
var ErrUnknownQuest = errors.New("unknown quest")

// RunType restricts the game modes a quest counts in.
type RunType string

const (
	RunAny        RunType = "any"
	RunClassic    RunType = "classic"
	RunNonClassic RunType = "non_classic"
	RunNuzlocke   RunType = "nuzlocke"
	RunNightmare  RunType = "nightmare"
)

// Accepts reports whether a quest of run type r counts during a run of type current.
func (r RunType) Accepts(current RunType) bool {
	switch r {
	case RunAny, "":
		return true
	case RunNonClassic:
		return current != RunClassic
	default:
		return r == current
	}
}

// Duration governs when progress counters reset.
type Duration string

const (
	// MultiRun counters persist across runs and encounters.
	MultiRun Duration = "multi_run"
	// SingleRun counters reset when a new run starts.
	SingleRun Duration = "single_run"
	// SingleEncounter counters reset at the start of every encounter.
	SingleEncounter Duration = "single_encounter"
)

// EventType names a battle event a quest condition can recognise.
type EventType string

const (
	EventMoveUsed       EventType = "move_used"
	EventSuperEffective EventType = "super_effective"
	EventCriticalHit    EventType = "critical_hit"
	EventFaint          EventType = "faint"
	EventSegmentCleared EventType = "segment_cleared"
	EventBattleWon      EventType = "battle_won"
	EventDamageDealt    EventType = "damage_dealt"
)

var eventTypes = map[EventType]bool{
	EventMoveUsed: true, EventSuperEffective: true, EventCriticalHit: true, EventFaint: true,
	EventSegmentCleared: true, EventBattleWon: true, EventDamageDealt: true,
}

// Event is one battle occurrence fed to quest progress.
type Event struct {
	Type      EventType
	Run       RunType
	MoveID    string
	MoveType  typechart.Type
	SpeciesID string
	// Amount carries the magnitude for damage events.
	Amount int
}

// Condition is the predicate a stage counts events with. Empty filters match anything.
type Condition struct {
	Event     EventType       `yaml:"event"`
	MoveID    string          `yaml:"move"`
	MoveType  *typechart.Type `yaml:"move_type"`
	SpeciesID string          `yaml:"species"`
	MinAmount int             `yaml:"min_amount"`
}

// Matches reports whether e satisfies the condition.
func (c Condition) Matches(e Event) bool {
	if c.Event != e.Type {
		return false
	}
	if c.MoveID != "" && c.MoveID != e.MoveID {
		return false
	}
	if c.MoveType != nil && *c.MoveType != e.MoveType {
		return false
	}
	if c.SpeciesID != "" && c.SpeciesID != e.SpeciesID {
		return false
	}
	return e.Amount >= c.MinAmount
}

// Stage is one sub-quest: a condition, a goal count and an optional reward key.
type Stage struct {
	Condition Condition `yaml:"condition"`
	Goal      int       `yaml:"goal"`
	Reward    string    `yaml:"reward"`
}

// Def is a quest catalog entry.
type Def struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	RunType     RunType  `yaml:"run_type"`
	Duration    Duration `yaml:"duration"`
	ResetOnFail bool     `yaml:"reset_on_fail"`
	Stages      []Stage  `yaml:"stages"`
	// Reward is dispatched when the final stage completes.
	Reward string `yaml:"reward"`
	// Marker keeps a completed quest in the registry as a terminal
	// achievement marker instead of removing it.
	Marker bool `yaml:"marker"`
}

// Validate checks the definition and defaults RunType and Duration.
//
// Postcondition: Returns nil iff id and name are set, there is at least one
// stage, every stage has a known event and a goal >= 1, and the run type and
// duration are known.
func (d *Def) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if d.RunType == "" {
		d.RunType = RunAny
	}
	switch d.RunType {
	case RunAny, RunClassic, RunNonClassic, RunNuzlocke, RunNightmare:
	default:
		errs = append(errs, fmt.Sprintf("unknown run_type %q", d.RunType))
	}
	if d.Duration == "" {
		d.Duration = MultiRun
	}
	switch d.Duration {
	case MultiRun, SingleRun, SingleEncounter:
	default:
		errs = append(errs, fmt.Sprintf("unknown duration %q", d.Duration))
	}
	if len(d.Stages) == 0 {
		errs = append(errs, "at least one stage is required")
	}
	for i, s := range d.Stages {
		if !eventTypes[s.Condition.Event] {
			errs = append(errs, fmt.Sprintf("stage %d: unknown event %q", i, s.Condition.Event))
		}
		if s.Goal < 1 {
			errs = append(errs, fmt.Sprintf("stage %d: goal must be >= 1", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("quest %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Catalog is the read-only quest table.
type Catalog struct {
	defs map[string]*Def
}

// NewCatalog builds a Catalog from validated defs.
func NewCatalog(defs ...*Def) *Catalog {
	c := &Catalog{defs: make(map[string]*Def, len(defs))}
	for _, d := range defs {
		c.defs[d.ID] = d
	}
	return c
}

// Get returns the quest with id or an error wrapping ErrUnknownQuest.
func (c *Catalog) Get(id string) (*Def, error) {
	d, ok := c.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuest, id)
	}
	return d, nil
}

// All returns every quest ordered by id.
func (c *Catalog) All() []*Def {
	out := make([]*Def, 0, len(c.defs))
	for _, d := range c.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadFromBytes parses and validates a YAML sequence of quests.
func LoadFromBytes(data []byte) ([]*Def, error) {
	var defs []*Def
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil {
		return nil, fmt.Errorf("parsing quest YAML: %w", err)
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

// LoadDirectory reads all *.yaml files in dir into a Catalog.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a Catalog or an error on the first parse, validate or duplicate-id failure.
func LoadDirectory(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading quest dir %q: %w", dir, err)
	}
	var all []*Def
	seen := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		defs, err := LoadFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		for _, d := range defs {
			if prev, dup := seen[d.ID]; dup {
				return nil, fmt.Errorf("loading %q: quest %q already defined in %q", path, d.ID, prev)
			}
			seen[d.ID] = path
		}
		all = append(all, defs...)
	}
	return NewCatalog(all...), nil
}
