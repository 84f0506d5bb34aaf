// Package tag implements battler tags: ephemeral per-summon effects with
// defined lapse timing, loaded from YAML definitions.
package tag

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

// Kind selects the engine behavior a tag contributes.
type Kind string

const (
	KindGeneric          Kind = "generic"
	KindEndure           Kind = "endure"             // survives a lethal hit at 1 HP while hp >= 1
	KindSturdy           Kind = "sturdy"             // survives a lethal hit at 1 HP while hp > 1, consumed on use
	KindSlowStart        Kind = "slow_start"         // halves attack and speed
	KindHighestStatBoost Kind = "highest_stat_boost" // multiplies the recorded highest stat
	KindExposed          Kind = "exposed"            // strips a type immunity against listed attack types
	KindTypeImmune       Kind = "type_immune"        // immune to listed attack types
	KindGrounded         Kind = "grounded"           // Flying subtype ignored by Ground moves
	KindCritBoost        Kind = "crit_boost"         // adds CritStages to the crit stage
	KindAlwaysCrit       Kind = "always_crit"        // next hit is a guaranteed crit
	KindMarked           Kind = "marked"             // incoming damage is doubled
)

// Lapse names when a tag's turn counter is decremented.
type Lapse string

const (
	LapseTurnEnd   Lapse = "turn_end"
	LapseAfterMove Lapse = "after_move"
	LapseOnHit     Lapse = "on_hit"
	LapseOnUse     Lapse = "on_use" // removed when its effect fires
	LapseSummon    Lapse = "summon" // lasts until the summon data is discarded
)

// Def is the static definition of a battler tag, loaded from YAML.
type Def struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Kind        Kind             `yaml:"kind"`
	Lapse       Lapse            `yaml:"lapse"`
	MaxStacks   int              `yaml:"max_stacks"` // 0 = unstackable
	CritStages  int              `yaml:"crit_stages"`
	Types       []typechart.Type `yaml:"types"`        // attack types for exposed / type_immune
	StripsType  typechart.Type   `yaml:"strips_type"`  // defending type whose immunity exposed removes
	Multiplier  float64          `yaml:"multiplier"`   // highest_stat_boost
	SpdMultiple float64          `yaml:"spd_multiple"` // highest_stat_boost when the stat is speed
}

// Validate reports every problem with d.
func (d *Def) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	switch d.Kind {
	case KindGeneric, KindEndure, KindSturdy, KindSlowStart, KindHighestStatBoost, KindExposed,
		KindTypeImmune, KindGrounded, KindCritBoost, KindAlwaysCrit, KindMarked:
	default:
		errs = append(errs, fmt.Sprintf("kind %q is not recognised", d.Kind))
	}
	switch d.Lapse {
	case LapseTurnEnd, LapseAfterMove, LapseOnHit, LapseOnUse, LapseSummon:
	default:
		errs = append(errs, fmt.Sprintf("lapse %q is not recognised", d.Lapse))
	}
	if d.MaxStacks < 0 {
		errs = append(errs, "max_stacks must be >= 0")
	}
	if (d.Kind == KindExposed || d.Kind == KindTypeImmune) && len(d.Types) == 0 {
		errs = append(errs, fmt.Sprintf("%s tags must list types", d.Kind))
	}
	if len(errs) > 0 {
		return fmt.Errorf("tag %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Registry holds all known tag Defs keyed by ID.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Def) {
	r.defs[def.ID] = def
}

// Get returns the Def for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns every registered Def ordered by ID.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Def,
// validates it and returns a populated Registry.
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading tag dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("%q: %w", path, err)
		}
		reg.Register(&def)
	}
	return reg, nil
}
