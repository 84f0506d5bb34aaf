// Package species provides the species table: typing, base stats and
// ability slots for every creature that can enter a battle.
package species

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

// ErrUnknownSpecies is returned when a species id is not in the table.
var ErrUnknownSpecies = errors.New("unknown species")

// BaseStats is the YAML form of a species' base stat array.
type BaseStats struct {
	HP    int `yaml:"hp"`
	ATK   int `yaml:"atk"`
	DEF   int `yaml:"def"`
	SPATK int `yaml:"spatk"`
	SPDEF int `yaml:"spdef"`
	SPD   int `yaml:"spd"`
}

// Values returns the base stats as a stat array.
func (b BaseStats) Values() stat.Values {
	return stat.Values{b.HP, b.ATK, b.DEF, b.SPATK, b.SPDEF, b.SPD}
}

// Def is a species table entry.
type Def struct {
	ID        string           `yaml:"id"`
	Name      string           `yaml:"name"`
	Types     []typechart.Type `yaml:"types"`
	BaseStats BaseStats        `yaml:"base_stats"`
	Abilities []string         `yaml:"abilities"`
	// Passive is the optional hidden second ability slot.
	Passive string   `yaml:"passive"`
	Moves   []string `yaml:"moves"`
}

// Validate checks that the species satisfies basic invariants.
//
// Postcondition: Returns nil iff ID and Name are set, there are one or two
// chart types, every base stat is >= 1 and at least one ability is listed.
func (d *Def) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("species: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("species %q: name must not be empty", d.ID)
	}
	if len(d.Types) < 1 || len(d.Types) > 2 {
		return fmt.Errorf("species %q: must have one or two types, got %d", d.ID, len(d.Types))
	}
	for _, t := range d.Types {
		if !t.OnChart() {
			return fmt.Errorf("species %q: type %s is not a chart type", d.ID, t)
		}
	}
	for _, s := range stat.Permanent() {
		if d.BaseStats.Values().Get(s) < 1 {
			return fmt.Errorf("species %q: base %s must be >= 1", d.ID, s)
		}
	}
	if len(d.Abilities) == 0 {
		return fmt.Errorf("species %q: at least one ability is required", d.ID)
	}
	return nil
}

// Table is the read-only species catalog.
type Table struct {
	defs map[string]*Def
}

// NewTable builds a Table from validated defs.
func NewTable(defs ...*Def) *Table {
	t := &Table{defs: make(map[string]*Def, len(defs))}
	for _, d := range defs {
		t.defs[d.ID] = d
	}
	return t
}

// Get returns the species with id or an error wrapping ErrUnknownSpecies.
func (t *Table) Get(id string) (*Def, error) {
	d, ok := t.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSpecies, id)
	}
	return d, nil
}

// Len returns the number of species in the table.
func (t *Table) Len() int { return len(t.defs) }

// IDs returns every species id in ascending order.
func (t *Table) IDs() []string {
	out := make([]string, 0, len(t.defs))
	for id := range t.defs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// LoadFromBytes parses a single species from raw YAML bytes.
//
// Postcondition: Returns a validated *Def, or an error.
func LoadFromBytes(data []byte) (*Def, error) {
	var d Def
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing species YAML: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadDirectory reads all *.yaml files in dir, one species per file.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a Table or an error on the first parse or validate failure.
func LoadDirectory(dir string) (*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading species dir %q: %w", dir, err)
	}
	var defs []*Def
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		d, err := LoadFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		defs = append(defs, d)
	}
	return NewTable(defs...), nil
}
