package move

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownMove is returned when a move id is not in the table.
var ErrUnknownMove = errors.New("unknown move")

// Table is the read-only move catalog keyed by move id.
type Table struct {
	moves map[string]*Def
}

// NewTable builds a table from defs. Struggle is always present.
//
// Precondition: every def has passed Validate.
func NewTable(defs ...*Def) *Table {
	t := &Table{moves: make(map[string]*Def, len(defs)+1)}
	t.moves[StruggleID] = Struggle()
	for _, d := range defs {
		t.moves[d.ID] = d
	}
	return t
}

// Get returns the move with id.
func (t *Table) Get(id string) (*Def, bool) {
	d, ok := t.moves[id]
	return d, ok
}

// Resolve returns the move with id. An unknown id yields the guaranteed-fail
// fallback together with an error wrapping ErrUnknownMove, so callers can log
// the miss and keep the battle running.
//
// Postcondition: the returned Def is never nil.
func (t *Table) Resolve(id string) (*Def, error) {
	if d, ok := t.moves[id]; ok {
		return d, nil
	}
	return Fallback(), fmt.Errorf("%w: %q", ErrUnknownMove, id)
}

// IDs returns every move id in sorted order.
func (t *Table) IDs() []string {
	out := make([]string, 0, len(t.moves))
	for id := range t.moves {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// LoadFromBytes parses a YAML sequence of moves.
//
// Postcondition: Returns validated moves, or an error naming the first bad entry.
func LoadFromBytes(data []byte) ([]*Def, error) {
	var defs []*Def
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil {
		return nil, fmt.Errorf("parsing move YAML: %w", err)
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

// LoadDirectory reads all *.yaml files in dir into a Table.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a Table or an error on the first parse, validate or
// duplicate-id failure.
func LoadDirectory(dir string) (*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading move dir %q: %w", dir, err)
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
				return nil, fmt.Errorf("loading %q: move %q already defined in %q", path, d.ID, prev)
			}
			seen[d.ID] = path
		}
		all = append(all, defs...)
	}
	return NewTable(all...), nil
}
