// Package ability resolves ability ids to typed attribute hooks. The damage
// and stat pipelines ask the registry for every hook of one kind across a set
// of abilities and fold them in a fixed order.
package ability

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownAbility is returned when an ability id is not registered.
var ErrUnknownAbility = errors.New("unknown ability")

// Ability is an ability table entry.
type Ability struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Attrs       []AttrDef `yaml:"attrs"`
}

// Validate checks the ability and each of its attributes.
func (a *Ability) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("ability: id must not be empty")
	}
	if a.Name == "" {
		return fmt.Errorf("ability %q: name must not be empty", a.ID)
	}
	for i, attr := range a.Attrs {
		if err := attr.validate(); err != nil {
			return fmt.Errorf("ability %q attr %d: %w", a.ID, i, err)
		}
	}
	return nil
}

// Registry maps ability ids to their compiled hooks, grouped by kind.
// It is read-only after loading and safe for concurrent use.
type Registry struct {
	abilities map[string]*Ability
	hooks     map[string]map[Kind][]Hook
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		abilities: make(map[string]*Ability),
		hooks:     make(map[string]map[Kind][]Hook),
	}
}

// Register validates a and compiles its hooks. scripts may be nil when no
// ability uses a script attribute.
//
// Postcondition: Get(a.ID) returns a; Hooks reflects a's attributes in declaration order.
func (r *Registry) Register(a *Ability, scripts ScriptCaller) error {
	if err := a.Validate(); err != nil {
		return err
	}
	byKind := make(map[Kind][]Hook)
	for _, attr := range a.Attrs {
		if attr.Kind == Script && scripts == nil {
			return fmt.Errorf("ability %q: script attribute without a script caller", a.ID)
		}
		h := attr.hook(a.ID, scripts)
		byKind[h.Kind] = append(byKind[h.Kind], h)
	}
	r.abilities[a.ID] = a
	r.hooks[a.ID] = byKind
	return nil
}

// Get returns the ability with id.
func (r *Registry) Get(id string) (*Ability, bool) {
	a, ok := r.abilities[id]
	return a, ok
}

// Require returns the ability with id or an error wrapping ErrUnknownAbility.
func (r *Registry) Require(id string) (*Ability, error) {
	if a, ok := r.abilities[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAbility, id)
}

// Hooks returns every hook of kind k across ids, in the order of ids and
// then declaration order. Unknown and empty ids contribute nothing.
func (r *Registry) Hooks(k Kind, ids ...string) []Hook {
	var out []Hook
	for _, id := range ids {
		if id == "" {
			continue
		}
		out = append(out, r.hooks[id][k]...)
	}
	return out
}

// LoadFromBytes parses a YAML sequence of abilities.
func LoadFromBytes(data []byte) ([]*Ability, error) {
	var out []*Ability
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing ability YAML: %w", err)
	}
	return out, nil
}

// LoadDirectory reads all *.yaml files in dir into a Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a Registry or an error on the first parse or validate failure.
func LoadDirectory(dir string, scripts ScriptCaller) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading ability dir %q: %w", dir, err)
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
		abilities, err := LoadFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		for _, a := range abilities {
			if err := reg.Register(a, scripts); err != nil {
				return nil, fmt.Errorf("loading %q: %w", path, err)
			}
		}
	}
	return reg, nil
}
