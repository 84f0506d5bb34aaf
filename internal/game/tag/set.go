package tag

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/battlecore/internal/game/stat"
)

// Tag tracks one applied battler tag on a combatant.
type Tag struct {
	Def       *Def
	Stacks    int
	TurnsLeft int // -1 = until removed or the summon ends
	SourceID  string
	// Stat is the stat recorded by a highest_stat_boost tag.
	Stat stat.Stat
}

// Set tracks all tags currently applied to one combatant.
// It is not safe for concurrent use; the caller must serialise access.
type Set struct {
	tags map[string]*Tag
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{tags: make(map[string]*Tag)}
}

// Apply adds or refreshes a tag.
// If the tag is already present, stacks are incremented (capped at MaxStacks)
// and the turn counter is extended to the longer of the two.
// If MaxStacks == 0 (unstackable), stacks is always stored as 1.
// turns is the lapse count remaining; use -1 for until removed.
//
// Precondition: def must not be nil.
// Postcondition: Has(def.ID) is true.
func (s *Set) Apply(def *Def, stacks, turns int) (*Tag, error) {
	if def == nil {
		return nil, fmt.Errorf("Apply: def must not be nil")
	}
	if existing, ok := s.tags[def.ID]; ok {
		if def.MaxStacks > 0 {
			existing.Stacks = min(existing.Stacks+stacks, def.MaxStacks)
		}
		if turns < 0 || (existing.TurnsLeft >= 0 && turns > existing.TurnsLeft) {
			existing.TurnsLeft = turns
		}
		return existing, nil
	}

	effective := 1
	if def.MaxStacks > 0 {
		effective = min(max(stacks, 1), def.MaxStacks)
	}
	t := &Tag{Def: def, Stacks: effective, TurnsLeft: turns}
	s.tags[def.ID] = t
	return t, nil
}

// Remove deletes the tag with the given ID. Removing an absent tag is a no-op.
//
// Postcondition: Has(id) is false.
func (s *Set) Remove(id string) {
	delete(s.tags, id)
}

// Lapse decrements the turn counter of every tag whose lapse timing is when.
// Tags reaching 0 are removed. Tags with TurnsLeft == -1 are not affected.
//
// Postcondition: For every id in the returned slice, Has(id) is false. The
// slice is ordered by ID.
func (s *Set) Lapse(when Lapse) []string {
	var expired []string
	for id, t := range s.tags {
		if t.Def.Lapse != when || t.TurnsLeft < 0 {
			continue
		}
		t.TurnsLeft--
		if t.TurnsLeft <= 0 {
			expired = append(expired, id)
			delete(s.tags, id)
		}
	}
	sort.Strings(expired)
	return expired
}

// Has reports whether the tag with id is currently active.
func (s *Set) Has(id string) bool {
	_, ok := s.tags[id]
	return ok
}

// Get returns the active tag with id.
func (s *Set) Get(id string) (*Tag, bool) {
	t, ok := s.tags[id]
	return t, ok
}

// Stacks returns the current stack count for tag id, or 0 if not present.
func (s *Set) Stacks(id string) int {
	if t, ok := s.tags[id]; ok {
		return t.Stacks
	}
	return 0
}

// OfKind returns every active tag of kind k ordered by ID.
func (s *Set) OfKind(k Kind) []*Tag {
	var out []*Tag
	for _, t := range s.tags {
		if t.Def.Kind == k {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Def.ID < out[j].Def.ID })
	return out
}

// HasKind reports whether any active tag is of kind k.
func (s *Set) HasKind(k Kind) bool {
	for _, t := range s.tags {
		if t.Def.Kind == k {
			return true
		}
	}
	return false
}

// All returns the active tags ordered by ID. The slice is a new allocation;
// the pointed-to Tag values are shared.
func (s *Set) All() []*Tag {
	out := make([]*Tag, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Def.ID < out[j].Def.ID })
	return out
}

// Clear removes every tag. Used when summon data is discarded.
func (s *Set) Clear() {
	s.tags = make(map[string]*Tag)
}
