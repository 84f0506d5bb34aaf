package modifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/battlecore/internal/game/field"
	"github.com/cory-johannsen/battlecore/internal/game/quest"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

//go:generate go tool mockgen -destination=./mocks/store_mock.go -package=mocks . SnapshotStore

// Snapshot is the persisted form of one modifier: its kind, common counters
// and the kind's constructor argument vector. Virtual stacks are not saved.
type Snapshot struct {
	ID    uuid.UUID  `json:"id"`
	Kind  Kind       `json:"kind"`
	Side  field.Side `json:"side"`
	Stack int        `json:"stack"`
	Args  []any      `json:"args"`
}

// ErrSnapshotNotFound is returned by a SnapshotStore with nothing saved for a session.
var ErrSnapshotNotFound = errors.New("modifier snapshot not found")

// SnapshotStore is the save-system collaborator that persists snapshots per session.
type SnapshotStore interface {
	Save(ctx context.Context, sessionID string, snaps []Snapshot) error
	// Load returns the snapshots saved under sessionID, or ErrSnapshotNotFound.
	Load(ctx context.Context, sessionID string) ([]Snapshot, error)
}

// Snapshot returns every modifier's snapshot, player side first, in insertion order.
func (r *Registry) Snapshot() []Snapshot {
	out := make([]Snapshot, 0, len(r.player)+len(r.enemy))
	for _, list := range [][]*Modifier{r.player, r.enemy} {
		for _, m := range list {
			out = append(out, Snapshot{
				ID:    m.ID,
				Kind:  m.Kind,
				Side:  m.Side,
				Stack: m.Stack,
				Args:  behaviors[m.Kind].args(m),
			})
		}
	}
	return out
}

// Rebuild constructs a modifier from a snapshot.
//
// Postcondition: Returns the modifier or an error wrapping ErrUnknownKind or naming the bad argument.
func Rebuild(s Snapshot, quests *quest.Catalog) (*Modifier, error) {
	b, ok := behaviors[s.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
	m := &Modifier{ID: s.ID, Kind: s.Kind, Side: s.Side, Stack: s.Stack}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if err := b.restore(m, args(s.Args), quests); err != nil {
		return nil, fmt.Errorf("restoring %s modifier: %w", s.Kind, err)
	}
	return m, nil
}

// Restore replaces the registry contents with snaps. On error the registry is unchanged.
func (r *Registry) Restore(snaps []Snapshot, quests *quest.Catalog) error {
	var player, enemy []*Modifier
	for _, s := range snaps {
		m, err := Rebuild(s, quests)
		if err != nil {
			return err
		}
		if m.Side == field.SideEnemy {
			enemy = append(enemy, m)
		} else {
			player = append(player, m)
		}
	}
	r.player, r.enemy = player, enemy
	return nil
}

// SaveTo persists the registry under sessionID.
func (r *Registry) SaveTo(ctx context.Context, store SnapshotStore, sessionID string) error {
	if err := store.Save(ctx, sessionID, r.Snapshot()); err != nil {
		return fmt.Errorf("saving modifiers for %q: %w", sessionID, err)
	}
	return nil
}

// LoadFrom replaces the registry with the snapshots stored under sessionID.
func (r *Registry) LoadFrom(ctx context.Context, store SnapshotStore, sessionID string, quests *quest.Catalog) error {
	snaps, err := store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("loading modifiers for %q: %w", sessionID, err)
	}
	return r.Restore(snaps, quests)
}

// args reads constructor arguments. Numbers may be int or float64 (after a
// JSON round trip).
type args []any

func (a args) at(i int) (any, error) {
	if i >= len(a) {
		return nil, fmt.Errorf("missing argument %d", i)
	}
	return a[i], nil
}

func (a args) str(i int) (string, error) {
	v, err := a.at(i)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %d: want string, got %T", i, v)
	}
	return s, nil
}

func (a args) number(i int) (float64, error) {
	v, err := a.at(i)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("argument %d: want number, got %T", i, v)
	}
}

func (a args) integer(i int) (int, error) {
	f, err := a.number(i)
	return int(f), err
}

func (a args) stat(i int) (stat.Stat, error) {
	s, err := a.str(i)
	if err != nil {
		return 0, err
	}
	return stat.Parse(s)
}

func (a args) stats(i int) ([]stat.Stat, error) {
	s, err := a.str(i)
	if err != nil {
		return nil, err
	}
	var out []stat.Stat
	for _, name := range strings.Split(s, ",") {
		st, err := stat.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out = append(out, st)
	}
	return out, nil
}

func (a args) moveType(i int) (typechart.Type, error) {
	s, err := a.str(i)
	if err != nil {
		return typechart.Unknown, err
	}
	return typechart.Parse(s)
}

func encodeStats(stats []stat.Stat) string {
	names := make([]string, len(stats))
	for i, s := range stats {
		names[i] = s.String()
	}
	return strings.Join(names, ",")
}
