package modifier

import (
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/field"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

// Mode selects what Add does when the stack ceiling would be exceeded.
type Mode int

const (
	// Merge clamps the added stacks to the ceiling.
	Merge Mode = iota
	// Reject leaves the registry unchanged.
	Reject
)

// Registry holds the player-side and enemy-side modifier lists of one session.
// It is owned by the battle context and is not safe for concurrent use.
type Registry struct {
	player []*Modifier
	enemy  []*Modifier
	logger *zap.Logger
}

// NewRegistry creates an empty Registry.
//
// Precondition: logger must be non-nil.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{logger: logger}
}

func (r *Registry) list(side field.Side) *[]*Modifier {
	if side == field.SideEnemy {
		return &r.enemy
	}
	return &r.player
}

// Add merges m into a matching instance or appends it. When virtual is true
// the added stacks are virtual. owners may be nil when no held modifier is involved.
//
// Precondition: m.Kind is known and m.Stack >= 1 (0 is treated as 1).
// Postcondition: Returns true iff the registry changed. No instance ever
// exceeds its ceiling; a held modifier whose owner is gone is never added.
func (r *Registry) Add(m *Modifier, mode Mode, virtual bool, owners Owners) bool {
	b, ok := behaviors[m.Kind]
	if !ok {
		r.logger.Warn("modifier add: unknown kind", zap.String("kind", string(m.Kind)))
		return false
	}
	if m.Kind == Quest && m.Progress == nil {
		r.logger.Warn("modifier add: quest modifier without progress")
		return false
	}
	if b.side != nil {
		m.Side = *b.side
	}
	if m.Stack < 1 {
		m.Stack = 1
	}
	if m.Kind == TempStatBooster && m.BattlesLeft == 0 {
		m.BattlesLeft = DefaultTempBattles
	}
	list := r.list(m.Side)

	for _, existing := range *list {
		if existing.Kind != m.Kind || !b.match(existing, m) {
			continue
		}
		if b.absorb != nil {
			b.absorb(existing, m)
			return true
		}
		return r.increment(existing, b.maxStack(existing, owners), m.Stack, mode, virtual)
	}

	ceiling := b.maxStack(m, owners)
	amount := m.Stack
	if amount > ceiling {
		if mode == Reject || ceiling <= 0 {
			r.logger.Debug("modifier add rejected",
				zap.String("kind", string(m.Kind)),
				zap.Int("stack", amount),
				zap.Int("max", ceiling),
			)
			return false
		}
		amount = ceiling
	}
	added := m.clone()
	if added.ID == uuid.Nil {
		added.ID = uuid.New()
	}
	added.Stack, added.Virtual = amount, 0
	if virtual {
		added.Stack, added.Virtual = 0, amount
	}
	*list = append(*list, added)
	m.ID = added.ID
	return true
}

func (r *Registry) increment(existing *Modifier, ceiling, amount int, mode Mode, virtual bool) bool {
	room := ceiling - existing.Total()
	if amount > room {
		if mode == Reject || room <= 0 {
			r.logger.Debug("modifier stack at ceiling",
				zap.String("kind", string(existing.Kind)),
				zap.Int("total", existing.Total()),
				zap.Int("max", ceiling),
			)
			return false
		}
		amount = room
	}
	if virtual {
		existing.Virtual += amount
	} else {
		existing.Stack += amount
	}
	return true
}

// Query returns every modifier satisfying pred, player side first, in insertion order.
func (r *Registry) Query(pred func(*Modifier) bool) []*Modifier {
	var out []*Modifier
	for _, list := range [][]*Modifier{r.player, r.enemy} {
		for _, m := range list {
			if pred == nil || pred(m) {
				out = append(out, m)
			}
		}
	}
	return out
}

// OfKind returns every modifier of kind k.
func (r *Registry) OfKind(k Kind) []*Modifier {
	return r.Query(func(m *Modifier) bool { return m.Kind == k })
}

// Held returns the modifiers of kind k owned by ownerID.
func (r *Registry) Held(ownerID string, k Kind) []*Modifier {
	return r.Query(func(m *Modifier) bool { return m.Kind == k && m.OwnerID == ownerID })
}

// Len returns the number of instances on both sides.
func (r *Registry) Len() int { return len(r.player) + len(r.enemy) }

// Remove deletes the instance with m's ID.
//
// Postcondition: Returns true iff an instance was removed.
func (r *Registry) Remove(m *Modifier) bool {
	for _, side := range []field.Side{field.SidePlayer, field.SideEnemy} {
		list := r.list(side)
		for i, v := range *list {
			if v.ID == m.ID {
				*list = append((*list)[:i], (*list)[i+1:]...)
				return true
			}
		}
	}
	return false
}

func (r *Registry) removeWhere(pred func(*Modifier) bool) []*Modifier {
	var removed []*Modifier
	for _, side := range []field.Side{field.SidePlayer, field.SideEnemy} {
		list := r.list(side)
		kept := (*list)[:0]
		for _, m := range *list {
			if pred(m) {
				removed = append(removed, m)
				continue
			}
			kept = append(kept, m)
		}
		*list = kept
	}
	return removed
}

// LapseBattle ends one battle for every lapsing modifier.
//
// Postcondition: Returns the instances whose battle counter reached zero; they are removed.
func (r *Registry) LapseBattle() []*Modifier {
	return r.removeWhere(func(m *Modifier) bool {
		if !behaviors[m.Kind].lapsing {
			return false
		}
		m.BattlesLeft--
		return m.BattlesLeft <= 0
	})
}

// Use consumes one use of a limited-use modifier.
//
// Postcondition: Returns false if m has no uses left; m is removed when its last use is spent.
func (r *Registry) Use(m *Modifier) bool {
	if m.UsesLeft <= 0 {
		return false
	}
	m.UsesLeft--
	if m.UsesLeft == 0 {
		r.Remove(m)
	}
	return true
}

// Prune removes held modifiers whose ceiling has dropped to zero, which
// includes every modifier whose owner has left the encounter.
//
// Postcondition: Returns the removed instances.
func (r *Registry) Prune(owners Owners) []*Modifier {
	removed := r.removeWhere(func(m *Modifier) bool {
		return m.Held() && behaviors[m.Kind].maxStack(m, owners) == 0
	})
	for _, m := range removed {
		r.logger.Debug("pruned stale modifier",
			zap.String("kind", string(m.Kind)),
			zap.String("owner", m.OwnerID),
		)
	}
	return removed
}

// StatMultiplier returns the product of stat booster multipliers held by
// ownerID for s. Each booster applies once regardless of stack.
func (r *Registry) StatMultiplier(ownerID string, s stat.Stat) float64 {
	mult := 1.0
	for _, m := range r.Held(ownerID, StatBooster) {
		for _, st := range m.Stats {
			if st == s {
				mult *= m.Multiplier
				break
			}
		}
	}
	return mult
}

// BaseStats applies base stat boosters held by ownerID to raw.
func (r *Registry) BaseStats(ownerID string, raw stat.Values) stat.Values {
	for _, m := range r.Held(ownerID, BaseStatBooster) {
		if !m.Stat.IsPermanent() {
			continue
		}
		v := math.Floor(float64(raw[m.Stat]) * (1 + 0.1*float64(m.Total())))
		raw[m.Stat] = int(math.Min(v, 999999))
	}
	return raw
}

// TempStages returns the stage increment temporary boosters give player stat s.
func (r *Registry) TempStages(s stat.Stat) int {
	n := 0
	for _, m := range r.player {
		if m.Kind == TempStatBooster && m.Stat == s {
			n++
		}
	}
	return n
}

// CritStages returns the crit stages held boosters give ownerID.
func (r *Registry) CritStages(ownerID string) int {
	n := 0
	for _, m := range r.Held(ownerID, CritBooster) {
		n += m.Stages
	}
	return n
}

// MovePower applies attack type boosters held by ownerID to power for a
// move of type t.
func (r *Registry) MovePower(ownerID string, t typechart.Type, power float64) float64 {
	for _, m := range r.Held(ownerID, AttackTypeBooster) {
		if m.MoveType == t && power >= 1 {
			power = math.Floor(power * (1 + float64(m.Total())*m.Multiplier))
		}
	}
	return power
}

// multiHitPower is the per-hit power scale indexed by multi-hit stacks.
var multiHitPower = [...]float64{1, 0.4, 0.25, 0.175}

// MultiHitStacks returns the multi-hit stacks held by ownerID, at most 3.
func (r *Registry) MultiHitStacks(ownerID string) int {
	n := 0
	for _, m := range r.Held(ownerID, MultiHit) {
		n += m.Total()
	}
	return min(n, len(multiHitPower)-1)
}

// MultiHitPower scales the per-hit power of a move boosted by multi-hit stacks.
func (r *Registry) MultiHitPower(ownerID string, power float64) float64 {
	return power * multiHitPower[r.MultiHitStacks(ownerID)]
}

// SurviveStacks returns the total survive-damage stacks held by ownerID.
func (r *Registry) SurviveStacks(ownerID string) int {
	n := 0
	for _, m := range r.Held(ownerID, SurviveDamage) {
		n += m.Total()
	}
	return n
}

func (r *Registry) enemyStacks(k Kind) int {
	n := 0
	for _, m := range r.enemy {
		if m.Kind == k {
			n += m.Total()
		}
	}
	return n
}

// EnemyDamageBoost scales damage dealt by an enemy.
func (r *Registry) EnemyDamageBoost(damage int) int {
	n := r.enemyStacks(EnemyDamageBooster)
	if n == 0 {
		return damage
	}
	return int(math.Floor(float64(damage) * math.Pow(1.05, float64(n))))
}

// EnemyDamageReduce scales damage dealt to an enemy.
func (r *Registry) EnemyDamageReduce(damage int) int {
	n := r.enemyStacks(EnemyDamageReducer)
	if n == 0 {
		return damage
	}
	return int(math.Floor(float64(damage) * math.Pow(0.975, float64(n))))
}

// EnemyEndurePercent returns the percent chance an enemy endures a lethal hit.
func (r *Registry) EnemyEndurePercent() int {
	return 2 * r.enemyStacks(EnemyEndureChance)
}

// CanBypassSegments reports whether the player side holds the segment bypass capability.
func (r *Registry) CanBypassSegments() bool {
	for _, m := range r.player {
		if m.Kind == SegmentBypass {
			return true
		}
	}
	return false
}
