package combat

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/catalog"
	"github.com/cory-johannsen/battlecore/internal/game/ability"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/field"
	"github.com/cory-johannsen/battlecore/internal/game/modifier"
	"github.com/cory-johannsen/battlecore/internal/game/quest"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/game/tag"
	"github.com/cory-johannsen/battlecore/internal/observability"
)

// ErrEmptyParty is returned when a battle is started without a combatant on a side.
var ErrEmptyParty = errors.New("each side needs at least one combatant")

// Entry effects with a turn limit last this long.
const (
	SummonWeatherTurns = 5
	SummonTagTurns     = 5
)

// Chooser picks the command of a combatant that is not driven by the caller.
type Chooser interface {
	Choose(b *Battle, actor *Combatant) Command
}

// Options configures a new Battle.
type Options struct {
	// ID names the battle; a fresh UUID when empty.
	ID string
	// Seed fixes the battle seed; 0 draws one from crypto/rand.
	Seed uint64
	// Source replaces the battle-seeded stream. Tests use it to pin draws.
	Source  dice.Source
	Modes   field.Modes
	Double  bool
	RunType quest.RunType
	// Modifiers is the session registry; a fresh one when nil.
	Modifiers  *modifier.Registry
	Dispatcher quest.RewardDispatcher
	// Chooser drives enemy commands each turn.
	Chooser Chooser
}

// Battle is one encounter: both parties, the arena, the session modifiers
// and the seeded streams. It is resolved on one goroutine.
type Battle struct {
	ID        string
	Arena     *field.Arena
	Modifiers *modifier.Registry
	Streams   *dice.Streams
	Catalog   *catalog.Catalog
	RunType   quest.RunType
	Turn      int

	player []*Combatant
	enemy  []*Combatant

	rng        dice.Source
	roller     *dice.Roller
	logger     *zap.Logger
	dispatcher quest.RewardDispatcher
	chooser    Chooser
	queue      *Queue

	over   bool
	winner field.Side
}

// NewBattle sets up an encounter and sends out the leading combatants of each side.
//
// Precondition: cat and logger must be non-nil; every combatant must be unique.
// Postcondition: Returns a Battle at turn 0 with entry abilities resolved,
// or ErrEmptyParty.
func NewBattle(cat *catalog.Catalog, player, enemy []*Combatant, opts Options, logger *zap.Logger) (*Battle, error) {
	if len(player) == 0 || len(enemy) == 0 {
		return nil, ErrEmptyParty
	}
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = dice.NewSeed()
	}
	reg := opts.Modifiers
	if reg == nil {
		reg = modifier.NewRegistry(logger)
	}
	runType := opts.RunType
	if runType == "" {
		runType = quest.RunClassic
	}
	arena := field.NewArena(opts.Modes)
	arena.Double = opts.Double

	log := observability.ForBattle(logger, id, seed)
	streams := dice.NewStreams(seed)
	src := opts.Source
	if src == nil {
		src = streams.Battle()
	}
	b := &Battle{
		ID:         id,
		Arena:      arena,
		Modifiers:  reg,
		Streams:    streams,
		Catalog:    cat,
		RunType:    runType,
		player:     player,
		enemy:      enemy,
		rng:        dice.NewLoggedSource(src, "battle", log),
		logger:     log,
		dispatcher: opts.Dispatcher,
		chooser:    opts.Chooser,
		queue:      NewQueue(),
	}
	b.roller = dice.NewLoggedRoller(b.rng, log)
	for _, c := range player {
		c.Side = field.SidePlayer
	}
	for _, c := range enemy {
		c.Side = field.SideEnemy
	}

	reg.QuestEncounterStart()
	b.syncAllMaxHP()
	var entry Log
	for _, side := range []field.Side{field.SidePlayer, field.SideEnemy} {
		for i := 0; i < b.slots(); i++ {
			if next := b.nextReserve(side); next != nil {
				b.sendOut(next, &entry)
			}
		}
	}
	log.Info("battle started",
		zap.Int("player", len(player)),
		zap.Int("enemy", len(enemy)),
		zap.Bool("double", opts.Double),
	)
	return b, nil
}

// Rand returns the battle-seeded source. Every draw that affects the
// outcome, including AI choices, must use it.
func (b *Battle) Rand() dice.Source { return b.rng }

// Logger returns the battle-scoped logger.
func (b *Battle) Logger() *zap.Logger { return b.logger }

// Over reports whether the battle has ended.
func (b *Battle) Over() bool { return b.over }

// Winner returns the winning side; SideBoth when the battle ended without a winner.
//
// Precondition: Over() is true.
func (b *Battle) Winner() field.Side { return b.winner }

// Party returns the combatants of side in party order.
func (b *Battle) Party(side field.Side) []*Combatant {
	if side == field.SideEnemy {
		return b.enemy
	}
	return b.player
}

// slots returns the number of combatants each side keeps on the field.
func (b *Battle) slots() int {
	if b.Arena.Double {
		return 2
	}
	return 1
}

// Active returns the combatants of side currently on the field and not fainted.
func (b *Battle) Active(side field.Side) []*Combatant {
	var out []*Combatant
	for _, c := range b.Party(side) {
		if c.Active && !c.IsFainted() {
			out = append(out, c)
		}
	}
	return out
}

// Field returns every active combatant, player side first.
func (b *Battle) Field() []*Combatant {
	return append(b.Active(field.SidePlayer), b.Active(field.SideEnemy)...)
}

// Opponents returns the active combatants facing c.
func (b *Battle) Opponents(c *Combatant) []*Combatant {
	return b.Active(c.Side.Opposite())
}

// Allies returns the active combatants on c's side other than c.
func (b *Battle) Allies(c *Combatant) []*Combatant {
	var out []*Combatant
	for _, a := range b.Active(c.Side) {
		if a != c {
			out = append(out, a)
		}
	}
	return out
}

// Find returns the combatant with id.
func (b *Battle) Find(id string) (*Combatant, bool) {
	for _, side := range []field.Side{field.SidePlayer, field.SideEnemy} {
		for _, c := range b.Party(side) {
			if c.ID == id {
				return c, true
			}
		}
	}
	return nil, false
}

// IVs implements modifier.Owners: any combatant still in the encounter owns its items.
func (b *Battle) IVs(id string) (stat.Values, bool) {
	c, ok := b.Find(id)
	if !ok {
		return stat.Values{}, false
	}
	return c.Table.IVs, true
}

// AddModifier adds m to the session registry with this battle's combatants as owners.
func (b *Battle) AddModifier(m *modifier.Modifier, mode modifier.Mode) bool {
	added := b.Modifiers.Add(m, mode, false, b)
	if c, ok := b.Find(m.OwnerID); ok && added {
		b.syncMaxHP(c)
	}
	return added
}

func (b *Battle) hooks(k ability.Kind, c *Combatant) []ability.Hook {
	if c == nil || b.Catalog.Abilities == nil {
		return nil
	}
	return b.Catalog.Abilities.Hooks(k, c.Abilities()...)
}

func (b *Battle) abilityCtx(holder, other *Combatant) ability.Context {
	ctx := ability.Context{
		Holder:  holder.Subject(),
		Weather: b.Arena.ActiveWeather(),
	}
	if other != nil {
		ctx.Other = other.Subject()
	}
	return ctx
}

// tagOfKind returns the first registered tag definition of kind k.
func (b *Battle) tagOfKind(k tag.Kind) *tag.Def {
	if b.Catalog.Tags == nil {
		return nil
	}
	for _, d := range b.Catalog.Tags.All() {
		if d.Kind == k {
			return d
		}
	}
	return nil
}

// AddTag applies the tag with id to c. Unknown ids are logged and ignored.
func (b *Battle) AddTag(c *Combatant, id string, turns int, log *Log) bool {
	def := b.Catalog.Tag(id)
	if def == nil {
		b.logger.Warn("unknown battler tag", zap.String("tag", id))
		return false
	}
	return b.applyTag(c, def, turns, log)
}

func (b *Battle) applyTag(c *Combatant, def *tag.Def, turns int, log *Log) bool {
	t, err := c.Tags.Apply(def, 1, turns)
	if err != nil {
		b.logger.Warn("applying battler tag", zap.String("tag", def.ID), zap.Error(err))
		return false
	}
	if def.Kind == tag.KindHighestStatBoost {
		t.Stat = b.highestStat(c)
	}
	log.add(Effect{Kind: EffectTagAdded, TargetID: c.ID, Key: def.ID})
	return true
}

// highestStat returns the highest raw battle stat of c, ties going to the earlier stat.
func (b *Battle) highestStat(c *Combatant) stat.Stat {
	raw := b.RawStats(c)
	best := stat.ATK
	for _, s := range []stat.Stat{stat.DEF, stat.SPATK, stat.SPDEF, stat.SPD} {
		if raw[s] > raw[best] {
			best = s
		}
	}
	return best
}

// nextReserve returns the first benched, unfainted combatant of side.
func (b *Battle) nextReserve(side field.Side) *Combatant {
	for _, c := range b.Party(side) {
		if !c.Active && !c.IsFainted() {
			return c
		}
	}
	return nil
}

// sendOut puts c on the field with fresh summon data and resolves its entry abilities.
func (b *Battle) sendOut(c *Combatant, log *Log) {
	c.ResetSummonData()
	c.Active = true
	log.add(Effect{Kind: EffectSwitchIn, TargetID: c.ID})
	for _, h := range b.hooks(ability.SummonTag, c) {
		def := b.Catalog.Tag(h.Tag)
		if def == nil {
			b.logger.Warn("summon tag not registered", zap.String("ability", h.AbilityID), zap.String("tag", h.Tag))
			continue
		}
		turns := -1
		if def.Lapse == tag.LapseTurnEnd {
			turns = SummonTagTurns
		}
		b.applyTag(c, def, turns, log)
	}
	for _, h := range b.hooks(ability.SummonWeather, c) {
		turns := SummonWeatherTurns
		if h.Weather == field.WeatherStrongWinds || h.Weather == field.WeatherHeavyRain || h.Weather == field.WeatherHarshSun {
			turns = 0
		}
		b.Arena.SetWeather(h.Weather, turns)
		log.add(Effect{Kind: EffectWeather, SourceID: c.ID, Key: h.Weather.String()})
	}
}

// observe feeds a quest event. Dispatch failures are logged; the battle continues.
func (b *Battle) observe(e quest.Event) {
	e.Run = b.RunType
	if err := b.Modifiers.ObserveQuest(e, b.dispatcher); err != nil {
		b.logger.Warn("quest reward dispatch failed", zap.String("event", string(e.Type)), zap.Error(err))
	}
}

func (b *Battle) String() string {
	return fmt.Sprintf("battle %s turn %d", b.ID, b.Turn)
}
