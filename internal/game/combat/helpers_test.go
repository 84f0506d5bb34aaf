package combat_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/catalog"
	"github.com/cory-johannsen/battlecore/internal/game/ability"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/move"
	"github.com/cory-johannsen/battlecore/internal/game/quest"
	"github.com/cory-johannsen/battlecore/internal/game/species"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/game/tag"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

// fixedSrc is a deterministic Source for testing.
// It returns f.val for every Intn call, clamped to n-1.
type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int { return min(f.val, n-1) }

// noCrit pins every draw at 15: no critical hit (1 in 24) and a 100% damage roll.
var noCrit = fixedSrc{val: 15}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	moves := []*move.Def{
		{ID: "strike", Name: "Strike", Type: typechart.Normal, Category: move.Physical, Power: 80, Accuracy: -1, PP: 10},
		{ID: "dragon_claw", Name: "Dragon Claw", Type: typechart.Dragon, Category: move.Physical, Power: 80, Accuracy: -1},
		{ID: "fissure", Name: "Fissure", Type: typechart.Ground, Category: move.Physical, Accuracy: -1,
			Attrs: []move.Attr{{Kind: move.AttrOneHitKO}}},
		{ID: "dragon_rage", Name: "Dragon Rage", Type: typechart.Dragon, Category: move.Special, Accuracy: -1,
			Attrs: []move.Attr{{Kind: move.AttrFixedDamage, Value: 40}}},
		{ID: "seismic_toss", Name: "Seismic Toss", Type: typechart.Fighting, Category: move.Physical, Accuracy: -1,
			Attrs: []move.Attr{{Kind: move.AttrLevelDamage}}},
		{ID: "double_kick", Name: "Double Kick", Type: typechart.Fighting, Category: move.Physical, Power: 30, Accuracy: -1,
			Attrs: []move.Attr{{Kind: move.AttrMultiHit, Hits: "2"}}},
		{ID: "swords_dance", Name: "Swords Dance", Type: typechart.Normal, Category: move.Status, Accuracy: -1, Target: move.TargetSelf,
			Attrs: []move.Attr{{Kind: move.AttrStatChange, Stat: "atk", Stages: 2, Self: true}}},
		{ID: "thunder_wave", Name: "Thunder Wave", Type: typechart.Electric, Category: move.Status, Accuracy: -1,
			Attrs: []move.Attr{{Kind: move.AttrRespectsImmunity}, {Kind: move.AttrInflictStatus, Status: "paralysis"}}},
		{ID: "shattering_blow", Name: "Shattering Blow", Type: typechart.Fighting, Category: move.Physical, Power: 100, Accuracy: -1,
			Attrs: []move.Attr{{Kind: move.AttrBypassSegments}}},
		{ID: "sketch", Name: "Sketch", Type: typechart.Normal, Category: move.Status, Accuracy: -1, Unimplemented: true},
		{ID: "odd_beam", Name: "Odd Beam", Type: typechart.Normal, Category: move.Special, Power: 60, Accuracy: -1, Unimplemented: true},
		{ID: "splash", Name: "Splash", Type: typechart.Water, Category: move.Status, Accuracy: -1,
			Attrs: []move.Attr{{Kind: move.AttrFails}}},
	}
	for _, m := range moves {
		require.NoError(t, m.Validate())
	}

	tags := tag.NewRegistry()
	tags.Register(&tag.Def{ID: "endure", Name: "Endure", Kind: tag.KindEndure, Lapse: tag.LapseTurnEnd})
	tags.Register(&tag.Def{ID: "sturdy", Name: "Sturdy", Kind: tag.KindSturdy, Lapse: tag.LapseOnUse})
	tags.Register(&tag.Def{ID: "minimize", Name: "Minimize", Kind: tag.KindMarked, Lapse: tag.LapseSummon})
	tags.Register(&tag.Def{ID: "magnet_rise", Name: "Magnet Rise", Kind: tag.KindTypeImmune, Lapse: tag.LapseTurnEnd,
		Types: []typechart.Type{typechart.Ground}})

	abilities := ability.NewRegistry()
	for _, a := range []*ability.Ability{
		{ID: "sturdy", Name: "Sturdy", Attrs: []ability.AttrDef{{Kind: ability.FullHPEndure}}},
		{ID: "levitate", Name: "Levitate", Attrs: []ability.AttrDef{{Kind: ability.TypeImmunity, Types: []typechart.Type{typechart.Ground}}}},
		{ID: "battle_armor", Name: "Battle Armor", Attrs: []ability.AttrDef{{Kind: ability.BlockCrit}}},
		{ID: "null_guard", Name: "Null Guard", Attrs: []ability.AttrDef{{Kind: ability.ReceivedDamageMultiplier, Multiplier: 0}}},
	} {
		require.NoError(t, abilities.Register(a, nil))
	}

	return &catalog.Catalog{
		Chart:     typechart.Default(),
		Tags:      tags,
		Moves:     move.NewTable(moves...),
		Abilities: abilities,
		Quests:    quest.NewCatalog(),
	}
}

func mon(id string, types ...typechart.Type) *species.Def {
	return &species.Def{
		ID:        id,
		Name:      id,
		Types:     types,
		BaseStats: species.BaseStats{HP: 100, ATK: 100, DEF: 100, SPATK: 100, SPDEF: 100, SPD: 100},
		Abilities: []string{"none"},
	}
}

func newCombatant(id string, sp *species.Def, level int, moves ...string) *combat.Combatant {
	if moves == nil {
		moves = []string{}
	}
	return combat.NewCombatant(combat.Spec{ID: id, Species: sp, Level: level, Moves: moves})
}

// setStat overrides one raw stat; HP also refills the combatant.
func setStat(c *combat.Combatant, s stat.Stat, v int) {
	c.Stats[s] = v
	if s == stat.HP {
		c.HP = v
	}
}

func newBattle(t *testing.T, cat *catalog.Catalog, player, enemy *combat.Combatant, opts combat.Options) *combat.Battle {
	t.Helper()
	if opts.Source == nil && opts.Seed == 0 {
		opts.Source = noCrit
	}
	b, err := combat.NewBattle(cat, []*combat.Combatant{player}, []*combat.Combatant{enemy}, opts, zap.NewNop())
	require.NoError(t, err)
	return b
}

func moveDef(t *testing.T, cat *catalog.Catalog, id string) *move.Def {
	t.Helper()
	mv, ok := cat.Moves.Get(id)
	require.True(t, ok, "move %s", id)
	return mv
}

func hasEffect(effects []combat.Effect, kind combat.EffectKind) bool {
	for _, e := range effects {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// firstSlot always uses the first move slot against the first opponent.
type firstSlot struct{}

func (firstSlot) Choose(b *combat.Battle, actor *combat.Combatant) combat.Command {
	opps := b.Opponents(actor)
	if len(actor.Moves) == 0 || len(opps) == 0 {
		return combat.PassCommand(actor.ID)
	}
	return combat.MoveCommand(actor.ID, 0, opps[0].ID)
}

// moveTableWith returns the catalog's move table with extra moves added.
func moveTableWith(cat *catalog.Catalog, extra ...*move.Def) *move.Table {
	var defs []*move.Def
	for _, id := range cat.Moves.IDs() {
		if d, ok := cat.Moves.Get(id); ok && id != move.StruggleID {
			defs = append(defs, d)
		}
	}
	return move.NewTable(append(defs, extra...)...)
}
