package ai_test

import (
	"testing"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/catalog"
	"github.com/cory-johannsen/battlecore/internal/game/ability"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/move"
	"github.com/cory-johannsen/battlecore/internal/game/quest"
	"github.com/cory-johannsen/battlecore/internal/game/species"
	"github.com/cory-johannsen/battlecore/internal/game/tag"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

// fixedSrc returns val for every Intn call, clamped to n-1.
type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int { return min(f.val, n-1) }

func aiCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	moves := []*move.Def{
		{ID: "strike", Name: "Strike", Type: typechart.Normal, Category: move.Physical, Power: 80, Accuracy: -1, PP: 10},
		{ID: "dragon_claw", Name: "Dragon Claw", Type: typechart.Dragon, Category: move.Physical, Power: 80, Accuracy: -1},
		{ID: "fissure", Name: "Fissure", Type: typechart.Ground, Category: move.Physical, Accuracy: -1,
			Attrs: []move.Attr{{Kind: move.AttrOneHitKO}}},
		{ID: "swords_dance", Name: "Swords Dance", Type: typechart.Normal, Category: move.Status, Accuracy: -1, Target: move.TargetSelf,
			Attrs: []move.Attr{{Kind: move.AttrStatChange, Stat: "atk", Stages: 2, Self: true}}},
		{ID: "growl", Name: "Growl", Type: typechart.Normal, Category: move.Status, Accuracy: -1, Target: move.TargetAllEnemies,
			Attrs: []move.Attr{{Kind: move.AttrStatChange, Stat: "atk", Stages: -1}}},
		{ID: "thunder_wave", Name: "Thunder Wave", Type: typechart.Electric, Category: move.Status, Accuracy: -1,
			Attrs: []move.Attr{{Kind: move.AttrRespectsImmunity}, {Kind: move.AttrInflictStatus, Status: "paralysis"}}},
		{ID: "sketch", Name: "Sketch", Type: typechart.Normal, Category: move.Status, Accuracy: -1, Unimplemented: true},
	}
	for _, m := range moves {
		if err := m.Validate(); err != nil {
			t.Fatalf("Validate(%s): %v", m.ID, err)
		}
	}
	return &catalog.Catalog{
		Chart:     typechart.Default(),
		Tags:      tag.NewRegistry(),
		Moves:     move.NewTable(moves...),
		Abilities: ability.NewRegistry(),
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

func fighter(id string, types []typechart.Type, moves ...string) *combat.Combatant {
	return combat.NewCombatant(combat.Spec{ID: id, Species: mon(id, types...), Level: 50, Moves: moves})
}

// duel sets up a single battle where the enemy is the one choosing.
func duel(t *testing.T, src dice.Source, player, enemy *combat.Combatant) *combat.Battle {
	t.Helper()
	return battle(t, src, []*combat.Combatant{player}, []*combat.Combatant{enemy}, false)
}

func battle(t *testing.T, src dice.Source, player, enemy []*combat.Combatant, double bool) *combat.Battle {
	t.Helper()
	cat := aiCatalog(t)
	b, err := combat.NewBattle(cat, player, enemy, combat.Options{Source: src, Double: double}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewBattle: %v", err)
	}
	return b
}

func moveDef(t *testing.T, b *combat.Battle, id string) *move.Def {
	t.Helper()
	mv, ok := b.Catalog.Moves.Get(id)
	if !ok {
		t.Fatalf("move %s missing", id)
	}
	return mv
}

var (
	normal = []typechart.Type{typechart.Normal}
	ghost  = []typechart.Type{typechart.Ghost}
	ground = []typechart.Type{typechart.Ground}
)
