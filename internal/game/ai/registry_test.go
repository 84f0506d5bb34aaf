package ai_test

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/ai"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
)

func TestRegistry_PlannerFor_EveryPolicy(t *testing.T) {
	reg := ai.NewRegistry(ai.PolicySmartRandom)
	for _, p := range ai.Policies() {
		planner, ok := reg.PlannerFor(p)
		if !ok || planner.Policy() != p {
			t.Fatalf("expected planner for %s", p)
		}
	}
	if _, ok := reg.PlannerFor("missing"); ok {
		t.Fatal("expected not found")
	}
}

func TestRegistry_PolicyOf(t *testing.T) {
	reg := ai.NewRegistry(ai.PolicySmartRandom)
	grunt := fighter("e1", normal)
	boss := combat.NewCombatant(combat.Spec{ID: "e2", Species: mon("e2", normal...), Level: 50, BossSegments: 3})

	if got := reg.PolicyOf(grunt); got != ai.PolicySmartRandom {
		t.Fatalf("grunt policy = %s", got)
	}
	if got := reg.PolicyOf(boss); got != ai.PolicySmart {
		t.Fatalf("boss policy = %s", got)
	}
	if err := reg.Assign("e2", ai.PolicyRandom); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if got := reg.PolicyOf(boss); got != ai.PolicyRandom {
		t.Fatalf("assigned boss policy = %s", got)
	}
}

func TestRegistry_Assign_UnknownPolicy(t *testing.T) {
	reg := ai.NewRegistry(ai.PolicySmart)
	if err := reg.Assign("e1", "genius"); !errors.Is(err, ai.ErrUnknownPolicy) {
		t.Fatalf("expected ErrUnknownPolicy, got %v", err)
	}
}

func TestRegistry_DrivesATurn(t *testing.T) {
	player := fighter("p1", normal, "strike")
	enemy := fighter("e1", normal, "strike", "sketch")
	reg := ai.NewRegistry(ai.PolicySmartRandom)
	b, err := combat.NewBattle(aiCatalog(t), []*combat.Combatant{player}, []*combat.Combatant{enemy},
		combat.Options{Source: fixedSrc{0}, Chooser: reg}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewBattle: %v", err)
	}

	if err := b.Submit(combat.MoveCommand("p1", 0, "e1")); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	res, err := b.ResolveTurn()
	if err != nil {
		t.Fatalf("ResolveTurn: %v", err)
	}
	used := 0
	for _, e := range res.Effects {
		if e.Kind == combat.EffectMoveUsed && e.SourceID == "e1" && e.MoveID == "strike" {
			used++
		}
	}
	if used != 1 {
		t.Fatalf("expected the enemy to use strike once, effects: %v", res.Messages())
	}
}
