package ai_test

import (
	"math"
	"testing"

	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/ai"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

func rankedMoves(ranked []ai.Scored) []string {
	out := make([]string, len(ranked))
	for i, s := range ranked {
		out[i] = s.MoveID
	}
	return out
}

func TestScore_AttackScalesByEffectivenessAndSTAB(t *testing.T) {
	player := fighter("p1", normal)
	enemy := fighter("e1", normal, "strike", "dragon_claw")
	b := duel(t, fixedSrc{0}, player, enemy)
	ws := ai.BuildWorldState(b, enemy)

	// 2 base + 80/5, then x1.5 for a Normal user of a Normal move.
	if got := ai.Score(b, ws, player, moveDef(t, b, "strike")); got != 27 {
		t.Fatalf("strike score = %v, want 27", got)
	}
	if got := ai.Score(b, ws, player, moveDef(t, b, "dragon_claw")); got != 18 {
		t.Fatalf("dragon_claw score = %v, want 18", got)
	}
}

func TestScore_ImmuneTargetFails(t *testing.T) {
	player := fighter("p1", ghost)
	enemy := fighter("e1", normal, "strike")
	b := duel(t, fixedSrc{0}, player, enemy)
	ws := ai.BuildWorldState(b, enemy)
	if got := ai.Score(b, ws, player, moveDef(t, b, "strike")); got != ai.FailScore {
		t.Fatalf("score = %v, want %v", got, ai.FailScore)
	}
}

func TestScore_StatusMoves(t *testing.T) {
	player := fighter("p1", normal)
	enemy := fighter("e1", normal)
	b := duel(t, fixedSrc{0}, player, enemy)
	ws := ai.BuildWorldState(b, enemy)

	cases := []struct {
		move   string
		target *combat.Combatant
		want   float64
	}{
		{"swords_dance", enemy, 8},
		{"growl", player, 4},
		{"thunder_wave", player, 10},
		{"sketch", player, ai.FailScore},
	}
	for _, tc := range cases {
		if got := ai.Score(b, ws, tc.target, moveDef(t, b, tc.move)); got != tc.want {
			t.Errorf("%s score = %v, want %v", tc.move, got, tc.want)
		}
	}
}

func TestScore_StatusMoveWithNothingToDoFails(t *testing.T) {
	player := fighter("p1", ground)
	enemy := fighter("e1", normal)
	b := duel(t, fixedSrc{0}, player, enemy)
	ws := ai.BuildWorldState(b, enemy)

	if got := ai.Score(b, ws, player, moveDef(t, b, "thunder_wave")); got != ai.FailScore {
		t.Fatalf("thunder_wave on Ground = %v, want fail", got)
	}
	enemy.Stages.Add(stat.ATK, stat.MaxStage)
	if got := ai.Score(b, ws, enemy, moveDef(t, b, "swords_dance")); got != ai.FailScore {
		t.Fatalf("swords_dance at +6 = %v, want fail", got)
	}
}

func TestScore_OHKOFailsAgainstHigherLevel(t *testing.T) {
	player := combat.NewCombatant(combat.Spec{ID: "p1", Species: mon("p1", normal...), Level: 60})
	enemy := fighter("e1", normal, "fissure")
	b := duel(t, fixedSrc{0}, player, enemy)
	ws := ai.BuildWorldState(b, enemy)
	if got := ai.Score(b, ws, player, moveDef(t, b, "fissure")); got != ai.FailScore {
		t.Fatalf("fissure score = %v, want fail", got)
	}
}

func TestPlanner_Rank_SortsBestFirst(t *testing.T) {
	player := fighter("p1", normal)
	enemy := fighter("e1", normal, "dragon_claw", "strike", "swords_dance", "sketch")
	b := duel(t, fixedSrc{0}, player, enemy)

	ranked := ai.NewPlanner(ai.PolicySmart).Rank(b, ai.BuildWorldState(b, enemy), b.UsableSlots(enemy))
	want := []string{"strike", "dragon_claw", "swords_dance", "sketch"}
	got := rankedMoves(ranked)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rank = %v, want %v", got, want)
		}
	}
	if len(ranked[0].TargetIDs) != 1 || ranked[0].TargetIDs[0] != "p1" {
		t.Fatalf("strike aimed at %v, want [p1]", ranked[0].TargetIDs)
	}
	if ranked[2].TargetIDs != nil {
		t.Fatalf("self move should carry no target, got %v", ranked[2].TargetIDs)
	}
}

func TestPlanner_Choose_Policies(t *testing.T) {
	cases := []struct {
		name   string
		policy ai.Policy
		src    dice.Source
		want   string
	}{
		{"smart_random keeps the best on a low roll", ai.PolicySmartRandom, fixedSrc{0}, "strike"},
		{"smart_random walks to the end on high rolls", ai.PolicySmartRandom, fixedSrc{7}, "sketch"},
		{"smart advances while the ratio roll passes", ai.PolicySmart, fixedSrc{0}, "swords_dance"},
		{"smart stays on a high roll", ai.PolicySmart, fixedSrc{99}, "strike"},
		{"random indexes the pool", ai.PolicyRandom, fixedSrc{2}, "swords_dance"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			player := fighter("p1", normal)
			enemy := fighter("e1", normal, "dragon_claw", "strike", "swords_dance", "sketch")
			b := duel(t, tc.src, player, enemy)

			cmd := ai.NewPlanner(tc.policy).Choose(b, enemy)
			if cmd.Kind != combat.CommandMove {
				t.Fatalf("kind = %v, want move", cmd.Kind)
			}
			if got := enemy.Moves[cmd.Slot].ID; got != tc.want {
				t.Fatalf("chose %s, want %s", got, tc.want)
			}
		})
	}
}

func TestPlanner_Choose_StruggleWhenOutOfPP(t *testing.T) {
	player := fighter("p1", normal)
	enemy := fighter("e1", normal, "strike")
	enemy.Moves[0].PPUsed = 10
	b := duel(t, fixedSrc{0}, player, enemy)

	cmd := ai.NewPlanner(ai.PolicySmart).Choose(b, enemy)
	if cmd.Slot != combat.StruggleSlot {
		t.Fatalf("slot = %d, want StruggleSlot", cmd.Slot)
	}
}

func TestPlanner_Choose_SingleUsableMove(t *testing.T) {
	player := fighter("p1", normal)
	enemy := fighter("e1", normal, "strike", "sketch")
	enemy.Moves[0].PPUsed = 10
	b := duel(t, fixedSrc{0}, player, enemy)

	cmd := ai.NewPlanner(ai.PolicySmartRandom).Choose(b, enemy)
	if cmd.Slot != 1 {
		t.Fatalf("slot = %d, want the only usable slot 1", cmd.Slot)
	}
}

func TestPlanner_Choose_AvoidsImmuneTarget(t *testing.T) {
	player := fighter("p1", ghost)
	enemy := fighter("e1", normal, "strike", "dragon_claw")
	b := duel(t, fixedSrc{0}, player, enemy)

	cmd := ai.NewPlanner(ai.PolicySmartRandom).Choose(b, enemy)
	if got := enemy.Moves[cmd.Slot].ID; got != "dragon_claw" {
		t.Fatalf("chose %s against a Ghost, want dragon_claw", got)
	}
}

func TestPlanner_Choose_WeightsTargetsInDoubles(t *testing.T) {
	pick := func(src dice.Source) string {
		a := fighter("p1", normal)
		g := fighter("p2", ghost)
		enemy := fighter("e1", normal, "strike")
		b := battle(t, src, []*combat.Combatant{a, g}, []*combat.Combatant{enemy}, true)
		cmd := ai.NewPlanner(ai.PolicySmart).Choose(b, enemy)
		if len(cmd.TargetIDs) != 1 {
			t.Fatalf("targets = %v, want one", cmd.TargetIDs)
		}
		return cmd.TargetIDs[0]
	}
	// Weights are 18 for p1 and 14 for p2.
	if got := pick(fixedSrc{0}); got != "p1" {
		t.Fatalf("low draw picked %s, want p1", got)
	}
	if got := pick(fixedSrc{31}); got != "p2" {
		t.Fatalf("high draw picked %s, want p2", got)
	}
}

func TestPlanner_Choose_Deterministic(t *testing.T) {
	choose := func() []int {
		player := fighter("p1", normal)
		enemy := fighter("e1", normal, "dragon_claw", "strike", "swords_dance", "growl")
		b, err := combat.NewBattle(aiCatalog(t), []*combat.Combatant{player}, []*combat.Combatant{enemy},
			combat.Options{Seed: 4242}, zap.NewNop())
		if err != nil {
			t.Fatalf("NewBattle: %v", err)
		}
		p := ai.NewPlanner(ai.PolicySmartRandom)
		var slots []int
		for range 10 {
			slots = append(slots, p.Choose(b, enemy).Slot)
		}
		return slots
	}
	first, second := choose(), choose()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed diverged: %v vs %v", first, second)
		}
	}
}

func TestProperty_Choose_AlwaysUsableOrStruggle(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		policy := rapid.SampledFrom(ai.Policies()).Draw(rt, "policy")
		seed := rapid.Uint64Range(1, math.MaxUint64).Draw(rt, "seed")
		spent := rapid.IntRange(0, 10).Draw(rt, "spent")

		player := fighter("p1", rapid.SampledFrom([][]typechart.Type{normal, ghost, ground}).Draw(rt, "types"))
		enemy := fighter("e1", normal, "strike", "dragon_claw", "thunder_wave", "sketch")
		enemy.Moves[0].PPUsed = spent
		b, err := combat.NewBattle(aiCatalog(t), []*combat.Combatant{player}, []*combat.Combatant{enemy},
			combat.Options{Seed: seed}, zap.NewNop())
		if err != nil {
			rt.Fatalf("NewBattle: %v", err)
		}
		cmd := ai.NewPlanner(policy).Choose(b, enemy)
		usable := b.UsableSlots(enemy)
		ok := cmd.Slot == combat.StruggleSlot && len(usable) == 0
		for _, s := range usable {
			ok = ok || s == cmd.Slot
		}
		if !ok {
			rt.Fatalf("slot %d not in usable %v", cmd.Slot, usable)
		}
		for _, s := range ai.NewPlanner(ai.PolicySmart).Rank(b, ai.BuildWorldState(b, enemy), usable) {
			if math.IsNaN(s.Score) {
				rt.Fatalf("%s scored NaN", s.MoveID)
			}
		}
	})
}
