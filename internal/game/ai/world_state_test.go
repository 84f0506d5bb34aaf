package ai_test

import (
	"testing"

	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/ai"
	"github.com/cory-johannsen/battlecore/internal/game/combat"
)

func TestBuildWorldState_ExcludesFainted(t *testing.T) {
	a := fighter("p1", normal)
	g := fighter("p2", ghost)
	e1 := fighter("e1", normal)
	e2 := fighter("e2", normal)
	b := battle(t, fixedSrc{0}, []*combat.Combatant{a, g}, []*combat.Combatant{e1, e2}, true)
	g.HP = 0

	ws := ai.BuildWorldState(b, e1)
	if len(ws.Opponents) != 1 || ws.Opponents[0].ID != "p1" {
		t.Fatalf("opponents = %v, want only p1", ws.Opponents)
	}
	if len(ws.Allies) != 1 || ws.Allies[0].ID != "e2" {
		t.Fatalf("allies = %v, want e2", ws.Allies)
	}
	if !ws.IsAlly(e2) || !ws.IsAlly(e1) || ws.IsAlly(a) {
		t.Fatal("IsAlly disagrees with sides")
	}
}

func TestWorldState_Candidates(t *testing.T) {
	a := fighter("p1", normal)
	e1 := fighter("e1", normal)
	e2 := fighter("e2", normal)
	b := battle(t, fixedSrc{0}, []*combat.Combatant{a}, []*combat.Combatant{e1, e2}, true)
	ws := ai.BuildWorldState(b, e1)

	if got := ws.Candidates(moveDef(t, b, "swords_dance")); len(got) != 1 || got[0] != e1 {
		t.Fatalf("self move candidates = %v", got)
	}
	if got := ws.Candidates(moveDef(t, b, "growl")); len(got) != 1 || got[0] != a {
		t.Fatalf("spread move candidates = %v", got)
	}
	got := ws.Candidates(moveDef(t, b, "strike"))
	if len(got) != 2 || got[0] != a || got[1] != e2 {
		t.Fatalf("single move candidates = %v, want opponents then allies", got)
	}
	if !ws.Spread(moveDef(t, b, "growl")) || ws.Spread(moveDef(t, b, "strike")) {
		t.Fatal("Spread misclassifies moves")
	}
}

func TestProperty_WorldState_NoOpponentsWhenAllFainted(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 2).Draw(rt, "n")
		var players []*combat.Combatant
		for i := range n {
			players = append(players, fighter("p"+string(rune('1'+i)), normal))
		}
		e := fighter("e1", normal)
		b, err := combat.NewBattle(aiCatalog(t), players, []*combat.Combatant{e}, combat.Options{Source: fixedSrc{0}, Double: n == 2}, zap.NewNop())
		if err != nil {
			rt.Fatalf("NewBattle: %v", err)
		}
		for _, p := range players {
			p.HP = 0
		}
		if ai.BuildWorldState(b, e).HasLivingOpponents() {
			rt.Fatal("fainted opponents counted as living")
		}
	})
}
