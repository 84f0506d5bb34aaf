package ai_test

import (
	"errors"
	"testing"

	"github.com/cory-johannsen/battlecore/internal/game/ai"
)

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]ai.Policy{
		"random":       ai.PolicyRandom,
		"smart_random": ai.PolicySmartRandom,
		" SMART ":      ai.PolicySmart,
	} {
		got, err := ai.ParsePolicy(in)
		if err != nil {
			t.Fatalf("ParsePolicy(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParsePolicy(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParsePolicy_Unknown(t *testing.T) {
	if _, err := ai.ParsePolicy("genius"); !errors.Is(err, ai.ErrUnknownPolicy) {
		t.Fatalf("expected ErrUnknownPolicy, got %v", err)
	}
}

func TestNewPlanner_PanicsOnUnknownPolicy(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	ai.NewPlanner("genius")
}
