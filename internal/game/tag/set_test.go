package tag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/tag"
)

func endure() *tag.Def {
	return &tag.Def{ID: "endure", Kind: tag.KindEndure, Lapse: tag.LapseTurnEnd}
}

func critBoost() *tag.Def {
	return &tag.Def{ID: "focus_energy", Kind: tag.KindCritBoost, Lapse: tag.LapseSummon, MaxStacks: 3, CritStages: 2}
}

func sturdy() *tag.Def {
	return &tag.Def{ID: "sturdy", Kind: tag.KindSturdy, Lapse: tag.LapseOnUse}
}

func TestSet_Apply_Unstackable(t *testing.T) {
	s := tag.NewSet()
	_, err := s.Apply(endure(), 3, 1)
	require.NoError(t, err)
	assert.True(t, s.Has("endure"))
	assert.Equal(t, 1, s.Stacks("endure"))
}

func TestSet_Apply_StacksCapped(t *testing.T) {
	s := tag.NewSet()
	def := critBoost()
	_, err := s.Apply(def, 2, -1)
	require.NoError(t, err)
	_, err = s.Apply(def, 2, -1)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Stacks("focus_energy"))
}

func TestSet_Apply_NilDef(t *testing.T) {
	_, err := tag.NewSet().Apply(nil, 1, 1)
	assert.Error(t, err)
}

func TestSet_Apply_ExtendsTurns(t *testing.T) {
	s := tag.NewSet()
	_, _ = s.Apply(endure(), 1, 1)
	got, _ := s.Apply(endure(), 1, 3)
	assert.Equal(t, 3, got.TurnsLeft)
	got, _ = s.Apply(endure(), 1, 2)
	assert.Equal(t, 3, got.TurnsLeft, "a shorter reapply does not shorten")
}

func TestSet_Lapse_OnlyMatchingTiming(t *testing.T) {
	s := tag.NewSet()
	_, _ = s.Apply(endure(), 1, 1)
	_, _ = s.Apply(sturdy(), 1, 1)
	expired := s.Lapse(tag.LapseTurnEnd)
	assert.Equal(t, []string{"endure"}, expired)
	assert.False(t, s.Has("endure"))
	assert.True(t, s.Has("sturdy"))
}

func TestSet_Lapse_PermanentUntouched(t *testing.T) {
	s := tag.NewSet()
	_, _ = s.Apply(critBoost(), 1, -1)
	assert.Empty(t, s.Lapse(tag.LapseSummon))
	assert.True(t, s.Has("focus_energy"))
}

func TestSet_OfKindAndClear(t *testing.T) {
	s := tag.NewSet()
	_, _ = s.Apply(endure(), 1, 1)
	_, _ = s.Apply(critBoost(), 1, -1)
	assert.True(t, s.HasKind(tag.KindCritBoost))
	assert.Len(t, s.OfKind(tag.KindEndure), 1)
	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "endure", all[0].Def.ID)
	s.Clear()
	assert.Empty(t, s.All())
	s.Remove("missing")
}

// TestSet_Lapse_NeverBelowZero verifies expiring tags are removed rather than
// left with a zero or negative counter.
func TestSet_Lapse_NeverBelowZero(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := tag.NewSet()
		turns := rapid.IntRange(1, 5).Draw(rt, "turns")
		_, _ = s.Apply(endure(), 1, turns)
		lapses := rapid.IntRange(0, 8).Draw(rt, "lapses")
		for i := 0; i < lapses; i++ {
			s.Lapse(tag.LapseTurnEnd)
		}
		if got, ok := s.Get("endure"); ok {
			assert.Greater(rt, got.TurnsLeft, 0)
			assert.Less(rt, lapses, turns)
		} else {
			assert.GreaterOrEqual(rt, lapses, turns)
		}
	})
}
