package stat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/stat"
)

func TestParse_RoundTripsNames(t *testing.T) {
	for s := stat.HP; s <= stat.EVA; s++ {
		got, err := stat.Parse(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := stat.Parse("luck")
	assert.Error(t, err)
}

func TestStat_UnmarshalYAML(t *testing.T) {
	var n stat.Nature
	require.NoError(t, yaml.Unmarshal([]byte("name: adamant\nup: atk\ndown: spatk\n"), &n))
	assert.Equal(t, stat.ATK, n.Up)
	assert.Equal(t, stat.SPATK, n.Down)

	assert.Error(t, yaml.Unmarshal([]byte("up: luck\n"), &n))
}

func TestCalculate_KnownValues(t *testing.T) {
	tbl := stat.Table{
		Base:   stat.Values{100, 100, 100, 100, 100, 100},
		IVs:    stat.Values{31, 31, 31, 31, 31, 31},
		Nature: stat.Nature{Name: "adamant", Up: stat.ATK, Down: stat.SPATK},
		Level:  50,
	}
	got := stat.Calculate(tbl)
	// (200+31)*50/100 = 115
	assert.Equal(t, 115+50+10, got[stat.HP])
	assert.Equal(t, 120, got[stat.DEF])
	assert.Equal(t, 132, got[stat.ATK], "ceil(120*1.1)")
	assert.Equal(t, 108, got[stat.SPATK], "floor(120*0.9)")
}

func TestCalculate_NeutralNatureUnchanged(t *testing.T) {
	tbl := stat.Table{Base: stat.Values{50, 60, 70, 80, 90, 100}, Nature: stat.Neutral, Level: 100}
	got := stat.Calculate(tbl)
	assert.Equal(t, 2*60+5, got[stat.ATK])
	assert.Equal(t, 2*100+5, got[stat.SPD])
}

func TestCalculate_PositiveProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var tbl stat.Table
		for i := range tbl.Base {
			tbl.Base[i] = rapid.IntRange(1, 255).Draw(rt, "base")
			tbl.IVs[i] = rapid.IntRange(0, 31).Draw(rt, "iv")
		}
		tbl.Level = rapid.IntRange(1, 100).Draw(rt, "level")
		tbl.Nature = stat.Nature{
			Up:   stat.Stat(rapid.IntRange(1, 5).Draw(rt, "up")),
			Down: stat.Stat(rapid.IntRange(1, 5).Draw(rt, "down")),
		}
		for _, v := range stat.Calculate(tbl) {
			assert.GreaterOrEqual(rt, v, 1)
		}
	})
}

func TestBoostRatio(t *testing.T) {
	assert.Equal(t, 1.0, stat.BoostRatio(0))
	assert.Equal(t, 1.5, stat.BoostRatio(1))
	assert.Equal(t, 4.0, stat.BoostRatio(6))
	assert.Equal(t, 0.25, stat.BoostRatio(-6))
	assert.Equal(t, 2.0/3.0, stat.BoostRatio(-1))
	assert.Equal(t, 4.0, stat.BoostRatio(9), "clamped")
}

func TestStages_AddClamps(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var st stat.Stages
		s := stat.Stat(rapid.IntRange(int(stat.ATK), int(stat.EVA)).Draw(rt, "stat"))
		deltas := rapid.SliceOf(rapid.IntRange(-12, 12)).Draw(rt, "deltas")
		for _, d := range deltas {
			before := st.Get(s)
			applied := st.Add(s, d)
			assert.Equal(rt, before+applied, st.Get(s))
			assert.GreaterOrEqual(rt, st.Get(s), stat.MinStage)
			assert.LessOrEqual(rt, st.Get(s), stat.MaxStage)
		}
	})
}

func TestStages_HPHasNoStage(t *testing.T) {
	var st stat.Stages
	assert.Equal(t, 0, st.Add(stat.HP, 3))
	assert.Equal(t, 0, st.Get(stat.HP))
	st.Add(stat.SPD, 2)
	st.Reset()
	assert.Equal(t, 0, st.Get(stat.SPD))
}
