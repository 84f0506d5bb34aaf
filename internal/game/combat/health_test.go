package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/combat"
	"github.com/cory-johannsen/battlecore/internal/game/modifier"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

func bossBattle(t *testing.T, segments, maxHP int) (*combat.Battle, *combat.Combatant) {
	t.Helper()
	cat := testCatalog(t)
	player := newCombatant("player", mon("hero", typechart.Water), 50, "strike")
	boss := combat.NewCombatant(combat.Spec{ID: "boss", Species: mon("titan", typechart.Normal), Level: 50, BossSegments: segments})
	setStat(boss, stat.HP, maxHP)
	return newBattle(t, cat, player, boss, combat.Options{}), boss
}

func TestApplyDamage_BossClampsAtBoundary(t *testing.T) {
	b, boss := bossBattle(t, 3, 300)
	boss.HP = 250
	var log combat.Log

	dealt := b.ApplyDamage(boss, 60, false, false, &log)

	assert.Equal(t, 50, dealt)
	assert.Equal(t, 200, boss.HP, "the hit stops at the 200 HP boundary")
	assert.Equal(t, 1, boss.Boss.Index)
	assert.Equal(t, boss.Boss.IndexFor(boss.HP, boss.MaxHP()), boss.Boss.Index)
	assert.True(t, hasEffect(log.Effects, combat.EffectSegmentCleared))
	assert.Equal(t, 1, boss.Stages.Get(stat.ATK), "equal raw stats resolve the weighted draw to ATK")
}

func TestApplyDamage_SegmentBypass(t *testing.T) {
	b, boss := bossBattle(t, 5, 500)
	require.True(t, b.AddModifier(&modifier.Modifier{Kind: modifier.SegmentBypass}, modifier.Merge))

	dealt := b.ApplyDamage(boss, 350, false, false, nil)

	// 100 to reach the 400 boundary; the 250 excess covers one more band (>= 200) but not two (>= 400).
	assert.Equal(t, 200, dealt)
	assert.Equal(t, 300, boss.HP)
	assert.Equal(t, 2, boss.Boss.Index)
}

func TestApplyDamage_BypassCarriesThroughLastBand(t *testing.T) {
	b, boss := bossBattle(t, 3, 300)
	require.True(t, b.AddModifier(&modifier.Modifier{Kind: modifier.SegmentBypass}, modifier.Merge))

	dealt := b.ApplyDamage(boss, 1000, false, false, nil)

	assert.Equal(t, 300, dealt)
	assert.True(t, boss.IsFainted())
	assert.Equal(t, 0, boss.Boss.Index)
}

func TestMaxHP_FollowsBaseStatBooster(t *testing.T) {
	cat := testCatalog(t)
	p := newCombatant("p1", mon("hero", typechart.Water), 50, "strike")
	p.Table.IVs = stat.Values{31, 31, 31, 31, 31, 31}
	setStat(p, stat.HP, 200)
	e := newCombatant("e1", mon("foe", typechart.Normal), 50)
	b := newBattle(t, cat, p, e, combat.Options{})

	require.True(t, b.AddModifier(&modifier.Modifier{Kind: modifier.BaseStatBooster, OwnerID: p.ID, Stat: stat.HP, Stack: 2}, modifier.Merge))

	assert.Equal(t, 240, p.MaxHP())
	assert.Equal(t, p.MaxHP(), b.EffectiveStat(p, stat.HP, nil, nil, false))
	assert.Equal(t, 240, p.HP, "the added max HP is added as current HP")
	assert.True(t, p.IsFullHP())

	healed := b.Heal(p, 50, nil)
	assert.Equal(t, 0, healed)
}

func TestApplyDamage_NoBypassWithoutCapability(t *testing.T) {
	b, boss := bossBattle(t, 5, 500)
	dealt := b.ApplyDamage(boss, 350, false, false, nil)
	assert.Equal(t, 100, dealt)
	assert.Equal(t, 3, boss.Boss.Index)
}

func TestApplyDamage_IgnoreSegmentsQuantizes(t *testing.T) {
	b, boss := bossBattle(t, 4, 400)
	dealt := b.ApplyDamage(boss, 250, true, false, nil)
	assert.Equal(t, 250, dealt)
	assert.Equal(t, 150, boss.HP)
	assert.Equal(t, 1, boss.Boss.Index)
}

func TestApplyDamage_FinalBossSurvivesLastBand(t *testing.T) {
	b, boss := bossBattle(t, 2, 200)
	boss.Boss.Final = true
	boss.Boss.Index = 0
	boss.HP = 50

	dealt := b.ApplyDamage(boss, 500, false, false, nil)

	assert.Equal(t, 49, dealt)
	assert.Equal(t, 1, boss.HP)
}

func TestApplyDamage_PreFinalSkipsBoost(t *testing.T) {
	b, boss := bossBattle(t, 3, 300)
	boss.Boss.PreFinal = true
	var log combat.Log
	b.ApplyDamage(boss, 150, false, false, &log)
	assert.Equal(t, 200, boss.HP)
	assert.False(t, hasEffect(log.Effects, combat.EffectStatStage))
	assert.True(t, hasEffect(log.Effects, combat.EffectSegmentCleared))
}

func TestApplyDamage_SurviveClamps(t *testing.T) {
	t.Run("endure tag", func(t *testing.T) {
		b, _, def := duel(t)
		require.True(t, b.AddTag(def, "endure", 1, nil))
		b.ApplyDamage(def, 10_000, false, false, nil)
		assert.Equal(t, 1, def.HP)
		assert.True(t, def.Tags.Has("endure"))
	})
	t.Run("sturdy tag is consumed", func(t *testing.T) {
		b, _, def := duel(t)
		require.True(t, b.AddTag(def, "sturdy", -1, nil))
		b.ApplyDamage(def, 10_000, false, false, nil)
		assert.Equal(t, 1, def.HP)
		assert.False(t, def.Tags.Has("sturdy"))
	})
	t.Run("sturdy tag needs more than 1 HP", func(t *testing.T) {
		b, _, def := duel(t)
		require.True(t, b.AddTag(def, "sturdy", -1, nil))
		def.HP = 1
		b.ApplyDamage(def, 10, false, false, nil)
		assert.True(t, def.IsFainted())
	})
	t.Run("survive modifier", func(t *testing.T) {
		cat := testCatalog(t)
		att := newCombatant("att", mon("attacker", typechart.Water), 50)
		def := newCombatant("def", mon("defender", typechart.Water), 50)
		b := newBattle(t, cat, def, att, combat.Options{Source: fixedSrc{val: 0}})
		require.True(t, b.AddModifier(&modifier.Modifier{Kind: modifier.SurviveDamage, OwnerID: def.ID}, modifier.Merge))
		b.ApplyDamage(def, 10_000, false, false, nil)
		assert.Equal(t, 1, def.HP)
	})
	t.Run("prevent endure", func(t *testing.T) {
		b, _, def := duel(t)
		require.True(t, b.AddTag(def, "endure", 1, nil))
		b.ApplyDamage(def, 10_000, false, true, nil)
		assert.Zero(t, def.HP)
	})
}

func TestHeal_SegmentCap(t *testing.T) {
	b, boss := bossBattle(t, 3, 300)
	boss.Boss.Index = 0
	boss.HP = 50

	healed := b.Heal(boss, 80, nil)
	assert.Equal(t, 50, healed, "a heal spanning no full band stops at the next boundary")
	assert.Equal(t, 100, boss.HP)

	boss.Boss.Index = 1
	boss.HP = 150
	healed = b.Heal(boss, 80, nil)
	assert.Equal(t, 80, healed, "above the top standing boundary the heal is uncapped")
	assert.Equal(t, 1, boss.Boss.Index, "heals never raise the index")
}

func TestHeal_NonBossCapsAtMax(t *testing.T) {
	b, _, def := duel(t)
	def.HP = def.MaxHP() - 5
	assert.Equal(t, 5, b.Heal(def, 100, nil))
	assert.True(t, def.IsFullHP())
	assert.Zero(t, b.Heal(def, 100, nil))
}

func TestProperty_SurviveClamp(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cat := testCatalog(t)
		att := newCombatant("att", mon("attacker", typechart.Water), 50)
		def := newCombatant("def", mon("defender", typechart.Water), 50)
		b := newBattle(t, cat, att, def, combat.Options{})
		def.HP = rapid.IntRange(1, def.MaxHP()).Draw(rt, "hp")
		dmg := rapid.IntRange(0, 2*def.MaxHP()).Draw(rt, "dmg")
		endure := rapid.Bool().Draw(rt, "endure")
		if endure {
			b.AddTag(def, "endure", 1, nil)
		}
		before := def.HP

		b.ApplyDamage(def, dmg, false, false, nil)

		if endure {
			if def.HP < 1 {
				rt.Fatalf("endure active: hp %d after %d damage from %d", def.HP, dmg, before)
			}
			return
		}
		if want := max(0, before-dmg); def.HP != want {
			rt.Fatalf("hp %d, want %d", def.HP, want)
		}
	})
}

func TestProperty_SmallHitsClearOneBoundaryAtMost(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		segments := rapid.IntRange(2, 6).Draw(rt, "segments")
		maxHP := rapid.IntRange(segments*10, 1000).Draw(rt, "maxHP")
		b, boss := bossBattle(t, segments, maxHP)
		size := maxHP / segments
		for i := 0; i < 50 && !boss.IsFainted(); i++ {
			before := boss.Boss.Index
			dmg := rapid.IntRange(1, size-1).Draw(rt, "dmg")
			b.ApplyDamage(boss, dmg, false, false, nil)
			if before-boss.Boss.Index > 1 {
				rt.Fatalf("index dropped %d -> %d on a %d damage hit", before, boss.Boss.Index, dmg)
			}
			if boss.Boss.Index < 0 || boss.Boss.Index > segments-1 {
				rt.Fatalf("index %d out of range", boss.Boss.Index)
			}
		}
	})
}
