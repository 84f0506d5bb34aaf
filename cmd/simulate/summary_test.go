package main

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/field"
)

func TestSummary_Write(t *testing.T) {
	var s summary
	s.record(field.SidePlayer, 4)
	s.record(field.SideEnemy, 8)
	s.record(field.SideBoth, 200)

	var buf bytes.Buffer
	require.NoError(t, s.write(&buf))
	assert.Equal(t, "battles=3 player_wins=1 enemy_wins=1 draws=1 mean_turns=70.67 max_turns=200\n", buf.String())
}

func TestSummary_EmptyMean(t *testing.T) {
	var s summary
	assert.Zero(t, s.meanTurns())
}

func TestSummary_ConcurrentRecord(t *testing.T) {
	var s summary
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.record(field.SideEnemy, 2)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, s.enemyWins)
	assert.Equal(t, 2.0, s.meanTurns())
}

func TestProperty_Summary_OutcomesAddUp(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var s summary
		n := rapid.IntRange(0, 40).Draw(rt, "n")
		for i := 0; i < n; i++ {
			side := rapid.SampledFrom([]field.Side{field.SidePlayer, field.SideEnemy, field.SideBoth}).Draw(rt, "side")
			s.record(side, rapid.IntRange(0, 300).Draw(rt, "turns"))
		}
		if s.playerWins+s.enemyWins+s.draws != s.battles || s.battles != n {
			rt.Fatalf("tally mismatch: %+v", &s)
		}
	})
}
