package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/cory-johannsen/battlecore/internal/game/field"
)

// summary tallies finished battles. It is safe for concurrent use.
type summary struct {
	mu         sync.Mutex
	battles    int
	playerWins int
	enemyWins  int
	draws      int
	turns      int
	maxTurns   int
}

// record adds one finished battle.
func (s *summary) record(winner field.Side, turns int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.battles++
	s.turns += turns
	s.maxTurns = max(s.maxTurns, turns)
	switch winner {
	case field.SidePlayer:
		s.playerWins++
	case field.SideEnemy:
		s.enemyWins++
	default:
		s.draws++
	}
}

// count returns the number of finished battles.
func (s *summary) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battles
}

// meanTurns returns the average battle length, 0 before any battle.
func (s *summary) meanTurns() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.battles == 0 {
		return 0
	}
	return float64(s.turns) / float64(s.battles)
}

// write prints the tally in a fixed, line-oriented format.
func (s *summary) write(w io.Writer) error {
	mean := s.meanTurns()
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(w,
		"battles=%d player_wins=%d enemy_wins=%d draws=%d mean_turns=%.2f max_turns=%d\n",
		s.battles, s.playerWins, s.enemyWins, s.draws, mean, s.maxTurns,
	)
	return err
}
