// Package ai chooses commands for combatants the caller does not drive.
//
// Every usable move is scored against the targets it would hit. A policy
// then walks the ranked moves with battle-seeded draws, so a replay of the
// battle seed reproduces every choice.
package ai

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPolicy is returned when a policy name is not recognised.
var ErrUnknownPolicy = errors.New("unknown ai policy")

// Policy selects how a Planner turns move scores into a choice.
type Policy string

const (
	// PolicyRandom picks uniformly from the usable moves.
	PolicyRandom Policy = "random"
	// PolicySmartRandom takes the best move with probability 5/8 and
	// otherwise moves down the ranking, repeating the roll.
	PolicySmartRandom Policy = "smart_random"
	// PolicySmart moves down the ranking with a chance that grows as the
	// next score approaches the current one.
	PolicySmart Policy = "smart"
)

// Policies returns every supported policy.
func Policies() []Policy {
	return []Policy{PolicyRandom, PolicySmartRandom, PolicySmart}
}

// ParsePolicy converts a config value into a Policy.
//
// Postcondition: Returns ErrUnknownPolicy for any unsupported name.
func ParsePolicy(s string) (Policy, error) {
	p := Policy(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Policies() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}
