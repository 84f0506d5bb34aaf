// Package dice provides the randomness abstraction, the per-battle seeded
// streams and the roll-result types used by the combat engine.
package dice

import "fmt"

// RollResult holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "1d4+1"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
//
// Postcondition: return value == sum(r.Dice) + r.Modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"1d4+1 → [3] +1 = 4"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Source is the randomness provider for every draw the engine makes.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// IntRange returns a value in [lo, hi] inclusive drawn from src.
//
// Precondition: lo <= hi.
// Postcondition: lo <= result <= hi.
func IntRange(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// OneIn reports whether a 1-in-n draw succeeds. n <= 1 always succeeds
// without consuming a draw.
func OneIn(src Source, n int) bool {
	if n <= 1 {
		return true
	}
	return src.Intn(n) == 0
}

// WeightedIndex picks an index of weights with probability proportional to
// its weight. Non-positive weights are never chosen.
//
// Postcondition: Returns -1 iff no weight is positive.
func WeightedIndex(src Source, weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}
	r := src.Intn(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if r < w {
			return i
		}
		r -= w
	}
	return -1
}
