package combat

import "math"

// Segments is the multi-bar health state of a boss.
//
// Invariant: 0 <= Index <= Count-1. Index counts the internal boundaries
// still standing; the last band reaching 0 HP is not a boundary.
type Segments struct {
	Count int
	Index int
	// Final marks the final boss of a run; it cannot be dropped past its
	// last boundary by bypassing and survives its last band at 1 HP.
	Final bool
	// SecondStage marks the second form of the final boss, which lifts the Final guards.
	SecondStage bool
	// PreFinal suppresses the boundary stat boosts.
	PreFinal bool
}

// NewSegments returns a fresh segment state with every boundary standing.
//
// Precondition: count >= 1.
func NewSegments(count int) *Segments {
	return &Segments{Count: count, Index: count - 1}
}

// Size returns the HP width of one band.
func (s *Segments) Size(maxHP int) float64 {
	return float64(maxHP) / float64(s.Count)
}

func (s *Segments) threshold(maxHP, seg int) int {
	return int(math.Round(s.Size(maxHP) * float64(seg)))
}

// IndexFor returns the boundary index matching hp: the highest boundary hp
// is still strictly above, or 0.
func (s *Segments) IndexFor(hp, maxHP int) int {
	for seg := s.Count - 1; seg > 0; seg-- {
		if hp > s.threshold(maxHP, seg) {
			return seg
		}
	}
	return 0
}

// guarded reports whether the final-boss protections apply.
func (s *Segments) guarded() bool { return s.Final && !s.SecondStage }

// CanBypass reports whether n additional boundaries may be skipped in one hit.
func (s *Segments) CanBypass(n int, capable bool) bool {
	if !capable {
		return false
	}
	return !(s.guarded() && s.Index-n < 1)
}

// Clamp quantizes damage against the standing boundaries. The first boundary
// the hit would reach stops it exactly at that boundary unless the excess
// reaches size*2^k for the k-th extra boundary and bypassing is allowed.
// Only the final boss keeps its last band; any other boss can be carried
// through it by a large enough bypass hit.
//
// Postcondition: Returns the damage to deal and the lowest boundary the hit
// reaches; cleared == Index+1 when no boundary is reached.
func (s *Segments) Clamp(hp, maxHP, dmg int, capable bool) (int, int) {
	cleared := s.Index + 1
	size := s.Size(maxHP)
	for seg := s.Index; seg > 0; seg-- {
		limit := s.threshold(maxHP, seg)
		if hp < limit {
			continue
		}
		if hp-dmg <= limit {
			remainder := hp - limit
			bypassed := 0
			for bypassed < s.Index && s.CanBypass(bypassed+1, capable) &&
				dmg-remainder >= int(math.Round(size*math.Pow(2, float64(bypassed+1)))) {
				bypassed++
			}
			dmg = remainder + int(math.Round(size*float64(bypassed)))
			cleared = max(seg-bypassed, 0)
		}
		break
	}
	if s.guarded() && s.Index < 1 {
		dmg = min(dmg, hp-1)
	}
	return dmg, cleared
}

// Quantize returns the boundary index reached by unsegmented damage that
// left the boss at hp.
func (s *Segments) Quantize(hp, maxHP int) int {
	return int(math.Ceil(float64(hp) / s.Size(maxHP)))
}

// BoostStages returns the stat stages granted for clearing down to boundary cleared.
func (s *Segments) BoostStages(cleared int) int {
	switch {
	case cleared == 1 && s.Count >= 3:
		return 2
	case cleared == 2 && s.Count >= 5:
		return 2
	default:
		return 1
	}
}

// Heal caps a heal so it does not overshoot the next standing boundary by
// more than the bands the heal amount spans. At or above the top remaining
// boundary the heal is uncapped.
//
// Postcondition: 0 <= result <= min(amount, maxHP-hp).
func (s *Segments) Heal(hp, maxHP, amount int) int {
	full := min(amount, maxHP-hp)
	if full <= 0 {
		return 0
	}
	size := s.Size(maxHP)
	bands := math.Floor((float64(amount) / float64(maxHP)) / (1 / float64(s.Count)))
	for seg := 1; seg < s.Count; seg++ {
		limit := s.threshold(maxHP, seg)
		if hp <= limit {
			capped := int(math.Round(size*float64(seg) + size*bands - float64(hp)))
			return max(0, min(full, capped))
		}
		if seg >= s.Index {
			return full
		}
	}
	return full
}
