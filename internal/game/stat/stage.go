package stat

// MinStage and MaxStage bound every battle stat stage.
const (
	MinStage = -6
	MaxStage = 6
)

// Stages holds the battle stage of each stage-modifiable stat.
//
// Invariant: every entry is in [MinStage, MaxStage].
type Stages [BattleCount]int

// Get returns the stage of s, or 0 for HP and unknown stats.
func (st *Stages) Get(s Stat) int {
	if !s.IsBattle() {
		return 0
	}
	return st[s-ATK]
}

// Add changes the stage of s by delta, clamping to [MinStage, MaxStage].
//
// Postcondition: returns the change actually applied.
func (st *Stages) Add(s Stat, delta int) int {
	if !s.IsBattle() {
		return 0
	}
	before := st[s-ATK]
	st[s-ATK] = ClampStage(before + delta)
	return st[s-ATK] - before
}

// Reset sets every stage back to 0.
func (st *Stages) Reset() { *st = Stages{} }

// ClampStage clamps s to [MinStage, MaxStage].
func ClampStage(s int) int {
	if s < MinStage {
		return MinStage
	}
	if s > MaxStage {
		return MaxStage
	}
	return s
}

// BoostRatio returns the multiplier for stage s: max(2, 2+s) / max(2, 2-s).
//
// Postcondition: BoostRatio(0) == 1; the range spans 2/8 .. 8/2.
func BoostRatio(s int) float64 {
	s = ClampStage(s)
	return float64(max(2, 2+s)) / float64(max(2, 2-s))
}
