package dice

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"sync"
)

// cosmeticSalt separates the cosmetic stream from the battle stream derived
// from the same seed.
const cosmeticSalt = 0x9e3779b97f4a7c15

// NewSeed returns a fresh battle seed read from crypto/rand.
//
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func NewSeed() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// pcgSource implements Source over a PCG generator.
//
// Invariant: the same (seed, stream) pair always yields the same sequence.
type pcgSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic Source for (seed, stream).
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewSeededSource(seed, stream uint64) Source {
	return &pcgSource{rng: mrand.New(mrand.NewPCG(seed, stream))}
}

// Intn returns a deterministic pseudo-random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
func (p *pcgSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}

// Streams holds the two independent random streams of one battle. Draws that
// affect the outcome (crit rolls, damage variance, AI selection) use Battle;
// presentation-only draws use Cosmetic so they cannot shift the battle stream.
//
// The battle stream is re-derived from the seed at every turn boundary, so a
// replay started from any turn reproduces the rest of the battle.
type Streams struct {
	mu       sync.Mutex
	seed     uint64
	turn     int
	battle   Source
	cosmetic Source
}

// NewStreams creates the streams for a battle seeded with seed, positioned at turn 0.
//
// Postcondition: Seed() == seed; Turn() == 0.
func NewStreams(seed uint64) *Streams {
	return &Streams{
		seed:     seed,
		battle:   NewSeededSource(seed, 0),
		cosmetic: NewSeededSource(seed^cosmeticSalt, 1),
	}
}

// Seed returns the battle seed.
func (s *Streams) Seed() uint64 { return s.seed }

// Turn returns the turn the battle stream is currently positioned at.
func (s *Streams) Turn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// BeginTurn repositions the battle stream at the start of turn.
// The cosmetic stream is unaffected.
//
// Postcondition: Turn() == turn.
func (s *Streams) BeginTurn(turn int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turn = turn
	s.battle = NewSeededSource(s.seed, uint64(turn)<<6)
}

// Battle returns the battle-seeded stream. The returned Source always draws
// from the stream of the current turn.
func (s *Streams) Battle() Source { return streamRef{s: s} }

// Cosmetic returns the presentation-only stream.
func (s *Streams) Cosmetic() Source { return s.cosmetic }

type streamRef struct{ s *Streams }

func (r streamRef) Intn(n int) int {
	r.s.mu.Lock()
	src := r.s.battle
	r.s.mu.Unlock()
	return src.Intn(n)
}
