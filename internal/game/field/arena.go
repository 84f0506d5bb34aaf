// Package field models the battlefield shared by every combatant: weather,
// terrain, side-scoped arena tags and the game-mode flags of the run.
package field

import (
	"sort"

	"github.com/cory-johannsen/battlecore/internal/game/typechart"
)

// Side identifies which half of the field an effect or combatant belongs to.
type Side int

const (
	SidePlayer Side = iota
	SideEnemy
	SideBoth
)

// String returns "player", "enemy" or "both".
func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideEnemy:
		return "enemy"
	default:
		return "both"
	}
}

// Opposite returns the other side. SideBoth is its own opposite.
func (s Side) Opposite() Side {
	switch s {
	case SidePlayer:
		return SideEnemy
	case SideEnemy:
		return SidePlayer
	default:
		return SideBoth
	}
}

// Weather is the global weather state.
type Weather int

const (
	WeatherNone Weather = iota
	WeatherSun
	WeatherRain
	WeatherSandstorm
	WeatherHail
	WeatherSnow
	WeatherHeavyRain
	WeatherHarshSun
	WeatherStrongWinds
)

var weatherNames = [...]string{"none", "sun", "rain", "sandstorm", "hail", "snow", "heavy_rain", "harsh_sun", "strong_winds"}

// String returns the weather's snake_case name.
func (w Weather) String() string {
	if w < WeatherNone || w > WeatherStrongWinds {
		return "unknown"
	}
	return weatherNames[w]
}

// Terrain is the global terrain state.
type Terrain int

const (
	TerrainNone Terrain = iota
	TerrainElectric
	TerrainGrassy
	TerrainMisty
	TerrainPsychic
)

// Tag is an arena-wide effect that may be scoped to one side.
type Tag string

const (
	TagTailwind    Tag = "tailwind"
	TagReflect     Tag = "reflect"
	TagLightScreen Tag = "light_screen"
	TagAuroraVeil  Tag = "aurora_veil"
	TagNoCrit      Tag = "no_crit"
	TagGravity     Tag = "gravity"
)

// Modes are the game-mode flags of the current run.
type Modes struct {
	// NoResistances forces sub-1 type multipliers to 1 for player defenders.
	NoResistances bool `mapstructure:"no_resistances"`
	// InvertedTypes remaps type multipliers 2↔0.5, 4↔0.25, 0→2.
	InvertedTypes bool `mapstructure:"inverted_types"`
	// NoSTAB disables the same-type attack bonus for player attackers.
	NoSTAB bool `mapstructure:"no_stab"`
}

type tagKey struct {
	tag  Tag
	side Side
}

// Arena holds the shared battlefield state.
// It is not safe for concurrent use; a battle is resolved on one goroutine.
type Arena struct {
	Weather           Weather
	WeatherSuppressed bool
	WeatherTurns      int // 0 = indefinite
	Terrain           Terrain
	TerrainTurns      int // 0 = indefinite
	Modes             Modes
	// Double is true in two-on-two battles; screens are weaker there.
	Double bool

	tags map[tagKey]int
}

// NewArena returns a clear arena with the given modes.
func NewArena(modes Modes) *Arena {
	return &Arena{Modes: modes, tags: make(map[tagKey]int)}
}

// SetWeather replaces the weather for turns turns (0 = indefinite).
func (a *Arena) SetWeather(w Weather, turns int) {
	a.Weather = w
	a.WeatherTurns = turns
}

// SetTerrain replaces the terrain for turns turns (0 = indefinite).
func (a *Arena) SetTerrain(t Terrain, turns int) {
	a.Terrain = t
	a.TerrainTurns = turns
}

// ActiveWeather returns the weather unless it is suppressed.
func (a *Arena) ActiveWeather() Weather {
	if a.WeatherSuppressed {
		return WeatherNone
	}
	return a.Weather
}

// AddTag adds an arena tag on side for turns turns (0 = indefinite).
// Re-adding keeps the longer duration.
func (a *Arena) AddTag(t Tag, side Side, turns int) {
	k := tagKey{t, side}
	if cur, ok := a.tags[k]; ok && (cur == 0 || (turns != 0 && cur >= turns)) {
		return
	}
	a.tags[k] = turns
}

// RemoveTag removes an arena tag from side.
func (a *Arena) RemoveTag(t Tag, side Side) {
	delete(a.tags, tagKey{t, side})
}

// HasTag reports whether t is active on side, either scoped to it or to both sides.
func (a *Arena) HasTag(t Tag, side Side) bool {
	if _, ok := a.tags[tagKey{t, side}]; ok {
		return true
	}
	_, ok := a.tags[tagKey{t, SideBoth}]
	return ok
}

// Lapse ends one turn: timed tags, weather and terrain count down and expire.
//
// Postcondition: Returns the expired tags ordered by name.
func (a *Arena) Lapse() []Tag {
	var expired []Tag
	for k, turns := range a.tags {
		if turns == 0 {
			continue
		}
		if turns == 1 {
			expired = append(expired, k.tag)
			delete(a.tags, k)
			continue
		}
		a.tags[k] = turns - 1
	}
	if a.WeatherTurns > 0 {
		a.WeatherTurns--
		if a.WeatherTurns == 0 {
			a.Weather = WeatherNone
		}
	}
	if a.TerrainTurns > 0 {
		a.TerrainTurns--
		if a.TerrainTurns == 0 {
			a.Terrain = TerrainNone
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i] < expired[j] })
	return expired
}

// AttackTypeMultiplier returns the weather and terrain multiplier for a move
// of type t. grounded refers to the attacker; terrain boosts only grounded users.
func (a *Arena) AttackTypeMultiplier(t typechart.Type, grounded bool) float64 {
	mult := 1.0
	switch a.ActiveWeather() {
	case WeatherSun:
		switch t {
		case typechart.Fire:
			mult *= 1.5
		case typechart.Water:
			mult *= 0.5
		}
	case WeatherRain:
		switch t {
		case typechart.Water:
			mult *= 1.5
		case typechart.Fire:
			mult *= 0.5
		}
	case WeatherHarshSun:
		switch t {
		case typechart.Fire:
			mult *= 1.5
		case typechart.Water:
			mult = 0
		}
	case WeatherHeavyRain:
		switch t {
		case typechart.Water:
			mult *= 1.5
		case typechart.Fire:
			mult = 0
		}
	}
	if !grounded {
		return mult
	}
	switch {
	case a.Terrain == TerrainElectric && t == typechart.Electric,
		a.Terrain == TerrainGrassy && t == typechart.Grass,
		a.Terrain == TerrainPsychic && t == typechart.Psychic:
		mult *= 1.3
	}
	return mult
}

// ScreenMultiplier returns the damage multiplier from screens on the
// defender's side for a physical or special hit.
func (a *Arena) ScreenMultiplier(defender Side, physical bool) float64 {
	screened := a.HasTag(TagAuroraVeil, defender) ||
		(physical && a.HasTag(TagReflect, defender)) ||
		(!physical && a.HasTag(TagLightScreen, defender))
	if !screened {
		return 1
	}
	if a.Double {
		return 2732.0 / 4096.0
	}
	return 0.5
}
