package typechart

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Chart maps (attacking type, defending type) to a damage multiplier.
//
// Invariant: every entry is one of 0, 0.5, 1, 2.
type Chart struct {
	m [Count][Count]float64
}

// NewChart returns a chart where every matchup is neutral.
func NewChart() *Chart {
	c := &Chart{}
	for a := range c.m {
		for d := range c.m[a] {
			c.m[a][d] = 1
		}
	}
	return c
}

// Set records the multiplier for att against def.
//
// Precondition: both types are on the chart; mult is one of 0, 0.5, 1, 2.
func (c *Chart) Set(att, def Type, mult float64) error {
	if !att.OnChart() || !def.OnChart() {
		return fmt.Errorf("typechart: %s vs %s is not a chart matchup", att, def)
	}
	switch mult {
	case 0, 0.5, 1, 2:
	default:
		return fmt.Errorf("typechart: %s vs %s has invalid multiplier %v", att, def, mult)
	}
	c.m[att][def] = mult
	return nil
}

// Multiplier returns the chart value for att against def. Matchups involving
// a type off the chart are neutral.
func (c *Chart) Multiplier(att, def Type) float64 {
	if !att.OnChart() || !def.OnChart() {
		return 1
	}
	return c.m[att][def]
}

// Invert applies the inverted-battle remap: 2↔0.5, 4↔0.25 and 0→2.
// Every other value is returned unchanged.
func Invert(mult float64) float64 {
	switch mult {
	case 2:
		return 0.5
	case 0.5:
		return 2
	case 4:
		return 0.25
	case 0.25:
		return 4
	case 0:
		return 2
	default:
		return mult
	}
}

// LoadFile reads a chart from a YAML file of the form
//
//	fire:
//	  grass: 2
//	  water: 0.5
//
// Unlisted matchups are neutral.
//
// Postcondition: Returns a populated Chart or an error naming the bad entry.
func LoadFile(path string) (*Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading type chart %q: %w", path, err)
	}
	var raw map[string]map[string]float64
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing type chart %q: %w", path, err)
	}
	c := NewChart()
	for attName, row := range raw {
		att, err := Parse(attName)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", path, err)
		}
		for defName, mult := range row {
			def, err := Parse(defName)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", path, err)
			}
			if err := c.Set(att, def, mult); err != nil {
				return nil, fmt.Errorf("%q: %w", path, err)
			}
		}
	}
	return c, nil
}

// Default returns the standard 18-type chart.
func Default() *Chart {
	c := NewChart()
	for att, row := range standard {
		for def, mult := range row {
			c.m[att][def] = mult
		}
	}
	return c
}

var standard = map[Type]map[Type]float64{
	Normal:   {Rock: 0.5, Ghost: 0, Steel: 0.5},
	Fighting: {Normal: 2, Flying: 0.5, Poison: 0.5, Rock: 2, Bug: 0.5, Ghost: 0, Steel: 2, Psychic: 0.5, Ice: 2, Dark: 2, Fairy: 0.5},
	Flying:   {Fighting: 2, Rock: 0.5, Bug: 2, Steel: 0.5, Grass: 2, Electric: 0.5},
	Poison:   {Poison: 0.5, Ground: 0.5, Rock: 0.5, Ghost: 0.5, Steel: 0, Grass: 2, Fairy: 2},
	Ground:   {Flying: 0, Poison: 2, Rock: 2, Bug: 0.5, Steel: 2, Fire: 2, Grass: 0.5, Electric: 2},
	Rock:     {Fighting: 0.5, Flying: 2, Ground: 0.5, Bug: 2, Steel: 0.5, Fire: 2, Ice: 2},
	Bug:      {Fighting: 0.5, Flying: 0.5, Poison: 0.5, Ghost: 0.5, Steel: 0.5, Fire: 0.5, Grass: 2, Psychic: 2, Dark: 2, Fairy: 0.5},
	Ghost:    {Normal: 0, Ghost: 2, Psychic: 2, Dark: 0.5},
	Steel:    {Rock: 2, Steel: 0.5, Fire: 0.5, Water: 0.5, Electric: 0.5, Ice: 2, Fairy: 2},
	Fire:     {Rock: 0.5, Bug: 2, Steel: 2, Fire: 0.5, Water: 0.5, Grass: 2, Ice: 2, Dragon: 0.5},
	Water:    {Ground: 2, Rock: 2, Fire: 2, Water: 0.5, Grass: 0.5, Dragon: 0.5},
	Grass:    {Flying: 0.5, Poison: 0.5, Ground: 2, Rock: 2, Bug: 0.5, Steel: 0.5, Fire: 0.5, Water: 2, Grass: 0.5, Dragon: 0.5},
	Electric: {Flying: 2, Ground: 0, Water: 2, Grass: 0.5, Electric: 0.5, Dragon: 0.5},
	Psychic:  {Fighting: 2, Poison: 2, Steel: 0.5, Psychic: 0.5, Dark: 0},
	Ice:      {Flying: 2, Ground: 2, Steel: 0.5, Fire: 0.5, Water: 0.5, Grass: 2, Ice: 0.5, Dragon: 2},
	Dragon:   {Steel: 0.5, Dragon: 2, Fairy: 0},
	Dark:     {Fighting: 0.5, Ghost: 2, Psychic: 2, Dark: 0.5, Fairy: 0.5},
	Fairy:    {Fighting: 2, Poison: 0.5, Steel: 0.5, Fire: 0.5, Dragon: 2, Dark: 2},
}
