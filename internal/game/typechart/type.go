// Package typechart holds the elemental types and the attack/defense
// multiplier chart between them.
package typechart

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type is an elemental type.
type Type int

const (
	Unknown Type = iota - 1
	Normal
	Fighting
	Flying
	Poison
	Ground
	Rock
	Bug
	Ghost
	Steel
	Fire
	Water
	Grass
	Electric
	Psychic
	Ice
	Dragon
	Dark
	Fairy
	Stellar
)

// Count is the number of chart types (Normal..Fairy). Stellar is not on the chart.
const Count = 18

var typeNames = [...]string{
	"normal", "fighting", "flying", "poison", "ground", "rock", "bug", "ghost", "steel",
	"fire", "water", "grass", "electric", "psychic", "ice", "dragon", "dark", "fairy", "stellar",
}

// String returns the lower-case type name.
func (t Type) String() string {
	if t < Normal || t > Stellar {
		return "unknown"
	}
	return typeNames[t]
}

// OnChart reports whether t has a row and column in the chart.
func (t Type) OnChart() bool { return t >= Normal && t < Stellar }

// Parse resolves a type name. The empty string and "unknown" yield Unknown.
func Parse(name string) (Type, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" || n == "unknown" {
		return Unknown, nil
	}
	for i, v := range typeNames {
		if v == n {
			return Type(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown type %q", name)
}

// UnmarshalYAML decodes a type from its name.
func (t *Type) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	v, err := Parse(raw)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MarshalYAML encodes a type as its name.
func (t Type) MarshalYAML() (any, error) { return t.String(), nil }
