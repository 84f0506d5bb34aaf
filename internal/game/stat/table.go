package stat

// Nature raises one permanent stat by 10% and lowers another by 10%.
// A nature with Up == Down is neutral.
type Nature struct {
	Name string `yaml:"name"`
	Up   Stat   `yaml:"up"`
	Down Stat   `yaml:"down"`
}

// Neutral is a nature that changes nothing.
var Neutral = Nature{Name: "hardy", Up: ATK, Down: ATK}

// Table is the per-combatant input to raw stat calculation.
type Table struct {
	Base   Values
	IVs    Values
	Nature Nature
	Level  int
}

// Calculate computes the raw permanent stats for t.
//
//	value = floor((2*base + iv) * level / 100)
//	HP    = value + level + 10
//	other = value + 5, then nature: ceil(x*1.1) when raised, floor(x*0.9) when lowered, minimum 1
//
// Postcondition: every returned stat is >= 1 when t.Level >= 1.
func Calculate(t Table) Values {
	var out Values
	for _, s := range Permanent() {
		value := (2*t.Base[s] + t.IVs[s]) * t.Level / 100
		if s == HP {
			out[s] = value + t.Level + 10
			continue
		}
		value += 5
		if t.Nature.Up != t.Nature.Down {
			switch s {
			case t.Nature.Up:
				value = (value*11 + 9) / 10
			case t.Nature.Down:
				value = value * 9 / 10
			}
		}
		if value < 1 {
			value = 1
		}
		out[s] = value
	}
	return out
}
