package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression is a parsed dice expression ready to be rolled.
// A constant expression ("3") has Count == 0 and only a Modifier.
type Expression struct {
	Raw      string // original input string
	Count    int    // number of dice; 0 for a constant
	Sides    int    // faces per die
	Modifier int    // flat modifier (may be negative)
}

// Min returns the smallest value the expression can roll.
func (e Expression) Min() int { return e.Count + e.Modifier }

// Max returns the largest value the expression can roll.
func (e Expression) Max() int { return e.Count*e.Sides + e.Modifier }

// Parse parses a dice expression string.
// Supported forms: "3", "d4", "2d3", "1d4+1", "2d6-2".
//
// Postcondition: Returns an Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	raw := expr
	s := strings.ToLower(strings.TrimSpace(expr))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}

	dIdx := strings.IndexByte(s, 'd')
	if dIdx < 0 {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid constant %q: %w", raw, err)
		}
		return Expression{Raw: raw, Modifier: n}, nil
	}

	count := 1
	if dIdx > 0 {
		n, err := strconv.Atoi(s[:dIdx])
		if err != nil || n <= 0 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q", raw)
		}
		count = n
	}

	rest := s[dIdx+1:]
	sidesStr, modStr := rest, ""
	if i := strings.IndexAny(rest, "+-"); i >= 0 {
		sidesStr, modStr = rest[:i], rest[i:]
	}

	sides, err := strconv.Atoi(sidesStr)
	if err != nil || sides < 2 {
		return Expression{}, fmt.Errorf("dice: invalid sides in %q: must be >= 2", raw)
	}

	mod := 0
	if modStr != "" {
		mod, err = strconv.Atoi(modStr)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", raw, err)
		}
	}

	return Expression{Raw: raw, Count: count, Sides: sides, Modifier: mod}, nil
}

// MustParse parses expr and panics on error. Useful for package-level values.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}

// Roll evaluates expr using src.
//
// Postcondition: len(result.Dice) == expr.Count; expr.Min() <= result.Total() <= expr.Max().
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{
		Expression: expr.Raw,
		Dice:       rolled,
		Modifier:   expr.Modifier,
	}
}
