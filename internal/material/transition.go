package material

import (
	"fmt"
	"strings"
)

type comparison uint8

const (
	above comparison = iota
	atLeast
	atMost
	below
)

var comparisonSymbols = [...]string{above: ">", atLeast: ">=", atMost: "<=", below: "<"}

// rule is one row of the transition table.
type rule struct {
	from      ID
	cmp       comparison
	threshold float32
	to        ID
	phase     Phase
}

func (r rule) matches(temp float32) bool {
	switch r.cmp {
	case above:
		return temp > r.threshold
	case atLeast:
		return temp >= r.threshold
	case atMost:
		return temp <= r.threshold
	default:
		return temp < r.threshold
	}
}

var transitions = []rule{
	{from: Sand, cmp: above, threshold: 1700, to: MoltenGlass, phase: Liquid},
	{from: Rock, cmp: atLeast, threshold: 1200, to: Lava, phase: Liquid},
	{from: Water, cmp: atMost, threshold: 0, to: Ice, phase: Solid},
	{from: Water, cmp: atLeast, threshold: 100, to: Steam, phase: Gas},
	{from: Ice, cmp: above, threshold: 0, to: Water, phase: Liquid},
	{from: Steam, cmp: below, threshold: 100, to: Water, phase: Liquid},
	{from: Lava, cmp: below, threshold: 1000, to: Rock, phase: Solid},
	{from: MoltenGlass, cmp: below, threshold: 1500, to: Glass, phase: Solid},
	{from: Glass, cmp: above, threshold: 1200, to: MoltenGlass, phase: Liquid},
}

// Transition evaluates the table for a cell of material id at temperature
// temp. Rows are checked in order and the first match wins.
func Transition(id ID, temp float32) (ID, Phase, bool) {
	for _, r := range transitions {
		if r.from == id && r.matches(temp) {
			return r.to, r.phase, true
		}
	}
	return id, 0, false
}

// DescribeTransitions renders the rows for id, e.g. "ice if <= 0, steam if >= 100".
func DescribeTransitions(id ID) string {
	var parts []string
	for _, r := range transitions {
		if r.from == id {
			parts = append(parts, fmt.Sprintf("%s if %s %g", r.to, comparisonSymbols[r.cmp], r.threshold))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
