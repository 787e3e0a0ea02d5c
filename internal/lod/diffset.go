package lod

import (
	"fmt"
	"strings"
)

// Direction identifies one side of a patch boundary.
type Direction uint8

// Edge directions. Values match the bit layout of a DiffSet.
const (
	Left  Direction = 1 << iota // column 0
	Up                          // row V-1
	Right                       // column V-1
	Down                        // row 0
)

// Directions lists the four edges in canonical order.
var Directions = [4]Direction{Left, Up, Right, Down}

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Left:
		return "Left"
	case Up:
		return "Up"
	case Right:
		return "Right"
	case Down:
		return "Down"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// Opposite returns the edge a neighbour shares with this one.
func (d Direction) Opposite() Direction {
	switch d {
	case Left:
		return Right
	case Right:
		return Left
	case Up:
		return Down
	case Down:
		return Up
	}
	return d
}

// DiffSet is the set of edges that border a neighbour one level finer.
type DiffSet uint8

const (
	// DiffNone means every neighbour shares this patch's level.
	DiffNone DiffSet = 0
	// DiffAll flags all four edges.
	DiffAll DiffSet = DiffSet(Left | Up | Right | Down)

	// DiffSetCount is the number of non-empty diffsets.
	DiffSetCount = 15
)

// denseOrder maps dense index -> diffset. Singles, then pairs, then triples, then all four.
var denseOrder = [DiffSetCount]DiffSet{
	DiffSet(Left),
	DiffSet(Up),
	DiffSet(Right),
	DiffSet(Down),
	DiffSet(Left | Up),
	DiffSet(Left | Right),
	DiffSet(Left | Down),
	DiffSet(Up | Right),
	DiffSet(Up | Down),
	DiffSet(Right | Down),
	DiffSet(Left | Up | Right),
	DiffSet(Left | Right | Down),
	DiffSet(Left | Up | Down),
	DiffSet(Up | Right | Down),
	DiffSet(Left | Up | Right | Down),
}

// denseIndex is the inverse of denseOrder; -1 for the empty set.
var denseIndex = func() [16]int {
	var idx [16]int
	idx[0] = -1
	for i, d := range denseOrder {
		idx[d] = i
	}
	return idx
}()

// NewDiffSet builds a set from directions.
func NewDiffSet(dirs ...Direction) DiffSet {
	var d DiffSet
	for _, dir := range dirs {
		d |= DiffSet(dir)
	}
	return d
}

// Valid reports whether d only uses the four direction bits.
func (d DiffSet) Valid() bool {
	return d&^DiffAll == 0
}

// Empty reports whether no edge is flagged.
func (d DiffSet) Empty() bool {
	return d == DiffNone
}

// Has reports whether dir is flagged.
func (d DiffSet) Has(dir Direction) bool {
	return d&DiffSet(dir) != 0
}

// Len returns the number of flagged edges.
func (d DiffSet) Len() int {
	n := 0
	for _, dir := range Directions {
		if d.Has(dir) {
			n++
		}
	}
	return n
}

// Directions returns the flagged edges in canonical order.
func (d DiffSet) Directions() []Direction {
	dirs := make([]Direction, 0, 4)
	for _, dir := range Directions {
		if d.Has(dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// String formats the set as "Left|Up", or "None".
func (d DiffSet) String() string {
	if d == DiffNone {
		return "None"
	}
	if !d.Valid() {
		return fmt.Sprintf("DiffSet(%#x)", uint8(d))
	}
	names := make([]string, 0, 4)
	for _, dir := range d.Directions() {
		names = append(names, dir.String())
	}
	return strings.Join(names, "|")
}

// ParseDiffSet parses "left,up", "Left|Up" or "none".
func ParseDiffSet(s string) (DiffSet, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return DiffNone, nil
	}

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' || r == '+' })
	if len(parts) == 0 {
		return DiffNone, fmt.Errorf("%w: no direction in %q", ErrInvalidDiffSet, s)
	}
	var d DiffSet
	for _, part := range parts {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "left", "l":
			d |= DiffSet(Left)
		case "up", "u":
			d |= DiffSet(Up)
		case "right", "r":
			d |= DiffSet(Right)
		case "down", "d":
			d |= DiffSet(Down)
		default:
			return DiffNone, fmt.Errorf("%w: unknown direction %q", ErrInvalidDiffSet, part)
		}
	}
	return d, nil
}

// EncodeDiffSet maps a non-empty diffset to its dense index in [0, 14].
func EncodeDiffSet(d DiffSet) (int, error) {
	if !d.Valid() {
		return -1, fmt.Errorf("%w: %w: bits %#x outside the four edges", ErrInvalidArgument, ErrInvalidDiffSet, uint8(d))
	}
	if d.Empty() {
		return -1, fmt.Errorf("%w: empty diffset has no refined buffer", ErrInvalidArgument)
	}
	return denseIndex[d], nil
}

// DecodeDiffSet is the inverse of EncodeDiffSet.
func DecodeDiffSet(i int) (DiffSet, error) {
	if i < 0 || i >= DiffSetCount {
		return DiffNone, fmt.Errorf("%w: dense index %d outside [0, %d)", ErrInvalidArgument, i, DiffSetCount)
	}
	return denseOrder[i], nil
}

// AllDiffSets returns the non-empty diffsets in dense order.
func AllDiffSets() []DiffSet {
	out := make([]DiffSet, DiffSetCount)
	copy(out, denseOrder[:])
	return out
}
