package lod

import "fmt"

// cell is one quad of the sampled grid. A split side carries a midpoint
// vertex at half the stride because the neighbour across it is one level
// finer.
type cell struct {
	g        grid
	row, col int // lower-left vertex
	split    DiffSet
}

func (c cell) at(dr, dc int) uint32 {
	return c.g.index(c.row+dr, c.col+dc)
}

func (c cell) bottomLeft() uint32  { return c.at(0, 0) }
func (c cell) bottomRight() uint32 { return c.at(0, c.g.stride) }
func (c cell) topRight() uint32    { return c.at(c.g.stride, c.g.stride) }
func (c cell) topLeft() uint32     { return c.at(c.g.stride, 0) }

// mid returns the midpoint of the side facing dir.
func (c cell) mid(dir Direction) uint32 {
	s, h := c.g.stride, c.g.stride/2
	switch dir {
	case Left:
		return c.at(h, 0)
	case Right:
		return c.at(h, s)
	case Up:
		return c.at(s, h)
	default:
		return c.at(0, h)
	}
}

// corner returns the vertex shared by the sides facing a and b.
func (c cell) corner(a, b Direction) uint32 {
	set := NewDiffSet(a, b)
	switch {
	case set == NewDiffSet(Left, Up):
		return c.topLeft()
	case set == NewDiffSet(Up, Right):
		return c.topRight()
	case set == NewDiffSet(Right, Down):
		return c.bottomRight()
	default:
		return c.bottomLeft()
	}
}

// ring walks the cell boundary counter-clockwise from the bottom-left corner,
// including midpoints of split sides.
func (c cell) ring() []uint32 {
	r := make([]uint32, 0, 8)
	r = append(r, c.bottomLeft())
	if c.split.Has(Down) {
		r = append(r, c.mid(Down))
	}
	r = append(r, c.bottomRight())
	if c.split.Has(Right) {
		r = append(r, c.mid(Right))
	}
	r = append(r, c.topRight())
	if c.split.Has(Up) {
		r = append(r, c.mid(Up))
	}
	r = append(r, c.topLeft())
	if c.split.Has(Left) {
		r = append(r, c.mid(Left))
	}
	return r
}

// fan triangulates a convex ring from pivot. Pivot must not be collinear with
// any ring edge it does not touch.
func fan(ring []uint32, pivot uint32) []tri {
	at := -1
	for i, v := range ring {
		if v == pivot {
			at = i
			break
		}
	}
	if at < 0 {
		return nil
	}
	n := len(ring)
	out := make([]tri, 0, n-2)
	for i := 1; i+1 < n; i++ {
		out = append(out, tri{pivot, ring[(at+i)%n], ring[(at+i+1)%n]})
	}
	return out
}

func without(ring []uint32, v uint32) []uint32 {
	out := make([]uint32, 0, len(ring))
	for _, r := range ring {
		if r != v {
			out = append(out, r)
		}
	}
	return out
}

// cellRule is one entry of the triangulation table.
type cellRule struct {
	name  string
	match func(split DiffSet) bool
	build func(c cell) []tri
}

// quadRule keeps the base triangulation. The diagonal runs from top-left to
// bottom-right in every cell.
var quadRule = cellRule{
	name:  "quad",
	match: func(split DiffSet) bool { return split.Empty() },
	build: func(c cell) []tri {
		return []tri{
			{c.bottomLeft(), c.topLeft(), c.bottomRight()},
			{c.bottomRight(), c.topLeft(), c.topRight()},
		}
	},
}

// edgeRule fans a cell with one split side from that side's midpoint.
func edgeRule(dir Direction) cellRule {
	return cellRule{
		name:  "edge " + dir.String(),
		match: func(split DiffSet) bool { return split == DiffSet(dir) },
		build: func(c cell) []tri {
			return fan(c.ring(), c.mid(dir))
		},
	}
}

// cornerRule handles a cell where two adjacent split sides meet. The corner
// triangle takes both midpoints and the shared corner; the rest of the cell
// is fanned from the opposite corner.
func cornerRule(a, b Direction) cellRule {
	return cellRule{
		name:  "corner " + a.String() + b.String(),
		match: func(split DiffSet) bool { return split == NewDiffSet(a, b) },
		build: func(c cell) []tri {
			shared := c.corner(a, b)
			far := c.corner(a.Opposite(), b.Opposite())
			out := []tri{{c.mid(a), shared, c.mid(b)}}
			return append(out, fan(without(c.ring(), shared), far)...)
		},
	}
}

// collapsedRule covers opposite or three/four split sides. That only happens
// when the patch is a single cell wide, so the whole patch becomes one fan
// from the first split midpoint.
var collapsedRule = cellRule{
	name:  "collapsed",
	match: func(split DiffSet) bool { return !split.Empty() },
	build: func(c cell) []tri {
		return fan(c.ring(), c.mid(c.split.Directions()[0]))
	},
}

// cellRules is tried in order; the first match triangulates the cell.
var cellRules = []cellRule{
	quadRule,
	edgeRule(Left),
	edgeRule(Up),
	edgeRule(Right),
	edgeRule(Down),
	cornerRule(Left, Up),
	cornerRule(Up, Right),
	cornerRule(Right, Down),
	cornerRule(Down, Left),
	collapsedRule,
}

func ruleFor(split DiffSet) cellRule {
	for _, r := range cellRules {
		if r.match(split) {
			return r
		}
	}
	return quadRule
}

// triangulate applies the matching rule and orients every triangle clockwise.
func (c cell) triangulate() ([]tri, error) {
	rule := ruleFor(c.split)
	tris := rule.build(c)
	for i, t := range tris {
		area := c.g.signedArea2(t)
		switch {
		case area == 0:
			return nil, fmt.Errorf("rule %s: zero-area triangle %v in cell (%d,%d)", rule.name, t, c.row, c.col)
		case area > 0:
			tris[i] = tri{t[0], t[2], t[1]}
		}
	}
	return tris, nil
}
