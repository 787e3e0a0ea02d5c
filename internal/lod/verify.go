package lod

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNotWatertight reports a buffer that does not tile its patch exactly.
var ErrNotWatertight = errors.New("buffer is not watertight")

// ErrSeamMismatch reports an edge whose vertices differ from the neighbour's.
var ErrSeamMismatch = errors.New("seam vertices do not match")

// Triangles returns the non-degenerate triangles of a strip in drawn winding.
func Triangles(buf *IndexBuffer) [][3]uint32 {
	tris := decodeStrip(buf.indices)
	out := make([][3]uint32, len(tris))
	for i, t := range tris {
		out[i] = t
	}
	return out
}

// ExpectedTriangles is the triangle count of a (level, d) buffer: two per
// cell plus one per stitched midpoint.
func ExpectedTriangles(v, level int, d DiffSet) int {
	n := (v - 1) >> level
	return 2*n*n + n*d.Len()
}

// CheckTiling verifies that buf covers the v×v patch exactly once: every
// triangle is clockwise and non-degenerate, interior edges are shared by two
// triangles in opposite directions and only border edges stand alone. A
// crack or T-junction leaves an interior edge without its twin.
func CheckTiling(buf *IndexBuffer, v int) error {
	if v < 2 {
		return fmt.Errorf("%w: %d", ErrInvalidGridSize, v)
	}
	g := grid{v: v}
	limit := uint32(v * v)
	for i, idx := range buf.indices {
		if idx >= limit {
			return fmt.Errorf("%w: index %d at %d exceeds %d", ErrNotWatertight, idx, i, limit-1)
		}
	}

	tris := decodeStrip(buf.indices)
	if len(tris) != buf.triangles {
		return fmt.Errorf("%w: strip holds %d triangles, buffer reports %d", ErrNotWatertight, len(tris), buf.triangles)
	}

	half := make(map[[2]uint32]int, 3*len(tris))
	area := 0
	for _, t := range tris {
		a := g.signedArea2(t)
		if a == 0 {
			return fmt.Errorf("%w: zero-area triangle %v", ErrNotWatertight, t)
		}
		if a > 0 {
			return fmt.Errorf("%w: counter-clockwise triangle %v", ErrNotWatertight, t)
		}
		area -= a
		for k := range 3 {
			e := [2]uint32{t[k], t[(k+1)%3]}
			half[e]++
			if half[e] > 1 {
				return fmt.Errorf("%w: edge %v used twice in the same direction", ErrNotWatertight, e)
			}
		}
	}
	if want := 2 * (v - 1) * (v - 1); area != want {
		return fmt.Errorf("%w: covered area %d, want %d", ErrNotWatertight, area/2, want/2)
	}

	for e := range half {
		if half[[2]uint32{e[1], e[0]}] > 0 {
			continue
		}
		if !g.onBorder(e[0], e[1]) {
			r0, c0 := g.coords(e[0])
			r1, c1 := g.coords(e[1])
			return fmt.Errorf("%w: open edge (%d,%d)-(%d,%d)", ErrNotWatertight, r0, c0, r1, c1)
		}
	}
	return nil
}

// onBorder reports whether both vertices lie on the same patch edge.
func (g grid) onBorder(a, b uint32) bool {
	for _, dir := range Directions {
		if g.onEdge(a, dir) && g.onEdge(b, dir) {
			return true
		}
	}
	return false
}

func (g grid) onEdge(idx uint32, dir Direction) bool {
	row, col := g.coords(idx)
	switch dir {
	case Left:
		return col == 0
	case Right:
		return col == g.v-1
	case Up:
		return row == g.v-1
	default:
		return row == 0
	}
}

// EdgeVertices returns the vertices buf uses on edge dir, ordered by row for
// Left and Right and by column for Up and Down. A v below 2 has no edges.
func EdgeVertices(buf *IndexBuffer, v int, dir Direction) []uint32 {
	if v < 2 {
		return nil
	}
	g := grid{v: v}
	seen := make(map[uint32]bool)
	var out []uint32
	for _, t := range decodeStrip(buf.indices) {
		for _, idx := range t {
			if !seen[idx] && g.onEdge(idx, dir) {
				seen[idx] = true
				out = append(out, idx)
			}
		}
	}
	// Along a vertical edge the index grows with the row, along a horizontal
	// one with the column, so a plain sort orders both.
	slices.Sort(out)
	return out
}

// CheckSeams verifies boundary compatibility for every refined buffer: a
// flagged edge matches the base buffer one level finer, an unflagged edge
// matches the base buffer of its own level.
func CheckSeams(t *Table) error {
	v := t.PatchVertices()
	for level := 1; level <= MaxLevel; level++ {
		for _, d := range denseOrder {
			buf, err := t.Get(level, d)
			if err != nil {
				return err
			}
			for _, dir := range Directions {
				ref := t.base[level]
				if d.Has(dir) {
					ref = t.base[level-1]
				}
				got := EdgeVertices(buf, v, dir)
				want := EdgeVertices(ref, v, dir)
				if !slices.Equal(got, want) {
					return fmt.Errorf("%w: level %d diff %s edge %s: %d vertices, want %d",
						ErrSeamMismatch, level, d, dir, len(got), len(want))
				}
			}
		}
	}
	return nil
}

// CheckTable runs CheckTiling and the triangle count on every buffer, then
// CheckSeams.
func CheckTable(t *Table) error {
	v := t.PatchVertices()
	for _, buf := range t.Buffers() {
		if err := CheckTiling(buf, v); err != nil {
			return fmt.Errorf("level %d diff %s: %w", buf.level, buf.diff, err)
		}
		if want := ExpectedTriangles(v, buf.level, buf.diff); buf.triangles != want {
			return fmt.Errorf("%w: level %d diff %s has %d triangles, want %d",
				ErrNotWatertight, buf.level, buf.diff, buf.triangles, want)
		}
	}
	return CheckSeams(t)
}
