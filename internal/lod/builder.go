// Package lod builds the triangle-strip index buffers used to draw terrain
// patches at several levels of detail without cracks between neighbours.
//
// A patch is a square grid of V×V vertices. Level L samples every 2^L-th
// vertex. When a neighbour is one level finer, the shared edge of the coarser
// patch is stitched with the neighbour's extra midpoints so both patches
// agree on every vertex of the seam.
package lod

import (
	"fmt"
	"slices"
)

const (
	// MaxLevel is the coarsest level of detail.
	MaxLevel = 4
	// LevelCount is the number of levels, 0 through MaxLevel.
	LevelCount = MaxLevel + 1

	// DefaultPatchVertices is the per-side vertex count used by the terrain.
	DefaultPatchVertices = 17
	// MinPatchCells keeps at least one cell at MaxLevel.
	MinPatchCells = 1 << MaxLevel
	// MaxPatchCells bounds the per-patch grid.
	MaxPatchCells = 1024
)

// IndexBuffer is one triangle strip over the patch vertex grid. Its contents
// are fixed once built; accessors hand out copies.
type IndexBuffer struct {
	level     int
	diff      DiffSet
	indices   []uint32
	triangles int    // non-degenerate triangles in the strip
	handle    uint32 // uploaded buffer object, 0 when not uploaded
}

// Level returns the level of detail the strip samples.
func (b *IndexBuffer) Level() int { return b.level }

// Diff returns the stitched edges.
func (b *IndexBuffer) Diff() DiffSet { return b.diff }

// Indices returns a copy of the strip.
func (b *IndexBuffer) Indices() []uint32 { return slices.Clone(b.indices) }

// Len is the number of indices in the strip.
func (b *IndexBuffer) Len() int { return len(b.indices) }

// Triangles is the number of non-degenerate triangles in the strip.
func (b *IndexBuffer) Triangles() int { return b.triangles }

// Handle is the uploaded buffer object, 0 when the buffer is not uploaded.
func (b *IndexBuffer) Handle() uint32 { return b.handle }

// Uint16 returns the indices narrowed for 16-bit index formats.
func (b *IndexBuffer) Uint16() ([]uint16, error) {
	out := make([]uint16, len(b.indices))
	for i, idx := range b.indices {
		if idx > 0xFFFF {
			return nil, fmt.Errorf("%w: index %d at %d", ErrIndexOverflow, idx, i)
		}
		out[i] = uint16(idx)
	}
	return out, nil
}

// ValidatePatchVertices checks that v-1 is a power of two large enough to
// hold every level.
func ValidatePatchVertices(v int) error {
	n := v - 1
	if n < MinPatchCells || n > MaxPatchCells || n&(n-1) != 0 {
		return fmt.Errorf("%w: %d (want 2^k+1 between %d and %d)", ErrInvalidGridSize, v, MinPatchCells+1, MaxPatchCells+1)
	}
	return nil
}

// grid describes the sampled vertices of one level.
type grid struct {
	v      int // vertices per side
	stride int
	cells  int // cells per side
}

func newGrid(v, level int) (grid, error) {
	if err := ValidatePatchVertices(v); err != nil {
		return grid{}, err
	}
	if level < 0 || level > MaxLevel {
		return grid{}, fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	return grid{
		v:      v,
		stride: 1 << level,
		cells:  (v - 1) >> level,
	}, nil
}

func (g grid) index(row, col int) uint32 {
	return uint32(row*g.v + col)
}

func (g grid) coords(idx uint32) (row, col int) {
	return int(idx) / g.v, int(idx) % g.v
}

// signedArea2 is twice the signed area of t in (col, row) space. Clockwise
// triangles are negative.
func (g grid) signedArea2(t tri) int {
	ar, ac := g.coords(t[0])
	br, bc := g.coords(t[1])
	cr, cc := g.coords(t[2])
	return (bc-ac)*(cr-ar) - (br-ar)*(cc-ac)
}

// cell returns cell (i, j), column i and row j, with the sides on flagged
// patch edges split.
func (g grid) cell(i, j int, d DiffSet) cell {
	var split DiffSet
	if i == 0 && d.Has(Left) {
		split |= DiffSet(Left)
	}
	if i == g.cells-1 && d.Has(Right) {
		split |= DiffSet(Right)
	}
	if j == 0 && d.Has(Down) {
		split |= DiffSet(Down)
	}
	if j == g.cells-1 && d.Has(Up) {
		split |= DiffSet(Up)
	}
	return cell{g: g, row: j * g.stride, col: i * g.stride, split: split}
}

// triangles walks the cell rows in serpentine order so consecutive cells
// share an edge and the strip rarely breaks. Within a cell the triangles are
// chained from the side the walk enters through to the side it leaves by.
func (g grid) triangles(d DiffSet) ([]tri, error) {
	out := make([]tri, 0, 2*g.cells*g.cells+4*g.cells)
	for j := 0; j < g.cells; j++ {
		rightward := j%2 == 0
		for k := 0; k < g.cells; k++ {
			i := k
			if !rightward {
				i = g.cells - 1 - k
			}
			c := g.cell(i, j, d)
			tris, err := c.triangulate()
			if err != nil {
				return nil, err
			}
			if !rightward {
				slices.Reverse(tris)
			}
			var prev *tri
			if len(out) > 0 {
				last := out[len(out)-1]
				prev = &last
			}
			out = append(out, chain(tris, prev, c.exit(rightward, k == g.cells-1))...)
		}
	}
	return out, nil
}

// exit returns the side the serpentine walk leaves c through, or nil for the
// final cell.
func (c cell) exit(rightward, lastInRow bool) *[2]uint32 {
	switch {
	case !lastInRow && rightward:
		return &[2]uint32{c.bottomRight(), c.topRight()}
	case !lastInRow:
		return &[2]uint32{c.bottomLeft(), c.topLeft()}
	case c.row+c.g.stride < c.g.v-1:
		return &[2]uint32{c.topLeft(), c.topRight()}
	}
	return nil
}

func (g grid) buffer(level int, d DiffSet) (*IndexBuffer, error) {
	tris, err := g.triangles(d)
	if err != nil {
		return nil, err
	}
	return &IndexBuffer{
		level:     level,
		diff:      d,
		indices:   encodeStrip(tris),
		triangles: len(tris),
	}, nil
}

// BuildBaseBuffer builds the uniform strip for level.
func BuildBaseBuffer(v, level int) (*IndexBuffer, error) {
	g, err := newGrid(v, level)
	if err != nil {
		return nil, err
	}
	return g.buffer(level, DiffNone)
}

// BuildRefinedBuffer builds the strip for level with the edges in d stitched
// to a neighbour at level-1.
func BuildRefinedBuffer(v, level int, d DiffSet) (*IndexBuffer, error) {
	if level < 1 || level > MaxLevel {
		return nil, fmt.Errorf("%w: %d (refined buffers exist for 1..%d)", ErrInvalidLevel, level, MaxLevel)
	}
	if !d.Valid() || d.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDiffSet, d)
	}
	g, err := newGrid(v, level)
	if err != nil {
		return nil, err
	}
	return g.buffer(level, d)
}
