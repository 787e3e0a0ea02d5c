package debug

import (
	"github.com/Faultbox/terrain-lod/internal/lod"
)

// Vertex is a colored point for line and fill rendering.
type Vertex struct {
	X, Y, Z float32 // Position
	R, G, B float32 // Color
}

var (
	fillColor   = [3]float32{0.18, 0.32, 0.22}
	edgeColor   = [3]float32{0.75, 0.75, 0.75}
	borderColor = [3]float32{0.95, 0.8, 0.2}
	seamColor   = [3]float32{0.9, 0.25, 0.2}
)

// GridVertices returns all v×v patch vertices laid out on a size×size square
// in the XY plane, row-major so index row*v+col matches the LOD buffers.
func GridVertices(v int, size float32) []Vertex {
	if v < 2 {
		return nil
	}
	step := size / float32(v-1)
	vertices := make([]Vertex, 0, v*v)
	for row := 0; row < v; row++ {
		for col := 0; col < v; col++ {
			vertices = append(vertices, Vertex{
				float32(col) * step, float32(row) * step, 0,
				fillColor[0], fillColor[1], fillColor[2],
			})
		}
	}
	return vertices
}

// WireframeLines generates line vertices for every triangle edge of buf,
// two per edge, each edge once. Edges on the patch border are highlighted,
// and border edges on stitched sides get the seam color.
func WireframeLines(buf *lod.IndexBuffer, v int, size float32) []Vertex {
	if buf == nil || v < 2 {
		return nil
	}
	step := size / float32(v-1)
	point := func(idx uint32, color [3]float32) Vertex {
		row, col := int(idx)/v, int(idx)%v
		return Vertex{
			float32(col) * step, float32(row) * step, 0,
			color[0], color[1], color[2],
		}
	}

	seen := make(map[[2]uint32]bool)
	var vertices []Vertex
	for _, t := range lod.Triangles(buf) {
		for k := range 3 {
			a, b := t[k], t[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			if seen[[2]uint32{a, b}] {
				continue
			}
			seen[[2]uint32{a, b}] = true

			color := edgeColor
			if dir, ok := sharedEdge(a, b, v); ok {
				color = borderColor
				if buf.Diff().Has(dir) {
					color = seamColor
				}
			}
			vertices = append(vertices, point(a, color), point(b, color))
		}
	}
	return vertices
}

// sharedEdge reports the patch side both vertices lie on.
func sharedEdge(a, b uint32, v int) (lod.Direction, bool) {
	ra, ca := int(a)/v, int(a)%v
	rb, cb := int(b)/v, int(b)%v
	switch {
	case ca == 0 && cb == 0:
		return lod.Left, true
	case ca == v-1 && cb == v-1:
		return lod.Right, true
	case ra == v-1 && rb == v-1:
		return lod.Up, true
	case ra == 0 && rb == 0:
		return lod.Down, true
	}
	return 0, false
}

// Flatten packs vertices as [x, y, z, r, g, b] for upload.
func Flatten(vertices []Vertex) []float32 {
	out := make([]float32, 0, len(vertices)*6)
	for _, v := range vertices {
		out = append(out, v.X, v.Y, v.Z, v.R, v.G, v.B)
	}
	return out
}
