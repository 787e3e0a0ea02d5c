package debug

import (
	"testing"

	"github.com/Faultbox/terrain-lod/internal/lod"
)

func TestGridVertices(t *testing.T) {
	const v = 17
	vertices := GridVertices(v, 16)
	if len(vertices) != v*v {
		t.Fatalf("got %d vertices, want %d", len(vertices), v*v)
	}
	// Index row*v+col sits at (col, row).
	last := vertices[3*v+5]
	if last.X != 5 || last.Y != 3 {
		t.Errorf("vertex 3*v+5 at (%v, %v), want (5, 3)", last.X, last.Y)
	}
	if GridVertices(1, 16) != nil {
		t.Error("degenerate grid should produce no vertices")
	}
}

func countColor(vertices []Vertex, color [3]float32) int {
	n := 0
	for _, v := range vertices {
		if v.R == color[0] && v.G == color[1] && v.B == color[2] {
			n++
		}
	}
	return n
}

func TestWireframeLinesBase(t *testing.T) {
	buf, err := lod.BuildBaseBuffer(17, lod.MaxLevel)
	if err != nil {
		t.Fatal(err)
	}
	lines := WireframeLines(buf, 17, 1)
	// Four sides and the diagonal.
	if len(lines) != 10 {
		t.Fatalf("got %d line vertices, want 10", len(lines))
	}
	if n := countColor(lines, borderColor); n != 8 {
		t.Errorf("%d border vertices, want 8", n)
	}
	if n := countColor(lines, edgeColor); n != 2 {
		t.Errorf("%d interior vertices, want 2", n)
	}
}

func TestWireframeLinesStitched(t *testing.T) {
	buf, err := lod.BuildRefinedBuffer(17, lod.MaxLevel, lod.DiffAll)
	if err != nil {
		t.Fatal(err)
	}
	lines := WireframeLines(buf, 17, 1)
	// Eight half sides plus five fan spokes.
	if len(lines) != 26 {
		t.Fatalf("got %d line vertices, want 26", len(lines))
	}
	if n := countColor(lines, seamColor); n != 16 {
		t.Errorf("%d seam vertices, want 16", n)
	}
}

func TestWireframeLinesNil(t *testing.T) {
	if WireframeLines(nil, 17, 1) != nil {
		t.Error("expected no lines for a nil buffer")
	}
}

func TestFlatten(t *testing.T) {
	out := Flatten([]Vertex{{1, 2, 3, 0.1, 0.2, 0.3}, {4, 5, 6, 0.4, 0.5, 0.6}})
	if len(out) != 12 || out[0] != 1 || out[6] != 4 || out[11] != 0.6 {
		t.Errorf("Flatten = %v", out)
	}
}
