package lod

import "slices"

// tri holds three vertex indices in clockwise order.
type tri [3]uint32

// follows returns the vertex that completes t after the edge (a, b), if t
// contains that directed edge.
func (t tri) follows(a, b uint32) (uint32, bool) {
	for i := range 3 {
		if t[i] == a && t[(i+1)%3] == b {
			return t[(i+2)%3], true
		}
	}
	return 0, false
}

// rotate returns t starting at vertex i.
func (t tri) rotate(i int) tri {
	return tri{t[i%3], t[(i+1)%3], t[(i+2)%3]}
}

// sharesEdge reports whether t and u have two vertices in common.
func (t tri) sharesEdge(u tri) bool {
	n := 0
	for _, a := range t {
		if a == u[0] || a == u[1] || a == u[2] {
			n++
		}
	}
	return n >= 2
}

// touches reports whether t holds both a and b.
func (t tri) touches(a, b uint32) bool {
	return slices.Contains(t[:], a) && slices.Contains(t[:], b)
}

// chain orders the triangles of one cell for the strip writer. Consecutive
// triangles should share an edge, the first should continue prev and the last
// should touch exit. Breaking the chain inside the cell costs most. Ties keep
// the given order.
func chain(tris []tri, prev *tri, exit *[2]uint32) []tri {
	best := chainCost(tris, prev, exit)
	if best == 0 || len(tris) < 2 {
		return tris
	}
	out := slices.Clone(tris)
	perm := make([]tri, 0, len(tris))
	used := make([]bool, len(tris))
	var walk func()
	walk = func() {
		if len(perm) == len(tris) {
			if c := chainCost(perm, prev, exit); c < best {
				best = c
				copy(out, perm)
			}
			return
		}
		for i := range tris {
			if used[i] {
				continue
			}
			used[i] = true
			perm = append(perm, tris[i])
			walk()
			perm = perm[:len(perm)-1]
			used[i] = false
		}
	}
	walk()
	return out
}

func chainCost(order []tri, prev *tri, exit *[2]uint32) int {
	if len(order) == 0 {
		return 0
	}
	cost := 0
	if prev != nil && !prev.sharesEdge(order[0]) {
		cost++
	}
	for i := 1; i < len(order); i++ {
		if !order[i-1].sharesEdge(order[i]) {
			cost += 3
		}
	}
	if exit != nil && !order[len(order)-1].touches(exit[0], exit[1]) {
		cost++
	}
	return cost
}

// stripWriter packs triangles into one triangle strip. Triangle k of the strip
// is (s[k], s[k+1], s[k+2]) with odd k reversed. Runs that cannot continue are
// joined with degenerate triangles.
type stripWriter struct {
	indices []uint32
}

// tailEdge is the directed edge closed by the window after a strip of n
// indices ending in p, q.
func tailEdge(p, q uint32, n int) (uint32, uint32) {
	if (n-2)%2 == 1 {
		return q, p
	}
	return p, q
}

// next returns the directed edge the next appended vertex would close.
func (w *stripWriter) next() (a, b uint32, ok bool) {
	n := len(w.indices)
	if n < 2 {
		return 0, 0, false
	}
	a, b = tailEdge(w.indices[n-2], w.indices[n-1], n)
	return a, b, true
}

// add appends t. lookahead, when non-nil, decides which edge of t the strip
// leaves open: the rotation of a new run, or whether a continued run repeats
// its second to last vertex so the next window pivots on it.
func (w *stripWriter) add(t tri, lookahead *tri) {
	if a, b, ok := w.next(); ok {
		if x, ok := t.follows(a, b); ok {
			if lookahead != nil && w.swaps(x, *lookahead) {
				w.indices = append(w.indices, w.indices[len(w.indices)-2])
			}
			w.indices = append(w.indices, x)
			return
		}
	}

	start := t
	if lookahead != nil {
		// A new run puts its first vertex on an even slot, so the next
		// window is odd and closes the reversed edge (c, b).
		for r := range 3 {
			cand := t.rotate(r)
			if _, ok := lookahead.follows(cand[2], cand[1]); ok {
				start = cand
				break
			}
		}
	}
	w.restart(start)
}

// swaps reports whether lookahead can only continue once x is appended after
// a repeat of the second to last vertex. The repeat adds one degenerate window
// and leaves the rendered triangle unchanged.
func (w *stripWriter) swaps(x uint32, lookahead tri) bool {
	n := len(w.indices)
	if a, b := tailEdge(w.indices[n-1], x, n+1); hasEdge(lookahead, a, b) {
		return false
	}
	a, b := tailEdge(w.indices[n-2], x, n+2)
	return hasEdge(lookahead, a, b)
}

func hasEdge(t tri, a, b uint32) bool {
	_, ok := t.follows(a, b)
	return ok
}

// restart begins a new run with t on an even slot.
func (w *stripWriter) restart(t tri) {
	if n := len(w.indices); n > 0 {
		last := w.indices[n-1]
		w.indices = append(w.indices, last)
		if last != t[0] {
			w.indices = append(w.indices, t[0])
		}
		if len(w.indices)%2 == 1 {
			w.indices = append(w.indices, t[0])
		}
	}
	w.indices = append(w.indices, t[0], t[1], t[2])
}

// encodeStrip packs tris, in order, into a single strip.
func encodeStrip(tris []tri) []uint32 {
	w := stripWriter{indices: make([]uint32, 0, len(tris)+8)}
	for i := range tris {
		var lookahead *tri
		if i+1 < len(tris) {
			lookahead = &tris[i+1]
		}
		w.add(tris[i], lookahead)
	}
	return w.indices
}

// decodeStrip expands a strip into its non-degenerate triangles, each in its
// rendered winding.
func decodeStrip(indices []uint32) []tri {
	if len(indices) < 3 {
		return nil
	}
	out := make([]tri, 0, len(indices)-2)
	for k := 0; k+2 < len(indices); k++ {
		a, b, c := indices[k], indices[k+1], indices[k+2]
		if a == b || b == c || a == c {
			continue
		}
		if k%2 == 1 {
			a, b = b, a
		}
		out = append(out, tri{a, b, c})
	}
	return out
}
