// Package debug provides debug visualization utilities for terrain patches.
package debug

import (
	"fmt"

	"github.com/Faultbox/terrain-lod/internal/lod"
)

// Command is one browser action.
type Command int

const (
	CmdNone Command = iota
	CmdToggle
	CmdLevelUp   // coarser
	CmdLevelDown // finer
	CmdDiffNext
	CmdDiffPrev
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdToggle:
		return "toggle"
	case CmdLevelUp:
		return "level-up"
	case CmdLevelDown:
		return "level-down"
	case CmdDiffNext:
		return "diff-next"
	case CmdDiffPrev:
		return "diff-prev"
	}
	return "none"
}

// Browser steps through every (level, diffset) buffer of a table.
type Browser struct {
	table   *lod.Table
	enabled bool
	level   int
	diff    int // 0 = none, i+1 = dense index i
}

// NewBrowser creates a disabled browser at level 0 with no stitched edges.
func NewBrowser(t *lod.Table) *Browser {
	return &Browser{table: t}
}

// SetState jumps to (level, d) and enables browsing.
func (b *Browser) SetState(level int, d lod.DiffSet) error {
	if _, err := b.table.Lookup(level, d); err != nil {
		return err
	}
	b.level = level
	b.diff = 0
	if !d.Empty() {
		i, err := lod.EncodeDiffSet(d)
		if err != nil {
			return err
		}
		b.diff = i + 1
	}
	b.enabled = true
	return nil
}

// Apply runs cmd and reports whether the selection changed. Only CmdToggle
// has an effect while browsing is disabled.
func (b *Browser) Apply(cmd Command) bool {
	if cmd == CmdToggle {
		b.enabled = !b.enabled
		return true
	}
	if !b.enabled {
		return false
	}

	level, diff := b.level, b.diff
	switch cmd {
	case CmdLevelUp:
		level++
	case CmdLevelDown:
		level--
	case CmdDiffNext:
		diff++
	case CmdDiffPrev:
		diff--
	default:
		return false
	}

	diff = clamp(diff, 0, lod.DiffSetCount)
	if diff == 0 {
		level = clamp(level, 0, lod.MaxLevel)
	} else {
		// Level 0 has no finer neighbour to stitch to.
		level = clamp(level, 1, lod.MaxLevel)
	}

	changed := level != b.level || diff != b.diff
	b.level, b.diff = level, diff
	return changed
}

// Enabled reports whether browsing is on.
func (b *Browser) Enabled() bool {
	return b.enabled
}

// Level returns the selected level.
func (b *Browser) Level() int {
	return b.level
}

// Diff returns the selected diffset. It is DiffNone while browsing is off.
func (b *Browser) Diff() lod.DiffSet {
	if !b.enabled || b.diff == 0 {
		return lod.DiffNone
	}
	d, _ := lod.DecodeDiffSet(b.diff - 1)
	return d
}

// Current returns the selected buffer.
func (b *Browser) Current() *lod.IndexBuffer {
	buf, err := b.table.Get(b.level, b.Diff())
	if err != nil {
		// Apply keeps the state valid.
		panic(err)
	}
	return buf
}

// Label describes the selection for window titles and logs.
func (b *Browser) Label() string {
	buf := b.Current()
	mode := "base"
	if b.enabled {
		mode = "browse"
	}
	return fmt.Sprintf("[%s] level %d diff %s (%d triangles, %d indices)",
		mode, b.level, b.Diff(), buf.Triangles(), buf.Len())
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
