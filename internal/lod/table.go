package lod

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/terrain-lod/internal/logger"
)

// Uploader copies index buffers into GPU memory.
type Uploader interface {
	// Upload returns a non-zero handle for the uploaded buffer.
	Upload(buf *IndexBuffer) (uint32, error)
	// Release frees a handle returned by Upload.
	Release(handle uint32)
}

type buildOptions struct {
	uploader Uploader
	log      *zap.Logger
}

// Option configures BuildIndexTable.
type Option func(*buildOptions)

// WithUploader uploads every buffer as it is built.
func WithUploader(u Uploader) Option {
	return func(o *buildOptions) {
		o.uploader = u
	}
}

// WithLogger overrides the package logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *buildOptions) {
		o.log = l
	}
}

// Handle refers to one buffer of a Table.
type Handle struct {
	level int8
	slot  int8 // 0 for the base buffer, dense diffset index + 1 otherwise
}

// Table holds every base and refined buffer for one patch size. It is
// immutable once returned and safe for concurrent readers.
type Table struct {
	v        int
	base     [LevelCount]*IndexBuffer
	refined  [MaxLevel][DiffSetCount]*IndexBuffer
	uploader Uploader
}

// Stats summarises a table.
type Stats struct {
	Buffers   int
	Indices   int
	Triangles int
}

// BuildIndexTable builds all 1 + MaxLevel*16 buffers for patches of v×v
// vertices. Nothing is returned unless every buffer was built and uploaded;
// on failure the uploads done so far are released.
func BuildIndexTable(v int, opts ...Option) (*Table, error) {
	o := buildOptions{log: logger.Log}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}

	if err := ValidatePatchVertices(v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildFailure, err)
	}

	t := &Table{v: v, uploader: o.uploader}
	var uploaded []uint32
	fail := func(level int, d DiffSet, err error) (*Table, error) {
		for _, h := range uploaded {
			o.uploader.Release(h)
		}
		o.log.Error("index table build failed",
			zap.Int("level", level),
			zap.Stringer("diff", d),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: level %d diff %s: %w", ErrBuildFailure, level, d, err)
	}
	finish := func(buf *IndexBuffer) error {
		if o.uploader == nil {
			return nil
		}
		h, err := o.uploader.Upload(buf)
		if err != nil {
			return err
		}
		buf.handle = h
		uploaded = append(uploaded, h)
		return nil
	}

	for level := range LevelCount {
		buf, err := BuildBaseBuffer(v, level)
		if err == nil {
			err = finish(buf)
		}
		if err != nil {
			return fail(level, DiffNone, err)
		}
		t.base[level] = buf
	}

	for level := 1; level <= MaxLevel; level++ {
		for i, d := range denseOrder {
			buf, err := BuildRefinedBuffer(v, level, d)
			if err == nil {
				err = finish(buf)
			}
			if err != nil {
				return fail(level, d, err)
			}
			t.refined[level-1][i] = buf
		}
	}

	st := t.Stats()
	o.log.Info("index table built",
		zap.Int("patch_vertices", v),
		zap.Int("buffers", st.Buffers),
		zap.Int("indices", st.Indices),
		zap.Int("triangles", st.Triangles),
		zap.Bool("uploaded", o.uploader != nil),
	)
	return t, nil
}

// PatchVertices returns the per-side vertex count the table was built for.
func (t *Table) PatchVertices() int {
	return t.v
}

// Lookup resolves (level, d) to a handle. An empty d selects the base buffer.
func (t *Table) Lookup(level int, d DiffSet) (Handle, error) {
	if level < 0 || level > MaxLevel {
		return Handle{}, fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	if !d.Valid() {
		return Handle{}, fmt.Errorf("%w: bits %#x", ErrInvalidDiffSet, uint8(d))
	}
	if d.Empty() {
		return Handle{level: int8(level)}, nil
	}
	if level == 0 {
		return Handle{}, fmt.Errorf("%w: %s at level 0 has no finer neighbour", ErrInvalidDiffSet, d)
	}
	return Handle{level: int8(level), slot: int8(denseIndex[d] + 1)}, nil
}

// Buffer returns the buffer a handle refers to.
func (t *Table) Buffer(h Handle) *IndexBuffer {
	if h.slot == 0 {
		return t.base[h.level]
	}
	return t.refined[h.level-1][h.slot-1]
}

// Get returns the buffer for a patch at level whose edges in d border a
// finer neighbour. The buffer is shared by every caller; its accessors return
// copies.
func (t *Table) Get(level int, d DiffSet) (*IndexBuffer, error) {
	h, err := t.Lookup(level, d)
	if err != nil {
		return nil, err
	}
	return t.Buffer(h), nil
}

// GetIndexBuffer is Get as a function.
func GetIndexBuffer(t *Table, level int, d DiffSet) (*IndexBuffer, error) {
	return t.Get(level, d)
}

// Buffers returns every buffer: base levels first, then refined buffers by
// level and dense diffset index.
func (t *Table) Buffers() []*IndexBuffer {
	out := make([]*IndexBuffer, 0, LevelCount+MaxLevel*DiffSetCount)
	out = append(out, t.base[:]...)
	for level := range t.refined {
		out = append(out, t.refined[level][:]...)
	}
	return out
}

// Stats sums index and triangle counts over the table.
func (t *Table) Stats() Stats {
	var st Stats
	for _, b := range t.Buffers() {
		st.Buffers++
		st.Indices += len(b.indices)
		st.Triangles += b.triangles
	}
	return st
}

// Release frees uploaded buffers and clears their handles. It must not run
// concurrently with Get or with draws of the table's buffers, and the table
// must not be used for drawing afterwards.
func (t *Table) Release() {
	if t.uploader == nil {
		return
	}
	for _, b := range t.Buffers() {
		if b.handle != 0 {
			t.uploader.Release(b.handle)
			b.handle = 0
		}
	}
}
