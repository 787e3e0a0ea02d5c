package lod

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"go.uber.org/zap"
)

// fakeUploader records uploads and can fail after a number of them.
type fakeUploader struct {
	next     uint32
	live     map[uint32]*IndexBuffer
	failAt   int
	uploads  int
	released []uint32
}

func newFakeUploader(failAt int) *fakeUploader {
	return &fakeUploader{next: 1, live: make(map[uint32]*IndexBuffer), failAt: failAt}
}

func (f *fakeUploader) Upload(buf *IndexBuffer) (uint32, error) {
	f.uploads++
	if f.failAt > 0 && f.uploads == f.failAt {
		return 0, errors.New("out of video memory")
	}
	h := f.next
	f.next++
	f.live[h] = buf
	return h, nil
}

func (f *fakeUploader) Release(h uint32) {
	delete(f.live, h)
	f.released = append(f.released, h)
}

func TestBuildIndexTable(t *testing.T) {
	table, err := BuildIndexTable(DefaultPatchVertices, WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("BuildIndexTable: %v", err)
	}
	if table.PatchVertices() != DefaultPatchVertices {
		t.Errorf("PatchVertices() = %d", table.PatchVertices())
	}

	st := table.Stats()
	if st.Buffers != LevelCount+MaxLevel*DiffSetCount {
		t.Errorf("table holds %d buffers, want %d", st.Buffers, LevelCount+MaxLevel*DiffSetCount)
	}
	if len(table.Buffers()) != st.Buffers {
		t.Errorf("Buffers() returned %d entries", len(table.Buffers()))
	}

	if err := CheckTable(table); err != nil {
		t.Errorf("CheckTable: %v", err)
	}
}

func TestTableMatchesBuilders(t *testing.T) {
	const v = 33
	table, err := BuildIndexTable(v, WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}

	for level := range LevelCount {
		got, err := table.Get(level, DiffNone)
		if err != nil {
			t.Fatalf("Get(%d, None): %v", level, err)
		}
		want, err := BuildBaseBuffer(v, level)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(got.indices, want.indices) {
			t.Errorf("level %d base buffer differs from BuildBaseBuffer", level)
		}
	}

	for level := 1; level <= MaxLevel; level++ {
		for _, d := range AllDiffSets() {
			got, err := GetIndexBuffer(table, level, d)
			if err != nil {
				t.Fatalf("GetIndexBuffer(%d, %s): %v", level, d, err)
			}
			if got.level != level || got.diff != d {
				t.Errorf("GetIndexBuffer(%d, %s) returned (%d, %s)", level, d, got.level, got.diff)
			}
			want, err := BuildRefinedBuffer(v, level, d)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got.indices, want.indices) {
				t.Errorf("level %d diff %s differs from BuildRefinedBuffer", level, d)
			}
		}
	}
}

func TestTableGetIsStable(t *testing.T) {
	table, err := BuildIndexTable(17, WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	a, _ := table.Get(3, NewDiffSet(Left, Down))
	b, _ := table.Get(3, NewDiffSet(Down, Left))
	if a != b {
		t.Error("repeated Get returned different buffers")
	}
}

func TestTableGetReturnsCopies(t *testing.T) {
	table, err := BuildIndexTable(17, WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	buf, err := table.Get(1, NewDiffSet(Left))
	if err != nil {
		t.Fatal(err)
	}
	want := buf.Indices()
	got := buf.Indices()
	got[0] = 9999
	again, _ := table.Get(1, NewDiffSet(Left))
	if !slices.Equal(again.Indices(), want) {
		t.Error("writing to Indices() changed the table")
	}
	if again.Len() != len(want) || again.Triangles() != ExpectedTriangles(17, 1, NewDiffSet(Left)) {
		t.Errorf("Len() = %d, Triangles() = %d", again.Len(), again.Triangles())
	}
	if err := CheckTable(table); err != nil {
		t.Errorf("CheckTable: %v", err)
	}
}

func TestTableConcurrentGet(t *testing.T) {
	table, err := BuildIndexTable(17, WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}

	type key struct {
		level int
		d     DiffSet
	}
	snapshot := make(map[key]*IndexBuffer)
	for _, buf := range table.Buffers() {
		snapshot[key{buf.level, buf.diff}] = buf
	}

	invalid := []struct {
		level  int
		d      DiffSet
		target error
	}{
		{-1, DiffNone, ErrInvalidLevel},
		{MaxLevel + 1, NewDiffSet(Left), ErrInvalidLevel},
		{0, NewDiffSet(Left), ErrInvalidDiffSet},
		{2, DiffSet(0x30), ErrInvalidDiffSet},
	}

	const workers = 12
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for level := range LevelCount {
				sets := []DiffSet{DiffNone}
				if level > 0 {
					sets = append(sets, AllDiffSets()...)
				}
				for _, d := range sets {
					want := snapshot[key{level, d}]
					a, err := table.Get(level, d)
					if err != nil {
						t.Errorf("worker %d: Get(%d, %s): %v", w, level, d, err)
						continue
					}
					b, err := GetIndexBuffer(table, level, d)
					if err != nil {
						t.Errorf("worker %d: GetIndexBuffer(%d, %s): %v", w, level, d, err)
						continue
					}
					if a != want || b != want {
						t.Errorf("worker %d: (%d, %s) resolved to a different buffer", w, level, d)
					}
					if a.Level() != level || a.Diff() != d || a.Len() != len(want.indices) {
						t.Errorf("worker %d: (%d, %s) returned (%d, %s)", w, level, d, a.Level(), a.Diff())
					}
				}
			}
			for _, tt := range invalid {
				if buf, err := table.Get(tt.level, tt.d); buf != nil || !errors.Is(err, tt.target) {
					t.Errorf("worker %d: Get(%d, %#x) = %v, %v", w, tt.level, uint8(tt.d), buf, err)
				}
				if buf, err := GetIndexBuffer(table, tt.level, tt.d); buf != nil || !errors.Is(err, tt.target) {
					t.Errorf("worker %d: GetIndexBuffer(%d, %#x) = %v, %v", w, tt.level, uint8(tt.d), buf, err)
				}
			}
		}()
	}
	wg.Wait()
}

func TestTableGetErrors(t *testing.T) {
	table, err := BuildIndexTable(17, WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		level  int
		d      DiffSet
		target error
	}{
		{"stitching at the finest level", 0, NewDiffSet(Left), ErrInvalidDiffSet},
		{"negative level", -1, DiffNone, ErrInvalidLevel},
		{"level too coarse", MaxLevel + 1, NewDiffSet(Up), ErrInvalidLevel},
		{"stray bits", 2, DiffSet(0x40), ErrInvalidDiffSet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := GetIndexBuffer(table, tt.level, tt.d)
			if !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
			if buf != nil {
				t.Error("expected nil buffer on error")
			}
		})
	}
}

func TestTableLookupHandles(t *testing.T) {
	table, err := BuildIndexTable(17, WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}

	var zero Handle
	if table.Buffer(zero) != table.base[0] {
		t.Error("zero handle should select the level 0 base buffer")
	}

	seen := make(map[Handle]bool)
	for level := range LevelCount {
		sets := []DiffSet{DiffNone}
		if level > 0 {
			sets = append(sets, AllDiffSets()...)
		}
		for _, d := range sets {
			h, err := table.Lookup(level, d)
			if err != nil {
				t.Fatalf("Lookup(%d, %s): %v", level, d, err)
			}
			if seen[h] {
				t.Fatalf("Lookup(%d, %s) reused handle %v", level, d, h)
			}
			seen[h] = true
			buf := table.Buffer(h)
			if buf.level != level || buf.diff != d {
				t.Errorf("handle for (%d, %s) resolves to (%d, %s)", level, d, buf.level, buf.diff)
			}
		}
	}
	if len(seen) != LevelCount+MaxLevel*DiffSetCount {
		t.Errorf("%d distinct handles", len(seen))
	}
}

func TestBuildIndexTableInvalidSize(t *testing.T) {
	for _, v := range []int{0, 9, 18, 4097} {
		table, err := BuildIndexTable(v, WithLogger(zap.NewNop()))
		if !errors.Is(err, ErrBuildFailure) || !errors.Is(err, ErrInvalidGridSize) {
			t.Errorf("v=%d: expected ErrBuildFailure wrapping ErrInvalidGridSize, got %v", v, err)
		}
		if table != nil {
			t.Errorf("v=%d: expected no table", v)
		}
	}
}

func TestBuildIndexTableUploads(t *testing.T) {
	up := newFakeUploader(0)
	table, err := BuildIndexTable(17, WithUploader(up), WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	if len(up.live) != LevelCount+MaxLevel*DiffSetCount {
		t.Fatalf("%d live uploads", len(up.live))
	}
	for _, buf := range table.Buffers() {
		if buf.handle == 0 {
			t.Fatalf("level %d diff %s was not uploaded", buf.level, buf.diff)
		}
		if up.live[buf.handle] != buf {
			t.Errorf("handle %d does not refer to level %d diff %s", buf.handle, buf.level, buf.diff)
		}
	}

	table.Release()
	if len(up.live) != 0 {
		t.Errorf("%d uploads left after Release", len(up.live))
	}
	for _, buf := range table.Buffers() {
		if buf.handle != 0 {
			t.Errorf("level %d diff %s kept handle %d", buf.level, buf.diff, buf.handle)
		}
	}
}

func TestBuildIndexTableRollsBack(t *testing.T) {
	// Fail in the middle of the refined buffers.
	up := newFakeUploader(LevelCount + 20)
	table, err := BuildIndexTable(17, WithUploader(up), WithLogger(zap.NewNop()))
	if !errors.Is(err, ErrBuildFailure) {
		t.Fatalf("expected ErrBuildFailure, got %v", err)
	}
	if table != nil {
		t.Error("expected no table on failure")
	}
	if len(up.live) != 0 {
		t.Errorf("%d uploads leaked", len(up.live))
	}
	if len(up.released) != LevelCount+19 {
		t.Errorf("released %d handles, want %d", len(up.released), LevelCount+19)
	}
}

func TestBuildIndexTableIsIdempotent(t *testing.T) {
	a, err := BuildIndexTable(17, WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	b, err := BuildIndexTable(17, WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	ab, bb := a.Buffers(), b.Buffers()
	for i := range ab {
		if !slices.Equal(ab[i].indices, bb[i].indices) {
			t.Errorf("buffer %d differs between builds", i)
		}
	}
}

func TestReleaseWithoutUploader(t *testing.T) {
	table, err := BuildIndexTable(17, WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	table.Release()
	if _, err := table.Get(1, NewDiffSet(Left)); err != nil {
		t.Errorf("Get after Release on a CPU-only table: %v", err)
	}
}
