package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/terrain-lod/internal/lod"
)

func testTable(t *testing.T) *lod.Table {
	t.Helper()
	table, err := lod.BuildIndexTable(17, lod.WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("BuildIndexTable: %v", err)
	}
	return table
}

func TestNewBufferDoc(t *testing.T) {
	table := testTable(t)

	base, _ := table.Get(3, lod.DiffNone)
	if doc := newBufferDoc(base); doc.DenseIndex != -1 || doc.Diff != "None" {
		t.Errorf("base buffer doc = %+v", doc)
	}

	buf, _ := table.Get(2, lod.NewDiffSet(lod.Left, lod.Up))
	doc := newBufferDoc(buf)
	if doc.DenseIndex != 4 || doc.Diff != "Left|Up" || doc.Level != 2 {
		t.Errorf("refined buffer doc = level %d diff %s dense %d", doc.Level, doc.Diff, doc.DenseIndex)
	}
}

func TestDumpYAML(t *testing.T) {
	table := testTable(t)
	buf, _ := table.Get(lod.MaxLevel, lod.DiffNone)

	var out bytes.Buffer
	if err := writeYAML(&out, newBufferDoc(buf)); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"level: 4", "diff: None", "triangles: 2", "indices: [0, 272, 16, 288]"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("dump missing %q:\n%s", want, out.String())
		}
	}
}

func TestExportRoundTrip(t *testing.T) {
	table := testTable(t)

	for _, zst := range []bool{false, true} {
		var out bytes.Buffer
		if err := writeExport(&out, newTableDoc(table), zst); err != nil {
			t.Fatalf("zst=%v: writeExport: %v", zst, err)
		}
		doc, err := readExport(&out, zst)
		if err != nil {
			t.Fatalf("zst=%v: readExport: %v", zst, err)
		}
		if err := compareExport(doc, table); err != nil {
			t.Errorf("zst=%v: %v", zst, err)
		}
	}
}

func TestExportFile(t *testing.T) {
	table := testTable(t)
	dir := t.TempDir()

	plain := filepath.Join(dir, "table.yaml")
	packed := filepath.Join(dir, "nested", "table.yaml.zst")

	plainSize, err := writeExportFile(plain, newTableDoc(table))
	if err != nil {
		t.Fatal(err)
	}
	packedSize, err := writeExportFile(packed, newTableDoc(table))
	if err != nil {
		t.Fatal(err)
	}
	if packedSize >= plainSize {
		t.Errorf("zstd export is %d bytes, plain is %d", packedSize, plainSize)
	}

	for _, path := range []string{plain, packed} {
		doc, err := readExportFile(path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if err := compareExport(doc, table); err != nil {
			t.Errorf("%s: %v", path, err)
		}
	}
}

func TestCompareExportMismatch(t *testing.T) {
	table := testTable(t)

	doc := newTableDoc(table)
	doc.Buffers[7].Indices = append([]uint32(nil), doc.Buffers[7].Indices...)
	doc.Buffers[7].Indices[0]++
	if err := compareExport(&doc, table); !errors.Is(err, errExportMismatch) {
		t.Errorf("expected errExportMismatch, got %v", err)
	}

	other := newTableDoc(table)
	other.PatchVertices = 33
	if err := compareExport(&other, table); !errors.Is(err, errExportMismatch) {
		t.Errorf("expected errExportMismatch, got %v", err)
	}

	short := newTableDoc(table)
	short.Buffers = short.Buffers[:10]
	if err := compareExport(&short, table); !errors.Is(err, errExportMismatch) {
		t.Errorf("expected errExportMismatch, got %v", err)
	}
}

func TestCompressed(t *testing.T) {
	if !compressed("a/table.yaml.zst") || !compressed("T.ZST") || compressed("table.yaml") {
		t.Error("unexpected compressed() result")
	}
}
