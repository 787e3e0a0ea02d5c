package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/terrain-lod/internal/lod"
)

// errExportMismatch reports an export that differs from the built table.
var errExportMismatch = errors.New("export does not match table")

// tableDoc is the exported form of a lod.Table.
type tableDoc struct {
	PatchVertices int         `yaml:"patch_vertices"`
	Buffers       []bufferDoc `yaml:"buffers"`
}

// bufferDoc is one strip. DenseIndex is -1 for base buffers.
type bufferDoc struct {
	Level      int      `yaml:"level"`
	Diff       string   `yaml:"diff"`
	DenseIndex int      `yaml:"dense_index"`
	Triangles  int      `yaml:"triangles"`
	Indices    []uint32 `yaml:"indices,flow"`
}

func newBufferDoc(buf *lod.IndexBuffer) bufferDoc {
	dense := -1
	if !buf.Diff().Empty() {
		dense, _ = lod.EncodeDiffSet(buf.Diff())
	}
	return bufferDoc{
		Level:      buf.Level(),
		Diff:       buf.Diff().String(),
		DenseIndex: dense,
		Triangles:  buf.Triangles(),
		Indices:    buf.Indices(),
	}
}

func newTableDoc(t *lod.Table) tableDoc {
	doc := tableDoc{PatchVertices: t.PatchVertices()}
	for _, buf := range t.Buffers() {
		doc.Buffers = append(doc.Buffers, newBufferDoc(buf))
	}
	return doc
}

func compressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zst")
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

// writeExport encodes doc as YAML, through zstd when zst is set.
func writeExport(w io.Writer, doc tableDoc, zst bool) error {
	if !zst {
		return writeYAML(w, doc)
	}
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	if err := writeYAML(zw, doc); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func readExport(r io.Reader, zst bool) (*tableDoc, error) {
	if zst {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	var doc tableDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}
	return &doc, nil
}

// countingWriter tracks bytes written to the file.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func writeExportFile(path string, doc tableDoc) (int64, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("creating directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}
	cw := &countingWriter{w: f}
	if err := writeExport(cw, doc, compressed(path)); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("closing file: %w", err)
	}
	return cw.n, nil
}

func readExportFile(path string) (*tableDoc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()
	return readExport(f, compressed(path))
}

// compareExport checks that doc holds exactly the buffers of t.
func compareExport(doc *tableDoc, t *lod.Table) error {
	if doc.PatchVertices != t.PatchVertices() {
		return fmt.Errorf("%w: patch_vertices %d, table has %d", errExportMismatch, doc.PatchVertices, t.PatchVertices())
	}
	bufs := t.Buffers()
	if len(doc.Buffers) != len(bufs) {
		return fmt.Errorf("%w: %d buffers, table has %d", errExportMismatch, len(doc.Buffers), len(bufs))
	}
	for i, want := range bufs {
		got := doc.Buffers[i]
		if got.Level != want.Level() || got.Diff != want.Diff().String() {
			return fmt.Errorf("%w: buffer %d is level %d diff %s, want level %d diff %s",
				errExportMismatch, i, got.Level, got.Diff, want.Level(), want.Diff())
		}
		if got.Triangles != want.Triangles() || !slices.Equal(got.Indices, want.Indices()) {
			return fmt.Errorf("%w: level %d diff %s indices differ", errExportMismatch, want.Level(), want.Diff())
		}
	}
	return nil
}
