package renderer

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/terrain-lod/internal/lod"
)

// ErrUpload reports an OpenGL error while creating an index buffer.
var ErrUpload = errors.New("index buffer upload failed")

// IndexUploader stores LOD index buffers in GL buffer objects. It implements
// lod.Uploader and needs a current GL context.
type IndexUploader struct {
	use16 bool
}

// NewIndexUploader creates an uploader for 16-bit or 32-bit indices.
func NewIndexUploader(use16 bool) *IndexUploader {
	return &IndexUploader{use16: use16}
}

// IndexType is the element type to pass to DrawElements.
func (u *IndexUploader) IndexType() uint32 {
	if u.use16 {
		return gl.UNSIGNED_SHORT
	}
	return gl.UNSIGNED_INT
}

// Upload copies buf into a new buffer object and returns its name.
func (u *IndexUploader) Upload(buf *lod.IndexBuffer) (uint32, error) {
	if buf.Len() == 0 {
		return 0, fmt.Errorf("%w: level %d diff %s is empty", ErrUpload, buf.Level(), buf.Diff())
	}

	var (
		ptr  unsafe.Pointer
		size int
	)
	if u.use16 {
		narrow, err := buf.Uint16()
		if err != nil {
			return 0, err
		}
		ptr, size = unsafe.Pointer(&narrow[0]), len(narrow)*2
	} else {
		wide := buf.Indices()
		ptr, size = unsafe.Pointer(&wide[0]), len(wide)*4
	}

	var handle uint32
	gl.GenBuffers(1, &handle)
	// Element array bindings belong to the VAO, so upload through a copy target.
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, handle)
	gl.BufferData(gl.COPY_WRITE_BUFFER, size, ptr, gl.STATIC_DRAW)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteBuffers(1, &handle)
		return 0, fmt.Errorf("%w: level %d diff %s: GL error 0x%04x", ErrUpload, buf.Level(), buf.Diff(), code)
	}
	return handle, nil
}

// Release deletes a buffer object created by Upload.
func (u *IndexUploader) Release(handle uint32) {
	if handle != 0 {
		gl.DeleteBuffers(1, &handle)
	}
}
