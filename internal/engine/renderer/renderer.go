// Package renderer provides OpenGL rendering of terrain patches.
package renderer

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/terrain-lod/internal/engine/debug"
	"github.com/Faultbox/terrain-lod/internal/lod"
	"github.com/Faultbox/terrain-lod/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width         int
	Height        int
	PatchVertices int
	PatchSize     float32 // world units per patch side
}

// Renderer draws one patch from a shared vertex grid and an index buffer.
type Renderer struct {
	config Config
	log    *zap.Logger

	program uint32
	mvpLoc  int32
	proj    mgl32.Mat4
	view    mgl32.Mat4

	// Patch vertex grid; index buffers are bound per draw
	gridVAO uint32
	gridVBO uint32

	lineVAO   uint32
	lineVBO   uint32
	lineCount int32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	if cfg.PatchSize == 0 {
		cfg.PatchSize = 1
	}
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
		view:   mgl32.Ident4(),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.FrontFace(gl.CW)
	gl.CullFace(gl.BACK)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	var err error
	r.program, err = createShaderProgram()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	r.mvpLoc = gl.GetUniformLocation(r.program, gl.Str("uMVP\x00"))

	r.createGrid()
	r.createLines()
	r.Resize(cfg.Width, cfg.Height)

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	for _, vao := range []*uint32{&r.gridVAO, &r.lineVAO} {
		if *vao != 0 {
			gl.DeleteVertexArrays(1, vao)
		}
	}
	for _, vbo := range []*uint32{&r.gridVBO, &r.lineVBO} {
		if *vbo != 0 {
			gl.DeleteBuffers(1, vbo)
		}
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
}

// Resize handles window resize and keeps the patch square on screen.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.proj = Projection(width, height, r.config.PatchSize)
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Projection maps the patch square, plus a margin, onto the viewport without
// stretching it.
func Projection(width, height int, size float32) mgl32.Mat4 {
	margin := size * 0.05
	left, right := -margin, size+margin
	bottom, top := -margin, size+margin

	aspect := float32(width) / float32(height)
	if aspect > 1 {
		extra := (right - left) * (aspect - 1) / 2
		left, right = left-extra, right+extra
	} else if aspect < 1 {
		extra := (top - bottom) * (1/aspect - 1) / 2
		bottom, top = bottom-extra, top+extra
	}
	return mgl32.Ortho2D(left, right, bottom, top)
}

// SetView sets the camera transform applied before the projection.
func (r *Renderer) SetView(view mgl32.Mat4) {
	r.view = view
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(r.program)
	mvp := r.proj.Mul4(r.view)
	gl.UniformMatrix4fv(r.mvpLoc, 1, false, &mvp[0])
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// DrawPatch draws buf as a filled triangle strip. The buffer must have been
// uploaded by an IndexUploader.
func (r *Renderer) DrawPatch(buf *lod.IndexBuffer, indexType uint32) {
	if buf == nil || buf.Handle() == 0 {
		return
	}
	gl.BindVertexArray(r.gridVAO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf.Handle())
	gl.DrawElements(gl.TRIANGLE_STRIP, int32(buf.Len()), indexType, nil)
	gl.BindVertexArray(0)
}

// SetWireframe replaces the line overlay.
func (r *Renderer) SetWireframe(lines []debug.Vertex) {
	r.lineCount = int32(len(lines))
	if len(lines) == 0 {
		return
	}
	data := debug.Flatten(lines)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// DrawWireframe draws the line overlay.
func (r *Renderer) DrawWireframe() {
	if r.lineCount == 0 {
		return
	}
	gl.BindVertexArray(r.lineVAO)
	gl.DrawArrays(gl.LINES, 0, r.lineCount)
	gl.BindVertexArray(0)
}

// ReadPixels returns the framebuffer as RGBA, bottom row first.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}

func (r *Renderer) createGrid() {
	data := debug.Flatten(debug.GridVertices(r.config.PatchVertices, r.config.PatchSize))
	r.gridVAO, r.gridVBO = newVertexArray(data, gl.STATIC_DRAW)
	r.log.Debug("patch grid created",
		zap.Int("vertices", len(data)/6),
		zap.Uint32("vao", r.gridVAO),
	)
}

func (r *Renderer) createLines() {
	r.lineVAO, r.lineVBO = newVertexArray(nil, gl.DYNAMIC_DRAW)
}

// newVertexArray creates a VAO over [x, y, z, r, g, b] vertices.
func newVertexArray(data []float32, usage uint32) (vao, vbo uint32) {
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), usage)
	}

	// Position attribute (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 6*4, nil)
	gl.EnableVertexAttribArray(0)

	// Color attribute (location = 1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 6*4, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return vao, vbo
}

func createShaderProgram() (uint32, error) {
	vertexShaderSource := `
		#version 410 core

		layout (location = 0) in vec3 aPos;
		layout (location = 1) in vec3 aColor;

		uniform mat4 uMVP;

		out vec3 vertexColor;

		void main() {
			gl_Position = uMVP * vec4(aPos, 1.0);
			vertexColor = aColor;
		}
	` + "\x00"

	fragmentShaderSource := `
		#version 410 core

		in vec3 vertexColor;
		out vec4 FragColor;

		void main() {
			FragColor = vec4(vertexColor, 1.0);
		}
	` + "\x00"

	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link failed: %s", log)
	}

	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %s", log)
	}

	return shader, nil
}
