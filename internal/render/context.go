// Package render draws STL meshes into offscreen framebuffers, one
// context per viewer panel.
package render

import (
	"fmt"
	gomath "math"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/printforge/meshview/internal/viewer"
	"github.com/printforge/meshview/pkg/formats"
	"github.com/printforge/meshview/pkg/math"
)

// meshVertex is the vertex format uploaded to the GPU.
type meshVertex struct {
	Position [3]float32
	Normal   [3]float32
}

const vertexShaderSource = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vNormal;

void main() {
    vNormal = mat3(uModel) * aNormal;
    gl_Position = uProjection * uView * uModel * vec4(aPosition, 1.0);
}
` + "\x00"

const fragmentShaderSource = `#version 410 core
in vec3 vNormal;

uniform vec3 uLightDir;
uniform vec3 uAmbient;
uniform vec3 uDiffuse;
uniform vec3 uBaseColor;

out vec4 FragColor;

void main() {
    vec3 normal = normalize(vNormal);
    vec3 lightDir = normalize(uLightDir);
    float diff = max(dot(normal, lightDir), 0.0);
    vec3 result = (uAmbient + diff * uDiffuse) * uBaseColor;
    FragColor = vec4(result, 1.0);
}
` + "\x00"

// Context renders one viewer's mesh to an offscreen framebuffer. It
// satisfies viewer.RenderContext; all methods must run on the thread
// that owns the GL context.
type Context struct {
	// Framebuffer resources
	fbo          uint32
	colorTexture uint32
	depthRBO     uint32
	width        int32
	height       int32

	// Shader program
	shaderProgram uint32
	locModel      int32
	locView       int32
	locProjection int32
	locLightDir   int32
	locAmbient    int32
	locDiffuse    int32
	locBaseColor  int32

	// Mesh resources
	vao         uint32
	vbo         uint32
	vertexCount int32

	// Display state
	wireframe   bool
	orientation viewer.Orientation

	// Camera state
	rotationX float32 // Pitch
	rotationY float32 // Yaw
	distance  float32
	center    math.Vec3

	// Bounding box for auto-fit
	minBounds math.Vec3
	maxBounds math.Vec3

	released bool
}

// NewContext creates a render context with an offscreen framebuffer of
// the given size.
func NewContext(width, height int32) (*Context, error) {
	c := &Context{
		width:     width,
		height:    height,
		rotationX: 0.3, // Slight downward angle
		rotationY: 0.5, // Slight sideways angle
		distance:  100.0,
	}

	if err := c.createFramebuffer(); err != nil {
		return nil, fmt.Errorf("framebuffer: %w", err)
	}

	if err := c.createShaderProgram(); err != nil {
		c.destroy()
		return nil, fmt.Errorf("shader: %w", err)
	}

	return c, nil
}

func (c *Context) createFramebuffer() error {
	gl.GenFramebuffers(1, &c.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, c.fbo)

	gl.GenTextures(1, &c.colorTexture)
	gl.BindTexture(gl.TEXTURE_2D, c.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, c.width, c.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, c.colorTexture, 0)

	gl.GenRenderbuffers(1, &c.depthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, c.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, c.width, c.height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, c.depthRBO)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

func (c *Context) createShaderProgram() error {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(fragmentShader)

	c.shaderProgram = gl.CreateProgram()
	gl.AttachShader(c.shaderProgram, vertexShader)
	gl.AttachShader(c.shaderProgram, fragmentShader)
	gl.LinkProgram(c.shaderProgram)

	var status int32
	gl.GetProgramiv(c.shaderProgram, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(c.shaderProgram, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(c.shaderProgram, logLength, nil, gl.Str(log))
		return fmt.Errorf("link failed: %s", log)
	}

	c.locModel = gl.GetUniformLocation(c.shaderProgram, gl.Str("uModel\x00"))
	c.locView = gl.GetUniformLocation(c.shaderProgram, gl.Str("uView\x00"))
	c.locProjection = gl.GetUniformLocation(c.shaderProgram, gl.Str("uProjection\x00"))
	c.locLightDir = gl.GetUniformLocation(c.shaderProgram, gl.Str("uLightDir\x00"))
	c.locAmbient = gl.GetUniformLocation(c.shaderProgram, gl.Str("uAmbient\x00"))
	c.locDiffuse = gl.GetUniformLocation(c.shaderProgram, gl.Str("uDiffuse\x00"))
	c.locBaseColor = gl.GetUniformLocation(c.shaderProgram, gl.Str("uBaseColor\x00"))

	return nil
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
		return 0, fmt.Errorf("compile failed: %s", log)
	}

	return shader, nil
}

// LoadModel parses STL bytes, uploads the mesh to the GPU and fits the
// camera to it. On parse or upload failure the previous mesh stays
// displayed.
func (c *Context) LoadModel(data []byte, orientation viewer.Orientation) error {
	stl, err := formats.ParseSTL(data)
	if err != nil {
		return fmt.Errorf("parse STL: %w", err)
	}

	vertices := c.buildMesh(stl)
	if len(vertices) == 0 {
		return fmt.Errorf("no vertices in model")
	}

	c.clearMesh()
	c.uploadMesh(vertices)
	c.orientation = orientation
	c.fitCamera()

	return nil
}

// buildMesh flattens triangles into the GPU vertex format and tracks
// the bounding box. Degenerate face normals are recomputed from the
// winding, since many exporters write zero normals.
func (c *Context) buildMesh(stl *formats.STL) []meshVertex {
	c.minBounds = math.Vec3{X: 1e10, Y: 1e10, Z: 1e10}
	c.maxBounds = math.Vec3{X: -1e10, Y: -1e10, Z: -1e10}

	vertices := make([]meshVertex, 0, len(stl.Triangles)*3)
	for i := range stl.Triangles {
		tri := &stl.Triangles[i]

		normal := math.Vec3{X: tri.Normal[0], Y: tri.Normal[1], Z: tri.Normal[2]}
		if normal.Length() < 1e-6 {
			v0 := math.Vec3{X: tri.Vertices[0][0], Y: tri.Vertices[0][1], Z: tri.Vertices[0][2]}
			v1 := math.Vec3{X: tri.Vertices[1][0], Y: tri.Vertices[1][1], Z: tri.Vertices[1][2]}
			v2 := math.Vec3{X: tri.Vertices[2][0], Y: tri.Vertices[2][1], Z: tri.Vertices[2][2]}
			normal = v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
		}

		for _, v := range tri.Vertices {
			p := math.Vec3{X: v[0], Y: v[1], Z: v[2]}
			c.minBounds = c.minBounds.Min(p)
			c.maxBounds = c.maxBounds.Max(p)
			vertices = append(vertices, meshVertex{
				Position: v,
				Normal:   [3]float32{normal.X, normal.Y, normal.Z},
			})
		}
	}
	return vertices
}

func (c *Context) uploadMesh(vertices []meshVertex) {
	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)

	gl.GenBuffers(1, &c.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(unsafe.Sizeof(meshVertex{})), unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	// Position attribute (location = 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(unsafe.Sizeof(meshVertex{})), 0)
	gl.EnableVertexAttribArray(0)

	// Normal attribute (location = 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(unsafe.Sizeof(meshVertex{})), 12)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)

	c.vertexCount = int32(len(vertices))
}

// SetWireframe switches between solid and wireframe fill. Takes effect
// on the next Draw.
func (c *Context) SetWireframe(enabled bool) {
	c.wireframe = enabled
}

// Wireframe reports the current fill mode.
func (c *Context) Wireframe() bool {
	return c.wireframe
}

func (c *Context) fitCamera() {
	c.center = c.minBounds.Add(c.maxBounds).Scale(0.5)

	size := c.maxBounds.Sub(c.minBounds)
	maxSize := max(size.X, size.Y, size.Z)

	c.distance = maxSize * 2.0
	if c.distance < 10 {
		c.distance = 10
	}
}

// orientationMatrix maps the model into display space. STL files are
// printer-space, Z up; the camera is Y up. Flat lays the part on the
// virtual bed, vertical stands it on its smallest face.
func (c *Context) orientationMatrix() math.Mat4 {
	switch c.orientation {
	case viewer.Vertical:
		return math.Identity()
	default:
		return math.RotateX(-gomath.Pi / 2)
	}
}

// Draw renders the mesh to the framebuffer and returns the color
// texture ID. With no mesh loaded the cleared framebuffer is returned.
func (c *Context) Draw() uint32 {
	var prevFBO int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	var prevViewport [4]int32
	gl.GetIntegerv(gl.VIEWPORT, &prevViewport[0])

	gl.BindFramebuffer(gl.FRAMEBUFFER, c.fbo)
	gl.Viewport(0, 0, c.width, c.height)

	gl.ClearColor(0.15, 0.15, 0.2, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if c.vao == 0 || c.vertexCount == 0 {
		gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
		gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])
		return c.colorTexture
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	if c.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	gl.UseProgram(c.shaderProgram)

	aspect := float32(c.width) / float32(c.height)
	projection := math.Perspective(0.785398, aspect, 0.1, 10000.0) // 45 degrees FOV

	eye := c.cameraPosition()
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	view := math.LookAt(eye, c.center, up)

	model := c.orientationMatrix()

	gl.UniformMatrix4fv(c.locProjection, 1, false, projection.Ptr())
	gl.UniformMatrix4fv(c.locView, 1, false, view.Ptr())
	gl.UniformMatrix4fv(c.locModel, 1, false, model.Ptr())

	gl.Uniform3f(c.locLightDir, 0.5, 1.0, 0.5)
	gl.Uniform3f(c.locAmbient, 0.4, 0.4, 0.4)
	gl.Uniform3f(c.locDiffuse, 0.6, 0.6, 0.6)
	gl.Uniform3f(c.locBaseColor, 0.55, 0.65, 0.85)

	gl.BindVertexArray(c.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, c.vertexCount)
	gl.BindVertexArray(0)

	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)

	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
	gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])

	return c.colorTexture
}

func (c *Context) cameraPosition() math.Vec3 {
	cosX := float32(gomath.Cos(float64(c.rotationX)))
	sinX := float32(gomath.Sin(float64(c.rotationX)))
	cosY := float32(gomath.Cos(float64(c.rotationY)))
	sinY := float32(gomath.Sin(float64(c.rotationY)))

	return math.Vec3{
		X: c.center.X + c.distance*cosX*sinY,
		Y: c.center.Y + c.distance*sinX,
		Z: c.center.Z + c.distance*cosX*cosY,
	}
}

// HandleMouseDrag updates the orbit rotation from mouse movement.
func (c *Context) HandleMouseDrag(deltaX, deltaY float32) {
	c.rotationY += deltaX * 0.01
	c.rotationX += deltaY * 0.01

	if c.rotationX > 1.5 {
		c.rotationX = 1.5
	}
	if c.rotationX < -1.5 {
		c.rotationX = -1.5
	}
}

// HandleMouseWheel updates the zoom level.
func (c *Context) HandleMouseWheel(delta float32) {
	c.distance -= delta
	if c.distance < 1 {
		c.distance = 1
	}
	if c.distance > 10000 {
		c.distance = 10000
	}
}

// ResetCamera restores the default orbit angles and refits to the mesh.
func (c *Context) ResetCamera() {
	c.rotationX = 0.3
	c.rotationY = 0.5
	c.fitCamera()
}

// Texture returns the framebuffer's color texture ID.
func (c *Context) Texture() uint32 {
	return c.colorTexture
}

// BlitTo copies the framebuffer contents to the default framebuffer,
// scaled to the given size.
func (c *Context) BlitTo(width, height int32) {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, c.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, c.width, c.height, 0, 0, width, height, gl.COLOR_BUFFER_BIT, gl.LINEAR)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (c *Context) clearMesh() {
	if c.vao != 0 {
		gl.DeleteVertexArrays(1, &c.vao)
		c.vao = 0
	}
	if c.vbo != 0 {
		gl.DeleteBuffers(1, &c.vbo)
		c.vbo = 0
	}
	c.vertexCount = 0
}

func (c *Context) destroy() {
	c.clearMesh()

	if c.shaderProgram != 0 {
		gl.DeleteProgram(c.shaderProgram)
		c.shaderProgram = 0
	}
	if c.fbo != 0 {
		gl.DeleteFramebuffers(1, &c.fbo)
		c.fbo = 0
	}
	if c.colorTexture != 0 {
		gl.DeleteTextures(1, &c.colorTexture)
		c.colorTexture = 0
	}
	if c.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &c.depthRBO)
		c.depthRBO = 0
	}
}

// Release frees all GL resources. Safe to call more than once.
func (c *Context) Release() error {
	if c.released {
		return nil
	}
	c.released = true
	c.destroy()
	return nil
}
