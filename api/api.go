// Package api defines the capability interface that the planner and the
// step driver require of a GL-like rasterization backend.
//
// It is the only seam between this module and an actual renderer: any type
// that implements API can drive the textures, framebuffers and passes a
// plan describes. The package never touches pixels itself — it only
// declares the shapes that a real backend (WebGL, a software rasterizer, a
// stub used in tests) must be able to allocate and invoke.
package api

import "errors"

// ErrNoDevice means that the backend could not satisfy a resource request
// (insufficient memory, unsupported format, and so on).
var ErrNoDevice = errors.New("api: backend could not allocate resource")

// TexType names the three pixel encodings a data texture may use.
type TexType int

// Texture encodings.
const (
	TFloat TexType = iota
	THalfFloat
	TUint8
)

// Filter names a sampling filter.
type Filter int

// Sampling filters.
const (
	FNearest Filter = iota
	FLinear
)

// Wrap names a texture coordinate wrap mode.
type Wrap int

// Wrap modes.
const (
	WClamp Wrap = iota
	WRepeat
	WMirror
)

// TexParam describes a 2D data texture to allocate.
type TexParam struct {
	Type     TexType
	Min, Mag Filter
	Wrap     Wrap
	Width    int
	Height   int
	Channels int
}

// Texture is an allocated 2D data texture.
type Texture interface {
	// Width returns the texture's width in texels.
	Width() int
	// Height returns the texture's height in texels.
	Height() int
	// Channels returns the number of channels the texture stores.
	Channels() int
}

// FBParam describes a framebuffer to allocate.
type FBParam struct {
	Depth, Stencil bool
	Width, Height  int
	// Color lists the color attachments, in attachment order.
	// len(Color) must not exceed Limits().MaxDrawBuffers.
	Color []Texture
}

// Framebuf is an allocated framebuffer.
type Framebuf interface {
	// Color returns the color attachment bound at the given index.
	Color(i int) Texture
}

// Buffer is a vertex buffer, used only to upload the full-screen
// triangle's positions.
type Buffer interface {
	Len() int
}

// ClearParam describes a framebuffer clear.
type ClearParam struct {
	Color       [4]float32
	Depth       float32
	Stencil     int
	Framebuffer Framebuf
}

// UniformFunc computes a uniform's value for the current pass.
// ctx carries viewport dimensions; state is whatever per-pass state
// object the step driver produced for this invocation (see step.Driver).
type UniformFunc func(ctx Context, state any) any

// Context is passed to every uniform callback.
type Context interface {
	// DrawingBufferWidth returns the current drawing buffer width.
	DrawingBufferWidth() int
	// DrawingBufferHeight returns the current drawing buffer height.
	DrawingBufferHeight() int
}

// CmdParam describes a compiled render pass.
type CmdParam struct {
	Vert, Frag  string
	Attributes  []string
	Buf         Buffer // vertex buffer bound to Attributes; typically the full-screen triangle.
	Uniforms    map[string]UniformFunc
	Count       int
	Depth       bool
	Blend       bool
	Framebuffer Framebuf
}

// Command is a compiled render pipeline. Calling it with a state object
// evaluates every uniform callback and executes one pass.
type Command func(state any) error

// Limits describes the platform limits the planner must respect.
// These are queried once, at build time, and treated as immutable.
type Limits struct {
	// MaxChannels is the maximum number of channels a single
	// texture may carry (4 on every known GL-like target).
	MaxChannels int
	// MaxDrawBuffers is the maximum number of color attachments
	// a framebuffer may have in one pass.
	MaxDrawBuffers int
	// GLSL is the shading-language version string, as reported by
	// the backend; the macro generator parses a numeric version
	// out of it to pick an addressing/array strategy.
	GLSL string
	// MaxSamplerSlots bounds how many distinct (step, texture)
	// sampler bindings a single pass may hold before the merged
	// atlas strategy should be preferred. Zero means "no bound".
	MaxSamplerSlots int
}

// API is the capability set a backend must expose. It mirrors a GL-like
// rasterizer closely enough that the planner never needs to know more:
// allocate textures and framebuffers, clear them, compile and run passes,
// and report limits.
type API interface {
	// Texture allocates a new 2D data texture.
	Texture(p TexParam) (Texture, error)
	// Framebuffer allocates a new framebuffer.
	Framebuffer(p FBParam) (Framebuf, error)
	// Buffer uploads a vertex buffer (used for the full-screen triangle).
	Buffer(data []float32) (Buffer, error)
	// Clear clears a framebuffer's attachments.
	Clear(p ClearParam) error
	// Command compiles a render pipeline from the given parameters.
	Command(p CmdParam) (Command, error)
	// Limits reports the platform limits in effect for this API.
	Limits() Limits
}
