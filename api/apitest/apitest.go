// Package apitest provides a stub api.API implementation for use in tests.
// It performs no rendering: every factory method returns an opaque token
// and records its call, so that callers can assert on call order and
// arguments instead of pixels.
package apitest

import (
	"fmt"
	"sync"

	"gpgpu/api"
)

// Stub is a recording, allocation-only api.API.
//
// Zero value is usable; set Lim before use if the test cares about a
// particular set of platform limits (the zero Limits has
// MaxDrawBuffers==0, which Framebuffer treats as no attachment limit, and
// MaxSamplerSlots==0, which never forces merging).
type Stub struct {
	mu sync.Mutex

	Lim api.Limits

	Textures     []api.TexParam
	Framebuffers []api.FBParam
	Buffers      [][]float32
	Clears       []api.ClearParam
	Commands     []api.CmdParam

	// Runs records every state object passed to a compiled Command,
	// keyed by the index of the Command in Commands.
	Runs map[int][]any
	// Invoked records, in real invocation order, the Commands index of
	// every compiled command that ran — useful for asserting a
	// specific pass/framebuffer sequence across several Step calls.
	Invoked []int
	// UniformResults records the last value every named uniform
	// callback returned, keyed by Commands index then uniform name.
	UniformResults map[int]map[string]any
}

// texture is the opaque token returned by Stub.Texture.
type texture struct{ w, h, c int }

func (t *texture) Width() int    { return t.w }
func (t *texture) Height() int   { return t.h }
func (t *texture) Channels() int { return t.c }

// framebuf is the opaque token returned by Stub.Framebuffer.
type framebuf struct{ color []api.Texture }

func (f *framebuf) Color(i int) api.Texture { return f.color[i] }

// buffer is the opaque token returned by Stub.Buffer.
type buffer struct{ n int }

func (b *buffer) Len() int { return b.n }

// New creates a Stub with the given limits.
func New(lim api.Limits) *Stub {
	return &Stub{Lim: lim, Runs: make(map[int][]any), UniformResults: make(map[int]map[string]any)}
}

// Texture implements api.API.
func (s *Stub) Texture(p api.TexParam) (api.Texture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Width < 1 || p.Height < 1 || p.Channels < 1 {
		return nil, &api.BackendResourceError{Reason: "invalid texture size"}
	}
	s.Textures = append(s.Textures, p)
	return &texture{p.Width, p.Height, p.Channels}, nil
}

// Framebuffer implements api.API.
func (s *Stub) Framebuffer(p api.FBParam) (api.Framebuf, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Lim.MaxDrawBuffers > 0 && len(p.Color) > s.Lim.MaxDrawBuffers {
		return nil, &api.BackendResourceError{Reason: "too many color attachments"}
	}
	s.Framebuffers = append(s.Framebuffers, p)
	return &framebuf{p.Color}, nil
}

// Buffer implements api.API.
func (s *Stub) Buffer(data []float32) (api.Buffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := append([]float32(nil), data...)
	s.Buffers = append(s.Buffers, cp)
	return &buffer{len(data)}, nil
}

// Clear implements api.API.
func (s *Stub) Clear(p api.ClearParam) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Clears = append(s.Clears, p)
	return nil
}

// Command implements api.API. The returned api.Command records every
// state object it is invoked with, and evaluates every uniform callback,
// keeping the latest results in UniformResults so that tests can assert
// on what the callbacks returned.
func (s *Stub) Command(p api.CmdParam) (api.Command, error) {
	s.mu.Lock()
	idx := len(s.Commands)
	s.Commands = append(s.Commands, p)
	s.mu.Unlock()

	ctx := ctx{}
	return func(state any) error {
		results := make(map[string]any, len(p.Uniforms))
		for name, fn := range p.Uniforms {
			if fn == nil {
				return fmt.Errorf("apitest: nil uniform callback for %q", name)
			}
			results[name] = fn(ctx, state)
		}
		s.mu.Lock()
		if s.UniformResults == nil {
			s.UniformResults = make(map[int]map[string]any)
		}
		if s.Runs == nil {
			s.Runs = make(map[int][]any)
		}
		s.UniformResults[idx] = results
		s.Runs[idx] = append(s.Runs[idx], state)
		s.Invoked = append(s.Invoked, idx)
		s.mu.Unlock()
		return nil
	}, nil
}

// Limits implements api.API.
func (s *Stub) Limits() api.Limits { return s.Lim }

type ctx struct{}

func (ctx) DrawingBufferWidth() int  { return 256 }
func (ctx) DrawingBufferHeight() int { return 256 }
