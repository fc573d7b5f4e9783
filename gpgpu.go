// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package gpgpu implements a declarative planner and code generator for
// GPGPU state-stepping on top of a generic GL-like rasterization API
// (see package api). Given a set of values to evolve over time and
// their cross-step dependencies, it packs them into textures, groups
// textures into passes, plans the texture samples each pass needs, and
// generates the GLSL preprocessor macros a user shader consumes to read
// and write that state — then drives the step/pass loop against a
// caller-supplied backend.
package gpgpu

import (
	"gpgpu/api"
	"gpgpu/internal/diag"
	"gpgpu/macro"
	"gpgpu/plan"
	"gpgpu/step"
	"gpgpu/step/merge"
)

// Config configures a State at build time. It collects the full
// configuration surface: the plan shape (embedded plan.Config), the
// backend to drive, texture sizing, macro naming, and the per-pass
// shader/uniform/hook wiring the step driver needs.
type Config struct {
	plan.Config

	API api.API

	// Width and Height size every texture the driver allocates.
	//
	// Default is 256.
	Width, Height int

	// Type is the pixel encoding every allocated texture uses.
	//
	// Default is api.TFloat.
	Type api.TexType

	// Prefix namespaces every generated macro identifier.
	//
	// Default is "gpgpu_".
	Prefix string

	// Merge forces or disables the merged-atlas addressing strategy.
	//
	// Default is merge.Auto.
	Merge merge.Policy

	// MergePoolSize bounds how many scratch render targets the merged
	// atlas keeps in flight at once.
	//
	// Default is 1.
	MergePoolSize int

	// Array3D additionally requires Merge; it selects the 3D/2D-array
	// sampler tap variant when the backend's shading language and
	// Merge both support it.
	Array3D bool

	// IncludeCount emits a "<pre>count" macro alongside the value
	// location macros.
	IncludeCount bool

	// Overrides supplies per-key macro text overriding generation.
	Overrides macro.Overrides

	// Vert/Frag supply the user's own shader text for each pass,
	// appended after the generated macro preamble.
	Vert, Frag func(pass int) string
	Attributes []string
	Uniforms   map[string]api.UniformFunc
	Buf        []float32
	Count      int
	Depth      bool
	Blend      bool

	ClearPass  bool
	ClearParam api.ClearParam

	// StepMax bounds StepNow; zero means unbounded growth.
	StepMax int

	OnStep func(custom any) any
	OnPass func(custom any, pass int) any

	Log diag.Logger
}

// State is a built gpgpu state: the plan, the macro generator and the
// step driver wired together, ready to advance frame by frame.
type State struct {
	plan *plan.Plan
	gen  *macro.Generator
	step *step.Driver
}

// New builds a State from a Config: computes the plan, builds the
// macro generator, allocates the backend resources the step driver
// needs, and compiles every pass's command.
func New(c Config) (*State, error) {
	log := diag.Or(c.Log)

	p, err := plan.Build(c.Config, log)
	if err != nil {
		return nil, err
	}

	gen := macro.NewGenerator(p)
	if c.Prefix != "" {
		gen.Prefix = c.Prefix
	}
	gen.GLSLVersion = macro.ParseGLSLVersion(c.API.Limits().GLSL)
	gen.Array3D = c.Array3D
	gen.IncludeCount = c.IncludeCount
	gen.Overrides = c.Overrides

	width, height := c.Width, c.Height
	if width <= 0 {
		width = 256
	}
	if height <= 0 {
		height = 256
	}

	merging := c.Merge.Resolve(len(p.Layout.Textures), p.Steps, c.API.Limits().MaxSamplerSlots)
	gen.Merge = merging

	d, err := step.New(step.Param{
		API:           c.API,
		Plan:          p,
		Width:         width,
		Height:        height,
		Type:          c.Type,
		Vert:          c.Vert,
		Frag:          c.Frag,
		Attributes:    c.Attributes,
		Uniforms:      c.Uniforms,
		Buf:           c.Buf,
		Count:         c.Count,
		Depth:         c.Depth,
		Blend:         c.Blend,
		ClearPass:     c.ClearPass,
		ClearParam:    c.ClearParam,
		Merge:         c.Merge,
		StepMax:       c.StepMax,
		MergePoolSize: c.MergePoolSize,
		OnStep:        c.OnStep,
		OnPass:        c.OnPass,
		Gen:           gen,
		Log:           log,
	})
	if err != nil {
		return nil, err
	}

	return &State{plan: p, gen: gen, step: d}, nil
}

// Plan returns the built plan's serialized shape.
func (s *State) Plan() *plan.Plan { return s.plan }

// Generator returns the macro generator backing this state, for
// callers that need to pre-generate verts/frags caches ahead of time.
func (s *State) Generator() *macro.Generator { return s.gen }

// Step advances the state by one step.
func (s *State) Step() error { return s.step.Step() }

// StepNow returns the step index most recently written.
func (s *State) StepNow() int { return s.step.StepNow() }
