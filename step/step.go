// Package step implements the step driver: advancing a plan's ring of
// steps, invoking the onStep/onPass hooks, clearing and running each
// pass's compiled command, and — when a merged atlas is in use —
// copying each pass's output into the atlas.
package step

import (
	"errors"
	"fmt"

	"gpgpu/api"
	"gpgpu/internal/diag"
	"gpgpu/macro"
	"gpgpu/plan"
	"gpgpu/step/merge"
)

const stepPrefix = "step: "

func newStepErr(reason string) error { return errors.New(stepPrefix + reason) }

// State is the per-pass state object the compiled command (and through
// it every uniform callback) receives.
type State struct {
	StepNow int
	Bound   int
	Merge   bool

	// Textures holds the read window when not merging: Textures[i]
	// serves the <pre>states[i] uniform for i in
	// [0, (steps-bound)*textures). Nil when Merge is true.
	Textures []api.Texture
	// Atlas serves the <pre>states uniform when Merge is true.
	Atlas api.Texture

	// Custom carries whatever onStep/onPass last returned, so a
	// caller's own uniform callbacks can read it back by type
	// assertion.
	Custom any
}

// Frame is one ring slot's owned resources, used only when no merged
// atlas is active: one persistent texture per plan texture and, per
// pass, one framebuffer wrapping that pass's textures.
type Frame struct {
	Textures     []api.Texture
	Framebuffers []api.Framebuf
}

// Param configures a Driver at build time.
type Param struct {
	API  api.API
	Plan *plan.Plan

	// Width, Height size every texture the driver allocates (the
	// several configuration keys a caller might expose — side, scale,
	// shape, size — all collapse, at this layer, to one resolved pixel
	// size).
	Width, Height int
	Type          api.TexType

	// Vert/Frag return the user shader text for a pass; the driver
	// prepends the macro-generated preamble for that pass and stage.
	Vert, Frag func(pass int) string
	Attributes []string
	Uniforms   map[string]api.UniformFunc
	Buf        []float32 // full-screen triangle positions
	Count      int
	Depth      bool
	Blend      bool

	ClearPass  bool
	ClearParam api.ClearParam

	Merge merge.Policy
	// StepMax bounds StepNow (0 means unbounded growth).
	StepMax int
	// MergePoolSize is the number of scratch frames kept when merging
	// (see merge.Atlas); 0 defaults to 1.
	MergePoolSize int

	OnStep func(custom any) any
	OnPass func(custom any, pass int) any

	Gen *macro.Generator

	Log diag.Logger
}

// Driver advances a Plan through its ring of steps.
type Driver struct {
	plan *plan.Plan
	api  api.API
	gen  *macro.Generator

	ring     []Frame         // len(ring) == plan.Steps; empty when merging.
	commands [][]api.Command // indexed [ring slot or pool slot][pass].

	stepNow int
	stepMax int

	clearPass  bool
	clearParam api.ClearParam

	onStep func(custom any) any
	onPass func(custom any, pass int) any

	atlas *merge.Atlas

	log diag.Logger
}

// StepNow returns the step index most recently written.
func (d *Driver) StepNow() int { return d.stepNow }

// wrapMod is a modulus that always returns a non-negative result, used
// for ring-buffer arithmetic: Go's % returns a negative result for a
// negative dividend, which would corrupt a ring index computed as
// stepNow - stepAgo.
func wrapMod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// New builds a Driver: allocates the ring (or the atlas and its
// scratch pool), and compiles one command per pass for every ring/pool
// slot it will ever run against.
func New(p Param) (*Driver, error) {
	if p.API == nil {
		return nil, newStepErr("nil API")
	}
	if p.Plan == nil {
		return nil, newStepErr("nil Plan")
	}
	log := diag.Or(p.Log)

	lim := p.API.Limits()
	textures := len(p.Plan.Layout.Textures)
	maxAttach := 0
	for _, ts := range p.Plan.Layout.Passes {
		if len(ts) > maxAttach {
			maxAttach = len(ts)
		}
	}

	buf, err := p.API.Buffer(p.Buf)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		plan:       p.Plan,
		api:        p.API,
		gen:        p.Gen,
		stepMax:    p.StepMax,
		clearPass:  p.ClearPass,
		clearParam: p.ClearParam,
		onStep:     p.OnStep,
		onPass:     p.OnPass,
		log:        log,
	}

	merging := p.Merge.Resolve(textures, p.Plan.Steps, lim.MaxSamplerSlots)
	if merging {
		poolSize := p.MergePoolSize
		if poolSize <= 0 {
			poolSize = 1
		}
		d.atlas, err = merge.NewAtlas(p.API, buf, p.Width, p.Height, textures, p.Plan.Steps,
			maxAttach, poolSize, p.Type, mergeVert, mergeFrag)
		if err != nil {
			return nil, err
		}
		d.commands = make([][]api.Command, poolSize)
		for slot := 0; slot < poolSize; slot++ {
			fb := d.atlas.Framebuffer(slot)
			cmds, err := d.compilePasses(buf, fb, p)
			if err != nil {
				return nil, err
			}
			d.commands[slot] = cmds
		}
		return d, nil
	}

	d.ring = make([]Frame, p.Plan.Steps)
	d.commands = make([][]api.Command, p.Plan.Steps)
	for s := range d.ring {
		texs := make([]api.Texture, textures)
		for t := range texs {
			texs[t], err = p.API.Texture(api.TexParam{
				Type: p.Type, Min: api.FNearest, Mag: api.FNearest, Wrap: api.WClamp,
				Width: p.Width, Height: p.Height, Channels: 4,
			})
			if err != nil {
				return nil, err
			}
		}
		fbs := make([]api.Framebuf, len(p.Plan.Layout.Passes))
		for pi, ts := range p.Plan.Layout.Passes {
			color := make([]api.Texture, len(ts))
			for k, t := range ts {
				color[k] = texs[t]
			}
			fbs[pi], err = p.API.Framebuffer(api.FBParam{Width: p.Width, Height: p.Height, Color: color})
			if err != nil {
				return nil, err
			}
		}
		d.ring[s] = Frame{Textures: texs, Framebuffers: fbs}
		cmds, err := d.compilePassesForSlot(buf, fbs, p)
		if err != nil {
			return nil, err
		}
		d.commands[s] = cmds
	}
	return d, nil
}

// compilePassesForSlot compiles one command per pass against the
// per-ring-slot framebuffers (non-merge mode).
func (d *Driver) compilePassesForSlot(buf api.Buffer, fbs []api.Framebuf, p Param) ([]api.Command, error) {
	cmds := make([]api.Command, len(fbs))
	for pass, fb := range fbs {
		cmd, err := d.compileOne(buf, fb, pass, p)
		if err != nil {
			return nil, err
		}
		cmds[pass] = cmd
	}
	return cmds, nil
}

// compilePasses compiles one command per pass against a single shared
// scratch framebuffer (merge mode: every pass of a step reuses it in
// sequence).
func (d *Driver) compilePasses(buf api.Buffer, fb api.Framebuf, p Param) ([]api.Command, error) {
	cmds := make([]api.Command, len(d.plan.Layout.Passes))
	for pass := range cmds {
		cmd, err := d.compileOne(buf, fb, pass, p)
		if err != nil {
			return nil, err
		}
		cmds[pass] = cmd
	}
	return cmds, nil
}

func (d *Driver) compileOne(buf api.Buffer, fb api.Framebuf, pass int, p Param) (api.Command, error) {
	var mergedW, mergedH int
	if d.atlas != nil {
		mergedW, mergedH = d.atlas.Textures*d.atlas.Width, d.atlas.Steps*d.atlas.Height
	}
	pre := "gpgpu_"
	if d.gen != nil {
		pre = d.gen.Prefix
	}
	uniforms := coreUniforms(d.plan, pre, p.Width, p.Height, mergedW, mergedH)
	for k, v := range p.Uniforms {
		uniforms[k] = v
	}
	var vert, frag string
	if d.gen != nil {
		vert = d.gen.Macros(pass, macro.Vert)
		frag = d.gen.Macros(pass, macro.Frag)
	}
	if p.Vert != nil {
		vert += p.Vert(pass)
	}
	if p.Frag != nil {
		frag += p.Frag(pass)
	}
	return p.API.Command(api.CmdParam{
		Vert:        vert,
		Frag:        frag,
		Attributes:  p.Attributes,
		Buf:         buf,
		Uniforms:    uniforms,
		Count:       p.Count,
		Depth:       p.Depth,
		Blend:       p.Blend,
		Framebuffer: fb,
	})
}

// coreUniforms builds the core uniform set the driver always provides:
// stepNow, stateShape, viewShape, states, and states[i] for the full
// read window, each name prefixed by pre.
func coreUniforms(p *plan.Plan, pre string, width, height, mergedWidth, mergedHeight int) map[string]api.UniformFunc {
	textures := len(p.Layout.Textures)
	readLen := (p.Steps - p.Bound) * textures
	u := map[string]api.UniformFunc{
		pre + "stepNow": func(_ api.Context, state any) any { return state.(*State).StepNow },
		pre + "states":  func(_ api.Context, state any) any { return state.(*State).Atlas },
		pre + "stateShape": func(_ api.Context, _ any) any {
			return [4]int{width, height, mergedWidth, mergedHeight}
		},
		pre + "viewShape": func(ctx api.Context, _ any) any {
			return [2]int{ctx.DrawingBufferWidth(), ctx.DrawingBufferHeight()}
		},
	}
	for i := 0; i < readLen; i++ {
		i := i
		u[fmt.Sprintf("%sstates[%d]", pre, i)] = func(_ api.Context, state any) any {
			s := state.(*State)
			if s.Textures == nil {
				return nil
			}
			return s.Textures[i]
		}
	}
	return u
}

// Step advances the driver by one step:
//  1. stepNow ← (stepNow+1) mod stepMax, advanced before the pass loop
//     runs — this ordering is load-bearing: advancing stepNow only
//     after running the passes produces a different (wrong) framebuffer
//     sequence on the second and later steps.
//  2. the onStep hook, if any.
//  3. for each pass: onPass hook, optional clear, the compiled command,
//     and — when merging — the atlas copy.
func (d *Driver) Step() error {
	if d.stepMax > 0 {
		d.stepNow = (d.stepNow + 1) % d.stepMax
	} else {
		d.stepNow++
	}

	var custom any
	if d.onStep != nil {
		custom = d.onStep(custom)
	}

	st := &State{StepNow: d.stepNow, Bound: d.plan.Bound, Merge: d.atlas != nil, Custom: custom}

	var slot int
	if d.atlas != nil {
		st.Atlas = d.atlas.Texture
	} else {
		slot = wrapMod(d.stepNow, len(d.ring))
		textures := len(d.plan.Layout.Textures)
		readLen := (d.plan.Steps - d.plan.Bound) * textures
		st.Textures = make([]api.Texture, readLen)
		for i := range st.Textures {
			tex := i % textures
			back := d.plan.Bound + i/textures
			srcSlot := wrapMod(d.stepNow-back, len(d.ring))
			st.Textures[i] = d.ring[srcSlot].Textures[tex]
		}
	}

	for pass, textureIdxs := range d.plan.Layout.Passes {
		if d.onPass != nil {
			custom = d.onPass(custom, pass)
			st.Custom = custom
		}

		var poolIdx int
		var fb api.Framebuf
		if d.atlas != nil {
			idx, ok := d.atlas.Acquire()
			if !ok {
				return newStepErr("merge pool exhausted")
			}
			poolIdx = idx
			fb = d.atlas.Framebuffer(idx)
		} else {
			fb = d.ring[slot].Framebuffers[pass]
		}

		if d.clearPass {
			cp := d.clearParam
			cp.Framebuffer = fb
			if err := d.api.Clear(cp); err != nil {
				return err
			}
		}

		cmd := d.commandFor(slot, poolIdx, pass)
		if err := cmd(st); err != nil {
			return err
		}

		if d.atlas != nil {
			for attach, t := range textureIdxs {
				if err := d.atlas.Update(poolIdx, attach, t, d.stepNow); err != nil {
					return err
				}
			}
			d.atlas.Release(poolIdx)
		}
	}
	return nil
}

func (d *Driver) commandFor(ringSlot, poolSlot, pass int) api.Command {
	if d.atlas != nil {
		return d.commands[poolSlot][pass]
	}
	return d.commands[ringSlot][pass]
}
