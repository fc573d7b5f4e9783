// Package merge implements the optional merged-atlas addressing
// strategy and the pool of per-pass render targets it copies from.
package merge

import (
	"gpgpu/api"
	"gpgpu/internal/bitset"
)

// Policy selects whether the step driver addresses past-state samples
// through a single merged atlas texture or through an array of
// per-(step, texture) textures. The zero value is Auto.
type Policy struct{ kind int }

const (
	kindAuto = iota
	kindOn
	kindOff
)

// Auto lets Resolve apply the sizing heuristic. On and Off force the
// strategy regardless of backend limits.
var Auto = Policy{kindAuto}

func On() Policy  { return Policy{kindOn} }
func Off() Policy { return Policy{kindOff} }

// Resolve decides whether merging is active. Under Auto it merges when
// textures×steps (the whole ring, an upper bound on the
// (steps−bound)×textures read window served by the states[i] uniform
// family) exceeds the backend's MaxSamplerSlots; a MaxSamplerSlots of
// zero or less means no bound, and Auto then never merges.
func (p Policy) Resolve(textures, steps, maxSamplerSlots int) bool {
	switch p.kind {
	case kindOn:
		return true
	case kindOff:
		return false
	default:
		if maxSamplerSlots <= 0 {
			return false
		}
		return textures*steps > maxSamplerSlots
	}
}

// copyState is the per-invocation state handed to the compiled copy
// command; its uniform callbacks read the fields back out by type
// assertion (api.UniformFunc's (ctx, state) contract).
type copyState struct {
	src          api.Texture
	tileX, tileY int
}

// Atlas is the single merged texture tiling every (texture, step) data
// grid. Tile (t, s) occupies the pixel rectangle [t*Width, (t+1)*Width)
// x [s*Height, (s+1)*Height), s counted from the top (see DESIGN.md for
// why top-counted was chosen over the reverse).
//
// Passes do not render directly into the atlas: they render into a
// small pool of reusable scratch frames, and Update copies each
// finished color attachment into its tile. Each scratch frame carries
// maxAttach color attachments — the widest buffersMax any one pass in
// the plan uses — and the pool holds poolSize such frames; since passes
// within a step run strictly sequentially, poolSize 1 (the default)
// lets every pass reuse the same scratch frame. A larger poolSize only
// matters if a driver wants to keep more than one pass's output alive
// before it is copied.
type Atlas struct {
	Texture         api.Texture
	Width, Height   int
	Textures, Steps int

	maxAttach int
	poolTex   [][]api.Texture
	poolFB    []api.Framebuf
	free      *bitset.Set
	copy      api.Command
}

// SrcUniform is the uniform name the copy shader uses to sample the
// pool texture being written into the atlas this call.
const SrcUniform = "gpgpu_mergeSrc"

// TileUniform is the uniform name the copy shader uses for the
// destination tile's pixel origin (an [x, y] pair).
const TileUniform = "gpgpu_mergeTile"

// ShapeUniform is the uniform name the copy shader uses for the full
// atlas's pixel dimensions (a [width, height] pair).
const ShapeUniform = "gpgpu_mergeAtlasShape"

// NewAtlas allocates the atlas texture, its framebuffer, the pool of
// per-pass render targets, and compiles the copy command. vert/frag is
// the full-screen-triangle copy shader: it must read gpgpu_mergeSrc and
// write to the sub-rectangle named by gpgpu_mergeTile (typically by
// remapping the unit quad's position into that tile in the vertex
// stage, or by discarding fragments outside it).
func NewAtlas(a api.API, buf api.Buffer, width, height, textures, steps, maxAttach, poolSize int, typ api.TexType, vert, frag string) (*Atlas, error) {
	atlasTex, err := a.Texture(api.TexParam{
		Type: typ, Min: api.FNearest, Mag: api.FNearest, Wrap: api.WClamp,
		Width: width * textures, Height: height * steps, Channels: 4,
	})
	if err != nil {
		return nil, err
	}
	fb, err := a.Framebuffer(api.FBParam{
		Width: width * textures, Height: height * steps,
		Color: []api.Texture{atlasTex},
	})
	if err != nil {
		return nil, err
	}
	poolTex := make([][]api.Texture, poolSize)
	poolFB := make([]api.Framebuf, poolSize)
	for i := range poolTex {
		poolTex[i] = make([]api.Texture, maxAttach)
		for k := range poolTex[i] {
			poolTex[i][k], err = a.Texture(api.TexParam{
				Type: typ, Min: api.FNearest, Mag: api.FNearest, Wrap: api.WClamp,
				Width: width, Height: height, Channels: 4,
			})
			if err != nil {
				return nil, err
			}
		}
		poolFB[i], err = a.Framebuffer(api.FBParam{Width: width, Height: height, Color: poolTex[i]})
		if err != nil {
			return nil, err
		}
	}
	atlasShape := [2]float32{float32(width * textures), float32(height * steps)}
	cmd, err := a.Command(api.CmdParam{
		Vert: vert,
		Frag: frag,
		Uniforms: map[string]api.UniformFunc{
			SrcUniform: func(_ api.Context, state any) any { return state.(copyState).src },
			TileUniform: func(_ api.Context, state any) any {
				s := state.(copyState)
				return [2]int{s.tileX, s.tileY}
			},
			ShapeUniform: func(_ api.Context, _ any) any { return atlasShape },
		},
		Attributes:  []string{"position"},
		Buf:         buf,
		Count:       3,
		Framebuffer: fb,
	})
	if err != nil {
		return nil, err
	}
	return &Atlas{
		Texture:   atlasTex,
		Width:     width,
		Height:    height,
		Textures:  textures,
		Steps:     steps,
		maxAttach: maxAttach,
		poolTex:   poolTex,
		poolFB:    poolFB,
		free:      bitset.New(poolSize),
		copy:      cmd,
	}, nil
}

// Acquire returns a free scratch frame's index. ok is false if every
// slot is currently checked out — the caller sized poolSize too small
// for how many passes it wants in flight at once (normally 1 is
// enough, since passes run sequentially).
func (at *Atlas) Acquire() (index int, ok bool) {
	i, ok := at.free.Search()
	if !ok {
		return 0, false
	}
	at.free.Set(i)
	return i, true
}

// Release returns a scratch frame to the free list once every
// attachment it holds has been copied out via Update.
func (at *Atlas) Release(index int) { at.free.Unset(index) }

// Framebuffer returns the scratch framebuffer at the given pool index,
// for binding as a pass's render target.
func (at *Atlas) Framebuffer(index int) api.Framebuf { return at.poolFB[index] }

// Update copies color attachment attach of the scratch frame at
// poolIndex into the atlas tile for (textureIndex, stepSlot mod Steps).
func (at *Atlas) Update(poolIndex, attach, textureIndex, stepSlot int) error {
	tileX := textureIndex * at.Width
	tileY := (stepSlot % at.Steps) * at.Height
	src := at.poolTex[poolIndex][attach]
	return at.copy(copyState{src: src, tileX: tileX, tileY: tileY})
}
