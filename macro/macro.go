// Package macro generates the GLSL (or GLSL-like) preprocessor text that
// wires a plan.Plan into a user's shader fragment: value location macros,
// output bindings, the sample array, per-value read lists, and a tap
// function that performs the actual sampling.
package macro

import (
	"strconv"
	"strings"

	"gpgpu/plan"
)

// Stage names which shader stage a macro block is being generated for.
// Most emitters produce the same text regardless of stage, but the
// override hook (see override.go) can supply stage-specific text via a
// "<key>_vert" / "<key>_frag" override key.
type Stage int

// Shader stages.
const (
	Vert Stage = iota
	Frag
)

func (s Stage) String() string {
	if s == Vert {
		return "vert"
	}
	return "frag"
}

// Context is passed to Override functions and used internally to decide
// which addressing strategy and array syntax to emit.
type Context struct {
	Prefix      string
	Pass        int
	Stage       Stage
	GLSLVersion int
	Merge       bool
	Array3D     bool
}

// ParseGLSLVersion extracts the numeric major version from a shading
// language version string as reported by api.Limits.GLSL (e.g. "300 es"
// -> 3, "1.00" -> 1, "3.30" -> 3). Unparsable strings return 1, the most
// conservative (no const arrays) assumption.
func ParseGLSLVersion(s string) int {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			continue
		}
		if digits.Len() > 0 {
			break
		}
	}
	if digits.Len() == 0 {
		return 1
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 1
	}
	if n >= 100 {
		// WebGL-style version numbers ("100", "300 es"): the major
		// version is the number of hundreds.
		return n / 100
	}
	return n
}

// Generator emits macro text for one Plan. It caches by input key (see
// cache.go) so that identical calls return the identical string.
type Generator struct {
	Plan *plan.Plan

	// Prefix namespaces every generated identifier. Defaults to "gpgpu_".
	Prefix string
	// GLSLVersion selects the addressing/array-syntax strategy: const
	// arrays at v>=3, ternary indexer chains below.
	GLSLVersion int
	// Merge selects the merged-atlas tap strategy over array-of-textures
	// indexing.
	Merge bool
	// Array3D additionally requires Merge; it selects the 3D/2D-array
	// sampler tap variant for GLSLVersion >= 3 backends that support it.
	Array3D bool
	// IncludeCount, if set, emits a "<pre>count" macro with the number
	// of values.
	IncludeCount bool
	// Overrides is the per-key override policy.
	Overrides Overrides

	cache cache
}

// NewGenerator creates a Generator with the documented defaults: prefix
// "gpgpu_", array-of-textures addressing (no merge), GLSL version 1 (the
// most conservative ternary-indexer strategy) until the caller sets
// GLSLVersion from api.Limits.GLSL via ParseGLSLVersion.
func NewGenerator(p *plan.Plan) *Generator {
	return &Generator{
		Plan:        p,
		Prefix:      "gpgpu_",
		GLSLVersion: 1,
	}
}

// Macros generates the complete macro body for one pass and shader
// stage: values, output bindings, the sample list, per-value read lists,
// and the tap function, in that order. Every block, the output bindings
// included, is emitted for both stages.
func (g *Generator) Macros(pass int, stage Stage) string {
	ctx := Context{
		Prefix:      g.Prefix,
		Pass:        pass,
		Stage:       stage,
		GLSLVersion: g.GLSLVersion,
		Merge:       g.Merge,
		Array3D:     g.Array3D,
	}
	var b strings.Builder
	b.WriteString(g.emit("values", ctx, g.genValues))
	b.WriteString(g.emit("output", ctx, g.genOutput))
	b.WriteString(g.emit("samples", ctx, g.genSamples))
	b.WriteString(g.emit("reads", ctx, g.genReads))
	b.WriteString(g.emit("tap", ctx, g.genTap))
	return b.String()
}

// CacheStats reports how many Macros/emit calls hit vs missed the
// memoization cache: running the generator twice on the same inputs
// should yield identical text and a cache hit on the second call.
func (g *Generator) CacheStats() (hits, misses int) { return g.cache.hits, g.cache.misses }

// emit applies the override policy for key, then falls back to gen,
// consulting/populating the per-emitter cache either way.
func (g *Generator) emit(key string, ctx Context, gen func(Context) string) string {
	if out, handled := resolve(g.Overrides, key, ctx); handled {
		return out
	}
	k := cacheKey(key, ctx, g.Plan) + "|count=" + strconv.FormatBool(g.IncludeCount)
	if s, ok := g.cache.get(k); ok {
		return s
	}
	s := gen(ctx)
	g.cache.put(k, s)
	return s
}

// swizzle returns the channel swizzle string for a value occupying
// [offset, offset+count) within its texture's four lanes.
func swizzle(offset, count int) string {
	const lanes = "rgba"
	return lanes[offset : offset+count]
}

// channelOffset returns the channel offset of value v within its
// texture, in the texture's internal (packed) value order.
func channelOffset(l *plan.Layout, values []plan.Value, v int) int {
	t := l.ValueToTexture[v]
	off := 0
	for _, u := range l.Textures[t] {
		if u == v {
			break
		}
		off += values[u].Channels
	}
	return off
}

func define(name string) string { return "#define " + name + "\n" }

func defineVal(name, value string) string { return "#define " + name + " " + value + "\n" }
