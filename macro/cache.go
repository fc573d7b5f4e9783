package macro

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"gpgpu/plan"
)

// cache memoizes generated macro text by a stable key built from an
// emitter's inputs. It is scoped to one Generator (and so to one Plan):
// a cache tied to the state object invalidates naturally when the
// object (and therefore the Plan it holds) is replaced, instead of
// leaking entries across unrelated builds.
//
// Strings are interned on insertion so that two cache hits for the same
// key return the identical string value, letting a caller dedup shader
// compilation by string identity instead of content comparison.
type cache struct {
	m      map[string]string
	hits   int
	misses int
}

func (c *cache) get(key string) (string, bool) {
	if c.m == nil {
		c.misses++
		return "", false
	}
	s, ok := c.m[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return s, ok
}

func (c *cache) put(key, value string) {
	if c.m == nil {
		c.m = make(map[string]string)
	}
	// Intern: if an identical string is already cached under a
	// different key, reuse that backing value instead of the one the
	// caller just built.
	vals := maps.Values(c.m)
	if i := slices.Index(vals, value); i >= 0 {
		c.m[key] = vals[i]
		return
	}
	c.m[key] = value
}

// cacheKey assembles the stable key for one emitter call: the emitter
// name, the namespace prefix, the pass index, the language version, the
// merge/array3D strategy flags, and a fingerprint of the plan shape the
// emitter reads from.
func cacheKey(emitter string, ctx Context, p *plan.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|pass=%d|stage=%s|glsl=%d|merge=%t|array3d=%t|",
		emitter, ctx.Prefix, ctx.Pass, ctx.Stage, ctx.GLSLVersion, ctx.Merge, ctx.Array3D)
	fmt.Fprintf(&b, "values=%v|textures=%v|passes=%v|steps=%d|bound=%d|",
		p.Config.Values, p.Layout.Textures, p.Layout.Passes, p.Steps, p.Bound)
	if ctx.Pass >= 0 && ctx.Pass < len(p.Samples.Samples) {
		fmt.Fprintf(&b, "samples=%v|reads=%v", p.Samples.Samples[ctx.Pass], p.Samples.Reads[ctx.Pass])
	}
	return b.String()
}
