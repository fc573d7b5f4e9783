package macro

import "fmt"

// genOutput emits the per-pass output bindings:
//
//	#define <pre>bound_<v>
//	#define <pre>attach_<v> <attachmentIndex>
//	#define <pre>output_<v> gl_FragData[attach_<v>].<swizzle>
//	#define <pre>passNow <p>
//
// Only values written by the active pass (ctx.Pass) get bound_/attach_/
// output_ macros; the rest of a user's shader may reference earlier
// passes' outputs through the sample/read macros instead.
func (g *Generator) genOutput(ctx Context) string {
	l := g.Plan.Layout
	values := g.Plan.Config.Values
	out := defineVal(ctx.Prefix+"passNow", fmt.Sprintf("%d", ctx.Pass))
	if ctx.Pass < 0 || ctx.Pass >= len(l.Passes) {
		return out
	}
	passTextures := l.Passes[ctx.Pass]
	attachOf := make(map[int]int, len(passTextures))
	for i, t := range passTextures {
		attachOf[t] = i
	}
	for v := range values {
		if l.ValueToPass[v] != ctx.Pass {
			continue
		}
		attach := attachOf[l.ValueToTexture[v]]
		off := channelOffset(l, values, v)
		out += define(fmt.Sprintf("%sbound_%d", ctx.Prefix, v))
		out += defineVal(fmt.Sprintf("%sattach_%d", ctx.Prefix, v), fmt.Sprintf("%d", attach))
		out += defineVal(
			fmt.Sprintf("%soutput_%d", ctx.Prefix, v),
			fmt.Sprintf("gl_FragData[%sattach_%d].%s", ctx.Prefix, v, swizzle(off, values[v].Channels)),
		)
	}
	return out
}
