package macro

import "fmt"

// genValues emits the value location macros and plan totals:
//
//	#define <pre>texture_<v> <textureIndex>
//	#define <pre>channels_<v> <swizzle>
//	#define <pre>textures <n>
//	#define <pre>passes <n>
//	#define <pre>steps <n>
//	#define <pre>stepsPast <n>
//	#define <pre>bound <n>
//	#define <pre>count <n>   (only when Generator.IncludeCount)
func (g *Generator) genValues(ctx Context) string {
	l := g.Plan.Layout
	values := g.Plan.Config.Values
	var out string
	for v := range values {
		tex := l.ValueToTexture[v]
		off := channelOffset(l, values, v)
		out += defineVal(fmt.Sprintf("%stexture_%d", ctx.Prefix, v), fmt.Sprintf("%d", tex))
		out += defineVal(fmt.Sprintf("%schannels_%d", ctx.Prefix, v), swizzle(off, values[v].Channels))
	}
	out += defineVal(ctx.Prefix+"textures", fmt.Sprintf("%d", len(l.Textures)))
	out += defineVal(ctx.Prefix+"passes", fmt.Sprintf("%d", len(l.Passes)))
	out += defineVal(ctx.Prefix+"steps", fmt.Sprintf("%d", g.Plan.Steps))
	out += defineVal(ctx.Prefix+"stepsPast", fmt.Sprintf("%d", g.Plan.Steps-g.Plan.Bound))
	out += defineVal(ctx.Prefix+"bound", fmt.Sprintf("%d", g.Plan.Bound))
	if g.IncludeCount {
		out += defineVal(ctx.Prefix+"count", fmt.Sprintf("%d", len(values)))
	}
	return out
}
