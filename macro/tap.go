package macro

import (
	"fmt"
	"strings"
)

// genTap emits the tap function: `tapState(uv)` and
// `tapStateBy(stepBy, textureBy)`, each expanding to a declaration of
// `vec4 <pre>data[samples_l]` populated by one texture fetch per planned
// sample. The addressing strategy is picked by ctx.Merge:
//
//   - indexed mode (array-of-textures): constant-indexed
//     `texture(states[(stepAgo*textures)+textureIndex], uv)`.
//   - merged mode (single atlas texture): scales uv into the tile for
//     (textureIndex, stepNow-stepAgo-1), older steps further down,
//     wrapping the ring arithmetic with fract(). When ctx.Array3D is
//     also set (GLSLVersion >= 3 with 2D-array/3D sampler support), a
//     3D variant indexes the layer by step directly instead of folding
//     it into uv.
func (g *Generator) genTap(ctx Context) string {
	if ctx.Pass < 0 || ctx.Pass >= len(g.Plan.Samples.Samples) {
		return ""
	}
	pre := ctx.Prefix

	var b strings.Builder
	b.WriteString(tapMacro(pre, pre+"tapState(uv)", false, ctx))
	b.WriteString(tapMacro(pre, pre+"tapStateBy(stepBy, textureBy)", true, ctx))
	return b.String()
}

// tapMacro builds one #define for tapState/tapStateBy. by selects
// whether the addressing adds the (stepBy, textureBy) offsets that the
// By variant's signature introduces.
func tapMacro(pre, signature string, by bool, ctx Context) string {
	var stepOff, texOff string
	if by {
		stepOff, texOff = " + (stepBy)", " + (textureBy)"
	}

	lines := []string{fmt.Sprintf("vec4 %sdata[%ssamples_l];", pre, pre)}
	lines = append(lines, fmt.Sprintf("for (int i = 0; i < %ssamples_l; i++) {", pre))

	sample := fmt.Sprintf("%ssamples_i(i)", pre)
	if ctx.Merge {
		if ctx.Array3D && ctx.GLSLVersion >= 3 {
			lines = append(lines, fmt.Sprintf(
				"  %sdata[i] = texture(%sstates, vec3(uv, float(((%sstepNow - (%s.x%s) - 1) * %stextures) + (%s.y%s))));",
				pre, pre, pre, sample, stepOff, pre, sample, texOff))
		} else {
			lines = append(lines, fmt.Sprintf(
				"  %sdata[i] = texture(%sstates, fract(uv / vec2(float(%stextures), float(%ssteps)) + "+
					"fract(vec2(float((%s.y%s)), float(-(%s.x%s) + 1 - %sstepNow)) * "+
					"vec2(1.0/float(%stextures), -1.0/float(%ssteps)))));",
				pre, pre, pre, pre, sample, texOff, sample, stepOff, pre, pre, pre))
		}
	} else {
		lines = append(lines, fmt.Sprintf(
			"  %sdata[i] = texture(%sstates[((%s.x%s) * %stextures) + (%s.y%s)], uv);",
			pre, pre, sample, stepOff, pre, sample, texOff))
	}
	lines = append(lines, "}")

	var b strings.Builder
	fmt.Fprintf(&b, "#define %s \\\n", signature)
	for i, l := range lines {
		if i < len(lines)-1 {
			fmt.Fprintf(&b, "  %s \\\n", l)
		} else {
			fmt.Fprintf(&b, "  %s\n", l)
		}
	}
	return b.String()
}
