package macro

import (
	"fmt"
	"strings"
)

// genSamples emits the per-pass sample list:
//
//	#define <pre>useSamples
//	  const ivec2 <pre>samples_0 = ivec2(stepAgo, textureIndex);
//	  ...
//	  const int <pre>samples_l = <n>;
//	#define <pre>samples_i(i) ...
//
// At GLSLVersion >= 3, samples_i indexes a true const array; below that,
// GLSL ES 1.00 has no const arrays, so the list becomes a flat sequence
// of named constants and samples_i expands to a nested ternary chain.
func (g *Generator) genSamples(ctx Context) string {
	if ctx.Pass < 0 || ctx.Pass >= len(g.Plan.Samples.Samples) {
		return ""
	}
	samples := g.Plan.Samples.Samples[ctx.Pass]
	n := len(samples)
	pre := ctx.Prefix

	var b strings.Builder
	b.WriteString(define(pre + "useSamples"))

	if ctx.GLSLVersion >= 3 {
		elems := make([]string, n)
		for i, s := range samples {
			elems[i] = fmt.Sprintf("ivec2(%d, %d)", s.StepAgo, s.TextureIndex)
		}
		fmt.Fprintf(&b, "const ivec2 %ssamples[%d] = ivec2[%d](%s);\n",
			pre, n, n, strings.Join(elems, ", "))
		fmt.Fprintf(&b, "const int %ssamples_l = %d;\n", pre, n)
		fmt.Fprintf(&b, "#define %ssamples_i(i) %ssamples[i]\n", pre, pre)
		return b.String()
	}

	for i, s := range samples {
		fmt.Fprintf(&b, "const ivec2 %ssamples_%d = ivec2(%d, %d);\n", pre, i, s.StepAgo, s.TextureIndex)
	}
	fmt.Fprintf(&b, "const int %ssamples_l = %d;\n", pre, n)
	fmt.Fprintf(&b, "#define %ssamples_i(i) %s\n", pre, ternaryChain(pre+"samples_", n))
	return b.String()
}

// ternaryChain builds the "(i)==0 ? name_0 : (i)==1 ? name_1 : ... :
// name_{n-1}" indexer used where const arrays aren't available. A single
// entry collapses to the bare name (no comparison needed); an empty list
// also yields the bare name_0, which is never indexed because its length
// constant is 0.
func ternaryChain(prefix string, n int) string {
	if n == 0 {
		return prefix + "0"
	}
	if n == 1 {
		return prefix + "0"
	}
	var b strings.Builder
	for i := 0; i < n-1; i++ {
		fmt.Fprintf(&b, "(i)==%d ? %s%d : ", i, prefix, i)
	}
	fmt.Fprintf(&b, "%s%d", prefix, n-1)
	return b.String()
}
