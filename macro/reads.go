package macro

import (
	"fmt"
	"strings"
)

// genReads emits, for every value written by the active pass, its read
// list into the pass's sample array:
//
//	#define <pre>useReads_<v>
//	  const int <pre>reads_<v>_0 = <sampleIndex>;
//	  ...
//	  const int <pre>reads_<v>_l = <n>;
//	#define <pre>reads_<v>_i(i) ...
//
// Values with no derives (a nil Reads entry) get no reads_<v>_* macros
// at all: one list per value written in the pass, not one list per
// value in the whole plan.
func (g *Generator) genReads(ctx Context) string {
	if ctx.Pass < 0 || ctx.Pass >= len(g.Plan.Samples.Reads) {
		return ""
	}
	reads := g.Plan.Samples.Reads[ctx.Pass]
	l := g.Plan.Layout
	pre := ctx.Prefix

	var b strings.Builder
	for v, r := range reads {
		if l.ValueToPass[v] != ctx.Pass || r == nil {
			continue
		}
		b.WriteString(define(fmt.Sprintf("%suseReads_%d", pre, v)))
		for i, idx := range r {
			fmt.Fprintf(&b, "const int %sreads_%d_%d = %d;\n", pre, v, i, idx)
		}
		fmt.Fprintf(&b, "const int %sreads_%d_l = %d;\n", pre, v, len(r))
		if ctx.GLSLVersion >= 3 {
			elems := make([]string, len(r))
			for i := range r {
				elems[i] = fmt.Sprintf("%sreads_%d_%d", pre, v, i)
			}
			fmt.Fprintf(&b, "const int %sreads_%d[%d] = int[%d](%s);\n",
				pre, v, len(r), len(r), strings.Join(elems, ", "))
			fmt.Fprintf(&b, "#define %sreads_%d_i(i) %sreads_%d[i]\n", pre, v, pre, v)
		} else {
			fmt.Fprintf(&b, "#define %sreads_%d_i(i) %s\n", pre, v, ternaryChain(fmt.Sprintf("%sreads_%d_", pre, v), len(r)))
		}
	}
	return b.String()
}
