package plan

import "golang.org/x/exp/slices"

// Sample identifies one texture fetch in a pass: the texture, and how
// many steps ago it was written.
type Sample struct {
	StepAgo      int
	TextureIndex int
}

// SamplePlan is the per-pass output of PlanSamples: the sample plan and
// the read plan.
type SamplePlan struct {
	// Samples[p] is the deduplicated, first-seen-ordered list of
	// samples referenced by any derive of any value written in pass p.
	Samples [][]Sample
	// Reads[p][v] is, for value v written in pass p, the list of
	// indices into Samples[p] — one per expanded source of v's
	// Derive, in source order (concrete sources contribute one entry;
	// AllAtStep contributes one per value, in value order).
	// Reads[p][v] is nil for values not written in pass p.
	Reads [][][]int
}

// PlanSamples computes, for every pass, the minimal ordered set of
// (stepAgo, texture) samples required to satisfy the derives relation for
// every value the pass writes, and each value's read indices into that
// set.
//
// Sampling happens at texture granularity, not value granularity: two
// values sharing a texture at the same stepAgo share one sample, because
// the hardware fetches a whole texel (every channel of a texture) per
// tap.
func PlanSamples(layout *Layout, derives []Derive, steps, bound int) (*SamplePlan, error) {
	maxStepAgo := steps - bound - 1

	sp := &SamplePlan{
		Samples: make([][]Sample, len(layout.Passes)),
		Reads:   make([][][]int, len(layout.Passes)),
	}

	for p, pass := range layout.Passes {
		reads := make([][]int, len(layout.ValueToTexture))
		var samples []Sample

		find := func(s Sample) int {
			if i := slices.Index(samples, s); i >= 0 {
				return i
			}
			samples = append(samples, s)
			return len(samples) - 1
		}

		for _, texIdx := range pass {
			for _, v := range layout.Textures[texIdx] {
				if v >= len(derives) || derives[v] == nil {
					continue
				}
				var r []int
				for pos, src := range derives[v] {
					switch s := src.(type) {
					case OneAtStep:
						if s.Value < 0 || s.Value >= len(layout.ValueToTexture) {
							return nil, &InvalidDeriveError{
								Pass: p, Value: v, SourcePos: pos, StepAgo: s.StepAgo,
								RefValue: s.Value, Reason: "value index out of range",
							}
						}
						if s.StepAgo < 0 || s.StepAgo > maxStepAgo {
							return nil, &InvalidDeriveError{
								Pass: p, Value: v, SourcePos: pos, StepAgo: s.StepAgo,
								RefValue: s.Value, Reason: "stepAgo out of range (would read a bound output)",
							}
						}
						tex := layout.ValueToTexture[s.Value]
						r = append(r, find(Sample{StepAgo: s.StepAgo, TextureIndex: tex}))
					case AllAtStep:
						if s.StepAgo < 0 || s.StepAgo > maxStepAgo {
							return nil, &InvalidDeriveError{
								Pass: p, Value: v, SourcePos: pos, StepAgo: s.StepAgo,
								RefValue: -1, Reason: "stepAgo out of range (would read a bound output)",
							}
						}
						for allV := range layout.ValueToTexture {
							tex := layout.ValueToTexture[allV]
							r = append(r, find(Sample{StepAgo: s.StepAgo, TextureIndex: tex}))
						}
					default:
						return nil, &InvalidDeriveError{
							Pass: p, Value: v, SourcePos: pos,
							Reason: "unrecognized derive source type",
						}
					}
				}
				reads[v] = r
			}
		}
		sp.Samples[p] = samples
		sp.Reads[p] = reads
	}
	return sp, nil
}
