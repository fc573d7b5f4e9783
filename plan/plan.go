package plan

import (
	"fmt"
	"strings"

	"gpgpu/internal/diag"
)

// Plan is the serialized output of packing, grouping and sample planning
// for one configuration. It is the input the macro generator and the
// step driver both consume.
type Plan struct {
	Config Config

	Layout  *Layout
	Samples *SamplePlan

	// Steps and Bound are copied out of Config for convenience; they are
	// part of the serialized plan shape.
	Steps int
	Bound int
}

// Validate checks a Config against the packer/grouper/sampler
// invariants without allocating any backend resource or running the
// sampler planner. Callers that only need a pre-flight check (e.g. a
// config editor) can call this directly instead of Build.
func (c *Config) Validate() error {
	channelsMax := c.channelsMax()
	if channelsMax <= 0 {
		return &CapabilityMismatchError{Reason: "channelsMax must be positive"}
	}
	if !c.BuffersMax.IsNoOutput() && c.BuffersMax.N() <= 0 {
		return &CapabilityMismatchError{Reason: "buffersMax must be positive when outputs are demanded"}
	}
	for i, v := range c.Values {
		if v.Channels < 1 || v.Channels > channelsMax {
			return &InvalidValueError{Index: i, Channels: v.Channels, ChannelsMax: channelsMax}
		}
	}
	if c.Steps < 2 {
		return &CapabilityMismatchError{Reason: "steps must be at least 2"}
	}
	if c.bound() < 1 {
		return &CapabilityMismatchError{Reason: "bound must be at least 1"}
	}
	if c.bound() >= c.Steps {
		return &CapabilityMismatchError{Reason: "bound must leave at least one readable step"}
	}
	return nil
}

// Build runs the packer (unless an explicit permutation was supplied),
// the grouper and the sampler planner in sequence, returning the
// immutable Plan that the macro generator and the step driver consume.
//
// log is an optional structured logger (see internal/diag); passing nil
// uses the discard logger.
func Build(c Config, log diag.Logger) (*Plan, error) {
	log = diag.Or(log)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	channelsMax := c.channelsMax()
	packed := c.Packed
	if packed == nil {
		p, err := Pack(c.Values, channelsMax)
		if err != nil {
			return nil, err
		}
		packed = p
	}

	layout, err := Group(c.Values, packed, channelsMax, c.BuffersMax)
	if err != nil {
		return nil, err
	}

	samples, err := PlanSamples(layout, c.Derives, c.Steps, c.bound())
	if err != nil {
		return nil, err
	}

	cfg := c
	cfg.Packed = packed

	log.WithFields(diag.Fields{
		"values":   len(c.Values),
		"textures": len(layout.Textures),
		"passes":   len(layout.Passes),
		"steps":    c.Steps,
		"bound":    c.bound(),
	}).Debug("gpgpu: plan built")

	return &Plan{
		Config:  cfg,
		Layout:  layout,
		Samples: samples,
		Steps:   c.Steps,
		Bound:   c.bound(),
	}, nil
}

// String renders a deterministic, human-readable dump of the plan's
// serialized shape — useful for logging and for golden-file testing of
// the packer/grouper/sampler without depending on the macro generator.
func (p *Plan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "values=%d textures=%d passes=%d steps=%d bound=%d\n",
		len(p.Config.Values), len(p.Layout.Textures), len(p.Layout.Passes), p.Steps, p.Bound)
	fmt.Fprintf(&b, "packed=%v\n", p.Config.Packed)
	for t, vs := range p.Layout.Textures {
		fmt.Fprintf(&b, "texture %d: values=%v\n", t, vs)
	}
	for pi, ts := range p.Layout.Passes {
		fmt.Fprintf(&b, "pass %d: textures=%v samples=%v\n", pi, ts, p.Samples.Samples[pi])
	}
	return b.String()
}
