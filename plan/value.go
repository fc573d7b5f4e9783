// Package plan implements the core of the GPGPU state-stepping planner:
// the packer, the grouper, and the sampler planner. All three are pure
// functions of user input and platform limits, computed once at build
// time and immutable thereafter.
package plan

// Value is a named channel-count block of interdependent scalars written
// together in one pass. Values are ordered; that order fixes the shader
// macro names (texture_0, channels_0, ...) even after packing reorders
// storage.
type Value struct {
	// Name is used only for diagnostics; macro names are positional.
	Name     string
	Channels int
}

// BuffersMax is the maximum number of color attachments a single pass
// may hold, or the sentinel meaning "no output: run the pass once for
// side effects".
//
// This is a tagged variant rather than a bare int so that the zero value
// isn't mistakable for either state: a zero BuffersMax is invalid and
// Config.Validate rejects it with a CapabilityMismatchError.
type BuffersMax struct {
	noOutput bool
	n        int
}

// Buffers returns a BuffersMax bounding passes to at most n color
// attachments.
func Buffers(n int) BuffersMax { return BuffersMax{n: n} }

// NoOutput returns the BuffersMax sentinel for passes that write nothing
// and run only for side effects.
func NoOutput() BuffersMax { return BuffersMax{noOutput: true} }

// IsNoOutput reports whether b is the no-output sentinel.
func (b BuffersMax) IsNoOutput() bool { return b.noOutput }

// N returns the maximum attachment count. It is meaningless when
// b.IsNoOutput().
func (b BuffersMax) N() int { return b.n }

// Config is the build-time configuration for Pack/Group/PlanSamples (and,
// at a higher level, plan.Build). All options arrive through this
// struct; there is no file or CLI loader.
type Config struct {
	// Values is the ordered list of state values.
	Values []Value
	// ChannelsMax is the channel limit per texture. Zero defaults to 4.
	ChannelsMax int
	// BuffersMax is the color-attachment limit per pass.
	BuffersMax BuffersMax
	// Packed is an explicit packing permutation. Nil requests automatic
	// packing via Pack; a non-nil slice (the identity included) is used
	// verbatim and Pack is not invoked.
	Packed []int
	// Derives lists, for each value, the sources its next state reads
	// from. A nil entry means the value has no derives (a fixed point,
	// or a pass that writes without reading).
	Derives []Derive
	// Steps is the ring length. Must be >= 2.
	Steps int
	// Bound is the number of step slots reserved for output and
	// unavailable for input. Zero defaults to 1.
	Bound int
}

// channelsMax returns c.ChannelsMax, applying the documented default.
func (c *Config) channelsMax() int {
	if c.ChannelsMax == 0 {
		return 4
	}
	return c.ChannelsMax
}

// bound returns c.Bound, applying the documented default.
func (c *Config) bound() int {
	if c.Bound == 0 {
		return 1
	}
	return c.Bound
}
