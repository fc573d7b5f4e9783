package macro

// Override is the per-key override policy's payload: a generated macro
// block can be replaced by a literal string, suppressed entirely, or
// computed by a caller-supplied function, rather than overloading one
// config slot to mean all three.
type Override interface {
	isOverride()
}

// Literal replaces the generator's output for a key verbatim.
type Literal string

func (Literal) isOverride() {}

// Disabled replaces the generator's output for a key with the empty
// string.
type Disabled struct{}

func (Disabled) isOverride() {}

// Func computes the output for a key from the current Context.
type Func func(Context) string

func (Func) isOverride() {}

// Overrides is the per-key override policy table. A "<key>_vert" or
// "<key>_frag" entry takes precedence over a bare "<key>" entry for
// that stage.
type Overrides map[string]Override

// resolve looks up an override for key in the given context. ok is true
// if an override applied (including Disabled, which yields "").
func resolve(ov Overrides, key string, ctx Context) (out string, ok bool) {
	if ov == nil {
		return "", false
	}
	if o, present := ov[key+"_"+ctx.Stage.String()]; present {
		return applyOverride(o, ctx), true
	}
	if o, present := ov[key]; present {
		return applyOverride(o, ctx), true
	}
	return "", false
}

func applyOverride(o Override, ctx Context) string {
	switch v := o.(type) {
	case Disabled:
		return ""
	case Literal:
		return string(v)
	case Func:
		return v(ctx)
	default:
		return ""
	}
}
