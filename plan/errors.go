package plan

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three build-time kinds of failure. Each is
// wrapped by a structured type below that carries the offending index,
// value, and reason; callers can still match with errors.Is against
// these sentinels.
var (
	ErrInvalidValue       = errors.New("plan: invalid value")
	ErrInvalidDerive      = errors.New("plan: invalid derive")
	ErrCapabilityMismatch = errors.New("plan: capability mismatch")
)

// InvalidValueError reports a value whose channel count falls outside
// [1, channelsMax].
type InvalidValueError struct {
	Index       int
	Channels    int
	ChannelsMax int
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("plan: invalid value: value %d has %d channels, want 1..%d",
		e.Index, e.Channels, e.ChannelsMax)
}

func (e *InvalidValueError) Unwrap() error { return ErrInvalidValue }

// InvalidDeriveError reports a derive source whose stepAgo or resolved
// value/texture index is out of range.
type InvalidDeriveError struct {
	Pass       int
	Value      int
	SourcePos  int
	StepAgo    int
	RefValue   int
	Reason     string
}

func (e *InvalidDeriveError) Error() string {
	return fmt.Sprintf(
		"plan: invalid derive: pass %d value %d source %d (stepAgo=%d, value=%d): %s",
		e.Pass, e.Value, e.SourcePos, e.StepAgo, e.RefValue, e.Reason,
	)
}

func (e *InvalidDeriveError) Unwrap() error { return ErrInvalidDerive }

// CapabilityMismatchError reports a configuration that the platform
// cannot satisfy (buffersMax <= 0 while outputs were demanded, or
// channelsMax == 0).
type CapabilityMismatchError struct {
	Reason string
}

func (e *CapabilityMismatchError) Error() string {
	return "plan: capability mismatch: " + e.Reason
}

func (e *CapabilityMismatchError) Unwrap() error { return ErrCapabilityMismatch }
