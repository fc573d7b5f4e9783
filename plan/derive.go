package plan

// Source is a single entry in a value's derive list: either a concrete
// (stepAgo, valueIndex) pair, or the "all values at stepAgo" sentinel.
//
// A typed sum type keeps a source index of 0 from ever being mistaken
// for a "no derive" sentinel: OneAtStep{Value: 0, StepAgo: s} is always
// "value 0 at step s ago", never a sentinel, and a value with no
// derives is simply represented by a nil/empty Derive slice.
type Source interface {
	isSource()
}

// OneAtStep is a concrete derive source: the named value, stepAgo steps
// in the past.
type OneAtStep struct {
	Value   int
	StepAgo int
}

func (OneAtStep) isSource() {}

// AllAtStep is the "all values at this step" sentinel. It expands, in
// value order, to one OneAtStep per value in the plan.
type AllAtStep struct {
	StepAgo int
}

func (AllAtStep) isSource() {}

// Derive is the ordered list of sources a value's next state derives
// from. A nil Derive means the value has no derives.
type Derive []Source
