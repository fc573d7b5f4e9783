// Package diag provides the structured diagnostic logger threaded through
// the planner and the step driver.
//
// Events are short one-line messages backed by logrus.FieldLogger, so
// that structured context (counts, indices) travels as fields rather
// than being baked into a message string. The zero value
// logs nothing, so library users who never configure a logger pay no cost.
package diag

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is the structured logger interface used throughout this module.
// logrus.FieldLogger satisfies it; so does logrus.New().WithField(...).
type Logger = logrus.FieldLogger

// Discard is a Logger that drops every entry. It is the default used when
// a caller does not configure one explicitly.
var Discard = func() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// Fields is a shorthand for logrus.Fields, used at call sites that build
// up structured context before logging.
type Fields = logrus.Fields

// Or returns l if it is non-nil, else Discard. Every package in this
// module that accepts an optional diag.Logger calls this once at the top
// of the function to normalize a nil logger.
func Or(l Logger) Logger {
	if l == nil {
		return Discard
	}
	return l
}
