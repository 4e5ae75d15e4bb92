package trace

import (
	"errors"
	"fmt"
)

// Kind classifies fatal errors for a read.
type Kind int

const (
	KindGeometry Kind = iota + 1
	KindFit
	KindAllocation
	KindInput
)

func (k Kind) String() string {
	switch k {
	case KindGeometry:
		return "geometry"
	case KindFit:
		return "fit"
	case KindAllocation:
		return "allocation"
	case KindInput:
		return "input"
	}
	return "unknown"
}

var (
	ErrInvalidBoundary = errors.New("invalid peak boundary")
	ErrEmptyWindow     = errors.New("empty window")
	ErrNotAdjacent     = errors.New("peaks are not adjacent in their channel")
	ErrOutOfRange      = errors.New("index out of range")
)

// Error is a fatal error for one read. Processing of the read stops and its
// Data is released.
type Error struct {
	Kind Kind
	Op   string
	Read string
	Err  error
}

func (e *Error) Error() string {
	if e.Read != "" {
		return fmt.Sprintf("%s: %s error in %s: %v", e.Read, e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s error in %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an Error wrapping a formatted message.
func Errorf(kind Kind, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// WithRead attaches the read name to err if it is an *Error.
func WithRead(err error, read string) error {
	var e *Error
	if errors.As(err, &e) && e.Read == "" {
		e.Read = read
	}
	return err
}
