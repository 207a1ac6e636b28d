package kro

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrFormat             = errors.New("not a valid KRO image")
	ErrUnsupportedVersion = errors.New("unsupported KRO version")
	ErrIO                 = errors.New("i/o error")
)

// Error is returned by every Codec operation. Kind is one of the Err*
// sentinels; Err carries the underlying cause when there is one.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("kro: %s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("kro: %s: %v", e.Op, e.Kind)
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the sentinel kind of err, or nil if err did not come from
// this package.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}

func newError(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

func invalidArg(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrInvalidArgument, Err: fmt.Errorf(format, args...)}
}
