package sources

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by every ParseError through errors.Is.
	ErrParse = errors.New("parse failed")
	// ErrIO is matched by every IOError through errors.Is.
	ErrIO = errors.New("io failed")
)

// ParseError reports a source whose content could not be turned into a
// configuration tree, or a merged tree that does not fit the schema.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// IOError reports a location or file that exists but cannot be read.
// Absence is never an IOError.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }
