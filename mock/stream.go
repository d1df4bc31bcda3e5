package mock

import (
	"io"

	"github.com/fwojciec/tagstream"
)

// Interface compliance check.
var _ tagstream.Source = (*Source)(nil)

// Source is a test double for tagstream.Source.
// Set the function fields for the methods you need. NextFn panics when nil
// to catch missing setup. CloseFn is nil-safe (no-op) because callers
// commonly defer Close().
type Source struct {
	NextFn  func() (string, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Source) Next() (string, error) {
	return s.NextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Source) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Deltas returns a Source that yields each delta in order, then err.
// A nil err ends the stream with io.EOF.
func Deltas(err error, deltas ...string) *Source {
	i := 0
	if err == nil {
		err = io.EOF
	}
	return &Source{
		NextFn: func() (string, error) {
			if i >= len(deltas) {
				return "", err
			}
			d := deltas[i]
			i++
			return d, nil
		},
	}
}
