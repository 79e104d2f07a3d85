// SPDX-License-Identifier: MIT
package attr

import (
	"fmt"
	"sync/atomic"
)

// Sequence is a named monotonic counter for generating unique attribute
// values. Next is safe to call from concurrent builds.
type Sequence struct {
	name   string
	format string
	next   atomic.Int64
}

// NewSequence creates a sequence starting at start. A non-empty format is a
// fmt verb string applied to each counter value (e.g. "user%d@example.com");
// an empty format yields the bare counter.
func NewSequence(name, format string, start int64) *Sequence {
	s := &Sequence{name: Canonical(name), format: format}
	s.next.Store(start)
	return s
}

// Name returns the sequence's canonical name.
func (s *Sequence) Name() string {
	return s.name
}

// Next returns the next value and advances the counter.
func (s *Sequence) Next() any {
	n := s.next.Add(1) - 1
	if s.format == "" {
		return n
	}
	return fmt.Sprintf(s.format, n)
}

// Generator adapts the sequence into a deferred attribute value source.
func (s *Sequence) Generator() Generator {
	return func() (any, error) {
		return s.Next(), nil
	}
}
