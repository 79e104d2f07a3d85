// SPDX-License-Identifier: MIT

// Package strategy implements the pluggable build side of the factory
// system: the Proxy capability set that a sealed factory drives object
// construction through, and one Proxy variant per build mode.
//
// Why an enumerated tag instead of resolving strategy classes by name?
//
// The set of build modes is closed and each one has a dedicated Go type, so
// selection is a switch over a validated tag. A misspelled strategy is an
// immediate definition-time error rather than a failed lookup in the middle
// of a build.
package strategy

import (
	"errors"
	"fmt"

	"github.com/vk/fabrikgo/internal/callback"
)

// Tag identifies one of the interchangeable build modes.
type Tag string

const (
	// TagBuild constructs the object in memory without persisting it.
	TagBuild Tag = "build"
	// TagCreate constructs the object and runs the persistence finalizer.
	TagCreate Tag = "create"
	// TagAttributesFor produces the resolved attribute map, no object.
	TagAttributesFor Tag = "attributes_for"
	// TagStub constructs an unpersisted object carrying a stub identifier.
	TagStub Tag = "stub"
)

// ErrUnknownStrategy is reported when a strategy identifier names no build mode.
var ErrUnknownStrategy = errors.New("unknown strategy")

// ParseTag validates a strategy identifier.
func ParseTag(s string) (Tag, error) {
	switch Tag(s) {
	case TagBuild, TagCreate, TagAttributesFor, TagStub:
		return Tag(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// Constructor produces a fresh, empty instance of the class under
// construction. Factories resolve theirs through the registry once and
// reuse it for every build.
type Constructor func() any

// Finalizer completes a build. The create strategy's default finalizer
// persists the instance; a factory may register a custom one in its place.
type Finalizer func(instance any) error

// Proxy is the capability set a factory needs from a build mode: register
// lifecycle callbacks, set attribute values, and produce the final result.
type Proxy interface {
	// AddCallback registers a lifecycle handler under a recognized name.
	AddCallback(name string, handler callback.Handler)
	// Set applies one attribute value. Ignored attributes are kept off
	// the constructed object.
	Set(name string, value any, ignored bool) error
	// Result finalizes and returns the built value. A nil finalizer
	// selects the strategy's default.
	Result(finalizer Finalizer) (any, error)
}

// Builder instantiates a Proxy bound to a constructor. Factories accept a
// Builder so the same resolution pass serves every build mode.
type Builder func(ctor Constructor) Proxy

// Persister saves created instances. The create strategy's default
// finalizer delegates here; everything about how and where instances are
// stored stays behind this interface.
type Persister interface {
	Save(instance any) error
}

// New returns the Builder for the given tag. The persister is only
// exercised by the create strategy but is harmless to supply for others.
func New(tag Tag, persister Persister) (Builder, error) {
	switch tag {
	case TagBuild:
		return func(ctor Constructor) Proxy { return newBuild(ctor) }, nil
	case TagCreate:
		return func(ctor Constructor) Proxy { return newCreate(ctor, persister) }, nil
	case TagAttributesFor:
		return func(ctor Constructor) Proxy { return newAttributesFor() }, nil
	case TagStub:
		return func(ctor Constructor) Proxy { return newStub(ctor) }, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, tag)
}

// callbackSet is the shared callback registration and dispatch used by the
// object-producing proxies.
type callbackSet map[string][]callback.Handler

func (cs callbackSet) add(name string, handler callback.Handler) {
	cs[name] = append(cs[name], handler)
}

func (cs callbackSet) fire(name string, instance any) error {
	for _, h := range cs[name] {
		if err := h(instance); err != nil {
			return fmt.Errorf("%s callback: %w", name, err)
		}
	}
	return nil
}
