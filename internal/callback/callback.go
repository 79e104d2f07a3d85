// SPDX-License-Identifier: MIT

// Package callback defines the lifecycle hooks a factory or trait can attach
// to a build. The set of hook names is closed; registering under any other
// identifier is rejected at definition time.
package callback

import (
	"errors"
	"fmt"
)

// Recognized lifecycle hook names.
const (
	AfterBuild   = "after_build"
	BeforeCreate = "before_create"
	AfterCreate  = "after_create"
	AfterStub    = "after_stub"
)

// ErrUnknownName is reported for a hook name outside the recognized set.
var ErrUnknownName = errors.New("unknown callback name")

// Handler is invoked with the object under construction.
type Handler func(instance any) error

// Callback binds a recognized lifecycle hook name to a handler.
type Callback struct {
	Name    string
	Handler Handler
}

// New validates the hook name and returns the bound callback.
func New(name string, handler Handler) (Callback, error) {
	switch name {
	case AfterBuild, BeforeCreate, AfterCreate, AfterStub:
	default:
		return Callback{}, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	if handler == nil {
		return Callback{}, fmt.Errorf("callback %q has a nil handler", name)
	}
	return Callback{Name: name, Handler: handler}, nil
}
