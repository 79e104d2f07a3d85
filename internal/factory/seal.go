// SPDX-License-Identifier: MIT
//
// Sealing: the one-way transition from a mutable definition to a compiled
// specification. A parent chain that loops re-enters a factory that is
// still in the sealing state, which is reported as a configuration error
// instead of recursing forever.
package factory

import (
	"fmt"

	"github.com/vk/fabrikgo/internal/attr"
)

// Seal compiles the factory: the parent is resolved and sealed first,
// unset fields are inherited, and every declaration is finalized into the
// own attribute list in declaration order. Sealing is idempotent; a second
// call is a no-op.
func (f *Factory) Seal() error {
	switch f.state {
	case stateSealed:
		return nil
	case stateSealing:
		return fmt.Errorf("%w: factory %q is part of its own ancestry", ErrParentCycle, f.name)
	}

	f.state = stateSealing
	if err := f.seal(); err != nil {
		// Roll back so the same configuration error is reported again
		// instead of being masked as a cycle.
		f.state = stateUnsealed
		return err
	}
	f.state = stateSealed
	return nil
}

func (f *Factory) seal() error {
	if f.parentRef != "" {
		parent, err := f.lookup.FactoryByName(f.parentRef)
		if err != nil {
			return fmt.Errorf("factory %q: resolving parent: %w", f.name, err)
		}
		if err := parent.Seal(); err != nil {
			return fmt.Errorf("factory %q: sealing parent %q: %w", f.name, parent.name, err)
		}

		f.parent = parent
		if f.class == "" {
			f.class = parent.class
		}
		if f.defaultStrategy == "" {
			f.defaultStrategy = parent.defaultStrategy
		}
		if parent.overridesAllowed {
			f.overridesAllowed = true
		}
		parent.children = append(parent.children, f)
	}

	if f.class == "" {
		f.class = f.name
	}

	f.own = attr.NewList()
	for _, d := range f.decls {
		a, err := d.Finalize()
		if err != nil {
			return fmt.Errorf("factory %q: %w", f.name, err)
		}
		if a.Kind == attr.Association && a.Target() == f.name {
			return fmt.Errorf("%w: attribute %q on factory %q targets its own factory", ErrSelfReference, a.Name, f.name)
		}
		if err := f.own.Insert(a, f.overridesAllowed); err != nil {
			return fmt.Errorf("factory %q: %w", f.name, err)
		}
	}

	return nil
}

// Sealed reports whether the factory has completed sealing.
func (f *Factory) Sealed() bool {
	return f.state == stateSealed
}
