// SPDX-License-Identifier: MIT

// Package trait defines the reusable attribute bundle that factories mix in
// by name. A trait is immutable once constructed: its declarations are
// finalized eagerly and its attribute list is never mutated afterwards, so
// the same trait can safely back any number of factories.
package trait

import (
	"fmt"

	"github.com/vk/fabrikgo/internal/attr"
	"github.com/vk/fabrikgo/internal/callback"
)

// Trait is a named, immutable bundle of finalized attributes and callbacks.
type Trait struct {
	name      string
	attrs     *attr.List
	callbacks []callback.Callback
}

// New finalizes the given declarations into a trait. Duplicate attribute
// names within one trait are a definition error.
func New(name string, decls []attr.Declaration, callbacks []callback.Callback) (*Trait, error) {
	canonical := attr.Canonical(name)
	if canonical == "" {
		return nil, fmt.Errorf("trait has an empty name")
	}

	list := attr.NewList()
	for _, d := range decls {
		a, err := d.Finalize()
		if err != nil {
			return nil, fmt.Errorf("trait %q: %w", canonical, err)
		}
		if err := list.Insert(a, false); err != nil {
			return nil, fmt.Errorf("trait %q: %w", canonical, err)
		}
	}

	return &Trait{name: canonical, attrs: list, callbacks: callbacks}, nil
}

// Name returns the trait's canonical name.
func (t *Trait) Name() string {
	return t.name
}

// Attributes returns the trait's finalized attribute list. Callers merge it
// into their own lists and must not mutate it.
func (t *Trait) Attributes() *attr.List {
	return t.attrs
}

// Callbacks returns the trait's lifecycle callbacks in declaration order.
func (t *Trait) Callbacks() []callback.Callback {
	return t.callbacks
}
