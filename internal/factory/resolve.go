// SPDX-License-Identifier: MIT
//
// Effective attribute and trait resolution.
//
// Precedence contract: own attributes beat trait attributes, the
// first-referenced trait beats later-referenced ones, and anything the
// child defines beats the parent. The result list orders inherited
// attributes first, then trait and own attributes in definition order. The
// list is rebuilt from scratch on every call — trait contents and the
// parent's resolution are independent collaborators and are never assumed
// stable across calls.
package factory

import (
	"fmt"

	"github.com/vk/fabrikgo/internal/attr"
	"github.com/vk/fabrikgo/internal/callback"
	"github.com/vk/fabrikgo/internal/trait"
)

// Attributes resolves the factory's effective attribute list. It seals the
// factory if that has not happened yet.
func (f *Factory) Attributes() (*attr.List, error) {
	if err := f.Seal(); err != nil {
		return nil, err
	}

	out := attr.NewList()

	// Traits merge in reverse reference order so that under the list's
	// last-applied-wins Apply policy the first-referenced trait ends up
	// taking precedence.
	for i := len(f.traitRefs) - 1; i >= 0; i-- {
		t, err := f.TraitByName(f.traitRefs[i])
		if err != nil {
			return nil, err
		}
		out.Apply(t.Attributes())
	}

	out.Apply(f.own)

	if f.parent != nil {
		inherited, err := f.parent.Attributes()
		if err != nil {
			return nil, err
		}
		out.Inherit(inherited)
	}

	return out, nil
}

// Associations filters the resolved attribute list for attributes that
// build an associated object.
func (f *Factory) Associations() ([]*attr.Attribute, error) {
	attrs, err := f.Attributes()
	if err != nil {
		return nil, err
	}

	var out []*attr.Attribute
	for _, a := range attrs.All() {
		if a.Kind == attr.Association {
			out = append(out, a)
		}
	}
	return out, nil
}

// TraitByName resolves a trait through the three-tier lookup: traits
// defined inside this factory, then the parent chain (resolved fresh
// through the registry, not the cached parent pointer), then the
// process-wide trait registry. A miss in all three tiers surfaces the
// registry's not-found error unmodified.
func (f *Factory) TraitByName(name string) (*trait.Trait, error) {
	canonical := attr.Canonical(name)

	t, ok, err := f.localTrait(canonical)
	if err != nil {
		return nil, err
	}
	if ok {
		return t, nil
	}

	return f.lookup.TraitByName(canonical)
}

// localTrait searches the factory's own defined traits and, recursively,
// its parent chain.
func (f *Factory) localTrait(name string) (*trait.Trait, bool, error) {
	for _, t := range f.definedTraits {
		if t.Name() == name {
			return t, true, nil
		}
	}

	if f.parentRef == "" {
		return nil, false, nil
	}

	parent, err := f.lookup.FactoryByName(f.parentRef)
	if err != nil {
		return nil, false, fmt.Errorf("factory %q: resolving parent: %w", f.name, err)
	}
	return parent.localTrait(name)
}

// resolvedCallbacks collects lifecycle callbacks in the same precedence
// order attributes resolve in: trait callbacks, then the factory's own,
// then the parent's. Callbacks accumulate rather than shadow — every
// registered handler runs.
func (f *Factory) resolvedCallbacks() ([]callback.Callback, error) {
	var out []callback.Callback

	for _, ref := range f.traitRefs {
		t, err := f.TraitByName(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, t.Callbacks()...)
	}

	out = append(out, f.callbacks...)

	if f.parent != nil {
		inherited, err := f.parent.resolvedCallbacks()
		if err != nil {
			return nil, err
		}
		out = append(out, inherited...)
	}

	return out, nil
}
