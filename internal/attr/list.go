// SPDX-License-Identifier: MIT
//
// This file defines the AttributeList, the ordered mergeable collection
// that effective-attribute resolution is built on.
//
// Why two merge operations?
//
// Resolution combines three sources with different precedence rules: trait
// and own attributes participate in a last-applied-wins merge (Apply), while
// a parent's resolved set must never displace anything the child already
// defined and is expected to sort ahead of it (Inherit). Collapsing both
// into one policy cannot produce the contract that own attributes beat
// traits, the first-referenced trait beats later ones, and a child beats
// its parent, so the list documents and exposes both.
package attr

import (
	"errors"
	"fmt"
)

// ErrDuplicateAttribute is reported when a name is declared twice on a
// factory that does not allow overrides.
var ErrDuplicateAttribute = errors.New("duplicate attribute")

// List is an ordered collection of finalized attributes, unique by name.
type List struct {
	attrs []*Attribute
	index map[string]int
}

// NewList returns an empty attribute list.
func NewList() *List {
	return &List{index: make(map[string]int)}
}

// Len returns the number of attributes in the list.
func (l *List) Len() int {
	return len(l.attrs)
}

// Get returns the attribute with the given canonical name, if present.
func (l *List) Get(name string) (*Attribute, bool) {
	i, ok := l.index[name]
	if !ok {
		return nil, false
	}
	return l.attrs[i], true
}

// All returns the attributes in order. The slice is shared; callers must
// not mutate it.
func (l *List) All() []*Attribute {
	return l.attrs
}

// Insert adds an attribute. A name already present is an
// ErrDuplicateAttribute unless allowOverride is set, in which case the new
// attribute replaces the old one in its original position.
func (l *List) Insert(a *Attribute, allowOverride bool) error {
	if i, exists := l.index[a.Name]; exists {
		if !allowOverride {
			return fmt.Errorf("%w: %q", ErrDuplicateAttribute, a.Name)
		}
		l.attrs[i] = a
		return nil
	}
	l.index[a.Name] = len(l.attrs)
	l.attrs = append(l.attrs, a)
	return nil
}

// Apply merges another list under a last-applied-wins policy: an incoming
// attribute replaces a same-named existing one in place, and unseen names
// append in the incoming order.
func (l *List) Apply(other *List) {
	for _, a := range other.attrs {
		if i, exists := l.index[a.Name]; exists {
			l.attrs[i] = a
			continue
		}
		l.index[a.Name] = len(l.attrs)
		l.attrs = append(l.attrs, a)
	}
}

// Inherit merges a parent's resolved list: only names not yet present are
// taken, and they are prepended so inherited attributes order ahead of the
// inheritor's own.
func (l *List) Inherit(parent *List) {
	var missing []*Attribute
	for _, a := range parent.attrs {
		if _, exists := l.index[a.Name]; !exists {
			missing = append(missing, a)
		}
	}
	if len(missing) == 0 {
		return
	}

	l.attrs = append(missing, l.attrs...)
	for i, a := range l.attrs {
		l.index[a.Name] = i
	}
}
