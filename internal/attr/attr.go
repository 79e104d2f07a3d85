// SPDX-License-Identifier: MIT
//
// This file defines the Declaration and Attribute types.
//
// Why distinguish between a Declaration and an Attribute?
//
// A Declaration is the raw, definition-time form of one attribute rule as a
// defining actor wrote it: it may carry a literal value, a deferred
// generator, an explicit association target, or nothing at all. Sealing a
// factory finalizes each declaration into an Attribute, resolving the
// implicit cases (a declaration with neither a value nor a generator is an
// association whose target shares the declaration's name) and attaching the
// alias forms that override keys are allowed to match. Everything downstream
// of sealing — resolution, merging, building — only ever sees Attributes.
package attr

import "fmt"

// Generator computes a deferred attribute value. It runs once per build, at
// the moment the attribute is applied, never at definition or seal time.
type Generator func() (any, error)

// Kind describes how a finalized attribute produces its value.
type Kind int

const (
	// Static attributes carry a literal value.
	Static Kind = iota
	// Dynamic attributes defer to a Generator at build time.
	Dynamic
	// Association attributes are built through another factory.
	Association
)

// Declaration is the definition-time form of a single attribute rule.
type Declaration struct {
	// Name is the attribute's identifier; canonicalized on finalize.
	Name string

	// Value is a literal. It is only meaningful when HasValue is true,
	// so that an explicit nil literal stays distinguishable from "no
	// value declared".
	HasValue bool
	Value    any

	// Generator, when non-nil, supplies the value at build time.
	Generator Generator

	// AssociationTarget names the factory that builds this attribute's
	// value. Leave empty for non-association declarations.
	AssociationTarget string

	// Ignored marks a transient attribute: available during the build,
	// never persisted and never part of an attributes_for result.
	Ignored bool
}

// Attribute is the finalized, sealed form of a declaration.
type Attribute struct {
	Name    string
	Aliases []string
	Kind    Kind
	Ignored bool

	value     any
	generator Generator
	target    string
}

// Finalize resolves a declaration into an Attribute. A declaration carrying
// neither a value nor a generator nor an explicit target is treated as an
// association targeting a factory of the same name.
func (d Declaration) Finalize() (*Attribute, error) {
	name := Canonical(d.Name)
	if name == "" {
		return nil, fmt.Errorf("attribute declaration has an empty name")
	}

	a := &Attribute{Name: name, Ignored: d.Ignored}

	switch {
	case d.AssociationTarget != "":
		a.Kind = Association
		a.target = Canonical(d.AssociationTarget)
	case d.Generator != nil:
		a.Kind = Dynamic
		a.generator = d.Generator
	case d.HasValue:
		a.Kind = Static
		a.value = d.Value
	default:
		a.Kind = Association
		a.target = name
	}

	if a.Kind == Association {
		// Association overrides conventionally arrive under the foreign
		// key form of the name as well.
		a.Aliases = []string{name + "_id"}
	}

	return a, nil
}

// Target returns the associated factory's name; empty for non-associations.
func (a *Attribute) Target() string {
	return a.target
}

// Compute produces the attribute's own value. Association attributes cannot
// compute themselves — building the target factory is the caller's job.
func (a *Attribute) Compute() (any, error) {
	switch a.Kind {
	case Static:
		return a.value, nil
	case Dynamic:
		v, err := a.generator()
		if err != nil {
			return nil, fmt.Errorf("computing attribute %q: %w", a.Name, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("attribute %q is an association and has no value of its own", a.Name)
	}
}

// Matches reports whether a canonicalized override key refers to this
// attribute, either by its name or one of its alias forms.
func (a *Attribute) Matches(key string) bool {
	if key == a.Name {
		return true
	}
	for _, alias := range a.Aliases {
		if key == alias {
			return true
		}
	}
	return false
}
