// SPDX-License-Identifier: MIT
//
// This file defines the Factory, the core orchestrator of the system.
//
// Why distinguish between a Factory and the objects it builds?
//
// A Factory is the reusable specification: it declares what attributes a
// kind of object has, which parent specification it refines, and which
// traits it mixes in. A build call is an *invocation* of that
// specification — the same sealed Factory serves any number of builds under
// any strategy, each with its own per-call overrides. This separation lets
// the system resolve inheritance and trait precedence once, statically, and
// then drive construction deterministically from the resolved list.
package factory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vk/fabrikgo/internal/attr"
	"github.com/vk/fabrikgo/internal/callback"
	"github.com/vk/fabrikgo/internal/strategy"
	"github.com/vk/fabrikgo/internal/trait"
)

var (
	// ErrSelfReference is reported when an attribute's association target
	// is the declaring factory itself.
	ErrSelfReference = errors.New("self-referencing association")

	// ErrParentCycle is reported when a factory's parent chain loops back
	// into a factory that is currently sealing.
	ErrParentCycle = errors.New("parent cycle")

	// ErrInvalidOption is reported for an unrecognized construction option.
	ErrInvalidOption = errors.New("invalid factory option")

	// ErrAlreadySealed is reported when a definition-time mutator runs
	// after the factory has been sealed.
	ErrAlreadySealed = errors.New("factory already sealed")
)

// Lookup is the registry surface a factory needs for cross-factory
// resolution. It is injected at construction; factories never reach for an
// ambient global.
type Lookup interface {
	// FactoryByName resolves a canonical factory name or alias.
	FactoryByName(name string) (*Factory, error)
	// TraitByName resolves a globally defined trait.
	TraitByName(name string) (*trait.Trait, error)
	// ConstructorFor resolves the constructor for a class identifier.
	ConstructorFor(class string) (strategy.Constructor, error)
}

// Options is the recognized construction option set. Any key outside
// {class, parent, aliases, traits, default_strategy} is an ErrInvalidOption.
type Options map[string]any

type sealState int

const (
	stateUnsealed sealState = iota
	stateSealing
	stateSealed
)

// Factory is a named specification for constructing one kind of object.
type Factory struct {
	lookup Lookup

	name            string
	class           string
	aliases         []string
	traitRefs       []string
	parentRef       string
	defaultStrategy strategy.Tag

	decls         []attr.Declaration
	definedTraits []*trait.Trait
	callbacks     []callback.Callback
	finalizer     strategy.Finalizer

	overridesAllowed bool

	state    sealState
	own      *attr.List
	parent   *Factory
	children []*Factory

	ctorOnce sync.Once
	ctor     strategy.Constructor
	ctorErr  error
}

// New constructs an unsealed factory. Option validation is eager: an
// unrecognized key, a malformed value, or an unknown default_strategy fails
// here rather than at first build.
func New(lookup Lookup, name string, opts Options) (*Factory, error) {
	canonical := attr.Canonical(name)
	if canonical == "" {
		return nil, fmt.Errorf("factory has an empty name")
	}
	if lookup == nil {
		return nil, fmt.Errorf("factory %q: nil registry lookup", canonical)
	}

	f := &Factory{lookup: lookup, name: canonical}

	for key, val := range opts {
		switch key {
		case "class":
			s, err := stringOption(canonical, key, val)
			if err != nil {
				return nil, err
			}
			f.class = attr.Canonical(s)
		case "parent":
			s, err := stringOption(canonical, key, val)
			if err != nil {
				return nil, err
			}
			f.parentRef = attr.Canonical(s)
		case "aliases":
			names, err := stringListOption(canonical, key, val)
			if err != nil {
				return nil, err
			}
			for _, alias := range names {
				f.aliases = append(f.aliases, attr.Canonical(alias))
			}
		case "traits":
			names, err := stringListOption(canonical, key, val)
			if err != nil {
				return nil, err
			}
			for _, ref := range names {
				f.traitRefs = append(f.traitRefs, attr.Canonical(ref))
			}
		case "default_strategy":
			s, err := stringOption(canonical, key, val)
			if err != nil {
				return nil, err
			}
			tag, err := strategy.ParseTag(s)
			if err != nil {
				return nil, fmt.Errorf("factory %q: %w", canonical, err)
			}
			f.defaultStrategy = tag
		default:
			return nil, fmt.Errorf("%w: factory %q does not recognize option %q", ErrInvalidOption, canonical, key)
		}
	}

	return f, nil
}

func stringOption(factoryName, key string, val any) (string, error) {
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%w: factory %q option %q must be a string, got %T", ErrInvalidOption, factoryName, key, val)
	}
	return s, nil
}

func stringListOption(factoryName, key string, val any) ([]string, error) {
	switch v := val.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: factory %q option %q must be a list of strings, got %T element", ErrInvalidOption, factoryName, key, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: factory %q option %q must be a list of strings, got %T", ErrInvalidOption, factoryName, key, val)
	}
}

// Name returns the factory's canonical name.
func (f *Factory) Name() string {
	return f.name
}

// Names returns the canonical name followed by all aliases, in declared
// order. Registry lookup and override-key matching both use this set.
func (f *Factory) Names() []string {
	out := make([]string, 0, 1+len(f.aliases))
	out = append(out, f.name)
	out = append(out, f.aliases...)
	return out
}

// ParentName returns the parent lookup key, empty when the factory has none.
func (f *Factory) ParentName() string {
	return f.parentRef
}

// ClassIdentifier returns the effective class identifier. Before sealing it
// may still be empty, pending inheritance from the parent.
func (f *Factory) ClassIdentifier() string {
	return f.class
}

// DefaultStrategy returns the factory's effective strategy tag, falling
// back to build when neither the factory nor an ancestor set one.
func (f *Factory) DefaultStrategy() strategy.Tag {
	if f.defaultStrategy == "" {
		return strategy.TagBuild
	}
	return f.defaultStrategy
}

// OverridesAllowed reports whether duplicate attribute declarations replace
// earlier ones instead of failing.
func (f *Factory) OverridesAllowed() bool {
	return f.overridesAllowed
}

// Descendants returns the factories that declared this one as parent and
// have sealed, in seal order.
func (f *Factory) Descendants() []*Factory {
	out := make([]*Factory, len(f.children))
	copy(out, f.children)
	return out
}

// AllowOverrides marks the factory (and, through seal-time propagation,
// its descendants) as accepting duplicate attribute declarations.
func (f *Factory) AllowOverrides() error {
	if f.state != stateUnsealed {
		return fmt.Errorf("%w: %q", ErrAlreadySealed, f.name)
	}
	f.overridesAllowed = true
	return nil
}

// DeclareAttribute appends one attribute rule. Declaration order is
// preserved through sealing into the resolved list.
func (f *Factory) DeclareAttribute(d attr.Declaration) error {
	if f.state != stateUnsealed {
		return fmt.Errorf("%w: %q", ErrAlreadySealed, f.name)
	}
	f.decls = append(f.decls, d)
	return nil
}

// DefineTrait attaches a trait defined inside this factory. Locally defined
// traits win over the parent's and over globally registered ones.
func (f *Factory) DefineTrait(t *trait.Trait) error {
	if f.state != stateUnsealed {
		return fmt.Errorf("%w: %q", ErrAlreadySealed, f.name)
	}
	f.definedTraits = append(f.definedTraits, t)
	return nil
}

// AddCallback registers a lifecycle hook on the factory itself.
func (f *Factory) AddCallback(name string, handler callback.Handler) error {
	if f.state != stateUnsealed {
		return fmt.Errorf("%w: %q", ErrAlreadySealed, f.name)
	}
	cb, err := callback.New(name, handler)
	if err != nil {
		return fmt.Errorf("factory %q: %w", f.name, err)
	}
	f.callbacks = append(f.callbacks, cb)
	return nil
}

// SetFinalizer replaces the create strategy's default persistence step for
// objects built by this factory.
func (f *Factory) SetFinalizer(fin strategy.Finalizer) error {
	if f.state != stateUnsealed {
		return fmt.Errorf("%w: %q", ErrAlreadySealed, f.name)
	}
	f.finalizer = fin
	return nil
}
