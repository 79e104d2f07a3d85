// SPDX-License-Identifier: MIT
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vk/fabrikgo/internal/attr"
	"github.com/vk/fabrikgo/internal/ctxlog"
	"github.com/vk/fabrikgo/internal/factory"
	"github.com/vk/fabrikgo/internal/strategy"
	"github.com/vk/fabrikgo/internal/trait"
)

var (
	// ErrDuplicateDefinition is reported when a name is registered twice.
	ErrDuplicateDefinition = errors.New("duplicate definition")

	// ErrNotFound is reported on any failed lookup.
	ErrNotFound = errors.New("not found")

	// ErrDefinitionPhaseOver is reported for registration after Finish.
	ErrDefinitionPhaseOver = errors.New("definition phase is over")
)

// Registry holds the process-wide definition tables for one application
// instance.
type Registry struct {
	mu           sync.RWMutex
	factories    map[string]*factory.Factory
	traits       map[string]*trait.Trait
	constructors map[string]strategy.Constructor
	sequences    map[string]*attr.Sequence
	finished     bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		factories:    make(map[string]*factory.Factory),
		traits:       make(map[string]*trait.Trait),
		constructors: make(map[string]strategy.Constructor),
		sequences:    make(map[string]*attr.Sequence),
	}
}

// RegisterFactory indexes a factory under its canonical name and every
// alias. Any of those names colliding with an existing registration is an
// ErrDuplicateDefinition.
func (r *Registry) RegisterFactory(f *factory.Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return fmt.Errorf("%w: cannot register factory %q", ErrDefinitionPhaseOver, f.Name())
	}

	names := f.Names()
	for _, name := range names {
		if _, exists := r.factories[name]; exists {
			return fmt.Errorf("%w: factory name %q is already registered", ErrDuplicateDefinition, name)
		}
	}
	for _, name := range names {
		r.factories[name] = f
	}
	return nil
}

// RegisterTrait adds a globally available trait.
func (r *Registry) RegisterTrait(t *trait.Trait) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return fmt.Errorf("%w: cannot register trait %q", ErrDefinitionPhaseOver, t.Name())
	}
	if _, exists := r.traits[t.Name()]; exists {
		return fmt.Errorf("%w: trait %q is already registered", ErrDuplicateDefinition, t.Name())
	}
	r.traits[t.Name()] = t
	return nil
}

// RegisterConstructor maps a class identifier to the Go constructor that
// produces empty instances of it.
func (r *Registry) RegisterConstructor(class string, ctor strategy.Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return fmt.Errorf("%w: cannot register constructor %q", ErrDefinitionPhaseOver, class)
	}
	canonical := attr.Canonical(class)
	if _, exists := r.constructors[canonical]; exists {
		return fmt.Errorf("%w: constructor for %q is already registered", ErrDuplicateDefinition, canonical)
	}
	r.constructors[canonical] = ctor
	return nil
}

// RegisterSequence adds a named monotonic counter.
func (r *Registry) RegisterSequence(s *attr.Sequence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return fmt.Errorf("%w: cannot register sequence %q", ErrDefinitionPhaseOver, s.Name())
	}
	if _, exists := r.sequences[s.Name()]; exists {
		return fmt.Errorf("%w: sequence %q is already registered", ErrDuplicateDefinition, s.Name())
	}
	r.sequences[s.Name()] = s
	return nil
}

// FactoryByName resolves a canonical factory name or alias.
func (r *Registry) FactoryByName(name string) (*factory.Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[attr.Canonical(name)]
	if !ok {
		return nil, fmt.Errorf("factory %q %w", name, ErrNotFound)
	}
	return f, nil
}

// TraitByName resolves a globally registered trait. Factories consult this
// as the last tier of their trait lookup.
func (r *Registry) TraitByName(name string) (*trait.Trait, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.traits[attr.Canonical(name)]
	if !ok {
		return nil, fmt.Errorf("trait %q %w", name, ErrNotFound)
	}
	return t, nil
}

// ConstructorFor resolves the constructor for a class identifier. A class
// with no registered Go constructor materializes as a dynamic Record so
// that definition-file-only use works end to end.
func (r *Registry) ConstructorFor(class string) (strategy.Constructor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ctor, ok := r.constructors[attr.Canonical(class)]; ok {
		return ctor, nil
	}
	return strategy.NewRecord, nil
}

// SequenceByName resolves a registered sequence.
func (r *Registry) SequenceByName(name string) (*attr.Sequence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sequences[attr.Canonical(name)]
	if !ok {
		return nil, fmt.Errorf("sequence %q %w", name, ErrNotFound)
	}
	return s, nil
}

// Factories returns every registered factory once, sorted by canonical name.
func (r *Registry) Factories() []*factory.Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]*factory.Factory)
	for _, f := range r.factories {
		seen[f.Name()] = f
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*factory.Factory, 0, len(names))
	for _, name := range names {
		out = append(out, seen[name])
	}
	return out
}

// Finish ends the definition phase. Registration afterwards fails; lookups
// keep working and are safe from concurrent builds.
func (r *Registry) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = true
}

// SealAll seals every registered factory in name order. The orchestrating
// loader calls this once after Finish so the build phase never triggers a
// first-read compile.
func (r *Registry) SealAll(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	for _, f := range r.Factories() {
		if err := f.Seal(); err != nil {
			return err
		}
	}
	logger.Debug("All factories sealed.", "count", len(r.Factories()))
	return nil
}
