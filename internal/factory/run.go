// SPDX-License-Identifier: MIT
//
// Build orchestration: applying per-call overrides on top of the resolved
// attribute list and driving a Proxy to materialize the object.
package factory

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/fabrikgo/internal/attr"
	"github.com/vk/fabrikgo/internal/ctxlog"
	"github.com/vk/fabrikgo/internal/strategy"
)

// Overrides maps attribute-name-like keys to literal values for one build
// call. Keys are canonicalized before matching, so any case or separator
// convention reaches the right attribute.
type Overrides map[string]any

// Run materializes one object. The proxy builder selects the strategy; the
// overrides shadow the factory's own values for this call only. Override
// keys that match no declared attribute are still applied ad hoc, so a
// caller can construct attributes the factory never declared.
func (f *Factory) Run(ctx context.Context, newProxy strategy.Builder, overrides Overrides) (any, error) {
	logger := ctxlog.FromContext(ctx).With("factory", f.name)

	if err := f.Seal(); err != nil {
		return nil, err
	}

	ctor, err := f.constructor()
	if err != nil {
		return nil, err
	}
	proxy := newProxy(ctor)

	callbacks, err := f.resolvedCallbacks()
	if err != nil {
		return nil, err
	}
	for _, cb := range callbacks {
		proxy.AddCallback(cb.Name, cb.Handler)
	}

	pending := make(map[string]any, len(overrides))
	for key, val := range overrides {
		pending[attr.Canonical(key)] = val
	}

	attrs, err := f.Attributes()
	if err != nil {
		return nil, err
	}

	for _, a := range attrs.All() {
		overridden := false
		for _, key := range matchKeys(a) {
			val, ok := pending[key]
			if !ok {
				continue
			}
			// A literal override carries the attribute's ignored flag
			// forward: overriding a non-persisted attribute does not
			// make it persisted.
			if err := proxy.Set(a.Name, val, a.Ignored); err != nil {
				return nil, fmt.Errorf("factory %q: %w", f.name, err)
			}
			delete(pending, key)
			overridden = true
		}
		if overridden {
			continue
		}

		val, err := f.attributeValue(ctx, a, newProxy)
		if err != nil {
			return nil, err
		}
		if err := proxy.Set(a.Name, val, a.Ignored); err != nil {
			return nil, fmt.Errorf("factory %q: %w", f.name, err)
		}
	}

	// Leftover keys matched nothing declared; apply them ad hoc in a
	// deterministic order.
	if len(pending) > 0 {
		keys := make([]string, 0, len(pending))
		for key := range pending {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if err := proxy.Set(key, pending[key], false); err != nil {
				return nil, fmt.Errorf("factory %q: ad-hoc override %q: %w", f.name, key, err)
			}
		}
	}

	logger.Debug("Build resolved, finalizing.", "attributes", attrs.Len(), "overrides", len(overrides))
	return proxy.Result(f.finalizer)
}

// RunStrategy is the tag-driven convenience over Run: it resolves the
// builder for the factory's default strategy, or for tag when given.
func (f *Factory) RunStrategy(ctx context.Context, tag strategy.Tag, persister strategy.Persister, overrides Overrides) (any, error) {
	if tag == "" {
		tag = f.DefaultStrategy()
	}
	builder, err := strategy.New(tag, persister)
	if err != nil {
		return nil, fmt.Errorf("factory %q: %w", f.name, err)
	}
	return f.Run(ctx, builder, overrides)
}

// matchKeys returns the canonical keys an override may use to address an
// attribute: its name and its declared aliases.
func matchKeys(a *attr.Attribute) []string {
	if len(a.Aliases) == 0 {
		return []string{a.Name}
	}
	return append([]string{a.Name}, a.Aliases...)
}

// attributeValue computes an attribute's own value: associations build
// their target factory through the same proxy builder, everything else
// computes locally (deferred generators run here).
func (f *Factory) attributeValue(ctx context.Context, a *attr.Attribute, newProxy strategy.Builder) (any, error) {
	if a.Kind != attr.Association {
		return a.Compute()
	}

	target, err := f.lookup.FactoryByName(a.Target())
	if err != nil {
		return nil, fmt.Errorf("factory %q: association %q: %w", f.name, a.Name, err)
	}
	val, err := target.Run(ctx, newProxy, nil)
	if err != nil {
		return nil, fmt.Errorf("factory %q: building association %q: %w", f.name, a.Name, err)
	}
	return val, nil
}

// constructor resolves the runtime constructor for the class identifier
// exactly once; later builds reuse the memoized result.
func (f *Factory) constructor() (strategy.Constructor, error) {
	f.ctorOnce.Do(func() {
		f.ctor, f.ctorErr = f.lookup.ConstructorFor(f.class)
	})
	return f.ctor, f.ctorErr
}
