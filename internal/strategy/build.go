// SPDX-License-Identifier: MIT
package strategy

import "github.com/vk/fabrikgo/internal/callback"

// buildProxy constructs the object in memory and stops there: attributes
// are set, after_build fires, nothing is persisted.
type buildProxy struct {
	instance  any
	transient map[string]any
	callbacks callbackSet
}

func newBuild(ctor Constructor) *buildProxy {
	return &buildProxy{
		instance:  ctor(),
		transient: make(map[string]any),
		callbacks: make(callbackSet),
	}
}

func (p *buildProxy) AddCallback(name string, handler callback.Handler) {
	p.callbacks.add(name, handler)
}

func (p *buildProxy) Set(name string, value any, ignored bool) error {
	if ignored {
		p.transient[name] = value
		return nil
	}
	return setField(p.instance, name, value)
}

func (p *buildProxy) Result(Finalizer) (any, error) {
	if err := p.callbacks.fire(callback.AfterBuild, p.instance); err != nil {
		return nil, err
	}
	return p.instance, nil
}
