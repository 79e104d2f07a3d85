// SPDX-License-Identifier: MIT
package strategy

import (
	"fmt"

	"github.com/vk/fabrikgo/internal/callback"
)

// createProxy extends the build behavior with persistence: after_build,
// before_create, the finalizer (default: the configured Persister), then
// after_create.
type createProxy struct {
	buildProxy
	persister Persister
}

func newCreate(ctor Constructor, persister Persister) *createProxy {
	return &createProxy{buildProxy: *newBuild(ctor), persister: persister}
}

func (p *createProxy) Result(finalizer Finalizer) (any, error) {
	if err := p.callbacks.fire(callback.AfterBuild, p.instance); err != nil {
		return nil, err
	}
	if err := p.callbacks.fire(callback.BeforeCreate, p.instance); err != nil {
		return nil, err
	}

	if finalizer == nil {
		finalizer = p.defaultFinalizer
	}
	if err := finalizer(p.instance); err != nil {
		return nil, fmt.Errorf("create finalizer: %w", err)
	}

	if err := p.callbacks.fire(callback.AfterCreate, p.instance); err != nil {
		return nil, err
	}
	return p.instance, nil
}

func (p *createProxy) defaultFinalizer(instance any) error {
	if p.persister == nil {
		return fmt.Errorf("create strategy has no persister and no custom finalizer")
	}
	return p.persister.Save(instance)
}
