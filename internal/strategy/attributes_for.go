// SPDX-License-Identifier: MIT
package strategy

import "github.com/vk/fabrikgo/internal/callback"

// attributesForProxy never instantiates anything: it collects the resolved
// non-ignored attribute pairs into a plain map. Callbacks do not apply.
type attributesForProxy struct {
	attrs map[string]any
}

func newAttributesFor() *attributesForProxy {
	return &attributesForProxy{attrs: make(map[string]any)}
}

func (p *attributesForProxy) AddCallback(string, callback.Handler) {}

func (p *attributesForProxy) Set(name string, value any, ignored bool) error {
	if !ignored {
		p.attrs[name] = value
	}
	return nil
}

func (p *attributesForProxy) Result(Finalizer) (any, error) {
	return p.attrs, nil
}
