// SPDX-License-Identifier: MIT
package strategy

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/vk/fabrikgo/internal/callback"
)

// stubIDs numbers stubbed instances whose id field is numeric.
var stubIDs atomic.Int64

// stubProxy constructs the object and marks it as already persisted by
// assigning a stub identifier. Nothing ever reaches the persister.
type stubProxy struct {
	buildProxy
}

func newStub(ctor Constructor) *stubProxy {
	return &stubProxy{buildProxy: *newBuild(ctor)}
}

func (p *stubProxy) Result(Finalizer) (any, error) {
	p.assignStubID()
	if err := p.callbacks.fire(callback.AfterStub, p.instance); err != nil {
		return nil, err
	}
	return p.instance, nil
}

// assignStubID fills an id field if the instance has one. String ids get a
// UUID, numeric ids a process-unique counter. Instances without an id field
// are stubbed as-is.
func (p *stubProxy) assignStubID() {
	if err := setField(p.instance, "id", uuid.NewString()); err == nil {
		return
	}
	_ = setField(p.instance, "id", stubIDs.Add(1))
}
