package factory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/fabrikgo/internal/attr"
	"github.com/vk/fabrikgo/internal/strategy"
	"github.com/vk/fabrikgo/internal/trait"
)

// testLookup is an in-test registry stand-in implementing Lookup.
type testLookup struct {
	factories    map[string]*Factory
	traits       map[string]*trait.Trait
	constructors map[string]strategy.Constructor
}

func newTestLookup() *testLookup {
	return &testLookup{
		factories:    make(map[string]*Factory),
		traits:       make(map[string]*trait.Trait),
		constructors: make(map[string]strategy.Constructor),
	}
}

func (l *testLookup) add(f *Factory) {
	for _, name := range f.Names() {
		l.factories[name] = f
	}
}

func (l *testLookup) FactoryByName(name string) (*Factory, error) {
	f, ok := l.factories[attr.Canonical(name)]
	if !ok {
		return nil, fmt.Errorf("factory %q not found", name)
	}
	return f, nil
}

func (l *testLookup) TraitByName(name string) (*trait.Trait, error) {
	t, ok := l.traits[attr.Canonical(name)]
	if !ok {
		return nil, fmt.Errorf("trait %q not found", name)
	}
	return t, nil
}

func (l *testLookup) ConstructorFor(class string) (strategy.Constructor, error) {
	if ctor, ok := l.constructors[attr.Canonical(class)]; ok {
		return ctor, nil
	}
	return strategy.NewRecord, nil
}

// newFactory builds a factory for tests, failing fast on option errors.
func newFactory(t *testing.T, l Lookup, name string, opts Options) *Factory {
	t.Helper()
	f, err := New(l, name, opts)
	require.NoError(t, err)
	return f
}

func staticDecl(name string, value any) attr.Declaration {
	return attr.Declaration{Name: name, HasValue: true, Value: value}
}

func declare(t *testing.T, f *Factory, decls ...attr.Declaration) {
	t.Helper()
	for _, d := range decls {
		require.NoError(t, f.DeclareAttribute(d))
	}
}

func newTrait(t *testing.T, name string, decls ...attr.Declaration) *trait.Trait {
	t.Helper()
	tr, err := trait.New(name, decls, nil)
	require.NoError(t, err)
	return tr
}

func attrNames(l *attr.List) []string {
	out := make([]string, 0, l.Len())
	for _, a := range l.All() {
		out = append(out, a.Name)
	}
	return out
}

func attrValue(t *testing.T, l *attr.List, name string) any {
	t.Helper()
	a, ok := l.Get(name)
	require.True(t, ok, "attribute %q missing", name)
	v, err := a.Compute()
	require.NoError(t, err)
	return v
}
