package callback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RecognizedNames(t *testing.T) {
	t.Parallel()

	for _, name := range []string{AfterBuild, BeforeCreate, AfterCreate, AfterStub} {
		t.Run(name, func(t *testing.T) {
			cb, err := New(name, func(any) error { return nil })
			require.NoError(t, err)
			assert.Equal(t, name, cb.Name)
		})
	}
}

func TestNew_UnknownName(t *testing.T) {
	t.Parallel()

	_, err := New("before_build", func(any) error { return nil })
	require.ErrorIs(t, err, ErrUnknownName)
}

func TestNew_NilHandler(t *testing.T) {
	t.Parallel()

	_, err := New(AfterBuild, nil)
	require.Error(t, err)
}
