package try

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf(t *testing.T) {
	t.Parallel()

	ok := Of(5, nil)
	assert.True(t, ok.IsSuccess())

	v, err := ok.Get()
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	boom := errors.New("boom") //nolint:err113
	bad := Of(5, boom)
	assert.True(t, bad.IsFailure())

	v, err = bad.Get()
	require.ErrorIs(t, err, boom)
	assert.Zero(t, v)
}
