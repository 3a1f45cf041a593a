package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ignored"))

	cause := New("boom")
	err := Wrap(cause, "describe subnets")
	require.Error(t, err)
	assert.Equal(t, "describe subnets: boom", err.Error())
	assert.True(t, Is(err, cause))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify(ErrCollaborator, nil))

	cause := New("throttled")
	err := Classify(ErrCollaborator, cause)
	assert.True(t, Is(err, ErrCollaborator))
	assert.True(t, Is(err, cause))
	assert.False(t, Is(err, ErrInput))

	// Already classified errors are not wrapped twice.
	again := Classify(ErrCollaborator, err)
	assert.Same(t, err, again)
}

func TestConfigfAndInputf(t *testing.T) {
	cfgErr := Configf("missing %s", "vpc-id")
	assert.True(t, Is(cfgErr, ErrConfig))
	assert.Equal(t, "configuration error: missing vpc-id", cfgErr.Error())

	inErr := Inputf("field %q is required", "IncidentID")
	assert.True(t, Is(inErr, ErrInput))
	assert.Contains(t, inErr.Error(), `"IncidentID"`)
}

func TestAs(t *testing.T) {
	type codeErr struct{ error }
	err := Wrap(codeErr{New("inner")}, "outer")

	var target codeErr
	require.True(t, As(err, &target))
	assert.Equal(t, "inner", target.Error())
	assert.Equal(t, "outer: inner", fmt.Sprint(err))
}
