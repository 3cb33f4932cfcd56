package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndWrap(t *testing.T) {
	t.Run("New carries code and message", func(t *testing.T) {
		err := New(CodeValidation, "field is required")
		assert.True(t, HasCode(err, CodeValidation))
		assert.Equal(t, "field is required", MessageOf(err))
	})

	t.Run("Wrap preserves the cause chain", func(t *testing.T) {
		cause := errors.New("disk full")
		err := Wrap(cause, CodeInternal, "persist decision")

		assert.True(t, HasCode(err, CodeInternal))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("Newf formats the message", func(t *testing.T) {
		err := Newf(CodeInvalidInput, "unknown rule %q", "X")
		assert.Contains(t, err.Error(), `unknown rule "X"`)
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "missing")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain error")),
		"non-domain errors default to internal")
	assert.Equal(t, CodeConflict, CodeOf(fmt.Errorf("outer: %w", New(CodeConflict, "dup"))),
		"wrapped domain errors keep their code")
}

func TestIs(t *testing.T) {
	err := New(CodeUnauthorized, "no token")
	assert.True(t, Is(err, CodeUnauthorized, CodeNotFound))
	assert.False(t, Is(err, CodeNotFound, CodeConflict))
	assert.False(t, Is(nil, CodeUnauthorized))
}

func TestHasCodeThroughWrapping(t *testing.T) {
	inner := New(CodeValidation, "bad input")
	outer := Wrap(inner, CodeInternal, "while handling request")

	require.True(t, HasCode(outer, CodeInternal))
	assert.False(t, HasCode(outer, CodeValidation),
		"HasCode reports the outermost domain code")
}
