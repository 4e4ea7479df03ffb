package memerrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorParts(t *testing.T) {
	assert.Equal(t, "SingularMatrix", GetErrorName(ErrMSingularMatrix))
	assert.Equal(t, "M1", GetErrorCode(ErrMSingularMatrix))
	assert.Equal(t, "M1_SingularMatrix", GetErrorCodeWithName(ErrMSingularMatrix))
	assert.Equal(t, "Forward matrix has no inverse over GF(2).", GetErrorDesc(ErrMSingularMatrix))

	wrapped := fmt.Errorf("generate: %w", ErrLRowWidthNegative)
	assert.Equal(t, "", GetErrorCode(fmt.Errorf("plain")))
	assert.Equal(t, "No Error", GetErrorName(nil))
	assert.ErrorIs(t, wrapped, ErrLRowWidthNegative)
}

func TestSentinel(t *testing.T) {
	wrapped := fmt.Errorf("config.json: %w", ErrCNotFound)
	assert.Equal(t, ErrCNotFound, Sentinel(wrapped))
	assert.Equal(t, "C1_NotFound", GetErrorCodeWithName(Sentinel(wrapped)))
	assert.Nil(t, Sentinel(fmt.Errorf("plain")))
	assert.Nil(t, Sentinel(nil))
}
