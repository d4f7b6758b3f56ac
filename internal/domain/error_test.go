package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, EINVALID, ErrorCode(Errorf(EINVALID, "invoice.create", "bad input")))
	assert.Equal(t, EINTERNAL, ErrorCode(errors.New("raw database error")))

	wrapped := fmt.Errorf("outer: %w", ErrInvoiceNotFound)
	assert.Equal(t, ENOTFOUND, ErrorCode(wrapped))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "bad input", ErrorMessage(Errorf(EINVALID, "invoice.create", "bad input")))

	// Internal details never reach the user.
	internal := WrapError(errors.New("pq: connection refused"), EINTERNAL, "invoice.list", "query failed")
	assert.Equal(t, "An internal error occurred. Please try again later.", ErrorMessage(internal))
	assert.Equal(t, "An internal error occurred. Please try again later.", ErrorMessage(errors.New("raw")))
}

func TestErrorStringIncludesOpAndCause(t *testing.T) {
	cause := errors.New("timeout")
	err := WrapError(cause, EUNAVAILABLE, "email.send", "provider unreachable")
	assert.Equal(t, "email.send: provider unreachable: timeout", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestWrapErrorNil(t *testing.T) {
	assert.Nil(t, WrapError(nil, EINTERNAL, "op", "msg"))
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(ErrClientArchived, ECONFLICT))
	assert.False(t, IsCode(ErrClientArchived, ENOTFOUND))
}
