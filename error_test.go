package agentnews

import (
	"fmt"
	"testing"

	goerrors "github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, ErrNotFound, ErrorCode(&Error{Code: ErrNotFound}))
	assert.Equal(t, ErrNotFound, ErrorCode(&Error{Op: "outer", Err: &Error{Code: ErrNotFound}}))

	// Storage backends surface transient failures as plain wrapped errors;
	// those classify as internal instead of panicking.
	assert.Equal(t, ErrInternal, ErrorCode(goerrors.Errorf("failed to save: %v", assert.AnError)))
	assert.Equal(t, ErrInternal, ErrorCode(fmt.Errorf("dial tcp: connection refused")))
	assert.Equal(t, ErrInternal, ErrorCode(&Error{Op: "bolt.Remove"}))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "", ErrorMessage(nil))
	assert.Equal(t, "Email not found", ErrorMessage(&Error{Message: "Email not found"}))
	assert.Equal(t, "Email not found", ErrorMessage(&Error{Op: "outer", Err: &Error{Message: "Email not found"}}))

	assert.Equal(t, "An internal error has occurred.", ErrorMessage(goerrors.Errorf("failed to save: %v", assert.AnError)))
	assert.Equal(t, "An internal error has occurred.", ErrorMessage(fmt.Errorf("dial tcp: connection refused")))
}
