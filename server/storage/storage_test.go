package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	cause := errors.New("disk on fire")
	err := &Error{Type: ErrInvalidInput, Message: "bad plan", Err: cause}

	assert.Equal(t, "invalid_input: bad plan: disk on fire", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "not_found: plan not found", (&Error{Type: ErrNotFound, Message: "plan not found"}).Error())
}

func TestIsNotFound(t *testing.T) {
	notFound := &Error{Type: ErrNotFound, Message: "plan not found"}

	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", notFound)))
	assert.False(t, IsNotFound(&Error{Type: ErrAlreadyExists}))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
	assert.True(t, IsAlreadyExists(&Error{Type: ErrAlreadyExists}))
}
