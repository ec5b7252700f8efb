package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCode_MatchesWrappedErrors(t *testing.T) {
	err := fmt.Errorf("dispatch failed: %w", newNoSuchMutationError("inc"))

	assert.True(t, IsCode(err, CodeNoSuchMutation))
	assert.False(t, IsCode(err, CodeNoSuchAction))
	assert.False(t, IsCode(errors.New("plain"), CodeNoSuchMutation))
	assert.False(t, IsCode(nil, CodeNoSuchMutation))
}

func TestError_Fields(t *testing.T) {
	var se *Error
	err := newReservedWordError(groupData, "commit")
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, CodeReservedWord, se.Code)
	assert.Equal(t, "data", se.Group)
	assert.Equal(t, "commit", se.Key)
}
