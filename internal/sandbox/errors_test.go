package sandbox

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpawnErrorUnwrap(t *testing.T) {
	cause := errors.New("fork failed")
	err := &SpawnError{Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "fork failed")
}

func TestExecutionErrorUnwrapsUnsupported(t *testing.T) {
	err := &ExecutionError{
		Stage: "enforce",
		Err:   fmt.Errorf("kernel lacks Landlock support: %w", ErrSandboxUnsupported),
	}

	assert.ErrorIs(t, err, ErrSandboxUnsupported)
	assert.Contains(t, err.Error(), "enforce")
}

func TestErrorTypesAreDistinct(t *testing.T) {
	var (
		spawn  *SpawnError
		exec   *ExecutionError
		denied *PolicyDeniedError
		failed *CommandFailedError
	)

	var err error = &PolicyDeniedError{ExitCode: 1, Output: "permission denied"}
	assert.True(t, errors.As(err, &denied))
	assert.False(t, errors.As(err, &spawn))
	assert.False(t, errors.As(err, &exec))
	assert.False(t, errors.As(err, &failed))

	err = &CommandFailedError{ExitCode: 3}
	assert.True(t, errors.As(err, &failed))
	assert.False(t, errors.As(err, &denied))
}

func TestErrorMessagesCarryExitCodes(t *testing.T) {
	assert.Contains(t, (&PolicyDeniedError{ExitCode: 159}).Error(), "159")
	assert.Contains(t, (&CommandFailedError{ExitCode: 7}).Error(), "7")
}
