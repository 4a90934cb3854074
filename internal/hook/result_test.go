package hook

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResultString(t *testing.T) {
	require.Equal(t, "Success", Success.String())
	require.Equal(t, "FailNotFound", FailNotFound.String())
	require.Equal(t, "EHookshotResult(1000)", Result(1000).String())

	// every defined result has a distinct stable name
	seen := make(map[string]bool, int(maxResult))
	for r := Success; r < maxResult; r++ {
		name := r.String()
		require.NotEmpty(t, name)
		require.False(t, seen[name])
		seen[name] = true
	}
}

func TestResultIsSuccess(t *testing.T) {
	require.True(t, Success.IsSuccess())
	require.True(t, NoEffect.IsSuccess())
	require.False(t, NoEffect.IsFailure())

	for r := FailAllocation; r < maxResult; r++ {
		require.False(t, r.IsSuccess())
		require.True(t, r.IsFailure())
	}
}
