package result

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeString(t *testing.T) {
	t.Run("every code has a stable rendering", func(t *testing.T) {
		seen := make(map[string]Code, Count())
		for c := Code(0); c < maxCode; c++ {
			s := c.String()
			require.NotEmpty(t, s)
			prev, ok := seen[s]
			require.Falsef(t, ok, "codes %d and %d share rendering %q", prev, c, s)
			seen[s] = c
		}
	})

	t.Run("fixed renderings", func(t *testing.T) {
		require.Equal(t, "Success", Success.String())
		require.Equal(t, "Failure", Failure.String())
		require.Equal(t, "ErrorCreateProcess", ErrorCreateProcess.String())
		require.Equal(t, "ErrorRunFailedSync", ErrorRunFailedSync.String())
		require.Equal(t, "ErrorCannotLoadLibraryOtherArchitecture",
			ErrorCannotLoadLibraryOtherArchitecture.String())
	})

	t.Run("unknown code", func(t *testing.T) {
		require.Equal(t, "EInjectResult(12345)", Code(12345).String())
	})
}

func TestCodeBoundary(t *testing.T) {
	require.True(t, Success.IsSuccess())
	require.False(t, Success.IsError())

	for c := Failure; c < maxCode; c++ {
		require.Falsef(t, c.IsSuccess(), "%s must not be a success", c)
		require.Truef(t, c.IsError(), "%s must be an error", c)
	}
}

func TestCodeOrder(t *testing.T) {
	// the numeric order is part of the external interface, a child
	// hookshot process reports its result through the exit code
	require.Equal(t, Code(0), Success)
	require.Equal(t, Code(1), Failure)
	require.Equal(t, Code(2), ErrorCreateProcess)
	require.Equal(t, 42, Count())
}

func TestExitCodeRoundTrip(t *testing.T) {
	for c := Code(0); c < maxCode; c++ {
		require.Equal(t, c, FromExitCode(uint32(c.ExitCode())))
	}
	require.Equal(t, Failure, FromExitCode(60000))
}
