package monkey

import (
	"errors"
	"testing"

	"github.com/bouk/monkey"
	"github.com/stretchr/testify/require"
)

// PatchGuard is a type alias.
type PatchGuard = monkey.PatchGuard

// ErrMonkey is the error a patched function returns to force an
// error path that tests cannot reach otherwise.
var ErrMonkey = errors.New("monkey error")

// IsMonkeyError asserts that err is ErrMonkey, which proves the
// patched function was reached.
func IsMonkeyError(t testing.TB, err error) {
	require.Equal(t, ErrMonkey, err)
}

// Patch is a wrapper about monkey.Patch.
func Patch(target, replacement interface{}) *PatchGuard {
	return monkey.Patch(target, replacement)
}
