// +build windows

package hook

import (
	"github.com/samuelgr/Hookshot-sub001/internal/x86"
)

// tailJump is used to build the jump a trampoline ends with. On x86 a
// relative jump always reaches, the slot lies within 2 GiB of the
// hooked function by construction.
func tailJump(from, to uintptr) ([]byte, error) {
	return x86.EncodeJump(uint64(from), uint64(to))
}
