// +build windows

package hook

import (
	"github.com/samuelgr/Hookshot-sub001/internal/x86"
)

// tailJump is used to build the jump a trampoline ends with. On
// x86-64 it is the 14 byte absolute form, the continuation point
// needs no reachability from the slot.
func tailJump(_, to uintptr) ([]byte, error) {
	return x86.EncodeAbsoluteJump(uint64(to)), nil
}
