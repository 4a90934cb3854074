// +build windows

package hook

import (
	"encoding/binary"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/samuelgr/Hookshot-sub001/internal/winapi"
	"github.com/samuelgr/Hookshot-sub001/internal/x86"
)

// nop pads the gap between the five byte jump and the end of the
// stolen prologue.
const nop = 0x90

// executable reports whether addr lies in a committed page that
// allows execution.
func executable(addr uintptr) bool {
	if addr == 0 {
		return false
	}
	mbi, err := winapi.VirtualQuery(addr)
	if err != nil || mbi.State != winapi.MemCommit {
		return false
	}
	if mbi.Protect&winapi.PageGuard != 0 {
		return false
	}
	switch mbi.Protect &^ (winapi.PageNoCache | winapi.PageWriteCombine) {
	case winapi.PageExecute, winapi.PageExecuteRead,
		winapi.PageExecuteReadWrite, winapi.PageExecuteWriteCopy:
		return true
	}
	return false
}

// storeDisplacement publishes the rel32 field of the jump at original
// with one 32 bit store, racing threads decode either the old or the
// new displacement, never a mix. Functions start aligned, the field
// stays inside one cache line.
func storeDisplacement(original uintptr, jump []byte) {
	*(*uint32)(unsafe.Pointer(original + 1)) = binary.LittleEndian.Uint32(jump[1:]) // #nosec
}

// writeHookJump is used to rewrite the first stolen bytes of original
// into a jump to replacement padded with NOPs. Trailing bytes land
// before the leading jump byte so a thread racing past the first byte
// never decodes a partial jump. Page protection is restored on every
// exit path.
func writeHookJump(original uintptr, stolen int, replacement uintptr) Result {
	jump, err := x86.EncodeJump(uint64(original), uint64(replacement))
	if err != nil {
		// the replacement is beyond rel32 reach
		return FailCannotSetHook
	}
	size := uintptr(stolen)
	var old uint32
	err = winapi.VirtualProtect(original, size, winapi.PageExecuteReadWrite, &old)
	if err != nil {
		return FailCannotSetHook
	}
	window := winapi.MemorySlice(original, stolen)
	for i := x86.JumpRelativeLength; i < stolen; i++ {
		window[i] = nop
	}
	storeDisplacement(original, jump)
	window[0] = jump[0]
	var restored uint32
	_ = winapi.VirtualProtect(original, size, old, &restored)
	// architecturally a no-op on x86, the call stays explicit
	_ = winapi.FlushInstructionCache(windows.CurrentProcess(), original, size)
	return Success
}

// writeReplacementJump is used to retarget the jump at original, only
// the displacement changes.
func writeReplacementJump(original, replacement uintptr) Result {
	jump, err := x86.EncodeJump(uint64(original), uint64(replacement))
	if err != nil {
		return FailCannotSetHook
	}
	const size = uintptr(x86.JumpRelativeLength)
	var old uint32
	err = winapi.VirtualProtect(original, size, winapi.PageExecuteReadWrite, &old)
	if err != nil {
		return FailCannotSetHook
	}
	storeDisplacement(original, jump)
	var restored uint32
	_ = winapi.VirtualProtect(original, size, old, &restored)
	_ = winapi.FlushInstructionCache(windows.CurrentProcess(), original, size)
	return Success
}
