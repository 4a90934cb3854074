// +build windows

package winapi

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// SuspendThread is used to suspend the specified thread, it returns
// the previous suspend count.
func SuspendThread(hThread windows.Handle) (uint32, error) {
	const name = "SuspendThread"
	ret, _, err := procSuspendThread.Call(uintptr(hThread))
	if uint32(ret) == 0xFFFFFFFF {
		return 0, newError(name, err, "failed to suspend thread")
	}
	return uint32(ret), nil
}

// ResumeThread is used to decrement the suspend count of the
// specified thread, it returns the previous suspend count.
func ResumeThread(hThread windows.Handle) (uint32, error) {
	const name = "ResumeThread"
	ret, _, err := procResumeThread.Call(uintptr(hThread))
	if uint32(ret) == 0xFFFFFFFF {
		return 0, newError(name, err, "failed to resume thread")
	}
	return uint32(ret), nil
}

// GetThreadContext is used to retrieve the context of the specified
// thread, the thread must be suspended. // #nosec
func GetThreadContext(hThread windows.Handle, ctx *Context) error {
	const name = "GetThreadContext"
	ret, _, err := procGetThreadContext.Call(uintptr(hThread), uintptr(unsafe.Pointer(ctx)))
	if ret == 0 {
		return newError(name, err, "failed to get thread context")
	}
	return nil
}

// SetThreadContext is used to set the context of the specified
// thread, the thread must be suspended. // #nosec
func SetThreadContext(hThread windows.Handle, ctx *Context) error {
	const name = "SetThreadContext"
	ret, _, err := procSetThreadContext.Call(uintptr(hThread), uintptr(unsafe.Pointer(ctx)))
	if ret == 0 {
		return newError(name, err, "failed to set thread context")
	}
	return nil
}
