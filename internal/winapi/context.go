// +build windows

package winapi

import (
	"unsafe"
)

// NewContext is used to allocate a context record with the alignment
// the kernel requires and the given flags already set. The record
// keeps its backing storage alive.
func NewContext(flags uint32) *Context {
	buf := make([]byte, unsafe.Sizeof(Context{})+contextAlign-1)
	addr := uintptr(unsafe.Pointer(&buf[0]))
	addr = (addr + contextAlign - 1) &^ uintptr(contextAlign-1) // #nosec
	ctx := (*Context)(unsafe.Pointer(addr))
	ctx.ContextFlags = flags
	return ctx
}
