// +build windows

package winapi

import (
	"reflect"
	"unsafe"

	"golang.org/x/sys/windows"
)

// memory state, type and protection constants.
const (
	MemCommit  uint32 = 0x1000
	MemReserve uint32 = 0x2000
	MemRelease uint32 = 0x8000
	MemFree    uint32 = 0x10000

	PageNoAccess         uint32 = 0x01
	PageReadOnly         uint32 = 0x02
	PageReadWrite        uint32 = 0x04
	PageExecute          uint32 = 0x10
	PageExecuteRead      uint32 = 0x20
	PageExecuteReadWrite uint32 = 0x40
	PageExecuteWriteCopy uint32 = 0x80
	PageGuard            uint32 = 0x100
	PageNoCache          uint32 = 0x200
	PageWriteCombine     uint32 = 0x400
)

// ReadProcessMemory is used to read memory from process, a short read
// is an error. // #nosec
func ReadProcessMemory(hProcess windows.Handle, addr uintptr, buf []byte) error {
	const name = "ReadProcessMemory"
	if len(buf) == 0 {
		return nil
	}
	var n uint
	ret, _, err := procReadProcessMemory.Call(
		uintptr(hProcess), addr,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)),
		uintptr(unsafe.Pointer(&n)),
	)
	if ret == 0 {
		return newErrorf(name, err, "failed to read process memory at 0x%X", addr)
	}
	if int(n) != len(buf) {
		return newErrorf(name, nil, "read %d bytes at 0x%X, want %d", n, addr, len(buf))
	}
	return nil
}

// WriteProcessMemory is used to write data to memory in process, a
// short write is an error. // #nosec
func WriteProcessMemory(hProcess windows.Handle, addr uintptr, data []byte) error {
	const name = "WriteProcessMemory"
	if len(data) == 0 {
		return nil
	}
	var n uint
	ret, _, err := procWriteProcessMemory.Call(
		uintptr(hProcess), addr,
		uintptr(unsafe.Pointer(&data[0])), uintptr(len(data)),
		uintptr(unsafe.Pointer(&n)),
	)
	if ret == 0 {
		return newErrorf(name, err, "failed to write process memory at 0x%X", addr)
	}
	if int(n) != len(data) {
		return newErrorf(name, nil, "wrote %d bytes at 0x%X, want %d", n, addr, len(data))
	}
	return nil
}

// VirtualAlloc is used to reserve, commit, or change the state of a
// region of pages in the virtual address space of the calling process.
// Memory allocated by this function is automatically initialized to
// zero.
func VirtualAlloc(addr, size uintptr, typ, protect uint32) (uintptr, error) {
	const name = "VirtualAlloc"
	ret, _, err := procVirtualAlloc.Call(addr, size, uintptr(typ), uintptr(protect))
	if ret == 0 {
		return 0, newErrorf(name, err, "failed to alloc memory at 0x%X", addr)
	}
	return ret, nil
}

// VirtualAllocEx is used to reserve, commit, or change the state of a
// region of memory within the virtual address space of a specified
// process. The function initializes the memory it allocates to zero.
func VirtualAllocEx(hProcess windows.Handle, addr, size uintptr, typ, protect uint32) (uintptr, error) {
	const name = "VirtualAllocEx"
	ret, _, err := procVirtualAllocEx.Call(uintptr(hProcess), addr, size, uintptr(typ), uintptr(protect))
	if ret == 0 {
		return 0, newErrorf(name, err, "failed to alloc memory to remote process at 0x%X", addr)
	}
	return ret, nil
}

// VirtualFree is used to release, decommit, or release and decommit a
// region of pages within the virtual address space of the calling
// process.
func VirtualFree(addr, size uintptr, typ uint32) error {
	const name = "VirtualFree"
	ret, _, err := procVirtualFree.Call(addr, size, uintptr(typ))
	if ret == 0 {
		return newErrorf(name, err, "failed to free memory at 0x%X", addr)
	}
	return nil
}

// VirtualFreeEx is used to release, decommit, or release and decommit
// a region of memory within the virtual address space of a specified
// process.
func VirtualFreeEx(hProcess windows.Handle, addr, size uintptr, typ uint32) error {
	const name = "VirtualFreeEx"
	ret, _, err := procVirtualFreeEx.Call(uintptr(hProcess), addr, size, uintptr(typ))
	if ret == 0 {
		return newErrorf(name, err, "failed to free memory about remote process at 0x%X", addr)
	}
	return nil
}

// VirtualProtect is used to change the protection on a region of
// committed pages in the virtual address space of the calling
// process. // #nosec
func VirtualProtect(addr, size uintptr, new uint32, old *uint32) error {
	const name = "VirtualProtect"
	ret, _, err := procVirtualProtect.Call(
		addr, size, uintptr(new), uintptr(unsafe.Pointer(old)),
	)
	if ret == 0 {
		return newErrorf(name, err, "failed to change committed pages at 0x%X", addr)
	}
	return nil
}

// VirtualProtectEx is used to change the protection on a region of
// committed pages in the virtual address space of a specified
// process. // #nosec
func VirtualProtectEx(hProcess windows.Handle, addr, size uintptr, new uint32, old *uint32) error {
	const name = "VirtualProtectEx"
	ret, _, err := procVirtualProtectEx.Call(
		uintptr(hProcess), addr, size, uintptr(new), uintptr(unsafe.Pointer(old)),
	)
	if ret == 0 {
		return newErrorf(name, err, "failed to change committed pages about remote process at 0x%X", addr)
	}
	return nil
}

// VirtualQuery is used to retrieve information about a range of pages
// in the virtual address space of the calling process.
func VirtualQuery(addr uintptr) (*MemoryBasicInformation, error) {
	const name = "VirtualQuery"
	var mbi MemoryBasicInformation
	ret, _, err := procVirtualQuery.Call(addr, uintptr(unsafe.Pointer(&mbi)), unsafe.Sizeof(mbi))
	if ret == 0 {
		return nil, newErrorf(name, err, "failed to query memory information at 0x%X", addr)
	}
	return &mbi, nil
}

// VirtualQueryEx is used to retrieve information about a range of
// pages in the virtual address space of a specified process.
func VirtualQueryEx(hProcess windows.Handle, addr uintptr) (*MemoryBasicInformation, error) {
	const name = "VirtualQueryEx"
	var mbi MemoryBasicInformation
	ret, _, err := procVirtualQueryEx.Call(
		uintptr(hProcess), addr, uintptr(unsafe.Pointer(&mbi)), unsafe.Sizeof(mbi),
	)
	if ret == 0 {
		return nil, newErrorf(name, err, "failed to query memory information about remote process at 0x%X", addr)
	}
	return &mbi, nil
}

// MemorySlice is used to alias size bytes of this process's memory at
// addr as a byte slice, no copy is made. The caller must guarantee the
// range stays mapped and writable for the slice's lifetime. // #nosec
func MemorySlice(addr uintptr, size int) []byte {
	var slice []byte
	header := (*reflect.SliceHeader)(unsafe.Pointer(&slice))
	header.Data = addr
	header.Len = size
	header.Cap = size
	return slice
}

// FlushInstructionCache is used to flush the instruction cache for
// the specified process, it must be called after code is modified.
func FlushInstructionCache(hProcess windows.Handle, addr, size uintptr) error {
	const name = "FlushInstructionCache"
	ret, _, err := procFlushInstructionCache.Call(uintptr(hProcess), addr, size)
	if ret == 0 {
		return newErrorf(name, err, "failed to flush instruction cache at 0x%X", addr)
	}
	return nil
}
