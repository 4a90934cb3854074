// +build windows

package winapi

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// CreateFileMapping is used to create an anonymous pagefile backed
// read write mapping of the given size, the handle is inheritable
// when requested.
func CreateFileMapping(size uint32, inherit bool) (windows.Handle, error) {
	const name = "CreateFileMapping"
	var sa *windows.SecurityAttributes
	if inherit {
		sa = &windows.SecurityAttributes{InheritHandle: 1}
		sa.Length = uint32(unsafe.Sizeof(*sa))
	}
	handle, err := windows.CreateFileMapping(
		windows.InvalidHandle, sa, windows.PAGE_READWRITE, 0, size, nil,
	)
	if err != nil {
		return 0, newErrorf(name, err, "failed to create file mapping with size %d", size)
	}
	return handle, nil
}

// MapViewOfFile is used to map a read write view of the mapping into
// the address space of the calling process.
func MapViewOfFile(handle windows.Handle, size uint32) (uintptr, error) {
	const name = "MapViewOfFile"
	addr, err := windows.MapViewOfFile(
		handle, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, 0, uintptr(size),
	)
	if err != nil {
		return 0, newError(name, err, "failed to map view of file")
	}
	return addr, nil
}

// UnmapViewOfFile is used to unmap a mapped view from the address
// space of the calling process and ignore error about it.
func UnmapViewOfFile(addr uintptr) {
	_ = windows.UnmapViewOfFile(addr)
}
