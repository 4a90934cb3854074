// +build windows

package winapi

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// getModuleHandle calls GetModuleHandleW through the lazy procedure,
// x/sys/windows does not wrap it.
func getModuleHandle(modname *uint16) (windows.Handle, error) {
	ret, _, err := procGetModuleHandle.Call(uintptr(unsafe.Pointer(modname)))
	if ret == 0 {
		return 0, err
	}
	return windows.Handle(ret), nil
}

// GetModuleHandle is used to get the base address of a module that is
// already loaded in the calling process.
func GetModuleHandle(name string) (windows.Handle, error) {
	const fn = "GetModuleHandle"
	ptr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, newErrorf(fn, err, "invalid module name %q", name)
	}
	handle, err := getModuleHandle(ptr)
	if err != nil {
		return 0, newErrorf(fn, err, "module %q is not loaded", name)
	}
	return handle, nil
}

// LoadLibrary is used to load a module into the calling process.
func LoadLibrary(path string) (windows.Handle, error) {
	const fn = "LoadLibrary"
	handle, err := windows.LoadLibrary(path)
	if err != nil {
		return 0, newErrorf(fn, err, "failed to load library %q", path)
	}
	return handle, nil
}

// FreeLibrary is used to unload a module and ignore error about it.
func FreeLibrary(handle windows.Handle) {
	_ = windows.FreeLibrary(handle)
}

// GetModuleFilename is used to get the full path of a loaded module.
func GetModuleFilename(module windows.Handle) (string, error) {
	const fn = "GetModuleFilename"
	size := uint32(windows.MAX_PATH)
	for {
		buf := make([]uint16, size)
		n, err := windows.GetModuleFileName(module, &buf[0], size)
		if err != nil {
			return "", newError(fn, err, "failed to get module file name")
		}
		// a full buffer means the path was truncated
		if n < size {
			return windows.UTF16ToString(buf[:n]), nil
		}
		size *= 2
	}
}

// GetProcAddress is used to resolve an exported procedure of a loaded
// module through the system loader.
func GetProcAddress(module windows.Handle, name string) (uintptr, error) {
	const fn = "GetProcAddress"
	addr, err := windows.GetProcAddress(module, name)
	if err != nil {
		return 0, newErrorf(fn, err, "failed to find procedure %q", name)
	}
	return addr, nil
}
