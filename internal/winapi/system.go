// +build windows

package winapi

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// processor architectures in SystemInfo.
const (
	ProcessorArchitectureIntel uint16 = 0
	ProcessorArchitectureAMD64 uint16 = 9
)

// SystemInfo is an equivalent representation of SYSTEM_INFO in the
// Windows API.
type SystemInfo struct {
	ProcessorArchitecture     uint16
	Reserved                  uint16
	PageSize                  uint32
	MinimumApplicationAddress uintptr
	MaximumApplicationAddress uintptr
	ActiveProcessorMask       uintptr
	NumberOfProcessors        uint32
	ProcessorType             uint32
	AllocationGranularity     uint32
	ProcessorLevel            uint16
	ProcessorRevision         uint16
}

// GetNativeSystemInfo is used to retrieve information about the
// system, for an application running under WOW64 it reports the
// native values.
func GetNativeSystemInfo() *SystemInfo {
	info := SystemInfo{}
	_, _, _ = procGetNativeSystemInfo.Call(uintptr(unsafe.Pointer(&info)))
	return &info
}

// DesktopDirectory is used to get the path of the desktop directory
// of the current user.
func DesktopDirectory() (string, error) {
	const name = "DesktopDirectory"
	path, err := windows.KnownFolderPath(windows.FOLDERID_Desktop, 0)
	if err != nil {
		return "", newError(name, err, "failed to get desktop directory")
	}
	return path, nil
}
