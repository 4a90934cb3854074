// +build windows

package winapi

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/samuelgr/Hookshot-sub001/internal/convert"
)

// process creation flags.
const (
	CreateSuspended uint32 = 0x00000004
)

func createProcess(name string, args []string, flags uint32, inheritHandles bool) (*windows.ProcessInformation, error) {
	if len(args) == 0 {
		return nil, newError(name, nil, "empty command line")
	}
	appName, err := windows.UTF16PtrFromString(args[0])
	if err != nil {
		return nil, newErrorf(name, err, "invalid application path %q", args[0])
	}
	cmdLine, err := windows.UTF16PtrFromString(windows.ComposeCommandLine(args))
	if err != nil {
		return nil, newError(name, err, "invalid command line")
	}
	si := windows.StartupInfo{}
	si.Cb = uint32(unsafe.Sizeof(si))
	pi := windows.ProcessInformation{}
	err = windows.CreateProcess(
		appName, cmdLine, nil, nil, inheritHandles,
		flags, nil, nil, &si, &pi,
	)
	if err != nil {
		return nil, newErrorf(name, err, "failed to create process %q", args[0])
	}
	return &pi, nil
}

// CreateProcess is used to spawn a process that starts running
// immediately, args must begin with the application path. The caller
// owns both returned handles.
func CreateProcess(args []string, inheritHandles bool) (*windows.ProcessInformation, error) {
	return createProcess("CreateProcess", args, 0, inheritHandles)
}

// CreateProcessSuspended is used to spawn a process with its initial
// thread suspended, args must begin with the application path. The
// caller owns both returned handles.
func CreateProcessSuspended(args []string, inheritHandles bool) (*windows.ProcessInformation, error) {
	return createProcess("CreateProcessSuspended", args, CreateSuspended, inheritHandles)
}

// information class about NTQueryInformationProcess.
const (
	InfoClassProcessBasicInformation uint8 = 0
)

// ProcessBasicInformation is an equivalent representation of
// PROCESS_BASIC_INFORMATION in the Windows API.
type ProcessBasicInformation struct {
	ExitStatus                   uintptr
	PEBBaseAddress               uintptr
	AffinityMask                 uintptr
	BasePriority                 uintptr
	UniqueProcessID              uintptr
	InheritedFromUniqueProcessID uintptr
}

// NTQueryInformationProcess is used to query process information. // #nosec
func NTQueryInformationProcess(handle windows.Handle, class uint8, info *byte, size uintptr) (uint32, error) {
	const name = "NTQueryInformationProcess"
	var returnLength uint32
	ret, _, _ := procNTQueryInformationProcess.Call(
		uintptr(handle), uintptr(class), uintptr(unsafe.Pointer(info)),
		size, uintptr(unsafe.Pointer(&returnLength)),
	)
	if ret != 0 {
		return 0, newErrorf(name, nil, "failed to query process information, status: 0x%08X", ret)
	}
	return returnLength, nil
}

// GetProcessBasicInformation is used to get basic information about
// a process, it contains the PEB base address. // #nosec
func GetProcessBasicInformation(handle windows.Handle) (*ProcessBasicInformation, error) {
	var pbi ProcessBasicInformation
	_, err := NTQueryInformationProcess(
		handle, InfoClassProcessBasicInformation,
		(*byte)(unsafe.Pointer(&pbi)), unsafe.Sizeof(pbi),
	)
	if err != nil {
		return nil, err
	}
	return &pbi, nil
}

// PEBImageBaseOffset is the offset of the ImageBaseAddress field in
// the process environment block, the field follows the four loader
// flag bytes and the mutant handle.
const PEBImageBaseOffset = 2 * unsafe.Sizeof(uintptr(0))

// ReadProcessPointer is used to read one pointer sized value from the
// memory of a process of the same architecture.
func ReadProcessPointer(hProcess windows.Handle, addr uintptr) (uintptr, error) {
	buf := make([]byte, unsafe.Sizeof(uintptr(0)))
	err := ReadProcessMemory(hProcess, addr, buf)
	if err != nil {
		return 0, err
	}
	if len(buf) == 8 {
		return uintptr(convert.LEBytesToUint64(buf)), nil
	}
	return uintptr(convert.LEBytesToUint32(buf)), nil
}

// IsWow64Process is used to determine whether the specified process
// is running under WOW64.
func IsWow64Process(handle windows.Handle) (bool, error) {
	const name = "IsWow64Process"
	var wow64 bool
	err := windows.IsWow64Process(handle, &wow64)
	if err != nil {
		return false, newError(name, err, "failed to determine wow64 state")
	}
	return wow64, nil
}

// TerminateProcess is used to kill a process, the exit code becomes
// visible to anything waiting on the process handle.
func TerminateProcess(handle windows.Handle, exitCode uint32) error {
	const name = "TerminateProcess"
	err := windows.TerminateProcess(handle, exitCode)
	if err != nil {
		return newError(name, err, "failed to terminate process")
	}
	return nil
}

// WaitProcessExit is used to block until the process behind the handle
// exits and return its exit code.
func WaitProcessExit(handle windows.Handle) (uint32, error) {
	const name = "WaitProcessExit"
	_, err := windows.WaitForSingleObject(handle, windows.INFINITE)
	if err != nil {
		return 0, newError(name, err, "failed to wait for process exit")
	}
	var exitCode uint32
	err = windows.GetExitCodeProcess(handle, &exitCode)
	if err != nil {
		return 0, newError(name, err, "failed to get process exit code")
	}
	return exitCode, nil
}
