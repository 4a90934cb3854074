// +build windows

// Package winapi provides the win32 surface that the hook engine and
// the injector need, thin wrappers that keep the error context.
package winapi

import (
	"golang.org/x/sys/windows"
)

var (
	modNTDLL    = windows.NewLazySystemDLL("ntdll.dll")
	modKernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procNTQueryInformationProcess = modNTDLL.NewProc("NtQueryInformationProcess")

	procReadProcessMemory     = modKernel32.NewProc("ReadProcessMemory")
	procWriteProcessMemory    = modKernel32.NewProc("WriteProcessMemory")
	procVirtualAlloc          = modKernel32.NewProc("VirtualAlloc")
	procVirtualAllocEx        = modKernel32.NewProc("VirtualAllocEx")
	procVirtualFree           = modKernel32.NewProc("VirtualFree")
	procVirtualFreeEx         = modKernel32.NewProc("VirtualFreeEx")
	procVirtualProtect        = modKernel32.NewProc("VirtualProtect")
	procVirtualProtectEx      = modKernel32.NewProc("VirtualProtectEx")
	procVirtualQuery          = modKernel32.NewProc("VirtualQuery")
	procVirtualQueryEx        = modKernel32.NewProc("VirtualQueryEx")
	procFlushInstructionCache = modKernel32.NewProc("FlushInstructionCache")
	procSuspendThread         = modKernel32.NewProc("SuspendThread")
	procResumeThread          = modKernel32.NewProc("ResumeThread")
	procGetThreadContext      = modKernel32.NewProc("GetThreadContext")
	procSetThreadContext      = modKernel32.NewProc("SetThreadContext")
	procGetNativeSystemInfo   = modKernel32.NewProc("GetNativeSystemInfo")
	procGetModuleHandle       = modKernel32.NewProc("GetModuleHandleW")
)

// CloseHandle is used to close handle and ignore error about it.
func CloseHandle(handle windows.Handle) {
	_ = windows.CloseHandle(handle)
}

// LoadNTDLL is used to check that ntdll.dll resolved, other callers
// rely on the lazy load.
func LoadNTDLL() error {
	return modNTDLL.Load()
}

// FindNTQueryInformationProcess is used to check that the
// NtQueryInformationProcess procedure resolved.
func FindNTQueryInformationProcess() error {
	return procNTQueryInformationProcess.Find()
}
