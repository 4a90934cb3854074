package result

import (
	"strconv"
)

// Code identifies the outcome of one injection attempt. Values are
// ordered so that a single comparison against Failure distinguishes
// success from failure, and they are stable because the injector
// process exits with the numeric value of the code it produced.
type Code uint32

// all inject result codes
const (
	// Success means the injection ran to completion.
	Success Code = iota

	// Failure is the generic failure and the first failure value,
	// every value below it is a success, every value from it up
	// is a failure.
	Failure

	ErrorCreateProcess
	ErrorDetermineMachineProcess
	ErrorArchitectureMismatch
	ErrorNotAuthorized
	ErrorCannotDetermineAuthorization
	ErrorAdvanceProcessFailed
	ErrorLoadNtDll
	ErrorNtQueryInformationProcessUnavailable
	ErrorNtQueryInformationProcessFailed
	ErrorReadProcessPEBFailed
	ErrorReadDOSHeadersFailed
	ErrorReadNTHeadersFailed
	ErrorGetModuleHandleClrLibraryFailed
	ErrorGetProcAddressClrEntryPointFailed
	ErrorVirtualAllocFailed
	ErrorVirtualProtectFailed
	ErrorCannotGenerateLibraryFilename
	ErrorCannotGenerateExecutableFilename
	ErrorCannotLoadInjectCode
	ErrorMalformedInjectCodeFile
	ErrorInsufficientTrampolineSpace
	ErrorInsufficientCodeSpace
	ErrorInsufficientDataSpace
	ErrorInternalInvalidParams
	ErrorSetFailedRead
	ErrorSetFailedWrite
	ErrorRunFailedResumeThread
	ErrorRunFailedSync
	ErrorRunFailedSuspendThread
	ErrorUnsetFailed
	ErrorInterProcessCommunicationFailed
	ErrorCannotLocateRequiredFunctions
	ErrorCannotWriteRequiredFunctionLocations
	ErrorCannotReadStatus
	ErrorMalformedLibrary
	ErrorLibraryInitFailed
	ErrorCreateHookshotProcessFailed
	ErrorCreateHookshotOtherArchitectureProcessFailed
	ErrorCannotLoadLibrary
	ErrorCannotLoadLibraryOtherArchitecture

	// maxCode is used to bound the string table.
	maxCode
)

var names = [maxCode]string{
	"Success",
	"Failure",
	"ErrorCreateProcess",
	"ErrorDetermineMachineProcess",
	"ErrorArchitectureMismatch",
	"ErrorNotAuthorized",
	"ErrorCannotDetermineAuthorization",
	"ErrorAdvanceProcessFailed",
	"ErrorLoadNtDll",
	"ErrorNtQueryInformationProcessUnavailable",
	"ErrorNtQueryInformationProcessFailed",
	"ErrorReadProcessPEBFailed",
	"ErrorReadDOSHeadersFailed",
	"ErrorReadNTHeadersFailed",
	"ErrorGetModuleHandleClrLibraryFailed",
	"ErrorGetProcAddressClrEntryPointFailed",
	"ErrorVirtualAllocFailed",
	"ErrorVirtualProtectFailed",
	"ErrorCannotGenerateLibraryFilename",
	"ErrorCannotGenerateExecutableFilename",
	"ErrorCannotLoadInjectCode",
	"ErrorMalformedInjectCodeFile",
	"ErrorInsufficientTrampolineSpace",
	"ErrorInsufficientCodeSpace",
	"ErrorInsufficientDataSpace",
	"ErrorInternalInvalidParams",
	"ErrorSetFailedRead",
	"ErrorSetFailedWrite",
	"ErrorRunFailedResumeThread",
	"ErrorRunFailedSync",
	"ErrorRunFailedSuspendThread",
	"ErrorUnsetFailed",
	"ErrorInterProcessCommunicationFailed",
	"ErrorCannotLocateRequiredFunctions",
	"ErrorCannotWriteRequiredFunctionLocations",
	"ErrorCannotReadStatus",
	"ErrorMalformedLibrary",
	"ErrorLibraryInitFailed",
	"ErrorCreateHookshotProcessFailed",
	"ErrorCreateHookshotOtherArchitectureProcessFailed",
	"ErrorCannotLoadLibrary",
	"ErrorCannotLoadLibraryOtherArchitecture",
}

// String is used to return the stable rendering of the code.
func (c Code) String() string {
	if c < maxCode {
		return names[c]
	}
	return "EInjectResult(" + strconv.FormatUint(uint64(c), 10) + ")"
}

// IsSuccess is used to report whether the code means the injection worked.
func (c Code) IsSuccess() bool {
	return c < Failure
}

// IsError is used to report whether the code means the injection failed.
func (c Code) IsError() bool {
	return c >= Failure
}

// ExitCode is used to convert the code to a process exit code.
func (c Code) ExitCode() int {
	return int(c)
}

// FromExitCode is used to recover the code a hookshot child process
// exited with, unknown values collapse to Failure.
func FromExitCode(n uint32) Code {
	c := Code(n)
	if c >= maxCode {
		return Failure
	}
	return c
}

// Count is used to return the number of defined codes.
func Count() int {
	return int(maxCode)
}
