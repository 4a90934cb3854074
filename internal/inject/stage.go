// +build windows

package inject

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/samuelgr/Hookshot-sub001/internal/library"
	"github.com/samuelgr/Hookshot-sub001/internal/logger"
	"github.com/samuelgr/Hookshot-sub001/internal/payload"
	"github.com/samuelgr/Hookshot-sub001/internal/result"
	"github.com/samuelgr/Hookshot-sub001/internal/system"
	"github.com/samuelgr/Hookshot-sub001/internal/winapi"
	"github.com/samuelgr/Hookshot-sub001/internal/x86"
)

// Layout of the remote allocation, two pages so the code and data
// protections stay disjoint. The payload code starts the first page,
// the trampoline slot with the saved entry bytes ends it, the
// parameter block starts the second page.
const (
	codeRegionSize       = 4096
	dataRegionSize       = 4096
	trampolineRegionSize = 32
)

// stage is used to write the payload code, the saved entry bytes and
// the parameter block into the target and divert its entry point into
// the payload. The entry overwrite is a five byte relative jump, so
// the allocation must stay within signed 32 bit reach of the entry
// point.
func (inj *injection) stage() result.Code {
	dir, err := system.ExecutableDir()
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorCannotGenerateLibraryFilename
	}
	libPath, err := library.RuntimeLibrary(dir, inj.machine)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorCannotGenerateLibraryFilename
	}
	_, err = os.Stat(libPath)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorCannotLoadLibrary
	}
	inj.library = libPath

	template, err := payload.ForMachine(inj.machine)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorCannotLoadInjectCode
	}
	err = template.Validate()
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorMalformedInjectCodeFile
	}
	inj.template = template

	switch {
	case x86.JumpRelativeLength > trampolineRegionSize:
		return result.ErrorInsufficientTrampolineSpace
	case template.CodeSize() > codeRegionSize-trampolineRegionSize:
		return result.ErrorInsufficientCodeSpace
	case template.DataSize() > dataRegionSize:
		return result.ErrorInsufficientDataSpace
	}

	allocation, err := allocateNear(inj.process, inj.entry, codeRegionSize+dataRegionSize)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorVirtualAllocFailed
	}
	inj.allocation = allocation
	inj.codeBase = allocation
	inj.trampoline = allocation + codeRegionSize - trampolineRegionSize
	inj.dataBase = allocation + codeRegionSize

	loadLibrary, getProc, err := locateLoaderFunctions()
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorCannotLocateRequiredFunctions
	}

	code, data, err := template.Instantiate(uint64(inj.dataBase), &payload.Parameters{
		LoadLibraryW:   uint64(loadLibrary),
		GetProcAddress: uint64(getProc),
		LibraryPath:    libPath,
		InitName:       library.InitExport,
	})
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorInternalInvalidParams
	}

	saved := make([]byte, x86.JumpRelativeLength)
	err = winapi.ReadProcessMemory(inj.process, inj.entry, saved)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorSetFailedRead
	}
	jump, err := x86.EncodeJump(uint64(inj.entry), uint64(inj.codeBase))
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorInternalInvalidParams
	}

	// parameter block first, the payload reads it the moment the
	// thread lands in the code region
	err = winapi.WriteProcessMemory(inj.process, inj.dataBase, data)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorCannotWriteRequiredFunctionLocations
	}
	err = winapi.WriteProcessMemory(inj.process, inj.codeBase, code)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorSetFailedWrite
	}
	err = winapi.WriteProcessMemory(inj.process, inj.trampoline, saved)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorSetFailedWrite
	}

	// seal the code page before the entry point can reach it
	var old uint32
	err = winapi.VirtualProtectEx(inj.process, inj.codeBase, codeRegionSize, winapi.PageExecuteRead, &old)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorVirtualProtectFailed
	}
	err = winapi.FlushInstructionCache(inj.process, inj.codeBase, codeRegionSize)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorVirtualProtectFailed
	}

	code2 := inj.overwriteEntry(jump)
	if code2.IsError() {
		return code2
	}
	inj.opts.Logger.Printf(logger.Debug, "inject",
		"staged payload at 0x%X, parameter block at 0x%X", inj.codeBase, inj.dataBase)
	return result.Success
}

// overwriteEntry is used to write the jump into the payload over the
// first entry point bytes, the image page is writable only for the
// write itself.
func (inj *injection) overwriteEntry(jump []byte) result.Code {
	size := uintptr(len(jump))
	var old uint32
	err := winapi.VirtualProtectEx(inj.process, inj.entry, size, winapi.PageExecuteReadWrite, &old)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorVirtualProtectFailed
	}
	err = winapi.WriteProcessMemory(inj.process, inj.entry, jump)
	if err != nil {
		var tmp uint32
		_ = winapi.VirtualProtectEx(inj.process, inj.entry, size, old, &tmp)
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorSetFailedWrite
	}
	var tmp uint32
	err = winapi.VirtualProtectEx(inj.process, inj.entry, size, old, &tmp)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorVirtualProtectFailed
	}
	err = winapi.FlushInstructionCache(inj.process, inj.entry, size)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorVirtualProtectFailed
	}
	return result.Success
}

// allocateNear is used to commit one remote region whose whole span
// stays within relative jump reach of origin, probing outward at
// allocation granularity strides the way the trampoline allocator
// does locally.
func allocateNear(process windows.Handle, origin, size uintptr) (uintptr, error) {
	info := winapi.GetNativeSystemInfo()
	granularity := uintptr(info.AllocationGranularity)
	reachable := func(addr uintptr) bool {
		disp := int64(addr) - (int64(origin) + x86.JumpRelativeLength)
		return disp >= math.MinInt32 && disp <= math.MaxInt32
	}
	start := uint64(origin) &^ uint64(granularity-1)
	for offset := uint64(0); offset <= math.MaxInt32; offset += uint64(granularity) {
		candidates := [...]uint64{start + offset, start - offset}
		n := len(candidates)
		if offset == 0 {
			n = 1
		}
		for _, candidate := range candidates[:n] {
			// an underflowed low candidate wraps far above every
			// application address and fails these checks
			if candidate < uint64(info.MinimumApplicationAddress) ||
				candidate > uint64(info.MaximumApplicationAddress) ||
				candidate+uint64(size)-1 > uint64(info.MaximumApplicationAddress) {
				continue
			}
			base := uintptr(candidate)
			if !reachable(base) || !reachable(base+size-1) {
				continue
			}
			mbi, err := winapi.VirtualQueryEx(process, base)
			if err != nil || mbi.State != winapi.MemFree || mbi.RegionSize < size {
				continue
			}
			region, err := winapi.VirtualAllocEx(
				process, base, size,
				winapi.MemReserve|winapi.MemCommit, winapi.PageReadWrite,
			)
			if err != nil {
				// lost a race for this region, keep walking
				continue
			}
			return region, nil
		}
	}
	return 0, errors.Errorf("no free region within reach of 0x%X", origin)
}
