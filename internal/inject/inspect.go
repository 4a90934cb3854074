// +build windows

package inject

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/samuelgr/Hookshot-sub001/internal/logger"
	"github.com/samuelgr/Hookshot-sub001/internal/pe"
	"github.com/samuelgr/Hookshot-sub001/internal/result"
	"github.com/samuelgr/Hookshot-sub001/internal/winapi"
)

// remoteMemory reads the address space of the target so the pe reader
// can parse headers from the outside.
type remoteMemory struct {
	process windows.Handle
}

func (mem *remoteMemory) ReadMemory(addr uintptr, data []byte) error {
	return winapi.ReadProcessMemory(mem.process, addr, data)
}

// targetMachine is used to determine the PE machine of the target, a
// wow64 process is 32 bit, anything else runs the native architecture.
func (inj *injection) targetMachine() (uint16, error) {
	wow64, err := winapi.IsWow64Process(inj.process)
	if err != nil {
		return 0, err
	}
	if wow64 {
		return pe.MachineI386, nil
	}
	info := winapi.GetNativeSystemInfo()
	switch info.ProcessorArchitecture {
	case winapi.ProcessorArchitectureAMD64:
		return pe.MachineAMD64, nil
	case winapi.ProcessorArchitectureIntel:
		return pe.MachineI386, nil
	}
	return 0, errors.Errorf("unsupported processor architecture %d", info.ProcessorArchitecture)
}

// inspect is used to determine the architecture of the target and
// locate its entry point through the remote PEB and image headers. A
// target of the other architecture is handed to the sibling injector
// instead.
func (inj *injection) inspect() result.Code {
	machine, err := inj.targetMachine()
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorDetermineMachineProcess
	}
	inj.machine = machine
	if machine != pe.CurrentMachine {
		if inj.relaunched {
			inj.opts.Logger.Print(logger.Error, "inject", "target architecture still mismatches after relaunch")
			return result.ErrorArchitectureMismatch
		}
		return inj.handoff()
	}
	err = winapi.LoadNTDLL()
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorLoadNtDll
	}
	err = winapi.FindNTQueryInformationProcess()
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorNtQueryInformationProcessUnavailable
	}
	pbi, err := winapi.GetProcessBasicInformation(inj.process)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorNtQueryInformationProcessFailed
	}
	if pbi.PEBBaseAddress == 0 {
		inj.opts.Logger.Print(logger.Error, "inject", "process has no PEB address")
		return result.ErrorReadProcessPEBFailed
	}
	base, code := inj.readImageBase(pbi.PEBBaseAddress)
	if code.IsError() {
		return code
	}
	mem := remoteMemory{process: inj.process}
	dos, err := pe.ReadDOSHeader(&mem, base)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorReadDOSHeadersFailed
	}
	nt, err := pe.ReadNTHeaders(&mem, base, dos)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorReadNTHeadersFailed
	}
	if nt.Machine() != machine {
		inj.opts.Logger.Printf(logger.Error, "inject",
			"image machine 0x%04X does not match process machine 0x%04X", nt.Machine(), machine)
		return result.ErrorDetermineMachineProcess
	}
	rva := nt.EntryPoint()
	if rva == 0 {
		inj.opts.Logger.Print(logger.Error, "inject", "image has no entry point")
		return result.ErrorReadNTHeadersFailed
	}
	inj.imageBase = base
	inj.entry = base + uintptr(rva)
	inj.opts.Logger.Printf(logger.Debug, "inject",
		"image base 0x%X, entry point 0x%X", inj.imageBase, inj.entry)
	return result.Success
}

// readImageBase is used to read the image base pointer from the remote
// PEB. The loader publishes the value during early process
// initialisation, a zero read lets the suspended thread run for one
// interval and samples again a bounded number of times.
func (inj *injection) readImageBase(peb uintptr) (uintptr, result.Code) {
	addr := peb + winapi.PEBImageBaseOffset
	base, err := winapi.ReadProcessPointer(inj.process, addr)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return 0, result.ErrorReadProcessPEBFailed
	}
	for attempt := 0; base == 0 && attempt < inj.opts.AdvanceAttempts; attempt++ {
		_, err = winapi.ResumeThread(inj.thread)
		if err != nil {
			inj.opts.Logger.Println(logger.Error, "inject", err)
			return 0, result.ErrorAdvanceProcessFailed
		}
		inj.sleep()
		_, err = winapi.SuspendThread(inj.thread)
		if err != nil {
			inj.opts.Logger.Println(logger.Error, "inject", err)
			return 0, result.ErrorAdvanceProcessFailed
		}
		base, err = winapi.ReadProcessPointer(inj.process, addr)
		if err != nil {
			inj.opts.Logger.Println(logger.Error, "inject", err)
			return 0, result.ErrorReadProcessPEBFailed
		}
	}
	if base == 0 {
		inj.opts.Logger.Print(logger.Error, "inject", "loader did not publish the image base")
		return 0, result.ErrorAdvanceProcessFailed
	}
	return base, result.Success
}
