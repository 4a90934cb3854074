// +build windows

package inject

import (
	"os"

	"github.com/samuelgr/Hookshot-sub001/internal/library"
	"github.com/samuelgr/Hookshot-sub001/internal/logger"
	"github.com/samuelgr/Hookshot-sub001/internal/result"
	"github.com/samuelgr/Hookshot-sub001/internal/system"
	"github.com/samuelgr/Hookshot-sub001/internal/winapi"
)

// handoff is used to hand a target of the other architecture to the
// sibling injector binary. The wrong architecture spawn is discarded
// once the sibling and its runtime library are known to exist, then
// the sibling receives the original request through a shared mapping,
// launches the target again and performs the whole injection itself.
// The sibling's exit code is the result of this run.
func (inj *injection) handoff() result.Code {
	dir, err := system.ExecutableDir()
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorCannotGenerateExecutableFilename
	}
	sibling, err := library.SiblingExecutable(dir, inj.machine)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorCannotGenerateExecutableFilename
	}
	_, err = os.Stat(sibling)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorCreateHookshotOtherArchitectureProcessFailed
	}
	runtime, err := library.RuntimeLibrary(dir, inj.machine)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorCannotGenerateLibraryFilename
	}
	_, err = os.Stat(runtime)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorCannotLoadLibraryOtherArchitecture
	}
	// the suspended spawn has the wrong architecture, discard it, the
	// sibling launches the target again itself
	inj.terminate(result.ErrorArchitectureMismatch)
	inj.close()

	mapping, err := winapi.CreateFileMapping(mappingSize, true)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorInterProcessCommunicationFailed
	}
	defer winapi.CloseHandle(mapping)
	view, err := winapi.MapViewOfFile(mapping, mappingSize)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorInterProcessCommunicationFailed
	}
	request, err := encodeRequest(&Request{
		Path:       inj.targetPath,
		Args:       inj.targetArgs,
		Relaunched: true,
	})
	if err != nil {
		winapi.UnmapViewOfFile(view)
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorInterProcessCommunicationFailed
	}
	copy(winapi.MemorySlice(view, mappingSize), request)
	winapi.UnmapViewOfFile(view)

	inj.opts.Logger.Printf(logger.Info, "inject", "hand target %q to sibling %q", inj.targetPath, sibling)
	pi, err := winapi.CreateProcess([]string{sibling, EncodeToken(uint64(mapping))}, true)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorCreateHookshotOtherArchitectureProcessFailed
	}
	winapi.CloseHandle(pi.Thread)
	defer winapi.CloseHandle(pi.Process)
	exitCode, err := winapi.WaitProcessExit(pi.Process)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorInterProcessCommunicationFailed
	}
	code := result.FromExitCode(exitCode)
	inj.opts.Logger.Printf(logger.Info, "inject", "sibling finished with %s", code)
	inj.m.adopt(code)
	return code
}
