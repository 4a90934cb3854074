// +build windows

package inject

import (
	"context"
	"time"

	"golang.org/x/sys/windows"

	"github.com/samuelgr/Hookshot-sub001/internal/logger"
	"github.com/samuelgr/Hookshot-sub001/internal/payload"
	"github.com/samuelgr/Hookshot-sub001/internal/random"
	"github.com/samuelgr/Hookshot-sub001/internal/result"
	"github.com/samuelgr/Hookshot-sub001/internal/winapi"
)

// injection carries the state of one run through the machine, the
// steps fill the fields in order and later steps trust earlier ones.
type injection struct {
	ctx  context.Context
	opts *Options
	m    *machine

	targetPath string
	targetArgs []string

	// relaunched marks a run entered through a hand-off token, such a
	// run must not hand off again.
	relaunched bool

	// filled by spawn
	process windows.Handle
	thread  windows.Handle
	pid     uint32

	// filled by inspect
	machine   uint16
	imageBase uintptr
	entry     uintptr

	// filled by stage
	template   *payload.Template
	library    string
	allocation uintptr
	codeBase   uintptr
	dataBase   uintptr
	trampoline uintptr
}

// Inject is used to run the complete injection of one target
// executable, args are handed to the target untouched. The returned
// code is Success exactly when the target runs with the runtime
// library loaded and its entry point restored, any failure terminates
// the target. ctx bounds the wait for the payload.
func Inject(ctx context.Context, path string, args []string, opts *Options) result.Code {
	opts, err := opts.normalized()
	if err != nil {
		return result.ErrorInternalInvalidParams
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if path == "" {
		return result.ErrorInternalInvalidParams
	}
	inj := injection{
		ctx:        ctx,
		opts:       opts,
		targetPath: path,
		targetArgs: args,
	}
	return inj.execute()
}

// Relaunched is used to run the injection this process received from
// its sibling of the other architecture, token is the | prefixed
// command line argument. The wrong architecture spawn is already gone,
// the target is launched again from scratch.
func Relaunched(ctx context.Context, token string, opts *Options) result.Code {
	opts, err := opts.normalized()
	if err != nil {
		return result.ErrorInternalInvalidParams
	}
	if ctx == nil {
		ctx = context.Background()
	}
	handle, err := ParseToken(token)
	if err != nil {
		opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorInterProcessCommunicationFailed
	}
	mapping := windows.Handle(handle)
	defer winapi.CloseHandle(mapping)
	view, err := winapi.MapViewOfFile(mapping, mappingSize)
	if err != nil {
		opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorInterProcessCommunicationFailed
	}
	req, err := decodeRequest(winapi.MemorySlice(view, mappingSize))
	winapi.UnmapViewOfFile(view)
	if err != nil {
		opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorInterProcessCommunicationFailed
	}
	opts.Logger.Printf(logger.Info, "inject", "continue injection of %q from sibling", req.Path)
	inj := injection{
		ctx:        ctx,
		opts:       opts,
		targetPath: req.Path,
		targetArgs: req.Args,
		relaunched: req.Relaunched,
	}
	return inj.execute()
}

// execute drives the machine and funnels every failure through one
// exit path, the target is terminated and all local handles are
// closed. A hand-off to the sibling skips the terminate, the wrong
// architecture spawn was discarded during the hand-off and the new
// target belongs to the sibling.
func (inj *injection) execute() result.Code {
	steps := []step{
		{EventSpawn, inj.spawn},
		{EventInspect, inj.inspect},
		{EventAuthorize, inj.authorize},
		{EventStage, inj.stage},
		{EventRun, inj.run},
		{EventSync, inj.sync},
		{EventUnset, inj.unset},
	}
	inj.m = newMachine(inj.opts.Logger, StateIdle, steps)
	code := inj.m.run()
	if code.IsError() && inj.m.adopted == nil {
		inj.terminate(code)
	}
	inj.close()
	return code
}

// spawn is used to create the target process with its sole thread
// suspended, nothing of the target has run yet.
func (inj *injection) spawn() result.Code {
	args := append([]string{inj.targetPath}, inj.targetArgs...)
	pi, err := winapi.CreateProcessSuspended(args, false)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorCreateProcess
	}
	inj.process = pi.Process
	inj.thread = pi.Thread
	inj.pid = pi.ProcessId
	inj.opts.Logger.Printf(logger.Info, "inject", "spawned %q suspended with PID %d", inj.targetPath, inj.pid)
	return result.Success
}

// authorize is used to check the marker files of the target, the
// decision derives purely from the target path.
func (inj *injection) authorize() result.Code {
	code := authorize(inj.targetPath)
	if code.IsError() {
		inj.opts.Logger.Printf(logger.Warning, "inject", "target %q is not authorized", inj.targetPath)
		return code
	}
	return result.Success
}

// run is used to resume the main thread of the staged target, the
// thread starts at the overwritten entry point and lands in the
// payload.
func (inj *injection) run() result.Code {
	_, err := winapi.ResumeThread(inj.thread)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorRunFailedResumeThread
	}
	return result.Success
}

// terminate is used to kill the target after a failed step, the code
// becomes the exit code of the target so nothing keeps running half
// injected.
func (inj *injection) terminate(code result.Code) {
	if inj.process == 0 {
		return
	}
	err := winapi.TerminateProcess(inj.process, uint32(code))
	if err != nil {
		inj.opts.Logger.Println(logger.Warning, "inject", err)
	}
}

func (inj *injection) close() {
	if inj.thread != 0 {
		winapi.CloseHandle(inj.thread)
		inj.thread = 0
	}
	if inj.process != 0 {
		winapi.CloseHandle(inj.process)
		inj.process = 0
	}
}

// sleep is used to wait one poll interval with a random jitter of up
// to half the interval.
func (inj *injection) sleep() {
	fixed := int(inj.opts.PollInterval / time.Millisecond)
	if fixed < 1 {
		fixed = 1
	}
	random.Sleep(fixed, fixed/2+1)
}
