// +build windows

package inject

import (
	"time"

	"github.com/samuelgr/Hookshot-sub001/internal/convert"
	"github.com/samuelgr/Hookshot-sub001/internal/logger"
	"github.com/samuelgr/Hookshot-sub001/internal/payload"
	"github.com/samuelgr/Hookshot-sub001/internal/pool"
	"github.com/samuelgr/Hookshot-sub001/internal/result"
	"github.com/samuelgr/Hookshot-sub001/internal/winapi"
	"github.com/samuelgr/Hookshot-sub001/internal/x86"
)

// sync is used to wait for the payload to publish its status through
// the synchronisation word, polled with jitter under one deadline.
func (inj *injection) sync() result.Code {
	syncAddr := inj.dataBase + uintptr(inj.template.SyncOffset())
	buf := pool.Get()
	defer pool.Put(buf)
	word := buf[:4]
	deadline := time.Now().Add(inj.opts.SyncDeadline)
	for {
		err := winapi.ReadProcessMemory(inj.process, syncAddr, word)
		if err != nil {
			inj.opts.Logger.Println(logger.Error, "inject", err)
			return result.ErrorCannotReadStatus
		}
		status := convert.LEBytesToInt32(word)
		if status != payload.StatusRunning {
			code := payload.DecodeStatus(status)
			if code.IsError() {
				inj.opts.Logger.Printf(logger.Error, "inject", "payload reported status %d", status)
				return code
			}
			inj.opts.Logger.Printf(logger.Info, "inject", "library initialised with status %d", status)
			return result.Success
		}
		select {
		case <-inj.ctx.Done():
			inj.opts.Logger.Println(logger.Error, "inject", inj.ctx.Err())
			return result.ErrorRunFailedSync
		default:
		}
		if time.Now().After(deadline) {
			inj.opts.Logger.Print(logger.Error, "inject", "payload did not publish a status before the deadline")
			return result.ErrorRunFailedSync
		}
		inj.sleep()
	}
}

// unset is used to take the target back out of the payload. The
// command word releases the spin, the thread is caught at the final
// park with every register already restored, the entry point gets its
// original bytes back and the thread restarts there.
func (inj *injection) unset() result.Code {
	commandAddr := inj.dataBase + uintptr(inj.template.CommandOffset())
	err := winapi.WriteProcessMemory(inj.process, commandAddr, convert.LEInt32ToBytes(payload.CommandRelease))
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorUnsetFailed
	}
	park := inj.codeBase + uintptr(inj.template.ParkOffset())
	ctx := winapi.NewContext(winapi.ContextControl)
	parked := false
	for attempt := 0; attempt < inj.opts.UnsetAttempts; attempt++ {
		_, err = winapi.SuspendThread(inj.thread)
		if err != nil {
			inj.opts.Logger.Println(logger.Error, "inject", err)
			return result.ErrorRunFailedSuspendThread
		}
		ctx.ContextFlags = winapi.ContextControl
		err = winapi.GetThreadContext(inj.thread, ctx)
		if err != nil {
			inj.opts.Logger.Println(logger.Error, "inject", err)
			return result.ErrorUnsetFailed
		}
		if ctx.IP() == park {
			parked = true
			break
		}
		// not there yet, let it spin a little longer
		_, err = winapi.ResumeThread(inj.thread)
		if err != nil {
			inj.opts.Logger.Println(logger.Error, "inject", err)
			return result.ErrorUnsetFailed
		}
		inj.sleep()
	}
	if !parked {
		inj.opts.Logger.Print(logger.Error, "inject", "thread did not reach the park")
		return result.ErrorUnsetFailed
	}
	saved := make([]byte, x86.JumpRelativeLength)
	err = winapi.ReadProcessMemory(inj.process, inj.trampoline, saved)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorUnsetFailed
	}
	code := inj.restoreEntry(saved)
	if code.IsError() {
		return code
	}
	ctx.SetIP(inj.entry)
	err = winapi.SetThreadContext(inj.thread, ctx)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorUnsetFailed
	}
	// the payload regions are dead now, release them before the
	// thread starts running target code
	err = winapi.VirtualFreeEx(inj.process, inj.allocation, 0, winapi.MemRelease)
	if err != nil {
		inj.opts.Logger.Println(logger.Warning, "inject", err)
	}
	_, err = winapi.ResumeThread(inj.thread)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorUnsetFailed
	}
	inj.opts.Logger.Printf(logger.Info, "inject", "target %q runs with %q loaded", inj.targetPath, inj.library)
	return result.Success
}

// restoreEntry is used to write the saved bytes back over the entry
// jump, the image page is writable only for the write itself.
func (inj *injection) restoreEntry(saved []byte) result.Code {
	size := uintptr(len(saved))
	var old uint32
	err := winapi.VirtualProtectEx(inj.process, inj.entry, size, winapi.PageExecuteReadWrite, &old)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorUnsetFailed
	}
	err = winapi.WriteProcessMemory(inj.process, inj.entry, saved)
	if err != nil {
		var tmp uint32
		_ = winapi.VirtualProtectEx(inj.process, inj.entry, size, old, &tmp)
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorUnsetFailed
	}
	var tmp uint32
	err = winapi.VirtualProtectEx(inj.process, inj.entry, size, old, &tmp)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorUnsetFailed
	}
	err = winapi.FlushInstructionCache(inj.process, inj.entry, size)
	if err != nil {
		inj.opts.Logger.Println(logger.Error, "inject", err)
		return result.ErrorUnsetFailed
	}
	return result.Success
}
