// Package inject implements the cross process injector. It spawns a
// target executable suspended, reads its headers from the outside,
// writes the payload and its parameter block into the target,
// resumes the sole thread just long enough for the payload to load
// the runtime library, then restores the original entry point and
// hands the thread back. A target of the other architecture is handed
// to the sibling injector binary through a shared mapping.
//
// Every operation returns a result.Code, the process exit code of the
// injector is the numeric value of that code.
package inject

import (
	"fmt"

	"github.com/looplab/fsm"

	"github.com/samuelgr/Hookshot-sub001/internal/logger"
	"github.com/samuelgr/Hookshot-sub001/internal/result"
	"github.com/samuelgr/Hookshot-sub001/internal/xpanic"
)

// states of one injection
const (
	StateIdle       = "idle"       // nothing happened yet
	StateSpawned    = "spawned"    // target created suspended
	StateInspected  = "inspected"  // architecture and entry point known
	StateAuthorized = "authorized" // marker file found
	StateStaged     = "staged"     // payload and parameter block written
	StateRunning    = "running"    // main thread resumed into the payload
	StateSynced     = "synced"     // payload published a positive status
	StateUnset      = "unset"      // entry point restored, thread redirected
	StateDone       = "done"       // injection complete
	StateFailed     = "failed"     // a step failed, target terminated
)

// events that advance an injection
const (
	EventSpawn     = "spawn"
	EventInspect   = "inspect"
	EventAuthorize = "authorize"
	EventStage     = "stage"
	EventRun       = "run"
	EventSync      = "sync"
	EventUnset     = "unset"
	EventDone      = "done"
	EventFail      = "fail"
)

// step is one phase of an injection, the event fires after the action
// returned success.
type step struct {
	event  string
	action func() result.Code
}

// machine drives the steps of one injection in their fixed order and
// tracks the state so failures can name the phase they happened in.
type machine struct {
	logger logger.Logger
	steps  []step
	fsm    *fsm.FSM

	// adopted is set when the injection finished in another process,
	// the remaining local steps are skipped and the code is returned
	// as is.
	adopted *result.Code
}

func newMachine(lg logger.Logger, initial string, steps []step) *machine {
	machine := machine{
		logger: lg,
		steps:  steps,
	}
	active := []string{
		StateIdle, StateSpawned, StateInspected, StateAuthorized,
		StateStaged, StateRunning, StateSynced, StateUnset,
	}
	events := []fsm.EventDesc{
		{Name: EventSpawn, Src: []string{StateIdle}, Dst: StateSpawned},
		{Name: EventInspect, Src: []string{StateSpawned}, Dst: StateInspected},
		{Name: EventAuthorize, Src: []string{StateInspected}, Dst: StateAuthorized},
		{Name: EventStage, Src: []string{StateAuthorized}, Dst: StateStaged},
		{Name: EventRun, Src: []string{StateStaged}, Dst: StateRunning},
		{Name: EventSync, Src: []string{StateRunning}, Dst: StateSynced},
		{Name: EventUnset, Src: []string{StateSynced}, Dst: StateUnset},
		{Name: EventDone, Src: []string{StateUnset}, Dst: StateDone},
		{Name: EventFail, Src: active, Dst: StateFailed},
	}
	callbacks := fsm.Callbacks{
		"enter_state": func(e *fsm.Event) {
			lg.Printf(logger.Debug, "inject", "state %s -> %s", e.Src, e.Dst)
		},
	}
	machine.fsm = fsm.NewFSM(initial, events, callbacks)
	return &machine
}

// run executes the steps in order. The first failed step stops the
// machine, moves it to the failed state and returns the step's code.
func (m *machine) run() (code result.Code) {
	defer func() {
		if r := recover(); r != nil {
			xpanic.Log(r, "machine.run")
			code = result.Failure
			m.fail()
		}
	}()
	for _, step := range m.steps {
		code = step.action()
		if m.adopted != nil {
			return *m.adopted
		}
		if code.IsError() {
			m.logger.Printf(logger.Error, "inject", "%s failed in state %s", code, m.fsm.Current())
			m.fail()
			return code
		}
		err := m.fsm.Event(step.event)
		if err != nil {
			internalErr(err)
		}
	}
	err := m.fsm.Event(EventDone)
	if err != nil {
		internalErr(err)
	}
	return result.Success
}

// adopt records that the injection finished in another process with
// the given code, run stops after the current step without touching
// the state again.
func (m *machine) adopt(code result.Code) {
	m.adopted = &code
}

func (m *machine) fail() {
	if m.fsm.Current() == StateFailed {
		return
	}
	err := m.fsm.Event(EventFail)
	if err != nil {
		internalErr(err)
	}
}

// State is used to get the current machine state.
func (m *machine) State() string {
	return m.fsm.Current()
}

func internalErr(err error) {
	panic(fmt.Sprintf("inject: internal error: %s", err))
}
