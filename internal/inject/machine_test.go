package inject

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samuelgr/Hookshot-sub001/internal/logger"
	"github.com/samuelgr/Hookshot-sub001/internal/result"
	"github.com/samuelgr/Hookshot-sub001/internal/testsuite"
)

// fakeSteps builds a complete step list whose actions record their
// event, the step named by failAt returns code instead of success.
func fakeSteps(trace *[]string, failAt string, code result.Code) []step {
	events := []string{
		EventSpawn, EventInspect, EventAuthorize, EventStage,
		EventRun, EventSync, EventUnset,
	}
	steps := make([]step, 0, len(events))
	for _, event := range events {
		event := event
		steps = append(steps, step{event: event, action: func() result.Code {
			*trace = append(*trace, event)
			if event == failAt {
				return code
			}
			return result.Success
		}})
	}
	return steps
}

func TestMachineRun(t *testing.T) {
	gm := testsuite.MarkGoroutines(t)
	defer gm.Compare()

	trace := []string{}
	m := newMachine(logger.Test, StateIdle, fakeSteps(&trace, "", result.Success))
	require.Equal(t, StateIdle, m.State())

	require.Equal(t, result.Success, m.run())

	require.Equal(t, StateDone, m.State())
	require.Equal(t, []string{
		EventSpawn, EventInspect, EventAuthorize, EventStage,
		EventRun, EventSync, EventUnset,
	}, trace)
}

func TestMachineRunFailure(t *testing.T) {
	gm := testsuite.MarkGoroutines(t)
	defer gm.Compare()

	trace := []string{}
	steps := fakeSteps(&trace, EventStage, result.ErrorVirtualAllocFailed)
	m := newMachine(logger.Test, StateIdle, steps)

	require.Equal(t, result.ErrorVirtualAllocFailed, m.run())

	// the machine stops at the failed step
	require.Equal(t, StateFailed, m.State())
	require.Equal(t, []string{
		EventSpawn, EventInspect, EventAuthorize, EventStage,
	}, trace)
}

func TestMachineAdopt(t *testing.T) {
	gm := testsuite.MarkGoroutines(t)
	defer gm.Compare()

	var m *machine
	ran := 0
	steps := []step{
		{EventSpawn, func() result.Code {
			ran++
			return result.Success
		}},
		{EventInspect, func() result.Code {
			ran++
			m.adopt(result.ErrorArchitectureMismatch)
			return result.ErrorArchitectureMismatch
		}},
		{EventAuthorize, func() result.Code {
			ran++
			return result.Success
		}},
	}
	m = newMachine(logger.Test, StateIdle, steps)

	// the adopted code comes back as is and the machine neither fails
	// nor advances, the remaining steps stay untouched
	require.Equal(t, result.ErrorArchitectureMismatch, m.run())
	require.Equal(t, StateSpawned, m.State())
	require.Equal(t, 2, ran)
	require.NotNil(t, m.adopted)
}

func TestMachineRunPanic(t *testing.T) {
	gm := testsuite.MarkGoroutines(t)
	defer gm.Compare()

	steps := []step{
		{EventSpawn, func() result.Code {
			panic("broken step")
		}},
	}
	m := newMachine(logger.Test, StateIdle, steps)

	require.Equal(t, result.Failure, m.run())
	require.Equal(t, StateFailed, m.State())
}
