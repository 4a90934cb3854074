// +build windows

package inject

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"

	"github.com/samuelgr/Hookshot-sub001/internal/logger"
	"github.com/samuelgr/Hookshot-sub001/internal/patch/monkey"
	"github.com/samuelgr/Hookshot-sub001/internal/pe"
	"github.com/samuelgr/Hookshot-sub001/internal/result"
	"github.com/samuelgr/Hookshot-sub001/internal/testsuite"
	"github.com/samuelgr/Hookshot-sub001/internal/winapi"
)

func testOptions() *Options {
	return &Options{Logger: logger.Test}
}

func TestInjectInvalidTarget(t *testing.T) {
	gm := testsuite.MarkGoroutines(t)
	defer gm.Compare()

	t.Run("empty path", func(t *testing.T) {
		code := Inject(context.Background(), "", nil, testOptions())
		require.Equal(t, result.ErrorInternalInvalidParams, code)
	})

	t.Run("absent executable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "absent.exe")
		code := Inject(context.Background(), path, nil, testOptions())
		require.Equal(t, result.ErrorCreateProcess, code)
	})
}

// The test binary spawns itself suspended. The spawn never runs, the
// machine stops it before the first instruction and terminates it.

func TestInjectNotAuthorized(t *testing.T) {
	gm := testsuite.MarkGoroutines(t)
	defer gm.Compare()

	exe, err := os.Executable()
	require.NoError(t, err)

	code := Inject(context.Background(), exe, nil, testOptions())
	require.Equal(t, result.ErrorNotAuthorized, code)
}

func TestInjectMissingRuntimeLibrary(t *testing.T) {
	gm := testsuite.MarkGoroutines(t)
	defer gm.Compare()

	exe, err := os.Executable()
	require.NoError(t, err)
	marker := exe + authorizeSuffix
	require.NoError(t, ioutil.WriteFile(marker, nil, 0600))
	defer func() { require.NoError(t, os.Remove(marker)) }()

	// spawn, inspect and authorise succeed against the real process,
	// the stage preflight stops the run because no runtime library
	// sits next to the test binary
	code := Inject(context.Background(), exe, nil, testOptions())
	require.Equal(t, result.ErrorCannotLoadLibrary, code)
}

// patchOtherMachine makes targetMachine observe the width this build
// does not carry, whichever that is.
func patchOtherMachine() []*monkey.PatchGuard {
	wow64 := pe.CurrentMachine == pe.MachineAMD64
	pgWow := monkey.Patch(winapi.IsWow64Process, func(windows.Handle) (bool, error) {
		return wow64, nil
	})
	pgInfo := monkey.Patch(winapi.GetNativeSystemInfo, func() *winapi.SystemInfo {
		return &winapi.SystemInfo{ProcessorArchitecture: winapi.ProcessorArchitectureAMD64}
	})
	return []*monkey.PatchGuard{pgWow, pgInfo}
}

func unpatchAll(pgs []*monkey.PatchGuard) {
	for _, pg := range pgs {
		pg.Unpatch()
	}
}

func TestInjectArchitectureMismatch(t *testing.T) {
	gm := testsuite.MarkGoroutines(t)
	defer gm.Compare()

	exe, err := os.Executable()
	require.NoError(t, err)
	pgs := patchOtherMachine()
	defer unpatchAll(pgs)

	// no sibling injector sits next to the test binary, the hand-off
	// stops before the wrong architecture spawn is discarded
	code := Inject(context.Background(), exe, nil, testOptions())
	require.Equal(t, result.ErrorCreateHookshotOtherArchitectureProcessFailed, code)
}

func TestRelaunchedStillMismatches(t *testing.T) {
	gm := testsuite.MarkGoroutines(t)
	defer gm.Compare()

	exe, err := os.Executable()
	require.NoError(t, err)
	mapping, err := winapi.CreateFileMapping(mappingSize, false)
	require.NoError(t, err)
	view, err := winapi.MapViewOfFile(mapping, mappingSize)
	require.NoError(t, err)
	buf, err := encodeRequest(&Request{Path: exe, Relaunched: true})
	require.NoError(t, err)
	copy(winapi.MemorySlice(view, mappingSize), buf)
	winapi.UnmapViewOfFile(view)

	pgs := patchOtherMachine()
	defer unpatchAll(pgs)

	// a run entered through a token must not hand off a second time
	code := Relaunched(context.Background(), EncodeToken(uint64(mapping)), testOptions())
	require.Equal(t, result.ErrorArchitectureMismatch, code)
}

func TestRelaunchedInvalidToken(t *testing.T) {
	gm := testsuite.MarkGoroutines(t)
	defer gm.Compare()

	for _, token := range []string{"notatoken", "|", "|x", "|0"} {
		code := Relaunched(context.Background(), token, testOptions())
		require.Equal(t, result.ErrorInterProcessCommunicationFailed, code, token)
	}
}

func TestRelaunchedBrokenRequest(t *testing.T) {
	gm := testsuite.MarkGoroutines(t)
	defer gm.Compare()

	// a readable mapping that carries no decodable request, the
	// relaunched run owns the handle and closes it
	mapping, err := winapi.CreateFileMapping(mappingSize, false)
	require.NoError(t, err)
	view, err := winapi.MapViewOfFile(mapping, mappingSize)
	require.NoError(t, err)
	copy(winapi.MemorySlice(view, mappingSize), []byte{0xFF, 0xFF, 0xFF, 0xFF})
	winapi.UnmapViewOfFile(view)

	code := Relaunched(context.Background(), EncodeToken(uint64(mapping)), testOptions())
	require.Equal(t, result.ErrorInterProcessCommunicationFailed, code)
}

func TestRelaunchedSpawnFailure(t *testing.T) {
	gm := testsuite.MarkGoroutines(t)
	defer gm.Compare()

	mapping, err := winapi.CreateFileMapping(mappingSize, false)
	require.NoError(t, err)
	view, err := winapi.MapViewOfFile(mapping, mappingSize)
	require.NoError(t, err)
	buf, err := encodeRequest(&Request{
		Path:       filepath.Join(t.TempDir(), "absent.exe"),
		Relaunched: true,
	})
	require.NoError(t, err)
	copy(winapi.MemorySlice(view, mappingSize), buf)
	winapi.UnmapViewOfFile(view)

	// the request decodes, the relaunched machine starts from spawn
	// and fails to create the absent target
	code := Relaunched(context.Background(), EncodeToken(uint64(mapping)), testOptions())
	require.Equal(t, result.ErrorCreateProcess, code)
}
