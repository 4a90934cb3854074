// +build windows

package inject

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"

	"github.com/samuelgr/Hookshot-sub001/internal/pe"
	"github.com/samuelgr/Hookshot-sub001/internal/testsuite"
	"github.com/samuelgr/Hookshot-sub001/internal/winapi"
)

func TestLocateLoaderFunctions(t *testing.T) {
	gm := testsuite.MarkGoroutines(t)
	defer gm.Compare()

	loadLibrary, getProc, err := locateLoaderFunctions()
	require.NoError(t, err)
	require.NotZero(t, loadLibrary)
	require.NotZero(t, getProc)

	// the export walker must agree with the system loader, forwarder
	// chains included
	kernel32 := windows.NewLazySystemDLL("kernel32.dll")
	wantLoad := kernel32.NewProc("LoadLibraryW")
	require.NoError(t, wantLoad.Find())
	wantProc := kernel32.NewProc("GetProcAddress")
	require.NoError(t, wantProc.Find())

	require.Equal(t, wantLoad.Addr(), loadLibrary)
	require.Equal(t, wantProc.Addr(), getProc)
}

func TestResolveExportForwarder(t *testing.T) {
	gm := testsuite.MarkGoroutines(t)
	defer gm.Compare()

	// HeapAlloc forwards from kernel32 to ntdll on current systems,
	// either way the walker and the loader must agree
	module, err := winapi.GetModuleHandle("kernel32.dll")
	require.NoError(t, err)
	img, err := pe.NewImage(localMemory{}, uintptr(module))
	require.NoError(t, err)

	addr, err := resolveExport(img, "HeapAlloc")
	require.NoError(t, err)

	want, err := winapi.GetProcAddress(module, "HeapAlloc")
	require.NoError(t, err)
	require.Equal(t, want, addr)
}

func TestSplitForwarder(t *testing.T) {
	for _, testdata := range []struct {
		forwarder string
		module    string
		target    string
	}{
		{"NTDLL.RtlAllocateHeap", "NTDLL.dll", "RtlAllocateHeap"},
		{"api-ms-win-core-memory-l1-1-0.VirtualAlloc", "api-ms-win-core-memory-l1-1-0.dll", "VirtualAlloc"},
		{"KERNELBASE.#120", "KERNELBASE.dll", "#120"},
	} {
		module, target, err := splitForwarder(testdata.forwarder)
		require.NoError(t, err)
		require.Equal(t, testdata.module, module)
		require.Equal(t, testdata.target, target)
	}

	for _, invalid := range []string{"", "NoDot", ".Leading", "Trailing."} {
		_, _, err := splitForwarder(invalid)
		require.Error(t, err, invalid)
	}
}
