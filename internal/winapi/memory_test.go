// +build windows

package winapi

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"

	"github.com/samuelgr/Hookshot-sub001/internal/testsuite"
)

func TestVirtualAlloc(t *testing.T) {
	addr, err := VirtualAlloc(0, 4096, MemCommit|MemReserve, PageReadWrite)
	require.NoError(t, err)
	require.NotZero(t, addr)
	defer func() {
		err = VirtualFree(addr, 0, MemRelease)
		require.NoError(t, err)
	}()

	mbi, err := VirtualQuery(addr)
	require.NoError(t, err)
	require.Equal(t, MemCommit, mbi.State)
	require.Equal(t, PageReadWrite, mbi.Protect)

	var old uint32
	err = VirtualProtect(addr, 4096, PageExecuteRead, &old)
	require.NoError(t, err)
	require.Equal(t, PageReadWrite, old)

	err = FlushInstructionCache(windows.CurrentProcess(), addr, 4096)
	require.NoError(t, err)
}

func TestReadWriteProcessMemory(t *testing.T) {
	hProcess := windows.CurrentProcess()

	addr, err := VirtualAlloc(0, 4096, MemCommit|MemReserve, PageReadWrite)
	require.NoError(t, err)
	defer func() {
		err = VirtualFree(addr, 0, MemRelease)
		require.NoError(t, err)
	}()

	data := testsuite.Bytes()
	err = WriteProcessMemory(hProcess, addr, data)
	require.NoError(t, err)

	buf := make([]byte, len(data))
	err = ReadProcessMemory(hProcess, addr, buf)
	require.NoError(t, err)
	require.Equal(t, data, buf)

	// zero length operations are no-ops
	require.NoError(t, ReadProcessMemory(hProcess, addr, nil))
	require.NoError(t, WriteProcessMemory(hProcess, addr, nil))

	// unmapped address
	err = ReadProcessMemory(hProcess, 1, buf)
	require.Error(t, err)
}

func TestVirtualAllocEx(t *testing.T) {
	hProcess := windows.CurrentProcess()

	addr, err := VirtualAllocEx(hProcess, 0, 4096, MemCommit|MemReserve, PageReadWrite)
	require.NoError(t, err)
	require.NotZero(t, addr)

	var old uint32
	err = VirtualProtectEx(hProcess, addr, 4096, PageReadOnly, &old)
	require.NoError(t, err)
	require.Equal(t, PageReadWrite, old)

	mbi, err := VirtualQueryEx(hProcess, addr)
	require.NoError(t, err)
	require.Equal(t, MemCommit, mbi.State)

	err = VirtualFreeEx(hProcess, addr, 0, MemRelease)
	require.NoError(t, err)
}
