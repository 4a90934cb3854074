package library

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samuelgr/Hookshot-sub001/internal/pe"
)

func TestRuntimeLibraryName(t *testing.T) {
	name, err := RuntimeLibraryName(pe.MachineI386)
	require.NoError(t, err)
	require.Equal(t, "Hookshot.32.dll", name)

	name, err = RuntimeLibraryName(pe.MachineAMD64)
	require.NoError(t, err)
	require.Equal(t, "Hookshot.64.dll", name)

	_, err = RuntimeLibraryName(0x01C4)
	require.Error(t, err)
}

func TestRuntimeLibrary(t *testing.T) {
	path, err := RuntimeLibrary("bin", pe.MachineAMD64)
	require.NoError(t, err)
	require.Equal(t, filepath.Join("bin", "Hookshot.64.dll"), path)

	_, err = RuntimeLibrary("bin", 0)
	require.Error(t, err)
}

func TestSiblingExecutable(t *testing.T) {
	path, err := SiblingExecutable("bin", pe.MachineI386)
	require.NoError(t, err)
	require.Equal(t, filepath.Join("bin", "Hookshot.32.exe"), path)

	path, err = SiblingExecutable("bin", pe.MachineAMD64)
	require.NoError(t, err)
	require.Equal(t, filepath.Join("bin", "Hookshot.64.exe"), path)

	_, err = SiblingExecutable("bin", 0)
	require.Error(t, err)
}

func TestHookModuleName(t *testing.T) {
	target := filepath.Join("dir", "app.exe")

	name, err := HookModuleName(target, pe.MachineAMD64)
	require.NoError(t, err)
	require.Equal(t, "app.HookModule.64.dll", name)

	name, err = HookModuleName(target, pe.MachineI386)
	require.NoError(t, err)
	require.Equal(t, "app.HookModule.32.dll", name)

	_, err = HookModuleName(target, 0)
	require.Error(t, err)
}

func TestLogFilename(t *testing.T) {
	own := filepath.Join("bin", "Hookshot.64.exe")
	target := filepath.Join("dir", "game.exe")

	name := LogFilename(own, target, 1234)
	require.Equal(t, "Hookshot.64_game_1234.log", name)

	// a bare display name works like a path
	require.Equal(t, "Hookshot.64_Relaunched_7.log", LogFilename(own, "Relaunched", 7))
}
