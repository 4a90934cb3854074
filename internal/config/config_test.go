package config

import (
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/require"
)

func testReadConfig(t *testing.T) []byte {
	data, err := ioutil.ReadFile("testdata/Hookshot.toml")
	require.NoError(t, err)
	return data
}

func TestResolve(t *testing.T) {
	data := testReadConfig(t)

	t.Run("global only", func(t *testing.T) {
		settings, err := Resolve(data, "unknown.exe")
		require.NoError(t, err)
		require.Equal(t, []string{"Common"}, settings.HookModules)
		require.Empty(t, settings.InjectLibraries)
		require.Equal(t, uint32(2), settings.LogLevel)
		require.False(t, settings.UseConfiguredHookModules)
		require.True(t, settings.LoadHookModulesFromHookshotDirectory)
	})

	t.Run("executable section", func(t *testing.T) {
		settings, err := Resolve(data, "app.exe")
		require.NoError(t, err)
		require.Equal(t, []string{"Common", "AppHooks"}, settings.HookModules)
		require.Equal(t, []string{"Helper.dll"}, settings.InjectLibraries)
		require.Equal(t, uint32(4), settings.LogLevel)
		require.True(t, settings.UseConfiguredHookModules)
		require.True(t, settings.LoadHookModulesFromHookshotDirectory)
	})

	t.Run("case insensitive", func(t *testing.T) {
		settings, err := Resolve(data, "APP.EXE")
		require.NoError(t, err)
		require.Equal(t, []string{"Common", "AppHooks"}, settings.HookModules)
	})

	t.Run("scalar override to zero", func(t *testing.T) {
		settings, err := Resolve(data, "other.exe")
		require.NoError(t, err)
		require.Zero(t, settings.LogLevel)
		require.Equal(t, []string{"Common"}, settings.HookModules)
	})

	t.Run("empty file", func(t *testing.T) {
		settings, err := Resolve(nil, "app.exe")
		require.NoError(t, err)
		require.Equal(t, new(Settings), settings)
	})

	t.Run("invalid file", func(t *testing.T) {
		settings, err := Resolve([]byte("[Global\nfoo"), "app.exe")
		require.Error(t, err)
		require.Nil(t, settings)
	})
}

func TestLoad(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		settings, err := Load("testdata/Hookshot.toml", "app.exe")
		require.NoError(t, err)
		require.Equal(t, uint32(4), settings.LogLevel)
	})

	t.Run("missing file", func(t *testing.T) {
		settings, err := Load("testdata/not_exist.toml", "app.exe")
		require.NoError(t, err)
		require.Equal(t, new(Settings), settings)
	})
}

func TestPath(t *testing.T) {
	path, err := Path()
	require.NoError(t, err)
	require.Contains(t, path, Name)
}
