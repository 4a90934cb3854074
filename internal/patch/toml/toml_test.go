package toml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testSettings struct {
	LogLevel int64
	Section  *testSection
}

type testSection struct {
	UseConfiguredHookModules bool
}

func TestMarshal(t *testing.T) {
	test := testSettings{LogLevel: 2}
	b, err := Marshal(test)
	require.NoError(t, err)
	t.Logf("\n%s", b)
}

func TestUnmarshal(t *testing.T) {
	test := testSettings{}
	data := []byte(`
      LogLevel = 2

      [Section]
        UseConfiguredHookModules = true
`)
	err := Unmarshal(data, &test)
	require.NoError(t, err)

	require.Equal(t, int64(2), test.LogLevel)
	require.True(t, test.Section.UseConfiguredHookModules)

	err = Unmarshal([]byte{0x00}, &test)
	require.Error(t, err)
}
