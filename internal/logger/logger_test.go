package logger

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/samuelgr/Hookshot-sub001/internal/testsuite"
)

const (
	testPrefixF  = "test format %s %s"
	testPrefix   = "test print"
	testPrefixLn = "test println"
	testSrc      = "test src"
	testLog1     = "test"
	testLog2     = "log"
)

func TestFromInteger(t *testing.T) {
	for _, testdata := range []struct {
		number int
		level  Level
	}{
		{-1, Off},
		{0, Off},
		{1, Error},
		{2, Warning},
		{3, Info},
		{4, Debug},
		{100, Debug},
	} {
		require.Equal(t, testdata.level, FromInteger(testdata.number))
	}
}

func TestPrefix(t *testing.T) {
	for lv := Level(0); lv < Off; lv++ {
		fmt.Println(Prefix(time.Now(), lv, testSrc).String())
	}
	// unknown level
	fmt.Println(Prefix(time.Now(), Level(153), testSrc).String())
}

func TestLogger(t *testing.T) {
	Common.Printf(Debug, testSrc, testPrefixF, testLog1, testLog2)
	Common.Print(Debug, testSrc, testPrefix, testLog1, testLog2)
	Common.Println(Debug, testSrc, testPrefixLn, testLog1, testLog2)

	Test.Printf(Debug, testSrc, testPrefixF, testLog1, testLog2)
	Test.Print(Debug, testSrc, testPrefix, testLog1, testLog2)
	Test.Println(Debug, testSrc, testPrefixLn, testLog1, testLog2)

	Discard.Printf(Debug, testSrc, testPrefixF, testLog1, testLog2)
	Discard.Print(Debug, testSrc, testPrefix, testLog1, testLog2)
	Discard.Println(Debug, testSrc, testPrefixLn, testLog1, testLog2)
}

func TestMultiLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	name := filepath.Join(t.TempDir(), "test.log")
	file, err := os.Create(name)
	require.NoError(t, err)
	logger := NewMultiLogger(Info, buf, file)

	logger.Printf(Info, testSrc, testPrefixF, testLog1, testLog2)
	logger.Print(Warning, testSrc, testPrefix, testLog1, testLog2)
	logger.Println(Error, testSrc, testPrefixLn, testLog1, testLog2)

	// below the threshold
	before := buf.Len()
	logger.Printf(Debug, testSrc, testPrefixF, testLog1, testLog2)
	require.Equal(t, before, buf.Len())

	t.Run("low level", func(t *testing.T) {
		err := logger.SetLevel(Error)
		require.NoError(t, err)

		before := buf.Len()
		logger.Printf(Info, testSrc, testPrefixF, testLog1, testLog2)
		require.Equal(t, before, buf.Len())
	})

	t.Run("invalid level", func(t *testing.T) {
		err := logger.SetLevel(Level(123))
		require.EqualError(t, err, "invalid logger level: 123")
	})

	err = logger.Close()
	require.NoError(t, err)

	// every writer received the same lines
	data, err := ioutil.ReadFile(name)
	require.NoError(t, err)
	require.Equal(t, buf.String(), string(data))
	require.Contains(t, buf.String(), testPrefixLn)

	testsuite.IsDestroyed(t, logger)
}

func TestMultiLoggerOff(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := NewMultiLogger(Off, buf)

	logger.Println(Fatal, testSrc, testPrefixLn, testLog1, testLog2)
	require.Zero(t, buf.Len())

	require.NoError(t, logger.Close())
}

func TestMultiLoggerCloseKeepsStdStreams(t *testing.T) {
	logger := NewMultiLogger(Info, os.Stdout, os.Stderr)
	require.NoError(t, logger.Close())

	_, err := fmt.Fprintln(os.Stdout, "stdout is still open")
	require.NoError(t, err)
	_, err = fmt.Fprintln(os.Stderr, "stderr is still open")
	require.NoError(t, err)
}

func TestWrap(t *testing.T) {
	l := Wrap(Debug, "test wrap", Test)
	l.Println("Println")
}

func TestHijackLogWriter(t *testing.T) {
	HijackLogWriter(Error, "test", Test, log.Llongfile)
	log.Println("Println")
}
