// +build windows

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/samuelgr/Hookshot-sub001/internal/config"
	"github.com/samuelgr/Hookshot-sub001/internal/inject"
	"github.com/samuelgr/Hookshot-sub001/internal/library"
	"github.com/samuelgr/Hookshot-sub001/internal/logger"
	"github.com/samuelgr/Hookshot-sub001/internal/result"
	"github.com/samuelgr/Hookshot-sub001/internal/system"
	"github.com/samuelgr/Hookshot-sub001/internal/winapi"
)

func main() {
	var (
		deadline time.Duration
		poll     time.Duration
	)
	flag.DurationVar(&deadline, "deadline", 0, "how long to wait for the library to initialise")
	flag.DurationVar(&poll, "poll", 0, "interval between target state samples")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(result.ErrorInternalInvalidParams.ExitCode())
	}

	code := run(flag.Arg(0), flag.Args()[1:], deadline, poll)
	if code.IsError() {
		_, _ = fmt.Fprintln(os.Stderr, code)
	}
	os.Exit(code.ExitCode())
}

func usage() {
	name := filepath.Base(os.Args[0])
	_, _ = fmt.Fprintf(os.Stderr, "usage: %s [flags] executable [arguments...]\n", name)
	_, _ = fmt.Fprintf(os.Stderr, "       %s %shandle\n\n", name, inject.TokenPrefix)
	flag.PrintDefaults()
}

func run(target string, args []string, deadline, poll time.Duration) result.Code {
	// a token names no executable, only the global settings apply
	exe := filepath.Base(target)
	display := target
	if inject.IsToken(target) {
		exe = ""
		display = "Relaunched"
	}
	lg, closeLog := newLogger(exe, display)
	defer closeLog()
	logger.HijackLogWriter(logger.Error, "init", lg, 0)

	opts := inject.Options{
		SyncDeadline: deadline,
		PollInterval: poll,
		Logger:       lg,
	}
	ctx := context.Background()
	if inject.IsToken(target) {
		return inject.Relaunched(ctx, target, &opts)
	}
	return inject.Inject(ctx, target, args, &opts)
}

// newLogger builds the injector logger from the configured verbosity,
// the console plus a per run file on the desktop. A broken or missing
// configuration still leaves the console output working.
func newLogger(exe, display string) (logger.Logger, func()) {
	nop := func() {}
	path, err := config.Path()
	if err != nil {
		return logger.Common, nop
	}
	settings, err := config.Load(path, exe)
	if err != nil {
		settings = new(config.Settings)
		_, _ = fmt.Fprintln(os.Stderr, err)
	}
	lv := logger.FromInteger(int(settings.LogLevel))
	if lv == logger.Off {
		return logger.Discard, nop
	}
	writers := []io.Writer{os.Stdout}
	if file := createLogFile(display); file != nil {
		writers = append(writers, file)
	}
	ml := logger.NewMultiLogger(lv, writers...)
	return ml, func() { _ = ml.Close() }
}

func createLogFile(display string) *os.File {
	desktop, err := winapi.DesktopDirectory()
	if err != nil {
		return nil
	}
	own, err := system.ExecutablePath()
	if err != nil {
		return nil
	}
	name := library.LogFilename(own, display, uint32(os.Getpid()))
	file, err := os.Create(filepath.Join(desktop, name))
	if err != nil {
		return nil
	}
	return file
}
