package logger

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Level is the log level.
type Level = uint8

// about level
const (
	Debug Level = iota
	Info
	Warning
	Error
	Fatal
	Off
)

// TimeLayout is used to provide a parameter to time.Time.Format().
const TimeLayout = "2006-01-02 15:04:05"

// Logger is a common logger.
type Logger interface {
	Printf(lv Level, src, format string, log ...interface{})
	Print(lv Level, src string, log ...interface{})
	Println(lv Level, src string, log ...interface{})
}

// FromInteger is used to map a configured verbosity number to a level.
// Zero disables output entirely, larger numbers enable more detail.
func FromInteger(n int) Level {
	switch {
	case n <= 0:
		return Off
	case n == 1:
		return Error
	case n == 2:
		return Warning
	case n == 3:
		return Info
	default:
		return Debug
	}
}

// Prefix is used to print time, level and source to a buffer.
//
// time + level + source + log
// source usually like: class name + "-" + instance tag
//
// [2018-11-27 00:00:00] [info] <inject> spawned process
// [2018-11-27 00:00:00] [info] <hook-engine> install hook
func Prefix(time time.Time, level Level, src string) *bytes.Buffer {
	var lv string
	switch level {
	case Debug:
		lv = "debug"
	case Info:
		lv = "info"
	case Warning:
		lv = "warning"
	case Error:
		lv = "error"
	case Fatal:
		lv = "fatal"
	default:
		lv = "unknown"
	}
	buf := bytes.Buffer{}
	buf.WriteString("[")
	buf.WriteString(time.Local().Format(TimeLayout))
	buf.WriteString("] [")
	buf.WriteString(lv)
	buf.WriteString("] <")
	buf.WriteString(src)
	buf.WriteString("> ")
	return &buf
}

var (
	// Common is a common logger, some tools need it.
	Common Logger = new(common)

	// Test is used to go test.
	Test Logger = new(test)

	// Discard is used to discard log in object test.
	Discard Logger = new(discard)
)

// [2020-01-21 12:36:41] [debug] <test src> test-format test log
type common struct{}

func (common) Printf(lv Level, src, format string, log ...interface{}) {
	output := Prefix(time.Now(), lv, src)
	_, _ = fmt.Fprintf(output, format, log...)
	fmt.Println(output)
}

func (common) Print(lv Level, src string, log ...interface{}) {
	output := Prefix(time.Now(), lv, src)
	_, _ = fmt.Fprint(output, log...)
	fmt.Println(output)
}

func (common) Println(lv Level, src string, log ...interface{}) {
	output := Prefix(time.Now(), lv, src)
	_, _ = fmt.Fprintln(output, log...)
	fmt.Print(output)
}

// [Test] [2020-01-21 12:36:41] [debug] <test src> test-format test log
type test struct{}

var testLoggerPrefix = []byte("[Test] ")

func writePrefix(lv Level, src string) *bytes.Buffer {
	output := new(bytes.Buffer)
	output.Write(testLoggerPrefix)
	_, _ = io.Copy(output, Prefix(time.Now(), lv, src))
	return output
}

func (test) Printf(lv Level, src, format string, log ...interface{}) {
	output := writePrefix(lv, src)
	_, _ = fmt.Fprintf(output, format, log...)
	fmt.Println(output)
}

func (test) Print(lv Level, src string, log ...interface{}) {
	output := writePrefix(lv, src)
	_, _ = fmt.Fprint(output, log...)
	fmt.Println(output)
}

func (test) Println(lv Level, src string, log ...interface{}) {
	output := writePrefix(lv, src)
	_, _ = fmt.Fprintln(output, log...)
	fmt.Print(output)
}

type discard struct{}

func (discard) Printf(_ Level, _, _ string, _ ...interface{}) {}

func (discard) Print(_ Level, _ string, _ ...interface{}) {}

func (discard) Println(_ Level, _ string, _ ...interface{}) {}

// MultiLogger is a leveled logger that writes each line to all
// destination writers, the injector uses it to tee the console
// and the per-run log file.
type MultiLogger struct {
	level   Level
	writers []io.Writer
	rwm     sync.RWMutex
}

// NewMultiLogger is used to create a multi logger with a level threshold.
func NewMultiLogger(level Level, writers ...io.Writer) *MultiLogger {
	return &MultiLogger{
		level:   level,
		writers: writers,
	}
}

func (ml *MultiLogger) write(buf *bytes.Buffer) {
	buf.WriteString("\n")
	ml.rwm.RLock()
	defer ml.rwm.RUnlock()
	for i := 0; i < len(ml.writers); i++ {
		_, _ = buf.WriteTo(ml.writers[i])
	}
}

func (ml *MultiLogger) enabled(lv Level) bool {
	if lv == Off {
		return false
	}
	ml.rwm.RLock()
	defer ml.rwm.RUnlock()
	return lv >= ml.level
}

// Printf is used to print log with format.
func (ml *MultiLogger) Printf(lv Level, src, format string, log ...interface{}) {
	if !ml.enabled(lv) {
		return
	}
	buf := Prefix(time.Now(), lv, src)
	_, _ = fmt.Fprintf(buf, format, log...)
	ml.write(buf)
}

// Print is used to print log.
func (ml *MultiLogger) Print(lv Level, src string, log ...interface{}) {
	if !ml.enabled(lv) {
		return
	}
	buf := Prefix(time.Now(), lv, src)
	_, _ = fmt.Fprint(buf, log...)
	ml.write(buf)
}

// Println is used to print log with new line.
func (ml *MultiLogger) Println(lv Level, src string, log ...interface{}) {
	if !ml.enabled(lv) {
		return
	}
	buf := Prefix(time.Now(), lv, src)
	_, _ = fmt.Fprintln(buf, log...)
	buf.Truncate(buf.Len() - 1)
	ml.write(buf)
}

// SetLevel is used to set the level threshold of the multi logger.
func (ml *MultiLogger) SetLevel(lv Level) error {
	if lv > Off {
		return fmt.Errorf("invalid logger level: %d", lv)
	}
	ml.rwm.Lock()
	defer ml.rwm.Unlock()
	ml.level = lv
	return nil
}

// Close is used to close writers that need close like log file, the
// process owned standard streams are left open.
func (ml *MultiLogger) Close() error {
	ml.rwm.Lock()
	defer ml.rwm.Unlock()
	var err error
	for i := 0; i < len(ml.writers); i++ {
		if ml.writers[i] == os.Stdout || ml.writers[i] == os.Stderr {
			continue
		}
		closer, ok := ml.writers[i].(io.Closer)
		if !ok {
			continue
		}
		e := closer.Close()
		if e != nil && err == nil {
			err = e
		}
	}
	ml.writers = nil
	return err
}

type writer struct {
	level  Level
	src    string
	logger Logger
}

func (w *writer) Write(p []byte) (int, error) {
	w.logger.Println(w.level, w.src, string(p[:len(p)-1]))
	return len(p), nil
}

// Wrap is for APIs that only accept a go internal logger.
func Wrap(lv Level, src string, logger Logger) *log.Logger {
	w := &writer{
		level:  lv,
		src:    src,
		logger: logger,
	}
	return log.New(w, "", 0)
}

// HijackLogWriter is used to hijack all packages that use log.Print(),
// panic backtraces from recovered goroutines arrive through it.
func HijackLogWriter(lv Level, src string, logger Logger, flag int) {
	log.SetFlags(flag)
	w := &writer{
		level:  lv,
		src:    src,
		logger: logger,
	}
	log.SetOutput(w)
}
