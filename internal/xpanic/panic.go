package xpanic

import (
	"bytes"
	"fmt"
	"log"
	"runtime"
)

// maxDepth limits how many frames a backtrace will walk.
const maxDepth = 32

// Print formats a recovered panic value followed by a backtrace of
// the panicking goroutine. The title names the recovery site.
func Print(panic interface{}, title string) *bytes.Buffer {
	b := new(bytes.Buffer)
	b.WriteString(title)
	b.WriteString(":\n")
	_, _ = fmt.Fprintln(b, panic)
	b.WriteString("\n")
	PrintStack(b, 4) // skip the recovery plumbing
	return b
}

// Log writes a recovered panic value and backtrace to the standard
// logger. Recovery sites without a logger reference use it.
func Log(panic interface{}, title string) {
	log.Println(Print(panic, title))
}

// PrintStack writes the calling goroutine's stack to b, skipping the
// given number of leading frames.
func PrintStack(b *bytes.Buffer, skip int) {
	defer func() {
		if r := recover(); r != nil {
			b.WriteString("\nfailed to print stack\n")
		}
	}()
	if skip > maxDepth {
		skip = 0
	}
	var pcs [maxDepth]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			_, _ = fmt.Fprintf(b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
}
