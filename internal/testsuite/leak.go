package testsuite

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// settleTimeout is how long Compare waits for trailing goroutines
// to exit before declaring a leak.
const settleTimeout = 3 * time.Second

// GoroutineMark records the goroutine count at a point in a test.
type GoroutineMark struct {
	t    testing.TB
	then int
}

// MarkGoroutines records the current goroutine count. Pair it with
// Compare in a defer to catch goroutines a test leaves behind.
func MarkGoroutines(t testing.TB) *GoroutineMark {
	return &GoroutineMark{t: t, then: runtime.NumGoroutine()}
}

func (m *GoroutineMark) settle() int {
	deadline := time.Now().Add(settleTimeout)
	for {
		n := runtime.NumGoroutine() - m.then
		if n == 0 || time.Now().After(deadline) {
			return n
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Compare fails the test if goroutines outlive the mark.
func (m *GoroutineMark) Compare() {
	const format = "goroutine leaks! then: %d now: %d"
	require.Equalf(m.t, 0, m.settle(), format, m.then, runtime.NumGoroutine())
}
