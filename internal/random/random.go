package random

import (
	cr "crypto/rand"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/samuelgr/Hookshot-sub001/internal/convert"
)

var gRand = NewRand()

// Rand is a goroutine safe math/rand.Rand.
type Rand struct {
	rand *rand.Rand
	mu   sync.Mutex
}

// NewRand is used to create a Rand seeded from crypto/rand,
// it falls back to the wall clock if the system source fails.
func NewRand() *Rand {
	b := make([]byte, 8)
	var seed int64
	_, err := io.ReadFull(cr.Reader, b)
	if err == nil {
		seed = convert.BEBytesToInt64(b)
	} else {
		seed = time.Now().UnixNano()
	}
	return &Rand{
		rand: rand.New(rand.NewSource(seed)), // #nosec
	}
}

// Bytes is used to generate random []byte with length n.
func (r *Rand) Bytes(n int) []byte {
	if n < 1 {
		return nil
	}
	result := make([]byte, n)
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i < n; i++ {
		result[i] = byte(r.rand.Intn(256))
	}
	return result
}

// Int is used to generate a random int in [0, n).
func (r *Rand) Int(n int) int {
	if n < 1 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Bytes is used to generate random []byte with length n.
func Bytes(n int) []byte {
	return gRand.Bytes(n)
}

// Int is used to generate a random int in [0, n).
func Int(n int) int {
	return gRand.Int(n)
}

// Sleep is used to sleep fixed milliseconds with a random
// jitter, fixed <= time < fixed + random.
func Sleep(fixed, random int) {
	time.Sleep(Duration(fixed, random))
}

// Duration is used to calculate the duration that Sleep will use.
func Duration(fixed, random int) time.Duration {
	return time.Duration(fixed+Int(random)) * time.Millisecond
}
