package pool

import (
	"sync"
)

// default parameters about the global scratch buffer pool.
const (
	DefaultBufferSize = 4096
	DefaultMaxIdle    = 8
)

// Pool is a bounded free list of fixed-capacity byte buffers.
// Get pops an idle buffer when one is available and falls back
// to the heap when the list is empty, Put returns a buffer to
// the list unless the list is already full, in that case the
// buffer is released to the garbage collector. Idle buffers are
// never drained, so a process keeps at most max buffers alive.
type Pool struct {
	size int
	max  int

	free [][]byte
	mu   sync.Mutex
}

// New is used to create a buffer pool, size is the capacity of
// each buffer and max bounds the free list.
func New(size, max int) *Pool {
	if size < 1 {
		size = DefaultBufferSize
	}
	if max < 1 {
		max = DefaultMaxIdle
	}
	return &Pool{
		size: size,
		max:  max,
		free: make([][]byte, 0, max),
	}
}

// Get is used to get a buffer with len == BufferSize.
func (pool *Pool) Get() []byte {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	l := len(pool.free)
	if l == 0 {
		return make([]byte, pool.size)
	}
	b := pool.free[l-1]
	pool.free[l-1] = nil
	pool.free = pool.free[:l-1]
	return b
}

// Put is used to return a buffer that Get returned.
func (pool *Pool) Put(b []byte) {
	if cap(b) != pool.size {
		return
	}
	pool.mu.Lock()
	defer pool.mu.Unlock()
	if len(pool.free) >= pool.max {
		return
	}
	pool.free = append(pool.free, b[:pool.size])
}

// Idle is used to count the buffers in the free list.
func (pool *Pool) Idle() int {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	return len(pool.free)
}

// BufferSize is used to get the capacity of each buffer.
func (pool *Pool) BufferSize() int {
	return pool.size
}

var (
	gPool    *Pool
	initOnce sync.Once
)

// global is the process wide scratch pool, created lazily on first use.
func global() *Pool {
	initOnce.Do(func() {
		gPool = New(DefaultBufferSize, DefaultMaxIdle)
	})
	return gPool
}

// Get is used to get a buffer from the global pool.
func Get() []byte {
	return global().Get()
}

// Put is used to return a buffer to the global pool.
func Put(b []byte) {
	global().Put(b)
}
