package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	pool := New(64, 2)

	t.Run("get with empty free list", func(t *testing.T) {
		b := pool.Get()
		require.Len(t, b, 64)
		require.Equal(t, 0, pool.Idle())
	})

	t.Run("put then get returns the same buffer", func(t *testing.T) {
		b := pool.Get()
		b[0] = 123
		pool.Put(b)
		require.Equal(t, 1, pool.Idle())

		b2 := pool.Get()
		require.Equal(t, byte(123), b2[0])
		require.Equal(t, 0, pool.Idle())
	})

	t.Run("bounded", func(t *testing.T) {
		b1 := pool.Get()
		b2 := pool.Get()
		b3 := pool.Get()
		pool.Put(b1)
		pool.Put(b2)
		pool.Put(b3)
		require.Equal(t, 2, pool.Idle())
	})

	t.Run("reject foreign buffer", func(t *testing.T) {
		idle := pool.Idle()
		pool.Put(make([]byte, 16))
		require.Equal(t, idle, pool.Idle())
	})

	t.Run("shrunken buffer is restored", func(t *testing.T) {
		pool := New(64, 2)
		b := pool.Get()
		pool.Put(b[:1])
		require.Len(t, pool.Get(), 64)
	})
}

func TestNewWithInvalidParameters(t *testing.T) {
	pool := New(0, 0)
	require.Equal(t, DefaultBufferSize, pool.BufferSize())
	require.Len(t, pool.Get(), DefaultBufferSize)
}

func TestGlobalPool(t *testing.T) {
	b := Get()
	require.Len(t, b, DefaultBufferSize)
	Put(b)
}

func TestPoolParallel(t *testing.T) {
	pool := New(32, 4)
	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b := pool.Get()
				b[0] = byte(j)
				pool.Put(b)
			}
		}()
	}
	wg.Wait()
	require.True(t, pool.Idle() <= 4)
}
