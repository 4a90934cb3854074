// +build windows

package trampoline

import (
	"reflect"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samuelgr/Hookshot-sub001/internal/winapi"
)

// testAnchor returns a code address inside this test binary, the
// realistic shape of a hook target.
func testAnchor() uintptr {
	return reflect.ValueOf(testAnchor).Pointer()
}

func TestAllocatorSlot(t *testing.T) {
	alloc := NewAllocator(0)
	anchor := testAnchor()

	slot1, err := alloc.Slot(anchor)
	require.NoError(t, err)
	require.Zero(t, slot1%16)
	require.True(t, reachable(anchor, slot1))
	require.Equal(t, 1, alloc.Blocks())

	// same block is carved front to back
	slot2, err := alloc.Slot(anchor)
	require.NoError(t, err)
	require.Equal(t, slot1+SlotSize, slot2)
	require.Equal(t, 1, alloc.Blocks())

	// a nearby anchor shares the block
	slot3, err := alloc.Slot(anchor + 0x1000)
	require.NoError(t, err)
	require.Equal(t, slot2+SlotSize, slot3)
	require.Equal(t, 1, alloc.Blocks())

	// blocks are committed RW until slots are sealed
	mbi, err := winapi.VirtualQuery(slot1)
	require.NoError(t, err)
	require.Equal(t, winapi.MemCommit, mbi.State)
	require.Equal(t, winapi.PageReadWrite, mbi.Protect)
}

func TestAllocatorCommit(t *testing.T) {
	alloc := NewAllocator(0)
	slot, err := alloc.Slot(testAnchor())
	require.NoError(t, err)

	code := []byte{
		0xB8, 0x07, 0x00, 0x00, 0x00, // mov eax, 7
		0xC3, //                         ret
	}
	err = alloc.Commit(slot, code)
	require.NoError(t, err)

	mbi, err := winapi.VirtualQuery(slot)
	require.NoError(t, err)
	require.Equal(t, winapi.PageExecuteRead, mbi.Protect)

	ret, _, _ := syscall.Syscall(slot, 0, 0, 0, 0) // #nosec
	require.Equal(t, uintptr(7), ret)

	t.Run("invalid code size", func(t *testing.T) {
		require.Error(t, alloc.Commit(slot, nil))
		require.Error(t, alloc.Commit(slot, make([]byte, SlotSize+1)))
	})
}

func TestAllocatorExhaustion(t *testing.T) {
	// one page per block
	alloc := NewAllocator(1)
	anchor := testAnchor()

	capacity := int(alloc.blockSize / SlotSize)
	for i := 0; i < capacity; i++ {
		_, err := alloc.Slot(anchor)
		require.NoError(t, err)
	}
	require.Equal(t, 1, alloc.Blocks())

	// the exhausted block forces a second probe
	slot, err := alloc.Slot(anchor)
	require.NoError(t, err)
	require.True(t, reachable(anchor, slot))
	require.Equal(t, 2, alloc.Blocks())
}
