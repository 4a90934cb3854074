// +build windows

// Package trampoline allocates the executable slots that hold stolen
// prologues and their tail jumps. The overwrite at a hooked function
// is a five byte relative jump, so every slot must live within signed
// 32 bit reach of the code it serves. Blocks are committed by probing
// outward from the anchor inside the [anchor-2GiB, anchor+2GiB)
// window at allocation granularity strides, then carved into slots
// front to back.
//
// The allocator does no locking of its own, callers serialise through
// the hook engine's writer lock. Slots are never returned, hooks are
// permanent for the life of the process.
package trampoline

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/samuelgr/Hookshot-sub001/internal/winapi"
	"github.com/samuelgr/Hookshot-sub001/internal/x86"
)

// reachable reports whether a five byte relative jump placed at
// anchor can land on addr.
func reachable(anchor, addr uintptr) bool {
	disp := int64(addr) - (int64(anchor) + x86.JumpRelativeLength)
	return disp >= math.MinInt32 && disp <= math.MaxInt32
}

// block is one committed region carved into slots front to back.
type block struct {
	base uintptr
	size uintptr
	next uintptr
}

func (blk *block) take(anchor uintptr) (uintptr, bool) {
	if blk.next+SlotSize > blk.size {
		return 0, false
	}
	slot := blk.base + blk.next
	if !reachable(anchor, slot) {
		return 0, false
	}
	blk.next += SlotSize
	return slot, true
}

// Allocator hands out trampoline slots. Blocks accumulate for the
// lifetime of the process and are reused until exhausted.
type Allocator struct {
	granularity uintptr
	pageSize    uintptr
	blockSize   uintptr
	minAddr     uintptr
	maxAddr     uintptr
	blocks      []*block
}

// NewAllocator is used to create a slot allocator, blockSize selects
// the region size committed per probe, zero means one allocation
// granularity unit. The size is rounded up to whole pages.
func NewAllocator(blockSize uintptr) *Allocator {
	info := winapi.GetNativeSystemInfo()
	granularity := uintptr(info.AllocationGranularity)
	pageSize := uintptr(info.PageSize)
	if blockSize == 0 {
		blockSize = granularity
	}
	blockSize = (blockSize + pageSize - 1) &^ (pageSize - 1)
	return &Allocator{
		granularity: granularity,
		pageSize:    pageSize,
		blockSize:   blockSize,
		minAddr:     info.MinimumApplicationAddress,
		maxAddr:     info.MaximumApplicationAddress,
	}
}

// Slot is used to return the address of a free slot within reach of
// anchor, committing a new block near the anchor when no existing
// block can serve. Slots are SlotSize bytes and at least 16 byte
// aligned.
func (alloc *Allocator) Slot(anchor uintptr) (uintptr, error) {
	for _, blk := range alloc.blocks {
		if slot, ok := blk.take(anchor); ok {
			return slot, nil
		}
	}
	blk, err := alloc.probe(anchor)
	if err != nil {
		return 0, err
	}
	alloc.blocks = append(alloc.blocks, blk)
	slot, _ := blk.take(anchor)
	return slot, nil
}

// probe walks outward from the anchor at granularity strides and
// commits the first free region whose whole span stays reachable.
func (alloc *Allocator) probe(anchor uintptr) (*block, error) {
	start := uint64(anchor) &^ uint64(alloc.granularity-1)
	for offset := uint64(0); offset <= math.MaxInt32; offset += uint64(alloc.granularity) {
		candidates := [...]uint64{start + offset, start - offset}
		n := len(candidates)
		if offset == 0 {
			n = 1
		}
		for _, candidate := range candidates[:n] {
			// an underflowed low candidate wraps far above every
			// application address and fails these checks
			if candidate < uint64(alloc.minAddr) || candidate > uint64(alloc.maxAddr) ||
				candidate+uint64(alloc.blockSize)-1 > uint64(alloc.maxAddr) {
				continue
			}
			base := uintptr(candidate)
			if !reachable(anchor, base) || !reachable(anchor, base+alloc.blockSize-1) {
				continue
			}
			mbi, err := winapi.VirtualQuery(base)
			if err != nil || mbi.State != winapi.MemFree || mbi.RegionSize < alloc.blockSize {
				continue
			}
			region, err := winapi.VirtualAlloc(
				base, alloc.blockSize,
				winapi.MemReserve|winapi.MemCommit, winapi.PageReadWrite,
			)
			if err != nil {
				// lost a race for this region, keep walking
				continue
			}
			return &block{base: region, size: alloc.blockSize}, nil
		}
	}
	return nil, errors.Errorf("no free region within reach of 0x%X", anchor)
}

// Commit is used to write finalised trampoline code into a slot and
// seal it executable. The containing pages pass through RWX so that
// neighbouring live slots never lose execute permission while this
// one is written.
func (alloc *Allocator) Commit(slot uintptr, code []byte) error {
	if len(code) == 0 || len(code) > SlotSize {
		return errors.Errorf("invalid slot code size: %d", len(code))
	}
	size := uintptr(len(code))
	var old uint32
	err := winapi.VirtualProtect(slot, size, winapi.PageExecuteReadWrite, &old)
	if err != nil {
		return err
	}
	copy(winapi.MemorySlice(slot, len(code)), code)
	err = winapi.VirtualProtect(slot, size, winapi.PageExecuteRead, &old)
	if err != nil {
		return err
	}
	return winapi.FlushInstructionCache(windows.CurrentProcess(), slot, size)
}

// Blocks is used to return the number of committed blocks.
func (alloc *Allocator) Blocks() int {
	return len(alloc.blocks)
}
