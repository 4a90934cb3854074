// +build windows

// Package hook implements the in-process hook engine. Creating a hook
// measures the target's prologue on whole instruction boundaries,
// relocates it into a trampoline slot, overwrites the target with a
// jump to the replacement, and registers the pair so that either
// address resolves to the trampoline.
//
// The engine is synchronous and runs on whichever thread calls into
// it. One writer lock guards the registry and the allocator together,
// lookups take the shared side. Hooks are permanent, records are only
// destroyed with the process.
package hook

import (
	"sync"

	"github.com/samuelgr/Hookshot-sub001/internal/trampoline"
	"github.com/samuelgr/Hookshot-sub001/internal/winapi"
	"github.com/samuelgr/Hookshot-sub001/internal/x86"
	"github.com/samuelgr/Hookshot-sub001/internal/xpanic"
)

// Hook is one installed hook: the overwritten function, the function
// that now runs instead, the trampoline that still behaves like the
// unhooked original and the prologue bytes the overwrite displaced.
type Hook struct {
	original    uintptr
	replacement uintptr
	trampoline  uintptr
	stolen      []byte
}

// Store owns the hook registry and the trampoline allocator. A record
// appears in the registry under exactly two keys, its original
// address and its current replacement address.
type Store struct {
	allocator *trampoline.Allocator

	rwm      sync.RWMutex
	registry map[uintptr]*Hook
}

func newStore() *Store {
	return &Store{
		allocator: trampoline.NewAllocator(0),
		registry:  make(map[uintptr]*Hook, 16),
	}
}

var (
	configuration         *Store
	initConfigurationOnce sync.Once
)

// Configuration is used to return the process wide hook interface, it
// is created lazily on first use and lives until process exit.
func Configuration() *Store {
	initConfigurationOnce.Do(func() {
		configuration = newStore()
	})
	return configuration
}

// CreateHook is used to make calls to original run replacement
// instead. On success the first bytes of original hold a jump to
// replacement and GetOriginal resolves both addresses to a trampoline
// that behaves like the unhooked original.
func (store *Store) CreateHook(original, replacement uintptr) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			xpanic.Log(r, "Store.CreateHook")
			result = FailInternal
		}
	}()
	if original == 0 || replacement == 0 || original == replacement {
		return FailInvalidArgument
	}
	if !executable(original) || !executable(replacement) {
		return FailInvalidArgument
	}
	store.rwm.Lock()
	defer store.rwm.Unlock()
	if store.registry[original] != nil || store.registry[replacement] != nil {
		return FailDuplicate
	}
	// cover the jump window with whole instructions
	window := winapi.MemorySlice(original, x86.JumpRelativeLength+x86.MaxInstructionLength)
	prologue, err := x86.AnalyzePrologue(window, x86.JumpRelativeLength)
	if err != nil {
		return FailCannotSetHook
	}
	if !prologue.Relocatable {
		// relative branches and RIP relative operands would run
		// against the wrong addresses inside the slot
		return FailCannotSetHook
	}
	stolen := make([]byte, prologue.Length)
	copy(stolen, window[:prologue.Length])

	slot, err := store.allocator.Slot(original)
	if err != nil {
		return FailAllocation
	}
	tail, err := tailJump(slot+uintptr(len(stolen)), original+uintptr(len(stolen)))
	if err != nil {
		return FailInternal
	}
	code := make([]byte, 0, len(stolen)+len(tail))
	code = append(append(code, stolen...), tail...)
	if store.allocator.Commit(slot, code) != nil {
		return FailCannotSetHook
	}
	if res := writeHookJump(original, len(stolen), replacement); res != Success {
		return res
	}
	hook := &Hook{
		original:    original,
		replacement: replacement,
		trampoline:  slot,
		stolen:      stolen,
	}
	store.registry[original] = hook
	store.registry[replacement] = hook
	return Success
}

// GetOriginal is used to return the trampoline address for a hooked
// address, original or current replacement, zero when the address
// identifies no hook. It never mutates.
func (store *Store) GetOriginal(addr uintptr) uintptr {
	store.rwm.RLock()
	defer store.rwm.RUnlock()
	if hook := store.registry[addr]; hook != nil {
		return hook.trampoline
	}
	return 0
}

// ReplaceReplacement is used to retarget a hook identified by either
// of its addresses. The displacement of the overwritten jump is
// swapped with a single 32 bit store, racing callers run either the
// old or the new replacement.
func (store *Store) ReplaceReplacement(addr, replacement uintptr) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			xpanic.Log(r, "Store.ReplaceReplacement")
			result = FailInternal
		}
	}()
	if replacement == 0 || !executable(replacement) {
		return FailInvalidArgument
	}
	store.rwm.Lock()
	defer store.rwm.Unlock()
	hook := store.registry[addr]
	if hook == nil {
		return FailNotFound
	}
	if replacement == hook.original {
		return FailInvalidArgument
	}
	if replacement == hook.replacement {
		// already points there
		return Success
	}
	if store.registry[replacement] != nil {
		return FailDuplicate
	}
	if res := writeReplacementJump(hook.original, replacement); res != Success {
		return res
	}
	delete(store.registry, hook.replacement)
	hook.replacement = replacement
	store.registry[replacement] = hook
	return Success
}
