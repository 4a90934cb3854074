package hook

import (
	"strconv"
)

// Result identifies the outcome of one hook operation.
type Result uint32

// all hook operation results, every value above NoEffect is a failure.
const (
	// Success means the operation did what was asked.
	Success Result = iota

	// NoEffect means the operation was valid but changed nothing,
	// no operation returns it yet, the value is reserved.
	NoEffect

	// FailAllocation means no trampoline slot could be produced
	// within reach of the hooked function.
	FailAllocation

	// FailBadState is reserved for operations attempted against an
	// engine that failed to initialise.
	FailBadState

	// FailCannotSetHook means the prologue could not be measured,
	// relocated, protected or rewritten.
	FailCannotSetHook

	// FailDuplicate means an address is already registered to a hook.
	FailDuplicate

	// FailInvalidArgument means an address was null, not executable,
	// or otherwise unusable.
	FailInvalidArgument

	// FailNotFound means no hook is registered under the address.
	FailNotFound

	// FailInternal means an invariant was violated.
	FailInternal

	maxResult
)

var resultNames = [maxResult]string{
	"Success",
	"NoEffect",
	"FailAllocation",
	"FailBadState",
	"FailCannotSetHook",
	"FailDuplicate",
	"FailInvalidArgument",
	"FailNotFound",
	"FailInternal",
}

// String is used to return the stable rendering of the result.
func (r Result) String() string {
	if r < maxResult {
		return resultNames[r]
	}
	return "EHookshotResult(" + strconv.FormatUint(uint64(r), 10) + ")"
}

// IsSuccess is used to report whether the operation worked, NoEffect
// counts as success.
func (r Result) IsSuccess() bool {
	return r <= NoEffect
}

// IsFailure is used to report whether the operation failed.
func (r Result) IsFailure() bool {
	return r > NoEffect
}
