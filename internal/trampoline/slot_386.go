// +build windows

package trampoline

// SlotSize is the byte size of one trampoline slot, enough for the
// longest stolen prologue plus a five byte relative tail jump.
const SlotSize = 32
