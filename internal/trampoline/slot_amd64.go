// +build windows

package trampoline

// SlotSize is the byte size of one trampoline slot, enough for the
// longest stolen prologue plus the 14 byte absolute tail jump.
const SlotSize = 48
