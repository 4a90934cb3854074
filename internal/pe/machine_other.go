// +build !386,!amd64

package pe

// CurrentMachine falls back to the 64 bit value, hosts that are not
// x86 can parse images but never inject into them.
const CurrentMachine uint16 = MachineAMD64
