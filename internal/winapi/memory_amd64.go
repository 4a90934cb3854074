// +build windows

package winapi

// MemoryBasicInformation contains a range of pages in the virtual
// address space of a process. The VirtualQuery and VirtualQueryEx
// functions use this structure, the PartitionId field exists only in
// the 64 bit layout.
type MemoryBasicInformation struct {
	BaseAddress       uintptr
	AllocationBase    uintptr
	AllocationProtect uint32
	PartitionID       uint16
	RegionSize        uintptr
	State             uint32
	Protect           uint32
	Type              uint32
}
