// +build windows

package winapi

// MemoryBasicInformation contains a range of pages in the virtual
// address space of a process. The VirtualQuery and VirtualQueryEx
// functions use this structure, the 32 bit layout has no PartitionId
// field.
type MemoryBasicInformation struct {
	BaseAddress       uintptr
	AllocationBase    uintptr
	AllocationProtect uint32
	RegionSize        uintptr
	State             uint32
	Protect           uint32
	Type              uint32
}
