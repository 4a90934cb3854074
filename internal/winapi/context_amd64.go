// +build windows

package winapi

// context flags for GetThreadContext and SetThreadContext.
const (
	ContextControl uint32 = 0x00100001
	ContextFull    uint32 = 0x0010000B
)

const contextAlign = 16

// M128A is one 128 bit register slot.
type M128A struct {
	Low  uint64
	High int64
}

// Context is an equivalent representation of CONTEXT in the Windows
// API on x64.
type Context struct {
	P1Home               uint64
	P2Home               uint64
	P3Home               uint64
	P4Home               uint64
	P5Home               uint64
	P6Home               uint64
	ContextFlags         uint32
	MxCsr                uint32
	SegCs                uint16
	SegDs                uint16
	SegEs                uint16
	SegFs                uint16
	SegGs                uint16
	SegSs                uint16
	EFlags               uint32
	Dr0                  uint64
	Dr1                  uint64
	Dr2                  uint64
	Dr3                  uint64
	Dr6                  uint64
	Dr7                  uint64
	Rax                  uint64
	Rcx                  uint64
	Rdx                  uint64
	Rbx                  uint64
	Rsp                  uint64
	Rbp                  uint64
	Rsi                  uint64
	Rdi                  uint64
	R8                   uint64
	R9                   uint64
	R10                  uint64
	R11                  uint64
	R12                  uint64
	R13                  uint64
	R14                  uint64
	R15                  uint64
	Rip                  uint64
	FltSave              [512]byte
	VectorRegister       [26]M128A
	VectorControl        uint64
	DebugControl         uint64
	LastBranchToRip      uint64
	LastBranchFromRip    uint64
	LastExceptionToRip   uint64
	LastExceptionFromRip uint64
}

// IP is used to get the instruction pointer in the context.
func (ctx *Context) IP() uintptr {
	return uintptr(ctx.Rip)
}

// SetIP is used to set the instruction pointer in the context.
func (ctx *Context) SetIP(ip uintptr) {
	ctx.Rip = uint64(ip)
}

// SP is used to get the stack pointer in the context.
func (ctx *Context) SP() uintptr {
	return uintptr(ctx.Rsp)
}
