// +build windows

package winapi

// context flags for GetThreadContext and SetThreadContext.
const (
	ContextControl uint32 = 0x00010001
	ContextFull    uint32 = 0x00010007
)

const contextAlign = 4

// FloatingSaveArea is the x87 state inside a 32 bit context.
type FloatingSaveArea struct {
	ControlWord   uint32
	StatusWord    uint32
	TagWord       uint32
	ErrorOffset   uint32
	ErrorSelector uint32
	DataOffset    uint32
	DataSelector  uint32
	RegisterArea  [80]byte
	Cr0NpxState   uint32
}

// Context is an equivalent representation of CONTEXT in the Windows
// API on x86.
type Context struct {
	ContextFlags      uint32
	Dr0               uint32
	Dr1               uint32
	Dr2               uint32
	Dr3               uint32
	Dr6               uint32
	Dr7               uint32
	FloatSave         FloatingSaveArea
	SegGs             uint32
	SegFs             uint32
	SegEs             uint32
	SegDs             uint32
	Edi               uint32
	Esi               uint32
	Ebx               uint32
	Edx               uint32
	Ecx               uint32
	Eax               uint32
	Ebp               uint32
	Eip               uint32
	SegCs             uint32
	EFlags            uint32
	Esp               uint32
	SegSs             uint32
	ExtendedRegisters [512]byte
}

// IP is used to get the instruction pointer in the context.
func (ctx *Context) IP() uintptr {
	return uintptr(ctx.Eip)
}

// SetIP is used to set the instruction pointer in the context.
func (ctx *Context) SetIP(ip uintptr) {
	ctx.Eip = uint32(ip)
}

// SP is used to get the stack pointer in the context.
func (ctx *Context) SP() uintptr {
	return uintptr(ctx.Esp)
}
