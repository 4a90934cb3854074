package payload

import (
	"github.com/samuelgr/Hookshot-sub001/internal/pe"
)

// Parameter block layout on x86-64. Scalar fields come first so every
// template instruction reaches its field with a disp8 form.
//
//	0x00  LoadLibraryW pointer
//	0x08  GetProcAddress pointer
//	0x10  synchronisation word (int32)
//	0x14  command word (int32)
//	0x18  init export name, NUL terminated ANSI
//	0x58  runtime library path, NUL terminated UTF-16LE
//
// The code keeps the parameter block address in RBX and the saved
// stack pointer in RBP, both callee saved. The stack is aligned to 16
// and 32 bytes of shadow space stay reserved across all three calls.
// Every pushed register is restored before the park, so redirecting
// the parked thread to the restored entry point hands over the exact
// register state the loader produced, RCX still carries the PEB
// pointer the entry point receives on first execution.
var template64 = &Template{
	machine: pe.MachineAMD64,
	ptrSize: 8,
	code: []byte{
		0x50,       //                   push rax
		0x51,       //                   push rcx
		0x52,       //                   push rdx
		0x53,       //                   push rbx
		0x55,       //                   push rbp
		0x56,       //                   push rsi
		0x57,       //                   push rdi
		0x41, 0x50, //                   push r8
		0x41, 0x51, //                   push r9
		0x41, 0x52, //                   push r10
		0x41, 0x53, //                   push r11
		0x48, 0xBB, //                   mov rbx, <parameter block>
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x31, 0xC0, //                   xor eax, eax
		0x89, 0x43, 0x10, //             mov [rbx+0x10], eax      sync <- running
		0x48, 0x89, 0xE5, //             mov rbp, rsp
		0x48, 0x83, 0xE4, 0xF0, //       and rsp, -16
		0x48, 0x83, 0xEC, 0x20, //       sub rsp, 0x20            shadow space
		0x48, 0x8D, 0x4B, 0x58, //       lea rcx, [rbx+0x58]      path
		0xFF, 0x53, 0x00, //             call [rbx+0x00]          LoadLibraryW
		0x48, 0x85, 0xC0, //             test rax, rax
		0x74, 0x13, //                   jz fail_load
		0x48, 0x89, 0xC1, //             mov rcx, rax
		0x48, 0x8D, 0x53, 0x18, //       lea rdx, [rbx+0x18]      init name
		0xFF, 0x53, 0x08, //             call [rbx+0x08]          GetProcAddress
		0x48, 0x85, 0xC0, //             test rax, rax
		0x74, 0x0B, //                   jz fail_find
		0xFF, 0xD0, //                   call rax                 init export
		0xEB, 0x0C, //                   jmp store
		0xB8, 0xFF, 0xFF, 0xFF, 0xFF, // fail_load: mov eax, -1
		0xEB, 0x05, //                   jmp store
		0xB8, 0xFE, 0xFF, 0xFF, 0xFF, // fail_find: mov eax, -2
		0x89, 0x43, 0x10, //             store: mov [rbx+0x10], eax
		0x48, 0x89, 0xEC, //             mov rsp, rbp
		0x8B, 0x43, 0x14, //             spin: mov eax, [rbx+0x14]
		0x85, 0xC0, //                   test eax, eax
		0x74, 0xF9, //                   jz spin
		0x41, 0x5B, //                   pop r11
		0x41, 0x5A, //                   pop r10
		0x41, 0x59, //                   pop r9
		0x41, 0x58, //                   pop r8
		0x5F,       //                   pop rdi
		0x5E,       //                   pop rsi
		0x5D,       //                   pop rbp
		0x5B,       //                   pop rbx
		0x5A,       //                   pop rdx
		0x59,       //                   pop rcx
		0x58,       //                   pop rax
		0xEB, 0xFE, //                   park: jmp park
	},
	patch:       17,
	park:        112,
	loadLibrary: 0x00,
	getProc:     0x08,
	sync:        0x10,
	command:     0x14,
	name:        0x18,
	path:        0x58,
	size:        0x58 + 2*PathCapacity,
}
