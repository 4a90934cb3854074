package payload

import (
	"github.com/samuelgr/Hookshot-sub001/internal/pe"
)

// Parameter block layout on x86. Scalar fields come first so every
// template instruction reaches its field with a disp8 form.
//
//	0x00  LoadLibraryW pointer
//	0x04  GetProcAddress pointer
//	0x08  synchronisation word (int32)
//	0x0C  command word (int32)
//	0x10  init export name, NUL terminated ANSI
//	0x50  runtime library path, NUL terminated UTF-16LE
//
// The code keeps the parameter block address in EBX, callee saved
// under stdcall, and saves every register with PUSHAD on entry so
// that POPAD before the park leaves the thread exactly as the entry
// point expects it. The spin reuses EAX, which POPAD restores, and
// the park clobbers nothing at all.
var template32 = &Template{
	machine: pe.MachineI386,
	ptrSize: 4,
	code: []byte{
		0x60,                         // pushad
		0xBB, 0x00, 0x00, 0x00, 0x00, // mov ebx, <parameter block>
		0x31, 0xC0, //                   xor eax, eax
		0x89, 0x43, 0x08, //             mov [ebx+0x08], eax      sync <- running
		0x8D, 0x43, 0x50, //             lea eax, [ebx+0x50]      path
		0x50,             //             push eax
		0xFF, 0x53, 0x00, //             call [ebx+0x00]          LoadLibraryW
		0x85, 0xC0, //                   test eax, eax
		0x74, 0x10, //                   jz fail_load
		0x8D, 0x4B, 0x10, //             lea ecx, [ebx+0x10]      init name
		0x51,             //             push ecx
		0x50,             //             push eax
		0xFF, 0x53, 0x04, //             call [ebx+0x04]          GetProcAddress
		0x85, 0xC0, //                   test eax, eax
		0x74, 0x0B, //                   jz fail_find
		0xFF, 0xD0, //                   call eax                 init export
		0xEB, 0x0C, //                   jmp store
		0xB8, 0xFF, 0xFF, 0xFF, 0xFF, // fail_load: mov eax, -1
		0xEB, 0x05, //                   jmp store
		0xB8, 0xFE, 0xFF, 0xFF, 0xFF, // fail_find: mov eax, -2
		0x89, 0x43, 0x08, //             store: mov [ebx+0x08], eax
		0x8B, 0x43, 0x0C, //             spin: mov eax, [ebx+0x0C]
		0x85, 0xC0, //                   test eax, eax
		0x74, 0xF9, //                   jz spin
		0x61,       //                   popad
		0xEB, 0xFE, //                   park: jmp park
	},
	patch:       2,
	park:        61,
	loadLibrary: 0x00,
	getProc:     0x04,
	sync:        0x08,
	command:     0x0C,
	name:        0x10,
	path:        0x50,
	size:        0x50 + 2*PathCapacity,
}
