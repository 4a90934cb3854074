// Package payload provides the position independent code fragment
// that the injector writes into a newly spawned, still suspended
// process, plus the layout of the parameter block that code expects.
//
// The fragment runs on the single live thread of the target, at entry
// point time. It clears the synchronisation word, loads the runtime
// library through the LoadLibraryW pointer from the parameter block,
// resolves the init export through the GetProcAddress pointer, calls
// it, publishes the returned status through the synchronisation word,
// then restores every saved register and parks on a two byte self
// jump until the injector redirects the thread back to the restored
// entry point. It performs no heap allocation and no syscalls beyond
// the two resolved pointers.
package payload

import (
	"encoding/binary"
	"math"
	"unicode/utf16"

	"github.com/pkg/errors"

	"github.com/samuelgr/Hookshot-sub001/internal/result"
)

// Values of the synchronisation word. The payload writes the negative
// ones itself, a positive value is whatever the init export returned.
// The init export must not return zero, zero still means "running"
// and the injector would wait for it until the deadline.
const (
	// StatusRunning is the value the payload clears the word to on entry.
	StatusRunning int32 = 0

	// StatusLoadFailed means LoadLibraryW returned no module handle.
	StatusLoadFailed int32 = -1

	// StatusFindFailed means GetProcAddress could not find the init export.
	StatusFindFailed int32 = -2
)

// Values of the command word. The payload spins on the word after it
// published its status and releases on any nonzero value.
const (
	// CommandHold is the staged value, the payload keeps spinning.
	CommandHold int32 = 0

	// CommandRelease lets the thread restore its registers and park.
	CommandRelease int32 = 1
)

// Capacities of the two string buffers inside the parameter block.
const (
	// NameCapacity bounds the init export name, NUL included.
	NameCapacity = 64

	// PathCapacity bounds the runtime library path in UTF-16 units,
	// NUL included.
	PathCapacity = 520
)

// Parameters is the content of the remote parameter block. The two
// function pointers are resolved by the injector in its own address
// space, system DLLs map at the same base in every process of one
// architecture.
type Parameters struct {
	LoadLibraryW   uint64
	GetProcAddress uint64
	LibraryPath    string
	InitName       string
}

// Template is one architecture's payload, the code prototype and the
// field offsets of the parameter block it was assembled against.
type Template struct {
	machine uint16
	ptrSize int

	// code is the prototype, Instantiate patches a copy.
	code []byte

	// patch is the offset of the parameter block address immediate
	// inside code, park the offset of the final self jump.
	patch int
	park  int

	// parameter block field offsets
	loadLibrary int
	getProc     int
	sync        int
	command     int
	name        int
	path        int
	size        int
}

// Machine is used to return the PE machine code this template targets.
func (tpl *Template) Machine() uint16 {
	return tpl.machine
}

// CodeSize is used to return the byte length of the payload code.
func (tpl *Template) CodeSize() int {
	return len(tpl.code)
}

// DataSize is used to return the byte length of the parameter block.
func (tpl *Template) DataSize() int {
	return tpl.size
}

// ParkOffset is used to return the offset of the self jump the thread
// spins on after it restored all registers. The injector only rewrites
// the instruction pointer while the thread sits exactly there.
func (tpl *Template) ParkOffset() int {
	return tpl.park
}

// SyncOffset is used to return the offset of the synchronisation word
// inside the parameter block.
func (tpl *Template) SyncOffset() int {
	return tpl.sync
}

// CommandOffset is used to return the offset of the command word
// inside the parameter block.
func (tpl *Template) CommandOffset() int {
	return tpl.command
}

// Validate is used to check the internal consistency of the template
// before any of its offsets are trusted, a violation means the payload
// image itself is malformed.
func (tpl *Template) Validate() error {
	if tpl.ptrSize != 4 && tpl.ptrSize != 8 {
		return errors.Errorf("invalid pointer size: %d", tpl.ptrSize)
	}
	if len(tpl.code) == 0 {
		return errors.New("empty payload code")
	}
	if tpl.park != len(tpl.code)-2 ||
		tpl.code[tpl.park] != 0xEB || tpl.code[tpl.park+1] != 0xFE {
		return errors.Errorf("park offset %d does not hold the final self jump", tpl.park)
	}
	if tpl.patch <= 0 || tpl.patch+tpl.ptrSize > len(tpl.code) {
		return errors.Errorf("patch offset %d is outside the payload code", tpl.patch)
	}
	switch {
	case tpl.loadLibrary < 0,
		tpl.getProc < tpl.loadLibrary+tpl.ptrSize,
		tpl.sync < tpl.getProc+tpl.ptrSize,
		tpl.command < tpl.sync+4,
		tpl.name < tpl.command+4,
		tpl.path < tpl.name+NameCapacity,
		tpl.size < tpl.path+2*PathCapacity:
		return errors.New("overlapping parameter block fields")
	}
	return nil
}

// ForMachine is used to select the payload template for a PE machine
// code read from the target's NT headers.
func ForMachine(machine uint16) (*Template, error) {
	switch machine {
	case template32.machine:
		return template32, nil
	case template64.machine:
		return template64, nil
	}
	return nil, errors.Errorf("no payload for machine 0x%04X", machine)
}

// Instantiate is used to build the code and data images for one
// injection. dataBase is the remote address the parameter block will
// occupy, it is patched into the code so the payload can find its
// block without any relocation of the code itself.
func (tpl *Template) Instantiate(dataBase uint64, params *Parameters) ([]byte, []byte, error) {
	name, err := encodeName(params.InitName)
	if err != nil {
		return nil, nil, err
	}
	path, err := encodePath(params.LibraryPath)
	if err != nil {
		return nil, nil, err
	}
	code := make([]byte, len(tpl.code))
	copy(code, tpl.code)
	data := make([]byte, tpl.size)
	switch tpl.ptrSize {
	case 8:
		binary.LittleEndian.PutUint64(code[tpl.patch:], dataBase)
		binary.LittleEndian.PutUint64(data[tpl.loadLibrary:], params.LoadLibraryW)
		binary.LittleEndian.PutUint64(data[tpl.getProc:], params.GetProcAddress)
	case 4:
		for _, addr := range [...]uint64{dataBase, params.LoadLibraryW, params.GetProcAddress} {
			if addr > math.MaxUint32 {
				return nil, nil, errors.Errorf("address 0x%X is outside the 32 bit address space", addr)
			}
		}
		binary.LittleEndian.PutUint32(code[tpl.patch:], uint32(dataBase))
		binary.LittleEndian.PutUint32(data[tpl.loadLibrary:], uint32(params.LoadLibraryW))
		binary.LittleEndian.PutUint32(data[tpl.getProc:], uint32(params.GetProcAddress))
	}
	copy(data[tpl.name:], name)
	for i, unit := range path {
		binary.LittleEndian.PutUint16(data[tpl.path+2*i:], unit)
	}
	// sync and command words stay zero, the payload clears the
	// synchronisation word again itself as its first action
	return code, data, nil
}

func encodeName(name string) ([]byte, error) {
	if name == "" {
		return nil, errors.New("init export name is empty")
	}
	if len(name)+1 > NameCapacity {
		return nil, errors.Errorf("init export name is too long: %d bytes", len(name))
	}
	for i := 0; i < len(name); i++ {
		if name[i] == 0 || name[i] > 0x7F {
			return nil, errors.New("init export name is not ascii")
		}
	}
	// trailing NUL included
	return append([]byte(name), 0), nil
}

func encodePath(path string) ([]uint16, error) {
	if path == "" {
		return nil, errors.New("runtime library path is empty")
	}
	for _, r := range path {
		if r == 0 {
			return nil, errors.New("runtime library path contains a NUL character")
		}
	}
	units := utf16.Encode([]rune(path))
	if len(units)+1 > PathCapacity {
		return nil, errors.Errorf("runtime library path is too long: %d characters", len(units))
	}
	// trailing NUL included
	return append(units, 0), nil
}

// DecodeStatus is used to translate a value read back from the
// synchronisation word into an inject result.
func DecodeStatus(status int32) result.Code {
	switch {
	case status > 0:
		return result.Success
	case status == StatusRunning:
		return result.ErrorRunFailedSync
	case status == StatusLoadFailed:
		return result.ErrorCannotLoadLibrary
	case status == StatusFindFailed:
		return result.ErrorMalformedLibrary
	default:
		return result.ErrorLibraryInitFailed
	}
}
