// Package pe implements a minimal reader for portable executable
// images that works over any process address space.
package pe

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/samuelgr/Hookshot-sub001/internal/pool"
)

// image magic numbers.
const (
	DOSMagic = 0x5A4D     // "MZ"
	NTMagic  = 0x00004550 // "PE\0\0"

	OptionalMagic32 = 0x10B
	OptionalMagic64 = 0x20B
)

// machine types in the file header.
const (
	MachineI386  = 0x014C
	MachineAMD64 = 0x8664
)

// DirectoryEntryExport is the data directory index of the export table.
const DirectoryEntryExport = 0

// Memory reads the virtual address space that contains an image. The
// read must fill data completely or return an error.
type Memory interface {
	ReadMemory(addr uintptr, data []byte) error
}

// DOSHeader is the legacy header at the start of every image, only
// the magic and the offset of the NT headers matter.
type DOSHeader struct {
	Magic    uint16
	_        [58]byte
	NTOffset uint32
}

// FileHeader follows the NT signature.
type FileHeader struct {
	Machine              uint16
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      uint16
}

// DataDirectory locates one well known table inside the image.
type DataDirectory struct {
	VirtualAddress uint32
	Size           uint32
}

// OptionalHeader32 is the optional header of a 32 bit image.
type OptionalHeader32 struct {
	Magic                       uint16
	MajorLinkerVersion          uint8
	MinorLinkerVersion          uint8
	SizeOfCode                  uint32
	SizeOfInitializedData       uint32
	SizeOfUninitializedData     uint32
	AddressOfEntryPoint         uint32
	BaseOfCode                  uint32
	BaseOfData                  uint32
	ImageBase                   uint32
	SectionAlignment            uint32
	FileAlignment               uint32
	MajorOperatingSystemVersion uint16
	MinorOperatingSystemVersion uint16
	MajorImageVersion           uint16
	MinorImageVersion           uint16
	MajorSubsystemVersion       uint16
	MinorSubsystemVersion       uint16
	Win32VersionValue           uint32
	SizeOfImage                 uint32
	SizeOfHeaders               uint32
	CheckSum                    uint32
	Subsystem                   uint16
	DllCharacteristics          uint16
	SizeOfStackReserve          uint32
	SizeOfStackCommit           uint32
	SizeOfHeapReserve           uint32
	SizeOfHeapCommit            uint32
	LoaderFlags                 uint32
	NumberOfRvaAndSizes         uint32
	DataDirectory               [16]DataDirectory
}

// OptionalHeader64 is the optional header of a 64 bit image.
type OptionalHeader64 struct {
	Magic                       uint16
	MajorLinkerVersion          uint8
	MinorLinkerVersion          uint8
	SizeOfCode                  uint32
	SizeOfInitializedData       uint32
	SizeOfUninitializedData     uint32
	AddressOfEntryPoint         uint32
	BaseOfCode                  uint32
	ImageBase                   uint64
	SectionAlignment            uint32
	FileAlignment               uint32
	MajorOperatingSystemVersion uint16
	MinorOperatingSystemVersion uint16
	MajorImageVersion           uint16
	MinorImageVersion           uint16
	MajorSubsystemVersion       uint16
	MinorSubsystemVersion       uint16
	Win32VersionValue           uint32
	SizeOfImage                 uint32
	SizeOfHeaders               uint32
	CheckSum                    uint32
	Subsystem                   uint16
	DllCharacteristics          uint16
	SizeOfStackReserve          uint64
	SizeOfStackCommit           uint64
	SizeOfHeapReserve           uint64
	SizeOfHeapCommit            uint64
	LoaderFlags                 uint32
	NumberOfRvaAndSizes         uint32
	DataDirectory               [16]DataDirectory
}

// NTHeaders bundles the signature, the file header and the optional
// header, exactly one optional header is set.
type NTHeaders struct {
	Signature  uint32
	FileHeader FileHeader
	Optional32 *OptionalHeader32
	Optional64 *OptionalHeader64
}

// Machine is used to get the machine type of the image.
func (nt *NTHeaders) Machine() uint16 {
	return nt.FileHeader.Machine
}

// EntryPoint is used to get the RVA of the image entry point.
func (nt *NTHeaders) EntryPoint() uint32 {
	if nt.Optional64 != nil {
		return nt.Optional64.AddressOfEntryPoint
	}
	return nt.Optional32.AddressOfEntryPoint
}

// DataDirectory is used to get one data directory entry, the zero
// value is returned when the image does not carry the entry.
func (nt *NTHeaders) DataDirectory(index int) DataDirectory {
	if index < 0 || index > 15 {
		return DataDirectory{}
	}
	if nt.Optional64 != nil {
		if uint32(index) >= nt.Optional64.NumberOfRvaAndSizes {
			return DataDirectory{}
		}
		return nt.Optional64.DataDirectory[index]
	}
	if uint32(index) >= nt.Optional32.NumberOfRvaAndSizes {
		return DataDirectory{}
	}
	return nt.Optional32.DataDirectory[index]
}

// ExportDirectory describes the export table of an image.
type ExportDirectory struct {
	Characteristics       uint32
	TimeDateStamp         uint32
	MajorVersion          uint16
	MinorVersion          uint16
	Name                  uint32
	Base                  uint32
	NumberOfFunctions     uint32
	NumberOfNames         uint32
	AddressOfFunctions    uint32
	AddressOfNames        uint32
	AddressOfNameOrdinals uint32
}

func read(mem Memory, addr uintptr, v interface{}) error {
	size := binary.Size(v)
	buf := pool.Get()
	if size <= len(buf) {
		defer pool.Put(buf)
		buf = buf[:size]
	} else {
		pool.Put(buf)
		buf = make([]byte, size)
	}
	err := mem.ReadMemory(addr, buf)
	if err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(buf), binary.LittleEndian, v)
}

// ReadDOSHeader is used to read and check the DOS header of the image
// that is loaded at base.
func ReadDOSHeader(mem Memory, base uintptr) (*DOSHeader, error) {
	dos := DOSHeader{}
	err := read(mem, base, &dos)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read dos header")
	}
	if dos.Magic != DOSMagic {
		return nil, errors.Errorf("invalid dos header magic: 0x%04X", dos.Magic)
	}
	return &dos, nil
}

// ReadNTHeaders is used to read and check the NT headers located by a
// previously read DOS header.
func ReadNTHeaders(mem Memory, base uintptr, dos *DOSHeader) (*NTHeaders, error) {
	addr := base + uintptr(dos.NTOffset)
	nt := NTHeaders{}
	err := read(mem, addr, &nt.Signature)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read nt signature")
	}
	if nt.Signature != NTMagic {
		return nil, errors.Errorf("invalid nt signature: 0x%08X", nt.Signature)
	}
	err = read(mem, addr+4, &nt.FileHeader)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read file header")
	}
	optAddr := addr + 4 + uintptr(binary.Size(&nt.FileHeader))
	var magic uint16
	err = read(mem, optAddr, &magic)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read optional header magic")
	}
	switch magic {
	case OptionalMagic32:
		opt := OptionalHeader32{}
		err = read(mem, optAddr, &opt)
		if err != nil {
			return nil, errors.WithMessage(err, "failed to read optional header")
		}
		nt.Optional32 = &opt
	case OptionalMagic64:
		opt := OptionalHeader64{}
		err = read(mem, optAddr, &opt)
		if err != nil {
			return nil, errors.WithMessage(err, "failed to read optional header")
		}
		nt.Optional64 = &opt
	default:
		return nil, errors.Errorf("invalid optional header magic: 0x%04X", magic)
	}
	return &nt, nil
}

// Export describes one resolved export table entry.
type Export struct {
	Name string
	RVA  uint32

	// Forwarder carries the "Module.Function" or "Module.#Ordinal"
	// target when the entry forwards to another image.
	Forwarder string
}

// Image provides export resolution over an already loaded image.
type Image struct {
	mem  Memory
	base uintptr
	nt   *NTHeaders
}

// NewImage is used to parse the headers of the image loaded at base.
func NewImage(mem Memory, base uintptr) (*Image, error) {
	dos, err := ReadDOSHeader(mem, base)
	if err != nil {
		return nil, err
	}
	nt, err := ReadNTHeaders(mem, base, dos)
	if err != nil {
		return nil, err
	}
	img := Image{
		mem:  mem,
		base: base,
		nt:   nt,
	}
	return &img, nil
}

// Base is used to get the load address of the image.
func (img *Image) Base() uintptr {
	return img.base
}

// Machine is used to get the machine type of the image.
func (img *Image) Machine() uint16 {
	return img.nt.Machine()
}

// EntryPoint is used to get the absolute address of the image entry
// point, zero means the image has no entry point.
func (img *Image) EntryPoint() uintptr {
	rva := img.nt.EntryPoint()
	if rva == 0 {
		return 0
	}
	return img.base + uintptr(rva)
}

// readString reads a NUL terminated string at the given RVA, byte by
// byte so the read never crosses the end of a mapped region, the
// length is capped to reject corrupt images.
func (img *Image) readString(rva uint32) (string, error) {
	const maxLen = 4096
	str := make([]byte, 0, 32)
	buf := make([]byte, 1)
	for len(str) < maxLen {
		err := img.mem.ReadMemory(img.base+uintptr(rva)+uintptr(len(str)), buf)
		if err != nil {
			return "", err
		}
		if buf[0] == 0 {
			return string(str), nil
		}
		str = append(str, buf[0])
	}
	return "", errors.New("unterminated string in image")
}

func (img *Image) exportDirectory() (*ExportDirectory, *DataDirectory, error) {
	dir := img.nt.DataDirectory(DirectoryEntryExport)
	if dir.VirtualAddress == 0 || dir.Size == 0 {
		return nil, nil, errors.New("image has no export table")
	}
	export := ExportDirectory{}
	err := read(img.mem, img.base+uintptr(dir.VirtualAddress), &export)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "failed to read export directory")
	}
	return &export, &dir, nil
}

func (img *Image) makeExport(export *ExportDirectory, dir *DataDirectory, name string, idx uint32) (*Export, error) {
	if idx >= export.NumberOfFunctions {
		return nil, errors.Errorf("export ordinal out of range: %d", idx)
	}
	var rva uint32
	err := read(img.mem, img.base+uintptr(export.AddressOfFunctions)+uintptr(idx)*4, &rva)
	if err != nil {
		return nil, err
	}
	result := Export{
		Name: name,
		RVA:  rva,
	}
	// an address inside the export table is not code, it points to a
	// string that names the real export in another image
	if rva >= dir.VirtualAddress && rva < dir.VirtualAddress+dir.Size {
		forwarder, err := img.readString(rva)
		if err != nil {
			return nil, err
		}
		result.Forwarder = forwarder
	}
	return &result, nil
}

// ExportByName is used to look up one export table entry by name. The
// name table is sorted so the search is binary, like the native
// loader does it.
func (img *Image) ExportByName(name string) (*Export, error) {
	export, dir, err := img.exportDirectory()
	if err != nil {
		return nil, err
	}
	if export.NumberOfNames == 0 {
		return nil, errors.Errorf("export not found: %s", name)
	}
	nameRVAs := make([]uint32, export.NumberOfNames)
	err = read(img.mem, img.base+uintptr(export.AddressOfNames), &nameRVAs)
	if err != nil {
		return nil, err
	}
	lo, hi := 0, len(nameRVAs)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		candidate, err := img.readString(nameRVAs[mid])
		if err != nil {
			return nil, err
		}
		switch {
		case candidate == name:
			var ordinal uint16
			addr := img.base + uintptr(export.AddressOfNameOrdinals) + uintptr(mid)*2
			err = read(img.mem, addr, &ordinal)
			if err != nil {
				return nil, err
			}
			return img.makeExport(export, dir, name, uint32(ordinal))
		case candidate < name:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return nil, errors.Errorf("export not found: %s", name)
}

// ExportByOrdinal is used to look up one export table entry by its
// biased ordinal.
func (img *Image) ExportByOrdinal(ordinal uint32) (*Export, error) {
	export, dir, err := img.exportDirectory()
	if err != nil {
		return nil, err
	}
	if ordinal < export.Base {
		return nil, errors.Errorf("export ordinal out of range: %d", ordinal)
	}
	return img.makeExport(export, dir, "", ordinal-export.Base)
}

// Bytes implements Memory over an in memory copy of an image, it is
// mostly useful for tests.
type Bytes struct {
	base uintptr
	data []byte
}

// NewBytes is used to create a Memory over data as if it were loaded
// at base.
func NewBytes(base uintptr, data []byte) *Bytes {
	return &Bytes{base: base, data: data}
}

// ReadMemory is used to implement the Memory interface.
func (b *Bytes) ReadMemory(addr uintptr, data []byte) error {
	if addr < b.base {
		return errors.Errorf("read outside image: 0x%X", addr)
	}
	offset := int(addr - b.base)
	if offset+len(data) > len(b.data) {
		return errors.Errorf("read outside image: 0x%X", addr)
	}
	copy(data, b.data[offset:])
	return nil
}
