// +build amd64

// The crafted 64 bit image lives at a base that does not fit a 32 bit
// uintptr, so this file only compiles where uintptr is 64 bits wide.

package pe

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func put(img []byte, offset int, v interface{}) {
	buf := bytes.NewBuffer(nil)
	err := binary.Write(buf, binary.LittleEndian, v)
	if err != nil {
		panic(err)
	}
	copy(img[offset:], buf.Bytes())
}

const testBase64 = uintptr(0x140000000)

// buildImage64 crafts a 64 bit image with three exports, the names
// are stored sorted like a real export table:
//
//	"Forwarded"      -> forwards to NTDLL.RtlSomething
//	"GetProcAddress" -> RVA 0x2000
//	"LoadLibraryW"   -> RVA 0x2010
func buildImage64() []byte {
	img := make([]byte, 0x3000)
	put(img, 0x00, &DOSHeader{Magic: DOSMagic, NTOffset: 0x80})
	put(img, 0x80, uint32(NTMagic))
	put(img, 0x84, &FileHeader{
		Machine:              MachineAMD64,
		SizeOfOptionalHeader: 240,
	})
	opt := OptionalHeader64{
		Magic:               OptionalMagic64,
		AddressOfEntryPoint: 0x2500,
		ImageBase:           uint64(testBase64),
		NumberOfRvaAndSizes: 16,
	}
	opt.DataDirectory[DirectoryEntryExport] = DataDirectory{
		VirtualAddress: 0x1000,
		Size:           0x200,
	}
	put(img, 0x98, &opt)
	put(img, 0x1000, &ExportDirectory{
		Base:                  1,
		NumberOfFunctions:     3,
		NumberOfNames:         3,
		AddressOfFunctions:    0x1050,
		AddressOfNames:        0x1070,
		AddressOfNameOrdinals: 0x1080,
	})
	put(img, 0x1050, [3]uint32{0x2000, 0x2010, 0x1100})
	put(img, 0x1070, [3]uint32{0x10A0, 0x10C0, 0x10E0})
	put(img, 0x1080, [3]uint16{2, 0, 1})
	copy(img[0x10A0:], "Forwarded\x00")
	copy(img[0x10C0:], "GetProcAddress\x00")
	copy(img[0x10E0:], "LoadLibraryW\x00")
	copy(img[0x1100:], "NTDLL.RtlSomething\x00")
	return img
}

func buildImage32() []byte {
	img := make([]byte, 0x1000)
	put(img, 0x00, &DOSHeader{Magic: DOSMagic, NTOffset: 0x40})
	put(img, 0x40, uint32(NTMagic))
	put(img, 0x44, &FileHeader{
		Machine:              MachineI386,
		SizeOfOptionalHeader: 224,
	})
	put(img, 0x58, &OptionalHeader32{
		Magic:               OptionalMagic32,
		ImageBase:           0x00400000,
		NumberOfRvaAndSizes: 16,
	})
	return img
}

func TestReadDOSHeader(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		mem := NewBytes(testBase64, buildImage64())
		dos, err := ReadDOSHeader(mem, testBase64)
		require.NoError(t, err)
		require.Equal(t, uint32(0x80), dos.NTOffset)
	})

	t.Run("invalid magic", func(t *testing.T) {
		img := buildImage64()
		img[0] = 0x00
		mem := NewBytes(testBase64, img)
		dos, err := ReadDOSHeader(mem, testBase64)
		require.Error(t, err)
		require.Nil(t, dos)
	})

	t.Run("unreadable", func(t *testing.T) {
		mem := NewBytes(testBase64, nil)
		dos, err := ReadDOSHeader(mem, testBase64)
		require.Error(t, err)
		require.Nil(t, dos)
	})
}

func TestReadNTHeaders(t *testing.T) {
	t.Run("64 bit", func(t *testing.T) {
		mem := NewBytes(testBase64, buildImage64())
		dos, err := ReadDOSHeader(mem, testBase64)
		require.NoError(t, err)
		nt, err := ReadNTHeaders(mem, testBase64, dos)
		require.NoError(t, err)
		require.Equal(t, uint16(MachineAMD64), nt.Machine())
		require.NotNil(t, nt.Optional64)
		require.Nil(t, nt.Optional32)
		require.Equal(t, uint32(0x2500), nt.EntryPoint())
	})

	t.Run("32 bit", func(t *testing.T) {
		mem := NewBytes(0x00400000, buildImage32())
		dos, err := ReadDOSHeader(mem, 0x00400000)
		require.NoError(t, err)
		nt, err := ReadNTHeaders(mem, 0x00400000, dos)
		require.NoError(t, err)
		require.Equal(t, uint16(MachineI386), nt.Machine())
		require.NotNil(t, nt.Optional32)
		require.Nil(t, nt.Optional64)
		require.Zero(t, nt.EntryPoint())
	})

	t.Run("invalid signature", func(t *testing.T) {
		img := buildImage64()
		img[0x80] = 0x00
		mem := NewBytes(testBase64, img)
		dos, err := ReadDOSHeader(mem, testBase64)
		require.NoError(t, err)
		nt, err := ReadNTHeaders(mem, testBase64, dos)
		require.Error(t, err)
		require.Nil(t, nt)
	})

	t.Run("invalid optional magic", func(t *testing.T) {
		img := buildImage64()
		put(img, 0x98, uint16(0x1234))
		mem := NewBytes(testBase64, img)
		dos, err := ReadDOSHeader(mem, testBase64)
		require.NoError(t, err)
		nt, err := ReadNTHeaders(mem, testBase64, dos)
		require.Error(t, err)
		require.Nil(t, nt)
	})
}

func TestNTHeadersDataDirectory(t *testing.T) {
	mem := NewBytes(testBase64, buildImage64())
	img, err := NewImage(mem, testBase64)
	require.NoError(t, err)
	dir := img.nt.DataDirectory(DirectoryEntryExport)
	require.Equal(t, uint32(0x1000), dir.VirtualAddress)
	require.Zero(t, img.nt.DataDirectory(-1))
	require.Zero(t, img.nt.DataDirectory(16))
}

func TestImageExportByName(t *testing.T) {
	mem := NewBytes(testBase64, buildImage64())
	img, err := NewImage(mem, testBase64)
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		export, err := img.ExportByName("GetProcAddress")
		require.NoError(t, err)
		require.Equal(t, uint32(0x2000), export.RVA)
		require.Empty(t, export.Forwarder)

		export, err = img.ExportByName("LoadLibraryW")
		require.NoError(t, err)
		require.Equal(t, uint32(0x2010), export.RVA)
		require.Empty(t, export.Forwarder)
	})

	t.Run("forwarded", func(t *testing.T) {
		export, err := img.ExportByName("Forwarded")
		require.NoError(t, err)
		require.Equal(t, "NTDLL.RtlSomething", export.Forwarder)
	})

	t.Run("not found", func(t *testing.T) {
		for _, name := range []string{
			"AAA", "GetProcAddresss", "LoadLibrary", "ZZZ",
		} {
			export, err := img.ExportByName(name)
			require.Error(t, err)
			require.Nil(t, export)
		}
	})

	t.Run("no export table", func(t *testing.T) {
		mem := NewBytes(0x00400000, buildImage32())
		img, err := NewImage(mem, 0x00400000)
		require.NoError(t, err)
		export, err := img.ExportByName("GetProcAddress")
		require.Error(t, err)
		require.Nil(t, export)
	})
}

func TestImageExportByOrdinal(t *testing.T) {
	mem := NewBytes(testBase64, buildImage64())
	img, err := NewImage(mem, testBase64)
	require.NoError(t, err)

	export, err := img.ExportByOrdinal(2)
	require.NoError(t, err)
	require.Equal(t, uint32(0x2010), export.RVA)

	t.Run("below base", func(t *testing.T) {
		export, err := img.ExportByOrdinal(0)
		require.Error(t, err)
		require.Nil(t, export)
	})

	t.Run("above range", func(t *testing.T) {
		export, err := img.ExportByOrdinal(100)
		require.Error(t, err)
		require.Nil(t, export)
	})
}

func TestImageEntryPoint(t *testing.T) {
	mem := NewBytes(testBase64, buildImage64())
	img, err := NewImage(mem, testBase64)
	require.NoError(t, err)
	require.Equal(t, testBase64, img.Base())
	require.Equal(t, testBase64+0x2500, img.EntryPoint())
}

func TestBytesReadMemory(t *testing.T) {
	mem := NewBytes(0x1000, []byte{1, 2, 3, 4})
	buf := make([]byte, 2)

	require.NoError(t, mem.ReadMemory(0x1001, buf))
	require.Equal(t, []byte{2, 3}, buf)

	require.Error(t, mem.ReadMemory(0x0FFF, buf))
	require.Error(t, mem.ReadMemory(0x1003, buf))
}
