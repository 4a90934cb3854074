// +build windows

package inject

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/samuelgr/Hookshot-sub001/internal/pe"
	"github.com/samuelgr/Hookshot-sub001/internal/winapi"
)

// localMemory reads the address space of this process so the pe
// reader can walk the export tables of loaded system modules.
type localMemory struct{}

func (localMemory) ReadMemory(addr uintptr, data []byte) error {
	copy(data, winapi.MemorySlice(addr, len(data)))
	return nil
}

// locateLoaderFunctions is used to resolve the addresses of
// LoadLibraryW and GetProcAddress by walking the export table of the
// kernel32 module mapped into this process. System DLLs map at the
// same base in every process of one architecture, so the resolved
// addresses are valid inside the target too.
func locateLoaderFunctions() (uintptr, uintptr, error) {
	base, err := winapi.GetModuleHandle("kernel32.dll")
	if err != nil {
		return 0, 0, err
	}
	img, err := pe.NewImage(localMemory{}, uintptr(base))
	if err != nil {
		return 0, 0, err
	}
	loadLibrary, err := resolveExport(img, "LoadLibraryW")
	if err != nil {
		return 0, 0, err
	}
	getProc, err := resolveExport(img, "GetProcAddress")
	if err != nil {
		return 0, 0, err
	}
	return loadLibrary, getProc, nil
}

// resolveExport is used to look up one export and follow forwarder
// chains into the modules the loader has already mapped.
func resolveExport(img *pe.Image, name string) (uintptr, error) {
	// chains in system DLLs are short, kernel32 forwards into
	// kernelbase or ntdll at most once
	const maxForwards = 8
	ordinal := uint32(0)
	byOrdinal := false
	for i := 0; i < maxForwards; i++ {
		var export *pe.Export
		var err error
		if byOrdinal {
			export, err = img.ExportByOrdinal(ordinal)
		} else {
			export, err = img.ExportByName(name)
		}
		if err != nil {
			return 0, err
		}
		if export.Forwarder == "" {
			return img.Base() + uintptr(export.RVA), nil
		}
		module, target, err := splitForwarder(export.Forwarder)
		if err != nil {
			return 0, err
		}
		handle, err := winapi.GetModuleHandle(module)
		if err != nil {
			return 0, err
		}
		img, err = pe.NewImage(localMemory{}, uintptr(handle))
		if err != nil {
			return 0, err
		}
		if strings.HasPrefix(target, "#") {
			n, err := strconv.ParseUint(target[1:], 10, 32)
			if err != nil {
				return 0, errors.Errorf("invalid forwarder ordinal %q", target)
			}
			ordinal = uint32(n)
			byOrdinal = true
		} else {
			name = target
			byOrdinal = false
		}
	}
	return 0, errors.Errorf("forwarder chain too long for %q", name)
}

// splitForwarder is used to split "Module.Function" or
// "Module.#Ordinal", the module part may itself contain dots so the
// split is at the last one.
func splitForwarder(forwarder string) (string, string, error) {
	idx := strings.LastIndex(forwarder, ".")
	if idx <= 0 || idx == len(forwarder)-1 {
		return "", "", errors.Errorf("malformed forwarder %q", forwarder)
	}
	return forwarder[:idx] + ".dll", forwarder[idx+1:], nil
}
