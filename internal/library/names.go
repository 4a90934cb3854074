// Package library implements the runtime side of the product, the
// code that runs inside a target process once the payload has loaded
// the runtime library. It also owns the naming contract both sides
// share, the injector derives the same filenames when it stages a
// target or hands one to its sibling.
package library

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/samuelgr/Hookshot-sub001/internal/pe"
)

// product is the filename stem of every binary this project ships.
const product = "Hookshot"

// Exports of the runtime library and of hook modules. The injector
// writes InitExport into the parameter block, the payload resolves and
// calls it, MainExport is what the runtime library calls on every hook
// module it loads.
const (
	InitExport = "HookshotInjectInitialize"
	MainExport = "HookshotMain"
)

// hookModuleTag marks a hook module filename between the executable
// stem and the architecture suffix.
const hookModuleTag = "HookModule"

// archSuffix is used to map a PE machine value to the architecture
// tag inside the product filenames.
func archSuffix(machine uint16) (string, error) {
	switch machine {
	case pe.MachineI386:
		return "32", nil
	case pe.MachineAMD64:
		return "64", nil
	}
	return "", errors.Errorf("no product filename for machine 0x%04X", machine)
}

// RuntimeLibraryName is used to build the bare filename of the runtime
// library for the given target architecture.
func RuntimeLibraryName(machine uint16) (string, error) {
	suffix, err := archSuffix(machine)
	if err != nil {
		return "", err
	}
	return product + "." + suffix + ".dll", nil
}

// RuntimeLibrary is used to build the path of the runtime library for
// the given target architecture, the library sits beside the injector.
func RuntimeLibrary(dir string, machine uint16) (string, error) {
	name, err := RuntimeLibraryName(machine)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// SiblingExecutable is used to build the path of the injector binary
// for the given architecture, it sits beside the running one.
func SiblingExecutable(dir string, machine uint16) (string, error) {
	suffix, err := archSuffix(machine)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, product+"."+suffix+".exe"), nil
}

// HookModuleName is used to build the conventional hook module
// filename for a target executable, "app.exe" on a 64 bit system
// looks for "app.HookModule.64.dll".
func HookModuleName(targetPath string, machine uint16) (string, error) {
	suffix, err := archSuffix(machine)
	if err != nil {
		return "", err
	}
	return stem(targetPath) + "." + hookModuleTag + "." + suffix + ".dll", nil
}

// LogFilename is used to build the per run log file name from the
// running binary, the target executable and a process id.
func LogFilename(ownPath, targetPath string, pid uint32) string {
	id := strconv.FormatUint(uint64(pid), 10)
	return stem(ownPath) + "_" + stem(targetPath) + "_" + id + ".log"
}

// stem is the file name without directory and extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
