// +build windows

package library

import (
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"unsafe"

	"github.com/samuelgr/Hookshot-sub001/internal/config"
	"github.com/samuelgr/Hookshot-sub001/internal/hook"
	"github.com/samuelgr/Hookshot-sub001/internal/logger"
	"github.com/samuelgr/Hookshot-sub001/internal/pe"
	"github.com/samuelgr/Hookshot-sub001/internal/system"
	"github.com/samuelgr/Hookshot-sub001/internal/winapi"
)

// src is the logger source of the runtime library.
const src = "library"

// StatusInitFailed is what Initialize reports when the runtime can not
// set itself up. Any positive value means the library is in place, the
// sign carries the verdict because the synchronisation word reserves
// zero for "still running".
const StatusInitFailed int32 = -3

var (
	initOnce   sync.Once
	initStatus int32
)

// Initialize is the body of the init export the payload calls before
// the target executes its first instruction. It loads the hook modules
// and auxiliary libraries the configuration selects for this target
// and reports how it went.
func Initialize() int32 {
	initOnce.Do(func() {
		initStatus = initialize()
	})
	return initStatus
}

func initialize() int32 {
	ownPath, err := selfPath()
	if err != nil {
		return StatusInitFailed
	}
	dir := filepath.Dir(ownPath)
	targetPath, err := system.ExecutablePath()
	if err != nil {
		return StatusInitFailed
	}
	settings, cfgErr := config.Load(filepath.Join(dir, config.Name), filepath.Base(targetPath))
	if cfgErr != nil {
		settings = new(config.Settings)
	}
	lg := newLogger(settings, ownPath, targetPath)
	logger.HijackLogWriter(logger.Error, src, lg, 0)
	if cfgErr != nil {
		lg.Printf(logger.Warning, src, "configuration file is broken: %s", cfgErr)
	}
	modules, err := HookModules(settings, targetPath, dir, pe.CurrentMachine)
	if err != nil {
		lg.Printf(logger.Error, src, "failed to resolve hook modules: %s", err)
		return StatusInitFailed
	}
	loaded := 0
	for i := 0; i < len(modules); i++ {
		err = loadHookModule(modules[i])
		if err != nil {
			lg.Printf(logger.Warning, src, "skip hook module: %s", err)
			continue
		}
		lg.Printf(logger.Info, src, "loaded hook module %q", modules[i])
		loaded++
	}
	libraries := InjectLibraries(settings, targetPath)
	for i := 0; i < len(libraries); i++ {
		_, err = winapi.LoadLibrary(libraries[i])
		if err != nil {
			lg.Printf(logger.Warning, src, "skip inject library: %s", err)
			continue
		}
		lg.Printf(logger.Info, src, "loaded inject library %q", libraries[i])
		loaded++
	}
	// zero would read as "still running", report at least one
	return int32(loaded) + 1
}

// selfPath locates the runtime library on disk through its module
// handle, inside the target process os.Executable names the target.
func selfPath() (string, error) {
	name, err := RuntimeLibraryName(pe.CurrentMachine)
	if err != nil {
		return "", err
	}
	module, err := winapi.GetModuleHandle(name)
	if err != nil {
		return "", err
	}
	return winapi.GetModuleFilename(module)
}

// newLogger builds the runtime logger, a per run file on the desktop
// when the configuration asks for output.
func newLogger(settings *config.Settings, ownPath, targetPath string) logger.Logger {
	lv := logger.FromInteger(int(settings.LogLevel))
	if lv == logger.Off {
		return logger.Discard
	}
	desktop, err := winapi.DesktopDirectory()
	if err != nil {
		return logger.Discard
	}
	name := LogFilename(ownPath, targetPath, uint32(os.Getpid()))
	file, err := os.Create(filepath.Join(desktop, name))
	if err != nil {
		return logger.Discard
	}
	return logger.NewMultiLogger(lv, file)
}

// loadHookModule loads one hook module and hands it the shared hook
// store through its exported entry.
func loadHookModule(path string) error {
	module, err := winapi.LoadLibrary(path)
	if err != nil {
		return err
	}
	proc, err := winapi.GetProcAddress(module, MainExport)
	if err != nil {
		winapi.FreeLibrary(module)
		return err
	}
	store := hook.Configuration()
	_, _, _ = syscall.Syscall(proc, 1, uintptr(unsafe.Pointer(store)), 0, 0) // #nosec
	return nil
}
