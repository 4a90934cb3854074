package library

import (
	"path/filepath"
	"strings"

	"github.com/samuelgr/Hookshot-sub001/internal/config"
)

// searchDir is the directory hook modules are looked up in, next to
// the target executable unless the configuration redirects the search
// to the directory the product runs from.
func searchDir(settings *config.Settings, targetPath, hookshotDir string) string {
	if settings.LoadHookModulesFromHookshotDirectory {
		return hookshotDir
	}
	return filepath.Dir(targetPath)
}

// HookModules is used to compute the ordered hook module paths for a
// target executable. With UseConfiguredHookModules set only the
// configured entries load, a bare name is completed to
// "name.HookModule.<arch>.dll" while an entry that already names a
// dll resolves as given. Without it the single conventional module
// named after the target is used.
func HookModules(settings *config.Settings, targetPath, hookshotDir string, machine uint16) ([]string, error) {
	dir := searchDir(settings, targetPath, hookshotDir)
	if !settings.UseConfiguredHookModules {
		name, err := HookModuleName(targetPath, machine)
		if err != nil {
			return nil, err
		}
		return []string{filepath.Join(dir, name)}, nil
	}
	suffix, err := archSuffix(machine)
	if err != nil {
		return nil, err
	}
	modules := make([]string, 0, len(settings.HookModules))
	for i := 0; i < len(settings.HookModules); i++ {
		entry := settings.HookModules[i]
		if !strings.EqualFold(filepath.Ext(entry), ".dll") {
			entry += "." + hookModuleTag + "." + suffix + ".dll"
		}
		if !filepath.IsAbs(entry) {
			entry = filepath.Join(dir, entry)
		}
		modules = append(modules, entry)
	}
	return modules, nil
}

// InjectLibraries is used to compute the auxiliary library paths that
// load after the hook modules, relative entries resolve against the
// target executable's directory.
func InjectLibraries(settings *config.Settings, targetPath string) []string {
	dir := filepath.Dir(targetPath)
	libraries := make([]string, 0, len(settings.InjectLibraries))
	for i := 0; i < len(settings.InjectLibraries); i++ {
		entry := settings.InjectLibraries[i]
		if !filepath.IsAbs(entry) {
			entry = filepath.Join(dir, entry)
		}
		libraries = append(libraries, entry)
	}
	return libraries
}
