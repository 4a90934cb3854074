// Package config implements the configuration file that controls
// what gets injected into which target executable.
package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/samuelgr/Hookshot-sub001/internal/patch/toml"
	"github.com/samuelgr/Hookshot-sub001/internal/system"
)

// Name is the configuration file name, the file sits in the same
// directory as the injector executable.
const Name = "Hookshot.toml"

// globalSection applies to every target executable.
const globalSection = "Global"

// Section is one configuration scope, either the global section or a
// section named after a target executable. Scalar fields are pointers
// so an absent value does not override a lower scope.
type Section struct {
	HookModule []string `toml:"HookModule"`
	Inject     []string `toml:"Inject"`

	LogLevel                             *uint32 `toml:"LogLevel"`
	UseConfiguredHookModules             *bool   `toml:"UseConfiguredHookModules"`
	LoadHookModulesFromHookshotDirectory *bool   `toml:"LoadHookModulesFromHookshotDirectory"`
}

// Settings is the merged configuration that applies to one target
// executable.
type Settings struct {
	HookModules     []string
	InjectLibraries []string

	LogLevel                             uint32
	UseConfiguredHookModules             bool
	LoadHookModulesFromHookshotDirectory bool
}

func (settings *Settings) apply(section *Section) {
	if section == nil {
		return
	}
	settings.HookModules = append(settings.HookModules, section.HookModule...)
	settings.InjectLibraries = append(settings.InjectLibraries, section.Inject...)
	if section.LogLevel != nil {
		settings.LogLevel = *section.LogLevel
	}
	if section.UseConfiguredHookModules != nil {
		settings.UseConfiguredHookModules = *section.UseConfiguredHookModules
	}
	if section.LoadHookModulesFromHookshotDirectory != nil {
		settings.LoadHookModulesFromHookshotDirectory = *section.LoadHookModulesFromHookshotDirectory
	}
}

// Resolve is used to merge the global section with the section named
// after the target executable. List settings append across scopes,
// scalar settings in the executable section override the global ones.
// Section names compare case insensitively like the file system does.
func Resolve(data []byte, exe string) (*Settings, error) {
	sections := make(map[string]*Section)
	err := toml.Unmarshal(data, &sections)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration file")
	}
	settings := Settings{}
	for name, section := range sections {
		if strings.EqualFold(name, globalSection) {
			settings.apply(section)
		}
	}
	for name, section := range sections {
		if strings.EqualFold(name, exe) {
			settings.apply(section)
		}
	}
	return &settings, nil
}

// Load is used to read the configuration file at path and resolve
// the settings for the target executable name, a missing file yields
// the default settings.
func Load(path, exe string) (*Settings, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return new(Settings), nil
		}
		return nil, errors.Wrap(err, "failed to load configuration file")
	}
	settings, err := Resolve(data, exe)
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// Path is used to get the location of the configuration file next to
// the running executable.
func Path() (string, error) {
	dir, err := system.ExecutableDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, Name), nil
}
