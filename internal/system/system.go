package system

import (
	"os"
	"path/filepath"
)

// ExecutablePath is used to get the executable file path.
func ExecutablePath() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", err
	}
	return path, nil
}

// ExecutableDir is used to get the directory that contains the executable file.
func ExecutableDir() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}
