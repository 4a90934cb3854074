package inject

import (
	"os"
	"path/filepath"

	"github.com/samuelgr/Hookshot-sub001/internal/result"
)

// Injection into a target is opt in, the operator drops one of these
// markers next to an executable they own.
const (
	// authorizeSuffix marks one executable, "<target>.hookshot".
	authorizeSuffix = ".hookshot"

	// authorizeDirectoryFile marks every executable in the directory.
	authorizeDirectoryFile = "HookshotAuthorized"
)

// authorize is used to decide whether the executable at path is
// marked for injection. The decision derives purely from the path,
// never from process state.
func authorize(path string) result.Code {
	markers := [...]string{
		path + authorizeSuffix,
		filepath.Join(filepath.Dir(path), authorizeDirectoryFile),
	}
	for _, marker := range markers {
		_, err := os.Stat(marker)
		if err == nil {
			return result.Success
		}
		if !os.IsNotExist(err) {
			return result.ErrorCannotDetermineAuthorization
		}
	}
	return result.ErrorNotAuthorized
}
