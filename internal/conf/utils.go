// utils.go: filesystem helpers for config and database paths.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// GetDefaultConfigPaths returns the list of directories searched for
// config.yaml, in priority order: working directory first, then the
// OS-specific user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}

	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			paths = append(paths, filepath.Join(appData, "agrishield"))
		}
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			paths = append(paths, filepath.Join(xdg, "agrishield"))
		} else if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, filepath.Join(home, ".config", "agrishield"))
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no config paths available")
	}
	return paths, nil
}

// GetBasePath resolves a possibly relative directory against the working
// directory and ensures it exists.
func GetBasePath(dir string) string {
	if dir == "" {
		dir = "."
	}
	if !filepath.IsAbs(dir) {
		if workDir, err := os.Getwd(); err == nil {
			dir = filepath.Join(workDir, dir)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		// Fall back to the raw path, the caller will surface the open error.
		return dir
	}
	return dir
}
