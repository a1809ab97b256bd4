// Package paths holds the documented default locations for the survey
// service and resolves the configuration directory and storage file.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Default storage location. Container deployments mount a volume at
// DefaultStorageDir.
const (
	DefaultStorageDir      = "/storage-bucket"
	DefaultStorageFileName = "responses.json"
	DefaultStorageFile     = DefaultStorageDir + "/" + DefaultStorageFileName
)

// appDirName is the per-user directory name under the platform config root.
const appDirName = "survey"

// Environment variable names for location overrides.
const (
	EnvConfigDir   = "SURVEY_CONFIG_DIR"
	EnvStorageFile = "SURVEY_STORAGE_FILE"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/survey (fallback ~/.config/survey)
// macOS:   ~/Library/Application Support/survey
// Windows: %APPDATA%/survey
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appDirName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appDirName), nil
	}
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > SURVEY_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveStorageFile turns the configured storage file into an absolute path.
// An empty value falls back to DefaultStorageFile.
func ResolveStorageFile(value string) (string, error) {
	if value == "" {
		return DefaultStorageFile, nil
	}
	return filepath.Abs(value)
}
