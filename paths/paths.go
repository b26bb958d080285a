// Package paths provides centralized path resolution for bgit's directories.
//
// bgit keeps three kinds of files on disk:
//
//   - Config (XDG_CONFIG_HOME): config.toml, per-user settings (auth
//     preference, HTTPS credentials, SSH key file)
//   - State (XDG_STATE_HOME): logs/, transient log files
//   - SSH (~/.ssh): key files plus the bgit-managed agent socket and its
//     pid record
//
// Resolution order for config and state:
//  1. If ~/.bgit/ exists → use legacy flat layout (everything under ~/.bgit/)
//  2. If XDG env vars are set → use XDG layout with proper separation
//  3. Fresh install, no XDG vars → default to ~/.bgit/
//
// The SSH directory is always resolved from the home directory (HOME, or
// USERPROFILE on Windows) and is never relocated by XDG variables, since
// external tools (ssh-agent, ssh-add, ssh-keygen) share it.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

var (
	mu       sync.Mutex
	resolved *resolvedPaths
)

type resolvedPaths struct {
	configDir string
	stateDir  string
	legacy    bool
}

// resolve computes the path layout once and caches it.
func resolve() (*resolvedPaths, error) {
	mu.Lock()
	defer mu.Unlock()

	if resolved != nil {
		return resolved, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	legacyDir := filepath.Join(home, ".bgit")

	// 1. If ~/.bgit/ exists, use legacy layout
	if info, err := os.Stat(legacyDir); err == nil && info.IsDir() {
		resolved = &resolvedPaths{
			configDir: legacyDir,
			stateDir:  legacyDir,
			legacy:    true,
		}
		return resolved, nil
	}

	// 2. Check XDG env vars
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	xdgState := os.Getenv("XDG_STATE_HOME")

	if xdgConfig != "" || xdgState != "" {
		if xdgConfig == "" {
			xdgConfig = filepath.Join(home, ".config")
		}
		if xdgState == "" {
			xdgState = filepath.Join(home, ".local", "state")
		}
		resolved = &resolvedPaths{
			configDir: filepath.Join(xdgConfig, "bgit"),
			stateDir:  filepath.Join(xdgState, "bgit"),
			legacy:    false,
		}
		return resolved, nil
	}

	// 3. Fresh install, no XDG, default to legacy
	resolved = &resolvedPaths{
		configDir: legacyDir,
		stateDir:  legacyDir,
		legacy:    true,
	}
	return resolved, nil
}

// ConfigDir returns the directory for configuration files (config.toml).
func ConfigDir() (string, error) {
	r, err := resolve()
	if err != nil {
		return "", err
	}
	return r.configDir, nil
}

// StateDir returns the directory for runtime state and logs.
func StateDir() (string, error) {
	r, err := resolve()
	if err != nil {
		return "", err
	}
	return r.stateDir, nil
}

// ConfigFilePath returns the full path to config.toml.
func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogsDir returns the directory for log files.
func LogsDir() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// HomeDir returns the user's home directory. On Windows os.UserHomeDir
// already consults USERPROFILE; elsewhere it uses HOME.
func HomeDir() (string, error) {
	return os.UserHomeDir()
}

// SSHDir returns the user's SSH directory (~/.ssh). The directory is not
// created; callers that need it to exist use EnsureSSHDir.
func SSHDir() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ssh"), nil
}

// EnsureSSHDir returns the SSH directory, creating it (0700) if missing.
func EnsureSSHDir() (string, error) {
	dir, err := SSHDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// ExpandTilde expands a leading "~" or "~/" in path to the user's home
// directory. Paths without a tilde prefix are returned unchanged.
func ExpandTilde(path string) string {
	if path == "~" {
		if home, err := HomeDir(); err == nil {
			return home
		}
		return path
	}
	if len(path) >= 2 && path[0] == '~' && os.IsPathSeparator(path[1]) {
		if home, err := HomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// IsWindows reports whether bgit is running on Windows. Kept here so the
// handful of platform checks outside build-tagged files share one home.
func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// IsLegacyLayout returns true if using the ~/.bgit/ flat layout.
func IsLegacyLayout() bool {
	r, err := resolve()
	if err != nil {
		return true // assume legacy on error
	}
	return r.legacy
}

// Reset clears the cached path resolution. This is intended for testing only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	resolved = nil
}
