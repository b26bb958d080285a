// Package config holds bgit's global, per-user configuration.
//
// The config lives at <config dir>/config.toml (see the paths package for
// resolution). It records the user's authentication preference, optional
// HTTPS credentials, and an optional SSH key file. The personal access
// token is stored base64-encoded so a casual `cat` doesn't show it; this
// is obfuscation, not encryption, and the file itself is written 0600.
package config

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/rootCircle/bgit/logger"
	"github.com/rootCircle/bgit/paths"
)

// PreferredAuth is the user's preferred authentication method when both
// SSH and HTTPS are possible for a remote.
type PreferredAuth string

const (
	// PreferredAuthRepositoryURL keeps whatever scheme the repository URL
	// already uses. This is the default.
	PreferredAuthRepositoryURL PreferredAuth = "repositoryURLBased"
	// PreferredAuthSSH rewrites known-host URLs to SSH form.
	PreferredAuthSSH PreferredAuth = "ssh"
	// PreferredAuthHTTPS rewrites known-host URLs to HTTPS form.
	PreferredAuthHTTPS PreferredAuth = "https"
)

// Valid reports whether p is one of the recognized values.
func (p PreferredAuth) Valid() bool {
	switch p {
	case PreferredAuthRepositoryURL, PreferredAuthSSH, PreferredAuthHTTPS:
		return true
	}
	return false
}

// Config is the global per-user configuration.
type Config struct {
	Auth         Auth         `toml:"auth"`
	Integrations Integrations `toml:"integrations"`

	mu       sync.RWMutex
	filePath string
}

// Auth groups authentication settings.
type Auth struct {
	// Preferred authentication method: "repositoryURLBased" | "ssh" | "https".
	Preferred PreferredAuth `toml:"preferred"`
	HTTPS     HTTPSAuth     `toml:"https"`
	SSH       SSHAuth       `toml:"ssh"`
}

// HTTPSAuth holds optional HTTPS credentials.
type HTTPSAuth struct {
	Username string `toml:"username,omitempty"`
	// PAT is the personal access token, base64-encoded on disk and held
	// decoded in memory.
	PAT string `toml:"pat,omitempty"`
}

// SSHAuth holds optional SSH settings.
type SSHAuth struct {
	// KeyFile is the preferred private key path. May start with "~".
	KeyFile string `toml:"key_file,omitempty"`
}

// Integrations holds third-party API keys, base64-encoded on disk.
type Integrations struct {
	GoogleAPIKey string `toml:"google_api_key,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Auth: Auth{Preferred: PreferredAuthRepositoryURL},
	}
}

// Load reads the global config from disk. A missing file yields defaults;
// an unreadable or unparsable file is an error.
func Load() (*Config, error) {
	path, err := paths.ConfigFilePath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from an explicit path.
func LoadFrom(path string) (*Config, error) {
	log := logger.WithComponent("config")

	cfg := Default()
	cfg.filePath = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("global config not found, using defaults", "path", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if !cfg.Auth.Preferred.Valid() {
		if cfg.Auth.Preferred == "" {
			cfg.Auth.Preferred = PreferredAuthRepositoryURL
		} else {
			return nil, fmt.Errorf("invalid auth.preferred value %q in %s", cfg.Auth.Preferred, path)
		}
	}

	// Secrets are base64 in the file, decoded in memory.
	if cfg.Auth.HTTPS.PAT != "" {
		decoded, err := decodeB64(cfg.Auth.HTTPS.PAT)
		if err != nil {
			return nil, fmt.Errorf("invalid auth.https.pat in %s: %w", path, err)
		}
		cfg.Auth.HTTPS.PAT = decoded
	}
	if cfg.Integrations.GoogleAPIKey != "" {
		decoded, err := decodeB64(cfg.Integrations.GoogleAPIKey)
		if err != nil {
			return nil, fmt.Errorf("invalid integrations.google_api_key in %s: %w", path, err)
		}
		cfg.Integrations.GoogleAPIKey = decoded
	}

	log.Debug("global config loaded", "path", path, "preferred", cfg.Auth.Preferred)
	return cfg, nil
}

// Save writes the config back to the path it was loaded from.
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.filePath
	if path == "" {
		var err error
		path, err = paths.ConfigFilePath()
		if err != nil {
			return err
		}
		c.filePath = path
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Copy with secrets re-encoded; the in-memory config keeps them decoded.
	onDisk := Config{Auth: c.Auth, Integrations: c.Integrations}
	if onDisk.Auth.HTTPS.PAT != "" {
		onDisk.Auth.HTTPS.PAT = encodeB64(onDisk.Auth.HTTPS.PAT)
	}
	if onDisk.Integrations.GoogleAPIKey != "" {
		onDisk.Integrations.GoogleAPIKey = encodeB64(onDisk.Integrations.GoogleAPIKey)
	}

	var buf []byte
	{
		b, err := tomlMarshal(&onDisk)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		buf = b
	}

	if err := os.WriteFile(path, buf, 0o600); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// HTTPSCredentials returns the configured username and token, if both are set.
func (c *Config) HTTPSCredentials() (username, token string, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.Auth.HTTPS.Username == "" || c.Auth.HTTPS.PAT == "" {
		return "", "", false
	}
	return c.Auth.HTTPS.Username, c.Auth.HTTPS.PAT, true
}

// SSHKeyFile returns the configured private key path with "~" expanded,
// or "" when unset.
func (c *Config) SSHKeyFile() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.Auth.SSH.KeyFile == "" {
		return ""
	}
	return paths.ExpandTilde(c.Auth.SSH.KeyFile)
}

// Preferred returns the preferred authentication method.
func (c *Config) Preferred() PreferredAuth {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Auth.Preferred
}

// SetPreferred updates the preferred authentication method in memory.
// Call Save to persist.
func (c *Config) SetPreferred(p PreferredAuth) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Auth.Preferred = p
}

// SetHTTPSCredentials updates the HTTPS credentials in memory.
func (c *Config) SetHTTPSCredentials(username, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Auth.HTTPS.Username = username
	c.Auth.HTTPS.PAT = token
}

// SetSSHKeyFile updates the preferred SSH key path in memory.
func (c *Config) SetSSHKeyFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Auth.SSH.KeyFile = path
}

func tomlMarshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeB64(s string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("invalid base64: %w", err)
	}
	return string(raw), nil
}

func encodeB64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}
