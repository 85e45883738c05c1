package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/teemow/taskbridge/internal/credentials"
	"github.com/teemow/taskbridge/internal/google"
	"github.com/teemow/taskbridge/internal/logging"
)

// StorageType selects the credential backend.
type StorageType string

const (
	StorageFile    StorageType = "file"
	StorageKeyring StorageType = "keyring"
)

// Transport selects how MCP clients reach the server.
type Transport string

const (
	TransportStdio          Transport = "stdio"
	TransportStreamableHTTP Transport = "streamable-http"
)

// KeyringService is the keyring service name credentials are stored under.
const KeyringService = "taskbridge"

// Default configuration values.
const (
	DefaultStorage     = StorageFile
	DefaultTransport   = TransportStdio
	DefaultHTTPAddr    = "127.0.0.1:8080"
	DefaultMetricsAddr = "127.0.0.1:9090"
	DefaultLogFormat   = logging.FormatText
	DefaultLogLevel    = "info"
)

// CredentialsConfig describes where the OAuth credential is persisted.
type CredentialsConfig struct {
	Storage     StorageType `json:"storage" validate:"required,oneof=file keyring"`
	File        string      `json:"file,omitempty"`
	KeyringUser string      `json:"keyring_user,omitempty"`
}

// AuthConfig controls the interactive authorization flow.
type AuthConfig struct {
	// CallbackPort for the loopback redirect. 0 picks a free port.
	CallbackPort int  `json:"callback_port" validate:"gte=0,lte=65535"`
	OpenBrowser  bool `json:"open_browser"`
}

// ServerConfig controls the MCP server.
type ServerConfig struct {
	Transport Transport `json:"transport" validate:"required,oneof=stdio streamable-http"`
	HTTPAddr  string    `json:"http_addr" validate:"required,hostname_port"`
	// ReadOnly registers only non-mutating tools.
	ReadOnly bool `json:"read_only"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string         `json:"level" validate:"required"`
	Format logging.Format `json:"format" validate:"oneof=text json"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr" validate:"omitempty,hostname_port"`
}

// Config holds the application's configuration.
type Config struct {
	ClientSecretFile string            `json:"client_secret_file"`
	Credentials      CredentialsConfig `json:"credentials"`
	Scopes           []string          `json:"scopes"`
	Auth             AuthConfig        `json:"auth"`
	Server           ServerConfig      `json:"server"`
	Log              LogConfig         `json:"log"`
	Metrics          MetricsConfig     `json:"metrics"`
}

// Default returns a Config with defaults applied.
func Default() (*Config, error) {
	cfg := &Config{Auth: AuthConfig{OpenBrowser: true}}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// defaultMap is the lowest configuration layer. Booleans live here rather
// than in ApplyDefaults because false is indistinguishable from unset.
func defaultMap() map[string]any {
	return map[string]any{
		"auth.open_browser": true,
		"metrics.enabled":   false,
		"server.read_only":  false,
	}
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() error {
	if c.Credentials.Storage == "" {
		c.Credentials.Storage = DefaultStorage
	}
	if len(c.Scopes) == 0 {
		scopes := google.DefaultOAuthScopes
		if c.Server.ReadOnly {
			scopes = google.ReadOnlyOAuthScopes
		}
		c.Scopes = append([]string(nil), scopes...)
	}
	if c.Server.Transport == "" {
		c.Server.Transport = DefaultTransport
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = DefaultMetricsAddr
	}

	configDir, dirErr := os.UserConfigDir()
	if c.ClientSecretFile == "" && dirErr == nil {
		c.ClientSecretFile = filepath.Join(configDir, "taskbridge", "client_secret.json")
	}

	switch c.Credentials.Storage {
	case StorageFile:
		if c.Credentials.File == "" {
			if dirErr != nil {
				return fmt.Errorf("credentials.file required (auto-detect failed: %w)", dirErr)
			}
			c.Credentials.File = filepath.Join(configDir, "taskbridge", "credentials.json")
		}
	case StorageKeyring:
		if c.Credentials.KeyringUser == "" {
			current, err := user.Current()
			if err != nil {
				return fmt.Errorf("credentials.keyring_user required (auto-detect failed: %w)", err)
			}
			c.Credentials.KeyringUser = current.Username
		}
	}
	return nil
}

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}

	switch c.Credentials.Storage {
	case StorageFile:
		if c.Credentials.File == "" {
			return errors.New("file path required for file storage")
		}
	case StorageKeyring:
		if c.Credentials.KeyringUser == "" {
			return errors.New("keyring_user required for keyring storage")
		}
	}
	return nil
}

// NewBackend creates the credential backend the configuration names.
func (c *CredentialsConfig) NewBackend() (credentials.Backend, error) {
	switch c.Storage {
	case StorageFile:
		return credentials.NewFileBackend(c.File)
	case StorageKeyring:
		return credentials.NewKeyringBackend(KeyringService, c.KeyringUser)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage)
	}
}

// NewLogger builds the logger described by the configuration. Logs always go
// to stderr since stdout carries the stdio transport.
func (c *LogConfig) NewLogger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(os.Stderr, level, c.Format), nil
}
