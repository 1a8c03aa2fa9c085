package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// placeholder values shipped in the example config. Their presence at startup
// means the operator never filled in real credentials; calls depending on them
// will fail downstream, which is reported as a warning rather than a fatal
// error.
const (
	placeholderClientID     = "YourDefaultClientId"
	placeholderClientSecret = "YourDefaultClientSecret"
	placeholderNotionToken  = "YourDefaultNotionToken"
	placeholderNotionPageID = "YourDefaultNotionPageId"
	placeholderSecret       = "dev-secret-change-in-production"
)

// Config represents the application configuration loaded from a TOML file,
// optionally overridden by environment variables.
type Config struct {
	Catalog   CatalogConfig   `toml:"catalog"`
	Workspace WorkspaceConfig `toml:"workspace"`
	Database  DatabaseConfig  `toml:"database"`
	Server    ServerConfig    `toml:"server"`
}

// CatalogConfig contains streaming-catalog API credentials.
type CatalogConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// WorkspaceConfig contains note-workspace API credentials and the page that
// receives saved records.
type WorkspaceConfig struct {
	Token  string `toml:"token"`
	PageID string `toml:"page_id"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	SessionSecret string `toml:"session_secret"`
}

// LoadConfig reads and parses a TOML configuration file from the specified
// path, then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with defaults loaded from the embedded
// example config and environment overrides applied.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the
// embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidConfig)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnv overrides config fields from the process environment. Environment
// variables win over file values so deployments can keep secrets out of the
// config file entirely.
func (c *Config) applyEnv() {
	setFromEnv(&c.Catalog.ClientID, "CLIENT_ID")
	setFromEnv(&c.Catalog.ClientSecret, "CLIENT_SECRET")
	setFromEnv(&c.Workspace.Token, "NOTION_TOKEN")
	setFromEnv(&c.Workspace.PageID, "NOTION_PAGE_ID")
	setFromEnv(&c.Database.Path, "DATABASE_PATH")
	setFromEnv(&c.Server.SessionSecret, "SESSION_SECRET")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Warnings reports configuration values that are missing or still set to
// their placeholder defaults. The process starts anyway; the affected
// external calls will fail downstream.
func (c *Config) Warnings() []string {
	var warnings []string

	if c.Catalog.ClientID == "" || c.Catalog.ClientID == placeholderClientID ||
		c.Catalog.ClientSecret == "" || c.Catalog.ClientSecret == placeholderClientSecret {
		warnings = append(warnings, "catalog client_id or client_secret is not configured")
	}

	if c.Workspace.Token == "" || c.Workspace.Token == placeholderNotionToken ||
		c.Workspace.PageID == "" || c.Workspace.PageID == placeholderNotionPageID {
		warnings = append(warnings, "workspace token or page_id is not configured")
	}

	if c.Server.SessionSecret == "" || c.Server.SessionSecret == placeholderSecret {
		warnings = append(warnings, "session secret is not configured, using an insecure default")
	}

	return warnings
}

// Addr returns the host:port pair the HTTP server should bind to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
