package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// StoreBackends lists the accepted values of store.backend.
var StoreBackends = []string{"keyring", "file", "sqlite", "ssm", "memory"}

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Google   GoogleConfig   `toml:"google"`
	YouTube  YouTubeConfig  `toml:"youtube"`
	Store    StoreConfig    `toml:"store"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// GoogleConfig contains the OAuth client registration.
type GoogleConfig struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	RedirectURI  string   `toml:"redirect_uri"`
	AuthURL      string   `toml:"auth_url"`
	TokenURL     string   `toml:"token_url"`
	Scopes       []string `toml:"scopes"`
}

// YouTubeConfig contains YouTube Data API client settings.
type YouTubeConfig struct {
	BaseURL               string  `toml:"base_url"`
	PageSize              int     `toml:"page_size"`
	RequestTimeoutSeconds int     `toml:"request_timeout_seconds"`
	RateLimit             float64 `toml:"rate_limit"`
	Workers               int     `toml:"workers"`
}

// StoreConfig selects where the refresh token is kept.
type StoreConfig struct {
	Backend   string `toml:"backend"`
	Service   string `toml:"service"`
	FilePath  string `toml:"file_path"`
	SSMPrefix string `toml:"ssm_prefix"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains the loopback OAuth receiver settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads dotenv files (missing files are ignored) and applies MYSUBS_* overrides.
func (c *Config) ApplyEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	if v := os.Getenv("MYSUBS_CLIENT_ID"); v != "" {
		c.Google.ClientID = v
	}
	if v := os.Getenv("MYSUBS_CLIENT_SECRET"); v != "" {
		c.Google.ClientSecret = v
	}
	if v := os.Getenv("MYSUBS_STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("MYSUBS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate reports the first setting that would keep the client from working.
func (c *Config) Validate() error {
	switch {
	case c.Google.ClientID == "":
		return fmt.Errorf("%w: %w: google.client_id is required", ErrInvalidConfig, ErrMissingCredentials)
	case c.Google.RedirectURI == "":
		return fmt.Errorf("%w: google.redirect_uri is required", ErrInvalidConfig)
	case c.YouTube.PageSize <= 0 || c.YouTube.PageSize > 50:
		return fmt.Errorf("%w: youtube.page_size must be between 1 and 50", ErrInvalidConfig)
	case c.YouTube.RequestTimeoutSeconds <= 0:
		return fmt.Errorf("%w: youtube.request_timeout_seconds must be positive", ErrInvalidConfig)
	case !slices.Contains(StoreBackends, c.Store.Backend):
		return fmt.Errorf("%w: unknown store.backend %q", ErrInvalidConfig, c.Store.Backend)
	}
	return nil
}

// RequestTimeout is the bound applied to every outbound HTTP request.
func (c *Config) RequestTimeout() time.Duration {
	if c.YouTube.RequestTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.YouTube.RequestTimeoutSeconds) * time.Second
}

// CredentialsFile returns the file backend path, defaulting to the user config directory.
func (c *Config) CredentialsFile() string {
	if c.Store.FilePath != "" {
		return c.Store.FilePath
	}
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "mysubs", "credentials.json")
	}
	return filepath.Join(".mysubs", "credentials.json")
}

// ServerAddr is the host:port the loopback receiver listens on.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
