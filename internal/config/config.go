package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultAPIBaseURL is the REST API root used when neither the config file nor
// the environment names one. Override at link time with
//
//	-ldflags "-X dd-go/internal/config.DefaultAPIBaseURL=https://api.example.com/api/v1"
var DefaultAPIBaseURL = "http://localhost:5000/api/v1"

// DefaultTimeoutSeconds bounds every API request.
const DefaultTimeoutSeconds = 10

// Config represents the main configuration for dd.
type Config struct {
	APIBaseURL     string           `toml:"api_base_url"`
	TimeoutSeconds int              `toml:"timeout_seconds"`
	BaseDir        string           `toml:"base_dir"`
	LogDir         string           `toml:"log_dir"`
	Storage        StorageConfig    `toml:"storage"`
	Encryption     EncryptionConfig `toml:"encryption"`
	Export         ExportConfig     `toml:"export"`
	Auth           AuthConfig       `toml:"auth"`
}

// StorageConfig represents configuration for local persisted client state.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StorageConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// EncryptionConfig controls sealing of locally persisted values.
type EncryptionConfig struct {
	Type         string `toml:"type"` // "age" or "none" (default)
	IdentityPath string `toml:"identity_path,omitempty"`
}

// ExportConfig represents configuration for the diagram snapshot vault.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ExportConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"

	// S3-specific fields (only used when Type == "s3")
	S3Bucket string `toml:"s3_bucket,omitempty"`
	S3Prefix string `toml:"s3_prefix,omitempty"`
	S3Region string `toml:"s3_region,omitempty"`

	// Optional: S3-compatible endpoint and a static key pair. Left empty, the
	// AWS default endpoint and credential chain apply.
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`
}

// AuthConfig holds session behaviour switches.
type AuthConfig struct {
	// ValidateOnStart checks a restored token against the API before trusting it.
	ValidateOnStart bool `toml:"validate_on_start"`
}

// NewConfig creates a new Config rooted at baseDir with default settings.
func NewConfig(baseDir string) *Config {
	return &Config{
		APIBaseURL:     DefaultAPIBaseURL,
		TimeoutSeconds: DefaultTimeoutSeconds,
		BaseDir:        baseDir,
		LogDir:         filepath.Join(baseDir, "log"),
		Storage: StorageConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Encryption: EncryptionConfig{
			Type:         "age",
			IdentityPath: filepath.Join(baseDir, "keys", "dd.key"),
		},
		Export: ExportConfig{
			Type:   "filesystem",
			FSRoot: filepath.Join(baseDir, "exports"),
		},
	}
}

// Timeout returns the per-request timeout, falling back to the default.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResolveAPIBaseURL applies precedence: DD_API_BASE_URL env, config file, link-time default.
func (c *Config) ResolveAPIBaseURL() string {
	if v := os.Getenv("DD_API_BASE_URL"); v != "" {
		return v
	}
	if c.APIBaseURL != "" {
		return c.APIBaseURL
	}
	return DefaultAPIBaseURL
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
