package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		APIBaseURL:     "https://models.example.com/api/v1",
		TimeoutSeconds: 30,
		BaseDir:        "/home/user/.local/share/dd",
		LogDir:         "/home/user/.local/share/dd/log",
		Storage:        StorageConfig{Type: "sqlite", DataDir: "/home/user/.local/share/dd/data"},
		Encryption: EncryptionConfig{
			Type:         "age",
			IdentityPath: "/home/user/.local/share/dd/keys/dd.key",
		},
		Export: ExportConfig{Type: "s3", S3Bucket: "diagrams", S3Prefix: "team-a", S3Region: "eu-west-1"},
		Auth:   AuthConfig{ValidateOnStart: true},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.APIBaseURL != original.APIBaseURL {
		t.Errorf("APIBaseURL = %q, want %q", got.APIBaseURL, original.APIBaseURL)
	}
	if got.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds = %d, want 30", got.TimeoutSeconds)
	}
	if got.Storage != original.Storage {
		t.Errorf("Storage = %+v, want %+v", got.Storage, original.Storage)
	}
	if got.Encryption != original.Encryption {
		t.Errorf("Encryption = %+v, want %+v", got.Encryption, original.Encryption)
	}
	if got.Export != original.Export {
		t.Errorf("Export = %+v, want %+v", got.Export, original.Export)
	}
	if !got.Auth.ValidateOnStart {
		t.Error("Auth.ValidateOnStart = false, want true")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/dd")

	if cfg.BaseDir != "/data/dd" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/dd")
	}
	if cfg.LogDir != "/data/dd/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/dd/log")
	}
	if cfg.Storage.DataDir != "/data/dd/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/data/dd/data")
	}
	if cfg.Encryption.IdentityPath != "/data/dd/keys/dd.key" {
		t.Errorf("Encryption.IdentityPath = %q, want %q", cfg.Encryption.IdentityPath, "/data/dd/keys/dd.key")
	}
	if cfg.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("APIBaseURL = %q, want %q", cfg.APIBaseURL, DefaultAPIBaseURL)
	}
}

func TestConfig_Timeout(t *testing.T) {
	tests := []struct {
		seconds int
		want    time.Duration
	}{
		{seconds: 0, want: 10 * time.Second},
		{seconds: -5, want: 10 * time.Second},
		{seconds: 3, want: 3 * time.Second},
	}
	for _, tt := range tests {
		cfg := &Config{TimeoutSeconds: tt.seconds}
		if got := cfg.Timeout(); got != tt.want {
			t.Errorf("Timeout() with %d = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

func TestConfig_ResolveAPIBaseURL(t *testing.T) {
	t.Run("env wins", func(t *testing.T) {
		t.Setenv("DD_API_BASE_URL", "http://env:9000/api/v1")
		cfg := &Config{APIBaseURL: "http://file/api/v1"}
		if got := cfg.ResolveAPIBaseURL(); got != "http://env:9000/api/v1" {
			t.Errorf("ResolveAPIBaseURL() = %q", got)
		}
	})

	t.Run("config file", func(t *testing.T) {
		t.Setenv("DD_API_BASE_URL", "")
		cfg := &Config{APIBaseURL: "http://file/api/v1"}
		if got := cfg.ResolveAPIBaseURL(); got != "http://file/api/v1" {
			t.Errorf("ResolveAPIBaseURL() = %q", got)
		}
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv("DD_API_BASE_URL", "")
		cfg := &Config{}
		if got := cfg.ResolveAPIBaseURL(); got != "http://localhost:5000/api/v1" {
			t.Errorf("ResolveAPIBaseURL() = %q", got)
		}
	})
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "dd.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "dd.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "dd.toml")
		cfg := NewConfig(dir)
		cfg.Storage = StorageConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Storage.Type != "memory" {
			t.Errorf("Storage.Type = %q, want %q", got.Storage.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/dd.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
