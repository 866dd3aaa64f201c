package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPaths(t *testing.T) {
	t.Run("environment wins", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "/custom/config.toml")
		t.Setenv(EnvHome, "/custom/dd")

		p, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths() error = %v", err)
		}
		want := Paths{ConfigPath: "/custom/config.toml", BaseDir: "/custom/dd"}
		if p != want {
			t.Errorf("DefaultPaths() = %+v, want %+v", p, want)
		}
		if p.LogDir() != "/custom/dd/log" {
			t.Errorf("LogDir() = %q, want %q", p.LogDir(), "/custom/dd/log")
		}
	})

	t.Run("home directory fallback", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		t.Setenv(EnvHome, "")

		p, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths() error = %v", err)
		}
		home, _ := os.UserHomeDir()
		if want := filepath.Join(home, ".config", "dd.toml"); p.ConfigPath != want {
			t.Errorf("ConfigPath = %q, want %q", p.ConfigPath, want)
		}
		if want := filepath.Join(home, ".local", "share", "dd"); p.BaseDir != want {
			t.Errorf("BaseDir = %q, want %q", p.BaseDir, want)
		}
	})

	t.Run("paths feed a new config", func(t *testing.T) {
		t.Setenv(EnvHome, "/srv/dd")
		p, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths() error = %v", err)
		}
		if cfg := NewConfig(p.BaseDir); cfg.LogDir != p.LogDir() {
			t.Errorf("NewConfig().LogDir = %q, want %q", cfg.LogDir, p.LogDir())
		}
	})
}
