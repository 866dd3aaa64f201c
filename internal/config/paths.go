package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables that relocate dd's files.
const (
	EnvConfigPath = "DD_CONFIG_PATH" // config file, default ~/.config/dd.toml
	EnvHome       = "DD_HOME"        // data root, default ~/.local/share/dd
)

// Paths locates the config file and the data root.
type Paths struct {
	ConfigPath string
	BaseDir    string
}

// LogDir is where a fresh config puts log files.
func (p Paths) LogDir() string { return filepath.Join(p.BaseDir, "log") }

// DefaultPaths resolves Paths from the environment, falling back to XDG
// locations under the home directory.
func DefaultPaths() (Paths, error) {
	configPath, err := envOrHome(EnvConfigPath, ".config", "dd.toml")
	if err != nil {
		return Paths{}, err
	}
	baseDir, err := envOrHome(EnvHome, ".local", "share", "dd")
	if err != nil {
		return Paths{}, err
	}
	return Paths{ConfigPath: configPath, BaseDir: baseDir}, nil
}

func envOrHome(env string, rel ...string) (string, error) {
	if v := os.Getenv(env); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving %s: cannot determine home directory: %w", env, err)
	}
	return filepath.Join(append([]string{home}, rel...)...), nil
}
