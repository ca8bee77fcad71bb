// Package config loads the optional prebuild.yaml project configuration
// and resolves the project root directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the per-project config file looked up in the project root.
const ConfigFileName = "prebuild.yaml"

// ProjectDirEnv is set by the build orchestrator before invoking pre-build hooks.
const ProjectDirEnv = "PROJECT_DIR"

// Defaults matching the firmware project layout.
const (
	DefaultWebDir      = "src/web"
	DefaultOutput      = "src/generated/web_dashboard.h"
	DefaultNamespace   = "webui"
	DefaultVersionFile = "include/version.h"
	DefaultDebounce    = 200 * time.Millisecond
)

// Duration wraps time.Duration with YAML unmarshalling for human-readable strings.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// EmbedConfig holds asset-embedding settings. Paths are project-root relative.
type EmbedConfig struct {
	WebDir    string `yaml:"web_dir"`
	Output    string `yaml:"output"`
	Namespace string `yaml:"namespace"`
}

// VersionConfig holds version-stamper settings.
type VersionConfig struct {
	File string `yaml:"file"`
}

// WatchConfig holds watch-mode settings.
type WatchConfig struct {
	Debounce Duration `yaml:"debounce"`
}

// Config is the top-level configuration file structure.
type Config struct {
	ProjectDir string        `yaml:"project_dir"`
	LogLevel   string        `yaml:"log_level"`
	LogFormat  string        `yaml:"log_format"`
	Embed      EmbedConfig   `yaml:"embed"`
	Version    VersionConfig `yaml:"version"`
	Watch      WatchConfig   `yaml:"watch"`
}

// Load reads and parses a YAML config file. If the file does not exist,
// it returns an empty Config and a nil error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// ResolveProjectDir returns the absolute project root. An explicit value
// (flag or config file) wins; otherwise the PROJECT_DIR environment variable
// is consulted, loading a .env file first if one is present; the final
// fallback is the current working directory.
func ResolveProjectDir(explicit string) (string, error) {
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", fmt.Errorf("resolve project dir: %w", err)
		}
		return abs, nil
	}

	_ = godotenv.Load()
	if dir := os.Getenv(ProjectDirEnv); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", ProjectDirEnv, err)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return cwd, nil
}
