// Package config loads persistent settings with koanf.
//
// Sources are layered: built-in defaults, then the TOML file at
// $XDG_CONFIG_HOME/promptforge/config.toml, then PROMPTFORGE_* environment
// variables. Later sources win.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// Config keys.
const (
	KeyUser             = "user"
	KeyDatabase         = "database"
	KeySecret           = "secret"
	KeyLogLevel         = "log_level"
	KeyTimeout          = "timeout"
	KeyOutputDir        = "output_dir"
	KeyOpenAIBaseURL    = "openai_base_url"
	KeyGeminiBaseURL    = "gemini_base_url"
	KeyAnthropicBaseURL = "anthropic_base_url"
)

// EnvPrefix is prepended to the upper-cased key to form its environment
// variable (log_level -> PROMPTFORGE_LOG_LEVEL).
const EnvPrefix = "PROMPTFORGE_"

// Built-in defaults.
const (
	DefaultUser     = "local"
	DefaultLogLevel = "warn"
	DefaultTimeout  = 2 * time.Minute

	appDir       = "promptforge"
	fileName     = "config.toml"
	databaseName = "promptforge.db"
)

var (
	// ErrUnknownKey indicates a key outside ValidKeys.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue indicates a value rejected by Validate.
	ErrInvalidValue = errors.New("invalid config value")
)

// validKeys lists keys in display order.
var validKeys = []string{
	KeyUser, KeyDatabase, KeySecret, KeyLogLevel, KeyTimeout, KeyOutputDir,
	KeyOpenAIBaseURL, KeyGeminiBaseURL, KeyAnthropicBaseURL,
}

// ValidKeys returns every supported key.
func ValidKeys() []string {
	return slices.Clone(validKeys)
}

// Config is the effective configuration.
type Config struct {
	User             string        `koanf:"user"`
	Database         string        `koanf:"database"`
	Secret           string        `koanf:"secret"`
	LogLevel         string        `koanf:"log_level"`
	Timeout          time.Duration `koanf:"timeout"`
	OutputDir        string        `koanf:"output_dir"`
	OpenAIBaseURL    string        `koanf:"openai_base_url"`
	GeminiBaseURL    string        `koanf:"gemini_base_url"`
	AnthropicBaseURL string        `koanf:"anthropic_base_url"`

	// values holds every key as a string, for get/list.
	values map[string]string
}

// Value returns the effective value of key, or "" when unset.
func (c Config) Value(key string) string {
	return c.values[key]
}

// Values returns a copy of every effective value keyed by config key.
func (c Config) Values() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Dir returns the configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/promptforge.
func Dir(getenv func(string) string) (string, error) {
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appDir), nil
}

// Path returns the configuration file path.
func Path(getenv func(string) string) (string, error) {
	d, err := Dir(getenv)
	if err != nil {
		return "", err
	}
	return filepath.Join(d, fileName), nil
}

// Load reads defaults, the TOML file at path (if present) and environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		KeyUser:     DefaultUser,
		KeyDatabase: filepath.Join(filepath.Dir(path), databaseName),
		KeyLogLevel: DefaultLogLevel,
		KeyTimeout:  DefaultTimeout.String(),
	}, "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	// Empty variables are skipped so they never blank out a file value.
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), value
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	cfg.Database = ExpandPath(cfg.Database)
	cfg.OutputDir = ExpandPath(cfg.OutputDir)

	cfg.values = make(map[string]string, len(validKeys))
	for _, key := range validKeys {
		if v := k.String(key); v != "" {
			cfg.values[key] = v
		}
	}
	return cfg, nil
}

// Save validates and writes a single key to the TOML file at path,
// preserving other keys. The file is created with 0600 permissions since
// it may hold the credential passphrase.
func Save(path, key, value string) error {
	if err := Validate(key, value); err != nil {
		return err
	}

	k := koanf.New(".")
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	if err := k.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	data, err := k.Marshal(toml.Parser())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic replaces path through a temp file in the same directory.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("cannot write config file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return os.Rename(tmpName, path)
}

// Validate checks key and value before they are persisted.
func Validate(key, value string) error {
	if !slices.Contains(validKeys, key) {
		return fmt.Errorf("%w %q (valid keys: %s)", ErrUnknownKey, key, strings.Join(validKeys, ", "))
	}

	switch key {
	case KeyUser, KeyDatabase:
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalidValue, key)
		}
	case KeyLogLevel:
		if _, err := zerolog.ParseLevel(value); err != nil || value == "" {
			return fmt.Errorf("%w: %s must be one of trace, debug, info, warn, error, disabled", ErrInvalidValue, key)
		}
	case KeyTimeout:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %s must be a positive duration like 90s or 2m", ErrInvalidValue, key)
		}
	case KeyOpenAIBaseURL, KeyGeminiBaseURL, KeyAnthropicBaseURL:
		if value == "" {
			return nil
		}
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %s must be an http(s) URL", ErrInvalidValue, key)
		}
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// ResolveOutputPath resolves the final output path using the following precedence:
//  1. If output is absolute, use it as-is
//  2. If output is relative and outputDir is set, join them
//  3. If output is empty, use defaultName in outputDir (or cwd if no outputDir)
func ResolveOutputPath(output, outputDir, defaultName string) string {
	if output != "" && filepath.IsAbs(output) {
		return filepath.Clean(output)
	}
	if output != "" {
		if outputDir != "" {
			return filepath.Clean(filepath.Join(outputDir, output))
		}
		return filepath.Clean(output)
	}
	if outputDir != "" {
		return filepath.Clean(filepath.Join(outputDir, defaultName))
	}
	return filepath.Clean(defaultName)
}

// EnsureOutputDir checks that d is a writable directory, creating it if needed.
func EnsureOutputDir(d string) error {
	if d == "" {
		return fmt.Errorf("%w: output_dir cannot be empty", ErrInvalidValue)
	}
	d = ExpandPath(d)

	info, err := os.Stat(d)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(d, 0o750); err != nil {
				return fmt.Errorf("cannot create directory: %w", err)
			}
			return nil
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", d)
	}

	f, err := os.CreateTemp(d, ".promptforge-write-test-*")
	if err != nil {
		return fmt.Errorf("directory is not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return nil
}
