package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thiagokokada/gitstatus-go/internal/git"
	"github.com/thiagokokada/gitstatus-go/internal/render"
)

const (
	// EnvConfigPath overrides the default config file location.
	EnvConfigPath = "GITSTATUS_CONFIG"
	// EnvHashPrefix is the variable zsh-git-prompt themes use for the
	// detached HEAD marker.
	EnvHashPrefix = "ZSH_THEME_GIT_PROMPT_HASH_PREFIX"

	DefaultWatchDebounce = 350 * time.Millisecond
)

type Config struct {
	Backend       string         `yaml:"backend"`
	Format        string         `yaml:"format"`
	Color         string         `yaml:"color"`
	Shell         string         `yaml:"shell"`
	HashPrefix    string         `yaml:"hash_prefix"`
	HashLength    int            `yaml:"hash_length"`
	WatchDebounce time.Duration  `yaml:"watch_debounce"`
	Symbols       render.Symbols `yaml:"symbols"`
}

func Default() Config {
	return Config{
		Backend:       git.BackendCLI,
		Format:        string(render.FormatRaw),
		Color:         string(render.ColorAuto),
		Shell:         string(render.ShellNone),
		WatchDebounce: DefaultWatchDebounce,
		Symbols:       render.DefaultSymbols(),
	}
}

// DefaultPath is $XDG_CONFIG_HOME/gitstatus/config.yaml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "gitstatus", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "gitstatus", "config.yaml"), nil
}

// Load reads the config file. flagPath and $GITSTATUS_CONFIG name a file
// that must exist; the default location is optional.
func Load(flagPath string) (Config, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		return LoadFromFile(path)
	}

	path, err := DefaultPath()
	if err != nil {
		return Config{}, err
	}
	cfg, err := LoadFromFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		applyEnv(&cfg)
		return cfg, nil
	}
	return cfg, err
}

// LoadFromFile parses a YAML config file on top of Default.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if prefix, ok := os.LookupEnv(EnvHashPrefix); ok {
		cfg.HashPrefix = prefix
	}
}

func (c Config) Validate() error {
	if _, err := git.NewSource(c.Backend, ""); err != nil {
		return err
	}
	if _, err := render.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := render.ParseColorMode(c.Color); err != nil {
		return err
	}
	if _, err := render.ParseShell(c.Shell); err != nil {
		return err
	}
	if c.HashLength < 0 {
		return fmt.Errorf("hash_length must not be negative, got %d", c.HashLength)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative, got %s", c.WatchDebounce)
	}
	return nil
}
