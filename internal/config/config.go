package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is read from the working directory when no config path is
	// given and PROMPTKIT_CONFIG is unset.
	DefaultFile = ".promptkit.yaml"
	// EnvFile names the environment variable that points at a config file.
	EnvFile = "PROMPTKIT_CONFIG"
)

// Config holds CLI defaults. Flags override every field.
type Config struct {
	TemplateDir string            `yaml:"template_dir"`
	Vars        []string          `yaml:"vars"`
	Engine      string            `yaml:"engine"`
	Sanitize    bool              `yaml:"sanitize"`
	DB          string            `yaml:"db"`
	HTTPTimeout time.Duration     `yaml:"http_timeout"`
	Set         map[string]string `yaml:"set"`

	// Path is the file the config was read from, empty when none was found.
	Path string `yaml:"-"`
}

// Resolve returns the config path to use: explicit wins, then the
// environment, then DefaultFile when it exists. An empty result means no
// config file.
func Resolve(explicit string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(EnvFile)); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

// Load reads the config at path. An empty path yields the zero Config.
// Relative template_dir and vars entries are resolved against the config
// file's directory.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: %s not found: %w", path, err)
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Path = path

	base := filepath.Dir(path)
	if cfg.TemplateDir != "" && !filepath.IsAbs(cfg.TemplateDir) {
		cfg.TemplateDir = filepath.Join(base, cfg.TemplateDir)
	}
	for i, v := range cfg.Vars {
		if v != "" && !filepath.IsAbs(v) {
			cfg.Vars[i] = filepath.Join(base, v)
		}
	}
	if cfg.DB != "" && !filepath.IsAbs(cfg.DB) {
		cfg.DB = filepath.Join(base, cfg.DB)
	}
	return cfg, nil
}

// Parse decodes a YAML config document. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}
	if cfg.HTTPTimeout < 0 {
		return Config{}, errors.New("http_timeout must not be negative")
	}
	return cfg, nil
}

// Assignments returns Set as sorted "path=value" strings suitable for
// vars.ApplyAssignments.
func (c Config) Assignments() []string {
	if len(c.Set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.Set))
	for k := range c.Set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+c.Set[k])
	}
	return out
}
