package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"startyping/checker-go/pkg/oracle"
)

// DefaultFile is the configuration file looked up in the module root.
const DefaultFile = "starcheck.yml"

// Config represents the parsed contents of starcheck.yml.
type Config struct {
	// Path is the absolute path the configuration was read from, if any.
	Path     string
	Mode     oracle.Mode
	Fatal    bool
	Jobs     int
	Docs     []string
	CacheDir string
}

type configFile struct {
	Mode     string   `yaml:"mode"`
	Fatal    bool     `yaml:"fatal"`
	Jobs     *int     `yaml:"jobs"`
	Docs     []string `yaml:"docs"`
	CacheDir string   `yaml:"cache_dir"`
}

// ValidationError aggregates configuration validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{Mode: oracle.ModeLint, Jobs: runtime.NumCPU()}
}

// Load parses a configuration file from disk. Relative docs and cache paths
// are resolved against the file's directory.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", absPath, err)
	}
	cfg.Path = absPath
	base := filepath.Dir(absPath)
	for i, doc := range cfg.Docs {
		if !filepath.IsAbs(doc) {
			cfg.Docs[i] = filepath.Join(base, doc)
		}
	}
	if cfg.CacheDir != "" && !filepath.IsAbs(cfg.CacheDir) {
		cfg.CacheDir = filepath.Join(base, cfg.CacheDir)
	}
	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Decode reads YAML configuration, rejecting unknown keys. An empty document
// yields the defaults.
func Decode(r io.Reader) (*Config, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return raw.toConfig()
}

func (raw configFile) toConfig() (*Config, error) {
	cfg := Default()
	var errs ValidationError

	mode, err := oracle.ParseMode(raw.Mode)
	if err != nil {
		errs.Issues = append(errs.Issues, fmt.Sprintf("mode must be lint or compiler, got %q", raw.Mode))
	}
	cfg.Mode = mode
	cfg.Fatal = raw.Fatal
	if raw.Jobs != nil {
		if *raw.Jobs < 1 {
			errs.Issues = append(errs.Issues, fmt.Sprintf("jobs must be at least 1, got %d", *raw.Jobs))
		}
		cfg.Jobs = *raw.Jobs
	}
	for i, doc := range raw.Docs {
		if strings.TrimSpace(doc) == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("docs[%d] must be a non-empty path", i))
			continue
		}
		switch strings.ToLower(filepath.Ext(doc)) {
		case ".yml", ".yaml", ".json", ".hujson":
		default:
			errs.Issues = append(errs.Issues, fmt.Sprintf("docs[%d] %q must be a .yml, .yaml, .json or .hujson file", i, doc))
		}
		cfg.Docs = append(cfg.Docs, doc)
	}
	cfg.CacheDir = strings.TrimSpace(raw.CacheDir)

	if len(errs.Issues) > 0 {
		return nil, &errs
	}
	return cfg, nil
}

// Oracle builds the oracle the configuration describes: every docs file in
// order, then the standard oracle.
func (c *Config) Oracle() (oracle.TypingOracle, error) {
	var seq oracle.Seq
	for _, path := range c.Docs {
		docs, err := oracle.LoadDocs(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		seq = append(seq, docs)
	}
	return append(seq, oracle.NewStandard()), nil
}

// OracleKey fingerprints the docs files layered over the standard oracle.
// It changes when the docs list or any docs file's contents change.
func (c *Config) OracleKey() (string, error) {
	h := sha256.New()
	for _, path := range c.Docs {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("config: read docs %s: %w", path, err)
		}
		fmt.Fprintf(h, "docs=%s\n%d\n", path, len(data))
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
