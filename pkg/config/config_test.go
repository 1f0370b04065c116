package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"startyping/checker-go/pkg/oracle"
)

func writeConfig(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFile)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
mode: compiler
fatal: true
jobs: 3
docs:
  - docs/rules.yml
cache_dir: .starcheck-cache
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &Config{
		Path:     path,
		Mode:     oracle.ModeCompiler,
		Fatal:    true,
		Jobs:     3,
		Docs:     []string{filepath.Join(dir, "docs", "rules.yml")},
		CacheDir: filepath.Join(dir, ".starcheck-cache"),
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeEmptyUsesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeValidation(t *testing.T) {
	_, err := Decode(strings.NewReader(`
mode: strict
jobs: 0
docs:
  - ""
  - notes.txt
`))
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validation.Issues) != 4 {
		t.Fatalf("expected four issues, got %v", validation.Issues)
	}
	if !strings.HasPrefix(err.Error(), "config validation failed:") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	if _, err := Decode(strings.NewReader("modee: lint\n")); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), DefaultFile))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Mode != oracle.ModeLint || cfg.Path != "" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestOracleChainsDocsBeforeStandard(t *testing.T) {
	dir := t.TempDir()
	docsPath := filepath.Join(dir, "rules.yml")
	docs := `
functions:
  - name: cc_library
    params:
      - name: name
        type: str
    return: None
`
	if err := os.WriteFile(docsPath, []byte(docs), 0o644); err != nil {
		t.Fatalf("write docs: %v", err)
	}
	cfg := Default()
	cfg.Docs = []string{docsPath}
	o, err := cfg.Oracle()
	if err != nil {
		t.Fatalf("Oracle: %v", err)
	}
	if _, status := o.Signature("cc_library"); status != oracle.Known {
		t.Fatalf("expected docs function to be known")
	}
	if _, status := o.Signature("len"); status != oracle.Known {
		t.Fatalf("expected standard builtins to remain known")
	}

	cfg.Docs = []string{filepath.Join(dir, "absent.yml")}
	if _, err := cfg.Oracle(); err == nil {
		t.Fatalf("expected error for missing docs file")
	}
}

func TestOracleKeyFollowsDocsContents(t *testing.T) {
	dir := t.TempDir()
	docsPath := filepath.Join(dir, "rules.yml")
	write := func(contents string) {
		t.Helper()
		if err := os.WriteFile(docsPath, []byte(contents), 0o644); err != nil {
			t.Fatalf("write docs: %v", err)
		}
	}
	write("functions: []\n")

	cfg := Default()
	bare, err := cfg.OracleKey()
	if err != nil {
		t.Fatalf("OracleKey: %v", err)
	}
	cfg.Docs = []string{docsPath}
	empty, err := cfg.OracleKey()
	if err != nil {
		t.Fatalf("OracleKey: %v", err)
	}
	if empty == bare {
		t.Fatalf("adding a docs file should change the key")
	}
	again, _ := cfg.OracleKey()
	if again != empty {
		t.Fatalf("key should be stable for unchanged docs")
	}

	write("functions:\n  - name: glob\n    return: list[str]\n")
	edited, err := cfg.OracleKey()
	if err != nil {
		t.Fatalf("OracleKey: %v", err)
	}
	if edited == empty {
		t.Fatalf("editing a docs file should change the key")
	}

	cfg.Docs = []string{filepath.Join(dir, "absent.yml")}
	if _, err := cfg.OracleKey(); err == nil {
		t.Fatalf("expected error for missing docs file")
	}
}
