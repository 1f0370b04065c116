package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

const libModule = `
{
  "type": "Module",
  "body": [
    {
      "type": "AssignmentStatement",
      "left": {"type": "Identifier", "name": "VERSION"},
      "right": {"type": "StringLiteral", "value": "1.0"},
    },
  ],
}`

const appModule = `
{
  // parser output may carry comments
  "type": "Module",
  "body": [
    {"type": "LoadStatement", "module": "//lib:defs.bzl", "symbols": [{"local": "VERSION"}]},
    {"type": "LoadStatement", "module": "//lib/defs.bzl", "symbols": [{"local": "V", "name": "VERSION"}]},
    {"type": "LoadStatement", "module": "//third_party:missing.bzl", "symbols": [{"local": "gone"}]},
    {
      "type": "AssignmentStatement",
      "left": {"type": "Identifier", "name": "label"},
      "right": {"type": "Identifier", "name": "VERSION"},
    },
  ],
}`

func TestNormalizeID(t *testing.T) {
	cases := map[string]string{
		"//pkg:defs.bzl":   "pkg/defs.bzl",
		"//pkg/defs.bzl":   "pkg/defs.bzl",
		"./pkg/defs.bzl":   "pkg/defs.bzl",
		":defs.bzl":        "defs.bzl",
		" //a/b:c/d.bzl ":  "a/b/c/d.bzl",
		"pkg/../other.bzl": "other.bzl",
	}
	for input, want := range cases {
		if got := NormalizeID(input); got != want {
			t.Fatalf("NormalizeID(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestLoaderLoadsDependenciesFirst(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lib", "defs.bzl.json"), libModule)
	writeFile(t, filepath.Join(root, "app.bzl.json"), appModule)

	loader, err := NewLoader(root)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	program, err := loader.Load("//:app.bzl")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if program.Entry == nil || program.Entry.ID != "app.bzl" {
		t.Fatalf("unexpected entry %#v", program.Entry)
	}
	var ids []string
	for _, mod := range program.Modules {
		ids = append(ids, mod.ID)
	}
	if diff := cmp.Diff([]string{"lib/defs.bzl", "app.bzl"}, ids); diff != "" {
		t.Fatalf("module order mismatch (-want +got):\n%s", diff)
	}
	wantLoads := []string{"lib/defs.bzl", "third_party/missing.bzl"}
	if diff := cmp.Diff(wantLoads, program.Entry.Loads); diff != "" {
		t.Fatalf("normalized loads mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"third_party/missing.bzl"}, program.Unresolved); diff != "" {
		t.Fatalf("unresolved mismatch (-want +got):\n%s", diff)
	}
	if len(program.Entry.Hash) != 64 {
		t.Fatalf("expected hex sha256 hash, got %q", program.Entry.Hash)
	}
}

func TestLoaderLoadAll(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lib", "defs.bzl.json"), libModule)
	writeFile(t, filepath.Join(root, "app.bzl.json"), appModule)
	writeFile(t, filepath.Join(root, "README.md"), "not a module")

	loader, err := NewLoader(root)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	program, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll returned error: %v", err)
	}
	if program.Entry != nil {
		t.Fatalf("expected no entry for LoadAll")
	}
	if len(program.Modules) != 2 || program.Modules[0].ID != "lib/defs.bzl" {
		t.Fatalf("unexpected modules %#v", program.Modules)
	}
}

func TestLoaderDetectsCycles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.bzl.json"), `{"type": "Module", "body": [{"type": "LoadStatement", "module": ":b.bzl", "symbols": [{"local": "x"}]}]}`)
	writeFile(t, filepath.Join(root, "b.bzl.json"), `{"type": "Module", "body": [{"type": "LoadStatement", "module": ":a.bzl", "symbols": [{"local": "y"}]}]}`)

	loader, err := NewLoader(root)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	_, err = loader.Load("a.bzl")
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoaderRejectsSelfLoad(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.bzl.json"), `{"type": "Module", "body": [{"type": "LoadStatement", "module": ":a.bzl", "symbols": [{"local": "x"}]}]}`)
	loader, err := NewLoader(root)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	if _, err := loader.Load("a.bzl"); err == nil || !strings.Contains(err.Error(), "loads itself") {
		t.Fatalf("expected self-load error, got %v", err)
	}
}

func TestLoaderErrors(t *testing.T) {
	if _, err := NewLoader(""); err == nil {
		t.Fatalf("expected error for empty root")
	}
	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	writeFile(t, file, "x")
	if _, err := NewLoader(file); err == nil {
		t.Fatalf("expected error for non-directory root")
	}

	writeFile(t, filepath.Join(root, "bad.bzl.json"), `{"type": "Module", "body": [{"type": "Mystery"}]}`)
	loader, err := NewLoader(root)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	if _, err := loader.Load("bad.bzl"); err == nil || !strings.Contains(err.Error(), "Mystery") {
		t.Fatalf("expected decode error, got %v", err)
	}
	if _, err := loader.Load("absent.bzl"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected missing entry error, got %v", err)
	}
}
