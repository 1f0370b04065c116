package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"

	"startyping/checker-go/pkg/ast"
)

// Extension is the suffix of parser output files. A module "pkg/defs.bzl"
// lives in "pkg/defs.bzl.json" under the loader root.
const Extension = ".json"

// Module is one parsed source file.
type Module struct {
	ID    string
	Path  string
	AST   *ast.Module
	Loads []string
	// Hash is the hex SHA-256 of the file contents.
	Hash string
}

// Program contains the entry module and its dependencies, dependencies first.
type Program struct {
	Entry   *Module
	Modules []*Module
	// Unresolved lists loaded module ids with no file under the root.
	Unresolved []string
}

// Loader reads parser output from a directory tree.
type Loader struct {
	root string
}

// NewLoader constructs a loader rooted at dir.
func NewLoader(dir string) (*Loader, error) {
	if dir == "" {
		return nil, fmt.Errorf("loader: empty root")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("loader: stat root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("loader: root %s is not a directory", abs)
	}
	return &Loader{root: abs}, nil
}

func (l *Loader) Root() string { return l.root }

// NormalizeID maps the spellings a load statement may use onto a module id:
// "//pkg:defs.bzl", "//pkg/defs.bzl" and "./pkg/defs.bzl" are all "pkg/defs.bzl".
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "//")
	for strings.HasPrefix(id, "./") {
		id = strings.TrimPrefix(id, "./")
	}
	id = strings.TrimPrefix(id, ":")
	id = strings.ReplaceAll(id, ":", "/")
	return filepath.ToSlash(filepath.Clean(id))
}

// Load reads the entry module and everything it transitively loads.
func (l *Loader) Load(entry string) (*Program, error) {
	if entry == "" {
		return nil, fmt.Errorf("loader: empty entry module")
	}
	state := newLoadState(l)
	mod, err := state.load(NormalizeID(entry))
	if err != nil {
		return nil, err
	}
	if mod == nil {
		return nil, fmt.Errorf("loader: entry module %s not found", entry)
	}
	return state.program(mod), nil
}

// LoadAll reads every module under the root. The entry is left nil.
func (l *Loader) LoadAll() (*Program, error) {
	var ids []string
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, Extension) {
			return nil
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		ids = append(ids, strings.TrimSuffix(filepath.ToSlash(rel), Extension))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loader: scan %s: %w", l.root, err)
	}
	slices.Sort(ids)
	state := newLoadState(l)
	for _, id := range ids {
		if _, err := state.load(id); err != nil {
			return nil, err
		}
	}
	return state.program(nil), nil
}

type loadState struct {
	loader     *Loader
	loaded     map[string]*Module
	inProgress map[string]bool
	missing    map[string]struct{}
	ordered    []*Module
}

func newLoadState(l *Loader) *loadState {
	return &loadState{
		loader:     l,
		loaded:     make(map[string]*Module),
		inProgress: make(map[string]bool),
		missing:    make(map[string]struct{}),
	}
}

// load returns nil without error when the module has no file.
func (s *loadState) load(id string) (*Module, error) {
	if mod, ok := s.loaded[id]; ok {
		return mod, nil
	}
	if _, ok := s.missing[id]; ok {
		return nil, nil
	}
	if s.inProgress[id] {
		return nil, fmt.Errorf("loader: load cycle detected at module %s", id)
	}
	mod, err := s.loader.readModule(id)
	if errors.Is(err, fs.ErrNotExist) {
		s.missing[id] = struct{}{}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.inProgress[id] = true
	defer delete(s.inProgress, id)

	for _, dep := range mod.Loads {
		if dep == id {
			return nil, fmt.Errorf("loader: module %s loads itself", id)
		}
		if _, err := s.load(dep); err != nil {
			return nil, err
		}
	}
	s.loaded[id] = mod
	s.ordered = append(s.ordered, mod)
	return mod, nil
}

func (s *loadState) program(entry *Module) *Program {
	unresolved := make([]string, 0, len(s.missing))
	for id := range s.missing {
		unresolved = append(unresolved, id)
	}
	slices.Sort(unresolved)
	return &Program{Entry: entry, Modules: s.ordered, Unresolved: unresolved}
}

func (l *Loader) readModule(id string) (*Module, error) {
	path := filepath.Join(l.root, filepath.FromSlash(id)+Extension)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	module, err := ast.DecodeModule(data)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	loads := make([]string, 0)
	for _, raw := range module.Loads() {
		normalized := NormalizeID(raw)
		if !slices.Contains(loads, normalized) {
			loads = append(loads, normalized)
		}
	}
	return &Module{
		ID:    id,
		Path:  path,
		AST:   module,
		Loads: loads,
		Hash:  hex.EncodeToString(sum[:]),
	}, nil
}
