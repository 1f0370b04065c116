package typechecker

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"startyping/checker-go/pkg/types"
)

// CacheEntry is what a previous run learned about one module.
type CacheEntry struct {
	Key            string                `json:"key"`
	Interface      *Interface            `json:"interface"`
	Errors         []types.TypingError   `json:"errors"`
	Approximations []types.Approximation `json:"approximations,omitempty"`
}

// InterfaceCache persists module results across runs. Entries are looked up
// by module id and are valid only when their key matches.
type InterfaceCache interface {
	Get(module, key string) (CacheEntry, bool)
	Put(module string, entry CacheEntry) error
}

// DirCache stores one JSON file per module under a directory.
type DirCache struct {
	dir string
}

func NewDirCache(dir string) *DirCache {
	return &DirCache{dir: dir}
}

func (d *DirCache) path(module string) string {
	name := strings.NewReplacer("/", "__", ":", "_").Replace(module)
	return filepath.Join(d.dir, name+".json")
}

// Get returns the stored entry when its key matches. Unreadable or stale
// files are treated as misses.
func (d *DirCache) Get(module, key string) (CacheEntry, bool) {
	data, err := os.ReadFile(d.path(module))
	if err != nil {
		return CacheEntry{}, false
	}
	data, err = hujson.Standardize(data)
	if err != nil {
		return CacheEntry{}, false
	}
	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return CacheEntry{}, false
	}
	if entry.Key != key || entry.Interface == nil {
		return CacheEntry{}, false
	}
	return entry, true
}

func (d *DirCache) Put(module string, entry CacheEntry) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("typechecker: create cache dir: %w", err)
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("typechecker: encode cache entry for %s: %w", module, err)
	}
	if err := os.WriteFile(d.path(module), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("typechecker: write cache entry for %s: %w", module, err)
	}
	return nil
}

// Clear removes every cached entry.
func (d *DirCache) Clear() error {
	err := os.RemoveAll(d.dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("typechecker: clear cache: %w", err)
	}
	return nil
}

// cacheKey covers the module source, the interfaces it loads, the mode and
// the oracle fingerprint.
func cacheKey(sourceHash string, mode fmt.Stringer, oracleKey string, loads map[string]*Interface) (string, error) {
	h := sha256.New()
	fmt.Fprintf(h, "source=%s\nmode=%s\noracle=%s\n", sourceHash, mode, oracleKey)
	names := maps.Keys(loads)
	slices.Sort(names)
	for _, name := range names {
		data, err := json.Marshal(loads[name])
		if err != nil {
			return "", fmt.Errorf("typechecker: hash interface of %s: %w", name, err)
		}
		fmt.Fprintf(h, "load=%s\n%s\n", name, data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
