package typechecker

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"startyping/checker-go/pkg/driver"
	"startyping/checker-go/pkg/types"
)

// ProgramOptions configure a ProgramChecker.
type ProgramOptions struct {
	Options
	// Jobs bounds concurrent module checks within one dependency level;
	// zero means runtime.NumCPU().
	Jobs int
	// Cache, when set, supplies and stores module results across runs.
	Cache InterfaceCache
	// OracleKey fingerprints the oracle's fact sources. Cached results
	// recorded under a different key are rechecked.
	OracleKey string
}

// ProgramChecker coordinates typechecking across dependency-ordered modules.
type ProgramChecker struct {
	opts ProgramOptions
}

// ModuleResult is the outcome for one module of a program check.
type ModuleResult struct {
	Module *driver.Module
	Result Result
	// Cached is set when the result came from the cache; Types and Globals
	// are then nil.
	Cached bool
}

// CheckResult aggregates diagnostics and published interfaces for a program check.
type CheckResult struct {
	Diagnostics []ModuleDiagnostic
	Interfaces  map[string]*Interface
	Modules     []ModuleResult
}

// NewProgramChecker constructs a session that can typecheck entire programs.
func NewProgramChecker(opts ProgramOptions) *ProgramChecker {
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	return &ProgramChecker{opts: opts}
}

// Check walks every module in the supplied program. Modules of one level
// run concurrently; a level's interfaces are published only after all of
// its checks finish, so every check sees complete interfaces of the modules
// it loads. Cancelling ctx abandons the remaining levels.
func (pc *ProgramChecker) Check(ctx context.Context, program *driver.Program) (CheckResult, error) {
	if program == nil {
		return CheckResult{}, fmt.Errorf("typechecker: program is nil")
	}
	levels, err := dependencyLevels(program.Modules)
	if err != nil {
		return CheckResult{}, err
	}
	published := make(map[string]*Interface, len(program.Modules))
	result := CheckResult{Interfaces: published}

	for _, level := range levels {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		outcomes := pc.checkLevel(ctx, level, published)
		if err := ctx.Err(); err != nil {
			return result, err
		}
		for _, outcome := range outcomes {
			if outcome.err != nil {
				return result, outcome.err
			}
			mod := outcome.module
			published[mod.Module.ID] = mod.Result.Interface
			result.Modules = append(result.Modules, mod)
			for _, typingErr := range mod.Result.Errors {
				result.Diagnostics = append(result.Diagnostics, ModuleDiagnostic{
					Module: mod.Module.ID,
					Error:  typingErr,
					Source: hintFor(mod.Module.Path, typingErr),
				})
			}
			if pc.opts.Cache != nil && !mod.Cached && outcome.key != "" {
				entry := CacheEntry{
					Key:            outcome.key,
					Interface:      mod.Result.Interface,
					Errors:         mod.Result.Errors,
					Approximations: mod.Result.Approximations,
				}
				if err := pc.opts.Cache.Put(mod.Module.ID, entry); err != nil {
					return result, err
				}
			}
		}
	}
	return result, nil
}

type levelOutcome struct {
	module ModuleResult
	key    string
	err    error
}

// checkLevel reads published but never writes it; the caller publishes
// after the WaitGroup barrier.
func (pc *ProgramChecker) checkLevel(ctx context.Context, level []*driver.Module, published map[string]*Interface) []levelOutcome {
	outcomes := make([]levelOutcome, len(level))
	sem := make(chan struct{}, pc.opts.Jobs)
	var wg sync.WaitGroup
	for i, mod := range level {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()
			outcomes[i] = pc.checkModule(mod, published)
		}()
	}
	wg.Wait()
	return outcomes
}

func (pc *ProgramChecker) checkModule(mod *driver.Module, published map[string]*Interface) levelOutcome {
	loads := make(map[string]*Interface)
	for _, raw := range mod.AST.Loads() {
		if iface, ok := published[driver.NormalizeID(raw)]; ok {
			loads[raw] = iface
		}
	}
	var key string
	if pc.opts.Cache != nil {
		k, err := cacheKey(mod.Hash, pc.opts.Mode, pc.opts.OracleKey, loads)
		if err != nil {
			return levelOutcome{err: err}
		}
		key = k
		if entry, ok := pc.opts.Cache.Get(mod.ID, key); ok {
			return levelOutcome{key: key, module: ModuleResult{
				Module: mod,
				Result: Result{Interface: entry.Interface, Errors: entry.Errors, Approximations: entry.Approximations},
				Cached: true,
			}}
		}
	}
	res, err := New(pc.opts.Options).CheckModule(mod.AST, loads)
	if err != nil {
		return levelOutcome{err: fmt.Errorf("typechecker: module %s: %w", mod.ID, err)}
	}
	return levelOutcome{key: key, module: ModuleResult{Module: mod, Result: res}}
}

// dependencyLevels groups modules so that every module's in-program loads
// sit in an earlier level. Loads of modules outside the program are ignored.
func dependencyLevels(modules []*driver.Module) ([][]*driver.Module, error) {
	byID := make(map[string]*driver.Module, len(modules))
	for _, mod := range modules {
		if mod == nil || mod.AST == nil {
			return nil, fmt.Errorf("typechecker: program contains a nil module")
		}
		if _, dup := byID[mod.ID]; dup {
			return nil, fmt.Errorf("typechecker: duplicate module %s", mod.ID)
		}
		byID[mod.ID] = mod
	}
	depth := make(map[string]int, len(modules))
	visiting := make(map[string]bool)
	var visit func(id string) (int, error)
	visit = func(id string) (int, error) {
		if d, ok := depth[id]; ok {
			return d, nil
		}
		if visiting[id] {
			return 0, fmt.Errorf("typechecker: load cycle detected at module %s", id)
		}
		visiting[id] = true
		defer delete(visiting, id)
		d := 0
		for _, dep := range byID[id].Loads {
			if _, ok := byID[dep]; !ok {
				continue
			}
			depDepth, err := visit(dep)
			if err != nil {
				return 0, err
			}
			d = max(d, depDepth+1)
		}
		depth[id] = d
		return d, nil
	}
	var levels [][]*driver.Module
	for _, mod := range modules {
		d, err := visit(mod.ID)
		if err != nil {
			return nil, err
		}
		for len(levels) <= d {
			levels = append(levels, nil)
		}
	}
	for _, mod := range modules {
		d := depth[mod.ID]
		levels[d] = append(levels[d], mod)
	}
	return levels, nil
}

// Errors flattens the typing errors of a check in diagnostic order.
func (r CheckResult) Errors() []types.TypingError {
	out := make([]types.TypingError, 0, len(r.Diagnostics))
	for _, diag := range r.Diagnostics {
		out = append(out, diag.Error)
	}
	return out
}
