package typechecker

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"startyping/checker-go/pkg/types"
)

// Bindings is a lexical scope mapping names to their currently known types.
type Bindings struct {
	parent      *Bindings
	symbols     map[string]types.Ty
	annotations map[string]types.Ty
	approximate map[string]struct{}
	wildcard    bool
}

// NewBindings creates a scope with an optional parent.
func NewBindings(parent *Bindings) *Bindings {
	return &Bindings{
		parent:      parent,
		symbols:     make(map[string]types.Ty),
		annotations: make(map[string]types.Ty),
		approximate: make(map[string]struct{}),
	}
}

// Declare binds name in this scope. Rebinding overwrites.
func (b *Bindings) Declare(name string, ty types.Ty) {
	b.symbols[name] = ty
	delete(b.approximate, name)
}

// DeclareApprox binds name to a type the checker could not derive precisely.
func (b *Bindings) DeclareApprox(name string, ty types.Ty) {
	b.symbols[name] = ty
	b.approximate[name] = struct{}{}
}

// Retype replaces the type of name in this scope, keeping its approximation
// flag. A name bound only in an ancestor is shadowed.
func (b *Bindings) Retype(name string, ty types.Ty) {
	if _, approx, ok := b.resolve(name); ok && approx {
		b.approximate[name] = struct{}{}
	}
	b.symbols[name] = ty
}

// Annotate records a declared type that later assignments must respect.
func (b *Bindings) Annotate(name string, ty types.Ty) {
	b.annotations[name] = ty
}

// Annotation returns the declared type of name in this scope, if any.
func (b *Bindings) Annotation(name string) (types.Ty, bool) {
	ty, ok := b.annotations[name]
	return ty, ok
}

// MarkWildcard makes unknown names resolve to Any, for scopes that pulled in
// an unresolved wildcard load.
func (b *Bindings) MarkWildcard() { b.wildcard = true }

// Lookup returns the type of name, Any if it may come from a wildcard load,
// or a NotInScope error.
func (b *Bindings) Lookup(name string) (types.Ty, error) {
	if ty, _, ok := b.resolve(name); ok {
		return ty, nil
	}
	if b.Wildcard() {
		return types.Any(), nil
	}
	err := types.NotInScope(name)
	return types.Any(), &err
}

// Has reports whether name is declared in this scope or an ancestor.
func (b *Bindings) Has(name string) bool {
	_, _, ok := b.resolve(name)
	return ok
}

// HasLocal reports whether name is declared directly in this scope.
func (b *Bindings) HasLocal(name string) bool {
	_, ok := b.symbols[name]
	return ok
}

// Wildcard reports whether this scope or an ancestor has an unresolved wildcard load.
func (b *Bindings) Wildcard() bool {
	for s := b; s != nil; s = s.parent {
		if s.wildcard {
			return true
		}
	}
	return false
}

func (b *Bindings) resolve(name string) (types.Ty, bool, bool) {
	for s := b; s != nil; s = s.parent {
		if ty, ok := s.symbols[name]; ok {
			_, approx := s.approximate[name]
			return ty, approx, true
		}
	}
	return types.Ty{}, false, false
}

// Names lists the names declared directly in this scope, sorted.
func (b *Bindings) Names() []string {
	names := maps.Keys(b.symbols)
	slices.Sort(names)
	return names
}

// Extend returns a child scope.
func (b *Bindings) Extend() *Bindings {
	return NewBindings(b)
}

// Clone copies this scope's own entries; the parent chain is shared.
func (b *Bindings) Clone() *Bindings {
	clone := NewBindings(b.parent)
	maps.Copy(clone.symbols, b.symbols)
	maps.Copy(clone.annotations, b.annotations)
	maps.Copy(clone.approximate, b.approximate)
	clone.wildcard = b.wildcard
	return clone
}

// MergeFrom replaces this scope's entries with the per-name union of the
// given scopes. A name absent from a branch contributes Never.
func (b *Bindings) MergeFrom(branches ...*Bindings) {
	if len(branches) == 0 {
		return
	}
	merged := make(map[string]types.Ty)
	approx := make(map[string]struct{})
	for _, branch := range branches {
		for name, ty := range branch.symbols {
			merged[name] = types.Union(merged[name], ty)
			if _, ok := branch.approximate[name]; ok {
				approx[name] = struct{}{}
			}
		}
		maps.Copy(b.annotations, branch.annotations)
		if branch.wildcard {
			b.wildcard = true
		}
	}
	b.symbols = merged
	b.approximate = approx
}
