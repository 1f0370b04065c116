package typechecker

import (
	"encoding/json"
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"startyping/checker-go/pkg/types"
)

// Interface is the published export table of a checked module. It is never
// mutated after construction and may be shared across goroutines.
type Interface struct {
	exports map[string]types.Ty
	names   []string
}

// NewInterface snapshots exports.
func NewInterface(exports map[string]types.Ty) *Interface {
	iface := &Interface{exports: make(map[string]types.Ty, len(exports))}
	maps.Copy(iface.exports, exports)
	iface.names = maps.Keys(iface.exports)
	slices.Sort(iface.names)
	return iface
}

// InterfaceOf snapshots the names of b accepted by exported.
func InterfaceOf(b *Bindings, exported func(name string) bool) *Interface {
	out := make(map[string]types.Ty)
	for _, name := range b.Names() {
		if exported != nil && !exported(name) {
			continue
		}
		out[name] = b.symbols[name]
	}
	return NewInterface(out)
}

func (i *Interface) Get(name string) (types.Ty, bool) {
	if i == nil {
		return types.Ty{}, false
	}
	ty, ok := i.exports[name]
	return ty, ok
}

// Names lists exported names in sorted order.
func (i *Interface) Names() []string {
	if i == nil {
		return nil
	}
	return append([]string(nil), i.names...)
}

func (i *Interface) Len() int {
	if i == nil {
		return 0
	}
	return len(i.names)
}

// Equal compares exported names and types.
func (i *Interface) Equal(other *Interface) bool {
	if i.Len() != other.Len() {
		return false
	}
	for _, name := range i.Names() {
		theirs, ok := other.Get(name)
		if !ok || !theirs.Equal(i.exports[name]) {
			return false
		}
	}
	return true
}

type interfaceJSON struct {
	Exports map[string]types.Ty `json:"exports"`
}

// MarshalJSON writes {"exports": {...}}; map keys come out sorted, so equal
// interfaces encode to identical bytes.
func (i *Interface) MarshalJSON() ([]byte, error) {
	exports := i.exports
	if exports == nil {
		exports = map[string]types.Ty{}
	}
	return json.Marshal(interfaceJSON{Exports: exports})
}

func (i *Interface) UnmarshalJSON(data []byte) error {
	var raw interfaceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("typechecker: decode interface: %w", err)
	}
	*i = *NewInterface(raw.Exports)
	return nil
}
