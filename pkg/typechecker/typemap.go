package typechecker

import (
	"golang.org/x/exp/slices"

	"startyping/checker-go/pkg/ast"
	"startyping/checker-go/pkg/types"
)

// TypeInfo is what the checker learned about one expression or binding site.
type TypeInfo struct {
	Type        types.Ty
	Approximate bool
}

// TypeMap records per-node types keyed by node identity. It is read-only
// once CheckModule returns.
type TypeMap struct {
	entries map[ast.Node]TypeInfo
}

func newTypeMap() *TypeMap {
	return &TypeMap{entries: make(map[ast.Node]TypeInfo)}
}

func (m *TypeMap) set(node ast.Node, info TypeInfo) {
	if node == nil {
		return
	}
	m.entries[node] = info
}

func (m *TypeMap) Get(node ast.Node) (TypeInfo, bool) {
	if m == nil {
		return TypeInfo{}, false
	}
	info, ok := m.entries[node]
	return info, ok
}

// TypeOf returns the recorded type of node, or Any when nothing was recorded.
func (m *TypeMap) TypeOf(node ast.Node) types.Ty {
	if info, ok := m.Get(node); ok {
		return info.Type
	}
	return types.Any()
}

func (m *TypeMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Nodes returns the recorded nodes ordered by source position.
func (m *TypeMap) Nodes() []ast.Node {
	if m == nil {
		return nil
	}
	nodes := make([]ast.Node, 0, len(m.entries))
	for node := range m.entries {
		nodes = append(nodes, node)
	}
	slices.SortStableFunc(nodes, func(a, b ast.Node) int {
		sa, sb := a.Span(), b.Span()
		if sa.Start.Line != sb.Start.Line {
			return sa.Start.Line - sb.Start.Line
		}
		if sa.Start.Column != sb.Start.Column {
			return sa.Start.Column - sb.Start.Column
		}
		return compareNodeTypes(a, b)
	})
	return nodes
}

func compareNodeTypes(a, b ast.Node) int {
	switch {
	case a.NodeType() < b.NodeType():
		return -1
	case a.NodeType() > b.NodeType():
		return 1
	}
	return 0
}
