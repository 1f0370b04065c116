package ast

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// At is a test convenience that stamps a single-line span on node and returns it.
func At[T Node](node T, line, column int) T {
	SetSpan(node, Span{
		Start: Position{Line: line, Column: column},
		End:   Position{Line: line, Column: column},
	})
	return node
}

// ZeroSpan returns an empty span value.
func ZeroSpan() Span {
	return Span{}
}
