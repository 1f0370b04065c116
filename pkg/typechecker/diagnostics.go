package typechecker

import (
	"fmt"
	"strings"

	"startyping/checker-go/pkg/types"
)

// ModuleDiagnostic ties a typing error to the module that produced it.
type ModuleDiagnostic struct {
	Module string            `json:"module"`
	Error  types.TypingError `json:"error"`
	Source SourceHint        `json:"source"`
}

// SourceHint provides a best-effort reference to the originating file.
type SourceHint struct {
	Path      string `json:"path,omitempty"`
	Line      int    `json:"line,omitempty"`
	Column    int    `json:"column,omitempty"`
	EndLine   int    `json:"endLine,omitempty"`
	EndColumn int    `json:"endColumn,omitempty"`
}

func hintFor(path string, err types.TypingError) SourceHint {
	return SourceHint{
		Path:      path,
		Line:      err.Span.Start.Line,
		Column:    err.Span.Start.Column,
		EndLine:   err.Span.End.Line,
		EndColumn: err.Span.End.Column,
	}
}

// DescribeModuleDiagnostic formats a module diagnostic for human-readable output.
func DescribeModuleDiagnostic(diag ModuleDiagnostic) string {
	message := strings.TrimSpace(diag.Error.Message)
	if diag.Error.Kind != 0 {
		message = fmt.Sprintf("%s: %s", diag.Error.Kind, message)
	}
	if location := formatSourceHint(diag.Source); location != "" {
		return fmt.Sprintf("typechecker: %s %s", location, message)
	}
	if diag.Module != "" {
		return fmt.Sprintf("typechecker: %s: %s", diag.Module, message)
	}
	return "typechecker: " + message
}

func formatSourceHint(hint SourceHint) string {
	path := strings.TrimSpace(hint.Path)
	switch {
	case path != "" && hint.Line > 0 && hint.Column > 0:
		return fmt.Sprintf("%s:%d:%d", path, hint.Line, hint.Column)
	case path != "" && hint.Line > 0:
		return fmt.Sprintf("%s:%d", path, hint.Line)
	case path != "":
		return path
	case hint.Line > 0 && hint.Column > 0:
		return fmt.Sprintf("line %d, column %d", hint.Line, hint.Column)
	case hint.Line > 0:
		return fmt.Sprintf("line %d", hint.Line)
	default:
		return ""
	}
}
