package edn

import (
	"fmt"
	"strings"

	"github.com/cirru/cirru-edn-go/cirru"
)

// The four error kinds of the package. ParseError wraps the tokenizer's
// own diagnostic untouched; StructureError and ValueError locate a fault
// inside the tree with a value-position path and a one-line preview of
// the offending node; DeserializationError reports a native shape the
// bridge could not satisfy. All parsing is fail-fast: the first error
// aborts, nothing is aggregated or recovered.

// ParseError reports that the underlying tokenizer rejected the text.
type ParseError struct {
	// Original is the tokenizer's position-annotated message, verbatim.
	Original string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Parse error:\n%s", e.Original)
}

// StructureError reports an arity or shape violation: wrong child count,
// a non-pair map entry, an unknown operator.
type StructureError struct {
	Message string
	// Path holds the value position taken at each nesting level to reach
	// the offending node; comment forms do not count as positions.
	Path []int
	// NodePreview is a one-line rendering of the offending node.
	NodePreview string
}

func (e *StructureError) Error() string {
	return formatLocated("Structure error", e.Message, e.Path, e.NodePreview)
}

// ValueError reports a leaf whose content does not satisfy the literal
// grammar expected at its position.
type ValueError struct {
	Message     string
	Path        []int
	NodePreview string
}

func (e *ValueError) Error() string {
	return formatLocated("Value error", e.Message, e.Path, e.NodePreview)
}

// DeserializationError reports that a native value's required shape was
// not found during bridge conversion.
type DeserializationError struct {
	Message string
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("Deserialization error: %s", e.Message)
}

func formatLocated(label, message string, path []int, preview string) string {
	var sb strings.Builder
	sb.WriteString(label)
	if len(path) > 0 {
		fmt.Fprintf(&sb, " at %v", path)
	}
	sb.WriteString(": ")
	sb.WriteString(message)
	if preview != "" {
		sb.WriteString("\n  Node: ")
		sb.WriteString(preview)
	}
	return sb.String()
}

func structureErr(path []int, node *cirru.Node, format string, args ...any) *StructureError {
	return &StructureError{
		Message:     fmt.Sprintf(format, args...),
		Path:        clonePath(path),
		NodePreview: previewNode(node),
	}
}

func valueErr(path []int, node *cirru.Node, format string, args ...any) *ValueError {
	return &ValueError{
		Message:     fmt.Sprintf(format, args...),
		Path:        clonePath(path),
		NodePreview: previewNode(node),
	}
}

func deserializationErr(format string, args ...any) *DeserializationError {
	return &DeserializationError{Message: fmt.Sprintf(format, args...)}
}

func previewNode(node *cirru.Node) string {
	if node == nil {
		return ""
	}
	return cirru.FormatInline(node)
}

func clonePath(path []int) []int {
	if len(path) == 0 {
		return nil
	}
	out := make([]int, len(path))
	copy(out, path)
	return out
}
