package cirru

import (
	"fmt"
	"strings"
)

// WriterOptions configures Format.
type WriterOptions struct {
	// UseInline allows flat sub-expressions to render as `(...)` groups on
	// the parent line even after another group already appeared there.
	UseInline bool
}

// Format renders top-level expressions back to indented Cirru text.
// Output starts and ends with a newline; indentation is two spaces per
// level. The layout is deterministic for a given tree and options.
func Format(nodes []*Node, opts WriterOptions) (string, error) {
	var sb strings.Builder
	sb.WriteByte('\n')
	for _, node := range nodes {
		if node.IsLeaf() {
			return "", fmt.Errorf("cirru: top level expects expressions, got leaf %q", node.Leaf)
		}
		if err := writeExprAt(&sb, node, 0, opts); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// FormatInline renders a node on a single line: leaves as escaped tokens,
// lists as parenthesized groups.
func FormatInline(node *Node) string {
	var sb strings.Builder
	writeInline(&sb, node)
	return sb.String()
}

func writeExprAt(sb *strings.Builder, expr *Node, level int, opts WriterOptions) error {
	if len(expr.Children) == 0 {
		return fmt.Errorf("cirru: cannot write empty expression as a line")
	}
	writeIndent(sb, level)
	if lineNeedsFallback(expr.Children, opts) {
		// a token follows a sub-expression that would have spilled to its
		// own line; parenthesize everything so the order survives reparsing
		for i, child := range expr.Children {
			if i > 0 {
				sb.WriteByte(' ')
			}
			writeInline(sb, child)
		}
		sb.WriteByte('\n')
		return nil
	}
	return writeExprLine(sb, expr.Children, level, opts, true)
}

// writeExprLine writes children continuing the current line, spilling
// complex children to their own indented lines. atStart is true when no
// token has been written on this line yet.
func writeExprLine(sb *strings.Builder, children []*Node, level int, opts WriterOptions, atStart bool) error {
	prevAllLeaves := true
	for i, child := range children {
		if child.IsLeaf() {
			if !atStart {
				sb.WriteByte(' ')
			}
			sb.WriteString(writeToken(child.Leaf))
			atStart = false
			continue
		}
		// a trailing group after nothing but tokens unwraps via ` $ `,
		// but only when it renders entirely on this line: indented lines
		// reattach to the line expression on reparse, never to a `$` group
		if i == len(children)-1 && prevAllLeaves && !atStart && fitsOnLine(child.Children, opts) {
			sb.WriteString(" $ ")
			return writeExprLine(sb, child.Children, level, opts, true)
		}
		if allLeaves(child) && (opts.UseInline || prevAllLeaves) {
			if !atStart {
				sb.WriteByte(' ')
			}
			writeInline(sb, child)
			atStart = false
			prevAllLeaves = false
			continue
		}
		// spill: this and every following child gets its own line
		sb.WriteByte('\n')
		for _, rest := range children[i:] {
			if err := writeExprAt(sb, rest, level+1, opts); err != nil {
				return err
			}
		}
		return nil
	}
	sb.WriteByte('\n')
	return nil
}

// lineNeedsFallback simulates the line layout and reports whether it
// would break: a leaf token landing after a spilled child (a leaf has no
// indented rendering), or a spill before any token was written (the line
// would be blank and the spilled children would reattach elsewhere).
func lineNeedsFallback(children []*Node, opts WriterOptions) bool {
	prevAllLeaves := true
	spilled := false
	wrote := false
	for i, child := range children {
		if child.IsLeaf() {
			if spilled {
				return true
			}
			wrote = true
			continue
		}
		if i == len(children)-1 && prevAllLeaves && wrote && fitsOnLine(child.Children, opts) {
			return false
		}
		if !spilled && allLeaves(child) && (opts.UseInline || prevAllLeaves) {
			prevAllLeaves = false
			wrote = true
			continue
		}
		if !wrote {
			return true
		}
		spilled = true
		prevAllLeaves = false
	}
	return false
}

// fitsOnLine reports whether an expression's children render without any
// child needing its own indented line, so the group may continue the
// current line after a ` $ ` unwrap.
func fitsOnLine(children []*Node, opts WriterOptions) bool {
	prevAllLeaves := true
	wrote := false
	for i, child := range children {
		if child.IsLeaf() {
			wrote = true
			continue
		}
		if i == len(children)-1 && prevAllLeaves && wrote {
			return fitsOnLine(child.Children, opts)
		}
		if allLeaves(child) && (opts.UseInline || prevAllLeaves) {
			prevAllLeaves = false
			wrote = true
			continue
		}
		return false
	}
	return true
}

func allLeaves(node *Node) bool {
	for _, child := range node.Children {
		if !child.IsLeaf() {
			return false
		}
	}
	return true
}

func writeIndent(sb *strings.Builder, level int) {
	for i := 0; i < level; i++ {
		sb.WriteString("  ")
	}
}

func writeInline(sb *strings.Builder, node *Node) {
	if node.IsLeaf() {
		sb.WriteString(writeToken(node.Leaf))
		return
	}
	sb.WriteByte('(')
	for i, child := range node.Children {
		if i > 0 {
			sb.WriteByte(' ')
		}
		writeInline(sb, child)
	}
	sb.WriteByte(')')
}

// writeToken quotes a token when it cannot stand bare in source text.
func writeToken(s string) string {
	if s != "" && !strings.ContainsAny(s, " ()\"\\\n\t\r") {
		return s
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
