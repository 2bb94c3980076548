package edn

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cirru/cirru-edn-go/cirru"
)

// numberPattern matches the numeric literal grammar; exponent forms are
// not part of the surface syntax.
var numberPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// Parse reads source text into a Value. The text must hold exactly one
// top-level expression. On failure the error is a ParseError (tokenizer
// diagnostics), a StructureError (shape/arity) or a ValueError (leaf
// content), the latter two carrying a value-position path and a one-line
// preview of the offending node.
func Parse(text string) (*Value, error) {
	nodes, err := cirru.Parse(text)
	if err != nil {
		return nil, &ParseError{Original: err.Error()}
	}
	if len(nodes) != 1 {
		return nil, structureErr(nil, nil, "expected exactly 1 expression for data, got %d", len(nodes))
	}
	return extract(nodes[0], nil)
}

// isComment reports the comment form: a list whose first leaf is `;`.
// Comments are skipped wherever child sequences are scanned.
func isComment(node *cirru.Node) bool {
	return !node.IsLeaf() &&
		len(node.Children) > 0 &&
		node.Children[0].IsLeaf() &&
		node.Children[0].Leaf == ";"
}

// valueChildren collects the non-comment children after the operator.
func valueChildren(node *cirru.Node) []*cirru.Node {
	values := []*cirru.Node{}
	for _, child := range node.Children[1:] {
		if isComment(child) {
			continue
		}
		values = append(values, child)
	}
	return values
}

func childPath(path []int, index int) []int {
	return append(path[:len(path):len(path)], index)
}

func extract(node *cirru.Node, path []int) (*Value, error) {
	if node.IsLeaf() {
		return extractLeaf(node, path)
	}
	if len(node.Children) == 0 {
		return nil, structureErr(path, node, "empty expression is invalid")
	}
	head := node.Children[0]
	if !head.IsLeaf() {
		return nil, structureErr(path, node, "invalid operator: %s", cirru.FormatInline(head))
	}
	values := valueChildren(node)

	switch head.Leaf {
	case "quote":
		if len(values) != 1 {
			return nil, structureErr(path, node, "quote expects exactly 1 value, got %d", len(values))
		}
		return Quote(values[0]), nil

	case "do":
		if len(values) != 1 {
			return nil, structureErr(path, node, "do expects exactly 1 value, got %d", len(values))
		}
		return extract(values[0], childPath(path, 0))

	case "::":
		if len(values) < 1 {
			return nil, structureErr(path, node, "tuple expects at least a tag")
		}
		tag, err := extract(values[0], childPath(path, 0))
		if err != nil {
			return nil, err
		}
		extra, err := extractItems(values[1:], path, 1)
		if err != nil {
			return nil, err
		}
		return Tuple(tag, extra...), nil

	case "%::":
		if len(values) < 2 {
			return nil, structureErr(path, node, "enum tuple expects at least an enum tag and a tag, got %d values", len(values))
		}
		enumTag, err := extract(values[0], childPath(path, 0))
		if err != nil {
			return nil, err
		}
		tag, err := extract(values[1], childPath(path, 1))
		if err != nil {
			return nil, err
		}
		extra, err := extractItems(values[2:], path, 2)
		if err != nil {
			return nil, err
		}
		return EnumTuple(enumTag, tag, extra...), nil

	case "[]":
		items, err := extractItems(values, path, 0)
		if err != nil {
			return nil, err
		}
		return NewList(items...), nil

	case "#{}":
		items, err := extractItems(values, path, 0)
		if err != nil {
			return nil, err
		}
		return NewSet(items...), nil

	case "{}":
		return extractMap(values, path)

	case "%{}":
		return extractRecord(node, values, path)

	case "buf":
		return extractBuffer(values, path)

	case "atom":
		if len(values) != 1 {
			return nil, structureErr(path, node, "atom expects exactly 1 value, got %d", len(values))
		}
		inner, err := extract(values[0], childPath(path, 0))
		if err != nil {
			return nil, err
		}
		return Atom(inner), nil

	default:
		return nil, structureErr(path, node, "invalid operator: %s", head.Leaf)
	}
}

func extractItems(nodes []*cirru.Node, path []int, offset int) ([]*Value, error) {
	items := make([]*Value, 0, len(nodes))
	for i, child := range nodes {
		v, err := extract(child, childPath(path, offset+i))
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

func extractMap(pairs []*cirru.Node, path []int) (*Value, error) {
	m := NewMapView()
	for i, pair := range pairs {
		pairPath := childPath(path, i)
		if pair.IsLeaf() {
			return nil, structureErr(pairPath, pair, "invalid map entry: %s", pair.Leaf)
		}
		entries := nonCommentChildren(pair)
		if len(entries) != 2 {
			return nil, structureErr(pairPath, pair, "map entry expects 2 values, got %d", len(entries))
		}
		key, err := extract(entries[0], childPath(pairPath, 0))
		if err != nil {
			return nil, err
		}
		value, err := extract(entries[1], childPath(pairPath, 1))
		if err != nil {
			return nil, err
		}
		m.Put(key, value)
	}
	return &Value{kind: KindMap, mapVal: m}, nil
}

func extractRecord(node *cirru.Node, values []*cirru.Node, path []int) (*Value, error) {
	if len(values) < 2 {
		return nil, structureErr(path, node, "record expects a name and at least 1 field pair")
	}
	nameNode := values[0]
	if !nameNode.IsLeaf() {
		return nil, structureErr(childPath(path, 0), nameNode, "expected record name in a leaf")
	}
	name := strings.TrimPrefix(nameNode.Leaf, ":")
	if name == "" {
		return nil, valueErr(childPath(path, 0), nameNode, "record name must not be empty")
	}

	pairs := make([]RecordPair, 0, len(values)-1)
	for i, pair := range values[1:] {
		pairPath := childPath(path, i+1)
		if pair.IsLeaf() {
			return nil, structureErr(pairPath, pair, "invalid record entry: %s", pair.Leaf)
		}
		entries := nonCommentChildren(pair)
		if len(entries) != 2 {
			return nil, structureErr(pairPath, pair, "record entry expects 2 values, got %d", len(entries))
		}
		fieldNode := entries[0]
		if !fieldNode.IsLeaf() {
			return nil, structureErr(childPath(pairPath, 0), fieldNode, "expected record field in a leaf")
		}
		field := strings.TrimPrefix(fieldNode.Leaf, ":")
		if field == "" {
			return nil, valueErr(childPath(pairPath, 0), fieldNode, "record field must not be empty")
		}
		value, err := extract(entries[1], childPath(pairPath, 1))
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, RecordPair{Key: NewTag(field), Value: value})
	}
	return NewRecord(NewTag(name), pairs...), nil
}

func extractBuffer(values []*cirru.Node, path []int) (*Value, error) {
	data := make([]byte, 0, len(values))
	for i, child := range values {
		bytePath := childPath(path, i)
		if !child.IsLeaf() {
			return nil, valueErr(bytePath, child, "buffer expects 2-digit hex leaves")
		}
		if len(child.Leaf) != 2 {
			return nil, valueErr(bytePath, child, "buffer byte expects 2 hex digits, got %q", child.Leaf)
		}
		b, err := strconv.ParseUint(child.Leaf, 16, 8)
		if err != nil {
			return nil, valueErr(bytePath, child, "invalid hex byte: %q", child.Leaf)
		}
		data = append(data, byte(b))
	}
	return Buffer(data), nil
}

func nonCommentChildren(node *cirru.Node) []*cirru.Node {
	children := []*cirru.Node{}
	for _, child := range node.Children {
		if isComment(child) {
			continue
		}
		children = append(children, child)
	}
	return children
}

func extractLeaf(node *cirru.Node, path []int) (*Value, error) {
	token := node.Leaf
	switch token {
	case "nil":
		return Nil(), nil
	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	case "":
		return nil, valueErr(path, node, "empty token is invalid")
	}
	switch token[0] {
	case '\'':
		return Symbol(token[1:]), nil
	case ':':
		return TagValue(token[1:]), nil
	case '"', '|':
		return Str(token[1:]), nil
	}
	if numberPattern.MatchString(token) {
		n, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, valueErr(path, node, "invalid number: %q", token)
		}
		return Number(n), nil
	}
	return nil, valueErr(path, node, "unknown token: %q", token)
}
