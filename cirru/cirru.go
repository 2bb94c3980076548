// Package cirru implements the Cirru text notation: an indentation-based
// syntax whose parse result is a tree with exactly two node shapes, a leaf
// token or an ordered list of child nodes.
//
// The package offers three operations:
//   - Parse: source text to a sequence of top-level expressions
//   - Format: expressions back to indented text, with optional inlining
//   - FormatInline: a one-line rendering used for previews
package cirru

import (
	"hash/fnv"
	"strings"
)

// NodeKind tells the two shapes apart.
type NodeKind uint8

const (
	KindLeaf NodeKind = iota
	KindList
)

// Node is a single node in a Cirru tree.
type Node struct {
	Kind     NodeKind
	Leaf     string
	Children []*Node
}

// NewLeaf creates a leaf node holding one token.
func NewLeaf(token string) *Node {
	return &Node{Kind: KindLeaf, Leaf: token}
}

// NewList creates a list node with the given children.
func NewList(children ...*Node) *Node {
	if children == nil {
		children = []*Node{}
	}
	return &Node{Kind: KindList, Children: children}
}

// IsLeaf reports whether the node is a leaf token.
func (n *Node) IsLeaf() bool {
	return n.Kind == KindLeaf
}

// Equals performs deep structural comparison.
func (n *Node) Equals(other *Node) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil || n.Kind != other.Kind {
		return false
	}
	if n.Kind == KindLeaf {
		return n.Leaf == other.Leaf
	}
	if len(n.Children) != len(other.Children) {
		return false
	}
	for i, child := range n.Children {
		if !child.Equals(other.Children[i]) {
			return false
		}
	}
	return true
}

// Compare defines a total order over trees: leaves sort before lists,
// leaves compare by token, lists compare element-wise then by length.
func (n *Node) Compare(other *Node) int {
	if n.Kind != other.Kind {
		if n.Kind == KindLeaf {
			return -1
		}
		return 1
	}
	if n.Kind == KindLeaf {
		return strings.Compare(n.Leaf, other.Leaf)
	}
	for i := 0; i < len(n.Children) && i < len(other.Children); i++ {
		if c := n.Children[i].Compare(other.Children[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(n.Children) < len(other.Children):
		return -1
	case len(n.Children) > len(other.Children):
		return 1
	default:
		return 0
	}
}

// Hash returns a content hash consistent with Equals.
func (n *Node) Hash() uint64 {
	h := fnv.New64a()
	hashNode(n, h)
	return h.Sum64()
}

type hasher interface {
	Write(p []byte) (int, error)
}

func hashNode(n *Node, h hasher) {
	if n.Kind == KindLeaf {
		h.Write([]byte("leaf:"))
		h.Write([]byte(n.Leaf))
		return
	}
	h.Write([]byte("list:"))
	for _, child := range n.Children {
		hashNode(child, h)
	}
}

// String renders the node in one-line form, same as FormatInline.
func (n *Node) String() string {
	return FormatInline(n)
}
