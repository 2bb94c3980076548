package edn

import "strings"

// Tag is an immutable identifier compared by string content. It marks the
// places where a key space is a closed, enumerable set of names (record
// fields, struct fields), as opposed to Str which carries arbitrary text.
// There is no interning registry; equality, ordering and hashing are all
// computed from the content.
type Tag struct {
	name string
}

// NewTag creates a tag from its name, without the leading colon.
func NewTag(name string) Tag {
	return Tag{name: name}
}

// Name returns the bare tag name.
func (t Tag) Name() string {
	return t.name
}

// String returns the bare name; the `:` sigil is added by printers.
func (t Tag) String() string {
	return t.name
}

// Cmp orders tags by name.
func (t Tag) Cmp(other Tag) int {
	return strings.Compare(t.name, other.name)
}
