package edn

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/cirru/cirru-edn-go/cirru"
)

// ===== Kinds =====

// Kind identifies the variant held by a Value. The declaration order is
// the variant precedence used by Compare and must stay stable: reordering
// it changes canonical output.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindSymbol
	KindTag
	KindStr
	KindQuote
	KindTuple
	KindList
	KindBuffer
	KindSet
	KindMap
	KindRecord
	KindAtom
	KindAnyRef
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindSymbol:
		return "symbol"
	case KindTag:
		return "tag"
	case KindStr:
		return "string"
	case KindQuote:
		return "quote"
	case KindTuple:
		return "tuple"
	case KindList:
		return "list"
	case KindBuffer:
		return "buffer"
	case KindSet:
		return "set"
	case KindMap:
		return "map"
	case KindRecord:
		return "record"
	case KindAtom:
		return "atom"
	case KindAnyRef:
		return "any-ref"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ===== Value =====

// Value is the recursive tagged union at the center of the package: a
// closed set of variants covering scalars, collections, tagged records
// and opaque host handles. Values are immutable trees built bottom-up;
// the only indirections are Atom (a boxed value) and AnyRef (a handle).
type Value struct {
	kind     Kind
	boolVal  bool
	numVal   float64
	strVal   string // Symbol, Tag and Str payloads
	quoteVal *cirru.Node
	tupleVal *TupleView
	listVal  []*Value
	bufVal   []byte
	setVal   *SetView
	mapVal   *MapView
	recVal   *RecordView
	atomVal  *Value
	refVal   *AnyRef
}

// TupleView is the payload of a Tuple value: a tagged variant with an
// optional secondary discriminant and a tail of extra values.
type TupleView struct {
	Tag     *Value
	EnumTag *Value // nil when the tuple has no secondary discriminant
	Extra   []*Value
}

// RecordPair is one (field, value) entry of a Record, in insertion order.
type RecordPair struct {
	Key   Tag
	Value *Value
}

// RecordView is the payload of a Record value: a named aggregate whose
// field order is insertion order at the data-model level.
type RecordView struct {
	Tag   Tag
	Pairs []RecordPair
}

// Get looks a field up by name.
func (r *RecordView) Get(name string) (*Value, bool) {
	for _, pair := range r.Pairs {
		if pair.Key.Name() == name {
			return pair.Value, true
		}
	}
	return nil, false
}

// HasKey reports whether a field of that name exists.
func (r *RecordView) HasKey(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Insert appends a field pair, shorthand for building records.
func (r *RecordView) Insert(name string, v *Value) {
	r.Pairs = append(r.Pairs, RecordPair{Key: NewTag(name), Value: v})
}

// ListView exposes List items with positional helpers.
type ListView struct {
	Items []*Value
}

// GetOrNil returns the item at index, or Nil past the end.
func (l ListView) GetOrNil(index int) *Value {
	if index >= 0 && index < len(l.Items) {
		return l.Items[index]
	}
	return Nil()
}

// ===== Constructors =====

var nilValue = &Value{kind: KindNil}

// Nil returns the absence value.
func Nil() *Value {
	return nilValue
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Number creates a numeric value; all numbers are 64-bit floats.
func Number(n float64) *Value {
	return &Value{kind: KindNumber, numVal: n}
}

// Symbol creates an identifier value that is not evaluated.
func Symbol(s string) *Value {
	return &Value{kind: KindSymbol, strVal: s}
}

// TagValue creates a Tag value from a bare name.
func TagValue(name string) *Value {
	return &Value{kind: KindTag, strVal: name}
}

// Str creates an arbitrary-text value.
func Str(s string) *Value {
	return &Value{kind: KindStr, strVal: s}
}

// Quote wraps a raw syntax fragment kept opaque to the data model.
func Quote(code *cirru.Node) *Value {
	return &Value{kind: KindQuote, quoteVal: code}
}

// Tuple creates a tagged tuple without a secondary discriminant.
func Tuple(tag *Value, extra ...*Value) *Value {
	if extra == nil {
		extra = []*Value{}
	}
	return &Value{kind: KindTuple, tupleVal: &TupleView{Tag: tag, Extra: extra}}
}

// EnumTuple creates a tagged tuple with a secondary discriminant in front.
func EnumTuple(enumTag, tag *Value, extra ...*Value) *Value {
	if extra == nil {
		extra = []*Value{}
	}
	return &Value{kind: KindTuple, tupleVal: &TupleView{Tag: tag, EnumTag: enumTag, Extra: extra}}
}

// NewList creates an ordered sequence value.
func NewList(items ...*Value) *Value {
	if items == nil {
		items = []*Value{}
	}
	return &Value{kind: KindList, listVal: items}
}

// Buffer creates a byte-sequence value.
func Buffer(data []byte) *Value {
	if data == nil {
		data = []byte{}
	}
	return &Value{kind: KindBuffer, bufVal: data}
}

// NewSet creates an unordered collection of unique values.
func NewSet(items ...*Value) *Value {
	s := NewSetView()
	for _, item := range items {
		s.Add(item)
	}
	return &Value{kind: KindSet, setVal: s}
}

// MapEntry is one key/value pair of a Map.
type MapEntry struct {
	Key   *Value
	Value *Value
}

// NewMap creates an unordered mapping; later duplicate keys win.
func NewMap(entries ...MapEntry) *Value {
	m := NewMapView()
	for _, e := range entries {
		m.Put(e.Key, e.Value)
	}
	return &Value{kind: KindMap, mapVal: m}
}

// NewRecord creates a named aggregate of (Tag, Value) pairs.
func NewRecord(tag Tag, pairs ...RecordPair) *Value {
	if pairs == nil {
		pairs = []RecordPair{}
	}
	return &Value{kind: KindRecord, recVal: &RecordView{Tag: tag, Pairs: pairs}}
}

// Atom boxes a single value, the indirection cell hosts use for shared
// references.
func Atom(v *Value) *Value {
	return &Value{kind: KindAtom, atomVal: v}
}

// AnyRefValue wraps an opaque host handle as a value.
func AnyRefValue(ref *AnyRef) *Value {
	return &Value{kind: KindAnyRef, refVal: ref}
}

// ===== Inspection =====

// Kind returns the variant of the value.
func (v *Value) Kind() Kind {
	return v.kind
}

// IsNil reports the Nil variant.
func (v *Value) IsNil() bool {
	return v.kind == KindNil
}

// IsLiteral reports whether the value is one of the flat scalar variants
// the printer groups in front of structural entries.
func (v *Value) IsLiteral() bool {
	switch v.kind {
	case KindNil, KindBool, KindNumber, KindSymbol, KindTag, KindStr:
		return true
	default:
		return false
	}
}

// ===== Accessors =====

// AsBool reads a Bool payload.
func (v *Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, fmt.Errorf("edn: failed to convert to bool: %s", v)
	}
	return v.boolVal, nil
}

// AsNumber reads a Number payload.
func (v *Value) AsNumber() (float64, error) {
	if v.kind != KindNumber {
		return 0, fmt.Errorf("edn: failed to convert to number: %s", v)
	}
	return v.numVal, nil
}

// AsString reads a Str payload.
func (v *Value) AsString() (string, error) {
	if v.kind != KindStr {
		return "", fmt.Errorf("edn: failed to convert to string: %s", v)
	}
	return v.strVal, nil
}

// AsSymbol reads a Symbol payload.
func (v *Value) AsSymbol() (string, error) {
	if v.kind != KindSymbol {
		return "", fmt.Errorf("edn: failed to convert to symbol: %s", v)
	}
	return v.strVal, nil
}

// AsTag reads a Tag payload.
func (v *Value) AsTag() (Tag, error) {
	if v.kind != KindTag {
		return Tag{}, fmt.Errorf("edn: failed to convert to tag: %s", v)
	}
	return NewTag(v.strVal), nil
}

// AsQuote reads the raw syntax fragment of a Quote.
func (v *Value) AsQuote() (*cirru.Node, error) {
	if v.kind != KindQuote {
		return nil, fmt.Errorf("edn: failed to convert to quoted code: %s", v)
	}
	return v.quoteVal, nil
}

// AsBuffer reads a Buffer payload.
func (v *Value) AsBuffer() ([]byte, error) {
	if v.kind != KindBuffer {
		return nil, fmt.Errorf("edn: failed to convert to buffer: %s", v)
	}
	return v.bufVal, nil
}

// AsAtom reads the boxed value of an Atom.
func (v *Value) AsAtom() (*Value, error) {
	if v.kind != KindAtom {
		return nil, fmt.Errorf("edn: failed to convert to atom: %s", v)
	}
	return v.atomVal, nil
}

// AsAnyRef reads the opaque handle of an AnyRef.
func (v *Value) AsAnyRef() (*AnyRef, error) {
	if v.kind != KindAnyRef {
		return nil, fmt.Errorf("edn: failed to convert to any-ref: %s", v)
	}
	return v.refVal, nil
}

// ===== Viewers =====
//
// Viewers unwrap a collection variant; Nil views as the empty collection,
// so optional fields read naturally.

// ViewList returns the items of a List, or empty for Nil.
func (v *Value) ViewList() (ListView, error) {
	switch v.kind {
	case KindList:
		return ListView{Items: v.listVal}, nil
	case KindNil:
		return ListView{}, nil
	default:
		return ListView{}, fmt.Errorf("edn: failed to convert to list: %s", v)
	}
}

// ViewMap returns the map payload, or an empty map for Nil.
func (v *Value) ViewMap() (*MapView, error) {
	switch v.kind {
	case KindMap:
		return v.mapVal, nil
	case KindNil:
		return NewMapView(), nil
	default:
		return nil, fmt.Errorf("edn: failed to convert to map: %s", v)
	}
}

// ViewSet returns the set payload, or an empty set for Nil.
func (v *Value) ViewSet() (*SetView, error) {
	switch v.kind {
	case KindSet:
		return v.setVal, nil
	case KindNil:
		return NewSetView(), nil
	default:
		return nil, fmt.Errorf("edn: failed to convert to set: %s", v)
	}
}

// ViewRecord returns the record payload.
func (v *Value) ViewRecord() (*RecordView, error) {
	if v.kind != KindRecord {
		return nil, fmt.Errorf("edn: failed to convert to record: %s", v)
	}
	return v.recVal, nil
}

// ViewTuple returns the tuple payload.
func (v *Value) ViewTuple() (*TupleView, error) {
	if v.kind != KindTuple {
		return nil, fmt.Errorf("edn: failed to convert to tuple: %s", v)
	}
	return v.tupleVal, nil
}

// ===== Display =====

// String renders the value in one-line display form, e.g. `(:: :t 1 2)`.
// It is used in error messages and as the text form of non-string map
// keys in the sentinel encoding.
func (v *Value) String() string {
	var sb strings.Builder
	v.writeDisplay(&sb)
	return sb.String()
}

func (v *Value) writeDisplay(sb *strings.Builder) {
	switch v.kind {
	case KindNil:
		sb.WriteString("nil")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.boolVal))
	case KindNumber:
		sb.WriteString(formatNumber(v.numVal))
	case KindSymbol:
		sb.WriteByte('\'')
		sb.WriteString(v.strVal)
	case KindTag:
		sb.WriteByte(':')
		sb.WriteString(v.strVal)
	case KindStr:
		writeDisplayString(sb, v.strVal)
	case KindQuote:
		sb.WriteString("(quote ")
		sb.WriteString(cirru.FormatInline(v.quoteVal))
		sb.WriteByte(')')
	case KindTuple:
		if v.tupleVal.EnumTag != nil {
			sb.WriteString("(%:: ")
			v.tupleVal.EnumTag.writeDisplay(sb)
			sb.WriteByte(' ')
		} else {
			sb.WriteString("(:: ")
		}
		v.tupleVal.Tag.writeDisplay(sb)
		for _, item := range v.tupleVal.Extra {
			sb.WriteByte(' ')
			item.writeDisplay(sb)
		}
		sb.WriteByte(')')
	case KindList:
		sb.WriteString("([]")
		for _, item := range v.listVal {
			sb.WriteByte(' ')
			item.writeDisplay(sb)
		}
		sb.WriteByte(')')
	case KindBuffer:
		sb.WriteString("(buf")
		for _, b := range v.bufVal {
			fmt.Fprintf(sb, " %02x", b)
		}
		sb.WriteByte(')')
	case KindSet:
		sb.WriteString("(#{}")
		for _, item := range v.setVal.Items() {
			sb.WriteByte(' ')
			item.writeDisplay(sb)
		}
		sb.WriteByte(')')
	case KindMap:
		sb.WriteString("({}")
		for _, e := range v.mapVal.Entries() {
			sb.WriteString(" (")
			e.Key.writeDisplay(sb)
			sb.WriteByte(' ')
			e.Value.writeDisplay(sb)
			sb.WriteByte(')')
		}
		sb.WriteByte(')')
	case KindRecord:
		sb.WriteString("(%{} :")
		sb.WriteString(v.recVal.Tag.Name())
		for _, pair := range v.recVal.Pairs {
			sb.WriteString(" (:")
			sb.WriteString(pair.Key.Name())
			sb.WriteByte(' ')
			pair.Value.writeDisplay(sb)
			sb.WriteByte(')')
		}
		sb.WriteByte(')')
	case KindAtom:
		sb.WriteString("(atom ")
		v.atomVal.writeDisplay(sb)
		sb.WriteByte(')')
	case KindAnyRef:
		sb.WriteString("(any-ref ...)")
	}
}

func writeDisplayString(sb *strings.Builder, s string) {
	if isSimpleToken(s) {
		sb.WriteByte('|')
		sb.WriteString(s)
		return
	}
	sb.WriteString("\"|")
	for _, r := range s {
		if isSimpleChar(r) {
			sb.WriteRune(r)
			continue
		}
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
}

// isSimpleChar reports whether a rune can print inside an unquoted `|`
// string: ASCII alphanumerics, a small punctuation set, and CJK.
func isSimpleChar(r rune) bool {
	switch {
	case r >= '0' && r <= '9', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		return true
	}
	switch r {
	case '-', '?', '.', '$', ',', '\'':
		return true
	}
	return isCJK(r)
}

func isSimpleToken(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if !isSimpleChar(r) {
			return false
		}
	}
	return true
}

var cjkRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2e80, Hi: 0x9fff, Stride: 1},   // radicals, kana, CJK ideographs
		{Lo: 0xac00, Hi: 0xd7af, Stride: 1},   // hangul syllables
		{Lo: 0xf900, Hi: 0xfaff, Stride: 1},   // compatibility ideographs
		{Lo: 0xff00, Hi: 0xffef, Stride: 1},   // fullwidth forms
	},
	R32: []unicode.Range32{
		{Lo: 0x20000, Hi: 0x2fa1f, Stride: 1}, // extension ideographs
	},
}

func isCJK(r rune) bool {
	return unicode.Is(cjkRanges, r)
}

// formatNumber prints the shortest decimal that round-trips, without
// exponent notation.
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
