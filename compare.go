package edn

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// Epsilon bounds Number equality: two numbers are the same value when
// they differ by less than this, so floating noise does not split keys.
const Epsilon = 2.220446049250313e-16

// ===== Equality =====

// Equals performs structural comparison; variants must match. Number
// equality is epsilon-bounded, AnyRef equality is handle identity.
func (v *Value) Equals(other *Value) bool {
	if v == other {
		return true
	}
	if v == nil || other == nil || v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.boolVal == other.boolVal
	case KindNumber:
		return math.Abs(v.numVal-other.numVal) < Epsilon
	case KindSymbol, KindTag, KindStr:
		return v.strVal == other.strVal
	case KindQuote:
		return v.quoteVal.Equals(other.quoteVal)
	case KindTuple:
		a, b := v.tupleVal, other.tupleVal
		if (a.EnumTag == nil) != (b.EnumTag == nil) {
			return false
		}
		if a.EnumTag != nil && !a.EnumTag.Equals(b.EnumTag) {
			return false
		}
		return a.Tag.Equals(b.Tag) && valuesEqual(a.Extra, b.Extra)
	case KindList:
		return valuesEqual(v.listVal, other.listVal)
	case KindBuffer:
		return bytes.Equal(v.bufVal, other.bufVal)
	case KindSet:
		if v.setVal.Len() != other.setVal.Len() {
			return false
		}
		for _, item := range v.setVal.Items() {
			if !other.setVal.Contains(item) {
				return false
			}
		}
		return true
	case KindMap:
		if v.mapVal.Len() != other.mapVal.Len() {
			return false
		}
		for _, e := range v.mapVal.Entries() {
			found, ok := other.mapVal.Get(e.Key)
			if !ok || !found.Equals(e.Value) {
				return false
			}
		}
		return true
	case KindRecord:
		a, b := v.recVal, other.recVal
		if a.Tag != b.Tag || len(a.Pairs) != len(b.Pairs) {
			return false
		}
		for i, pair := range a.Pairs {
			if pair.Key != b.Pairs[i].Key || !pair.Value.Equals(b.Pairs[i].Value) {
				return false
			}
		}
		return true
	case KindAtom:
		return v.atomVal.Equals(other.atomVal)
	case KindAnyRef:
		return v.refVal == other.refVal
	default:
		return false
	}
}

func valuesEqual(a, b []*Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

// ===== Ordering =====

// Compare defines the total order over values: first by variant
// precedence (the Kind declaration order), then by payload within a
// variant. Two distinct Set or Map values of equal cardinality have no
// defined order and Compare panics rather than inventing one; callers
// that sort heterogeneous keys accept that contract.
func (v *Value) Compare(other *Value) int {
	if v.kind != other.kind {
		if v.kind < other.kind {
			return -1
		}
		return 1
	}
	switch v.kind {
	case KindNil:
		return 0
	case KindBool:
		switch {
		case v.boolVal == other.boolVal:
			return 0
		case !v.boolVal:
			return -1
		default:
			return 1
		}
	case KindNumber:
		switch {
		case v.numVal < other.numVal:
			return -1
		case v.numVal > other.numVal:
			return 1
		default:
			return 0
		}
	case KindSymbol, KindTag, KindStr:
		return strings.Compare(v.strVal, other.strVal)
	case KindQuote:
		return v.quoteVal.Compare(other.quoteVal)
	case KindTuple:
		a, b := v.tupleVal, other.tupleVal
		if c := compareOptional(a.EnumTag, b.EnumTag); c != 0 {
			return c
		}
		if c := a.Tag.Compare(b.Tag); c != 0 {
			return c
		}
		return compareValues(a.Extra, b.Extra)
	case KindList:
		return compareValues(v.listVal, other.listVal)
	case KindBuffer:
		return bytes.Compare(v.bufVal, other.bufVal)
	case KindSet:
		if c := compareInts(v.setVal.Len(), other.setVal.Len()); c != 0 {
			return c
		}
		if v.Equals(other) {
			return 0
		}
		panic(fmt.Sprintf("edn: sets of equal size have no defined order: %s %s", v, other))
	case KindMap:
		if c := compareInts(v.mapVal.Len(), other.mapVal.Len()); c != 0 {
			return c
		}
		if v.Equals(other) {
			return 0
		}
		panic(fmt.Sprintf("edn: maps of equal size have no defined order: %s %s", v, other))
	case KindRecord:
		a, b := v.recVal, other.recVal
		if c := a.Tag.Cmp(b.Tag); c != 0 {
			return c
		}
		for i := 0; i < len(a.Pairs) && i < len(b.Pairs); i++ {
			if c := a.Pairs[i].Key.Cmp(b.Pairs[i].Key); c != 0 {
				return c
			}
			if c := a.Pairs[i].Value.Compare(b.Pairs[i].Value); c != 0 {
				return c
			}
		}
		return compareInts(len(a.Pairs), len(b.Pairs))
	case KindAtom:
		return v.atomVal.Compare(other.atomVal)
	case KindAnyRef:
		if v.refVal == other.refVal {
			return 0
		}
		panic(fmt.Sprintf("edn: any-ref values have no defined order: %s %s", v, other))
	default:
		return 0
	}
}

// compareOptional orders absent before present.
func compareOptional(a, b *Value) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(b)
	}
}

func compareValues(a, b []*Value) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	return compareInts(len(a), len(b))
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ===== Hashing =====

// Hash returns a content hash consistent with Equals: a Number hashes
// its truncated integer part so epsilon-equal floats collide into one
// key, and Set/Map accumulate member hashes order-independently.
func (v *Value) Hash() uint64 {
	h := fnv.New64a()
	v.hashInto(h)
	return h.Sum64()
}

type valueHasher interface {
	Write(p []byte) (int, error)
}

func (v *Value) hashInto(h valueHasher) {
	var word [8]byte
	switch v.kind {
	case KindNil:
		h.Write([]byte("nil:"))
	case KindBool:
		h.Write([]byte("bool:"))
		if v.boolVal {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	case KindNumber:
		h.Write([]byte("number:"))
		binary.LittleEndian.PutUint64(word[:], uint64(int64(v.numVal)))
		h.Write(word[:])
	case KindSymbol:
		h.Write([]byte("symbol:"))
		h.Write([]byte(v.strVal))
	case KindTag:
		h.Write([]byte("tag:"))
		h.Write([]byte(v.strVal))
	case KindStr:
		h.Write([]byte("string:"))
		h.Write([]byte(v.strVal))
	case KindQuote:
		h.Write([]byte("quote:"))
		binary.LittleEndian.PutUint64(word[:], v.quoteVal.Hash())
		h.Write(word[:])
	case KindTuple:
		h.Write([]byte("tuple:"))
		if v.tupleVal.EnumTag != nil {
			v.tupleVal.EnumTag.hashInto(h)
		}
		v.tupleVal.Tag.hashInto(h)
		for _, item := range v.tupleVal.Extra {
			item.hashInto(h)
		}
	case KindList:
		h.Write([]byte("list:"))
		for _, item := range v.listVal {
			item.hashInto(h)
		}
	case KindBuffer:
		h.Write([]byte("buffer:"))
		h.Write(v.bufVal)
	case KindSet:
		h.Write([]byte("set:"))
		var sum uint64
		for _, item := range v.setVal.Items() {
			sum += item.Hash()
		}
		binary.LittleEndian.PutUint64(word[:], sum)
		h.Write(word[:])
	case KindMap:
		h.Write([]byte("map:"))
		var sum uint64
		for _, e := range v.mapVal.Entries() {
			entry := fnv.New64a()
			e.Key.hashInto(entry)
			e.Value.hashInto(entry)
			sum += entry.Sum64()
		}
		binary.LittleEndian.PutUint64(word[:], sum)
		h.Write(word[:])
	case KindRecord:
		h.Write([]byte("record:"))
		h.Write([]byte(v.recVal.Tag.Name()))
		for _, pair := range v.recVal.Pairs {
			h.Write([]byte(pair.Key.Name()))
			pair.Value.hashInto(h)
		}
	case KindAtom:
		h.Write([]byte("atom:"))
		v.atomVal.hashInto(h)
	case KindAnyRef:
		h.Write([]byte("any-ref:"))
		binary.LittleEndian.PutUint64(word[:], v.refVal.id)
		h.Write(word[:])
	}
}
