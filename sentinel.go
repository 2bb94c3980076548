package edn

import (
	"fmt"
	"math"
	"sort"

	"github.com/cirru/cirru-edn-go/cirru"
)

// The sentinel encoding maps Value onto the generic data model shared by
// JSON and CBOR. Scalars, lists and string-keyed maps pass through
// directly; variants with no generic equivalent become single-purpose
// maps keyed by reserved "__edn_" names:
//
//	Symbol  {"__edn_symbol": name}
//	Tag     {"__edn_tag": name}
//	Quote   {"__edn_quote": tree}      leaves as strings, lists as arrays
//	Tuple   {"__edn_tuple_tag": tag, "__edn_tuple_extra": [...]}
//	        plus "__edn_tuple_enum_tag" when a discriminant is present
//	Set     {"__edn_set": [items]}
//	Buffer  {"__edn_buffer": [bytes]}
//	Record  {"__edn_record_tag": name, field: value, ...}
//	Atom    {"__edn_atom": value}
//
// Struct-like data keeps its distinction: Map keys that are not strings
// are rendered through their display form. AnyRef has no encoding.

const sentinelPrefix = "__edn_"

func toSentinel(v *Value) (any, error) {
	switch v.kind {
	case KindNil:
		return nil, nil
	case KindBool:
		return v.boolVal, nil
	case KindNumber:
		return v.numVal, nil
	case KindStr:
		return v.strVal, nil
	case KindSymbol:
		return map[string]any{"__edn_symbol": v.strVal}, nil
	case KindTag:
		return map[string]any{"__edn_tag": v.strVal}, nil
	case KindQuote:
		return map[string]any{"__edn_quote": quoteToGeneric(v.quoteVal)}, nil
	case KindTuple:
		tag, err := toSentinel(v.tupleVal.Tag)
		if err != nil {
			return nil, err
		}
		extra := make([]any, 0, len(v.tupleVal.Extra))
		for _, item := range v.tupleVal.Extra {
			enc, err := toSentinel(item)
			if err != nil {
				return nil, err
			}
			extra = append(extra, enc)
		}
		out := map[string]any{"__edn_tuple_tag": tag, "__edn_tuple_extra": extra}
		if v.tupleVal.EnumTag != nil {
			enumTag, err := toSentinel(v.tupleVal.EnumTag)
			if err != nil {
				return nil, err
			}
			out["__edn_tuple_enum_tag"] = enumTag
		}
		return out, nil
	case KindList:
		items := make([]any, 0, len(v.listVal))
		for _, item := range v.listVal {
			enc, err := toSentinel(item)
			if err != nil {
				return nil, err
			}
			items = append(items, enc)
		}
		return items, nil
	case KindBuffer:
		bytesAsNumbers := make([]any, 0, len(v.bufVal))
		for _, b := range v.bufVal {
			bytesAsNumbers = append(bytesAsNumbers, float64(b))
		}
		return map[string]any{"__edn_buffer": bytesAsNumbers}, nil
	case KindSet:
		items := make([]any, 0, v.setVal.Len())
		for _, item := range v.setVal.Items() {
			enc, err := toSentinel(item)
			if err != nil {
				return nil, err
			}
			items = append(items, enc)
		}
		return map[string]any{"__edn_set": items}, nil
	case KindMap:
		out := make(map[string]any, v.mapVal.Len())
		for _, e := range v.mapVal.Entries() {
			enc, err := toSentinel(e.Value)
			if err != nil {
				return nil, err
			}
			if e.Key.kind == KindStr {
				out[e.Key.strVal] = enc
			} else {
				out[e.Key.String()] = enc
			}
		}
		return out, nil
	case KindRecord:
		out := make(map[string]any, len(v.recVal.Pairs)+1)
		out["__edn_record_tag"] = v.recVal.Tag.Name()
		for _, pair := range v.recVal.Pairs {
			enc, err := toSentinel(pair.Value)
			if err != nil {
				return nil, err
			}
			out[pair.Key.Name()] = enc
		}
		return out, nil
	case KindAtom:
		enc, err := toSentinel(v.atomVal)
		if err != nil {
			return nil, err
		}
		return map[string]any{"__edn_atom": enc}, nil
	case KindAnyRef:
		return nil, fmt.Errorf("edn: any-ref cannot be serialized")
	default:
		return nil, fmt.Errorf("edn: cannot serialize %s value", v.kind)
	}
}

func quoteToGeneric(node *cirru.Node) any {
	if node.IsLeaf() {
		return node.Leaf
	}
	children := make([]any, 0, len(node.Children))
	for _, child := range node.Children {
		children = append(children, quoteToGeneric(child))
	}
	return children
}

func genericToQuote(data any) (*cirru.Node, error) {
	switch t := data.(type) {
	case string:
		return cirru.NewLeaf(t), nil
	case []any:
		children := make([]*cirru.Node, 0, len(t))
		for _, item := range t {
			child, err := genericToQuote(item)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return cirru.NewList(children...), nil
	default:
		return nil, fmt.Errorf("edn: invalid quote data: %v", data)
	}
}

// fromSentinel rebuilds a Value from generic decoded data. It accepts
// the shapes both decoders produce: string-keyed and any-keyed maps,
// every Go numeric width, and []byte for binary payloads.
func fromSentinel(data any) (*Value, error) {
	switch t := data.(type) {
	case nil:
		return Nil(), nil
	case bool:
		return Bool(t), nil
	case string:
		return Str(t), nil
	case []byte:
		return Buffer(t), nil
	case []any:
		items := make([]*Value, 0, len(t))
		for _, item := range t {
			v, err := fromSentinel(item)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return NewList(items...), nil
	case map[string]any:
		return fromSentinelMap(t)
	case map[any]any:
		converted := make(map[string]any, len(t))
		for key, value := range t {
			name, ok := key.(string)
			if !ok {
				return nil, fmt.Errorf("edn: map key must be a string, got %v", key)
			}
			converted[name] = value
		}
		return fromSentinelMap(converted)
	default:
		if n, ok := asFloat(data); ok {
			return Number(n), nil
		}
		return nil, fmt.Errorf("edn: cannot decode value of type %T", data)
	}
}

func fromSentinelMap(data map[string]any) (*Value, error) {
	special := ""
	for key := range data {
		if len(key) > len(sentinelPrefix) && key[:len(sentinelPrefix)] == sentinelPrefix {
			if key == "__edn_tuple_extra" || key == "__edn_tuple_enum_tag" {
				continue
			}
			special = key
			break
		}
	}

	switch special {
	case "":
		m := NewMapView()
		for key, value := range data {
			v, err := fromSentinel(value)
			if err != nil {
				return nil, err
			}
			m.Put(Str(key), v)
		}
		return &Value{kind: KindMap, mapVal: m}, nil

	case "__edn_symbol":
		name, ok := data[special].(string)
		if !ok {
			return nil, fmt.Errorf("edn: invalid symbol data: %v", data[special])
		}
		return Symbol(name), nil

	case "__edn_tag":
		name, ok := data[special].(string)
		if !ok {
			return nil, fmt.Errorf("edn: invalid tag data: %v", data[special])
		}
		return TagValue(name), nil

	case "__edn_quote":
		node, err := genericToQuote(data[special])
		if err != nil {
			return nil, err
		}
		return Quote(node), nil

	case "__edn_tuple_tag":
		tag, err := fromSentinel(data[special])
		if err != nil {
			return nil, err
		}
		rawExtra, ok := data["__edn_tuple_extra"].([]any)
		if !ok && data["__edn_tuple_extra"] != nil {
			return nil, fmt.Errorf("edn: invalid tuple extra data: %v", data["__edn_tuple_extra"])
		}
		extra := make([]*Value, 0, len(rawExtra))
		for _, item := range rawExtra {
			v, err := fromSentinel(item)
			if err != nil {
				return nil, err
			}
			extra = append(extra, v)
		}
		if rawEnum, found := data["__edn_tuple_enum_tag"]; found {
			enumTag, err := fromSentinel(rawEnum)
			if err != nil {
				return nil, err
			}
			return EnumTuple(enumTag, tag, extra...), nil
		}
		return Tuple(tag, extra...), nil

	case "__edn_set":
		rawItems, ok := data[special].([]any)
		if !ok {
			return nil, fmt.Errorf("edn: invalid set data: %v", data[special])
		}
		items := make([]*Value, 0, len(rawItems))
		for _, item := range rawItems {
			v, err := fromSentinel(item)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return NewSet(items...), nil

	case "__edn_buffer":
		switch raw := data[special].(type) {
		case []byte:
			return Buffer(raw), nil
		case []any:
			buf := make([]byte, 0, len(raw))
			for _, item := range raw {
				n, ok := asFloat(item)
				if !ok || n < 0 || n > 255 || n != math.Trunc(n) {
					return nil, fmt.Errorf("edn: invalid buffer byte: %v", item)
				}
				buf = append(buf, byte(n))
			}
			return Buffer(buf), nil
		default:
			return nil, fmt.Errorf("edn: invalid buffer data: %v", data[special])
		}

	case "__edn_record_tag":
		name, ok := data[special].(string)
		if !ok {
			return nil, fmt.Errorf("edn: invalid record tag: %v", data[special])
		}
		pairs := make([]RecordPair, 0, len(data)-1)
		for key, value := range data {
			if key == special {
				continue
			}
			v, err := fromSentinel(value)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, RecordPair{Key: NewTag(key), Value: v})
		}
		// generic maps are unordered; pin field order for determinism
		sort.Slice(pairs, func(i, j int) bool {
			return pairs[i].Key.Cmp(pairs[j].Key) < 0
		})
		return NewRecord(NewTag(name), pairs...), nil

	case "__edn_atom":
		inner, err := fromSentinel(data[special])
		if err != nil {
			return nil, err
		}
		return Atom(inner), nil

	default:
		return nil, fmt.Errorf("edn: unknown special key: %s", special)
	}
}

// asFloat widens any Go numeric type produced by a decoder.
func asFloat(data any) (float64, bool) {
	switch n := data.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
