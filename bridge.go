package edn

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// ===== Native bridge =====
//
// ToValue and FromValue convert between Go values and the data model.
// Struct fields become Tag keys while map keys become Str keys, keeping
// the distinction between enumerable identifiers and arbitrary text.
// Types plug in custom behavior through Marshaler and Unmarshaler, which
// take precedence over reflection.

// Marshaler lets a type control its own conversion to a Value.
type Marshaler interface {
	MarshalEdn() (*Value, error)
}

// Unmarshaler lets a type control its own conversion from a Value.
type Unmarshaler interface {
	UnmarshalEdn(*Value) error
}

// ToValue converts native Go data into a Value. Supported inputs are
// booleans, all numeric types, strings, []byte, slices, arrays, maps,
// structs, pointers and types implementing Marshaler. Struct fields can
// rename or skip themselves with an `edn` tag.
func ToValue(data any) (*Value, error) {
	if data == nil {
		return Nil(), nil
	}
	switch t := data.(type) {
	case Marshaler:
		return t.MarshalEdn()
	case *Value:
		return t, nil
	case Tag:
		return TagValue(t.Name()), nil
	case []byte:
		return Buffer(t), nil
	}
	return reflectToValue(reflect.ValueOf(data))
}

func reflectToValue(rv reflect.Value) (*Value, error) {
	if rv.CanInterface() {
		switch t := rv.Interface().(type) {
		case Marshaler:
			return t.MarshalEdn()
		case *Value:
			return t, nil
		case Tag:
			return TagValue(t.Name()), nil
		}
	}
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil
	case reflect.String:
		return Str(rv.String()), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Buffer(rv.Bytes()), nil
		}
		fallthrough
	case reflect.Array:
		items := make([]*Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := reflectToValue(rv.Index(i))
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return NewList(items...), nil
	case reflect.Map:
		m := NewMapView()
		iter := rv.MapRange()
		for iter.Next() {
			key, err := mapKeyToValue(iter.Key())
			if err != nil {
				return nil, err
			}
			value, err := reflectToValue(iter.Value())
			if err != nil {
				return nil, err
			}
			m.Put(key, value)
		}
		return &Value{kind: KindMap, mapVal: m}, nil
	case reflect.Struct:
		return structToValue(rv)
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Nil(), nil
		}
		return reflectToValue(rv.Elem())
	default:
		return nil, fmt.Errorf("edn: cannot convert %s to a value", rv.Type())
	}
}

// mapKeyToValue keeps map keys as Str so they stay distinct from the Tag
// keys struct fields produce.
func mapKeyToValue(rv reflect.Value) (*Value, error) {
	if rv.Kind() == reflect.String {
		return Str(rv.String()), nil
	}
	return reflectToValue(rv)
}

func structToValue(rv reflect.Value) (*Value, error) {
	m := NewMapView()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := fieldName(field)
		if name == "" {
			continue
		}
		value, err := reflectToValue(rv.Field(i))
		if err != nil {
			return nil, err
		}
		m.Put(TagValue(name), value)
	}
	return &Value{kind: KindMap, mapVal: m}, nil
}

// fieldName resolves the key a struct field maps to: the first part of
// the `edn` tag when set, `-` to skip, otherwise the Go field name.
func fieldName(field reflect.StructField) string {
	tag, ok := field.Tag.Lookup("edn")
	if !ok {
		return field.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// FromValue converts a Value into native Go data. target must be a
// non-nil pointer. Integral fields require integral numbers in range;
// string fields accept Str or Tag; struct targets accept a Map keyed by
// Tag or Str, or a Record. Pointer fields become nil for Nil or missing
// entries; a missing non-pointer field is an error. Types implementing
// Unmarshaler take over their own decoding.
func FromValue(v *Value, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return deserializationErr("target must be a non-nil pointer, got %T", target)
	}
	return reflectFromValue(v, rv.Elem())
}

func reflectFromValue(v *Value, rv reflect.Value) error {
	if rv.CanAddr() {
		if u, ok := rv.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalEdn(v)
		}
	}
	switch rv.Kind() {
	case reflect.Bool:
		b, err := v.AsBool()
		if err != nil {
			return deserializationErr("%s", err)
		}
		rv.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := integralNumber(v)
		if err != nil {
			return err
		}
		if rv.OverflowInt(int64(n)) {
			return deserializationErr("number %s overflows %s", formatNumber(n), rv.Type())
		}
		rv.SetInt(int64(n))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := integralNumber(v)
		if err != nil {
			return err
		}
		if n < 0 || rv.OverflowUint(uint64(n)) {
			return deserializationErr("number %s overflows %s", formatNumber(n), rv.Type())
		}
		rv.SetUint(uint64(n))
		return nil
	case reflect.Float32, reflect.Float64:
		n, err := v.AsNumber()
		if err != nil {
			return deserializationErr("%s", err)
		}
		rv.SetFloat(n)
		return nil
	case reflect.String:
		switch v.kind {
		case KindStr, KindSymbol, KindTag:
			rv.SetString(v.strVal)
			return nil
		default:
			return deserializationErr("expected string, got %s", v)
		}
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			buf, err := v.AsBuffer()
			if err != nil {
				return deserializationErr("%s", err)
			}
			rv.SetBytes(append([]byte(nil), buf...))
			return nil
		}
		list, err := v.ViewList()
		if err != nil {
			return deserializationErr("%s", err)
		}
		out := reflect.MakeSlice(rv.Type(), len(list.Items), len(list.Items))
		for i, item := range list.Items {
			if err := reflectFromValue(item, out.Index(i)); err != nil {
				return err
			}
		}
		rv.Set(out)
		return nil
	case reflect.Map:
		return mapFromValue(v, rv)
	case reflect.Struct:
		return structFromValue(v, rv)
	case reflect.Ptr:
		if v.IsNil() {
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
		elem := reflect.New(rv.Type().Elem())
		if err := reflectFromValue(v, elem.Elem()); err != nil {
			return err
		}
		rv.Set(elem)
		return nil
	case reflect.Interface:
		if rv.NumMethod() == 0 {
			rv.Set(reflect.ValueOf(v))
			return nil
		}
		return deserializationErr("cannot decode into %s", rv.Type())
	default:
		return deserializationErr("cannot decode into %s", rv.Type())
	}
}

// integralNumber reads a Number that must carry an integer exactly.
func integralNumber(v *Value) (float64, error) {
	n, err := v.AsNumber()
	if err != nil {
		return 0, deserializationErr("%s", err)
	}
	if n != math.Trunc(n) {
		return 0, deserializationErr("expected integer, got %s", formatNumber(n))
	}
	return n, nil
}

func mapFromValue(v *Value, rv reflect.Value) error {
	if rv.Type().Key().Kind() != reflect.String {
		return deserializationErr("map target needs string keys, got %s", rv.Type())
	}
	m, err := v.ViewMap()
	if err != nil {
		return deserializationErr("%s", err)
	}
	out := reflect.MakeMapWithSize(rv.Type(), m.Len())
	for _, e := range m.Entries() {
		var name string
		switch e.Key.kind {
		case KindStr, KindTag:
			name = e.Key.strVal
		default:
			return deserializationErr("expected string or tag key, got %s", e.Key)
		}
		elem := reflect.New(rv.Type().Elem()).Elem()
		if err := reflectFromValue(e.Value, elem); err != nil {
			return err
		}
		out.SetMapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()), elem)
	}
	rv.Set(out)
	return nil
}

func structFromValue(v *Value, rv reflect.Value) error {
	lookup, err := structFieldLookup(v)
	if err != nil {
		return err
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := fieldName(field)
		if name == "" {
			continue
		}
		value, found := lookup(name)
		if !found || value.IsNil() {
			if field.Type.Kind() == reflect.Ptr {
				rv.Field(i).Set(reflect.Zero(field.Type))
				continue
			}
			if !found {
				return deserializationErr("missing field %q", name)
			}
		}
		if err := reflectFromValue(value, rv.Field(i)); err != nil {
			return err
		}
	}
	return nil
}

// structFieldLookup reads struct fields out of a Map keyed by Tag or Str,
// or out of a Record's pairs; the record's own tag is not checked.
func structFieldLookup(v *Value) (func(string) (*Value, bool), error) {
	switch v.kind {
	case KindMap:
		m := v.mapVal
		return func(name string) (*Value, bool) {
			if value, ok := m.Get(TagValue(name)); ok {
				return value, true
			}
			if value, ok := m.Get(Str(name)); ok {
				return value, true
			}
			return nil, false
		}, nil
	case KindRecord:
		r := v.recVal
		return r.Get, nil
	default:
		return nil, deserializationErr("expected map or record for struct, got %s", v)
	}
}
