package edn

import (
	"errors"
	"strings"
	"testing"
)

// ============================================================
// Native Bridge Tests
// ============================================================

type profile struct {
	Name     string            `edn:"name"`
	Age      int               `edn:"age"`
	Active   bool              `edn:"active"`
	Scores   []float64         `edn:"scores"`
	Metadata map[string]string `edn:"metadata"`
	Avatar   []byte            `edn:"avatar"`
	Nick     *string           `edn:"nick"`
	hidden   int
	Ignored  string `edn:"-"`
}

func TestToValue_Struct(t *testing.T) {
	nick := "ali"
	p := profile{
		Name:     "Alice",
		Age:      30,
		Active:   true,
		Scores:   []float64{85.5, 92},
		Metadata: map[string]string{"role": "admin"},
		Avatar:   []byte{1, 2},
		Nick:     &nick,
		hidden:   7,
		Ignored:  "nope",
	}
	v, err := ToValue(p)
	if err != nil {
		t.Fatalf("ToValue failed: %v", err)
	}
	m, err := v.ViewMap()
	if err != nil {
		t.Fatal(err)
	}

	// struct fields become tag keys
	if got, ok := m.Get(TagValue("name")); !ok || !got.Equals(Str("Alice")) {
		t.Errorf("name = %v, %v", got, ok)
	}
	if got, ok := m.Get(TagValue("age")); !ok || !got.Equals(Number(30)) {
		t.Errorf("age = %v, %v", got, ok)
	}
	if _, ok := m.Get(Str("name")); ok {
		t.Error("field should not appear under a string key")
	}
	if m.GetOrNil("Ignored").Kind() != KindNil || m.GetOrNil("hidden").Kind() != KindNil {
		t.Error("skipped fields should be absent")
	}
	if got, ok := m.Get(TagValue("avatar")); !ok || got.Kind() != KindBuffer {
		t.Errorf("avatar should be a buffer, got %v", got)
	}

	// map keys stay strings
	meta, err := m.GetOrNil("metadata").ViewMap()
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := meta.Get(Str("role")); !ok || !got.Equals(Str("admin")) {
		t.Errorf("metadata role = %v, %v", got, ok)
	}
}

func TestToValue_NilPointer(t *testing.T) {
	v, err := ToValue(profile{})
	if err != nil {
		t.Fatalf("ToValue failed: %v", err)
	}
	m, _ := v.ViewMap()
	if !m.GetOrNil("nick").IsNil() {
		t.Error("nil pointer field should convert to nil")
	}
}

func TestFromValue_Struct(t *testing.T) {
	v := NewMap(
		MapEntry{TagValue("name"), Str("Bob")},
		MapEntry{TagValue("age"), Number(25)},
		MapEntry{TagValue("active"), Bool(false)},
		MapEntry{TagValue("scores"), NewList(Number(90), Number(88.5))},
		MapEntry{TagValue("metadata"), NewMap(MapEntry{Str("role"), Str("user")})},
		MapEntry{TagValue("avatar"), Buffer([]byte{3, 4})},
		MapEntry{TagValue("nick"), Str("bobby")},
	)
	var p profile
	if err := FromValue(v, &p); err != nil {
		t.Fatalf("FromValue failed: %v", err)
	}
	if p.Name != "Bob" || p.Age != 25 || p.Active {
		t.Errorf("scalar fields = %+v", p)
	}
	if len(p.Scores) != 2 || p.Scores[1] != 88.5 {
		t.Errorf("scores = %v", p.Scores)
	}
	if p.Metadata["role"] != "user" {
		t.Errorf("metadata = %v", p.Metadata)
	}
	if string(p.Avatar) != "\x03\x04" {
		t.Errorf("avatar = %v", p.Avatar)
	}
	if p.Nick == nil || *p.Nick != "bobby" {
		t.Errorf("nick = %v", p.Nick)
	}
}

type badge struct {
	Name string  `edn:"name"`
	Nick *string `edn:"nick"`
}

func TestFromValue_StringKeysAlsoWork(t *testing.T) {
	v := NewMap(MapEntry{Str("name"), Str("Carol")})
	var b badge
	if err := FromValue(v, &b); err != nil {
		t.Fatalf("FromValue failed: %v", err)
	}
	if b.Name != "Carol" {
		t.Errorf("name = %q", b.Name)
	}
}

func TestFromValue_MissingAndNil(t *testing.T) {
	nick := "x"
	b := badge{Nick: &nick}
	v := NewMap(MapEntry{TagValue("name"), Str("Dan")})
	if err := FromValue(v, &b); err != nil {
		t.Fatalf("FromValue failed: %v", err)
	}
	if b.Nick != nil {
		t.Error("missing pointer field should reset to nil")
	}
	v = NewMap(
		MapEntry{TagValue("name"), Str("Dan")},
		MapEntry{TagValue("nick"), Nil()},
	)
	b.Nick = &nick
	if err := FromValue(v, &b); err != nil {
		t.Fatalf("FromValue failed: %v", err)
	}
	if b.Nick != nil {
		t.Error("nil value should clear pointer field")
	}
}

func TestFromValue_MissingFieldErrors(t *testing.T) {
	v := NewMap(MapEntry{TagValue("nick"), Str("d")})
	var b badge
	err := FromValue(v, &b)
	if err == nil {
		t.Fatal("expected error for missing non-pointer field")
	}
	var deserErr *DeserializationError
	if !errors.As(err, &deserErr) {
		t.Fatalf("expected DeserializationError, got %T", err)
	}
	if !strings.Contains(deserErr.Message, `missing field "name"`) {
		t.Errorf("message = %q", deserErr.Message)
	}
}

func TestFromValue_Record(t *testing.T) {
	v := NewRecord(NewTag("Badge"),
		RecordPair{NewTag("name"), Str("Eve")},
		RecordPair{NewTag("nick"), Str("evie")},
	)
	var b badge
	if err := FromValue(v, &b); err != nil {
		t.Fatalf("FromValue failed: %v", err)
	}
	if b.Name != "Eve" || b.Nick == nil || *b.Nick != "evie" {
		t.Errorf("got %+v", b)
	}
}

func TestFromValue_StringAcceptsTag(t *testing.T) {
	var s string
	if err := FromValue(TagValue("ready"), &s); err != nil {
		t.Fatalf("FromValue failed: %v", err)
	}
	if s != "ready" {
		t.Errorf("got %q", s)
	}
}

func TestFromValue_IntegerChecks(t *testing.T) {
	var n int8
	if err := FromValue(Number(300), &n); err == nil {
		t.Error("expected overflow error")
	}
	var i int
	err := FromValue(Number(1.5), &i)
	if err == nil {
		t.Fatal("expected error for fractional number")
	}
	var deserErr *DeserializationError
	if !errors.As(err, &deserErr) {
		t.Fatalf("expected DeserializationError, got %T", err)
	}
	if !strings.Contains(deserErr.Message, "expected integer") {
		t.Errorf("message = %q", deserErr.Message)
	}
	var u uint
	if err := FromValue(Number(-1), &u); err == nil {
		t.Error("expected error for negative into unsigned")
	}
	if err := FromValue(Number(12), &i); err != nil || i != 12 {
		t.Errorf("integral number should decode, got %d, %v", i, err)
	}
}

func TestFromValue_TargetValidation(t *testing.T) {
	var p profile
	if err := FromValue(Nil(), p); err == nil {
		t.Error("non-pointer target should fail")
	}
	if err := FromValue(Nil(), (*profile)(nil)); err == nil {
		t.Error("nil pointer target should fail")
	}
	var s string
	if err := FromValue(Number(1), &s); err == nil {
		t.Error("number into string should fail")
	}
}

func TestBridge_RoundTrip(t *testing.T) {
	original := profile{
		Name:     "Frank",
		Age:      52,
		Active:   true,
		Scores:   []float64{1, 2, 3},
		Metadata: map[string]string{"team": "infra"},
		Avatar:   []byte{9},
	}
	v, err := ToValue(original)
	if err != nil {
		t.Fatalf("ToValue failed: %v", err)
	}
	var back profile
	if err := FromValue(v, &back); err != nil {
		t.Fatalf("FromValue failed: %v", err)
	}
	if back.Name != original.Name || back.Age != original.Age || !back.Active {
		t.Errorf("got %+v", back)
	}
	if len(back.Scores) != 3 || back.Metadata["team"] != "infra" || string(back.Avatar) != "\x09" {
		t.Errorf("got %+v", back)
	}
}

// ============================================================
// Custom Marshaling Tests
// ============================================================

// severity plugs into the bridge as a tag-backed enum.
type severity int

const (
	sevLow severity = iota
	sevHigh
)

func (s severity) MarshalEdn() (*Value, error) {
	switch s {
	case sevLow:
		return TagValue("low"), nil
	case sevHigh:
		return TagValue("high"), nil
	default:
		return nil, deserializationErr("unknown severity %d", int(s))
	}
}

func (s *severity) UnmarshalEdn(v *Value) error {
	tag, err := v.AsTag()
	if err != nil {
		return deserializationErr("%s", err)
	}
	switch tag.Name() {
	case "low":
		*s = sevLow
	case "high":
		*s = sevHigh
	default:
		return deserializationErr("unknown severity %q", tag.Name())
	}
	return nil
}

type alert struct {
	Level severity `edn:"level"`
	Text  string   `edn:"text"`
}

func TestBridge_CustomMarshaler(t *testing.T) {
	v, err := ToValue(alert{Level: sevHigh, Text: "disk full"})
	if err != nil {
		t.Fatalf("ToValue failed: %v", err)
	}
	m, _ := v.ViewMap()
	if got := m.GetOrNil("level"); !got.Equals(TagValue("high")) {
		t.Errorf("level = %s", got)
	}

	var back alert
	if err := FromValue(v, &back); err != nil {
		t.Fatalf("FromValue failed: %v", err)
	}
	if back.Level != sevHigh || back.Text != "disk full" {
		t.Errorf("got %+v", back)
	}

	var bad severity
	if err := FromValue(TagValue("medium"), &bad); err == nil {
		t.Error("unknown enum tag should fail")
	}
}
