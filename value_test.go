package edn

import (
	"testing"

	"github.com/cirru/cirru-edn-go/cirru"
)

// ============================================================
// Equality Tests
// ============================================================

func TestEquals_Numbers(t *testing.T) {
	if !Number(1.0).Equals(Number(1.0 + Epsilon/2)) {
		t.Error("numbers within epsilon should be equal")
	}
	if Number(1.0).Equals(Number(1.0001)) {
		t.Error("distinct numbers should not be equal")
	}
}

func TestEquals_Variants(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *Value
		expected bool
	}{
		{"nil", Nil(), Nil(), true},
		{"nil vs false", Nil(), Bool(false), false},
		{"tag vs str", TagValue("a"), Str("a"), false},
		{"symbol vs tag", Symbol("a"), TagValue("a"), false},
		{"list", NewList(Number(1)), NewList(Number(1)), true},
		{"list length", NewList(Number(1)), NewList(Number(1), Number(2)), false},
		{"buffer", Buffer([]byte{1, 2}), Buffer([]byte{1, 2}), true},
		{"set ignores order", NewSet(Number(1), Number(2)), NewSet(Number(2), Number(1)), true},
		{"map ignores order", NewMap(
			MapEntry{Str("a"), Number(1)},
			MapEntry{Str("b"), Number(2)},
		), NewMap(
			MapEntry{Str("b"), Number(2)},
			MapEntry{Str("a"), Number(1)},
		), true},
		{"tuple", Tuple(TagValue("a"), Number(1)), Tuple(TagValue("a"), Number(1)), true},
		{"tuple vs enum tuple", Tuple(TagValue("a")), EnumTuple(TagValue("e"), TagValue("a")), false},
		{"atom by content", Atom(Number(1)), Atom(Number(1)), true},
		{"record order matters", NewRecord(NewTag("D"),
			RecordPair{NewTag("a"), Number(1)},
			RecordPair{NewTag("b"), Number(2)},
		), NewRecord(NewTag("D"),
			RecordPair{NewTag("b"), Number(2)},
			RecordPair{NewTag("a"), Number(1)},
		), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equals(tt.b); got != tt.expected {
				t.Errorf("Equals = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEquals_AnyRefIdentity(t *testing.T) {
	ref := NewAnyRef(Number(1))
	other := NewAnyRef(Number(1))
	if !AnyRefValue(ref).Equals(AnyRefValue(ref)) {
		t.Error("same handle should be equal")
	}
	if AnyRefValue(ref).Equals(AnyRefValue(other)) {
		t.Error("distinct handles should not be equal, even with equal content")
	}
}

// ============================================================
// Ordering Tests
// ============================================================

func TestCompare_VariantPrecedence(t *testing.T) {
	ordered := []*Value{
		Nil(),
		Bool(true),
		Number(9),
		Symbol("s"),
		TagValue("t"),
		Str("x"),
		Quote(cirru.NewLeaf("a")),
		Tuple(TagValue("a")),
		NewList(Number(1)),
		Buffer([]byte{1}),
		NewSet(Number(1)),
		NewMap(MapEntry{Str("a"), Number(1)}),
		NewRecord(NewTag("D"), RecordPair{NewTag("a"), Number(1)}),
		Atom(Number(1)),
	}
	for i := 0; i < len(ordered)-1; i++ {
		if ordered[i].Compare(ordered[i+1]) >= 0 {
			t.Errorf("%s should sort before %s", ordered[i], ordered[i+1])
		}
		if ordered[i+1].Compare(ordered[i]) <= 0 {
			t.Errorf("%s should sort after %s", ordered[i+1], ordered[i])
		}
	}
}

func TestCompare_WithinVariant(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *Value
		expected int
	}{
		{"numbers", Number(1), Number(2), -1},
		{"strings", Str("a"), Str("b"), -1},
		{"false before true", Bool(false), Bool(true), -1},
		{"tuple by tag", Tuple(TagValue("a")), Tuple(TagValue("b")), -1},
		{"tuple by extra", Tuple(TagValue("a"), Number(1)), Tuple(TagValue("a"), Number(2)), -1},
		{"plain tuple before enum", Tuple(TagValue("a")), EnumTuple(TagValue("e"), TagValue("a")), -1},
		{"enum tuples by enum tag", EnumTuple(TagValue("d"), TagValue("a")), EnumTuple(TagValue("e"), TagValue("a")), -1},
		{"smaller set first", NewSet(Number(1)), NewSet(Number(1), Number(2)), -1},
		{"equal sets", NewSet(Number(1), Number(2)), NewSet(Number(2), Number(1)), 0},
		{"list lexicographic", NewList(Number(1), Number(9)), NewList(Number(2)), -1},
		{"buffer bytes", Buffer([]byte{1}), Buffer([]byte{2}), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.expected {
				t.Errorf("Compare = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestCompare_EqualSizeSetsPanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for equal-size distinct sets")
		}
	}()
	NewSet(Number(1)).Compare(NewSet(Number(2)))
}

// ============================================================
// Hashing Tests
// ============================================================

func TestHash_ConsistentWithEquals(t *testing.T) {
	pairs := [][2]*Value{
		{NewSet(Number(1), Number(2)), NewSet(Number(2), Number(1))},
		{NewMap(
			MapEntry{Str("a"), Number(1)},
			MapEntry{Str("b"), Number(2)},
		), NewMap(
			MapEntry{Str("b"), Number(2)},
			MapEntry{Str("a"), Number(1)},
		)},
		{NewList(Str("x")), NewList(Str("x"))},
		{Atom(Number(3)), Atom(Number(3))},
	}
	for _, pair := range pairs {
		if pair[0].Hash() != pair[1].Hash() {
			t.Errorf("equal values should hash alike: %s vs %s", pair[0], pair[1])
		}
	}
}

func TestHash_DistinguishesVariants(t *testing.T) {
	if TagValue("a").Hash() == Str("a").Hash() {
		t.Error("tag and string with same text should hash differently")
	}
	if Symbol("a").Hash() == Str("a").Hash() {
		t.Error("symbol and string with same text should hash differently")
	}
}

func TestSet_Dedup(t *testing.T) {
	s := NewSet(Number(1), Number(1.0), NewList(Number(2)), NewList(Number(2)))
	view, err := s.ViewSet()
	if err != nil {
		t.Fatal(err)
	}
	if view.Len() != 2 {
		t.Errorf("Len = %d, want 2", view.Len())
	}
	if !view.Contains(NewList(Number(2))) {
		t.Error("set should contain equal nested value")
	}
}

func TestMap_KeyReplacement(t *testing.T) {
	m := NewMap(
		MapEntry{Str("a"), Number(1)},
		MapEntry{Str("a"), Number(2)},
	)
	view, err := m.ViewMap()
	if err != nil {
		t.Fatal(err)
	}
	if view.Len() != 1 {
		t.Errorf("Len = %d, want 1", view.Len())
	}
	got, ok := view.Get(Str("a"))
	if !ok || !got.Equals(Number(2)) {
		t.Errorf("later entry should win, got %s", got)
	}
}

// ============================================================
// Accessor and Viewer Tests
// ============================================================

func TestAccessors(t *testing.T) {
	if b, err := Bool(true).AsBool(); err != nil || !b {
		t.Errorf("AsBool = %v, %v", b, err)
	}
	if _, err := Str("x").AsBool(); err == nil {
		t.Error("AsBool on string should fail")
	}
	if n, err := Number(2.5).AsNumber(); err != nil || n != 2.5 {
		t.Errorf("AsNumber = %v, %v", n, err)
	}
	if s, err := Str("x").AsString(); err != nil || s != "x" {
		t.Errorf("AsString = %v, %v", s, err)
	}
	if s, err := Symbol("x").AsSymbol(); err != nil || s != "x" {
		t.Errorf("AsSymbol = %v, %v", s, err)
	}
	if tag, err := TagValue("x").AsTag(); err != nil || tag.Name() != "x" {
		t.Errorf("AsTag = %v, %v", tag, err)
	}
	if buf, err := Buffer([]byte{1}).AsBuffer(); err != nil || len(buf) != 1 {
		t.Errorf("AsBuffer = %v, %v", buf, err)
	}
	if inner, err := Atom(Number(1)).AsAtom(); err != nil || !inner.Equals(Number(1)) {
		t.Errorf("AsAtom = %v, %v", inner, err)
	}
}

func TestViewers_NilAsEmpty(t *testing.T) {
	list, err := Nil().ViewList()
	if err != nil || len(list.Items) != 0 {
		t.Errorf("ViewList on nil = %v, %v", list, err)
	}
	m, err := Nil().ViewMap()
	if err != nil || m.Len() != 0 {
		t.Errorf("ViewMap on nil = %v, %v", m, err)
	}
	s, err := Nil().ViewSet()
	if err != nil || s.Len() != 0 {
		t.Errorf("ViewSet on nil = %v, %v", s, err)
	}
	if _, err := Number(1).ViewList(); err == nil {
		t.Error("ViewList on number should fail")
	}
}

func TestListView_GetOrNil(t *testing.T) {
	list, err := NewList(Number(1), Number(2)).ViewList()
	if err != nil {
		t.Fatal(err)
	}
	if !list.GetOrNil(1).Equals(Number(2)) {
		t.Error("index 1 should read")
	}
	if !list.GetOrNil(5).IsNil() {
		t.Error("past the end should be nil")
	}
	if !list.GetOrNil(-1).IsNil() {
		t.Error("negative index should be nil")
	}
}

func TestMapView_GetOrNil(t *testing.T) {
	m, err := NewMap(
		MapEntry{Str("a"), Number(1)},
		MapEntry{TagValue("b"), Number(2)},
	).ViewMap()
	if err != nil {
		t.Fatal(err)
	}
	if !m.GetOrNil("a").Equals(Number(1)) {
		t.Error("string key should read")
	}
	if !m.GetOrNil("b").Equals(Number(2)) {
		t.Error("tag key should read")
	}
	if !m.GetOrNil("missing").IsNil() {
		t.Error("absent key should be nil")
	}
}

func TestRecordView_Helpers(t *testing.T) {
	r, err := NewRecord(NewTag("Demo"),
		RecordPair{NewTag("a"), Number(1)},
	).ViewRecord()
	if err != nil {
		t.Fatal(err)
	}
	if !r.HasKey("a") || r.HasKey("b") {
		t.Error("HasKey mismatch")
	}
	r.Insert("b", Number(2))
	got, ok := r.Get("b")
	if !ok || !got.Equals(Number(2)) {
		t.Errorf("Get after Insert = %v, %v", got, ok)
	}
}

func TestAnyRef_LoadStore(t *testing.T) {
	ref := NewAnyRef("initial")
	if got := ref.Load(); got != "initial" {
		t.Errorf("Load = %v", got)
	}
	ref.Store(42)
	if got := ref.Load(); got != 42 {
		t.Errorf("Load after Store = %v", got)
	}
}

// ============================================================
// Display Tests
// ============================================================

func TestString_Display(t *testing.T) {
	tests := []struct {
		name     string
		value    *Value
		expected string
	}{
		{"nil", Nil(), "nil"},
		{"bool", Bool(true), "true"},
		{"integer number", Number(1), "1"},
		{"fraction", Number(1.25), "1.25"},
		{"symbol", Symbol("a"), "'a"},
		{"tag", TagValue("a"), ":a"},
		{"plain string", Str("a"), "|a"},
		{"spaced string", Str("a b"), `"|a b"`},
		{"quote", Quote(cirru.NewList(cirru.NewLeaf("a"), cirru.NewLeaf("b"))), "(quote (a b))"},
		{"tuple", Tuple(TagValue("t"), Number(1), Number(2)), "(:: :t 1 2)"},
		{"enum tuple", EnumTuple(TagValue("e"), TagValue("a"), Number(1)), "(%:: :e :a 1)"},
		{"list", NewList(Number(1)), "([] 1)"},
		{"set", NewSet(Symbol("a")), "(#{} 'a)"},
		{"map", NewMap(MapEntry{TagValue("a"), Str("b")}), "({} (:a |b))"},
		{"record", NewRecord(NewTag("Demo"), RecordPair{NewTag("a"), Number(1)}), "(%{} :Demo (:a 1))"},
		{"buffer", Buffer([]byte{0x0a}), "(buf 0a)"},
		{"atom", Atom(Number(1)), "(atom 1)"},
		{"any-ref", AnyRefValue(NewAnyRef(nil)), "(any-ref ...)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.String(); got != tt.expected {
				t.Errorf("String = %q, want %q", got, tt.expected)
			}
		})
	}
}
