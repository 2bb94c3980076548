package edn

// SetView and MapView are content-hashed collections: members are grouped
// into buckets by Value.Hash and resolved inside a bucket with Equals, so
// keys can be any Value, including nested collections. Iteration order is
// unspecified; only the printer imposes an order, for output.

// SetView is an unordered collection of unique values.
type SetView struct {
	buckets map[uint64][]*Value
	size    int
}

// NewSetView creates an empty set.
func NewSetView() *SetView {
	return &SetView{buckets: map[uint64][]*Value{}}
}

// Add inserts a value unless an equal one is already present.
func (s *SetView) Add(v *Value) {
	h := v.Hash()
	for _, existing := range s.buckets[h] {
		if existing.Equals(v) {
			return
		}
	}
	s.buckets[h] = append(s.buckets[h], v)
	s.size++
}

// Contains reports membership by value equality.
func (s *SetView) Contains(v *Value) bool {
	for _, existing := range s.buckets[v.Hash()] {
		if existing.Equals(v) {
			return true
		}
	}
	return false
}

// Len returns the number of members.
func (s *SetView) Len() int {
	return s.size
}

// Items returns the members in unspecified order.
func (s *SetView) Items() []*Value {
	items := make([]*Value, 0, s.size)
	for _, bucket := range s.buckets {
		items = append(items, bucket...)
	}
	return items
}

// MapView is an unordered mapping with keys unique by value equality.
type MapView struct {
	buckets map[uint64][]MapEntry
	size    int
}

// NewMapView creates an empty map.
func NewMapView() *MapView {
	return &MapView{buckets: map[uint64][]MapEntry{}}
}

// Put inserts or replaces the entry for a key.
func (m *MapView) Put(key, value *Value) {
	h := key.Hash()
	bucket := m.buckets[h]
	for i, e := range bucket {
		if e.Key.Equals(key) {
			bucket[i].Value = value
			return
		}
	}
	m.buckets[h] = append(bucket, MapEntry{Key: key, Value: value})
	m.size++
}

// Get looks a key up by value equality.
func (m *MapView) Get(key *Value) (*Value, bool) {
	for _, e := range m.buckets[key.Hash()] {
		if e.Key.Equals(key) {
			return e.Value, true
		}
	}
	return nil, false
}

// GetOrNil reads by name regardless of whether the key is a Str or a Tag,
// returning Nil when absent.
func (m *MapView) GetOrNil(name string) *Value {
	if v, ok := m.Get(Str(name)); ok {
		return v
	}
	if v, ok := m.Get(TagValue(name)); ok {
		return v
	}
	return Nil()
}

// Len returns the number of entries.
func (m *MapView) Len() int {
	return m.size
}

// Entries returns the entries in unspecified order.
func (m *MapView) Entries() []MapEntry {
	entries := make([]MapEntry, 0, m.size)
	for _, bucket := range m.buckets {
		entries = append(entries, bucket...)
	}
	return entries
}
