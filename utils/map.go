package utils

// Hashable is a key usable in a Map.
type Hashable interface {
	HashCode() uint64
	Equals(Hashable) bool
}

// Map is a hash-bucketed map over Hashable keys. Lookups scan the bucket of
// the key's hash code and compare with Equals, so hash collisions are safe.
type Map map[uint64][]mapEntry

type mapEntry struct {
	key Hashable
	val interface{}
}

func (m Map) Find(k Hashable) (interface{}, bool) {
	b := m[k.HashCode()]
	for i := range b {
		if b[i].key.Equals(k) {
			return b[i].val, true
		}
	}
	return nil, false
}

// Set stores v under k, replacing any existing value.
func (m Map) Set(k Hashable, v interface{}) {
	h := k.HashCode()
	b := m[h]
	for i := range b {
		if b[i].key.Equals(k) {
			b[i].val = v
			return
		}
	}
	m[h] = append(b, mapEntry{key: k, val: v})
}

// Add inserts only when the key is absent and returns the stored value.
func (m Map) Add(k Hashable, v interface{}) interface{} {
	h := k.HashCode()
	b := m[h]
	for i := range b {
		if b[i].key.Equals(k) {
			return b[i].val
		}
	}
	m[h] = append(b, mapEntry{key: k, val: v})
	return v
}

func (m Map) Clear() {
	for h := range m {
		delete(m, h)
	}
}
