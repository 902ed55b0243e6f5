package expr

// Map is a hash map keyed by Expression, used to cache per-expression
// results. Buckets are scanned with Equal, so hash collisions are safe.
type Map map[uint64][]mapEntry

type mapEntry struct {
	key Expression
	val interface{}
}

func (m Map) Find(e Expression) (interface{}, bool) {
	b := m[e.HashCode()]
	for i := range b {
		if b[i].key.Equal(e) {
			return b[i].val, true
		}
	}
	return nil, false
}

// Set stores v under e, replacing any existing value.
func (m Map) Set(e Expression, v interface{}) {
	h := e.HashCode()
	b := m[h]
	for i := range b {
		if b[i].key.Equal(e) {
			b[i].val = v
			return
		}
	}
	m[h] = append(b, mapEntry{key: e, val: v})
}

// Add inserts only when the key is absent and returns the stored value.
func (m Map) Add(e Expression, v interface{}) interface{} {
	h := e.HashCode()
	b := m[h]
	for i := range b {
		if b[i].key.Equal(e) {
			return b[i].val
		}
	}
	m[h] = append(b, mapEntry{key: e, val: v})
	return v
}
