// Package props implements the property set threaded through the transpiler
// pipeline. Passes publish results under well-known keys; later passes and
// the caller read them back.
package props

// Well-known keys.
const (
	KeyLayout                = "layout"
	KeyFinalLayout           = "final_layout"
	KeyOriginalQubitIndices  = "original_qubit_indices"
	KeyPostLayout            = "post_layout"
	KeyVF2StopReason         = "vf2_stop_reason"
	KeySabreSwapCount        = "sabre_swap_count"
	KeyPeepholeReplacedCount = "peephole_replaced_count"
)

// Set is a string-keyed bag of pass results.
type Set map[string]interface{}

// New returns an empty property set.
func New() Set {
	return make(Set)
}

// Get returns the value under key, or nil.
func (s Set) Get(key string) interface{} {
	return s[key]
}

// Has reports whether key is present.
func (s Set) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Put stores a value under key.
func (s Set) Put(key string, v interface{}) {
	s[key] = v
}

// Delete removes a key.
func (s Set) Delete(key string) {
	delete(s, key)
}

// Int reads an int value; ok is false when absent or differently typed.
func (s Set) Int(key string) (int, bool) {
	v, ok := s[key].(int)
	return v, ok
}

// String reads a string value.
func (s Set) String(key string) (string, bool) {
	v, ok := s[key].(string)
	return v, ok
}
