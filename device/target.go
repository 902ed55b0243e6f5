// Package device models the compilation target: the set of native
// operations a backend supports, per-qarg error rates, and the qubit
// connectivity graph derived from the two-qubit operations.
package device

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrUnknownOperation is returned when a target has no entry for a
// requested operation.
var ErrUnknownOperation = errors.New("device: unknown operation")

// Props holds the calibration data of one operation on one qarg tuple.
type Props struct {
	Error    float64
	Duration float64
}

type qargProps struct {
	qargs []int
	props Props
}

type operation struct {
	// global operations apply to every qarg tuple of the right size and
	// carry no per-qarg entries
	global      bool
	globalProps Props
	numQubits   int
	entries     []qargProps
	byKey       map[string]int
}

func qargsKey(qargs []int) string {
	s := ""
	for i, q := range qargs {
		if i > 0 {
			s += ","
		}
		s += strconv.Itoa(q)
	}
	return s
}

// Target describes the operations a backend can execute natively.
type Target struct {
	numQubits int
	ops       map[string]*operation
	names     []string
}

// NewTarget returns an empty target over the given number of qubits.
func NewTarget(numQubits int) *Target {
	return &Target{numQubits: numQubits, ops: make(map[string]*operation)}
}

// NumQubits returns the number of physical qubits.
func (t *Target) NumQubits() int {
	return t.numQubits
}

func (t *Target) op(name string) *operation {
	o, ok := t.ops[name]
	if !ok {
		o = &operation{byKey: make(map[string]int)}
		t.ops[name] = o
		t.names = append(t.names, name)
	}
	return o
}

// AddGlobalOperation registers an operation available on every qarg tuple
// of its arity.
func (t *Target) AddGlobalOperation(name string, numQubits int, props Props) {
	o := t.op(name)
	o.global = true
	o.globalProps = props
	o.numQubits = numQubits
}

// AddOperation registers an operation on one specific qarg tuple.
func (t *Target) AddOperation(name string, qargs []int, props Props) {
	o := t.op(name)
	o.numQubits = len(qargs)
	key := qargsKey(qargs)
	if i, ok := o.byKey[key]; ok {
		o.entries[i].props = props
		return
	}
	o.byKey[key] = len(o.entries)
	o.entries = append(o.entries, qargProps{qargs: append([]int(nil), qargs...), props: props})
}

// HasOperation reports whether the target supports the named operation on
// any qargs.
func (t *Target) HasOperation(name string) bool {
	_, ok := t.ops[name]
	return ok
}

// Supported reports whether the named operation can run on the exact qarg
// tuple. Direction matters for two-qubit operations.
func (t *Target) Supported(name string, qargs []int) bool {
	o, ok := t.ops[name]
	if !ok {
		return false
	}
	if o.global {
		return o.numQubits == len(qargs)
	}
	_, ok = o.byKey[qargsKey(qargs)]
	return ok
}

// OperationProps returns the calibration data of an operation on a qarg
// tuple.
func (t *Target) OperationProps(name string, qargs []int) (Props, error) {
	o, ok := t.ops[name]
	if !ok {
		return Props{}, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}
	if o.global {
		if o.numQubits != len(qargs) {
			return Props{}, fmt.Errorf("%w: %s on %v", ErrUnknownOperation, name, qargs)
		}
		return o.globalProps, nil
	}
	if i, ok := o.byKey[qargsKey(qargs)]; ok {
		return o.entries[i].props, nil
	}
	return Props{}, fmt.Errorf("%w: %s on %v", ErrUnknownOperation, name, qargs)
}

// ErrorRate returns the error rate of an operation on a qarg tuple, or 0
// when the target has no entry for it.
func (t *Target) ErrorRate(name string, qargs []int) float64 {
	o, ok := t.ops[name]
	if !ok {
		return 0
	}
	if o.global {
		return o.globalProps.Error
	}
	if i, ok := o.byKey[qargsKey(qargs)]; ok {
		return o.entries[i].props.Error
	}
	return 0
}

// OperationNames returns all operation names in sorted order.
func (t *Target) OperationNames() []string {
	names := append([]string(nil), t.names...)
	sort.Strings(names)
	return names
}

// NumQubitsForOperation returns the arity of the named operation.
func (t *Target) NumQubitsForOperation(name string) (int, bool) {
	o, ok := t.ops[name]
	if !ok {
		return 0, false
	}
	return o.numQubits, true
}

// QargsForOperation returns the explicit qarg tuples of a non-global
// operation, in insertion order. Global operations return nil.
func (t *Target) QargsForOperation(name string) [][]int {
	o, ok := t.ops[name]
	if !ok || o.global {
		return nil
	}
	res := make([][]int, len(o.entries))
	for i, e := range o.entries {
		res[i] = e.qargs
	}
	return res
}

// NonGlobalOperationNames returns the names whose qarg coverage is strictly
// smaller than the union of qarg tuples the target supports at that arity.
func (t *Target) NonGlobalOperationNames() []string {
	universe := make(map[int]map[string]bool)
	for _, o := range t.ops {
		if o.global {
			continue
		}
		u := universe[o.numQubits]
		if u == nil {
			u = make(map[string]bool)
			universe[o.numQubits] = u
		}
		for _, e := range o.entries {
			u[qargsKey(e.qargs)] = true
		}
	}
	var res []string
	for _, name := range t.names {
		o := t.ops[name]
		if o.global {
			continue
		}
		if len(o.entries) < len(universe[o.numQubits]) {
			res = append(res, name)
		}
	}
	sort.Strings(res)
	return res
}

// BuildCoupling derives the connectivity graph from the target's two-qubit
// operations. Edges are undirected.
func (t *Target) BuildCoupling() *Coupling {
	seen := make(map[[2]int]bool)
	var edges [][2]int
	for _, o := range t.ops {
		if o.numQubits != 2 {
			continue
		}
		if o.global {
			// a global two-qubit operation implies all-to-all coupling
			for a := 0; a < t.numQubits; a++ {
				for b := a + 1; b < t.numQubits; b++ {
					e := [2]int{a, b}
					if !seen[e] {
						seen[e] = true
						edges = append(edges, e)
					}
				}
			}
			continue
		}
		for _, entry := range o.entries {
			a, b := entry.qargs[0], entry.qargs[1]
			if a > b {
				a, b = b, a
			}
			e := [2]int{a, b}
			if !seen[e] {
				seen[e] = true
				edges = append(edges, e)
			}
		}
	}
	return NewCoupling(t.numQubits, edges)
}
