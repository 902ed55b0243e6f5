// Package layout maps virtual circuit qubits onto physical device qubits.
// It provides the mapping type shared with the router, a bounded subgraph
// isomorphism search for perfect layouts, and the pass that relabels a
// circuit onto its chosen layout.
package layout

import (
	"fmt"
)

// Layout is a bijection between virtual qubits and a subset of the physical
// qubits. Physical qubits without a virtual counterpart map to -1.
type Layout struct {
	v2p []int
	p2v []int
}

// Identity returns the trivial layout of n virtual onto the first n of
// numPhysical physical qubits.
func Identity(n, numPhysical int) *Layout {
	v2p := make([]int, n)
	for i := range v2p {
		v2p[i] = i
	}
	l, err := FromV2P(v2p, numPhysical)
	if err != nil {
		panic(err)
	}
	return l
}

// FromV2P builds a layout from an explicit virtual-to-physical table.
func FromV2P(v2p []int, numPhysical int) (*Layout, error) {
	if len(v2p) > numPhysical {
		return nil, fmt.Errorf("layout: %d virtual qubits onto %d physical", len(v2p), numPhysical)
	}
	p2v := make([]int, numPhysical)
	for i := range p2v {
		p2v[i] = -1
	}
	for v, p := range v2p {
		if p < 0 || p >= numPhysical {
			return nil, fmt.Errorf("layout: physical qubit %d out of range [0, %d)", p, numPhysical)
		}
		if p2v[p] != -1 {
			return nil, fmt.Errorf("layout: physical qubit %d assigned twice", p)
		}
		p2v[p] = v
	}
	return &Layout{v2p: append([]int(nil), v2p...), p2v: p2v}, nil
}

// NumVirtual returns the number of virtual qubits.
func (l *Layout) NumVirtual() int {
	return len(l.v2p)
}

// NumPhysical returns the number of physical qubits.
func (l *Layout) NumPhysical() int {
	return len(l.p2v)
}

// V2P returns the physical qubit of virtual qubit v.
func (l *Layout) V2P(v int) int {
	return l.v2p[v]
}

// P2V returns the virtual qubit on physical qubit p, or -1.
func (l *Layout) P2V(p int) int {
	return l.p2v[p]
}

// V2PSlice returns a copy of the full virtual-to-physical table.
func (l *Layout) V2PSlice() []int {
	return append([]int(nil), l.v2p...)
}

// SwapPhysical exchanges whatever virtual qubits sit on two physical
// qubits. This is the effect of inserting a swap gate.
func (l *Layout) SwapPhysical(a, b int) {
	va, vb := l.p2v[a], l.p2v[b]
	l.p2v[a], l.p2v[b] = vb, va
	if va != -1 {
		l.v2p[va] = b
	}
	if vb != -1 {
		l.v2p[vb] = a
	}
}

// Copy returns an independent copy.
func (l *Layout) Copy() *Layout {
	return &Layout{
		v2p: append([]int(nil), l.v2p...),
		p2v: append([]int(nil), l.p2v...),
	}
}

// Compose returns the layout that first applies l and then applies next:
// virtual v ends on next.V2P(l.V2P(v)). next must be a permutation of the
// full physical set, such as a router's final layout.
func (l *Layout) Compose(next *Layout) *Layout {
	if next.NumVirtual() != l.NumPhysical() {
		panic("unexpected situation: composing layouts of different sizes")
	}
	v2p := make([]int, len(l.v2p))
	for v, p := range l.v2p {
		v2p[v] = next.V2P(p)
	}
	out, err := FromV2P(v2p, len(l.p2v))
	if err != nil {
		panic(err)
	}
	return out
}

// Expand returns a layout over the full physical set: virtual qubits keep
// their position and every unused physical qubit gets a fresh ancilla
// virtual index, assigned in ascending physical order.
func (l *Layout) Expand() *Layout {
	out := l.Copy()
	next := len(out.v2p)
	for p, v := range out.p2v {
		if v == -1 {
			out.p2v[p] = next
			out.v2p = append(out.v2p, p)
			next++
		}
	}
	return out
}

func (l *Layout) String() string {
	return fmt.Sprintf("layout%v", l.v2p)
}
