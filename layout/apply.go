package layout

import (
	"fmt"

	"github.com/qompiler/qompiler/dag"
	"github.com/qompiler/qompiler/props"
)

// Apply relabels a virtual-qubit DAG onto physical qubits. Unassigned
// physical qubits become ancillas, so the output DAG is as wide as the
// device. The full layout and the original width are recorded in the
// property set.
func Apply(d *dag.DAG, l *Layout, ps props.Set) (*dag.DAG, error) {
	if l.NumVirtual() < d.NumQubits {
		return nil, fmt.Errorf("layout: %d virtual qubits mapped, circuit has %d", l.NumVirtual(), d.NumQubits)
	}
	full := l.Expand()
	out := dag.New(full.NumPhysical(), d.NumClbits)
	out.AddGlobalPhase(d.GlobalPhase)
	for _, id := range d.TopologicalOpNodes() {
		op := d.Op(id).Copy()
		qubits := make([]int, len(op.Qubits))
		for i, v := range op.Qubits {
			qubits[i] = full.V2P(v)
		}
		op.Qubits = qubits
		if _, err := out.Append(op); err != nil {
			return nil, err
		}
	}
	if ps != nil {
		ps.Put(props.KeyLayout, full)
		ps.Put(props.KeyOriginalQubitIndices, d.NumQubits)
	}
	return out, nil
}
