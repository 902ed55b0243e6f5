// Package peephole rewrites small windows of a circuit into cheaper
// equivalents: runs of gates on a qubit pair are resynthesized from their
// unitary, and gates equal to the identity up to phase are removed.
package peephole

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/qompiler/qompiler/circuit"
	"github.com/qompiler/qompiler/dag"
	"github.com/qompiler/qompiler/device"
	"github.com/qompiler/qompiler/logger"
	"github.com/qompiler/qompiler/props"
	"github.com/qompiler/qompiler/synth"
	"github.com/qompiler/qompiler/utils"
)

const fidelityTol = 1e-12

// TwoQubit collapses every maximal run of gates on a single qubit pair into
// a fresh synthesis from the run's unitary. A run is replaced only when the
// new sequence has better fidelity on the target, or ties while using fewer
// two-qubit gates. Without a target, fewer two-qubit gates wins.
type TwoQubit struct {
	Target *device.Target
}

// Run returns a rewritten copy of the DAG. The number of replaced runs is
// recorded in the property set.
func (p *TwoQubit) Run(d *dag.DAG, ps props.Set) (*dag.DAG, error) {
	log := logger.Logger()
	out := d.Copy()
	dec, ok := p.decomposer()
	if !ok {
		log.Debug().Msg("no supported two-qubit basis, skipping resynthesis")
		if ps != nil {
			ps.Put(props.KeyPeepholeReplacedCount, 0)
		}
		return out, nil
	}

	replaced := 0
	cache := make(utils.Map)
	for _, run := range out.Collect2QRuns() {
		if p.resynthesize(out, run, dec, cache) {
			replaced++
		}
	}
	log.Debug().Int("replaced", replaced).Msg("resynthesized two-qubit runs")
	if ps != nil {
		ps.Put(props.KeyPeepholeReplacedCount, replaced)
	}
	return out, nil
}

// decomposer picks the synthesis basis from the target's operations.
func (p *TwoQubit) decomposer() (*synth.TwoQubitDecomposer, bool) {
	if p.Target == nil {
		dec, err := synth.NewTwoQubitDecomposer(circuit.GateCX, synth.EulerU)
		return dec, err == nil
	}
	var gate circuit.Gate
	switch {
	case p.Target.HasOperation("cx"):
		gate = circuit.GateCX
	case p.Target.HasOperation("cz"):
		gate = circuit.GateCZ
	default:
		return nil, false
	}
	names := make(map[string]bool)
	for _, name := range p.Target.OperationNames() {
		if n, ok := p.Target.NumQubitsForOperation(name); ok && n == 1 {
			names[name] = true
		}
	}
	euler, ok := synth.EulerBasisForNames(names)
	if !ok {
		return nil, false
	}
	dec, err := synth.NewTwoQubitDecomposer(gate, euler)
	return dec, err == nil
}

// resynthesize replaces one run in place when the replacement scores better.
// Synthesis failures leave the run untouched. Runs with the same unitary
// share one synthesis through the cache.
func (p *TwoQubit) resynthesize(d *dag.DAG, run []dag.NodeID, dec *synth.TwoQubitDecomposer, cache utils.Map) bool {
	anchor := dag.None
	for _, id := range run {
		if len(d.Op(id).Qubits) == 2 {
			anchor = id
		}
	}
	if anchor == dag.None {
		panic("unexpected situation: two-qubit run without a two-qubit gate")
	}
	pair := d.Op(anchor).Qubits

	u := synth.Eye(4)
	oldFid := 1.0
	oldTwoQ := 0
	for _, id := range run {
		op := d.Op(id)
		params, _ := op.BoundParams()
		g, err := op.Gate.Matrix(params)
		if err != nil {
			return false
		}
		u = synth.Mul(synth.Lift(g, localQubits(op.Qubits, pair), 2), u)
		if len(op.Qubits) == 2 {
			oldTwoQ++
		}
		oldFid *= 1 - p.errorRate(op.Gate.Name(), op.Qubits)
	}

	var circ *circuit.Circuit
	key := newUnitaryKey(u)
	if hit, ok := cache.Find(key); ok {
		circ = hit.(*circuit.Circuit).Copy()
	} else {
		var err error
		circ, err = dec.Circuit(u)
		if err != nil {
			log := logger.Logger()
			log.Debug().Err(err).Msg("run synthesis failed, keeping original")
			return false
		}
		cache.Set(key, circ.Copy())
	}
	newFid := 1.0
	newTwoQ := 0
	for i := range circ.Ops {
		op := &circ.Ops[i]
		qargs := make([]int, len(op.Qubits))
		for j, q := range op.Qubits {
			qargs[j] = pair[q]
		}
		if len(op.Qubits) == 2 {
			newTwoQ++
		}
		newFid *= 1 - p.errorRate(op.Gate.Name(), qargs)
	}

	if newFid < oldFid-fidelityTol {
		return false
	}
	if newFid < oldFid+fidelityTol && newTwoQ >= oldTwoQ {
		return false
	}

	for _, id := range run {
		if id != anchor {
			d.Remove(id)
		}
	}
	sub, err := dag.FromCircuit(circ)
	if err != nil {
		panic(fmt.Sprintf("unexpected situation: synthesized circuit rejected: %v", err))
	}
	if err := d.SubstituteNodeWithDAG(anchor, sub); err != nil {
		panic(fmt.Sprintf("unexpected situation: run substitution failed: %v", err))
	}
	return true
}

func (p *TwoQubit) errorRate(name string, qargs []int) float64 {
	if p.Target == nil {
		return 0
	}
	return p.Target.ErrorRate(name, qargs)
}

// unitaryKey hashes a run matrix entrywise so bit-identical runs share one
// synthesis.
type unitaryKey struct {
	bits []uint64
	hash uint64
}

func newUnitaryKey(u *mat.CDense) *unitaryKey {
	n, c := u.Dims()
	bits := make([]uint64, 0, 2*n*c)
	for i := 0; i < n; i++ {
		for j := 0; j < c; j++ {
			v := u.At(i, j)
			bits = append(bits, math.Float64bits(real(v)), math.Float64bits(imag(v)))
		}
	}
	h := uint64(14695981039346656037)
	for _, b := range bits {
		h ^= b
		h *= 1099511628211
	}
	return &unitaryKey{bits: bits, hash: h}
}

func (k *unitaryKey) HashCode() uint64 {
	return k.hash
}

func (k *unitaryKey) Equals(o utils.Hashable) bool {
	other, ok := o.(*unitaryKey)
	if !ok || len(other.bits) != len(k.bits) {
		return false
	}
	for i := range k.bits {
		if k.bits[i] != other.bits[i] {
			return false
		}
	}
	return true
}

func localQubits(qubits []int, pair []int) []int {
	local := make([]int, len(qubits))
	for i, q := range qubits {
		switch q {
		case pair[0]:
			local[i] = 0
		case pair[1]:
			local[i] = 1
		default:
			panic("unexpected situation: run gate off its qubit pair")
		}
	}
	return local
}
