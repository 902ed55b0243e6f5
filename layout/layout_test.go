package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qompiler/qompiler/circuit"
	"github.com/qompiler/qompiler/dag"
	"github.com/qompiler/qompiler/device"
	"github.com/qompiler/qompiler/props"
)

func lineCoupling(n int) *device.Coupling {
	edges := make([][2]int, 0, n-1)
	for i := 0; i+1 < n; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	return device.NewCoupling(n, edges)
}

func mustAppend(t *testing.T, d *dag.DAG, g circuit.Gate, qubits ...int) {
	t.Helper()
	_, err := d.Append(circuit.Operation{Gate: g, Qubits: qubits})
	require.NoError(t, err)
}

func TestLayoutBasics(t *testing.T) {
	l, err := FromV2P([]int{2, 0}, 3)
	require.NoError(t, err)
	require.Equal(t, 2, l.NumVirtual())
	require.Equal(t, 3, l.NumPhysical())
	require.Equal(t, 2, l.V2P(0))
	require.Equal(t, 0, l.V2P(1))
	require.Equal(t, 0, l.P2V(2))
	require.Equal(t, 1, l.P2V(0))
	require.Equal(t, -1, l.P2V(1))

	_, err = FromV2P([]int{0, 0}, 3)
	require.Error(t, err)
	_, err = FromV2P([]int{0, 5}, 3)
	require.Error(t, err)

	id := Identity(3, 3)
	for v := 0; v < 3; v++ {
		require.Equal(t, v, id.V2P(v))
	}
}

func TestLayoutSwapComposeExpand(t *testing.T) {
	l := Identity(3, 3)
	l.SwapPhysical(0, 2)
	require.Equal(t, []int{2, 1, 0}, l.V2PSlice())

	next := Identity(3, 3)
	next.SwapPhysical(1, 2)
	comp := l.Compose(next)
	// v0 -> 2 -> 1, v1 -> 1 -> 2, v2 -> 0 -> 0
	require.Equal(t, []int{1, 2, 0}, comp.V2PSlice())

	partial, err := FromV2P([]int{2, 0}, 3)
	require.NoError(t, err)
	full := partial.Expand()
	require.Equal(t, 3, full.NumVirtual())
	require.Equal(t, []int{2, 0, 1}, full.V2PSlice())
}

func TestVF2FindsPerfectLayout(t *testing.T) {
	d := dag.New(3, 0)
	mustAppend(t, d, circuit.GateH, 0)
	mustAppend(t, d, circuit.GateCX, 0, 1)
	mustAppend(t, d, circuit.GateCX, 1, 2)

	v := &VF2{Coupling: lineCoupling(5)}
	l, reason, err := v.Run(d)
	require.NoError(t, err)
	require.Equal(t, StopSolutionFound, reason)
	require.NotNil(t, l)
	require.Equal(t, 1, v.Coupling.Distance(l.V2P(0), l.V2P(1)))
	require.Equal(t, 1, v.Coupling.Distance(l.V2P(1), l.V2P(2)))
}

func TestVF2NoSolution(t *testing.T) {
	// a triangle of interactions cannot embed in a 3-qubit line
	d := dag.New(3, 0)
	mustAppend(t, d, circuit.GateCX, 0, 1)
	mustAppend(t, d, circuit.GateCX, 1, 2)
	mustAppend(t, d, circuit.GateCX, 0, 2)

	v := &VF2{Coupling: lineCoupling(3)}
	l, reason, err := v.Run(d)
	require.NoError(t, err)
	require.Nil(t, l)
	require.Equal(t, StopNoSolution, reason)
}

func TestVF2TooWide(t *testing.T) {
	d := dag.New(4, 0)
	v := &VF2{Coupling: lineCoupling(3)}
	_, _, err := v.Run(d)
	require.ErrorIs(t, err, ErrCircuitTooWide)
}

func TestVF2CallLimit(t *testing.T) {
	d := dag.New(3, 0)
	mustAppend(t, d, circuit.GateCX, 0, 1)
	mustAppend(t, d, circuit.GateCX, 1, 2)

	v := &VF2{Coupling: lineCoupling(5), CallLimit: 1}
	l, reason, err := v.Run(d)
	require.NoError(t, err)
	require.Nil(t, l)
	require.Equal(t, StopCallLimit, reason)
}

func TestVF2Deadline(t *testing.T) {
	// a degree-3 interaction cannot embed in a line, so without a deadline
	// the search would exhaust; n is large enough to pass the periodic
	// deadline check first
	n := 300
	d := dag.New(n, 0)
	mustAppend(t, d, circuit.GateCX, 0, 1)
	mustAppend(t, d, circuit.GateCX, 0, 2)
	mustAppend(t, d, circuit.GateCX, 0, 3)

	v := &VF2{Coupling: lineCoupling(n), Deadline: time.Now().Add(-time.Second)}
	l, reason, err := v.Run(d)
	require.NoError(t, err)
	require.Nil(t, l)
	require.Equal(t, StopCallLimit, reason)
}

func TestVF2PrefersLowErrorEdges(t *testing.T) {
	target := device.NewTarget(3)
	target.AddOperation("cx", []int{0, 1}, device.Props{Error: 0.1})
	target.AddOperation("cx", []int{1, 0}, device.Props{Error: 0.1})
	target.AddOperation("cx", []int{1, 2}, device.Props{Error: 0.01})
	target.AddOperation("cx", []int{2, 1}, device.Props{Error: 0.01})

	d := dag.New(2, 0)
	mustAppend(t, d, circuit.GateCX, 0, 1)

	v := &VF2{Coupling: target.BuildCoupling(), Target: target}
	l, reason, err := v.Run(d)
	require.NoError(t, err)
	require.Equal(t, StopSolutionFound, reason)
	pair := map[int]bool{l.V2P(0): true, l.V2P(1): true}
	require.True(t, pair[1] && pair[2], "expected the low-error edge, got %v", l)
}

func TestApplyRelabelsOntoDevice(t *testing.T) {
	d := dag.New(2, 1)
	mustAppend(t, d, circuit.GateH, 0)
	mustAppend(t, d, circuit.GateCX, 0, 1)
	_, err := d.Append(circuit.Operation{Gate: circuit.GateMeasure, Qubits: []int{1}, Clbits: []int{0}})
	require.NoError(t, err)

	l, err := FromV2P([]int{2, 1}, 4)
	require.NoError(t, err)
	ps := props.New()
	out, err := Apply(d, l, ps)
	require.NoError(t, err)
	require.Equal(t, 4, out.NumQubits)
	require.Equal(t, 1, out.NumClbits)

	ids := out.TopologicalOpNodes()
	require.Len(t, ids, 3)
	require.Equal(t, []int{2}, out.Op(ids[0]).Qubits)
	require.Equal(t, []int{2, 1}, out.Op(ids[1]).Qubits)
	require.Equal(t, []int{1}, out.Op(ids[2]).Qubits)
	require.Equal(t, []int{0}, out.Op(ids[2]).Clbits)

	require.True(t, ps.Has(props.KeyLayout))
	full := ps.Get(props.KeyLayout).(*Layout)
	require.Equal(t, 4, full.NumVirtual())
	n, ok := ps.Int(props.KeyOriginalQubitIndices)
	require.True(t, ok)
	require.Equal(t, 2, n)
}
